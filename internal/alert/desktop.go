package alert

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"sync"
)

// Desktop shows alerts through the platform notification tool: notify-send
// on Linux, osascript on macOS.
type Desktop struct {
	mu    sync.Mutex
	state Permission

	goos     string
	lookPath func(file string) (string, error)
	run      func(ctx context.Context, name string, args ...string) error
}

func NewDesktop(initial Permission) *Desktop {
	if initial != PermissionGranted && initial != PermissionDenied {
		initial = PermissionDefault
	}
	return &Desktop{
		state:    initial,
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
		run: func(ctx context.Context, name string, args ...string) error {
			return exec.CommandContext(ctx, name, args...).Run()
		},
	}
}

// RequestPermission probes the platform tool the first time it is called.
// Denied is permanent; an inconclusive probe stays "default" and is probed
// again on the next call.
func (d *Desktop) RequestPermission(_ context.Context) (Permission, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch d.state {
	case PermissionDenied:
		return PermissionDenied, nil
	case PermissionGranted:
		return PermissionGranted, nil
	}

	tool, ok := notifyTool(d.goos)
	if !ok {
		return PermissionDefault, nil
	}
	if _, err := d.lookPath(tool); err != nil {
		return PermissionDefault, nil
	}

	d.state = PermissionGranted
	return PermissionGranted, nil
}

func (d *Desktop) Show(ctx context.Context, title string, opts Options) error {
	switch d.goos {
	case "linux":
		args := make([]string, 0, 4)
		if opts.Icon != "" {
			args = append(args, "-i", opts.Icon)
		}
		args = append(args, title, opts.Body)
		return d.run(ctx, "notify-send", args...)
	case "darwin":
		script := fmt.Sprintf("display notification %q with title %q", opts.Body, title)
		return d.run(ctx, "osascript", "-e", script)
	default:
		return fmt.Errorf("desktop alerts not supported on %s", d.goos)
	}
}

func notifyTool(goos string) (string, bool) {
	switch goos {
	case "linux":
		return "notify-send", true
	case "darwin":
		return "osascript", true
	default:
		return "", false
	}
}
