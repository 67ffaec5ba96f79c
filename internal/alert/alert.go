package alert

import "context"

// Permission mirrors the OS notification permission model.
type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
	PermissionDefault Permission = "default"
)

// Options carries the optional parts of an alert.
type Options struct {
	Icon string
	Body string
}

// Alerter is the OS alert capability injected into the dispatcher.
type Alerter interface {
	// RequestPermission resolves the right to show alerts. A denied
	// permission cannot be re-escalated by asking again.
	RequestPermission(ctx context.Context) (Permission, error)

	// Show displays one alert.
	Show(ctx context.Context, title string, opts Options) error
}
