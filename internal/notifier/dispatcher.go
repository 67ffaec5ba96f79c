package notifier

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ametelkin/pr-notify/internal/alert"
	"github.com/ametelkin/pr-notify/internal/domain"
	"github.com/ametelkin/pr-notify/internal/indicator"
	"github.com/ametelkin/pr-notify/internal/slack"
)

const alertIcon = "dialog-information"

// Settings supplies the snooze set and channel configuration, read fresh
// for every dispatch.
type Settings interface {
	SnoozedPullRequests(ctx context.Context) (domain.SnoozeSet, error)
	NotificationSettings(ctx context.Context) (domain.NotificationConfig, error)
}

// ChatClient posts a formatted message to the chat API.
type ChatClient interface {
	PostMessage(ctx context.Context, token string, msg slack.Message) error
}

// StatusIndicator receives the error state shown on the status surface.
type StatusIndicator interface {
	Set(upd indicator.Update)
}

// Dispatcher routes one event to the enabled notification channels.
// Failures never propagate to the caller: the desktop channel fails
// silently, the chat channel reports through the indicator.
type Dispatcher struct {
	settings Settings
	alerter  alert.Alerter
	chat     ChatClient
	status   StatusIndicator
	logger   *zap.Logger
}

func New(settings Settings, alerter alert.Alerter, chat ChatClient, status StatusIndicator, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		settings: settings,
		alerter:  alerter,
		chat:     chat,
		status:   status,
		logger:   logger,
	}
}

// Dispatch delivers the event to each enabled channel. The channels run
// concurrently and do not affect each other; they are joined only so the
// finish of the whole dispatch can be logged under one id.
func (d *Dispatcher) Dispatch(ctx context.Context, event domain.Event) {
	logger := d.logger.With(
		zap.String("dispatch_id", uuid.NewString()),
		zap.String("pull_request_id", event.PullRequest.ID),
		zap.String("action", string(event.Action)),
	)

	snoozed, err := d.settings.SnoozedPullRequests(ctx)
	if err != nil {
		logger.Error("load snoozes", zap.Error(err))
		return
	}

	cfg, err := d.settings.NotificationSettings(ctx)
	if err != nil {
		logger.Error("load notification settings", zap.Error(err))
		return
	}

	if _, ok := snoozed[event.PullRequest.ID]; ok {
		logger.Debug("pull request snoozed, skipping")
		return
	}

	var wg sync.WaitGroup

	if cfg.DesktopEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.notifyDesktop(ctx, event, logger)
		}()
	}

	if cfg.SlackEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.notifyChat(ctx, cfg, event, logger)
		}()
	}

	wg.Wait()
	logger.Debug("dispatch finished")
}

func (d *Dispatcher) notifyDesktop(ctx context.Context, event domain.Event, logger *zap.Logger) {
	perm, err := d.alerter.RequestPermission(ctx)
	if err != nil {
		logger.Error("request alert permission", zap.Error(err))
		return
	}
	if perm != alert.PermissionGranted {
		logger.Debug("alert permission not granted", zap.String("permission", string(perm)))
		return
	}

	opts := alert.Options{Icon: alertIcon, Body: alertBody(event)}
	if err := d.alerter.Show(ctx, event.PullRequest.Title, opts); err != nil {
		logger.Error("show desktop alert", zap.Error(err))
	}
}

func (d *Dispatcher) notifyChat(ctx context.Context, cfg domain.NotificationConfig, event domain.Event, logger *zap.Logger) {
	msg := slack.Build(cfg.SlackChannelID, event)
	if err := d.chat.PostMessage(ctx, cfg.SlackToken, msg); err != nil {
		logger.Error("post chat message", zap.Error(err))
		d.status.Set(indicator.Update{
			Title:   err.Error(),
			Message: "slack",
			Color:   "red",
		})
	}
}

func alertBody(event domain.Event) string {
	switch event.Action {
	case domain.ActionComment:
		return "comment(s) added"
	case domain.ActionCreated:
		return "new pull request created"
	case domain.ActionApproved:
		return "pull request approved"
	default:
		return ""
	}
}
