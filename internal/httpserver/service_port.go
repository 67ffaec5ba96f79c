package httpserver

import (
	"context"
	"time"

	"github.com/ametelkin/pr-notify/internal/domain"
	"github.com/ametelkin/pr-notify/internal/indicator"
)

type Service interface {
	NotificationSettings(ctx context.Context) (domain.NotificationConfig, error)
	UpdateNotificationSettings(ctx context.Context, cfg domain.NotificationConfig) (domain.NotificationConfig, error)
	ListSnoozes(ctx context.Context) ([]domain.Snooze, error)
	Snooze(ctx context.Context, pullRequestID string, ttl time.Duration) error
	Unsnooze(ctx context.Context, pullRequestID string) error
}

type Dispatcher interface {
	Dispatch(ctx context.Context, event domain.Event)
}

type StatusSource interface {
	Snapshot() indicator.State
}
