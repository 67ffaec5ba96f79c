package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ametelkin/pr-notify/internal/domain"
	"github.com/ametelkin/pr-notify/internal/repository"
)

var (
	ErrSettingsNotFound      = errors.New("settings not found")
	ErrEmptyPullRequestID    = errors.New("pull request id is empty")
	ErrNegativeTTL           = errors.New("snooze ttl is negative")
	ErrSnoozeNotFound        = errors.New("snooze not found")
	ErrSlackConfigIncomplete = errors.New("slack channel requires token and channel id")
)

type Repo interface {
	GetSettings(ctx context.Context) (domain.NotificationConfig, error)
	UpdateSettings(ctx context.Context, cfg domain.NotificationConfig) (domain.NotificationConfig, error)
	ListSnoozedIDs(ctx context.Context, now time.Time) (domain.SnoozeSet, error)
	ListSnoozes(ctx context.Context, now time.Time) ([]domain.Snooze, error)
	UpsertSnooze(ctx context.Context, prID string, expiresAt *time.Time) error
	DeleteSnooze(ctx context.Context, prID string) error
	DeleteExpiredSnoozes(ctx context.Context, now time.Time) (int64, error)
}

type Service struct {
	repo Repo
	now  func() time.Time
}

func New(repo Repo) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

func (s *Service) NotificationSettings(ctx context.Context) (domain.NotificationConfig, error) {
	cfg, err := s.repo.GetSettings(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrSettingsNotFound) {
			return domain.NotificationConfig{}, ErrSettingsNotFound
		}
		return domain.NotificationConfig{}, err
	}
	return cfg, nil
}

func (s *Service) UpdateNotificationSettings(ctx context.Context, cfg domain.NotificationConfig) (domain.NotificationConfig, error) {
	if cfg.SlackEnabled && (cfg.SlackToken == "" || cfg.SlackChannelID == "") {
		return domain.NotificationConfig{}, ErrSlackConfigIncomplete
	}

	stored, err := s.repo.UpdateSettings(ctx, cfg)
	if err != nil {
		if errors.Is(err, repository.ErrSettingsNotFound) {
			return domain.NotificationConfig{}, ErrSettingsNotFound
		}
		return domain.NotificationConfig{}, err
	}
	return stored, nil
}

func (s *Service) SnoozedPullRequests(ctx context.Context) (domain.SnoozeSet, error) {
	return s.repo.ListSnoozedIDs(ctx, s.now().UTC())
}

func (s *Service) ListSnoozes(ctx context.Context) ([]domain.Snooze, error) {
	return s.repo.ListSnoozes(ctx, s.now().UTC())
}

func (s *Service) Snooze(ctx context.Context, prID string, ttl time.Duration) error {
	if prID == "" {
		return ErrEmptyPullRequestID
	}
	if ttl < 0 {
		return ErrNegativeTTL
	}

	var expiresAt *time.Time
	if ttl > 0 {
		t := s.now().UTC().Add(ttl)
		expiresAt = &t
	}

	if err := s.repo.UpsertSnooze(ctx, prID, expiresAt); err != nil {
		return fmt.Errorf("snooze %s: %w", prID, err)
	}
	return nil
}

func (s *Service) Unsnooze(ctx context.Context, prID string) error {
	if prID == "" {
		return ErrEmptyPullRequestID
	}

	if err := s.repo.DeleteSnooze(ctx, prID); err != nil {
		if errors.Is(err, repository.ErrSnoozeNotFound) {
			return ErrSnoozeNotFound
		}
		return fmt.Errorf("unsnooze %s: %w", prID, err)
	}
	return nil
}

func (s *Service) PruneExpiredSnoozes(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpiredSnoozes(ctx, s.now().UTC())
}
