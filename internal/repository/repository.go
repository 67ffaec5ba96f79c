package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ametelkin/pr-notify/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrSettingsNotFound = errors.New("settings row not found")
	ErrSnoozeNotFound   = errors.New("snooze not found")
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) GetSettings(ctx context.Context) (domain.NotificationConfig, error) {
	var cfg domain.NotificationConfig
	err := r.pool.QueryRow(ctx, `
		SELECT desktop_enabled, slack_enabled, slack_token, slack_channel_id
		FROM settings
		WHERE id = 1
	`).Scan(&cfg.DesktopEnabled, &cfg.SlackEnabled, &cfg.SlackToken, &cfg.SlackChannelID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NotificationConfig{}, ErrSettingsNotFound
	}
	if err != nil {
		return domain.NotificationConfig{}, fmt.Errorf("select settings: %w", err)
	}

	return cfg, nil
}

func (r *Repository) UpdateSettings(ctx context.Context, cfg domain.NotificationConfig) (domain.NotificationConfig, error) {
	var stored domain.NotificationConfig
	err := r.pool.QueryRow(ctx, `
		UPDATE settings
		SET desktop_enabled = $1,
		    slack_enabled = $2,
		    slack_token = $3,
		    slack_channel_id = $4,
		    updated_at = NOW()
		WHERE id = 1
		RETURNING desktop_enabled, slack_enabled, slack_token, slack_channel_id
	`, cfg.DesktopEnabled, cfg.SlackEnabled, cfg.SlackToken, cfg.SlackChannelID).
		Scan(&stored.DesktopEnabled, &stored.SlackEnabled, &stored.SlackToken, &stored.SlackChannelID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NotificationConfig{}, ErrSettingsNotFound
	}
	if err != nil {
		return domain.NotificationConfig{}, fmt.Errorf("update settings: %w", err)
	}

	return stored, nil
}

func (r *Repository) ListSnoozedIDs(ctx context.Context, now time.Time) (domain.SnoozeSet, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT pull_request_id
		FROM snoozes
		WHERE expires_at IS NULL OR expires_at > $1
	`, now)
	if err != nil {
		return nil, fmt.Errorf("select snoozed ids: %w", err)
	}
	defer rows.Close()

	set := make(domain.SnoozeSet)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan snoozed id: %w", err)
		}
		set[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snoozed ids: %w", err)
	}

	return set, nil
}

func (r *Repository) ListSnoozes(ctx context.Context, now time.Time) ([]domain.Snooze, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT pull_request_id, created_at, expires_at
		FROM snoozes
		WHERE expires_at IS NULL OR expires_at > $1
		ORDER BY created_at DESC
	`, now)
	if err != nil {
		return nil, fmt.Errorf("select snoozes: %w", err)
	}
	defer rows.Close()

	var snoozes []domain.Snooze
	for rows.Next() {
		var s domain.Snooze
		var expiresAt sql.NullTime
		if err := rows.Scan(&s.PullRequestID, &s.CreatedAt, &expiresAt); err != nil {
			return nil, fmt.Errorf("scan snooze: %w", err)
		}
		if expiresAt.Valid {
			t := expiresAt.Time
			s.ExpiresAt = &t
		}
		snoozes = append(snoozes, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snoozes: %w", err)
	}

	return snoozes, nil
}

func (r *Repository) UpsertSnooze(ctx context.Context, prID string, expiresAt *time.Time) error {
	if _, err := r.pool.Exec(ctx, `
		INSERT INTO snoozes (pull_request_id, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (pull_request_id)
		DO UPDATE SET expires_at = EXCLUDED.expires_at,
		              created_at = NOW()
	`, prID, expiresAt); err != nil {
		return fmt.Errorf("upsert snooze: %w", err)
	}

	return nil
}

func (r *Repository) DeleteSnooze(ctx context.Context, prID string) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM snoozes
		WHERE pull_request_id = $1
	`, prID)
	if err != nil {
		return fmt.Errorf("delete snooze: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSnoozeNotFound
	}

	return nil
}

func (r *Repository) DeleteExpiredSnoozes(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM snoozes
		WHERE expires_at IS NOT NULL AND expires_at <= $1
	`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired snoozes: %w", err)
	}

	return tag.RowsAffected(), nil
}
