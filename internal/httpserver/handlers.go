package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ametelkin/pr-notify/internal/domain"
	"github.com/ametelkin/pr-notify/internal/service"
)

type handler struct {
	svc        Service
	dispatcher Dispatcher
	status     StatusSource
	logger     *zap.Logger
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": formatTime(time.Now()),
	})
}

func (h *handler) handleStatus(w http.ResponseWriter, _ *http.Request) {
	state := h.status.Snapshot()

	resp := map[string]any{
		"title":   state.Title,
		"message": state.Message,
		"color":   state.Color,
	}
	if !state.UpdatedAt.IsZero() {
		resp["updated_at"] = formatTime(state.UpdatedAt)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleSettingsGet(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.svc.NotificationSettings(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, mapSettings(cfg))
}

func (h *handler) handleSettingsUpdate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DesktopEnabled bool   `json:"desktop_enabled"`
		SlackEnabled   bool   `json:"slack_enabled"`
		SlackToken     string `json:"slack_token"`
		SlackChannelID string `json:"slack_channel_id"`
	}
	if err := decodeJSON(r.Body, &req); err != nil {
		writeValidationError(w, err)
		return
	}

	cfg, err := h.svc.UpdateNotificationSettings(r.Context(), domain.NotificationConfig{
		DesktopEnabled: req.DesktopEnabled,
		SlackEnabled:   req.SlackEnabled,
		SlackToken:     req.SlackToken,
		SlackChannelID: req.SlackChannelID,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, mapSettings(cfg))
}

func (h *handler) handleSnoozeList(w http.ResponseWriter, r *http.Request) {
	snoozes, err := h.svc.ListSnoozes(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"snoozes": mapSnoozes(snoozes),
	})
}

func (h *handler) handleSnoozeCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PullRequestID string `json:"pull_request_id"`
		TTLSeconds    int64  `json:"ttl_seconds"`
	}
	if err := decodeJSON(r.Body, &req); err != nil {
		writeValidationError(w, err)
		return
	}
	if req.PullRequestID == "" {
		writeValidationError(w, errors.New("pull_request_id is required"))
		return
	}

	ttl := time.Duration(req.TTLSeconds) * time.Second
	if err := h.svc.Snooze(r.Context(), req.PullRequestID, ttl); err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"pull_request_id": req.PullRequestID,
	})
}

func (h *handler) handleSnoozeDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.svc.Unsnooze(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) writeServiceError(w http.ResponseWriter, err error) {
	status, code := mapServiceError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("service error", zap.Error(err))
	}
	writeError(w, status, code, err.Error())
}

func mapServiceError(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrEmptyPullRequestID),
		errors.Is(err, service.ErrNegativeTTL),
		errors.Is(err, service.ErrSlackConfigIncomplete):
		return http.StatusBadRequest, "VALIDATION_ERROR"
	case errors.Is(err, service.ErrSnoozeNotFound),
		errors.Is(err, service.ErrSettingsNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}

func mapSettings(cfg domain.NotificationConfig) map[string]any {
	token := ""
	if cfg.SlackToken != "" {
		token = "***"
	}
	return map[string]any{
		"desktop_enabled":  cfg.DesktopEnabled,
		"slack_enabled":    cfg.SlackEnabled,
		"slack_token":      token,
		"slack_channel_id": cfg.SlackChannelID,
	}
}

func mapSnoozes(snoozes []domain.Snooze) []map[string]any {
	result := make([]map[string]any, 0, len(snoozes))
	for _, s := range snoozes {
		item := map[string]any{
			"pull_request_id": s.PullRequestID,
			"created_at":      formatTime(s.CreatedAt),
		}
		if s.ExpiresAt != nil {
			item["expires_at"] = formatTime(*s.ExpiresAt)
		}
		result = append(result, item)
	}
	return result
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func decodeJSON(body io.ReadCloser, dst any) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return errors.New("unexpected extra JSON input")
		}
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}

func writeValidationError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
}
