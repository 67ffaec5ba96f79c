package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ametelkin/pr-notify/internal/domain"
)

// Subset of the Bitbucket Server webhook payload. Upstream sends far more
// fields than modeled here, so this decode keeps unknown keys allowed.
type webhookPayload struct {
	EventKey    string              `json:"eventKey"`
	PullRequest *webhookPullRequest `json:"pullRequest"`
	Comment     *webhookComment     `json:"comment"`
}

type webhookPullRequest struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CreatedDate int64  `json:"createdDate"`
	Author      struct {
		User webhookUser `json:"user"`
	} `json:"author"`
	FromRef    webhookRef   `json:"fromRef"`
	ToRef      webhookRef   `json:"toRef"`
	Links      webhookLinks `json:"links"`
	Properties struct {
		CommentCount int `json:"commentCount"`
	} `json:"properties"`
}

type webhookComment struct {
	Text   string      `json:"text"`
	Author webhookUser `json:"author"`
}

type webhookUser struct {
	DisplayName string       `json:"displayName"`
	Links       webhookLinks `json:"links"`
}

type webhookRef struct {
	DisplayID  string `json:"displayId"`
	Repository struct {
		Name  string       `json:"name"`
		Links webhookLinks `json:"links"`
	} `json:"repository"`
}

type webhookLinks struct {
	Self []struct {
		Href string `json:"href"`
	} `json:"self"`
}

func (l webhookLinks) self() string {
	if len(l.Self) == 0 {
		return ""
	}
	return l.Self[0].Href
}

func actionFromEventKey(key string) domain.Action {
	switch key {
	case "pr:opened":
		return domain.ActionCreated
	case "pr:comment:added":
		return domain.ActionComment
	case "pr:reviewer:approved":
		return domain.ActionApproved
	default:
		return domain.Action(key)
	}
}

func (p webhookPayload) toEvent() domain.Event {
	pr := p.PullRequest

	event := domain.Event{
		Action: actionFromEventKey(p.EventKey),
		PullRequest: domain.PullRequest{
			ID:          strconv.FormatInt(pr.ID, 10),
			Title:       pr.Title,
			Description: pr.Description,
			Author: domain.Actor{
				Name: pr.Author.User.DisplayName,
				Link: pr.Author.User.Links.self(),
			},
			CreatedDate: time.UnixMilli(pr.CreatedDate).UTC(),
			FromRepository: domain.Repository{
				Name: pr.FromRef.Repository.Name,
				Link: pr.FromRef.Repository.Links.self(),
			},
			ToBranchLabel: pr.ToRef.DisplayID,
			SelfLink:      pr.Links.self(),
			CommentCount:  pr.Properties.CommentCount,
		},
	}

	// Comment travels only on comment events, even if the payload carries one.
	if event.Action == domain.ActionComment && p.Comment != nil {
		event.Comment = &domain.Comment{
			Author: domain.Actor{
				Name: p.Comment.Author.DisplayName,
				Link: p.Comment.Author.Links.self(),
			},
			Text: p.Comment.Text,
		}
	}

	return event
}

func (h *handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload webhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeValidationError(w, err)
		return
	}
	if payload.EventKey == "" {
		writeValidationError(w, errors.New("eventKey is required"))
		return
	}
	if payload.PullRequest == nil || payload.PullRequest.ID == 0 {
		writeValidationError(w, errors.New("pullRequest.id is required"))
		return
	}

	event := payload.toEvent()
	h.dispatcher.Dispatch(r.Context(), event)

	writeJSON(w, http.StatusAccepted, map[string]any{
		"action": string(event.Action),
	})
}
