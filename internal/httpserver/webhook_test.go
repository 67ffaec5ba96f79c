package httpserver

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ametelkin/pr-notify/internal/domain"
)

const openedPayload = `{
	"eventKey": "pr:opened",
	"actor": {"name": "alice"},
	"pullRequest": {
		"id": 101,
		"title": "Add retries to uploader",
		"description": "Retries transient failures",
		"createdDate": 1741357800000,
		"author": {
			"user": {
				"displayName": "Alice",
				"links": {"self": [{"href": "https://git.local/users/alice"}]}
			}
		},
		"fromRef": {
			"displayId": "feature/retries",
			"repository": {
				"name": "uploader",
				"links": {"self": [{"href": "https://git.local/projects/UP/repos/uploader"}]}
			}
		},
		"toRef": {
			"displayId": "master",
			"repository": {"name": "uploader"}
		},
		"links": {"self": [{"href": "https://git.local/projects/UP/repos/uploader/pull-requests/101"}]},
		"properties": {"commentCount": 2}
	}
}`

func TestHandleWebhook_Opened(t *testing.T) {
	d := &dispatcherStub{}
	h := newTestRouter(&serviceStub{}, d, &statusStub{})

	rec := doRequest(t, h, http.MethodPost, "/webhook", openedPayload)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp struct {
		Action string `json:"action"`
	}
	decodeBody(t, rec, &resp)
	require.Equal(t, "created", resp.Action)

	require.Len(t, d.events, 1)
	event := d.events[0]
	require.Equal(t, domain.ActionCreated, event.Action)
	require.Nil(t, event.Comment)

	pr := event.PullRequest
	require.Equal(t, "101", pr.ID)
	require.Equal(t, "Add retries to uploader", pr.Title)
	require.Equal(t, "Retries transient failures", pr.Description)
	require.Equal(t, "Alice", pr.Author.Name)
	require.Equal(t, "https://git.local/users/alice", pr.Author.Link)
	require.True(t, pr.CreatedDate.Equal(time.Date(2025, 3, 7, 14, 30, 0, 0, time.UTC)))
	require.Equal(t, "uploader", pr.FromRepository.Name)
	require.Equal(t, "https://git.local/projects/UP/repos/uploader", pr.FromRepository.Link)
	require.Equal(t, "master", pr.ToBranchLabel)
	require.Equal(t, "https://git.local/projects/UP/repos/uploader/pull-requests/101", pr.SelfLink)
	require.Equal(t, 2, pr.CommentCount)
}

func TestHandleWebhook_CommentAdded(t *testing.T) {
	payload := `{
		"eventKey": "pr:comment:added",
		"pullRequest": {"id": 101, "title": "Add retries to uploader"},
		"comment": {
			"text": "please add a test",
			"author": {
				"displayName": "Bob",
				"links": {"self": [{"href": "https://git.local/users/bob"}]}
			}
		}
	}`

	d := &dispatcherStub{}
	h := newTestRouter(&serviceStub{}, d, &statusStub{})

	rec := doRequest(t, h, http.MethodPost, "/webhook", payload)
	require.Equal(t, http.StatusAccepted, rec.Code)

	require.Len(t, d.events, 1)
	event := d.events[0]
	require.Equal(t, domain.ActionComment, event.Action)
	require.NotNil(t, event.Comment)
	require.Equal(t, "please add a test", event.Comment.Text)
	require.Equal(t, "Bob", event.Comment.Author.Name)
}

func TestHandleWebhook_CommentIgnoredForOtherActions(t *testing.T) {
	payload := `{
		"eventKey": "pr:opened",
		"pullRequest": {"id": 101, "title": "Add retries to uploader"},
		"comment": {"text": "stray", "author": {"displayName": "Bob"}}
	}`

	d := &dispatcherStub{}
	h := newTestRouter(&serviceStub{}, d, &statusStub{})

	rec := doRequest(t, h, http.MethodPost, "/webhook", payload)
	require.Equal(t, http.StatusAccepted, rec.Code)

	require.Len(t, d.events, 1)
	require.Nil(t, d.events[0].Comment)
}

func TestHandleWebhook_ReviewerApproved(t *testing.T) {
	payload := `{
		"eventKey": "pr:reviewer:approved",
		"pullRequest": {"id": 101, "title": "Add retries to uploader"}
	}`

	d := &dispatcherStub{}
	h := newTestRouter(&serviceStub{}, d, &statusStub{})

	rec := doRequest(t, h, http.MethodPost, "/webhook", payload)
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, d.events, 1)
	require.Equal(t, domain.ActionApproved, d.events[0].Action)
}

func TestHandleWebhook_UnknownEventKeyPassesThrough(t *testing.T) {
	payload := `{
		"eventKey": "pr:declined",
		"pullRequest": {"id": 101, "title": "Add retries to uploader"}
	}`

	d := &dispatcherStub{}
	h := newTestRouter(&serviceStub{}, d, &statusStub{})

	rec := doRequest(t, h, http.MethodPost, "/webhook", payload)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp struct {
		Action string `json:"action"`
	}
	decodeBody(t, rec, &resp)
	require.Equal(t, "pr:declined", resp.Action)

	require.Len(t, d.events, 1)
	require.Equal(t, domain.Action("pr:declined"), d.events[0].Action)
}

func TestHandleWebhook_MalformedJSON(t *testing.T) {
	d := &dispatcherStub{}
	h := newTestRouter(&serviceStub{}, d, &statusStub{})

	rec := doRequest(t, h, http.MethodPost, "/webhook", `{"eventKey":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, d.events)
}

func TestHandleWebhook_MissingEventKey(t *testing.T) {
	d := &dispatcherStub{}
	h := newTestRouter(&serviceStub{}, d, &statusStub{})

	rec := doRequest(t, h, http.MethodPost, "/webhook", `{"pullRequest":{"id":101}}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, d.events)
}

func TestHandleWebhook_MissingPullRequest(t *testing.T) {
	d := &dispatcherStub{}
	h := newTestRouter(&serviceStub{}, d, &statusStub{})

	rec := doRequest(t, h, http.MethodPost, "/webhook", `{"eventKey":"pr:opened"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, d.events)
}
