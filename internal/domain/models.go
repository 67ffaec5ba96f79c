package domain

import "time"

type Action string

const (
	ActionComment  Action = "comment"
	ActionCreated  Action = "created"
	ActionApproved Action = "approved"
)

type Actor struct {
	Name string
	Link string
}

type Repository struct {
	Name string
	Link string
}

type PullRequest struct {
	ID             string
	Title          string
	Description    string
	Author         Actor
	CreatedDate    time.Time
	FromRepository Repository
	ToBranchLabel  string
	SelfLink       string
	CommentCount   int
}

type Comment struct {
	Author Actor
	Text   string
}

type Event struct {
	Action      Action
	PullRequest PullRequest
	Comment     *Comment
}

type NotificationConfig struct {
	DesktopEnabled bool
	SlackEnabled   bool
	SlackToken     string
	SlackChannelID string
}

type SnoozeSet map[string]struct{}

type Snooze struct {
	PullRequestID string
	CreatedAt     time.Time
	ExpiresAt     *time.Time
}
