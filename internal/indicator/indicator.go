package indicator

import (
	"sync"
	"time"
)

// Update is a partial indicator change: empty fields keep their previous
// value, so callers set only what they mean to change.
type Update struct {
	Title   string
	Message string
	Color   string
}

// State is the currently displayed indicator.
type State struct {
	Title     string
	Message   string
	Color     string
	UpdatedAt time.Time
}

// Indicator holds the transient delivery status shared between the
// dispatcher and the HTTP status endpoint. The zero value is ready to use.
type Indicator struct {
	mu    sync.Mutex
	state State
}

func (i *Indicator) Set(u Update) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if u.Title != "" {
		i.state.Title = u.Title
	}
	if u.Message != "" {
		i.state.Message = u.Message
	}
	if u.Color != "" {
		i.state.Color = u.Color
	}
	i.state.UpdatedAt = time.Now()
}

func (i *Indicator) Snapshot() State {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state
}
