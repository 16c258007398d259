// Package ui provides the Bubble Tea TUI for the stories client.
package ui

import (
	"time"

	"github.com/abelbrown/stories/internal/model"
)

// UsersLoaded is sent when the initial page has been loaded (or failed).
// Err is the viewer-facing message; empty on success.
type UsersLoaded struct {
	Users []model.User
	Err   string
}

// PageLoaded is sent after a paging attempt. Loaded is false when no page
// was appended (not near the end, already in flight, or the load failed).
type PageLoaded struct {
	Users  []model.User
	Loaded bool
}

// storyTick advances the story timer. seq ties a tick to the timer run
// that scheduled it so ticks from a reset timer are ignored.
type storyTick struct {
	seq int
	at  time.Time
}

// frameMsg drives the carousel scroll spring.
type frameMsg struct{}
