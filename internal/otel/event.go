// Package otel provides structured diagnostics for the stories client.
//
// Events are typed structs serialized as JSONL lines. The Logger writes
// events asynchronously via a buffered channel and background drain goroutine.
// An optional RingBuffer provides live in-memory inspection for the debug overlay.
package otel

import (
	"encoding/json"
	"time"
)

// Level defines event severity for filtering.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// EventKind identifies the category of a diagnostic event.
// Dot-delimited: "<subsystem>.<action>".
type EventKind string

const (
	// Ingestion events
	KindFetchStart    EventKind = "fetch.start"
	KindFetchComplete EventKind = "fetch.complete"
	KindFetchError    EventKind = "fetch.error"
	KindDropUser      EventKind = "validate.drop_user"
	KindDropStory     EventKind = "validate.drop_story"
	KindValidated     EventKind = "validate.complete"

	// Feed events
	KindFeedLoad      EventKind = "feed.load"
	KindFeedLoadError EventKind = "feed.load_error"
	KindFeedPage      EventKind = "feed.page"
	KindFeedPageError EventKind = "feed.page_error"
	KindFeedPageSkip  EventKind = "feed.page_skip"

	// Ledger events
	KindLedgerLoad   EventKind = "ledger.load"
	KindLedgerReset  EventKind = "ledger.reset"
	KindLedgerError  EventKind = "ledger.error"
	KindLedgerView   EventKind = "ledger.viewed"
	KindLedgerLike   EventKind = "ledger.liked"
	KindLedgerUnlike EventKind = "ledger.unliked"
	KindLedgerClear  EventKind = "ledger.cleared"

	// Player events
	KindPlayerOpen EventKind = "player.open"
	KindPlayerMove EventKind = "player.move"

	// UI events
	KindKeyPress EventKind = "ui.key"

	// System events
	KindStartup  EventKind = "sys.startup"
	KindShutdown EventKind = "sys.shutdown"
	KindError    EventKind = "sys.error"

	// Trace events
	KindMsgReceived EventKind = "trace.msg_received"
)

// Event is the universal diagnostic record. Every field except Kind and
// Time is optional. Serialized as a single JSONL line.
type Event struct {
	Time      time.Time      `json:"t"`
	Level     Level          `json:"level,omitempty"`
	Kind      EventKind      `json:"kind"`
	Comp      string         `json:"comp,omitempty"`       // component: "feed", "ledger", "player", "ui", "main"
	SessionID string         `json:"session_id,omitempty"` // same for entire app run
	Dur       time.Duration  `json:"-"`                    // not serialized directly
	DurMs     float64        `json:"dur_ms,omitempty"`     // computed from Dur at marshal time
	Count     int            `json:"count,omitempty"`
	Page      int            `json:"page,omitempty"`
	Source    string         `json:"source,omitempty"`
	UserID    string         `json:"user_id,omitempty"`
	StoryID   string         `json:"story_id,omitempty"`
	Err       string         `json:"err,omitempty"`
	Msg       string         `json:"msg,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// MarshalJSON implements json.Marshaler, converting Dur to DurMs.
func (e Event) MarshalJSON() ([]byte, error) {
	type Alias Event
	a := struct {
		Alias
	}{Alias: Alias(e)}
	if e.Dur > 0 {
		a.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(a)
}
