// Package ledger records which stories a viewer has seen and liked.
//
// The ledger is loaded once from a durable slot and rewritten in full after
// every change. Interactions are keyed by the (user, story) pair itself, so
// ids containing any separator character cannot collide.
package ledger

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/abelbrown/stories/internal/notify"
	"github.com/abelbrown/stories/internal/otel"
)

// DefaultKey is the slot key the ledger is stored under.
const DefaultKey = "StoryState"

// formatVersion is bumped when the persisted record changes shape.
const formatVersion = 1

// Slot is a durable key-value slot with last-write-wins semantics.
type Slot interface {
	Get(key string) (value []byte, found bool, err error)
	Set(key string, value []byte) error
}

// Key identifies one story of one user.
type Key struct {
	UserID  string `json:"userID"`
	StoryID string `json:"storyID"`
}

func (k Key) String() string {
	return fmt.Sprintf("%q/%q", k.UserID, k.StoryID)
}

type record struct {
	Version int   `json:"version"`
	Viewed  []Key `json:"viewedIDs"`
	Liked   []Key `json:"likedIDs"`
}

// Ledger is the viewed/liked store. Safe for concurrent use; each mutation
// holds the lock across read, modify and persist.
type Ledger struct {
	mu      sync.Mutex
	slot    Slot
	key     string
	viewed  map[Key]struct{}
	liked   map[Key]struct{}
	log     *otel.Logger
	changes *notify.Signal
}

// New loads the ledger stored under key in slot. A missing, unreadable or
// corrupt record yields an empty ledger, which is persisted immediately as
// the new baseline. log may be nil.
func New(slot Slot, key string, log *otel.Logger) *Ledger {
	if key == "" {
		key = DefaultKey
	}
	l := &Ledger{
		slot:    slot,
		key:     key,
		viewed:  make(map[Key]struct{}),
		liked:   make(map[Key]struct{}),
		log:     log,
		changes: notify.New(),
	}

	rec, reason := l.load()
	if reason != "" {
		l.log.Warn(otel.KindLedgerReset, "ledger", reason)
		l.persist()
		return l
	}
	for _, k := range rec.Viewed {
		l.viewed[k] = struct{}{}
	}
	for _, k := range rec.Liked {
		l.liked[k] = struct{}{}
	}
	l.log.Emit(otel.Event{
		Level: otel.LevelInfo,
		Kind:  otel.KindLedgerLoad,
		Comp:  "ledger",
		Count: len(l.viewed),
		Extra: map[string]any{"liked": len(l.liked)},
	})
	return l
}

// load reads the stored record. A non-empty reason means it must be reset.
func (l *Ledger) load() (record, string) {
	data, found, err := l.slot.Get(l.key)
	if err != nil {
		return record{}, "read failed: " + err.Error()
	}
	if !found {
		return record{}, "no stored ledger"
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return record{}, "corrupt ledger: " + err.Error()
	}
	if rec.Version != formatVersion {
		return record{}, fmt.Sprintf("unsupported ledger version %d", rec.Version)
	}
	return rec, ""
}

// persist writes the full ledger. Caller holds l.mu (or is the constructor).
// Failures are logged; the in-memory state stays authoritative.
func (l *Ledger) persist() {
	rec := record{
		Version: formatVersion,
		Viewed:  sortedKeys(l.viewed),
		Liked:   sortedKeys(l.liked),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		l.log.Error(otel.KindLedgerError, "ledger", err)
		return
	}
	if err := l.slot.Set(l.key, data); err != nil {
		l.log.Error(otel.KindLedgerError, "ledger", err)
	}
}

// MarkViewed records a view. Only a first view changes (and persists)
// anything; it reports whether this call was the first.
func (l *Ledger) MarkViewed(userID, storyID string) bool {
	k := Key{UserID: userID, StoryID: storyID}

	l.mu.Lock()
	if _, ok := l.viewed[k]; ok {
		l.mu.Unlock()
		return false
	}
	l.viewed[k] = struct{}{}
	l.persist()
	l.mu.Unlock()

	l.log.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindLedgerView, Comp: "ledger", UserID: userID, StoryID: storyID})
	l.changes.Notify()
	return true
}

// IsViewed reports whether the story has been viewed.
func (l *Ledger) IsViewed(userID, storyID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.viewed[Key{UserID: userID, StoryID: storyID}]
	return ok
}

// ToggleLike flips the liked state and returns the new state.
func (l *Ledger) ToggleLike(userID, storyID string) bool {
	k := Key{UserID: userID, StoryID: storyID}

	l.mu.Lock()
	_, liked := l.liked[k]
	if liked {
		delete(l.liked, k)
	} else {
		l.liked[k] = struct{}{}
	}
	l.persist()
	l.mu.Unlock()

	kind := otel.KindLedgerLike
	if liked {
		kind = otel.KindLedgerUnlike
	}
	l.log.Emit(otel.Event{Level: otel.LevelInfo, Kind: kind, Comp: "ledger", UserID: userID, StoryID: storyID})
	l.changes.Notify()
	return !liked
}

// IsLiked reports whether the story is liked.
func (l *Ledger) IsLiked(userID, storyID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.liked[Key{UserID: userID, StoryID: storyID}]
	return ok
}

// ClearViewed forgets every view.
func (l *Ledger) ClearViewed() {
	l.mu.Lock()
	n := len(l.viewed)
	l.viewed = make(map[Key]struct{})
	l.persist()
	l.mu.Unlock()

	l.log.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindLedgerClear, Comp: "ledger", Count: n, Msg: "viewed"})
	l.changes.Notify()
}

// ClearLiked forgets every like.
func (l *Ledger) ClearLiked() {
	l.mu.Lock()
	n := len(l.liked)
	l.liked = make(map[Key]struct{})
	l.persist()
	l.mu.Unlock()

	l.log.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindLedgerClear, Comp: "ledger", Count: n, Msg: "liked"})
	l.changes.Notify()
}

// Viewed returns every viewed key, sorted.
func (l *Ledger) Viewed() []Key {
	l.mu.Lock()
	defer l.mu.Unlock()
	return sortedKeys(l.viewed)
}

// Liked returns every liked key, sorted.
func (l *Ledger) Liked() []Key {
	l.mu.Lock()
	defer l.mu.Unlock()
	return sortedKeys(l.liked)
}

// Changes fires after every mutation.
func (l *Ledger) Changes() <-chan struct{} {
	return l.changes.C()
}

func sortedKeys(set map[Key]struct{}) []Key {
	keys := make([]Key, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].UserID != keys[j].UserID {
			return keys[i].UserID < keys[j].UserID
		}
		return keys[i].StoryID < keys[j].StoryID
	})
	return keys
}
