// Package feed holds the carousel's growing list of users.
//
// The base feed is finite; scrolling near the end appends another copy of it
// with every user and story id suffixed "#<page>", so ids stay unique across
// pages and ledger keys stay stable.
package feed

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/abelbrown/stories/internal/model"
	"github.com/abelbrown/stories/internal/notify"
	"github.com/abelbrown/stories/internal/otel"
)

// DefaultPrefetchDistance is how close to the end of the list the viewer
// must be before the next page is loaded.
const DefaultPrefetchDistance = 3

// InitialLoadError is the message shown when the first page cannot load.
const InitialLoadError = "Failed to load user stories."

// Loader returns the validated base feed.
type Loader interface {
	LoadUsers(ctx context.Context) ([]model.User, error)
}

// Option configures a Cursor.
type Option func(*Cursor)

// WithPrefetchDistance overrides DefaultPrefetchDistance. Values below 1
// are ignored.
func WithPrefetchDistance(n int) Option {
	return func(c *Cursor) {
		if n >= 1 {
			c.distance = n
		}
	}
}

// Cursor owns the materialized user list and the page counter.
//
// Page loads are guarded by a single in-flight flag: a call that arrives
// while another page is loading returns immediately without queueing.
type Cursor struct {
	loader   Loader
	log      *otel.Logger
	distance int

	mu     sync.RWMutex
	users  []model.User
	errMsg string
	page   int
	gen    uint64 // bumped by LoadInitialPage; stale page loads are discarded

	loading atomic.Bool
	changes *notify.Signal
}

// New creates an empty Cursor. log may be nil.
func New(loader Loader, log *otel.Logger, opts ...Option) *Cursor {
	c := &Cursor{
		loader:   loader,
		log:      log,
		distance: DefaultPrefetchDistance,
		changes:  notify.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LoadInitialPage replaces the list with the base feed (page 0). On failure
// the list is emptied and ErrorMessage is set; calling it again is the retry.
func (c *Cursor) LoadInitialPage(ctx context.Context) {
	users, err := c.loader.LoadUsers(ctx)

	c.mu.Lock()
	c.gen++
	c.page = 0
	if err != nil {
		c.users = nil
		c.errMsg = InitialLoadError
	} else {
		c.users = users
		c.errMsg = ""
	}
	c.mu.Unlock()

	if err != nil {
		c.log.Error(otel.KindFeedLoadError, "feed", err)
	} else {
		c.log.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindFeedLoad, Comp: "feed", Count: len(users)})
	}
	c.changes.Notify()
}

// LoadNextPageIfNeeded appends the next page when currentIndex is within
// the prefetch distance of the end (currentIndex >= len(users)-distance)
// and no page load is in flight. It reports whether a page was appended.
//
// Nothing is loaded while the list is empty; LoadInitialPage owns that
// case. A failed page load is logged and leaves the list, the page counter
// and ErrorMessage untouched.
func (c *Cursor) LoadNextPageIfNeeded(ctx context.Context, currentIndex int) bool {
	c.mu.RLock()
	n, gen, next := len(c.users), c.gen, c.page+1
	c.mu.RUnlock()

	if n == 0 || currentIndex < n-c.distance {
		return false
	}
	if !c.loading.CompareAndSwap(false, true) {
		c.log.Debug(otel.KindFeedPageSkip, "feed", "page load already in flight")
		return false
	}
	defer c.loading.Store(false)

	users, err := c.loader.LoadUsers(ctx)
	if err != nil {
		c.log.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindFeedPageError, Comp: "feed", Page: next, Err: err.Error()})
		return false
	}
	page := Rekey(users, next)

	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		c.log.Debug(otel.KindFeedPageSkip, "feed", "feed reloaded during page load")
		return false
	}
	c.users = append(c.users, page...)
	c.page = next
	total := len(c.users)
	c.mu.Unlock()

	c.log.Emit(otel.Event{
		Level: otel.LevelInfo,
		Kind:  otel.KindFeedPage,
		Comp:  "feed",
		Page:  next,
		Count: len(page),
		Extra: map[string]any{"total": total},
	})
	c.changes.Notify()
	return true
}

// Rekey returns a copy of users with every user id and story id suffixed
// "#<page>". The base feed (page 0) is never re-keyed.
func Rekey(users []model.User, page int) []model.User {
	out := make([]model.User, len(users))
	for i, u := range users {
		ru := u
		ru.ID = pageID(u.ID, page)
		ru.Stories = make([]model.Story, len(u.Stories))
		for j, s := range u.Stories {
			ru.Stories[j] = model.Story{ID: pageID(s.ID, page), ImageURL: s.ImageURL}
		}
		out[i] = ru
	}
	return out
}

func pageID(id string, page int) string {
	return fmt.Sprintf("%s#%d", id, page)
}

// Users returns the current list. The slice is a copy; the users in it
// must be treated as read-only.
func (c *Cursor) Users() []model.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.User(nil), c.users...)
}

// Len returns the number of materialized users.
func (c *Cursor) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.users)
}

// ErrorMessage is non-empty only after a failed initial load.
func (c *Cursor) ErrorMessage() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.errMsg
}

// Page returns the number of the last appended page (0 before any).
func (c *Cursor) Page() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.page
}

// Loading reports whether a page load is in flight.
func (c *Cursor) Loading() bool {
	return c.loading.Load()
}

// Changes fires after every change to the list or the error message.
func (c *Cursor) Changes() <-chan struct{} {
	return c.changes.C()
}
