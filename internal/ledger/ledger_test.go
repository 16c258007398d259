package ledger

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/abelbrown/stories/internal/store"
)

// memSlot is an in-memory Slot that counts writes.
type memSlot struct {
	data   map[string][]byte
	sets   int
	getErr error
	setErr error
}

func newMemSlot() *memSlot {
	return &memSlot{data: make(map[string][]byte)}
}

func (m *memSlot) Get(key string) ([]byte, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memSlot) Set(key string, value []byte) error {
	m.sets++
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *memSlot) stored(t *testing.T) record {
	t.Helper()
	var rec record
	if err := json.Unmarshal(m.data[DefaultKey], &rec); err != nil {
		t.Fatalf("stored ledger is not valid JSON: %v", err)
	}
	return rec
}

func TestNewPersistsEmptyBaseline(t *testing.T) {
	slot := newMemSlot()
	l := New(slot, "", nil)

	if slot.sets != 1 {
		t.Errorf("expected baseline write, got %d writes", slot.sets)
	}
	rec := slot.stored(t)
	if rec.Version != formatVersion || len(rec.Viewed) != 0 || len(rec.Liked) != 0 {
		t.Errorf("unexpected baseline %+v", rec)
	}
	if l.IsViewed("u", "s") || l.IsLiked("u", "s") {
		t.Error("empty ledger should report nothing")
	}
}

func TestNewResetsCorruptOrUnreadable(t *testing.T) {
	tests := []struct {
		name string
		slot *memSlot
	}{
		{"corrupt json", &memSlot{data: map[string][]byte{DefaultKey: []byte("{not json")}}},
		{"wrong version", &memSlot{data: map[string][]byte{DefaultKey: []byte(`{"version":99,"viewedIDs":[{"userID":"u","storyID":"s"}]}`)}}},
		{"legacy string keys", &memSlot{data: map[string][]byte{DefaultKey: []byte(`{"viewedIDs":["u_s"],"likedIDs":[]}`)}}},
		{"read error", &memSlot{data: map[string][]byte{}, getErr: errors.New("disk gone")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(tt.slot, DefaultKey, nil)
			if tt.slot.sets != 1 {
				t.Errorf("expected reset to persist once, got %d", tt.slot.sets)
			}
			if len(l.Viewed()) != 0 || len(l.Liked()) != 0 {
				t.Error("reset ledger should be empty")
			}
		})
	}
}

func TestNewLoadsExistingState(t *testing.T) {
	slot := newMemSlot()
	first := New(slot, DefaultKey, nil)
	first.MarkViewed("u1", "s1")
	first.ToggleLike("u1", "s2")

	writes := slot.sets
	second := New(slot, DefaultKey, nil)
	if slot.sets != writes {
		t.Error("loading a valid ledger should not write")
	}
	if !second.IsViewed("u1", "s1") || !second.IsLiked("u1", "s2") {
		t.Error("state did not survive reload")
	}
	if second.IsViewed("u1", "s2") || second.IsLiked("u1", "s1") {
		t.Error("viewed and liked sets must stay disjoint")
	}
}

func TestMarkViewedIsIdempotent(t *testing.T) {
	slot := newMemSlot()
	l := New(slot, DefaultKey, nil)
	base := slot.sets

	if !l.MarkViewed("u1", "s1") {
		t.Error("first MarkViewed should report a change")
	}
	if slot.sets != base+1 {
		t.Fatalf("expected one write, got %d", slot.sets-base)
	}

	if l.MarkViewed("u1", "s1") {
		t.Error("second MarkViewed should report no change")
	}
	if slot.sets != base+1 {
		t.Errorf("second MarkViewed must not persist, got %d writes", slot.sets-base)
	}
	if got := l.Viewed(); len(got) != 1 {
		t.Errorf("expected 1 viewed key, got %v", got)
	}
}

func TestToggleLikeFlips(t *testing.T) {
	slot := newMemSlot()
	l := New(slot, DefaultKey, nil)
	base := slot.sets

	if l.IsLiked("u1", "s1") {
		t.Fatal("should start unliked")
	}
	if !l.ToggleLike("u1", "s1") || !l.IsLiked("u1", "s1") {
		t.Error("first toggle should like")
	}
	if l.ToggleLike("u1", "s1") || l.IsLiked("u1", "s1") {
		t.Error("second toggle should unlike")
	}
	if slot.sets != base+2 {
		t.Errorf("every toggle persists: got %d writes", slot.sets-base)
	}
}

func TestClearAlwaysPersists(t *testing.T) {
	slot := newMemSlot()
	l := New(slot, DefaultKey, nil)
	l.MarkViewed("u1", "s1")
	l.ToggleLike("u1", "s1")
	base := slot.sets

	l.ClearViewed()
	if l.IsViewed("u1", "s1") {
		t.Error("ClearViewed left a view")
	}
	if !l.IsLiked("u1", "s1") {
		t.Error("ClearViewed must not touch likes")
	}

	l.ClearLiked()
	l.ClearLiked()
	if l.IsLiked("u1", "s1") {
		t.Error("ClearLiked left a like")
	}
	if slot.sets != base+3 {
		t.Errorf("expected 3 writes, got %d", slot.sets-base)
	}

	rec := slot.stored(t)
	if len(rec.Viewed) != 0 || len(rec.Liked) != 0 {
		t.Errorf("persisted ledger not cleared: %+v", rec)
	}
}

func TestCompositeKeysDoNotCollide(t *testing.T) {
	l := New(newMemSlot(), DefaultKey, nil)

	l.MarkViewed("a_b", "c")
	if l.IsViewed("a", "b_c") {
		t.Error("ids containing the old separator collided")
	}
	l.ToggleLike("u#1", "s")
	if l.IsLiked("u", "1#s") {
		t.Error("ids containing '#' collided")
	}
}

func TestSetFailureDoesNotPanic(t *testing.T) {
	slot := newMemSlot()
	slot.setErr = errors.New("read-only")
	l := New(slot, DefaultKey, nil)

	l.MarkViewed("u", "s")
	if !l.IsViewed("u", "s") {
		t.Error("in-memory state should stay authoritative on write failure")
	}
}

func TestSortedKeysAndChanges(t *testing.T) {
	l := New(newMemSlot(), DefaultKey, nil)
	l.MarkViewed("u2", "s1")
	l.MarkViewed("u1", "s2")
	l.MarkViewed("u1", "s1")

	want := []Key{{"u1", "s1"}, {"u1", "s2"}, {"u2", "s1"}}
	got := l.Viewed()
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Viewed()[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	select {
	case <-l.Changes():
	default:
		t.Error("expected a change notification")
	}
}

func TestLedgerOnSQLiteStore(t *testing.T) {
	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer st.Close()

	l := New(st, DefaultKey, nil)
	l.MarkViewed("u1", "s1#1")
	l.ToggleLike("u1", "s1#1")

	again := New(st, DefaultKey, nil)
	if !again.IsViewed("u1", "s1#1") || !again.IsLiked("u1", "s1#1") {
		t.Error("ledger not restored from sqlite slot")
	}
}
