package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis"
)

func newTestRedis(t *testing.T) (*RedisSlot, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(mr.Close)

	rs := NewRedisSlot(mr.Addr(), "stories:")
	t.Cleanup(func() { rs.Close() })
	return rs, mr
}

func TestRedisSlotPing(t *testing.T) {
	rs, _ := newTestRedis(t)
	if err := rs.Ping(context.Background()); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
}

func TestRedisSlotSetGet(t *testing.T) {
	rs, mr := newTestRedis(t)

	if _, found, err := rs.Get("StoryState"); err != nil || found {
		t.Fatalf("missing key: found=%v err=%v", found, err)
	}

	if err := rs.Set("StoryState", []byte(`{"version":1}`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	raw, err := mr.Get("stories:StoryState")
	if err != nil {
		t.Fatalf("key not stored with prefix: %v", err)
	}
	if raw != `{"version":1}` {
		t.Errorf("stored %q", raw)
	}

	val, found, err := rs.Get("StoryState")
	if err != nil || !found || string(val) != `{"version":1}` {
		t.Errorf("Get: val=%q found=%v err=%v", val, found, err)
	}
}

func TestRedisSlotDelete(t *testing.T) {
	rs, mr := newTestRedis(t)

	rs.Set("k", []byte("v"))
	if err := rs.Delete("k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if mr.Exists("stories:k") {
		t.Error("key should be deleted")
	}
}

func TestRedisSlotUnavailable(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatal(err)
	}
	rs := NewRedisSlot(mr.Addr(), "stories:")
	defer rs.Close()
	mr.Close()

	if _, _, err := rs.Get("k"); err == nil {
		t.Error("Get should fail when redis is down")
	}
	if err := rs.Set("k", []byte("v")); err == nil {
		t.Error("Set should fail when redis is down")
	}
}
