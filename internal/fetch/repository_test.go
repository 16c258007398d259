package fetch

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/abelbrown/stories/internal/otel"
)

func TestRepositoryLoadUsersValidates(t *testing.T) {
	var buf bytes.Buffer
	log := otel.NewLogger(&buf)
	repo := NewRepository(NewFile(writeFeed(t, sampleFeed)), log)

	users, err := repo.LoadUsers(context.Background())
	log.Close()
	if err != nil {
		t.Fatalf("LoadUsers: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if users[0].ID != "u1" || len(users[0].Stories) != 2 || users[1].ID != "u2" {
		t.Errorf("unexpected users: %+v", users)
	}

	out := buf.String()
	for _, kind := range []string{"fetch.start", "validate.drop_user", "validate.complete", "fetch.complete"} {
		if !strings.Contains(out, `"kind":"`+kind+`"`) {
			t.Errorf("expected %s event in log:\n%s", kind, out)
		}
	}
}

func TestRepositoryPropagatesTypedErrors(t *testing.T) {
	repo := NewRepository(NewFile(filepath.Join(t.TempDir(), "nope.json")), nil)
	if _, err := repo.LoadUsers(context.Background()); !errors.Is(err, ErrSourceNotFound) {
		t.Errorf("expected ErrSourceNotFound, got %v", err)
	}

	repo = NewRepository(NewFile(writeFeed(t, `{}`)), nil)
	if _, err := repo.LoadUsers(context.Background()); !errors.Is(err, ErrInvalidData) {
		t.Errorf("expected ErrInvalidData, got %v", err)
	}
}
