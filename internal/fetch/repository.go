package fetch

import (
	"context"
	"time"

	"github.com/abelbrown/stories/internal/model"
	"github.com/abelbrown/stories/internal/otel"
)

// Repository loads validated users from a Source.
type Repository struct {
	src Source
	log *otel.Logger
}

// NewRepository wraps src with validation. log may be nil.
func NewRepository(src Source, log *otel.Logger) *Repository {
	return &Repository{src: src, log: log}
}

// LoadUsers fetches the raw feed and validates it. Per-record problems are
// logged and dropped; only ErrSourceNotFound, ErrInvalidData, or a
// transport error fail the call.
func (r *Repository) LoadUsers(ctx context.Context) ([]model.User, error) {
	start := time.Now()
	r.log.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindFetchStart, Comp: "fetch", Source: r.src.Name()})

	raw, err := r.src.FetchRawUsers(ctx)
	if err != nil {
		r.log.Emit(otel.Event{
			Level:  otel.LevelError,
			Kind:   otel.KindFetchError,
			Comp:   "fetch",
			Source: r.src.Name(),
			Err:    err.Error(),
			Dur:    time.Since(start),
		})
		return nil, err
	}

	users := model.Validate(raw, r.log)
	r.log.Emit(otel.Event{
		Level:  otel.LevelInfo,
		Kind:   otel.KindFetchComplete,
		Comp:   "fetch",
		Source: r.src.Name(),
		Count:  len(users),
		Dur:    time.Since(start),
	})
	return users, nil
}
