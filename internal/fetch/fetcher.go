// Package fetch reads raw story feed documents from a file or over HTTP and
// turns them into validated users.
//
// A Source only parses the document into raw records; Repository runs the
// Validator on top. Callers distinguish the two terminal failures with
// errors.Is(err, ErrSourceNotFound) and errors.Is(err, ErrInvalidData).
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/abelbrown/stories/internal/model"
)

var (
	// ErrSourceNotFound means the feed document could not be located.
	ErrSourceNotFound = errors.New("story source not found")
	// ErrInvalidData means the feed document is not a JSON array of records.
	ErrInvalidData = errors.New("story source has invalid data")
)

// maxBodyBytes caps how much of an HTTP response is read.
const maxBodyBytes = 8 << 20

// Source exposes the raw records of a feed.
type Source interface {
	FetchRawUsers(ctx context.Context) ([]model.RawUser, error)
	Name() string
}

// File reads a feed document from disk.
type File struct {
	Path string
}

// NewFile creates a File source.
func NewFile(path string) *File {
	return &File{Path: path}
}

// Name returns the file path.
func (f *File) Name() string {
	return f.Path
}

// FetchRawUsers reads and decodes the file.
func (f *File) FetchRawUsers(ctx context.Context) ([]model.RawUser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, f.Path)
		}
		return nil, fmt.Errorf("read %s: %w", f.Path, err)
	}
	return decode(data)
}

// HTTP fetches a feed document with GET. Requests are throttled by a
// token-bucket limiter so rapid paging cannot hammer the origin.
type HTTP struct {
	url     string
	client  *http.Client
	limiter *rate.Limiter
}

// NewHTTP creates an HTTP source with the given client timeout and request
// rate. A non-positive perSecond disables throttling.
func NewHTTP(url string, timeout time.Duration, perSecond float64) *HTTP {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &HTTP{
		url: url,
		client: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Name returns the feed URL.
func (h *HTTP) Name() string {
	return h.url
}

// FetchRawUsers downloads and decodes the feed. 404 and 410 map to
// ErrSourceNotFound; other non-200 statuses are plain errors.
func (h *HTTP) FetchRawUsers(ctx context.Context) ([]model.RawUser, error) {
	if err := h.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "stories/0.1")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusGone:
		return nil, fmt.Errorf("%w: %s (HTTP %d)", ErrSourceNotFound, h.url, resp.StatusCode)
	default:
		return nil, fmt.Errorf("HTTP error: %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return decode(data)
}

func decode(data []byte) ([]model.RawUser, error) {
	raw, err := model.DecodeRawUsers(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	return raw, nil
}
