package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abelbrown/stories/internal/config"
)

// eventRecord mirrors otel.Event for JSON decoding.
// We decode from JSONL rather than importing otel to keep this
// subcommand usable even if the event schema evolves.
type eventRecord struct {
	Time      time.Time      `json:"t"`
	Level     string         `json:"level"`
	Kind      string         `json:"kind"`
	Comp      string         `json:"comp"`
	SessionID string         `json:"session_id"`
	DurMs     float64        `json:"dur_ms"`
	Count     int            `json:"count"`
	Page      int            `json:"page"`
	Source    string         `json:"source"`
	UserID    string         `json:"user_id"`
	StoryID   string         `json:"story_id"`
	Err       string         `json:"err"`
	Msg       string         `json:"msg"`
	Extra     map[string]any `json:"extra"`
}

// levelRank returns a numeric rank for filtering (higher = more severe).
func levelRank(level string) int {
	switch level {
	case "info":
		return 1
	case "warn":
		return 2
	case "error":
		return 3
	default:
		return 0
	}
}

type eventFilter struct {
	kind    string
	level   string
	comp    string
	user    string
	session string
}

func (f eventFilter) match(ev eventRecord) bool {
	if f.kind != "" && !strings.HasPrefix(ev.Kind, f.kind) {
		return false
	}
	if f.level != "" && levelRank(ev.Level) < levelRank(f.level) {
		return false
	}
	if f.comp != "" && ev.Comp != f.comp {
		return false
	}
	if f.user != "" && ev.UserID != f.user {
		return false
	}
	if f.session != "" && !strings.HasPrefix(ev.SessionID, f.session) {
		return false
	}
	return true
}

func newEventsCommand() *cobra.Command {
	var (
		filter  eventFilter
		tail    int
		follow  bool
		rawJSON bool
		path    string
	)

	cmd := &cobra.Command{
		Use:         "events",
		Short:       "Show the JSONL diagnostic event log",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				path = config.EventLogPath()
			}
			f, err := os.Open(path)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("event log not found at %s; run the viewer first to generate events", path)
				}
				return err
			}
			defer f.Close()

			out := cmd.OutOrStdout()
			format := func(ev eventRecord, raw []byte) string {
				if rawJSON {
					return string(raw)
				}
				return formatEvent(ev)
			}

			for _, l := range readTailLines(f, tail, filter.match) {
				fmt.Fprintln(out, format(l.ev, l.raw))
			}
			if !follow {
				return nil
			}
			return followEvents(cmd.Context(), f, out, filter.match, format)
		},
	}

	cmd.Flags().IntVarP(&tail, "tail", "n", 50, "Number of recent lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Follow mode (like tail -f)")
	cmd.Flags().StringVar(&filter.kind, "kind", "", "Filter by event kind prefix (e.g. 'ledger')")
	cmd.Flags().StringVar(&filter.level, "level", "", "Minimum level: debug, info, warn, error")
	cmd.Flags().StringVar(&filter.comp, "comp", "", "Filter by component name")
	cmd.Flags().StringVar(&filter.user, "user", "", "Filter by user ID")
	cmd.Flags().StringVar(&filter.session, "session", "", "Filter by session ID prefix")
	cmd.Flags().BoolVar(&rawJSON, "json", false, "Output raw JSON lines")
	cmd.Flags().StringVar(&path, "file", "", "Event log path (default $STORIES_HOME/stories.events.jsonl)")
	return cmd
}

func formatEvent(ev eventRecord) string {
	ts := ev.Time.Format("15:04:05.000")
	lvl := strings.ToUpper(ev.Level)
	if lvl == "" {
		lvl = "?"
	}

	parts := []string{fmt.Sprintf("%s %-5s [%-6s] %-20s", ts, lvl, ev.Comp, ev.Kind)}

	if ev.Msg != "" {
		parts = append(parts, "- "+ev.Msg)
	}
	if ev.DurMs > 0 {
		parts = append(parts, fmt.Sprintf("(%.*fms)", durPrecision(ev.DurMs), ev.DurMs))
	}
	if ev.Count > 0 {
		parts = append(parts, fmt.Sprintf("n=%d", ev.Count))
	}
	if ev.Page > 0 {
		parts = append(parts, fmt.Sprintf("page=%d", ev.Page))
	}
	if ev.Source != "" {
		parts = append(parts, "src="+ev.Source)
	}
	if ev.UserID != "" {
		key := ev.UserID
		if ev.StoryID != "" {
			key += "/" + ev.StoryID
		}
		parts = append(parts, "key="+key)
	}
	if ev.Err != "" {
		parts = append(parts, "err="+ev.Err)
	}

	return strings.Join(parts, " ")
}

// followEvents polls f for appended lines until ctx is done.
func followEvents(ctx context.Context, f *os.File, out io.Writer, match func(eventRecord) bool, format func(eventRecord, []byte) string) error {
	reader := bufio.NewReader(f)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			if err != io.EOF {
				return err
			}
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(100 * time.Millisecond):
			}
			continue
		}
		line = trimLine(line)
		if len(line) == 0 {
			continue
		}
		var ev eventRecord
		if json.Unmarshal(line, &ev) != nil {
			continue
		}
		if match(ev) {
			fmt.Fprintln(out, format(ev, line))
		}
	}
}

type parsedLine struct {
	ev  eventRecord
	raw []byte
}

// readTailLines reads r and returns the last n lines matching the filter.
func readTailLines(r io.Reader, n int, match func(eventRecord) bool) []parsedLine {
	if n <= 0 {
		return nil
	}
	scanner := bufio.NewScanner(r)
	// Allow large lines (some events may have big Extra maps)
	scanner.Buffer(make([]byte, 0, 64*1024), 256*1024)

	ring := make([]parsedLine, 0, n)
	for scanner.Scan() {
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var ev eventRecord
		if json.Unmarshal(raw, &ev) != nil {
			continue
		}
		if !match(ev) {
			continue
		}
		// Make a copy of raw since scanner reuses the buffer
		rawCopy := append([]byte(nil), raw...)

		if len(ring) < n {
			ring = append(ring, parsedLine{ev: ev, raw: rawCopy})
		} else {
			copy(ring, ring[1:])
			ring[n-1] = parsedLine{ev: ev, raw: rawCopy}
		}
	}

	return ring
}

func trimLine(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}

func durPrecision(ms float64) int {
	if ms >= 100 {
		return 0
	}
	if ms >= 1 {
		return 1
	}
	return 2
}
