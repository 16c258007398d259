package otel

import (
	"os"
	"sync/atomic"
)

// traceEnabled is set once at package init from STORIES_TRACE.
var traceEnabled atomic.Bool

func init() {
	traceEnabled.Store(os.Getenv("STORIES_TRACE") != "")
}

// TraceEnabled reports whether STORIES_TRACE is set.
func TraceEnabled() bool {
	return traceEnabled.Load()
}

// setTraceEnabled overrides the flag for tests.
func setTraceEnabled(v bool) {
	traceEnabled.Store(v)
}
