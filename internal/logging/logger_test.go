package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestHelpersBeforeInitAreNoOps(t *testing.T) {
	Logger = nil
	Info("ignored")
	Warn("ignored", "k", 1)
	if WithPrefix("x") != nil {
		t.Error("WithPrefix before init should be nil")
	}
}

func TestInitWriter(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	t.Cleanup(func() { Logger = nil })

	Warn("ledger reset", "reason", "corrupt")
	out := buf.String()
	if !strings.Contains(out, "ledger reset") || !strings.Contains(out, "reason=corrupt") {
		t.Errorf("unexpected log output %q", out)
	}
}

func TestInitCreatesDatedFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	if err := Init(dir); err != nil {
		t.Fatalf("Init: %v", err)
	}
	Close()

	data, err := os.ReadFile(filepath.Join(dir, FileName(time.Now())))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "stories started") || !strings.Contains(string(data), "stories shutting down") {
		t.Errorf("missing lifecycle lines in %q", data)
	}
}
