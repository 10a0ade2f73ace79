package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

// Tests in this file swap the global logger and level, so none run in parallel.

func captureLogger(t *testing.T, h func(*bytes.Buffer) slog.Handler) *bytes.Buffer {
	t.Helper()

	buf := new(bytes.Buffer)
	original := Logger()
	ReplaceLogger(slog.New(h(buf)))
	t.Cleanup(func() {
		ReplaceLogger(original)
		_ = SetLevel("info")
	})
	return buf
}

func TestInfoProducesLogfmtWithTimestamp(t *testing.T) {
	buf := captureLogger(t, func(b *bytes.Buffer) slog.Handler { return newHandler(b) })

	Info(context.Background(), "hello", "oil", "palm")

	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatalf("expected log output, got empty string")
	}
	for _, want := range []string{"ts=", "level=info", "msg=hello", "oil=palm"} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in log line, got %q", want, line)
		}
	}
}

func TestJSONHandlerRenamesKeys(t *testing.T) {
	buf := captureLogger(t, func(b *bytes.Buffer) slog.Handler { return newJSONHandler(b) })

	Warn(nil, "catalog fallback", "path", "catalog.yaml")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode json log line %q: %v", buf.String(), err)
	}
	if entry["level"] != "warn" {
		t.Fatalf("level = %v, want warn", entry["level"])
	}
	if entry["msg"] != "catalog fallback" {
		t.Fatalf("msg = %v", entry["msg"])
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts key in %v", entry)
	}
}

func TestSetLevelFiltersDebug(t *testing.T) {
	buf := captureLogger(t, func(b *bytes.Buffer) slog.Handler { return newHandler(b) })

	if err := SetLevel("error"); err != nil {
		t.Fatalf("SetLevel(error) error = %v", err)
	}
	Debug(context.Background(), "hidden")
	Info(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below error level, got %q", buf.String())
	}

	if err := SetLevel("DEBUG"); err != nil {
		t.Fatalf("SetLevel(DEBUG) error = %v", err)
	}
	Debug(context.Background(), "shown")
	if !strings.Contains(buf.String(), "msg=shown") {
		t.Fatalf("expected debug line, got %q", buf.String())
	}
}

func TestSetLevelRejectsUnknown(t *testing.T) {
	if err := SetLevel("verbose"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestConfigureSelectsFormat(t *testing.T) {
	original := Logger()
	t.Cleanup(func() {
		ReplaceLogger(original)
		_ = SetLevel("info")
	})

	buf := new(bytes.Buffer)
	if err := Configure(Options{Level: "info", Format: "json", Output: buf}); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	Info(context.Background(), "ready")
	if !strings.HasPrefix(strings.TrimSpace(buf.String()), "{") {
		t.Fatalf("expected json output, got %q", buf.String())
	}

	if err := Configure(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
