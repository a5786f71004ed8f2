package logging_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-valuation/internal/logging"
)

type stubPoster struct {
	tags []string
	msgs []map[string]any
	err  error
}

func (s *stubPoster) Post(tag string, message any) error {
	s.tags = append(s.tags, tag)
	s.msgs = append(s.msgs, message.(map[string]any))
	return s.err
}

func TestParseLevel(t *testing.T) {
	for raw, want := range map[string]slog.Level{
		"debug": slog.LevelDebug, "WARN": slog.LevelWarn, "error": slog.LevelError,
		"info": slog.LevelInfo, "verbose": slog.LevelInfo, "": slog.LevelInfo,
	} {
		if got := logging.ParseLevel(raw); got != want {
			t.Fatalf("ParseLevel(%q) = %s, want %s", raw, got, want)
		}
	}
}

func TestNewJSONConsole(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn, err := logging.New(logging.Options{Writer: &buf, Level: "debug", Format: "json"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer closeFn()

	logger.Debug("valuation api call completed", slog.String("component", "valuation_client"), slog.Int("status", 200))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "valuation api call completed" || entry["component"] != "valuation_client" {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestConsoleFormats(t *testing.T) {
	for _, format := range []string{"text", "color", "unknown"} {
		var buf bytes.Buffer
		slog.New(logging.Console(logging.Options{Writer: &buf, Format: format})).Info("hello", "k", "v")
		if !strings.Contains(buf.String(), "hello") {
			t.Fatalf("%s: expected message in output, got %q", format, buf.String())
		}
	}

	var buf bytes.Buffer
	slog.New(logging.Console(logging.Options{Writer: &buf, Level: "warn"})).Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered at warn level, got %q", buf.String())
	}
}

func TestFluentHandlerFlattensRecord(t *testing.T) {
	poster := &stubPoster{}
	logger := slog.New(logging.NewFluentHandler(poster, slog.LevelInfo)).
		With(slog.String("component", "valuation_screen")).
		WithGroup("request")

	logger.Debug("not sent")
	logger.Warn("valuation failed", slog.String("kind", "timeout"), slog.Any("error", errors.New("deadline")))

	if diff := cmp.Diff([]string{"warn"}, poster.tags); diff != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", diff)
	}
	want := map[string]any{
		"component":     "valuation_screen",
		"request.kind":  "timeout",
		"request.error": "deadline",
		"level":         "warn",
		"message":       "valuation failed",
	}
	if diff := cmp.Diff(want, poster.msgs[0], cmpopts.IgnoreMapEntries(func(k string, _ any) bool { return k == "timestamp" })); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
	if _, ok := poster.msgs[0]["timestamp"]; !ok {
		t.Fatalf("expected a timestamp")
	}
}

func TestFanoutReachesEveryEnabledHandler(t *testing.T) {
	var buf bytes.Buffer
	poster := &stubPoster{err: errors.New("fluent down")}
	handler := logging.Fanout(
		logging.Console(logging.Options{Writer: &buf, Level: "debug"}),
		logging.NewFluentHandler(poster, slog.LevelError),
		nil,
	)
	logger := slog.New(handler)

	logger.Info("console only")
	logger.Error("both")

	if !strings.Contains(buf.String(), "console only") || !strings.Contains(buf.String(), "both") {
		t.Fatalf("console missed records: %q", buf.String())
	}
	if diff := cmp.Diff([]string{"error"}, poster.tags); diff != "" {
		t.Fatalf("fluent tags mismatch (-want +got):\n%s", diff)
	}
}

func TestNewRequiresFluentTag(t *testing.T) {
	if _, _, err := logging.New(logging.Options{Fluent: &logging.FluentOptions{Host: "localhost", Port: 24224}}); err == nil {
		t.Fatalf("expected an error without a tag prefix")
	}
}
