package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestConsoleHandlerRendersComponentAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "debug", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger = NewComponentLogger(logger, "aggregate")
	logger.Info("cache hit", String(FieldCacheKey, "discover:person:129:2026-08-25"), Int("items", 3))

	line := buf.String()
	if !strings.Contains(line, "INFO aggregate: cache hit") {
		t.Fatalf("unexpected log line: %q", line)
	}
	if !strings.Contains(line, "cache_key=discover:person:129:2026-08-25") {
		t.Fatalf("missing cache_key attr: %q", line)
	}
	if !strings.Contains(line, "items=3") {
		t.Fatalf("missing items attr: %q", line)
	}
}

func TestConsoleHandlerQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Warn("skip title", String("title", "Movie A"), Error(errors.New("no imdb id")))

	line := buf.String()
	if !strings.Contains(line, `title="Movie A"`) {
		t.Fatalf("expected quoted title, got %q", line)
	}
	if !strings.Contains(line, `error="no imdb id"`) {
		t.Fatalf("expected quoted error, got %q", line)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "warn", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("should be dropped")
	logger.Warn("should appear")

	if strings.Contains(buf.String(), "should be dropped") {
		t.Fatal("info record leaked past warn level")
	}
	if !strings.Contains(buf.String(), "should appear") {
		t.Fatal("warn record missing")
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("feed written", Int("items", 12))

	line := buf.String()
	if !strings.Contains(line, `"msg":"feed written"`) {
		t.Fatalf("unexpected json output: %q", line)
	}
	if !strings.Contains(line, `"items":12`) {
		t.Fatalf("missing attr in json output: %q", line)
	}
}

func TestUnsupportedFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
