package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]log.Level{
		"":        log.InfoLevel,
		"trace":   log.DebugLevel,
		"DEBUG":   log.DebugLevel,
		" warn ":  log.WarnLevel,
		"warning": log.WarnLevel,
		"error":   log.ErrorLevel,
	}
	for raw, want := range cases {
		got, err := ParseLevel(raw)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", raw, err)
		}
		if got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", raw, got, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestNewHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "warn", Output: &buf})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown", "field", "name")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info message should be filtered: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "field=name") {
		t.Fatalf("expected warn message with key/value: %q", out)
	}
}

func TestNewJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "debug", JSON: true, Output: &buf})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	logger.Debug("saved", "template", "contact")

	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &record); err != nil {
		t.Fatalf("decode json log line %q: %v", buf.String(), err)
	}
	if record["msg"] != "saved" || record["template"] != "contact" {
		t.Fatalf("unexpected record %v", record)
	}
}
