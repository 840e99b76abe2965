package logging

import (
	"bytes"
	"encoding/json"
	"testing"
)

// TestSetupJSONRespectsLevel verifies filtered levels and JSON fields.
func TestSetupJSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Setup(&buf, "warn", "json")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	logger.Info().Msg("hidden")
	logger.Warn().Str("file", "bank.txt").Msg("shown")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal(lines[0], &entry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if entry["message"] != "shown" || entry["file"] != "bank.txt" || entry["level"] != "warn" {
		t.Fatalf("unexpected entry %v", entry)
	}
}

// TestSetupPrettyWritesText verifies the console writer is used.
func TestSetupPrettyWritesText(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Setup(&buf, "debug", "pretty")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	logger.Debug().Msg("parsed")
	if !bytes.Contains(buf.Bytes(), []byte("parsed")) || bytes.HasPrefix(buf.Bytes(), []byte("{")) {
		t.Fatalf("expected console output, got %q", buf.String())
	}
}

// TestSetupRejectsUnknownValues verifies bad level and format are errors.
func TestSetupRejectsUnknownValues(t *testing.T) {
	if _, err := Setup(&bytes.Buffer{}, "loud", "json"); err == nil {
		t.Fatalf("expected level error")
	}
	if _, err := Setup(&bytes.Buffer{}, "info", "xml"); err == nil {
		t.Fatalf("expected format error")
	}
}
