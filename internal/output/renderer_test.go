package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/KHET-1/meowlogger/internal/model"
)

func TestJSONRenderer(t *testing.T) {
	var buf bytes.Buffer
	renderer := &JSONRenderer{enc: json.NewEncoder(&buf)}

	entry := model.Entry{
		Timestamp: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		Level:     "ERROR",
		Message:   "something broke",
		FilePath:  "/var/log/app.log",
	}

	if err := renderer.Render(entry); err != nil {
		t.Fatal(err)
	}

	// Parse the output JSON.
	var got model.Entry
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON output: %v\nraw: %s", err, buf.String())
	}

	if got.Level != "ERROR" {
		t.Errorf("expected level ERROR, got %s", got.Level)
	}
	if got.Message != "something broke" {
		t.Errorf("expected message 'something broke', got %q", got.Message)
	}
	if got.FilePath != "/var/log/app.log" {
		t.Errorf("expected file_path '/var/log/app.log', got %q", got.FilePath)
	}
}

func TestTextRendererIncludesMessageAndPatterns(t *testing.T) {
	var buf bytes.Buffer
	renderer := &TextRenderer{w: &buf}

	entry := model.Entry{
		Timestamp: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		Level:     "WARNING",
		Message:   "latency spike",
		Extra:     map[string]any{"patterns": []string{"performance"}},
	}

	if err := renderer.Render(entry); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if !strings.Contains(out, "latency spike") {
		t.Errorf("output missing message: %q", out)
	}
	if !strings.Contains(out, "performance") {
		t.Errorf("output missing pattern tag: %q", out)
	}
}
