package model

import "time"

// Canonical severity levels written by the pipeline.
const (
	LevelDebug    = "DEBUG"
	LevelInfo     = "INFO"
	LevelWarning  = "WARNING"
	LevelError    = "ERROR"
	LevelCritical = "CRITICAL"
)

// Entry represents a single log event.
type Entry struct {
	Timestamp  time.Time      `json:"timestamp"`
	Level      string         `json:"level"`                 // uppercase after pipeline processing
	Message    string         `json:"message"`               // raw line text
	FilePath   string         `json:"file_path,omitempty"`   // originating file, watcher entries only
	LineNumber int            `json:"line_number,omitempty"` // reserved, unused by the watcher
	Extra      map[string]any `json:"extra_data,omitempty"`  // processor enrichments, "patterns" reserved
}

// Patterns returns the pattern names detected for this entry, if any.
// Handles both the in-memory []string form and the []any form produced
// by JSON round-tripping through the file backend.
func (e Entry) Patterns() []string {
	if e.Extra == nil {
		return nil
	}
	switch v := e.Extra["patterns"].(type) {
	case []string:
		return v
	case []any:
		names := make([]string, 0, len(v))
		for _, p := range v {
			if s, ok := p.(string); ok {
				names = append(names, s)
			}
		}
		return names
	}
	return nil
}
