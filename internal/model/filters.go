package model

import "strings"

// Filters is the fixed predicate set applied during retrieval.
// Zero-valued fields are not applied.
type Filters struct {
	Level      string `json:"level,omitempty"`       // exact match on the normalized level
	Search     string `json:"search,omitempty"`      // case-insensitive substring of the message
	SourcePath string `json:"source_path,omitempty"` // exact match on the originating file path
}

// Match reports whether the entry passes every active filter.
func (f Filters) Match(e Entry) bool {
	if f.Level != "" && e.Level != f.Level {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(e.Message), strings.ToLower(f.Search)) {
		return false
	}
	if f.SourcePath != "" && e.FilePath != f.SourcePath {
		return false
	}
	return true
}
