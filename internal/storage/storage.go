package storage

import "github.com/KHET-1/meowlogger/internal/model"

// DefaultLimit is applied when a retrieval limit is not positive.
const DefaultLimit = 100

// Storage is the backend contract: append one entry, retrieve filtered
// entries most-recent-first.
type Storage interface {
	Store(e model.Entry)
	Retrieve(f model.Filters, limit int) []model.Entry
}

// Clearer is implemented by backends that can drop all stored entries.
type Clearer interface {
	Clear()
}
