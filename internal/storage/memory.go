package storage

import (
	"sync"

	"github.com/KHET-1/meowlogger/internal/model"
)

// DefaultCapacity bounds the in-memory backend when none is configured.
const DefaultCapacity = 10000

// Memory is a fixed-capacity ring buffer backend. Once full, storing a new
// entry evicts the oldest one.
type Memory struct {
	mu    sync.Mutex
	buf   []model.Entry
	head  int // index of the oldest entry
	count int
}

// NewMemory creates a memory backend holding at most capacity entries.
// A non-positive capacity falls back to DefaultCapacity.
func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Memory{buf: make([]model.Entry, capacity)}
}

// Store appends an entry, evicting the oldest once capacity is exceeded.
func (m *Memory) Store(e model.Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.buf[(m.head+m.count)%len(m.buf)] = e
	if m.count < len(m.buf) {
		m.count++
	} else {
		m.head = (m.head + 1) % len(m.buf)
	}
}

// Retrieve scans from most recent to oldest, applying all active filters,
// and stops once limit matches are collected.
func (m *Memory) Retrieve(f model.Filters, limit int) []model.Entry {
	if limit <= 0 {
		limit = DefaultLimit
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var results []model.Entry
	for i := m.count - 1; i >= 0; i-- {
		e := m.buf[(m.head+i)%len(m.buf)]
		if !f.Match(e) {
			continue
		}
		results = append(results, e)
		if len(results) >= limit {
			break
		}
	}
	return results
}

// Clear drops all stored entries.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.head = 0
	m.count = 0
}

// Len returns the number of stored entries.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}
