package stats

import (
	"sync"
	"time"
)

// Snapshot is a point-in-time copy of the running counters.
type Snapshot struct {
	TotalCount     int64            `json:"total_count"`
	CountByLevel   map[string]int64 `json:"count_by_level"`
	CountByPattern map[string]int64 `json:"count_by_pattern"`
	StartTime      time.Time        `json:"start_time"`
}

// Collector holds monotonically non-decreasing ingestion counters.
// Counters only go down on an explicit Reset.
type Collector struct {
	mu        sync.RWMutex
	total     int64
	byLevel   map[string]int64
	byPattern map[string]int64
	startTime time.Time
}

func NewCollector() *Collector {
	return &Collector{
		byLevel:   make(map[string]int64),
		byPattern: make(map[string]int64),
		startTime: time.Now(),
	}
}

// Record folds one processed entry into the counters.
func (c *Collector) Record(level string, patterns []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.total++
	c.byLevel[level]++
	for _, p := range patterns {
		c.byPattern[p]++
	}
}

// Snapshot returns copies of the current counters.
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	byLevel := make(map[string]int64, len(c.byLevel))
	for k, v := range c.byLevel {
		byLevel[k] = v
	}
	byPattern := make(map[string]int64, len(c.byPattern))
	for k, v := range c.byPattern {
		byPattern[k] = v
	}

	return Snapshot{
		TotalCount:     c.total,
		CountByLevel:   byLevel,
		CountByPattern: byPattern,
		StartTime:      c.startTime,
	}
}

// Reset zeroes all counters. The start time is preserved.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.total = 0
	c.byLevel = make(map[string]int64)
	c.byPattern = make(map[string]int64)
}
