package engine

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/KHET-1/meowlogger/internal/hub"
	"github.com/KHET-1/meowlogger/internal/model"
	"github.com/KHET-1/meowlogger/internal/processor"
	"github.com/KHET-1/meowlogger/internal/stats"
	"github.com/KHET-1/meowlogger/internal/storage"
	"github.com/KHET-1/meowlogger/internal/watcher"
)

// ErrInvalidPath is returned by Watch for a path that is neither an
// existing file nor directory.
var ErrInvalidPath = errors.New("path is neither an existing file nor directory")

// Engine wires the watcher, the processor chain, the active storage backend
// and the statistics counters into one ingestion path.
type Engine struct {
	watcher *watcher.FileWatcher
	hub     *hub.Hub
	stats   *stats.Collector

	storeMu sync.Mutex // serializes backend swaps and writes
	storage storage.Storage

	procMu     sync.RWMutex
	processors []processor.Processor
}

// New creates an Engine with the default memory backend and the built-in
// level parser and pattern detector. A non-positive pollInterval uses the
// watcher default.
func New(pollInterval time.Duration) *Engine {
	e := &Engine{
		watcher: watcher.New(pollInterval),
		hub:     hub.New(),
		stats:   stats.NewCollector(),
		storage: storage.NewMemory(0),
		processors: []processor.Processor{
			processor.NewLevelParser(),
			processor.NewPatternDetector(),
		},
	}
	e.watcher.AddHandler(e.onNewLine)
	return e
}

// Watch registers a file or directory with the watcher. Directories are
// scanned recursively for *.log files, once, at call time.
func (e *Engine) Watch(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidPath, path)
	}
	if info.IsDir() {
		e.watcher.WatchDirectory(path, "")
	} else {
		e.watcher.WatchFile(path)
	}
	return nil
}

// Start begins the background watch loop. Idempotent.
func (e *Engine) Start() {
	e.watcher.Start()
}

// Stop halts the watch loop. Idempotent, bounded wait.
func (e *Engine) Stop() {
	e.watcher.Stop()
}

// Log records a message directly. The message is coerced to a string
// representation; nil becomes empty.
func (e *Engine) Log(level string, message any, fields map[string]any) {
	var msg string
	if message != nil {
		msg = fmt.Sprint(message)
	}

	lvl := strings.ToUpper(strings.TrimSpace(level))
	if lvl == "" {
		lvl = model.LevelInfo
	}

	entry := model.Entry{
		Timestamp: time.Now(),
		Level:     lvl,
		Message:   msg,
	}
	if len(fields) > 0 {
		extra := make(map[string]any, len(fields))
		for k, v := range fields {
			extra[k] = v
		}
		entry.Extra = extra
	}
	e.processAndStore(&entry)
}

// GetLogs retrieves stored entries, most recent first.
func (e *Engine) GetLogs(f model.Filters, limit int) []model.Entry {
	e.storeMu.Lock()
	s := e.storage
	e.storeMu.Unlock()
	return s.Retrieve(f, limit)
}

// Stats returns a snapshot of the running counters.
func (e *Engine) Stats() stats.Snapshot {
	return e.stats.Snapshot()
}

// SetStorage atomically replaces the active backend. Entries already stored
// are not migrated; last call wins.
func (e *Engine) SetStorage(s storage.Storage) {
	e.storeMu.Lock()
	e.storage = s
	e.storeMu.Unlock()
}

// AddProcessor appends a processor to the end of the chain.
func (e *Engine) AddProcessor(p processor.Processor) {
	e.procMu.Lock()
	e.processors = append(e.processors, p)
	e.procMu.Unlock()
}

// Clear resets the statistics and empties the active backend when it
// supports clearing.
func (e *Engine) Clear() {
	e.stats.Reset()
	e.storeMu.Lock()
	defer e.storeMu.Unlock()
	if c, ok := e.storage.(storage.Clearer); ok {
		c.Clear()
	}
}

// Subscribe returns a channel receiving every processed entry. Used by the
// live-stream consumers; slow subscribers have entries dropped.
func (e *Engine) Subscribe() <-chan model.Entry {
	return e.hub.Subscribe()
}

// Unsubscribe removes a subscriber previously returned by Subscribe and
// closes its channel.
func (e *Engine) Unsubscribe(ch <-chan model.Entry) {
	e.hub.Unsubscribe(ch)
}

// Dropped returns how many entries were dropped for slow subscribers.
func (e *Engine) Dropped() int64 {
	return e.hub.Dropped()
}

// FileCount returns the number of files being watched.
func (e *Engine) FileCount() int {
	return e.watcher.FileCount()
}

// SetPollInterval adjusts the watcher's poll interval at runtime.
func (e *Engine) SetPollInterval(d time.Duration) {
	e.watcher.SetInterval(d)
}

// onNewLine is the built-in watcher handler: each new line becomes an entry
// defaulted to INFO that follows the same pipeline as direct Log calls.
func (e *Engine) onNewLine(path, line string) {
	entry := model.Entry{
		Timestamp: time.Now(),
		Level:     model.LevelInfo,
		Message:   line,
		FilePath:  path,
	}
	e.processAndStore(&entry)
}

// processAndStore runs the entry through the processor chain, folds it into
// the statistics, stores it, and publishes it to subscribers. The entry is
// never mutated after the store.
func (e *Engine) processAndStore(entry *model.Entry) {
	e.procMu.RLock()
	processors := make([]processor.Processor, len(e.processors))
	copy(processors, e.processors)
	e.procMu.RUnlock()

	for _, p := range processors {
		result := runProcessor(p, entry)
		if result == nil {
			continue
		}
		for k, v := range result {
			if k == "level" {
				// Non-downgrade policy: inferred levels only replace
				// low-information defaults, never an explicit severity.
				if lvl, ok := v.(string); ok &&
					(entry.Level == model.LevelInfo || entry.Level == model.LevelDebug) {
					entry.Level = lvl
				}
				continue
			}
			if entry.Extra == nil {
				entry.Extra = make(map[string]any)
			}
			entry.Extra[k] = v
		}
	}

	e.stats.Record(entry.Level, entry.Patterns())

	e.storeMu.Lock()
	s := e.storage
	s.Store(*entry)
	e.storeMu.Unlock()

	e.hub.Publish(*entry)
}

// runProcessor invokes one processor, isolating panics so a faulty plugin
// cannot halt ingestion for the rest of the chain.
func runProcessor(p processor.Processor, entry *model.Entry) (result map[string]any) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("engine: processor error: %v", r)
			result = nil
		}
	}()
	return p.Process(entry)
}
