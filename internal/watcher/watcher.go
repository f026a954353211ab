package watcher

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultPollInterval is how often the watch loop checks files for growth.
const DefaultPollInterval = 100 * time.Millisecond

// DefaultPattern is the glob applied by WatchDirectory when none is given.
const DefaultPattern = "*.log"

// Handler receives each new line observed on a watched file.
type Handler func(path, line string)

// FileWatcher polls a set of files for appended content and dispatches
// every new line to the registered handlers in registration order.
type FileWatcher struct {
	mu       sync.Mutex
	files    map[string]int64 // path -> last consumed offset
	handlers []Handler

	intervalMu sync.RWMutex
	interval   time.Duration

	runMu   sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates a FileWatcher with the given poll interval.
// A non-positive interval falls back to DefaultPollInterval.
func New(interval time.Duration) *FileWatcher {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &FileWatcher{
		files:    make(map[string]int64),
		interval: interval,
	}
}

// AddHandler registers a callback for new lines. All handlers are invoked
// for every line; a panicking handler does not block the others.
func (w *FileWatcher) AddHandler(h Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, h)
}

// WatchFile registers a file, starting from its current end. Pre-existing
// content is deliberately not replayed. No-op when the path does not exist.
func (w *FileWatcher) WatchFile(path string) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, exists := w.files[path]; exists {
		return
	}
	w.files[path] = info.Size()
}

// WatchDirectory registers every file under dir matching pattern
// (recursively, one-time snapshot). Files created later are not picked up.
func (w *FileWatcher) WatchDirectory(dir, pattern string) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return
	}
	matches, err := doublestar.FilepathGlob(filepath.Join(dir, "**", pattern), doublestar.WithFilesOnly())
	if err != nil {
		log.Printf("watcher: failed to expand pattern %q under %s: %v", pattern, dir, err)
		return
	}
	for _, m := range matches {
		w.WatchFile(m)
	}
}

// Paths returns the files currently being watched.
func (w *FileWatcher) Paths() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	paths := make([]string, 0, len(w.files))
	for p := range w.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// FileCount returns the number of watched files.
func (w *FileWatcher) FileCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.files)
}

// Interval returns the current poll interval.
func (w *FileWatcher) Interval() time.Duration {
	w.intervalMu.RLock()
	defer w.intervalMu.RUnlock()
	return w.interval
}

// SetInterval changes the poll interval. Takes effect on the next cycle.
func (w *FileWatcher) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	w.intervalMu.Lock()
	w.interval = d
	w.intervalMu.Unlock()
}

// Start launches the background poll loop. Idempotent.
func (w *FileWatcher) Start() {
	w.runMu.Lock()
	defer w.runMu.Unlock()
	if w.running {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	w.running = true
	w.cancel = cancel
	w.done = make(chan struct{})
	go w.loop(ctx, w.done)
}

// Stop signals the poll loop to exit and waits for it, bounded by twice the
// poll interval. Idempotent. In-flight line processing for the current cycle
// is allowed to complete.
func (w *FileWatcher) Stop() {
	w.runMu.Lock()
	defer w.runMu.Unlock()
	if !w.running {
		return
	}
	w.cancel()
	select {
	case <-w.done:
	case <-time.After(2 * w.Interval()):
		log.Printf("watcher: stop timed out waiting for poll loop")
	}
	w.running = false
}

// loop polls all watched files each cycle until cancelled.
func (w *FileWatcher) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		w.pollOnce()
		select {
		case <-ctx.Done():
			return
		case <-time.After(w.Interval()):
		}
	}
}

// pollOnce checks every watched file for growth and dispatches new lines.
func (w *FileWatcher) pollOnce() {
	w.mu.Lock()
	snapshot := make(map[string]int64, len(w.files))
	for p, off := range w.files {
		snapshot[p] = off
	}
	w.mu.Unlock()

	for path, offset := range snapshot {
		info, err := os.Stat(path)
		if err != nil {
			// File disappeared mid-poll; skip this cycle.
			continue
		}
		size := info.Size()

		if size < offset {
			// Truncated or rotated by an external writer; restart from 0.
			offset = 0
			w.setOffset(path, 0)
		}
		if size == offset {
			continue
		}

		if err := w.readFrom(path, offset, size); err != nil {
			log.Printf("watcher: error reading %s: %v", path, err)
			continue
		}
		w.setOffset(path, size)
	}
}

// readFrom reads [offset, size) of the file, splits it into lines, and
// invokes every handler for each non-empty line. Invalid UTF-8 sequences
// are replaced rather than aborting the scan.
func (w *FileWatcher) readFrom(path string, offset, size int64) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return err
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return err
	}

	text := strings.ToValidUTF8(string(data), "�")
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		w.dispatch(path, line)
	}
	return nil
}

// dispatch invokes all registered handlers in order, isolating panics so one
// faulty handler cannot block delivery to the rest.
func (w *FileWatcher) dispatch(path, line string) {
	w.mu.Lock()
	handlers := make([]Handler, len(w.handlers))
	copy(handlers, w.handlers)
	w.mu.Unlock()

	for _, h := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("watcher: handler error on %s: %v", path, r)
				}
			}()
			h(path, line)
		}()
	}
}

// setOffset records the consumed offset for a file, if still watched.
func (w *FileWatcher) setOffset(path string, offset int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.files[path]; ok {
		w.files[path] = offset
	}
}
