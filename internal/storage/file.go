package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/KHET-1/meowlogger/internal/model"
)

// Defaults for the file backend.
const (
	DefaultMaxSize = 10 * 1024 * 1024 // bytes before rotation
	DefaultBackups = 5                // rotated files kept
)

// File is an append-only backend writing one JSON record per line, with
// numbered rotation once the file grows past maxSize. Write failures are
// logged and swallowed so ingestion keeps running.
type File struct {
	mu      sync.Mutex
	path    string
	maxSize int64
	backups int
}

// NewFile creates a file backend at path. Non-positive maxSize or backups
// fall back to the defaults. The parent directory is created if missing.
func NewFile(path string, maxSize int64, backups int) *File {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if backups <= 0 {
		backups = DefaultBackups
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Printf("storage: cannot ensure log directory for %s: %v", path, err)
		}
	}
	return &File{path: path, maxSize: maxSize, backups: backups}
}

// Store appends the entry as a JSON line, rotating first when the file has
// grown past the size threshold.
func (s *File) Store(e model.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if info, err := os.Stat(s.path); err == nil && info.Size() > s.maxSize {
		s.rotate()
	}

	raw, err := json.Marshal(e)
	if err != nil {
		log.Printf("storage: cannot encode entry: %v", err)
		return
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		log.Printf("storage: cannot open %s: %v", s.path, err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(raw, '\n')); err != nil {
		log.Printf("storage: write to %s failed: %v", s.path, err)
	}
}

// Retrieve reads the tail of the file (an over-read multiple of limit to
// allow for filtered-out records), parses each line independently, and
// scans newest-to-oldest. Corrupt lines are skipped; an unreadable file
// yields an empty result.
func (s *File) Retrieve(f model.Filters, limit int) []model.Entry {
	if limit <= 0 {
		limit = DefaultLimit
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := s.tailLines(limit * 2)
	if err != nil {
		return nil
	}

	var results []model.Entry
	for i := len(lines) - 1; i >= 0; i-- {
		var e model.Entry
		if err := json.Unmarshal([]byte(lines[i]), &e); err != nil {
			// Corrupt or partially written record; skip it.
			continue
		}
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

// tailLines returns up to n trailing lines of the current file.
func (s *File) tailLines(n int) ([]string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ring := make([]string, n)
	count, idx := 0, 0

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % n
		if count < n {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	lines := make([]string, count)
	if count == n {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%n]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// rotate shifts numbered backups up by one, discards the oldest beyond the
// backup count, and renames the current file to ".1". The next append
// implicitly starts a fresh file.
func (s *File) rotate() {
	for i := s.backups - 1; i >= 1; i-- {
		oldName := fmt.Sprintf("%s.%d", s.path, i)
		newName := fmt.Sprintf("%s.%d", s.path, i+1)
		if _, err := os.Stat(oldName); err != nil {
			continue
		}
		if err := os.Remove(newName); err != nil && !os.IsNotExist(err) {
			log.Printf("storage: cannot remove backup %s: %v", newName, err)
		}
		if err := os.Rename(oldName, newName); err != nil {
			log.Printf("storage: cannot rotate %s -> %s: %v", oldName, newName, err)
		}
	}
	if err := os.Rename(s.path, s.path+".1"); err != nil {
		log.Printf("storage: cannot rotate %s: %v", s.path, err)
	}
}
