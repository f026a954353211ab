package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/KHET-1/meowlogger/internal/model"
	"github.com/KHET-1/meowlogger/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLog_StoresProcessedEntry(t *testing.T) {
	t.Parallel()

	eng := New(0)
	eng.Log("info", "Connection from 10.0.0.5 took 200ms", nil)

	got := eng.GetLogs(model.Filters{}, 10)
	require.Len(t, got, 1)
	assert.Equal(t, "INFO", got[0].Level)
	assert.Contains(t, got[0].Patterns(), "ip_address")
	assert.Contains(t, got[0].Patterns(), "performance")
}

func TestLog_ExplicitSeverityIsNeverDowngraded(t *testing.T) {
	t.Parallel()

	eng := New(0)

	// Explicit ERROR with a message that parses as DEBUG stays ERROR.
	eng.Log("ERROR", "[DEBUG] tracing detail", nil)
	got := eng.GetLogs(model.Filters{}, 1)
	require.Len(t, got, 1)
	assert.Equal(t, "ERROR", got[0].Level)

	// A low-information default is upgraded by the parser.
	eng.Log("INFO", "[CRITICAL] core meltdown", nil)
	got = eng.GetLogs(model.Filters{}, 1)
	assert.Equal(t, "CRITICAL", got[0].Level)
}

func TestLog_CoercesNonStringMessages(t *testing.T) {
	t.Parallel()

	eng := New(0)
	eng.Log("INFO", nil, nil)
	eng.Log("INFO", 42, nil)
	eng.Log("INFO", struct{ A int }{7}, nil)

	got := eng.GetLogs(model.Filters{}, 10)
	require.Len(t, got, 3)
	assert.Equal(t, "{7}", got[0].Message)
	assert.Equal(t, "42", got[1].Message)
	assert.Equal(t, "", got[2].Message)
}

func TestLog_ExtraFieldsPreserved(t *testing.T) {
	t.Parallel()

	eng := New(0)
	eng.Log("INFO", "billing run done", map[string]any{"run_id": "r-17"})

	got := eng.GetLogs(model.Filters{}, 1)
	require.Len(t, got, 1)
	assert.Equal(t, "r-17", got[0].Extra["run_id"])
}

func TestLog_DoesNotAliasCallerFields(t *testing.T) {
	t.Parallel()

	eng := New(0)
	fields := map[string]any{"run_id": "r-17"}
	eng.Log("INFO", "billing run done", fields)

	// Mutating the caller's map after Log must not affect the stored entry.
	fields["run_id"] = "r-99"
	fields["injected"] = true

	got := eng.GetLogs(model.Filters{}, 1)
	require.Len(t, got, 1)
	assert.Equal(t, "r-17", got[0].Extra["run_id"])
	assert.NotContains(t, got[0].Extra, "injected")
}

func TestStats_FoldCountsLevelsAndPatterns(t *testing.T) {
	t.Parallel()

	eng := New(0)
	eng.Log("INFO", "plain note", nil)
	eng.Log("INFO", "[ERROR] request failed", nil)
	eng.Log("WARNING", "slow query took 900ms", nil)

	snap := eng.Stats()
	assert.Equal(t, int64(3), snap.TotalCount)
	assert.Equal(t, int64(1), snap.CountByLevel["INFO"])
	assert.Equal(t, int64(1), snap.CountByLevel["ERROR"])
	assert.Equal(t, int64(1), snap.CountByLevel["WARNING"])
	assert.Equal(t, int64(1), snap.CountByPattern["performance"])
	assert.Equal(t, int64(1), snap.CountByPattern["error"])
	assert.False(t, snap.StartTime.IsZero())
}

func TestConcurrentLogsNoLostUpdates(t *testing.T) {
	t.Parallel()

	eng := New(0)

	const goroutines = 8
	const perGoroutine = 200

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				eng.Log("INFO", fmt.Sprintf("worker %d message %d", g, i), nil)
			}
		}(g)
	}
	wg.Wait()

	assert.Equal(t, int64(goroutines*perGoroutine), eng.Stats().TotalCount)
}

func TestWatch_InvalidPathReturnsError(t *testing.T) {
	t.Parallel()

	eng := New(0)
	err := eng.Watch(filepath.Join(t.TempDir(), "nope"))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestWatch_FileLineFollowsPipeline(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "app.log")
	require.NoError(t, os.WriteFile(logPath, nil, 0o644))

	eng := New(20 * time.Millisecond)
	require.NoError(t, eng.Watch(logPath))

	entries := eng.Subscribe()
	eng.Start()
	defer eng.Stop()

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("[ERROR] disk full\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	select {
	case e := <-entries:
		assert.Equal(t, "ERROR", e.Level)
		assert.Equal(t, "[ERROR] disk full", e.Message)
		assert.Equal(t, logPath, e.FilePath)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for watched line")
	}

	got := eng.GetLogs(model.Filters{SourcePath: logPath}, 10)
	require.Len(t, got, 1)
	assert.Equal(t, "ERROR", got[0].Level)
}

func TestSetStorage_LastWriteWins(t *testing.T) {
	t.Parallel()

	eng := New(0)
	eng.Log("INFO", "in the default backend", nil)

	replacement := storage.NewMemory(10)
	eng.SetStorage(replacement)

	// Entries are not migrated.
	assert.Empty(t, eng.GetLogs(model.Filters{}, 10))

	eng.Log("INFO", "in the new backend", nil)
	got := eng.GetLogs(model.Filters{}, 10)
	require.Len(t, got, 1)
	assert.Equal(t, "in the new backend", got[0].Message)
}

type panickyProcessor struct{}

func (panickyProcessor) Process(e *model.Entry) map[string]any {
	panic("bad plugin")
}

type tagProcessor struct{}

func (tagProcessor) Process(e *model.Entry) map[string]any {
	return map[string]any{"tagged": true}
}

func TestAddProcessor_FaultyPluginIsIsolated(t *testing.T) {
	t.Parallel()

	eng := New(0)
	eng.AddProcessor(panickyProcessor{})
	eng.AddProcessor(tagProcessor{})

	eng.Log("INFO", "still ingested", nil)

	got := eng.GetLogs(model.Filters{}, 1)
	require.Len(t, got, 1)
	assert.Equal(t, true, got[0].Extra["tagged"])
}

func TestClear_ResetsStatsAndMemoryBackend(t *testing.T) {
	t.Parallel()

	eng := New(0)
	eng.Log("ERROR", "to be cleared", nil)
	require.Equal(t, int64(1), eng.Stats().TotalCount)

	eng.Clear()

	snap := eng.Stats()
	assert.Zero(t, snap.TotalCount)
	assert.Empty(t, snap.CountByLevel)
	assert.Empty(t, eng.GetLogs(model.Filters{}, 10))
	assert.False(t, snap.StartTime.IsZero())
}
