package storage

import (
	"fmt"
	"testing"
	"time"

	"github.com/KHET-1/meowlogger/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestMemory_RetrieveMostRecentFirst(t *testing.T) {
	t.Parallel()

	m := NewMemory(10)
	for i := 0; i < 5; i++ {
		m.Store(model.Entry{
			Timestamp: time.Now(),
			Level:     model.LevelInfo,
			Message:   fmt.Sprintf("msg %d", i),
		})
	}

	got := m.Retrieve(model.Filters{}, 0)
	assert.Len(t, got, 5)
	assert.Equal(t, "msg 4", got[0].Message)
	assert.Equal(t, "msg 0", got[4].Message)
}

func TestMemory_EvictsOldestBeyondCapacity(t *testing.T) {
	t.Parallel()

	m := NewMemory(3)
	for i := 0; i < 7; i++ {
		m.Store(model.Entry{Level: model.LevelInfo, Message: fmt.Sprintf("msg %d", i)})
	}

	got := m.Retrieve(model.Filters{}, 10)
	assert.Len(t, got, 3)
	assert.Equal(t, "msg 6", got[0].Message)
	assert.Equal(t, "msg 4", got[2].Message)

	// The evicted entries are unrecoverable.
	old := m.Retrieve(model.Filters{Search: "msg 0"}, 10)
	assert.Empty(t, old)
}

func TestMemory_LevelFilterIsExact(t *testing.T) {
	t.Parallel()

	m := NewMemory(10)
	m.Store(model.Entry{Level: "ERROR", Message: "boom"})
	m.Store(model.Entry{Level: "INFO", Message: "fine"})

	got := m.Retrieve(model.Filters{Level: "ERROR"}, 10)
	assert.Len(t, got, 1)
	assert.Equal(t, "boom", got[0].Message)

	// Case-sensitive on the normalized level.
	got = m.Retrieve(model.Filters{Level: "error"}, 10)
	assert.Empty(t, got)
}

func TestMemory_SearchFilterIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	m := NewMemory(10)
	m.Store(model.Entry{Level: "INFO", Message: "Disk Almost Full"})
	m.Store(model.Entry{Level: "INFO", Message: "unrelated"})

	got := m.Retrieve(model.Filters{Search: "disk almost"}, 10)
	assert.Len(t, got, 1)
	assert.Equal(t, "Disk Almost Full", got[0].Message)
}

func TestMemory_SourcePathFilter(t *testing.T) {
	t.Parallel()

	m := NewMemory(10)
	m.Store(model.Entry{Level: "INFO", Message: "a", FilePath: "/var/log/app.log"})
	m.Store(model.Entry{Level: "INFO", Message: "b", FilePath: "/var/log/db.log"})

	got := m.Retrieve(model.Filters{SourcePath: "/var/log/db.log"}, 10)
	assert.Len(t, got, 1)
	assert.Equal(t, "b", got[0].Message)
}

func TestMemory_LimitStopsScan(t *testing.T) {
	t.Parallel()

	m := NewMemory(100)
	for i := 0; i < 50; i++ {
		m.Store(model.Entry{Level: "INFO", Message: fmt.Sprintf("msg %d", i)})
	}

	got := m.Retrieve(model.Filters{}, 10)
	assert.Len(t, got, 10)
	assert.Equal(t, "msg 49", got[0].Message)
	assert.Equal(t, "msg 40", got[9].Message)
}

func TestMemory_Clear(t *testing.T) {
	t.Parallel()

	m := NewMemory(10)
	m.Store(model.Entry{Level: "INFO", Message: "a"})
	m.Clear()

	assert.Zero(t, m.Len())
	assert.Empty(t, m.Retrieve(model.Filters{}, 10))
}
