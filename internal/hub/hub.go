package hub

import (
	"log"
	"sync"
	"sync/atomic"

	"github.com/KHET-1/meowlogger/internal/model"
)

const subscriberBuffer = 1024

// Hub broadcasts processed entries to all subscribers. Publishing never
// blocks: a full subscriber channel drops that entry for that subscriber.
type Hub struct {
	mu          sync.RWMutex
	subscribers []chan model.Entry
	dropped     atomic.Int64
}

func New() *Hub {
	return &Hub{}
}

// Subscribe returns a buffered channel that receives a copy of every
// published entry.
func (h *Hub) Subscribe() <-chan model.Entry {
	ch := make(chan model.Entry, subscriberBuffer)
	h.mu.Lock()
	h.subscribers = append(h.subscribers, ch)
	h.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel. Unknown
// channels are ignored.
func (h *Hub) Unsubscribe(ch <-chan model.Entry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, sub := range h.subscribers {
		if (<-chan model.Entry)(sub) == ch {
			h.subscribers = append(h.subscribers[:i], h.subscribers[i+1:]...)
			close(sub)
			return
		}
	}
}

// Publish sends an entry to all subscribers, dropping it for any whose
// buffer is full.
func (h *Hub) Publish(e model.Entry) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subscribers {
		select {
		case ch <- e:
		default:
			n := h.dropped.Add(1)
			log.Printf("hub: dropped entry for slow consumer (total dropped: %d)", n)
		}
	}
}

// Dropped returns the total number of entries dropped due to slow consumers.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}

// Close closes all subscriber channels.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subscribers {
		close(ch)
	}
	h.subscribers = nil
}
