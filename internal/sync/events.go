// Package sync provides the offline-first synchronization engine.
package sync

import (
	"sync"
	"time"
)

// EventType identifies a sync lifecycle event.
type EventType string

const (
	// EventSyncStarted fires when a full sync acquires the sync slot.
	EventSyncStarted EventType = "sync.started"
	// EventSyncCompleted fires exactly once per full sync, after every
	// entity pull has finished, regardless of partial failures.
	EventSyncCompleted EventType = "sync.completed"
	// EventActionFailed fires when a queued mutation exhausts its retry
	// ceiling and becomes terminally failed.
	EventActionFailed EventType = "action.failed"
)

// Event is the observable signal produced by the engine. Consumers
// re-query the cache themselves; there is no diff payload.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`

	// ActionID and Error are set for action.failed only.
	ActionID string `json:"action_id,omitempty"`
	Error    string `json:"error,omitempty"`
}

// broadcaster fans events out to subscribers. Publishing never blocks:
// a subscriber that stops draining its channel misses events rather than
// stalling the engine.
type broadcaster struct {
	mu   sync.Mutex
	subs map[<-chan Event]chan Event
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[<-chan Event]chan Event)}
}

func (b *broadcaster) subscribe() <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, 16)
	b.subs[ch] = ch
	return ch
}

func (b *broadcaster) unsubscribe(ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if sub, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(sub)
	}
}

func (b *broadcaster) publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs {
		select {
		case sub <- ev:
		default:
		}
	}
}
