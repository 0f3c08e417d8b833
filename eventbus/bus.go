// Package eventbus implements the in-process publish/subscribe fan-out that
// carries workflow progress to WebSocket observers. It is process-wide,
// keyed by session id, with a bounded replay buffer so late-joining
// observers can catch up on everything published before they connected.
package eventbus

import (
	"sync"
	"time"

	"github.com/archadvisor/archadvisor/core"
)

// Event is a single record published on a session's channel. Every event
// carries a type tag and a timestamp; the session id is implied by the
// channel it was published on rather than carried in the struct, matching
// how the bus indexes its internal state.
type Event struct {
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// Listener receives events published on a session's channel. A listener
// that returns an error is treated as dead and removed from the channel;
// delivery to the remaining listeners continues uninterrupted.
type Listener func(Event) error

const defaultHistoryCap = core.DefaultEventHistoryCap

type channel struct {
	mu        sync.Mutex
	listeners map[int]Listener
	nextID    int
	history   []Event
}

// Bus is a process-wide event bus. The zero value is not usable; call New.
type Bus struct {
	mu       sync.Mutex
	channels map[string]*channel
	logger   core.Logger
	histCap  int
}

// New creates an empty Bus. historyCap bounds the FIFO replay buffer kept
// per session; a value <= 0 falls back to the framework default.
func New(logger core.Logger, historyCap int) *Bus {
	if logger == nil {
		logger = &core.NoOpLogger{}
	}
	if historyCap <= 0 {
		historyCap = defaultHistoryCap
	}
	return &Bus{
		channels: make(map[string]*channel),
		logger:   logger,
		histCap:  historyCap,
	}
}

// subscription is returned by Subscribe so callers can Unsubscribe later
// without needing to compare function values (which Go cannot do reliably).
type Subscription struct {
	sessionID string
	id        int
}

func (b *Bus) channelFor(sessionID string) *channel {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch, ok := b.channels[sessionID]
	if !ok {
		ch = &channel{listeners: make(map[int]Listener)}
		b.channels[sessionID] = ch
	}
	return ch
}

// Subscribe registers listener on sessionID's channel and returns a handle
// for Unsubscribe. O(1).
func (b *Bus) Subscribe(sessionID string, listener Listener) Subscription {
	ch := b.channelFor(sessionID)
	ch.mu.Lock()
	defer ch.mu.Unlock()
	id := ch.nextID
	ch.nextID++
	ch.listeners[id] = listener
	return Subscription{sessionID: sessionID, id: id}
}

// Unsubscribe removes a listener previously registered with Subscribe. O(1).
func (b *Bus) Unsubscribe(sub Subscription) {
	b.mu.Lock()
	ch, ok := b.channels[sub.sessionID]
	b.mu.Unlock()
	if !ok {
		return
	}
	ch.mu.Lock()
	delete(ch.listeners, sub.id)
	ch.mu.Unlock()
}

// Publish appends event to sessionID's replay buffer (evicting the oldest
// entry past the cap) then invokes every listener in turn; the order among
// listeners is not defined.
// A listener that errors is removed; the event is still considered
// delivered to the others. Publication is atomic with respect to the
// buffer and listener set for this session: the whole call holds the
// per-channel lock.
func (b *Bus) Publish(sessionID string, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	ch := b.channelFor(sessionID)
	ch.mu.Lock()
	defer ch.mu.Unlock()

	ch.history = append(ch.history, event)
	if len(ch.history) > b.histCap {
		ch.history = ch.history[len(ch.history)-b.histCap:]
	}

	var dead []int
	for id, listener := range ch.listeners {
		if err := listener(event); err != nil {
			b.logger.Warn("event bus listener removed after error", map[string]interface{}{
				"session_id": sessionID,
				"event_type": event.Type,
				"error":      err.Error(),
			})
			dead = append(dead, id)
		}
	}
	for _, id := range dead {
		delete(ch.listeners, id)
	}
}

// GetHistory returns a snapshot copy of the replay buffer for sessionID.
func (b *Bus) GetHistory(sessionID string) []Event {
	b.mu.Lock()
	ch, ok := b.channels[sessionID]
	b.mu.Unlock()
	if !ok {
		return nil
	}
	ch.mu.Lock()
	defer ch.mu.Unlock()
	snapshot := make([]Event, len(ch.history))
	copy(snapshot, ch.history)
	return snapshot
}

// CreateCallback returns a publish-bound callable for use by workflow
// stages, so a stage can emit events without holding a reference to the bus
// or the session id in every call site.
func (b *Bus) CreateCallback(sessionID string) func(eventType string, data map[string]interface{}) {
	return func(eventType string, data map[string]interface{}) {
		b.Publish(sessionID, Event{Type: eventType, Data: data})
	}
}

// Cleanup frees the listener set and replay buffer for sessionID. Call once
// a session reaches a terminal status and no further observers are
// expected to connect.
func (b *Bus) Cleanup(sessionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.channels, sessionID)
}
