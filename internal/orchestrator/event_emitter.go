package orchestrator

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ShayCichocki/codi/internal/logging"
)

// EventEmitter handles event emission for the orchestrator.
// It provides a simple, thread-safe way to emit events to subscribers.
type EventEmitter struct {
	events       chan Event
	droppedCount atomic.Uint64
	logger       *slog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewEventEmitter creates a new EventEmitter with the given buffer size.
func NewEventEmitter(bufferSize int, logger *slog.Logger) *EventEmitter {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &EventEmitter{
		events: make(chan Event, bufferSize),
		logger: logging.OrNop(logger).With("component", "orchestrator"),
	}
}

// Emit sends an event to the events channel.
// If the channel is full, it tries with a timeout before dropping the event.
// Emitting after Close is a no-op.
func (e *EventEmitter) Emit(event Event) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return
	}

	select {
	case e.events <- event:
		return
	default:
	}

	// Give the receiver a chance to drain.
	select {
	case e.events <- event:
		return
	case <-time.After(100 * time.Millisecond):
		count := e.droppedCount.Add(1)
		if count%10 == 1 { // Log every 10th drop to avoid spam
			e.logger.Warn("event channel full, dropped event", "dropped_total", count, "type", event.Type)
		}
	}
}

// DroppedCount returns the total number of events that have been dropped.
func (e *EventEmitter) DroppedCount() uint64 {
	return e.droppedCount.Load()
}

// Events returns a read-only channel of events.
// This is used by subscribers (e.g., TUI) to receive updates.
func (e *EventEmitter) Events() <-chan Event {
	return e.events
}

// Close closes the events channel. It is safe to call more than once.
func (e *EventEmitter) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	close(e.events)
}
