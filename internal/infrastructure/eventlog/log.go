package eventlog

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/davidleathers/voice-outreach-backend/internal/domain/outcome"
)

// DefaultCapacity is the number of events the in-memory window retains.
const DefaultCapacity = 1000

// Sink receives every appended event for durable storage. Persist is called
// on the append path (write-through), so implementations should be cheap or
// accept the latency.
type Sink interface {
	Persist(ctx context.Context, event outcome.Event) error
}

// Log is the shared append-only event log: a FIFO window of the most recent
// events in memory, written through to a durable sink on every append.
// Appends from concurrent webhook handlers are serialized; the log makes no
// dedup guarantee, so readers must treat it as a multiset.
type Log struct {
	mu       sync.RWMutex
	capacity int
	events   []outcome.Event
	sink     Sink
	logger   *zap.Logger
}

// NewLog creates a log with the given window capacity. sink may be nil for
// tests that only exercise the window.
func NewLog(capacity int, sink Sink, logger *zap.Logger) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Log{
		capacity: capacity,
		sink:     sink,
		logger:   logger,
	}
}

// Append adds the event to the window, evicting the oldest entry once the
// window is full, then writes through to the durable sink. The event stays
// in the window even when the sink fails; the error is returned so the
// caller can surface it.
func (l *Log) Append(ctx context.Context, event outcome.Event) error {
	l.mu.Lock()
	if len(l.events) >= l.capacity {
		l.events = l.events[1:]
	}
	l.events = append(l.events, event)
	l.mu.Unlock()

	if l.sink == nil {
		return nil
	}
	if err := l.sink.Persist(ctx, event); err != nil {
		l.logger.Error("durable event write failed",
			zap.String("provider_call_id", event.ProviderCallID),
			zap.Error(err))
		return err
	}
	return nil
}

// Events returns a copy of the current window, oldest first.
func (l *Log) Events() []outcome.Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]outcome.Event, len(l.events))
	copy(out, l.events)
	return out
}

// Count reports the number of events in the window.
func (l *Log) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}

// Reset clears the in-memory window. The durable sink keeps its history;
// this only exists for test support via the admin endpoint.
func (l *Log) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = nil
}
