package eventlog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/davidleathers/voice-outreach-backend/internal/domain/outcome"
	"github.com/davidleathers/voice-outreach-backend/internal/errors"
)

// FileSink persists events as JSON lines, one append per event. This is the
// default durable store; unlike the in-memory window it is unbounded.
type FileSink struct {
	mu   sync.Mutex
	path string
}

// NewFileSink creates the sink, ensuring the parent directory exists.
func NewFileSink(path string) (*FileSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.NewPersistenceError("EVENT_DIR_CREATE", "failed to create event log directory").WithCause(err)
	}
	return &FileSink{path: path}, nil
}

// Persist appends one event to the file.
func (s *FileSink) Persist(_ context.Context, event outcome.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(event)
	if err != nil {
		return errors.NewPersistenceError("EVENT_ENCODE", "failed to encode event").WithCause(err)
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.NewPersistenceError("EVENT_OPEN", "failed to open event log file").WithCause(err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%s\n", raw); err != nil {
		return errors.NewPersistenceError("EVENT_WRITE", "failed to append event").WithCause(err)
	}
	return nil
}
