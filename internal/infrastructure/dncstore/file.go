package dncstore

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/davidleathers/voice-outreach-backend/internal/domain/dnc"
	"github.com/davidleathers/voice-outreach-backend/internal/errors"
)

// FileStore is the default durable do-not-call set: one JSON entry per line,
// appended on every add. External compliance tooling may tail the same file.
type FileStore struct {
	mu     sync.Mutex
	path   string
	index  *MemoryStore
	logger *zap.Logger
}

// NewFileStore opens (or creates) the durable list at path and loads the
// existing entries into the in-memory index.
func NewFileStore(path string, logger *zap.Logger) (*FileStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.NewPersistenceError("DNC_DIR_CREATE", "failed to create do-not-call directory").WithCause(err)
	}

	s := &FileStore{
		path:   path,
		index:  NewMemoryStore(),
		logger: logger,
	}

	if err := s.load(); err != nil {
		return nil, err
	}

	logger.Info("do-not-call file store opened",
		zap.String("path", path),
		zap.Int("entries", s.index.Len()))

	return s, nil
}

func (s *FileStore) load() error {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.NewPersistenceError("DNC_OPEN", "failed to open do-not-call list").WithCause(err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var entry dnc.Entry
		if err := json.Unmarshal(raw, &entry); err != nil {
			// A corrupt line must not take out the whole list.
			s.logger.Warn("skipping malformed do-not-call entry",
				zap.String("path", s.path),
				zap.Int("line", line),
				zap.Error(err))
			continue
		}
		_, _ = s.index.Add(context.Background(), &entry)
	}
	if err := scanner.Err(); err != nil {
		return errors.NewPersistenceError("DNC_READ", "failed to read do-not-call list").WithCause(err)
	}
	return nil
}

// Add appends the entry to the durable file and the index. Idempotent at the
// set level: an already-present number is reported added=false without a
// second durable record.
func (s *FileStore) Add(ctx context.Context, entry *dnc.Entry) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	added, err := s.index.Add(ctx, entry)
	if err != nil || !added {
		return added, err
	}

	if err := s.append(entry); err != nil {
		return false, err
	}
	return true, nil
}

func (s *FileStore) append(entry *dnc.Entry) error {
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.NewPersistenceError("DNC_OPEN", "failed to open do-not-call list for append").WithCause(err)
	}
	defer f.Close()

	raw, err := json.Marshal(entry)
	if err != nil {
		return errors.NewPersistenceError("DNC_ENCODE", "failed to encode do-not-call entry").WithCause(err)
	}

	if _, err := fmt.Fprintf(f, "%s\n", raw); err != nil {
		return errors.NewPersistenceError("DNC_WRITE", "failed to append do-not-call entry").WithCause(err)
	}
	return nil
}

// Contains tests membership by normalized phone number.
func (s *FileStore) Contains(ctx context.Context, phoneNumber string) (bool, error) {
	return s.index.Contains(ctx, phoneNumber)
}

// Size reports the number of entries held.
func (s *FileStore) Size(ctx context.Context) (int64, error) {
	return s.index.Size(ctx)
}

// Len reports the number of entries held.
func (s *FileStore) Len() int {
	return s.index.Len()
}

var _ dnc.Store = (*FileStore)(nil)
