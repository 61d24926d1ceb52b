package dncstore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidleathers/voice-outreach-backend/internal/domain/dnc"
)

func mustEntry(t *testing.T, phone string) *dnc.Entry {
	t.Helper()
	entry, err := dnc.NewEntry(phone, "caller pressed 2", "call-src")
	require.NoError(t, err)
	return entry
}

func TestFileStore_AddAndContains(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "do_not_call.jsonl")

	store, err := NewFileStore(path, nil)
	require.NoError(t, err)

	added, err := store.Add(ctx, mustEntry(t, "+15551234567"))
	require.NoError(t, err)
	assert.True(t, added)

	listed, err := store.Contains(ctx, "+15551234567")
	require.NoError(t, err)
	assert.True(t, listed)

	listed, err = store.Contains(ctx, "+15559999999")
	require.NoError(t, err)
	assert.False(t, listed)
}

func TestFileStore_AddIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "do_not_call.jsonl")

	store, err := NewFileStore(path, nil)
	require.NoError(t, err)

	added, err := store.Add(ctx, mustEntry(t, "+15551234567"))
	require.NoError(t, err)
	assert.True(t, added)

	added, err = store.Add(ctx, mustEntry(t, "+15551234567"))
	require.NoError(t, err)
	assert.False(t, added)

	// A duplicate add must not write a second durable record.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(raw)), "\n"), 1)
	assert.Equal(t, 1, store.Len())
}

func TestFileStore_ReloadsExistingEntries(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "do_not_call.jsonl")

	store, err := NewFileStore(path, nil)
	require.NoError(t, err)
	_, err = store.Add(ctx, mustEntry(t, "+15551234567"))
	require.NoError(t, err)
	_, err = store.Add(ctx, mustEntry(t, "+15557654321"))
	require.NoError(t, err)

	reopened, err := NewFileStore(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, reopened.Len())

	listed, err := reopened.Contains(ctx, "+15557654321")
	require.NoError(t, err)
	assert.True(t, listed)
}

func TestFileStore_SkipsCorruptLines(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "do_not_call.jsonl")

	store, err := NewFileStore(path, nil)
	require.NoError(t, err)
	_, err = store.Add(ctx, mustEntry(t, "+15551234567"))
	require.NoError(t, err)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("{not json\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	_, err = store.Add(ctx, mustEntry(t, "+15557654321"))
	require.NoError(t, err)

	reopened, err := NewFileStore(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, reopened.Len())
}

func TestFileStore_MissingFileStartsEmpty(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "nested", "dnc.jsonl"), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, store.Len())
}
