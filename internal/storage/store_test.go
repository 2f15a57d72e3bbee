package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestBackend creates a migrated in-memory SQLiteBackend for testing.
func openTestBackend(t *testing.T) *SQLiteBackend {
	t.Helper()
	backend, db, err := OpenSQLite(":memory:", "wal")
	require.NoError(t, err)
	t.Cleanup(func() {
		backend.Close()
		db.Close()
	})
	return backend
}

// backendContract exercises the Get/Set/Remove semantics every Backend shares.
func backendContract(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := b.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok, "missing key should report not found")

	require.NoError(t, b.Set(ctx, "history", `[{"itemId":"a"}]`))
	v, ok, err := b.Get(ctx, "history")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"itemId":"a"}]`, v)

	require.NoError(t, b.Set(ctx, "history", `[]`))
	v, _, err = b.Get(ctx, "history")
	require.NoError(t, err)
	assert.Equal(t, `[]`, v, "Set should overwrite")

	require.NoError(t, b.Remove(ctx, "history"))
	_, ok, err = b.Get(ctx, "history")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, b.Remove(ctx, "history"), "removing a missing key is not an error")
}

func TestSQLiteBackend_Contract(t *testing.T) {
	backendContract(t, openTestBackend(t))
}

func TestMemoryBackend_Contract(t *testing.T) {
	backendContract(t, NewMemoryBackend())
}

func TestSQLiteBackend_KeysAreIndependent(t *testing.T) {
	b := openTestBackend(t)
	ctx := context.Background()

	require.NoError(t, b.Set(ctx, "a", "1"))
	require.NoError(t, b.Set(ctx, "b", "2"))
	require.NoError(t, b.Remove(ctx, "a"))

	v, ok, err := b.Get(ctx, "b")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2", v)
}

func TestSQLiteBackend_UpdatedAt(t *testing.T) {
	b := openTestBackend(t)
	ctx := context.Background()

	_, ok, err := b.UpdatedAt(ctx, "history")
	require.NoError(t, err)
	assert.False(t, ok)

	before := time.Now().Add(-time.Second)
	require.NoError(t, b.Set(ctx, "history", "[]"))

	ts, ok, err := b.UpdatedAt(ctx, "history")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, ts.Before(before.Truncate(time.Second)))
}

func TestOpenSQLite_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewlog.db")
	ctx := context.Background()

	b1, db1, err := OpenSQLite(path, "wal")
	require.NoError(t, err)
	require.NoError(t, b1.Set(ctx, "history", `[{"itemId":"p1"}]`))
	b1.Close()
	db1.Close()

	b2, db2, err := OpenSQLite(path, "wal")
	require.NoError(t, err)
	defer db2.Close()
	defer b2.Close()

	v, ok, err := b2.Get(ctx, "history")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"itemId":"p1"}]`, v)
}

func TestParseTimestamp(t *testing.T) {
	for _, s := range []string{"2026-01-02T03:04:05Z", "2026-01-02 03:04:05"} {
		ts, err := parseTimestamp(s)
		require.NoError(t, err, s)
		assert.Equal(t, 2026, ts.Year())
	}

	_, err := parseTimestamp("yesterday")
	assert.Error(t, err)
}
