package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/tdfoco/viewlog/internal/config"
	"github.com/tdfoco/viewlog/internal/storage"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// captureOutput captures stdout during fn execution and returns it as a string.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// testClock is a settable clock shared by an env and its test.
type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time { return c.t }

// newMemoryEnv returns an env over an in-memory backend with a fixed clock.
func newMemoryEnv(t *testing.T) (*env, *testClock) {
	t.Helper()
	clock := &testClock{t: testNow}
	return newEnv(config.DefaultConfig(), storage.NewMemoryBackend(), zerolog.Nop(), clock.Now), clock
}

// newSQLiteEnv returns an env over a migrated in-memory SQLite database.
func newSQLiteEnv(t *testing.T) (*env, *testClock) {
	t.Helper()
	backend, db, err := storage.OpenSQLite(":memory:", "memory")
	require.NoError(t, err)

	clock := &testClock{t: testNow}
	e := newEnv(config.DefaultConfig(), backend, zerolog.Nop(), clock.Now)
	e.db = db
	e.dbPath = ":memory:"
	t.Cleanup(func() { e.Close() })
	return e, clock
}

// writeCatalog writes a JSON catalog to a temp file and returns its path.
func writeCatalog(t *testing.T, items any) string {
	t.Helper()
	data, err := json.Marshal(items)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}
