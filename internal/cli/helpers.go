package cli

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tdfoco/viewlog/internal/catalog"
	"github.com/tdfoco/viewlog/internal/config"
	"github.com/tdfoco/viewlog/internal/history"
	"github.com/tdfoco/viewlog/internal/logging"
	"github.com/tdfoco/viewlog/internal/scoring"
	"github.com/tdfoco/viewlog/internal/storage"
)

// env is what a command runs against: config, backend and the stores built
// on top. Commands open one from the global flags, tests inject their own.
type env struct {
	cfg     *config.Config
	dbPath  string
	db      *sql.DB // nil when the backend is not SQLite
	backend storage.Backend
	history *history.Store
	scorer  *scoring.Scorer
	logger  zerolog.Logger
	now     func() time.Time
}

// newEnv wires the history store and scorer over backend.
//
//nolint:gocritic // zerolog.Logger is passed by value
func newEnv(cfg *config.Config, backend storage.Backend, logger zerolog.Logger, now func() time.Time) *env {
	if now == nil {
		now = time.Now
	}
	h := history.NewStore(backend, history.Options{
		Key:           cfg.History.StorageKey,
		MaxEntries:    cfg.History.MaxEntries,
		RetentionDays: cfg.History.RetentionDays,
		Now:           now,
	}, logger)

	return &env{
		cfg:     cfg,
		backend: backend,
		history: h,
		scorer:  scoring.NewScorer(h, scoring.Options{RecentDays: cfg.History.RecentDays}),
		logger:  logger,
		now:     now,
	}
}

// openEnv loads the config, opens and migrates the SQLite database, and
// returns a ready env. The caller must Close it.
func openEnv(globals *GlobalFlags) (*env, error) {
	cfg, err := loadConfig(globals)
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg, globals)

	dbPath := globals.DB
	if dbPath == "" {
		dbPath, err = cfg.DatabasePath()
		if err != nil {
			return nil, fmt.Errorf("resolve db path: %w", err)
		}
	} else if dbPath, err = config.ExpandPath(dbPath); err != nil {
		return nil, fmt.Errorf("resolve db path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	backend, db, err := storage.OpenSQLite(dbPath, cfg.Storage.JournalMode)
	if err != nil {
		return nil, err
	}

	logger.Debug().Str("db", dbPath).Str("key", cfg.History.StorageKey).Msg("database opened")

	e := newEnv(cfg, backend, logger, nil)
	e.dbPath = dbPath
	e.db = db
	return e, nil
}

// Close releases the database, if any.
func (e *env) Close() error {
	if c, ok := e.backend.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return err
		}
	}
	if e.db != nil {
		return e.db.Close()
	}
	return nil
}

// withEnv runs fn against injected, or against a freshly opened env.
func withEnv(globals *GlobalFlags, injected *env, fn func(*env) error) error {
	if injected != nil {
		return fn(injected)
	}
	e, err := openEnv(globals)
	if err != nil {
		return err
	}
	defer e.Close()
	return fn(e)
}

func loadConfig(globals *GlobalFlags) (*config.Config, error) {
	if globals == nil || globals.Config == "" {
		cfg, err := config.LoadOrCreate()
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		return cfg, nil
	}

	path, err := config.ExpandPath(globals.Config)
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadOrCreateAt(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, globals *GlobalFlags) zerolog.Logger {
	level := cfg.Logging.Level
	if globals != nil && globals.Verbose {
		level = "debug"
	}
	return logging.New(logging.Config{Level: level, Format: cfg.Logging.Format})
}

// commandLogger logs work done before the config is loaded, such as
// reading a catalog.
func commandLogger(globals *GlobalFlags) zerolog.Logger {
	defaults := config.DefaultConfig().Logging
	if globals != nil && globals.Verbose {
		defaults.Level = "debug"
	}
	return logging.New(logging.Config{Level: defaults.Level, Format: defaults.Format})
}

func loadCatalog(globals *GlobalFlags, path string) ([]catalog.Item, error) {
	if path == "" {
		return nil, fmt.Errorf("--catalog is required")
	}
	items, err := catalog.Load(path, commandLogger(globals))
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return items, nil
}

// writeJSON prints v to stdout as indented JSON.
func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseDuration parses a human-friendly duration string like "30d", "7d", "24h", "2w".
func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("invalid duration: empty string")
	}

	if len(s) < 2 {
		return 0, fmt.Errorf("invalid duration: %q", s)
	}

	suffix := s[len(s)-1]
	numStr := s[:len(s)-1]

	n, err := strconv.Atoi(numStr)
	if err != nil {
		return 0, fmt.Errorf("invalid duration: %q", s)
	}

	switch suffix {
	case 'd':
		return time.Duration(n) * 24 * time.Hour, nil
	case 'h':
		return time.Duration(n) * time.Hour, nil
	case 'w':
		return time.Duration(n) * 7 * 24 * time.Hour, nil
	case 'm':
		return time.Duration(n) * time.Minute, nil
	default:
		return 0, fmt.Errorf("invalid duration: %q (use d, h, w, or m suffix)", s)
	}
}

// formatDurationHuman formats a duration into a human-readable string like "30 days".
func formatDurationHuman(d time.Duration) string {
	days := int(d.Hours() / 24)
	if days > 0 {
		if days == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", days)
	}
	hours := int(d.Hours())
	if hours > 0 {
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	}
	return d.String()
}
