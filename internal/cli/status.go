package cli

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/tdfoco/viewlog/internal/storage"
)

// statusJSON is the JSON output structure for the status command.
type statusJSON struct {
	Version           string `json:"version"`
	DatabasePath      string `json:"database_path,omitempty"`
	DatabaseSizeBytes int64  `json:"database_size_bytes"`
	StorageKey        string `json:"storage_key"`
	StoredViews       int    `json:"stored_views"`
	ActiveViews       int    `json:"active_views"`
	ExpiredViews      int    `json:"expired_views"`
	MaxEntries        int    `json:"max_entries"`
	RetentionDays     int    `json:"retention_days"`
	OldestView        string `json:"oldest_view,omitempty"`
	NewestView        string `json:"newest_view,omitempty"`
	LastUpdated       string `json:"last_updated,omitempty"`
	Unreadable        bool   `json:"unreadable,omitempty"`
}

// Execute implements the go-flags Commander interface for StatusCommand.
func (c *StatusCommand) Execute(args []string) error {
	return withEnv(c.globals, c.env, c.run)
}

func (c *StatusCommand) run(e *env) error {
	ctx := context.Background()
	now := e.history.Now()

	out := statusJSON{
		Version:       c.version,
		DatabasePath:  e.dbPath,
		StorageKey:    e.cfg.History.StorageKey,
		MaxEntries:    e.history.MaxEntries(),
		RetentionDays: int(e.history.Window().Hours() / 24),
	}
	if e.db != nil {
		out.DatabaseSizeBytes = getDatabaseSize(e.db, e.dbPath)
	}

	raw, err := e.history.Raw(ctx)
	if err != nil {
		// An unreadable log reads as empty everywhere else; report it here.
		e.logger.Warn().Err(err).Msg("reading stored history")
		out.Unreadable = true
	}
	active := e.history.History(ctx)
	out.StoredViews = len(raw)
	out.ActiveViews = len(active)
	out.ExpiredViews = len(raw) - len(active)
	if len(active) > 0 {
		out.OldestView = active[0].Time().UTC().Format(time.RFC3339)
		out.NewestView = active[len(active)-1].Time().UTC().Format(time.RFC3339)
	}

	var updated time.Time
	if b, ok := e.backend.(*storage.SQLiteBackend); ok {
		ts, found, err := b.UpdatedAt(ctx, e.cfg.History.StorageKey)
		if err != nil {
			return fmt.Errorf("read last update: %w", err)
		}
		if found {
			updated = ts
			out.LastUpdated = ts.UTC().Format(time.RFC3339)
		}
	}

	if c.globals != nil && c.globals.JSON {
		return writeJSON(out)
	}

	fmt.Println("viewlog Status")
	fmt.Println("==============")
	fmt.Printf("Version:       %s\n", c.version)
	if out.DatabasePath != "" {
		fmt.Printf("Database:      %s (%s)\n", out.DatabasePath, humanize.Bytes(uint64(out.DatabaseSizeBytes)))
	}
	fmt.Printf("Storage key:   %s\n", out.StorageKey)
	fmt.Printf("Views:         %s active, %s stored (cap %s)\n",
		humanize.Comma(int64(out.ActiveViews)), humanize.Comma(int64(out.StoredViews)), humanize.Comma(int64(out.MaxEntries)))
	if out.ExpiredViews > 0 {
		fmt.Printf("Expired:       %s (run prune to drop)\n", humanize.Comma(int64(out.ExpiredViews)))
	}
	if len(active) > 0 {
		fmt.Printf("Oldest:        %s\n", humanize.RelTime(active[0].Time(), now, "ago", "from now"))
		fmt.Printf("Newest:        %s\n", humanize.RelTime(active[len(active)-1].Time(), now, "ago", "from now"))
	}
	if !updated.IsZero() {
		fmt.Printf("Last write:    %s\n", updated.Local().Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("Retention:     %s\n", formatDurationHuman(e.history.Window()))
	if out.Unreadable {
		fmt.Println()
		fmt.Println("Stored history could not be read. Run with --verbose for details.")
	}

	return nil
}

// getDatabaseSize returns the database file size in bytes.
// For on-disk databases, it uses os.Stat. For in-memory databases,
// it queries page_count * page_size.
func getDatabaseSize(db *sql.DB, dbPath string) int64 {
	if info, err := os.Stat(dbPath); err == nil {
		return info.Size()
	}

	var pageCount, pageSize int64
	if err := db.QueryRow("PRAGMA page_count").Scan(&pageCount); err != nil {
		return 0
	}
	if err := db.QueryRow("PRAGMA page_size").Scan(&pageSize); err != nil {
		return 0
	}
	return pageCount * pageSize
}
