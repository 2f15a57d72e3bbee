package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/tdfoco/viewlog/internal/history"
)

// Execute implements the go-flags Commander interface for PruneCommand.
func (c *PruneCommand) Execute(args []string) error {
	var override time.Duration
	if c.OlderThan != "" {
		d, err := parseDuration(c.OlderThan)
		if err != nil {
			return err
		}
		if d < 24*time.Hour {
			return fmt.Errorf("--older-than must be at least 1d")
		}
		if d%(24*time.Hour) != 0 {
			return fmt.Errorf("--older-than must be a whole number of days, got %s", c.OlderThan)
		}
		override = d
	}

	return withEnv(c.globals, c.env, func(e *env) error {
		return c.run(e, override)
	})
}

func (c *PruneCommand) run(e *env, override time.Duration) error {
	store := e.history
	if override > 0 {
		store = history.NewStore(e.backend, history.Options{
			Key:           e.cfg.History.StorageKey,
			MaxEntries:    e.cfg.History.MaxEntries,
			RetentionDays: int(override / (24 * time.Hour)),
			Now:           e.now,
		}, e.logger)
	}

	removed, err := store.Compact(context.Background(), c.DryRun)
	if err != nil {
		return fmt.Errorf("prune: %w", err)
	}

	window := formatDurationHuman(store.Window())
	if c.globals != nil && c.globals.JSON {
		return writeJSON(map[string]any{
			"dry_run":        c.DryRun,
			"removed":        removed,
			"retention_days": int(store.Window() / (24 * time.Hour)),
		})
	}

	if c.DryRun {
		fmt.Printf("[DRY RUN] Would prune %d views older than %s\n", removed, window)
		return nil
	}
	fmt.Printf("Pruned %d views older than %s\n", removed, window)
	return nil
}
