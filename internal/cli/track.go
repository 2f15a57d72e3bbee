package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/tdfoco/viewlog/internal/history"
)

// Execute implements the go-flags Commander interface for TrackCommand.
func (c *TrackCommand) Execute(args []string) error {
	if strings.TrimSpace(c.Args.ItemID) == "" {
		return fmt.Errorf("item id is required for track command")
	}
	if c.Duration < 0 {
		return fmt.Errorf("--duration must not be negative")
	}
	return withEnv(c.globals, c.env, c.run)
}

func (c *TrackCommand) run(e *env) error {
	ev, ok := e.history.TrackView(context.Background(), c.Args.ItemID, c.Duration, c.Category)
	if !ok {
		return fmt.Errorf("view of %s was not recorded (run with --verbose for details)", c.Args.ItemID)
	}

	if c.globals != nil && c.globals.JSON {
		return writeJSON(ev)
	}

	category := c.Category
	if category == "" {
		category = "uncategorized"
	}
	fmt.Printf("Tracked %s (%s, %.1fs)\n", ev.ItemID, category, ev.DurationSeconds)
	return nil
}

// Execute implements the go-flags Commander interface for HistoryCommand.
func (c *HistoryCommand) Execute(args []string) error {
	if c.Limit < 0 {
		return fmt.Errorf("--limit must not be negative")
	}
	return withEnv(c.globals, c.env, c.run)
}

func (c *HistoryCommand) run(e *env) error {
	ctx := context.Background()

	var events []history.ViewEvent
	if c.All {
		raw, err := e.history.Raw(ctx)
		if err != nil {
			return fmt.Errorf("read history: %w", err)
		}
		events = raw
	} else {
		events = e.history.History(ctx)
	}

	// Newest first.
	out := make([]history.ViewEvent, 0, len(events))
	for i := len(events) - 1; i >= 0; i-- {
		out = append(out, events[i])
		if c.Limit > 0 && len(out) == c.Limit {
			break
		}
	}

	if c.globals != nil && c.globals.JSON {
		return writeJSON(out)
	}

	if len(out) == 0 {
		fmt.Println("No views recorded.")
		return nil
	}

	now := e.history.Now()
	cutoff := e.history.Cutoff(now).UnixMilli()
	for _, ev := range out {
		category := ev.Category
		if category == "" {
			category = "-"
		}
		line := fmt.Sprintf("%-24s %-16s %7.1fs  %s", ev.ItemID, category, ev.DurationSeconds,
			humanize.RelTime(ev.Time(), now, "ago", "from now"))
		if ev.Timestamp <= cutoff {
			line += "  (expired)"
		}
		fmt.Println(line)
	}
	return nil
}
