package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"github.com/tdfoco/viewlog/internal/scoring"
)

// Execute implements the go-flags Commander interface for TopCommand.
func (c *TopCommand) Execute(args []string) error {
	return withEnv(c.globals, c.env, c.run)
}

func (c *TopCommand) run(e *env) error {
	top := e.scorer.TopCategories(context.Background(), c.Limit)
	if c.globals != nil && c.globals.JSON {
		return writeJSON(top)
	}
	if len(top) == 0 {
		fmt.Println("No categorized views recorded.")
		return nil
	}
	printCategories(top)
	return nil
}

// Execute implements the go-flags Commander interface for PopularCommand.
func (c *PopularCommand) Execute(args []string) error {
	return withEnv(c.globals, c.env, c.run)
}

func (c *PopularCommand) run(e *env) error {
	counts := e.scorer.MostViewedCounts(context.Background(), c.Limit)
	if c.globals != nil && c.globals.JSON {
		return writeJSON(counts)
	}
	if len(counts) == 0 {
		fmt.Println("No views recorded.")
		return nil
	}
	for i, ic := range counts {
		fmt.Printf("%2d. %-24s %s\n", i+1, ic.ItemID, pluralViews(ic.Count))
	}
	return nil
}

// Execute implements the go-flags Commander interface for StatsCommand.
func (c *StatsCommand) Execute(args []string) error {
	return withEnv(c.globals, c.env, c.run)
}

func (c *StatsCommand) run(e *env) error {
	stats := e.scorer.EngagementStats(context.Background())
	if c.globals != nil && c.globals.JSON {
		return writeJSON(stats)
	}

	fmt.Println("Engagement")
	fmt.Println("==========")
	fmt.Printf("Total views:   %s\n", humanize.Comma(int64(stats.TotalViews)))
	fmt.Printf("Unique items:  %s\n", humanize.Comma(int64(stats.UniquePhotos)))
	fmt.Printf("Avg duration:  %.1fs\n", stats.AvgDuration)
	fmt.Printf("Recent (%dd):   %s\n", e.cfg.History.RecentDays, humanize.Comma(int64(stats.RecentActivity)))
	if len(stats.TopCategories) > 0 {
		fmt.Println()
		fmt.Println("Top Categories:")
		printCategories(stats.TopCategories)
	}
	return nil
}

// Execute implements the go-flags Commander interface for InsightsCommand.
func (c *InsightsCommand) Execute(args []string) error {
	return withEnv(c.globals, c.env, c.run)
}

func (c *InsightsCommand) run(e *env) error {
	in := e.scorer.Insights(context.Background())
	if c.globals != nil && c.globals.JSON {
		return writeJSON(in)
	}

	preferred := "none yet"
	if len(in.PreferredCategories) > 0 {
		preferred = strings.Join(in.PreferredCategories, ", ")
	}
	fmt.Printf("Preferred:     %s\n", preferred)
	fmt.Printf("Pattern:       %s\n", in.ViewingPattern)
	if in.FavoriteTimeOfDay != "" {
		fmt.Printf("Time of day:   %s\n", in.FavoriteTimeOfDay)
	}
	return nil
}

// Execute implements the go-flags Commander interface for ExportCommand.
func (c *ExportCommand) Execute(args []string) error {
	return withEnv(c.globals, c.env, c.run)
}

func (c *ExportCommand) run(e *env) error {
	data, err := e.scorer.Export(context.Background())
	if err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	data = append(data, '\n')

	if c.Output == "" {
		_, err = os.Stdout.Write(data)
		return err
	}

	if err := os.WriteFile(c.Output, data, 0644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	if c.globals == nil || !c.globals.JSON {
		fmt.Printf("Exported %s to %s\n", humanize.Bytes(uint64(len(data))), c.Output)
	}
	return nil
}

func printCategories(top []scoring.CategoryScore) {
	for i, cs := range top {
		fmt.Printf("%2d. %-20s %8.2f  %s\n", i+1, cs.Category, cs.Score, pluralViews(cs.Count))
	}
}

func pluralViews(n int) string {
	return humanize.Comma(int64(n)) + " " + english.PluralWord(n, "view", "")
}
