package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/tdfoco/viewlog/internal/catalog"
	"github.com/tdfoco/viewlog/internal/engagement"
	"github.com/tdfoco/viewlog/internal/recommend"
)

// Execute implements the go-flags Commander interface for RecommendCommand.
func (c *RecommendCommand) Execute(args []string) error {
	if c.Limit < 0 {
		return fmt.Errorf("--limit must not be negative")
	}
	items, err := loadCatalog(c.globals, c.Catalog)
	if err != nil {
		return err
	}
	return withEnv(c.globals, c.env, func(e *env) error {
		return c.run(e, items)
	})
}

func (c *RecommendCommand) run(e *env, items []catalog.Item) error {
	limit := c.Limit
	if limit == 0 {
		limit = e.cfg.Recommend.DefaultLimit
	}
	seed := c.Seed
	if seed == 0 {
		seed = e.cfg.Recommend.Seed
	}

	var exclude map[string]struct{}
	if len(c.Exclude) > 0 {
		exclude = make(map[string]struct{}, len(c.Exclude))
		for _, id := range c.Exclude {
			exclude[id] = struct{}{}
		}
	}

	if c.Strategy == "catalog" {
		kept := make([]catalog.Item, 0, len(items))
		for _, it := range items {
			if _, skip := exclude[it.ID]; !skip {
				kept = append(kept, it)
			}
		}
		ctx := context.Background()
		scored := recommend.Personalized(e.history.History(ctx), kept, limit, e.history.Now())
		return printScored(c.globals, scored, "No recommendations.")
	}

	sel := recommend.NewSelector(e.history, recommend.Options{
		FavoriteCategories: e.cfg.Recommend.FavoriteCategories,
		Jitter:             e.cfg.Recommend.Jitter,
		Rand:               recommend.NewRand(seed),
	}, e.logger)

	scored := sel.RecommendScored(context.Background(), items, limit, exclude)
	return printScored(c.globals, scored, "No recommendations.")
}

// Execute implements the go-flags Commander interface for SimilarCommand.
func (c *SimilarCommand) Execute(args []string) error {
	if c.ID == "" {
		return fmt.Errorf("--id is required for similar command")
	}
	items, err := loadCatalog(c.globals, c.Catalog)
	if err != nil {
		return err
	}
	if _, ok := catalog.Index(items)[c.ID]; !ok {
		return fmt.Errorf("item %q not found in catalog", c.ID)
	}
	return printScored(c.globals, recommend.Similar(c.ID, items, c.Limit), "No similar items.")
}

// Execute implements the go-flags Commander interface for TrendingCommand.
func (c *TrendingCommand) Execute(args []string) error {
	items, err := loadCatalog(c.globals, c.Catalog)
	if err != nil {
		return err
	}
	return withEnv(c.globals, c.env, func(e *env) error {
		return printScored(c.globals, recommend.Trending(items, c.Limit, e.now()), "No items.")
	})
}

// sortedJSON is one row of sort --json output.
type sortedJSON struct {
	Item            catalog.Item `json:"item"`
	EngagementScore int          `json:"engagementScore"`
}

// Execute implements the go-flags Commander interface for SortCommand.
func (c *SortCommand) Execute(args []string) error {
	if c.Limit < 0 {
		return fmt.Errorf("--limit must not be negative")
	}
	items, err := loadCatalog(c.globals, c.Catalog)
	if err != nil {
		return err
	}

	sorted := engagement.Sort(items)
	if c.Limit > 0 && len(sorted) > c.Limit {
		sorted = sorted[:c.Limit]
	}

	if c.globals != nil && c.globals.JSON {
		out := make([]sortedJSON, len(sorted))
		for i, it := range sorted {
			out[i] = sortedJSON{Item: it, EngagementScore: engagement.Score(it)}
		}
		return writeJSON(out)
	}

	if len(sorted) == 0 {
		fmt.Println("No items.")
		return nil
	}
	for i, it := range sorted {
		fmt.Printf("%2d. %-24s %s\n", i+1, it.ID, humanize.Comma(int64(engagement.Score(it))))
	}
	return nil
}

func printScored(globals *GlobalFlags, scored []recommend.Scored, empty string) error {
	if globals != nil && globals.JSON {
		return writeJSON(scored)
	}
	if len(scored) == 0 {
		fmt.Println(empty)
		return nil
	}
	for i, s := range scored {
		label := s.Item.ID
		if s.Item.Title != "" {
			label += " " + s.Item.Title
		}
		category := s.Item.Category
		if category == "" {
			category = "-"
		}
		tags := ""
		if len(s.Item.Tags) > 0 {
			tags = "  [" + strings.Join(s.Item.Tags, ", ") + "]"
		}
		fmt.Printf("%2d. %-32s %-16s %7.2f%s\n", i+1, label, category, s.Score, tags)
	}
	return nil
}
