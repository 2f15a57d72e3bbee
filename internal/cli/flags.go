package cli

import "io"

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	DB      string `long:"db" description:"Override the SQLite database path"`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable verbose output"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// StatusCommand shows database and history health.
type StatusCommand struct {
	globals *GlobalFlags
	version string
	env     *env
}

// TrackCommand records a single view.
type TrackCommand struct {
	Duration float64 `long:"duration" description:"Seconds spent on the item" default:"0"`
	Category string  `long:"category" description:"Category of the viewed item"`
	Args     struct {
		ItemID string `positional-arg-name:"item-id" required:"yes"`
	} `positional-args:"yes"`

	globals *GlobalFlags
	env     *env
}

// HistoryCommand lists the recorded views.
type HistoryCommand struct {
	Limit int  `long:"limit" description:"Show at most N most recent views (0 for all)" default:"20"`
	All   bool `long:"all" description:"Include expired entries still in storage"`

	globals *GlobalFlags
	env     *env
}

// TopCommand lists the top-scoring categories.
type TopCommand struct {
	Limit int `long:"limit" description:"Maximum categories" default:"3"`

	globals *GlobalFlags
	env     *env
}

// PopularCommand lists the most viewed items.
type PopularCommand struct {
	Limit int `long:"limit" description:"Maximum items" default:"10"`

	globals *GlobalFlags
	env     *env
}

// StatsCommand prints engagement statistics.
type StatsCommand struct {
	globals *GlobalFlags
	env     *env
}

// InsightsCommand prints the derived viewing insights.
type InsightsCommand struct {
	globals *GlobalFlags
	env     *env
}

// ExportCommand writes the full export document.
type ExportCommand struct {
	Output string `long:"output" short:"o" description:"Write to file instead of stdout"`

	globals *GlobalFlags
	env     *env
}

// RecommendCommand ranks catalog items for the local viewer.
type RecommendCommand struct {
	Catalog  string   `long:"catalog" description:"Catalog file (.json, .yaml, .yml)"`
	Limit    int      `long:"limit" description:"Maximum recommendations (default from config)"`
	Exclude  []string `long:"exclude" description:"Item ID to leave out (repeatable)"`
	Seed     uint64   `long:"seed" description:"Fix the random source"`
	Strategy string   `long:"strategy" choice:"history" choice:"catalog" default:"history" description:"Rank by recorded view categories (history) or by the catalog entries of viewed items (catalog)"`

	globals *GlobalFlags
	env     *env
}

// SimilarCommand lists items similar to one catalog item.
type SimilarCommand struct {
	Catalog string `long:"catalog" description:"Catalog file (.json, .yaml, .yml)"`
	ID      string `long:"id" description:"Item ID to compare against (required)"`
	Limit   int    `long:"limit" description:"Maximum items" default:"6"`

	globals *GlobalFlags
	env     *env
}

// TrendingCommand ranks catalog items by recent engagement.
type TrendingCommand struct {
	Catalog string `long:"catalog" description:"Catalog file (.json, .yaml, .yml)"`
	Limit   int    `long:"limit" description:"Maximum items" default:"10"`

	globals *GlobalFlags
	env     *env
}

// SortCommand orders a catalog by engagement score.
type SortCommand struct {
	Catalog string `long:"catalog" description:"Catalog file (.json, .yaml, .yml)"`
	Limit   int    `long:"limit" description:"Maximum items (0 for all)" default:"0"`

	globals *GlobalFlags
}

// PruneCommand rewrites the stored log without expired entries.
type PruneCommand struct {
	OlderThan string `long:"older-than" description:"Override retention period (e.g., 30d)"`
	DryRun    bool   `long:"dry-run" description:"Show what would be pruned without deleting"`

	globals *GlobalFlags
	env     *env
}

// ClearCommand deletes the whole view history with safety confirmation.
type ClearCommand struct {
	Force bool `long:"force" description:"Skip safety confirmation prompt"`

	globals *GlobalFlags
	env     *env
	stdin   io.Reader // nil means os.Stdin
}
