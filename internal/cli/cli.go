package cli

import (
	"errors"
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Status    *StatusCommand
	Track     *TrackCommand
	History   *HistoryCommand
	Top       *TopCommand
	Popular   *PopularCommand
	Stats     *StatsCommand
	Insights  *InsightsCommand
	Export    *ExportCommand
	Recommend *RecommendCommand
	Similar   *SimilarCommand
	Trending  *TrendingCommand
	Sort      *SortCommand
	Prune     *PruneCommand
	Clear     *ClearCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "viewlog"
	parser.LongDescription = "Local view history, engagement scoring and recommendations for a content catalog."

	g := &globals
	cmds := &commands{
		Status:    &StatusCommand{globals: g, version: version},
		Track:     &TrackCommand{globals: g},
		History:   &HistoryCommand{globals: g},
		Top:       &TopCommand{globals: g},
		Popular:   &PopularCommand{globals: g},
		Stats:     &StatsCommand{globals: g},
		Insights:  &InsightsCommand{globals: g},
		Export:    &ExportCommand{globals: g},
		Recommend: &RecommendCommand{globals: g},
		Similar:   &SimilarCommand{globals: g},
		Trending:  &TrendingCommand{globals: g},
		Sort:      &SortCommand{globals: g},
		Prune:     &PruneCommand{globals: g},
		Clear:     &ClearCommand{globals: g},
	}

	parser.AddCommand("status", "Show database and history health", "Show database location and size, stored and active views, and retention settings.", cmds.Status)
	parser.AddCommand("track", "Record a view", "Record a view of an item with optional duration and category.", cmds.Track)
	parser.AddCommand("history", "List recorded views", "List the views inside the retention window, newest first.", cmds.History)
	parser.AddCommand("top", "Show top categories", "Show categories ranked by view count and time spent.", cmds.Top)
	parser.AddCommand("popular", "Show most viewed items", "Show item IDs ranked by number of views.", cmds.Popular)
	parser.AddCommand("stats", "Show engagement statistics", "Show totals, unique items, average duration, top categories and recent activity.", cmds.Stats)
	parser.AddCommand("insights", "Show viewing insights", "Show preferred categories, viewing pattern and favorite time of day.", cmds.Insights)
	parser.AddCommand("export", "Export history and statistics", "Write the view history, statistics and insights as one JSON document.", cmds.Export)
	parser.AddCommand("recommend", "Recommend unseen catalog items", "Rank unseen catalog items by favorite categories and tag matches.", cmds.Recommend)
	parser.AddCommand("similar", "Find similar catalog items", "Rank catalog items by shared tags, category, popularity and creation date.", cmds.Similar)
	parser.AddCommand("trending", "Show trending catalog items", "Rank catalog items by engagement weighted toward recent creation.", cmds.Trending)
	parser.AddCommand("sort", "Sort a catalog by engagement", "Sort catalog items by likes*5 + shares*10 + views.", cmds.Sort)
	parser.AddCommand("prune", "Drop expired views", "Rewrite the stored log without entries outside the retention window.", cmds.Prune)
	parser.AddCommand("clear", "Delete the view history", "Delete the whole view history. Destructive operation with safety prompt.", cmds.Clear)

	return parser, &globals, cmds
}

// Run is the main entry point for the viewlog CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	// Handle --version before parser (go-flags requires a subcommand, but
	// --version is valid without one).
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("viewlog %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		var flagsErr *goflags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == goflags.ErrHelp {
			return nil
		}
		return err
	}

	return nil
}
