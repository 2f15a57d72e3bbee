package scoring

import (
	"context"
	"time"

	"github.com/goccy/go-json"

	"github.com/tdfoco/viewlog/internal/history"
)

// HistoryReader is the read side of history.Store.
type HistoryReader interface {
	History(ctx context.Context) []history.ViewEvent
	Now() time.Time
}

// Options configures a Scorer.
type Options struct {
	// RecentDays is the window for EngagementStats.RecentActivity. Default 7.
	RecentDays int
	// Location buckets hours for insights. Default time.Local.
	Location *time.Location
}

// Scorer reads the current history on every call; nothing is cached.
type Scorer struct {
	history HistoryReader
	recent  time.Duration
	loc     *time.Location
}

// NewScorer returns a Scorer over h. Zero Options fields take the defaults.
func NewScorer(h HistoryReader, opts Options) *Scorer {
	if opts.RecentDays <= 0 {
		opts.RecentDays = 7
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Scorer{
		history: h,
		recent:  time.Duration(opts.RecentDays) * 24 * time.Hour,
		loc:     opts.Location,
	}
}

// TopCategories ranks the categories of the current history by
// count * ln(1 + avgDuration).
func (s *Scorer) TopCategories(ctx context.Context, limit int) []CategoryScore {
	return TopCategories(s.history.History(ctx), limit)
}

// MostViewed returns up to limit item IDs, most viewed first.
func (s *Scorer) MostViewed(ctx context.Context, limit int) []string {
	return MostViewed(s.history.History(ctx), limit)
}

// MostViewedCounts is MostViewed with the view counts attached.
func (s *Scorer) MostViewedCounts(ctx context.Context, limit int) []ItemCount {
	return MostViewedCounts(s.history.History(ctx), limit)
}

// AverageDuration returns the mean view duration in seconds, or 0 for an empty history.
func (s *Scorer) AverageDuration(ctx context.Context) float64 {
	return AverageDuration(s.history.History(ctx))
}

// EngagementStats summarizes the current history. RecentActivity counts
// views inside the configured recent window.
func (s *Scorer) EngagementStats(ctx context.Context) EngagementStats {
	return Stats(s.history.History(ctx), s.history.Now(), s.recent)
}

// Insights derives preferences, viewing pattern and favorite time of day.
func (s *Scorer) Insights(ctx context.Context) Insights {
	events := s.history.History(ctx)
	stats := Stats(events, s.history.Now(), s.recent)
	return InsightsFor(stats, events, s.loc)
}

// ExportDocument is the portable dump of the history and what it implies.
type ExportDocument struct {
	ExportDate  time.Time           `json:"exportDate"`
	ViewHistory []history.ViewEvent `json:"viewHistory"`
	Statistics  EngagementStats     `json:"statistics"`
	Insights    Insights            `json:"insights"`
}

// Snapshot assembles an ExportDocument from a single history read.
func (s *Scorer) Snapshot(ctx context.Context) ExportDocument {
	events := s.history.History(ctx)
	now := s.history.Now()
	stats := Stats(events, now, s.recent)

	return ExportDocument{
		ExportDate:  now.UTC(),
		ViewHistory: events,
		Statistics:  stats,
		Insights:    InsightsFor(stats, events, s.loc),
	}
}

// Export returns Snapshot as indented JSON.
func (s *Scorer) Export(ctx context.Context) ([]byte, error) {
	return json.MarshalIndent(s.Snapshot(ctx), "", "  ")
}
