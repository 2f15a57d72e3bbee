package scoring

import (
	"time"

	"github.com/tdfoco/viewlog/internal/history"
)

// ViewingPattern classifies how heavily the history is used.
type ViewingPattern string

const (
	PatternCasual    ViewingPattern = "casual"
	PatternEngaged   ViewingPattern = "engaged"
	PatternPowerUser ViewingPattern = "power_user"
)

// TimeOfDay buckets the local hour of a view.
type TimeOfDay string

const (
	Morning   TimeOfDay = "morning"
	Afternoon TimeOfDay = "afternoon"
	Evening   TimeOfDay = "evening"
)

// Insights describes viewer preferences derived from the history.
type Insights struct {
	PreferredCategories []string       `json:"preferredCategories"`
	ViewingPattern      ViewingPattern `json:"viewingPattern"`
	FavoriteTimeOfDay   TimeOfDay      `json:"favoriteTimeOfDay,omitempty"`
}

// Pattern classifies stats: more than 50 views averaging over 10s is a
// power user, more than 20 views or over 5s average is engaged.
func Pattern(stats EngagementStats) ViewingPattern {
	switch {
	case stats.TotalViews > 50 && stats.AvgDuration > 10:
		return PatternPowerUser
	case stats.TotalViews > 20 || stats.AvgDuration > 5:
		return PatternEngaged
	default:
		return PatternCasual
	}
}

// FavoriteTimeOfDay returns the bucket of the hour with the most views in
// loc, or "" for an empty history. Ties go to the hour seen first.
func FavoriteTimeOfDay(events []history.ViewEvent, loc *time.Location) TimeOfDay {
	if len(events) == 0 {
		return ""
	}
	if loc == nil {
		loc = time.Local
	}

	var counts [24]int
	var firstSeen [24]int
	for i := range firstSeen {
		firstSeen[i] = -1
	}
	for i, e := range events {
		h := e.Time().In(loc).Hour()
		if firstSeen[h] < 0 {
			firstSeen[h] = i
		}
		counts[h]++
	}

	best := -1
	for h := 0; h < 24; h++ {
		if counts[h] == 0 {
			continue
		}
		if best < 0 || counts[h] > counts[best] ||
			(counts[h] == counts[best] && firstSeen[h] < firstSeen[best]) {
			best = h
		}
	}

	switch {
	case best < 12:
		return Morning
	case best < 18:
		return Afternoon
	default:
		return Evening
	}
}

// InsightsFor derives Insights from stats and the events they came from.
func InsightsFor(stats EngagementStats, events []history.ViewEvent, loc *time.Location) Insights {
	preferred := make([]string, len(stats.TopCategories))
	for i, c := range stats.TopCategories {
		preferred[i] = c.Category
	}

	return Insights{
		PreferredCategories: preferred,
		ViewingPattern:      Pattern(stats),
		FavoriteTimeOfDay:   FavoriteTimeOfDay(events, loc),
	}
}
