// Package scoring aggregates the view history into category preferences,
// item popularity and engagement statistics.
//
// The package-level functions are pure and operate on an already windowed
// slice of events. Scorer binds them to a live history store.
package scoring

import (
	"math"
	"sort"
	"time"

	"github.com/tdfoco/viewlog/internal/history"
)

// CategoryScore is a derived preference score for one category.
type CategoryScore struct {
	Category string  `json:"category"`
	Score    float64 `json:"score"`
	Count    int     `json:"count"`
}

// ItemCount pairs an item ID with its view count.
type ItemCount struct {
	ItemID string `json:"itemId"`
	Count  int    `json:"count"`
}

// EngagementStats summarizes the windowed history.
type EngagementStats struct {
	TotalViews     int             `json:"totalViews"`
	UniquePhotos   int             `json:"uniquePhotos"`
	AvgDuration    float64         `json:"avgDuration"`
	TopCategories  []CategoryScore `json:"topCategories"`
	RecentActivity int             `json:"recentActivity"`
}

// TopCategories groups events by category and ranks them by
// count * ln(1 + avgDuration). Events without a category are ignored.
// Equal scores keep first-seen order.
func TopCategories(events []history.ViewEvent, limit int) []CategoryScore {
	if limit <= 0 {
		return []CategoryScore{}
	}

	type agg struct {
		totalDuration float64
		count         int
	}
	order := make([]string, 0)
	groups := make(map[string]*agg)

	for _, e := range events {
		if e.Category == "" {
			continue
		}
		g, ok := groups[e.Category]
		if !ok {
			g = &agg{}
			groups[e.Category] = g
			order = append(order, e.Category)
		}
		g.totalDuration += e.DurationSeconds
		g.count++
	}

	scores := make([]CategoryScore, 0, len(order))
	for _, category := range order {
		g := groups[category]
		avg := g.totalDuration / float64(g.count)
		scores = append(scores, CategoryScore{
			Category: category,
			Score:    float64(g.count) * math.Log1p(avg),
			Count:    g.count,
		})
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})

	if len(scores) > limit {
		scores = scores[:limit]
	}
	return scores
}

// MostViewedCounts ranks item IDs by raw view count, ignoring duration.
// Equal counts keep first-seen order.
func MostViewedCounts(events []history.ViewEvent, limit int) []ItemCount {
	if limit <= 0 {
		return []ItemCount{}
	}

	counts := make([]ItemCount, 0)
	index := make(map[string]int)
	for _, e := range events {
		i, ok := index[e.ItemID]
		if !ok {
			i = len(counts)
			index[e.ItemID] = i
			counts = append(counts, ItemCount{ItemID: e.ItemID})
		}
		counts[i].Count++
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})

	if len(counts) > limit {
		counts = counts[:limit]
	}
	return counts
}

// MostViewed returns the IDs from MostViewedCounts.
func MostViewed(events []history.ViewEvent, limit int) []string {
	counts := MostViewedCounts(events, limit)
	ids := make([]string, len(counts))
	for i, c := range counts {
		ids[i] = c.ItemID
	}
	return ids
}

// AverageDuration is the mean dwell time over all events, or 0.
func AverageDuration(events []history.ViewEvent) float64 {
	if len(events) == 0 {
		return 0
	}
	var total float64
	for _, e := range events {
		total += e.DurationSeconds
	}
	return total / float64(len(events))
}

// Stats computes EngagementStats. recentActivity counts events strictly
// newer than now - recent.
func Stats(events []history.ViewEvent, now time.Time, recent time.Duration) EngagementStats {
	unique := make(map[string]struct{}, len(events))
	cutoff := now.Add(-recent).UnixMilli()
	recentCount := 0
	for _, e := range events {
		unique[e.ItemID] = struct{}{}
		if e.Timestamp > cutoff {
			recentCount++
		}
	}

	return EngagementStats{
		TotalViews:     len(events),
		UniquePhotos:   len(unique),
		AvgDuration:    AverageDuration(events),
		TopCategories:  TopCategories(events, 5),
		RecentActivity: recentCount,
	}
}
