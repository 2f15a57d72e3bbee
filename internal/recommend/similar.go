package recommend

import (
	"sort"
	"strings"
	"time"

	"github.com/tdfoco/viewlog/internal/catalog"
)

const (
	sharedTagWeight     = 2
	sameCategoryBonus   = 5
	closeInTimeBonus    = 2
	nearbyInTimeBonus   = 1
	likePopularity      = 0.3
	favoritePopularity  = 0.5
	viewPopularity      = 0.01
	closeInTimeWindow   = 30 * 24 * time.Hour
	nearbyInTimeWindow  = 90 * 24 * time.Hour
	trendingLikeWeight  = 0.5
	trendingViewWeight  = 0.01
	trendingFavorWeight = 1.0
)

// Similar ranks the items most like the one with currentID: shared tags,
// the same category, popularity and closeness of creation dates all count.
// The current item is never returned. An unknown ID yields an empty slice.
func Similar(currentID string, items []catalog.Item, limit int) []Scored {
	if limit <= 0 {
		return []Scored{}
	}

	var current *catalog.Item
	for i := range items {
		if items[i].ID == currentID {
			current = &items[i]
			break
		}
	}
	if current == nil {
		return []Scored{}
	}

	currentTags := make(map[string]struct{}, len(current.Tags))
	for _, t := range current.Tags {
		currentTags[strings.ToLower(t)] = struct{}{}
	}

	scored := make([]Scored, 0, len(items))
	for _, it := range items {
		if it.ID == current.ID {
			continue
		}

		score := 0.0
		for _, t := range it.Tags {
			if _, ok := currentTags[strings.ToLower(t)]; ok {
				score += sharedTagWeight
			}
		}
		if current.Category != "" && it.Category == current.Category {
			score += sameCategoryBonus
		}
		score += float64(it.Likes)*likePopularity +
			float64(it.Favorites)*favoritePopularity +
			float64(it.Views)*viewPopularity

		if !it.CreatedAt.IsZero() && !current.CreatedAt.IsZero() {
			gap := it.CreatedAt.Sub(current.CreatedAt).Abs()
			switch {
			case gap < closeInTimeWindow:
				score += closeInTimeBonus
			case gap < nearbyInTimeWindow:
				score += nearbyInTimeBonus
			}
		}

		scored = append(scored, Scored{Item: it, Score: score})
	}

	return topScored(scored, limit)
}

// Trending ranks items by engagement weighted toward recent creation.
// Items without a creation date get the lowest recency multiplier.
func Trending(items []catalog.Item, limit int, now time.Time) []Scored {
	if limit <= 0 {
		return []Scored{}
	}

	scored := make([]Scored, 0, len(items))
	for _, it := range items {
		engagement := float64(it.Views)*trendingViewWeight +
			float64(it.Likes)*trendingLikeWeight +
			float64(it.Favorites)*trendingFavorWeight
		scored = append(scored, Scored{Item: it, Score: recency(it.CreatedAt, now) * engagement})
	}

	return topScored(scored, limit)
}

func recency(created, now time.Time) float64 {
	if created.IsZero() {
		return 1
	}
	age := now.Sub(created)
	switch {
	case age < 7*24*time.Hour:
		return 10
	case age < 30*24*time.Hour:
		return 5
	case age < 90*24*time.Hour:
		return 2
	default:
		return 1
	}
}

func topScored(scored []Scored, limit int) []Scored {
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}
