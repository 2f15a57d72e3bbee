package recommend

import (
	"time"

	"github.com/tdfoco/viewlog/internal/catalog"
	"github.com/tdfoco/viewlog/internal/history"
)

const (
	categoryMatchWeight = 3
	tagMatchWeight      = 2
	matchFavoriteWeight = 0.5
	matchLikeWeight     = 0.3
)

// Personalized ranks unseen items by how well they match the catalog
// items already viewed: each viewed item counts once toward its category
// and each of its tags, and favorites*0.5 + likes*0.3 is added on top.
// With no history it falls back to Trending.
//
// Unlike Selector it reads preferences from the catalog entries of viewed
// items, not from the categories recorded with each view.
func Personalized(events []history.ViewEvent, items []catalog.Item, limit int, now time.Time) []Scored {
	if limit <= 0 {
		return []Scored{}
	}
	if len(events) == 0 {
		return Trending(items, limit, now)
	}

	viewed := ViewedIDs(events)
	categories := make(map[string]int)
	tags := make(map[string]int)
	for _, it := range items {
		if _, ok := viewed[it.ID]; !ok {
			continue
		}
		if it.Category != "" {
			categories[it.Category]++
		}
		for _, t := range it.Tags {
			tags[t]++
		}
	}

	scored := make([]Scored, 0, len(items))
	for _, it := range items {
		if _, ok := viewed[it.ID]; ok {
			continue
		}
		score := float64(categories[it.Category] * categoryMatchWeight)
		for _, t := range it.Tags {
			score += float64(tags[t] * tagMatchWeight)
		}
		score += float64(it.Favorites)*matchFavoriteWeight + float64(it.Likes)*matchLikeWeight
		scored = append(scored, Scored{Item: it, Score: score})
	}

	return topScored(scored, limit)
}
