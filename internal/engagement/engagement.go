// Package engagement ranks items by raw popularity, without personalization.
package engagement

import (
	"sort"

	"github.com/tdfoco/viewlog/internal/catalog"
)

// Counter weights.
const (
	LikeWeight  = 5
	ShareWeight = 10
	ViewWeight  = 1
)

// Score returns likes*5 + shares*10 + views. Missing counters are zero.
func Score(item catalog.Item) int {
	return item.Likes*LikeWeight + item.Shares*ShareWeight + item.Views*ViewWeight
}

// Sort returns a copy of items ordered by Score, highest first. Equal
// scores keep their input order, so the result is idempotent.
func Sort(items []catalog.Item) []catalog.Item {
	sorted := make([]catalog.Item, len(items))
	copy(sorted, items)

	sort.SliceStable(sorted, func(i, j int) bool {
		return Score(sorted[i]) > Score(sorted[j])
	})
	return sorted
}
