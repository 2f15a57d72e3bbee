// Package recommend ranks catalog items for a viewer.
//
// Selector personalizes from the local view history: favorite categories
// and loose tag matches lift unseen items, a small random jitter keeps
// repeated calls from producing identical orderings, and an empty history
// falls back to a uniform shuffle. Similar and Trending are history-free
// rankings over the catalog alone.
package recommend

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tdfoco/viewlog/internal/catalog"
	"github.com/tdfoco/viewlog/internal/history"
	"github.com/tdfoco/viewlog/internal/logging"
	"github.com/tdfoco/viewlog/internal/scoring"
)

const (
	DefaultFavoriteCategories = 3
	DefaultJitter             = 5.0

	favoriteWeight = 10
	tagMatchBonus  = 2
)

// RandSource is the randomness the selector needs. *rand.Rand from
// math/rand/v2 satisfies it.
type RandSource interface {
	Float64() float64
	IntN(n int) int
}

// NewRand returns a PCG-backed source. A zero seed is replaced by the
// current time.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) //nolint:gosec // ranking jitter, not security
}

// Options configures a Selector.
type Options struct {
	// FavoriteCategories is how many top categories earn a bonus.
	FavoriteCategories int
	// Jitter is the upper bound of the uniform random term added to every score.
	Jitter float64
	// Rand defaults to a time-seeded source.
	Rand RandSource
}

// DefaultOptions returns the production settings.
func DefaultOptions() Options {
	return Options{
		FavoriteCategories: DefaultFavoriteCategories,
		Jitter:             DefaultJitter,
	}
}

// Scored is an item with the score that ranked it.
type Scored struct {
	Item  catalog.Item `json:"item"`
	Score float64      `json:"score"`
}

// Selector produces personalized recommendations from the view history.
type Selector struct {
	history   scoring.HistoryReader
	favorites int
	jitter    float64
	logger    zerolog.Logger

	rngMu sync.Mutex
	rng   RandSource
}

// NewSelector creates a Selector reading from h.
//
//nolint:gocritic // zerolog.Logger is passed by value
func NewSelector(h scoring.HistoryReader, opts Options, logger zerolog.Logger) *Selector {
	if opts.FavoriteCategories <= 0 {
		opts.FavoriteCategories = DefaultFavoriteCategories
	}
	if opts.Jitter < 0 {
		opts.Jitter = 0
	}
	if opts.Rand == nil {
		opts.Rand = NewRand(0)
	}

	return &Selector{
		history:   h,
		favorites: opts.FavoriteCategories,
		jitter:    opts.Jitter,
		rng:       opts.Rand,
		logger:    logger.With().Str("component", "recommend").Logger(),
	}
}

// Recommend returns up to limit items from items. Items whose ID is in
// exclude are never returned, and with a non-empty history neither is
// anything the history shows was already viewed.
func (s *Selector) Recommend(ctx context.Context, items []catalog.Item, limit int, exclude map[string]struct{}) []catalog.Item {
	scored := s.RecommendScored(ctx, items, limit, exclude)
	out := make([]catalog.Item, len(scored))
	for i, sc := range scored {
		out[i] = sc.Item
	}
	return out
}

// RecommendScored is Recommend with scores attached. Cold-start results
// carry a zero score.
func (s *Selector) RecommendScored(ctx context.Context, items []catalog.Item, limit int, exclude map[string]struct{}) []Scored {
	if len(items) == 0 || limit <= 0 {
		return []Scored{}
	}

	candidates := make([]catalog.Item, 0, len(items))
	for _, it := range items {
		if _, skip := exclude[it.ID]; !skip {
			candidates = append(candidates, it)
		}
	}

	log := s.logger.With().Str("request_id", logging.GenerateRequestID()).Logger()

	events := s.history.History(ctx)
	if len(events) == 0 {
		log.Debug().
			Int("candidates", len(candidates)).
			Int("limit", limit).
			Msg("empty history, using cold start shuffle")
		return s.coldStart(candidates, limit)
	}

	favorites := scoring.TopCategories(events, s.favorites)
	rank := make(map[string]int, len(favorites))
	for i, c := range favorites {
		rank[c.Category] = i
	}

	viewed := ViewedIDs(events)
	var viewedCategories []string
	for _, e := range events {
		if e.Category != "" {
			viewedCategories = append(viewedCategories, strings.ToLower(e.Category))
		}
	}

	s.rngMu.Lock()
	scored := make([]Scored, 0, len(candidates))
	for _, it := range candidates {
		if _, seen := viewed[it.ID]; seen {
			continue
		}
		score := 0.0
		if r, ok := rank[it.Category]; ok && it.Category != "" {
			score += float64((s.favorites - r) * favoriteWeight)
		}
		score += float64(tagMatchBonus * matchingTags(it.Tags, viewedCategories))
		score += s.rng.Float64() * s.jitter
		scored = append(scored, Scored{Item: it, Score: score})
	}
	s.rngMu.Unlock()

	scored = topScored(scored, limit)

	log.Debug().
		Int("history", len(events)).
		Int("favorites", len(favorites)).
		Int("unseen", len(scored)).
		Msg("personalized recommendations ranked")

	return scored
}

// matchingTags counts tags that appear, case-insensitively, as a substring
// of any viewed category, so "street" matches "street-art".
func matchingTags(tags, viewedCategories []string) int {
	n := 0
	for _, tag := range tags {
		t := strings.ToLower(tag)
		for _, c := range viewedCategories {
			if strings.Contains(c, t) {
				n++
				break
			}
		}
	}
	return n
}

// coldStart shuffles candidates with Fisher-Yates and takes the first limit.
func (s *Selector) coldStart(candidates []catalog.Item, limit int) []Scored {
	shuffled := make([]catalog.Item, len(candidates))
	copy(shuffled, candidates)

	s.rngMu.Lock()
	for i := len(shuffled) - 1; i > 0; i-- {
		j := s.rng.IntN(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	s.rngMu.Unlock()

	if len(shuffled) > limit {
		shuffled = shuffled[:limit]
	}
	out := make([]Scored, len(shuffled))
	for i, it := range shuffled {
		out[i] = Scored{Item: it}
	}
	return out
}

// ViewedIDs returns the set of item IDs in events.
func ViewedIDs(events []history.ViewEvent) map[string]struct{} {
	ids := make(map[string]struct{}, len(events))
	for _, e := range events {
		ids[e.ItemID] = struct{}{}
	}
	return ids
}
