package scoring

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdfoco/viewlog/internal/history"
	"github.com/tdfoco/viewlog/internal/storage"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// staticHistory is a fixed HistoryReader.
type staticHistory struct {
	events []history.ViewEvent
	now    time.Time
}

func (h staticHistory) History(context.Context) []history.ViewEvent { return h.events }
func (h staticHistory) Now() time.Time                             { return h.now }

func view(id, category string, duration float64, at time.Time) history.ViewEvent {
	return history.ViewEvent{ItemID: id, Category: category, DurationSeconds: duration, Timestamp: at.UnixMilli()}
}

func TestTopCategories_CountDominatesDuration(t *testing.T) {
	events := []history.ViewEvent{
		view("a", "urban", 10, testNow),
		view("b", "urban", 20, testNow),
		view("c", "nature", 5, testNow),
	}

	got := TopCategories(events, 3)
	require.Len(t, got, 2)
	assert.Equal(t, "urban", got[0].Category)
	assert.Equal(t, 2, got[0].Count)
	assert.InDelta(t, 2*math.Log(16), got[0].Score, 1e-9)
	assert.Equal(t, "nature", got[1].Category)
	assert.InDelta(t, math.Log(6), got[1].Score, 1e-9)
}

func TestTopCategories_IgnoresUncategorized(t *testing.T) {
	events := []history.ViewEvent{
		view("a", "", 100, testNow),
		view("b", "portrait", 1, testNow),
	}

	got := TopCategories(events, 5)
	require.Len(t, got, 1)
	assert.Equal(t, "portrait", got[0].Category)
}

func TestTopCategories_LimitAndTies(t *testing.T) {
	events := []history.ViewEvent{
		view("a", "first", 3, testNow),
		view("b", "second", 3, testNow),
		view("c", "third", 3, testNow),
		view("d", "fourth", 30, testNow),
	}

	got := TopCategories(events, 3)
	require.Len(t, got, 3)
	assert.Equal(t, "fourth", got[0].Category)
	assert.Equal(t, "first", got[1].Category, "ties keep first-seen order")
	assert.Equal(t, "second", got[2].Category)
}

func TestTopCategories_ZeroDurationScoresZero(t *testing.T) {
	got := TopCategories([]history.ViewEvent{view("a", "urban", 0, testNow)}, 1)
	require.Len(t, got, 1)
	assert.Zero(t, got[0].Score)
	assert.Equal(t, 1, got[0].Count)
}

func TestTopCategories_EmptyAndNonPositiveLimit(t *testing.T) {
	assert.Empty(t, TopCategories(nil, 3))
	assert.NotNil(t, TopCategories(nil, 3))
	assert.Empty(t, TopCategories([]history.ViewEvent{view("a", "urban", 1, testNow)}, 0))
}

func TestMostViewed(t *testing.T) {
	events := []history.ViewEvent{
		view("p1", "", 100, testNow),
		view("p2", "", 1, testNow),
		view("p3", "", 1, testNow),
		view("p2", "", 1, testNow),
		view("p3", "", 1, testNow),
		view("p3", "", 1, testNow),
	}

	assert.Equal(t, []string{"p3", "p2", "p1"}, MostViewed(events, 10))
	assert.Equal(t, []string{"p3", "p2"}, MostViewed(events, 2))
	assert.Equal(t, []ItemCount{{ItemID: "p3", Count: 3}}, MostViewedCounts(events, 1))
	assert.Empty(t, MostViewed(nil, 10))
}

func TestAverageDuration(t *testing.T) {
	assert.Zero(t, AverageDuration(nil))
	assert.Equal(t, 6.0, AverageDuration([]history.ViewEvent{
		view("a", "", 2, testNow),
		view("b", "x", 10, testNow),
	}))
}

func TestStats_EmptyHistory(t *testing.T) {
	stats := Stats(nil, testNow, 7*24*time.Hour)

	assert.Equal(t, 0, stats.TotalViews)
	assert.Equal(t, 0, stats.UniquePhotos)
	assert.Zero(t, stats.AvgDuration)
	assert.NotNil(t, stats.TopCategories)
	assert.Empty(t, stats.TopCategories)
	assert.Equal(t, 0, stats.RecentActivity)

	data, err := json.Marshal(stats)
	require.NoError(t, err)
	assert.JSONEq(t, `{"totalViews":0,"uniquePhotos":0,"avgDuration":0,"topCategories":[],"recentActivity":0}`, string(data))
}

func TestStats_Populated(t *testing.T) {
	events := []history.ViewEvent{
		view("p1", "urban", 4, testNow.Add(-10*24*time.Hour)),
		view("p1", "urban", 6, testNow.Add(-8*24*time.Hour)),
		view("p2", "nature", 8, testNow.Add(-2*24*time.Hour)),
		view("p3", "", 2, testNow.Add(-time.Hour)),
	}

	stats := Stats(events, testNow, 7*24*time.Hour)
	assert.Equal(t, 4, stats.TotalViews)
	assert.Equal(t, 3, stats.UniquePhotos)
	assert.Equal(t, 5.0, stats.AvgDuration)
	assert.Equal(t, 2, stats.RecentActivity)
	require.Len(t, stats.TopCategories, 2)
	assert.Equal(t, "urban", stats.TopCategories[0].Category)
}

func TestStats_TopCategoriesCappedAtFive(t *testing.T) {
	var events []history.ViewEvent
	for _, c := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		events = append(events, view("p-"+c, c, 1, testNow))
	}
	assert.Len(t, Stats(events, testNow, 7*24*time.Hour).TopCategories, 5)
}

func TestPattern(t *testing.T) {
	assert.Equal(t, PatternCasual, Pattern(EngagementStats{TotalViews: 3, AvgDuration: 2}))
	assert.Equal(t, PatternEngaged, Pattern(EngagementStats{TotalViews: 21, AvgDuration: 1}))
	assert.Equal(t, PatternEngaged, Pattern(EngagementStats{TotalViews: 2, AvgDuration: 6}))
	assert.Equal(t, PatternEngaged, Pattern(EngagementStats{TotalViews: 51, AvgDuration: 10}))
	assert.Equal(t, PatternPowerUser, Pattern(EngagementStats{TotalViews: 51, AvgDuration: 11}))
}

func TestFavoriteTimeOfDay(t *testing.T) {
	at := func(hour int) time.Time { return time.Date(2026, 3, 9, hour, 15, 0, 0, time.UTC) }

	assert.Equal(t, TimeOfDay(""), FavoriteTimeOfDay(nil, time.UTC))

	morning := []history.ViewEvent{view("a", "", 1, at(9)), view("b", "", 1, at(9)), view("c", "", 1, at(20))}
	assert.Equal(t, Morning, FavoriteTimeOfDay(morning, time.UTC))

	afternoon := []history.ViewEvent{view("a", "", 1, at(14))}
	assert.Equal(t, Afternoon, FavoriteTimeOfDay(afternoon, time.UTC))

	tie := []history.ViewEvent{view("a", "", 1, at(21)), view("b", "", 1, at(7))}
	assert.Equal(t, Evening, FavoriteTimeOfDay(tie, time.UTC), "ties go to the hour seen first")

	// 20:15 UTC is 05:15 the next morning in Tokyo.
	tokyo := time.FixedZone("JST", 9*60*60)
	assert.Equal(t, Morning, FavoriteTimeOfDay([]history.ViewEvent{view("a", "", 1, at(20))}, tokyo))
}

func TestScorer_ReadsLiveHistory(t *testing.T) {
	now := testNow
	store := history.NewStore(storage.NewMemoryBackend(), history.Options{Now: func() time.Time { return now }}, zerolog.Nop())
	scorer := NewScorer(store, Options{Location: time.UTC})
	ctx := context.Background()

	assert.Empty(t, scorer.TopCategories(ctx, 3))

	store.TrackView(ctx, "p1", 10, "urban")
	store.TrackView(ctx, "p2", 20, "urban")
	store.TrackView(ctx, "p3", 5, "nature")

	top := scorer.TopCategories(ctx, 3)
	require.Len(t, top, 2)
	assert.Equal(t, "urban", top[0].Category)
	assert.Equal(t, []string{"p1", "p2", "p3"}, scorer.MostViewed(ctx, 10))
	assert.InDelta(t, 35.0/3, scorer.AverageDuration(ctx), 1e-9)

	stats := scorer.EngagementStats(ctx)
	assert.Equal(t, 3, stats.TotalViews)
	assert.Equal(t, 3, stats.RecentActivity)

	insights := scorer.Insights(ctx)
	assert.Equal(t, []string{"urban", "nature"}, insights.PreferredCategories)
	assert.Equal(t, PatternEngaged, insights.ViewingPattern)
	assert.Equal(t, Afternoon, insights.FavoriteTimeOfDay)
}

func TestScorer_Export(t *testing.T) {
	h := staticHistory{
		now:    testNow,
		events: []history.ViewEvent{view("p1", "urban", 3, testNow.Add(-time.Hour))},
	}
	scorer := NewScorer(h, Options{Location: time.UTC})

	data, err := scorer.Export(context.Background())
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "2026-03-10T12:00:00Z", doc["exportDate"])
	assert.Len(t, doc["viewHistory"], 1)
	assert.Contains(t, doc, "statistics")
	assert.Contains(t, doc, "insights")

	snap := scorer.Snapshot(context.Background())
	assert.Equal(t, 1, snap.Statistics.TotalViews)
	assert.Equal(t, PatternCasual, snap.Insights.ViewingPattern)
}

func TestScorer_EmptyExport(t *testing.T) {
	scorer := NewScorer(staticHistory{now: testNow, events: []history.ViewEvent{}}, Options{})

	snap := scorer.Snapshot(context.Background())
	assert.Empty(t, snap.ViewHistory)
	assert.Equal(t, TimeOfDay(""), snap.Insights.FavoriteTimeOfDay)
	assert.Empty(t, snap.Insights.PreferredCategories)
}
