package engagement

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tdfoco/viewlog/internal/catalog"
)

func ids(items []catalog.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestScore(t *testing.T) {
	assert.Equal(t, 0, Score(catalog.Item{ID: "empty"}))
	assert.Equal(t, 50, Score(catalog.Item{Likes: 10}))
	assert.Equal(t, 10, Score(catalog.Item{Shares: 1}))
	assert.Equal(t, 7, Score(catalog.Item{Views: 7}))
	assert.Equal(t, 5*2+10*3+4, Score(catalog.Item{Likes: 2, Shares: 3, Views: 4}))
}

func TestSort_LikesOutweighSingleShare(t *testing.T) {
	items := []catalog.Item{
		{ID: "liked", Likes: 10},
		{ID: "shared", Shares: 1},
	}

	assert.Equal(t, []string{"liked", "shared"}, ids(Sort(items)))
}

func TestSort_Descending(t *testing.T) {
	items := []catalog.Item{
		{ID: "a", Views: 3},
		{ID: "b", Likes: 1, Shares: 2},
		{ID: "c"},
		{ID: "d", Likes: 4},
	}

	assert.Equal(t, []string{"b", "d", "a", "c"}, ids(Sort(items)))
}

func TestSort_StableOnTies(t *testing.T) {
	items := []catalog.Item{
		{ID: "x"}, {ID: "y"}, {ID: "z"},
	}
	assert.Equal(t, []string{"x", "y", "z"}, ids(Sort(items)), "all-zero input keeps input order")

	tied := []catalog.Item{
		{ID: "first", Shares: 1},
		{ID: "second", Likes: 2},
		{ID: "third", Views: 10},
	}
	assert.Equal(t, []string{"first", "second", "third"}, ids(Sort(tied)))
}

func TestSort_Idempotent(t *testing.T) {
	items := []catalog.Item{
		{ID: "a", Views: 9},
		{ID: "b", Likes: 2},
		{ID: "c", Views: 10},
		{ID: "d", Shares: 1},
	}

	once := Sort(items)
	twice := Sort(once)
	assert.Equal(t, once, twice)
}

func TestSort_DoesNotMutateInput(t *testing.T) {
	items := []catalog.Item{{ID: "low"}, {ID: "high", Likes: 1}}

	_ = Sort(items)
	assert.Equal(t, []string{"low", "high"}, ids(items))
}

func TestSort_Empty(t *testing.T) {
	assert.Empty(t, Sort(nil))
	assert.Empty(t, Sort([]catalog.Item{}))
}
