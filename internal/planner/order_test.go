package planner

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/sprintplan/pkg/types"
)

func item(id string, points int, p types.Priority, deps ...string) types.WorkItem {
	return types.WorkItem{ID: id, Title: id, StoryPoints: points, Priority: p, Dependencies: deps, Status: types.DefaultItemStatus}
}

func ids(items []types.WorkItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestOrderByPriorityTier(t *testing.T) {
	items := []types.WorkItem{
		item("HU1", 3, types.PriorityLow),
		item("HU2", 3, types.PriorityHigh),
		item("HU3", 3, types.PriorityMedium),
	}
	assert.Equal(t, []string{"HU2", "HU3", "HU1"}, ids(Order(items)))
}

func TestOrderDependentsBreakTiesWithinTier(t *testing.T) {
	items := []types.WorkItem{
		item("HU1", 3, types.PriorityHigh),
		item("HU2", 3, types.PriorityHigh),
		item("HU3", 3, types.PriorityHigh, "HU2"),
		item("HU4", 3, types.PriorityMedium, "HU2", "HU1"),
		item("HU5", 3, types.PriorityLow, "HU2"),
	}
	// HU2 has three dependents, HU1 one, HU3 none.
	got := Order(items)
	assert.Equal(t, []string{"HU2", "HU1", "HU3", "HU4", "HU5"}, ids(got))
}

func TestOrderPriorityDominatesDependents(t *testing.T) {
	items := []types.WorkItem{
		item("LOW", 3, types.PriorityLow),
		item("A", 3, types.PriorityHigh, "LOW"),
		item("B", 3, types.PriorityHigh, "LOW"),
		item("C", 3, types.PriorityMedium, "LOW"),
		item("HIGH", 3, types.PriorityHigh),
	}
	got := ids(Order(items))
	assert.Equal(t, "LOW", got[len(got)-1], "a low tier item sorts last however many items depend on it")
}

func TestOrderIDBreaksFullTies(t *testing.T) {
	items := []types.WorkItem{
		item("HU10", 1, types.PriorityMedium),
		item("HU02", 1, types.PriorityMedium),
		item("HU1", 1, types.PriorityMedium),
	}
	assert.Equal(t, []string{"HU02", "HU1", "HU10"}, ids(Order(items)))
}

func TestOrderIsDeterministicAcrossPermutations(t *testing.T) {
	items := []types.WorkItem{
		item("HU1", 3, types.PriorityHigh),
		item("HU2", 5, types.PriorityHigh, "HU1"),
		item("HU3", 2, types.PriorityMedium, "HU1"),
		item("HU4", 8, types.PriorityMedium),
		item("HU5", 1, types.PriorityLow, "HU4", "HU9"),
		item("HU6", 3, types.PriorityLow),
		item("HU7", 13, types.PriorityHigh, "HU4"),
	}
	want := ids(Order(items))

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		shuffled := make([]types.WorkItem, len(items))
		copy(shuffled, items)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		require.Equal(t, want, ids(Order(shuffled)), "permutation %d", i)
	}
}

func TestOrderDoesNotMutateInput(t *testing.T) {
	items := []types.WorkItem{
		item("B", 3, types.PriorityLow),
		item("A", 3, types.PriorityHigh),
	}
	_ = Order(items)
	assert.Equal(t, []string{"B", "A"}, ids(items))
}

func TestDependentCounts(t *testing.T) {
	items := []types.WorkItem{
		item("A", 1, types.PriorityHigh, "A"),
		item("B", 1, types.PriorityHigh, "A", "A"),
		item("C", 1, types.PriorityHigh, "A", "B", "X"),
	}
	counts := DependentCounts(items)
	assert.Equal(t, 2, counts["A"], "self references and repeats are ignored")
	assert.Equal(t, 1, counts["B"])
	assert.Equal(t, 1, counts["X"])
	assert.Zero(t, counts["C"])
}

func TestOrderEmpty(t *testing.T) {
	assert.Empty(t, Order(nil))
}
