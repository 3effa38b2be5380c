package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mesh-intelligence/sprintplan/pkg/types"
)

func TestUnresolvedDependencies(t *testing.T) {
	items := []types.WorkItem{
		item("HU3", 3, types.PriorityHigh, "HU1", "HU9", "HU9"),
		item("HU1", 3, types.PriorityHigh),
		item("HU2", 3, types.PriorityLow, "HU8", "HU1", "HU0"),
	}

	got := UnresolvedDependencies(items)
	assert.Equal(t, []UnresolvedDependency{
		{ItemID: "HU2", DependencyID: "HU0"},
		{ItemID: "HU2", DependencyID: "HU8"},
		{ItemID: "HU3", DependencyID: "HU9"},
	}, got)
}

func TestUnresolvedDependenciesAllResolved(t *testing.T) {
	items := []types.WorkItem{
		item("HU1", 3, types.PriorityHigh),
		item("HU2", 3, types.PriorityHigh, "HU1"),
	}
	assert.Empty(t, UnresolvedDependencies(items))
}

func TestUnresolvedDependenciesDoNotBlockAllocation(t *testing.T) {
	items := []types.WorkItem{item("HU1", 3, types.PriorityHigh, "MISSING")}
	got, err := Allocate(Order(items), 9, 0)
	assert.NoError(t, err)
	assert.Len(t, got.Sprints, 1)
}
