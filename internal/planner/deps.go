package planner

import (
	"sort"

	"github.com/mesh-intelligence/sprintplan/pkg/types"
)

// UnresolvedDependency is a dependency id that names no item in the backlog.
type UnresolvedDependency struct {
	ItemID       string `json:"item_id"`
	DependencyID string `json:"dependency_id"`
}

// UnresolvedDependencies lists dependency ids that do not resolve to an item,
// sorted by item id then dependency id. Dependencies are informational, so
// the result never blocks allocation.
func UnresolvedDependencies(items []types.WorkItem) []UnresolvedDependency {
	known := make(map[string]bool, len(items))
	for _, item := range items {
		known[item.ID] = true
	}

	var out []UnresolvedDependency
	for _, item := range items {
		seen := make(map[string]bool)
		for _, dep := range item.Dependencies {
			if known[dep] || seen[dep] {
				continue
			}
			seen[dep] = true
			out = append(out, UnresolvedDependency{ItemID: item.ID, DependencyID: dep})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].ItemID != out[j].ItemID {
			return out[i].ItemID < out[j].ItemID
		}
		return out[i].DependencyID < out[j].DependencyID
	})
	return out
}
