// Package planner implements the backlog algorithms: the ordering policy,
// greedy sprint allocation, the rolling velocity update, and the dependency
// consistency check. Everything here is in-memory; persistence belongs to
// the store and the backlog service.
package planner

import (
	"sort"

	"github.com/mesh-intelligence/sprintplan/pkg/types"
)

// Order returns the items sorted by priority tier, then by how many other
// items depend on them (more first), then by id. The input is not modified.
// Any permutation of the same items yields the same order.
func Order(items []types.WorkItem) []types.WorkItem {
	dependents := DependentCounts(items)

	sorted := make([]types.WorkItem, len(items))
	copy(sorted, items)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if ra, rb := a.Priority.Rank(), b.Priority.Rank(); ra != rb {
			return ra < rb
		}
		if da, db := dependents[a.ID], dependents[b.ID]; da != db {
			return da > db
		}
		return a.ID < b.ID
	})
	return sorted
}

// DependentCounts returns, for each item id, the number of other items that
// list it as a dependency. A dependency listed twice by the same item counts
// once.
func DependentCounts(items []types.WorkItem) map[string]int {
	counts := make(map[string]int, len(items))
	for _, item := range items {
		seen := make(map[string]bool, len(item.Dependencies))
		for _, dep := range item.Dependencies {
			if dep == item.ID || seen[dep] {
				continue
			}
			seen[dep] = true
			counts[dep]++
		}
	}
	return counts
}
