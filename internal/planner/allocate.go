package planner

import (
	"fmt"

	"github.com/mesh-intelligence/sprintplan/pkg/types"
)

// Allocation is the result of one allocation pass.
type Allocation struct {
	Sprints      []types.Sprint `json:"sprints"`
	TotalSprints int            `json:"total_sprints"`
	TotalPoints  int            `json:"total_points"`
}

// Allocate packs items, in the given order, into sprints of the given
// capacity with a single greedy first-fit pass. Placed items get their
// SprintAssigned set in place; items left over when maxSprints is reached
// are not touched. maxSprints of zero means no limit.
//
// An item larger than capacity is not an error: it opens a sprint of its
// own whose total exceeds the capacity. Items are never split.
func Allocate(items []types.WorkItem, capacity, maxSprints int) (Allocation, error) {
	if capacity <= 0 {
		return Allocation{}, fmt.Errorf("allocate with capacity %d: %w", capacity, types.ErrInvalidCapacity)
	}
	if maxSprints < 0 {
		return Allocation{}, fmt.Errorf("allocate with sprint limit %d: %w", maxSprints, types.ErrInvalidSprintLimit)
	}

	var (
		result  = Allocation{Sprints: []types.Sprint{}}
		number  = 1
		points  = 0
		current []string
	)

	closeSprint := func() {
		result.Sprints = append(result.Sprints, types.Sprint{
			Number:      number,
			Name:        types.SprintName(number),
			Capacity:    capacity,
			UserStories: current,
			TotalPoints: points,
			Status:      types.SprintPlanned,
		})
		result.TotalPoints += points
	}

	for i := range items {
		item := &items[i]
		if points+item.StoryPoints <= capacity {
			points += item.StoryPoints
			current = append(current, item.ID)
			item.SprintAssigned = sprintRef(number)
			continue
		}

		if len(current) > 0 {
			closeSprint()
			number++
			current = nil
			points = 0
			if maxSprints > 0 && number > maxSprints {
				break
			}
		}

		current = []string{item.ID}
		points = item.StoryPoints
		item.SprintAssigned = sprintRef(number)
	}

	if len(current) > 0 {
		closeSprint()
	}

	result.TotalSprints = len(result.Sprints)
	return result, nil
}

func sprintRef(n int) *int {
	return &n
}
