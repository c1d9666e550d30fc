package state

import (
	"math"
	"strconv"

	"github.com/goalspace/goalspace/internal/model"
)

// Dashboard holds read-only aggregates over the snapshot. Computed fresh on
// every call; deterministic for the same inputs.
type Dashboard struct {
	TotalGoals       int `json:"total_goals"`
	ActiveGoals      int `json:"active_goals"` // progress < 100
	TotalSpaces      int `json:"total_spaces"`
	CompletedSpaces  int `json:"completed_spaces"`
	CompletionRate   int `json:"completion_rate"` // 0-100
	TotalModules     int `json:"total_modules"`
	CompletedModules int `json:"completed_modules"`
}

// Dashboard computes aggregates from the current snapshot.
func (s *State) Dashboard() Dashboard {
	s.mu.Lock()
	defer s.mu.Unlock()
	return computeDashboard(s.goals, s.spaces, s.modules)
}

func computeDashboard(goals []model.Goal, spaces []model.Space, modules map[string][]model.Module) Dashboard {
	d := Dashboard{TotalGoals: len(goals), TotalSpaces: len(spaces)}

	for _, g := range goals {
		if g.Progress < 100 {
			d.ActiveGoals++
		}
	}
	for _, sp := range spaces {
		if sp.Progress >= 100 {
			d.CompletedSpaces++
		}
	}
	d.CompletionRate = CompletionRate(d.CompletedSpaces, d.TotalSpaces)

	for _, mods := range modules {
		d.TotalModules += len(mods)
		for _, m := range mods {
			if m.Completed {
				d.CompletedModules++
			}
		}
	}
	return d
}

// CompletionRate is round(100 * completed / total), 0 when total is 0.
func CompletionRate(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}

// TodoProgress returns checked and total counts for one space's to-do list.
// Overlay keys past the list's end are ignored.
func (s *State) TodoProgress(spaceID string) (checked, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sp := range s.spaces {
		if sp.ID != spaceID {
			continue
		}
		total = len(sp.ToDoList)
		break
	}
	for i := 0; i < total; i++ {
		if s.todoStates[spaceID][strconv.Itoa(i)] {
			checked++
		}
	}
	return checked, total
}
