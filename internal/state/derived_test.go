package state

import (
	"math"
	"testing"

	"github.com/goalspace/goalspace/internal/model"
)

func TestCompletionRate(t *testing.T) {
	tests := []struct {
		completed, total, want int
	}{
		{0, 0, 0},
		{0, 10, 0},
		{1, 3, 33},
		{2, 3, 67},
		{5, 10, 50},
		{10, 10, 100},
	}
	for _, tt := range tests {
		if got := CompletionRate(tt.completed, tt.total); got != tt.want {
			t.Errorf("CompletionRate(%d, %d) = %d, want %d", tt.completed, tt.total, got, tt.want)
		}
	}
}

func TestCompletionRateMatchesRounding(t *testing.T) {
	for total := 0; total <= 1000; total++ {
		for _, completed := range []int{0, total / 3, total / 2, total} {
			got := CompletionRate(completed, total)
			want := 0
			if total > 0 {
				want = int(math.Round(100 * float64(completed) / float64(total)))
			}
			if got != want {
				t.Fatalf("CompletionRate(%d, %d) = %d, want %d", completed, total, got, want)
			}
		}
	}
}

func TestDashboardAggregates(t *testing.T) {
	s := newTestState(t)

	s.SetGoals([]model.Goal{
		{ID: "g1", Progress: 100},
		{ID: "g2", Progress: 40},
		{ID: "g3", Progress: 0},
	})
	s.SetSpaces([]model.Space{
		{ID: "sp1", Progress: 100},
		{ID: "sp2", Progress: 50},
	})
	s.SetModules("sp1", []model.Module{
		{ID: "m1", Completed: true},
		{ID: "m2", Completed: false},
	})
	s.SetModules("sp2", []model.Module{
		{ID: "m3", Completed: true},
	})

	d := s.Dashboard()
	if d.TotalGoals != 3 || d.ActiveGoals != 2 {
		t.Errorf("goal counts wrong: %+v", d)
	}
	if d.TotalSpaces != 2 || d.CompletedSpaces != 1 || d.CompletionRate != 50 {
		t.Errorf("space counts wrong: %+v", d)
	}
	if d.TotalModules != 3 || d.CompletedModules != 2 {
		t.Errorf("module counts wrong: %+v", d)
	}
}

func TestDashboardEmpty(t *testing.T) {
	s := newTestState(t)
	d := s.Dashboard()
	if d.CompletionRate != 0 {
		t.Errorf("expected 0 rate for empty snapshot, got %d", d.CompletionRate)
	}
}

func TestTodoProgress(t *testing.T) {
	s := newTestState(t)
	s.SetSpaces([]model.Space{{ID: "sp1", ToDoList: []string{"a", "b", "c"}}})

	s.ToggleTodo("sp1", 0)
	s.ToggleTodo("sp1", 5) // out of range, must not count

	checked, total := s.TodoProgress("sp1")
	if total != 3 {
		t.Errorf("expected total 3, got %d", total)
	}
	if checked != 1 {
		t.Errorf("expected 1 checked, got %d", checked)
	}
}
