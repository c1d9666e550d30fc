package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/goalspace/goalspace/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewSQLiteStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateAndGetGoal(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	g, err := s.CreateGoal(ctx, CreateGoalParams{
		UserID: "u1", Title: "Learn Go", Description: "stdlib first", Category: model.CategoryLearning,
	})
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}
	if g.ID == "" {
		t.Error("expected non-empty ID")
	}
	if g.Status != model.StatusNotStarted {
		t.Errorf("expected status not_started, got %q", g.Status)
	}
	if g.Progress != 0 {
		t.Errorf("expected progress 0, got %d", g.Progress)
	}

	got, err := s.GetGoal(ctx, g.ID)
	if err != nil {
		t.Fatalf("get goal: %v", err)
	}
	if got.Title != "Learn Go" {
		t.Errorf("expected 'Learn Go', got %q", got.Title)
	}
}

func TestCreateGoalValidation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.CreateGoal(ctx, CreateGoalParams{Title: "no user"}); err == nil {
		t.Error("expected error for missing user id")
	}
	if _, err := s.CreateGoal(ctx, CreateGoalParams{UserID: "u1", Title: "   "}); err == nil {
		t.Error("expected error for blank title")
	}
	if _, err := s.CreateGoal(ctx, CreateGoalParams{UserID: "u1", Title: "x", Category: "bogus"}); err == nil {
		t.Error("expected error for invalid category")
	}
}

func TestUpdateGoalPartial(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	g, _ := s.CreateGoal(ctx, CreateGoalParams{UserID: "u1", Title: "Learn Go"})

	progress := 40
	status := model.StatusInProgress
	updated, err := s.UpdateGoal(ctx, UpdateGoalParams{ID: g.ID, Progress: &progress, Status: &status})
	if err != nil {
		t.Fatalf("update goal: %v", err)
	}
	if updated.Progress != 40 || updated.Status != model.StatusInProgress {
		t.Errorf("partial update not applied: %+v", updated)
	}
	if updated.Title != "Learn Go" {
		t.Errorf("untouched field changed: %q", updated.Title)
	}
}

func TestUpdateGoalClampsProgress(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	g, _ := s.CreateGoal(ctx, CreateGoalParams{UserID: "u1", Title: "Learn Go"})

	over := 150
	updated, _ := s.UpdateGoal(ctx, UpdateGoalParams{ID: g.ID, Progress: &over})
	if updated.Progress != 100 {
		t.Errorf("expected clamp to 100, got %d", updated.Progress)
	}

	under := -5
	updated, _ = s.UpdateGoal(ctx, UpdateGoalParams{ID: g.ID, Progress: &under})
	if updated.Progress != 0 {
		t.Errorf("expected clamp to 0, got %d", updated.Progress)
	}
}

func TestDeleteGoalIsSoft(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	g, _ := s.CreateGoal(ctx, CreateGoalParams{UserID: "u1", Title: "Learn Go"})
	if err := s.DeleteGoal(ctx, g.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := s.GetGoal(ctx, g.ID); err == nil {
		t.Error("expected error after soft delete")
	}

	// Row is retained, not removed
	var count int
	s.db.QueryRow(`SELECT COUNT(*) FROM goals WHERE id = ?`, g.ID).Scan(&count)
	if count != 1 {
		t.Errorf("expected retained row, got %d", count)
	}

	if err := s.DeleteGoal(ctx, g.ID); err == nil {
		t.Error("expected error on second delete")
	}
}

func TestListGoalsFilters(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.CreateGoal(ctx, CreateGoalParams{UserID: "u1", Title: "a", Category: model.CategoryLearning})
	s.CreateGoal(ctx, CreateGoalParams{UserID: "u1", Title: "b", Category: model.CategoryAchievement})
	s.CreateGoal(ctx, CreateGoalParams{UserID: "u2", Title: "c"})

	all, _ := s.ListGoals(ctx, ListGoalsParams{})
	if len(all) != 3 {
		t.Errorf("expected 3, got %d", len(all))
	}

	u1, _ := s.ListGoals(ctx, ListGoalsParams{UserID: "u1"})
	if len(u1) != 2 {
		t.Errorf("expected 2 for u1, got %d", len(u1))
	}

	learning, _ := s.ListGoals(ctx, ListGoalsParams{UserID: "u1", Category: model.CategoryLearning})
	if len(learning) != 1 {
		t.Errorf("expected 1 learning goal, got %d", len(learning))
	}
}

func TestCreateSpaceAndGoalBackref(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	g, _ := s.CreateGoal(ctx, CreateGoalParams{UserID: "u1", Title: "Learn Go"})
	sp, err := s.CreateSpace(ctx, CreateSpaceParams{
		GoalID:   g.ID,
		UserID:   "u1",
		Title:    "Concurrency",
		Category: model.CategoryLearning,
		Mentor:   model.Mentor{Name: "Ada", Expertise: []string{"go"}, System: "You are Ada."},
		ToDoList: []string{"read the memory model", "write a worker pool"},
		Palette:  model.Palette{Main: "#6366f1", Secondary: "#a5b4fc", Tertiary: "#e0e7ff"},
	})
	if err != nil {
		t.Fatalf("create space: %v", err)
	}

	got, err := s.GetSpace(ctx, sp.ID)
	if err != nil {
		t.Fatalf("get space: %v", err)
	}
	if got.Mentor.Name != "Ada" {
		t.Errorf("mentor not persisted: %+v", got.Mentor)
	}
	if len(got.ToDoList) != 2 {
		t.Errorf("expected 2 todos, got %d", len(got.ToDoList))
	}
	if got.Palette.Main != "#6366f1" {
		t.Errorf("palette not persisted: %+v", got.Palette)
	}

	// Goal carries a non-owning back-reference to its spaces
	goal, _ := s.GetGoal(ctx, g.ID)
	if len(goal.SpaceIDs) != 1 || goal.SpaceIDs[0] != sp.ID {
		t.Errorf("expected space backref on goal, got %v", goal.SpaceIDs)
	}
}

func TestUpdateSpaceContentBlobs(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	sp, _ := s.CreateSpace(ctx, CreateSpaceParams{UserID: "u1", Title: "Concurrency"})

	plan := "# Week 1\nGoroutines"
	todos := []string{"only one"}
	updated, err := s.UpdateSpace(ctx, UpdateSpaceParams{ID: sp.ID, Plan: &plan, ToDoList: &todos})
	if err != nil {
		t.Fatalf("update space: %v", err)
	}
	if updated.Plan != plan {
		t.Errorf("plan not saved: %q", updated.Plan)
	}
	if len(updated.ToDoList) != 1 || updated.ToDoList[0] != "only one" {
		t.Errorf("todo list not replaced: %v", updated.ToDoList)
	}
}

func TestSaveModulesReplacesOrdered(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	sp, _ := s.CreateSpace(ctx, CreateSpaceParams{UserID: "u1", Title: "Concurrency"})

	first, err := s.SaveModules(ctx, sp.ID, []model.Module{
		{Title: "Goroutines", Content: "go func"},
		{Title: "Channels", Content: "make(chan)"},
	})
	if err != nil {
		t.Fatalf("save modules: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 modules, got %d", len(first))
	}

	// Second save replaces the whole set
	s.SaveModules(ctx, sp.ID, []model.Module{{Title: "Select"}})
	mods, _ := s.ListModules(ctx, sp.ID)
	if len(mods) != 1 || mods[0].Title != "Select" {
		t.Errorf("expected replaced set, got %v", mods)
	}
	if mods[0].OrderIndex != 0 {
		t.Errorf("expected order index 0, got %d", mods[0].OrderIndex)
	}
}

func TestSetModuleDone(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	sp, _ := s.CreateSpace(ctx, CreateSpaceParams{UserID: "u1", Title: "Concurrency"})
	mods, _ := s.SaveModules(ctx, sp.ID, []model.Module{{Title: "Goroutines"}})

	if err := s.SetModuleDone(ctx, mods[0].ID, true); err != nil {
		t.Fatalf("set done: %v", err)
	}
	got, _ := s.ListModules(ctx, sp.ID)
	if !got[0].Completed {
		t.Error("expected module completed")
	}

	if err := s.SetModuleDone(ctx, "missing", true); err == nil {
		t.Error("expected error for unknown module")
	}
}

func TestMessagesAppendOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.AppendMessage(ctx, model.ChatMessage{SpaceID: "sp1", Role: model.RoleUser, Content: "hi"})
	s.AppendMessage(ctx, model.ChatMessage{SpaceID: "sp1", Role: model.RoleAssistant, Content: "hello"})
	s.AppendMessage(ctx, model.ChatMessage{SpaceID: "sp2", Role: model.RoleUser, Content: "other"})

	msgs, err := s.ListMessages(ctx, "sp1", 0)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2, got %d", len(msgs))
	}
	if msgs[0].Role != model.RoleUser || msgs[1].Role != model.RoleAssistant {
		t.Errorf("messages out of order: %v", msgs)
	}
}

func TestDBPathCreation(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sub", "dir", "test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("expected db file to be created")
	}
}
