package store

import (
	"context"

	"github.com/goalspace/goalspace/internal/model"
)

// Workspace is a full export of one user's data: goals, spaces, and each
// space's modules and chat history.
type Workspace struct {
	Goals    []model.Goal                   `json:"goals"`
	Spaces   []model.Space                  `json:"spaces"`
	Modules  map[string][]model.Module      `json:"modules,omitempty"`  // space id -> modules
	Messages map[string][]model.ChatMessage `json:"messages,omitempty"` // space id -> history
}

// ExportAll returns the full workspace, optionally filtered by user.
func (s *SQLiteStore) ExportAll(ctx context.Context, userID string) (*Workspace, error) {
	goals, err := s.ListGoals(ctx, ListGoalsParams{UserID: userID, Limit: 10000})
	if err != nil {
		return nil, err
	}
	spaces, err := s.ListSpaces(ctx, ListSpacesParams{UserID: userID, Limit: 10000})
	if err != nil {
		return nil, err
	}

	w := &Workspace{
		Goals:    goals,
		Spaces:   spaces,
		Modules:  map[string][]model.Module{},
		Messages: map[string][]model.ChatMessage{},
	}

	for _, sp := range spaces {
		mods, err := s.ListModules(ctx, sp.ID)
		if err != nil {
			return nil, err
		}
		if len(mods) > 0 {
			w.Modules[sp.ID] = mods
		}
		msgs, err := s.ListMessages(ctx, sp.ID, 0)
		if err != nil {
			return nil, err
		}
		if len(msgs) > 0 {
			w.Messages[sp.ID] = msgs
		}
	}

	return w, nil
}

// Import stores a previously exported workspace. Entities get fresh ids;
// goal/space references are remapped.
func (s *SQLiteStore) Import(ctx context.Context, w *Workspace) (int, error) {
	imported := 0
	goalIDs := map[string]string{} // old id -> new id

	for _, g := range w.Goals {
		created, err := s.CreateGoal(ctx, CreateGoalParams{
			UserID:      g.UserID,
			Title:       g.Title,
			Description: g.Description,
			Category:    g.Category,
		})
		if err != nil {
			return imported, err
		}
		if g.Status != "" && g.Status != model.StatusNotStarted || g.Progress != 0 {
			status := g.Status
			progress := g.Progress
			if _, err := s.UpdateGoal(ctx, UpdateGoalParams{ID: created.ID, Status: &status, Progress: &progress}); err != nil {
				return imported, err
			}
		}
		goalIDs[g.ID] = created.ID
		imported++
	}

	for _, sp := range w.Spaces {
		created, err := s.CreateSpace(ctx, CreateSpaceParams{
			GoalID:        goalIDs[sp.GoalID],
			UserID:        sp.UserID,
			Title:         sp.Title,
			Description:   sp.Description,
			Category:      sp.Category,
			Mentor:        sp.Mentor,
			Objectives:    sp.Objectives,
			Prerequisites: sp.Prerequisites,
			ToDoList:      sp.ToDoList,
			Palette:       sp.Palette,
			OrderIndex:    sp.OrderIndex,
		})
		if err != nil {
			return imported, err
		}
		imported++

		if mods, ok := w.Modules[sp.ID]; ok {
			if _, err := s.SaveModules(ctx, created.ID, mods); err != nil {
				return imported, err
			}
		}
		for _, m := range w.Messages[sp.ID] {
			m.ID = ""
			m.SpaceID = created.ID
			if _, err := s.AppendMessage(ctx, m); err != nil {
				return imported, err
			}
		}
	}

	return imported, nil
}
