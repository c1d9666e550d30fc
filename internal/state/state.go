// Package state holds the in-memory application snapshot and persists a
// partial projection of it to disk. The durable store remains the source of
// truth; the snapshot is the current best-known view, reconciled by the
// Load* methods.
package state

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/goalspace/goalspace/internal/model"
	"github.com/goalspace/goalspace/internal/store"
)

// SnapshotVersion is bumped on persisted-shape changes. A snapshot written
// by a different version is discarded and rebuilt from the store.
const SnapshotVersion = 1

// GoalPatch is a partial in-memory goal update. Nil fields are left alone.
type GoalPatch struct {
	Title       *string
	Description *string
	Status      *model.GoalStatus
	Progress    *int
}

// State is the mutable application snapshot. One mutex serializes every
// mutation; persistence is write-through and best-effort.
type State struct {
	mu    sync.Mutex
	path  string
	store store.Store

	goals         []model.Goal
	spaces        []model.Space
	modules       map[string][]model.Module      // space id -> modules
	todoStates    map[string]map[string]bool     // space id -> index key -> checked
	histories     map[string][]model.ChatMessage // space id -> chat history
	activeGoalID  string
	activeSpaceID string
	siteInfo      model.SiteInfo

	loading bool
	lastErr string
}

// snapshot is the persisted projection. Modules and chat histories are
// refetched from the store rather than persisted.
type snapshot struct {
	Version       int                        `json:"version"`
	Goals         []model.Goal               `json:"goals,omitempty"`
	Spaces        []model.Space              `json:"spaces,omitempty"`
	TodoStates    map[string]map[string]bool `json:"todo_states,omitempty"`
	ActiveGoalID  string                     `json:"active_goal_id,omitempty"`
	ActiveSpaceID string                     `json:"active_space_id,omitempty"`
	SiteInfo      model.SiteInfo             `json:"site_info,omitempty"`
}

// Open creates a State backed by the given store, restoring any persisted
// snapshot at path. A missing or version-mismatched snapshot starts empty.
func Open(path string, st store.Store) (*State, error) {
	s := &State{
		path:       path,
		store:      st,
		modules:    map[string][]model.Module{},
		todoStates: map[string]map[string]bool{},
		histories:  map[string][]model.ChatMessage{},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil || snap.Version != SnapshotVersion {
		// Stale or corrupt snapshot: discard, the store has the truth
		return s, nil
	}

	s.goals = snap.Goals
	s.spaces = snap.Spaces
	if snap.TodoStates != nil {
		s.todoStates = snap.TodoStates
	}
	s.activeGoalID = snap.ActiveGoalID
	s.activeSpaceID = snap.ActiveSpaceID
	s.siteInfo = snap.SiteInfo
	return s, nil
}

// persist writes the projection through to disk. Callers hold s.mu.
// Errors are swallowed: persistence is a cache of the store, not the truth.
func (s *State) persist() {
	if s.path == "" {
		return
	}
	snap := snapshot{
		Version:       SnapshotVersion,
		Goals:         s.goals,
		Spaces:        s.spaces,
		TodoStates:    s.todoStates,
		ActiveGoalID:  s.activeGoalID,
		ActiveSpaceID: s.activeSpaceID,
		SiteInfo:      s.siteInfo,
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return
	}
	os.MkdirAll(filepath.Dir(s.path), 0o755)
	os.WriteFile(s.path, data, 0o644)
}

// --- Goals ---

// SetGoals replaces the goal list.
func (s *State) SetGoals(goals []model.Goal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.goals = goals
	s.persist()
}

// AddGoal appends a goal to the snapshot.
func (s *State) AddGoal(g model.Goal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.goals = append(s.goals, g)
	s.persist()
}

// UpdateGoal merges a patch into the goal with the given id. Unknown ids are
// a no-op.
func (s *State) UpdateGoal(id string, patch GoalPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.goals {
		if s.goals[i].ID != id {
			continue
		}
		if patch.Title != nil {
			s.goals[i].Title = *patch.Title
		}
		if patch.Description != nil {
			s.goals[i].Description = *patch.Description
		}
		if patch.Status != nil {
			s.goals[i].Status = *patch.Status
		}
		if patch.Progress != nil {
			s.goals[i].Progress = model.ClampProgress(*patch.Progress)
		}
		break
	}
	s.persist()
}

// DeleteGoal removes a goal from the snapshot. If it was the active goal,
// the active goal id is cleared.
func (s *State) DeleteGoal(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	filtered := s.goals[:0]
	for _, g := range s.goals {
		if g.ID != id {
			filtered = append(filtered, g)
		}
	}
	s.goals = filtered
	if s.activeGoalID == id {
		s.activeGoalID = ""
	}
	s.persist()
}

// Goals returns a copy of the current goal list.
func (s *State) Goals() []model.Goal {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Goal, len(s.goals))
	copy(out, s.goals)
	return out
}

// SetActiveGoal records the goal the UI is focused on.
func (s *State) SetActiveGoal(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeGoalID = id
	s.persist()
}

// ActiveGoalID returns the focused goal id, "" when none.
func (s *State) ActiveGoalID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeGoalID
}

// --- Remote reconciliation ---

// LoadGoals fetches the goal list from the store and replaces the snapshot
// list. On failure the prior snapshot stays untouched and the error is
// recorded instead of returned.
func (s *State) LoadGoals(ctx context.Context, userID string) {
	s.setLoading(true)
	goals, err := s.store.ListGoals(ctx, store.ListGoalsParams{UserID: userID})
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.lastErr = fmt.Sprintf("load goals: %v", err)
		return
	}
	s.lastErr = ""
	s.goals = goals
	s.persist()
}

// LoadSpaces fetches the space list (and each space's modules) from the
// store. Failure semantics match LoadGoals.
func (s *State) LoadSpaces(ctx context.Context, userID string) {
	s.setLoading(true)
	spaces, err := s.store.ListSpaces(ctx, store.ListSpacesParams{UserID: userID})
	if err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.loading = false
		s.lastErr = fmt.Sprintf("load spaces: %v", err)
		return
	}

	modules := map[string][]model.Module{}
	for _, sp := range spaces {
		mods, err := s.store.ListModules(ctx, sp.ID)
		if err != nil {
			continue
		}
		modules[sp.ID] = mods
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.lastErr = ""
	s.spaces = spaces
	s.modules = modules
	s.persist()
}

func (s *State) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

// Loading reports whether a reconcile is in flight.
func (s *State) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// LastError returns the most recent reconcile error message, "" when the
// last operation succeeded.
func (s *State) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// --- Spaces and modules ---

// Spaces returns a copy of the current space list.
func (s *State) Spaces() []model.Space {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Space, len(s.spaces))
	copy(out, s.spaces)
	return out
}

// SetSpaces replaces the space list.
func (s *State) SetSpaces(spaces []model.Space) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spaces = spaces
	s.persist()
}

// Space returns the snapshot space with the given id.
func (s *State) Space(id string) (model.Space, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sp := range s.spaces {
		if sp.ID == id {
			return sp, true
		}
	}
	return model.Space{}, false
}

// Modules returns the cached modules for a space.
func (s *State) Modules(spaceID string) []model.Module {
	s.mu.Lock()
	defer s.mu.Unlock()
	mods := s.modules[spaceID]
	out := make([]model.Module, len(mods))
	copy(out, mods)
	return out
}

// ModulesBySpace returns the full modules mapping.
func (s *State) ModulesBySpace() map[string][]model.Module {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]model.Module, len(s.modules))
	for k, v := range s.modules {
		mods := make([]model.Module, len(v))
		copy(mods, v)
		out[k] = mods
	}
	return out
}

// SetModules replaces the cached modules for a space.
func (s *State) SetModules(spaceID string, mods []model.Module) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modules[spaceID] = mods
}

// --- To-do overlay ---

// ToggleTodo flips the checked state for one to-do index. The space's text
// list is never touched here.
func (s *State) ToggleTodo(spaceID string, index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strconv.Itoa(index)
	if s.todoStates[spaceID] == nil {
		s.todoStates[spaceID] = map[string]bool{}
	}
	s.todoStates[spaceID][key] = !s.todoStates[spaceID][key]
	s.persist()
}

// TodoChecked reports the checked state for one to-do index.
func (s *State) TodoChecked(spaceID string, index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.todoStates[spaceID][strconv.Itoa(index)]
}

// UpdateTodoList replaces a space's to-do text list and prunes overlay keys
// that now point past the end of the new list.
func (s *State) UpdateTodoList(spaceID string, newList []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.spaces {
		if s.spaces[i].ID == spaceID {
			s.spaces[i].ToDoList = newList
			break
		}
	}
	if overlay := s.todoStates[spaceID]; overlay != nil {
		for key := range overlay {
			idx, err := strconv.Atoi(key)
			if err != nil || idx >= len(newList) {
				delete(overlay, key)
			}
		}
	}
	s.persist()
}

// --- Chat histories ---

// AddMessage appends to a space's in-memory chat history. Growth is
// unbounded; the durable history lives in the store.
func (s *State) AddMessage(spaceID string, m model.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.histories[spaceID] = append(s.histories[spaceID], m)
}

// History returns a copy of a space's chat history.
func (s *State) History(spaceID string) []model.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.histories[spaceID]
	out := make([]model.ChatMessage, len(h))
	copy(out, h)
	return out
}

// SetHistory replaces a space's chat history, e.g. after a store refetch.
func (s *State) SetHistory(spaceID string, msgs []model.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.histories[spaceID] = msgs
}

// --- Site info ---

// SetSiteInfo records client environment facts for personalization.
func (s *State) SetSiteInfo(info model.SiteInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.siteInfo = info
	s.persist()
}

// SiteInfo returns the recorded environment facts.
func (s *State) SiteInfo() model.SiteInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.siteInfo
}
