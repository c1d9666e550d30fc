// Package store provides the durable goal/space storage interface and its
// SQLite implementation.
package store

import (
	"context"

	"github.com/goalspace/goalspace/internal/model"
)

// CreateGoalParams holds parameters for creating a goal.
type CreateGoalParams struct {
	UserID      string
	Title       string
	Description string
	Category    model.GoalCategory
}

// UpdateGoalParams holds a partial goal update. Nil fields are left untouched.
type UpdateGoalParams struct {
	ID          string
	Title       *string
	Description *string
	Status      *model.GoalStatus
	Progress    *int
}

// ListGoalsParams holds parameters for listing goals.
type ListGoalsParams struct {
	UserID   string
	Status   model.GoalStatus   // "" means any
	Category model.GoalCategory // "" means any
	Limit    int
}

// CreateSpaceParams holds parameters for creating a space.
type CreateSpaceParams struct {
	GoalID        string
	UserID        string
	Title         string
	Description   string
	Category      model.GoalCategory
	Mentor        model.Mentor
	Objectives    []string
	Prerequisites []string
	ToDoList      []string
	Palette       model.Palette
	OrderIndex    int
}

// UpdateSpaceParams holds a partial space update. Nil fields are left
// untouched; ToDoList replaces the whole list when non-nil.
type UpdateSpaceParams struct {
	ID       string
	Title    *string
	Plan     *string
	Research *string
	MindMap  *string
	ToDoList *[]string
	Progress *int
}

// ListSpacesParams holds parameters for listing spaces.
type ListSpacesParams struct {
	UserID string
	GoalID string
	Limit  int
}

// Store defines the durable storage interface. The SQLite implementation is
// the source of truth the state snapshot reconciles against.
type Store interface {
	CreateGoal(ctx context.Context, p CreateGoalParams) (*model.Goal, error)
	GetGoal(ctx context.Context, id string) (*model.Goal, error)
	ListGoals(ctx context.Context, p ListGoalsParams) ([]model.Goal, error)
	UpdateGoal(ctx context.Context, p UpdateGoalParams) (*model.Goal, error)
	// DeleteGoal soft-deletes; the row is retained with deleted_at set.
	DeleteGoal(ctx context.Context, id string) error

	CreateSpace(ctx context.Context, p CreateSpaceParams) (*model.Space, error)
	GetSpace(ctx context.Context, id string) (*model.Space, error)
	ListSpaces(ctx context.Context, p ListSpacesParams) ([]model.Space, error)
	UpdateSpace(ctx context.Context, p UpdateSpaceParams) (*model.Space, error)

	// SaveModules replaces the ordered module set of a space.
	SaveModules(ctx context.Context, spaceID string, modules []model.Module) ([]model.Module, error)
	ListModules(ctx context.Context, spaceID string) ([]model.Module, error)
	SetModuleDone(ctx context.Context, moduleID string, done bool) error

	AppendMessage(ctx context.Context, m model.ChatMessage) (*model.ChatMessage, error)
	ListMessages(ctx context.Context, spaceID string, limit int) ([]model.ChatMessage, error)

	Close() error
}
