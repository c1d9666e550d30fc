// Package app orchestrates store, state, and generation into the
// operations the CLI exposes. Each operation performs its side effect
// against the store first, then writes the confirmed result back into the
// snapshot.
package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/goalspace/goalspace/internal/config"
	"github.com/goalspace/goalspace/internal/llm"
	"github.com/goalspace/goalspace/internal/mentor"
	"github.com/goalspace/goalspace/internal/model"
	"github.com/goalspace/goalspace/internal/state"
	"github.com/goalspace/goalspace/internal/store"
	"github.com/goalspace/goalspace/internal/vector"
)

// App bundles the collaborators behind the CLI operations. Gen and Index
// may be nil: generation falls back to static defaults and similarity
// search degrades to empty results.
type App struct {
	Store   *store.SQLiteStore
	State   *state.State
	Gen     llm.Generator
	Catalog *mentor.Catalog
	Index   *vector.Index
	Cfg     *config.Config
	Logger  *log.Logger
}

func (a *App) logger() *log.Logger {
	if a.Logger == nil {
		a.Logger = log.New(io.Discard, "", 0)
	}
	return a.Logger
}

// genCtx bounds a generation call with the configured deadline.
func (a *App) genCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.Cfg.GenerateTimeout())
}

// CreateGoal stores a new goal and mirrors it into the snapshot.
func (a *App) CreateGoal(ctx context.Context, title, description string, category model.GoalCategory) (*model.Goal, error) {
	g, err := a.Store.CreateGoal(ctx, store.CreateGoalParams{
		UserID:      a.Cfg.UserID,
		Title:       title,
		Description: description,
		Category:    category,
	})
	if err != nil {
		return nil, err
	}
	a.State.AddGoal(*g)
	return g, nil
}

// UpdateGoalProgress sets a goal's progress and moves its status along with
// it. Progress is freely settable in either direction.
func (a *App) UpdateGoalProgress(ctx context.Context, id string, progress int) (*model.Goal, error) {
	progress = model.ClampProgress(progress)
	status := model.StatusInProgress
	switch {
	case progress == 0:
		status = model.StatusNotStarted
	case progress >= 100:
		status = model.StatusCompleted
	}

	g, err := a.Store.UpdateGoal(ctx, store.UpdateGoalParams{ID: id, Progress: &progress, Status: &status})
	if err != nil {
		return nil, err
	}
	a.State.UpdateGoal(id, state.GoalPatch{Progress: &progress, Status: &status})
	return g, nil
}

// DeleteGoal soft-deletes in the store and removes the goal from the
// snapshot, clearing the active goal if it was deleted.
func (a *App) DeleteGoal(ctx context.Context, id string) error {
	if err := a.Store.DeleteGoal(ctx, id); err != nil {
		return err
	}
	a.State.DeleteGoal(id)
	return nil
}

// CreateSpace creates a learning space under a goal: assigns a mentor
// persona and palette, and bootstraps objectives and starter tasks from the
// generator when one is configured.
func (a *App) CreateSpace(ctx context.Context, goalID, title, description string, category model.GoalCategory) (*model.Space, error) {
	if category == "" {
		category = model.CategoryLearning
	}

	existing, err := a.Store.ListSpaces(ctx, store.ListSpacesParams{UserID: a.Cfg.UserID})
	if err != nil {
		return nil, err
	}
	orderIndex := len(existing)

	m := a.Catalog.Assign(category, title)
	objectives, prereqs, todos := a.bootstrap(ctx, title, description, category)

	sp, err := a.Store.CreateSpace(ctx, store.CreateSpaceParams{
		GoalID:        goalID,
		UserID:        a.Cfg.UserID,
		Title:         title,
		Description:   description,
		Category:      category,
		Mentor:        m,
		Objectives:    objectives,
		Prerequisites: prereqs,
		ToDoList:      todos,
		Palette:       mentor.PaletteFor(orderIndex),
		OrderIndex:    orderIndex,
	})
	if err != nil {
		return nil, err
	}

	a.State.SetSpaces(append(a.State.Spaces(), *sp))
	return sp, nil
}

// bootstrap asks the generator for starter tasks via the marker convention.
// Without a generator, or when the reply carries no tasks, static defaults
// are used.
func (a *App) bootstrap(ctx context.Context, title, description string, category model.GoalCategory) (objectives, prereqs, todos []string) {
	objectives = []string{fmt.Sprintf("Understand the fundamentals of %s", title)}
	prereqs = []string{"Curiosity and a notebook"}
	todos = []string{
		fmt.Sprintf("Spend 25 minutes surveying %s", title),
		"Write down what success looks like",
	}

	if a.Gen == nil {
		return objectives, prereqs, todos
	}

	gctx, cancel := a.genCtx(ctx)
	defer cancel()

	reply, err := a.Gen.Chat(gctx, "", []llm.Message{
		{Role: model.RoleUser, Content: mentor.BootstrapPrompt(title, description, category)},
	}, a.genOpts())
	if err != nil {
		a.logger().Printf("space bootstrap generation failed, using defaults: %v", err)
		return objectives, prereqs, todos
	}

	ex := llm.ExtractSections(reply)
	if len(ex.Tasks) > 0 {
		todos = todos[:0]
		for _, task := range ex.Tasks {
			todos = append(todos, task.Title)
		}
	}
	return objectives, prereqs, todos
}

// GeneratePlan generates and stores a learning plan for a space.
func (a *App) GeneratePlan(ctx context.Context, spaceID string) (string, error) {
	return a.generateBlob(ctx, spaceID, "plan")
}

// GenerateResearch generates and stores a research brief for a space.
func (a *App) GenerateResearch(ctx context.Context, spaceID string) (string, error) {
	return a.generateBlob(ctx, spaceID, "research")
}

// GenerateMindMap generates a mermaid mind map for a space and stores the
// extracted diagram.
func (a *App) GenerateMindMap(ctx context.Context, spaceID string) (string, error) {
	return a.generateBlob(ctx, spaceID, "mindmap")
}

func (a *App) generateBlob(ctx context.Context, spaceID, kind string) (string, error) {
	if a.Gen == nil {
		return "", fmt.Errorf("generation disabled: no provider configured")
	}
	sp, err := a.Store.GetSpace(ctx, spaceID)
	if err != nil {
		return "", err
	}

	var prompt string
	switch kind {
	case "plan":
		prompt = mentor.PlanPrompt(*sp)
	case "research":
		prompt = mentor.ResearchPrompt(*sp)
	case "mindmap":
		prompt = mentor.MindMapPrompt(*sp)
	default:
		return "", fmt.Errorf("unknown generation kind %q", kind)
	}

	gctx, cancel := a.genCtx(ctx)
	defer cancel()

	reply, err := a.Gen.Chat(gctx, sp.Mentor.System, []llm.Message{
		{Role: model.RoleUser, Content: prompt},
	}, a.genOpts())
	if err != nil {
		return "", fmt.Errorf("generate %s: %w", kind, err)
	}

	content := strings.TrimSpace(reply)
	params := store.UpdateSpaceParams{ID: spaceID}
	switch kind {
	case "plan":
		params.Plan = &content
	case "research":
		params.Research = &content
	case "mindmap":
		if diagram := llm.ExtractMermaid(reply); diagram != "" {
			content = diagram
		}
		params.MindMap = &content
	}

	if _, err := a.Store.UpdateSpace(ctx, params); err != nil {
		return "", err
	}
	a.State.LoadSpaces(ctx, a.Cfg.UserID)
	return content, nil
}

func (a *App) genOpts() llm.Options {
	return llm.Options{
		Model:       a.Cfg.LLM.Model,
		Temperature: a.Cfg.LLM.Temperature,
		MaxTokens:   a.Cfg.LLM.MaxTokens,
	}
}

// CompleteModule marks a module done and rolls completion up: space
// progress becomes its module completion rate, and the owning goal's
// progress becomes the mean progress of its spaces.
func (a *App) CompleteModule(ctx context.Context, spaceID, moduleID string, done bool) error {
	if err := a.Store.SetModuleDone(ctx, moduleID, done); err != nil {
		return err
	}

	mods, err := a.Store.ListModules(ctx, spaceID)
	if err != nil {
		return err
	}
	completed := 0
	for _, m := range mods {
		if m.Completed {
			completed++
		}
	}
	progress := state.CompletionRate(completed, len(mods))
	sp, err := a.Store.UpdateSpace(ctx, store.UpdateSpaceParams{ID: spaceID, Progress: &progress})
	if err != nil {
		return err
	}

	if sp.GoalID != "" {
		if err := a.rollUpGoal(ctx, sp.GoalID); err != nil {
			return err
		}
	}

	a.State.SetModules(spaceID, mods)
	a.State.LoadSpaces(ctx, a.Cfg.UserID)
	return nil
}

func (a *App) rollUpGoal(ctx context.Context, goalID string) error {
	spaces, err := a.Store.ListSpaces(ctx, store.ListSpacesParams{GoalID: goalID})
	if err != nil {
		return err
	}
	if len(spaces) == 0 {
		return nil
	}
	sum := 0
	for _, sp := range spaces {
		sum += sp.Progress
	}
	_, err = a.UpdateGoalProgress(ctx, goalID, sum/len(spaces))
	return err
}

// IndexSpaceDocuments adds a space's modules and notes to the similarity
// index. Returns the number of documents indexed.
func (a *App) IndexSpaceDocuments(ctx context.Context, spaceID string) (int, error) {
	if a.Index == nil {
		return 0, fmt.Errorf("similarity index disabled: no embedding provider configured")
	}
	sp, err := a.Store.GetSpace(ctx, spaceID)
	if err != nil {
		return 0, err
	}
	mods, err := a.Store.ListModules(ctx, spaceID)
	if err != nil {
		return 0, err
	}

	indexed := 0
	for _, m := range mods {
		if m.Content == "" {
			continue
		}
		err := a.Index.IndexDocument(ctx, "module:"+m.ID, m.Title+"\n\n"+m.Content,
			map[string]string{"space_id": spaceID, "kind": "module"})
		if err != nil {
			return indexed, fmt.Errorf("index module %s: %w", m.ID, err)
		}
		indexed++
	}
	for kind, content := range map[string]string{"plan": sp.Plan, "research": sp.Research} {
		if content == "" {
			continue
		}
		err := a.Index.IndexDocument(ctx, kind+":"+spaceID, content,
			map[string]string{"space_id": spaceID, "kind": kind})
		if err != nil {
			return indexed, fmt.Errorf("index %s: %w", kind, err)
		}
		indexed++
	}
	return indexed, nil
}

// FindSimilarDocuments searches the similarity index. A disabled or
// unreachable index yields an empty list, never an error.
func (a *App) FindSimilarDocuments(ctx context.Context, query string, n int) []vector.Result {
	if a.Index == nil {
		return []vector.Result{}
	}
	return a.Index.FindSimilar(ctx, query, n, 0.3)
}
