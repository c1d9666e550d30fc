package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/goalspace/goalspace/internal/model"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	entropy *rand.Rand
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS goals (
		id          TEXT PRIMARY KEY,
		user_id     TEXT NOT NULL,
		title       TEXT NOT NULL,
		description TEXT,
		category    TEXT NOT NULL DEFAULT 'learning',
		status      TEXT NOT NULL DEFAULT 'not_started',
		progress    INTEGER NOT NULL DEFAULT 0,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL,
		deleted_at  TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_goals_user ON goals(user_id);
	CREATE INDEX IF NOT EXISTS idx_goals_deleted ON goals(deleted_at);

	CREATE TABLE IF NOT EXISTS spaces (
		id            TEXT PRIMARY KEY,
		goal_id       TEXT,
		user_id       TEXT NOT NULL,
		title         TEXT NOT NULL,
		description   TEXT,
		category      TEXT NOT NULL DEFAULT 'learning',
		mentor        TEXT,
		objectives    TEXT,
		prerequisites TEXT,
		todo_list     TEXT,
		plan          TEXT,
		research      TEXT,
		mind_map      TEXT,
		palette       TEXT,
		progress      INTEGER NOT NULL DEFAULT 0,
		order_index   INTEGER NOT NULL DEFAULT 0,
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_spaces_goal ON spaces(goal_id);
	CREATE INDEX IF NOT EXISTS idx_spaces_user ON spaces(user_id);

	CREATE TABLE IF NOT EXISTS modules (
		id          TEXT PRIMARY KEY,
		space_id    TEXT NOT NULL REFERENCES spaces(id),
		title       TEXT NOT NULL,
		description TEXT,
		content     TEXT,
		order_index INTEGER NOT NULL DEFAULT 0,
		completed   INTEGER NOT NULL DEFAULT 0,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_modules_space ON modules(space_id);

	CREATE TABLE IF NOT EXISTS messages (
		id         TEXT PRIMARY KEY,
		space_id   TEXT NOT NULL,
		role       TEXT NOT NULL,
		content    TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_messages_space ON messages(space_id, created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// --- Goals ---

func (s *SQLiteStore) CreateGoal(ctx context.Context, p CreateGoalParams) (*model.Goal, error) {
	if p.UserID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	if strings.TrimSpace(p.Title) == "" {
		return nil, fmt.Errorf("title is required")
	}
	category := p.Category
	if category == "" {
		category = model.CategoryLearning
	}
	if !model.ValidCategories[category] {
		return nil, fmt.Errorf("invalid category %q", category)
	}

	now := time.Now().UTC()
	g := &model.Goal{
		ID:          s.newID(),
		UserID:      p.UserID,
		Title:       strings.TrimSpace(p.Title),
		Description: p.Description,
		Category:    category,
		Status:      model.StatusNotStarted,
		Progress:    0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO goals (id, user_id, title, description, category, status, progress, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.UserID, g.Title, g.Description, g.Category, g.Status, g.Progress,
		now.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("insert goal: %w", err)
	}
	return g, nil
}

func (s *SQLiteStore) GetGoal(ctx context.Context, id string) (*model.Goal, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, description, category, status, progress, created_at, updated_at, deleted_at
		 FROM goals WHERE id = ? AND deleted_at IS NULL`, id)
	g, err := scanGoal(row)
	if err != nil {
		return nil, fmt.Errorf("goal not found: %s", id)
	}
	g.SpaceIDs, _ = s.spaceIDsForGoal(ctx, id)
	return &g, nil
}

func (s *SQLiteStore) ListGoals(ctx context.Context, p ListGoalsParams) ([]model.Goal, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 50
	}

	where := []string{"deleted_at IS NULL"}
	args := []interface{}{}

	if p.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, p.UserID)
	}
	if p.Status != "" {
		where = append(where, "status = ?")
		args = append(args, p.Status)
	}
	if p.Category != "" {
		where = append(where, "category = ?")
		args = append(args, p.Category)
	}

	query := fmt.Sprintf(
		`SELECT id, user_id, title, description, category, status, progress, created_at, updated_at, deleted_at
		 FROM goals WHERE %s ORDER BY created_at DESC LIMIT ?`, strings.Join(where, " AND "))
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []model.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	for i := range goals {
		goals[i].SpaceIDs, _ = s.spaceIDsForGoal(ctx, goals[i].ID)
	}
	return goals, nil
}

func (s *SQLiteStore) UpdateGoal(ctx context.Context, p UpdateGoalParams) (*model.Goal, error) {
	set := []string{"updated_at = ?"}
	args := []interface{}{time.Now().UTC().Format(time.RFC3339)}

	if p.Title != nil {
		set = append(set, "title = ?")
		args = append(args, *p.Title)
	}
	if p.Description != nil {
		set = append(set, "description = ?")
		args = append(args, *p.Description)
	}
	if p.Status != nil {
		if !model.ValidStatuses[*p.Status] {
			return nil, fmt.Errorf("invalid status %q", *p.Status)
		}
		set = append(set, "status = ?")
		args = append(args, *p.Status)
	}
	if p.Progress != nil {
		set = append(set, "progress = ?")
		args = append(args, model.ClampProgress(*p.Progress))
	}

	query := fmt.Sprintf(`UPDATE goals SET %s WHERE id = ? AND deleted_at IS NULL`, strings.Join(set, ", "))
	args = append(args, p.ID)

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update goal: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("goal not found: %s", p.ID)
	}
	return s.GetGoal(ctx, p.ID)
}

func (s *SQLiteStore) DeleteGoal(ctx context.Context, id string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx,
		`UPDATE goals SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, now, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("goal not found: %s", id)
	}
	return nil
}

// --- Spaces ---

func (s *SQLiteStore) CreateSpace(ctx context.Context, p CreateSpaceParams) (*model.Space, error) {
	if p.UserID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	if strings.TrimSpace(p.Title) == "" {
		return nil, fmt.Errorf("title is required")
	}
	category := p.Category
	if category == "" {
		category = model.CategoryLearning
	}

	now := time.Now().UTC()
	sp := &model.Space{
		ID:            s.newID(),
		GoalID:        p.GoalID,
		UserID:        p.UserID,
		Title:         strings.TrimSpace(p.Title),
		Description:   p.Description,
		Category:      category,
		Mentor:        p.Mentor,
		Objectives:    p.Objectives,
		Prerequisites: p.Prerequisites,
		ToDoList:      p.ToDoList,
		Palette:       p.Palette,
		OrderIndex:    p.OrderIndex,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	mentorJSON, _ := json.Marshal(sp.Mentor)
	paletteJSON, _ := json.Marshal(sp.Palette)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO spaces (id, goal_id, user_id, title, description, category, mentor,
		                     objectives, prerequisites, todo_list, palette, progress, order_index,
		                     created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?, ?)`,
		sp.ID, nullIfEmpty(sp.GoalID), sp.UserID, sp.Title, sp.Description, sp.Category,
		string(mentorJSON), marshalList(sp.Objectives), marshalList(sp.Prerequisites),
		marshalList(sp.ToDoList), string(paletteJSON), sp.OrderIndex,
		now.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("insert space: %w", err)
	}
	return sp, nil
}

func (s *SQLiteStore) GetSpace(ctx context.Context, id string) (*model.Space, error) {
	row := s.db.QueryRowContext(ctx, selectSpace+` WHERE id = ?`, id)
	sp, err := scanSpace(row)
	if err != nil {
		return nil, fmt.Errorf("space not found: %s", id)
	}
	return &sp, nil
}

func (s *SQLiteStore) ListSpaces(ctx context.Context, p ListSpacesParams) ([]model.Space, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 100
	}

	where := []string{"1=1"}
	args := []interface{}{}
	if p.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, p.UserID)
	}
	if p.GoalID != "" {
		where = append(where, "goal_id = ?")
		args = append(args, p.GoalID)
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY order_index ASC, created_at ASC LIMIT ?`,
		selectSpace, strings.Join(where, " AND "))
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var spaces []model.Space
	for rows.Next() {
		sp, err := scanSpace(rows)
		if err != nil {
			return nil, err
		}
		spaces = append(spaces, sp)
	}
	return spaces, nil
}

func (s *SQLiteStore) UpdateSpace(ctx context.Context, p UpdateSpaceParams) (*model.Space, error) {
	set := []string{"updated_at = ?"}
	args := []interface{}{time.Now().UTC().Format(time.RFC3339)}

	if p.Title != nil {
		set = append(set, "title = ?")
		args = append(args, *p.Title)
	}
	if p.Plan != nil {
		set = append(set, "plan = ?")
		args = append(args, *p.Plan)
	}
	if p.Research != nil {
		set = append(set, "research = ?")
		args = append(args, *p.Research)
	}
	if p.MindMap != nil {
		set = append(set, "mind_map = ?")
		args = append(args, *p.MindMap)
	}
	if p.ToDoList != nil {
		set = append(set, "todo_list = ?")
		args = append(args, marshalList(*p.ToDoList))
	}
	if p.Progress != nil {
		set = append(set, "progress = ?")
		args = append(args, model.ClampProgress(*p.Progress))
	}

	query := fmt.Sprintf(`UPDATE spaces SET %s WHERE id = ?`, strings.Join(set, ", "))
	args = append(args, p.ID)

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update space: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("space not found: %s", p.ID)
	}
	return s.GetSpace(ctx, p.ID)
}

func (s *SQLiteStore) spaceIDsForGoal(ctx context.Context, goalID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM spaces WHERE goal_id = ? ORDER BY order_index ASC`, goalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// --- Modules ---

func (s *SQLiteStore) SaveModules(ctx context.Context, spaceID string, modules []model.Module) ([]model.Module, error) {
	if _, err := s.GetSpace(ctx, spaceID); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM modules WHERE space_id = ?`, spaceID); err != nil {
		return nil, fmt.Errorf("clear modules: %w", err)
	}

	now := time.Now().UTC()
	saved := make([]model.Module, 0, len(modules))
	for i, m := range modules {
		m.ID = s.newID()
		m.SpaceID = spaceID
		m.OrderIndex = i
		m.CreatedAt = now
		m.UpdatedAt = now
		_, err := tx.ExecContext(ctx,
			`INSERT INTO modules (id, space_id, title, description, content, order_index, completed, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			m.ID, m.SpaceID, m.Title, m.Description, m.Content, m.OrderIndex, boolToInt(m.Completed),
			now.Format(time.RFC3339), now.Format(time.RFC3339))
		if err != nil {
			return nil, fmt.Errorf("insert module: %w", err)
		}
		saved = append(saved, m)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return saved, nil
}

func (s *SQLiteStore) ListModules(ctx context.Context, spaceID string) ([]model.Module, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, space_id, title, description, content, order_index, completed, created_at, updated_at
		 FROM modules WHERE space_id = ? ORDER BY order_index ASC`, spaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var modules []model.Module
	for rows.Next() {
		m, err := scanModule(rows)
		if err != nil {
			return nil, err
		}
		modules = append(modules, m)
	}
	return modules, nil
}

func (s *SQLiteStore) SetModuleDone(ctx context.Context, moduleID string, done bool) error {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx,
		`UPDATE modules SET completed = ?, updated_at = ? WHERE id = ?`,
		boolToInt(done), now, moduleID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("module not found: %s", moduleID)
	}
	return nil
}

// --- Messages ---

func (s *SQLiteStore) AppendMessage(ctx context.Context, m model.ChatMessage) (*model.ChatMessage, error) {
	if m.SpaceID == "" {
		return nil, fmt.Errorf("space id is required")
	}
	if m.ID == "" {
		m.ID = s.newID()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, space_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		m.ID, m.SpaceID, m.Role, m.Content, m.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return &m, nil
}

func (s *SQLiteStore) ListMessages(ctx context.Context, spaceID string, limit int) ([]model.ChatMessage, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, space_id, role, content, created_at
		 FROM messages WHERE space_id = ? ORDER BY created_at ASC LIMIT ?`, spaceID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []model.ChatMessage
	for rows.Next() {
		var m model.ChatMessage
		var createdAt string
		if err := rows.Scan(&m.ID, &m.SpaceID, &m.Role, &m.Content, &createdAt); err != nil {
			return nil, err
		}
		m.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		msgs = append(msgs, m)
	}
	return msgs, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- scanning helpers ---

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanGoal(row scanner) (model.Goal, error) {
	var g model.Goal
	var description, deletedAt sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(&g.ID, &g.UserID, &g.Title, &description, &g.Category, &g.Status,
		&g.Progress, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return g, err
	}

	g.Description = description.String
	g.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	g.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	if deletedAt.Valid {
		t, _ := time.Parse(time.RFC3339, deletedAt.String)
		g.DeletedAt = &t
	}
	return g, nil
}

const selectSpace = `SELECT id, goal_id, user_id, title, description, category, mentor,
       objectives, prerequisites, todo_list, plan, research, mind_map, palette,
       progress, order_index, created_at, updated_at
FROM spaces`

func scanSpace(row scanner) (model.Space, error) {
	var sp model.Space
	var goalID, description, mentor, objectives, prerequisites, todoList sql.NullString
	var plan, research, mindMap, palette sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(&sp.ID, &goalID, &sp.UserID, &sp.Title, &description, &sp.Category,
		&mentor, &objectives, &prerequisites, &todoList, &plan, &research, &mindMap,
		&palette, &sp.Progress, &sp.OrderIndex, &createdAt, &updatedAt)
	if err != nil {
		return sp, err
	}

	sp.GoalID = goalID.String
	sp.Description = description.String
	sp.Plan = plan.String
	sp.Research = research.String
	sp.MindMap = mindMap.String
	if mentor.Valid {
		json.Unmarshal([]byte(mentor.String), &sp.Mentor)
	}
	if palette.Valid {
		json.Unmarshal([]byte(palette.String), &sp.Palette)
	}
	sp.Objectives = unmarshalList(objectives)
	sp.Prerequisites = unmarshalList(prerequisites)
	sp.ToDoList = unmarshalList(todoList)
	sp.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	sp.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return sp, nil
}

func scanModule(row scanner) (model.Module, error) {
	var m model.Module
	var description, content sql.NullString
	var completed int
	var createdAt, updatedAt string

	err := row.Scan(&m.ID, &m.SpaceID, &m.Title, &description, &content,
		&m.OrderIndex, &completed, &createdAt, &updatedAt)
	if err != nil {
		return m, err
	}

	m.Description = description.String
	m.Content = content.String
	m.Completed = completed != 0
	m.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	m.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return m, nil
}

func marshalList(list []string) interface{} {
	if len(list) == 0 {
		return nil
	}
	b, _ := json.Marshal(list)
	return string(b)
}

func unmarshalList(s sql.NullString) []string {
	if !s.Valid || s.String == "" {
		return nil
	}
	var list []string
	json.Unmarshal([]byte(s.String), &list)
	return list
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
