package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/goalspace/goalspace/internal/model"
)

// SearchParams holds parameters for searching spaces and modules.
type SearchParams struct {
	UserID string
	Query  string
	Limit  int
}

// SearchResult is a space hit with the modules that matched inside it.
type SearchResult struct {
	model.Space
	MatchModules []model.Module `json:"match_modules,omitempty"`
}

// Search finds spaces whose title, description, content blobs, or modules
// match the query substring.
func (s *SQLiteStore) Search(ctx context.Context, p SearchParams) ([]SearchResult, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	query := "%" + p.Query + "%"

	where := []string{"1=1"}
	args := []interface{}{}
	if p.UserID != "" {
		where = append(where, "sp.user_id = ?")
		args = append(args, p.UserID)
	}

	sql := fmt.Sprintf(`
		SELECT DISTINCT sp.id, sp.goal_id, sp.user_id, sp.title, sp.description, sp.category,
		       sp.mentor, sp.objectives, sp.prerequisites, sp.todo_list, sp.plan, sp.research,
		       sp.mind_map, sp.palette, sp.progress, sp.order_index, sp.created_at, sp.updated_at
		FROM spaces sp
		LEFT JOIN modules m ON m.space_id = sp.id
		WHERE %s AND (sp.title LIKE ? OR sp.description LIKE ? OR sp.plan LIKE ?
		              OR sp.research LIKE ? OR m.title LIKE ? OR m.content LIKE ?)
		ORDER BY sp.created_at DESC
		LIMIT ?`, strings.Join(where, " AND "))

	args = append(args, query, query, query, query, query, query, limit)

	rows, err := s.db.QueryContext(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []SearchResult
	seen := map[string]bool{}
	for rows.Next() {
		sp, err := scanSpace(rows)
		if err != nil {
			return nil, err
		}
		if seen[sp.ID] {
			continue
		}
		seen[sp.ID] = true
		results = append(results, SearchResult{Space: sp})
	}

	// Attach the matching modules per hit
	for i := range results {
		mods, err := s.matchingModules(ctx, results[i].ID, p.Query)
		if err != nil {
			continue
		}
		results[i].MatchModules = mods
	}

	return results, nil
}

func (s *SQLiteStore) matchingModules(ctx context.Context, spaceID, query string) ([]model.Module, error) {
	like := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, space_id, title, description, content, order_index, completed, created_at, updated_at
		 FROM modules WHERE space_id = ? AND (title LIKE ? OR content LIKE ?)
		 ORDER BY order_index ASC`, spaceID, like, like)
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
