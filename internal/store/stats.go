package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath           string      `json:"db_path"`
	DBSizeBytes      int64       `json:"db_size_bytes"`
	TotalGoals       int         `json:"total_goals"`
	ActiveGoals      int         `json:"active_goals"`
	TotalSpaces      int         `json:"total_spaces"`
	TotalModules     int         `json:"total_modules"`
	CompletedModules int         `json:"completed_modules"`
	TotalMessages    int         `json:"total_messages"`
	Users            []UserStats `json:"users,omitempty"`
}

// UserStats holds per-user counts.
type UserStats struct {
	UserID string `json:"user_id"`
	Goals  int    `json:"goals"`
	Spaces int    `json:"spaces"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	// DB file size
	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM goals`).Scan(&st.TotalGoals)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM goals WHERE deleted_at IS NULL AND progress < 100`).Scan(&st.ActiveGoals)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM spaces`).Scan(&st.TotalSpaces)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM modules`).Scan(&st.TotalModules)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM modules WHERE completed = 1`).Scan(&st.CompletedModules)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&st.TotalMessages)

	rows, err := s.db.QueryContext(ctx, `
		SELECT g.user_id, COUNT(DISTINCT g.id) AS goals, COUNT(DISTINCT sp.id) AS spaces
		FROM goals g
		LEFT JOIN spaces sp ON sp.user_id = g.user_id
		WHERE g.deleted_at IS NULL
		GROUP BY g.user_id ORDER BY goals DESC`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var u UserStats
		rows.Scan(&u.UserID, &u.Goals, &u.Spaces)
		st.Users = append(st.Users, u)
	}

	return st, nil
}
