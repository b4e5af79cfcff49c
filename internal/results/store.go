package results

import (
	"context"
	"database/sql"
)

// SessionResult is the persisted record of one finished game session.
type SessionResult struct {
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId,omitempty"`
	AnonID    string `json:"-"`
	Date      string `json:"date"` // YYYY-MM-DD, set for daily-challenge runs
	Score     int    `json:"score"`
	Solved    int    `json:"solved"`
	Level     int    `json:"level"`
	Rounds    int    `json:"rounds"`
	Bonus     bool   `json:"bonus"`
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Insert records a finished session. Duplicate session IDs are ignored.
func (s *Store) Insert(ctx context.Context, r SessionResult) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO sessions(session_id, user_id, anonymous_id, date, score, solved, level, rounds, bonus)
		 VALUES(?,?,?,?,?,?,?,?,?)`,
		r.SessionID, nullable(r.UserID), nullable(r.AnonID), nullable(r.Date),
		r.Score, r.Solved, r.Level, r.Rounds, boolInt(r.Bonus),
	)
	return err
}

// LBRow is one leaderboard entry.
type LBRow struct {
	Username string `json:"username,omitempty"`
	Score    int    `json:"score"`
	Solved   int    `json:"solved"`
	Level    int    `json:"level"`
	Bonus    bool   `json:"bonus"`
}

// Leaderboard returns the top sessions, optionally filtered to one
// daily-challenge date ("" means all-time).
func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT COALESCE(u.username, 'guest'), s.score, s.solved, s.level, s.bonus
	          FROM sessions s LEFT JOIN users u ON u.id = s.user_id `
	args := []any{}
	if date != "" {
		query += `WHERE s.date=? `
		args = append(args, date)
	}
	query += `ORDER BY s.score DESC, s.solved DESC, s.created_at ASC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LBRow
	for rows.Next() {
		var r LBRow
		var bonus int
		if err := rows.Scan(&r.Username, &r.Score, &r.Solved, &r.Level, &bonus); err != nil {
			return nil, err
		}
		r.Bonus = bonus != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

// History returns a user's recent finished sessions, newest first.
func (s *Store) History(ctx context.Context, userID string, limit int) ([]SessionResult, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, COALESCE(date,''), score, solved, level, rounds, bonus
		 FROM sessions WHERE user_id=? ORDER BY created_at DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SessionResult
	for rows.Next() {
		var r SessionResult
		var bonus int
		if err := rows.Scan(&r.SessionID, &r.Date, &r.Score, &r.Solved, &r.Level, &r.Rounds, &bonus); err != nil {
			return nil, err
		}
		r.UserID = userID
		r.Bonus = bonus != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

// AlreadyPlayed reports whether a user has a daily-challenge result for
// the given date.
func (s *Store) AlreadyPlayed(ctx context.Context, userID, date string) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM sessions WHERE user_id=? AND date=?`,
		userID, date,
	).Scan(&cnt)
	return cnt > 0, err
}

// ClaimAnon transfers guest sessions to a user account after auth.
func (s *Store) ClaimAnon(ctx context.Context, anonID, userID string) error {
	if anonID == "" || userID == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET user_id=?, anonymous_id=NULL WHERE anonymous_id=?`,
		userID, anonID,
	)
	return err
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
