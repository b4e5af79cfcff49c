package results

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schema := `
	CREATE TABLE users (
		id            TEXT PRIMARY KEY,
		username      TEXT NOT NULL UNIQUE COLLATE NOCASE,
		password_hash TEXT NOT NULL,
		created_at    TEXT NOT NULL,
		games_played  INTEGER NOT NULL DEFAULT 0,
		best_score    INTEGER NOT NULL DEFAULT 0,
		bonus_runs    INTEGER NOT NULL DEFAULT 0
	);
	CREATE TABLE sessions (
		session_id   TEXT PRIMARY KEY,
		user_id      TEXT REFERENCES users(id),
		anonymous_id TEXT,
		date         TEXT,
		score        INTEGER NOT NULL,
		solved       INTEGER NOT NULL,
		level        INTEGER NOT NULL,
		rounds       INTEGER NOT NULL,
		bonus        INTEGER NOT NULL DEFAULT 0,
		created_at   TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return db
}

func addUser(t *testing.T, db *sql.DB, id, name string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO users(id, username, password_hash, created_at) VALUES(?,?,?,?)`,
		id, name, "x", "2026-08-29T00:00:00Z")
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
}

func TestInsertIgnoresDuplicateSessions(t *testing.T) {
	db := testDB(t)
	s := NewStore(db)
	ctx := context.Background()

	r := SessionResult{SessionID: "s1", Score: 500, Solved: 4, Level: 1, Rounds: 5}
	if err := s.Insert(ctx, r); err != nil {
		t.Fatalf("insert: %v", err)
	}
	r.Score = 999
	if err := s.Insert(ctx, r); err != nil {
		t.Fatalf("duplicate insert: %v", err)
	}

	var score int
	if err := db.QueryRow(`SELECT score FROM sessions WHERE session_id='s1'`).Scan(&score); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if score != 500 {
		t.Fatalf("score=%d, want first write kept", score)
	}
}

func TestLeaderboardOrderingAndDateFilter(t *testing.T) {
	db := testDB(t)
	s := NewStore(db)
	ctx := context.Background()
	addUser(t, db, "u1", "alice")

	seed := []SessionResult{
		{SessionID: "a", UserID: "u1", Score: 900, Solved: 8, Level: 2},
		{SessionID: "b", AnonID: "anon1", Score: 1200, Solved: 10, Level: 3, Bonus: true},
		{SessionID: "c", Date: "2026-08-29", Score: 700, Solved: 6, Level: 2},
		{SessionID: "d", Date: "2026-08-28", Score: 1500, Solved: 10, Level: 3},
	}
	for _, r := range seed {
		if err := s.Insert(ctx, r); err != nil {
			t.Fatalf("insert %s: %v", r.SessionID, err)
		}
	}

	rows, err := s.Leaderboard(ctx, "", 10)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("rows=%d, want 4", len(rows))
	}
	for i := 1; i < len(rows); i++ {
		if rows[i].Score > rows[i-1].Score {
			t.Fatalf("leaderboard not descending: %+v", rows)
		}
	}
	if rows[1].Score != 1200 || !rows[1].Bonus {
		t.Fatalf("second row %+v, want the bonus run at 1200", rows[1])
	}
	// Authenticated sessions carry the username, guests fall back.
	if rows[2].Username != "alice" {
		t.Fatalf("username=%q, want alice", rows[2].Username)
	}
	if rows[0].Username != "guest" {
		t.Fatalf("username=%q, want guest", rows[0].Username)
	}

	daily, err := s.Leaderboard(ctx, "2026-08-29", 10)
	if err != nil {
		t.Fatalf("daily leaderboard: %v", err)
	}
	if len(daily) != 1 || daily[0].Score != 700 {
		t.Fatalf("daily rows=%+v, want only the 2026-08-29 run", daily)
	}
}

func TestAlreadyPlayed(t *testing.T) {
	db := testDB(t)
	s := NewStore(db)
	ctx := context.Background()
	addUser(t, db, "u1", "alice")

	played, err := s.AlreadyPlayed(ctx, "u1", "2026-08-29")
	if err != nil || played {
		t.Fatalf("played=%v err=%v before any run", played, err)
	}

	if err := s.Insert(ctx, SessionResult{SessionID: "s1", UserID: "u1", Date: "2026-08-29", Score: 100}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	played, err = s.AlreadyPlayed(ctx, "u1", "2026-08-29")
	if err != nil || !played {
		t.Fatalf("played=%v err=%v after a run", played, err)
	}
	played, err = s.AlreadyPlayed(ctx, "u1", "2026-08-30")
	if err != nil || played {
		t.Fatalf("played=%v err=%v for a different date", played, err)
	}
}

func TestClaimAnonTransfersGuestSessions(t *testing.T) {
	db := testDB(t)
	s := NewStore(db)
	ctx := context.Background()
	addUser(t, db, "u1", "alice")

	if err := s.Insert(ctx, SessionResult{SessionID: "g1", AnonID: "anon1", Score: 300, Solved: 3, Level: 1, Rounds: 4}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := s.ClaimAnon(ctx, "anon1", "u1"); err != nil {
		t.Fatalf("claim: %v", err)
	}

	hist, err := s.History(ctx, "u1", 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist) != 1 || hist[0].SessionID != "g1" || hist[0].Score != 300 {
		t.Fatalf("history=%+v, want the claimed guest session", hist)
	}

	// No-op claims are safe.
	if err := s.ClaimAnon(ctx, "", "u1"); err != nil {
		t.Fatalf("empty claim: %v", err)
	}
}
