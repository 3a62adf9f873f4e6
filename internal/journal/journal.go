package journal

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/leonitousconforti/basilisk/internal/action"
	"github.com/leonitousconforti/basilisk/internal/board"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	strategy TEXT NOT NULL,
	backend TEXT NOT NULL,
	started_at DATETIME NOT NULL,
	ended_at DATETIME
);

CREATE TABLE IF NOT EXISTS actions (
	session_id TEXT NOT NULL REFERENCES sessions(id),
	seq INTEGER NOT NULL,
	direction TEXT NOT NULL,
	exec_x INTEGER NOT NULL,
	exec_y INTEGER NOT NULL,
	head_x INTEGER NOT NULL,
	head_y INTEGER NOT NULL,
	cyclic BOOLEAN NOT NULL,
	at DATETIME NOT NULL,
	PRIMARY KEY (session_id, seq)
);
`

// Session is one run of the agent from start to shutdown
type Session struct {
	ID        string
	Name      string
	Strategy  string
	Backend   string
	StartedAt time.Time
	// EndedAt is zero while the session is still running
	EndedAt time.Time
}

// Entry is one dispatched action
type Entry struct {
	Seq    int
	Dir    board.Direction
	At     board.Position
	Head   board.Position
	Cyclic bool
	Time   time.Time
}

// Journal stores sessions and every action they dispatched in sqlite
type Journal struct {
	db *sql.DB
}

// Open creates the database file and its directory when missing
func Open(path string) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer at a time keeps sqlite from returning SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Println("[Journal] Database initialized at", path)
	return &Journal{db: db}, nil
}

// Close releases the database
func (j *Journal) Close() error {
	return j.db.Close()
}

// Begin starts a new session with a random name
func (j *Journal) Begin(ctx context.Context, strategy, backend string) (*Session, error) {
	s := &Session{
		ID:        uuid.New().String(),
		Name:      RandomName(),
		Strategy:  strategy,
		Backend:   backend,
		StartedAt: time.Now().UTC(),
	}

	_, err := j.db.ExecContext(ctx,
		`INSERT INTO sessions (id, name, strategy, backend, started_at) VALUES (?, ?, ?, ?, ?)`,
		s.ID, s.Name, s.Strategy, s.Backend, s.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to begin session: %w", err)
	}

	log.Printf("[Journal] Session %s (%s) started", s.Name, s.ID)
	return s, nil
}

// Record appends a dispatched action to the session
func (j *Journal) Record(ctx context.Context, sessionID string, a action.Action, head board.Position) error {
	token, _ := a.Dir.Token()
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO actions (session_id, seq, direction, exec_x, exec_y, head_x, head_y, cyclic, at)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM actions WHERE session_id = ?), ?, ?, ?, ?, ?, ?, ?)`,
		sessionID, sessionID, token, a.At.X, a.At.Y, head.X, head.Y, !a.DeleteOnExecution, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record action: %w", err)
	}
	return nil
}

// End marks the session finished
func (j *Journal) End(ctx context.Context, sessionID string) error {
	res, err := j.db.ExecContext(ctx, `UPDATE sessions SET ended_at = ? WHERE id = ?`, time.Now().UTC(), sessionID)
	if err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("failed to end session %s: %w", sessionID, sql.ErrNoRows)
	}
	return nil
}

// Sessions lists every session, newest first
func (j *Journal) Sessions(ctx context.Context) ([]Session, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, name, strategy, backend, started_at, ended_at
		FROM sessions
		ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		var ended sql.NullTime
		if err := rows.Scan(&s.ID, &s.Name, &s.Strategy, &s.Backend, &s.StartedAt, &ended); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		if ended.Valid {
			s.EndedAt = ended.Time
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// Actions lists the actions of one session in dispatch order
func (j *Journal) Actions(ctx context.Context, sessionID string) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT seq, direction, exec_x, exec_y, head_x, head_y, cyclic, at
		FROM actions
		WHERE session_id = ?
		ORDER BY seq`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query actions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var token string
		if err := rows.Scan(&e.Seq, &token, &e.At.X, &e.At.Y, &e.Head.X, &e.Head.Y, &e.Cyclic, &e.Time); err != nil {
			return nil, fmt.Errorf("failed to scan action: %w", err)
		}
		e.Dir = board.ParseDirection(token)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
