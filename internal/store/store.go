package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	mdwerror "github.com/anemortalkid/kaleido/foundation/core/error"
	"github.com/anemortalkid/kaleido/foundation/kaleido/parser"
	"github.com/anemortalkid/kaleido/internal/emit"
)

// UnitRecord is a stored unit
type UnitRecord struct {
	ID        string                 `json:"id"`
	Session   string                 `json:"session"`
	Seq       int                    `json:"seq"`
	Kind      string                 `json:"kind"`
	Name      string                 `json:"name"`
	Params    []string               `json:"params"`
	Source    string                 `json:"source"`
	Tree      map[string]interface{} `json:"tree"`
	CreatedAt time.Time              `json:"created_at"`
}

// DiagnosticRecord is a stored parse error
type DiagnosticRecord struct {
	ID        string    `json:"id"`
	Session   string    `json:"session"`
	Seq       int       `json:"seq"`
	Expected  string    `json:"expected"`
	Found     string    `json:"found"`
	Consumed  string    `json:"consumed"`
	CreatedAt time.Time `json:"created_at"`
}

// Session summarizes one recorded parse
type Session struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	StartedAt   time.Time `json:"started_at"`
	Units       int       `json:"units"`
	Diagnostics int       `json:"diagnostics"`
}

// Filter defines criteria for listing units
type Filter struct {
	Session string
	Kind    string
	Name    string
	Limit   int
}

// Store defines the interface for unit persistence
type Store interface {
	StartSession(ctx context.Context, source string) (string, error)
	SaveUnit(ctx context.Context, session string, seq int, unit parser.Unit) error
	SaveDiagnostic(ctx context.Context, session string, seq int, perr *parser.ParseError) error
	ListUnits(ctx context.Context, filter Filter) ([]*UnitRecord, error)
	ListDiagnostics(ctx context.Context, session string, limit int) ([]*DiagnosticRecord, error)
	Sessions(ctx context.Context) ([]*Session, error)
	Close() error
}

// SQLiteStore implements Store using SQLite
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// Config holds configuration for the SQLite store
type Config struct {
	Path string
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		Path: "./data/kaleido.db",
	}
}

// Open creates or opens the SQLite unit store
func Open(cfg Config) (*SQLiteStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, mdwerror.Wrap(err, "failed to create store directory").
			WithCode(mdwerror.CodeIOError).
			WithOperation("store.Open").
			WithDetail("path", dir)
	}

	// Open database with WAL mode
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on")
	if err != nil {
		return nil, mdwerror.Wrap(err, "failed to open database").
			WithCode(mdwerror.CodeDatabaseError).
			WithOperation("store.Open")
	}

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, mdwerror.Wrap(err, "failed to initialize schema").
			WithCode(mdwerror.CodeDatabaseError).
			WithOperation("store.Open").
			WithDetail("path", cfg.Path)
	}

	return store, nil
}

// initSchema creates the necessary tables
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		started_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS units (
		id TEXT PRIMARY KEY,
		session TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		kind TEXT NOT NULL,
		name TEXT NOT NULL,
		params TEXT NOT NULL,
		source TEXT NOT NULL,
		tree TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS diagnostics (
		id TEXT PRIMARY KEY,
		session TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		expected TEXT NOT NULL,
		found TEXT NOT NULL,
		consumed TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_units_session ON units(session, seq);
	CREATE INDEX IF NOT EXISTS idx_units_kind ON units(kind);
	CREATE INDEX IF NOT EXISTS idx_units_name ON units(name);
	CREATE INDEX IF NOT EXISTS idx_diagnostics_session ON diagnostics(session, seq);
	`

	_, err := s.db.Exec(schema)
	return err
}

// StartSession registers a new parse session and returns its id
func (s *SQLiteStore) StartSession(ctx context.Context, source string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, source, started_at) VALUES (?, ?, ?)
	`, id, source, time.Now())
	if err != nil {
		return "", fmt.Errorf("failed to insert session: %w", err)
	}
	return id, nil
}

// SaveUnit records a parsed unit at position seq of session
func (s *SQLiteStore) SaveUnit(ctx context.Context, session string, seq int, unit parser.Unit) error {
	params := []string{}
	if p := unit.Proto(); p != nil {
		params = p.Params
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to encode params: %w", err)
	}
	treeJSON, err := json.Marshal(emit.UnitMap(unit))
	if err != nil {
		return fmt.Errorf("failed to encode tree: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO units (id, session, seq, kind, name, params, source, tree, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, uuid.New().String(), session, seq, unit.Kind.String(), unit.Name(),
		string(paramsJSON), unit.String(), string(treeJSON), time.Now())
	if err != nil {
		return fmt.Errorf("failed to insert unit: %w", err)
	}
	return nil
}

// SaveDiagnostic records a parse error at position seq of session
func (s *SQLiteStore) SaveDiagnostic(ctx context.Context, session string, seq int, perr *parser.ParseError) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO diagnostics (id, session, seq, expected, found, consumed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, uuid.New().String(), session, seq, perr.Expected, perr.Found.String(), perr.Consumed, time.Now())
	if err != nil {
		return fmt.Errorf("failed to insert diagnostic: %w", err)
	}
	return nil
}

// ListUnits retrieves units matching filter, most recent first
func (s *SQLiteStore) ListUnits(ctx context.Context, filter Filter) ([]*UnitRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, session, seq, kind, name, params, source, tree, created_at FROM units WHERE 1=1`
	var args []interface{}

	if filter.Session != "" {
		query += " AND session = ?"
		args = append(args, filter.Session)
	}
	if filter.Kind != "" {
		query += " AND kind = ?"
		args = append(args, filter.Kind)
	}
	if filter.Name != "" {
		query += " AND name = ?"
		args = append(args, filter.Name)
	}

	query += " ORDER BY created_at DESC, seq DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query units: %w", err)
	}
	defer rows.Close()

	var records []*UnitRecord
	for rows.Next() {
		var rec UnitRecord
		var paramsJSON, treeJSON string

		if err := rows.Scan(&rec.ID, &rec.Session, &rec.Seq, &rec.Kind, &rec.Name,
			&paramsJSON, &rec.Source, &treeJSON, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan unit: %w", err)
		}
		if err := json.Unmarshal([]byte(paramsJSON), &rec.Params); err != nil {
			return nil, fmt.Errorf("failed to decode params of unit %s: %w", rec.ID, err)
		}
		if err := json.Unmarshal([]byte(treeJSON), &rec.Tree); err != nil {
			return nil, fmt.Errorf("failed to decode tree of unit %s: %w", rec.ID, err)
		}
		records = append(records, &rec)
	}

	return records, rows.Err()
}

// ListDiagnostics retrieves the diagnostics of session in source order;
// an empty session lists all sessions
func (s *SQLiteStore) ListDiagnostics(ctx context.Context, session string, limit int) ([]*DiagnosticRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, session, seq, expected, found, consumed, created_at FROM diagnostics WHERE 1=1`
	var args []interface{}

	if session != "" {
		query += " AND session = ?"
		args = append(args, session)
	}
	query += " ORDER BY created_at, seq"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query diagnostics: %w", err)
	}
	defer rows.Close()

	var records []*DiagnosticRecord
	for rows.Next() {
		var rec DiagnosticRecord
		if err := rows.Scan(&rec.ID, &rec.Session, &rec.Seq, &rec.Expected,
			&rec.Found, &rec.Consumed, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan diagnostic: %w", err)
		}
		records = append(records, &rec)
	}

	return records, rows.Err()
}

// Sessions lists all sessions, most recent first
func (s *SQLiteStore) Sessions(ctx context.Context) ([]*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.source, s.started_at,
			(SELECT COUNT(*) FROM units u WHERE u.session = s.id),
			(SELECT COUNT(*) FROM diagnostics d WHERE d.session = s.id)
		FROM sessions s
		ORDER BY s.started_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.Source, &sess.StartedAt, &sess.Units, &sess.Diagnostics); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, &sess)
	}

	return sessions, rows.Err()
}

// Prune deletes sessions older than olderThan together with their units
// and diagnostics
func (s *SQLiteStore) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)
	result, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE started_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune sessions: %w", err)
	}
	return result.RowsAffected()
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// PingContext checks that the database is reachable
func (s *SQLiteStore) PingContext(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
