package journal

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/viant/evalrt/model"

	_ "modernc.org/sqlite"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS intent_journal (
		seq          INTEGER PRIMARY KEY AUTOINCREMENT,
		intent_id    TEXT NOT NULL,
		kind         TEXT NOT NULL,
		evaluator_id TEXT NOT NULL,
		context_id   TEXT NOT NULL DEFAULT '',
		task_id      TEXT NOT NULL DEFAULT '',
		drained_at   TEXT NOT NULL,
		error        TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_intent_journal_evaluator_id ON intent_journal(evaluator_id)`,
}

// SQLite persists entries in a SQLite database
type SQLite struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLite opens (or creates) a SQLite database at dbPath.
// Use ":memory:" for an in-memory database.
func NewSQLite(dbPath string, logger *slog.Logger) (*SQLite, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	// one connection keeps ":memory:" databases shared and appends serialised
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLite{db: db, logger: logger.With("component", "journal")}, nil
}

// Migrate creates the journal table and index
func (s *SQLite) Migrate(ctx context.Context) error {
	s.logger.Debug("sql", "op", "migrate")
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Append inserts entry and sets its Seq
func (s *SQLite) Append(ctx context.Context, entry *Entry) error {
	s.logger.Debug("sql", "op", "insert", "table", "intent_journal", "intent", entry.IntentID)
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO intent_journal (intent_id, kind, evaluator_id, context_id, task_id, drained_at, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.IntentID, string(entry.Kind), entry.EvaluatorID, entry.ContextID, entry.TaskID,
		entry.DrainedAt.UTC().Format(time.RFC3339Nano), entry.Error,
	)
	if err != nil {
		return fmt.Errorf("append intent %v: %w", entry.IntentID, err)
	}
	if entry.Seq, err = result.LastInsertId(); err != nil {
		return fmt.Errorf("append intent %v: %w", entry.IntentID, err)
	}
	return nil
}

// List returns entries ordered by sequence
func (s *SQLite) List(ctx context.Context, evaluatorID string) ([]*Entry, error) {
	s.logger.Debug("sql", "op", "select", "table", "intent_journal", "evaluator", evaluatorID)
	query := `SELECT seq, intent_id, kind, evaluator_id, context_id, task_id, drained_at, error FROM intent_journal`
	var args []interface{}
	if evaluatorID != "" {
		query += ` WHERE evaluator_id = ?`
		args = append(args, evaluatorID)
	}
	query += ` ORDER BY seq`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list journal: %w", err)
	}
	defer rows.Close()
	var result []*Entry
	for rows.Next() {
		entry := &Entry{}
		var kind, drainedAt string
		if err := rows.Scan(&entry.Seq, &entry.IntentID, &kind, &entry.EvaluatorID, &entry.ContextID, &entry.TaskID, &drainedAt, &entry.Error); err != nil {
			return nil, fmt.Errorf("scan journal: %w", err)
		}
		entry.Kind = model.IntentKind(kind)
		if entry.DrainedAt, err = time.Parse(time.RFC3339Nano, drainedAt); err != nil {
			return nil, fmt.Errorf("parse drained_at %q: %w", drainedAt, err)
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

// Close closes the underlying database connection
func (s *SQLite) Close() error {
	return s.db.Close()
}
