// Package sqlite provides a SQLite-backed implementation of runlog.Repository.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jcmexdev/grubdash/internal/pipeline/runlog"

	// Pure-Go SQLite driver, no CGO needed.
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS pipeline_runs (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id       TEXT    NOT NULL UNIQUE,
    pipeline     TEXT    NOT NULL,
    outcome      TEXT    NOT NULL,
    step         TEXT    NOT NULL DEFAULT '',
    http_status  INTEGER NOT NULL,
    message      TEXT,
    trace_id     TEXT    NOT NULL DEFAULT '',
    span_id      TEXT    NOT NULL DEFAULT '',
    recorded_at  TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_pipeline_runs_pipeline ON pipeline_runs(pipeline, recorded_at);
CREATE INDEX IF NOT EXISTS idx_pipeline_runs_trace_id ON pipeline_runs(trace_id);
`

// timeLayout keeps a fixed number of fraction digits so stored times sort
// lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Repository is the SQLite implementation of runlog.Repository.
type Repository struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
//
//	repo, err := sqlite.Open("./data/runs.db")
func Open(path string) (*Repository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// Single writer connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	return &Repository{db: db}, nil
}

// Close releases the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Save inserts a new entry. It is safe to call concurrently.
func (r *Repository) Save(ctx context.Context, entry *runlog.Entry) error {
	const q = `
		INSERT INTO pipeline_runs
			(run_id, pipeline, outcome, step, http_status, message, trace_id, span_id, recorded_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		entry.RunID,
		entry.Pipeline,
		string(entry.Outcome),
		entry.Step,
		entry.HTTPStatus,
		nullableString(entry.Message),
		entry.TraceID,
		entry.SpanID,
		entry.RecordedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save run %q of %q: %w", entry.RunID, entry.Pipeline, err)
	}
	return nil
}

// Latest returns the most recent entry for the named pipeline.
func (r *Repository) Latest(ctx context.Context, pipeline string) (*runlog.Entry, error) {
	const q = `
		SELECT run_id, pipeline, outcome, step, http_status, COALESCE(message,''),
		       trace_id, span_id, recorded_at
		FROM   pipeline_runs
		WHERE  pipeline = ?
		ORDER  BY recorded_at DESC, id DESC
		LIMIT  1`

	var entry runlog.Entry
	var recordedAt string
	err := r.db.QueryRowContext(ctx, q, pipeline).Scan(
		&entry.RunID,
		&entry.Pipeline,
		&entry.Outcome,
		&entry.Step,
		&entry.HTTPStatus,
		&entry.Message,
		&entry.TraceID,
		&entry.SpanID,
		&recordedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sqlite: pipeline %q: %w", pipeline, runlog.ErrNoEntries)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: latest run of %q: %w", pipeline, err)
	}

	entry.RecordedAt, err = parseTime(recordedAt)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Count returns how many runs of each outcome were recorded for pipeline.
func (r *Repository) Count(ctx context.Context, pipeline string) (map[runlog.Outcome]int, error) {
	const q = `
		SELECT outcome, COUNT(*)
		FROM   pipeline_runs
		WHERE  pipeline = ?
		GROUP  BY outcome`

	rows, err := r.db.QueryContext(ctx, q, pipeline)
	if err != nil {
		return nil, fmt.Errorf("sqlite: count runs of %q: %w", pipeline, err)
	}
	defer rows.Close()

	counts := make(map[runlog.Outcome]int)
	for rows.Next() {
		var outcome runlog.Outcome
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("sqlite: scan run count: %w", err)
		}
		counts[outcome] = n
	}
	return counts, rows.Err()
}

// nullableString stores NULL instead of an empty message for accepted runs.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
