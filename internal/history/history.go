// Package history persists validation runs so past results can be
// compared and served after the fact.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dgallion1/corpuslint/internal/pipeline"
	"github.com/dgallion1/corpuslint/internal/report"
)

// ErrNotFound is returned when a run ID has no row.
var ErrNotFound = errors.New("run not found")

// Store keeps run summaries and per-document reports in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	// The store is written from a single process; one connection avoids
	// SQLITE_BUSY without a busy-timeout dance.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate history db: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		root TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		duration_ms INTEGER NOT NULL,
		documents INTEGER NOT NULL,
		skipped INTEGER NOT NULL,
		sections INTEGER NOT NULL,
		snippets INTEGER NOT NULL,
		diagrams INTEGER NOT NULL,
		warnings INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS run_documents (
		run_id TEXT NOT NULL,
		path TEXT NOT NULL,
		report JSON NOT NULL,
		PRIMARY KEY (run_id, path),
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// RunSummary is one row of the runs table.
type RunSummary struct {
	ID         string        `json:"run_id"`
	Root       string        `json:"root"`
	StartedAt  time.Time     `json:"started_at"`
	DurationMs int64         `json:"duration_ms"`
	Totals     report.Totals `json:"totals"`
}

// RecordRun stores a completed scan and its per-document reports.
func (s *Store) RecordRun(ctx context.Context, run *pipeline.Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	t := run.Report.Totals
	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, root, started_at, duration_ms, documents, skipped, sections, snippets, diagrams, warnings)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Root, run.StartedAt.Format(time.RFC3339Nano), run.Duration.Milliseconds(),
		t.Documents, t.Skipped, t.Sections, t.Snippets, t.Diagrams, t.Warnings,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, dr := range run.Report.Documents {
		blob, err := json.Marshal(dr)
		if err != nil {
			return fmt.Errorf("marshal document report: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO run_documents (run_id, path, report) VALUES (?, ?, ?)`,
			run.ID, dr.Document, blob,
		)
		if err != nil {
			return fmt.Errorf("insert document report: %w", err)
		}
	}

	return tx.Commit()
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, root, started_at, duration_ms, documents, skipped, sections, snippets, diagrams, warnings
		FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		rs, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rs)
	}
	return out, rows.Err()
}

// GetRun returns one run's summary and its per-document reports,
// ordered by path.
func (s *Store) GetRun(ctx context.Context, id string) (RunSummary, []report.DocumentReport, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, root, started_at, duration_ms, documents, skipped, sections, snippets, diagrams, warnings
		FROM runs WHERE id = ?`, id)
	rs, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunSummary{}, nil, ErrNotFound
	}
	if err != nil {
		return RunSummary{}, nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT report FROM run_documents WHERE run_id = ? ORDER BY path`, id)
	if err != nil {
		return RunSummary{}, nil, fmt.Errorf("query run documents: %w", err)
	}
	defer rows.Close()

	var docs []report.DocumentReport
	for rows.Next() {
		var blob []byte
		if err := rows.Scan(&blob); err != nil {
			return RunSummary{}, nil, fmt.Errorf("scan document report: %w", err)
		}
		var dr report.DocumentReport
		if err := json.Unmarshal(blob, &dr); err != nil {
			return RunSummary{}, nil, fmt.Errorf("unmarshal document report: %w", err)
		}
		docs = append(docs, dr)
	}
	return rs, docs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (RunSummary, error) {
	var (
		rs        RunSummary
		startedAt string
	)
	err := row.Scan(&rs.ID, &rs.Root, &startedAt, &rs.DurationMs,
		&rs.Totals.Documents, &rs.Totals.Skipped, &rs.Totals.Sections,
		&rs.Totals.Snippets, &rs.Totals.Diagrams, &rs.Totals.Warnings)
	if err != nil {
		return RunSummary{}, err
	}
	if ts, parseErr := time.Parse(time.RFC3339Nano, startedAt); parseErr == nil {
		rs.StartedAt = ts
	}
	return rs, nil
}
