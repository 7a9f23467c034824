package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS runs (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	schema_path    TEXT NOT NULL,
	input_pattern  TEXT NOT NULL,
	output_path    TEXT NOT NULL,
	output_format  TEXT NOT NULL,
	strategy       TEXT NOT NULL DEFAULT '',
	document_count INTEGER NOT NULL DEFAULT 0,
	final_state    TEXT NOT NULL,
	error          TEXT NOT NULL DEFAULT '',
	started_at     TEXT NOT NULL,
	total_ms       INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS run_commands (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      INTEGER NOT NULL REFERENCES runs(id),
	position    INTEGER NOT NULL,
	command     TEXT NOT NULL,
	duration_ms INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_run_commands_run ON run_commands(run_id);
`

// SQLStore implements Store with SQLite.
type SQLStore struct {
	db *sql.DB
}

// Open opens or creates the SQLite DB at path and ensures the schema.
// The parent directory is created if it does not exist.
func Open(path string) (*SQLStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("store: create dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: ping sqlite: %w", err)
	}
	if _, err := db.Exec(schemaDDL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}
	return &SQLStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLStore) Close() error { return s.db.Close() }

// RecordRun inserts one run and its command records in a transaction.
func (s *SQLStore) RecordRun(run *Run, commands []CommandRecord) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("store: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(
		`INSERT INTO runs(schema_path, input_pattern, output_path, output_format,
			strategy, document_count, final_state, error, started_at, total_ms)
		 VALUES(?,?,?,?,?,?,?,?,?,?)`,
		run.SchemaPath, run.InputPattern, run.OutputPath, run.OutputFormat,
		run.Strategy, run.DocumentCount, run.FinalState, run.Error,
		run.StartedAt.UTC().Format(time.RFC3339), run.TotalMS,
	)
	if err != nil {
		return 0, fmt.Errorf("store: insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: run id: %w", err)
	}

	for i, c := range commands {
		if _, err := tx.Exec(
			`INSERT INTO run_commands(run_id, position, command, duration_ms) VALUES(?,?,?,?)`,
			runID, i, c.Command, c.DurationMS,
		); err != nil {
			return 0, fmt.Errorf("store: insert command %q: %w", c.Command, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("store: commit: %w", err)
	}
	return runID, nil
}

// GetRun returns one run by ID, or nil when absent.
func (s *SQLStore) GetRun(runID int64) (*Run, error) {
	row := s.db.QueryRow(
		`SELECT id, schema_path, input_pattern, output_path, output_format,
			strategy, document_count, final_state, error, started_at, total_ms
		 FROM runs WHERE id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return run, err
}

// ListRuns returns the most recent runs, newest first.
func (s *SQLStore) ListRuns(limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, schema_path, input_pattern, output_path, output_format,
			strategy, document_count, final_state, error, started_at, total_ms
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ListCommands returns a run's command records in execution order.
func (s *SQLStore) ListCommands(runID int64) ([]CommandRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, run_id, position, command, duration_ms
		 FROM run_commands WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("store: list commands: %w", err)
	}
	defer rows.Close()

	var out []CommandRecord
	for rows.Next() {
		var c CommandRecord
		if err := rows.Scan(&c.ID, &c.RunID, &c.Position, &c.Command, &c.DurationMS); err != nil {
			return nil, fmt.Errorf("store: scan command: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var run Run
	var started string
	err := s.Scan(&run.ID, &run.SchemaPath, &run.InputPattern, &run.OutputPath,
		&run.OutputFormat, &run.Strategy, &run.DocumentCount, &run.FinalState,
		&run.Error, &started, &run.TotalMS)
	if err != nil {
		return nil, err
	}
	run.StartedAt, _ = time.Parse(time.RFC3339, started)
	return &run, nil
}
