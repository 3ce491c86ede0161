package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS tailoring_runs (
	id            TEXT PRIMARY KEY,
	job_id        TEXT NOT NULL,
	title         TEXT NOT NULL,
	company       TEXT NOT NULL,
	source_url    TEXT NOT NULL DEFAULT '',
	fingerprint   TEXT NOT NULL DEFAULT '',
	keywords      TEXT NOT NULL DEFAULT '[]',
	status        TEXT NOT NULL,
	stage         TEXT NOT NULL DEFAULT '',
	error         TEXT NOT NULL DEFAULT '',
	artifact_path TEXT NOT NULL DEFAULT '',
	created_at    DATETIME NOT NULL,
	completed_at  DATETIME
);
CREATE INDEX IF NOT EXISTS tailoring_runs_created_at_idx ON tailoring_runs (created_at DESC);`

// SQLStore is a RunStore over database/sql using SQLite syntax. Keywords
// are stored as a JSON array.
type SQLStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) a SQLite database at dsn and
// creates the schema.
func OpenSQLite(ctx context.Context, dsn string) (*SQLStore, error) {
	if path := sqlitePath(dsn); path != "" && path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, errors.Wrap(err, "failed to create database directory")
		}
	}
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open sqlite database")
	}
	// a single writer avoids SQLITE_BUSY under concurrent requests
	conn.SetMaxOpenConns(1)

	store := NewSQLStore(conn)
	if err := store.Migrate(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLStore wraps an open connection. Call Migrate before first use on a
// fresh database.
func NewSQLStore(conn *sql.DB) *SQLStore {
	return &SQLStore{db: conn}
}

// Migrate creates the schema if it does not exist.
func (s *SQLStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return errors.Wrap(err, "failed to create schema")
	}
	return nil
}

// Close closes the database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// CreateRun implements RunStore.
func (s *SQLStore) CreateRun(ctx context.Context, run *Run) error {
	prepareRun(run)
	keywords, err := json.Marshal(run.Keywords)
	if err != nil {
		return errors.Wrap(err, "failed to encode keywords")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO tailoring_runs (id, job_id, title, company, source_url, fingerprint, keywords, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID.String(), run.JobID, run.Title, run.Company, run.SourceURL, run.Fingerprint, string(keywords), run.Status, run.CreatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to create run")
	}
	return nil
}

// CompleteRun implements RunStore.
func (s *SQLStore) CompleteRun(ctx context.Context, id uuid.UUID, keywords []string, artifactPath string) error {
	if keywords == nil {
		keywords = []string{}
	}
	encoded, err := json.Marshal(keywords)
	if err != nil {
		return errors.Wrap(err, "failed to encode keywords")
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE tailoring_runs SET status = ?, keywords = ?, artifact_path = ?, completed_at = ? WHERE id = ?`,
		StatusCompleted, string(encoded), artifactPath, time.Now().UTC(), id.String(),
	)
	if err != nil {
		return errors.Wrap(err, "failed to complete run")
	}
	return requireRow(res, "complete", id)
}

// FailRun implements RunStore.
func (s *SQLStore) FailRun(ctx context.Context, id uuid.UUID, stage, message string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tailoring_runs SET status = ?, stage = ?, error = ?, completed_at = ? WHERE id = ?`,
		StatusFailed, stage, message, time.Now().UTC(), id.String(),
	)
	if err != nil {
		return errors.Wrap(err, "failed to mark run failed")
	}
	return requireRow(res, "fail", id)
}

// GetRun implements RunStore.
func (s *SQLStore) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM tailoring_runs WHERE id = ?`, id.String())
	run, err := scanSQLRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(ErrRunNotFound, "run %s", id)
		}
		return nil, errors.Wrap(err, "failed to get run")
	}
	return run, nil
}

// ListRuns implements RunStore.
func (s *SQLStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM tailoring_runs ORDER BY created_at DESC LIMIT ?`,
		listLimit(limit),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list runs")
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanSQLRun(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan run")
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLRun(row rowScanner) (*Run, error) {
	var (
		run       Run
		id        string
		keywords  string
		completed sql.NullTime
	)
	err := row.Scan(&id, &run.JobID, &run.Title, &run.Company, &run.SourceURL, &run.Fingerprint,
		&keywords, &run.Status, &run.Stage, &run.Error, &run.ArtifactPath, &run.CreatedAt, &completed)
	if err != nil {
		return nil, err
	}
	if run.ID, err = uuid.Parse(id); err != nil {
		return nil, errors.Wrapf(err, "invalid run id %q", id)
	}
	if err := json.Unmarshal([]byte(keywords), &run.Keywords); err != nil {
		return nil, errors.Wrap(err, "invalid keywords column")
	}
	if completed.Valid {
		t := completed.Time
		run.CompletedAt = &t
	}
	return &run, nil
}

func requireRow(res sql.Result, op string, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "failed to %s run", op)
	}
	if n == 0 {
		return errors.Wrapf(ErrRunNotFound, "%s run %s", op, id)
	}
	return nil
}

// sqlitePath extracts the file path from a DSN such as "file:runs.db?_fk=1".
func sqlitePath(dsn string) string {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	return path
}
