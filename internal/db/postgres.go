package db

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS tailoring_runs (
	id            UUID PRIMARY KEY,
	job_id        TEXT NOT NULL,
	title         TEXT NOT NULL,
	company       TEXT NOT NULL,
	source_url    TEXT NOT NULL DEFAULT '',
	fingerprint   TEXT NOT NULL DEFAULT '',
	keywords      TEXT[] NOT NULL DEFAULT '{}',
	status        TEXT NOT NULL,
	stage         TEXT NOT NULL DEFAULT '',
	error         TEXT NOT NULL DEFAULT '',
	artifact_path TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL,
	completed_at  TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS tailoring_runs_created_at_idx ON tailoring_runs (created_at DESC);`

const runColumns = `id, job_id, title, company, source_url, fingerprint, keywords, status,
	stage, error, artifact_path, created_at, completed_at`

// PostgresStore is a RunStore backed by a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// ConnectPostgres establishes a connection pool and creates the schema.
func ConnectPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "failed to create schema")
	}
	return &PostgresStore{pool: pool}, nil
}

// Close closes the connection pool
func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// CreateRun implements RunStore.
func (s *PostgresStore) CreateRun(ctx context.Context, run *Run) error {
	prepareRun(run)
	_, err := s.pool.Exec(ctx,
		`INSERT INTO tailoring_runs (id, job_id, title, company, source_url, fingerprint, keywords, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		run.ID, run.JobID, run.Title, run.Company, run.SourceURL, run.Fingerprint, run.Keywords, run.Status, run.CreatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to create run")
	}
	return nil
}

// CompleteRun implements RunStore.
func (s *PostgresStore) CompleteRun(ctx context.Context, id uuid.UUID, keywords []string, artifactPath string) error {
	if keywords == nil {
		keywords = []string{}
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE tailoring_runs SET status = $1, keywords = $2, artifact_path = $3, completed_at = $4 WHERE id = $5`,
		StatusCompleted, keywords, artifactPath, time.Now().UTC(), id,
	)
	if err != nil {
		return errors.Wrap(err, "failed to complete run")
	}
	if tag.RowsAffected() == 0 {
		return errors.Wrapf(ErrRunNotFound, "complete run %s", id)
	}
	return nil
}

// FailRun implements RunStore.
func (s *PostgresStore) FailRun(ctx context.Context, id uuid.UUID, stage, message string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE tailoring_runs SET status = $1, stage = $2, error = $3, completed_at = $4 WHERE id = $5`,
		StatusFailed, stage, message, time.Now().UTC(), id,
	)
	if err != nil {
		return errors.Wrap(err, "failed to mark run failed")
	}
	if tag.RowsAffected() == 0 {
		return errors.Wrapf(ErrRunNotFound, "fail run %s", id)
	}
	return nil
}

// GetRun implements RunStore.
func (s *PostgresStore) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+runColumns+` FROM tailoring_runs WHERE id = $1`, id)
	run, err := scanPostgresRun(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.Wrapf(ErrRunNotFound, "run %s", id)
		}
		return nil, errors.Wrap(err, "failed to get run")
	}
	return run, nil
}

// ListRuns implements RunStore.
func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+runColumns+` FROM tailoring_runs ORDER BY created_at DESC LIMIT $1`,
		listLimit(limit),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list runs")
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanPostgresRun(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan run")
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

func scanPostgresRun(row pgx.Row) (*Run, error) {
	var run Run
	err := row.Scan(&run.ID, &run.JobID, &run.Title, &run.Company, &run.SourceURL, &run.Fingerprint,
		&run.Keywords, &run.Status, &run.Stage, &run.Error, &run.ArtifactPath, &run.CreatedAt, &run.CompletedAt)
	if err != nil {
		return nil, err
	}
	return &run, nil
}
