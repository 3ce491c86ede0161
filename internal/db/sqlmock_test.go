package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return NewSQLStore(conn), mock
}

func TestSQLStore_CreateRun_Sqlmock(t *testing.T) {
	store, mock := newMockStore(t)
	run := &Run{ID: uuid.New(), JobID: "j1", Title: "Engineer", Company: "Acme"}

	mock.ExpectExec(`INSERT INTO tailoring_runs`).
		WithArgs(run.ID.String(), "j1", "Engineer", "Acme", "", "", "[]", StatusRunning, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, store.CreateRun(context.Background(), run))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_CreateRun_ExecError(t *testing.T) {
	store, mock := newMockStore(t)
	cause := errors.New("disk I/O error")
	mock.ExpectExec(`INSERT INTO tailoring_runs`).WillReturnError(cause)

	err := store.CreateRun(context.Background(), &Run{JobID: "j"})
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed to create run")
}

func TestSQLStore_CompleteRun_NoRows(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(`UPDATE tailoring_runs SET status`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.CompleteRun(context.Background(), uuid.New(), []string{"Go"}, "x.pdf")
	assert.ErrorIs(t, err, ErrRunNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_GetRun_ScanFromMock(t *testing.T) {
	store, mock := newMockStore(t)
	id := uuid.New()
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "job_id", "title", "company", "source_url", "fingerprint", "keywords",
		"status", "stage", "error", "artifact_path", "created_at", "completed_at"}).
		AddRow(id.String(), "j1", "Engineer", "Acme", "", "", `["Go","Kafka"]`,
			StatusCompleted, "", "", "a.pdf", created, created.Add(time.Minute))
	mock.ExpectQuery(`SELECT .* FROM tailoring_runs WHERE id = \?`).WithArgs(id.String()).WillReturnRows(rows)

	run, err := store.GetRun(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, run.ID)
	assert.Equal(t, []string{"Go", "Kafka"}, run.Keywords)
	require.NotNil(t, run.CompletedAt)
	assert.Equal(t, created.Add(time.Minute), *run.CompletedAt)
}

func TestSQLStore_GetRun_NoRows(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT .* FROM tailoring_runs`).WillReturnError(sql.ErrNoRows)

	_, err := store.GetRun(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestSQLStore_ListRuns_QueryError(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT .* ORDER BY created_at DESC LIMIT \?`).
		WithArgs(DefaultListLimit).
		WillReturnError(errors.New("connection reset"))

	_, err := store.ListRuns(context.Background(), -1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list runs")
}

func TestSQLStore_Migrate_Error(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS tailoring_runs`).WillReturnError(errors.New("read-only database"))

	err := store.Migrate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create schema")
}
