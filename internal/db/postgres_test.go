package db

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPostgresStore_Lifecycle runs against a real server when
// TEST_DATABASE_URL is set.
func TestPostgresStore_Lifecycle(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	store, err := Open(ctx, url)
	require.NoError(t, err)
	defer store.Close()

	run := &Run{JobID: "pg-test", Title: "Engineer", Company: "Acme"}
	require.NoError(t, store.CreateRun(ctx, run))
	require.NoError(t, store.CompleteRun(ctx, run.ID, []string{"Go"}, "x.pdf"))

	got, err := store.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Equal(t, []string{"Go"}, got.Keywords)
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "postgres://***@db:5432/runs", redact("postgres://user:pw@db:5432/runs"))
	assert.Equal(t, "sqlite://runs.db", redact("sqlite://runs.db"))
	assert.Equal(t, "runs.db", redact("runs.db"))
}
