// Package db stores the history of tailoring runs in PostgreSQL or SQLite.
package db

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
)

// Open connects to the store named by databaseURL and creates its tables.
// postgres:// and postgresql:// URLs select PostgreSQL; sqlite://path and
// file: URLs select SQLite.
func Open(ctx context.Context, databaseURL string) (RunStore, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return ConnectPostgres(ctx, databaseURL)
	case strings.HasPrefix(databaseURL, "sqlite://"):
		return OpenSQLite(ctx, strings.TrimPrefix(databaseURL, "sqlite://"))
	case strings.HasPrefix(databaseURL, "file:"):
		return OpenSQLite(ctx, databaseURL)
	default:
		return nil, errors.WithHint(
			errors.Newf("unsupported database URL %q", redact(databaseURL)),
			"use postgres://, postgresql://, sqlite://path or file:path",
		)
	}
}

// redact hides credentials in a URL for error messages.
func redact(databaseURL string) string {
	scheme, rest, ok := strings.Cut(databaseURL, "://")
	if !ok {
		return databaseURL
	}
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		return scheme + "://***@" + rest[at+1:]
	}
	return databaseURL
}
