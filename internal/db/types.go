package db

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// DefaultListLimit is used when ListRuns is called with a non-positive limit.
const DefaultListLimit = 50

// ErrRunNotFound is returned by GetRun for an unknown id.
var ErrRunNotFound = errors.New("run not found")

// Run is one tailoring request.
type Run struct {
	ID           uuid.UUID  `json:"id"`
	JobID        string     `json:"jobId"`
	Title        string     `json:"title"`
	Company      string     `json:"company"`
	SourceURL    string     `json:"sourceUrl,omitempty"`
	Fingerprint  string     `json:"fingerprint,omitempty"`
	Keywords     []string   `json:"keywords"`
	Status       string     `json:"status"`
	Stage        string     `json:"stage,omitempty"`
	Error        string     `json:"error,omitempty"`
	ArtifactPath string     `json:"artifactPath,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}

// RunStore records run history.
type RunStore interface {
	// CreateRun inserts run with status running. CreatedAt is set when zero.
	CreateRun(ctx context.Context, run *Run) error
	CompleteRun(ctx context.Context, id uuid.UUID, keywords []string, artifactPath string) error
	FailRun(ctx context.Context, id uuid.UUID, stage, message string) error
	GetRun(ctx context.Context, id uuid.UUID) (*Run, error)
	// ListRuns returns the most recent runs first.
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	Close() error
}

func prepareRun(run *Run) {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	if run.Keywords == nil {
		run.Keywords = []string{}
	}
	run.Status = StatusRunning
}

func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
