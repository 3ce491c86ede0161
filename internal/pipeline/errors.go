package pipeline

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Stage names, used in logs, progress events and StageError.
const (
	StageIngestion    = "ingestion"
	StageOptimization = "optimization"
	StageRendering    = "rendering"
	StageValidation   = "validation"
	StageCompilation  = "compilation"
	StagePublish      = "publish"
)

// ErrInvalidRequest is wrapped by errors about the request itself.
var ErrInvalidRequest = errors.New("invalid tailoring request")

// StageError tags the stage that aborted a request.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
