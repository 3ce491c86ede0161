package ingestion

import (
	"fmt"
	"strings"
)

// Attempt records one engine's failure.
type Attempt struct {
	Engine string
	Err    error
}

// ExtractionError reports that every engine failed for a URL.
type ExtractionError struct {
	URL      string
	Attempts []Attempt
}

func (e *ExtractionError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %v", a.Engine, a.Err))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("extraction failed for %s: no engines configured", e.URL)
	}
	return fmt.Sprintf("extraction failed for %s (%s)", e.URL, strings.Join(parts, "; "))
}

// Unwrap exposes each engine's error to errors.Is and errors.As.
func (e *ExtractionError) Unwrap() []error {
	errs := make([]error, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		errs = append(errs, a.Err)
	}
	return errs
}
