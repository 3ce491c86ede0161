package compilation

import "fmt"

// CompilationError is returned when a document could not be built. The
// excerpts are bounded so callers can surface them without leaking whole files.
type CompilationError struct {
	Message       string
	LogExcerpt    string
	SourceExcerpt string
	Cause         error
}

func (e *CompilationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("LaTeX compilation error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("LaTeX compilation error: %s", e.Message)
}

func (e *CompilationError) Unwrap() error {
	return e.Cause
}
