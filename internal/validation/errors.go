package validation

import "fmt"

// FileReadError reports a document that could not be read for validation.
type FileReadError struct {
	Path  string
	Cause error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("file read error: %s: %v", e.Path, e.Cause)
}

func (e *FileReadError) Unwrap() error {
	return e.Cause
}
