package optimization

import "fmt"

// OptimizationError reports that the model's response could not be turned
// into OptimizedResumeData. It is always fatal for the request.
type OptimizationError struct {
	Message string
	// Response is a truncated copy of the raw model output, when one exists.
	Response string
	Cause    error
}

func (e *OptimizationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("optimization error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("optimization error: %s", e.Message)
}

func (e *OptimizationError) Unwrap() error {
	return e.Cause
}
