package server

import (
	"context"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"

	"github.com/jonathan/resume-tailor/internal/compilation"
	"github.com/jonathan/resume-tailor/internal/db"
	"github.com/jonathan/resume-tailor/internal/optimization"
	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/rendering"
)

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Success       bool   `json:"success"`
	Error         string `json:"error"`
	Details       string `json:"details,omitempty"`
	Stage         string `json:"stage,omitempty"`
	LogExcerpt    string `json:"logExcerpt,omitempty"`
	SourceExcerpt string `json:"sourceExcerpt,omitempty"`
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return "validation error: " + e.Field + " - " + e.Message
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr *ErrValidation
		fieldErrs     validator.ValidationErrors
		optErr        *optimization.OptimizationError
		tplErr        *rendering.TemplateError
		compileErr    *compilation.CompilationError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validationErr), errors.As(err, &fieldErrs), errors.Is(err, pipeline.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, db.ErrRunNotFound), errors.Is(err, compilation.ErrArtifactNotFound):
		return http.StatusNotFound
	case errors.As(err, &optErr):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &tplErr), errors.As(err, &compileErr):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// errorBody maps err to the response body. summary is the caller-facing
// headline; details carry the underlying message.
func errorBody(summary string, err error) ErrorResponse {
	body := ErrorResponse{Error: summary, Details: err.Error()}

	var stageErr *pipeline.StageError
	if errors.As(err, &stageErr) {
		body.Stage = stageErr.Stage
	}
	var compileErr *compilation.CompilationError
	if errors.As(err, &compileErr) {
		body.LogExcerpt = compileErr.LogExcerpt
		body.SourceExcerpt = compileErr.SourceExcerpt
	}
	return body
}

// validationMessage turns validator field errors into one readable line.
func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err.Error()
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	case "http_url", "url":
		return fe.Field() + " must be a valid http(s) URL"
	default:
		return fe.Field() + " failed " + fe.Tag() + " validation"
	}
}
