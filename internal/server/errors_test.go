package server

import (
	"context"
	"net/http"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"

	"github.com/jonathan/resume-tailor/internal/compilation"
	"github.com/jonathan/resume-tailor/internal/db"
	"github.com/jonathan/resume-tailor/internal/optimization"
	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/rendering"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", &ErrValidation{Field: "jobInput", Message: "is required"}, http.StatusBadRequest},
		{"invalid request", errors.Wrap(pipeline.ErrInvalidRequest, "job input is empty"), http.StatusBadRequest},
		{"run not found", db.ErrRunNotFound, http.StatusNotFound},
		{"artifact not found", compilation.ErrArtifactNotFound, http.StatusNotFound},
		{"optimization", &pipeline.StageError{Stage: "optimization", Err: &optimization.OptimizationError{Message: "bad"}}, http.StatusBadGateway},
		{"template", &pipeline.StageError{Stage: "rendering", Err: &rendering.TemplateError{Message: "missing placeholder"}}, http.StatusInternalServerError},
		{"compilation", &compilation.CompilationError{Message: "failed"}, http.StatusInternalServerError},
		{"timeout", errors.Wrap(context.DeadlineExceeded, "generate"), http.StatusGatewayTimeout},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestErrorBody(t *testing.T) {
	err := &pipeline.StageError{Stage: "compilation", Err: &compilation.CompilationError{
		Message:       "artifact missing after build",
		LogExcerpt:    "log tail",
		SourceExcerpt: "source head",
	}}
	body := errorBody("Failed to tailor resume", err)

	assert.False(t, body.Success)
	assert.Equal(t, "Failed to tailor resume", body.Error)
	assert.Equal(t, "compilation", body.Stage)
	assert.Equal(t, "log tail", body.LogExcerpt)
	assert.Equal(t, "source head", body.SourceExcerpt)
	assert.Contains(t, body.Details, "artifact missing after build")
}
