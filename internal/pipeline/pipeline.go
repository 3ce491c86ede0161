// Package pipeline runs one tailoring request end to end: ingestion,
// optimization, rendering, validation and compilation, strictly in that
// order.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/compilation"
	"github.com/jonathan/resume-tailor/internal/db"
	"github.com/jonathan/resume-tailor/internal/fetch"
	"github.com/jonathan/resume-tailor/internal/ingestion"
	"github.com/jonathan/resume-tailor/internal/logging"
	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/jonathan/resume-tailor/internal/validation"
)

// InputType says how Request.Input is interpreted.
type InputType string

// Input types accepted by Tailor.
const (
	InputText InputType = "text"
	InputURL  InputType = "url"
)

// Request is one tailoring request.
type Request struct {
	Input     string
	InputType InputType
}

// Result is everything a successful run produced.
type Result struct {
	RunID        uuid.UUID                  `json:"runId"`
	JobPosting   *types.JobPosting          `json:"jobPosting"`
	Optimized    *types.OptimizedResumeData `json:"optimizedData"`
	Document     string                     `json:"tailoredResume"`
	Summary      types.OptimizationSummary  `json:"optimizationSummary"`
	Issues       []types.ValidationIssue    `json:"validationIssues"`
	Artifact     *types.CompiledArtifact    `json:"artifact"`
	SourcePath   string                     `json:"sourcePath"`
	ExtractError string                     `json:"extractionError,omitempty"`
}

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Stage   string    `json:"stage"`
	Message string    `json:"message"`
	RunID   uuid.UUID `json:"run_id"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// Extractor produces a posting from a URL. On total failure it returns a
// sentinel posting together with the error.
type Extractor interface {
	Extract(ctx context.Context, url string) (*types.JobPosting, error)
}

// Optimizer tailors the profile to a job description.
type Optimizer interface {
	Optimize(ctx context.Context, description string) (*types.OptimizedResumeData, error)
}

// Renderer turns optimized data into a document.
type Renderer interface {
	Render(data *types.OptimizedResumeData) (*types.RenderedDocument, error)
}

// Compiler builds a document into a PDF at dest.
type Compiler interface {
	Compile(ctx context.Context, doc string, dest string) (*types.CompiledArtifact, error)
}

// Deps are the collaborators of a Pipeline. Runs is optional.
type Deps struct {
	Extractor Extractor
	Optimizer Optimizer
	Renderer  Renderer
	Compiler  Compiler
	Artifacts *compilation.ArtifactStore
	Runs      db.RunStore
}

// Pipeline is safe for concurrent use: nothing is shared between runs
// except the artifact directory, where every run writes its own files.
type Pipeline struct {
	deps       Deps
	logger     *zap.Logger
	OnProgress ProgressCallback
}

// New creates a Pipeline.
func New(deps Deps, logger *zap.Logger) *Pipeline {
	return &Pipeline{deps: deps, logger: logging.OrNop(logger)}
}

// Ingest resolves the request's input into a posting. URL extraction never
// fails outright; the returned error, if any, is the extraction failure
// that caused sentinel fields and is informational only.
func (p *Pipeline) Ingest(ctx context.Context, req Request) (*types.JobPosting, error) {
	switch req.InputType {
	case InputText:
		return ingestion.FromText(req.Input), nil
	case InputURL:
		url := strings.TrimSpace(req.Input)
		if _, err := fetch.ValidateURL(url); err != nil {
			return nil, errors.Mark(err, ErrInvalidRequest)
		}
		return p.deps.Extractor.Extract(ctx, url)
	default:
		return nil, errors.Wrapf(ErrInvalidRequest, "unknown input type %q", req.InputType)
	}
}

// Tailor runs every stage for req. Any failure after ingestion aborts the
// run with a *StageError and no artifact is published.
func (p *Pipeline) Tailor(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.Input) == "" {
		return nil, errors.Wrap(ErrInvalidRequest, "job input is empty")
	}

	runID := uuid.New()
	log := p.logger.With(zap.String(logging.FieldRunID, runID.String()))
	start := time.Now()
	res := &Result{RunID: runID}

	p.progress(runID, StageIngestion, "ingesting job posting")
	posting, err := p.Ingest(ctx, req)
	if posting == nil {
		return nil, &StageError{Stage: StageIngestion, Err: err}
	}
	if err != nil {
		log.Warn("extraction failed, continuing with placeholder posting", zap.Error(err))
		res.ExtractError = err.Error()
	}
	res.JobPosting = posting
	log = log.With(zap.String(logging.FieldJobID, posting.JobID))
	p.recordStart(ctx, log, runID, posting)

	p.progress(runID, StageOptimization, "optimizing resume content")
	optimized, err := p.deps.Optimizer.Optimize(ctx, posting.Description)
	if err != nil {
		return nil, p.fail(ctx, log, runID, StageOptimization, err)
	}
	res.Optimized = optimized
	res.Summary = optimized.Summarize()

	p.progress(runID, StageRendering, "rendering document")
	doc, err := p.deps.Renderer.Render(optimized)
	if err != nil {
		return nil, p.fail(ctx, log, runID, StageRendering, err)
	}
	res.Document = doc.Full

	p.progress(runID, StageValidation, "validating document")
	res.Issues = validation.Validate(doc.Full)
	for _, issue := range res.Issues {
		log.Warn("document validation issue",
			zap.String("type", issue.Type),
			zap.String("details", issue.Details),
		)
	}

	if err := p.deps.Artifacts.SaveSource(runID, doc.Full); err != nil {
		return nil, p.fail(ctx, log, runID, StagePublish, err)
	}
	res.SourcePath = p.deps.Artifacts.SourcePath(runID)

	p.progress(runID, StageCompilation, "compiling PDF")
	artifact, err := p.deps.Compiler.Compile(ctx, doc.Full, p.deps.Artifacts.PDFPath(runID))
	if err != nil {
		return nil, p.fail(ctx, log, runID, StageCompilation, err)
	}
	artifact.Issues = res.Issues
	res.Artifact = artifact

	if err := p.deps.Artifacts.PromoteLatest(runID); err != nil {
		// a failed run must not leave a downloadable PDF behind
		compilation.RemoveQuietly(p.deps.Artifacts.PDFPath(runID))
		return nil, p.fail(ctx, log, runID, StagePublish, err)
	}
	p.recordComplete(ctx, log, runID, optimized.ExtractedKeywords, artifact.Path)

	log.Info("tailoring complete",
		zap.Int("keywords", res.Summary.TotalKeywords),
		zap.Int("issues", len(res.Issues)),
		zap.String("artifact", artifact.Path),
		zap.Duration(logging.FieldDuration, time.Since(start)),
	)
	return res, nil
}

func (p *Pipeline) fail(ctx context.Context, log *zap.Logger, runID uuid.UUID, stage string, err error) error {
	log.Error("tailoring failed", zap.String(logging.FieldStage, stage), zap.Error(err))
	if p.deps.Runs != nil {
		if rerr := p.deps.Runs.FailRun(context.WithoutCancel(ctx), runID, stage, err.Error()); rerr != nil {
			log.Warn("failed to record run failure", zap.Error(rerr))
		}
	}
	return &StageError{Stage: stage, Err: err}
}

func (p *Pipeline) recordStart(ctx context.Context, log *zap.Logger, runID uuid.UUID, posting *types.JobPosting) {
	if p.deps.Runs == nil {
		return
	}
	err := p.deps.Runs.CreateRun(ctx, &db.Run{
		ID:          runID,
		JobID:       posting.JobID,
		Title:       posting.Title,
		Company:     posting.Company,
		SourceURL:   posting.SourceURL,
		Fingerprint: posting.Fingerprint,
	})
	if err != nil {
		log.Warn("failed to record run", zap.Error(err))
	}
}

func (p *Pipeline) recordComplete(ctx context.Context, log *zap.Logger, runID uuid.UUID, keywords []string, path string) {
	if p.deps.Runs == nil {
		return
	}
	if err := p.deps.Runs.CompleteRun(ctx, runID, keywords, path); err != nil {
		log.Warn("failed to record run completion", zap.Error(err))
	}
}

func (p *Pipeline) progress(runID uuid.UUID, stage, message string) {
	if p.OnProgress != nil {
		p.OnProgress(ProgressEvent{Stage: stage, Message: message, RunID: runID})
	}
}
