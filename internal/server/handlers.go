package server

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/compilation"
	"github.com/jonathan/resume-tailor/internal/db"
	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/types"
)

const (
	maxBodyBytes   = 1 << 20
	maxListLimit   = 200
	latestFilename = "tailored-resume.pdf"
)

// TailorRequest represents the request body for POST /tailor. An empty
// inputType means text.
type TailorRequest struct {
	JobInput  string `json:"jobInput" validate:"required"`
	InputType string `json:"inputType" validate:"omitempty,oneof=text url"`
}

// TailorResponse represents the response for POST /tailor
type TailorResponse struct {
	Success             bool                      `json:"success"`
	Message             string                    `json:"message"`
	RunID               string                    `json:"runId"`
	JobPosting          *types.JobPosting         `json:"jobPosting"`
	ExtractedKeywords   []string                  `json:"extractedKeywords"`
	TailoredResume      string                    `json:"tailoredResume"`
	OptimizationSummary types.OptimizationSummary `json:"optimizationSummary"`
	ValidationIssues    []types.ValidationIssue   `json:"validationIssues"`
	ExtractionError     string                    `json:"extractionError,omitempty"`
	DownloadURL         string                    `json:"downloadUrl"`
}

// ScrapeRequest represents the request body for POST /scrape
type ScrapeRequest struct {
	URL string `json:"url" validate:"required,http_url"`
}

// ScrapeResponse represents the response for POST /scrape
type ScrapeResponse struct {
	Success         bool              `json:"success"`
	Data            *types.JobPosting `json:"data"`
	ExtractionError string            `json:"extractionError,omitempty"`
}

// extendWriteDeadline gives a tailoring response the full run budget so a
// slow but successful run still reaches the caller.
func (s *Server) extendWriteDeadline(w http.ResponseWriter) {
	if s.opts.TailorTimeout <= 0 {
		return
	}
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(s.now().Add(s.opts.TailorTimeout)); err != nil {
		s.logger.Debug("write deadline not extended", zap.Error(err))
	}
}

// handleTailor runs the whole pipeline synchronously.
func (s *Server) handleTailor(w http.ResponseWriter, r *http.Request) {
	var req TailorRequest
	if err := s.decode(w, r, &req); err != nil {
		s.errorResponse(w, "Invalid request", err)
		return
	}

	inputType := pipeline.InputType(req.InputType)
	if inputType == "" {
		inputType = pipeline.InputText
	}
	if inputType == pipeline.InputURL {
		if err := s.validate.Var(strings.TrimSpace(req.JobInput), "http_url"); err != nil {
			s.errorResponse(w, "Invalid request", &ErrValidation{Field: "jobInput", Message: "must be a valid http(s) URL"})
			return
		}
	}

	s.extendWriteDeadline(w)
	res, err := s.opts.Service.Tailor(r.Context(), pipeline.Request{Input: req.JobInput, InputType: inputType})
	if err != nil {
		s.errorResponse(w, "Failed to tailor resume", err)
		return
	}

	issues := res.Issues
	if issues == nil {
		issues = []types.ValidationIssue{}
	}
	s.jsonResponse(w, http.StatusOK, TailorResponse{
		Success:             true,
		Message:             "Resume successfully tailored and PDF generated",
		RunID:               res.RunID.String(),
		JobPosting:          res.JobPosting,
		ExtractedKeywords:   res.Optimized.ExtractedKeywords,
		TailoredResume:      res.Document,
		OptimizationSummary: res.Summary,
		ValidationIssues:    issues,
		ExtractionError:     res.ExtractError,
		DownloadURL:         "/resume/" + res.RunID.String(),
	})
}

// handleScrape runs extraction only.
func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	var req ScrapeRequest
	if err := s.decode(w, r, &req); err != nil {
		s.errorResponse(w, "Invalid request", err)
		return
	}

	posting, err := s.opts.Service.Ingest(r.Context(), pipeline.Request{
		Input:     strings.TrimSpace(req.URL),
		InputType: pipeline.InputURL,
	})
	if posting == nil {
		s.errorResponse(w, "Failed to scrape job data", err)
		return
	}

	resp := ScrapeResponse{Success: true, Data: posting}
	if err != nil {
		resp.ExtractionError = err.Error()
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleLatestResume(w http.ResponseWriter, r *http.Request) {
	path, err := s.opts.Artifacts.Latest()
	if err != nil {
		s.errorResponse(w, "Resume PDF not found. Please generate a tailored resume first.", err)
		return
	}
	s.serveFile(w, r, path, latestFilename, "application/pdf")
}

func (s *Server) handleRunResume(w http.ResponseWriter, r *http.Request) {
	runID, ok := s.pathUUID(w, r, "runId")
	if !ok {
		return
	}
	path, err := s.opts.Artifacts.Lookup(runID)
	if err != nil {
		s.errorResponse(w, "Resume PDF not found", err)
		return
	}
	s.serveFile(w, r, path, s.downloadName(r, runID, ".pdf"), "application/pdf")
}

func (s *Server) handleRunSource(w http.ResponseWriter, r *http.Request) {
	runID, ok := s.pathUUID(w, r, "runId")
	if !ok {
		return
	}
	path, err := s.opts.Artifacts.LookupSource(runID)
	if err != nil {
		s.errorResponse(w, "Resume source not found", err)
		return
	}
	s.serveFile(w, r, path, s.downloadName(r, runID, ".tex"), "application/x-tex")
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := db.DefaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.errorResponse(w, "Invalid request", &ErrValidation{Field: "limit", Message: "must be a positive integer"})
			return
		}
		limit = min(n, maxListLimit)
	}

	runs, err := s.opts.Runs.ListRuns(r.Context(), limit)
	if err != nil {
		s.errorResponse(w, "Failed to list runs", err)
		return
	}
	if runs == nil {
		runs = []db.Run{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"success": true, "runs": runs})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}
	run, err := s.opts.Runs.GetRun(r.Context(), id)
	if err != nil {
		s.errorResponse(w, "Run not found", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"success": true, "run": run})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": s.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	})
}

// decode reads a bounded JSON body into dst and validates it.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	if err := s.validate.Struct(dst); err != nil {
		return &ErrValidation{Field: "body", Message: validationMessage(err)}
	}
	return nil
}

func (s *Server) pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		s.errorResponse(w, "Invalid request", &ErrValidation{Field: name, Message: "must be a UUID"})
		return uuid.Nil, false
	}
	return id, true
}

// downloadName builds "resume-<company>-<title><ext>" from the run history,
// or falls back to the run id.
func (s *Server) downloadName(r *http.Request, runID uuid.UUID, ext string) string {
	fallback := "resume-" + runID.String() + ext
	if s.opts.Runs == nil {
		return fallback
	}
	run, err := s.opts.Runs.GetRun(r.Context(), runID)
	if err != nil {
		if !errors.Is(err, db.ErrRunNotFound) {
			s.logger.Warn("failed to load run for download name", zap.Error(err))
		}
		return fallback
	}

	var parts []string
	if run.Company != "" && run.Company != types.CompanyNotFound {
		parts = append(parts, run.Company)
	}
	if run.Title != "" && run.Title != types.TitleNotFound {
		parts = append(parts, run.Title)
	}
	if len(parts) == 0 {
		return fallback
	}
	return slug.Make("resume "+strings.Join(parts, " ")) + ext
}

func (s *Server) serveFile(w http.ResponseWriter, r *http.Request, path, filename, contentType string) {
	f, err := os.Open(path)
	if err != nil {
		s.errorResponse(w, "Artifact not found", compilation.ErrArtifactNotFound)
		return
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		s.errorResponse(w, "Artifact not found", compilation.ErrArtifactNotFound)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	http.ServeContent(w, r, filename, info.ModTime(), f)
}
