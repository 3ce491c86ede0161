package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/resume-tailor/internal/ingestion"
	"github.com/jonathan/resume-tailor/internal/types"
)

func TestPrintJobPosting(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintJobPosting(&types.JobPosting{
		Title:       "Senior Engineer",
		Company:     "Acme Corp",
		JobID:       "4012345678",
		Description: "Build distributed systems in Go. " + strings.Repeat("More detail. ", 30),
		SourceURL:   "https://www.linkedin.com/jobs/view/4012345678",
		Engine:      types.EngineHTML,
	})
	output := buf.String()

	assert.Contains(t, output, "JOB POSTING")
	assert.Contains(t, output, "Acme Corp")
	assert.Contains(t, output, "Senior Engineer")
	assert.Contains(t, output, "4012345678")
	assert.Contains(t, output, "html")
	assert.Contains(t, output, "Build distributed systems in Go.")
	assert.Contains(t, output, "...")
}

func TestPrintJobPosting_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintJobPosting(nil)
	assert.Empty(t, buf.String())
}

func TestPrintOptimization(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	keywords := []string{"Go", "Kubernetes", "PostgreSQL", "gRPC", "Kafka", "Terraform", "AWS", "Docker", "Redis", "CI/CD"}
	p.PrintOptimization(&types.OptimizedResumeData{
		ExtractedKeywords: keywords,
		Skills:            map[string][]string{"languages": {"Go"}, "tools": {"Docker"}},
		WorkExperience:    []types.WorkExperience{{Title: "Engineer"}},
		Projects:          make([]types.Project, 6),
	})
	output := buf.String()

	assert.Contains(t, output, "OPTIMIZATION SUMMARY")
	assert.Contains(t, output, "Keywords:             10")
	assert.Contains(t, output, "Skill categories:     2")
	assert.Contains(t, output, "Projects highlighted: 4")
	assert.Contains(t, output, "• Kubernetes")
	assert.Contains(t, output, "... and 2 more")
	assert.NotContains(t, output, "CI/CD")
}

func TestPrintValidationIssues(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintValidationIssues(nil)
	assert.Empty(t, buf.String())

	p.PrintValidationIssues([]types.ValidationIssue{
		{Type: types.IssueUnbalancedBraces, Severity: types.SeverityWarning, Details: "12 open vs 11 close"},
	})
	output := buf.String()
	assert.Contains(t, output, "VALIDATION ISSUES (1)")
	assert.Contains(t, output, "unbalanced_braces")
	assert.Contains(t, output, "12 open vs 11 close")
}

func TestPrintProbeResults(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintProbeResults([]ingestion.ProbeResult{
		{Engine: "browser", Error: "context deadline exceeded", Duration: 10 * time.Second},
		{Engine: "html", Fields: &ingestion.Fields{Title: "Engineer", Description: "Build things"}, Duration: 420 * time.Millisecond},
	})
	output := buf.String()

	assert.Contains(t, output, "ENGINE PROBE")
	assert.Contains(t, output, "browser (10s)")
	assert.Contains(t, output, "✗ context deadline exceeded")
	assert.Contains(t, output, "html (420ms)")
	assert.Contains(t, output, "title:       Engineer")
	assert.Contains(t, output, "company:     -")
	assert.Contains(t, output, "description: 12 chars")
}

func TestPrintArtifact(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintArtifact("run-1", &types.CompiledArtifact{Path: "/tmp/out/run-1.pdf", Size: 52 * 1024}, "/tmp/out/run-1.tex")
	output := buf.String()

	assert.Contains(t, output, "RESUME READY")
	assert.Contains(t, output, "/tmp/out/run-1.pdf")
	assert.Contains(t, output, "52.0 KB")
	assert.Contains(t, output, "Issues:  0")
}

func TestClip(t *testing.T) {
	assert.Equal(t, "short", clip("short", 10))
	assert.Equal(t, "abcdefg...", clip("abcdefghijklmnop", 10))
	assert.Equal(t, "ééééééé...", clip(strings.Repeat("é", 20), 10))
}

func TestWrap(t *testing.T) {
	assert.Equal(t, "one two\nthree", wrap("one two three", 8))
	assert.Equal(t, "", wrap("   ", 8))
}
