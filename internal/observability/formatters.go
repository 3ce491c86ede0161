// Package observability provides formatted output utilities for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jonathan/resume-tailor/internal/ingestion"
	"github.com/jonathan/resume-tailor/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 8
	// descriptionPreview is how much of a description is shown
	descriptionPreview = 160
)

// Printer handles formatted output for the CLI
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, clip(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, clip(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// clip shortens s to width runes, marking the cut with "...".
func clip(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}

// PrintJobPosting outputs the extracted posting.
func (p *Printer) PrintJobPosting(posting *types.JobPosting) {
	if posting == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Title:    %s\n", posting.Title)
	fmt.Fprintf(&sb, "Company:  %s\n", posting.Company)
	fmt.Fprintf(&sb, "Job ID:   %s\n", posting.JobID)
	if posting.Engine != "" {
		fmt.Fprintf(&sb, "Engine:   %s\n", posting.Engine)
	}
	if posting.SourceURL != "" {
		fmt.Fprintf(&sb, "URL:      %s\n", posting.SourceURL)
	}
	sb.WriteString("\n")
	sb.WriteString(wrap(clip(posting.Description, descriptionPreview), boxWidth-4))

	p.printBox("JOB POSTING", sb.String())
}

// PrintOptimization outputs the extracted keywords and section counts.
func (p *Printer) PrintOptimization(data *types.OptimizedResumeData) {
	if data == nil {
		return
	}
	summary := data.Summarize()

	var sb strings.Builder
	fmt.Fprintf(&sb, "Keywords:             %d\n", summary.TotalKeywords)
	fmt.Fprintf(&sb, "Skill categories:     %d\n", summary.SkillsOptimized)
	fmt.Fprintf(&sb, "Experience entries:   %d\n", summary.ExperienceReordered)
	fmt.Fprintf(&sb, "Projects highlighted: %d\n", summary.ProjectsHighlighted)

	if len(data.ExtractedKeywords) > 0 {
		sb.WriteString("\nTop keywords:\n")
		count := min(len(data.ExtractedKeywords), maxItemsToShow)
		for _, kw := range data.ExtractedKeywords[:count] {
			fmt.Fprintf(&sb, "  • %s\n", kw)
		}
		if len(data.ExtractedKeywords) > maxItemsToShow {
			fmt.Fprintf(&sb, "  ... and %d more\n", len(data.ExtractedKeywords)-maxItemsToShow)
		}
	}

	p.printBox("OPTIMIZATION SUMMARY", sb.String())
}

// PrintValidationIssues outputs advisory findings. Nothing is printed for
// a clean document.
func (p *Printer) PrintValidationIssues(issues []types.ValidationIssue) {
	if len(issues) == 0 {
		return
	}
	var sb strings.Builder
	for _, issue := range issues {
		fmt.Fprintf(&sb, "⚠ %s\n", issue.Type)
		fmt.Fprintf(&sb, "  %s\n", issue.Details)
	}
	p.printBox(fmt.Sprintf("VALIDATION ISSUES (%d)", len(issues)), sb.String())
}

// PrintProbeResults outputs a side-by-side comparison of engine results.
func (p *Printer) PrintProbeResults(results []ingestion.ProbeResult) {
	if len(results) == 0 {
		return
	}
	var sb strings.Builder
	for i, r := range results {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%s (%s)\n", r.Engine, r.Duration.Round(time.Millisecond))
		if r.Error != "" {
			fmt.Fprintf(&sb, "  ✗ %s\n", r.Error)
			continue
		}
		if r.Fields == nil {
			sb.WriteString("  ✗ no fields\n")
			continue
		}
		fmt.Fprintf(&sb, "  title:       %s\n", orDash(r.Fields.Title))
		fmt.Fprintf(&sb, "  company:     %s\n", orDash(r.Fields.Company))
		fmt.Fprintf(&sb, "  job id:      %s\n", orDash(r.Fields.JobID))
		fmt.Fprintf(&sb, "  description: %d chars\n", len([]rune(r.Fields.Description)))
	}
	p.printBox("ENGINE PROBE", sb.String())
}

// PrintArtifact outputs where a finished run was written.
func (p *Printer) PrintArtifact(runID string, artifact *types.CompiledArtifact, sourcePath string) {
	if artifact == nil {
		return
	}
	var sb strings.Builder
	if runID != "" {
		fmt.Fprintf(&sb, "Run:     %s\n", runID)
	}
	fmt.Fprintf(&sb, "PDF:     %s\n", artifact.Path)
	fmt.Fprintf(&sb, "Size:    %s\n", humanBytes(artifact.Size))
	if sourcePath != "" {
		fmt.Fprintf(&sb, "Source:  %s\n", sourcePath)
	}
	fmt.Fprintf(&sb, "Issues:  %d\n", len(artifact.Issues))
	p.printBox("✓ RESUME READY", sb.String())
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func humanBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// wrap breaks text into lines of at most width runes on word boundaries.
func wrap(text string, width int) string {
	var (
		sb      strings.Builder
		lineLen int
	)
	for _, word := range strings.Fields(text) {
		n := len([]rune(word))
		if lineLen > 0 && lineLen+1+n > width {
			sb.WriteString("\n")
			lineLen = 0
		}
		if lineLen > 0 {
			sb.WriteString(" ")
			lineLen++
		}
		sb.WriteString(word)
		lineLen += n
	}
	return sb.String()
}
