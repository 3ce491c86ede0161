package ingestion

import (
	"encoding/hex"
	"regexp"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/crypto/blake2b"

	"github.com/jonathan/resume-tailor/internal/types"
)

const (
	jobIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	jobIDLength   = 9
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	blankLines    = regexp.MustCompile(`\n{3,}`)
)

// NormalizeWhitespace collapses every whitespace run to a single space.
func NormalizeWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// CleanText tidies pasted text while keeping its line structure: line
// endings are normalized, runs of spaces inside a line collapse, and more
// than one blank line in a row is dropped.
func CleanText(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = NormalizeWhitespace(line)
	}
	return strings.TrimSpace(blankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n"))
}

// NewJobID returns a random opaque token. It is not stable across repeated
// extractions of the same posting; use Fingerprint for that.
func NewJobID() string {
	id, err := gonanoid.Generate(jobIDAlphabet, jobIDLength)
	if err != nil {
		// crypto/rand failure; fall back to a fixed-length token of the same alphabet
		return strings.Repeat("0", jobIDLength)
	}
	return id
}

// Fingerprint is a deterministic digest of a description, insensitive to
// case and whitespace differences.
func Fingerprint(description string) string {
	normalized := strings.ToLower(NormalizeWhitespace(description))
	sum := blake2b.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:16])
}

// postingFromFields normalizes engine output into a well-formed posting,
// substituting sentinels for missing fields.
func postingFromFields(f *Fields, sourceURL, engine string) *types.JobPosting {
	if f == nil {
		f = &Fields{}
	}
	p := &types.JobPosting{
		Title:       orDefault(NormalizeWhitespace(f.Title), types.TitleNotFound),
		Company:     orDefault(NormalizeWhitespace(f.Company), types.CompanyNotFound),
		JobID:       NormalizeWhitespace(f.JobID),
		Description: orDefault(NormalizeWhitespace(f.Description), types.DescriptionNotFound),
		SourceURL:   sourceURL,
		Engine:      engine,
	}
	if p.JobID == "" {
		p.JobID = NewJobID()
	}
	if p.HasDescription() {
		p.Fingerprint = Fingerprint(p.Description)
	}
	return p
}

// SentinelPosting is returned when no engine could read the page.
func SentinelPosting(sourceURL string) *types.JobPosting {
	return postingFromFields(nil, sourceURL, types.EngineNone)
}

// FromText builds a posting from pasted job description text.
func FromText(text string) *types.JobPosting {
	p := &types.JobPosting{
		Title:       types.TitleNotFound,
		Company:     types.CompanyNotFound,
		JobID:       NewJobID(),
		Description: orDefault(CleanText(text), types.DescriptionNotFound),
		Engine:      types.EngineText,
	}
	if p.HasDescription() {
		p.Fingerprint = Fingerprint(p.Description)
	}
	return p
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
