// Package validation performs advisory structural checks on assembled LaTeX
// documents. Findings never stop compilation; the compiler is the
// authoritative check.
package validation

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/jonathan/resume-tailor/internal/types"
)

// Structural markers every document must contain.
var requiredMarkers = []string{`\documentclass`, `\begin{document}`, `\end{document}`}

var placeholderPattern = regexp.MustCompile(`\[[A-Z][A-Z_]*_SECTION\]`)

type check func(doc string, s scanStats) []types.ValidationIssue

var checks = []check{
	checkMarkers,
	checkBraces,
	checkEnvironments,
	checkPlaceholders,
	checkUnescaped,
}

// Validate runs every check against doc and returns the findings in check
// order. It never fails.
func Validate(doc string) []types.ValidationIssue {
	stats := scan(doc)
	issues := []types.ValidationIssue{}
	for _, c := range checks {
		issues = append(issues, c(doc, stats)...)
	}
	return issues
}

// ValidateFile reads path and validates its contents.
func ValidateFile(path string) ([]types.ValidationIssue, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileReadError{Path: path, Cause: err}
	}
	return Validate(string(content)), nil
}

func issue(kind, format string, args ...any) types.ValidationIssue {
	return types.ValidationIssue{
		Type:     kind,
		Severity: types.SeverityWarning,
		Details:  fmt.Sprintf(format, args...),
	}
}

func checkMarkers(doc string, _ scanStats) []types.ValidationIssue {
	var out []types.ValidationIssue
	for _, m := range requiredMarkers {
		if !strings.Contains(doc, m) {
			out = append(out, issue(types.IssueMissingMarker, "missing %s", m))
		}
	}
	return out
}

func checkBraces(_ string, s scanStats) []types.ValidationIssue {
	if s.open == s.close {
		return nil
	}
	return []types.ValidationIssue{
		issue(types.IssueUnbalancedBraces, "unbalanced braces: %d opening, %d closing", s.open, s.close),
	}
}

func checkEnvironments(_ string, s scanStats) []types.ValidationIssue {
	if s.begins == s.ends {
		return nil
	}
	return []types.ValidationIssue{
		issue(types.IssueUnbalancedEnvironment, `unbalanced environments: %d \begin, %d \end`, s.begins, s.ends),
	}
}

func checkPlaceholders(doc string, _ scanStats) []types.ValidationIssue {
	var out []types.ValidationIssue
	seen := map[string]bool{}
	for _, ph := range placeholderPattern.FindAllString(doc, -1) {
		if seen[ph] {
			continue
		}
		seen[ph] = true
		out = append(out, issue(types.IssueUnreplacedPlaceholder, "unreplaced placeholder %s", ph))
	}
	return out
}

// checkUnescaped is a heuristic: a reserved character that never appears in
// escaped form anywhere in the document was probably interpolated raw.
func checkUnescaped(doc string, _ scanStats) []types.ValidationIssue {
	var out []types.ValidationIssue
	for _, ch := range []string{"_", "&"} {
		if strings.Contains(doc, ch) && !strings.Contains(doc, `\`+ch) {
			out = append(out, issue(types.IssueUnescapedCharacter, "%q appears without an escaped counterpart", ch))
		}
	}
	return out
}
