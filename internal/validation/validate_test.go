package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jonathan/resume-tailor/internal/rendering"
	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimal = `\documentclass{article}
\begin{document}
Hello \& welcome, snake\_case.
\end{document}
`

func issueTypes(issues []types.ValidationIssue) []string {
	out := make([]string, 0, len(issues))
	for _, i := range issues {
		out = append(out, i.Type)
	}
	return out
}

func TestValidate_Clean(t *testing.T) {
	issues := Validate(minimal)
	assert.NotNil(t, issues)
	assert.Empty(t, issues)
}

func TestValidate_MissingMarkers(t *testing.T) {
	issues := Validate(`\begin{document}hi`)
	require.Len(t, issues, 3)
	assert.Equal(t, types.IssueMissingMarker, issues[0].Type)
	assert.Contains(t, issues[0].Details, `\documentclass`)
	assert.Contains(t, issues[1].Details, `\end{document}`)
	assert.Equal(t, types.IssueUnbalancedEnvironment, issues[2].Type)
}

func TestValidate_Braces(t *testing.T) {
	doc := `\documentclass{article}\begin{document}\textbf{oops\end{document}`
	issues := Validate(doc)
	assert.Contains(t, issueTypes(issues), types.IssueUnbalancedBraces)
	for _, i := range issues {
		assert.Equal(t, types.SeverityWarning, i.Severity)
	}
}

func TestValidate_EscapedBracesIgnored(t *testing.T) {
	doc := `\documentclass{article}\begin{document}set \{ open and \textbackslash{} \\{x} \end{document}`
	assert.Empty(t, Validate(doc))
}

func TestValidate_CommentsIgnored(t *testing.T) {
	doc := "\\documentclass{article}\n% stray { in a comment \\begin{itemize}\n\\begin{document}x\\end{document}\n"
	assert.Empty(t, Validate(doc))
}

func TestValidate_Environments(t *testing.T) {
	doc := `\documentclass{article}\begin{document}\begin{itemize}\item x\end{document}`
	assert.Equal(t, []string{types.IssueUnbalancedEnvironment}, issueTypes(Validate(doc)))
}

func TestValidate_Placeholders(t *testing.T) {
	doc := `\documentclass{article}\begin{document}[SKILLS_SECTION] [SKILLS_SECTION] [PROJECTS_SECTION]\end{document}`
	issues := Validate(doc)
	var found []string
	for _, i := range issues {
		if i.Type == types.IssueUnreplacedPlaceholder {
			found = append(found, i.Details)
		}
	}
	assert.Equal(t, []string{
		"unreplaced placeholder [SKILLS_SECTION]",
		"unreplaced placeholder [PROJECTS_SECTION]",
	}, found)
}

func TestValidate_UnescapedHeuristics(t *testing.T) {
	doc := `\documentclass{article}\begin{document}a_b & c\end{document}`
	issues := Validate(doc)
	require.Len(t, issues, 2)
	assert.Equal(t, types.IssueUnescapedCharacter, issues[0].Type)
	assert.Contains(t, issues[0].Details, `"_"`)
	assert.Contains(t, issues[1].Details, `"&"`)
}

func TestValidate_RendererOutputIsClean(t *testing.T) {
	profile := &types.ResumeProfile{
		Contact:   types.Contact{Name: "Sam Rivera", Email: "sam@example.com"},
		Education: []types.Education{{School: "State University", Degree: "B.S.", Dates: "2020"}},
		Skills:    []types.SkillCategory{{Key: "languages", Label: "Languages", Skills: []string{"Go"}}},
	}
	r, err := rendering.NewRenderer(profile)
	require.NoError(t, err)

	doc, err := r.Render(&types.OptimizedResumeData{
		Skills: map[string][]string{"languages": {"C#", "C++", "{weird}", `back\slash`}},
		WorkExperience: []types.WorkExperience{{
			Title: "Engineer", Company: "R&D Labs", Location: "Remote", Duration: "2021",
			Bullets: []string{"Raised coverage to 90% with table_driven tests", "Closed } stray braces {"},
		}},
		Projects: []types.Project{
			{Title: "Tool", Technologies: "Go, C#", Bullets: []string{"Costs $0 ~ free ^_^"}},
			{Title: "Lib", Technologies: "Rust"},
		},
	})
	require.NoError(t, err)
	assert.Empty(t, Validate(doc.Full))
}

func TestValidateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.tex")
	require.NoError(t, os.WriteFile(path, []byte(minimal), 0o644))

	issues, err := ValidateFile(path)
	require.NoError(t, err)
	assert.Empty(t, issues)

	_, err = ValidateFile(filepath.Join(t.TempDir(), "missing.tex"))
	var fre *FileReadError
	assert.ErrorAs(t, err, &fre)
}
