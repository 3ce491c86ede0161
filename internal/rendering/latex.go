package rendering

import (
	"embed"
	"fmt"
	"sort"
	"strings"
	"text/template"
	"unicode"

	"github.com/jonathan/resume-tailor/internal/types"
)

//go:embed templates/*.tex
var templateFS embed.FS

// Placeholders in the skeleton, each replaced exactly once.
const (
	SkillsPlaceholder     = "[SKILLS_SECTION]"
	ExperiencePlaceholder = "[WORK_EXPERIENCE_SECTION]"
	ProjectsPlaceholder   = "[PROJECTS_SECTION]"
)

// Placeholders lists the section placeholders in document order.
var Placeholders = []string{SkillsPlaceholder, ExperiencePlaceholder, ProjectsPlaceholder}

const (
	leadDivider    = "-12pt"
	trailerDivider = "-9pt"
)

var funcs = template.FuncMap{
	"escape":       EscapeLaTeX,
	"url":          EscapeURL,
	"join":         escapeJoin,
	"technologies": escapeTechnologies,
	"divider": func(i, n int) bool {
		return i == 0 || i < n-1
	},
	"spacing": func(i int) string {
		if i == 0 {
			return leadDivider
		}
		return trailerDivider
	},
}

// Renderer renders OptimizedResumeData into a full document. It is safe for
// concurrent use once constructed.
type Renderer struct {
	skeleton string
	order    []string
	labels   map[string]string
	sections *template.Template
}

// NewRenderer builds a renderer whose skeleton header and education come from
// profile and whose skill categories follow the profile's order and labels.
func NewRenderer(profile *types.ResumeProfile) (*Renderer, error) {
	raw, err := templateFS.ReadFile("templates/skeleton.tex")
	if err != nil {
		return nil, &TemplateError{Message: "failed to read skeleton", Cause: err}
	}
	skeleton, err := ExpandSkeleton(string(raw), profile)
	if err != nil {
		return nil, err
	}
	return NewRendererWithSkeleton(skeleton, profile)
}

// NewRendererWithSkeleton builds a renderer around an already expanded skeleton.
func NewRendererWithSkeleton(skeleton string, profile *types.ResumeProfile) (*Renderer, error) {
	sections, err := template.New("sections").
		Delims("<<", ">>").
		Funcs(funcs).
		ParseFS(templateFS, "templates/sections.tex")
	if err != nil {
		return nil, &TemplateError{Message: "failed to parse section templates", Cause: err}
	}

	r := &Renderer{
		skeleton: skeleton,
		labels:   map[string]string{},
		sections: sections,
	}
	if profile != nil {
		r.order = profile.SkillOrder()
		r.labels = profile.SkillLabels()
	}
	return r, nil
}

// ExpandSkeleton fills the profile-specific parts of a skeleton template
// (contact header, education), leaving the section placeholders in place.
func ExpandSkeleton(src string, profile *types.ResumeProfile) (string, error) {
	tmpl, err := template.New("skeleton").Delims("<<", ">>").Funcs(funcs).Parse(src)
	if err != nil {
		return "", &TemplateError{Message: "failed to parse skeleton", Cause: err}
	}
	if profile == nil {
		profile = &types.ResumeProfile{}
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, profile); err != nil {
		return "", &TemplateError{Message: "failed to execute skeleton", Cause: err}
	}
	return sb.String(), nil
}

// Skeleton returns the expanded skeleton with placeholders intact.
func (r *Renderer) Skeleton() string {
	return r.skeleton
}

// Render renders the three sections and substitutes them into the skeleton.
func (r *Renderer) Render(data *types.OptimizedResumeData) (*types.RenderedDocument, error) {
	if data == nil {
		return nil, &TemplateError{Message: "no resume data to render"}
	}

	skills, err := r.execute("skills", r.skillRows(data.Skills))
	if err != nil {
		return nil, err
	}
	experience, err := r.execute("experience", data.WorkExperience)
	if err != nil {
		return nil, err
	}
	projects := data.Projects
	if len(projects) > types.MaxRenderedProjects {
		projects = projects[:types.MaxRenderedProjects]
	}
	projectsSection, err := r.execute("projects", projects)
	if err != nil {
		return nil, err
	}

	doc := &types.RenderedDocument{
		SkillsSection:     skills,
		ExperienceSection: experience,
		ProjectsSection:   projectsSection,
	}
	doc.Full, err = Assemble(r.skeleton, map[string]string{
		SkillsPlaceholder:     skills,
		ExperiencePlaceholder: experience,
		ProjectsPlaceholder:   projectsSection,
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Assemble replaces each placeholder in skeleton with its fragment. Every
// placeholder must occur exactly once.
func Assemble(skeleton string, fragments map[string]string) (string, error) {
	for _, ph := range Placeholders {
		switch n := strings.Count(skeleton, ph); n {
		case 1:
		case 0:
			return "", &TemplateError{Message: fmt.Sprintf("placeholder %s not found in skeleton", ph)}
		default:
			return "", &TemplateError{Message: fmt.Sprintf("placeholder %s occurs %d times in skeleton", ph, n)}
		}
	}

	out := skeleton
	for _, ph := range Placeholders {
		out = strings.Replace(out, ph, fragments[ph], 1)
	}
	return out, nil
}

func (r *Renderer) execute(name string, data any) (string, error) {
	var sb strings.Builder
	if err := r.sections.ExecuteTemplate(&sb, name, data); err != nil {
		return "", &TemplateError{Message: fmt.Sprintf("failed to render %s section", name), Cause: err}
	}
	return sb.String(), nil
}

type skillRow struct {
	Label  string
	Skills []string
}

// skillRows orders categories by the profile first, then any extra
// categories alphabetically.
func (r *Renderer) skillRows(skills map[string][]string) []skillRow {
	rows := make([]skillRow, 0, len(skills))
	seen := make(map[string]bool, len(skills))
	for _, key := range r.order {
		if list, ok := skills[key]; ok {
			rows = append(rows, skillRow{Label: r.label(key), Skills: list})
			seen[key] = true
		}
	}

	var extra []string
	for key := range skills {
		if !seen[key] {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	for _, key := range extra {
		rows = append(rows, skillRow{Label: r.label(key), Skills: skills[key]})
	}
	return rows
}

func (r *Renderer) label(key string) string {
	if l, ok := r.labels[key]; ok && l != "" {
		return l
	}
	return humanize(key)
}

// humanize turns "webTechnologies" or "web_technologies" into "Web Technologies".
func humanize(key string) string {
	var sb strings.Builder
	prevLower := false
	for i, r := range key {
		switch {
		case r == '_' || r == '-':
			sb.WriteRune(' ')
			prevLower = false
			continue
		case unicode.IsUpper(r) && prevLower:
			sb.WriteRune(' ')
		}
		if i == 0 || sb.Len() > 0 && strings.HasSuffix(sb.String(), " ") {
			r = unicode.ToUpper(r)
		}
		sb.WriteRune(r)
		prevLower = unicode.IsLower(r)
	}
	return sb.String()
}
