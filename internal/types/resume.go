package types

// Contact holds the header line of the resume.
type Contact struct {
	Name     string `json:"name" yaml:"name"`
	Phone    string `json:"phone,omitempty" yaml:"phone"`
	Email    string `json:"email,omitempty" yaml:"email"`
	Location string `json:"location,omitempty" yaml:"location"`
	LinkedIn string `json:"linkedin,omitempty" yaml:"linkedin"`
	GitHub   string `json:"github,omitempty" yaml:"github"`
}

// Education is one entry of the education section.
type Education struct {
	School   string   `json:"school" yaml:"school"`
	Location string   `json:"location,omitempty" yaml:"location"`
	Degree   string   `json:"degree" yaml:"degree"`
	Dates    string   `json:"dates,omitempty" yaml:"dates"`
	Courses  []string `json:"courses,omitempty" yaml:"courses"`
}

// SkillCategory is an ordered, labeled group of skills.
type SkillCategory struct {
	Key    string   `json:"key" yaml:"key"`
	Label  string   `json:"label" yaml:"label"`
	Skills []string `json:"skills" yaml:"skills"`
}

// WorkExperience is one job entry.
type WorkExperience struct {
	Title    string   `json:"title" yaml:"title"`
	Company  string   `json:"company" yaml:"company"`
	Location string   `json:"location" yaml:"location"`
	Duration string   `json:"duration" yaml:"duration"`
	Bullets  []string `json:"bullets" yaml:"bullets"`
}

// Project is one project entry. Technologies is a comma-separated list.
type Project struct {
	Title        string   `json:"title" yaml:"title"`
	Technologies string   `json:"technologies" yaml:"technologies"`
	Bullets      []string `json:"bullets" yaml:"bullets"`
}

// ResumeProfile is the read-only baseline every tailoring request starts from.
type ResumeProfile struct {
	Contact        Contact          `json:"contact" yaml:"contact"`
	Education      []Education      `json:"education" yaml:"education"`
	Skills         []SkillCategory  `json:"skills" yaml:"skills"`
	WorkExperience []WorkExperience `json:"workExperience" yaml:"workExperience"`
	Projects       []Project        `json:"projects" yaml:"projects"`
}

// SkillMap returns the skills keyed by category, the shape the optimizer
// exchanges with the language model.
func (p *ResumeProfile) SkillMap() map[string][]string {
	out := make(map[string][]string, len(p.Skills))
	for _, c := range p.Skills {
		out[c.Key] = append([]string(nil), c.Skills...)
	}
	return out
}

// SkillLabels maps category keys to display labels.
func (p *ResumeProfile) SkillLabels() map[string]string {
	out := make(map[string]string, len(p.Skills))
	for _, c := range p.Skills {
		out[c.Key] = c.Label
	}
	return out
}

// SkillOrder returns the category keys in profile order.
func (p *ResumeProfile) SkillOrder() []string {
	keys := make([]string, 0, len(p.Skills))
	for _, c := range p.Skills {
		keys = append(keys, c.Key)
	}
	return keys
}

// OptimizedResumeData is the contract payload returned by the optimizer.
type OptimizedResumeData struct {
	ExtractedKeywords []string            `json:"extractedKeywords"`
	Skills            map[string][]string `json:"skills"`
	WorkExperience    []WorkExperience    `json:"workExperience"`
	Projects          []Project           `json:"projects"`
}

// OptimizationSummary reports the size of each tailored section.
type OptimizationSummary struct {
	TotalKeywords       int `json:"totalKeywords"`
	SkillsOptimized     int `json:"skillsOptimized"`
	ExperienceReordered int `json:"experienceReordered"`
	ProjectsHighlighted int `json:"projectsHighlighted"`
}

// MaxRenderedProjects caps how many projects appear on the page.
const MaxRenderedProjects = 4

// Summarize builds the OptimizationSummary for d.
func (d *OptimizedResumeData) Summarize() OptimizationSummary {
	return OptimizationSummary{
		TotalKeywords:       len(d.ExtractedKeywords),
		SkillsOptimized:     len(d.Skills),
		ExperienceReordered: len(d.WorkExperience),
		ProjectsHighlighted: min(len(d.Projects), MaxRenderedProjects),
	}
}
