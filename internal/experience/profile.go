// Package experience loads the baseline resume profile that every tailoring
// request starts from.
package experience

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/resume-tailor/internal/types"
)

//go:embed default_profile.yaml
var defaultProfile []byte

// LoadProfile reads a profile from path. An empty path selects the built-in
// profile.
func LoadProfile(path string) (*types.ResumeProfile, error) {
	if path == "" {
		return ParseProfile(defaultProfile)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{
			Message: fmt.Sprintf("failed to read file %s", path),
			Cause:   err,
		}
	}
	return ParseProfile(content)
}

// DefaultProfile returns the built-in profile.
func DefaultProfile() *types.ResumeProfile {
	p, err := ParseProfile(defaultProfile)
	if err != nil {
		panic(fmt.Sprintf("embedded profile is invalid: %v", err))
	}
	return p
}

// ParseProfile decodes YAML (JSON is accepted too) and checks the profile is usable.
func ParseProfile(content []byte) (*types.ResumeProfile, error) {
	var p types.ResumeProfile
	if err := yaml.Unmarshal(content, &p); err != nil {
		return nil, &LoadError{Message: "failed to parse profile", Cause: err}
	}
	if err := Validate(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks the invariants the renderer and optimizer rely on.
func Validate(p *types.ResumeProfile) error {
	var problems []string
	if strings.TrimSpace(p.Contact.Name) == "" {
		problems = append(problems, "contact.name is required")
	}
	seen := map[string]bool{}
	for i, c := range p.Skills {
		switch {
		case c.Key == "":
			problems = append(problems, fmt.Sprintf("skills[%d].key is required", i))
		case seen[c.Key]:
			problems = append(problems, fmt.Sprintf("duplicate skill category %q", c.Key))
		}
		seen[c.Key] = true
	}
	for i, w := range p.WorkExperience {
		if w.Title == "" || w.Company == "" {
			problems = append(problems, fmt.Sprintf("workExperience[%d] needs title and company", i))
		}
	}
	for i, pr := range p.Projects {
		if pr.Title == "" {
			problems = append(problems, fmt.Sprintf("projects[%d].title is required", i))
		}
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
