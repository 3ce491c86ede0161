// Package optimization asks the language model to tailor the baseline
// profile to a job description and checks what comes back.
package optimization

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/logging"
	"github.com/jonathan/resume-tailor/internal/prompts"
	"github.com/jonathan/resume-tailor/internal/schemas"
	"github.com/jonathan/resume-tailor/internal/types"
	embedded "github.com/jonathan/resume-tailor/schemas"
)

// responseExcerptLimit bounds the raw response kept on an OptimizationError.
const responseExcerptLimit = 500

// Optimizer tailors a fixed profile. It is safe for concurrent use if the
// client is.
type Optimizer struct {
	client  llm.Client
	profile *types.ResumeProfile
	logger  *zap.Logger
}

// New returns an Optimizer over profile.
func New(client llm.Client, profile *types.ResumeProfile, logger *zap.Logger) *Optimizer {
	return &Optimizer{client: client, profile: profile, logger: logging.OrNop(logger)}
}

// Optimize sends one prompt and returns the parsed, checked payload. There
// is no retry: any malformed or incomplete response is an *OptimizationError.
func (o *Optimizer) Optimize(ctx context.Context, description string) (*types.OptimizedResumeData, error) {
	prompt, err := BuildPrompt(description, o.profile)
	if err != nil {
		return nil, &OptimizationError{Message: "failed to build prompt", Cause: err}
	}

	start := time.Now()
	raw, err := o.client.GenerateJSON(ctx, prompt)
	if err != nil {
		return nil, &OptimizationError{Message: "language model request failed", Cause: err}
	}
	o.logger.Debug("language model responded",
		zap.String("model", o.client.Model()),
		zap.Int("response_bytes", len(raw)),
		zap.Duration(logging.FieldDuration, time.Since(start)),
	)

	data, err := ParseResponse(raw)
	if err != nil {
		var optErr *OptimizationError
		if errors.As(err, &optErr) {
			o.logger.Warn("unusable language model response",
				zap.String("reason", optErr.Message),
				zap.String("response", optErr.Response),
			)
		}
		return nil, err
	}
	if err := CheckComplete(data, o.profile); err != nil {
		return nil, err
	}
	for _, w := range unknownEmployers(data, o.profile) {
		o.logger.Warn("optimized work entry does not match the profile", zap.String("entry", w))
	}
	return data, nil
}

// BuildPrompt embeds the description and the full profile in the tailoring
// prompt.
func BuildPrompt(description string, profile *types.ResumeProfile) (string, error) {
	resumeData, err := json.MarshalIndent(profileForPrompt(profile), "", "  ")
	if err != nil {
		return "", err
	}
	example, err := json.MarshalIndent(outputExample(profile), "", "  ")
	if err != nil {
		return "", err
	}
	name := profile.Contact.Name
	if name == "" {
		name = "the candidate"
	}
	return prompts.Render(prompts.Tailoring, prompts.KeyOptimizeResume, map[string]string{
		"CandidateName":  name,
		"JobDescription": description,
		"ResumeData":     string(resumeData),
		"SkillKeys":      strings.Join(profile.SkillOrder(), ", "),
		"OutputExample":  string(example),
	})
}

// profileForPrompt is the profile in the same shape the model must return.
func profileForPrompt(p *types.ResumeProfile) types.OptimizedResumeData {
	return types.OptimizedResumeData{
		Skills:         p.SkillMap(),
		WorkExperience: p.WorkExperience,
		Projects:       p.Projects,
	}
}

func outputExample(p *types.ResumeProfile) map[string]any {
	skills := make(map[string][]string, len(p.Skills))
	for _, key := range p.SkillOrder() {
		skills[key] = []string{"optimized list with job-relevant keywords first"}
	}
	work := make([]types.WorkExperience, 0, len(p.WorkExperience))
	for _, w := range p.WorkExperience {
		work = append(work, types.WorkExperience{
			Title:    w.Title,
			Company:  w.Company,
			Location: w.Location,
			Duration: w.Duration,
			Bullets:  []string{"reordered bullets with keywords integrated naturally"},
		})
	}
	projects := make([]types.Project, 0, types.MaxRenderedProjects)
	for i := range min(len(p.Projects), types.MaxRenderedProjects) {
		projects = append(projects, types.Project{
			Title:        fmt.Sprintf("project ranked %d by relevance", i+1),
			Technologies: "updated with job-relevant keywords",
			Bullets:      []string{"existing bullets with integrated keywords"},
		})
	}
	return map[string]any{
		"extractedKeywords": []string{"keyword1", "keyword2", "keyword3"},
		"skills":            skills,
		"workExperience":    work,
		"projects":          projects,
	}
}

// ParseResponse extracts the first balanced JSON object from raw, checks it
// against the payload schema and decodes it.
func ParseResponse(raw string) (*types.OptimizedResumeData, error) {
	span, err := llm.ExtractJSONObject(raw)
	if err != nil {
		return nil, &OptimizationError{Message: "no JSON object in response", Response: excerpt(raw), Cause: err}
	}
	if err := schemas.ValidateDocument(embedded.OptimizedResume, []byte(span)); err != nil {
		msg := "response does not match the expected shape"
		var ve *schemas.ValidationError
		if errors.As(err, &ve) {
			msg = msg + ": " + ve.Summary()
		}
		return nil, &OptimizationError{Message: msg, Response: excerpt(raw), Cause: err}
	}

	var data types.OptimizedResumeData
	if err := json.Unmarshal([]byte(span), &data); err != nil {
		return nil, &OptimizationError{Message: "failed to decode response", Response: excerpt(raw), Cause: err}
	}
	return &data, nil
}

// CheckComplete enforces that nothing present in the profile was dropped:
// every skill category key appears, and experience and projects are not
// emptied out.
func CheckComplete(data *types.OptimizedResumeData, profile *types.ResumeProfile) error {
	var missing []string
	for _, key := range profile.SkillOrder() {
		if _, ok := data.Skills[key]; !ok {
			missing = append(missing, "skills."+key)
		}
	}
	if len(profile.WorkExperience) > 0 && len(data.WorkExperience) == 0 {
		missing = append(missing, "workExperience")
	}
	if len(profile.Projects) > 0 && len(data.Projects) == 0 {
		missing = append(missing, "projects")
	}
	if len(missing) > 0 {
		return &OptimizationError{Message: "response dropped profile sections: " + strings.Join(missing, ", ")}
	}
	return nil
}

// unknownEmployers lists work entries whose company is not in the profile.
func unknownEmployers(data *types.OptimizedResumeData, profile *types.ResumeProfile) []string {
	known := make(map[string]bool, len(profile.WorkExperience))
	for _, w := range profile.WorkExperience {
		known[strings.ToLower(strings.TrimSpace(w.Company))] = true
	}
	var out []string
	for _, w := range data.WorkExperience {
		if !known[strings.ToLower(strings.TrimSpace(w.Company))] {
			out = append(out, w.Title+" @ "+w.Company)
		}
	}
	return out
}

func excerpt(s string) string {
	if len(s) <= responseExcerptLimit {
		return s
	}
	return strings.ToValidUTF8(s[:responseExcerptLimit], "") + "..."
}
