package types

// RenderedDocument holds the escaped section fragments and the assembled document.
type RenderedDocument struct {
	SkillsSection     string `json:"skillsSection"`
	ExperienceSection string `json:"experienceSection"`
	ProjectsSection   string `json:"projectsSection"`
	Full              string `json:"full"`
}

// Validation issue types.
const (
	IssueMissingMarker         = "missing_marker"
	IssueUnbalancedBraces      = "unbalanced_braces"
	IssueUnbalancedEnvironment = "unbalanced_environments"
	IssueUnreplacedPlaceholder = "unreplaced_placeholder"
	IssueUnescapedCharacter    = "unescaped_character"
)

// SeverityWarning is the only severity the validator emits; issues are advisory.
const SeverityWarning = "warning"

// ValidationIssue is a single advisory finding about an assembled document.
type ValidationIssue struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Details  string `json:"details"`
}

// CompiledArtifact describes a successfully built document.
type CompiledArtifact struct {
	Path   string            `json:"path"`
	Size   int64             `json:"size"`
	Issues []ValidationIssue `json:"issues,omitempty"`
	// Log holds the build log of the last pass.
	Log string `json:"-"`
}
