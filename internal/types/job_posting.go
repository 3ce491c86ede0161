// Package types provides type definitions for structured data used throughout the resume-tailor system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Sentinel values substituted when extraction cannot determine a field.
const (
	TitleNotFound       = "Job Title Not Found"
	CompanyNotFound     = "Company Not Found"
	DescriptionNotFound = "Job description not found"
)

// Engine names recorded on a JobPosting.
const (
	EngineBrowser = "browser"
	EngineHTML    = "html"
	EngineNone    = "none"
	EngineText    = "text"
)

// JobPosting is the normalized record handed to the optimizer. It is not
// mutated after the ingestion stage returns it.
type JobPosting struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	JobID       string `json:"jobId"`
	Description string `json:"description"`
	SourceURL   string `json:"sourceUrl,omitempty"`
	// Fingerprint is a stable digest of the normalized description. Unlike
	// JobID it is identical across repeated extractions of the same posting.
	Fingerprint string `json:"fingerprint,omitempty"`
	Engine      string `json:"engine,omitempty"`
}

// HasDescription reports whether extraction found a real description.
func (p *JobPosting) HasDescription() bool {
	return p.Description != "" && p.Description != DescriptionNotFound
}
