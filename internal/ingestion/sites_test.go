package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrategyFor(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.linkedin.com/jobs/view/3791234567", "linkedin"},
		{"https://uk.indeed.com/viewjob?jk=abc123", "indeed"},
		{"https://www.glassdoor.com/job-listing/x?jobListingId=42", "glassdoor"},
		{"https://boards.greenhouse.io/acme/jobs/123", "greenhouse"},
		{"https://jobs.lever.co/acme/0f6c9a2e-1234-4c1d-9e8f-0123456789ab", "lever"},
		{"https://acme.wd5.myworkdayjobs.com/en-US/careers/job/Remote/Engineer_R-1234", "workday"},
		{"https://careers.example.com/openings/7", "generic"},
		{"://not a url", "generic"},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, StrategyFor(tt.url).Name)
		})
	}
}

func TestJobIDFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.linkedin.com/jobs/view/3791234567/?trk=x", "3791234567"},
		{"https://www.linkedin.com/jobs/view/senior-engineer-at-acme-3791234567", "3791234567"},
		{"https://www.indeed.com/viewjob?jk=5f1e2d3c&from=serp", "5f1e2d3c"},
		{"https://boards.greenhouse.io/acme/jobs/4455667", "4455667"},
		{"https://careers.example.com/openings/7", ""},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, jobIDFromURL(tt.url, StrategyFor(tt.url)))
		})
	}
}
