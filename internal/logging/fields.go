package logging

// Structured field names shared across packages.
const (
	FieldRunID     = "run_id"
	FieldJobID     = "job_id"
	FieldEngine    = "engine"
	FieldStage     = "stage"
	FieldURL       = "url"
	FieldDuration  = "duration"
	FieldRequestID = "request_id"
	FieldStatus    = "status"
)
