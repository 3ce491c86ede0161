package ratelimit

import "net/http"

// EndpointClass groups endpoints that share a limit.
type EndpointClass string

const (
	ClassTailor    EndpointClass = "tailor"
	ClassDefault   EndpointClass = "default"
	ClassUnlimited EndpointClass = "unlimited"
)

// MatchEndpoint classifies a request. Pipeline-triggering POSTs share the
// tailor budget, health checks are never limited.
func MatchEndpoint(method, path string) EndpointClass {
	switch {
	case path == "/health":
		return ClassUnlimited
	case method == http.MethodOptions:
		return ClassUnlimited
	case method == http.MethodPost && (path == "/tailor" || path == "/scrape"):
		return ClassTailor
	default:
		return ClassDefault
	}
}

// ConfigFor returns the limit for class. ok is false for unlimited classes.
func (c Config) ConfigFor(class EndpointClass) (EndpointConfig, bool) {
	switch class {
	case ClassTailor:
		return c.Tailor, true
	case ClassDefault:
		return c.Default, true
	default:
		return EndpointConfig{}, false
	}
}
