// Package ratelimit provides per-client, per-endpoint request limiting.
package ratelimit

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/jonathan/resume-tailor/internal/config"
)

// EndpointConfig defines the rate limit for one endpoint class.
type EndpointConfig struct {
	// Limit is the sustained request rate.
	Limit rate.Limit
	// Burst is the number of requests allowed at once.
	Burst int
	// Window is the period the limit is advertised over in headers.
	Window time.Duration
	// Requests is the advertised request count per Window.
	Requests int
}

// Config holds the endpoint classes and the cleanup cadence.
type Config struct {
	Tailor  EndpointConfig
	Default EndpointConfig

	// CleanupInterval is how often idle limiters are dropped.
	CleanupInterval time.Duration
	// IdleTTL is how long a limiter may go unused before cleanup drops it.
	IdleTTL time.Duration
}

// Per builds an EndpointConfig allowing requests per window.
func Per(requests int, window time.Duration, burst int) EndpointConfig {
	if burst < 1 {
		burst = 1
	}
	return EndpointConfig{
		Limit:    rate.Limit(float64(requests) / window.Seconds()),
		Burst:    burst,
		Window:   window,
		Requests: requests,
	}
}

// DefaultConfig returns limits suited to a single small deployment.
func DefaultConfig() Config {
	return Config{
		Tailor:          Per(10, time.Hour, 3),
		Default:         Per(60, time.Minute, 20),
		CleanupInterval: 5 * time.Minute,
		IdleTTL:         time.Hour,
	}
}

// FromSettings converts the loaded rate limit section.
func FromSettings(s config.RateLimitConfig) Config {
	cfg := DefaultConfig()
	if s.TailorPerHour > 0 {
		cfg.Tailor = Per(s.TailorPerHour, time.Hour, s.Burst)
	}
	if s.DefaultPerMinute > 0 {
		cfg.Default = Per(s.DefaultPerMinute, time.Minute, s.DefaultPerMinute/3)
	}
	return cfg
}
