package config

import (
	"time"

	"github.com/cockroachdb/errors"
)

// JWTConfig holds configuration for JWT token generation and validation.
type JWTConfig struct {
	Secret          string
	ExpirationHours int
}

// NewJWTConfig derives the token settings from the auth section.
func NewJWTConfig(auth AuthConfig) (*JWTConfig, error) {
	cfg := &JWTConfig{
		Secret:          auth.JWTSecret,
		ExpirationHours: auth.ExpirationHours,
	}
	if cfg.Secret == "" {
		return nil, errors.WithHint(
			errors.New("JWT secret is required but not set"),
			"set JWT_SECRET or auth.jwt_secret",
		)
	}
	if cfg.ExpirationHours < 1 {
		return nil, errors.Newf("token expiration must be at least 1 hour, got: %d", cfg.ExpirationHours)
	}
	return cfg, nil
}

// Expiration returns the token lifetime.
func (c *JWTConfig) Expiration() time.Duration {
	return time.Duration(c.ExpirationHours) * time.Hour
}
