// Package config loads runtime configuration from defaults, an optional
// config file and the environment.
package config

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. RESUME_TAILOR_SERVER_PORT.
const EnvPrefix = "RESUME_TAILOR"

// Config is the complete runtime configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Extraction ExtractionConfig `mapstructure:"extraction"`
	Compile    CompileConfig    `mapstructure:"compile"`
	Artifacts  ArtifactsConfig  `mapstructure:"artifacts"`
	Profile    ProfileConfig    `mapstructure:"profile"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Auth       AuthConfig       `mapstructure:"auth"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Log        LogConfig        `mapstructure:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// LLMConfig configures the language model collaborator.
type LLMConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model" validate:"required"`
	Temperature float32       `mapstructure:"temperature" validate:"gte=0,lte=2"`
	Timeout     time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// ExtractionConfig configures the job posting extraction engines.
type ExtractionConfig struct {
	Timeout          time.Duration `mapstructure:"timeout" validate:"gt=0"`
	UseBrowser       bool          `mapstructure:"use_browser"`
	UserAgent        string        `mapstructure:"user_agent" validate:"required"`
	DescriptionLimit int           `mapstructure:"description_limit" validate:"min=100"`
}

// CompileConfig configures the typesetting toolchain.
type CompileConfig struct {
	Binary        string        `mapstructure:"binary" validate:"required"`
	Timeout       time.Duration `mapstructure:"timeout" validate:"gt=0"`
	Passes        int           `mapstructure:"passes" validate:"min=1,max=5"`
	WorkRoot      string        `mapstructure:"work_root"`
	MaxConcurrent int           `mapstructure:"max_concurrent" validate:"min=1"`
}

// ArtifactsConfig configures where finished documents are kept.
type ArtifactsConfig struct {
	Dir string `mapstructure:"dir" validate:"required"`
}

// ProfileConfig points at the baseline resume profile. Empty uses the built-in one.
type ProfileConfig struct {
	Path string `mapstructure:"path"`
}

// DatabaseConfig configures the run history store. Empty disables history.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// AuthConfig configures bearer-token auth. An empty secret disables auth.
type AuthConfig struct {
	JWTSecret       string `mapstructure:"jwt_secret"`
	ExpirationHours int    `mapstructure:"expiration_hours" validate:"min=1"`
}

// RateLimitConfig configures per-client request limits.
type RateLimitConfig struct {
	Enabled          bool `mapstructure:"enabled"`
	TailorPerHour    int  `mapstructure:"tailor_per_hour" validate:"min=1"`
	Burst            int  `mapstructure:"burst" validate:"min=1"`
	DefaultPerMinute int  `mapstructure:"default_per_minute" validate:"min=1"`
}

// LogConfig configures logging output.
type LogConfig struct {
	JSON  bool   `mapstructure:"json"`
	Level string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load builds a Config. path may be empty, in which case only defaults and
// the environment are consulted.
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	bindEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	return nil
}

// AuthEnabled reports whether API requests need a bearer token.
func (c *Config) AuthEnabled() bool {
	return c.Auth.JWTSecret != ""
}

// compileSlotWait is headroom for a run queued behind other compilations.
const compileSlotWait = time.Minute

// TailorBudget is the worst-case duration of one tailoring run: both
// extraction engines, the LLM call, every compile pass and a slot wait.
func (c *Config) TailorBudget() time.Duration {
	return 2*c.Extraction.Timeout +
		c.LLM.Timeout +
		time.Duration(c.Compile.Passes)*c.Compile.Timeout +
		compileSlotWait
}

func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Conventional unprefixed names used by deployment platforms.
	_ = v.BindEnv("llm.api_key", EnvPrefix+"_LLM_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("database.url", EnvPrefix+"_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("auth.jwt_secret", EnvPrefix+"_AUTH_JWT_SECRET", "JWT_SECRET")
	_ = v.BindEnv("auth.expiration_hours", EnvPrefix+"_AUTH_EXPIRATION_HOURS", "JWT_EXPIRATION_HOURS")
	_ = v.BindEnv("server.port", EnvPrefix+"_SERVER_PORT", "PORT")
}
