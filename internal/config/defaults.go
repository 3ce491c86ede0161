package config

import (
	"time"

	"github.com/spf13/viper"
)

// DefaultUserAgent is sent by both extraction engines.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 300*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "gemini-2.0-flash")
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.timeout", 60*time.Second)

	v.SetDefault("extraction.timeout", 10*time.Second)
	v.SetDefault("extraction.use_browser", true)
	v.SetDefault("extraction.user_agent", DefaultUserAgent)
	v.SetDefault("extraction.description_limit", 2000)

	v.SetDefault("compile.binary", "pdflatex")
	v.SetDefault("compile.timeout", 30*time.Second)
	v.SetDefault("compile.passes", 2)
	v.SetDefault("compile.work_root", "")
	v.SetDefault("compile.max_concurrent", 2)

	v.SetDefault("artifacts.dir", "artifacts")
	v.SetDefault("profile.path", "")
	v.SetDefault("database.url", "")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.expiration_hours", 24)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.tailor_per_hour", 20)
	v.SetDefault("rate_limit.burst", 3)
	v.SetDefault("rate_limit.default_per_minute", 120)

	v.SetDefault("log.json", false)
	v.SetDefault("log.level", "info")
}
