package llm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, ProviderGemini, config.Provider)
	assert.Equal(t, "gemini-2.0-flash", config.Model)
	assert.InDelta(t, 0.3, config.Temperature, 0.0001)
	assert.Equal(t, 60*time.Second, config.Timeout)
}

func TestWithModel(t *testing.T) {
	config := DefaultConfig()
	newConfig := config.WithModel("gemini-2.5-pro")

	// Original should be unchanged
	assert.Equal(t, "gemini-2.0-flash", config.Model)
	assert.Equal(t, "gemini-2.5-pro", newConfig.Model)
	assert.Equal(t, config.Temperature, newConfig.Temperature)
}

func TestWithDefaults(t *testing.T) {
	config := (&Config{Temperature: 0.7}).withDefaults()

	assert.Equal(t, ProviderGemini, config.Provider)
	assert.Equal(t, DefaultModel, config.Model)
	assert.Equal(t, DefaultTimeout, config.Timeout)
	assert.InDelta(t, 0.7, config.Temperature, 0.0001)
}
