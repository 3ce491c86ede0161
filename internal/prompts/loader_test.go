package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get(Tailoring, KeyOptimizeResume)
	require.NoError(t, err)
	assert.Contains(t, prompt, "ATS resume optimizer")
	assert.Contains(t, prompt, "{{.JobDescription}}")
	assert.Contains(t, prompt, "Return ONLY valid JSON")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get(Tailoring, "nonexistent-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() { MustGet("nonexistent.json", "some-key") })
	assert.NotPanics(t, func() { assert.NotEmpty(t, MustGet(Tailoring, KeyOptimizeResume)) })
}

func TestFormat(t *testing.T) {
	template := "Hello {{.Name}}, welcome to {{.Company}}! {{.Missing}}"
	result := Format(template, map[string]string{
		"Name":    "Alice",
		"Company": "Acme Corp",
	})
	assert.Equal(t, "Hello Alice, welcome to Acme Corp! {{.Missing}}", result)
}

func TestFormat_ValuesAreNotRescanned(t *testing.T) {
	result := Format("{{.A}} and {{.B}}", map[string]string{
		"A": "{{.B}}",
		"B": "bee",
	})
	assert.Equal(t, "{{.B}} and bee", result)
}

func TestRender(t *testing.T) {
	ClearCache()

	out, err := Render(Tailoring, KeyOptimizeResume, map[string]string{"JobDescription": "Go developer wanted"})
	require.NoError(t, err)
	assert.Contains(t, out, "Go developer wanted")
	assert.NotContains(t, out, "{{.JobDescription}}")
}

func TestList(t *testing.T) {
	ClearCache()

	keys, err := List(Tailoring)
	require.NoError(t, err)
	assert.Equal(t, []string{KeyOptimizeResume}, keys)
}
