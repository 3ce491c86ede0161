package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "json code block",
			input:    "```json\n{\"key\": \"value\"}\n```",
			expected: `{"key": "value"}`,
		},
		{
			name:     "generic code block",
			input:    "```\n{\"key\": \"value\"}\n```",
			expected: `{"key": "value"}`,
		},
		{
			name:     "code block with language",
			input:    "```javascript\n{\"key\": \"value\"}\n```",
			expected: `{"key": "value"}`,
		},
		{
			name:     "plain JSON",
			input:    `  {"key": "value"}  `,
			expected: `{"key": "value"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "prose on both sides",
			input:    "Sure! Here is the result: {\"a\":1} Thanks!",
			expected: `{"a":1}`,
		},
		{
			name:     "nested objects",
			input:    "Output:\n{\"outer\": {\"inner\": \"value\"}}\nDone.",
			expected: `{"outer": {"inner": "value"}}`,
		},
		{
			name:     "braces inside strings",
			input:    `{"bullet": "Used {curly} and } braces", "n": 2} trailing }`,
			expected: `{"bullet": "Used {curly} and } braces", "n": 2}`,
		},
		{
			name:     "escaped quotes inside strings",
			input:    `note {"quote": "she said \"{hi}\"", "ok": true}`,
			expected: `{"quote": "she said \"{hi}\"", "ok": true}`,
		},
		{
			name:     "first object wins",
			input:    `{"first": 1} and {"second": 2}`,
			expected: `{"first": 1}`,
		},
		{
			name:     "markdown fenced",
			input:    "```json\n{\"skills\": {\"languages\": [\"Go\"]}}\n```",
			expected: `{"skills": {"languages": ["Go"]}}`,
		},
		{
			name:     "unclosed leading brace then object",
			input:    `a { stray then {"k": "v"}`,
			expected: `{"k": "v"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSONObject(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestExtractJSONObject_None(t *testing.T) {
	for _, input := range []string{"", "no json here", `{"unterminated": "x"`, `["array", "only"]`} {
		_, err := ExtractJSONObject(input)
		assert.ErrorIs(t, err, ErrNoJSONObject, input)
	}
}
