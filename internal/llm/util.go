package llm

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrNoJSONObject is returned when a response contains no complete object.
var ErrNoJSONObject = errors.New("no JSON object found in response")

// CleanJSONBlock removes markdown code block wrappers from JSON responses.
// LLMs often wrap JSON in ```json ... ``` blocks even when instructed not to.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```")
	// Skip a language identifier on the opening fence line
	if idx := strings.Index(text, "\n"); idx >= 0 {
		firstLine := text[:idx]
		if len(firstLine) < 20 && !strings.ContainsAny(firstLine, " {[") {
			text = text[idx+1:]
		}
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// ExtractJSONObject returns the first complete top-level JSON object in
// text, ignoring any prose around it. Braces are matched by depth, and
// braces inside string literals (including escaped quotes) do not count.
func ExtractJSONObject(text string) (string, error) {
	text = CleanJSONBlock(text)

	for start := strings.IndexByte(text, '{'); start >= 0; {
		if end := matchObject(text, start); end > 0 {
			return text[start:end], nil
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", ErrNoJSONObject
}

// matchObject returns the index just past the brace that closes the object
// opened at text[start], or -1 if it is never closed.
func matchObject(text string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}
