package llm

import (
	"encoding/json"
	"strings"
)

// CleanJSONBlock removes markdown code fence wrappers from a model response.
// Models often wrap JSON in ```json ... ``` blocks even when instructed not
// to.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// Skip a language identifier on the first line.
		if idx := strings.Index(text, "\n"); idx >= 0 {
			firstLine := text[:idx]
			if len(firstLine) < 20 && !strings.Contains(firstLine, " ") && !strings.Contains(firstLine, "{") {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	return text
}

// ExtractJSON pulls the JSON payload out of a model response that may be raw
// JSON, fenced JSON, or JSON surrounded by commentary. When no valid object
// or array can be isolated the cleaned text is returned as-is and the
// caller's json.Unmarshal reports the failure.
func ExtractJSON(text string) string {
	s := CleanJSONBlock(text)
	if json.Valid([]byte(s)) {
		return s
	}
	for _, pair := range [][2]string{{"{", "}"}, {"[", "]"}} {
		i := strings.Index(s, pair[0])
		j := strings.LastIndex(s, pair[1])
		if i >= 0 && j > i {
			if inner := s[i : j+1]; json.Valid([]byte(inner)) {
				return inner
			}
		}
	}
	return s
}
