package llm

import (
	"errors"
	"strings"
)

// ErrNoJSONObject is returned when model output contains no JSON object.
var ErrNoJSONObject = errors.New("no JSON object in model output")

// ExtractJSONObject pulls the outermost JSON object out of raw model text.
// Markdown code fences and prose around the object are dropped.
func ExtractJSONObject(text string) ([]byte, error) {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return nil, ErrNoJSONObject
	}
	return []byte(s[start : end+1]), nil
}
