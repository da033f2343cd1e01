package extract

import (
	"encoding/json"
	"strings"
)

// ExtractJSON parses the span from the first '{' to the last '}' of text as a
// JSON object. It returns nil when there is no such span or it does not parse.
// Several objects or stray braces in prose defeat the heuristic.
func ExtractJSON(text string) map[string]any {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < start {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(text[start:end+1]), &out); err != nil {
		return nil
	}
	return out
}
