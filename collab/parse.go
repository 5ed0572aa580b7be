package collab

import (
	"strings"

	"github.com/tidwall/gjson"
)

// extractJSON pulls the first JSON object out of a model reply. Models often
// wrap the object in prose or a fenced code block; both are stripped. Returns
// "" when no valid object is present.
func extractJSON(text string) string {
	if idx := strings.Index(text, "```"); idx >= 0 {
		rest := text[idx+3:]
		rest = strings.TrimPrefix(rest, "json")
		if end := strings.Index(rest, "```"); end >= 0 {
			text = rest[:end]
		}
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ""
	}
	candidate := text[start : end+1]
	if !gjson.Valid(candidate) {
		return ""
	}
	return candidate
}

// stringSlice converts a gjson array result into []string, skipping empty
// entries.
func stringSlice(res gjson.Result) []string {
	if !res.Exists() {
		return nil
	}
	var out []string
	for _, item := range res.Array() {
		if s := strings.TrimSpace(item.String()); s != "" {
			out = append(out, s)
		}
	}
	return out
}
