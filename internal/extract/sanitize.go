package extract

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Sanitize strips an optional leading/trailing markdown code fence (with an
// optional language label) from a model reply. Sanitizing already-clean text
// is a no-op beyond whitespace trimming, so the function is idempotent.
// Embedded content is never altered: only the first and last fence lines are
// removed.
func Sanitize(content string) string {
	trimmed := strings.TrimSpace(content)
	stripped := stripCodeFences(trimmed)
	if stripped == "" {
		return trimmed
	}
	return stripped
}

// ParseJSON parses a model reply into an untyped mapping, with lightweight
// recovery for code fences and surrounding prose.
func ParseJSON(content string) (map[string]any, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, fmt.Errorf("empty model reply")
	}

	candidates := []string{trimmed}
	if stripped := stripCodeFences(trimmed); stripped != "" && stripped != trimmed {
		candidates = append(candidates, stripped)
	}
	if extracted := extractJSONCandidate(trimmed); extracted != "" && extracted != trimmed {
		candidates = append(candidates, extracted)
	}

	seen := make(map[string]struct{}, len(candidates))
	for _, candidate := range candidates {
		if _, ok := seen[candidate]; ok {
			continue
		}
		seen[candidate] = struct{}{}

		var parsed map[string]any
		if err := json.Unmarshal([]byte(candidate), &parsed); err == nil {
			return parsed, nil
		}
	}

	return nil, fmt.Errorf("reply is not parsable as a JSON object")
}

func stripCodeFences(content string) string {
	if !strings.HasPrefix(content, "```") {
		return ""
	}

	lines := strings.Split(content, "\n")
	if len(lines) < 2 {
		return ""
	}

	// Drop first fence line (optionally labelled, e.g. ```json).
	lines = lines[1:]
	// Drop trailing fence if present.
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func extractJSONCandidate(content string) string {
	start := strings.Index(content, "{")
	if start < 0 {
		return ""
	}
	end := strings.LastIndex(content, "}")
	if end < start {
		return ""
	}
	return strings.TrimSpace(content[start : end+1])
}
