package llm

import "strings"

// SanitizeResponse trims whitespace and strips markdown code fences that
// models emit despite being told not to. It never touches content inside the
// JSON object itself.
func SanitizeResponse(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}

	// Some models prepend a sentence before the object; keep from the first
	// brace through the last.
	if first := strings.IndexByte(s, '{'); first > 0 {
		if last := strings.LastIndexByte(s, '}'); last > first {
			s = s[first : last+1]
		}
	}
	return s
}
