package util

import "strings"

// StripCodeFences removes a surrounding markdown code fence, which
// models sometimes emit even when asked for raw JSON.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
