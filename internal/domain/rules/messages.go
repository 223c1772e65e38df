package rules

import "strings"

const MaxMessageLength = 1000

// NormalizeMessageContent trims the content and reports whether the result
// is sendable: non-empty and within the length bound.
func NormalizeMessageContent(content string) (string, bool) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" || len([]rune(trimmed)) > MaxMessageLength {
		return "", false
	}
	return trimmed, true
}
