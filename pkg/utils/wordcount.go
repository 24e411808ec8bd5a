package utils

import "strings"

// WordCount returns the number of whitespace-separated tokens in text.
// Punctuation-only tokens still count; journal word counts are informational.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// Excerpt returns the first limit runes of text, with an ellipsis when
// truncated, for journal entry previews.
func Excerpt(text string, limit int) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return strings.TrimSpace(string(runes[:limit])) + "..."
}
