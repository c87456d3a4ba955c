package runner

import (
	"regexp"
	"strings"
)

// NormalizeForSpeech prepares generated text for the synthesizer: markdown
// markers and emoji confuse speech engines, and newlines turn into long
// awkward pauses.
func NormalizeForSpeech(text string) string {
	text = removeMarkdown(text)
	text = removeEmojiRegex.ReplaceAllString(text, " ")
	text = multipleSpacesRegex.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

func removeMarkdown(text string) string {
	for _, marker := range []string{"**", "__", "~~", "*", "`"} {
		text = strings.ReplaceAll(text, marker, "")
	}
	return text
}

var (
	// Keeps letters, digits, punctuation and separators; drops symbols and emoji.
	removeEmojiRegex    = regexp.MustCompile(`[^\p{L}\p{N}\p{P}\p{Z}]`)
	multipleSpacesRegex = regexp.MustCompile(`\s+`)
)
