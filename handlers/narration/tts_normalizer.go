package narration

import (
	"regexp"
	"strings"
)

// normalizeTextForTTS strips what a voice should not read aloud: markdown
// markers, emoji and runs of whitespace.
func normalizeTextForTTS(text string) string {
	// whitespace first, the emoji class below would otherwise glue words
	// separated only by a newline
	text = replaceMultipleSpaces(text)
	text = removeMarkdown(text)
	text = removeEmojis(text)
	text = replaceMultipleSpaces(text)
	return strings.TrimSpace(text)
}

var markdownReplacer = strings.NewReplacer(
	"**", "", // bold
	"__", "", // underline
	"~~", "", // strikethrough
	"*", "", // italic
	"`", "", // inline code
)

func removeMarkdown(text string) string {
	text = markdownReplacer.Replace(text)
	return headingRegex.ReplaceAllString(text, "${1}")
}

func removeEmojis(text string) string {
	return removeEmojiRegex.ReplaceAllString(text, "")
}

func replaceMultipleSpaces(text string) string {
	return multipleSpacesRegex.ReplaceAllString(text, " ")
}

var (
	// Letters, numbers, punctuation, separators and currency survive.
	removeEmojiRegex    = regexp.MustCompile(`[^\p{L}\p{M}\p{N}\p{P}\p{Z}\p{Sc}]`)
	multipleSpacesRegex = regexp.MustCompile(`\s+`)
	headingRegex        = regexp.MustCompile(`(^|\s)#{1,6}\s`)
)
