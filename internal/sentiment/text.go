package sentiment

import (
	"regexp"
	"strings"

	"github.com/russross/blackfriday/v2"
)

var (
	linkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern  = regexp.MustCompile(`https?://\S+|www\.\S+`)
)

func RemoveLinks(input string) string {
	input = linkPattern.ReplaceAllString(input, "$1") // Keep only the text
	input = urlPattern.ReplaceAllString(input, "")

	return input
}

// ConvertMarkdownToText flattens markdown-formatted comment text into plain
// text suitable for lexicon scoring.
func ConvertMarkdownToText(input string) string {
	output := blackfriday.Run([]byte(input), blackfriday.WithNoExtensions())
	plainText := strings.Join(strings.Fields(string(output)), " ")

	return RemoveLinks(plainText)
}

// TruncateTokens caps text at maxTokens whitespace tokens. Truncation is the
// defined behavior for over-long inputs, mirroring the scoring model's fixed
// input length.
func TruncateTokens(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return text
	}
	fields := strings.Fields(text)
	if len(fields) <= maxTokens {
		return text
	}
	return strings.Join(fields[:maxTokens], " ")
}
