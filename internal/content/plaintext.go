package content

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultExcerptLen is the excerpt length used by listings.
const DefaultExcerptLen = 80

// Ellipsis terminates truncated excerpts.
const Ellipsis = "…"

var (
	// tagRegex matches a complete tag. An unclosed "<b" never matches and
	// is left in the text.
	tagRegex = regexp.MustCompile(`<[^>]*>`)

	// whitespaceRegex matches runs of ASCII and Unicode space separators.
	whitespaceRegex = regexp.MustCompile(`[\s\p{Zs}]+`)

	nbspReplacer = strings.NewReplacer(
		"&nbsp;", " ",
		"&#160;", " ",
		"&#xa0;", " ",
		"&#xA0;", " ",
		"&#XA0;", " ",
		"\u00a0", " ",
	)
)

// StripToPlainText removes markup from html and normalizes whitespace:
// 1. Replace every tag with a space
// 2. Decode non-breaking spaces
// 3. Collapse whitespace runs to a single space and trim
func StripToPlainText(html string) string {
	if html == "" {
		return ""
	}
	text := tagRegex.ReplaceAllString(html, " ")
	text = nbspReplacer.Replace(text)
	text = whitespaceRegex.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// CountWords returns the number of whitespace-delimited words in html's plain text.
func CountWords(html string) int {
	return len(strings.Fields(StripToPlainText(html)))
}

// Excerpt returns the first maxLen characters (runes) of html's plain text.
// Truncated excerpts end with a single ellipsis character.
// maxLen <= 0 means DefaultExcerptLen.
func Excerpt(html string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultExcerptLen
	}
	text := StripToPlainText(html)
	if utf8.RuneCountInString(text) <= maxLen {
		return text
	}
	return string([]rune(text)[:maxLen]) + Ellipsis
}
