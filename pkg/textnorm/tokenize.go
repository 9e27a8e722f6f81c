package textnorm

import (
	"regexp"
	"strings"
	"unicode"
)

// allowedPunctuation lists the non-alphanumeric characters that survive tokenization.
const allowedPunctuation = `:&?!'"()-`

var curlyQuotes = strings.NewReplacer("“", "'", "”", "'", "‘", "'", "’", "'")

var (
	spaceBeforeClose = regexp.MustCompile(`\s+([:;,.!?])`)
	spaceBeforeQuote = regexp.MustCompile(`\s+"`)
	spaceAfterQuote  = regexp.MustCompile(`"\s+`)
	spacedEmDash     = regexp.MustCompile(`\s+—\s+`)
	spacedHyphen     = regexp.MustCompile(`\s+-\s+`)
)

func isTokenRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case unicode.IsSpace(r):
		return true
	}
	return strings.ContainsRune(allowedPunctuation, r)
}

// Tokenize splits a title into word and punctuation tokens. Curly quotes are
// folded to an apostrophe and every character outside the allow-list is
// treated as whitespace.
func Tokenize(text string) []string {
	text = curlyQuotes.Replace(text)
	cleaned := strings.Map(func(r rune) rune {
		if isTokenRune(r) {
			return r
		}
		return ' '
	}, text)
	return strings.Fields(cleaned)
}

// Detokenize joins tokens back into display text, attaching closing
// punctuation to the preceding word and normalizing the spacing around
// quotes and dashes.
func Detokenize(tokens []string) string {
	if len(tokens) == 0 {
		return ""
	}
	s := strings.Join(tokens, " ")
	s = spaceBeforeClose.ReplaceAllString(s, "$1")
	s = spaceBeforeQuote.ReplaceAllString(s, ` "`)
	s = spaceAfterQuote.ReplaceAllString(s, `" `)
	s = spacedEmDash.ReplaceAllString(s, " — ")
	s = spacedHyphen.ReplaceAllString(s, " - ")
	return strings.TrimSpace(s)
}
