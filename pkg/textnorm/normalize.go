package textnorm

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// SmallWords are lower-cased when they appear inside a title segment.
var SmallWords = map[string]struct{}{
	"and": {}, "or": {}, "the": {}, "of": {}, "in": {}, "to": {}, "a": {},
	"an": {}, "for": {}, "on": {}, "at": {}, "by": {}, "with": {},
}

var (
	loneDigitPair  = regexp.MustCompile(`\b(\d)\s+(\d)\b`)
	trailingLetter = regexp.MustCompile(`\s+[A-Za-z]$`)
	segmentDelim   = regexp.MustCompile(`:|—`)
)

// Normalize canonicalizes a raw candidate title. It joins split digit pairs,
// collapses whitespace, keeps at most maxThe occurrences of "the", title-cases
// each colon or em-dash segment and drops dangling single letters at the end.
// Stripping repeats until the title no longer ends in a bare letter, so
// "patrick a b" becomes "Patrick".
// The result for a given input and maxThe is always the same.
func Normalize(raw string, maxThe int) string {
	if raw == "" {
		return ""
	}
	s := loneDigitPair.ReplaceAllString(raw, "${1}${2}")
	s = collapseSpace(s)
	if s == "" {
		return ""
	}
	s = LimitThe(s, maxThe)
	s = TitleCase(s)

	stripped := false
	for {
		loc := trailingLetter.FindStringIndex(s)
		if loc == nil {
			break
		}
		s = s[:loc[0]]
		stripped = true
	}
	if stripped {
		// the word now in last position must follow the last-word rule
		s = TitleCase(s)
	}
	return strings.TrimSpace(s)
}

// LimitThe removes every case-insensitive occurrence of the word "the"
// beyond the first max, keeping all other words in their original order.
func LimitThe(s string, max int) string {
	words := strings.Fields(s)
	out := words[:0]
	count := 0
	for _, w := range words {
		if strings.EqualFold(w, "the") {
			count++
			if count > max {
				continue
			}
		}
		out = append(out, w)
	}
	return strings.Join(out, " ")
}

// TitleCase applies title casing to every segment delimited by a colon or an
// em-dash. Each segment is rebuilt from its words, so the whitespace around a
// delimiter is dropped: "a: b" becomes "A:B".
func TitleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	last := 0
	for _, loc := range segmentDelim.FindAllStringIndex(s, -1) {
		b.WriteString(titleCaseSegment(s[last:loc[0]]))
		b.WriteString(s[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(titleCaseSegment(s[last:]))
	return b.String()
}

func titleCaseSegment(seg string) string {
	words := strings.Fields(seg)
	for i, w := range words {
		lw := strings.ToLower(w)
		if _, small := SmallWords[lw]; small && i != 0 && i != len(words)-1 {
			words[i] = lw
			continue
		}
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

// capitalize upper-cases the first rune and leaves the remainder untouched.
func capitalize(w string) string {
	r, size := utf8.DecodeRuneInString(w)
	if size == 0 || r == utf8.RuneError {
		return w
	}
	return string(unicode.ToUpper(r)) + w[size:]
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
