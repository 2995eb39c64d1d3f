package textutils

import (
	"regexp"
	"strings"
)

var (
	prepositionPattern  = regexp.MustCompile(`(?i)\b(?:on|for|at|to)\s+([a-z ]{1,30})`)
	relativeDatePattern = regexp.MustCompile(`(?i)\b(?:yesterday|today|tomorrow|\d{4}-\d{2}-\d{2})\b`)
	nonLetterPattern    = regexp.MustCompile(`[^A-Za-z ]+`)
	spacesPattern       = regexp.MustCompile(`\s+`)
	wordPattern         = regexp.MustCompile(`[A-Za-z]+`)
)

// stopWords are never chosen as a fallback term.
var stopWords = map[string]struct{}{
	"spent": {}, "rs": {}, "inr": {}, "on": {}, "for": {}, "at": {}, "to": {},
	"the": {}, "a": {}, "an": {}, "and": {}, "of": {}, "in": {},
}

// ExtractTerm derives the normalized subject or merchant of a free-text expense.
// The text after the first on/for/at/to wins; otherwise the last word that is
// not a stop word is used. Returns "" when nothing qualifies.
func ExtractTerm(text string) string {
	if m := prepositionPattern.FindStringSubmatch(text); len(m) > 1 {
		capture := m[1]
		if loc := relativeDatePattern.FindStringIndex(capture); loc != nil {
			capture = capture[:loc[0]]
		}
		if term := NormalizeTerm(capture); term != "" {
			return term
		}
	}

	words := wordPattern.FindAllString(text, -1)
	for i := len(words) - 1; i >= 0; i-- {
		w := strings.ToLower(words[i])
		if _, stop := stopWords[w]; !stop {
			return w
		}
	}
	return ""
}

// NormalizeTerm lowercases s, drops everything except letters and spaces,
// collapses whitespace and trims. Stores apply it before every insert so
// case-variants of a term never accumulate.
func NormalizeTerm(s string) string {
	s = nonLetterPattern.ReplaceAllString(s, "")
	s = spacesPattern.ReplaceAllString(s, " ")
	return strings.ToLower(strings.TrimSpace(s))
}
