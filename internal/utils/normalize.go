package utils

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldTransformer = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Fold lower-cases, trims and strips diacritics so "Descripción" and
// "descripcion" compare equal. Catalog names and model output go through the
// same fold before any comparison.
func Fold(s string) string {
	out, _, err := transform.String(foldTransformer, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

// boundaryBefore reports whether the rune ending at byte offset i (or the
// string start) can delimit a whole-word match. Boundaries are
// non-alphanumeric runes.
func boundaryBefore(s string, i int) bool {
	if i <= 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// boundaryAfter reports whether the rune starting at byte offset i (or the
// string end) can delimit a whole-word match.
func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// ContainsWord reports whether needle occurs in haystack as a whole word,
// comparing folded forms. Both arguments are folded internally.
func ContainsWord(haystack, needle string) bool {
	h := Fold(haystack)
	n := Fold(needle)
	if n == "" {
		return false
	}
	start := 0
	for {
		idx := strings.Index(h[start:], n)
		if idx < 0 {
			return false
		}
		idx += start
		if boundaryBefore(h, idx) && boundaryAfter(h, idx+len(n)) {
			return true
		}
		start = idx + 1
	}
}
