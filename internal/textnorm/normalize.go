// Package textnorm canonicalizes label and form text for comparison.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	rePunct = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	reSpace = regexp.MustCompile(`\s+`)
)

// fold applies NFKC so ligatures and full-width digits compare as their ASCII forms.
func fold(s string) string {
	return norm.NFKC.String(s)
}

func collapse(s string) string {
	return strings.TrimSpace(reSpace.ReplaceAllString(s, " "))
}

// Loose lowercases, strips punctuation and collapses whitespace.
// Used for brand, designation and address matching.
func Loose(s string) string {
	if s == "" {
		return s
	}
	s = strings.ToLower(fold(s))
	return collapse(rePunct.ReplaceAllString(s, ""))
}

// Strict is Loose but keeps '.' and '%', plus '/' and ',' between two digits,
// so "12.5%", "1/2 fl oz" and "1,75 l" survive numeric extraction.
func Strict(s string) string {
	if s == "" {
		return s
	}
	s = strings.ToLower(fold(s))
	return collapse(stripStrict(s))
}

func stripStrict(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s))
	for i, r := range runes {
		switch {
		case r == '/' || r == ',':
			if i > 0 && i < len(runes)-1 && unicode.IsDigit(runes[i-1]) && unicode.IsDigit(runes[i+1]) {
				b.WriteRune(r)
			}
		case r == '.' || r == '%' || unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r):
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Warning uppercases and collapses whitespace only.
func Warning(s string) string {
	if s == "" {
		return s
	}
	return collapse(strings.ToUpper(fold(s)))
}

// Tokens splits the loose form of s on whitespace.
func Tokens(s string) []string {
	return strings.Fields(Loose(s))
}

// ContainsPhrase reports whether phrase occurs in the loose text on token boundaries.
// Both arguments must already be loose-normalized.
func ContainsPhrase(loose, phrase string) bool {
	if phrase == "" {
		return false
	}
	return strings.Contains(" "+loose+" ", " "+phrase+" ")
}

// Truncate cuts s to at most n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n == 1 {
		return string(runes[:1])
	}
	return string(runes[:n-1]) + "…"
}
