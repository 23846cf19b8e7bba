package keyboard

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	minWordLength = 2
	maxWordLength = 30
)

// forbiddenSymbols are characters that suggest the "word" is code, markup, or
// a URL fragment rather than prose. Their presence disqualifies the word.
const forbiddenSymbols = "<>{}[]\\|`~"

// IgnoreChecker reports whether a word is on the user's ignore list.
// The cached store satisfies this.
type IgnoreChecker interface {
	IsIgnored(word string) bool
}

// Filter decides whether a completed word is eligible for correction.
// It is a pure predicate over the word and the current ignore list — no
// state, no side effects.
type Filter struct {
	ignored IgnoreChecker
}

// NewFilter creates a filter. ignored may be nil, in which case the
// ignore-list check is skipped.
func NewFilter(ignored IgnoreChecker) *Filter {
	return &Filter{ignored: ignored}
}

// ShouldProcess reports whether word should enter the correction cascade.
// Rejected: too short, too long, all digits, containing forbidden symbols,
// or present in the ignore list.
func (f *Filter) ShouldProcess(word string) bool {
	n := utf8.RuneCountInString(word)
	if n < minWordLength || n > maxWordLength {
		return false
	}
	if allDigits(word) {
		return false
	}
	if strings.ContainsAny(word, forbiddenSymbols) {
		return false
	}
	if f.ignored != nil && f.ignored.IsIgnored(word) {
		return false
	}
	return true
}

// allDigits reports whether every rune in s is a decimal digit.
func allDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}
