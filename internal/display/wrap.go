// Package display renders console text: wrapping, the year timeline and
// small inline charts.
package display

import (
	"unicode/utf8"

	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const DefaultWidth = 80

var upper = cases.Upper(language.Und)

// Wrap word-wraps text to DefaultWidth, preserving ANSI escape sequences.
func Wrap(text string) string {
	return WrapWidth(text, DefaultWidth)
}

// WrapWidth word-wraps text to width. A width below 1 leaves text unchanged.
func WrapWidth(text string, width int) string {
	if width < 1 {
		return text
	}
	return wordwrap.String(text, width)
}

// Capitalize returns s with its first letter uppercased.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return upper.String(string(r)) + s[size:]
}
