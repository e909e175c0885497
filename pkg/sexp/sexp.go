// Package sexp reads a minimal S-expression notation into a tree.
//
// The notation has two kinds of value: atoms and lists. An atom is either a
// bare run of characters containing no whitespace, quote or parenthesis, or a
// double-quoted string literal with backslash escapes. A list is a
// parenthesized, possibly empty sequence of values.
//
// Example:
//
//	(task "build docs" (deps fmt lint) ☺)
//
// Reading happens in two stages. Tokenize scans the input into position
// ranges, and ParseTokens walks those tokens into Sexp values. Parse runs
// both. Every failure is an *Error carrying the byte offset (or byte range)
// in the original input that caused it.
package sexp

import (
	"fmt"
	"strings"
	"unicode"
)

// Sexp is a parsed S-expression: either an Atom or a List.
type Sexp interface {
	// String renders the value for display. Atoms that cannot be written
	// bare are quoted.
	String() string
	isSexp()
}

// Atom is an indivisible piece of text.
type Atom string

// List is an ordered sequence of values. A parsed empty list is non-nil.
type List []Sexp

func (Atom) isSexp() {}
func (List) isSexp() {}

// String returns the atom bare when it would read back as the same bare
// atom, and as an escaped string literal otherwise.
func (a Atom) String() string {
	if isBare(string(a)) {
		return string(a)
	}
	return Quote(string(a))
}

func (l List) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, child := range l {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(child.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// Quote writes s as a string literal using only escapes that Unescape
// accepts.
func Quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&sb, `\u%04x`, r)
			} else {
				sb.WriteRune(r)
			}
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

func isBare(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch classify(r) {
		case classAtom, classBackslash:
		default:
			return false
		}
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}
