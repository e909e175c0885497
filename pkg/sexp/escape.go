package sexp

import (
	"strings"
	"unicode/utf8"
)

// Unescape resolves the backslash escapes in the body of a string literal.
// It reports false if the body contains any escape outside the supported
// set:
//
//	\n \t \r \b \f \\ \" \'   single characters
//	\uXXXX                    exactly four hex digits, not a surrogate
//
// Failure does not say which escape was at fault.
func Unescape(body string) (string, bool) {
	if strings.IndexByte(body, '\\') < 0 {
		return body, true
	}

	var sb strings.Builder
	sb.Grow(len(body))

	for i := 0; i < len(body); i++ {
		ch := body[i]
		if ch != '\\' {
			sb.WriteByte(ch)
			continue
		}

		i++
		if i >= len(body) {
			return "", false
		}
		switch body[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case '\\':
			sb.WriteByte('\\')
		case '"':
			sb.WriteByte('"')
		case '\'':
			sb.WriteByte('\'')
		case 'u':
			if i+5 > len(body) {
				return "", false
			}
			r, ok := parseHexRune(body[i+1 : i+5])
			if !ok || !utf8.ValidRune(r) {
				return "", false
			}
			sb.WriteRune(r)
			i += 4
		default:
			return "", false
		}
	}

	return sb.String(), true
}

// parseHexRune parses a 4-character hex string into a rune
func parseHexRune(hex string) (rune, bool) {
	var r rune
	for i := 0; i < len(hex); i++ {
		c := hex[i]
		r <<= 4
		switch {
		case c >= '0' && c <= '9':
			r |= rune(c - '0')
		case c >= 'a' && c <= 'f':
			r |= rune(c - 'a' + 10)
		case c >= 'A' && c <= 'F':
			r |= rune(c - 'A' + 10)
		default:
			return 0, false
		}
	}
	return r, true
}
