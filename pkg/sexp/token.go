package sexp

import "fmt"

// TokenType identifies the kind of a Token
type TokenType int

const (
	OPEN_PAREN     TokenType = iota // (
	CLOSE_PAREN                     // )
	BARE_ATOM                       // hello
	STRING_LITERAL                  // "hello" (range excludes the quotes)
)

// String returns a string representation of the token type
func (t TokenType) String() string {
	switch t {
	case OPEN_PAREN:
		return "OPEN_PAREN"
	case CLOSE_PAREN:
		return "CLOSE_PAREN"
	case BARE_ATOM:
		return "BARE_ATOM"
	case STRING_LITERAL:
		return "STRING_LITERAL"
	default:
		return fmt.Sprintf("TokenType(%d)", t)
	}
}

// Token is a half-open byte range [Start, End) of the input. Tokens never
// copy text; Text slices it back out of the input they were produced from.
type Token struct {
	Type  TokenType
	Start int
	End   int
}

// Text returns the bytes of input covered by the token
func (t Token) Text(input string) string {
	return input[t.Start:t.End]
}

func (t Token) String() string {
	switch t.Type {
	case OPEN_PAREN, CLOSE_PAREN:
		return fmt.Sprintf("%s(%d)", t.Type, t.Start)
	default:
		return fmt.Sprintf("%s(%d..%d)", t.Type, t.Start, t.End)
	}
}

func openParen(i int) Token  { return Token{Type: OPEN_PAREN, Start: i, End: i + 1} }
func closeParen(i int) Token { return Token{Type: CLOSE_PAREN, Start: i, End: i + 1} }
