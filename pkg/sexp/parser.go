package sexp

// frame is one open paren awaiting its close. outer holds the forms the
// enclosing level had collected before the paren was opened.
type frame struct {
	open  int
	outer []Sexp
}

// Parser turns a token sequence into Sexp values. Nesting is tracked on an
// explicit stack of frames, so deeply nested input costs heap rather than
// goroutine stack.
type Parser struct {
	input   string
	tokens  []Token
	pos     int     // index of the next token
	stack   []frame // one frame per unclosed open paren
	current []Sexp  // forms collected at the innermost open level
}

// NewParser creates a parser over tokens produced by Tokenize(input)
func NewParser(input string, tokens []Token) *Parser {
	return &Parser{input: input, tokens: tokens}
}

// Parse consumes all tokens and returns the top-level forms. Errors are
// reported in input order and the first one wins; no partial tree is
// returned.
func (p *Parser) Parse() ([]Sexp, error) {
	p.pos = 0
	p.stack = p.stack[:0]
	p.current = []Sexp{}

	for p.pos < len(p.tokens) {
		if err := p.step(p.tokens[p.pos]); err != nil {
			return nil, err
		}
		p.pos++
	}

	// The innermost paren still open is the one whose own children ran
	// into end of input.
	if n := len(p.stack); n > 0 {
		return nil, newPointError(UnclosedParen, p.stack[n-1].open)
	}

	forms := p.current
	p.current = nil
	return forms, nil
}

// step applies a single token
func (p *Parser) step(tok Token) error {
	switch tok.Type {
	case OPEN_PAREN:
		p.stack = append(p.stack, frame{open: tok.Start, outer: p.current})
		p.current = []Sexp{}

	case CLOSE_PAREN:
		n := len(p.stack)
		if n == 0 {
			return newPointError(ExtraCloseParen, tok.Start)
		}
		f := p.stack[n-1]
		p.stack = p.stack[:n-1]
		p.current = append(f.outer, List(p.current))

	case BARE_ATOM:
		p.current = append(p.current, Atom(tok.Text(p.input)))

	case STRING_LITERAL:
		s, ok := Unescape(tok.Text(p.input))
		if !ok {
			return newRangeError(UnknownEscape, tok.Start, tok.End)
		}
		p.current = append(p.current, Atom(s))
	}
	return nil
}

// Depth returns the number of parens currently open. It is only meaningful
// while a parse is in progress or after one failed.
func (p *Parser) Depth() int {
	return len(p.stack)
}

// ParseTokens parses tokens produced by Tokenize(input)
func ParseTokens(input string, tokens []Token) ([]Sexp, error) {
	return NewParser(input, tokens).Parse()
}

// Parse reads every top-level form in input.
func Parse(input string) ([]Sexp, error) {
	tokens, err := Tokenize(input)
	if err != nil {
		return nil, err
	}
	return ParseTokens(input, tokens)
}

// MustParse parses input and panics on error. Useful for tests and
// initialization.
func MustParse(input string) []Sexp {
	forms, err := Parse(input)
	if err != nil {
		panic("sexp.MustParse: " + err.Error())
	}
	return forms
}
