package sexp

import "unicode"

// charClass is the tokenizer's view of a single rune
type charClass uint8

const (
	classWhitespace charClass = iota
	classQuote
	classBackslash
	classOpen
	classClose
	classAtom
	numClasses
)

func classify(r rune) charClass {
	switch r {
	case '"':
		return classQuote
	case '\\':
		return classBackslash
	case '(':
		return classOpen
	case ')':
		return classClose
	}
	if unicode.IsSpace(r) {
		return classWhitespace
	}
	return classAtom
}

// lexMode is the automaton's current mode. stateEscaped is InString with
// the escaped flag set.
type lexMode uint8

const (
	stateBoring lexMode = iota
	stateBareAtom
	stateString
	stateEscaped
	numModes
)

// action is what the automaton does on a (mode, class) pair
type action uint8

const (
	actStay        action = iota // keep mode, consume the rune
	actBeginAtom                 // start a bare atom here
	actEndAtom                   // emit the bare atom, then reprocess the rune from stateBoring
	actBeginString               // start a string literal at the quote
	actEndString                 // emit the literal body, excluding quotes
	actEscape                    // the next rune is taken literally
	actEscaped                   // the escaped rune was consumed
	actOpen                      // emit OPEN_PAREN
	actClose                     // emit CLOSE_PAREN
)

var transitions = [numModes][numClasses]action{
	stateBoring: {
		classWhitespace: actStay,
		classQuote:      actBeginString,
		classBackslash:  actBeginAtom,
		classOpen:       actOpen,
		classClose:      actClose,
		classAtom:       actBeginAtom,
	},
	stateBareAtom: {
		classWhitespace: actEndAtom,
		classQuote:      actEndAtom,
		classBackslash:  actStay,
		classOpen:       actEndAtom,
		classClose:      actEndAtom,
		classAtom:       actStay,
	},
	stateString: {
		classWhitespace: actStay,
		classQuote:      actEndString,
		classBackslash:  actEscape,
		classOpen:       actStay,
		classClose:      actStay,
		classAtom:       actStay,
	},
	stateEscaped: {
		classWhitespace: actEscaped,
		classQuote:      actEscaped,
		classBackslash:  actEscaped,
		classOpen:       actEscaped,
		classClose:      actEscaped,
		classAtom:       actEscaped,
	},
}

// lexState is the full automaton state. start is the offset where the
// current bare atom or opening quote began.
type lexState struct {
	mode  lexMode
	start int
}

// transition feeds the rune r at byte offset i to state s. It returns the
// next state, the token to emit (if emit is set), and whether r has to be
// fed again to the next state.
func transition(s lexState, i int, r rune) (next lexState, tok Token, emit bool, again bool) {
	switch transitions[s.mode][classify(r)] {
	case actBeginAtom:
		return lexState{mode: stateBareAtom, start: i}, Token{}, false, false
	case actEndAtom:
		return lexState{mode: stateBoring}, Token{Type: BARE_ATOM, Start: s.start, End: i}, true, true
	case actBeginString:
		return lexState{mode: stateString, start: i}, Token{}, false, false
	case actEndString:
		return lexState{mode: stateBoring}, Token{Type: STRING_LITERAL, Start: s.start + 1, End: i}, true, false
	case actEscape:
		return lexState{mode: stateEscaped, start: s.start}, Token{}, false, false
	case actEscaped:
		return lexState{mode: stateString, start: s.start}, Token{}, false, false
	case actOpen:
		return s, openParen(i), true, false
	case actClose:
		return s, closeParen(i), true, false
	default:
		return s, Token{}, false, false
	}
}

// Tokenize scans input into tokens. The only possible failure is an
// UnclosedString error pointing at the opening quote.
func Tokenize(input string) ([]Token, error) {
	var tokens []Token
	s := lexState{mode: stateBoring}

	for i, r := range input {
		for {
			next, tok, emit, again := transition(s, i, r)
			if emit {
				tokens = append(tokens, tok)
			}
			s = next
			if !again {
				break
			}
		}
	}

	switch s.mode {
	case stateBareAtom:
		tokens = append(tokens, Token{Type: BARE_ATOM, Start: s.start, End: len(input)})
	case stateString, stateEscaped:
		return nil, newPointError(UnclosedString, s.start)
	}
	return tokens, nil
}
