package sexp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
)

// ErrorKind is the closed set of reader failures.
type ErrorKind string

const (
	UnclosedParen   ErrorKind = "unclosed-paren"    // open paren never matched
	ExtraCloseParen ErrorKind = "extra-close-paren" // close paren with no open
	UnclosedString  ErrorKind = "unclosed-string"   // opening quote never closed
	UnknownEscape   ErrorKind = "unknown-escape"    // literal body has an unsupported escape
)

// Error is a positioned reader failure. Start and End are byte offsets into
// the original input. For parens and quotes the range covers that single
// byte; for UnknownEscape it is the whole literal body, quotes excluded.
type Error struct {
	Kind  ErrorKind
	Start int
	End   int
}

func newPointError(kind ErrorKind, offset int) *Error {
	return &Error{Kind: kind, Start: offset, End: offset + 1}
}

func newRangeError(kind ErrorKind, start, end int) *Error {
	return &Error{Kind: kind, Start: start, End: end}
}

// errorDef defines an error in the catalog.
type errorDef struct {
	Code     string
	Template string   // Message template with {{.placeholders}}
	Hints    []string // Hint templates
}

var errorCatalog = map[ErrorKind]errorDef{
	UnclosedParen: {
		Code:     "SEXP-0001",
		Template: "unclosed paren at byte {{.Start}}",
		Hints:    []string{"add a matching ')'"},
	},
	ExtraCloseParen: {
		Code:     "SEXP-0002",
		Template: "unexpected ')' at byte {{.Start}}",
		Hints:    []string{"remove it, or add a matching '(' before it"},
	},
	UnclosedString: {
		Code:     "SEXP-0003",
		Template: "unterminated string starting at byte {{.Start}}",
		Hints:    []string{`close the string with '"'`},
	},
	UnknownEscape: {
		Code:     "SEXP-0004",
		Template: "unsupported escape in string at bytes {{.Start}}..{{.End}}",
		Hints:    []string{`supported escapes: \n \t \r \b \f \\ \" \' \uXXXX`},
	},
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message()
}

// Offset returns the byte offset the error points at.
func (e *Error) Offset() int {
	return e.Start
}

// Code returns the catalog code, e.g. "SEXP-0001".
func (e *Error) Code() string {
	return errorCatalog[e.Kind].Code
}

// Message returns the human-readable message.
func (e *Error) Message() string {
	def, ok := errorCatalog[e.Kind]
	if !ok {
		return fmt.Sprintf("%s at bytes %d..%d", e.Kind, e.Start, e.End)
	}
	return renderTemplate(def.Template, e.templateData())
}

// Hints returns suggestions for fixing the input.
func (e *Error) Hints() []string {
	var hints []string
	for _, tmpl := range errorCatalog[e.Kind].Hints {
		if rendered := renderTemplate(tmpl, e.templateData()); rendered != "" {
			hints = append(hints, rendered)
		}
	}
	return hints
}

// PrettyString returns a multi-line form for terminals.
func (e *Error) PrettyString() string {
	var sb strings.Builder
	sb.WriteString("Syntax error")
	if code := e.Code(); code != "" {
		sb.WriteString(" [")
		sb.WriteString(code)
		sb.WriteString("]")
	}
	sb.WriteString(":\n  ")
	sb.WriteString(e.Message())
	for _, hint := range e.Hints() {
		sb.WriteString("\n  hint: ")
		sb.WriteString(hint)
	}
	return sb.String()
}

// jsonError is the wire form of an Error.
type jsonError struct {
	Code    string    `json:"code"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Start   int       `json:"start"`
	End     int       `json:"end"`
	Hints   []string  `json:"hints,omitempty"`
}

// ToJSON returns the error as JSON bytes.
func (e *Error) ToJSON() ([]byte, error) {
	return json.Marshal(jsonError{
		Code:    e.Code(),
		Kind:    e.Kind,
		Message: e.Message(),
		Start:   e.Start,
		End:     e.End,
		Hints:   e.Hints(),
	})
}

func (e *Error) templateData() map[string]any {
	return map[string]any{"Start": e.Start, "End": e.End}
}

// renderTemplate renders a Go template with the given data.
func renderTemplate(tmplStr string, data map[string]any) string {
	tmpl, err := template.New("").Parse(tmplStr)
	if err != nil {
		return tmplStr
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return tmplStr
	}

	return buf.String()
}
