package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/peterh/liner"

	"github.com/ianthehenry/rundown/pkg/sexp"
)

const PROMPT = "sexp> "
const CONTINUATION_PROMPT = "  ... "

// replState is everything the REPL remembers between inputs
type replState struct {
	atoms      map[string]bool // atoms seen so far, offered as completions
	showTokens bool
}

func newReplState() *replState {
	return &replState{atoms: make(map[string]bool)}
}

// startREPL runs an interactive reader with line editing, history, and tab
// completion of atoms seen earlier in the session
func startREPL(out io.Writer, getenv func(string) string) error {
	line := liner.NewLiner()
	defer line.Close()

	// Enable Ctrl+C to abort current line
	line.SetCtrlCAborts(true)

	state := newReplState()
	line.SetCompleter(state.complete)

	historyFile := getenv("RUNDOWN_HISTORY")
	if historyFile == "" {
		historyFile = filepath.Join(os.TempDir(), ".rundown_sexp_history")
	}
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}

	// Save history on exit
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Fprintf(out, "rundown sexp reader v%s\n", Version)
	fmt.Fprintln(out, "Type 'exit' or Ctrl+D to quit, ':help' for commands")
	fmt.Fprintln(out, "")

	var inputBuffer strings.Builder

	for {
		currentPrompt := PROMPT
		if inputBuffer.Len() > 0 {
			currentPrompt = CONTINUATION_PROMPT
		}
		input, err := line.Prompt(currentPrompt)
		if err != nil {
			if err == liner.ErrPromptAborted {
				// Ctrl+C - clear any buffered input and return to main prompt
				if inputBuffer.Len() > 0 {
					fmt.Fprintln(out, "^C (cleared)")
				} else {
					fmt.Fprintln(out, "^C")
				}
				inputBuffer.Reset()
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(out)
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}

		trimmed := strings.TrimSpace(input)
		if inputBuffer.Len() == 0 && (trimmed == "exit" || trimmed == "quit") {
			return nil
		}

		if inputBuffer.Len() == 0 && isReplCommand(trimmed) {
			state.handleCommand(trimmed, out)
			continue
		}

		if inputBuffer.Len() == 0 && trimmed == "" {
			continue
		}

		if inputBuffer.Len() > 0 {
			inputBuffer.WriteString("\n")
		}
		inputBuffer.WriteString(input)

		fullInput := inputBuffer.String()
		if needsMoreInput(fullInput) {
			continue
		}

		line.AppendHistory(fullInput)
		state.eval(fullInput, out)
		inputBuffer.Reset()
	}
}

// needsMoreInput reports whether input stops inside a list or a string, so
// that another line could still complete it
func needsMoreInput(input string) bool {
	_, err := sexp.Parse(input)
	var perr *sexp.Error
	if !errors.As(err, &perr) {
		return false
	}
	return perr.Kind == sexp.UnclosedParen || perr.Kind == sexp.UnclosedString
}

// eval parses one complete input and prints each form
func (s *replState) eval(input string, out io.Writer) {
	if s.showTokens {
		if tokens, err := sexp.Tokenize(input); err == nil {
			for _, tok := range tokens {
				fmt.Fprintf(out, "  %s %q\n", tok, tok.Text(input))
			}
		}
	}

	forms, err := sexp.Parse(input)
	if err != nil {
		var perr *sexp.Error
		if errors.As(err, &perr) {
			fmt.Fprintln(out, perr.PrettyString())
			printSourceContext(out, input, perr.Start)
		} else {
			fmt.Fprintf(out, "error: %v\n", err)
		}
		return
	}

	for _, form := range forms {
		s.remember(form)
		fmt.Fprintln(out, form)
	}
}

// remember records every atom in form for completion
func (s *replState) remember(form sexp.Sexp) {
	switch v := form.(type) {
	case sexp.Atom:
		if v != "" {
			s.atoms[string(v)] = true
		}
	case sexp.List:
		for _, child := range v {
			s.remember(child)
		}
	}
}

// complete returns the line with its last word completed to each seen atom
// sharing that prefix
func (s *replState) complete(line string) []string {
	if line == "" || strings.HasSuffix(line, " ") || strings.HasSuffix(line, "\t") {
		return nil
	}

	// The word being typed starts after the last separator
	cut := strings.LastIndexAny(line, " \t\n()\"") + 1
	prefix, word := line[:cut], line[cut:]
	if word == "" {
		return nil
	}

	var matches []string
	for atom := range s.atoms {
		if strings.HasPrefix(atom, word) && atom != word {
			matches = append(matches, prefix+sexp.Atom(atom).String())
		}
	}
	sort.Strings(matches)
	return matches
}

var replCommands = map[string]bool{
	":help": true, ":h": true, ":?": true,
	":atoms": true, ":clear": true, ":tokens": true,
}

// isReplCommand reports whether a line is a meta-command. Other input that
// starts with ':' is parsed, since atoms such as :key are valid.
func isReplCommand(line string) bool {
	return replCommands[line]
}

// handleCommand handles REPL meta-commands that start with ':'
func (s *replState) handleCommand(cmd string, out io.Writer) {
	switch cmd {
	case ":help", ":h", ":?":
		fmt.Fprintln(out, "REPL Commands:")
		fmt.Fprintln(out, "  :help, :h, :?   Show this help")
		fmt.Fprintln(out, "  :atoms          List atoms seen so far")
		fmt.Fprintln(out, "  :clear          Forget seen atoms")
		fmt.Fprintln(out, "  :tokens         Toggle printing the token stream")
		fmt.Fprintln(out, "  exit, quit      Exit the REPL")

	case ":atoms":
		if len(s.atoms) == 0 {
			fmt.Fprintln(out, "(no atoms)")
			return
		}
		names := make([]string, 0, len(s.atoms))
		for name := range s.atoms {
			names = append(names, sexp.Atom(name).String())
		}
		sort.Strings(names)
		fmt.Fprintf(out, "  %s\n", strings.Join(names, " "))

	case ":clear":
		s.atoms = make(map[string]bool)
		fmt.Fprintln(out, "Atoms cleared")

	case ":tokens":
		s.showTokens = !s.showTokens
		if s.showTokens {
			fmt.Fprintln(out, "Token display ON")
		} else {
			fmt.Fprintln(out, "Token display OFF")
		}
	}
}
