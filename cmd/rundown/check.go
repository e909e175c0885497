package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/ianthehenry/rundown/config"
	"github.com/ianthehenry/rundown/pkg/rundown"
	"github.com/ianthehenry/rundown/pkg/sexp"
)

// blockError is a syntax error found in one code block of a document
type blockError struct {
	File       string
	Block      rundown.Component
	BlockIndex int
	Err        *sexp.Error
}

// Line returns the 1-based document line of the error. Fenced block bodies
// start on the line after the opening fence; indented bodies start on the
// block's first line.
func (e *blockError) Line(source string) int {
	line := 1 + strings.Count(source[:e.Block.Start], "\n")
	if e.Block.Flavor.Kind == rundown.Fenced {
		line++
	}
	return line + strings.Count(e.Block.Body[:e.Err.Start], "\n")
}

// Column returns the 1-based byte column of the error within its body line
func (e *blockError) Column() int {
	return e.Err.Start - strings.LastIndexByte(e.Block.Body[:e.Err.Start], '\n')
}

// checkDocument parses every S-expression block of a document
func checkDocument(path, source string, cfg *config.Config) (checked int, errs []*blockError) {
	for i, block := range rundown.CodeBlocks(rundown.Split(source)) {
		if !cfg.IsSexpLanguage(block.Language()) {
			continue
		}
		checked++

		_, err := sexp.Parse(block.Body)
		var perr *sexp.Error
		if errors.As(err, &perr) {
			errs = append(errs, &blockError{File: path, Block: block, BlockIndex: i, Err: perr})
		}
	}
	return checked, errs
}

// jsonBlockError is one line of `check --json` output
type jsonBlockError struct {
	File       string          `json:"file"`
	Line       int             `json:"line"`
	Column     int             `json:"column"`
	Block      int             `json:"block"`
	BlockStart int             `json:"block_start"`
	Language   string          `json:"language"`
	Error      json.RawMessage `json:"error"`
}

func runCheck(args []string, stdout, stderr io.Writer, getenv func(string) string) error {
	flags := flag.NewFlagSet("rundown check", flag.ContinueOnError)
	flags.SetOutput(stderr)

	var (
		configPath = flags.String("config", "", "Path to config file")
		asJSON     = flags.Bool("json", false, "Report errors as JSON lines")
	)

	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, _, err := config.LoadWithPath(*configPath, getenv)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log := newLogger(stderr, stderr, cfg.Logging.Level)

	files := flags.Args()
	if len(files) == 0 {
		files = []string{cfg.Input}
	}

	failed := 0
	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		source := string(content)

		checked, errs := checkDocument(path, source, cfg)
		log.logDebug("%s: checked %d blocks", path, checked)
		if checked == 0 {
			log.logWarn("%s: no code blocks in %s", path, strings.Join(cfg.SexpLanguages, ", "))
		}

		for _, e := range errs {
			failed++
			if *asJSON {
				if err := writeJSONError(stdout, source, e); err != nil {
					return err
				}
				continue
			}
			printBlockError(stderr, source, e)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d block(s) failed", errSyntax, failed)
	}
	return nil
}

func writeJSONError(w io.Writer, source string, e *blockError) error {
	raw, err := e.Err.ToJSON()
	if err != nil {
		return fmt.Errorf("encoding error: %w", err)
	}
	line, err := json.Marshal(jsonBlockError{
		File:       e.File,
		Line:       e.Line(source),
		Column:     e.Column(),
		Block:      e.BlockIndex,
		BlockStart: e.Block.Start,
		Language:   e.Block.Language(),
		Error:      raw,
	})
	if err != nil {
		return fmt.Errorf("encoding error: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", line)
	return err
}

// printBlockError prints an error with its position in the document and the
// offending line of the block
func printBlockError(w io.Writer, source string, e *blockError) {
	fmt.Fprintf(w, "%s:%d:%d: in %s block at byte %d\n",
		e.File, e.Line(source), e.Column(), e.Block.Language(), e.Block.Start)
	fmt.Fprintln(w, e.Err.PrettyString())
	printSourceContext(w, e.Block.Body, e.Err.Start)
}

// printSourceContext prints the body line containing offset and a pointer
// to the offending byte. Tabs are shown as 8 spaces so the pointer lines up.
func printSourceContext(w io.Writer, body string, offset int) {
	if offset < 0 || offset > len(body) {
		return
	}
	start := strings.LastIndexByte(body[:offset], '\n') + 1
	end := strings.IndexByte(body[offset:], '\n')
	if end < 0 {
		end = len(body)
	} else {
		end += offset
	}

	sourceLine := body[start:end]
	trimmed := strings.TrimLeft(sourceLine, " \t")
	trimWidth := displayWidth(sourceLine[:len(sourceLine)-len(trimmed)])

	fmt.Fprintf(w, "    %s\n", strings.ReplaceAll(trimmed, "\t", tabSpaces))

	col := max(displayWidth(body[start:offset])-trimWidth, 0)
	fmt.Fprintf(w, "    %s^\n", strings.Repeat(" ", col))
}

const tabSpaces = "        "

// displayWidth returns the terminal cells s occupies. Wide runes such as
// CJK and emoji take two cells.
func displayWidth(s string) int {
	width := 0
	for _, r := range s {
		if r == '\t' {
			width += len(tabSpaces)
			continue
		}
		width += runewidth.RuneWidth(r)
	}
	return width
}
