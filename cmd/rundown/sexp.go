package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ianthehenry/rundown/pkg/sexp"
)

func runSexp(args []string, stdout, stderr io.Writer, getenv func(string) string) error {
	flags := flag.NewFlagSet("rundown sexp", flag.ContinueOnError)
	flags.SetOutput(stderr)

	var (
		expr   = flags.String("e", "", "Parse an expression given on the command line")
		asJSON = flags.Bool("json", false, "Report errors as JSON")
	)

	if err := flags.Parse(args); err != nil {
		return err
	}

	exprSet := false
	flags.Visit(func(f *flag.Flag) {
		if f.Name == "e" {
			exprSet = true
		}
	})

	var input string
	switch {
	case exprSet:
		input = *expr
	case flags.NArg() == 1:
		content, err := os.ReadFile(flags.Arg(0))
		if err != nil {
			return fmt.Errorf("reading %s: %w", flags.Arg(0), err)
		}
		input = string(content)
	case flags.NArg() > 1:
		return fmt.Errorf("expected at most one file, got %d", flags.NArg())
	default:
		return startREPL(stdout, getenv)
	}

	return printForms(input, *asJSON, stdout, stderr)
}

// printForms parses input and prints one top-level form per line
func printForms(input string, asJSON bool, stdout, stderr io.Writer) error {
	forms, err := sexp.Parse(input)
	if err != nil {
		var perr *sexp.Error
		if !errors.As(err, &perr) {
			return err
		}
		if asJSON {
			data, jerr := perr.ToJSON()
			if jerr != nil {
				return fmt.Errorf("encoding error: %w", jerr)
			}
			fmt.Fprintf(stdout, "%s\n", data)
		} else {
			fmt.Fprintln(stderr, perr.PrettyString())
			printSourceContext(stderr, input, perr.Start)
		}
		return errSyntax
	}

	for _, form := range forms {
		fmt.Fprintln(stdout, form)
	}
	return nil
}
