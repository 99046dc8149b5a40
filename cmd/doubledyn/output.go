package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/funvibe/doubledyn/internal/diagnostics"
)

const (
	red    = "\033[1;31m"
	yellow = "\033[1;33m"
	reset  = "\033[0m"
)

// colorEnabled reports whether w is a terminal that should get ANSI colours.
func colorEnabled(w io.Writer) bool {
	// NO_COLOR convention: https://no-color.org/
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (c *cli) paint(color, s string) string {
	if !c.color {
		return s
	}
	return color + s + reset
}

// report prints an error as `file:line:col: error[CODE]: message`.
func (c *cli) report(err error) {
	var derr *diagnostics.DiagnosticError
	if !errors.As(err, &derr) {
		fmt.Fprintf(c.stderr, "%s %v\n", c.paint(red, "error:"), err)
		return
	}
	if loc := derr.Location(); loc != "" {
		fmt.Fprintf(c.stderr, "%s: ", loc)
	}
	fmt.Fprintf(c.stderr, "%s: %s\n", c.paint(red, "error["+string(derr.Code)+"]"), derr.Message)
}
