package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"tlog.app/go/errors"

	"github.com/nenclang/nenc/compiler/ir"
)

const (
	red   = "\x1b[91m"
	reset = "\x1b[0m"
)

func colored(f *os.File, mode string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}

	if os.Getenv("TERM") == "dumb" {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// report prints one ERROR line per diagnostic.
func report(w io.Writer, err error, color bool) {
	prefix := "ERROR"
	if color {
		prefix = red + prefix + reset
	}

	var ue ir.UndefinedError
	if errors.As(err, &ue) {
		for _, msg := range ue.Messages() {
			fmt.Fprintf(w, "%s %s\n", prefix, msg)
		}

		return
	}

	fmt.Fprintf(w, "%s %v\n", prefix, err)
}
