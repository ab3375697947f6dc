package main

import (
	"fmt"
	"io"
)

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  lox                    start the REPL")
	fmt.Fprintln(w, "  lox repl")
	fmt.Fprintln(w, "  lox <file.lox>")
	fmt.Fprintln(w, "  lox run [file.lox]     without a file, runs main from lox.yml")
	fmt.Fprintln(w, "  lox check [file.lox]")
	fmt.Fprintln(w, "  lox ast [--json] <file.lox>")
	fmt.Fprintln(w, "  lox deps install")
	fmt.Fprintln(w, "  lox --version")
}
