package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/driver"
)

const cliToolVersion = "lox-cli 0.0.0-dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		return runRepl(nil)
	}

	switch args[0] {
	case "--help", "-h", "help":
		printUsage(os.Stdout)
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(os.Stdout, cliToolVersion)
		return 0
	case "run":
		return runEntry(args[1:])
	case "repl":
		return runRepl(args[1:])
	case "check":
		return runCheck(args[1:])
	case "ast":
		return runAST(args[1:])
	case "deps":
		return runDeps(args[1:])
	default:
		if strings.HasPrefix(args[0], "-") {
			fmt.Fprintf(os.Stderr, "unknown flag %s\n", args[0])
			printUsage(os.Stderr)
			return driver.ExitUsage
		}
		return runEntry(args)
	}
}

func newSession() *driver.Session {
	return driver.NewSession(driver.SessionOptions{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Stdin:  os.Stdin,
	})
}

func runEntry(args []string) int {
	program, code := loadProgram("run", args)
	if program == nil {
		return code
	}
	return newSession().RunProgram(program).ExitCode()
}

func runCheck(args []string) int {
	program, code := loadProgram("check", args)
	if program == nil {
		return code
	}
	session := newSession()
	result := driver.OutcomeOK
	for _, file := range program.Files {
		session.ResetStatic()
		if outcome := session.Check(file.Source); outcome != driver.OutcomeOK {
			fmt.Fprintf(os.Stderr, "%s: %s\n", file.Path, outcome)
			result = outcome
		}
	}
	return result.ExitCode()
}

func runAST(args []string) int {
	fs := flag.NewFlagSet("ast", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "emit the syntax tree as JSON")
	if err := fs.Parse(args); err != nil {
		return driver.ExitUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "lox ast requires exactly one file")
		printUsage(os.Stderr)
		return driver.ExitUsage
	}
	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "read %s: %v\n", fs.Arg(0), err)
		return 1
	}
	stmts, outcome := newSession().Parse(string(data))
	if outcome != driver.OutcomeOK {
		return outcome.ExitCode()
	}
	if *asJSON {
		if stmts == nil {
			stmts = []ast.Statement{}
		}
		encoded, err := json.MarshalIndent(stmts, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "encode ast: %v\n", err)
			return 1
		}
		fmt.Fprintln(os.Stdout, string(encoded))
		return 0
	}
	fmt.Fprint(os.Stdout, ast.PrintProgram(stmts))
	return 0
}

// loadProgram resolves the scripts to run. With no argument the nearest
// manifest's main is used; a file inside a package still gets that
// package's dependencies and prelude.
func loadProgram(command string, args []string) (*driver.Program, int) {
	switch len(args) {
	case 0:
		manifest, err := loadManifestFrom(".")
		if err != nil {
			if errors.Is(err, errManifestNotFound) {
				fmt.Fprintf(os.Stderr, "lox %s: no file given and %v\n", command, err)
				printUsage(os.Stderr)
				return nil, driver.ExitUsage
			}
			fmt.Fprintf(os.Stderr, "failed to load manifest: %v\n", err)
			return nil, 1
		}
		return programForManifest(manifest, "")
	case 1:
		path := args[0]
		manifest, err := loadManifestFrom(filepath.Dir(path))
		switch {
		case err == nil:
			return programForManifest(manifest, path)
		case !errors.Is(err, errManifestNotFound):
			fmt.Fprintf(os.Stderr, "warning: unable to load manifest (%v); falling back to direct file execution\n", err)
		}
		program, err := driver.LoadFile(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return nil, 1
		}
		return program, 0
	default:
		fmt.Fprintf(os.Stderr, "lox %s takes at most one file (received %s)\n", command, strings.Join(args, " "))
		printUsage(os.Stderr)
		return nil, driver.ExitUsage
	}
}

func programForManifest(manifest *driver.Manifest, entry string) (*driver.Program, int) {
	lock, err := loadLockfileForManifest(manifest)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return nil, 1
	}
	cacheDir, err := resolveLoxHome()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return nil, 1
	}
	program, err := driver.NewLoader(cacheDir, lock).Load(manifest, entry)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return nil, 1
	}
	return program, 0
}
