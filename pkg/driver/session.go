package driver

import (
	"fmt"
	"io"
	"os"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/diagnostics"
	"lox/interpreter-go/pkg/interpreter"
	"lox/interpreter-go/pkg/parser"
	"lox/interpreter-go/pkg/resolver"
	"lox/interpreter-go/pkg/scanner"
)

// Outcome summarises a run for the process exit status.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeStaticError
	OutcomeRuntimeError
)

const (
	ExitUsage        = 64
	ExitStaticError  = 65
	ExitRuntimeError = 70
)

// ExitCode maps the outcome onto the sysexits-style status codes.
func (o Outcome) ExitCode() int {
	switch o {
	case OutcomeStaticError:
		return ExitStaticError
	case OutcomeRuntimeError:
		return ExitRuntimeError
	default:
		return 0
	}
}

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeStaticError:
		return "static error"
	case OutcomeRuntimeError:
		return "runtime error"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// SessionOptions configures the streams a session uses.
type SessionOptions struct {
	Stdout         io.Writer
	Stderr         io.Writer
	Stdin          io.Reader
	DisableNatives bool
}

// Session owns one interpreter and its global environment. Every Run shares
// that environment, so definitions persist across REPL lines and across the
// files of a Program.
type Session struct {
	interp *interpreter.Interpreter
	diags  *diagnostics.Collector
}

func NewSession(opts SessionOptions) *Session {
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	diags := diagnostics.NewCollector(opts.Stderr)
	return &Session{
		interp: interpreter.NewWithOptions(interpreter.Options{
			Stdout:         opts.Stdout,
			Stdin:          opts.Stdin,
			Reporter:       diags,
			DisableNatives: opts.DisableNatives,
		}),
		diags: diags,
	}
}

func (s *Session) Diagnostics() *diagnostics.Collector { return s.diags }

func (s *Session) Interpreter() *interpreter.Interpreter { return s.interp }

// ResetStatic clears the scan/parse/resolve error flag. The REPL calls it
// between lines; the runtime flag is left alone.
func (s *Session) ResetStatic() {
	s.diags.Reset()
}

// Parse scans and parses source without resolving it.
func (s *Session) Parse(source string) ([]ast.Statement, Outcome) {
	tokens := scanner.New(source, s.diags).ScanTokens()
	stmts := parser.New(tokens, s.diags).Parse()
	if s.diags.HadError() {
		return nil, OutcomeStaticError
	}
	return stmts, OutcomeOK
}

// Check runs every static stage and reports diagnostics without executing
// anything.
func (s *Session) Check(source string) Outcome {
	stmts, outcome := s.Parse(source)
	if outcome != OutcomeOK {
		return outcome
	}
	resolver.New(s.diags).Resolve(stmts)
	if s.diags.HadError() {
		return OutcomeStaticError
	}
	return OutcomeOK
}

// Run scans, parses, resolves and interprets source. Execution is skipped
// when any static stage reported an error.
func (s *Session) Run(source string) Outcome {
	stmts, outcome := s.Parse(source)
	if outcome != OutcomeOK {
		return outcome
	}
	locals := resolver.New(s.diags).Resolve(stmts)
	if s.diags.HadError() {
		return OutcomeStaticError
	}
	s.interp.Resolve(locals)
	if err := s.interp.Interpret(stmts); err != nil {
		return OutcomeRuntimeError
	}
	return OutcomeOK
}

// Evaluate runs source as a lone expression with no trailing semicolon
// and returns the printed form of its value. ok is false when source is
// not a lone expression; nothing is reported or executed in that case.
func (s *Session) Evaluate(source string) (value string, outcome Outcome, ok bool) {
	quiet := diagnostics.NewCollector(nil)
	tokens := scanner.New(source, quiet).ScanTokens()
	if quiet.HadError() {
		return "", OutcomeOK, false
	}
	expr, parsed := parser.New(tokens, quiet).ParseExpression()
	if !parsed || quiet.HadError() {
		return "", OutcomeOK, false
	}
	locals := resolver.New(s.diags).Resolve([]ast.Statement{ast.NewExpressionStatement(expr)})
	if s.diags.HadError() {
		return "", OutcomeStaticError, true
	}
	s.interp.Resolve(locals)
	result, err := s.interp.Evaluate(expr)
	if err != nil {
		return "", OutcomeRuntimeError, true
	}
	return interpreter.Stringify(result), OutcomeOK, true
}

// RunProgram runs each file in order, stopping at the first failure.
func (s *Session) RunProgram(program *Program) Outcome {
	if program == nil {
		return OutcomeOK
	}
	for _, file := range program.Files {
		if outcome := s.Run(file.Source); outcome != OutcomeOK {
			return outcome
		}
	}
	return OutcomeOK
}
