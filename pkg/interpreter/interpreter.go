package interpreter

import (
	"bufio"
	"errors"
	"io"
	"os"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/diagnostics"
	"lox/interpreter-go/pkg/resolver"
	"lox/interpreter-go/pkg/runtime"
	"lox/interpreter-go/pkg/stdlib"
)

// Options configures an Interpreter. Zero values fall back to the process
// streams, a silent collector and the standard natives.
type Options struct {
	Stdout         io.Writer
	Stdin          io.Reader
	Reporter       diagnostics.Reporter
	DisableNatives bool
}

// Interpreter evaluates resolved statements against a long-lived global
// environment. Calling Interpret repeatedly (one REPL line at a time)
// keeps every global binding made so far.
type Interpreter struct {
	global   *runtime.Environment
	locals   resolver.Locals
	stdout   io.Writer
	stdin    *bufio.Reader
	reporter diagnostics.Reporter
}

// New returns an interpreter writing to os.Stdout with the natives loaded.
func New() *Interpreter {
	return NewWithOptions(Options{})
}

func NewWithOptions(opts Options) *Interpreter {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Reporter == nil {
		opts.Reporter = diagnostics.NewCollector(nil)
	}
	interp := &Interpreter{
		global:   runtime.NewEnvironment(nil),
		locals:   make(resolver.Locals),
		stdout:   opts.Stdout,
		stdin:    bufio.NewReader(opts.Stdin),
		reporter: opts.Reporter,
	}
	if !opts.DisableNatives {
		stdlib.Register(interp.global)
	}
	return interp
}

// GlobalEnvironment returns the interpreter's global environment.
func (i *Interpreter) GlobalEnvironment() *runtime.Environment {
	return i.global
}

// Resolve merges a resolver table into the interpreter's. Entries from
// earlier programs stay valid because their nodes are still referenced by
// closures that may run later.
func (i *Interpreter) Resolve(locals resolver.Locals) {
	for expr, depth := range locals {
		i.locals[expr] = depth
	}
}

// Interpret executes statements in order. A runtime error abandons the
// remaining statements, is reported once, and is returned.
func (i *Interpreter) Interpret(stmts []ast.Statement) error {
	for _, stmt := range stmts {
		if _, err := i.evaluateStatement(stmt, i.global); err != nil {
			i.report(err)
			return err
		}
	}
	return nil
}

// Evaluate computes one resolved expression in the global environment.
// Runtime errors are reported the same way Interpret reports them.
func (i *Interpreter) Evaluate(expr ast.Expression) (runtime.Value, error) {
	value, err := i.evaluateExpression(expr, i.global)
	if err != nil {
		i.report(err)
		return nil, err
	}
	return value, nil
}

func (i *Interpreter) report(err error) {
	var rtErr *runtime.RuntimeError
	if errors.As(err, &rtErr) {
		i.reporter.RuntimeError(rtErr.Token, rtErr.Message)
	}
}

// ExecuteBody runs a function body in env. It implements runtime.Executor.
func (i *Interpreter) ExecuteBody(body []ast.Statement, env *runtime.Environment) (runtime.Value, bool, error) {
	result, err := i.executeBlock(body, env)
	if err != nil {
		return nil, false, err
	}
	return result.value, result.returning, nil
}

func (i *Interpreter) Globals() *runtime.Environment { return i.global }
func (i *Interpreter) Stdout() io.Writer             { return i.stdout }
func (i *Interpreter) Stdin() *bufio.Reader          { return i.stdin }
