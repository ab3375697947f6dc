package interpreter

import (
	"bytes"
	"strings"
	"testing"

	"lox/interpreter-go/pkg/diagnostics"
	"lox/interpreter-go/pkg/parser"
	"lox/interpreter-go/pkg/resolver"
	"lox/interpreter-go/pkg/scanner"
)

type programResult struct {
	stdout      string
	diagnostics []diagnostics.Diagnostic
	err         error
}

// runProgram pushes source through every stage using interp, which lets
// tests run several programs against one global environment.
func runProgram(t *testing.T, interp *Interpreter, out *bytes.Buffer, collector *diagnostics.Collector, source string) programResult {
	t.Helper()
	out.Reset()
	collector.Reset()
	collector.Drain()
	tokens := scanner.New(source, collector).ScanTokens()
	stmts := parser.New(tokens, collector).Parse()
	if collector.HadError() {
		return programResult{diagnostics: collector.Drain()}
	}
	locals := resolver.New(collector).Resolve(stmts)
	if collector.HadError() {
		return programResult{diagnostics: collector.Drain()}
	}
	interp.Resolve(locals)
	err := interp.Interpret(stmts)
	return programResult{stdout: out.String(), diagnostics: collector.Drain(), err: err}
}

func newTestInterpreter(stdin string) (*Interpreter, *bytes.Buffer, *diagnostics.Collector) {
	var out bytes.Buffer
	collector := diagnostics.NewCollector(nil)
	interp := NewWithOptions(Options{Stdout: &out, Stdin: strings.NewReader(stdin), Reporter: collector})
	return interp, &out, collector
}

func run(t *testing.T, source string) programResult {
	t.Helper()
	interp, out, collector := newTestInterpreter("")
	return runProgram(t, interp, out, collector, source)
}

func expectOutput(t *testing.T, source string, lines ...string) {
	t.Helper()
	result := run(t, source)
	if len(result.diagnostics) > 0 || result.err != nil {
		t.Fatalf("unexpected failure: diagnostics=%v err=%v", result.diagnostics, result.err)
	}
	want := strings.Join(lines, "\n")
	if len(lines) > 0 {
		want += "\n"
	}
	if result.stdout != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", result.stdout, want)
	}
}

func expectRuntimeError(t *testing.T, source, message string, line int) programResult {
	t.Helper()
	result := run(t, source)
	if result.err == nil {
		t.Fatalf("expected runtime error %q, program succeeded with output %q", message, result.stdout)
	}
	if len(result.diagnostics) != 1 {
		t.Fatalf("expected one diagnostic, got %v", result.diagnostics)
	}
	d := result.diagnostics[0]
	if d.Stage != diagnostics.StageRuntime || d.Message != message || d.Line != line {
		t.Fatalf("expected runtime error %q on line %d, got %#v", message, line, d)
	}
	return result
}
