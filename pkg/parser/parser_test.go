package parser

import (
	"fmt"
	"strings"
	"testing"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/diagnostics"
	"lox/interpreter-go/pkg/scanner"
)

func parseSource(t *testing.T, source string) ([]ast.Statement, *diagnostics.Collector) {
	t.Helper()
	collector := diagnostics.NewCollector(nil)
	tokens := scanner.New(source, collector).ScanTokens()
	return New(tokens, collector).Parse(), collector
}

func mustParse(t *testing.T, source string) []ast.Statement {
	t.Helper()
	stmts, collector := parseSource(t, source)
	if collector.HadError() {
		t.Fatalf("unexpected diagnostics for %q: %v", source, collector.Diagnostics())
	}
	return stmts
}

func diagnosticLines(c *diagnostics.Collector) []string {
	out := make([]string, 0)
	for _, d := range c.Diagnostics() {
		out = append(out, d.String())
	}
	return out
}

func TestParsePrecedence(t *testing.T) {
	cases := map[string]string{
		"1 + 2 * 3;":            "(; (+ 1 (* 2 3)))",
		"(1 + 2) * 3;":          "(; (* (group (+ 1 2)) 3))",
		"1 - 2 - 3;":            "(; (- (- 1 2) 3))",
		"-a * b;":               "(; (* (- a) b))",
		"!!true;":               "(; (! (! true)))",
		"a or b and c;":         "(; (or a (and b c)))",
		"a == b < c + d;":       "(; (== a (< b (+ c d))))",
		"a = b = c;":            "(; (= a (= b c)))",
		"x.y.z = f(1)(2);":      "(; (set z (get y x) (call (call f 1) 2)))",
		"super.m(this);":        "(; (call (super m) this))",
		"1 >= 2 != 3 <= 4;":     "(; (!= (>= 1 2) (<= 3 4)))",
		`print "a" + nil;`:      `(print (+ "a" nil))`,
		"a / b * c;":            "(; (* (/ a b) c))",
		"f();":                  "(; (call f))",
		"obj.method(a, b).x;":   "(; (get x (call (get method obj) a b)))",
		"var v = -1.5;":         "(var v (- 1.5))",
		"return_ = nil != nil;": "(; (= return_ (!= nil nil)))",
	}
	for source, want := range cases {
		stmts := mustParse(t, source)
		if len(stmts) != 1 {
			t.Fatalf("%q: expected 1 statement, got %d", source, len(stmts))
		}
		if got := ast.Print(stmts[0]); got != want {
			t.Fatalf("%q: got %s, want %s", source, got, want)
		}
	}
}

func TestParseForDesugarsToWhile(t *testing.T) {
	stmts := mustParse(t, "for (var i = 0; i < 3; i = i + 1) print i;")
	want := "(block (var i 0) (while (< i 3) (block (print i) (; (= i (+ i 1))))))"
	if got := ast.Print(stmts[0]); got != want {
		t.Fatalf("got %s\nwant %s", got, want)
	}

	bare := mustParse(t, "for (;;) print 1;")
	if got := ast.Print(bare[0]); got != "(while true (print 1))" {
		t.Fatalf("unexpected bare loop %s", got)
	}

	exprInit := mustParse(t, "for (i = 0; i < 1;) {}")
	if got := ast.Print(exprInit[0]); got != "(block (; (= i 0)) (while (< i 1) (block)))" {
		t.Fatalf("unexpected loop %s", got)
	}
}

func TestParseDeclarations(t *testing.T) {
	stmts := mustParse(t, `
class Point < Base {
  init(x, y) { this.x = x; this.y = y; }
  sum() { return this.x + this.y; }
}
fun add(a, b) { return a + b; }
if (a) print 1; else { print 2; }
while (false) {}
`)
	if len(stmts) != 4 {
		t.Fatalf("expected 4 statements, got %d", len(stmts))
	}
	class, ok := stmts[0].(*ast.ClassStatement)
	if !ok {
		t.Fatalf("expected ClassStatement, got %T", stmts[0])
	}
	if class.Superclass == nil || class.Superclass.Name.Lexeme != "Base" || len(class.Methods) != 2 {
		t.Fatalf("unexpected class %#v", class)
	}
	if got := ast.Print(stmts[1]); got != "(fun add (a b) (return (+ a b)))" {
		t.Fatalf("unexpected function %s", got)
	}
	if got := ast.Print(stmts[2]); got != "(if-else a (print 1) (block (print 2)))" {
		t.Fatalf("unexpected if %s", got)
	}
}

func TestParseRecoversAndReportsEveryError(t *testing.T) {
	stmts, collector := parseSource(t, "var = 1;\nprint 2;\nprint (3;\nvar ok = 4;\n1 +;\n")
	want := []string{
		"[line 1] Error at '=': Expect variable name.",
		"[line 3] Error at ';': Expect ')' after expression.",
		"[line 5] Error at ';': Expect expression.",
	}
	got := diagnosticLines(collector)
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Fatalf("unexpected diagnostics:\n%s\nwant:\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
	if len(stmts) != 2 {
		t.Fatalf("expected the two valid statements to survive, got %d", len(stmts))
	}
}

func TestParseSynchronizesOnKeyword(t *testing.T) {
	stmts, collector := parseSource(t, "var x = 1 + ) junk print 2;")
	got := diagnosticLines(collector)
	if len(got) != 1 || got[0] != "[line 1] Error at ')': Expect expression." {
		t.Fatalf("unexpected diagnostics %v", got)
	}
	if len(stmts) != 1 || ast.Print(stmts[0]) != "(print 2)" {
		t.Fatalf("expected parser to resume at 'print', got %d statements", len(stmts))
	}
}

func TestParseInvalidAssignmentTargetIsNonFatal(t *testing.T) {
	stmts, collector := parseSource(t, "a + b = c; print 1;")
	got := diagnosticLines(collector)
	if len(got) != 1 || got[0] != "[line 1] Error at '=': Invalid assignment target." {
		t.Fatalf("unexpected diagnostics %v", got)
	}
	if len(stmts) != 2 {
		t.Fatalf("expected parsing to continue past the bad target, got %d statements", len(stmts))
	}
}

func TestParseMissingLeftOperand(t *testing.T) {
	stmts, collector := parseSource(t, "* 3; print 4;")
	got := diagnosticLines(collector)
	if len(got) != 1 || got[0] != "[line 1] Error at '*': Expect expression before '*'." {
		t.Fatalf("unexpected diagnostics %v", got)
	}
	if len(stmts) != 1 {
		t.Fatalf("expected recovery to keep the print, got %d statements", len(stmts))
	}
}

func TestParseArgumentLimit(t *testing.T) {
	args := make([]string, 256)
	params := make([]string, 256)
	for i := range args {
		args[i] = "1"
		params[i] = fmt.Sprintf("p%d", i)
	}
	_, collector := parseSource(t, "f("+strings.Join(args, ", ")+");")
	got := diagnosticLines(collector)
	if len(got) != 1 || got[0] != "[line 1] Error at '1': Can't have more than 255 arguments." {
		t.Fatalf("unexpected diagnostics %v", got)
	}

	stmts, collector := parseSource(t, "fun f("+strings.Join(params, ", ")+") {}")
	got = diagnosticLines(collector)
	if len(got) != 1 || got[0] != "[line 1] Error at 'p255': Can't have more than 255 parameters." {
		t.Fatalf("unexpected diagnostics %v", got)
	}
	if len(stmts) != 1 {
		t.Fatalf("expected function to still parse, got %d statements", len(stmts))
	}
}

func TestParseErrorAtEnd(t *testing.T) {
	_, collector := parseSource(t, "print 1")
	got := diagnosticLines(collector)
	if len(got) != 1 || got[0] != "[line 1] Error at end: Expect ';' after value." {
		t.Fatalf("unexpected diagnostics %v", got)
	}
}

func TestParseExpression(t *testing.T) {
	collector := diagnostics.NewCollector(nil)
	tokens := scanner.New("1 + 2 * 3", collector).ScanTokens()
	expr, ok := New(tokens, collector).ParseExpression()
	if !ok || ast.Print(expr) != "(+ 1 (* 2 3))" {
		t.Fatalf("unexpected expression %v (ok=%v)", expr, ok)
	}
}

func TestParseNodeIdentityIsDistinct(t *testing.T) {
	stmts := mustParse(t, "a; a;")
	first := stmts[0].(*ast.ExpressionStatement).Expression
	second := stmts[1].(*ast.ExpressionStatement).Expression
	if first == second {
		t.Fatalf("expected distinct nodes for identical expressions")
	}
}
