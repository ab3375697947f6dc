package resolver

import (
	"strings"
	"testing"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/diagnostics"
	"lox/interpreter-go/pkg/parser"
	"lox/interpreter-go/pkg/scanner"
)

func resolveSource(t *testing.T, source string) ([]ast.Statement, Locals, *diagnostics.Collector) {
	t.Helper()
	collector := diagnostics.NewCollector(nil)
	tokens := scanner.New(source, collector).ScanTokens()
	stmts := parser.New(tokens, collector).Parse()
	if collector.HadError() {
		t.Fatalf("unexpected parse diagnostics: %v", collector.Diagnostics())
	}
	return stmts, New(collector).Resolve(stmts), collector
}

func messages(c *diagnostics.Collector) string {
	lines := make([]string, 0)
	for _, d := range c.Diagnostics() {
		lines = append(lines, d.String())
	}
	return strings.Join(lines, "\n")
}

func TestResolveDistances(t *testing.T) {
	stmts := []ast.Statement{
		ast.VarDecl("a", ast.Num(1)),
		ast.Block(
			ast.VarDecl("a", ast.Num(2)),
			ast.Block(
				ast.PrintStmt(ast.Var("a")),
				ast.ExprStmt(ast.Assign("a", ast.Var("a"))),
			),
			ast.PrintStmt(ast.Var("a")),
		),
		ast.PrintStmt(ast.Var("a")),
	}
	collector := diagnostics.NewCollector(nil)
	locals := New(collector).Resolve(stmts)
	if collector.HadError() {
		t.Fatalf("unexpected diagnostics: %s", messages(collector))
	}

	outer := stmts[1].(*ast.BlockStatement)
	inner := outer.Statements[1].(*ast.BlockStatement)
	innerRead := inner.Statements[0].(*ast.PrintStatement).Expression
	assign := inner.Statements[1].(*ast.ExpressionStatement).Expression.(*ast.AssignmentExpression)
	blockRead := outer.Statements[2].(*ast.PrintStatement).Expression
	globalRead := stmts[2].(*ast.PrintStatement).Expression

	expect := func(expr ast.Expression, want int) {
		t.Helper()
		got, ok := locals[expr]
		if !ok || got != want {
			t.Fatalf("expected distance %d, got %d (resolved=%v)", want, got, ok)
		}
	}
	expect(innerRead, 1)
	expect(assign, 1)
	expect(assign.Value, 1)
	expect(blockRead, 0)
	if _, ok := locals[globalRead]; ok {
		t.Fatalf("global reads must not be recorded")
	}
}

func TestResolveIdenticalNodesIndependently(t *testing.T) {
	stmts, locals, _ := resolveSource(t, `
fun f() { var x = 1; { print x; } }
fun g() { var x = 1; print x; }
`)
	fRead := stmts[0].(*ast.FunctionStatement).Body[1].(*ast.BlockStatement).Statements[0].(*ast.PrintStatement).Expression
	gRead := stmts[1].(*ast.FunctionStatement).Body[1].(*ast.PrintStatement).Expression
	if locals[fRead] != 1 || locals[gRead] != 0 {
		t.Fatalf("expected distances 1 and 0, got %d and %d", locals[fRead], locals[gRead])
	}
}

func TestResolveClosureCapture(t *testing.T) {
	stmts, locals, _ := resolveSource(t, `
fun makeCounter() {
  var i = 0;
  fun count() { i = i + 1; return i; }
  return count;
}
`)
	count := stmts[0].(*ast.FunctionStatement).Body[1].(*ast.FunctionStatement)
	assign := count.Body[0].(*ast.ExpressionStatement).Expression.(*ast.AssignmentExpression)
	if locals[assign] != 1 {
		t.Fatalf("expected captured variable at distance 1, got %d", locals[assign])
	}
	ret := count.Body[1].(*ast.ReturnStatement).Value
	if locals[ret] != 1 {
		t.Fatalf("expected captured read at distance 1, got %d", locals[ret])
	}
}

func TestResolveThisAndSuper(t *testing.T) {
	stmts, locals, collector := resolveSource(t, `
class A { m() { return this; } }
class B < A { m() { return super.m(); } }
`)
	if collector.HadError() {
		t.Fatalf("unexpected diagnostics: %s", messages(collector))
	}
	this := stmts[0].(*ast.ClassStatement).Methods[0].Body[0].(*ast.ReturnStatement).Value
	if locals[this] != 1 {
		t.Fatalf("expected 'this' one scope above the method body, got %d", locals[this])
	}
	call := stmts[1].(*ast.ClassStatement).Methods[0].Body[0].(*ast.ReturnStatement).Value.(*ast.CallExpression)
	if locals[call.Callee] != 2 {
		t.Fatalf("expected 'super' two scopes above the method body, got %d", locals[call.Callee])
	}
}

func TestResolveErrors(t *testing.T) {
	cases := []struct {
		name   string
		source string
		want   string
	}{
		{"self initializer", "{ var a = a; }", "[line 1] Error at 'a': Cannot read local variable in its own initializer."},
		{"global self initializer", "var a = a;", "[line 1] Error at 'a': Cannot read local variable in its own initializer."},
		{"global self initializer after definition", "var a = 1;\nvar a = a + 1;", "[line 2] Error at 'a': Cannot read local variable in its own initializer."},
		{"duplicate local", "{ var a = 1; var a = 2; }", "[line 1] Error at 'a': Already a variable with this name in this scope."},
		{"duplicate parameter", "fun f(a, a) {}", "[line 1] Error at 'a': Already a variable with this name in this scope."},
		{"top level return", "return 1;", "[line 1] Error at 'return': Can't return from top-level code."},
		{"initializer value", "class A { init() { return 1; } }", "[line 1] Error at 'return': Can't return a value from an initializer."},
		{"self inherit", "class A < A {}", "[line 1] Error at 'A': A class can't inherit from itself."},
		{"this outside class", "print this;", "[line 1] Error at 'this': Can't use 'this' outside of a class."},
		{"this in function", "fun f() { return this; }", "[line 1] Error at 'this': Can't use 'this' outside of a class."},
		{"super outside class", "super.m();", "[line 1] Error at 'super': Can't use 'super' outside of a class."},
		{"super without superclass", "class A { m() { super.m(); } }", "[line 1] Error at 'super': Can't use 'super' in a class with no superclass."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, collector := resolveSource(t, tc.source)
			if got := messages(collector); got != tc.want {
				t.Fatalf("got %q\nwant %q", got, tc.want)
			}
		})
	}
}

func TestResolveAllowsGlobalRedeclarationAndBareInitializerReturn(t *testing.T) {
	_, _, collector := resolveSource(t, `
var a = 1;
var a = 2;
var b = a;
class A { init() { return; } }
`)
	if collector.HadError() {
		t.Fatalf("unexpected diagnostics: %s", messages(collector))
	}
}
