package resolver

import (
	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/diagnostics"
	"lox/interpreter-go/pkg/token"
)

// Locals maps each resolved variable-like expression to the number of
// scopes between its use and its declaration. Expressions absent from the
// table are globals. Keys compare by node pointer.
type Locals map[ast.Expression]int

type functionKind int

const (
	functionNone functionKind = iota
	functionPlain
	functionInitializer
	functionMethod
)

type classKind int

const (
	classNone classKind = iota
	classPlain
	classSubclass
)

// Resolver performs the static scope pass between parsing and evaluation.
type Resolver struct {
	reporter        diagnostics.Reporter
	scopes          []map[string]bool
	locals          Locals
	currentFunction functionKind
	currentClass    classKind

	// initializingGlobal names the top-level variable whose initializer is
	// being resolved.
	initializingGlobal string
}

func New(reporter diagnostics.Reporter) *Resolver {
	if reporter == nil {
		reporter = diagnostics.NewCollector(nil)
	}
	return &Resolver{reporter: reporter, locals: make(Locals)}
}

// Resolve walks the program and returns the resolution table. Problems go
// to the reporter; the table is only meaningful when none were reported.
func (r *Resolver) Resolve(stmts []ast.Statement) Locals {
	r.resolveStatements(stmts)
	return r.locals
}

func (r *Resolver) resolveStatements(stmts []ast.Statement) {
	for _, stmt := range stmts {
		r.resolveStatement(stmt)
	}
}

func (r *Resolver) resolveStatement(node ast.Statement) {
	switch n := node.(type) {
	case *ast.BlockStatement:
		r.beginScope()
		r.resolveStatements(n.Statements)
		r.endScope()
	case *ast.ClassStatement:
		r.resolveClass(n)
	case *ast.VarStatement:
		r.declare(n.Name)
		if n.Initializer != nil {
			if len(r.scopes) == 0 {
				r.initializingGlobal = n.Name.Lexeme
			}
			r.resolveExpression(n.Initializer)
			r.initializingGlobal = ""
		}
		r.define(n.Name)
	case *ast.FunctionStatement:
		r.declare(n.Name)
		r.define(n.Name)
		r.resolveFunction(n, functionPlain)
	case *ast.ExpressionStatement:
		r.resolveExpression(n.Expression)
	case *ast.IfStatement:
		r.resolveExpression(n.Condition)
		r.resolveStatement(n.ThenBranch)
		if n.ElseBranch != nil {
			r.resolveStatement(n.ElseBranch)
		}
	case *ast.PrintStatement:
		r.resolveExpression(n.Expression)
	case *ast.ReturnStatement:
		if r.currentFunction == functionNone {
			r.error(n.Keyword, "Can't return from top-level code.")
		}
		if n.Value != nil {
			if r.currentFunction == functionInitializer {
				r.error(n.Keyword, "Can't return a value from an initializer.")
			}
			r.resolveExpression(n.Value)
		}
	case *ast.WhileStatement:
		r.resolveExpression(n.Condition)
		r.resolveStatement(n.Body)
	}
}

func (r *Resolver) resolveClass(n *ast.ClassStatement) {
	enclosingClass := r.currentClass
	r.currentClass = classPlain
	defer func() { r.currentClass = enclosingClass }()

	r.declare(n.Name)
	r.define(n.Name)

	if n.Superclass != nil {
		if n.Superclass.Name.Lexeme == n.Name.Lexeme {
			r.error(n.Superclass.Name, "A class can't inherit from itself.")
		}
		r.currentClass = classSubclass
		r.resolveExpression(n.Superclass)

		r.beginScope()
		r.peekScope()["super"] = true
		defer r.endScope()
	}

	r.beginScope()
	r.peekScope()["this"] = true
	for _, method := range n.Methods {
		kind := functionMethod
		if method.Name.Lexeme == "init" {
			kind = functionInitializer
		}
		r.resolveFunction(method, kind)
	}
	r.endScope()
}

func (r *Resolver) resolveFunction(fn *ast.FunctionStatement, kind functionKind) {
	enclosing := r.currentFunction
	r.currentFunction = kind

	r.beginScope()
	for _, param := range fn.Params {
		r.declare(param)
		r.define(param)
	}
	r.resolveStatements(fn.Body)
	r.endScope()

	r.currentFunction = enclosing
}

func (r *Resolver) resolveExpression(node ast.Expression) {
	switch n := node.(type) {
	case *ast.VariableExpression:
		if r.readsOwnInitializer(n.Name.Lexeme) {
			r.error(n.Name, "Cannot read local variable in its own initializer.")
		}
		r.resolveLocal(n, n.Name.Lexeme)
	case *ast.AssignmentExpression:
		r.resolveExpression(n.Value)
		r.resolveLocal(n, n.Name.Lexeme)
	case *ast.BinaryExpression:
		r.resolveExpression(n.Left)
		r.resolveExpression(n.Right)
	case *ast.CallExpression:
		r.resolveExpression(n.Callee)
		for _, arg := range n.Arguments {
			r.resolveExpression(arg)
		}
	case *ast.GetExpression:
		r.resolveExpression(n.Object)
	case *ast.SetExpression:
		r.resolveExpression(n.Value)
		r.resolveExpression(n.Object)
	case *ast.GroupingExpression:
		r.resolveExpression(n.Inner)
	case *ast.LiteralExpression:
	case *ast.LogicalExpression:
		r.resolveExpression(n.Left)
		r.resolveExpression(n.Right)
	case *ast.UnaryExpression:
		r.resolveExpression(n.Right)
	case *ast.ThisExpression:
		if r.currentClass == classNone {
			r.error(n.Keyword, "Can't use 'this' outside of a class.")
			return
		}
		r.resolveLocal(n, "this")
	case *ast.SuperExpression:
		switch r.currentClass {
		case classNone:
			r.error(n.Keyword, "Can't use 'super' outside of a class.")
		case classPlain:
			r.error(n.Keyword, "Can't use 'super' in a class with no superclass.")
		}
		r.resolveLocal(n, "super")
	}
}

func (r *Resolver) readsOwnInitializer(name string) bool {
	if len(r.scopes) == 0 {
		return r.initializingGlobal != "" && name == r.initializingGlobal
	}
	initialized, ok := r.peekScope()[name]
	return ok && !initialized
}

// resolveLocal records the distance to the innermost scope declaring name.
// Unrecorded names are left for the global environment.
func (r *Resolver) resolveLocal(expr ast.Expression, name string) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name]; ok {
			r.locals[expr] = len(r.scopes) - 1 - i
			return
		}
	}
}

func (r *Resolver) beginScope() {
	r.scopes = append(r.scopes, make(map[string]bool))
}

func (r *Resolver) endScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

func (r *Resolver) peekScope() map[string]bool {
	return r.scopes[len(r.scopes)-1]
}

func (r *Resolver) declare(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	scope := r.peekScope()
	if _, ok := scope[name.Lexeme]; ok {
		r.error(name, "Already a variable with this name in this scope.")
	}
	scope[name.Lexeme] = false
}

func (r *Resolver) define(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	r.peekScope()[name.Lexeme] = true
}

func (r *Resolver) error(tok token.Token, message string) {
	r.reporter.ErrorAt(diagnostics.StageResolve, tok, message)
}
