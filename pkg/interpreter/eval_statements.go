package interpreter

import (
	"fmt"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/runtime"
)

// completion is the result of executing a statement. A returning
// completion propagates up through blocks and loops until a function call
// turns it into the call's value.
type completion struct {
	returning bool
	value     runtime.Value
}

var normalCompletion = completion{}

func (i *Interpreter) evaluateStatement(node ast.Statement, env *runtime.Environment) (completion, error) {
	switch n := node.(type) {
	case *ast.ExpressionStatement:
		_, err := i.evaluateExpression(n.Expression, env)
		return normalCompletion, err
	case *ast.PrintStatement:
		value, err := i.evaluateExpression(n.Expression, env)
		if err != nil {
			return normalCompletion, err
		}
		fmt.Fprintln(i.stdout, valueToString(value))
		return normalCompletion, nil
	case *ast.VarStatement:
		var value runtime.Value = runtime.NilValue{}
		if n.Initializer != nil {
			v, err := i.evaluateExpression(n.Initializer, env)
			if err != nil {
				return normalCompletion, err
			}
			value = v
		}
		env.Define(n.Name.Lexeme, value)
		return normalCompletion, nil
	case *ast.BlockStatement:
		return i.executeBlock(n.Statements, runtime.NewEnvironment(env))
	case *ast.IfStatement:
		cond, err := i.evaluateExpression(n.Condition, env)
		if err != nil {
			return normalCompletion, err
		}
		if isTruthy(cond) {
			return i.evaluateStatement(n.ThenBranch, env)
		}
		if n.ElseBranch != nil {
			return i.evaluateStatement(n.ElseBranch, env)
		}
		return normalCompletion, nil
	case *ast.WhileStatement:
		return i.evaluateWhileStatement(n, env)
	case *ast.FunctionStatement:
		env.Define(n.Name.Lexeme, runtime.NewFunction(n, env, false))
		return normalCompletion, nil
	case *ast.ReturnStatement:
		var value runtime.Value = runtime.NilValue{}
		if n.Value != nil {
			v, err := i.evaluateExpression(n.Value, env)
			if err != nil {
				return normalCompletion, err
			}
			value = v
		}
		return completion{returning: true, value: value}, nil
	case *ast.ClassStatement:
		return normalCompletion, i.evaluateClassStatement(n, env)
	default:
		return normalCompletion, fmt.Errorf("interpreter: unsupported statement %T", node)
	}
}

// executeBlock runs stmts in env and stops at the first returning
// completion. The caller's environment is untouched, so every exit path
// leaves the enclosing scope current again.
func (i *Interpreter) executeBlock(stmts []ast.Statement, env *runtime.Environment) (completion, error) {
	for _, stmt := range stmts {
		result, err := i.evaluateStatement(stmt, env)
		if err != nil || result.returning {
			return result, err
		}
	}
	return normalCompletion, nil
}

func (i *Interpreter) evaluateWhileStatement(loop *ast.WhileStatement, env *runtime.Environment) (completion, error) {
	for {
		cond, err := i.evaluateExpression(loop.Condition, env)
		if err != nil {
			return normalCompletion, err
		}
		if !isTruthy(cond) {
			return normalCompletion, nil
		}
		result, err := i.evaluateStatement(loop.Body, env)
		if err != nil || result.returning {
			return result, err
		}
	}
}

// evaluateClassStatement binds the name first so methods can refer to the
// class, then assigns the finished class value.
func (i *Interpreter) evaluateClassStatement(n *ast.ClassStatement, env *runtime.Environment) error {
	var superclass *runtime.ClassValue
	if n.Superclass != nil {
		value, err := i.evaluateExpression(n.Superclass, env)
		if err != nil {
			return err
		}
		class, ok := value.(*runtime.ClassValue)
		if !ok {
			return runtime.NewRuntimeError(n.Superclass.Name, "Superclass must be a class.")
		}
		superclass = class
	}

	env.Define(n.Name.Lexeme, runtime.NilValue{})

	methodEnv := env
	if superclass != nil {
		methodEnv = runtime.NewEnvironment(env)
		methodEnv.Define("super", superclass)
	}

	methods := make(map[string]*runtime.FunctionValue, len(n.Methods))
	for _, method := range n.Methods {
		methods[method.Name.Lexeme] = runtime.NewFunction(method, methodEnv, method.Name.Lexeme == "init")
	}
	class := runtime.NewClass(n.Name.Lexeme, superclass, methods)
	return env.Assign(n.Name.Lexeme, class)
}
