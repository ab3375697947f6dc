package runtime

import (
	"fmt"

	"lox/interpreter-go/pkg/ast"
)

// FunctionValue is a user-defined function or method together with the
// environment that was current when it was declared.
type FunctionValue struct {
	Declaration   *ast.FunctionStatement
	Closure       *Environment
	IsInitializer bool
}

func NewFunction(decl *ast.FunctionStatement, closure *Environment, isInitializer bool) *FunctionValue {
	return &FunctionValue{Declaration: decl, Closure: closure, IsInitializer: isInitializer}
}

func (v *FunctionValue) Kind() Kind { return KindFunction }

func (v *FunctionValue) Name() string { return v.Declaration.Name.Lexeme }

func (v *FunctionValue) Arity() int { return len(v.Declaration.Params) }

// Bind returns a copy of the method whose closure has `this` fixed to
// instance.
func (v *FunctionValue) Bind(instance *InstanceValue) *FunctionValue {
	env := NewEnvironment(v.Closure)
	env.Define("this", instance)
	return NewFunction(v.Declaration, env, v.IsInitializer)
}

// Call runs the body in a fresh activation record. Initializers always
// yield the bound instance, even on a bare `return;`.
func (v *FunctionValue) Call(exec Executor, args []Value) (Value, error) {
	env := NewEnvironment(v.Closure)
	for i, param := range v.Declaration.Params {
		env.Define(param.Lexeme, args[i])
	}
	result, returned, err := exec.ExecuteBody(v.Declaration.Body, env)
	if err != nil {
		return nil, err
	}
	if v.IsInitializer {
		return v.Closure.GetAt(0, "this")
	}
	if returned && result != nil {
		return result, nil
	}
	return NilValue{}, nil
}

func (v *FunctionValue) String() string {
	return fmt.Sprintf("<fn %s>", v.Name())
}
