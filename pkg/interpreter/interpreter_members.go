package interpreter

import (
	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/runtime"
)

func (i *Interpreter) evaluateGetExpression(n *ast.GetExpression, env *runtime.Environment) (runtime.Value, error) {
	object, err := i.evaluateExpression(n.Object, env)
	if err != nil {
		return nil, err
	}
	instance, ok := object.(*runtime.InstanceValue)
	if !ok {
		return nil, runtime.NewRuntimeError(n.Name, "Only instances have properties.")
	}
	return instance.Get(n.Name)
}

func (i *Interpreter) evaluateSetExpression(n *ast.SetExpression, env *runtime.Environment) (runtime.Value, error) {
	object, err := i.evaluateExpression(n.Object, env)
	if err != nil {
		return nil, err
	}
	instance, ok := object.(*runtime.InstanceValue)
	if !ok {
		return nil, runtime.NewRuntimeError(n.Name, "Only instances have fields.")
	}
	value, err := i.evaluateExpression(n.Value, env)
	if err != nil {
		return nil, err
	}
	instance.Set(n.Name, value)
	return value, nil
}

// evaluateSuperExpression starts the method search at the class that was
// the superclass where the method was declared, not at the receiver's
// runtime class. `this` lives one scope inside `super`.
func (i *Interpreter) evaluateSuperExpression(n *ast.SuperExpression, env *runtime.Environment) (runtime.Value, error) {
	distance, ok := i.locals[n]
	if !ok {
		return nil, runtime.NewRuntimeError(n.Keyword, "Can't use 'super' outside of a class.")
	}
	superValue, err := env.GetAt(distance, "super")
	if err != nil {
		return nil, runtime.NewRuntimeError(n.Keyword, "%s", err.Error())
	}
	superclass, ok := superValue.(*runtime.ClassValue)
	if !ok {
		return nil, runtime.NewRuntimeError(n.Keyword, "Superclass must be a class.")
	}
	thisValue, err := env.GetAt(distance-1, "this")
	if err != nil {
		return nil, runtime.NewRuntimeError(n.Keyword, "%s", err.Error())
	}
	instance, ok := thisValue.(*runtime.InstanceValue)
	if !ok {
		return nil, runtime.NewRuntimeError(n.Keyword, "Can't use 'super' outside of a class.")
	}
	method := superclass.FindMethod(n.Method.Lexeme)
	if method == nil {
		return nil, runtime.NewRuntimeError(n.Method, "Undefined property '%s'.", n.Method.Lexeme)
	}
	return method.Bind(instance), nil
}
