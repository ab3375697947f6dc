package interpreter

import (
	"errors"
	"fmt"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/runtime"
	"lox/interpreter-go/pkg/token"
)

func (i *Interpreter) evaluateExpression(node ast.Expression, env *runtime.Environment) (runtime.Value, error) {
	switch n := node.(type) {
	case *ast.LiteralExpression:
		return literalValue(n.Value), nil
	case *ast.GroupingExpression:
		return i.evaluateExpression(n.Inner, env)
	case *ast.UnaryExpression:
		return i.evaluateUnaryExpression(n, env)
	case *ast.BinaryExpression:
		return i.evaluateBinaryExpression(n, env)
	case *ast.LogicalExpression:
		left, err := i.evaluateExpression(n.Left, env)
		if err != nil {
			return nil, err
		}
		if n.Operator.Type == token.Or {
			if isTruthy(left) {
				return left, nil
			}
		} else if !isTruthy(left) {
			return left, nil
		}
		return i.evaluateExpression(n.Right, env)
	case *ast.VariableExpression:
		return i.lookupVariable(n.Name, n, env)
	case *ast.AssignmentExpression:
		value, err := i.evaluateExpression(n.Value, env)
		if err != nil {
			return nil, err
		}
		if distance, ok := i.locals[n]; ok {
			err = env.AssignAt(distance, n.Name.Lexeme, value)
		} else {
			err = i.global.Assign(n.Name.Lexeme, value)
		}
		if err != nil {
			return nil, runtime.NewRuntimeError(n.Name, "%s", err.Error())
		}
		return value, nil
	case *ast.CallExpression:
		return i.evaluateCallExpression(n, env)
	case *ast.GetExpression:
		return i.evaluateGetExpression(n, env)
	case *ast.SetExpression:
		return i.evaluateSetExpression(n, env)
	case *ast.ThisExpression:
		return i.lookupVariable(n.Keyword, n, env)
	case *ast.SuperExpression:
		return i.evaluateSuperExpression(n, env)
	default:
		return nil, fmt.Errorf("interpreter: unsupported expression %T", node)
	}
}

// lookupVariable reads a resolved local by distance, or the global scope
// when the resolver left the reference unrecorded.
func (i *Interpreter) lookupVariable(name token.Token, expr ast.Expression, env *runtime.Environment) (runtime.Value, error) {
	var (
		value runtime.Value
		err   error
	)
	if distance, ok := i.locals[expr]; ok {
		value, err = env.GetAt(distance, name.Lexeme)
	} else {
		value, err = i.global.Get(name.Lexeme)
	}
	if err != nil {
		return nil, runtime.NewRuntimeError(name, "%s", err.Error())
	}
	return value, nil
}

func (i *Interpreter) evaluateUnaryExpression(n *ast.UnaryExpression, env *runtime.Environment) (runtime.Value, error) {
	right, err := i.evaluateExpression(n.Right, env)
	if err != nil {
		return nil, err
	}
	switch n.Operator.Type {
	case token.Bang:
		return runtime.BoolValue{Val: !isTruthy(right)}, nil
	case token.Minus:
		num, ok := right.(runtime.NumberValue)
		if !ok {
			return nil, runtime.NewRuntimeError(n.Operator, "Operand must be a number.")
		}
		return runtime.NumberValue{Val: -num.Val}, nil
	default:
		return nil, runtime.NewRuntimeError(n.Operator, "Unknown unary operator '%s'.", n.Operator.Lexeme)
	}
}

func (i *Interpreter) evaluateBinaryExpression(n *ast.BinaryExpression, env *runtime.Environment) (runtime.Value, error) {
	left, err := i.evaluateExpression(n.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := i.evaluateExpression(n.Right, env)
	if err != nil {
		return nil, err
	}

	switch n.Operator.Type {
	case token.EqualEqual:
		return runtime.BoolValue{Val: valuesEqual(left, right)}, nil
	case token.BangEqual:
		return runtime.BoolValue{Val: !valuesEqual(left, right)}, nil
	case token.Plus:
		return addValues(n.Operator, left, right)
	}

	l, r, err := numberOperands(n.Operator, left, right)
	if err != nil {
		return nil, err
	}
	switch n.Operator.Type {
	case token.Minus:
		return runtime.NumberValue{Val: l - r}, nil
	case token.Star:
		return runtime.NumberValue{Val: l * r}, nil
	case token.Slash:
		return runtime.NumberValue{Val: l / r}, nil
	case token.Greater:
		return runtime.BoolValue{Val: l > r}, nil
	case token.GreaterEqual:
		return runtime.BoolValue{Val: l >= r}, nil
	case token.Less:
		return runtime.BoolValue{Val: l < r}, nil
	case token.LessEqual:
		return runtime.BoolValue{Val: l <= r}, nil
	default:
		return nil, runtime.NewRuntimeError(n.Operator, "Unknown binary operator '%s'.", n.Operator.Lexeme)
	}
}

// addValues adds numbers and concatenates strings. When exactly one side
// is a string the other side is rendered and concatenated too.
func addValues(operator token.Token, left, right runtime.Value) (runtime.Value, error) {
	switch l := left.(type) {
	case runtime.NumberValue:
		if r, ok := right.(runtime.NumberValue); ok {
			return runtime.NumberValue{Val: l.Val + r.Val}, nil
		}
	case runtime.StringValue:
		if r, ok := right.(runtime.StringValue); ok {
			return runtime.StringValue{Val: l.Val + r.Val}, nil
		}
	}
	_, leftIsString := left.(runtime.StringValue)
	_, rightIsString := right.(runtime.StringValue)
	if leftIsString || rightIsString {
		return runtime.StringValue{Val: valueToString(left) + valueToString(right)}, nil
	}
	return nil, runtime.NewRuntimeError(operator, "Operands must be two numbers or two strings.")
}

func numberOperands(operator token.Token, left, right runtime.Value) (float64, float64, error) {
	l, lok := left.(runtime.NumberValue)
	r, rok := right.(runtime.NumberValue)
	if !lok || !rok {
		return 0, 0, runtime.NewRuntimeError(operator, "Operands must be numbers.")
	}
	return l.Val, r.Val, nil
}

func (i *Interpreter) evaluateCallExpression(call *ast.CallExpression, env *runtime.Environment) (runtime.Value, error) {
	callee, err := i.evaluateExpression(call.Callee, env)
	if err != nil {
		return nil, err
	}
	args := make([]runtime.Value, 0, len(call.Arguments))
	for _, argExpr := range call.Arguments {
		arg, err := i.evaluateExpression(argExpr, env)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}

	fn, ok := callee.(runtime.Callable)
	if !ok {
		return nil, runtime.NewRuntimeError(call.Paren, "Can only call functions and classes.")
	}
	if len(args) != fn.Arity() {
		return nil, runtime.NewRuntimeError(call.Paren, "Expected %d arguments but got %d.", fn.Arity(), len(args))
	}
	result, err := fn.Call(i, args)
	if err != nil {
		var rtErr *runtime.RuntimeError
		if errors.As(err, &rtErr) {
			return nil, err
		}
		return nil, runtime.NewRuntimeError(call.Paren, "%s", err.Error())
	}
	return result, nil
}

func literalValue(value any) runtime.Value {
	switch v := value.(type) {
	case nil:
		return runtime.NilValue{}
	case bool:
		return runtime.BoolValue{Val: v}
	case float64:
		return runtime.NumberValue{Val: v}
	case string:
		return runtime.StringValue{Val: v}
	default:
		return runtime.NilValue{}
	}
}

// isTruthy treats nil and false as false and everything else as true.
func isTruthy(value runtime.Value) bool {
	switch v := value.(type) {
	case nil, runtime.NilValue:
		return false
	case runtime.BoolValue:
		return v.Val
	default:
		return true
	}
}

// valuesEqual compares scalars by value and objects by identity. NaN
// equals NaN.
func valuesEqual(left, right runtime.Value) bool {
	switch l := left.(type) {
	case runtime.NilValue:
		_, ok := right.(runtime.NilValue)
		return ok
	case runtime.BoolValue:
		r, ok := right.(runtime.BoolValue)
		return ok && l.Val == r.Val
	case runtime.NumberValue:
		r, ok := right.(runtime.NumberValue)
		if !ok {
			return false
		}
		if l.Val != l.Val && r.Val != r.Val {
			return true
		}
		return l.Val == r.Val
	case runtime.StringValue:
		r, ok := right.(runtime.StringValue)
		return ok && l.Val == r.Val
	default:
		return left == right
	}
}
