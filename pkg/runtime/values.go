package runtime

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"

	"lox/interpreter-go/pkg/ast"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindString
	KindFunction
	KindNativeFunction
	KindClass
	KindInstance
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindFunction:
		return "function"
	case KindNativeFunction:
		return "native_function"
	case KindClass:
		return "class"
	case KindInstance:
		return "instance"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type NilValue struct{}

func (NilValue) Kind() Kind { return KindNil }

type BoolValue struct {
	Val bool
}

func (v BoolValue) Kind() Kind { return KindBool }

type NumberValue struct {
	Val float64
}

func (v NumberValue) Kind() Kind { return KindNumber }

// FormatNumber renders a number the way `print` shows it. Whole numbers
// drop the fractional part; magnitudes at or above 1e21 or below 1e-7 use
// exponent form.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	if abs := math.Abs(f); abs != 0 && (abs >= 1e21 || abs < 1e-7) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind { return KindString }

//-----------------------------------------------------------------------------
// Callables
//-----------------------------------------------------------------------------

// Executor is the slice of the interpreter that callables need.
type Executor interface {
	// ExecuteBody runs statements in env. returned reports whether a
	// return statement completed the body, in which case result holds the
	// returned value.
	ExecuteBody(body []ast.Statement, env *Environment) (result Value, returned bool, err error)
	Globals() *Environment
	Stdout() io.Writer
	Stdin() *bufio.Reader
}

// Callable is implemented by user functions, natives and classes.
type Callable interface {
	Value
	Arity() int
	Call(exec Executor, args []Value) (Value, error)
}

// NativeCallContext provides hooks for native functions.
type NativeCallContext struct {
	Env    *Environment
	Stdout io.Writer
	Stdin  *bufio.Reader
}

type NativeFunc func(*NativeCallContext, []Value) (Value, error)

type NativeFunctionValue struct {
	Name   string
	Params int
	Impl   NativeFunc
}

func (v *NativeFunctionValue) Kind() Kind { return KindNativeFunction }

func (v *NativeFunctionValue) Arity() int { return v.Params }

func (v *NativeFunctionValue) Call(exec Executor, args []Value) (Value, error) {
	ctx := &NativeCallContext{Env: exec.Globals(), Stdout: exec.Stdout(), Stdin: exec.Stdin()}
	result, err := v.Impl(ctx, args)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return NilValue{}, nil
	}
	return result, nil
}

func (v *NativeFunctionValue) String() string {
	return fmt.Sprintf("<native fn %s>", v.Name)
}
