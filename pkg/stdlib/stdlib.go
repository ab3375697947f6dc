// Package stdlib holds the native functions every program starts with.
package stdlib

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"lox/interpreter-go/pkg/runtime"
)

// Natives returns fresh native function values in registration order.
func Natives() []*runtime.NativeFunctionValue {
	return []*runtime.NativeFunctionValue{
		{Name: "clock", Params: 0, Impl: clock},
		{Name: "read", Params: 1, Impl: read},
		{Name: "abs", Params: 1, Impl: unaryMath("abs", math.Abs)},
		{Name: "ceil", Params: 1, Impl: unaryMath("ceil", math.Ceil)},
		{Name: "floor", Params: 1, Impl: unaryMath("floor", math.Floor)},
		{Name: "round", Params: 1, Impl: unaryMath("round", math.RoundToEven)},
		{Name: "rand", Params: 0, Impl: random},
		{Name: "add", Params: 2, Impl: add},
		{Name: "strdoub", Params: 1, Impl: strdoub},
		{Name: "strint", Params: 1, Impl: strint},
	}
}

// Register defines every native in env.
func Register(env *runtime.Environment) {
	for _, fn := range Natives() {
		env.Define(fn.Name, fn)
	}
}

func clock(_ *runtime.NativeCallContext, _ []runtime.Value) (runtime.Value, error) {
	return runtime.NumberValue{Val: float64(time.Now().UnixMilli()) / 1000.0}, nil
}

// read writes its prompt and returns one line of input without the line
// terminator, or nil at end of input.
func read(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	if _, err := io.WriteString(ctx.Stdout, display(args[0])); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	line, err := ctx.Stdin.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read: %w", err)
	}
	if errors.Is(err, io.EOF) && line == "" {
		return runtime.NilValue{}, nil
	}
	line = strings.TrimRight(line, "\r\n")
	return runtime.StringValue{Val: line}, nil
}

func random(_ *runtime.NativeCallContext, _ []runtime.Value) (runtime.Value, error) {
	return runtime.NumberValue{Val: rand.Float64()}, nil
}

func add(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	a, err := number("add", args[0])
	if err != nil {
		return nil, err
	}
	b, err := number("add", args[1])
	if err != nil {
		return nil, err
	}
	return runtime.NumberValue{Val: a + b}, nil
}

// strdoub parses the argument's text as a float, yielding 0 on failure.
func strdoub(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(display(args[0])), 64)
	if err != nil {
		return runtime.NumberValue{Val: 0}, nil
	}
	return runtime.NumberValue{Val: f}, nil
}

// strint parses the argument's text as a 32-bit integer, yielding 0 on
// failure.
func strint(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(display(args[0])), 10, 32)
	if err != nil {
		return runtime.NumberValue{Val: 0}, nil
	}
	return runtime.NumberValue{Val: float64(n)}, nil
}

func unaryMath(name string, fn func(float64) float64) runtime.NativeFunc {
	return func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		x, err := number(name, args[0])
		if err != nil {
			return nil, err
		}
		return runtime.NumberValue{Val: fn(x)}, nil
	}
}

func number(name string, value runtime.Value) (float64, error) {
	n, ok := value.(runtime.NumberValue)
	if !ok {
		return 0, fmt.Errorf("%s expects a number, got %s", name, value.Kind())
	}
	return n.Val, nil
}

// display renders scalars for natives that take text. Non-scalars use
// their String form.
func display(value runtime.Value) string {
	switch v := value.(type) {
	case runtime.NilValue:
		return "nil"
	case runtime.BoolValue:
		return strconv.FormatBool(v.Val)
	case runtime.NumberValue:
		return runtime.FormatNumber(v.Val)
	case runtime.StringValue:
		return v.Val
	case fmt.Stringer:
		return v.String()
	default:
		return value.Kind().String()
	}
}
