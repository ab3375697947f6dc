package interpreter

import (
	"fmt"
	"strconv"

	"lox/interpreter-go/pkg/runtime"
)

// valueToString renders a value the way `print` shows it.
func valueToString(value runtime.Value) string {
	switch v := value.(type) {
	case nil, runtime.NilValue:
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
		return fmt.Sprintf("<%s>", value.Kind())
	}
}

// Stringify is the exported form of the print rendering.
func Stringify(value runtime.Value) string {
	return valueToString(value)
}
