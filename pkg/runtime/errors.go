package runtime

import (
	"fmt"

	"lox/interpreter-go/pkg/token"
)

// RuntimeError is the one error kind raised while evaluating. Token locates
// it for reporting.
type RuntimeError struct {
	Token   token.Token
	Message string
}

func NewRuntimeError(tok token.Token, format string, args ...any) *RuntimeError {
	return &RuntimeError{Token: tok, Message: fmt.Sprintf(format, args...)}
}

func (e *RuntimeError) Error() string {
	return e.Message
}
