package runtime

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUndefinedVariable is wrapped by every lookup or assignment miss.
var ErrUndefinedVariable = errors.New("undefined variable")

type undefinedVariableError struct {
	name string
}

func (e undefinedVariableError) Error() string {
	return fmt.Sprintf("Undefined variable '%s'.", e.name)
}

func (e undefinedVariableError) Unwrap() error { return ErrUndefinedVariable }

// Environment is one lexical scope: globals, a call's activation record, a
// block, or the frame that binds `this` / `super`. Closures share
// environments by pointer, so assignments are visible to every holder.
type Environment struct {
	values map[string]Value
	parent *Environment
}

// NewEnvironment creates a new environment, optionally nested under a parent.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		values: make(map[string]Value),
		parent: parent,
	}
}

// Define inserts or shadows a binding in the current scope. Redefinition
// in the same scope replaces the old value.
func (e *Environment) Define(name string, value Value) {
	e.values[name] = value
}

// Assign updates an existing binding in the first scope where it appears.
func (e *Environment) Assign(name string, value Value) error {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.values[name]; ok {
			env.values[name] = value
			return nil
		}
	}
	return undefinedVariableError{name: name}
}

// Get retrieves a binding, searching outward through the scope chain.
func (e *Environment) Get(name string) (Value, error) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.values[name]; ok {
			return v, nil
		}
	}
	return nil, undefinedVariableError{name: name}
}

// Ancestor walks distance parent links. It returns nil if the chain is
// shorter than distance.
func (e *Environment) Ancestor(distance int) *Environment {
	env := e
	for i := 0; i < distance && env != nil; i++ {
		env = env.parent
	}
	return env
}

// GetAt reads name from exactly the scope distance links up.
func (e *Environment) GetAt(distance int, name string) (Value, error) {
	env := e.Ancestor(distance)
	if env == nil {
		return nil, undefinedVariableError{name: name}
	}
	v, ok := env.values[name]
	if !ok {
		return nil, undefinedVariableError{name: name}
	}
	return v, nil
}

// AssignAt writes name into exactly the scope distance links up.
func (e *Environment) AssignAt(distance int, name string, value Value) error {
	env := e.Ancestor(distance)
	if env == nil {
		return undefinedVariableError{name: name}
	}
	if _, ok := env.values[name]; !ok {
		return undefinedVariableError{name: name}
	}
	env.values[name] = value
	return nil
}

// Keys returns the bindings in sorted order (useful for determinism in tests).
func (e *Environment) Keys() []string {
	keys := make([]string, 0, len(e.values))
	for k := range e.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
