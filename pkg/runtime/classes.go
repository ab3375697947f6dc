package runtime

import (
	"fmt"
	"sort"

	"lox/interpreter-go/pkg/token"
)

// ClassValue holds a method table and an optional superclass. Calling a
// class constructs an instance.
type ClassValue struct {
	Name       string
	Superclass *ClassValue
	Methods    map[string]*FunctionValue
}

func NewClass(name string, superclass *ClassValue, methods map[string]*FunctionValue) *ClassValue {
	if methods == nil {
		methods = make(map[string]*FunctionValue)
	}
	return &ClassValue{Name: name, Superclass: superclass, Methods: methods}
}

func (c *ClassValue) Kind() Kind { return KindClass }

// FindMethod looks up name on this class, then up the superclass chain.
func (c *ClassValue) FindMethod(name string) *FunctionValue {
	for class := c; class != nil; class = class.Superclass {
		if method, ok := class.Methods[name]; ok {
			return method
		}
	}
	return nil
}

// MethodNames lists methods declared directly on the class.
func (c *ClassValue) MethodNames() []string {
	names := make([]string, 0, len(c.Methods))
	for name := range c.Methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Arity is the initializer's arity, or zero without one.
func (c *ClassValue) Arity() int {
	if initializer := c.FindMethod("init"); initializer != nil {
		return initializer.Arity()
	}
	return 0
}

func (c *ClassValue) Call(exec Executor, args []Value) (Value, error) {
	instance := NewInstance(c)
	if initializer := c.FindMethod("init"); initializer != nil {
		if _, err := initializer.Bind(instance).Call(exec, args); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

func (c *ClassValue) String() string { return c.Name }

// InstanceValue is an object created by calling a class. Fields are added
// on first assignment.
type InstanceValue struct {
	Class  *ClassValue
	Fields map[string]Value
}

func NewInstance(class *ClassValue) *InstanceValue {
	return &InstanceValue{Class: class, Fields: make(map[string]Value)}
}

func (i *InstanceValue) Kind() Kind { return KindInstance }

// Get reads a field, falling back to a method bound to this instance.
// Fields shadow methods.
func (i *InstanceValue) Get(name token.Token) (Value, error) {
	if v, ok := i.Fields[name.Lexeme]; ok {
		return v, nil
	}
	if method := i.Class.FindMethod(name.Lexeme); method != nil {
		return method.Bind(i), nil
	}
	return nil, NewRuntimeError(name, "Undefined property '%s'.", name.Lexeme)
}

func (i *InstanceValue) Set(name token.Token, value Value) {
	i.Fields[name.Lexeme] = value
}

func (i *InstanceValue) String() string {
	return fmt.Sprintf("%s instance", i.Class.Name)
}
