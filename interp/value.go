package interp

import (
	"fmt"
	"math"
	"strconv"

	"github.com/wippyai/genlower/ast"
)

// Value is any runtime value.
type Value = any

// Closure is a function value bound to the frame it was created in.
type Closure struct {
	Func *ast.FuncDef
	env  *frame
	this Value
}

// Native is a function implemented in Go.
type Native struct {
	Fn   func(args []Value) (Value, error)
	Name string
}

// Object is a class instance.
type Object struct {
	Class  *ast.Class
	Fields map[string]Value
}

// Thrown is a value raised by a throw statement and not caught.
type Thrown struct {
	Value Value
}

func (t *Thrown) Error() string {
	return "uncaught exception: " + Format(t.Value)
}

// IsInstance reports whether v is an object of the named class.
func IsInstance(v Value, class string) bool {
	o, ok := v.(*Object)
	return ok && o.Class != nil && o.Class.Name == class
}

// Truthy converts v to a boolean the way a condition does.
func Truthy(v Value) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case int:
		return v != 0
	case float64:
		return v != 0 && !math.IsNaN(v)
	case string:
		return v != ""
	}
	return true
}

// Equal is strict equality, with ints and floats compared numerically.
func Equal(a, b Value) bool {
	if x, ok := number(a); ok {
		if y, ok := number(b); ok {
			return x == y
		}
		return false
	}
	return a == b
}

// Format renders v for logs and traces.
func Format(v Value) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(v)
	case *Closure:
		return "function " + v.Func.DisplayName()
	case *Native:
		return "native " + v.Name
	case *Object:
		if v.Class == nil {
			return "object"
		}
		return v.Class.String()
	}
	return fmt.Sprint(v)
}

func number(v Value) (float64, bool) {
	switch v := v.(type) {
	case int:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

func typeOf(v Value) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case int, float64:
		return "number"
	case string:
		return "string"
	case *Closure, *Native:
		return "function"
	}
	return "object"
}
