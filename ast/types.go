package ast

import "strings"

// Type is the static type attached to every expression.
// The pass treats types as opaque beyond void checks and function shapes.
type Type interface {
	String() string
	isType()
}

// VoidType is the type of expressions that produce no value.
type VoidType struct{}

func (VoidType) String() string { return "void" }
func (VoidType) isType()        {}

// Void is the shared void type.
var Void Type = VoidType{}

// Primitive is a builtin value type such as int or string.
type Primitive struct {
	Name string
}

func (t *Primitive) String() string { return t.Name }
func (*Primitive) isType()          {}

// Builtin primitive types.
var (
	IntType     = &Primitive{Name: "int"}
	NumberType  = &Primitive{Name: "number"}
	StringType  = &Primitive{Name: "string"}
	BoolType    = &Primitive{Name: "boolean"}
	VariantType = &Primitive{Name: "variant"}
)

// FunctionType is the type of function values.
// Assignable distinguishes function-valued variables and fields from methods.
type FunctionType struct {
	Result     Type
	Params     []Type
	Assignable bool
}

func (t *FunctionType) String() string {
	var b strings.Builder
	b.WriteString("function (")
	for i, p := range t.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(typeString(p))
	}
	b.WriteString(") : ")
	b.WriteString(typeString(t.Result))
	return b.String()
}

func (*FunctionType) isType() {}

// FuncType returns an assignable function type.
func FuncType(result Type, params ...Type) *FunctionType {
	return &FunctionType{Params: params, Result: result, Assignable: true}
}

// ObjectType is the type of class instances.
type ObjectType struct {
	Class *Class
}

func (t *ObjectType) String() string { return t.Class.String() }
func (*ObjectType) isType()          {}

// TypeParam is an unresolved template parameter.
type TypeParam struct {
	Name string
}

func (t *TypeParam) String() string { return t.Name }
func (*TypeParam) isType()          {}

// Field is a class or template member variable.
type Field struct {
	Type Type
	Name string
}

// Class is a concrete class, either declared directly or instantiated
// from a Template.
type Class struct {
	Template   *Template
	Name       string
	TypeArgs   []Type
	Fields     []Field
	CtorParams []Type
	Analyzed   bool
}

func (c *Class) String() string {
	if len(c.TypeArgs) == 0 {
		return c.Name
	}
	args := make([]string, len(c.TypeArgs))
	for i, a := range c.TypeArgs {
		args[i] = typeString(a)
	}
	return c.Name + ".<" + strings.Join(args, ", ") + ">"
}

// Field looks up a member variable by name.
func (c *Class) Field(name string) (Field, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Template is a generic class awaiting instantiation.
type Template struct {
	Name       string
	Params     []string
	Fields     []Field
	CtorParams []Type
}

// InstanceType returns the object type of a class named by its template
// name and type arguments, as written in a declared return type.
func InstanceType(name string, args ...Type) *ObjectType {
	return &ObjectType{Class: &Class{Name: name, TypeArgs: args}}
}

// IsVoid reports whether t is absent or void.
func IsVoid(t Type) bool {
	if t == nil {
		return true
	}
	_, ok := t.(VoidType)
	return ok
}

func typeString(t Type) string {
	if t == nil {
		return "void"
	}
	return t.String()
}

// Variable is a parameter or local variable. Variables are compared by identity.
type Variable struct {
	Type Type
	Name string
}

// NewVariable creates a variable.
func NewVariable(name string, t Type) *Variable {
	return &Variable{Name: name, Type: t}
}
