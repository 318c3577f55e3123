package typesys

import (
	"github.com/wippyai/genlower/ast"
	"github.com/wippyai/genlower/errors"
)

// Builtin symbol names.
const (
	StopIteration = "StopIteration"
	Generator     = "__generator"
	ValueField    = "__value"
	NextField     = "__next"
)

// Registry maps names to classes and templates.
//
// Instantiations are cached per template by type identity of the
// arguments, so two requests for the same generator-of-T yield the same
// *ast.Class while distinct classes that share a name stay apart.
// A Registry is not safe for concurrent use.
type Registry struct {
	classes   map[string]*ast.Class
	templates map[string]*ast.Template
	instances map[*ast.Template][]*ast.Class
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		classes:   make(map[string]*ast.Class),
		templates: make(map[string]*ast.Template),
		instances: make(map[*ast.Template][]*ast.Class),
	}
}

// NewBuiltinRegistry creates a Registry holding StopIteration and the
// generator template.
func NewBuiltinRegistry() *Registry {
	r := NewRegistry()
	r.RegisterClass(&ast.Class{Name: StopIteration, Analyzed: true})
	r.RegisterTemplate(&ast.Template{
		Name:   Generator,
		Params: []string{"T"},
		Fields: []ast.Field{
			{Name: ValueField, Type: &ast.TypeParam{Name: "T"}},
			{Name: NextField, Type: ast.FuncType(ast.Void)},
		},
	})
	return r
}

// RegisterClass adds a class, replacing any class of the same name.
func (r *Registry) RegisterClass(c *ast.Class) {
	r.classes[c.Name] = c
}

// RegisterTemplate adds a template, replacing any template of the same name.
func (r *Registry) RegisterTemplate(t *ast.Template) {
	r.templates[t.Name] = t
}

// LookupClass returns the class registered under name.
func (r *Registry) LookupClass(name string) (*ast.Class, error) {
	c, ok := r.classes[name]
	if !ok {
		return nil, errors.NotFound(errors.PhaseSetup, "class", name)
	}
	return c, nil
}

// LookupTemplate returns the template registered under name.
func (r *Registry) LookupTemplate(name string) (*ast.Template, error) {
	t, ok := r.templates[name]
	if !ok {
		return nil, errors.NotFound(errors.PhaseSetup, "template", name)
	}
	return t, nil
}

// Instantiate returns the concrete class for t applied to args.
// The result is not analyzed; see Analyze.
func (r *Registry) Instantiate(t *ast.Template, args []ast.Type) (*ast.Class, error) {
	if len(args) != len(t.Params) {
		return nil, errors.New(errors.PhaseGenerator, errors.KindTypeError).
			Detail("template %s expects %d type arguments, got %d", t.Name, len(t.Params), len(args)).
			Value(t.Name).
			Build()
	}

	for _, c := range r.instances[t] {
		if sameTypes(c.TypeArgs, args) {
			return c, nil
		}
	}

	bindings := make(map[string]ast.Type, len(args))
	for i, p := range t.Params {
		bindings[p] = args[i]
	}

	c := &ast.Class{
		Name:     t.Name,
		Template: t,
		TypeArgs: args,
	}
	for _, f := range t.Fields {
		c.Fields = append(c.Fields, ast.Field{Name: f.Name, Type: substitute(f.Type, bindings)})
	}
	for _, p := range t.CtorParams {
		c.CtorParams = append(c.CtorParams, substitute(p, bindings))
	}

	r.instances[t] = append(r.instances[t], c)
	return c, nil
}

// Analyze checks that no template parameter survives in c and marks it
// analyzed. Analyzing an analyzed class is a no-op.
func (r *Registry) Analyze(c *ast.Class) error {
	if c.Analyzed {
		return nil
	}
	for _, f := range c.Fields {
		if p := unresolved(f.Type); p != "" {
			return errors.New(errors.PhaseGenerator, errors.KindTypeError).
				Detail("field %s of %s has unresolved type parameter %s", f.Name, c, p).
				Build()
		}
	}
	for i, t := range c.CtorParams {
		if p := unresolved(t); p != "" {
			return errors.New(errors.PhaseGenerator, errors.KindTypeError).
				Detail("constructor parameter %d of %s has unresolved type parameter %s", i, c, p).
				Build()
		}
	}
	c.Analyzed = true
	return nil
}

// CheckNew validates a synthesized `new` expression the way semantic
// analysis validates a written one.
func (r *Registry) CheckNew(n *ast.New) error {
	if n.Class == nil {
		return errors.TypeError(errors.PhaseGenerator, "new without a class", nil)
	}
	if !n.Class.Analyzed {
		return errors.TypeError(errors.PhaseGenerator, "new of unanalyzed class "+n.Class.String(), nil)
	}
	if len(n.Args) != len(n.Class.CtorParams) {
		return errors.New(errors.PhaseGenerator, errors.KindTypeError).
			Detail("new %s: expected %d arguments, got %d", n.Class, len(n.Class.CtorParams), len(n.Args)).
			Build()
	}
	return nil
}

func sameTypes(a, b []ast.Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !sameType(a[i], b[i]) {
			return false
		}
	}
	return true
}

// sameType compares by identity: classes by pointer, the rest
// structurally.
func sameType(a, b ast.Type) bool {
	switch a := a.(type) {
	case *ast.ObjectType:
		b, ok := b.(*ast.ObjectType)
		return ok && a.Class == b.Class
	case *ast.FunctionType:
		b, ok := b.(*ast.FunctionType)
		return ok && a.Assignable == b.Assignable &&
			sameType(a.Result, b.Result) && sameTypes(a.Params, b.Params)
	case *ast.Primitive:
		b, ok := b.(*ast.Primitive)
		return ok && a.Name == b.Name
	case *ast.TypeParam:
		b, ok := b.(*ast.TypeParam)
		return ok && a.Name == b.Name
	case nil:
		return b == nil
	}
	return a == b
}

func substitute(t ast.Type, bindings map[string]ast.Type) ast.Type {
	switch t := t.(type) {
	case *ast.TypeParam:
		if b, ok := bindings[t.Name]; ok {
			return b
		}
	case *ast.FunctionType:
		params := make([]ast.Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = substitute(p, bindings)
		}
		return &ast.FunctionType{
			Params:     params,
			Result:     substitute(t.Result, bindings),
			Assignable: t.Assignable,
		}
	}
	return t
}

// unresolved returns the name of the first template parameter in t, or "".
func unresolved(t ast.Type) string {
	switch t := t.(type) {
	case *ast.TypeParam:
		return t.Name
	case *ast.FunctionType:
		for _, p := range t.Params {
			if n := unresolved(p); n != "" {
				return n
			}
		}
		return unresolved(t.Result)
	}
	return ""
}
