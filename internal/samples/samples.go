// Package samples holds small programs for exercising the pass: generators
// to drive, and plain functions whose evaluation order is observable
// through tracing natives.
package samples

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wippyai/genlower/ast"
	"github.com/wippyai/genlower/interp"
	"github.com/wippyai/genlower/typesys"
)

// Sample is a named program.
type Sample struct {
	Build       func() *Built
	Name        string
	Description string
}

// Built is a freshly constructed sample program.
type Built struct {
	Program *ast.Program
	// Natives are free variables bound to tracing natives by Bind.
	Natives []*ast.Variable
	Args    []interp.Value
	// Only names the plain functions to lower.
	Only  []string
	Entry ast.FuncID
}

// Bind binds every native of b in. Each native appends "name(args)" to
// trace and returns the 1-based position of that entry.
func (b *Built) Bind(in *interp.Interp, trace *[]string) {
	for _, v := range b.Natives {
		name := v.Name
		in.SetGlobal(v, &interp.Native{
			Name: name,
			Fn: func(args []interp.Value) (interp.Value, error) {
				parts := make([]string, len(args))
				for i, a := range args {
					parts[i] = interp.Format(a)
				}
				*trace = append(*trace, fmt.Sprintf("%s(%s)", name, strings.Join(parts, ", ")))
				return len(*trace), nil
			},
		})
	}
}

var registry = map[string]Sample{}

func register(s Sample) {
	registry[s.Name] = s
}

// Names returns every sample name, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Get returns the named sample.
func Get(name string) (Sample, bool) {
	s, ok := registry[name]
	return s, ok
}

// GeneratorOf is the declared return type of a generator yielding elem.
func GeneratorOf(elem ast.Type) ast.Type {
	return ast.InstanceType(typesys.Generator, elem)
}

// builder wraps a function definition under construction.
type builder struct {
	prog *ast.Program
	fd   *ast.FuncDef
}

func newGenerator(prog *ast.Program, parent ast.FuncID, name string, elem ast.Type, params ...*ast.Variable) *builder {
	fd := prog.NewFunc(parent, name, params, GeneratorOf(elem))
	fd.Generator = true
	return &builder{prog: prog, fd: fd}
}

func newFunc(prog *ast.Program, parent ast.FuncID, name string, ret ast.Type, params ...*ast.Variable) *builder {
	return &builder{prog: prog, fd: prog.NewFunc(parent, name, params, ret)}
}

func (b *builder) local(name string, t ast.Type) *ast.Variable {
	v := ast.NewVariable(name, t)
	b.fd.AddLocal(v)
	return v
}

func (b *builder) body(stmts ...ast.Stmt) *ast.FuncDef {
	b.fd.Body = stmts
	return b.fd
}

func param(name string, t ast.Type) *ast.Variable {
	return ast.NewVariable(name, t)
}

func native(name string, result ast.Type, params ...ast.Type) *ast.Variable {
	return ast.NewVariable(name, ast.FuncType(result, params...))
}

func call(f *ast.Variable, args ...ast.Expr) *ast.Call {
	return ast.CallExpr(ast.Ref(f), args...)
}

func inc(v *ast.Variable) ast.Expr {
	return &ast.Unary{Op: ast.OpPostInc, X: ast.Ref(v), Typ: v.Type}
}
