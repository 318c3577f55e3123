// Package cps converts expressions to continuation-passing style.
//
// Every compound expression is rewritten so that each operand is
// evaluated once, left to right, and delivered to a single-parameter
// closure (its continuation) that performs the next step. A nil
// continuation is the identity: the transformed expression yields the
// value directly.
//
// Synthesized closures are allocated in the Program arena under the
// function being transformed, and each one adopts the closures that end
// up at the first level of its own body.
package cps

import (
	"go.uber.org/zap"

	"github.com/wippyai/genlower/ast"
	"github.com/wippyai/genlower/errors"
	"github.com/wippyai/genlower/lower/internal/naming"
)

// Config configures a Transformer.
type Config struct {
	Program *ast.Program
	Names   *naming.Namer
	Logger  *zap.Logger
}

// Transformer performs CPS conversion.
type Transformer struct {
	prog    *ast.Program
	names   *naming.Namer
	log     *zap.Logger
	created int
}

// New creates a Transformer.
func New(cfg Config) *Transformer {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	names := cfg.Names
	if names == nil {
		names = naming.New()
	}
	return &Transformer{prog: cfg.Program, names: names, log: log}
}

// Created returns the number of continuation closures allocated so far.
func (t *Transformer) Created() int {
	return t.created
}

// TransformFunction replaces every expression slot in the body of fd with
// its CPS form under the identity continuation.
func (t *Transformer) TransformFunction(fd *ast.FuncDef) error {
	before := t.created
	for _, s := range fd.Body {
		err := ast.RewriteExprs(s, func(e ast.Expr) (ast.Expr, error) {
			return t.Transform(fd.ID, e, nil)
		})
		if err != nil {
			return err
		}
	}
	t.log.Debug("cps: transformed function",
		zap.String("func", fd.DisplayName()),
		zap.Int("continuations", t.created-before))
	return nil
}

// Transform rewrites e so that its value is delivered to k. The closures it
// synthesizes are owned by owner until an enclosing continuation adopts them.
func (t *Transformer) Transform(owner ast.FuncID, e ast.Expr, k ast.Expr) (ast.Expr, error) {
	switch e := e.(type) {
	case *ast.Literal, *ast.LocalRef, *ast.This, *ast.FuncLit:
		return apply(k, e), nil

	case *ast.Unary:
		if e.Op.IsIncDec() {
			if _, ok := e.X.(*ast.LocalRef); !ok {
				return nil, errors.Unsupported(errors.PhaseCPS, "increment or decrement of a non-local operand")
			}
			return apply(k, e), nil
		}
		return t.sequence(owner, []ast.Expr{e.X}, k, func(v []ast.Expr) ast.Expr {
			return &ast.Unary{Op: e.Op, X: v[0], Typ: e.Typ}
		})

	case *ast.Binary:
		if e.Op.IsLogical() {
			return t.logical(owner, e, k)
		}
		return t.sequence(owner, []ast.Expr{e.X, e.Y}, k, func(v []ast.Expr) ast.Expr {
			return &ast.Binary{Op: e.Op, X: v[0], Y: v[1], Typ: e.Typ}
		})

	case *ast.Conditional:
		return t.conditional(owner, e, k)

	case *ast.Assign:
		target, ok := e.Target.(*ast.LocalRef)
		if !ok {
			return nil, errors.New(errors.PhaseCPS, errors.KindUnsupported).
				Detail("assignment to %s is not yet supported", describe(e.Target)).
				Value(e.Target).
				Build()
		}
		return t.sequence(owner, []ast.Expr{e.Value}, k, func(v []ast.Expr) ast.Expr {
			return &ast.Assign{Target: target, Value: v[0]}
		})

	case *ast.Call:
		// A function-typed field is an ordinary value; a method needs its
		// receiver at the call.
		if p, ok := e.Callee.(*ast.Property); ok {
			if ft, ok := p.Typ.(*ast.FunctionType); ok && !ft.Assignable {
				return nil, errors.Unsupported(errors.PhaseCPS, "calling method "+p.Name)
			}
		}
		operands := append([]ast.Expr{e.Callee}, e.Args...)
		return t.sequence(owner, operands, k, func(v []ast.Expr) ast.Expr {
			return &ast.Call{Callee: v[0], Args: v[1:], Typ: e.Typ}
		})

	case *ast.Property:
		if ft, ok := e.Typ.(*ast.FunctionType); ok && !ft.Assignable {
			return nil, errors.LogicFlaw(errors.PhaseCPS, "method %s referenced without a call", e.Name)
		}
		return t.sequence(owner, []ast.Expr{e.X}, k, func(v []ast.Expr) ast.Expr {
			return &ast.Property{X: v[0], Name: e.Name, Typ: e.Typ}
		})

	case *ast.New:
		return nil, errors.Unsupported(errors.PhaseCPS, "object construction inside a transformed expression")
	}
	return nil, errors.LogicFlaw(errors.PhaseCPS, "unexpected expression %T", e)
}

// sequence evaluates operands left to right, binding each to a fresh
// parameter, then delivers build(parameters) to k.
//
// The chain is built from the inside out: the innermost continuation
// receives the last operand.
func (t *Transformer) sequence(owner ast.FuncID, operands []ast.Expr, k ast.Expr, build func([]ast.Expr) ast.Expr) (ast.Expr, error) {
	params := make([]*ast.Variable, len(operands))
	refs := make([]ast.Expr, len(operands))
	for i, op := range operands {
		params[i] = t.names.FreshParam(op.Type())
		refs[i] = ast.Ref(params[i])
	}

	inner := apply(k, build(refs))
	for i := len(operands) - 1; i >= 0; i-- {
		cont, err := t.continuation(owner, params[i], inner)
		if err != nil {
			return nil, err
		}
		inner, err = t.Transform(owner, operands[i], t.prog.Lit(cont.ID))
		if err != nil {
			return nil, err
		}
	}
	return inner, nil
}

// conditional evaluates the condition, then runs exactly one branch. Both
// branches deliver to the same continuation, bound once to a local.
func (t *Transformer) conditional(owner ast.FuncID, e *ast.Conditional, k ast.Expr) (ast.Expr, error) {
	c := t.names.FreshParam(e.Cond.Type())
	fd := t.prog.NewFunc(owner, "", []*ast.Variable{c}, resultOf(k, e.Typ))
	t.created++

	prologue, shared := t.share(fd, k)
	then, err := t.Transform(owner, e.Then, shared)
	if err != nil {
		return nil, err
	}
	els, err := t.Transform(owner, e.Else, shared)
	if err != nil {
		return nil, err
	}

	ret := &ast.Conditional{Cond: ast.Ref(c), Then: then, Else: els, Typ: fd.ReturnType}
	if err := t.finish(fd, append(prologue, &ast.Return{X: ret})); err != nil {
		return nil, err
	}
	return t.Transform(owner, e.Cond, t.prog.Lit(fd.ID))
}

// logical keeps short-circuit evaluation: the right operand is only
// transformed into the branch that needs it.
func (t *Transformer) logical(owner ast.FuncID, e *ast.Binary, k ast.Expr) (ast.Expr, error) {
	l := t.names.FreshParam(e.X.Type())
	fd := t.prog.NewFunc(owner, "", []*ast.Variable{l}, resultOf(k, e.Typ))
	t.created++

	prologue, shared := t.share(fd, k)
	right, err := t.Transform(owner, e.Y, shared)
	if err != nil {
		return nil, err
	}
	left := apply(shared, ast.Ref(l))

	ret := &ast.Conditional{Cond: ast.Ref(l), Then: right, Else: left, Typ: fd.ReturnType}
	if e.Op == ast.OpOr {
		ret.Then, ret.Else = left, right
	}
	if err := t.finish(fd, append(prologue, &ast.Return{X: ret})); err != nil {
		return nil, err
	}
	return t.Transform(owner, e.X, t.prog.Lit(fd.ID))
}

// share binds k to a fresh local of fd when it is a literal closure, so
// that two branches can reference it without duplicating its code.
func (t *Transformer) share(fd *ast.FuncDef, k ast.Expr) ([]ast.Stmt, ast.Expr) {
	if _, ok := k.(*ast.FuncLit); !ok {
		return nil, k
	}
	v := t.names.FreshLocal(fd, k.Type())
	return []ast.Stmt{ast.Do(ast.Set(ast.Ref(v), k))}, ast.Ref(v)
}

// continuation allocates `function (param) { return body; }`.
func (t *Transformer) continuation(owner ast.FuncID, param *ast.Variable, body ast.Expr) (*ast.FuncDef, error) {
	fd := t.prog.NewFunc(owner, "", []*ast.Variable{param}, body.Type())
	t.created++
	if err := t.finish(fd, []ast.Stmt{&ast.Return{X: body}}); err != nil {
		return nil, err
	}
	return fd, nil
}

// finish installs body and moves the closures at its first level under fd.
func (t *Transformer) finish(fd *ast.FuncDef, body []ast.Stmt) error {
	fd.Body = body
	for _, id := range ast.StmtClosures(body) {
		if err := t.prog.Reparent(id, fd.ID); err != nil {
			return errors.Wrap(errors.PhaseCPS, errors.KindLogicFlaw, err, "adopting continuation closure")
		}
	}
	return nil
}

// apply delivers v to k; a nil k yields v itself.
func apply(k ast.Expr, v ast.Expr) ast.Expr {
	if k == nil {
		return v
	}
	return &ast.Call{Callee: k, Args: []ast.Expr{v}, Typ: resultOf(k, ast.Void)}
}

// resultOf returns the result type of continuation k, or def when k is nil.
func resultOf(k ast.Expr, def ast.Type) ast.Type {
	if k == nil {
		return def
	}
	if ft, ok := k.Type().(*ast.FunctionType); ok && ft.Result != nil {
		return ft.Result
	}
	return ast.Void
}

func describe(e ast.Expr) string {
	switch e := e.(type) {
	case *ast.Property:
		return "property " + e.Name
	case *ast.Binary:
		if e.Op == ast.OpIndex {
			return "an indexed element"
		}
	case *ast.This:
		return "this"
	}
	return "a non-local target"
}
