// Package elim removes goto and label statements from a lowered body.
//
// Every label gets a zero-argument, function-typed local (its label
// variable). The statements of each labelled block become a closure
// (a fragment) stored in that variable, and every jump becomes a tail
// call through the variable:
//
//	goto L                        ->  return L();
//	if c goto A else goto B       ->  if (c) { return A(); } else { return B(); }
//	dispatch x: 1 -> A, default B ->  switch (x) { case 1: return A(); default: return B(); }
//
// The function body becomes the label variable assignments followed by the
// entry block, which starts the chain.
package elim

import (
	"go.uber.org/zap"

	"github.com/wippyai/genlower/ast"
	"github.com/wippyai/genlower/errors"
	"github.com/wippyai/genlower/lower/internal/cfg"
)

// Fragment is one labelled block, handed to a FragmentHook after its jumps
// are converted and before it is wrapped into a closure.
type Fragment struct {
	vars  map[string]*ast.Variable
	Label string
	Body  []ast.Stmt
}

// LabelVar returns the label variable for label, or nil.
func (f *Fragment) LabelVar(label string) *ast.Variable {
	return f.vars[label]
}

// JumpTarget reports the label variable s tail-calls, if s is a converted
// jump.
func (f *Fragment) JumpTarget(s ast.Stmt) (*ast.Variable, bool) {
	ret, ok := s.(*ast.Return)
	if !ok {
		return nil, false
	}
	call, ok := ret.X.(*ast.Call)
	if !ok || len(call.Args) != 0 {
		return nil, false
	}
	ref, ok := call.Callee.(*ast.LocalRef)
	if !ok || f.vars[ref.Var.Name] != ref.Var {
		return nil, false
	}
	return ref.Var, true
}

// FragmentHook rewrites a fragment body in place.
type FragmentHook func(f *Fragment) error

// Config configures an Eliminator.
type Config struct {
	Program *ast.Program
	Logger  *zap.Logger
}

// Eliminator is the goto elimination engine.
type Eliminator struct {
	prog *ast.Program
	log  *zap.Logger
}

// Result describes one elimination.
type Result struct {
	// Entry holds the statements of the rewritten body that came from the
	// entry block, after the label variable assignments.
	Entry       []ast.Stmt
	LabelVars   map[string]*ast.Variable
	Unreachable []string
	Fragments   int
	Adopted     int
	Dropped     int
}

// New creates an Eliminator.
func New(cfg Config) *Eliminator {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Eliminator{prog: cfg.Program, log: log}
}

// Eliminate fragments the lowered body of fd. Fragments return the
// declared return type of fd. hook may be nil.
func (e *Eliminator) Eliminate(fd *ast.FuncDef, hook FragmentHook) (*Result, error) {
	return e.EliminateWithResult(fd, fd.ReturnType, hook)
}

// EliminateWithResult is Eliminate with every fragment, and so every label
// variable, typed to return result.
func (e *Eliminator) EliminateWithResult(fd *ast.FuncDef, result ast.Type, hook FragmentHook) (*Result, error) {
	g, err := cfg.Build(fd.Body)
	if err != nil {
		return nil, err
	}

	res := &Result{
		LabelVars:   make(map[string]*ast.Variable),
		Unreachable: g.Unreachable(),
	}
	if len(res.Unreachable) > 0 {
		e.log.Debug("elim: unreachable fragments",
			zap.String("func", fd.DisplayName()),
			zap.Strings("labels", res.Unreachable))
	}

	labels := g.Labels()
	for _, l := range labels {
		v := ast.NewVariable(l, ast.FuncType(result))
		fd.AddLocal(v)
		res.LabelVars[l] = v
	}

	var assigns []ast.Stmt
	for _, l := range labels {
		b := g.Block(l)
		res.Dropped += b.Dropped

		frag := &Fragment{vars: res.LabelVars, Label: l, Body: convert(b.Stmts, res.LabelVars)}
		if hook != nil {
			if err := hook(frag); err != nil {
				return nil, err
			}
		}

		def := e.prog.NewFunc(fd.ID, "", nil, result)
		def.Body = frag.Body
		for _, id := range ast.StmtClosures(def.Body) {
			if err := e.prog.Reparent(id, def.ID); err != nil {
				return nil, errors.Wrap(errors.PhaseEliminate, errors.KindLogicFlaw, err, "moving closure into fragment "+l)
			}
			res.Adopted++
			e.log.Debug("elim: closure moved into fragment",
				zap.String("label", l),
				zap.Uint32("closure", uint32(id)))
		}

		assigns = append(assigns, ast.Do(ast.Set(ast.Ref(res.LabelVars[l]), e.prog.Lit(def.ID))))
		res.Fragments++
		e.log.Debug("elim: fragment",
			zap.String("label", l),
			zap.Int("statements", len(def.Body)))
	}

	entry := g.Block(cfg.Entry)
	res.Dropped += entry.Dropped
	res.Entry = convert(entry.Stmts, res.LabelVars)
	fd.Body = append(assigns, res.Entry...)

	e.log.Debug("elim: eliminated",
		zap.String("func", fd.DisplayName()),
		zap.Int("fragments", res.Fragments),
		zap.Int("adopted", res.Adopted),
		zap.Int("dropped", res.Dropped))
	return res, nil
}

// convert rewrites the jumps of a block into tail calls.
func convert(stmts []ast.Stmt, vars map[string]*ast.Variable) []ast.Stmt {
	out := make([]ast.Stmt, 0, len(stmts))
	for _, s := range stmts {
		switch s := s.(type) {
		case *ast.Goto:
			out = append(out, tailCall(vars[s.Name]))
		case *ast.CondGoto:
			out = append(out, &ast.If{
				Cond: s.Cond,
				Then: []ast.Stmt{tailCall(vars[s.Then])},
				Else: []ast.Stmt{tailCall(vars[s.Else])},
			})
		case *ast.Dispatch:
			sw := &ast.Switch{Subject: s.Subject}
			for _, arm := range s.Arms {
				if arm.Match == nil {
					sw.Body = append(sw.Body, &ast.Default{})
				} else {
					sw.Body = append(sw.Body, &ast.Case{X: arm.Match})
				}
				sw.Body = append(sw.Body, tailCall(vars[arm.Target]))
			}
			out = append(out, sw)
		default:
			out = append(out, s)
		}
	}
	return out
}

// tailCall is a jump through a label variable.
func tailCall(v *ast.Variable) ast.Stmt {
	return &ast.Return{X: ast.CallExpr(ast.Ref(v))}
}
