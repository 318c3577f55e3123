// Package generator compiles yield-bearing functions into functions that
// build and arm a generator object.
//
// The compiled function allocates $generator<depth>, a generator-of-T
// instance, points its __next slot at the first fragment and returns it.
// Each call to __next runs one fragment: a fragment ending in a yield
// stores the value in __value and the resumption fragment in __next. The
// $END fragment points __next at itself and throws StopIteration, so every
// resumption past the last yield raises the exhaustion signal.
package generator

import (
	"go.uber.org/zap"

	"github.com/wippyai/genlower/ast"
	"github.com/wippyai/genlower/errors"
	"github.com/wippyai/genlower/lower/internal/control"
	"github.com/wippyai/genlower/lower/internal/elim"
	"github.com/wippyai/genlower/lower/internal/naming"
	"github.com/wippyai/genlower/typesys"
)

// TypeSystem instantiates and checks the synthesized generator class.
type TypeSystem interface {
	Instantiate(t *ast.Template, args []ast.Type) (*ast.Class, error)
	Analyze(c *ast.Class) error
	CheckNew(n *ast.New) error
}

// Builtins are the symbols resolved once at setup.
type Builtins struct {
	StopIteration *ast.Class
	Generator     *ast.Template
}

// Config configures a Compiler.
type Config struct {
	Program    *ast.Program
	Types      TypeSystem
	Lowerer    *control.Lowerer
	Eliminator *elim.Eliminator
	Logger     *zap.Logger
	Builtins   Builtins
}

// Compiler is the generator compiler.
type Compiler struct {
	prog     *ast.Program
	types    TypeSystem
	lowerer  *control.Lowerer
	elim     *elim.Eliminator
	log      *zap.Logger
	builtins Builtins
}

// Result describes one compiled generator.
type Result struct {
	Class  *ast.Class
	Object *ast.Variable
	Elim   *elim.Result
	Yields int
}

// New creates a Compiler.
func New(cfg Config) *Compiler {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Compiler{
		prog:     cfg.Program,
		types:    cfg.Types,
		lowerer:  cfg.Lowerer,
		elim:     cfg.Eliminator,
		log:      log,
		builtins: cfg.Builtins,
	}
}

// ElementType returns T for a function declared to return generator-of-T.
func ElementType(fd *ast.FuncDef) (ast.Type, error) {
	ot, ok := fd.ReturnType.(*ast.ObjectType)
	if !ok || ot.Class == nil || len(ot.Class.TypeArgs) == 0 {
		return nil, errors.LogicFlaw(errors.PhaseGenerator, "generator %s does not return a generator type", fd.DisplayName())
	}
	return ot.Class.TypeArgs[0], nil
}

// Compile rewrites fd in place.
func (c *Compiler) Compile(fd *ast.FuncDef) (*Result, error) {
	if !fd.Generator {
		return nil, errors.LogicFlaw(errors.PhaseGenerator, "%s is not a generator", fd.DisplayName())
	}
	if c.builtins.StopIteration == nil || c.builtins.Generator == nil {
		return nil, errors.LogicFlaw(errors.PhaseGenerator, "generator builtins are not set up")
	}

	elem, err := ElementType(fd)
	if err != nil {
		return nil, err
	}
	class, err := c.types.Instantiate(c.builtins.Generator, []ast.Type{elem})
	if err != nil {
		return nil, errors.TypeError(errors.PhaseGenerator, "instantiating "+c.builtins.Generator.Name, err)
	}
	if err := c.types.Analyze(class); err != nil {
		return nil, errors.TypeError(errors.PhaseGenerator, "analyzing "+class.String(), err)
	}

	construct := &ast.New{Class: class}
	stop := &ast.New{Class: c.builtins.StopIteration}
	for _, n := range []*ast.New{construct, stop} {
		if err := c.types.CheckNew(n); err != nil {
			return nil, errors.TypeError(errors.PhaseGenerator, "checking new "+n.Class.String(), err)
		}
	}

	obj := ast.NewVariable(naming.GeneratorLocal(c.prog.GeneratorDepth(fd.ID)), &ast.ObjectType{Class: class})
	fd.AddLocal(obj)

	lowered, err := c.lowerer.LowerBody(fd.Body)
	if err != nil {
		return nil, err
	}
	fd.Body = lowered

	res := &Result{Class: class, Object: obj}
	hook := func(f *elim.Fragment) error {
		n, err := c.rewriteFragment(f, obj, stop)
		res.Yields += n
		return err
	}
	// Fragments run from __next, a function(): void slot.
	er, err := c.elim.EliminateWithResult(fd, ast.Void, hook)
	if err != nil {
		return nil, err
	}
	res.Elim = er

	// Arm instead of run: the entry block is exactly the jump to $BEGIN.
	begin := er.LabelVars[naming.Begin]
	if len(er.Entry) != 1 || begin == nil {
		return nil, errors.LogicFlaw(errors.PhaseGenerator, "unexpected entry block in %s", fd.DisplayName())
	}
	entry := len(fd.Body) - 1
	if !isCallTo(fd.Body[entry], begin) {
		return nil, errors.LogicFlaw(errors.PhaseGenerator, "entry of %s does not start at %s", fd.DisplayName(), naming.Begin)
	}
	fd.Body[entry] = setField(obj, typesys.NextField, ast.Ref(begin))

	body := make([]ast.Stmt, 0, len(fd.Body)+2)
	body = append(body, ast.Do(ast.Set(ast.Ref(obj), construct)))
	body = append(body, fd.Body...)
	body = append(body, &ast.Return{X: ast.Ref(obj)})
	fd.Body = body

	c.log.Debug("generator: compiled",
		zap.String("func", fd.DisplayName()),
		zap.String("class", class.String()),
		zap.String("object", obj.Name),
		zap.Int("yields", res.Yields),
		zap.Int("fragments", er.Fragments))
	return res, nil
}

// rewriteFragment applies the yield protocol to one fragment and reports
// how many yields it compiled.
func (c *Compiler) rewriteFragment(f *elim.Fragment, obj *ast.Variable, stop *ast.New) (int, error) {
	end := f.LabelVar(naming.End)
	if end == nil {
		return 0, errors.LogicFlaw(errors.PhaseGenerator, "lowered generator has no %s label", naming.End)
	}

	if f.Label == naming.End {
		f.Body = append(f.Body,
			setField(obj, typesys.NextField, ast.Ref(end)),
			&ast.Throw{X: stop})
		return 0, nil
	}

	yields := 0
	n := len(f.Body)
	if n >= 2 {
		if y, ok := f.Body[n-2].(*ast.Yield); ok {
			next, ok := f.JumpTarget(f.Body[n-1])
			if !ok {
				return 0, errors.LogicFlaw(errors.PhaseGenerator, "yield in %s is not followed by a jump", f.Label)
			}
			f.Body[n-2] = setField(obj, typesys.ValueField, y.X)
			f.Body[n-1] = setField(obj, typesys.NextField, ast.Ref(next))
			yields++
		}
	}

	for i, s := range f.Body {
		switch s := s.(type) {
		case *ast.Yield:
			return 0, errors.LogicFlaw(errors.PhaseGenerator, "yield in the middle of fragment %s", f.Label)
		case *ast.Return:
			if _, ok := f.JumpTarget(s); ok {
				continue
			}
			if s.X != nil {
				return 0, errors.Unsupported(errors.PhaseGenerator, "returning a value from a generator")
			}
			f.Body[i] = &ast.Return{X: ast.CallExpr(ast.Ref(end))}
		}
	}
	return yields, nil
}

func setField(obj *ast.Variable, field string, v ast.Expr) ast.Stmt {
	return ast.Do(ast.Set(ast.Prop(ast.Ref(obj), field), v))
}

func isCallTo(s ast.Stmt, v *ast.Variable) bool {
	ret, ok := s.(*ast.Return)
	if !ok {
		return false
	}
	call, ok := ret.X.(*ast.Call)
	if !ok {
		return false
	}
	ref, ok := call.Callee.(*ast.LocalRef)
	return ok && ref.Var == v
}
