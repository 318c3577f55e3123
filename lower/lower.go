package lower

import (
	stderrors "errors"

	"go.uber.org/zap"

	"github.com/wippyai/genlower/ast"
	"github.com/wippyai/genlower/errors"
	"github.com/wippyai/genlower/lower/internal/control"
	"github.com/wippyai/genlower/lower/internal/cps"
	"github.com/wippyai/genlower/lower/internal/elim"
	"github.com/wippyai/genlower/lower/internal/generator"
	"github.com/wippyai/genlower/lower/internal/naming"
	"github.com/wippyai/genlower/typesys"
)

// TypeSystem is the part of the surrounding compiler the pass consults:
// builtin lookup at setup, and instantiation and checking of the classes
// it synthesizes. *typesys.Registry implements it.
type TypeSystem interface {
	LookupClass(name string) (*ast.Class, error)
	LookupTemplate(name string) (*ast.Template, error)
	Instantiate(t *ast.Template, args []ast.Type) (*ast.Class, error)
	Analyze(c *ast.Class) error
	CheckNew(n *ast.New) error
}

// Config configures the pass.
type Config struct {
	// Types defaults to typesys.NewBuiltinRegistry().
	Types TypeSystem
	// Only selects plain functions to lower as well; generators are always
	// selected.
	Only FunctionMatcher
	// Skip excludes functions, generators included.
	Skip FunctionMatcher
	// Logger defaults to the package logger.
	Logger *zap.Logger
	// StopIterationClass defaults to "StopIteration".
	StopIterationClass string
	// GeneratorTemplate defaults to "__generator".
	GeneratorTemplate string
	// SkipExpressions disables the CPS conversion of expressions.
	SkipExpressions bool
	// Verify checks the invariants of every transformed function.
	Verify bool
}

// Stats describes the transformation of one function.
type Stats struct {
	Func          string
	Unreachable   []string
	ID            ast.FuncID
	Continuations int
	Fragments     int
	LabelVars     int
	Adopted       int
	Dropped       int
	Yields        int
	Generator     bool
}

// Pass lowers the functions of one Program.
//
// All naming state lives on the Pass, so independent passes never share
// counters. A Pass is not safe for concurrent use.
type Pass struct {
	prog     *ast.Program
	types    TypeSystem
	only     FunctionMatcher
	skip     FunctionMatcher
	log      *zap.Logger
	names    *naming.Namer
	cps      *cps.Transformer
	lowerer  *control.Lowerer
	elim     *elim.Eliminator
	gen      *generator.Compiler
	stopName string
	genName  string
	skipExpr bool
	verify   bool
}

// New creates a pass over prog.
func New(prog *ast.Program, cfg Config) *Pass {
	types := cfg.Types
	if types == nil {
		types = typesys.NewBuiltinRegistry()
	}
	log := cfg.Logger
	if log == nil {
		log = Logger()
	}
	stopName := cfg.StopIterationClass
	if stopName == "" {
		stopName = typesys.StopIteration
	}
	genName := cfg.GeneratorTemplate
	if genName == "" {
		genName = typesys.Generator
	}

	names := naming.New()
	return &Pass{
		prog:     prog,
		types:    types,
		only:     cfg.Only,
		skip:     cfg.Skip,
		log:      log,
		names:    names,
		cps:      cps.New(cps.Config{Program: prog, Names: names, Logger: log}),
		lowerer:  control.New(control.Config{Names: names, Logger: log}),
		elim:     elim.New(elim.Config{Program: prog, Logger: log}),
		stopName: stopName,
		genName:  genName,
		skipExpr: cfg.SkipExpressions,
		verify:   cfg.Verify,
	}
}

// Setup resolves the builtin symbols generator compilation needs.
// It must be called before transforming a generator; calling it again is
// a no-op.
func (p *Pass) Setup() error {
	if p.gen != nil {
		return nil
	}
	stop, err := p.types.LookupClass(p.stopName)
	if err != nil {
		return errors.Wrap(errors.PhaseSetup, errors.KindNotFound, err, "resolving the iteration exhaustion class")
	}
	tpl, err := p.types.LookupTemplate(p.genName)
	if err != nil {
		return errors.Wrap(errors.PhaseSetup, errors.KindNotFound, err, "resolving the generator template")
	}

	p.gen = generator.New(generator.Config{
		Program:    p.prog,
		Types:      p.types,
		Lowerer:    p.lowerer,
		Eliminator: p.elim,
		Logger:     p.log,
		Builtins:   generator.Builtins{StopIteration: stop, Generator: tpl},
	})
	p.log.Debug("lower: setup complete",
		zap.String("stop_iteration", stop.Name),
		zap.String("generator", tpl.Name))
	return nil
}

// Reset restarts label and name numbering, as for a new compilation run.
func (p *Pass) Reset() {
	p.names.Reset()
}

// Selected reports whether TransformProgram would transform fd.
func (p *Pass) Selected(fd *ast.FuncDef) bool {
	if p.skip != nil && p.skip.MatchFunction(fd.Name) {
		return false
	}
	if fd.Generator {
		return true
	}
	return p.only != nil && fd.Name != "" && p.only.MatchFunction(fd.Name)
}

// TransformProgram transforms every selected function, in creation order.
// Closures the pass allocates along the way are never selected.
func (p *Pass) TransformProgram() ([]*Stats, error) {
	var selected []ast.FuncID
	for _, id := range p.prog.IDs() {
		if p.Selected(p.prog.Func(id)) {
			selected = append(selected, id)
		}
	}

	stats := make([]*Stats, 0, len(selected))
	for _, id := range selected {
		s, err := p.TransformFunction(id)
		if err != nil {
			return stats, err
		}
		stats = append(stats, s)
	}
	return stats, nil
}

// TransformFunction transforms one function in place: CPS conversion of
// its expressions, then generator compilation or plain lowering and goto
// elimination.
func (p *Pass) TransformFunction(id ast.FuncID) (*Stats, error) {
	fd := p.prog.Func(id)
	if fd == nil {
		return nil, errors.NotFound(errors.PhaseLower, "function", fmtID(id))
	}
	p.log.Debug("lower: transforming",
		zap.String("func", fd.DisplayName()),
		zap.Bool("generator", fd.Generator))

	stats, err := p.transform(fd)
	if err != nil {
		var e *errors.Error
		if stderrors.As(err, &e) {
			return nil, e.WithFunc(fd.DisplayName())
		}
		return nil, err
	}

	if p.verify {
		if err := Verify(p.prog, id); err != nil {
			return nil, err
		}
	}
	p.log.Debug("lower: transformed",
		zap.String("func", stats.Func),
		zap.Int("fragments", stats.Fragments),
		zap.Int("continuations", stats.Continuations))
	return stats, nil
}

func (p *Pass) transform(fd *ast.FuncDef) (*Stats, error) {
	stats := &Stats{Func: fd.DisplayName(), ID: fd.ID, Generator: fd.Generator}

	if !p.skipExpr {
		before := p.cps.Created()
		if err := p.cps.TransformFunction(fd); err != nil {
			return nil, err
		}
		stats.Continuations = p.cps.Created() - before
	}

	var er *elim.Result
	if fd.Generator {
		if p.gen == nil {
			return nil, errors.LogicFlaw(errors.PhaseSetup, "generator %s transformed before Setup", fd.DisplayName())
		}
		gr, err := p.gen.Compile(fd)
		if err != nil {
			return nil, err
		}
		er = gr.Elim
		stats.Yields = gr.Yields
	} else {
		lowered, err := p.lowerer.LowerBody(fd.Body)
		if err != nil {
			return nil, err
		}
		fd.Body = lowered
		if er, err = p.elim.Eliminate(fd, nil); err != nil {
			return nil, err
		}
	}

	stats.Fragments = er.Fragments
	stats.LabelVars = len(er.LabelVars)
	stats.Adopted = er.Adopted
	stats.Dropped = er.Dropped
	stats.Unreachable = er.Unreachable
	return stats, nil
}
