package interp

import (
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/genlower/ast"
	"github.com/wippyai/genlower/errors"
	"github.com/wippyai/genlower/typesys"
)

// DefaultMaxDepth bounds the call stack.
const DefaultMaxDepth = 10000

// Config configures an Interp.
type Config struct {
	Program  *ast.Program
	Globals  map[*ast.Variable]Value
	Output   io.Writer
	Logger   *zap.Logger
	MaxDepth int
}

// Interp evaluates functions of one Program.
// An Interp is not safe for concurrent use.
type Interp struct {
	prog     *ast.Program
	globals  map[*ast.Variable]Value
	out      io.Writer
	log      *zap.Logger
	depth    int
	maxDepth int
}

// New creates an Interp.
func New(cfg Config) *Interp {
	in := &Interp{
		prog:     cfg.Program,
		globals:  cfg.Globals,
		out:      cfg.Output,
		log:      cfg.Logger,
		maxDepth: cfg.MaxDepth,
	}
	if in.globals == nil {
		in.globals = make(map[*ast.Variable]Value)
	}
	if in.out == nil {
		in.out = io.Discard
	}
	if in.log == nil {
		in.log = zap.NewNop()
	}
	if in.maxDepth <= 0 {
		in.maxDepth = DefaultMaxDepth
	}
	return in
}

// SetGlobal binds a free variable.
func (in *Interp) SetGlobal(v *ast.Variable, val Value) {
	in.globals[v] = val
}

// CallFunc calls a root function of the Program with no enclosing frame.
func (in *Interp) CallFunc(id ast.FuncID, args ...Value) (Value, error) {
	fd := in.prog.Func(id)
	if fd == nil {
		return nil, errors.NotFound(errors.PhaseEval, "function", fmt.Sprint(id))
	}
	return in.Call(&Closure{Func: fd}, args...)
}

// Call invokes a function value.
func (in *Interp) Call(fn Value, args ...Value) (Value, error) {
	switch fn := fn.(type) {
	case *Native:
		return fn.Fn(args)
	case *Closure:
		return in.callClosure(fn, args)
	}
	return nil, evalError(errors.KindTypeError, "%s is not a function", Format(fn))
}

// Resume advances a generator object by one step. done reports that the
// generator threw StopIteration.
func (in *Interp) Resume(gen Value) (value Value, done bool, err error) {
	obj, ok := gen.(*Object)
	if !ok {
		return nil, false, evalError(errors.KindTypeError, "%s is not a generator", Format(gen))
	}
	_, err = in.Call(obj.Fields[typesys.NextField])
	if err != nil {
		var th *Thrown
		if stderrors.As(err, &th) && IsInstance(th.Value, typesys.StopIteration) {
			return nil, true, nil
		}
		return nil, false, err
	}
	return obj.Fields[typesys.ValueField], false, nil
}

// Drain resumes gen until it is exhausted and returns every yielded value.
// More than limit values is an error.
func (in *Interp) Drain(gen Value, limit int) ([]Value, error) {
	var out []Value
	for {
		v, done, err := in.Resume(gen)
		if err != nil {
			return out, err
		}
		if done {
			return out, nil
		}
		if len(out) == limit {
			return out, evalError(errors.KindInvalidInput, "generator produced more than %d values", limit)
		}
		out = append(out, v)
	}
}

func (in *Interp) callClosure(c *Closure, args []Value) (Value, error) {
	if in.depth >= in.maxDepth {
		return nil, evalError(errors.KindInvalidInput, "call depth exceeds %d", in.maxDepth)
	}
	in.depth++
	defer func() { in.depth-- }()

	fr := newFrame(c.env, c.this)
	for i, p := range c.Func.Params {
		var v Value
		if i < len(args) {
			v = args[i]
		}
		fr.vars[p] = v
	}
	for _, l := range c.Func.Locals {
		fr.vars[l] = nil
	}

	res, err := in.execBlock(fr, c.Func.Body)
	if err != nil {
		return nil, err
	}
	switch res.flow {
	case flowReturn:
		return res.value, nil
	case flowBreak, flowContinue:
		return nil, errors.LogicFlaw(errors.PhaseEval, "break or continue escaped %s", c.Func.DisplayName())
	}
	return nil, nil
}

// frame is one activation: a function call or a catch scope.
type frame struct {
	vars   map[*ast.Variable]Value
	parent *frame
	this   Value
}

func newFrame(parent *frame, this Value) *frame {
	return &frame{vars: make(map[*ast.Variable]Value), parent: parent, this: this}
}

func (in *Interp) lookup(fr *frame, v *ast.Variable) (Value, error) {
	for f := fr; f != nil; f = f.parent {
		if val, ok := f.vars[v]; ok {
			return val, nil
		}
	}
	if val, ok := in.globals[v]; ok {
		return val, nil
	}
	return nil, evalError(errors.KindNotFound, "undefined variable %s", v.Name)
}

func (in *Interp) store(fr *frame, v *ast.Variable, val Value) error {
	for f := fr; f != nil; f = f.parent {
		if _, ok := f.vars[v]; ok {
			f.vars[v] = val
			return nil
		}
	}
	if _, ok := in.globals[v]; ok {
		in.globals[v] = val
		return nil
	}
	return evalError(errors.KindNotFound, "assignment to undeclared variable %s", v.Name)
}

type flow int

const (
	flowNormal flow = iota
	flowBreak
	flowContinue
	flowReturn
)

type outcome struct {
	value Value
	label string
	flow  flow
}

var normal = outcome{}

func (in *Interp) execBlock(fr *frame, body []ast.Stmt) (outcome, error) {
	for _, s := range body {
		res, err := in.exec(fr, s)
		if err != nil || res.flow != flowNormal {
			return res, err
		}
	}
	return normal, nil
}

func (in *Interp) exec(fr *frame, s ast.Stmt) (outcome, error) {
	switch s := s.(type) {
	case *ast.ExprStmt:
		_, err := in.eval(fr, s.X)
		return normal, err

	case *ast.Return:
		if s.X == nil {
			return outcome{flow: flowReturn}, nil
		}
		v, err := in.eval(fr, s.X)
		return outcome{flow: flowReturn, value: v}, err

	case *ast.Break:
		return outcome{flow: flowBreak, label: s.Label}, nil

	case *ast.Continue:
		return outcome{flow: flowContinue, label: s.Label}, nil

	case *ast.If:
		c, err := in.eval(fr, s.Cond)
		if err != nil {
			return normal, err
		}
		if Truthy(c) {
			return in.execBlock(fr, s.Then)
		}
		return in.execBlock(fr, s.Else)

	case *ast.While:
		return in.loop(fr, s.Label, nil, s.Cond, nil, s.Body, false)

	case *ast.DoWhile:
		return in.loop(fr, s.Label, nil, s.Cond, nil, s.Body, true)

	case *ast.For:
		return in.loop(fr, s.Label, s.Init, s.Cond, s.Post, s.Body, false)

	case *ast.Switch:
		return in.execSwitch(fr, s)

	case *ast.Try:
		return in.execTry(fr, s)

	case *ast.Throw:
		v, err := in.eval(fr, s.X)
		if err != nil {
			return normal, err
		}
		in.log.Debug("interp: throw", zap.String("value", Format(v)))
		return normal, &Thrown{Value: v}

	case *ast.Delete:
		return normal, in.delete(fr, s.X)

	case *ast.Assert:
		v, err := in.eval(fr, s.X)
		if err != nil {
			return normal, err
		}
		if !Truthy(v) {
			msg := s.Message
			if msg == "" {
				msg = "assertion failure"
			}
			return normal, evalError(errors.KindInvalidInput, "%s", msg)
		}
		return normal, nil

	case *ast.Log:
		parts := make([]string, len(s.Args))
		for i, a := range s.Args {
			v, err := in.eval(fr, a)
			if err != nil {
				return normal, err
			}
			if str, ok := v.(string); ok {
				parts[i] = str
			} else {
				parts[i] = Format(v)
			}
		}
		fmt.Fprintln(in.out, strings.Join(parts, " "))
		return normal, nil

	case *ast.Debugger:
		return normal, nil

	case *ast.CtorInvocation:
		for _, a := range s.Args {
			if _, err := in.eval(fr, a); err != nil {
				return normal, err
			}
		}
		return normal, nil

	case *ast.Yield:
		return normal, evalError(errors.KindUnsupported, "yield in a function that was not lowered")

	case *ast.ForIn:
		return normal, evalError(errors.KindUnsupported, "for-in")

	case *ast.Label, *ast.Goto, *ast.CondGoto, *ast.Dispatch:
		return normal, errors.LogicFlaw(errors.PhaseEval, "pass-internal statement %T survived elimination", s)

	case *ast.Case, *ast.Default, *ast.Catch:
		return normal, errors.LogicFlaw(errors.PhaseEval, "%T outside its enclosing statement", s)
	}
	return normal, errors.LogicFlaw(errors.PhaseEval, "unexpected statement %T", s)
}

func (in *Interp) loop(fr *frame, label string, init, cond, post ast.Expr, body []ast.Stmt, postTest bool) (outcome, error) {
	if init != nil {
		if _, err := in.eval(fr, init); err != nil {
			return normal, err
		}
	}
	first := true
	for {
		if cond != nil && !(postTest && first) {
			c, err := in.eval(fr, cond)
			if err != nil {
				return normal, err
			}
			if !Truthy(c) {
				return normal, nil
			}
		}
		first = false

		res, err := in.execBlock(fr, body)
		if err != nil {
			return normal, err
		}
		switch res.flow {
		case flowReturn:
			return res, nil
		case flowBreak:
			if res.label == "" || res.label == label {
				return normal, nil
			}
			return res, nil
		case flowContinue:
			if res.label != "" && res.label != label {
				return res, nil
			}
		}

		if post != nil {
			if _, err := in.eval(fr, post); err != nil {
				return normal, err
			}
		}
	}
}

func (in *Interp) execSwitch(fr *frame, s *ast.Switch) (outcome, error) {
	subject, err := in.eval(fr, s.Subject)
	if err != nil {
		return normal, err
	}

	start, def := -1, -1
	for i, st := range s.Body {
		switch c := st.(type) {
		case *ast.Case:
			v, err := in.eval(fr, c.X)
			if err != nil {
				return normal, err
			}
			if Equal(subject, v) {
				start = i
			}
		case *ast.Default:
			def = i
		}
		if start >= 0 {
			break
		}
	}
	if start < 0 {
		start = def
	}
	if start < 0 {
		return normal, nil
	}

	for _, st := range s.Body[start:] {
		switch st.(type) {
		case *ast.Case, *ast.Default:
			continue
		}
		res, err := in.exec(fr, st)
		if err != nil {
			return normal, err
		}
		if res.flow == flowBreak && (res.label == "" || res.label == s.Label) {
			return normal, nil
		}
		if res.flow != flowNormal {
			return res, nil
		}
	}
	return normal, nil
}

func (in *Interp) execTry(fr *frame, s *ast.Try) (outcome, error) {
	res, err := in.execBlock(fr, s.Body)
	if err == nil || len(s.Catches) == 0 {
		return res, err
	}
	var th *Thrown
	if !stderrors.As(err, &th) {
		return res, err
	}
	c := s.Catches[0]
	scope := newFrame(fr, fr.this)
	if c.Var != nil {
		scope.vars[c.Var] = th.Value
	}
	return in.execBlock(scope, c.Body)
}

func (in *Interp) delete(fr *frame, x ast.Expr) error {
	var (
		objExpr ast.Expr
		key     Value
	)
	switch x := x.(type) {
	case *ast.Property:
		objExpr, key = x.X, x.Name
	case *ast.Binary:
		if x.Op != ast.OpIndex {
			return evalError(errors.KindTypeError, "cannot delete %s expression", x.Op)
		}
		k, err := in.eval(fr, x.Y)
		if err != nil {
			return err
		}
		objExpr, key = x.X, k
	default:
		return evalError(errors.KindTypeError, "cannot delete %T", x)
	}
	v, err := in.eval(fr, objExpr)
	if err != nil {
		return err
	}
	obj, ok := v.(*Object)
	if !ok {
		return evalError(errors.KindTypeError, "cannot delete from %s", Format(v))
	}
	delete(obj.Fields, fmt.Sprint(key))
	return nil
}

func evalError(kind errors.Kind, format string, args ...any) error {
	return errors.New(errors.PhaseEval, kind).Detail(format, args...).Build()
}
