package interp

import (
	"fmt"
	"math"

	"github.com/wippyai/genlower/ast"
	"github.com/wippyai/genlower/errors"
)

func (in *Interp) eval(fr *frame, e ast.Expr) (Value, error) {
	switch e := e.(type) {
	case *ast.Literal:
		return e.Value, nil

	case *ast.LocalRef:
		return in.lookup(fr, e.Var)

	case *ast.This:
		return fr.this, nil

	case *ast.FuncLit:
		fd := in.prog.Func(e.Func)
		if fd == nil {
			return nil, errors.NotFound(errors.PhaseEval, "function", fmt.Sprint(e.Func))
		}
		return &Closure{Func: fd, env: fr, this: fr.this}, nil

	case *ast.Unary:
		if e.Op.IsIncDec() {
			return in.incDec(fr, e)
		}
		x, err := in.eval(fr, e.X)
		if err != nil {
			return nil, err
		}
		return unary(e.Op, x)

	case *ast.Binary:
		return in.binary(fr, e)

	case *ast.Conditional:
		c, err := in.eval(fr, e.Cond)
		if err != nil {
			return nil, err
		}
		if Truthy(c) {
			return in.eval(fr, e.Then)
		}
		return in.eval(fr, e.Else)

	case *ast.Assign:
		v, err := in.eval(fr, e.Value)
		if err != nil {
			return nil, err
		}
		return v, in.assign(fr, e.Target, v)

	case *ast.Call:
		callee, err := in.eval(fr, e.Callee)
		if err != nil {
			return nil, err
		}
		args := make([]Value, len(e.Args))
		for i, a := range e.Args {
			if args[i], err = in.eval(fr, a); err != nil {
				return nil, err
			}
		}
		return in.Call(callee, args...)

	case *ast.Property:
		x, err := in.eval(fr, e.X)
		if err != nil {
			return nil, err
		}
		obj, ok := x.(*Object)
		if !ok {
			return nil, evalError(errors.KindTypeError, "cannot read %s of %s", e.Name, Format(x))
		}
		return obj.Fields[e.Name], nil

	case *ast.New:
		obj := &Object{Class: e.Class, Fields: make(map[string]Value)}
		if e.Class != nil {
			for _, f := range e.Class.Fields {
				obj.Fields[f.Name] = nil
			}
		}
		for _, a := range e.Args {
			if _, err := in.eval(fr, a); err != nil {
				return nil, err
			}
		}
		return obj, nil
	}
	return nil, errors.LogicFlaw(errors.PhaseEval, "unexpected expression %T", e)
}

func (in *Interp) assign(fr *frame, target ast.Expr, v Value) error {
	switch t := target.(type) {
	case *ast.LocalRef:
		return in.store(fr, t.Var, v)
	case *ast.Property:
		x, err := in.eval(fr, t.X)
		if err != nil {
			return err
		}
		obj, ok := x.(*Object)
		if !ok {
			return evalError(errors.KindTypeError, "cannot set %s of %s", t.Name, Format(x))
		}
		obj.Fields[t.Name] = v
		return nil
	case *ast.Binary:
		if t.Op == ast.OpIndex {
			x, err := in.eval(fr, t.X)
			if err != nil {
				return err
			}
			k, err := in.eval(fr, t.Y)
			if err != nil {
				return err
			}
			obj, ok := x.(*Object)
			if !ok {
				return evalError(errors.KindTypeError, "cannot index %s", Format(x))
			}
			obj.Fields[fmt.Sprint(k)] = v
			return nil
		}
	}
	return evalError(errors.KindTypeError, "invalid assignment target %T", target)
}

func (in *Interp) incDec(fr *frame, e *ast.Unary) (Value, error) {
	old, err := in.eval(fr, e.X)
	if err != nil {
		return nil, err
	}
	delta := 1
	if e.Op == ast.OpPreDec || e.Op == ast.OpPostDec {
		delta = -1
	}
	updated, err := arith(ast.OpAdd, old, delta)
	if err != nil {
		return nil, err
	}
	if err := in.assign(fr, e.X, updated); err != nil {
		return nil, err
	}
	if e.Op.IsPostfix() {
		return old, nil
	}
	return updated, nil
}

func (in *Interp) binary(fr *frame, e *ast.Binary) (Value, error) {
	x, err := in.eval(fr, e.X)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case ast.OpAnd:
		if !Truthy(x) {
			return x, nil
		}
		return in.eval(fr, e.Y)
	case ast.OpOr:
		if Truthy(x) {
			return x, nil
		}
		return in.eval(fr, e.Y)
	}

	y, err := in.eval(fr, e.Y)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case ast.OpEq:
		return Equal(x, y), nil
	case ast.OpNe:
		return !Equal(x, y), nil
	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		return compare(e.Op, x, y)
	case ast.OpIndex:
		obj, ok := x.(*Object)
		if !ok {
			return nil, evalError(errors.KindTypeError, "cannot index %s", Format(x))
		}
		return obj.Fields[fmt.Sprint(y)], nil
	case ast.OpIn:
		obj, ok := y.(*Object)
		if !ok {
			return nil, evalError(errors.KindTypeError, "cannot use 'in' on %s", Format(y))
		}
		_, found := obj.Fields[fmt.Sprint(x)]
		return found, nil
	}
	return arith(e.Op, x, y)
}

func unary(op ast.UnaryOp, x Value) (Value, error) {
	switch op {
	case ast.OpNot:
		return !Truthy(x), nil
	case ast.OpTypeof:
		return typeOf(x), nil
	case ast.OpNeg:
		switch v := x.(type) {
		case int:
			return -v, nil
		case float64:
			return -v, nil
		}
	case ast.OpPlus:
		switch x.(type) {
		case int, float64:
			return x, nil
		}
	case ast.OpBitNot:
		if v, ok := x.(int); ok {
			return ^v, nil
		}
	}
	return nil, evalError(errors.KindTypeError, "invalid operand %s for %s", Format(x), op)
}

func compare(op ast.BinaryOp, x, y Value) (Value, error) {
	if a, ok := x.(string); ok {
		if b, ok := y.(string); ok {
			switch op {
			case ast.OpLt:
				return a < b, nil
			case ast.OpLe:
				return a <= b, nil
			case ast.OpGt:
				return a > b, nil
			default:
				return a >= b, nil
			}
		}
	}
	a, ok1 := number(x)
	b, ok2 := number(y)
	if !ok1 || !ok2 {
		return nil, evalError(errors.KindTypeError, "cannot compare %s %s %s", Format(x), op, Format(y))
	}
	switch op {
	case ast.OpLt:
		return a < b, nil
	case ast.OpLe:
		return a <= b, nil
	case ast.OpGt:
		return a > b, nil
	default:
		return a >= b, nil
	}
}

func arith(op ast.BinaryOp, x, y Value) (Value, error) {
	if op == ast.OpAdd {
		if s, ok := x.(string); ok {
			return s + display(y), nil
		}
		if s, ok := y.(string); ok {
			return display(x) + s, nil
		}
	}

	a, aInt := x.(int)
	b, bInt := y.(int)
	if aInt && bInt {
		switch op {
		case ast.OpAdd:
			return a + b, nil
		case ast.OpSub:
			return a - b, nil
		case ast.OpMul:
			return a * b, nil
		case ast.OpDiv:
			if b != 0 && a%b == 0 {
				return a / b, nil
			}
		case ast.OpMod:
			if b != 0 {
				return a % b, nil
			}
		case ast.OpBitAnd:
			return a & b, nil
		case ast.OpBitOr:
			return a | b, nil
		case ast.OpBitXor:
			return a ^ b, nil
		case ast.OpShl:
			return a << uint(b&63), nil
		case ast.OpShr:
			return a >> uint(b&63), nil
		}
	}

	fa, ok1 := number(x)
	fb, ok2 := number(y)
	if !ok1 || !ok2 {
		return nil, evalError(errors.KindTypeError, "invalid operands %s %s %s", Format(x), op, Format(y))
	}
	switch op {
	case ast.OpAdd:
		return fa + fb, nil
	case ast.OpSub:
		return fa - fb, nil
	case ast.OpMul:
		return fa * fb, nil
	case ast.OpDiv:
		return fa / fb, nil
	case ast.OpMod:
		return math.Mod(fa, fb), nil
	}
	return nil, evalError(errors.KindTypeError, "operator %s needs integer operands", op)
}

// display renders v as string concatenation does.
func display(v Value) string {
	if s, ok := v.(string); ok {
		return s
	}
	return Format(v)
}
