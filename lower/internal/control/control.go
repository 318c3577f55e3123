// Package control lowers structured statements to goto/label form.
//
// Each construct compiles to a fixed template of labels that share one
// sequence id. For a while loop with id n:
//
//	goto $TEST_WHILE_n
//	$TEST_WHILE_n:
//	  if cond goto $BODY_WHILE_n else goto $END_WHILE_n
//	$BODY_WHILE_n:
//	  <body>
//	  goto $TEST_WHILE_n
//	$END_WHILE_n:
//
// Every label is entered by an explicit jump, so the output never relies
// on falling through from one label to the next.
package control

import (
	"go.uber.org/zap"

	"github.com/wippyai/genlower/ast"
	"github.com/wippyai/genlower/errors"
	"github.com/wippyai/genlower/lower/internal/naming"
)

// Config configures a Lowerer.
type Config struct {
	Names  *naming.Namer
	Logger *zap.Logger
}

// Lowerer is the statement lowering transformer.
// It keeps no per-function state, so one Lowerer serves a whole run.
type Lowerer struct {
	names *naming.Namer
	log   *zap.Logger
}

// New creates a Lowerer.
func New(cfg Config) *Lowerer {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	names := cfg.Names
	if names == nil {
		names = naming.New()
	}
	return &Lowerer{names: names, log: log}
}

// LowerBody lowers a function body and brackets it with the entry and
// exit labels:
//
//	goto $BEGIN; $BEGIN: <body> goto $END; $END:
func (l *Lowerer) LowerBody(body []ast.Stmt) ([]ast.Stmt, error) {
	out := []ast.Stmt{&ast.Goto{Name: naming.Begin}, &ast.Label{Name: naming.Begin}}
	out, err := l.lowerList(out, body, nil)
	if err != nil {
		return nil, err
	}
	out = fallInto(out, naming.End)
	l.log.Debug("control: lowered body",
		zap.Int("input", len(body)),
		zap.Int("output", len(out)))
	return out, nil
}

// Lower lowers a single statement outside of any loop or switch.
func (l *Lowerer) Lower(s ast.Stmt) ([]ast.Stmt, error) {
	return l.lower(nil, s, nil)
}

func (l *Lowerer) lowerList(out, body []ast.Stmt, sc *scope) ([]ast.Stmt, error) {
	var err error
	for _, s := range body {
		if out, err = l.lower(out, s, sc); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// lower appends the lowered form of s to out.
func (l *Lowerer) lower(out []ast.Stmt, s ast.Stmt, sc *scope) ([]ast.Stmt, error) {
	switch s := s.(type) {
	case *ast.ExprStmt, *ast.Return, *ast.Delete, *ast.Throw, *ast.Assert,
		*ast.Log, *ast.Debugger, *ast.CtorInvocation:
		return append(out, s), nil

	case *ast.Yield:
		resume := naming.YieldLabel(l.names.Next(naming.Yield))
		out = append(out, s)
		return fallInto(out, resume), nil

	case *ast.Break:
		target, err := sc.breakTarget(s.Label)
		if err != nil {
			return nil, err
		}
		return append(out, &ast.Goto{Name: target}), nil

	case *ast.Continue:
		target, err := sc.continueTarget(s.Label)
		if err != nil {
			return nil, err
		}
		return append(out, &ast.Goto{Name: target}), nil

	case *ast.If:
		return l.lowerIf(out, s, sc)
	case *ast.While:
		return l.lowerWhile(out, s, sc)
	case *ast.DoWhile:
		return l.lowerDoWhile(out, s, sc)
	case *ast.For:
		return l.lowerFor(out, s, sc)
	case *ast.Switch:
		return l.lowerSwitch(out, s, sc)

	case *ast.ForIn:
		return nil, errors.Unsupported(errors.PhaseLower, "for-in statement")
	case *ast.Try:
		return nil, errors.Unsupported(errors.PhaseLower, "try statement")
	case *ast.Catch:
		return nil, errors.Unsupported(errors.PhaseLower, "catch clause")

	case *ast.Label, *ast.Goto, *ast.CondGoto, *ast.Dispatch:
		return nil, errors.LogicFlaw(errors.PhaseLower, "statement %T is already lowered", s)
	case *ast.Case, *ast.Default:
		return nil, errors.LogicFlaw(errors.PhaseLower, "%T outside of a switch body", s)
	}
	return nil, errors.LogicFlaw(errors.PhaseLower, "unexpected statement %T", s)
}

func (l *Lowerer) lowerIf(out []ast.Stmt, s *ast.If, sc *scope) ([]ast.Stmt, error) {
	id := l.names.Next(naming.If)
	test := naming.Label("TEST", naming.If, id)
	succ := naming.Label("SUCC", naming.If, id)
	fail := naming.Label("FAIL", naming.If, id)
	end := naming.Label("END", naming.If, id)

	out = fallInto(out, test)
	out = append(out, &ast.CondGoto{Cond: s.Cond, Then: succ, Else: fail})

	var err error
	out = append(out, &ast.Label{Name: succ})
	if out, err = l.lowerList(out, s.Then, sc); err != nil {
		return nil, err
	}
	out = jump(out, end)

	out = append(out, &ast.Label{Name: fail})
	if out, err = l.lowerList(out, s.Else, sc); err != nil {
		return nil, err
	}
	return fallInto(out, end), nil
}

func (l *Lowerer) lowerWhile(out []ast.Stmt, s *ast.While, sc *scope) ([]ast.Stmt, error) {
	id := l.names.Next(naming.While)
	test := naming.Label("TEST", naming.While, id)
	body := naming.Label("BODY", naming.While, id)
	end := naming.Label("END", naming.While, id)

	out = fallInto(out, test)
	out = append(out, &ast.CondGoto{Cond: s.Cond, Then: body, Else: end})

	var err error
	out = append(out, &ast.Label{Name: body})
	if out, err = l.lowerList(out, s.Body, sc.enter(s.Label, end, test)); err != nil {
		return nil, err
	}
	out = jump(out, test)
	return append(out, &ast.Label{Name: end}), nil
}

func (l *Lowerer) lowerDoWhile(out []ast.Stmt, s *ast.DoWhile, sc *scope) ([]ast.Stmt, error) {
	id := l.names.Next(naming.DoWhile)
	body := naming.Label("BODY", naming.DoWhile, id)
	test := naming.Label("TEST", naming.DoWhile, id)
	end := naming.Label("END", naming.DoWhile, id)

	var err error
	out = fallInto(out, body)
	if out, err = l.lowerList(out, s.Body, sc.enter(s.Label, end, test)); err != nil {
		return nil, err
	}
	out = fallInto(out, test)
	out = append(out, &ast.CondGoto{Cond: s.Cond, Then: body, Else: end})
	return append(out, &ast.Label{Name: end}), nil
}

func (l *Lowerer) lowerFor(out []ast.Stmt, s *ast.For, sc *scope) ([]ast.Stmt, error) {
	id := l.names.Next(naming.For)
	init := naming.Label("INIT", naming.For, id)
	test := naming.Label("TEST", naming.For, id)
	body := naming.Label("BODY", naming.For, id)
	post := naming.Label("POST", naming.For, id)
	end := naming.Label("END", naming.For, id)

	out = fallInto(out, init)
	if s.Init != nil {
		out = append(out, ast.Do(s.Init))
	}

	out = fallInto(out, test)
	if s.Cond != nil {
		out = append(out, &ast.CondGoto{Cond: s.Cond, Then: body, Else: end})
	} else {
		out = append(out, &ast.Goto{Name: body})
	}

	var err error
	out = append(out, &ast.Label{Name: body})
	if out, err = l.lowerList(out, s.Body, sc.enter(s.Label, end, post)); err != nil {
		return nil, err
	}

	out = fallInto(out, post)
	if s.Post != nil {
		out = append(out, ast.Do(s.Post))
	}
	out = append(out, &ast.Goto{Name: test})
	return append(out, &ast.Label{Name: end}), nil
}

// lowerSwitch emits the dispatch first, then the case bodies in source
// order under their own labels, so fallthrough between adjacent cases is
// an explicit jump to the next case label.
func (l *Lowerer) lowerSwitch(out []ast.Stmt, s *ast.Switch, sc *scope) ([]ast.Stmt, error) {
	id := l.names.Next(naming.Switch)
	test := naming.Label("TEST", naming.Switch, id)
	end := naming.Label("END", naming.Switch, id)

	dispatch := &ast.Dispatch{Subject: s.Subject}
	hasDefault := false
	ordinal := 0
	for _, st := range s.Body {
		switch c := st.(type) {
		case *ast.Case:
			dispatch.Arms = append(dispatch.Arms, ast.DispatchArm{Match: c.X, Target: naming.CaseLabel(id, ordinal)})
			ordinal++
		case *ast.Default:
			if hasDefault {
				return nil, errors.LogicFlaw(errors.PhaseLower, "switch with more than one default")
			}
			hasDefault = true
			dispatch.Arms = append(dispatch.Arms, ast.DispatchArm{Target: naming.DefaultLabel(id)})
		}
	}

	out = fallInto(out, test)
	out = append(out, dispatch, &ast.Goto{Name: end})

	inner := sc.enter(s.Label, end, "")
	ordinal = 0
	var err error
	for _, st := range s.Body {
		switch st.(type) {
		case *ast.Case:
			out = fallInto(out, naming.CaseLabel(id, ordinal))
			ordinal++
		case *ast.Default:
			out = fallInto(out, naming.DefaultLabel(id))
		default:
			if out, err = l.lower(out, st, inner); err != nil {
				return nil, err
			}
		}
	}
	return fallInto(out, end), nil
}
