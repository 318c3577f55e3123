package control

import (
	"github.com/wippyai/genlower/ast"
	"github.com/wippyai/genlower/errors"
)

// scope is one entry of the labelled-construct stack. The stack is an
// immutable list: entering a construct creates a new head and leaving it
// is returning to the caller's value, so pushes and pops always balance.
type scope struct {
	parent *scope
	label  string // user label, "" when unlabelled
	brk    string // break target
	cont   string // continue target, "" for a switch
}

func (s *scope) enter(label, brk, cont string) *scope {
	return &scope{parent: s, label: label, brk: brk, cont: cont}
}

// breakTarget resolves a break. An unlabelled break leaves the innermost
// loop or switch.
func (s *scope) breakTarget(label string) (string, error) {
	if label == "" {
		if s == nil {
			return "", errors.LogicFlaw(errors.PhaseLower, "break outside of a loop or switch")
		}
		return s.brk, nil
	}
	e := s.find(label)
	if e == nil {
		return "", errors.UnresolvedLabel(errors.PhaseLower, label)
	}
	return e.brk, nil
}

// continueTarget resolves a continue. An unlabelled continue restarts the
// innermost loop, skipping enclosing switches.
func (s *scope) continueTarget(label string) (string, error) {
	if label == "" {
		for e := s; e != nil; e = e.parent {
			if e.cont != "" {
				return e.cont, nil
			}
		}
		return "", errors.LogicFlaw(errors.PhaseLower, "continue outside of a loop")
	}
	e := s.find(label)
	if e == nil {
		return "", errors.UnresolvedLabel(errors.PhaseLower, label)
	}
	if e.cont == "" {
		return "", errors.LogicFlaw(errors.PhaseLower, "continue targets switch %q", label)
	}
	return e.cont, nil
}

func (s *scope) find(label string) *scope {
	for e := s; e != nil; e = e.parent {
		if e.label == label {
			return e
		}
	}
	return nil
}

// endsInTerminator reports whether control cannot fall off the end of out.
func endsInTerminator(out []ast.Stmt) bool {
	if len(out) == 0 {
		return false
	}
	switch out[len(out)-1].(type) {
	case *ast.Goto, *ast.CondGoto, *ast.Return, *ast.Throw:
		return true
	}
	return false
}

// fallInto opens label, preceded by an explicit jump when control could
// otherwise fall through into it.
func fallInto(out []ast.Stmt, label string) []ast.Stmt {
	if !endsInTerminator(out) {
		out = append(out, &ast.Goto{Name: label})
	}
	return append(out, &ast.Label{Name: label})
}

func jump(out []ast.Stmt, label string) []ast.Stmt {
	if endsInTerminator(out) {
		return out
	}
	return append(out, &ast.Goto{Name: label})
}
