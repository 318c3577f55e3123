package lower

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/wippyai/genlower/ast"
	"github.com/wippyai/genlower/errors"
)

// Verify checks the invariants of a transformed function and every
// closure it owns, directly or transitively:
//   - no goto, label or other pass-internal statement remains
//   - no yield remains outside functions that are themselves generators
//     still awaiting transformation
//   - every closure referenced from a body is owned by that body's
//     function, and by nothing else
//
// All violations are reported together.
func Verify(prog *ast.Program, id ast.FuncID) error {
	root := prog.Func(id)
	if root == nil {
		return errors.NotFound(errors.PhaseVerify, "function", fmtID(id))
	}

	var errs error
	var visit func(fd *ast.FuncDef, top bool)
	visit = func(fd *ast.FuncDef, top bool) {
		pending := fd.Generator && !top
		ast.InspectStmts(fd.Body, func(s ast.Stmt) bool {
			switch s.(type) {
			case *ast.Label, *ast.Goto, *ast.CondGoto, *ast.Dispatch:
				errs = multierr.Append(errs, fmt.Errorf("%s: %T survived elimination", fd.DisplayName(), s))
			case *ast.Yield:
				if !pending {
					errs = multierr.Append(errs, fmt.Errorf("%s: yield survived generator compilation", fd.DisplayName()))
				}
			}
			return true
		})

		for _, c := range ast.StmtClosures(fd.Body) {
			if owner := prog.Parent(c); owner != fd.ID {
				errs = multierr.Append(errs, fmt.Errorf("%s: closure #%d is referenced here but owned by #%d", fd.DisplayName(), c, owner))
			}
		}

		for _, c := range prog.Closures(fd.ID) {
			if child := prog.Func(c); child != nil {
				visit(child, false)
			}
		}
	}
	visit(root, true)

	for _, problem := range prog.OwnershipProblems() {
		errs = multierr.Append(errs, problem)
	}

	if errs == nil {
		return nil
	}
	return errors.New(errors.PhaseVerify, errors.KindLogicFlaw).
		Func(root.DisplayName()).
		Detail("%d invariant violations", len(multierr.Errors(errs))).
		Cause(errs).
		Build()
}

func fmtID(id ast.FuncID) string {
	return fmt.Sprintf("#%d", id)
}
