// Package errors provides structured error types for the generator lowering pass.
//
// Errors are categorized by Phase (which stage of the pass failed) and Kind
// (error category). The Error type carries the name of the function being
// transformed, a statement path, a detail message and an optional cause.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseLower, errors.KindUnresolvedLabel).
//		Func("gen").
//		Path("while", "switch").
//		Detail("no enclosing statement labelled %q", "outer").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.LogicFlaw(errors.PhaseEliminate, "goto to undefined label %q", name)
//	err := errors.Unsupported(errors.PhaseCPS, "assignment to property")
//
// Every failure is fatal for the function being transformed. The three kinds
// callers usually care about can be matched regardless of phase with the
// ErrLogicFlaw, ErrUnsupported and ErrUnresolvedLabel sentinels:
//
//	if errors.Is(err, errors.ErrUnsupported) { ... }
package errors
