package errors

import (
	"fmt"
	"strings"
)

// Phase indicates which stage of the pass produced the error
type Phase string

const (
	PhaseSetup     Phase = "setup"     // builtin lookup
	PhaseCPS       Phase = "cps"       // expression CPS conversion
	PhaseLower     Phase = "lower"     // structured control to goto/label
	PhaseEliminate Phase = "eliminate" // goto/label to fragment closures
	PhaseGenerator Phase = "generator" // yield compilation
	PhaseVerify    Phase = "verify"    // post-pass invariant checks
	PhaseEval      Phase = "eval"      // tree evaluation
)

// Kind categorizes the error
type Kind string

const (
	KindLogicFlaw       Kind = "logic_flaw"
	KindUnsupported     Kind = "unsupported"
	KindUnresolvedLabel Kind = "unresolved_label"
	KindNotFound        Kind = "not_found"
	KindInvalidInput    Kind = "invalid_input"
	KindTypeError       Kind = "type_error"
)

// Phase-independent sentinels for errors.Is.
var (
	ErrLogicFlaw       = &Error{Kind: KindLogicFlaw}
	ErrUnsupported     = &Error{Kind: KindUnsupported}
	ErrUnresolvedLabel = &Error{Kind: KindUnresolvedLabel}
)

// Error is the structured error type used throughout the pass
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Func   string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Func != "" {
		b.WriteString(" in ")
		b.WriteString(e.Func)
	}

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// A target without a phase matches on kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase == "" {
		return e.Kind == t.Kind
	}
	return e.Phase == t.Phase && e.Kind == t.Kind
}

// WithFunc returns a copy of the error attributed to the named function.
// An already attributed error is returned unchanged.
func (e *Error) WithFunc(name string) *Error {
	if e.Func != "" {
		return e
	}
	c := *e
	c.Func = name
	return &c
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Func sets the name of the function being transformed
func (b *Builder) Func(name string) *Builder {
	b.err.Func = name
	return b
}

// Path sets the statement path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// LogicFlaw reports a structurally unreachable state: a bug in this pass
// or an earlier one.
func LogicFlaw(phase Phase, format string, args ...any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindLogicFlaw,
		Detail: fmt.Sprintf(format, args...),
	}
}

// Unsupported creates a not-yet-supported construct error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what + " is not yet supported",
	}
}

// UnresolvedLabel creates an error for a break/continue label that has no target
func UnresolvedLabel(phase Phase, label string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnresolvedLabel,
		Detail: fmt.Sprintf("no corresponding statement for label %q", label),
		Value:  label,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
		Value:  name,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// TypeError creates a type error for synthesized code that failed analysis
func TypeError(phase Phase, detail string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeError,
		Detail: detail,
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
