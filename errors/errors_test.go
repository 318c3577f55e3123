package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseLower,
				Kind:   KindUnresolvedLabel,
				Func:   "gen",
				Path:   []string{"while", "switch"},
				Detail: "no corresponding statement",
			},
			contains: []string{"[lower]", "unresolved_label", "in gen", "while.switch", "no corresponding statement"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseCPS,
				Kind:  KindUnsupported,
			},
			contains: []string{"[cps]", "unsupported"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseGenerator,
				Kind:   KindTypeError,
				Detail: "instantiate generator",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[generator]", "type_error", "instantiate generator", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseEliminate,
		Kind:  KindLogicFlaw,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}

	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseCPS,
		Kind:  KindUnsupported,
		Path:  []string{"foo"},
	}

	if !err.Is(&Error{Phase: PhaseCPS, Kind: KindUnsupported}) {
		t.Error("Is should match same phase and kind")
	}

	if err.Is(&Error{Phase: PhaseLower, Kind: KindUnsupported}) {
		t.Error("Is should not match different phase")
	}

	if err.Is(&Error{Phase: PhaseCPS, Kind: KindLogicFlaw}) {
		t.Error("Is should not match different kind")
	}

	if !errors.Is(err, ErrUnsupported) {
		t.Error("errors.Is should match the phase-independent sentinel")
	}
	if errors.Is(err, ErrLogicFlaw) {
		t.Error("errors.Is should not match a sentinel of another kind")
	}
}

func TestError_WithFunc(t *testing.T) {
	err := LogicFlaw(PhaseEliminate, "duplicate label %q", "$END")
	named := err.WithFunc("gen")
	if named.Func != "gen" {
		t.Errorf("Func = %q, want gen", named.Func)
	}
	if err.Func != "" {
		t.Error("WithFunc must not modify the receiver")
	}
	if again := named.WithFunc("other"); again.Func != "gen" {
		t.Errorf("attributed error was renamed to %q", again.Func)
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseLower, KindUnresolvedLabel).
		Func("gen").
		Path("for", "if").
		Value("outer").
		Cause(cause).
		Detail("no statement labelled %q", "outer").
		Build()

	if err.Phase != PhaseLower {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseLower)
	}
	if err.Kind != KindUnresolvedLabel {
		t.Errorf("Kind = %v, want %v", err.Kind, KindUnresolvedLabel)
	}
	if err.Func != "gen" {
		t.Errorf("Func = %v, want gen", err.Func)
	}
	if len(err.Path) != 2 || err.Path[0] != "for" || err.Path[1] != "if" {
		t.Errorf("Path = %v, want [for if]", err.Path)
	}
	if err.Value != "outer" {
		t.Errorf("Value = %v, want outer", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != `no statement labelled "outer"` {
		t.Errorf("Detail = %v", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("LogicFlaw", func(t *testing.T) {
		err := LogicFlaw(PhaseLower, "cannot lower %s", "return")
		if err.Kind != KindLogicFlaw {
			t.Errorf("Kind = %v, want %v", err.Kind, KindLogicFlaw)
		}
		if err.Detail != "cannot lower return" {
			t.Errorf("Detail = %q", err.Detail)
		}
	})

	t.Run("Unsupported", func(t *testing.T) {
		err := Unsupported(PhaseCPS, "method call")
		if err.Kind != KindUnsupported {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnsupported)
		}
		if !strings.Contains(err.Detail, "not yet supported") {
			t.Errorf("Detail = %q, should mention the capability gap", err.Detail)
		}
	})

	t.Run("UnresolvedLabel", func(t *testing.T) {
		err := UnresolvedLabel(PhaseLower, "outer")
		if err.Kind != KindUnresolvedLabel {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnresolvedLabel)
		}
		if err.Value != "outer" {
			t.Errorf("Value = %v, want outer", err.Value)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		err := NotFound(PhaseSetup, "class", "StopIteration")
		if err.Kind != KindNotFound {
			t.Errorf("Kind = %v, want %v", err.Kind, KindNotFound)
		}
		if !strings.Contains(err.Detail, "StopIteration") {
			t.Errorf("Detail = %q", err.Detail)
		}
	})

	t.Run("TypeError", func(t *testing.T) {
		cause := errors.New("unresolved type parameter T")
		err := TypeError(PhaseGenerator, "analyze generator class", cause)
		if !errors.Is(err, cause) {
			t.Error("TypeError should wrap its cause")
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		cause := errors.New("boom")
		err := Wrap(PhaseVerify, KindLogicFlaw, cause, "ownership")
		if err.Kind != KindLogicFlaw || err.Cause != cause {
			t.Errorf("Wrap produced %+v", err)
		}
	})
}
