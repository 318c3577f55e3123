package lower

import (
	stderrors "errors"
	"reflect"
	"strings"
	"testing"

	"github.com/wippyai/genlower/ast"
	"github.com/wippyai/genlower/errors"
	"github.com/wippyai/genlower/interp"
	"github.com/wippyai/genlower/internal/samples"
	"github.com/wippyai/genlower/typesys"
)

func sample(t *testing.T, name string) *samples.Built {
	t.Helper()
	s, ok := samples.Get(name)
	if !ok {
		t.Fatalf("sample %q not registered", name)
	}
	return s.Build()
}

func newPass(t *testing.T, prog *ast.Program, cfg Config) *Pass {
	t.Helper()
	p := New(prog, cfg)
	if err := p.Setup(); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	return p
}

// loopGenerator builds `function* name() { while (true) yield 1; }`.
func loopGenerator(prog *ast.Program, name string) *ast.FuncDef {
	fd := prog.NewFunc(ast.NoFunc, name, nil, samples.GeneratorOf(ast.IntType))
	fd.Generator = true
	fd.Body = []ast.Stmt{&ast.While{Cond: ast.Bool(true), Body: []ast.Stmt{&ast.Yield{X: ast.Int(1)}}}}
	return fd
}

func localNames(fd *ast.FuncDef) []string {
	var names []string
	for _, l := range fd.Locals {
		names = append(names, l.Name)
	}
	return names
}

func TestTransformProgram_DefaultSelection(t *testing.T) {
	prog := ast.NewProgram()
	gen := loopGenerator(prog, "gen")
	plain := prog.NewFunc(ast.NoFunc, "plain", nil, ast.IntType)
	plain.Body = []ast.Stmt{&ast.Return{X: ast.Bin(ast.OpAdd, ast.Int(1), ast.Int(2))}}

	p := newPass(t, prog, Config{Verify: true})
	stats, err := p.TransformProgram()
	if err != nil {
		t.Fatalf("TransformProgram: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("transformed %d functions, want 1", len(stats))
	}
	if s := stats[0]; s.ID != gen.ID || !s.Generator || s.Yields != 1 {
		t.Errorf("stats = %+v", s)
	}
	if _, ok := plain.Body[0].(*ast.Return); !ok || len(plain.Body) != 1 {
		t.Errorf("unselected plain function was rewritten")
	}
}

func TestTransformProgram_OnlyAndSkip(t *testing.T) {
	prog := ast.NewProgram()
	loopGenerator(prog, "keep")
	skipped := loopGenerator(prog, "skip_me")
	plain := prog.NewFunc(ast.NoFunc, "test_plain", nil, ast.IntType)
	plain.Body = []ast.Stmt{&ast.Return{X: ast.Int(1)}}

	p := newPass(t, prog, Config{
		Only: NewFunctionPatternMatcher([]string{"test_*"}),
		Skip: NewFunctionPrefixMatcher([]string{"skip_"}),
	})
	stats, err := p.TransformProgram()
	if err != nil {
		t.Fatalf("TransformProgram: %v", err)
	}

	var got []string
	for _, s := range stats {
		got = append(got, s.Func)
	}
	if want := []string{"keep", "test_plain"}; !reflect.DeepEqual(got, want) {
		t.Errorf("transformed %v, want %v", got, want)
	}
	if _, ok := skipped.Body[0].(*ast.While); !ok {
		t.Error("skipped generator was rewritten")
	}
}

func TestTransformFunction_BeforeSetup(t *testing.T) {
	prog := ast.NewProgram()
	fd := loopGenerator(prog, "gen")

	p := New(prog, Config{})
	_, err := p.TransformFunction(fd.ID)
	if !stderrors.Is(err, errors.ErrLogicFlaw) {
		t.Fatalf("TransformFunction before Setup: error = %v, want logic flaw", err)
	}
}

func TestSetup_MissingBuiltins(t *testing.T) {
	tests := []struct {
		name  string
		types func() TypeSystem
	}{
		{"empty registry", func() TypeSystem { return typesys.NewRegistry() }},
		{"no template", func() TypeSystem {
			r := typesys.NewRegistry()
			r.RegisterClass(&ast.Class{Name: typesys.StopIteration, Analyzed: true})
			return r
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(ast.NewProgram(), Config{Types: tt.types()})
			err := p.Setup()
			var e *errors.Error
			if !stderrors.As(err, &e) || e.Phase != errors.PhaseSetup || e.Kind != errors.KindNotFound {
				t.Errorf("Setup() error = %v, want setup/not_found", err)
			}
		})
	}
}

func TestSetup_CustomNames(t *testing.T) {
	r := typesys.NewBuiltinRegistry()
	r.RegisterClass(&ast.Class{Name: "Done", Analyzed: true})

	p := New(ast.NewProgram(), Config{Types: r, StopIterationClass: "Done"})
	if err := p.Setup(); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if err := p.Setup(); err != nil {
		t.Fatalf("second Setup: %v", err)
	}
}

func TestTransformFunction_ErrorsNameTheFunction(t *testing.T) {
	prog := ast.NewProgram()
	fd := prog.NewFunc(ast.NoFunc, "guarded", nil, samples.GeneratorOf(ast.IntType))
	fd.Generator = true
	fd.Body = []ast.Stmt{&ast.Try{Body: []ast.Stmt{&ast.Yield{X: ast.Int(1)}}}}

	p := newPass(t, prog, Config{})
	_, err := p.TransformFunction(fd.ID)
	var e *errors.Error
	if !stderrors.As(err, &e) {
		t.Fatalf("error = %v, want *errors.Error", err)
	}
	if e.Kind != errors.KindUnsupported || e.Func != "guarded" {
		t.Errorf("error = %v, want unsupported in guarded", err)
	}

	if _, err := p.TransformFunction(ast.FuncID(999)); err == nil {
		t.Error("TransformFunction(unknown) succeeded")
	}
}

func TestLabelsUniqueAcrossFunctions(t *testing.T) {
	prog := ast.NewProgram()
	a := loopGenerator(prog, "a")
	b := loopGenerator(prog, "b")

	p := newPass(t, prog, Config{Verify: true})
	if _, err := p.TransformProgram(); err != nil {
		t.Fatalf("TransformProgram: %v", err)
	}

	seen := make(map[string]string)
	for _, fd := range []*ast.FuncDef{a, b} {
		for _, name := range localNames(fd) {
			if !strings.Contains(name, "_WHILE_") {
				continue
			}
			if other, dup := seen[name]; dup {
				t.Errorf("label %s used by both %s and %s", name, other, fd.Name)
			}
			seen[name] = fd.Name
		}
	}
	if len(seen) == 0 {
		t.Fatal("no loop labels found")
	}
}

func TestReset(t *testing.T) {
	prog := ast.NewProgram()
	a := loopGenerator(prog, "a")
	b := loopGenerator(prog, "b")

	p := newPass(t, prog, Config{})
	if _, err := p.TransformFunction(a.ID); err != nil {
		t.Fatalf("TransformFunction(a): %v", err)
	}
	p.Reset()
	if _, err := p.TransformFunction(b.ID); err != nil {
		t.Fatalf("TransformFunction(b): %v", err)
	}
	if got, want := localNames(b), localNames(a); !reflect.DeepEqual(got, want) {
		t.Errorf("locals after Reset = %v, want %v", got, want)
	}
}

func TestSkipExpressions(t *testing.T) {
	for _, skip := range []bool{false, true} {
		b := sample(t, "order")
		p := newPass(t, b.Program, Config{
			Only:            NewFunctionNameMatcher(b.Only),
			SkipExpressions: skip,
			Verify:          true,
		})
		stats, err := p.TransformProgram()
		if err != nil {
			t.Fatalf("TransformProgram: %v", err)
		}
		if got := stats[0].Continuations; (got == 0) != skip {
			t.Errorf("SkipExpressions=%v: %d continuations", skip, got)
		}

		var trace []string
		in := interp.New(interp.Config{Program: b.Program})
		b.Bind(in, &trace)
		v, err := in.CallFunc(b.Entry)
		if err != nil {
			t.Fatalf("CallFunc: %v", err)
		}
		if v != 7 {
			t.Errorf("SkipExpressions=%v: order() = %v, want 7", skip, v)
		}
	}
}

// A switch must fall through into the next case and reach default only
// when nothing matches.
func TestSwitchSemantics(t *testing.T) {
	tests := []struct {
		x     int
		trace []string
	}{
		{1, []string{`trace("f")`, `trace("g")`}},
		{2, []string{`trace("g")`}},
		{3, []string{`trace("h")`}},
	}
	for _, tt := range tests {
		b := sample(t, "switch")
		p := newPass(t, b.Program, Config{Verify: true})
		if _, err := p.TransformProgram(); err != nil {
			t.Fatalf("TransformProgram: %v", err)
		}

		var trace []string
		in := interp.New(interp.Config{Program: b.Program})
		b.Bind(in, &trace)
		gen, err := in.CallFunc(b.Entry, tt.x)
		if err != nil {
			t.Fatalf("CallFunc: %v", err)
		}
		if _, err := in.Drain(gen, 10); err != nil {
			t.Fatalf("Drain: %v", err)
		}
		if !reflect.DeepEqual(trace, tt.trace) {
			t.Errorf("classify(%d) trace = %v, want %v", tt.x, trace, tt.trace)
		}
	}
}

func TestStats(t *testing.T) {
	b := sample(t, "conditional")
	p := newPass(t, b.Program, Config{})
	stats, err := p.TransformProgram()
	if err != nil {
		t.Fatalf("TransformProgram: %v", err)
	}
	s := stats[0]
	if s.Func != "parity" || !s.Generator {
		t.Errorf("stats = %+v", s)
	}
	if s.Yields != 1 {
		t.Errorf("Yields = %d, want 1", s.Yields)
	}
	if s.Continuations == 0 {
		t.Error("conditional yield produced no continuations")
	}
	if s.Fragments != s.LabelVars || s.Fragments < 6 {
		t.Errorf("Fragments = %d, LabelVars = %d", s.Fragments, s.LabelVars)
	}
}

func TestVerify(t *testing.T) {
	prog := ast.NewProgram()
	fd := prog.NewFunc(ast.NoFunc, "broken", nil, ast.Void)
	fd.Body = []ast.Stmt{&ast.Goto{Name: "$X"}, &ast.Label{Name: "$X"}, &ast.Yield{X: ast.Int(1)}}

	err := Verify(prog, fd.ID)
	if !stderrors.Is(err, errors.ErrLogicFlaw) {
		t.Fatalf("Verify() = %v, want logic flaw", err)
	}
	if !strings.Contains(err.Error(), "3 invariant violations") {
		t.Errorf("Verify() = %v, want all violations reported", err)
	}

	if err := Verify(prog, ast.FuncID(42)); err == nil {
		t.Error("Verify(unknown) succeeded")
	}
}

func TestVerify_ForeignClosure(t *testing.T) {
	prog := ast.NewProgram()
	a := prog.NewFunc(ast.NoFunc, "a", nil, ast.Void)
	b := prog.NewFunc(ast.NoFunc, "b", nil, ast.Void)
	c := prog.NewFunc(b.ID, "", nil, ast.Void)
	a.Body = []ast.Stmt{ast.Do(ast.CallExpr(prog.Lit(c.ID)))}

	if err := Verify(prog, a.ID); err == nil {
		t.Error("Verify accepted a closure owned by another function")
	}
	if err := Verify(prog, b.ID); err != nil {
		t.Errorf("Verify(b) = %v", err)
	}
}
