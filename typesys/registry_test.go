package typesys

import (
	stderrors "errors"
	"testing"

	"github.com/wippyai/genlower/ast"
	"github.com/wippyai/genlower/errors"
)

func TestBuiltinRegistry(t *testing.T) {
	r := NewBuiltinRegistry()

	c, err := r.LookupClass(StopIteration)
	if err != nil {
		t.Fatalf("LookupClass(StopIteration): %v", err)
	}
	if !c.Analyzed {
		t.Error("StopIteration should be analyzed")
	}

	tpl, err := r.LookupTemplate(Generator)
	if err != nil {
		t.Fatalf("LookupTemplate(__generator): %v", err)
	}
	if len(tpl.Params) != 1 {
		t.Errorf("generator template has %d params, want 1", len(tpl.Params))
	}
}

func TestLookupMissing(t *testing.T) {
	r := NewRegistry()

	_, err := r.LookupClass("Nope")
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Kind != errors.KindNotFound || e.Phase != errors.PhaseSetup {
		t.Errorf("LookupClass error = %v, want setup not_found", err)
	}

	if _, err := r.LookupTemplate("Nope"); err == nil {
		t.Error("LookupTemplate should fail on an empty registry")
	}
}

func TestInstantiate(t *testing.T) {
	r := NewBuiltinRegistry()
	tpl, _ := r.LookupTemplate(Generator)

	c, err := r.Instantiate(tpl, []ast.Type{ast.IntType})
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	if got := c.String(); got != "__generator.<int>" {
		t.Errorf("String() = %q", got)
	}
	f, ok := c.Field(ValueField)
	if !ok || f.Type != ast.IntType {
		t.Errorf("__value field = %v, %v; want int", f.Type, ok)
	}
	next, ok := c.Field(NextField)
	if !ok {
		t.Fatal("missing __next field")
	}
	ft, ok := next.Type.(*ast.FunctionType)
	if !ok || !ft.Assignable || !ast.IsVoid(ft.Result) {
		t.Errorf("__next type = %v, want assignable function () : void", next.Type)
	}

	again, err := r.Instantiate(tpl, []ast.Type{ast.IntType})
	if err != nil {
		t.Fatalf("Instantiate again: %v", err)
	}
	if again != c {
		t.Error("Instantiate should cache by arguments")
	}

	other, _ := r.Instantiate(tpl, []ast.Type{ast.StringType})
	if other == c {
		t.Error("different arguments must produce different classes")
	}
}

func TestInstantiateDistinguishesClasses(t *testing.T) {
	r := NewBuiltinRegistry()
	tpl, _ := r.LookupTemplate(Generator)

	first := &ast.ObjectType{Class: &ast.Class{Name: "Point"}}
	second := &ast.ObjectType{Class: &ast.Class{Name: "Point"}}

	a, err := r.Instantiate(tpl, []ast.Type{first})
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	b, err := r.Instantiate(tpl, []ast.Type{second})
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	if a == b {
		t.Error("two classes named Point share one instantiation")
	}
	if f, _ := b.Field(ValueField); f.Type != ast.Type(second) {
		t.Errorf("__value of the second instantiation = %v, want the second Point", f.Type)
	}

	again, _ := r.Instantiate(tpl, []ast.Type{&ast.ObjectType{Class: first.Class}})
	if again != a {
		t.Error("same class behind a new ObjectType should hit the cache")
	}
	fn, _ := r.Instantiate(tpl, []ast.Type{ast.FuncType(first)})
	if fnAgain, _ := r.Instantiate(tpl, []ast.Type{ast.FuncType(first)}); fnAgain != fn {
		t.Error("structurally equal function types should hit the cache")
	}
}

func TestInstantiateArity(t *testing.T) {
	r := NewBuiltinRegistry()
	tpl, _ := r.LookupTemplate(Generator)

	if _, err := r.Instantiate(tpl, nil); err == nil {
		t.Error("expected arity error")
	}
}

func TestAnalyze(t *testing.T) {
	r := NewBuiltinRegistry()
	tpl, _ := r.LookupTemplate(Generator)
	c, _ := r.Instantiate(tpl, []ast.Type{ast.IntType})

	if c.Analyzed {
		t.Fatal("fresh instance should not be analyzed")
	}
	if err := r.Analyze(c); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !c.Analyzed {
		t.Error("Analyze should mark the class")
	}

	broken := &ast.Class{
		Name:   "Broken",
		Fields: []ast.Field{{Name: "x", Type: &ast.TypeParam{Name: "U"}}},
	}
	if err := r.Analyze(broken); err == nil {
		t.Error("Analyze should reject unresolved type parameters")
	}
}

func TestCheckNew(t *testing.T) {
	r := NewBuiltinRegistry()
	stop, _ := r.LookupClass(StopIteration)
	tpl, _ := r.LookupTemplate(Generator)
	raw, _ := r.Instantiate(tpl, []ast.Type{ast.BoolType})

	tests := []struct {
		name    string
		expr    *ast.New
		wantErr bool
	}{
		{"analyzed class", &ast.New{Class: stop}, false},
		{"unanalyzed class", &ast.New{Class: raw}, true},
		{"extra arguments", &ast.New{Class: stop, Args: []ast.Expr{ast.Int(1)}}, true},
		{"no class", &ast.New{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.CheckNew(tt.expr)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckNew() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
