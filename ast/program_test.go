package ast

import (
	"testing"
)

func TestProgram_NewFuncOwnership(t *testing.T) {
	p := NewProgram()
	outer := p.NewFunc(NoFunc, "outer", nil, nil)
	inner := p.NewFunc(outer.ID, "", nil, IntType)

	if got := p.Closures(outer.ID); len(got) != 1 || got[0] != inner.ID {
		t.Errorf("Closures(outer) = %v, want [%d]", got, inner.ID)
	}
	if inner.Parent() != outer.ID {
		t.Errorf("inner.Parent() = %d, want %d", inner.Parent(), outer.ID)
	}
	if roots := p.Roots(); len(roots) != 1 || roots[0] != outer.ID {
		t.Errorf("Roots() = %v, want [%d]", roots, outer.ID)
	}
	if !IsVoid(outer.ReturnType) {
		t.Errorf("nil return type should default to void, got %v", outer.ReturnType)
	}
	if probs := p.OwnershipProblems(); len(probs) != 0 {
		t.Errorf("OwnershipProblems() = %v", probs)
	}
}

func TestProgram_Reparent(t *testing.T) {
	p := NewProgram()
	a := p.NewFunc(NoFunc, "a", nil, nil)
	b := p.NewFunc(a.ID, "b", nil, nil)
	c := p.NewFunc(a.ID, "c", nil, nil)

	if err := p.Reparent(c.ID, b.ID); err != nil {
		t.Fatalf("Reparent: %v", err)
	}
	if p.Owns(a.ID, c.ID) {
		t.Error("a should no longer own c")
	}
	if !p.Owns(b.ID, c.ID) {
		t.Error("b should own c")
	}
	if c.Parent() != b.ID {
		t.Errorf("c.Parent() = %d, want %d", c.Parent(), b.ID)
	}
	if owners := p.Owners(c.ID); len(owners) != 1 {
		t.Errorf("Owners(c) = %v, want exactly one", owners)
	}
	if probs := p.OwnershipProblems(); len(probs) != 0 {
		t.Errorf("OwnershipProblems() = %v", probs)
	}

	// moving to the current parent is a no-op
	if err := p.Reparent(c.ID, b.ID); err != nil {
		t.Fatalf("Reparent same parent: %v", err)
	}
	if p.Closures(b.ID)[0] != c.ID {
		t.Error("b should still own c")
	}
}

func TestProgram_ReparentErrors(t *testing.T) {
	p := NewProgram()
	a := p.NewFunc(NoFunc, "a", nil, nil)
	b := p.NewFunc(a.ID, "b", nil, nil)

	tests := []struct {
		name   string
		child  FuncID
		parent FuncID
	}{
		{"unknown child", 99, a.ID},
		{"unknown parent", b.ID, 99},
		{"cycle", a.ID, b.ID},
		{"self", a.ID, a.ID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := p.Reparent(tt.child, tt.parent); err == nil {
				t.Error("expected error")
			}
		})
	}
	if probs := p.OwnershipProblems(); len(probs) != 0 {
		t.Errorf("failed reparents must not change ownership: %v", probs)
	}
}

func TestProgram_GeneratorDepth(t *testing.T) {
	p := NewProgram()
	g1 := p.NewFunc(NoFunc, "g1", nil, nil)
	g1.Generator = true
	plain := p.NewFunc(g1.ID, "plain", nil, nil)
	g2 := p.NewFunc(plain.ID, "g2", nil, nil)
	g2.Generator = true
	leaf := p.NewFunc(g2.ID, "", nil, nil)

	tests := []struct {
		id   FuncID
		want int
	}{
		{g1.ID, 0},
		{plain.ID, 1},
		{g2.ID, 1},
		{leaf.ID, 2},
	}
	for _, tt := range tests {
		if got := p.GeneratorDepth(tt.id); got != tt.want {
			t.Errorf("GeneratorDepth(%s) = %d, want %d", p.Func(tt.id).DisplayName(), got, tt.want)
		}
	}
}

func TestProgram_FuncType(t *testing.T) {
	p := NewProgram()
	x := NewVariable("x", IntType)
	f := p.NewFunc(NoFunc, "f", []*Variable{x}, StringType)

	ft := f.Type()
	if len(ft.Params) != 1 || ft.Params[0] != IntType {
		t.Errorf("Params = %v", ft.Params)
	}
	if ft.Result != StringType {
		t.Errorf("Result = %v", ft.Result)
	}
	if got := ft.String(); got != "function (int) : string" {
		t.Errorf("String() = %q", got)
	}
	lit := p.Lit(f.ID)
	if lit.Func != f.ID {
		t.Errorf("Lit().Func = %d", lit.Func)
	}
}

func TestProgram_FuncLookup(t *testing.T) {
	p := NewProgram()
	if p.Func(NoFunc) != nil {
		t.Error("Func(NoFunc) should be nil")
	}
	if p.Func(5) != nil {
		t.Error("Func(5) should be nil on empty program")
	}
	f := p.NewFunc(NoFunc, "", nil, nil)
	if p.Func(f.ID) != f {
		t.Error("Func should return the allocated definition")
	}
	if p.Len() != 1 || len(p.IDs()) != 1 {
		t.Errorf("Len() = %d, IDs() = %v", p.Len(), p.IDs())
	}
	if f.DisplayName() != "<closure #1>" {
		t.Errorf("DisplayName() = %q", f.DisplayName())
	}
}

func TestProgram_OwnershipProblems(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(p *Program, root, a, b *FuncDef)
	}{
		{"closure with two owners", func(p *Program, root, a, b *FuncDef) { a.closures.Add(b.ID) }},
		{"root listed as closure", func(p *Program, root, a, b *FuncDef) { a.closures.Add(root.ID) }},
		{"parent link disagrees", func(p *Program, root, a, b *FuncDef) {
			root.closures.Remove(b.ID)
			a.closures.Add(b.ID)
		}},
		{"orphaned closure", func(p *Program, root, a, b *FuncDef) { root.closures.Remove(a.ID) }},
		{"unknown member", func(p *Program, root, a, b *FuncDef) { b.closures.Add(FuncID(500)) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProgram()
			root := p.NewFunc(NoFunc, "root", nil, nil)
			a := p.NewFunc(root.ID, "", nil, nil)
			b := p.NewFunc(root.ID, "", nil, nil)
			if probs := p.OwnershipProblems(); len(probs) != 0 {
				t.Fatalf("OwnershipProblems() before corruption = %v", probs)
			}
			tt.corrupt(p, root, a, b)
			if probs := p.OwnershipProblems(); len(probs) == 0 {
				t.Error("OwnershipProblems() found nothing")
			}
		})
	}
}

func TestProgram_OwnershipProblemsLargeArena(t *testing.T) {
	p := NewProgram()
	parent := p.NewFunc(NoFunc, "root", nil, nil).ID
	for i := 0; i < 5000; i++ {
		fd := p.NewFunc(parent, "", nil, nil)
		if i%3 == 0 {
			parent = fd.ID
		}
	}
	if probs := p.OwnershipProblems(); len(probs) != 0 {
		t.Errorf("OwnershipProblems() = %v", probs[:min(len(probs), 3)])
	}
}
