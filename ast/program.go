package ast

import "fmt"

// FuncID identifies a function definition within a Program.
type FuncID uint32

// NoFunc is the zero sentinel: "no function", used as the parent of roots.
const NoFunc FuncID = 0

// IsValid returns true if the id is not the sentinel.
func (id FuncID) IsValid() bool { return id != NoFunc }

// FuncDef is a function definition: a top-level function, a user closure,
// or a closure synthesized by the pass.
type FuncDef struct {
	ReturnType Type
	closures   *FuncSet
	Name       string
	Params     []*Variable
	Locals     []*Variable
	Body       []Stmt
	ID         FuncID
	parent     FuncID
	Generator  bool
}

// Parent returns the owning definition, or NoFunc for a root.
func (f *FuncDef) Parent() FuncID { return f.parent }

// Type returns the function type of the definition.
func (f *FuncDef) Type() *FunctionType {
	params := make([]Type, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.Type
	}
	return &FunctionType{Params: params, Result: f.ReturnType, Assignable: true}
}

// AddLocal declares a local variable.
func (f *FuncDef) AddLocal(v *Variable) {
	f.Locals = append(f.Locals, v)
}

// DisplayName returns the function name, or a placeholder for anonymous closures.
func (f *FuncDef) DisplayName() string {
	if f.Name != "" {
		return f.Name
	}
	return fmt.Sprintf("<closure #%d>", f.ID)
}

// Program is the arena holding every function definition of a compilation unit.
type Program struct {
	funcs []*FuncDef
}

// NewProgram creates an empty arena.
func NewProgram() *Program {
	return &Program{funcs: []*FuncDef{nil}}
}

// NewFunc allocates a definition. A valid parent takes ownership of it.
func (p *Program) NewFunc(parent FuncID, name string, params []*Variable, ret Type) *FuncDef {
	if ret == nil {
		ret = Void
	}
	f := &FuncDef{
		ID:         FuncID(len(p.funcs)),
		Name:       name,
		Params:     params,
		ReturnType: ret,
		closures:   NewFuncSet(64),
	}
	p.funcs = append(p.funcs, f)
	if parent.IsValid() {
		f.parent = parent
		p.funcs[parent].closures.Add(f.ID)
	}
	return f
}

// Func returns the definition for id, or nil if id is unknown.
func (p *Program) Func(id FuncID) *FuncDef {
	if !id.IsValid() || int(id) >= len(p.funcs) {
		return nil
	}
	return p.funcs[id]
}

// Len returns the number of definitions.
func (p *Program) Len() int {
	return len(p.funcs) - 1
}

// IDs returns every definition id in creation order.
func (p *Program) IDs() []FuncID {
	ids := make([]FuncID, 0, p.Len())
	for i := 1; i < len(p.funcs); i++ {
		ids = append(ids, FuncID(i))
	}
	return ids
}

// Roots returns the definitions that have no parent.
func (p *Program) Roots() []FuncID {
	var roots []FuncID
	for _, f := range p.funcs[1:] {
		if !f.parent.IsValid() {
			roots = append(roots, f.ID)
		}
	}
	return roots
}

// Closures returns the closures owned by id in creation order.
func (p *Program) Closures(id FuncID) []FuncID {
	f := p.Func(id)
	if f == nil {
		return nil
	}
	return f.closures.IDs()
}

// Owns reports whether parent's closure set contains child.
func (p *Program) Owns(parent, child FuncID) bool {
	f := p.Func(parent)
	return f != nil && f.closures.Has(child)
}

// Parent returns the owner of id.
func (p *Program) Parent(id FuncID) FuncID {
	if f := p.Func(id); f != nil {
		return f.parent
	}
	return NoFunc
}

// Reparent moves child from its current owner to newParent, updating the
// parent link. Moving to NoFunc turns child into a root.
func (p *Program) Reparent(child, newParent FuncID) error {
	c := p.Func(child)
	if c == nil {
		return fmt.Errorf("reparent: unknown function %d", child)
	}
	if newParent.IsValid() {
		if p.Func(newParent) == nil {
			return fmt.Errorf("reparent: unknown parent %d", newParent)
		}
		for anc := newParent; anc.IsValid(); anc = p.funcs[anc].parent {
			if anc == child {
				return fmt.Errorf("reparent: %d would own its ancestor %d", child, newParent)
			}
		}
	}
	if c.parent == newParent {
		return nil
	}
	if c.parent.IsValid() {
		p.funcs[c.parent].closures.Remove(child)
	}
	c.parent = newParent
	if newParent.IsValid() {
		p.funcs[newParent].closures.Add(child)
	}
	return nil
}

// Owners returns every definition whose closure set contains id.
func (p *Program) Owners(id FuncID) []FuncID {
	var owners []FuncID
	for _, f := range p.funcs[1:] {
		if f.closures.Has(id) {
			owners = append(owners, f.ID)
		}
	}
	return owners
}

// GeneratorDepth counts the generator functions enclosing id.
func (p *Program) GeneratorDepth(id FuncID) int {
	depth := 0
	for anc := p.Parent(id); anc.IsValid(); anc = p.funcs[anc].parent {
		if p.funcs[anc].Generator {
			depth++
		}
	}
	return depth
}

// OwnershipProblems checks that every closure is owned by exactly its parent.
// It reads each closure set once, so the check is linear in the size of
// the arena and its sets.
func (p *Program) OwnershipProblems() []error {
	owners := make([][]FuncID, len(p.funcs))
	var problems []error
	for _, f := range p.funcs[1:] {
		for _, id := range f.closures.IDs() {
			if int(id) >= len(p.funcs) || !id.IsValid() {
				problems = append(problems, fmt.Errorf("%s owns unknown function %d", f.DisplayName(), id))
				continue
			}
			owners[id] = append(owners[id], f.ID)
		}
	}
	for _, f := range p.funcs[1:] {
		o := owners[f.ID]
		switch {
		case !f.parent.IsValid() && len(o) > 0:
			problems = append(problems, fmt.Errorf("root %s is listed as a closure of %v", f.DisplayName(), o))
		case f.parent.IsValid() && len(o) != 1:
			problems = append(problems, fmt.Errorf("closure %s has %d owners %v", f.DisplayName(), len(o), o))
		case f.parent.IsValid() && o[0] != f.parent:
			problems = append(problems, fmt.Errorf("closure %s is owned by %d but its parent link is %d", f.DisplayName(), o[0], f.parent))
		}
	}
	return problems
}

// Lit returns a function literal expression for id.
func (p *Program) Lit(id FuncID) *FuncLit {
	return &FuncLit{Func: id, Typ: p.Func(id).Type()}
}
