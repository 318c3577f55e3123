// Package naming allocates fresh variable names and label names.
//
// A Namer holds every counter for one compilation run. Label names embed
// a per-kind sequence id, so two constructs of the same kind never share
// labels within a run.
package naming

import (
	"fmt"

	"github.com/wippyai/genlower/ast"
)

// Kind is a labelled construct that draws ids from its own sequence.
type Kind string

const (
	While   Kind = "WHILE"
	DoWhile Kind = "DO_WHILE"
	For     Kind = "FOR"
	If      Kind = "IF"
	Switch  Kind = "SWITCH"
	Yield   Kind = "YIELD"
)

// Entry and exit labels wrapped around every lowered body.
const (
	Begin = "$BEGIN"
	End   = "$END"
)

// Namer is the naming authority for one run.
type Namer struct {
	counters map[Kind]int
	fresh    int
}

// New creates a Namer with all counters at zero.
func New() *Namer {
	return &Namer{counters: make(map[Kind]int)}
}

// Reset returns every counter to zero.
func (n *Namer) Reset() {
	clear(n.counters)
	n.fresh = 0
}

// Next returns the next id for kind. Ids start at 1.
func (n *Namer) Next(kind Kind) int {
	n.counters[kind]++
	return n.counters[kind]
}

// FreshName returns a new unique variable name.
func (n *Namer) FreshName() string {
	n.fresh++
	return fmt.Sprintf("$a%d", n.fresh)
}

// FreshParam allocates a continuation parameter.
func (n *Namer) FreshParam(t ast.Type) *ast.Variable {
	return ast.NewVariable(n.FreshName(), t)
}

// FreshLocal allocates a local and declares it in fd.
func (n *Namer) FreshLocal(fd *ast.FuncDef, t ast.Type) *ast.Variable {
	v := ast.NewVariable(n.FreshName(), t)
	fd.AddLocal(v)
	return v
}

// Label builds a label name such as $TEST_WHILE_3.
func Label(part string, kind Kind, id int) string {
	return fmt.Sprintf("$%s_%s_%d", part, kind, id)
}

// CaseLabel names the i-th case of switch id.
func CaseLabel(id, i int) string {
	return fmt.Sprintf("$SWITCH_%d_CASE_%d", id, i)
}

// DefaultLabel names the default arm of switch id.
func DefaultLabel(id int) string {
	return fmt.Sprintf("$SWITCH_%d_DEFAULT", id)
}

// YieldLabel names the resumption point after yield id.
func YieldLabel(id int) string {
	return fmt.Sprintf("$YIELD_%d", id)
}

// GeneratorLocal names the generator object of a generator nested inside
// depth other generators.
func GeneratorLocal(depth int) string {
	return fmt.Sprintf("$generator%d", depth)
}
