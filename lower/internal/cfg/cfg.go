// Package cfg builds the control-flow graph of a lowered statement
// sequence.
//
// A lowered sequence holds only primitive statements plus Label, Goto,
// CondGoto and Dispatch. Each Label opens a block; the statements before
// the first Label form the entry block. A block ends at its first
// terminator (Goto, CondGoto, Return, Throw); anything after it up to the
// next Label can never run and is recorded as dropped.
package cfg

import (
	"fmt"

	"github.com/wippyai/genlower/ast"
	"github.com/wippyai/genlower/errors"
)

// Entry is the label of the entry block.
const Entry = ""

// Block is a straight-line run of statements.
type Block struct {
	Label   string
	Stmts   []ast.Stmt
	Succs   []string
	Dropped int
}

// Terminated reports whether the block ends in a terminator.
func (b *Block) Terminated() bool {
	if len(b.Stmts) == 0 {
		return false
	}
	return IsTerminator(b.Stmts[len(b.Stmts)-1])
}

// Edges maps each block label to the labels it can jump to.
type Edges map[string][]string

// Graph is the control-flow graph of one lowered body.
type Graph struct {
	Edges  Edges
	index  map[string]int
	Blocks []*Block
}

// IsTerminator reports whether control never passes from s to the next
// statement.
func IsTerminator(s ast.Stmt) bool {
	switch s.(type) {
	case *ast.Goto, *ast.CondGoto, *ast.Return, *ast.Throw:
		return true
	}
	return false
}

// Build splits stmts into blocks and validates the result: no structured
// statement may remain, labels are unique and every jump target exists.
func Build(stmts []ast.Stmt) (*Graph, error) {
	g := &Graph{
		Edges: make(Edges),
		index: make(map[string]int),
	}
	cur := g.add(Entry)

	for i, s := range stmts {
		if l, ok := s.(*ast.Label); ok {
			if _, dup := g.index[l.Name]; dup || l.Name == Entry {
				return nil, errors.LogicFlaw(errors.PhaseEliminate, "duplicate label %q", l.Name)
			}
			cur = g.add(l.Name)
			continue
		}
		if err := checkLowered(s); err != nil {
			return nil, errors.New(errors.PhaseEliminate, errors.KindLogicFlaw).
				Path(fmt.Sprintf("stmt[%d]", i)).
				Cause(err).
				Detail("statement survived lowering").
				Build()
		}
		if cur.Terminated() {
			cur.Dropped++
			continue
		}
		cur.Stmts = append(cur.Stmts, s)
		for _, t := range Targets(s) {
			cur.Succs = appendUnique(cur.Succs, t)
		}
	}

	for _, b := range g.Blocks {
		g.Edges[b.Label] = b.Succs
		for _, t := range b.Succs {
			if _, ok := g.index[t]; !ok {
				return nil, errors.New(errors.PhaseEliminate, errors.KindLogicFlaw).
					Detail("jump from %s to undefined label %q", blockName(b.Label), t).
					Value(t).
					Build()
			}
		}
	}
	return g, nil
}

// Block returns the block opened by label.
func (g *Graph) Block(label string) *Block {
	i, ok := g.index[label]
	if !ok {
		return nil
	}
	return g.Blocks[i]
}

// Labels returns the labels of every non-entry block in source order.
func (g *Graph) Labels() []string {
	labels := make([]string, 0, len(g.Blocks)-1)
	for _, b := range g.Blocks[1:] {
		labels = append(labels, b.Label)
	}
	return labels
}

// Reachable finds every block that can be reached from the sources.
func (g *Graph) Reachable(sources ...string) map[string]bool {
	result := make(map[string]bool)
	for _, s := range sources {
		result[s] = true
	}

	// Fixed-point iteration: keep expanding until no changes
	changed := true
	for changed {
		changed = false
		for from := range result {
			for _, to := range g.Edges[from] {
				if !result[to] {
					result[to] = true
					changed = true
				}
			}
		}
	}
	return result
}

// Unreachable returns the labels of blocks not reachable from the entry
// block, in source order.
func (g *Graph) Unreachable() []string {
	live := g.Reachable(Entry)
	var dead []string
	for _, b := range g.Blocks[1:] {
		if !live[b.Label] {
			dead = append(dead, b.Label)
		}
	}
	return dead
}

// Targets returns the labels s can jump to.
func Targets(s ast.Stmt) []string {
	switch s := s.(type) {
	case *ast.Goto:
		return []string{s.Name}
	case *ast.CondGoto:
		return []string{s.Then, s.Else}
	case *ast.Dispatch:
		out := make([]string, len(s.Arms))
		for i, arm := range s.Arms {
			out[i] = arm.Target
		}
		return out
	}
	return nil
}

func (g *Graph) add(label string) *Block {
	b := &Block{Label: label}
	g.index[label] = len(g.Blocks)
	g.Blocks = append(g.Blocks, b)
	return b
}

func checkLowered(s ast.Stmt) error {
	switch s := s.(type) {
	case *ast.If, *ast.While, *ast.DoWhile, *ast.For, *ast.ForIn, *ast.Switch,
		*ast.Try, *ast.Catch, *ast.Case, *ast.Default, *ast.Break, *ast.Continue:
		return fmt.Errorf("unexpected %T", s)
	}
	return nil
}

func blockName(label string) string {
	if label == Entry {
		return "entry"
	}
	return label
}

func appendUnique(slice []string, val string) []string {
	for _, v := range slice {
		if v == val {
			return slice
		}
	}
	return append(slice, val)
}
