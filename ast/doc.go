// Package ast is the tree the lowering pass consumes and produces.
//
// The tree is built by an upstream parser and type checker; this package only
// models what the pass needs: typed expressions, statements, and function
// definitions held in a Program arena.
//
// # Function arena
//
// Every function definition (top-level functions, user closures, and the
// continuation and fragment closures the pass synthesizes) lives in a Program
// and is addressed by FuncID. Each definition records its owning parent and
// the set of closures it owns:
//
//	prog := ast.NewProgram()
//	gen := prog.NewFunc(ast.NoFunc, "gen", nil, ret)
//	k := prog.NewFunc(gen.ID, "", []*ast.Variable{x}, ast.Void)
//	prog.Reparent(k.ID, other.ID) // detach from gen, attach to other
//
// A closure is owned by exactly one definition at any time; Reparent moves it
// atomically and never duplicates it.
//
// # Statements
//
// Besides the source statement forms, the package defines the pass-internal
// Label, Goto, CondGoto and Dispatch statements that only appear between
// statement lowering and goto elimination.
package ast
