// Package lower desugars generator functions into resumable state machines.
//
// # Overview
//
// A generator function (one whose body contains yield) cannot run on a
// target without native coroutines. The pass rewrites it into a function
// that allocates a generator object and returns it; each call to the
// object's __next slot runs the function up to its next yield.
//
// Three rewrites are chained per function:
//
//  1. CPS conversion of expressions: every operand is evaluated once, left
//     to right, and handed to an explicit continuation closure.
//  2. Statement lowering: if, while, do-while, for and switch become
//     goto/label sequences; break and continue become gotos.
//  3. Goto elimination: each labelled block becomes a closure (a fragment)
//     held in a label variable, and each goto becomes a tail call.
//
// Generators are lowered with a fragment hook that turns a trailing
// `yield v; goto L` into `gen.__value = v; gen.__next = L`.
//
// # Usage
//
//	p := lower.New(prog, lower.Config{})
//	if err := p.Setup(); err != nil {
//	    return err
//	}
//	stats, err := p.TransformProgram()
//
// Only generator functions are transformed by default. Plain functions can
// be selected with Config.Only:
//
//	p := lower.New(prog, lower.Config{
//	    Only: lower.NewFunctionPrefixMatcher([]string{"test_"}),
//	})
//
// # Generator protocol
//
//	gen.__next()   runs one fragment; afterwards gen.__value holds the
//	               value just yielded
//	StopIteration  is thrown by every resumption past the last yield
//
// # Errors
//
// All failures abort the function being transformed and are reported as
// *errors.Error values: logic flaws (internal invariant violations),
// unsupported constructs (for-in, try, non-local assignment targets,
// method calls) and unresolved break/continue labels.
package lower
