// Package interp evaluates function definitions from an ast.Program.
//
// It runs both source trees and the lowered trees the pass produces, so
// the two can be compared by observable behavior: return values, values
// thrown, and the order in which native functions are invoked.
//
// Values are nil, bool, int, float64, string, *Closure, *Native and
// *Object. Closures capture their defining frame by reference, as in
// JavaScript. Statements the pass leaves behind only transiently (Label,
// Goto, CondGoto, Dispatch) and constructs with no runtime meaning here
// (Yield, ForIn) are evaluation errors.
//
// Generators:
//
//	gen, _ := in.CallFunc(id)
//	for {
//	    v, done, err := in.Resume(gen)
//	    if err != nil || done {
//	        break
//	    }
//	    use(v)
//	}
package interp
