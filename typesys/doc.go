// Package typesys is a small type system for the classes the pass
// synthesizes.
//
// It stands in for the surrounding compiler's semantic analysis: a
// registry of named classes and templates, template instantiation with
// caching, and checks for synthesized `new` expressions.
//
// Builtins:
//   - StopIteration: thrown when a generator is resumed past its last yield
//   - __generator.<T>: generator object with fields __value (T) and
//     __next (function () : void)
package typesys
