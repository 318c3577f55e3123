// Package genlower lowers generator functions and structured control flow of
// a JavaScript-like AST into plain closures.
//
// The pass runs in stages over one function at a time:
//
//	genlower/
//	├── ast/        Function definitions, statements, expressions and types
//	├── typesys/    Class and template registry (StopIteration, __generator)
//	├── errors/     Structured errors with phase and kind
//	├── lower/      Pass orchestration, function selection and verification
//	│   └── internal/
//	│       ├── cps/        Continuation-passing conversion of expressions
//	│       ├── control/    Loops, switch and break/continue to goto/label
//	│       ├── cfg/        Label graph queries over lowered statements
//	│       ├── elim/       Goto elimination into fragment closures
//	│       ├── generator/  Generator objects with __next and __value
//	│       └── naming/     Fresh label and variable names
//	├── interp/     Reference evaluator used to check behavior
//	├── printer/    Source rendering of function definitions
//	└── cmd/genlower/  Command line and TUI driver over built-in samples
//
// # Quick Start
//
// Lower every generator of a program:
//
//	p := lower.New(prog, lower.Config{Verify: true})
//	if err := p.Setup(); err != nil {
//	    return err
//	}
//	stats, err := p.TransformProgram()
//
// Plain functions are lowered only when selected with Config.Only. After the
// pass, a generator returns an object whose __next field resumes it: each
// call stores the next value in __value, and throws StopIteration once the
// body has finished.
//
// # Lowered Form
//
// A loop such as
//
//	while (i < n) { yield i; i++; }
//
// becomes one closure per label, each ending in a tail call:
//
//	$TEST_WHILE_1 = function () {
//	  if (i < n) { return $BODY_WHILE_1(); } else { return $END_WHILE_1(); }
//	};
//
// The body fragment stores the yielded value and the resumption point on the
// generator object instead of calling onward.
package genlower
