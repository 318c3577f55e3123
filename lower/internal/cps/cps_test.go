package cps

import (
	stderrors "errors"
	"reflect"
	"testing"

	"github.com/wippyai/genlower/ast"
	"github.com/wippyai/genlower/errors"
	"github.com/wippyai/genlower/interp"
	"github.com/wippyai/genlower/lower/internal/naming"
)

// tracer binds natives that record their name and return a fixed value.
type tracer struct {
	in    *interp.Interp
	calls []string
}

func (tr *tracer) native(name string, result interp.Value) *ast.Variable {
	v := ast.NewVariable(name, ast.FuncType(ast.IntType, ast.IntType, ast.IntType))
	tr.in.SetGlobal(v, &interp.Native{
		Name: name,
		Fn: func([]interp.Value) (interp.Value, error) {
			tr.calls = append(tr.calls, name)
			return result, nil
		},
	})
	return v
}

func newTracer(prog *ast.Program) *tracer {
	return &tracer{in: interp.New(interp.Config{Program: prog})}
}

func call(f *ast.Variable, args ...ast.Expr) *ast.Call {
	return ast.CallExpr(ast.Ref(f), args...)
}

// countLits counts function literals referring to id across the program.
func countLits(prog *ast.Program, id ast.FuncID) int {
	n := 0
	for _, fid := range prog.IDs() {
		ast.InspectStmts(prog.Func(fid).Body, func(s ast.Stmt) bool {
			for _, e := range ast.StmtExprs(s) {
				ast.Inspect(e, func(x ast.Expr) bool {
					if lit, ok := x.(*ast.FuncLit); ok && lit.Func == id {
						n++
					}
					return true
				})
			}
			return true
		})
	}
	return n
}

func TestLeavesPassThrough(t *testing.T) {
	prog := ast.NewProgram()
	owner := prog.NewFunc(ast.NoFunc, "f", nil, ast.Void)
	x := ast.NewVariable("x", ast.IntType)
	tr := New(Config{Program: prog, Names: naming.New()})

	for _, e := range []ast.Expr{ast.Int(1), ast.Ref(x), &ast.This{}, &ast.Unary{Op: ast.OpPostInc, X: ast.Ref(x), Typ: ast.IntType}} {
		got, err := tr.Transform(owner.ID, e, nil)
		if err != nil {
			t.Fatalf("Transform(%T): %v", e, err)
		}
		if got != e {
			t.Errorf("Transform(%T) rewrote a leaf", e)
		}
	}
	if tr.Created() != 0 {
		t.Errorf("leaves allocated %d continuations", tr.Created())
	}
}

func TestEvaluationOrder(t *testing.T) {
	prog := ast.NewProgram()
	tc := newTracer(prog)
	f, a, b, c := tc.native("f", 3), tc.native("a", 1), tc.native("b", 2), tc.native("c", 4)

	// return f(a(), b()) + c();
	fd := prog.NewFunc(ast.NoFunc, "order", nil, ast.IntType)
	fd.Body = []ast.Stmt{&ast.Return{X: ast.Bin(ast.OpAdd, call(f, call(a), call(b)), call(c))}}

	tr := New(Config{Program: prog})
	if err := tr.TransformFunction(fd); err != nil {
		t.Fatalf("TransformFunction: %v", err)
	}
	if tr.Created() == 0 {
		t.Fatal("no continuations allocated")
	}

	got, err := tc.in.CallFunc(fd.ID)
	if err != nil {
		t.Fatalf("CallFunc: %v", err)
	}
	if got != 7 {
		t.Errorf("order() = %v, want 7", got)
	}
	if want := []string{"a", "b", "f", "c"}; !reflect.DeepEqual(tc.calls, want) {
		t.Errorf("calls = %v, want %v", tc.calls, want)
	}
	if problems := prog.OwnershipProblems(); len(problems) > 0 {
		t.Errorf("ownership problems: %v", problems)
	}
}

func TestShortCircuit(t *testing.T) {
	tests := []struct {
		name  string
		op    ast.BinaryOp
		left  interp.Value
		want  interp.Value
		calls []string
	}{
		{"and falsy", ast.OpAnd, 0, 0, []string{"l"}},
		{"and truthy", ast.OpAnd, 1, 9, []string{"l", "r"}},
		{"or truthy", ast.OpOr, 1, 1, []string{"l"}},
		{"or falsy", ast.OpOr, 0, 9, []string{"l", "r"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := ast.NewProgram()
			tc := newTracer(prog)
			l, r := tc.native("l", tt.left), tc.native("r", 9)

			fd := prog.NewFunc(ast.NoFunc, "logical", nil, ast.IntType)
			fd.Body = []ast.Stmt{&ast.Return{X: ast.Bin(tt.op, call(l), call(r))}}
			if err := New(Config{Program: prog}).TransformFunction(fd); err != nil {
				t.Fatalf("TransformFunction: %v", err)
			}

			got, err := tc.in.CallFunc(fd.ID)
			if err != nil {
				t.Fatalf("CallFunc: %v", err)
			}
			if got != tt.want {
				t.Errorf("result = %v, want %v", got, tt.want)
			}
			if !reflect.DeepEqual(tc.calls, tt.calls) {
				t.Errorf("calls = %v, want %v", tc.calls, tt.calls)
			}
		})
	}
}

func TestConditionalSharesContinuation(t *testing.T) {
	prog := ast.NewProgram()
	owner := prog.NewFunc(ast.NoFunc, "owner", nil, ast.IntType)
	x := ast.NewVariable("x", ast.BoolType)
	g := ast.NewVariable("g", ast.FuncType(ast.IntType))
	h := ast.NewVariable("h", ast.FuncType(ast.IntType))

	p := ast.NewVariable("p", ast.IntType)
	k := prog.NewFunc(owner.ID, "", []*ast.Variable{p}, ast.IntType)
	k.Body = []ast.Stmt{&ast.Return{X: ast.Ref(p)}}

	tr := New(Config{Program: prog, Names: naming.New()})
	e := ast.Cond(ast.Ref(x), ast.CallExpr(ast.Ref(g)), ast.CallExpr(ast.Ref(h)))
	out, err := tr.Transform(owner.ID, e, prog.Lit(k.ID))
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}

	// x is a leaf, so the result applies the branch closure to it directly.
	applied, ok := out.(*ast.Call)
	if !ok {
		t.Fatalf("result is %T, want a call", out)
	}
	lit, ok := applied.Callee.(*ast.FuncLit)
	if !ok {
		t.Fatalf("callee is %T, want a function literal", applied.Callee)
	}
	branch := prog.Func(lit.Func)
	if len(branch.Body) != 2 || len(branch.Locals) != 1 {
		t.Fatalf("branch closure has %d statements and %d locals, want 2 and 1", len(branch.Body), len(branch.Locals))
	}
	set, ok := branch.Body[0].(*ast.ExprStmt).X.(*ast.Assign)
	if !ok || set.Target.(*ast.LocalRef).Var != branch.Locals[0] {
		t.Fatalf("branch closure does not start by binding the continuation")
	}

	if n := countLits(prog, k.ID); n != 1 {
		t.Errorf("continuation appears %d times, want 1", n)
	}
	if got := prog.Parent(k.ID); got != branch.ID {
		t.Errorf("continuation owned by #%d, want the branch closure #%d", got, branch.ID)
	}
}

func TestConditionalWithLocalContinuation(t *testing.T) {
	prog := ast.NewProgram()
	owner := prog.NewFunc(ast.NoFunc, "owner", nil, ast.IntType)
	x := ast.NewVariable("x", ast.BoolType)
	k := ast.NewVariable("k", ast.FuncType(ast.IntType, ast.IntType))

	tr := New(Config{Program: prog})
	out, err := tr.Transform(owner.ID, ast.Cond(ast.Ref(x), ast.Int(1), ast.Int(2)), ast.Ref(k))
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	branch := prog.Func(out.(*ast.Call).Callee.(*ast.FuncLit).Func)
	if len(branch.Body) != 1 || len(branch.Locals) != 0 {
		t.Errorf("a local continuation was rebound: %d statements, %d locals", len(branch.Body), len(branch.Locals))
	}
}

func TestConditionalEvaluatesOneBranch(t *testing.T) {
	for _, cond := range []bool{true, false} {
		prog := ast.NewProgram()
		tc := newTracer(prog)
		g, h := tc.native("g", 1), tc.native("h", 2)
		x := ast.NewVariable("x", ast.BoolType)

		fd := prog.NewFunc(ast.NoFunc, "pick", []*ast.Variable{x}, ast.IntType)
		fd.Body = []ast.Stmt{&ast.Return{X: ast.Bin(ast.OpAdd, ast.Cond(ast.Ref(x), call(g), call(h)), ast.Int(10))}}
		if err := New(Config{Program: prog}).TransformFunction(fd); err != nil {
			t.Fatalf("TransformFunction: %v", err)
		}

		got, err := tc.in.CallFunc(fd.ID, cond)
		if err != nil {
			t.Fatalf("CallFunc: %v", err)
		}
		want, calls := 12, []string{"h"}
		if cond {
			want, calls = 11, []string{"g"}
		}
		if got != want || !reflect.DeepEqual(tc.calls, calls) {
			t.Errorf("pick(%v) = %v with calls %v, want %v with %v", cond, got, tc.calls, want, calls)
		}
	}
}

func TestAssignLocal(t *testing.T) {
	prog := ast.NewProgram()
	tc := newTracer(prog)
	a := tc.native("a", 5)
	v := ast.NewVariable("v", ast.IntType)

	fd := prog.NewFunc(ast.NoFunc, "assign", nil, ast.IntType)
	fd.AddLocal(v)
	fd.Body = []ast.Stmt{
		ast.Do(ast.Set(ast.Ref(v), ast.Bin(ast.OpMul, call(a), ast.Int(2)))),
		&ast.Return{X: ast.Ref(v)},
	}
	if err := New(Config{Program: prog}).TransformFunction(fd); err != nil {
		t.Fatalf("TransformFunction: %v", err)
	}
	got, err := tc.in.CallFunc(fd.ID)
	if err != nil {
		t.Fatalf("CallFunc: %v", err)
	}
	if got != 10 {
		t.Errorf("assign() = %v, want 10", got)
	}
}

func TestCallThroughField(t *testing.T) {
	prog := ast.NewProgram()
	tc := newTracer(prog)
	a := tc.native("a", 5)

	cls := &ast.Class{Name: "Holder", Fields: []ast.Field{{Name: "cb", Type: ast.FuncType(ast.IntType, ast.IntType)}}}
	o := ast.NewVariable("o", &ast.ObjectType{Class: cls})
	cb := &ast.Property{X: ast.Ref(o), Name: "cb", Typ: ast.FuncType(ast.IntType, ast.IntType)}

	// return o.cb(a());
	fd := prog.NewFunc(ast.NoFunc, "viaField", nil, ast.IntType)
	fd.Body = []ast.Stmt{&ast.Return{X: ast.CallExpr(cb, call(a))}}

	tr := New(Config{Program: prog})
	if err := tr.TransformFunction(fd); err != nil {
		t.Fatalf("TransformFunction: %v", err)
	}
	if tr.Created() == 0 {
		t.Fatal("field call was not converted")
	}

	tc.in.SetGlobal(o, &interp.Object{Class: cls, Fields: map[string]interp.Value{
		"cb": &interp.Native{Name: "double", Fn: func(args []interp.Value) (interp.Value, error) {
			tc.calls = append(tc.calls, "cb")
			return args[0].(int) * 2, nil
		}},
	}})
	got, err := tc.in.CallFunc(fd.ID)
	if err != nil {
		t.Fatalf("CallFunc: %v", err)
	}
	if got != 10 {
		t.Errorf("viaField() = %v, want 10", got)
	}
	if want := []string{"a", "cb"}; !reflect.DeepEqual(tc.calls, want) {
		t.Errorf("calls = %v, want %v", tc.calls, want)
	}
}

func TestTransformErrors(t *testing.T) {
	cls := &ast.Class{Name: "Box", Fields: []ast.Field{{Name: "v", Type: ast.IntType}}}
	obj := ast.NewVariable("o", &ast.ObjectType{Class: cls})
	method := &ast.Property{X: ast.Ref(obj), Name: "m", Typ: &ast.FunctionType{Result: ast.Void}}

	tests := []struct {
		name string
		expr ast.Expr
		want error
	}{
		{"assign to property", ast.Set(ast.Prop(ast.Ref(obj), "v"), ast.Int(1)), errors.ErrUnsupported},
		{"assign to index", ast.Set(ast.Bin(ast.OpIndex, ast.Ref(obj), ast.Int(0)), ast.Int(1)), errors.ErrUnsupported},
		{"method call", ast.CallExpr(method), errors.ErrUnsupported},
		{"increment property", &ast.Unary{Op: ast.OpPreInc, X: ast.Prop(ast.Ref(obj), "v"), Typ: ast.IntType}, errors.ErrUnsupported},
		{"new", &ast.New{Class: cls}, errors.ErrUnsupported},
		{"unbound method", method, errors.ErrLogicFlaw},
		{"nested unsupported", ast.Bin(ast.OpAdd, ast.Int(1), &ast.New{Class: cls}), errors.ErrUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := ast.NewProgram()
			owner := prog.NewFunc(ast.NoFunc, "f", nil, ast.Void)
			_, err := New(Config{Program: prog}).Transform(owner.ID, tt.expr, nil)
			if !stderrors.Is(err, tt.want) {
				t.Errorf("Transform() error = %v, want %v", err, tt.want)
			}
		})
	}
}
