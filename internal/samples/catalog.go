package samples

import (
	"github.com/wippyai/genlower/ast"
	"github.com/wippyai/genlower/interp"
)

func init() {
	register(Sample{Name: "two-yields", Description: "yield 1; yield 2;", Build: twoYields})
	register(Sample{Name: "counter", Description: "while loop yielding 0..n-1", Build: counter})
	register(Sample{Name: "countdown", Description: "do-while loop yielding n..1", Build: countdown})
	register(Sample{Name: "fibonacci", Description: "Fibonacci numbers below a limit", Build: fibonacci})
	register(Sample{Name: "switch", Description: "switch with fallthrough and default", Build: switchSample})
	register(Sample{Name: "conditional", Description: "for loop yielding a conditional expression", Build: conditional})
	register(Sample{Name: "nested", Description: "labelled break and continue across nested loops", Build: nested})
	register(Sample{Name: "inner", Description: "generator defined inside a generator", Build: inner})
	register(Sample{Name: "order", Description: "plain function with traced operand evaluation order", Build: order})
	register(Sample{Name: "accumulate", Description: "plain function with continue, break and return", Build: accumulate})
}

// function* twoYields() { yield 1; yield 2; }
func twoYields() *Built {
	p := ast.NewProgram()
	fd := newGenerator(p, ast.NoFunc, "twoYields", ast.IntType).body(
		&ast.Yield{X: ast.Int(1)},
		&ast.Yield{X: ast.Int(2)},
	)
	return &Built{Program: p, Entry: fd.ID}
}

// function* counter(n) { var i = 0; while (i < n) { yield i; i = i + 1; } }
func counter() *Built {
	p := ast.NewProgram()
	n := param("n", ast.IntType)
	b := newGenerator(p, ast.NoFunc, "counter", ast.IntType, n)
	i := b.local("i", ast.IntType)
	fd := b.body(
		ast.Do(ast.Set(ast.Ref(i), ast.Int(0))),
		&ast.While{
			Cond: ast.Bin(ast.OpLt, ast.Ref(i), ast.Ref(n)),
			Body: []ast.Stmt{
				&ast.Yield{X: ast.Ref(i)},
				ast.Do(ast.Set(ast.Ref(i), ast.Bin(ast.OpAdd, ast.Ref(i), ast.Int(1)))),
			},
		},
	)
	return &Built{Program: p, Entry: fd.ID, Args: []interp.Value{3}}
}

// function* countdown(n) { do { yield n; n = n - 1; } while (n > 0); }
func countdown() *Built {
	p := ast.NewProgram()
	n := param("n", ast.IntType)
	fd := newGenerator(p, ast.NoFunc, "countdown", ast.IntType, n).body(
		&ast.DoWhile{
			Cond: ast.Bin(ast.OpGt, ast.Ref(n), ast.Int(0)),
			Body: []ast.Stmt{
				&ast.Yield{X: ast.Ref(n)},
				ast.Do(ast.Set(ast.Ref(n), ast.Bin(ast.OpSub, ast.Ref(n), ast.Int(1)))),
			},
		},
	)
	return &Built{Program: p, Entry: fd.ID, Args: []interp.Value{3}}
}

// function* fibonacci(limit) {
//   var a = 0, b = 1, t;
//   while (a < limit) { yield a; t = a + b; a = b; b = t; }
// }
func fibonacci() *Built {
	p := ast.NewProgram()
	limit := param("limit", ast.IntType)
	bld := newGenerator(p, ast.NoFunc, "fibonacci", ast.IntType, limit)
	a := bld.local("a", ast.IntType)
	b := bld.local("b", ast.IntType)
	t := bld.local("t", ast.IntType)
	fd := bld.body(
		ast.Do(ast.Set(ast.Ref(a), ast.Int(0))),
		ast.Do(ast.Set(ast.Ref(b), ast.Int(1))),
		&ast.While{
			Cond: ast.Bin(ast.OpLt, ast.Ref(a), ast.Ref(limit)),
			Body: []ast.Stmt{
				&ast.Yield{X: ast.Ref(a)},
				ast.Do(ast.Set(ast.Ref(t), ast.Bin(ast.OpAdd, ast.Ref(a), ast.Ref(b)))),
				ast.Do(ast.Set(ast.Ref(a), ast.Ref(b))),
				ast.Do(ast.Set(ast.Ref(b), ast.Ref(t))),
			},
		},
	)
	return &Built{Program: p, Entry: fd.ID, Args: []interp.Value{50}}
}

// function* classify(x) {
//   switch (x) {
//   case 1: trace("f"); yield "f";
//   case 2: trace("g"); yield "g"; break;
//   default: trace("h"); yield "h";
//   }
// }
func switchSample() *Built {
	p := ast.NewProgram()
	trace := native("trace", ast.IntType, ast.StringType)
	x := param("x", ast.IntType)
	fd := newGenerator(p, ast.NoFunc, "classify", ast.StringType, x).body(
		&ast.Switch{
			Subject: ast.Ref(x),
			Body: []ast.Stmt{
				&ast.Case{X: ast.Int(1)},
				ast.Do(call(trace, ast.Str("f"))),
				&ast.Yield{X: ast.Str("f")},
				&ast.Case{X: ast.Int(2)},
				ast.Do(call(trace, ast.Str("g"))),
				&ast.Yield{X: ast.Str("g")},
				&ast.Break{},
				&ast.Default{},
				ast.Do(call(trace, ast.Str("h"))),
				&ast.Yield{X: ast.Str("h")},
			},
		},
	)
	return &Built{Program: p, Entry: fd.ID, Natives: []*ast.Variable{trace}, Args: []interp.Value{1}}
}

// function* parity(n) { for (var i = 0; i < n; i++) yield i % 2 == 0 ? "even" : "odd"; }
func conditional() *Built {
	p := ast.NewProgram()
	n := param("n", ast.IntType)
	b := newGenerator(p, ast.NoFunc, "parity", ast.StringType, n)
	i := b.local("i", ast.IntType)
	fd := b.body(
		&ast.For{
			Init: ast.Set(ast.Ref(i), ast.Int(0)),
			Cond: ast.Bin(ast.OpLt, ast.Ref(i), ast.Ref(n)),
			Post: inc(i),
			Body: []ast.Stmt{
				&ast.Yield{X: ast.Cond(
					ast.Bin(ast.OpEq, ast.Bin(ast.OpMod, ast.Ref(i), ast.Int(2)), ast.Int(0)),
					ast.Str("even"),
					ast.Str("odd"),
				)},
			},
		},
	)
	return &Built{Program: p, Entry: fd.ID, Args: []interp.Value{4}}
}

// function* pairs(n) {
//   outer: for (var i = 0; i < n; i++) {
//     for (var j = 0; j < n; j++) {
//       if (j > i) continue outer;
//       if (i == 2) break outer;
//       yield i * 10 + j;
//     }
//   }
// }
func nested() *Built {
	p := ast.NewProgram()
	n := param("n", ast.IntType)
	b := newGenerator(p, ast.NoFunc, "pairs", ast.IntType, n)
	i := b.local("i", ast.IntType)
	j := b.local("j", ast.IntType)
	fd := b.body(
		&ast.For{
			Label: "outer",
			Init:  ast.Set(ast.Ref(i), ast.Int(0)),
			Cond:  ast.Bin(ast.OpLt, ast.Ref(i), ast.Ref(n)),
			Post:  inc(i),
			Body: []ast.Stmt{
				&ast.For{
					Init: ast.Set(ast.Ref(j), ast.Int(0)),
					Cond: ast.Bin(ast.OpLt, ast.Ref(j), ast.Ref(n)),
					Post: inc(j),
					Body: []ast.Stmt{
						&ast.If{
							Cond: ast.Bin(ast.OpGt, ast.Ref(j), ast.Ref(i)),
							Then: []ast.Stmt{&ast.Continue{Label: "outer"}},
						},
						&ast.If{
							Cond: ast.Bin(ast.OpEq, ast.Ref(i), ast.Int(2)),
							Then: []ast.Stmt{&ast.Break{Label: "outer"}},
						},
						&ast.Yield{X: ast.Bin(ast.OpAdd, ast.Bin(ast.OpMul, ast.Ref(i), ast.Int(10)), ast.Ref(j))},
					},
				},
			},
		},
	)
	return &Built{Program: p, Entry: fd.ID, Args: []interp.Value{4}}
}

// function* outer() {
//   var make = function* (k) { yield k; yield k + 1; };
//   yield make(10);
// }
//
// outer yields the inner generator object itself, so a driver can resume it.
func inner() *Built {
	p := ast.NewProgram()
	ob := newGenerator(p, ast.NoFunc, "outer", ast.VariantType)
	k := param("k", ast.IntType)
	ib := newGenerator(p, ob.fd.ID, "", ast.IntType, k)
	ib.body(
		&ast.Yield{X: ast.Ref(k)},
		&ast.Yield{X: ast.Bin(ast.OpAdd, ast.Ref(k), ast.Int(1))},
	)
	mk := ob.local("make", ib.fd.Type())
	fd := ob.body(
		ast.Do(ast.Set(ast.Ref(mk), p.Lit(ib.fd.ID))),
		&ast.Yield{X: call(mk, ast.Int(10))},
	)
	return &Built{Program: p, Entry: fd.ID}
}

// function order() { return f(a(), b()) + c(); }
func order() *Built {
	p := ast.NewProgram()
	f := native("f", ast.IntType, ast.IntType, ast.IntType)
	a := native("a", ast.IntType)
	b := native("b", ast.IntType)
	c := native("c", ast.IntType)
	fd := newFunc(p, ast.NoFunc, "order", ast.IntType).body(
		&ast.Return{X: ast.Bin(ast.OpAdd, call(f, call(a), call(b)), call(c))},
	)
	return &Built{Program: p, Entry: fd.ID, Natives: []*ast.Variable{f, a, b, c}, Only: []string{"order"}}
}

// function accumulate(n) {
//   var total = 0;
//   for (var i = 0; i < n; i++) {
//     if (i % 3 == 0) continue;
//     total = total + i;
//     if (total > 20) break;
//   }
//   return total;
// }
func accumulate() *Built {
	p := ast.NewProgram()
	n := param("n", ast.IntType)
	b := newFunc(p, ast.NoFunc, "accumulate", ast.IntType, n)
	total := b.local("total", ast.IntType)
	i := b.local("i", ast.IntType)
	fd := b.body(
		ast.Do(ast.Set(ast.Ref(total), ast.Int(0))),
		&ast.For{
			Init: ast.Set(ast.Ref(i), ast.Int(0)),
			Cond: ast.Bin(ast.OpLt, ast.Ref(i), ast.Ref(n)),
			Post: inc(i),
			Body: []ast.Stmt{
				&ast.If{
					Cond: ast.Bin(ast.OpEq, ast.Bin(ast.OpMod, ast.Ref(i), ast.Int(3)), ast.Int(0)),
					Then: []ast.Stmt{&ast.Continue{}},
				},
				ast.Do(ast.Set(ast.Ref(total), ast.Bin(ast.OpAdd, ast.Ref(total), ast.Ref(i)))),
				&ast.If{
					Cond: ast.Bin(ast.OpGt, ast.Ref(total), ast.Int(20)),
					Then: []ast.Stmt{&ast.Break{}},
				},
			},
		},
		&ast.Return{X: ast.Ref(total)},
	)
	return &Built{Program: p, Entry: fd.ID, Args: []interp.Value{10}, Only: []string{"accumulate"}}
}
