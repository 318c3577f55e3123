package ast

// Constructors for building trees by hand: samples, tests and the nodes
// the pass synthesizes.

func Int(v int) *Literal        { return &Literal{Value: v, Typ: IntType} }
func Num(v float64) *Literal    { return &Literal{Value: v, Typ: NumberType} }
func Str(v string) *Literal     { return &Literal{Value: v, Typ: StringType} }
func Bool(v bool) *Literal      { return &Literal{Value: v, Typ: BoolType} }
func Null(t Type) *Literal      { return &Literal{Typ: t} }
func Ref(v *Variable) *LocalRef { return &LocalRef{Var: v} }
func Do(x Expr) *ExprStmt       { return &ExprStmt{X: x} }

// Bin builds a binary expression, deriving its type from the operator.
func Bin(op BinaryOp, x, y Expr) *Binary {
	var t Type
	switch {
	case op.IsComparison():
		t = BoolType
	case op == OpIndex:
		t = VariantType
	default:
		t = x.Type()
	}
	return &Binary{Op: op, X: x, Y: y, Typ: t}
}

// Un builds a unary expression.
func Un(op UnaryOp, x Expr) *Unary {
	t := x.Type()
	switch op {
	case OpNot:
		t = BoolType
	case OpTypeof:
		t = StringType
	}
	return &Unary{Op: op, X: x, Typ: t}
}

// Cond builds a conditional expression typed after its then branch.
func Cond(c, then, els Expr) *Conditional {
	return &Conditional{Cond: c, Then: then, Else: els, Typ: then.Type()}
}

// Set builds an assignment.
func Set(target, value Expr) *Assign {
	return &Assign{Target: target, Value: value}
}

// CallExpr builds a call, taking the result type from the callee's
// function type when it has one.
func CallExpr(callee Expr, args ...Expr) *Call {
	var t Type = Void
	if ft, ok := callee.Type().(*FunctionType); ok && ft.Result != nil {
		t = ft.Result
	}
	return &Call{Callee: callee, Args: args, Typ: t}
}

// Prop builds a member read, typed after the field when x is an object of
// a class that declares it.
func Prop(x Expr, name string) *Property {
	var t Type = VariantType
	if ot, ok := x.Type().(*ObjectType); ok && ot.Class != nil {
		if f, ok := ot.Class.Field(name); ok {
			t = f.Type
		}
	}
	return &Property{X: x, Name: name, Typ: t}
}
