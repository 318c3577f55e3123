package ast

// Expr is an expression node. The set of implementations is closed.
type Expr interface {
	Type() Type
	exprNode()
}

// Literal is a constant: nil, bool, int, float64 or string.
type Literal struct {
	Value any
	Typ   Type
}

// LocalRef reads or names a parameter or local variable.
type LocalRef struct {
	Var *Variable
}

// This is the receiver of the enclosing method.
type This struct {
	Typ Type
}

// UnaryOp is a prefix or postfix operator.
type UnaryOp int

const (
	OpNeg UnaryOp = iota
	OpPlus
	OpNot
	OpBitNot
	OpTypeof
	OpPreInc
	OpPreDec
	OpPostInc
	OpPostDec
)

var unaryNames = [...]string{
	OpNeg:     "-",
	OpPlus:    "+",
	OpNot:     "!",
	OpBitNot:  "~",
	OpTypeof:  "typeof ",
	OpPreInc:  "++",
	OpPreDec:  "--",
	OpPostInc: "++",
	OpPostDec: "--",
}

func (op UnaryOp) String() string {
	if int(op) < len(unaryNames) {
		return unaryNames[op]
	}
	return "?"
}

// IsIncDec reports whether the operator writes its operand.
func (op UnaryOp) IsIncDec() bool {
	return op >= OpPreInc && op <= OpPostDec
}

// IsPostfix reports whether the operator is written after its operand.
func (op UnaryOp) IsPostfix() bool {
	return op == OpPostInc || op == OpPostDec
}

// Unary applies an operator to one operand.
type Unary struct {
	X   Expr
	Typ Type
	Op  UnaryOp
}

// BinaryOp is an infix operator. OpIndex is array or map subscripting.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpLt
	OpLe
	OpGt
	OpGe
	OpEq
	OpNe
	OpAnd
	OpOr
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl
	OpShr
	OpIn
	OpIndex
)

var binaryNames = [...]string{
	OpAdd:    "+",
	OpSub:    "-",
	OpMul:    "*",
	OpDiv:    "/",
	OpMod:    "%",
	OpLt:     "<",
	OpLe:     "<=",
	OpGt:     ">",
	OpGe:     ">=",
	OpEq:     "==",
	OpNe:     "!=",
	OpAnd:    "&&",
	OpOr:     "||",
	OpBitAnd: "&",
	OpBitOr:  "|",
	OpBitXor: "^",
	OpShl:    "<<",
	OpShr:    ">>",
	OpIn:     "in",
	OpIndex:  "[]",
}

func (op BinaryOp) String() string {
	if int(op) < len(binaryNames) {
		return binaryNames[op]
	}
	return "?"
}

// IsComparison reports whether the operator yields a boolean.
func (op BinaryOp) IsComparison() bool {
	switch op {
	case OpLt, OpLe, OpGt, OpGe, OpEq, OpNe, OpIn:
		return true
	}
	return false
}

// IsLogical reports whether the operator short-circuits.
func (op BinaryOp) IsLogical() bool {
	return op == OpAnd || op == OpOr
}

// Binary applies an operator to two operands.
type Binary struct {
	X   Expr
	Y   Expr
	Typ Type
	Op  BinaryOp
}

// Conditional is `Cond ? Then : Else`.
type Conditional struct {
	Cond Expr
	Then Expr
	Else Expr
	Typ  Type
}

// Assign stores Value into Target and yields the stored value.
type Assign struct {
	Target Expr
	Value  Expr
}

// Call invokes Callee with Args.
type Call struct {
	Callee Expr
	Typ    Type
	Args   []Expr
}

// FuncLit is a function value whose definition lives in the Program arena.
type FuncLit struct {
	Typ  *FunctionType
	Func FuncID
}

// Property reads a member of an object.
type Property struct {
	X    Expr
	Typ  Type
	Name string
}

// New constructs an instance of Class.
type New struct {
	Class *Class
	Args  []Expr
}

func (e *Literal) Type() Type     { return e.Typ }
func (e *LocalRef) Type() Type    { return e.Var.Type }
func (e *This) Type() Type        { return e.Typ }
func (e *Unary) Type() Type       { return e.Typ }
func (e *Binary) Type() Type      { return e.Typ }
func (e *Conditional) Type() Type { return e.Typ }
func (e *Assign) Type() Type      { return e.Target.Type() }
func (e *Call) Type() Type        { return e.Typ }
func (e *FuncLit) Type() Type     { return e.Typ }
func (e *Property) Type() Type    { return e.Typ }
func (e *New) Type() Type         { return &ObjectType{Class: e.Class} }

func (*Literal) exprNode()     {}
func (*LocalRef) exprNode()    {}
func (*This) exprNode()        {}
func (*Unary) exprNode()       {}
func (*Binary) exprNode()      {}
func (*Conditional) exprNode() {}
func (*Assign) exprNode()      {}
func (*Call) exprNode()        {}
func (*FuncLit) exprNode()     {}
func (*Property) exprNode()    {}
func (*New) exprNode()         {}
