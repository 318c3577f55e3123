package ast

// Stmt is a statement node. The set of implementations is closed.
type Stmt interface {
	stmtNode()
}

// Labelled is implemented by statements that break and continue can target.
type Labelled interface {
	Stmt
	LabelName() string
}

// ExprStmt evaluates an expression for its effects.
type ExprStmt struct {
	X Expr
}

// Return leaves the enclosing function. X may be nil.
type Return struct {
	X Expr
}

// Yield suspends a generator, producing X.
type Yield struct {
	X Expr
}

// Delete removes the member or element named by X.
type Delete struct {
	X Expr
}

// Break leaves the innermost (or the labelled) loop or switch.
type Break struct {
	Label string
}

// Continue restarts the innermost (or the labelled) loop.
type Continue struct {
	Label string
}

// If runs Then or Else depending on Cond.
type If struct {
	Cond Expr
	Then []Stmt
	Else []Stmt
}

// While is a pre-tested loop.
type While struct {
	Cond  Expr
	Label string
	Body  []Stmt
}

// DoWhile is a post-tested loop.
type DoWhile struct {
	Cond  Expr
	Label string
	Body  []Stmt
}

// For is a three-clause loop. Init, Cond and Post may be nil.
type For struct {
	Init  Expr
	Cond  Expr
	Post  Expr
	Label string
	Body  []Stmt
}

// ForIn iterates over the keys of X.
type ForIn struct {
	Key   *Variable
	X     Expr
	Label string
	Body  []Stmt
}

// Switch dispatches on Subject. Body interleaves Case and Default markers
// with the statements that follow them, so fallthrough is positional.
type Switch struct {
	Subject Expr
	Label   string
	Body    []Stmt
}

// Case marks the start of the statements run when the subject equals X.
type Case struct {
	X Expr
}

// Default marks the start of the statements run when no case matches.
type Default struct{}

// Try runs Body, handing thrown values to Catches.
type Try struct {
	Body    []Stmt
	Catches []*Catch
}

// Catch handles values thrown from a Try body.
type Catch struct {
	Var  *Variable
	Body []Stmt
}

// Throw raises X.
type Throw struct {
	X Expr
}

// Assert fails when X is false.
type Assert struct {
	X       Expr
	Message string
}

// Log prints Args.
type Log struct {
	Args []Expr
}

// Debugger is a breakpoint.
type Debugger struct{}

// CtorInvocation calls a superclass constructor from a constructor body.
type CtorInvocation struct {
	Class *Class
	Args  []Expr
}

// Label names a jump target. Only present between lowering and elimination.
type Label struct {
	Name string
}

// Goto transfers control to a Label. Only present between lowering and elimination.
type Goto struct {
	Name string
}

// CondGoto jumps to Then when Cond holds and to Else otherwise.
type CondGoto struct {
	Cond Expr
	Then string
	Else string
}

// DispatchArm is one target of a Dispatch. A nil Match is the default arm.
type DispatchArm struct {
	Match  Expr
	Target string
}

// Dispatch jumps to the first arm whose Match equals Subject, or to the
// default arm. With no match and no default, control continues after it.
type Dispatch struct {
	Subject Expr
	Arms    []DispatchArm
}

func (s *While) LabelName() string   { return s.Label }
func (s *DoWhile) LabelName() string { return s.Label }
func (s *For) LabelName() string     { return s.Label }
func (s *ForIn) LabelName() string   { return s.Label }
func (s *Switch) LabelName() string  { return s.Label }

func (*ExprStmt) stmtNode()       {}
func (*Return) stmtNode()         {}
func (*Yield) stmtNode()          {}
func (*Delete) stmtNode()         {}
func (*Break) stmtNode()          {}
func (*Continue) stmtNode()       {}
func (*If) stmtNode()             {}
func (*While) stmtNode()          {}
func (*DoWhile) stmtNode()        {}
func (*For) stmtNode()            {}
func (*ForIn) stmtNode()          {}
func (*Switch) stmtNode()         {}
func (*Case) stmtNode()           {}
func (*Default) stmtNode()        {}
func (*Try) stmtNode()            {}
func (*Catch) stmtNode()          {}
func (*Throw) stmtNode()          {}
func (*Assert) stmtNode()         {}
func (*Log) stmtNode()            {}
func (*Debugger) stmtNode()       {}
func (*CtorInvocation) stmtNode() {}
func (*Label) stmtNode()          {}
func (*Goto) stmtNode()           {}
func (*CondGoto) stmtNode()       {}
func (*Dispatch) stmtNode()       {}
