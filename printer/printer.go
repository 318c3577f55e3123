// Package printer renders function definitions as JavaScript-like source.
//
// Closures are printed inline where their literal appears, so printing the
// root functions of a Program shows every function it holds. Pass-internal
// statements print as goto and label lines:
//
//	$TEST_WHILE_1:
//	if (i < n) goto $BODY_WHILE_1; else goto $END_WHILE_1;
package printer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wippyai/genlower/ast"
)

const indentUnit = "  "

// Func renders the function id and every closure nested in it.
func Func(prog *ast.Program, id ast.FuncID) string {
	p := &printer{prog: prog}
	fd := prog.Func(id)
	if fd == nil {
		return fmt.Sprintf("<missing function #%d>\n", id)
	}
	p.funcDef(fd)
	p.b.WriteByte('\n')
	return p.b.String()
}

// Program renders every root function of prog, separated by blank lines.
func Program(prog *ast.Program) string {
	parts := make([]string, 0, len(prog.Roots()))
	for _, id := range prog.Roots() {
		parts = append(parts, Func(prog, id))
	}
	return strings.Join(parts, "\n")
}

// Stmts renders a statement sequence at the top level.
func Stmts(prog *ast.Program, stmts []ast.Stmt) string {
	p := &printer{prog: prog}
	p.block(stmts)
	return p.b.String()
}

// Expr renders a single expression.
func Expr(prog *ast.Program, e ast.Expr) string {
	p := &printer{prog: prog}
	p.expr(e)
	return p.b.String()
}

type printer struct {
	prog   *ast.Program
	b      strings.Builder
	indent int
}

func (p *printer) line(format string, args ...any) {
	p.pad()
	fmt.Fprintf(&p.b, format, args...)
	p.b.WriteByte('\n')
}

func (p *printer) pad() {
	for i := 0; i < p.indent; i++ {
		p.b.WriteString(indentUnit)
	}
}

func (p *printer) funcDef(fd *ast.FuncDef) {
	p.b.WriteString("function")
	if fd.Generator {
		p.b.WriteByte('*')
	}
	p.b.WriteByte(' ')
	p.b.WriteString(fd.Name)
	p.b.WriteByte('(')
	for i, v := range fd.Params {
		if i > 0 {
			p.b.WriteString(", ")
		}
		p.b.WriteString(v.Name)
	}
	p.b.WriteString(") {\n")

	p.indent++
	if len(fd.Locals) > 0 {
		names := make([]string, len(fd.Locals))
		for i, v := range fd.Locals {
			names[i] = v.Name
		}
		p.line("var %s;", strings.Join(names, ", "))
	}
	p.block(fd.Body)
	p.indent--

	p.pad()
	p.b.WriteByte('}')
}

func (p *printer) block(stmts []ast.Stmt) {
	for _, s := range stmts {
		p.stmt(s)
	}
}

// nested prints an indented block closed by a brace line opened by the
// caller.
func (p *printer) nested(stmts []ast.Stmt) {
	p.indent++
	p.block(stmts)
	p.indent--
}

// exprLine prints prefix, e and suffix as one statement line.
func (p *printer) exprLine(prefix string, e ast.Expr, suffix string) {
	p.pad()
	p.b.WriteString(prefix)
	p.expr(e)
	p.b.WriteString(suffix)
	p.b.WriteByte('\n')
}

func labelPrefix(label string) string {
	if label == "" {
		return ""
	}
	return label + ": "
}

func (p *printer) stmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.ExprStmt:
		p.exprLine("", s.X, ";")

	case *ast.Return:
		if s.X == nil {
			p.line("return;")
			return
		}
		p.exprLine("return ", s.X, ";")

	case *ast.Yield:
		p.exprLine("yield ", s.X, ";")

	case *ast.Delete:
		p.exprLine("delete ", s.X, ";")

	case *ast.Throw:
		p.exprLine("throw ", s.X, ";")

	case *ast.Break:
		if s.Label == "" {
			p.line("break;")
		} else {
			p.line("break %s;", s.Label)
		}

	case *ast.Continue:
		if s.Label == "" {
			p.line("continue;")
		} else {
			p.line("continue %s;", s.Label)
		}

	case *ast.If:
		p.exprLine("if (", s.Cond, ") {")
		p.nested(s.Then)
		if len(s.Else) > 0 {
			p.line("} else {")
			p.nested(s.Else)
		}
		p.line("}")

	case *ast.While:
		p.exprLine(labelPrefix(s.Label)+"while (", s.Cond, ") {")
		p.nested(s.Body)
		p.line("}")

	case *ast.DoWhile:
		p.line("%sdo {", labelPrefix(s.Label))
		p.nested(s.Body)
		p.exprLine("} while (", s.Cond, ");")

	case *ast.For:
		p.pad()
		p.b.WriteString(labelPrefix(s.Label))
		p.b.WriteString("for (")
		p.optExpr(s.Init)
		p.b.WriteString("; ")
		p.optExpr(s.Cond)
		p.b.WriteString("; ")
		p.optExpr(s.Post)
		p.b.WriteString(") {\n")
		p.nested(s.Body)
		p.line("}")

	case *ast.ForIn:
		key := "?"
		if s.Key != nil {
			key = s.Key.Name
		}
		p.exprLine(labelPrefix(s.Label)+"for ("+key+" in ", s.X, ") {")
		p.nested(s.Body)
		p.line("}")

	case *ast.Switch:
		p.exprLine(labelPrefix(s.Label)+"switch (", s.Subject, ") {")
		p.switchBody(s.Body)
		p.line("}")

	case *ast.Case:
		p.exprLine("case ", s.X, ":")

	case *ast.Default:
		p.line("default:")

	case *ast.Try:
		p.line("try {")
		p.nested(s.Body)
		for _, c := range s.Catches {
			p.catch(c)
		}
		p.line("}")

	case *ast.Catch:
		p.catch(s)
		p.line("}")

	case *ast.Assert:
		p.pad()
		p.b.WriteString("assert(")
		p.expr(s.X)
		if s.Message != "" {
			p.b.WriteString(", ")
			p.b.WriteString(strconv.Quote(s.Message))
		}
		p.b.WriteString(");\n")

	case *ast.Log:
		p.pad()
		p.b.WriteString("log(")
		p.list(s.Args)
		p.b.WriteString(");\n")

	case *ast.Debugger:
		p.line("debugger;")

	case *ast.CtorInvocation:
		p.pad()
		p.b.WriteString("super(")
		p.list(s.Args)
		p.b.WriteString(");\n")

	case *ast.Label:
		p.line("%s:", s.Name)

	case *ast.Goto:
		p.line("goto %s;", s.Name)

	case *ast.CondGoto:
		p.exprLine("if (", s.Cond, fmt.Sprintf(") goto %s; else goto %s;", s.Then, s.Else))

	case *ast.Dispatch:
		p.exprLine("dispatch (", s.Subject, ") {")
		p.indent++
		for _, arm := range s.Arms {
			if arm.Match == nil {
				p.line("default: goto %s;", arm.Target)
				continue
			}
			p.exprLine("case ", arm.Match, ": goto "+arm.Target+";")
		}
		p.indent--
		p.line("}")

	default:
		p.line("/* %T */", s)
	}
}

// switchBody prints case markers one level in and their statements two
// levels in.
func (p *printer) switchBody(body []ast.Stmt) {
	p.indent++
	inCase := false
	for _, s := range body {
		switch s.(type) {
		case *ast.Case, *ast.Default:
			if inCase {
				p.indent--
			}
			p.stmt(s)
			p.indent++
			inCase = true
		default:
			p.stmt(s)
		}
	}
	if inCase {
		p.indent--
	}
	p.indent--
}

func (p *printer) catch(c *ast.Catch) {
	if c.Var != nil {
		p.line("} catch (%s) {", c.Var.Name)
	} else {
		p.line("} catch {")
	}
	p.nested(c.Body)
}

func (p *printer) optExpr(e ast.Expr) {
	if e != nil {
		p.expr(e)
	}
}

func (p *printer) list(es []ast.Expr) {
	for i, e := range es {
		if i > 0 {
			p.b.WriteString(", ")
		}
		p.expr(e)
	}
}

// operand prints e, parenthesized unless it binds tighter than any
// operator it can appear under.
func (p *printer) operand(e ast.Expr) {
	switch e := e.(type) {
	case *ast.Binary:
		if e.Op == ast.OpIndex {
			p.expr(e)
			return
		}
	case *ast.Unary:
		if e.Op.IsPostfix() {
			p.expr(e)
			return
		}
	case *ast.Conditional, *ast.Assign, *ast.FuncLit:
	default:
		p.expr(e)
		return
	}
	p.b.WriteByte('(')
	p.expr(e)
	p.b.WriteByte(')')
}

func (p *printer) expr(e ast.Expr) {
	switch e := e.(type) {
	case nil:
		p.b.WriteString("<nil>")

	case *ast.Literal:
		p.b.WriteString(literal(e.Value))

	case *ast.LocalRef:
		p.b.WriteString(e.Var.Name)

	case *ast.This:
		p.b.WriteString("this")

	case *ast.FuncLit:
		fd := p.prog.Func(e.Func)
		if fd == nil {
			fmt.Fprintf(&p.b, "<missing function #%d>", e.Func)
			return
		}
		p.funcDef(fd)

	case *ast.Unary:
		if e.Op.IsPostfix() {
			p.operand(e.X)
			p.b.WriteString(e.Op.String())
			return
		}
		p.b.WriteString(e.Op.String())
		p.operand(e.X)

	case *ast.Binary:
		p.operand(e.X)
		if e.Op == ast.OpIndex {
			p.b.WriteByte('[')
			p.expr(e.Y)
			p.b.WriteByte(']')
			return
		}
		p.b.WriteByte(' ')
		p.b.WriteString(e.Op.String())
		p.b.WriteByte(' ')
		p.operand(e.Y)

	case *ast.Conditional:
		p.operand(e.Cond)
		p.b.WriteString(" ? ")
		p.operand(e.Then)
		p.b.WriteString(" : ")
		p.operand(e.Else)

	case *ast.Assign:
		p.expr(e.Target)
		p.b.WriteString(" = ")
		p.expr(e.Value)

	case *ast.Call:
		p.operand(e.Callee)
		p.b.WriteByte('(')
		p.list(e.Args)
		p.b.WriteByte(')')

	case *ast.Property:
		p.operand(e.X)
		p.b.WriteByte('.')
		p.b.WriteString(e.Name)

	case *ast.New:
		p.b.WriteString("new ")
		if e.Class != nil {
			p.b.WriteString(e.Class.String())
		}
		p.b.WriteByte('(')
		p.list(e.Args)
		p.b.WriteByte(')')

	default:
		fmt.Fprintf(&p.b, "/* %T */", e)
	}
}

func literal(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(v)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return fmt.Sprint(v)
}
