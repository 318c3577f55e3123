package ast

// Children returns the direct sub-expressions of e in evaluation order.
func Children(e Expr) []Expr {
	switch e := e.(type) {
	case *Unary:
		return []Expr{e.X}
	case *Binary:
		return []Expr{e.X, e.Y}
	case *Conditional:
		return []Expr{e.Cond, e.Then, e.Else}
	case *Assign:
		return []Expr{e.Target, e.Value}
	case *Call:
		return append([]Expr{e.Callee}, e.Args...)
	case *Property:
		return []Expr{e.X}
	case *New:
		return e.Args
	}
	return nil
}

// Inspect visits e and its sub-expressions depth-first. If fn returns
// false the children of that node are skipped. Function literals are
// visited but never entered.
func Inspect(e Expr, fn func(Expr) bool) {
	if e == nil || !fn(e) {
		return
	}
	for _, c := range Children(e) {
		Inspect(c, fn)
	}
}

// Closures returns the function literals that appear in exprs at the first
// level, without looking inside the literals themselves. Each id is
// reported once, in order of appearance.
func Closures(exprs ...Expr) []FuncID {
	var ids []FuncID
	seen := make(map[FuncID]bool)
	for _, e := range exprs {
		Inspect(e, func(x Expr) bool {
			if lit, ok := x.(*FuncLit); ok {
				if !seen[lit.Func] {
					seen[lit.Func] = true
					ids = append(ids, lit.Func)
				}
				return false
			}
			return true
		})
	}
	return ids
}

// StmtExprs returns the expressions held directly by s, excluding those of
// nested statement bodies.
func StmtExprs(s Stmt) []Expr {
	var out []Expr
	add := func(es ...Expr) {
		for _, e := range es {
			if e != nil {
				out = append(out, e)
			}
		}
	}
	switch s := s.(type) {
	case *ExprStmt:
		add(s.X)
	case *Return:
		add(s.X)
	case *Yield:
		add(s.X)
	case *Delete:
		add(s.X)
	case *If:
		add(s.Cond)
	case *While:
		add(s.Cond)
	case *DoWhile:
		add(s.Cond)
	case *For:
		add(s.Init, s.Cond, s.Post)
	case *ForIn:
		add(s.X)
	case *Switch:
		add(s.Subject)
	case *Case:
		add(s.X)
	case *Throw:
		add(s.X)
	case *Assert:
		add(s.X)
	case *Log:
		add(s.Args...)
	case *CtorInvocation:
		add(s.Args...)
	case *CondGoto:
		add(s.Cond)
	case *Dispatch:
		add(s.Subject)
		for _, arm := range s.Arms {
			add(arm.Match)
		}
	}
	return out
}

// Bodies returns the nested statement lists of s.
func Bodies(s Stmt) [][]Stmt {
	switch s := s.(type) {
	case *If:
		return [][]Stmt{s.Then, s.Else}
	case *While:
		return [][]Stmt{s.Body}
	case *DoWhile:
		return [][]Stmt{s.Body}
	case *For:
		return [][]Stmt{s.Body}
	case *ForIn:
		return [][]Stmt{s.Body}
	case *Switch:
		return [][]Stmt{s.Body}
	case *Try:
		out := [][]Stmt{s.Body}
		for _, c := range s.Catches {
			out = append(out, c.Body)
		}
		return out
	case *Catch:
		return [][]Stmt{s.Body}
	}
	return nil
}

// InspectStmts visits every statement of body depth-first, entering nested
// statement bodies but never function literals.
func InspectStmts(body []Stmt, fn func(Stmt) bool) {
	for _, s := range body {
		if !fn(s) {
			continue
		}
		for _, b := range Bodies(s) {
			InspectStmts(b, fn)
		}
	}
}

// StmtClosures returns the first-level function literals appearing anywhere
// in body, including nested statement bodies.
func StmtClosures(body []Stmt) []FuncID {
	var exprs []Expr
	InspectStmts(body, func(s Stmt) bool {
		exprs = append(exprs, StmtExprs(s)...)
		return true
	})
	return Closures(exprs...)
}

// RewriteExprs replaces every expression slot of s, recursing into nested
// statement bodies. Slots holding nil are left alone.
func RewriteExprs(s Stmt, fn func(Expr) (Expr, error)) error {
	slot := func(e *Expr) error {
		if *e == nil {
			return nil
		}
		r, err := fn(*e)
		if err != nil {
			return err
		}
		*e = r
		return nil
	}
	slots := func(es []Expr) error {
		for i := range es {
			if err := slot(&es[i]); err != nil {
				return err
			}
		}
		return nil
	}
	body := func(b []Stmt) error {
		for _, st := range b {
			if err := RewriteExprs(st, fn); err != nil {
				return err
			}
		}
		return nil
	}

	switch s := s.(type) {
	case *ExprStmt:
		return slot(&s.X)
	case *Return:
		return slot(&s.X)
	case *Yield:
		return slot(&s.X)
	case *Delete:
		return slot(&s.X)
	case *Throw:
		return slot(&s.X)
	case *Assert:
		return slot(&s.X)
	case *Case:
		return slot(&s.X)
	case *Log:
		return slots(s.Args)
	case *CtorInvocation:
		return slots(s.Args)
	case *CondGoto:
		return slot(&s.Cond)
	case *If:
		if err := slot(&s.Cond); err != nil {
			return err
		}
		if err := body(s.Then); err != nil {
			return err
		}
		return body(s.Else)
	case *While:
		if err := slot(&s.Cond); err != nil {
			return err
		}
		return body(s.Body)
	case *DoWhile:
		if err := body(s.Body); err != nil {
			return err
		}
		return slot(&s.Cond)
	case *For:
		if err := slot(&s.Init); err != nil {
			return err
		}
		if err := slot(&s.Cond); err != nil {
			return err
		}
		if err := slot(&s.Post); err != nil {
			return err
		}
		return body(s.Body)
	case *ForIn:
		if err := slot(&s.X); err != nil {
			return err
		}
		return body(s.Body)
	case *Switch:
		if err := slot(&s.Subject); err != nil {
			return err
		}
		return body(s.Body)
	case *Try:
		if err := body(s.Body); err != nil {
			return err
		}
		for _, c := range s.Catches {
			if err := body(c.Body); err != nil {
				return err
			}
		}
		return nil
	case *Catch:
		return body(s.Body)
	case *Dispatch:
		if err := slot(&s.Subject); err != nil {
			return err
		}
		for i := range s.Arms {
			if err := slot(&s.Arms[i].Match); err != nil {
				return err
			}
		}
	}
	return nil
}
