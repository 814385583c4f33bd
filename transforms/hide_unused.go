package transforms

import "github.com/gogpu/hlslxc/hlslfront"

// HideUnusedArguments marks each parameter of fn whose name is never
// referenced in its body as Hidden, so the lowering pass can drop it from
// the generated function signature.
func HideUnusedArguments(fn *hlslfront.FunctionDecl) {
	used := map[string]bool{}
	if fn.Body != nil {
		collectIdents(fn.Body.Statements, used)
	}
	for _, p := range fn.Params {
		if !used[p.Name] {
			p.Hidden = true
		}
	}
}

func collectIdents(stmts []hlslfront.Stmt, used map[string]bool) {
	for _, s := range stmts {
		collectIdentsStmt(s, used)
	}
}

func collectIdentsStmt(s hlslfront.Stmt, used map[string]bool) {
	switch n := s.(type) {
	case *hlslfront.BlockStmt:
		collectIdents(n.Statements, used)
	case *hlslfront.ReturnStmt:
		collectIdentsExpr(n.Value, used)
	case *hlslfront.IfStmt:
		collectIdentsExpr(n.Condition, used)
		if n.Body != nil {
			collectIdents(n.Body.Statements, used)
		}
		if n.Else != nil {
			collectIdentsStmt(n.Else, used)
		}
	case *hlslfront.ForStmt:
		if n.Init != nil {
			collectIdentsStmt(n.Init, used)
		}
		collectIdentsExpr(n.Condition, used)
		if n.Update != nil {
			collectIdentsStmt(n.Update, used)
		}
		if n.Body != nil {
			collectIdents(n.Body.Statements, used)
		}
	case *hlslfront.WhileStmt:
		collectIdentsExpr(n.Condition, used)
		if n.Body != nil {
			collectIdents(n.Body.Statements, used)
		}
	case *hlslfront.DoWhileStmt:
		collectIdentsExpr(n.Condition, used)
		if n.Body != nil {
			collectIdents(n.Body.Statements, used)
		}
	case *hlslfront.AssignStmt:
		collectIdentsExpr(n.Left, used)
		collectIdentsExpr(n.Right, used)
	case *hlslfront.IncDecStmt:
		collectIdentsExpr(n.Target, used)
	case *hlslfront.ExprStmt:
		collectIdentsExpr(n.Expr, used)
	case *hlslfront.SwitchStmt:
		collectIdentsExpr(n.Selector, used)
		for _, c := range n.Cases {
			for _, sel := range c.Selectors {
				collectIdentsExpr(sel, used)
			}
			if c.Body != nil {
				collectIdents(c.Body.Statements, used)
			}
		}
	case *hlslfront.VarDecl:
		collectIdentsExpr(n.Init, used)
	case *hlslfront.ConstDecl:
		collectIdentsExpr(n.Init, used)
	}
}

func collectIdentsExpr(e hlslfront.Expr, used map[string]bool) {
	switch n := e.(type) {
	case nil:
		return
	case *hlslfront.Ident:
		used[n.Name] = true
	case *hlslfront.BinaryExpr:
		collectIdentsExpr(n.Left, used)
		collectIdentsExpr(n.Right, used)
	case *hlslfront.UnaryExpr:
		collectIdentsExpr(n.Operand, used)
	case *hlslfront.TernaryExpr:
		collectIdentsExpr(n.Condition, used)
		collectIdentsExpr(n.Then, used)
		collectIdentsExpr(n.Else, used)
	case *hlslfront.CallExpr:
		for _, a := range n.Args {
			collectIdentsExpr(a, used)
		}
	case *hlslfront.IndexExpr:
		collectIdentsExpr(n.Expr, used)
		collectIdentsExpr(n.Index, used)
	case *hlslfront.MemberExpr:
		collectIdentsExpr(n.Expr, used)
	case *hlslfront.MethodCallExpr:
		collectIdentsExpr(n.Receiver, used)
		for _, a := range n.Args {
			collectIdentsExpr(a, used)
		}
	case *hlslfront.ConstructExpr:
		for _, a := range n.Args {
			collectIdentsExpr(a, used)
		}
	case *hlslfront.CastExpr:
		collectIdentsExpr(n.Expr, used)
	}
}
