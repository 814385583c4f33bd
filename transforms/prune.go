// Package transforms implements the AST rewrite passes that run between
// parsing and code generation: reachability pruning, declaration ordering,
// resource parameter grouping, dead-argument hiding, and the alpha-test
// injection used by legacy forward-rendering pipelines.
package transforms

import "github.com/gogpu/hlslxc/hlslfront"

// PruneTree marks every struct, function, global variable, and cbuffer not
// reachable from entry0 (and, if non-empty, entry1) as Hidden. It mirrors
// the reference compiler's two-entry-point reachability walk used when a
// vertex and pixel shader share one source file.
func PruneTree(mod *hlslfront.Module, entry0, entry1 string) error {
	g := newGraph(mod)

	for i := range mod.Structs {
		mod.Structs[i].Hidden = true
	}
	for i := range mod.Functions {
		mod.Functions[i].Hidden = true
	}
	for i := range mod.GlobalVars {
		mod.GlobalVars[i].Hidden = true
	}
	for i := range mod.CBuffers {
		mod.CBuffers[i].Hidden = true
	}

	visited := map[string]bool{}
	for _, entry := range []string{entry0, entry1} {
		if entry == "" {
			continue
		}
		g.walkFunction(entry, visited)
	}
	return nil
}

// reachabilityGraph indexes declarations by name so walkFunction can look up
// callees, referenced globals, and field types without re-scanning the
// module on every visit.
type reachabilityGraph struct {
	mod        *hlslfront.Module
	funcByName map[string]*hlslfront.FunctionDecl
	varByName  map[string]*hlslfront.VarDecl
	structByName map[string]*hlslfront.StructDecl
	cbufferOf  map[string]*hlslfront.CBufferDecl // field name -> owning cbuffer
	cbufferVar map[string]*hlslfront.CBufferDecl // cbuffer name -> cbuffer
}

func newGraph(mod *hlslfront.Module) *reachabilityGraph {
	g := &reachabilityGraph{
		mod:          mod,
		funcByName:   map[string]*hlslfront.FunctionDecl{},
		varByName:    map[string]*hlslfront.VarDecl{},
		structByName: map[string]*hlslfront.StructDecl{},
		cbufferOf:    map[string]*hlslfront.CBufferDecl{},
		cbufferVar:   map[string]*hlslfront.CBufferDecl{},
	}
	for _, f := range mod.Functions {
		g.funcByName[f.Name] = f
	}
	for _, v := range mod.GlobalVars {
		g.varByName[v.Name] = v
	}
	for _, s := range mod.Structs {
		g.structByName[s.Name] = s
	}
	for _, cb := range mod.CBuffers {
		g.cbufferVar[cb.Name] = cb
		for _, m := range cb.Members {
			g.cbufferOf[m.Name] = cb
		}
	}
	return g
}

func (g *reachabilityGraph) walkFunction(name string, visited map[string]bool) {
	if visited[name] {
		return
	}
	visited[name] = true
	f, ok := g.funcByName[name]
	if !ok {
		return
	}
	f.Hidden = false
	g.touchType(f.ReturnType)
	for _, p := range f.Params {
		g.touchType(p.Type)
	}
	if f.Body != nil {
		g.walkStmts(f.Body.Statements, visited)
	}
}

func (g *reachabilityGraph) walkStmts(stmts []hlslfront.Stmt, visited map[string]bool) {
	for _, s := range stmts {
		g.walkStmt(s, visited)
	}
}

func (g *reachabilityGraph) walkStmt(s hlslfront.Stmt, visited map[string]bool) {
	switch n := s.(type) {
	case *hlslfront.BlockStmt:
		g.walkStmts(n.Statements, visited)
	case *hlslfront.ReturnStmt:
		g.walkExpr(n.Value, visited)
	case *hlslfront.IfStmt:
		g.walkExpr(n.Condition, visited)
		if n.Body != nil {
			g.walkStmts(n.Body.Statements, visited)
		}
		if n.Else != nil {
			g.walkStmt(n.Else, visited)
		}
	case *hlslfront.ForStmt:
		if n.Init != nil {
			g.walkStmt(n.Init, visited)
		}
		g.walkExpr(n.Condition, visited)
		if n.Update != nil {
			g.walkStmt(n.Update, visited)
		}
		if n.Body != nil {
			g.walkStmts(n.Body.Statements, visited)
		}
	case *hlslfront.WhileStmt:
		g.walkExpr(n.Condition, visited)
		if n.Body != nil {
			g.walkStmts(n.Body.Statements, visited)
		}
	case *hlslfront.DoWhileStmt:
		g.walkExpr(n.Condition, visited)
		if n.Body != nil {
			g.walkStmts(n.Body.Statements, visited)
		}
	case *hlslfront.AssignStmt:
		g.walkExpr(n.Left, visited)
		g.walkExpr(n.Right, visited)
	case *hlslfront.IncDecStmt:
		g.walkExpr(n.Target, visited)
	case *hlslfront.ExprStmt:
		g.walkExpr(n.Expr, visited)
	case *hlslfront.SwitchStmt:
		g.walkExpr(n.Selector, visited)
		for _, c := range n.Cases {
			for _, sel := range c.Selectors {
				g.walkExpr(sel, visited)
			}
			if c.Body != nil {
				g.walkStmts(c.Body.Statements, visited)
			}
		}
	case *hlslfront.VarDecl:
		g.touchType(n.Type)
		g.walkExpr(n.Init, visited)
	case *hlslfront.ConstDecl:
		g.touchType(n.Type)
		g.walkExpr(n.Init, visited)
	}
}

func (g *reachabilityGraph) walkExpr(e hlslfront.Expr, visited map[string]bool) {
	switch n := e.(type) {
	case nil:
		return
	case *hlslfront.Ident:
		g.touchIdent(n.Name, visited)
	case *hlslfront.BinaryExpr:
		g.walkExpr(n.Left, visited)
		g.walkExpr(n.Right, visited)
	case *hlslfront.UnaryExpr:
		g.walkExpr(n.Operand, visited)
	case *hlslfront.TernaryExpr:
		g.walkExpr(n.Condition, visited)
		g.walkExpr(n.Then, visited)
		g.walkExpr(n.Else, visited)
	case *hlslfront.CallExpr:
		if n.Func != nil {
			g.walkFunction(n.Func.Name, visited)
		}
		for _, a := range n.Args {
			g.walkExpr(a, visited)
		}
	case *hlslfront.IndexExpr:
		g.walkExpr(n.Expr, visited)
		g.walkExpr(n.Index, visited)
	case *hlslfront.MemberExpr:
		g.walkExpr(n.Expr, visited)
	case *hlslfront.MethodCallExpr:
		g.walkExpr(n.Receiver, visited)
		for _, a := range n.Args {
			g.walkExpr(a, visited)
		}
	case *hlslfront.ConstructExpr:
		g.touchType(n.Type)
		for _, a := range n.Args {
			g.walkExpr(a, visited)
		}
	case *hlslfront.CastExpr:
		g.touchType(n.Type)
		g.walkExpr(n.Expr, visited)
	}
}

func (g *reachabilityGraph) touchIdent(name string, visited map[string]bool) {
	if v, ok := g.varByName[name]; ok {
		v.Hidden = false
		g.touchType(v.Type)
	}
	if cb, ok := g.cbufferOf[name]; ok {
		cb.Hidden = false
	}
	if cb, ok := g.cbufferVar[name]; ok {
		cb.Hidden = false
	}
}

func (g *reachabilityGraph) touchType(t hlslfront.Type) {
	switch n := t.(type) {
	case *hlslfront.NamedType:
		if s, ok := g.structByName[n.Name]; ok {
			s.Hidden = false
			for _, m := range s.Members {
				g.touchType(m.Type)
			}
		}
		for _, p := range n.TypeParams {
			g.touchType(p)
		}
	case *hlslfront.ArrayType:
		g.touchType(n.Element)
	}
}
