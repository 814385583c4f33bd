package transforms

import (
	"strconv"

	"github.com/gogpu/hlslxc/hlslfront"
)

// EmulateAlphaTest rewrites entry's body so every return statement is
// preceded by a discard guard comparing the output alpha against threshold.
// It only fires when entry's return type is a float4/half4 color (alpha read
// off the synthesised .a member) or a bare float/half alpha value; any other
// return type leaves the function untouched, matching the reference
// compiler's legacy fixed-function alpha-test emulation.
func EmulateAlphaTest(mod *hlslfront.Module, entry string, threshold float64) {
	var fn *hlslfront.FunctionDecl
	for _, f := range mod.Functions {
		if f.Name == entry {
			fn = f
			break
		}
	}
	if fn == nil || fn.Body == nil {
		return
	}
	nt, ok := fn.ReturnType.(*hlslfront.NamedType)
	if !ok {
		return
	}
	var useAlphaMember bool
	switch nt.Name {
	case "float4", "half4":
		useAlphaMember = true
	case "float", "half":
		useAlphaMember = false
	default:
		return
	}

	fn.Body.Statements = injectAlphaTest(fn.Body.Statements, threshold, useAlphaMember)
}

func injectAlphaTest(stmts []hlslfront.Stmt, threshold float64, useAlphaMember bool) []hlslfront.Stmt {
	out := make([]hlslfront.Stmt, 0, len(stmts))
	for _, s := range stmts {
		switch n := s.(type) {
		case *hlslfront.ReturnStmt:
			if n.Value != nil {
				out = append(out, alphaGuard(n.Value, threshold, useAlphaMember, n.Span))
			}
			out = append(out, n)
		case *hlslfront.BlockStmt:
			n.Statements = injectAlphaTest(n.Statements, threshold, useAlphaMember)
			out = append(out, n)
		case *hlslfront.IfStmt:
			if n.Body != nil {
				n.Body.Statements = injectAlphaTest(n.Body.Statements, threshold, useAlphaMember)
			}
			if n.Else != nil {
				n.Else = injectAlphaTestSingle(n.Else, threshold, useAlphaMember)
			}
			out = append(out, n)
		case *hlslfront.ForStmt:
			if n.Body != nil {
				n.Body.Statements = injectAlphaTest(n.Body.Statements, threshold, useAlphaMember)
			}
			out = append(out, n)
		case *hlslfront.WhileStmt:
			if n.Body != nil {
				n.Body.Statements = injectAlphaTest(n.Body.Statements, threshold, useAlphaMember)
			}
			out = append(out, n)
		case *hlslfront.DoWhileStmt:
			if n.Body != nil {
				n.Body.Statements = injectAlphaTest(n.Body.Statements, threshold, useAlphaMember)
			}
			out = append(out, n)
		case *hlslfront.SwitchStmt:
			for _, c := range n.Cases {
				if c.Body != nil {
					c.Body.Statements = injectAlphaTest(c.Body.Statements, threshold, useAlphaMember)
				}
			}
			out = append(out, n)
		default:
			out = append(out, s)
		}
	}
	return out
}

func injectAlphaTestSingle(s hlslfront.Stmt, threshold float64, useAlphaMember bool) hlslfront.Stmt {
	switch n := s.(type) {
	case *hlslfront.BlockStmt:
		n.Statements = injectAlphaTest(n.Statements, threshold, useAlphaMember)
		return n
	case *hlslfront.IfStmt:
		wrapped := injectAlphaTest([]hlslfront.Stmt{n}, threshold, useAlphaMember)
		return wrapped[0]
	default:
		return s
	}
}

func alphaGuard(value hlslfront.Expr, threshold float64, useAlphaMember bool, span hlslfront.Span) hlslfront.Stmt {
	alpha := value
	if useAlphaMember {
		alpha = &hlslfront.MemberExpr{Expr: value, Member: "a", Span: span}
	}
	cond := &hlslfront.BinaryExpr{
		Left:  alpha,
		Op:    hlslfront.TokenLess,
		Right: &hlslfront.Literal{Kind: hlslfront.TokenFloatLiteral, Value: strconv.FormatFloat(threshold, 'g', -1, 64), Span: span},
		Span:  span,
	}
	return &hlslfront.IfStmt{
		Condition: cond,
		Body: &hlslfront.BlockStmt{
			Statements: []hlslfront.Stmt{&hlslfront.DiscardStmt{Span: span}},
			Span:       span,
		},
		Span: span,
	}
}
