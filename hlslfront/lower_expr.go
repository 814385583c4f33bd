package hlslfront

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gogpu/hlslxc/ir"
)

// lowerFunctionSignature lowers a function's arguments and return type only.
// It does not touch l.fn/l.locals/l.params; those are scoped to body
// lowering and are only valid once every function's signature is resolvable
// (see run()'s two-pass function handling).
func (l *Lowerer) lowerFunctionSignature(decl *FunctionDecl) (*ir.Function, error) {
	fn := &ir.Function{Name: decl.Name}
	for _, p := range decl.Params {
		if p.Hidden {
			continue
		}
		th, err := l.lowerType(p.Type, p.Span)
		if err != nil {
			return nil, err
		}
		fn.Arguments = append(fn.Arguments, ir.FunctionArgument{
			Name:    p.Name,
			Type:    th,
			Binding: l.semanticBinding(p.Semantic, ""),
		})
	}
	if rt, ok := decl.ReturnType.(*NamedType); !ok || rt.Name != "void" {
		th, err := l.lowerType(decl.ReturnType, decl.Span)
		if err != nil {
			return nil, err
		}
		fn.Result = &ir.FunctionResult{Type: th, Binding: l.semanticBinding(decl.Semantic, "")}
	}
	return fn, nil
}

// lowerFunctionBody lowers a function's body into a fresh ir.Function that
// already carries the signature computed by lowerFunctionSignature (looked
// up again here so parameter names map to argument indices).
func (l *Lowerer) lowerFunctionBody(decl *FunctionDecl) (*ir.Function, error) {
	handle := l.functionByIdx[decl.Name]
	sig := l.module.Functions[handle]
	fn := &ir.Function{Name: sig.Name, Arguments: sig.Arguments, Result: sig.Result}
	l.fn = fn
	l.locals = map[string]uint32{}
	l.params = map[string]uint32{}
	defer func() { l.fn = nil; l.locals = nil; l.params = nil }()

	argIdx := 0
	for _, p := range decl.Params {
		if p.Hidden {
			continue
		}
		l.params[p.Name] = uint32(argIdx)
		argIdx++
	}

	body, err := l.lowerBlock(decl.Body)
	if err != nil {
		return nil, err
	}
	fn.Body = body
	return fn, nil
}

// emit appends expr to the current function's expression arena, resolves
// its type eagerly (backends read Function.ExpressionTypes as a precomputed
// parallel array), and records a StmtEmit covering exactly this expression.
func (l *Lowerer) emit(dst *[]ir.Statement, kind ir.ExpressionKind) ir.ExpressionHandle {
	handle := ir.ExpressionHandle(len(l.fn.Expressions))
	l.fn.Expressions = append(l.fn.Expressions, ir.Expression{Kind: kind})
	resolution, err := ir.ResolveExpressionType(l.module, l.fn, handle)
	if err != nil {
		resolution = ir.TypeResolution{}
	}
	l.fn.ExpressionTypes = append(l.fn.ExpressionTypes, resolution)
	*dst = append(*dst, ir.Statement{Kind: ir.StmtEmit{Range: ir.Range{Start: uint32(handle), End: uint32(handle) + 1}}})
	return handle
}

func (l *Lowerer) addLocal(name string, th ir.TypeHandle, init *ir.ExpressionHandle) uint32 {
	idx := uint32(len(l.fn.LocalVars))
	l.fn.LocalVars = append(l.fn.LocalVars, ir.LocalVariable{Name: name, Type: th, Init: init})
	l.locals[name] = idx
	return idx
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func (l *Lowerer) lowerBlock(b *BlockStmt) ([]ir.Statement, error) {
	var out []ir.Statement
	for _, s := range b.Statements {
		if err := l.lowerStmt(s, &out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (l *Lowerer) lowerStmt(s Stmt, dst *[]ir.Statement) error {
	switch n := s.(type) {
	case *VarDecl:
		return l.lowerLocalVar(n, dst)
	case *ConstDecl:
		return l.lowerLocalConst(n, dst)
	case *BlockStmt:
		body, err := l.lowerBlock(n)
		if err != nil {
			return err
		}
		*dst = append(*dst, ir.Statement{Kind: ir.StmtBlock{Block: body}})
		return nil
	case *ReturnStmt:
		var val *ir.ExpressionHandle
		if n.Value != nil {
			h, err := l.lowerExpr(n.Value, dst)
			if err != nil {
				return err
			}
			val = &h
		}
		*dst = append(*dst, ir.Statement{Kind: ir.StmtReturn{Value: val}})
		return nil
	case *IfStmt:
		return l.lowerIf(n, dst)
	case *ForStmt:
		return l.lowerFor(n, dst)
	case *WhileStmt:
		return l.lowerWhile(n, dst)
	case *DoWhileStmt:
		return l.lowerDoWhile(n, dst)
	case *BreakStmt:
		*dst = append(*dst, ir.Statement{Kind: ir.StmtBreak{}})
		return nil
	case *ContinueStmt:
		*dst = append(*dst, ir.Statement{Kind: ir.StmtContinue{}})
		return nil
	case *DiscardStmt:
		*dst = append(*dst, ir.Statement{Kind: ir.StmtKill{}})
		return nil
	case *AssignStmt:
		return l.lowerAssign(n, dst)
	case *IncDecStmt:
		return l.lowerIncDec(n, dst)
	case *ExprStmt:
		_, err := l.lowerExpr(n.Expr, dst)
		return err
	case *SwitchStmt:
		return l.lowerSwitch(n, dst)
	default:
		return fmt.Errorf("hlslfront: unsupported statement %T at %s", s, s.Pos().Start)
	}
}

func (l *Lowerer) lowerLocalVar(v *VarDecl, dst *[]ir.Statement) error {
	th, err := l.lowerType(v.Type, v.Span)
	if err != nil {
		return err
	}
	var init *ir.ExpressionHandle
	if v.Init != nil {
		h, err := l.lowerExpr(v.Init, dst)
		if err != nil {
			return err
		}
		init = &h
	}
	idx := l.addLocal(v.Name, th, nil)
	if init != nil {
		ptr := l.emit(dst, ir.ExprLocalVariable{Variable: idx})
		*dst = append(*dst, ir.Statement{Kind: ir.StmtStore{Pointer: ptr, Value: *init}})
	}
	return nil
}

func (l *Lowerer) lowerLocalConst(c *ConstDecl, dst *[]ir.Statement) error {
	if v, ok := l.evalConstInt(c.Init); ok {
		l.constInts[c.Name] = v
	}
	return l.lowerLocalVar(&VarDecl{Name: c.Name, Type: c.Type, Init: c.Init, Span: c.Span}, dst)
}

func (l *Lowerer) lowerIf(n *IfStmt, dst *[]ir.Statement) error {
	cond, err := l.lowerExpr(n.Condition, dst)
	if err != nil {
		return err
	}
	accept, err := l.lowerBlock(n.Body)
	if err != nil {
		return err
	}
	var reject []ir.Statement
	switch e := n.Else.(type) {
	case nil:
	case *BlockStmt:
		reject, err = l.lowerBlock(e)
		if err != nil {
			return err
		}
	case *IfStmt:
		if err := l.lowerIf(e, &reject); err != nil {
			return err
		}
	default:
		return fmt.Errorf("hlslfront: unsupported else clause %T", n.Else)
	}
	*dst = append(*dst, ir.Statement{Kind: ir.StmtIf{Condition: cond, Accept: accept, Reject: reject}})
	return nil
}

// lowerFor desugars "for(init; cond; update) body" into an IR Loop:
// the condition becomes a leading "if !cond { break }" and the update
// statement is appended as the loop's ContinuingBody.
func (l *Lowerer) lowerFor(n *ForStmt, dst *[]ir.Statement) error {
	var pre []ir.Statement
	if n.Init != nil {
		if err := l.lowerStmt(n.Init, &pre); err != nil {
			return err
		}
	}

	var body []ir.Statement
	if n.Condition != nil {
		cond, err := l.lowerExpr(n.Condition, &body)
		if err != nil {
			return err
		}
		notCond := l.emit(&body, ir.ExprUnary{Op: ir.UnaryLogicalNot, Expr: cond})
		body = append(body, ir.Statement{Kind: ir.StmtIf{
			Condition: notCond,
			Accept:    []ir.Statement{{Kind: ir.StmtBreak{}}},
		}})
	}
	inner, err := l.lowerBlock(n.Body)
	if err != nil {
		return err
	}
	body = append(body, inner...)

	var continuing []ir.Statement
	if n.Update != nil {
		if err := l.lowerStmt(n.Update, &continuing); err != nil {
			return err
		}
	}

	pre = append(pre, ir.Statement{Kind: ir.StmtLoop{Body: body, Continuing: continuing}})
	*dst = append(*dst, pre...)
	return nil
}

func (l *Lowerer) lowerWhile(n *WhileStmt, dst *[]ir.Statement) error {
	var body []ir.Statement
	cond, err := l.lowerExpr(n.Condition, &body)
	if err != nil {
		return err
	}
	notCond := l.emit(&body, ir.ExprUnary{Op: ir.UnaryLogicalNot, Expr: cond})
	body = append(body, ir.Statement{Kind: ir.StmtIf{
		Condition: notCond,
		Accept:    []ir.Statement{{Kind: ir.StmtBreak{}}},
	}})
	inner, err := l.lowerBlock(n.Body)
	if err != nil {
		return err
	}
	body = append(body, inner...)
	*dst = append(*dst, ir.Statement{Kind: ir.StmtLoop{Body: body}})
	return nil
}

func (l *Lowerer) lowerDoWhile(n *DoWhileStmt, dst *[]ir.Statement) error {
	body, err := l.lowerBlock(n.Body)
	if err != nil {
		return err
	}
	var continuing []ir.Statement
	cond, err := l.lowerExpr(n.Condition, &continuing)
	if err != nil {
		return err
	}
	notCond := l.emit(&continuing, ir.ExprUnary{Op: ir.UnaryLogicalNot, Expr: cond})
	continuing = append(continuing, ir.Statement{Kind: ir.StmtIf{
		Condition: notCond,
		Accept:    []ir.Statement{{Kind: ir.StmtBreak{}}},
	}})
	*dst = append(*dst, ir.Statement{Kind: ir.StmtLoop{Body: body, Continuing: continuing}})
	return nil
}

func (l *Lowerer) lowerSwitch(n *SwitchStmt, dst *[]ir.Statement) error {
	selector, err := l.lowerExpr(n.Selector, dst)
	if err != nil {
		return err
	}
	var cases []ir.SwitchCase
	for _, c := range n.Cases {
		body, err := l.lowerBlock(c.Body)
		if err != nil {
			return err
		}
		if c.IsDefault {
			cases = append(cases, ir.SwitchCase{Value: ir.SwitchValueDefault{}, Body: body})
			continue
		}
		for _, sel := range c.Selectors {
			v, ok := l.evalConstInt(sel)
			if !ok {
				return fmt.Errorf("hlslfront: non-constant case label at %s", sel.Pos().Start)
			}
			cases = append(cases, ir.SwitchCase{Value: ir.SwitchValueI32(int32(v)), Body: body})
		}
	}
	*dst = append(*dst, ir.Statement{Kind: ir.StmtSwitch{Selector: selector, Cases: cases}})
	return nil
}

func (l *Lowerer) lowerIncDec(n *IncDecStmt, dst *[]ir.Statement) error {
	op := TokenPlusEqual
	if n.Op == TokenMinusMinus {
		op = TokenMinusEqual
	}
	return l.lowerAssign(&AssignStmt{Left: n.Target, Op: op, Right: &Literal{Kind: TokenIntLiteral, Value: "1", Span: n.Span}, Span: n.Span}, dst)
}

func (l *Lowerer) lowerAssign(n *AssignStmt, dst *[]ir.Statement) error {
	ptr, isPointer, err := l.lowerAddress(n.Left, dst)
	if err != nil {
		return err
	}
	if !isPointer {
		return fmt.Errorf("hlslfront: left-hand side of assignment is not addressable at %s", n.Left.Pos().Start)
	}

	rhs, err := l.lowerExpr(n.Right, dst)
	if err != nil {
		return err
	}

	if n.Op != TokenEqual {
		cur := l.emit(dst, ir.ExprLoad{Pointer: ptr})
		binOp, ok := compoundAssignOp(n.Op)
		if !ok {
			return fmt.Errorf("hlslfront: unsupported compound assignment operator at %s", n.Span.Start)
		}
		rhs = l.emit(dst, ir.ExprBinary{Op: binOp, Left: cur, Right: rhs})
	}

	*dst = append(*dst, ir.Statement{Kind: ir.StmtStore{Pointer: ptr, Value: rhs}})
	return nil
}

func compoundAssignOp(op TokenKind) (ir.BinaryOperator, bool) {
	switch op {
	case TokenPlusEqual:
		return ir.BinaryAdd, true
	case TokenMinusEqual:
		return ir.BinarySubtract, true
	case TokenStarEqual:
		return ir.BinaryMultiply, true
	case TokenSlashEqual:
		return ir.BinaryDivide, true
	case TokenPercentEqual:
		return ir.BinaryModulo, true
	case TokenAmpEqual:
		return ir.BinaryAnd, true
	case TokenPipeEqual:
		return ir.BinaryInclusiveOr, true
	case TokenCaretEqual:
		return ir.BinaryExclusiveOr, true
	case TokenLessLessEqual:
		return ir.BinaryShiftLeft, true
	case TokenGreaterGreaterEqual:
		return ir.BinaryShiftRight, true
	default:
		return 0, false
	}
}

// ---------------------------------------------------------------------------
// Addressable (lvalue) expressions
// ---------------------------------------------------------------------------

// lowerAddress resolves expr to the handle of the memory it names. isPointer
// reports whether that handle is itself a pointer (local/global variable
// storage, or an access chain rooted in one) as opposed to a plain value
// (a function argument, a swizzle, or anything else that cannot be stored
// through). Callers needing an rvalue wrap a pointer result in ExprLoad;
// callers needing an lvalue (StmtStore's target) require isPointer to hold.
func (l *Lowerer) lowerAddress(expr Expr, dst *[]ir.Statement) (ir.ExpressionHandle, bool, error) {
	switch n := expr.(type) {
	case *Ident:
		return l.lowerIdentAddress(n, dst)
	case *MemberExpr:
		return l.lowerMemberAddress(n, dst)
	case *IndexExpr:
		return l.lowerIndexAddress(n, dst)
	default:
		h, err := l.lowerExpr(expr, dst)
		return h, false, err
	}
}

func (l *Lowerer) lowerIdentAddress(n *Ident, dst *[]ir.Statement) (ir.ExpressionHandle, bool, error) {
	if idx, ok := l.locals[n.Name]; ok {
		return l.emit(dst, ir.ExprLocalVariable{Variable: idx}), true, nil
	}
	if idx, ok := l.params[n.Name]; ok {
		return l.emit(dst, ir.ExprFunctionArgument{Index: idx}), false, nil
	}
	if field, ok := l.cbufferFields[n.Name]; ok {
		owner := l.globalHandles[field.owner]
		base := l.emit(dst, ir.ExprGlobalVariable{Variable: owner})
		return l.emit(dst, ir.ExprAccessIndex{Base: base, Index: field.index}), true, nil
	}
	if handle, ok := l.globalHandles[n.Name]; ok {
		v := l.emit(dst, ir.ExprGlobalVariable{Variable: handle})
		return v, l.globalSpace[n.Name] != ir.SpaceHandle, nil
	}
	if handle, ok := l.constHandles[n.Name]; ok {
		return l.emit(dst, ir.ExprConstant{Constant: handle}), false, nil
	}
	return 0, false, fmt.Errorf("hlslfront: undefined identifier %q at %s", n.Name, n.Span.Start)
}

func (l *Lowerer) lowerMemberAddress(n *MemberExpr, dst *[]ir.Statement) (ir.ExpressionHandle, bool, error) {
	if isSwizzlePattern(n.Member) {
		base, isPointer, err := l.lowerAddress(n.Expr, dst)
		if err != nil {
			return 0, false, err
		}
		value := base
		if isPointer {
			value = l.emit(dst, ir.ExprLoad{Pointer: base})
		}
		if len(n.Member) == 1 {
			idx := uint32(swizzleComponentIndex(n.Member[0]))
			if isPointer {
				return l.emit(dst, ir.ExprAccessIndex{Base: base, Index: idx}), true, nil
			}
			return l.emit(dst, ir.ExprAccessIndex{Base: value, Index: idx}), false, nil
		}
		var pattern [4]ir.SwizzleComponent
		for i, c := range n.Member {
			pattern[i] = swizzleComponentIndex(byte(c))
		}
		return l.emit(dst, ir.ExprSwizzle{Size: ir.VectorSize(len(n.Member)), Vector: value, Pattern: pattern}), false, nil
	}

	base, isPointer, err := l.lowerAddress(n.Expr, dst)
	if err != nil {
		return 0, false, err
	}
	baseType, err := l.exprTypeInner(base)
	if err != nil {
		return 0, false, err
	}
	st, ok := derefStruct(baseType, l)
	if !ok {
		return 0, false, fmt.Errorf("hlslfront: member access on non-struct at %s", n.Span.Start)
	}
	idx, ok := structFieldIndex(st, n.Member)
	if !ok {
		return 0, false, fmt.Errorf("hlslfront: unknown field %q at %s", n.Member, n.Span.Start)
	}
	return l.emit(dst, ir.ExprAccessIndex{Base: base, Index: idx}), isPointer, nil
}

func (l *Lowerer) lowerIndexAddress(n *IndexExpr, dst *[]ir.Statement) (ir.ExpressionHandle, bool, error) {
	base, isPointer, err := l.lowerAddress(n.Expr, dst)
	if err != nil {
		return 0, false, err
	}
	idx, err := l.lowerExpr(n.Index, dst)
	if err != nil {
		return 0, false, err
	}
	return l.emit(dst, ir.ExprAccess{Base: base, Index: idx}), isPointer, nil
}

func derefStruct(inner ir.TypeInner, l *Lowerer) (ir.StructType, bool) {
	switch t := inner.(type) {
	case ir.StructType:
		return t, true
	case ir.PointerType:
		if int(t.Base) < len(l.module.Types) {
			return derefStruct(l.module.Types[t.Base].Inner, l)
		}
	}
	return ir.StructType{}, false
}

func structFieldIndex(st ir.StructType, name string) (uint32, bool) {
	for i, m := range st.Members {
		if m.Name == name {
			return uint32(i), true
		}
	}
	return 0, false
}

func (l *Lowerer) exprTypeInner(h ir.ExpressionHandle) (ir.TypeInner, error) {
	if int(h) >= len(l.fn.ExpressionTypes) {
		return nil, fmt.Errorf("hlslfront: internal error resolving expression type")
	}
	res := l.fn.ExpressionTypes[h]
	if res.Handle != nil {
		if inner, ok := l.typeInner(*res.Handle); ok {
			return inner, nil
		}
	}
	return res.Value, nil
}

func isSwizzlePattern(s string) bool {
	if len(s) == 0 || len(s) > 4 {
		return false
	}
	for _, c := range s {
		switch c {
		case 'x', 'y', 'z', 'w', 'r', 'g', 'b', 'a':
		default:
			return false
		}
	}
	return true
}

func swizzleComponentIndex(c byte) ir.SwizzleComponent {
	switch c {
	case 'x', 'r':
		return ir.SwizzleX
	case 'y', 'g':
		return ir.SwizzleY
	case 'z', 'b':
		return ir.SwizzleZ
	default:
		return ir.SwizzleW
	}
}

// ---------------------------------------------------------------------------
// Rvalue expressions
// ---------------------------------------------------------------------------

func (l *Lowerer) lowerExpr(expr Expr, dst *[]ir.Statement) (ir.ExpressionHandle, error) {
	switch n := expr.(type) {
	case *Literal:
		return l.lowerLiteral(n, dst)
	case *Ident, *MemberExpr, *IndexExpr:
		h, isPointer, err := l.lowerAddress(expr, dst)
		if err != nil {
			return 0, err
		}
		if isPointer {
			return l.emit(dst, ir.ExprLoad{Pointer: h}), nil
		}
		return h, nil
	case *BinaryExpr:
		return l.lowerBinary(n, dst)
	case *UnaryExpr:
		return l.lowerUnary(n, dst)
	case *TernaryExpr:
		return l.lowerTernary(n, dst)
	case *CallExpr:
		return l.lowerCall(n, dst)
	case *MethodCallExpr:
		return l.lowerMethodCall(n, dst)
	case *ConstructExpr:
		return l.lowerConstruct(n, dst)
	case *CastExpr:
		return l.lowerCast(n, dst)
	default:
		return 0, fmt.Errorf("hlslfront: unsupported expression %T at %s", expr, expr.Pos().Start)
	}
}

func (l *Lowerer) lowerLiteral(n *Literal, dst *[]ir.Statement) (ir.ExpressionHandle, error) {
	switch n.Kind {
	case TokenIntLiteral:
		v, err := strconv.ParseUint(strings.TrimRight(n.Value, "uUlL"), 0, 64)
		if err != nil {
			return 0, fmt.Errorf("hlslfront: invalid integer literal %q at %s", n.Value, n.Span.Start)
		}
		// A literal is unsigned if it carries a u/U suffix, or if it overflows
		// int32 and so can only be represented by unsigned promotion (e.g. the
		// unsuffixed hex literal 0xFFFFFFFF).
		if strings.ContainsAny(n.Value, "uU") || v > math.MaxInt32 {
			return l.emit(dst, ir.Literal{Value: ir.LiteralU32(uint32(v))}), nil
		}
		return l.emit(dst, ir.Literal{Value: ir.LiteralI32(int32(v))}), nil
	case TokenFloatLiteral:
		v, err := strconv.ParseFloat(strings.TrimRight(n.Value, "fFhH"), 32)
		if err != nil {
			return 0, fmt.Errorf("hlslfront: invalid float literal %q at %s", n.Value, n.Span.Start)
		}
		return l.emit(dst, ir.Literal{Value: ir.LiteralF32(float32(v))}), nil
	case TokenBoolLiteral:
		return l.emit(dst, ir.Literal{Value: ir.LiteralBool(n.Value == "true")}), nil
	default:
		return 0, fmt.Errorf("hlslfront: unsupported literal kind at %s", n.Span.Start)
	}
}

func (l *Lowerer) lowerBinary(n *BinaryExpr, dst *[]ir.Statement) (ir.ExpressionHandle, error) {
	if n.Op == TokenAmpAmp || n.Op == TokenPipePipe {
		return l.lowerShortCircuit(n, dst)
	}
	lhs, err := l.lowerExpr(n.Left, dst)
	if err != nil {
		return 0, err
	}
	rhs, err := l.lowerExpr(n.Right, dst)
	if err != nil {
		return 0, err
	}
	op, ok := binaryOp(n.Op)
	if !ok {
		return 0, fmt.Errorf("hlslfront: unsupported binary operator at %s", n.Span.Start)
	}
	return l.emit(dst, ir.ExprBinary{Op: op, Left: lhs, Right: rhs}), nil
}

// lowerShortCircuit lowers && and || through an If statement so the right
// operand is not evaluated unless necessary, matching HLSL semantics.
func (l *Lowerer) lowerShortCircuit(n *BinaryExpr, dst *[]ir.Statement) (ir.ExpressionHandle, error) {
	lhs, err := l.lowerExpr(n.Left, dst)
	if err != nil {
		return 0, err
	}
	th := l.scalarType(ir.ScalarBool, 4)
	idx := l.addLocal("", th, nil)
	ptr := l.emit(dst, ir.ExprLocalVariable{Variable: idx})
	*dst = append(*dst, ir.Statement{Kind: ir.StmtStore{Pointer: ptr, Value: lhs}})

	var branch []ir.Statement
	rhs, err := l.lowerExpr(n.Right, &branch)
	if err != nil {
		return 0, err
	}
	branchPtr := l.emit(&branch, ir.ExprLocalVariable{Variable: idx})
	branch = append(branch, ir.Statement{Kind: ir.StmtStore{Pointer: branchPtr, Value: rhs}})

	ifStmt := ir.Statement{Kind: ir.StmtIf{Condition: lhs}}
	if n.Op == TokenAmpAmp {
		ifStmt.Kind = ir.StmtIf{Condition: lhs, Accept: branch}
	} else {
		ifStmt.Kind = ir.StmtIf{Condition: lhs, Reject: branch}
	}
	*dst = append(*dst, ifStmt)

	result := l.emit(dst, ir.ExprLocalVariable{Variable: idx})
	return l.emit(dst, ir.ExprLoad{Pointer: result}), nil
}

func binaryOp(op TokenKind) (ir.BinaryOperator, bool) {
	switch op {
	case TokenPlus:
		return ir.BinaryAdd, true
	case TokenMinus:
		return ir.BinarySubtract, true
	case TokenStar:
		return ir.BinaryMultiply, true
	case TokenSlash:
		return ir.BinaryDivide, true
	case TokenPercent:
		return ir.BinaryModulo, true
	case TokenEqualEqual:
		return ir.BinaryEqual, true
	case TokenBangEqual:
		return ir.BinaryNotEqual, true
	case TokenLess:
		return ir.BinaryLess, true
	case TokenLessEqual:
		return ir.BinaryLessEqual, true
	case TokenGreater:
		return ir.BinaryGreater, true
	case TokenGreaterEqual:
		return ir.BinaryGreaterEqual, true
	case TokenAmpersand:
		return ir.BinaryAnd, true
	case TokenPipe:
		return ir.BinaryInclusiveOr, true
	case TokenCaret:
		return ir.BinaryExclusiveOr, true
	case TokenLessLess:
		return ir.BinaryShiftLeft, true
	case TokenGreaterGreater:
		return ir.BinaryShiftRight, true
	default:
		return 0, false
	}
}

func (l *Lowerer) lowerUnary(n *UnaryExpr, dst *[]ir.Statement) (ir.ExpressionHandle, error) {
	operand, err := l.lowerExpr(n.Operand, dst)
	if err != nil {
		return 0, err
	}
	switch n.Op {
	case TokenMinus:
		return l.emit(dst, ir.ExprUnary{Op: ir.UnaryNegate, Expr: operand}), nil
	case TokenPlus:
		return operand, nil
	case TokenBang:
		return l.emit(dst, ir.ExprUnary{Op: ir.UnaryLogicalNot, Expr: operand}), nil
	case TokenTilde:
		return l.emit(dst, ir.ExprUnary{Op: ir.UnaryBitwiseNot, Expr: operand}), nil
	default:
		return 0, fmt.Errorf("hlslfront: unsupported unary operator at %s", n.Span.Start)
	}
}

func (l *Lowerer) lowerTernary(n *TernaryExpr, dst *[]ir.Statement) (ir.ExpressionHandle, error) {
	cond, err := l.lowerExpr(n.Condition, dst)
	if err != nil {
		return 0, err
	}
	thenVal, err := l.lowerExpr(n.Then, dst)
	if err != nil {
		return 0, err
	}
	elseVal, err := l.lowerExpr(n.Else, dst)
	if err != nil {
		return 0, err
	}
	return l.emit(dst, ir.ExprSelect{Condition: cond, Accept: thenVal, Reject: elseVal}), nil
}

func (l *Lowerer) lowerCast(n *CastExpr, dst *[]ir.Statement) (ir.ExpressionHandle, error) {
	th, err := l.lowerType(n.Type, n.Span)
	if err != nil {
		return 0, err
	}
	operand, err := l.lowerExpr(n.Expr, dst)
	if err != nil {
		return 0, err
	}
	inner, ok := l.typeInner(th)
	if !ok {
		return 0, fmt.Errorf("hlslfront: invalid cast target at %s", n.Span.Start)
	}
	scalar, ok := inner.(ir.ScalarType)
	if !ok {
		// Casting between same-shape vector/matrix types (e.g. row_major
		// reinterpretation) has no IR-level effect; pass the value through.
		return operand, nil
	}
	width := scalar.Width
	return l.emit(dst, ir.ExprAs{Expr: operand, Kind: scalar.Kind, Convert: &width}), nil
}

// ---------------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------------

func (l *Lowerer) lowerConstruct(n *ConstructExpr, dst *[]ir.Statement) (ir.ExpressionHandle, error) {
	th, err := l.lowerType(n.Type, n.Span)
	if err != nil {
		return 0, err
	}
	inner, ok := l.typeInner(th)
	if !ok {
		return 0, fmt.Errorf("hlslfront: invalid constructor target at %s", n.Span.Start)
	}

	switch t := inner.(type) {
	case ir.VectorType:
		if len(n.Args) == 1 {
			arg, err := l.lowerExpr(n.Args[0], dst)
			if err != nil {
				return 0, err
			}
			if argInner, err := l.exprTypeInner(arg); err == nil {
				if _, ok := argInner.(ir.ScalarType); ok {
					return l.emit(dst, ir.ExprSplat{Size: t.Size, Value: arg}), nil
				}
			}
			return l.emit(dst, ir.ExprCompose{Type: th, Components: []ir.ExpressionHandle{arg}}), nil
		}
		components, err := l.lowerFlattenedComponents(n.Args, dst)
		if err != nil {
			return 0, err
		}
		return l.emit(dst, ir.ExprCompose{Type: th, Components: components}), nil

	case ir.MatrixType:
		if len(n.Args) == int(t.Columns) {
			var cols []ir.ExpressionHandle
			for _, a := range n.Args {
				h, err := l.lowerExpr(a, dst)
				if err != nil {
					return 0, err
				}
				cols = append(cols, h)
			}
			return l.emit(dst, ir.ExprCompose{Type: th, Components: cols}), nil
		}
		scalars, err := l.lowerFlattenedComponents(n.Args, dst)
		if err != nil {
			return 0, err
		}
		colType := l.vectorType(t.Rows, t.Scalar.Kind, t.Scalar.Width)
		var cols []ir.ExpressionHandle
		for c := 0; c < int(t.Columns); c++ {
			start := c * int(t.Rows)
			end := start + int(t.Rows)
			if end > len(scalars) {
				break
			}
			cols = append(cols, l.emit(dst, ir.ExprCompose{Type: colType, Components: scalars[start:end]}))
		}
		return l.emit(dst, ir.ExprCompose{Type: th, Components: cols}), nil

	default:
		var components []ir.ExpressionHandle
		for _, a := range n.Args {
			h, err := l.lowerExpr(a, dst)
			if err != nil {
				return 0, err
			}
			components = append(components, h)
		}
		return l.emit(dst, ir.ExprCompose{Type: th, Components: components}), nil
	}
}

// lowerFlattenedComponents lowers a constructor argument list, decomposing
// any vector-typed argument into its scalar components so the result always
// matches the flat scalar list a vector/matrix Compose expression expects.
func (l *Lowerer) lowerFlattenedComponents(args []Expr, dst *[]ir.Statement) ([]ir.ExpressionHandle, error) {
	var out []ir.ExpressionHandle
	for _, a := range args {
		h, err := l.lowerExpr(a, dst)
		if err != nil {
			return nil, err
		}
		if inner, err := l.exprTypeInner(h); err == nil {
			if av, ok := inner.(ir.VectorType); ok {
				for i := 0; i < int(av.Size); i++ {
					out = append(out, l.emit(dst, ir.ExprAccessIndex{Base: h, Index: uint32(i)}))
				}
				continue
			}
		}
		out = append(out, h)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Calls and intrinsics
// ---------------------------------------------------------------------------

var intrinsicMathFunctions = map[string]ir.MathFunction{
	"abs": ir.MathAbs, "min": ir.MathMin, "max": ir.MathMax, "clamp": ir.MathClamp, "saturate": ir.MathSaturate,
	"cos": ir.MathCos, "cosh": ir.MathCosh, "sin": ir.MathSin, "sinh": ir.MathSinh, "tan": ir.MathTan, "tanh": ir.MathTanh,
	"acos": ir.MathAcos, "asin": ir.MathAsin, "atan": ir.MathAtan, "atan2": ir.MathAtan2,
	"asinh": ir.MathAsinh, "acosh": ir.MathAcosh, "atanh": ir.MathAtanh,
	"radians": ir.MathRadians, "degrees": ir.MathDegrees,
	"ceil": ir.MathCeil, "floor": ir.MathFloor, "round": ir.MathRound, "frac": ir.MathFract, "trunc": ir.MathTrunc,
	"exp": ir.MathExp, "exp2": ir.MathExp2, "log": ir.MathLog, "log2": ir.MathLog2, "pow": ir.MathPow,
	"dot": ir.MathDot, "cross": ir.MathCross, "distance": ir.MathDistance, "length": ir.MathLength,
	"normalize": ir.MathNormalize, "faceforward": ir.MathFaceForward, "reflect": ir.MathReflect, "refract": ir.MathRefract,
	"sign": ir.MathSign, "mad": ir.MathFma, "lerp": ir.MathMix, "step": ir.MathStep, "smoothstep": ir.MathSmoothStep,
	"sqrt": ir.MathSqrt, "rsqrt": ir.MathInverseSqrt, "transpose": ir.MathTranspose, "determinant": ir.MathDeterminant,
	"countbits": ir.MathCountOneBits, "firstbithigh": ir.MathFirstLeadingBit, "firstbitlow": ir.MathFirstTrailingBit,
	"reversebits": ir.MathReverseBits,
	"fmod":        ir.MathMod,
}

func (l *Lowerer) lowerCall(n *CallExpr, dst *[]ir.Statement) (ir.ExpressionHandle, error) {
	name := n.Func.Name
	switch name {
	case "mul":
		if len(n.Args) != 2 {
			return 0, fmt.Errorf("hlslfront: mul requires two arguments at %s", n.Span.Start)
		}
		a, err := l.lowerExpr(n.Args[0], dst)
		if err != nil {
			return 0, err
		}
		b, err := l.lowerExpr(n.Args[1], dst)
		if err != nil {
			return 0, err
		}
		return l.emit(dst, ir.ExprBinary{Op: ir.BinaryMultiply, Left: a, Right: b}), nil
	case "ddx", "ddx_coarse":
		return l.lowerDerivative(n, dst, ir.DerivativeX, ir.DerivativeCoarse)
	case "ddx_fine":
		return l.lowerDerivative(n, dst, ir.DerivativeX, ir.DerivativeFine)
	case "ddy", "ddy_coarse":
		return l.lowerDerivative(n, dst, ir.DerivativeY, ir.DerivativeCoarse)
	case "ddy_fine":
		return l.lowerDerivative(n, dst, ir.DerivativeY, ir.DerivativeFine)
	case "fwidth":
		return l.lowerDerivative(n, dst, ir.DerivativeWidth, ir.DerivativeNone)
	case "any":
		return l.lowerRelational(n, dst, ir.RelationalAny)
	case "all":
		return l.lowerRelational(n, dst, ir.RelationalAll)
	case "isnan":
		return l.lowerRelational(n, dst, ir.RelationalIsNan)
	case "isinf":
		return l.lowerRelational(n, dst, ir.RelationalIsInf)
	case "asuint":
		return l.lowerBitcast(n, dst, ir.ScalarUint)
	case "asint":
		return l.lowerBitcast(n, dst, ir.ScalarSint)
	case "asfloat":
		return l.lowerBitcast(n, dst, ir.ScalarFloat)
	case "InterlockedAdd", "InterlockedAnd", "InterlockedOr", "InterlockedXor", "InterlockedMin", "InterlockedMax",
		"InterlockedExchange", "InterlockedCompareExchange":
		return l.lowerInterlocked(name, n, dst)
	case "WaveGetLaneIndex":
		return l.lowerSubgroupNullary(n, dst, ir.SubgroupLaneIndex)
	case "WaveGetLaneCount":
		return l.lowerSubgroupNullary(n, dst, ir.SubgroupLaneCount)
	case "WaveReadLaneFirst":
		return l.lowerSubgroupUnary(n, dst, ir.SubgroupReadFirstLane)
	case "WaveActiveBallot":
		return l.lowerSubgroupUnary(n, dst, ir.SubgroupBallot)
	case "QuadReadAcrossX":
		return l.lowerSubgroupUnary(n, dst, ir.SubgroupQuadSwapX)
	case "QuadReadAcrossY":
		return l.lowerSubgroupUnary(n, dst, ir.SubgroupQuadSwapY)
	case "QuadReadAcrossDiagonal":
		return l.lowerSubgroupUnary(n, dst, ir.SubgroupQuadSwapDiagonal)
	}

	if fun, ok := intrinsicMathFunctions[name]; ok {
		return l.lowerMathCall(fun, n, dst)
	}

	if handle, ok := l.functionByIdx[name]; ok {
		var args []ir.ExpressionHandle
		for _, a := range n.Args {
			h, err := l.lowerExpr(a, dst)
			if err != nil {
				return 0, err
			}
			args = append(args, h)
		}
		sig := l.module.Functions[handle]
		if sig.Result == nil {
			*dst = append(*dst, ir.Statement{Kind: ir.StmtCall{Function: handle, Arguments: args}})
			return 0, nil
		}
		return l.emitCallResult(dst, handle, args), nil
	}

	return 0, fmt.Errorf("hlslfront: unknown function %q at %s", name, n.Span.Start)
}

// emitCallResult appends the Call statement before the CallResult
// expression's Emit, matching the ordering StmtCall's barrier semantics
// require (the result must not be visible until after the call executes).
func (l *Lowerer) emitCallResult(dst *[]ir.Statement, fn ir.FunctionHandle, args []ir.ExpressionHandle) ir.ExpressionHandle {
	handle := ir.ExpressionHandle(len(l.fn.Expressions))
	l.fn.Expressions = append(l.fn.Expressions, ir.Expression{Kind: ir.ExprCallResult{Function: fn}})
	resolution, err := ir.ResolveExpressionType(l.module, l.fn, handle)
	if err != nil {
		resolution = ir.TypeResolution{}
	}
	l.fn.ExpressionTypes = append(l.fn.ExpressionTypes, resolution)
	*dst = append(*dst, ir.Statement{Kind: ir.StmtCall{Function: fn, Arguments: args, Result: &handle}})
	*dst = append(*dst, ir.Statement{Kind: ir.StmtEmit{Range: ir.Range{Start: uint32(handle), End: uint32(handle) + 1}}})
	return handle
}

func (l *Lowerer) lowerMathCall(fun ir.MathFunction, n *CallExpr, dst *[]ir.Statement) (ir.ExpressionHandle, error) {
	if len(n.Args) == 0 {
		return 0, fmt.Errorf("hlslfront: %s requires at least one argument at %s", n.Func.Name, n.Span.Start)
	}
	var args []ir.ExpressionHandle
	for _, a := range n.Args {
		h, err := l.lowerExpr(a, dst)
		if err != nil {
			return 0, err
		}
		args = append(args, h)
	}
	expr := ir.ExprMath{Fun: fun, Arg: args[0]}
	if len(args) > 1 {
		expr.Arg1 = &args[1]
	}
	if len(args) > 2 {
		expr.Arg2 = &args[2]
	}
	if len(args) > 3 {
		expr.Arg3 = &args[3]
	}
	return l.emit(dst, expr), nil
}

// lowerSubgroupNullary lowers the two lane-query wave intrinsics, which take
// no arguments.
func (l *Lowerer) lowerSubgroupNullary(n *CallExpr, dst *[]ir.Statement, op ir.SubgroupOp) (ir.ExpressionHandle, error) {
	if len(n.Args) != 0 {
		return 0, fmt.Errorf("hlslfront: %s takes no arguments at %s", n.Func.Name, n.Span.Start)
	}
	return l.emit(dst, ir.ExprSubgroupOp{Op: op}), nil
}

// lowerSubgroupUnary lowers the wave/quad intrinsics that read a value from
// another lane.
func (l *Lowerer) lowerSubgroupUnary(n *CallExpr, dst *[]ir.Statement, op ir.SubgroupOp) (ir.ExpressionHandle, error) {
	if len(n.Args) != 1 {
		return 0, fmt.Errorf("hlslfront: %s requires one argument at %s", n.Func.Name, n.Span.Start)
	}
	arg, err := l.lowerExpr(n.Args[0], dst)
	if err != nil {
		return 0, err
	}
	return l.emit(dst, ir.ExprSubgroupOp{Op: op, Arg: arg}), nil
}

func (l *Lowerer) lowerDerivative(n *CallExpr, dst *[]ir.Statement, axis ir.DerivativeAxis, control ir.DerivativeControl) (ir.ExpressionHandle, error) {
	if len(n.Args) != 1 {
		return 0, fmt.Errorf("hlslfront: %s requires one argument at %s", n.Func.Name, n.Span.Start)
	}
	h, err := l.lowerExpr(n.Args[0], dst)
	if err != nil {
		return 0, err
	}
	return l.emit(dst, ir.ExprDerivative{Axis: axis, Control: control, Expr: h}), nil
}

func (l *Lowerer) lowerRelational(n *CallExpr, dst *[]ir.Statement, fun ir.RelationalFunction) (ir.ExpressionHandle, error) {
	if len(n.Args) != 1 {
		return 0, fmt.Errorf("hlslfront: %s requires one argument at %s", n.Func.Name, n.Span.Start)
	}
	h, err := l.lowerExpr(n.Args[0], dst)
	if err != nil {
		return 0, err
	}
	return l.emit(dst, ir.ExprRelational{Fun: fun, Argument: h}), nil
}

func (l *Lowerer) lowerBitcast(n *CallExpr, dst *[]ir.Statement, kind ir.ScalarKind) (ir.ExpressionHandle, error) {
	if len(n.Args) != 1 {
		return 0, fmt.Errorf("hlslfront: %s requires one argument at %s", n.Func.Name, n.Span.Start)
	}
	h, err := l.lowerExpr(n.Args[0], dst)
	if err != nil {
		return 0, err
	}
	return l.emit(dst, ir.ExprAs{Expr: h, Kind: kind}), nil
}

// lowerInterlocked lowers the HLSL InterlockedXxx family of free functions.
// The first argument is always the lvalue destination; a trailing lvalue
// argument (when present) receives the pre-operation value.
func (l *Lowerer) lowerInterlocked(name string, n *CallExpr, dst *[]ir.Statement) (ir.ExpressionHandle, error) {
	if len(n.Args) < 2 {
		return 0, fmt.Errorf("hlslfront: %s requires at least two arguments at %s", name, n.Span.Start)
	}
	ptr, isPointer, err := l.lowerAddress(n.Args[0], dst)
	if err != nil {
		return 0, err
	}
	if !isPointer {
		return 0, fmt.Errorf("hlslfront: %s destination must be an lvalue at %s", name, n.Span.Start)
	}

	valueArg := 1
	outArg := 2
	if name == "InterlockedCompareExchange" {
		valueArg = 2
		outArg = 3
	}
	value, err := l.lowerExpr(n.Args[valueArg], dst)
	if err != nil {
		return 0, err
	}

	var fun ir.AtomicFunction
	switch name {
	case "InterlockedAdd":
		fun = ir.AtomicAdd{}
	case "InterlockedAnd":
		fun = ir.AtomicAnd{}
	case "InterlockedOr":
		fun = ir.AtomicInclusiveOr{}
	case "InterlockedXor":
		fun = ir.AtomicExclusiveOr{}
	case "InterlockedMin":
		fun = ir.AtomicMin{}
	case "InterlockedMax":
		fun = ir.AtomicMax{}
	case "InterlockedExchange":
		fun = ir.AtomicExchange{}
	case "InterlockedCompareExchange":
		compare, err := l.lowerExpr(n.Args[1], dst)
		if err != nil {
			return 0, err
		}
		fun = ir.AtomicExchange{Compare: &compare}
	}

	var resultPtr *ir.ExpressionHandle
	var handle ir.ExpressionHandle
	hasOut := len(n.Args) > outArg
	if hasOut {
		handle = ir.ExpressionHandle(len(l.fn.Expressions))
		l.fn.Expressions = append(l.fn.Expressions, ir.Expression{Kind: ir.ExprAtomicResult{}})
		l.fn.ExpressionTypes = append(l.fn.ExpressionTypes, ir.TypeResolution{})
		resultPtr = &handle
	}
	*dst = append(*dst, ir.Statement{Kind: ir.StmtAtomic{Pointer: ptr, Fun: fun, Value: value, Result: resultPtr}})
	if hasOut {
		*dst = append(*dst, ir.Statement{Kind: ir.StmtEmit{Range: ir.Range{Start: uint32(handle), End: uint32(handle) + 1}}})
		outAddr, outIsPointer, err := l.lowerAddress(n.Args[outArg], dst)
		if err != nil {
			return 0, err
		}
		if outIsPointer {
			*dst = append(*dst, ir.Statement{Kind: ir.StmtStore{Pointer: outAddr, Value: handle}})
		}
	}
	return 0, nil
}

// ---------------------------------------------------------------------------
// Texture and buffer method calls
// ---------------------------------------------------------------------------

func (l *Lowerer) lowerMethodCall(n *MethodCallExpr, dst *[]ir.Statement) (ir.ExpressionHandle, error) {
	switch n.Method {
	case "Sample":
		return l.lowerSample(n, dst)
	case "SampleLevel":
		return l.lowerSampleLevel(n, dst)
	case "SampleBias":
		return l.lowerSampleBias(n, dst)
	case "SampleGrad":
		return l.lowerSampleGrad(n, dst)
	case "SampleCmp":
		return l.lowerSampleCmp(n, dst, false)
	case "SampleCmpLevelZero":
		return l.lowerSampleCmp(n, dst, true)
	case "Load":
		return l.lowerTextureLoad(n, dst)
	case "Gather", "GatherRed":
		return l.lowerGather(n, dst, ir.SwizzleX)
	case "GatherGreen":
		return l.lowerGather(n, dst, ir.SwizzleY)
	case "GatherBlue":
		return l.lowerGather(n, dst, ir.SwizzleZ)
	case "GatherAlpha":
		return l.lowerGather(n, dst, ir.SwizzleW)
	case "GetDimensions":
		return l.lowerGetDimensions(n, dst)
	default:
		return 0, fmt.Errorf("hlslfront: unsupported method %q at %s", n.Method, n.Span.Start)
	}
}

// imageSampleArgs lowers the receiver, sampler, and coordinate common to
// every Sample* method call.
func (l *Lowerer) imageSampleArgs(n *MethodCallExpr, dst *[]ir.Statement, minArgs int) (image, sampler, coord ir.ExpressionHandle, err error) {
	if len(n.Args) < minArgs {
		err = fmt.Errorf("hlslfront: %s requires at least %d arguments at %s", n.Method, minArgs, n.Span.Start)
		return
	}
	image, err = l.lowerExpr(n.Receiver, dst)
	if err != nil {
		return
	}
	sampler, err = l.lowerExpr(n.Args[0], dst)
	if err != nil {
		return
	}
	coord, err = l.lowerExpr(n.Args[1], dst)
	return
}

func (l *Lowerer) lowerSample(n *MethodCallExpr, dst *[]ir.Statement) (ir.ExpressionHandle, error) {
	image, sampler, coord, err := l.imageSampleArgs(n, dst, 2)
	if err != nil {
		return 0, err
	}
	expr := ir.ExprImageSample{Image: image, Sampler: sampler, Coordinate: coord, Level: ir.SampleLevelAuto{}}
	if len(n.Args) > 2 {
		off, err := l.lowerExpr(n.Args[2], dst)
		if err != nil {
			return 0, err
		}
		expr.Offset = &off
	}
	return l.emit(dst, expr), nil
}

func (l *Lowerer) lowerSampleLevel(n *MethodCallExpr, dst *[]ir.Statement) (ir.ExpressionHandle, error) {
	image, sampler, coord, err := l.imageSampleArgs(n, dst, 3)
	if err != nil {
		return 0, err
	}
	lod, err := l.lowerExpr(n.Args[2], dst)
	if err != nil {
		return 0, err
	}
	expr := ir.ExprImageSample{Image: image, Sampler: sampler, Coordinate: coord, Level: ir.SampleLevelExact{Level: lod}}
	if len(n.Args) > 3 {
		off, err := l.lowerExpr(n.Args[3], dst)
		if err != nil {
			return 0, err
		}
		expr.Offset = &off
	}
	return l.emit(dst, expr), nil
}

func (l *Lowerer) lowerSampleBias(n *MethodCallExpr, dst *[]ir.Statement) (ir.ExpressionHandle, error) {
	image, sampler, coord, err := l.imageSampleArgs(n, dst, 3)
	if err != nil {
		return 0, err
	}
	bias, err := l.lowerExpr(n.Args[2], dst)
	if err != nil {
		return 0, err
	}
	return l.emit(dst, ir.ExprImageSample{Image: image, Sampler: sampler, Coordinate: coord, Level: ir.SampleLevelBias{Bias: bias}}), nil
}

func (l *Lowerer) lowerSampleGrad(n *MethodCallExpr, dst *[]ir.Statement) (ir.ExpressionHandle, error) {
	image, sampler, coord, err := l.imageSampleArgs(n, dst, 4)
	if err != nil {
		return 0, err
	}
	ddxv, err := l.lowerExpr(n.Args[2], dst)
	if err != nil {
		return 0, err
	}
	ddyv, err := l.lowerExpr(n.Args[3], dst)
	if err != nil {
		return 0, err
	}
	return l.emit(dst, ir.ExprImageSample{Image: image, Sampler: sampler, Coordinate: coord, Level: ir.SampleLevelGradient{X: ddxv, Y: ddyv}}), nil
}

func (l *Lowerer) lowerSampleCmp(n *MethodCallExpr, dst *[]ir.Statement, levelZero bool) (ir.ExpressionHandle, error) {
	image, sampler, coord, err := l.imageSampleArgs(n, dst, 3)
	if err != nil {
		return 0, err
	}
	cmp, err := l.lowerExpr(n.Args[2], dst)
	if err != nil {
		return 0, err
	}
	var level ir.SampleLevel = ir.SampleLevelAuto{}
	if levelZero {
		level = ir.SampleLevelZero{}
	}
	return l.emit(dst, ir.ExprImageSample{Image: image, Sampler: sampler, Coordinate: coord, Level: level, DepthRef: &cmp}), nil
}

func (l *Lowerer) lowerGather(n *MethodCallExpr, dst *[]ir.Statement, comp ir.SwizzleComponent) (ir.ExpressionHandle, error) {
	image, sampler, coord, err := l.imageSampleArgs(n, dst, 2)
	if err != nil {
		return 0, err
	}
	c := comp
	expr := ir.ExprImageSample{Image: image, Sampler: sampler, Coordinate: coord, Level: ir.SampleLevelZero{}, Gather: &c}
	return l.emit(dst, expr), nil
}

// lowerTextureLoad lowers Texture.Load(location), splitting the combined
// location vector into its coordinate components and trailing mip level,
// matching HLSL's Load(int2|int3|int4) overloads.
func (l *Lowerer) lowerTextureLoad(n *MethodCallExpr, dst *[]ir.Statement) (ir.ExpressionHandle, error) {
	if len(n.Args) < 1 {
		return 0, fmt.Errorf("hlslfront: Load requires a location argument at %s", n.Span.Start)
	}
	image, err := l.lowerExpr(n.Receiver, dst)
	if err != nil {
		return 0, err
	}
	loc, err := l.lowerExpr(n.Args[0], dst)
	if err != nil {
		return 0, err
	}
	locInner, err := l.exprTypeInner(loc)
	if err != nil {
		return 0, err
	}
	vt, ok := locInner.(ir.VectorType)
	if !ok || vt.Size < ir.Vec2 {
		return l.emit(dst, ir.ExprImageLoad{Image: image, Coordinate: loc}), nil
	}
	coordSize := ir.VectorSize(int(vt.Size) - 1)
	var pattern [4]ir.SwizzleComponent
	for i := 0; i < int(coordSize); i++ {
		pattern[i] = ir.SwizzleComponent(i)
	}
	coord := l.emit(dst, ir.ExprSwizzle{Size: coordSize, Vector: loc, Pattern: pattern})
	level := l.emit(dst, ir.ExprAccessIndex{Base: loc, Index: uint32(vt.Size) - 1})
	return l.emit(dst, ir.ExprImageLoad{Image: image, Coordinate: coord, Level: &level}), nil
}

// lowerGetDimensions lowers Texture.GetDimensions(out width, out height, ...)
// by querying the image size once and storing each requested component
// through the corresponding output argument's address.
func (l *Lowerer) lowerGetDimensions(n *MethodCallExpr, dst *[]ir.Statement) (ir.ExpressionHandle, error) {
	image, err := l.lowerExpr(n.Receiver, dst)
	if err != nil {
		return 0, err
	}
	size := l.emit(dst, ir.ExprImageQuery{Image: image, Query: ir.ImageQuerySize{}})
	for i, a := range n.Args {
		addr, isPointer, err := l.lowerAddress(a, dst)
		if err != nil {
			return 0, err
		}
		if !isPointer {
			continue
		}
		value := size
		if i < 3 {
			value = l.emit(dst, ir.ExprAccessIndex{Base: size, Index: uint32(i)})
		}
		*dst = append(*dst, ir.Statement{Kind: ir.StmtStore{Pointer: addr, Value: value}})
	}
	return 0, nil
}
