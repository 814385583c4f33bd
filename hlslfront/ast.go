package hlslfront

// Module represents an HLSL translation unit.
type Module struct {
	Structs    []*StructDecl
	Functions  []*FunctionDecl
	GlobalVars []*VarDecl
	CBuffers   []*CBufferDecl
	Typedefs   []*TypedefDecl
	Constants  []*ConstDecl
}

// Node is the base interface for all AST nodes.
type Node interface {
	Pos() Span
}

// Decl is the interface for declarations.
type Decl interface {
	Node
	declNode()
}

// Stmt is the interface for statements.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is the interface for expressions.
type Expr interface {
	Node
	exprNode()
}

// StructDecl represents a struct declaration.
type StructDecl struct {
	Name    string
	Members []*StructMember
	Span    Span

	// Hidden is set by transforms.PruneTree when this struct is not
	// reachable from either requested entry point.
	Hidden bool
}

func (s *StructDecl) Pos() Span { return s.Span }
func (s *StructDecl) declNode() {}

// StructMember represents a struct member. Semantic carries the trailing
// ": SV_Position"/": TEXCOORD0" binding; it is empty when the member has
// none (e.g. a member of a plain, non-IO struct).
type StructMember struct {
	Name        string
	Type        Type
	Semantic    string
	Interpolation string // linear, nointerpolation, centroid, noperspective, sample
	Span        Span
}

// FunctionDecl represents a function declaration.
type FunctionDecl struct {
	Name       string
	Params     []*Parameter
	ReturnType Type
	Semantic   string      // return-value semantic, e.g. "SV_Target0"
	Attributes []Attribute // bracket attributes: [numthreads(8,8,1)], [domain("tri")], ...
	Body       *BlockStmt
	Span       Span

	// Hidden is set by transforms.PruneTree when this function is not
	// reachable from either requested entry point.
	Hidden bool
}

func (f *FunctionDecl) Pos() Span { return f.Span }
func (f *FunctionDecl) declNode() {}

// Parameter represents a function parameter.
type Parameter struct {
	Name       string
	Type       Type
	Semantic   string
	Qualifiers []string // in, out, inout, uniform, precise
	Span       Span

	// Hidden is set by transforms.HideUnusedArguments when the body of
	// the owning function never references this parameter by name.
	Hidden bool
}

// RegisterBinding represents an explicit ": register(tN, spaceM)" binding.
// Class holds the register letter (b/t/s/u/c) as written in source; it is
// advisory only; the resource's declared type ultimately decides the
// register class used for lowering.
type RegisterBinding struct {
	Class byte
	Slot  uint32
	Space uint32
}

// VarDecl represents a global resource or variable declaration.
type VarDecl struct {
	Name       string
	Type       Type
	Init       Expr
	Qualifiers []string // static, const, uniform, groupshared, row_major, column_major
	Register   *RegisterBinding
	Span       Span

	// Hidden is set by transforms.PruneTree when this global is not
	// reachable from either requested entry point.
	Hidden bool
}

func (v *VarDecl) Pos() Span { return v.Span }
func (v *VarDecl) declNode() {}
func (v *VarDecl) stmtNode() {}

// ConstDecl represents a const-qualified local or global declaration.
type ConstDecl struct {
	Name string
	Type Type
	Init Expr
	Span Span
}

func (c *ConstDecl) Pos() Span { return c.Span }
func (c *ConstDecl) declNode() {}
func (c *ConstDecl) stmtNode() {}

// CBufferDecl represents a cbuffer or tbuffer block.
type CBufferDecl struct {
	Name            string
	IsTextureBuffer bool // true for tbuffer
	Register        *RegisterBinding
	Members         []*StructMember
	Span            Span

	// Hidden is set by transforms.PruneTree when no member of this buffer
	// is reachable from either requested entry point.
	Hidden bool
}

func (c *CBufferDecl) Pos() Span { return c.Span }
func (c *CBufferDecl) declNode() {}

// TypedefDecl represents a "typedef Type Name;" declaration.
type TypedefDecl struct {
	Name string
	Type Type
	Span Span
}

func (t *TypedefDecl) Pos() Span { return t.Span }
func (t *TypedefDecl) declNode() {}

// Attribute represents a bracketed attribute, e.g. [numthreads(8,8,1)].
type Attribute struct {
	Name string
	Args []Expr
	Span Span
}

// Type represents a type.
type Type interface {
	Node
	typeNode()
}

// NamedType represents a named type. TypeParams holds the generic argument
// list of a templated resource type, e.g. Texture2D<float4>,
// StructuredBuffer<MyStruct>; it is empty for scalar/vector/matrix and
// untemplated types.
type NamedType struct {
	Name       string
	TypeParams []Type
	Span       Span
}

func (n *NamedType) Pos() Span { return n.Span }
func (n *NamedType) typeNode() {}

// ArrayType represents an array type.
type ArrayType struct {
	Element Type
	Size    Expr // nil for unbounded resource arrays
	Span    Span
}

func (a *ArrayType) Pos() Span { return a.Span }
func (a *ArrayType) typeNode() {}

// Statements

// BlockStmt represents a block statement.
type BlockStmt struct {
	Statements []Stmt
	Span       Span
}

func (b *BlockStmt) Pos() Span { return b.Span }
func (b *BlockStmt) stmtNode() {}

// ReturnStmt represents a return statement.
type ReturnStmt struct {
	Value Expr
	Span  Span
}

func (r *ReturnStmt) Pos() Span { return r.Span }
func (r *ReturnStmt) stmtNode() {}

// IfStmt represents an if statement.
type IfStmt struct {
	Condition Expr
	Body      *BlockStmt
	Else      Stmt // *BlockStmt or *IfStmt
	Span      Span
}

func (i *IfStmt) Pos() Span { return i.Span }
func (i *IfStmt) stmtNode() {}

// ForStmt represents a for loop.
type ForStmt struct {
	Init      Stmt
	Condition Expr
	Update    Stmt
	Body      *BlockStmt
	Span      Span
}

func (f *ForStmt) Pos() Span { return f.Span }
func (f *ForStmt) stmtNode() {}

// WhileStmt represents a while loop.
type WhileStmt struct {
	Condition Expr
	Body      *BlockStmt
	Span      Span
}

func (w *WhileStmt) Pos() Span { return w.Span }
func (w *WhileStmt) stmtNode() {}

// DoWhileStmt represents a do-while loop.
type DoWhileStmt struct {
	Body      *BlockStmt
	Condition Expr
	Span      Span
}

func (d *DoWhileStmt) Pos() Span { return d.Span }
func (d *DoWhileStmt) stmtNode() {}

// BreakStmt represents a break statement.
type BreakStmt struct {
	Span Span
}

func (b *BreakStmt) Pos() Span { return b.Span }
func (b *BreakStmt) stmtNode() {}

// ContinueStmt represents a continue statement.
type ContinueStmt struct {
	Span Span
}

func (c *ContinueStmt) Pos() Span { return c.Span }
func (c *ContinueStmt) stmtNode() {}

// DiscardStmt represents a discard statement.
type DiscardStmt struct {
	Span Span
}

func (d *DiscardStmt) Pos() Span { return d.Span }
func (d *DiscardStmt) stmtNode() {}

// AssignStmt represents an assignment statement.
type AssignStmt struct {
	Left  Expr
	Op    TokenKind // =, +=, -=, etc.
	Right Expr
	Span  Span
}

func (a *AssignStmt) Pos() Span { return a.Span }
func (a *AssignStmt) stmtNode() {}

// IncDecStmt represents a "x++"/"--x" style statement.
type IncDecStmt struct {
	Target  Expr
	Op      TokenKind // TokenPlusPlus or TokenMinusMinus
	Postfix bool
	Span    Span
}

func (s *IncDecStmt) Pos() Span { return s.Span }
func (s *IncDecStmt) stmtNode() {}

// ExprStmt represents an expression statement.
type ExprStmt struct {
	Expr Expr
	Span Span
}

func (e *ExprStmt) Pos() Span { return e.Span }
func (e *ExprStmt) stmtNode() {}

// SwitchStmt represents a switch statement.
type SwitchStmt struct {
	Selector Expr
	Cases    []*SwitchCaseClause
	Span     Span
}

func (s *SwitchStmt) Pos() Span { return s.Span }
func (s *SwitchStmt) stmtNode() {}

// SwitchCaseClause represents a case clause in a switch statement.
type SwitchCaseClause struct {
	Selectors []Expr     // Case selectors (nil or empty for default)
	IsDefault bool       // True for default case
	Body      *BlockStmt // Case body
	Span      Span
}

// Expressions

// Ident represents an identifier.
type Ident struct {
	Name string
	Span Span
}

func (i *Ident) Pos() Span { return i.Span }
func (i *Ident) exprNode() {}

// Literal represents a literal value.
type Literal struct {
	Kind  TokenKind // IntLiteral, FloatLiteral, BoolLiteral
	Value string
	Span  Span
}

func (l *Literal) Pos() Span { return l.Span }
func (l *Literal) exprNode() {}

// BinaryExpr represents a binary expression.
type BinaryExpr struct {
	Left  Expr
	Op    TokenKind
	Right Expr
	Span  Span
}

func (b *BinaryExpr) Pos() Span { return b.Span }
func (b *BinaryExpr) exprNode() {}

// UnaryExpr represents a unary expression.
type UnaryExpr struct {
	Op      TokenKind
	Operand Expr
	Span    Span
}

func (u *UnaryExpr) Pos() Span { return u.Span }
func (u *UnaryExpr) exprNode() {}

// TernaryExpr represents a "cond ? then : else" conditional expression.
type TernaryExpr struct {
	Condition Expr
	Then      Expr
	Else      Expr
	Span      Span
}

func (t *TernaryExpr) Pos() Span { return t.Span }
func (t *TernaryExpr) exprNode() {}

// CallExpr represents a free function call, e.g. saturate(x) or mul(a, b).
type CallExpr struct {
	Func *Ident
	Args []Expr
	Span Span
}

func (c *CallExpr) Pos() Span { return c.Span }
func (c *CallExpr) exprNode() {}

// IndexExpr represents an index expression.
type IndexExpr struct {
	Expr  Expr
	Index Expr
	Span  Span
}

func (i *IndexExpr) Pos() Span { return i.Span }
func (i *IndexExpr) exprNode() {}

// MemberExpr represents a member access expression. It covers struct field
// access, swizzles, and texture/buffer method calls alike (the method-call
// form is a MemberExpr wrapped in a CallExpr whose Func is the method name).
type MemberExpr struct {
	Expr   Expr
	Member string
	Span   Span
}

func (m *MemberExpr) Pos() Span { return m.Span }
func (m *MemberExpr) exprNode() {}

// MethodCallExpr represents "recv.Method(args)", e.g. tex.Sample(s, uv) or
// buf.GetDimensions(w, h).
type MethodCallExpr struct {
	Receiver Expr
	Method   string
	Args     []Expr
	Span     Span
}

func (m *MethodCallExpr) Pos() Span { return m.Span }
func (m *MethodCallExpr) exprNode() {}

// ConstructExpr represents a type constructor expression, e.g. float3(0,0,0).
type ConstructExpr struct {
	Type Type
	Args []Expr
	Span Span
}

func (c *ConstructExpr) Pos() Span { return c.Span }
func (c *ConstructExpr) exprNode() {}

// CastExpr represents a C-style cast expression: (Type)expr.
type CastExpr struct {
	Type Type
	Expr Expr
	Span Span
}

func (c *CastExpr) Pos() Span { return c.Span }
func (c *CastExpr) exprNode() {}
