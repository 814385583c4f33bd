package hlslfront

import (
	"fmt"
	"strconv"
	"strings"
)

// Parser parses HLSL tokens into an AST.
//
// Syntax errors latch: once the first one is recorded, peek/isAtEnd report
// an EOF sentinel so every subsequent parse call becomes a no-op instead of
// cascading into a wall of unrelated diagnostics.
type Parser struct {
	tokens     []Token
	current    int
	errors     []ParseError
	knownTypes map[string]struct{}
}

// ParseError represents a parsing error.
type ParseError struct {
	Message string
	Token   Token
}

func (e ParseError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Token.Line, e.Token.Column, e.Message)
}

// NewParser creates a new parser for the given tokens.
func NewParser(tokens []Token) *Parser {
	return &Parser{
		tokens:     tokens,
		current:    0,
		knownTypes: make(map[string]struct{}),
	}
}

// resourceTypeNames holds HLSL's templated resource/object type names.
// These are matched exactly, unlike the numeric scalar/vector/matrix family
// which is matched by pattern in isNumericTypeName.
var resourceTypeNames = map[string]bool{
	"Texture1D": true, "Texture1DArray": true,
	"Texture2D": true, "Texture2DArray": true,
	"Texture2DMS": true, "Texture2DMSArray": true,
	"Texture3D": true, "TextureCube": true, "TextureCubeArray": true,
	"RWTexture1D": true, "RWTexture1DArray": true,
	"RWTexture2D": true, "RWTexture2DArray": true, "RWTexture3D": true,
	"RasterizerOrderedTexture1D": true, "RasterizerOrderedTexture1DArray": true,
	"RasterizerOrderedTexture2D": true, "RasterizerOrderedTexture2DArray": true,
	"RasterizerOrderedTexture3D": true,
	"Buffer": true, "RWBuffer": true, "RasterizerOrderedBuffer": true,
	"StructuredBuffer": true, "RWStructuredBuffer": true,
	"RasterizerOrderedStructuredBuffer": true,
	"AppendStructuredBuffer": true, "ConsumeStructuredBuffer": true,
	"ByteAddressBuffer": true, "RWByteAddressBuffer": true,
	"RasterizerOrderedByteAddressBuffer": true,
	"ConstantBuffer": true,
	"SamplerState":   true, "SamplerComparisonState": true,
	"sampler": true, "sampler2D": true, "Sampler2D": true, "sampler3D": true, "Sampler3D": true,
	"samplerCUBE": true, "SamplerCube": true,
	"Sampler2DShadow": true, "Sampler2DMS": true, "Sampler2DArray": true,
	"InputPatch": true, "OutputPatch": true,
	"PointStream": true, "LineStream": true, "TriangleStream": true,
}

// numericScalarPrefixes are the scalar base names that can carry a vector
// (floatN) or matrix (floatNxM) suffix.
var numericScalarPrefixes = []string{
	"min16float", "min10float", "min16int", "min12int", "min16uint",
	"float", "double", "half", "int", "uint", "bool", "dword",
}

// isNumericTypeName reports whether name is a scalar, vector, or matrix
// spelling of one of HLSL's numeric base types (float, float3, float4x4,
// min16float2, ...). HLSL spells out every N and NxM combination rather
// than using a generic syntax, so this is pattern matching rather than a
// fixed keyword table.
func isNumericTypeName(name string) bool {
	for _, prefix := range numericScalarPrefixes {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		rest := name[len(prefix):]
		switch {
		case rest == "":
			return true
		case len(rest) == 1 && rest[0] >= '1' && rest[0] <= '4':
			return true
		case len(rest) == 3 && rest[0] >= '1' && rest[0] <= '4' && rest[1] == 'x' && rest[2] >= '1' && rest[2] <= '4':
			return true
		}
	}
	return false
}

// isTypeName resolves the classic typedef-name problem: an identifier
// denotes a type if it is a numeric type, a known resource/object type, or
// a struct/typedef name declared earlier in the translation unit.
func (p *Parser) isTypeName(name string) bool {
	if name == "void" {
		return true
	}
	if isNumericTypeName(name) {
		return true
	}
	if resourceTypeNames[name] {
		return true
	}
	_, ok := p.knownTypes[name]
	return ok
}

func span(tok Token) Span {
	return Span{Start: Position{Line: tok.Line, Column: tok.Column}}
}

func parseRegisterSlot(s string) (byte, uint32) {
	if len(s) == 0 {
		return 0, 0
	}
	n, _ := strconv.ParseUint(s[1:], 10, 32)
	return s[0], uint32(n)
}

func parseSpaceNumber(s string) uint32 {
	n, _ := strconv.ParseUint(strings.TrimPrefix(s, "space"), 10, 32)
	return uint32(n)
}

// Parse parses the tokens and returns a Module AST.
func (p *Parser) Parse() (*Module, error) {
	module := &Module{}

	for !p.isAtEnd() {
		decl, perr := p.declaration()
		if perr != nil {
			p.errors = append(p.errors, *perr)
			break
		}
		if decl == nil {
			continue
		}
		switch d := decl.(type) {
		case *FunctionDecl:
			module.Functions = append(module.Functions, d)
		case *StructDecl:
			module.Structs = append(module.Structs, d)
		case *VarDecl:
			module.GlobalVars = append(module.GlobalVars, d)
		case *ConstDecl:
			module.Constants = append(module.Constants, d)
		case *CBufferDecl:
			module.CBuffers = append(module.CBuffers, d)
		case *TypedefDecl:
			module.Typedefs = append(module.Typedefs, d)
		}
	}

	if len(p.errors) > 0 {
		return module, fmt.Errorf("parsing failed: %w", p.errors[0])
	}

	return module, nil
}

// declaration parses a top-level declaration.
func (p *Parser) declaration() (Decl, *ParseError) {
	attrs := p.bracketAttributes()

	switch {
	case p.check(TokenStruct):
		return p.structDecl()
	case p.check(TokenCBuffer), p.check(TokenTBuffer):
		return p.cbufferDecl()
	case p.check(TokenTypedef):
		return p.typedefDecl()
	case p.check(TokenEOF):
		return nil, nil
	default:
		return p.topLevelVarOrFunc(attrs)
	}
}

// bracketAttributes parses a run of bracketed stage attributes preceding a
// function declaration, e.g. [numthreads(8,8,1)] [earlydepthstencil].
func (p *Parser) bracketAttributes() []Attribute {
	var attrs []Attribute

	for p.check(TokenLeftBracket) {
		start := p.peek()
		p.advance() // consume [
		if !p.check(TokenIdent) {
			break
		}
		name := p.advance()
		attr := Attribute{Name: name.Lexeme, Span: span(start)}

		if p.match(TokenLeftParen) {
			for !p.check(TokenRightParen) && !p.isAtEnd() {
				arg, err := p.expression()
				if err != nil {
					break
				}
				attr.Args = append(attr.Args, arg)
				if !p.match(TokenComma) {
					break
				}
			}
			p.expect(TokenRightParen)
		}
		p.expect(TokenRightBracket)

		attrs = append(attrs, attr)
	}

	return attrs
}

// qualifiers parses storage/layout qualifiers preceding a type.
func (p *Parser) qualifiers() []string {
	var quals []string
	for {
		switch p.peek().Kind {
		case TokenStatic, TokenConst, TokenUniform, TokenGroupShared,
			TokenRowMajor, TokenColumnMajor, TokenPrecise, TokenInline:
			quals = append(quals, p.advance().Lexeme)
		default:
			return quals
		}
	}
}

// topLevelVarOrFunc disambiguates a global variable declaration from a
// function declaration: both start with [qualifiers] Type Name, and only
// diverge at the token following Name ('(' means function).
func (p *Parser) topLevelVarOrFunc(attrs []Attribute) (Decl, *ParseError) {
	start := p.peek()
	quals := p.qualifiers()

	typ, err := p.typeSpec()
	if err != nil {
		return nil, err
	}

	if !p.check(TokenIdent) {
		return nil, &ParseError{Message: "expected declaration name", Token: p.peek()}
	}
	name := p.advance()

	if p.check(TokenLeftParen) {
		return p.functionDeclRest(attrs, typ, name, start)
	}

	return p.globalVarDeclRest(quals, typ, name, start)
}

// functionDeclRest parses a function's parameter list, return semantic, and
// body, given its return type and name have already been consumed.
func (p *Parser) functionDeclRest(attrs []Attribute, returnType Type, name Token, start Token) (Decl, *ParseError) {
	if err := p.expectErr(TokenLeftParen); err != nil {
		return nil, err
	}

	var params []*Parameter
	for !p.check(TokenRightParen) && !p.isAtEnd() {
		param, err := p.parameter()
		if err != nil {
			return nil, err
		}
		params = append(params, param)
		if !p.match(TokenComma) {
			break
		}
	}

	if err := p.expectErr(TokenRightParen); err != nil {
		return nil, err
	}

	var semantic string
	if p.match(TokenColon) {
		if !p.check(TokenIdent) {
			return nil, &ParseError{Message: "expected return semantic", Token: p.peek()}
		}
		semantic = p.advance().Lexeme
	}

	if p.match(TokenSemicolon) {
		// Forward declaration: nothing to lower.
		return nil, nil
	}

	body, err := p.block()
	if err != nil {
		return nil, err
	}

	return &FunctionDecl{
		Name:       name.Lexeme,
		Params:     params,
		ReturnType: returnType,
		Semantic:   semantic,
		Attributes: attrs,
		Body:       body,
		Span:       span(start),
	}, nil
}

// parameter parses a function parameter.
func (p *Parser) parameter() (*Parameter, *ParseError) {
	var quals []string
	for {
		switch p.peek().Kind {
		case TokenIn, TokenOut, TokenInout, TokenUniform, TokenPrecise, TokenConst:
			quals = append(quals, p.advance().Lexeme)
			continue
		}
		break
	}

	typ, err := p.typeSpec()
	if err != nil {
		return nil, err
	}

	if !p.check(TokenIdent) {
		return nil, &ParseError{Message: "expected parameter name", Token: p.peek()}
	}
	name := p.advance()

	declType, err := p.arraySuffix(typ, name)
	if err != nil {
		return nil, err
	}

	var semantic string
	if p.match(TokenColon) {
		if !p.check(TokenIdent) {
			return nil, &ParseError{Message: "expected semantic", Token: p.peek()}
		}
		semantic = p.advance().Lexeme
	}

	return &Parameter{
		Name:       name.Lexeme,
		Type:       declType,
		Semantic:   semantic,
		Qualifiers: quals,
		Span:       span(name),
	}, nil
}

// arraySuffix consumes zero or more "[size]" array-dimension suffixes
// following a declarator name, wrapping elemType in nested ArrayTypes.
func (p *Parser) arraySuffix(elemType Type, name Token) (Type, *ParseError) {
	declType := elemType
	for p.match(TokenLeftBracket) {
		var size Expr
		if !p.check(TokenRightBracket) {
			s, err := p.expression()
			if err != nil {
				return nil, err
			}
			size = s
		}
		if err := p.expectErr(TokenRightBracket); err != nil {
			return nil, err
		}
		declType = &ArrayType{Element: declType, Size: size, Span: span(name)}
	}
	return declType, nil
}

// globalVarDeclRest parses the remainder of a global resource/variable
// declaration: array dimensions, an optional register binding, an optional
// initializer, and the terminating semicolon.
func (p *Parser) globalVarDeclRest(quals []string, typ Type, name Token, start Token) (*VarDecl, *ParseError) {
	declType, err := p.arraySuffix(typ, name)
	if err != nil {
		return nil, err
	}

	var reg *RegisterBinding
	if p.match(TokenColon) {
		r, rerr := p.registerBinding()
		if rerr != nil {
			return nil, rerr
		}
		reg = r
	}

	var init Expr
	if p.match(TokenEqual) {
		e, ierr := p.expression()
		if ierr != nil {
			return nil, ierr
		}
		init = e
	}

	p.match(TokenSemicolon)

	return &VarDecl{
		Name:       name.Lexeme,
		Type:       declType,
		Init:       init,
		Qualifiers: quals,
		Register:   reg,
		Span:       span(start),
	}, nil
}

// registerBinding parses "register(tN[, spaceM])", the register keyword
// itself already having been checked for by the caller.
func (p *Parser) registerBinding() (*RegisterBinding, *ParseError) {
	if err := p.expectErr(TokenRegister); err != nil {
		return nil, err
	}
	if err := p.expectErr(TokenLeftParen); err != nil {
		return nil, err
	}
	if !p.check(TokenIdent) {
		return nil, &ParseError{Message: "expected register slot", Token: p.peek()}
	}
	regTok := p.advance()
	class, slot := parseRegisterSlot(regTok.Lexeme)

	var space uint32
	if p.match(TokenComma) {
		if !p.check(TokenIdent) {
			return nil, &ParseError{Message: "expected register space", Token: p.peek()}
		}
		space = parseSpaceNumber(p.advance().Lexeme)
	}

	if err := p.expectErr(TokenRightParen); err != nil {
		return nil, err
	}

	return &RegisterBinding{Class: class, Slot: slot, Space: space}, nil
}

// structDecl parses a struct declaration.
func (p *Parser) structDecl() (*StructDecl, *ParseError) {
	start := p.peek()
	if err := p.expectErr(TokenStruct); err != nil {
		return nil, err
	}

	if !p.check(TokenIdent) {
		return nil, &ParseError{Message: "expected struct name", Token: p.peek()}
	}
	name := p.advance()

	if err := p.expectErr(TokenLeftBrace); err != nil {
		return nil, err
	}

	var members []*StructMember
	for !p.check(TokenRightBrace) && !p.isAtEnd() {
		member, err := p.structMember()
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}

	if err := p.expectErr(TokenRightBrace); err != nil {
		return nil, err
	}
	p.match(TokenSemicolon)

	p.knownTypes[name.Lexeme] = struct{}{}

	return &StructDecl{Name: name.Lexeme, Members: members, Span: span(start)}, nil
}

// structMember parses a struct member, e.g. "float3 normal : NORMAL;".
func (p *Parser) structMember() (*StructMember, *ParseError) {
	var interp string
	if p.check(TokenInterpolationMode) {
		interp = p.advance().Lexeme
	}

	typ, err := p.typeSpec()
	if err != nil {
		return nil, err
	}

	if !p.check(TokenIdent) {
		return nil, &ParseError{Message: "expected member name", Token: p.peek()}
	}
	name := p.advance()

	declType, err := p.arraySuffix(typ, name)
	if err != nil {
		return nil, err
	}

	var semantic string
	if p.match(TokenColon) {
		if !p.check(TokenIdent) {
			return nil, &ParseError{Message: "expected semantic", Token: p.peek()}
		}
		semantic = p.advance().Lexeme
	}

	if err := p.expectErr(TokenSemicolon); err != nil {
		return nil, err
	}

	return &StructMember{
		Name: name.Lexeme, Type: declType, Semantic: semantic,
		Interpolation: interp, Span: span(name),
	}, nil
}

// cbufferDecl parses a cbuffer or tbuffer block.
func (p *Parser) cbufferDecl() (*CBufferDecl, *ParseError) {
	start := p.peek()
	isTBuffer := p.check(TokenTBuffer)
	p.advance() // cbuffer / tbuffer

	if !p.check(TokenIdent) {
		return nil, &ParseError{Message: "expected cbuffer name", Token: p.peek()}
	}
	name := p.advance()

	var reg *RegisterBinding
	if p.match(TokenColon) {
		r, err := p.registerBinding()
		if err != nil {
			return nil, err
		}
		reg = r
	}

	if err := p.expectErr(TokenLeftBrace); err != nil {
		return nil, err
	}

	var members []*StructMember
	for !p.check(TokenRightBrace) && !p.isAtEnd() {
		member, err := p.cbufferMember()
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}

	if err := p.expectErr(TokenRightBrace); err != nil {
		return nil, err
	}
	p.match(TokenSemicolon)

	return &CBufferDecl{
		Name: name.Lexeme, IsTextureBuffer: isTBuffer,
		Register: reg, Members: members, Span: span(start),
	}, nil
}

// cbufferMember parses one member of a cbuffer/tbuffer block. A trailing
// ": packoffset(...)" or ": register(...)" is accepted but not modeled
// individually; packing is left to the target backend's own layout rules.
func (p *Parser) cbufferMember() (*StructMember, *ParseError) {
	for p.check(TokenRowMajor) || p.check(TokenColumnMajor) || p.check(TokenConst) {
		p.advance()
	}

	typ, err := p.typeSpec()
	if err != nil {
		return nil, err
	}

	if !p.check(TokenIdent) {
		return nil, &ParseError{Message: "expected member name", Token: p.peek()}
	}
	name := p.advance()

	declType, err := p.arraySuffix(typ, name)
	if err != nil {
		return nil, err
	}

	if p.match(TokenColon) {
		for !p.check(TokenSemicolon) && !p.isAtEnd() {
			p.advance()
		}
	}

	if err := p.expectErr(TokenSemicolon); err != nil {
		return nil, err
	}

	return &StructMember{Name: name.Lexeme, Type: declType, Span: span(name)}, nil
}

// typedefDecl parses "typedef Type Name;".
func (p *Parser) typedefDecl() (*TypedefDecl, *ParseError) {
	start := p.advance() // typedef

	typ, err := p.typeSpec()
	if err != nil {
		return nil, err
	}

	if !p.check(TokenIdent) {
		return nil, &ParseError{Message: "expected typedef name", Token: p.peek()}
	}
	name := p.advance()
	p.match(TokenSemicolon)

	p.knownTypes[name.Lexeme] = struct{}{}

	return &TypedefDecl{Name: name.Lexeme, Type: typ, Span: span(start)}, nil
}

// typeSpec parses a type specification: a scalar/vector/matrix name, a
// resource/object type optionally followed by "<...>" template arguments,
// or a previously declared struct/typedef name.
func (p *Parser) typeSpec() (Type, *ParseError) {
	tok := p.peek()

	if tok.Kind == TokenVoid {
		p.advance()
		return &NamedType{Name: "void", Span: span(tok)}, nil
	}

	if tok.Kind != TokenIdent || !p.isTypeName(tok.Lexeme) {
		return nil, &ParseError{Message: fmt.Sprintf("expected type, got %q", tok.Lexeme), Token: tok}
	}

	name := p.advance()
	namedType := &NamedType{Name: name.Lexeme, Span: span(name)}

	if p.match(TokenLess) {
		for !p.check(TokenGreater) && !p.isAtEnd() {
			paramType, err := p.typeSpec()
			if err != nil {
				return nil, err
			}
			namedType.TypeParams = append(namedType.TypeParams, paramType)
			if !p.match(TokenComma) {
				break
			}
		}
		p.expect(TokenGreater)
	}

	return namedType, nil
}

// block parses a block statement.
func (p *Parser) block() (*BlockStmt, *ParseError) {
	start := p.peek()
	if err := p.expectErr(TokenLeftBrace); err != nil {
		return nil, err
	}

	var stmts []Stmt
	for !p.check(TokenRightBrace) && !p.isAtEnd() {
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}

	if err := p.expectErr(TokenRightBrace); err != nil {
		return nil, err
	}

	return &BlockStmt{Statements: stmts, Span: span(start)}, nil
}

// stmtAsBlock parses a statement, wrapping a single non-brace statement in
// a BlockStmt so callers like ifStmt/forStmt always get a uniform shape
// even though HLSL allows an unbraced body.
func (p *Parser) stmtAsBlock() (*BlockStmt, *ParseError) {
	if p.check(TokenLeftBrace) {
		return p.block()
	}
	start := p.peek()
	stmt, err := p.statement()
	if err != nil {
		return nil, err
	}
	return &BlockStmt{Statements: []Stmt{stmt}, Span: span(start)}, nil
}

// statement parses a statement.
func (p *Parser) statement() (Stmt, *ParseError) {
	switch {
	case p.check(TokenReturn):
		return p.returnStmt()
	case p.check(TokenIf):
		return p.ifStmt()
	case p.check(TokenFor):
		return p.forStmt()
	case p.check(TokenWhile):
		return p.whileStmt()
	case p.check(TokenDo):
		return p.doWhileStmt()
	case p.check(TokenBreak):
		return p.breakStmt()
	case p.check(TokenContinue):
		return p.continueStmt()
	case p.check(TokenDiscard):
		return p.discardStmt()
	case p.check(TokenSwitch):
		return p.switchStmt()
	case p.check(TokenLeftBrace):
		return p.block()
	case p.check(TokenStatic), p.check(TokenConst), p.check(TokenRowMajor),
		p.check(TokenColumnMajor), p.check(TokenPrecise):
		return p.localVarDecl()
	case p.check(TokenIdent) && p.isTypeName(p.peek().Lexeme):
		return p.localVarDecl()
	case p.check(TokenVoid):
		return p.localVarDecl()
	default:
		return p.exprOrAssignStmt()
	}
}

// localVarDecl parses one or more comma-separated local declarators sharing
// a type, e.g. "float a = 0, b = 1;". Two or more declarators are returned
// wrapped in a BlockStmt since Stmt has to be a single value.
func (p *Parser) localVarDecl() (Stmt, *ParseError) {
	start := p.peek()
	quals := p.qualifiers()

	typ, err := p.typeSpec()
	if err != nil {
		return nil, err
	}

	var decls []Stmt
	for {
		if !p.check(TokenIdent) {
			return nil, &ParseError{Message: "expected variable name", Token: p.peek()}
		}
		name := p.advance()

		declType, aerr := p.arraySuffix(typ, name)
		if aerr != nil {
			return nil, aerr
		}

		var init Expr
		if p.match(TokenEqual) {
			e, ierr := p.expression()
			if ierr != nil {
				return nil, ierr
			}
			init = e
		}

		decls = append(decls, &VarDecl{
			Name: name.Lexeme, Type: declType, Init: init,
			Qualifiers: quals, Span: span(name),
		})

		if !p.match(TokenComma) {
			break
		}
	}

	p.match(TokenSemicolon)

	if len(decls) == 1 {
		return decls[0], nil
	}
	return &BlockStmt{Statements: decls, Span: span(start)}, nil
}

// returnStmt parses a return statement.
func (p *Parser) returnStmt() (*ReturnStmt, *ParseError) {
	start := p.advance() // consume 'return'

	var value Expr
	if !p.check(TokenSemicolon) && !p.check(TokenRightBrace) {
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		value = e
	}

	p.match(TokenSemicolon)

	return &ReturnStmt{Value: value, Span: span(start)}, nil
}

// ifStmt parses an if statement.
func (p *Parser) ifStmt() (*IfStmt, *ParseError) {
	start := p.advance() // consume 'if'

	if err := p.expectErr(TokenLeftParen); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if err := p.expectErr(TokenRightParen); err != nil {
		return nil, err
	}

	body, err := p.stmtAsBlock()
	if err != nil {
		return nil, err
	}

	var elseStmt Stmt
	if p.match(TokenElse) {
		if p.check(TokenIf) {
			elseStmt, err = p.ifStmt()
		} else {
			elseStmt, err = p.stmtAsBlock()
		}
		if err != nil {
			return nil, err
		}
	}

	return &IfStmt{Condition: cond, Body: body, Else: elseStmt, Span: span(start)}, nil
}

// forStmt parses a for statement.
func (p *Parser) forStmt() (*ForStmt, *ParseError) {
	start := p.advance() // consume 'for'

	if err := p.expectErr(TokenLeftParen); err != nil {
		return nil, err
	}

	var init Stmt
	if !p.check(TokenSemicolon) {
		s, err := p.statement()
		if err != nil {
			return nil, err
		}
		init = s
	} else {
		p.advance()
	}

	var cond Expr
	if !p.check(TokenSemicolon) {
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		cond = e
	}
	p.match(TokenSemicolon)

	var update Stmt
	if !p.check(TokenRightParen) {
		s, err := p.statement()
		if err != nil {
			return nil, err
		}
		update = s
	}

	if err := p.expectErr(TokenRightParen); err != nil {
		return nil, err
	}

	body, err := p.stmtAsBlock()
	if err != nil {
		return nil, err
	}

	return &ForStmt{Init: init, Condition: cond, Update: update, Body: body, Span: span(start)}, nil
}

// whileStmt parses a while statement.
func (p *Parser) whileStmt() (*WhileStmt, *ParseError) {
	start := p.advance() // consume 'while'

	if err := p.expectErr(TokenLeftParen); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if err := p.expectErr(TokenRightParen); err != nil {
		return nil, err
	}

	body, err := p.stmtAsBlock()
	if err != nil {
		return nil, err
	}

	return &WhileStmt{Condition: cond, Body: body, Span: span(start)}, nil
}

// doWhileStmt parses a do-while statement.
func (p *Parser) doWhileStmt() (*DoWhileStmt, *ParseError) {
	start := p.advance() // consume 'do'

	body, err := p.block()
	if err != nil {
		return nil, err
	}

	if err := p.expectErr(TokenWhile); err != nil {
		return nil, err
	}
	if err := p.expectErr(TokenLeftParen); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if err := p.expectErr(TokenRightParen); err != nil {
		return nil, err
	}
	p.match(TokenSemicolon)

	return &DoWhileStmt{Body: body, Condition: cond, Span: span(start)}, nil
}

// switchStmt parses a switch statement.
func (p *Parser) switchStmt() (*SwitchStmt, *ParseError) {
	start := p.advance() // consume 'switch'

	if err := p.expectErr(TokenLeftParen); err != nil {
		return nil, err
	}
	selector, err := p.expression()
	if err != nil {
		return nil, err
	}
	if err := p.expectErr(TokenRightParen); err != nil {
		return nil, err
	}

	if err := p.expectErr(TokenLeftBrace); err != nil {
		return nil, err
	}

	var cases []*SwitchCaseClause
	for !p.check(TokenRightBrace) && !p.isAtEnd() {
		caseClause, err := p.switchCaseClause()
		if err != nil {
			return nil, err
		}
		cases = append(cases, caseClause)
	}

	if err := p.expectErr(TokenRightBrace); err != nil {
		return nil, err
	}

	return &SwitchStmt{Selector: selector, Cases: cases, Span: span(start)}, nil
}

// switchCaseClause parses one or more stacked case labels (to support
// fallthrough-by-grouping, e.g. "case 1: case 2: ...") followed by the
// statements belonging to the group, up to the next label or the closing
// brace. HLSL case bodies are not implicitly scoped or terminated.
func (p *Parser) switchCaseClause() (*SwitchCaseClause, *ParseError) {
	start := p.peek()
	var selectors []Expr
	isDefault := false

	if p.match(TokenDefault) {
		isDefault = true
		if err := p.expectErr(TokenColon); err != nil {
			return nil, err
		}
	} else {
		for {
			if err := p.expectErr(TokenCase); err != nil {
				return nil, err
			}
			expr, err := p.expression()
			if err != nil {
				return nil, err
			}
			selectors = append(selectors, expr)
			if err := p.expectErr(TokenColon); err != nil {
				return nil, err
			}
			if !p.check(TokenCase) {
				break
			}
		}
	}

	var stmts []Stmt
	for !p.check(TokenCase) && !p.check(TokenDefault) && !p.check(TokenRightBrace) && !p.isAtEnd() {
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}

	return &SwitchCaseClause{
		Selectors: selectors, IsDefault: isDefault,
		Body: &BlockStmt{Statements: stmts, Span: span(start)},
		Span: span(start),
	}, nil
}

// breakStmt parses a break statement.
func (p *Parser) breakStmt() (*BreakStmt, *ParseError) {
	start := p.advance() // consume 'break'
	p.match(TokenSemicolon)
	return &BreakStmt{Span: span(start)}, nil
}

// continueStmt parses a continue statement.
func (p *Parser) continueStmt() (*ContinueStmt, *ParseError) {
	start := p.advance() // consume 'continue'
	p.match(TokenSemicolon)
	return &ContinueStmt{Span: span(start)}, nil
}

// discardStmt parses a discard statement.
func (p *Parser) discardStmt() (*DiscardStmt, *ParseError) {
	start := p.advance() // consume 'discard'
	p.match(TokenSemicolon)
	return &DiscardStmt{Span: span(start)}, nil
}

// exprOrAssignStmt parses an expression statement, an assignment, or a
// postfix increment/decrement statement.
func (p *Parser) exprOrAssignStmt() (Stmt, *ParseError) {
	start := p.peek()
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}

	if p.check(TokenPlusPlus) || p.check(TokenMinusMinus) {
		op := p.advance()
		p.match(TokenSemicolon)
		return &IncDecStmt{Target: expr, Op: op.Kind, Postfix: true, Span: span(start)}, nil
	}

	if p.isAssignOp(p.peek().Kind) {
		op := p.advance()
		right, err := p.expression()
		if err != nil {
			return nil, err
		}
		p.match(TokenSemicolon)
		return &AssignStmt{Left: expr, Op: op.Kind, Right: right, Span: span(start)}, nil
	}

	p.match(TokenSemicolon)
	return &ExprStmt{Expr: expr, Span: span(start)}, nil
}

// expression parses an expression, starting at the ternary level (HLSL
// assignment is statement-level in this grammar, same as the rest of the
// C-family operators below it).
func (p *Parser) expression() (Expr, *ParseError) {
	return p.ternary()
}

// ternary parses the "cond ? then : else" conditional expression.
func (p *Parser) ternary() (Expr, *ParseError) {
	cond, err := p.logicalOr()
	if err != nil {
		return nil, err
	}

	if p.match(TokenQuestion) {
		thenExpr, terr := p.expression()
		if terr != nil {
			return nil, terr
		}
		if err := p.expectErr(TokenColon); err != nil {
			return nil, err
		}
		elseExpr, eerr := p.ternary()
		if eerr != nil {
			return nil, eerr
		}
		return &TernaryExpr{Condition: cond, Then: thenExpr, Else: elseExpr, Span: cond.Pos()}, nil
	}

	return cond, nil
}

// logicalOr parses || expressions.
func (p *Parser) logicalOr() (Expr, *ParseError) {
	left, err := p.logicalAnd()
	if err != nil {
		return nil, err
	}
	for p.match(TokenPipePipe) {
		right, err := p.logicalAnd()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Op: TokenPipePipe, Right: right}
	}
	return left, nil
}

// logicalAnd parses && expressions.
func (p *Parser) logicalAnd() (Expr, *ParseError) {
	left, err := p.bitwiseOr()
	if err != nil {
		return nil, err
	}
	for p.match(TokenAmpAmp) {
		right, err := p.bitwiseOr()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Op: TokenAmpAmp, Right: right}
	}
	return left, nil
}

// bitwiseOr parses | expressions.
func (p *Parser) bitwiseOr() (Expr, *ParseError) {
	left, err := p.bitwiseXor()
	if err != nil {
		return nil, err
	}
	for p.match(TokenPipe) {
		right, err := p.bitwiseXor()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Op: TokenPipe, Right: right}
	}
	return left, nil
}

// bitwiseXor parses ^ expressions.
func (p *Parser) bitwiseXor() (Expr, *ParseError) {
	left, err := p.bitwiseAnd()
	if err != nil {
		return nil, err
	}
	for p.match(TokenCaret) {
		right, err := p.bitwiseAnd()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Op: TokenCaret, Right: right}
	}
	return left, nil
}

// bitwiseAnd parses & expressions.
func (p *Parser) bitwiseAnd() (Expr, *ParseError) {
	left, err := p.equality()
	if err != nil {
		return nil, err
	}
	for p.match(TokenAmpersand) {
		right, err := p.equality()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Op: TokenAmpersand, Right: right}
	}
	return left, nil
}

// equality parses == and != expressions.
func (p *Parser) equality() (Expr, *ParseError) {
	left, err := p.comparison()
	if err != nil {
		return nil, err
	}
	for p.check(TokenEqualEqual) || p.check(TokenBangEqual) {
		op := p.advance()
		right, err := p.comparison()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Op: op.Kind, Right: right}
	}
	return left, nil
}

// comparison parses <, >, <=, >= expressions.
func (p *Parser) comparison() (Expr, *ParseError) {
	left, err := p.shift()
	if err != nil {
		return nil, err
	}
	for p.check(TokenLess) || p.check(TokenGreater) ||
		p.check(TokenLessEqual) || p.check(TokenGreaterEqual) {
		op := p.advance()
		right, err := p.shift()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Op: op.Kind, Right: right}
	}
	return left, nil
}

// shift parses << and >> expressions.
func (p *Parser) shift() (Expr, *ParseError) {
	left, err := p.additive()
	if err != nil {
		return nil, err
	}
	for p.check(TokenLessLess) || p.check(TokenGreaterGreater) {
		op := p.advance()
		right, err := p.additive()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Op: op.Kind, Right: right}
	}
	return left, nil
}

// additive parses + and - expressions.
func (p *Parser) additive() (Expr, *ParseError) {
	left, err := p.multiplicative()
	if err != nil {
		return nil, err
	}
	for p.check(TokenPlus) || p.check(TokenMinus) {
		op := p.advance()
		right, err := p.multiplicative()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Op: op.Kind, Right: right}
	}
	return left, nil
}

// multiplicative parses *, /, % expressions.
func (p *Parser) multiplicative() (Expr, *ParseError) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.check(TokenStar) || p.check(TokenSlash) || p.check(TokenPercent) {
		op := p.advance()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Op: op.Kind, Right: right}
	}
	return left, nil
}

// unary parses unary expressions, including prefix increment/decrement.
func (p *Parser) unary() (Expr, *ParseError) {
	if p.check(TokenPlusPlus) || p.check(TokenMinusMinus) ||
		p.check(TokenMinus) || p.check(TokenPlus) || p.check(TokenBang) || p.check(TokenTilde) {
		op := p.advance()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: op.Kind, Operand: operand, Span: span(op)}, nil
	}
	return p.postfix()
}

// postfix parses postfix expressions: calls, indexing, and member access.
// A call on a MemberExpr becomes a MethodCallExpr, matching HLSL's
// "resource.Method(args)" texture/buffer intrinsic calling convention.
func (p *Parser) postfix() (Expr, *ParseError) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}

	for {
		switch {
		case p.match(TokenLeftParen):
			var args []Expr
			for !p.check(TokenRightParen) && !p.isAtEnd() {
				arg, aerr := p.expression()
				if aerr != nil {
					return nil, aerr
				}
				args = append(args, arg)
				if !p.match(TokenComma) {
					break
				}
			}
			p.expect(TokenRightParen)

			switch e := expr.(type) {
			case *Ident:
				expr = &CallExpr{Func: e, Args: args}
			case *ConstructExpr:
				e.Args = args
			case *MemberExpr:
				expr = &MethodCallExpr{Receiver: e.Expr, Method: e.Member, Args: args}
			}

		case p.match(TokenLeftBracket):
			index, ierr := p.expression()
			if ierr != nil {
				return nil, ierr
			}
			p.expect(TokenRightBracket)
			expr = &IndexExpr{Expr: expr, Index: index}

		case p.match(TokenDot):
			if !p.check(TokenIdent) {
				return nil, &ParseError{Message: "expected member name", Token: p.peek()}
			}
			member := p.advance()
			expr = &MemberExpr{Expr: expr, Member: member.Lexeme}

		default:
			return expr, nil
		}
	}
}

// primary parses primary expressions.
func (p *Parser) primary() (Expr, *ParseError) {
	tok := p.peek()

	switch tok.Kind {
	case TokenIntLiteral, TokenFloatLiteral:
		p.advance()
		return &Literal{Kind: tok.Kind, Value: tok.Lexeme, Span: span(tok)}, nil

	case TokenTrue, TokenFalse, TokenBoolLiteral:
		p.advance()
		return &Literal{Kind: TokenBoolLiteral, Value: tok.Lexeme, Span: span(tok)}, nil

	case TokenIdent:
		if p.isTypeName(tok.Lexeme) {
			typeExpr, err := p.typeSpec()
			if err != nil {
				return nil, err
			}
			return &ConstructExpr{Type: typeExpr, Span: span(tok)}, nil
		}
		p.advance()
		return &Ident{Name: tok.Lexeme, Span: span(tok)}, nil

	case TokenVoid:
		typeExpr, err := p.typeSpec()
		if err != nil {
			return nil, err
		}
		return &ConstructExpr{Type: typeExpr, Span: span(tok)}, nil

	case TokenLeftParen:
		p.advance()

		// Disambiguate a cast "(Type)expr" from a parenthesized expression
		// "(expr)": speculatively parse a type, and only commit to the cast
		// reading if a closing paren immediately follows it.
		if p.check(TokenIdent) && p.isTypeName(p.peek().Lexeme) {
			saved := p.current
			if typ, terr := p.typeSpec(); terr == nil && p.check(TokenRightParen) {
				p.advance()
				operand, oerr := p.unary()
				if oerr != nil {
					return nil, oerr
				}
				return &CastExpr{Type: typ, Expr: operand, Span: span(tok)}, nil
			}
			p.current = saved
		}

		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		if err := p.expectErr(TokenRightParen); err != nil {
			return nil, err
		}
		return expr, nil

	default:
		return nil, &ParseError{
			Message: fmt.Sprintf("unexpected token %s in expression", tok.Kind),
			Token:   tok,
		}
	}
}

// Helper methods

func (p *Parser) advance() Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) peek() Token {
	if len(p.errors) > 0 {
		return Token{Kind: TokenEOF}
	}
	return p.tokens[p.current]
}

func (p *Parser) previous() Token {
	return p.tokens[p.current-1]
}

func (p *Parser) isAtEnd() bool {
	if len(p.errors) > 0 {
		return true
	}
	return p.tokens[p.current].Kind == TokenEOF
}

func (p *Parser) check(kind TokenKind) bool {
	if p.isAtEnd() {
		return false
	}
	return p.peek().Kind == kind
}

func (p *Parser) match(kind TokenKind) bool {
	if p.check(kind) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(kind TokenKind) bool {
	if p.check(kind) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expectErr(kind TokenKind) *ParseError {
	if p.check(kind) {
		p.advance()
		return nil
	}
	return &ParseError{
		Message: fmt.Sprintf("expected %s, got %s", kind, p.peek().Kind),
		Token:   p.peek(),
	}
}

func (p *Parser) isAssignOp(kind TokenKind) bool {
	switch kind {
	case TokenEqual, TokenPlusEqual, TokenMinusEqual, TokenStarEqual,
		TokenSlashEqual, TokenPercentEqual, TokenAmpEqual, TokenPipeEqual,
		TokenCaretEqual, TokenLessLessEqual, TokenGreaterGreaterEqual:
		return true
	}
	return false
}
