// Package hlslfront provides HLSL (High Level Shading Language) parsing.
//
// HLSL is the shader language used by Direct3D. Unlike WGSL it has no
// notion of an entry-point attribute or an explicit shader stage in the
// source text: the stage and entry point are supplied externally at
// compile time, by a profile string in real D3DCompile-style tooling, and
// by explicit parameters to Lower in this package.
//
// # Components
//
// The hlslfront package consists of several components:
//
//   - Lexer: tokenizes HLSL source code into tokens
//   - Parser: parses tokens into an AST (Abstract Syntax Tree)
//   - AST: type definitions for the abstract syntax tree
//   - Lowerer: lowers the AST into the shared intermediate representation
//
// # Usage
//
// To parse and lower an HLSL shader:
//
//	source := `
//	float4 main(float4 pos : SV_Position) : SV_Target0 {
//	    return float4(1.0, 0.0, 0.0, 1.0);
//	}
//	`
//
//	lexer := hlslfront.NewLexer(source)
//	tokens, err := lexer.Tokenize()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	parser := hlslfront.NewParser(tokens)
//	ast, err := parser.Parse()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := hlslfront.LowerEntry(ast, source, "main", ir.StageFragment)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Type names
//
// HLSL spells out hundreds of distinct type names (floatN for N in 1..4,
// floatNxM for every combination of N and M, the same families for int,
// uint, bool, half and double, plus templated resource types such as
// Texture2D<T> and StructuredBuffer<T>). Rather than give each one its own
// token kind, the lexer treats every type name as a plain identifier; the
// parser and lowerer recognize type names by pattern (a numeric suffix on
// a scalar prefix, or membership in a fixed table of resource/sampler
// names) the same way a C compiler resolves typedef-names against its
// symbol table.
//
// # Supported features
//
//   - Full lexical analysis, including the HLSL numeric literal suffixes
//     (f/F/h/H for float and half, u/U/l/L for integers) and hex literals
//   - Struct, cbuffer/tbuffer, and typedef declarations
//   - Function declarations with semantics and bracketed stage attributes
//     ([numthreads], [domain], [maxvertexcount], ...)
//   - Resource declarations with register bindings
//   - Control flow (if, for, while, do-while, switch)
//   - All standard operators, including the ternary conditional
//   - Texture and buffer method-call syntax (t.Sample(s, uv), ...)
package hlslfront
