// Package hlslxc is a pure Go HLSL cross-compiler.
//
// hlslxc parses HLSL (High Level Shading Language) source for a single
// entry point and shader stage and emits equivalent source in one of
// several target shading languages:
//   - HLSL   — round-tripped/normalized HLSL (shader model 5.1+)
//   - GLSL   — OpenGL Shading Language 4.50
//   - MSL    — Metal Shading Language
//
// The package offers a simple high-level Compile/CompileWithOptions entry
// point, as well as direct access to the individual pipeline stages
// (Parse, Lower, Generate) for callers that want finer control or want to
// inspect intermediate results.
//
// Example usage:
//
//	src := `
//	float4 main(float4 pos : POSITION) : SV_Position {
//	    return pos;
//	}
//	`
//	opts := hlslxc.DefaultOptions()
//	opts.EntryPoint = "main"
//	opts.Stage = ir.StageVertex
//	data, err := hlslxc.CompileWithOptions(src, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(data.GeneratedSource)
package hlslxc

import (
	"fmt"
	"os"

	"github.com/gogpu/hlslxc/diagnostic"
	"github.com/gogpu/hlslxc/glsl"
	"github.com/gogpu/hlslxc/hlsl"
	"github.com/gogpu/hlslxc/hlslfront"
	"github.com/gogpu/hlslxc/ir"
	"github.com/gogpu/hlslxc/msl"
	"github.com/gogpu/hlslxc/preproc"
	"github.com/gogpu/hlslxc/transforms"
)

// Language selects the output shading language.
type Language int

const (
	LanguageHLSL Language = iota
	LanguageGLSL
	LanguageMSL
	// LanguageLegacyHLSL emits shader model 3-compatible HLSL (no cbuffer
	// grouping skipped, register assignment forced through GroupParameters).
	LanguageLegacyHLSL
)

func (l Language) String() string {
	switch l {
	case LanguageHLSL:
		return "hlsl"
	case LanguageGLSL:
		return "glsl"
	case LanguageMSL:
		return "msl"
	case LanguageLegacyHLSL:
		return "legacy-hlsl"
	default:
		return "unknown"
	}
}

// Operation selects how far through the pipeline Compile runs.
type Operation int

const (
	// OperationPreproc runs only the preprocessing stage.
	OperationPreproc Operation = iota
	// OperationParse runs preprocessing, tokenizing, and parsing.
	OperationParse
	// OperationGenerate runs the full pipeline through code generation.
	OperationGenerate
)

// Override rebinds a resource declared with attribute Attribute to an
// explicit (Set, Binding) pair, matching spec.md §6's override list.
type Override struct {
	Attribute string
	Set       uint32
	Binding   uint32
}

// Shift adds Amount to every register of class Class (one of 'b','t','s','u')
// within the given Space, matching DXC-style binding-shift options.
type Shift struct {
	Class  byte
	Space  uint32
	Amount uint32
}

// CompileOptions configures a single compilation run, mirroring spec.md §6's
// external-interface table.
type CompileOptions struct {
	// EntryPoint is the function name to compile; required for Parse/Generate.
	EntryPoint string
	// Stage is the shader stage entryPoint is compiled as.
	Stage ir.ShaderStage

	Language  Language
	Operation Operation

	// OverrideRequired clears the HLSL and MSL backends' FakeMissingBindings
	// option. Generate does not fail for a resource with no Override: the
	// HLSL backend places it at register 0 in space 0.
	OverrideRequired bool
	Overrides        []Override
	Shifts           []Shift

	DebugTokensEnable  bool
	DebugTokensPath    string
	DebugPreprocEnable bool
	DebugPreprocPath   string

	GeneratedWriteEnable bool
	GeneratedWritePath   string

	// Preprocessor expands #include/#define before tokenizing. Defaults to
	// a PassthroughPreprocessor over Filename/Source if nil.
	Preprocessor preproc.Preprocessor
	Filename     string
	Macros       []preproc.Macro

	// Logger receives non-fatal diagnostics. Defaults to a no-op logger.
	Logger diagnostic.Logger
}

// DefaultOptions returns sensible defaults: HLSL entry point compiled as a
// fragment shader, run through code generation, with a no-op logger and a
// passthrough preprocessor.
func DefaultOptions() CompileOptions {
	return CompileOptions{
		Stage:     ir.StageFragment,
		Language:  LanguageHLSL,
		Operation: OperationGenerate,
		Filename:  "<source>",
		Logger:    diagnostic.Noop(),
	}
}

// ParsedData is the structured result of a compilation run, mirroring
// spec.md §6's ParsedData output record: one success flag and one error
// string per phase, plus whatever intermediate text each phase produced.
type ParsedData struct {
	PreprocOK          bool
	PreprocErrors      string
	PreprocessedSource string
	IncludedFiles      []string

	TokenizeOK    bool
	TokenizeError string

	ParseOK    bool
	ParseError string

	GenerateOK      bool
	GenerateError   string
	GeneratedSource string
}

// Compile runs CompileWithOptions using DefaultOptions with EntryPoint and
// Stage overridden, for the common case of generating HLSL from a single
// fragment-shader entry point.
func Compile(source, entryPoint string) (*ParsedData, error) {
	opts := DefaultOptions()
	opts.EntryPoint = entryPoint
	return CompileWithOptions(source, opts)
}

// CompileWithOptions runs the pipeline (preprocess -> tokenize -> parse ->
// transform -> lower -> generate) up to the stage opts.Operation selects.
// Every returned error is wrapped with a stage-tagged prefix ("tokenize:",
// "parse:", "lower:", "generate:") so callers can tell which phase failed
// without inspecting ParsedData.
func CompileWithOptions(source string, opts CompileOptions) (*ParsedData, error) {
	if opts.Logger == nil {
		opts.Logger = diagnostic.Noop()
	}
	data := &ParsedData{}

	pp := opts.Preprocessor
	if pp == nil {
		pp = preproc.PassthroughPreprocessor{Sources: map[string]string{opts.Filename: source}}
	}
	ppResult := pp.Fetch(opts.Filename, opts.Macros)
	data.PreprocOK = ppResult.OK
	data.PreprocErrors = ppResult.Errors
	data.PreprocessedSource = ppResult.Output
	if !ppResult.OK {
		opts.Logger.Errorf("preproc: %s", ppResult.Errors)
		return data, fmt.Errorf("preproc: %s", ppResult.Errors)
	}
	if opts.DebugPreprocEnable {
		if err := writeDebugFile(opts.DebugPreprocPath, ppResult.Output); err != nil {
			opts.Logger.Errorf("debug preproc dump: %v", err)
		}
	}
	if opts.Operation == OperationPreproc {
		return data, nil
	}

	lexer := hlslfront.NewLexer(ppResult.Output)
	tokens, err := lexer.Tokenize()
	if err != nil {
		data.TokenizeError = err.Error()
		opts.Logger.Errorf("tokenize: %v", err)
		return data, fmt.Errorf("tokenize: %w", err)
	}
	data.TokenizeOK = true
	if opts.DebugTokensEnable {
		if err := writeDebugFile(opts.DebugTokensPath, formatTokens(tokens)); err != nil {
			opts.Logger.Errorf("debug tokens dump: %v", err)
		}
	}

	parser := hlslfront.NewParser(tokens)
	ast, err := parser.Parse()
	if err != nil {
		data.ParseError = err.Error()
		opts.Logger.Errorf("parse: %v", err)
		return data, fmt.Errorf("parse: %w", err)
	}
	data.ParseOK = true
	if opts.Operation == OperationParse {
		return data, nil
	}

	if err := runTransforms(ast, opts); err != nil {
		data.ParseError = err.Error()
		opts.Logger.Errorf("transform: %v", err)
		return data, fmt.Errorf("transform: %w", err)
	}

	module, err := hlslfront.LowerEntry(ast, ppResult.Output, opts.EntryPoint, opts.Stage)
	if err != nil {
		data.GenerateError = err.Error()
		opts.Logger.Errorf("lower: %v", err)
		return data, fmt.Errorf("lower: %w", err)
	}

	generated, err := generate(module, opts)
	data.GeneratedSource = generated
	if err != nil {
		data.GenerateError = err.Error()
		opts.Logger.Errorf("generate: %v", err)
		return data, fmt.Errorf("generate: %w", err)
	}
	data.GenerateOK = true

	if opts.GeneratedWriteEnable {
		if err := writeDebugFile(opts.GeneratedWritePath, generated); err != nil {
			opts.Logger.Errorf("generated write: %v", err)
		}
	}
	return data, nil
}

// runTransforms applies the standard AST rewrite pipeline before lowering:
// reachability pruning from the single requested entry point, declaration
// sorting, resource-parameter grouping (legacy HLSL only), and dead-argument
// hiding on every surviving function.
func runTransforms(ast *hlslfront.Module, opts CompileOptions) error {
	if err := transforms.PruneTree(ast, opts.EntryPoint, ""); err != nil {
		return err
	}
	transforms.SortTree(ast)
	if opts.Language == LanguageLegacyHLSL {
		transforms.GroupParameters(ast)
	}
	for _, f := range ast.Functions {
		if !f.Hidden {
			transforms.HideUnusedArguments(f)
		}
	}
	return nil
}

func generate(module *ir.Module, opts CompileOptions) (string, error) {
	switch opts.Language {
	case LanguageHLSL, LanguageLegacyHLSL:
		hopts := hlsl.DefaultOptions()
		hopts.EntryPoint = opts.EntryPoint
		hopts.FakeMissingBindings = !opts.OverrideRequired
		applyHLSLOverrides(hopts, opts.Overrides)
		src, _, err := hlsl.Compile(module, hopts)
		return src, err
	case LanguageGLSL:
		gopts := glsl.DefaultOptions()
		gopts.EntryPoint = opts.EntryPoint
		applyGLSLShifts(&gopts, opts.Shifts)
		src, _, err := glsl.Compile(module, gopts)
		return src, err
	case LanguageMSL:
		mopts := msl.DefaultOptions()
		mopts.FakeMissingBindings = !opts.OverrideRequired
		src, _, err := msl.Compile(module, mopts)
		return src, err
	default:
		return "", fmt.Errorf("unknown target language %v", opts.Language)
	}
}

func applyHLSLOverrides(opts *hlsl.Options, overrides []Override) {
	if len(overrides) == 0 {
		return
	}
	if opts.BindingMap == nil {
		opts.BindingMap = map[hlsl.ResourceBinding]hlsl.BindTarget{}
	}
	for _, o := range overrides {
		opts.BindingMap[hlsl.ResourceBinding{Group: o.Set, Binding: o.Binding}] = hlsl.BindTarget{
			Space:    uint8(o.Set),
			Register: o.Binding,
		}
	}
}

func applyGLSLShifts(opts *glsl.Options, shifts []Shift) {
	for _, s := range shifts {
		switch s.Class {
		case 'b':
			opts.UniformBindingBase = s.Amount
		case 't':
			opts.TextureBindingBase = s.Amount
		case 's':
			opts.SamplerBindingBase = s.Amount
		case 'u':
			opts.StorageBindingBase = s.Amount
		}
	}
}

func formatTokens(tokens []hlslfront.Token) string {
	out := ""
	for _, t := range tokens {
		out += fmt.Sprintf("%d:%d %d %q\n", t.Line, t.Column, t.Kind, t.Lexeme)
	}
	return out
}

func writeDebugFile(path, contents string) error {
	if path == "" {
		return nil
	}
	return os.WriteFile(path, []byte(contents), 0o644)
}
