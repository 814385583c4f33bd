// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/hlslxc/ir"
)

// nameKeyKind identifies the category of identifier a nameKey refers to.
type nameKeyKind uint8

const (
	nameKeyConstant nameKeyKind = iota
	nameKeyFunctionArgument
	nameKeyGlobalVariable
	nameKeyFunction
	nameKeyEntryPoint
	nameKeyStructMember
)

// nameKey identifies a name slot registered by registerNames.
// handle1/handle2 disambiguate compound keys (e.g. a struct member is
// identified by its struct's type handle plus the member index).
type nameKey struct {
	kind    nameKeyKind
	handle1 uint32
	handle2 uint32
}

// Writer accumulates HLSL source text for a single ir.Module translation.
type Writer struct {
	module  *ir.Module
	options *Options

	out    strings.Builder
	indent int

	namer *namer
	names map[nameKey]string

	// typeNames holds the chosen HLSL identifier for each struct type handle.
	// Non-struct types are named inline and never appear here.
	typeNames map[ir.TypeHandle]string

	currentFunction   *ir.Function
	currentFuncHandle ir.FunctionHandle
	localNames        map[uint32]string
	namedExpressions  map[ir.ExpressionHandle]string

	entryPointNames map[string]string

	usedFeatures        FeatureFlags
	requiredShaderModel ShaderModel
	registerBindings    map[string]string
	helperFunctions     []string

	needsModfHelper        bool
	needsFrexpHelper       bool
	needsExtractBitsHelper bool
	needsInsertBitsHelper  bool
}

// newWriter creates a Writer ready to emit the given module under options.
func newWriter(module *ir.Module, options *Options) *Writer {
	w := &Writer{
		module:              module,
		options:             options,
		namer:               newNamer(),
		names:               make(map[nameKey]string),
		typeNames:           make(map[ir.TypeHandle]string),
		entryPointNames:     make(map[string]string),
		registerBindings:    make(map[string]string),
		requiredShaderModel: options.ShaderModel,
	}
	return w
}

// String returns the accumulated HLSL source.
func (w *Writer) String() string {
	return w.out.String()
}

// writeIndent emits the current indentation (4 spaces per level).
func (w *Writer) writeIndent() {
	for i := 0; i < w.indent; i++ {
		w.out.WriteString("    ")
	}
}

// writeLine writes an indented, formatted line terminated with a newline.
func (w *Writer) writeLine(format string, args ...interface{}) {
	w.writeIndent()
	if len(args) > 0 {
		fmt.Fprintf(&w.out, format, args...)
	} else {
		w.out.WriteString(format)
	}
	w.out.WriteString("\n")
}

// pushIndent increases the indentation level.
func (w *Writer) pushIndent() {
	w.indent++
}

// popIndent decreases the indentation level, clamped at zero.
func (w *Writer) popIndent() {
	if w.indent > 0 {
		w.indent--
	}
}

// writeModule is the top-level orchestration entry point: it registers
// identifiers, scans for required features, and emits every module section
// in the order HLSL expects (types, constants, globals, helpers, functions,
// entry points).
func (w *Writer) writeModule() error {
	w.writeHeader()

	w.registerNames()
	w.scanFeatures()

	if err := w.writeTypes(); err != nil {
		return err
	}
	if err := w.writeConstants(); err != nil {
		return err
	}
	if err := w.writeGlobalVariables(); err != nil {
		return err
	}

	w.writeHelperFunctions()

	if err := w.writeFunctions(); err != nil {
		return err
	}
	if err := w.writeEntryPoints(); err != nil {
		return err
	}

	return nil
}

// writeHeader emits the leading comment block identifying the shader model
// this source was generated for.
func (w *Writer) writeHeader() {
	w.writeLine("// Generated by hlslxc (%s)", w.options.ShaderModel.String())
	w.writeLine("")
}

// registerNames assigns unique HLSL identifiers for every named IR object,
// populating w.names and w.typeNames ahead of codegen.
func (w *Writer) registerNames() {
	for handle := range w.module.Types {
		typ := &w.module.Types[handle]
		st, ok := typ.Inner.(ir.StructType)
		if !ok {
			continue
		}
		base := typ.Name
		if base == "" {
			base = fmt.Sprintf("_struct_%d", handle)
		}
		name := w.namer.call(base)
		w.typeNames[ir.TypeHandle(handle)] = name

		for memberIdx, member := range st.Members {
			memberBase := member.Name
			if memberBase == "" {
				memberBase = fmt.Sprintf("member_%d", memberIdx)
			}
			key := nameKey{kind: nameKeyStructMember, handle1: uint32(handle), handle2: uint32(memberIdx)}
			w.names[key] = Escape(memberBase)
		}
	}

	for handle := range w.module.Constants {
		c := &w.module.Constants[handle]
		base := c.Name
		if base == "" {
			base = fmt.Sprintf("const_%d", handle)
		}
		w.names[nameKey{kind: nameKeyConstant, handle1: uint32(handle)}] = w.namer.call(base)
	}

	for handle := range w.module.GlobalVariables {
		g := &w.module.GlobalVariables[handle]
		base := g.Name
		if base == "" {
			base = fmt.Sprintf("global_%d", handle)
		}
		w.names[nameKey{kind: nameKeyGlobalVariable, handle1: uint32(handle)}] = w.namer.call(base)
	}

	for handle := range w.module.Functions {
		fn := &w.module.Functions[handle]
		if w.isEntryPointFunction(ir.FunctionHandle(handle)) {
			continue
		}
		base := fn.Name
		if base == "" {
			base = fmt.Sprintf("func_%d", handle)
		}
		w.names[nameKey{kind: nameKeyFunction, handle1: uint32(handle)}] = w.namer.call(base)

		for argIdx, arg := range fn.Arguments {
			argBase := arg.Name
			if argBase == "" {
				argBase = fmt.Sprintf("arg_%d", argIdx)
			}
			key := nameKey{kind: nameKeyFunctionArgument, handle1: uint32(handle), handle2: uint32(argIdx)}
			w.names[key] = w.namer.call(argBase)
		}
	}

	// HLSL supports multiple distinctly-named entry points in a single file,
	// unlike GLSL which always targets "main".
	for epIdx, ep := range w.module.EntryPoints {
		base := ep.Name
		if base == "" {
			base = fmt.Sprintf("entry_%d", epIdx)
		}
		name := w.namer.call(base)
		w.names[nameKey{kind: nameKeyEntryPoint, handle1: uint32(epIdx)}] = name
		w.entryPointNames[ep.Name] = name

		// Entry point arguments share the FunctionArgument key space with
		// plain functions, keyed by the entry point's function handle.
		fn := &w.module.Functions[ep.Function]
		for argIdx, arg := range fn.Arguments {
			key := nameKey{kind: nameKeyFunctionArgument, handle1: uint32(ep.Function), handle2: uint32(argIdx)}
			if _, ok := w.names[key]; ok {
				continue
			}
			argBase := arg.Name
			if argBase == "" {
				argBase = fmt.Sprintf("arg_%d", argIdx)
			}
			w.names[key] = w.namer.call(argBase)
		}
	}
}

// scanFeatures walks the module looking for constructs that require a
// specific shader model or a conditionally-emitted helper function, and
// records the findings on the writer for use by writeHelperFunctions and
// the TranslationInfo returned from Compile.
func (w *Writer) scanFeatures() {
	bump := func(sm ShaderModel) {
		if sm > w.requiredShaderModel {
			w.requiredShaderModel = sm
		}
	}

	for i := range w.module.Types {
		if scalar, ok := w.module.Types[i].Inner.(ir.ScalarType); ok {
			switch {
			case scalar.Width == 8 && (scalar.Kind == ir.ScalarSint || scalar.Kind == ir.ScalarUint):
				w.usedFeatures |= Feature64BitIntegers
			case scalar.Width == 2 && scalar.Kind == ir.ScalarFloat:
				w.usedFeatures |= FeatureFloat16
				bump(ShaderModel6_2)
			}
		}
	}

	for fnIdx := range w.module.Functions {
		fn := &w.module.Functions[fnIdx]
		for exprIdx := range fn.Expressions {
			switch e := fn.Expressions[exprIdx].Kind.(type) {
			case ir.ExprSubgroupOp:
				w.usedFeatures |= FeatureWaveOps
				bump(ShaderModel6_0)
			case ir.ExprMath:
				switch e.Fun {
				case ir.MathModf:
					w.needsModfHelper = true
				case ir.MathFrexp:
					w.needsFrexpHelper = true
				case ir.MathExtractBits:
					w.needsExtractBitsHelper = true
				case ir.MathInsertBits:
					w.needsInsertBitsHelper = true
				}
			}
		}
		w.scanStatementsForFeatures(fn.Body, &bump)
	}
}

// scanStatementsForFeatures recurses into nested blocks looking for
// statement kinds that require a minimum shader model.
func (w *Writer) scanStatementsForFeatures(block ir.Block, bump *func(ShaderModel)) {
	for _, stmt := range block {
		switch s := stmt.Kind.(type) {
		case ir.StmtRayQuery:
			w.usedFeatures |= FeatureRayTracing
			(*bump)(ShaderModel6_3)
		case ir.StmtIf:
			w.scanStatementsForFeatures(s.Accept, bump)
			w.scanStatementsForFeatures(s.Reject, bump)
		case ir.StmtLoop:
			w.scanStatementsForFeatures(s.Body, bump)
			w.scanStatementsForFeatures(s.Continuing, bump)
		case ir.StmtSwitch:
			for _, c := range s.Cases {
				w.scanStatementsForFeatures(c.Body, bump)
			}
		case ir.StmtBlock:
			w.scanStatementsForFeatures(s.Block, bump)
		}
	}
}

// writeHelperFunctions conditionally emits the handful of codegen helper
// functions whose names are referenced as call targets elsewhere in the
// generated source (mathFunctionToHLSL). Helpers with no call site in the
// current module are left out entirely.
func (w *Writer) writeHelperFunctions() {
	if w.needsModfHelper {
		w.writeModfHelper()
		w.helperFunctions = append(w.helperFunctions, HLSLModfFunction)
	}
	if w.needsFrexpHelper {
		w.writeFrexpHelper()
		w.helperFunctions = append(w.helperFunctions, HLSLFrexpFunction)
	}
	if w.needsExtractBitsHelper {
		w.writeExtractBitsHelper()
		w.helperFunctions = append(w.helperFunctions, HLSLExtractBitsFunction)
	}
	if w.needsInsertBitsHelper {
		w.writeInsertBitsHelper()
		w.helperFunctions = append(w.helperFunctions, HLSLInsertBitsFunction)
	}
}

// writeFunctions writes every non-entry-point function definition.
func (w *Writer) writeFunctions() error {
	for handle := range w.module.Functions {
		fnHandle := ir.FunctionHandle(handle)
		if w.isEntryPointFunction(fnHandle) {
			continue
		}
		if err := w.writeFunction(fnHandle); err != nil {
			return err
		}
	}
	return nil
}

// writeFunction writes a single plain (non-entry-point) function definition.
func (w *Writer) writeFunction(handle ir.FunctionHandle) error {
	fn := &w.module.Functions[handle]
	w.currentFunction = fn
	w.currentFuncHandle = handle
	w.localNames = make(map[uint32]string)
	w.namedExpressions = make(map[ir.ExpressionHandle]string)
	defer func() {
		w.currentFunction = nil
		w.localNames = nil
	}()

	name := w.names[nameKey{kind: nameKeyFunction, handle1: uint32(handle)}]
	returnType := hlslVoidType
	if fn.Result != nil {
		returnType = w.getTypeName(fn.Result.Type)
	}

	args := make([]string, len(fn.Arguments))
	for argIdx, arg := range fn.Arguments {
		argName := w.names[nameKey{kind: nameKeyFunctionArgument, handle1: uint32(handle), handle2: uint32(argIdx)}]
		argType, arraySuffix := w.getTypeNameWithArraySuffix(arg.Type)
		args[argIdx] = fmt.Sprintf("%s %s%s", argType, argName, arraySuffix)
	}

	w.writeLine("%s %s(%s) {", returnType, name, strings.Join(args, ", "))
	w.pushIndent()

	if err := w.writeFunctionBody(fn); err != nil {
		w.popIndent()
		return err
	}

	w.popIndent()
	w.writeLine("}")
	w.writeLine("")
	return nil
}

// writeEntryPoints writes every entry point selected by options.EntryPoint,
// or every entry point in the module if no filter was specified.
func (w *Writer) writeEntryPoints() error {
	for epIdx := range w.module.EntryPoints {
		ep := &w.module.EntryPoints[epIdx]
		if w.options.EntryPoint != "" && ep.Name != w.options.EntryPoint {
			continue
		}
		if err := w.writeEntryPointWithIO(epIdx, ep); err != nil {
			return err
		}
	}
	return nil
}

// getBindTarget resolves a source resource binding to an HLSL register
// target, consulting options.BindingMap first and falling back to
// auto-allocation when FakeMissingBindings is enabled. A binding that can be
// resolved neither way is assigned register/space zero; the caller already
// writes a register() clause unconditionally, so there is no error return.
func (w *Writer) getBindTarget(binding *ir.ResourceBinding) BindTarget {
	if binding == nil {
		return DefaultBindTarget()
	}

	key := ResourceBinding{Group: binding.Group, Binding: binding.Binding}
	if target, ok := w.options.BindingMap[key]; ok {
		return target
	}

	if w.options.FakeMissingBindings {
		return BindTarget{Space: uint8(binding.Group), Register: binding.Binding}
	}

	return DefaultBindTarget()
}
