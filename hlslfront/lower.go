package hlslfront

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gogpu/hlslxc/ir"
)

// Lowerer walks an HLSL AST and builds the shader-agnostic IR consumed by
// the hlsl/glsl/msl backends. One Lowerer instance lowers exactly one
// translation unit for exactly one requested entry point + stage, mirroring
// the teacher's one-module-per-compilation lifecycle (spec.md §5).
type Lowerer struct {
	module *ir.Module
	source string

	typeCache map[string]ir.TypeHandle

	structDecls  map[string]*StructDecl
	structTypes  map[string]ir.TypeHandle
	typedefs     map[string]Type

	globalHandles map[string]ir.GlobalVariableHandle
	globalSpace   map[string]ir.AddressSpace
	constHandles  map[string]ir.ConstantHandle
	constInts     map[string]int64
	cbufferFields map[string]cbufferField

	functionDecls map[string]*FunctionDecl
	functionOrder []string
	functionByIdx map[string]ir.FunctionHandle

	errors SourceErrors

	// per-function state, reset by newFunctionScope.
	fn       *ir.Function
	locals   map[string]uint32
	params   map[string]uint32
	loopDepth int
}

// LowerEntry parses nothing itself; it takes an already-parsed AST and
// lowers it into an ir.Module whose single EntryPoints record corresponds
// to entryName/stage. source is kept only for error context.
func LowerEntry(ast *Module, source, entryName string, stage ir.ShaderStage) (*ir.Module, error) {
	l := &Lowerer{
		module:        &ir.Module{},
		source:        source,
		typeCache:     map[string]ir.TypeHandle{},
		structDecls:   map[string]*StructDecl{},
		structTypes:   map[string]ir.TypeHandle{},
		typedefs:      map[string]Type{},
		globalHandles: map[string]ir.GlobalVariableHandle{},
		globalSpace:   map[string]ir.AddressSpace{},
		constHandles:  map[string]ir.ConstantHandle{},
		constInts:     map[string]int64{},
		functionDecls: map[string]*FunctionDecl{},
		functionByIdx: map[string]ir.FunctionHandle{},
	}

	if err := l.run(ast, entryName, stage); err != nil {
		return nil, err
	}
	if l.errors.HasErrors() {
		return nil, l.errors
	}
	return l.module, nil
}

func (l *Lowerer) addError(message string, span Span) {
	l.errors.AddError(message, span, l.source)
}

func (l *Lowerer) run(ast *Module, entryName string, stage ir.ShaderStage) error {
	for _, td := range ast.Typedefs {
		l.typedefs[td.Name] = td.Type
	}
	for _, s := range ast.Structs {
		if s.Hidden {
			continue
		}
		l.structDecls[s.Name] = s
	}

	// Pass 1: reserve a struct type handle for every struct so member
	// types can reference structs declared later in the file.
	for _, s := range ast.Structs {
		if s.Hidden {
			continue
		}
		handle := ir.TypeHandle(len(l.module.Types))
		l.module.Types = append(l.module.Types, ir.Type{Name: s.Name, Inner: ir.StructType{}})
		l.structTypes[s.Name] = handle
	}
	for _, s := range ast.Structs {
		if s.Hidden {
			continue
		}
		if err := l.lowerStructBody(s); err != nil {
			return err
		}
	}

	for _, c := range ast.Constants {
		if err := l.lowerGlobalConst(c); err != nil {
			return err
		}
	}

	for _, v := range ast.GlobalVars {
		if v.Hidden {
			continue
		}
		if err := l.lowerGlobalVar(v); err != nil {
			return err
		}
	}

	for _, cb := range ast.CBuffers {
		if cb.Hidden {
			continue
		}
		if err := l.lowerCBuffer(cb); err != nil {
			return err
		}
	}

	// Pass 1: reserve a function handle and lower its signature (arguments
	// and result type) for every function, so a call to a function declared
	// later in the file can resolve the call's result type immediately.
	for _, f := range ast.Functions {
		if f.Hidden {
			continue
		}
		l.functionDecls[f.Name] = f
		l.functionOrder = append(l.functionOrder, f.Name)
		handle := ir.FunctionHandle(len(l.module.Functions))
		sig, err := l.lowerFunctionSignature(f)
		if err != nil {
			return err
		}
		l.module.Functions = append(l.module.Functions, *sig)
		l.functionByIdx[f.Name] = handle
	}

	// Pass 2: lower bodies now that every signature is resolvable.
	for _, name := range l.functionOrder {
		idx := l.functionByIdx[name]
		body, err := l.lowerFunctionBody(l.functionDecls[name])
		if err != nil {
			return err
		}
		fn := l.module.Functions[idx]
		fn.Body = body.Body
		fn.Expressions = body.Expressions
		fn.ExpressionTypes = body.ExpressionTypes
		fn.LocalVars = body.LocalVars
		l.module.Functions[idx] = fn
	}

	entryDecl, ok := l.functionDecls[entryName]
	if !ok {
		return fmt.Errorf("hlslfront: entry point %q not found", entryName)
	}
	entryHandle := l.functionByIdx[entryName]

	ep := ir.EntryPoint{
		Name:     entryName,
		Stage:    stage,
		Function: entryHandle,
	}
	ep.Attributes = l.buildEntryAttributes(entryDecl, stage, &ep.Workgroup)
	l.module.EntryPoints = append(l.module.EntryPoints, ep)

	return nil
}

// ---------------------------------------------------------------------------
// Entry-point attributes
// ---------------------------------------------------------------------------

func (l *Lowerer) buildEntryAttributes(f *FunctionDecl, stage ir.ShaderStage, workgroup *[3]uint32) *ir.EntryPointAttributes {
	if len(f.Attributes) == 0 {
		return nil
	}
	attrs := &ir.EntryPointAttributes{}
	has := false
	for _, a := range f.Attributes {
		switch strings.ToLower(a.Name) {
		case "numthreads":
			has = true
			for i := 0; i < 3 && i < len(a.Args); i++ {
				if v, ok := l.evalConstInt(a.Args[i]); ok {
					workgroup[i] = uint32(v)
					attrs.NumThreads[i] = uint32(v)
				}
			}
		case "domain":
			has = true
			attrs.Domain = attrStringArg(a)
		case "partitioning":
			has = true
			switch attrStringArg(a) {
			case "fractional_even":
				attrs.Partitioning = ir.PartitioningFractionalEven
			case "fractional_odd":
				attrs.Partitioning = ir.PartitioningFractionalOdd
			case "pow2":
				attrs.Partitioning = ir.PartitioningPow2
			default:
				attrs.Partitioning = ir.PartitioningInteger
			}
		case "outputtopology":
			has = true
			switch attrStringArg(a) {
			case "point":
				attrs.OutputTopology = ir.OutputTopologyPoint
			case "line":
				attrs.OutputTopology = ir.OutputTopologyLine
			case "triangle_cw":
				attrs.OutputTopology = ir.OutputTopologyTriangleCW
			case "triangle_ccw":
				attrs.OutputTopology = ir.OutputTopologyTriangleCCW
			}
		case "outputcontrolpoints":
			has = true
			if len(a.Args) > 0 {
				if v, ok := l.evalConstInt(a.Args[0]); ok {
					attrs.OutputControlPoints = uint32(v)
				}
			}
		case "patchconstantfunc":
			has = true
			attrs.PatchConstantFunc = attrStringArg(a)
		case "maxtessfactor":
			has = true
			if len(a.Args) > 0 {
				if lit, ok := a.Args[0].(*Literal); ok {
					if v, err := strconv.ParseFloat(lit.Value, 32); err == nil {
						attrs.MaxTessFactor = float32(v)
					}
				}
			}
		case "maxvertexcount":
			has = true
			if len(a.Args) > 0 {
				if v, ok := l.evalConstInt(a.Args[0]); ok {
					attrs.MaxVertexCount = uint32(v)
				}
			}
		case "earlydepthstencil":
			has = true
			attrs.EarlyDepthStencil = true
		}
	}
	if stage == ir.StageGeometry {
		for _, p := range f.Params {
			switch {
			case hasQualifier(p.Qualifiers, "point"):
				attrs.InputPrimitive = ir.GeometryInputPoint
			case hasQualifier(p.Qualifiers, "line"):
				attrs.InputPrimitive = ir.GeometryInputLine
			case hasQualifier(p.Qualifiers, "triangle"):
				attrs.InputPrimitive = ir.GeometryInputTriangle
			case hasQualifier(p.Qualifiers, "lineadj"):
				attrs.InputPrimitive = ir.GeometryInputLineAdj
			case hasQualifier(p.Qualifiers, "triangleadj"):
				attrs.InputPrimitive = ir.GeometryInputTriangleAdj
			}
		}
	}
	if !has {
		return nil
	}
	return attrs
}

func hasQualifier(quals []string, name string) bool {
	for _, q := range quals {
		if q == name {
			return true
		}
	}
	return false
}

func attrStringArg(a Attribute) string {
	if len(a.Args) == 0 {
		return ""
	}
	if lit, ok := a.Args[0].(*Literal); ok {
		return strings.Trim(lit.Value, `"`)
	}
	return ""
}

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// numericScalarPrefixes mirrors the parser's table (parser.go) so the
// lowerer recognises exactly the same spellings it accepted.
var numericScalarPrefixes = []struct {
	prefix string
	kind   ir.ScalarKind
	width  uint8
}{
	{"min16float", ir.ScalarFloat, 2},
	{"min10float", ir.ScalarFloat, 2},
	{"min16int", ir.ScalarSint, 2},
	{"min12int", ir.ScalarSint, 2},
	{"min16uint", ir.ScalarUint, 2},
	{"float", ir.ScalarFloat, 4},
	{"double", ir.ScalarFloat, 8},
	{"half", ir.ScalarFloat, 2},
	{"int", ir.ScalarSint, 4},
	{"uint", ir.ScalarUint, 4},
	{"dword", ir.ScalarUint, 4},
	{"bool", ir.ScalarBool, 4},
}

// parseNumericType decomposes a spelling like "float3x4" into its scalar
// kind/width and optional vector/matrix shape.
func parseNumericType(name string) (kind ir.ScalarKind, width uint8, cols, rows int, ok bool) {
	for _, p := range numericScalarPrefixes {
		if !strings.HasPrefix(name, p.prefix) {
			continue
		}
		rest := name[len(p.prefix):]
		switch {
		case rest == "":
			return p.kind, p.width, 1, 1, true
		case len(rest) == 1 && rest[0] >= '1' && rest[0] <= '4':
			return p.kind, p.width, 1, int(rest[0] - '0'), true
		case len(rest) == 3 && rest[0] >= '1' && rest[0] <= '4' && rest[1] == 'x' && rest[2] >= '1' && rest[2] <= '4':
			// HLSL "floatRxC" has R rows, C columns.
			return p.kind, p.width, int(rest[2] - '0'), int(rest[0] - '0'), true
		}
	}
	return 0, 0, 0, 0, false
}

// internType returns a deduplicated handle for a non-struct type, appending
// it to module.Types the first time key is seen. Structs are never
// deduplicated through this path; they are appended eagerly in run() so
// forward references within the same translation unit resolve.
func (l *Lowerer) internType(key, name string, inner ir.TypeInner) ir.TypeHandle {
	if h, ok := l.typeCache[key]; ok {
		return h
	}
	h := l.appendType(name, inner)
	l.typeCache[key] = h
	return h
}

func (l *Lowerer) scalarType(kind ir.ScalarKind, width uint8) ir.TypeHandle {
	key := fmt.Sprintf("scalar:%d:%d", kind, width)
	return l.internType(key, scalarName(kind, width), ir.ScalarType{Kind: kind, Width: width})
}

func scalarName(kind ir.ScalarKind, width uint8) string {
	switch kind {
	case ir.ScalarFloat:
		if width == 2 {
			return "half"
		}
		if width == 8 {
			return "double"
		}
		return "float"
	case ir.ScalarSint:
		return "int"
	case ir.ScalarUint:
		return "uint"
	case ir.ScalarBool:
		return "bool"
	}
	return "float"
}

// appendType appends a new type unconditionally.
func (l *Lowerer) appendType(name string, inner ir.TypeInner) ir.TypeHandle {
	h := ir.TypeHandle(len(l.module.Types))
	l.module.Types = append(l.module.Types, ir.Type{Name: name, Inner: inner})
	return h
}

func (l *Lowerer) lowerStructBody(s *StructDecl) error {
	handle := l.structTypes[s.Name]
	var members []ir.StructMember
	var offset uint32
	var maxAlign uint32 = 1
	for _, m := range s.Members {
		th, err := l.lowerType(m.Type, m.Span)
		if err != nil {
			return err
		}
		align, size := l.typeAlignAndSize(th)
		if align > maxAlign {
			maxAlign = align
		}
		offset = alignUp(offset, align)
		members = append(members, ir.StructMember{
			Name:    m.Name,
			Type:    th,
			Binding: l.semanticBinding(m.Semantic, m.Interpolation),
			Offset:  offset,
		})
		offset += size
	}
	span := alignUp(offset, maxAlign)
	l.module.Types[handle].Inner = ir.StructType{Members: members, Span: span}
	return nil
}

func alignUp(v, align uint32) uint32 {
	if align == 0 {
		return v
	}
	if rem := v % align; rem != 0 {
		v += align - rem
	}
	return v
}

// typeAlignAndSize returns HLSL constant-buffer packing alignment/size
// (16-byte vector registers; every vector/matrix row rounds up to 16 bytes).
func (l *Lowerer) typeAlignAndSize(h ir.TypeHandle) (align, size uint32) {
	if int(h) >= len(l.module.Types) {
		return 4, 4
	}
	switch t := l.module.Types[h].Inner.(type) {
	case ir.ScalarType:
		return uint32(t.Width), uint32(t.Width)
	case ir.VectorType:
		w := uint32(t.Scalar.Width)
		switch t.Size {
		case ir.Vec2:
			return 2 * w, 2 * w
		default:
			return 4 * w, uint32(t.Size) * w
		}
	case ir.MatrixType:
		// Row-major default packing: each row occupies one 16-byte register.
		return 16, 16 * uint32(t.Rows)
	case ir.ArrayType:
		elemAlign, elemSize := l.typeAlignAndSize(t.Base)
		stride := alignUp(elemSize, 16)
		if elemAlign > stride {
			stride = elemAlign
		}
		if t.Size.Constant != nil {
			return 16, stride * *t.Size.Constant
		}
		return 16, 0
	case ir.StructType:
		return 16, alignUp(t.Span, 16)
	default:
		return 4, 4
	}
}

// lowerType resolves an AST Type node to an IR type handle.
func (l *Lowerer) lowerType(t Type, span Span) (ir.TypeHandle, error) {
	switch n := t.(type) {
	case *ArrayType:
		return l.lowerArrayType(n, span)
	case *NamedType:
		return l.lowerNamedType(n, span)
	default:
		return 0, fmt.Errorf("hlslfront: unsupported type node %T", t)
	}
}

func (l *Lowerer) lowerArrayType(n *ArrayType, span Span) (ir.TypeHandle, error) {
	elem, err := l.lowerType(n.Element, span)
	if err != nil {
		return 0, err
	}
	_, elemSize := l.typeAlignAndSize(elem)
	stride := alignUp(elemSize, 16)
	var arrSize ir.ArraySize
	if n.Size != nil {
		if v, ok := l.evalConstInt(n.Size); ok && v >= 0 {
			u := uint32(v)
			arrSize.Constant = &u
		}
	}
	return l.appendType("", ir.ArrayType{Base: elem, Size: arrSize, Stride: stride}), nil
}

func (l *Lowerer) lowerNamedType(n *NamedType, span Span) (ir.TypeHandle, error) {
	name := n.Name

	if kind, width, cols, rows, ok := parseNumericType(name); ok {
		switch {
		case cols == 1 && rows == 1:
			return l.scalarType(kind, width), nil
		case cols == 1:
			return l.vectorType(ir.VectorSize(rows), kind, width), nil
		default:
			return l.matrixType(ir.VectorSize(cols), ir.VectorSize(rows), kind, width), nil
		}
	}

	if h, ok := l.structTypes[name]; ok {
		return h, nil
	}

	if td, ok := l.typedefs[name]; ok {
		return l.lowerType(td, span)
	}

	if isTextureTypeName(name) {
		return l.lowerTextureType(n, span)
	}

	if isLegacySamplerTypeName(name) {
		return l.lowerLegacySamplerType(name), nil
	}

	switch name {
	case "sampler", "SamplerState":
		return l.internType("sampler:false", name, ir.SamplerType{Comparison: false}), nil
	case "SamplerComparisonState":
		return l.internType("sampler:true", name, ir.SamplerType{Comparison: true}), nil
	case "StructuredBuffer", "RWStructuredBuffer", "RasterizerOrderedStructuredBuffer",
		"AppendStructuredBuffer", "ConsumeStructuredBuffer",
		"Buffer", "RWBuffer", "RasterizerOrderedBuffer":
		if len(n.TypeParams) == 0 {
			return 0, fmt.Errorf("hlslfront: %s requires a type argument", name)
		}
		return l.lowerType(n.TypeParams[0], span)
	case "ByteAddressBuffer", "RWByteAddressBuffer", "RasterizerOrderedByteAddressBuffer":
		return l.scalarType(ir.ScalarUint, 4), nil
	case "ConstantBuffer":
		if len(n.TypeParams) == 0 {
			return 0, fmt.Errorf("hlslfront: ConstantBuffer requires a type argument")
		}
		return l.lowerType(n.TypeParams[0], span)
	case "InputPatch", "OutputPatch":
		if len(n.TypeParams) == 0 {
			return 0, fmt.Errorf("hlslfront: %s requires a type argument", name)
		}
		elem, err := l.lowerType(n.TypeParams[0], span)
		if err != nil {
			return 0, err
		}
		return l.appendType(name, ir.ArrayType{Base: elem, Size: ir.ArraySize{}, Stride: 0}), nil
	case "PointStream", "LineStream", "TriangleStream":
		if len(n.TypeParams) == 0 {
			return 0, fmt.Errorf("hlslfront: %s requires a type argument", name)
		}
		return l.lowerType(n.TypeParams[0], span)
	}

	l.addError(fmt.Sprintf("unknown type %q", name), span)
	return 0, fmt.Errorf("hlslfront: unknown type %q at %s", name, span.Start)
}

func isTextureTypeName(name string) bool {
	return strings.HasPrefix(name, "Texture") ||
		strings.HasPrefix(name, "RWTexture") ||
		strings.HasPrefix(name, "RasterizerOrderedTexture")
}

// isLegacySamplerTypeName reports whether name is one of shader model 2/3's
// combined texture+sampler object types (sampler2D and friends), kept around
// for porting fixed-function-era and shader-model-3 HLSL that predates the
// Texture<T>/SamplerState split.
func isLegacySamplerTypeName(name string) bool {
	switch name {
	case "sampler2D", "Sampler2D", "sampler3D", "Sampler3D", "samplerCUBE", "SamplerCube",
		"Sampler2DShadow", "Sampler2DMS", "Sampler2DArray":
		return true
	default:
		return false
	}
}

// lowerLegacySamplerType maps a combined sampler object to the ImageType its
// bound texture would have under the modern Texture<T>/SamplerState split.
// The implicit sampler half of the combined object is not modeled as a
// separate IR value; callers resolve it at the call site (tex2D and
// friends), matching how these legacy intrinsics take the combined object
// directly rather than a (texture, sampler) pair.
func (l *Lowerer) lowerLegacySamplerType(name string) ir.TypeHandle {
	dim := ir.Dim2D
	arrayed := false
	class := ir.ImageClassSampled
	switch name {
	case "sampler3D", "Sampler3D":
		dim = ir.Dim3D
	case "samplerCUBE", "SamplerCube":
		dim = ir.DimCube
	case "Sampler2DShadow":
		class = ir.ImageClassDepth
	case "Sampler2DArray":
		arrayed = true
	}
	key := fmt.Sprintf("image:%v:%v:%v:%v", dim, arrayed, class, false)
	return l.internType(key, name, ir.ImageType{Dim: dim, Arrayed: arrayed, Class: class})
}

func (l *Lowerer) lowerTextureType(n *NamedType, span Span) (ir.TypeHandle, error) {
	name := n.Name
	storage := strings.HasPrefix(name, "RW") || strings.HasPrefix(name, "RasterizerOrdered")
	base := strings.TrimPrefix(strings.TrimPrefix(name, "RW"), "RasterizerOrdered")

	var dim ir.ImageDimension
	arrayed := strings.HasSuffix(base, "Array")
	trimmed := strings.TrimSuffix(base, "Array")
	multisampled := strings.Contains(trimmed, "MS")
	trimmed = strings.TrimSuffix(trimmed, "MS")

	switch trimmed {
	case "Texture1D":
		dim = ir.Dim1D
	case "Texture2D":
		dim = ir.Dim2D
	case "Texture3D":
		dim = ir.Dim3D
	case "TextureCube":
		dim = ir.DimCube
	default:
		dim = ir.Dim2D
	}

	class := ir.ImageClassSampled
	if storage {
		class = ir.ImageClassStorage
	}

	key := fmt.Sprintf("image:%v:%v:%v:%v", dim, arrayed, class, multisampled)
	return l.internType(key, name, ir.ImageType{Dim: dim, Arrayed: arrayed, Class: class, Multisampled: multisampled}), nil
}

func (l *Lowerer) vectorType(size ir.VectorSize, kind ir.ScalarKind, width uint8) ir.TypeHandle {
	key := fmt.Sprintf("vec:%d:%d:%d", size, kind, width)
	return l.internType(key, scalarName(kind, width)+strconv.Itoa(int(size)), ir.VectorType{
		Size:   size,
		Scalar: ir.ScalarType{Kind: kind, Width: width},
	})
}

func (l *Lowerer) matrixType(cols, rows ir.VectorSize, kind ir.ScalarKind, width uint8) ir.TypeHandle {
	key := fmt.Sprintf("mat:%d:%d:%d:%d", cols, rows, kind, width)
	return l.internType(key, fmt.Sprintf("%s%dx%d", scalarName(kind, width), rows, cols),
		ir.MatrixType{Columns: cols, Rows: rows, Scalar: ir.ScalarType{Kind: kind, Width: width}})
}

// ---------------------------------------------------------------------------
// Bindings
// ---------------------------------------------------------------------------

// semanticBinding maps an HLSL semantic string to an IR binding.
func (l *Lowerer) semanticBinding(semantic, interpolation string) ir.Binding {
	if semantic == "" {
		return nil
	}
	if b, ok := systemValueBinding(semantic); ok {
		return b
	}
	loc := uint32(0)
	if idx := trailingDigits(semantic); idx >= 0 {
		loc = uint32(idx)
	}
	var interp *ir.Interpolation
	if interpolation != "" {
		interp = &ir.Interpolation{Kind: interpolationKind(interpolation)}
	}
	return ir.LocationBinding{Location: loc, Interpolation: interp}
}

func interpolationKind(mode string) ir.InterpolationKind {
	switch mode {
	case "nointerpolation":
		return ir.InterpolationFlat
	case "noperspective":
		return ir.InterpolationLinear
	default:
		return ir.InterpolationPerspective
	}
}

func systemValueBinding(semantic string) (ir.Binding, bool) {
	switch strings.ToUpper(semantic) {
	case "SV_POSITION":
		return ir.BuiltinBinding{Builtin: ir.BuiltinPosition}, true
	case "SV_VERTEXID":
		return ir.BuiltinBinding{Builtin: ir.BuiltinVertexIndex}, true
	case "SV_INSTANCEID":
		return ir.BuiltinBinding{Builtin: ir.BuiltinInstanceIndex}, true
	case "SV_ISFRONTFACE":
		return ir.BuiltinBinding{Builtin: ir.BuiltinFrontFacing}, true
	case "SV_DEPTH":
		return ir.BuiltinBinding{Builtin: ir.BuiltinFragDepth}, true
	case "SV_SAMPLEINDEX":
		return ir.BuiltinBinding{Builtin: ir.BuiltinSampleIndex}, true
	case "SV_COVERAGE":
		return ir.BuiltinBinding{Builtin: ir.BuiltinSampleMask}, true
	case "SV_DISPATCHTHREADID":
		return ir.BuiltinBinding{Builtin: ir.BuiltinGlobalInvocationID}, true
	case "SV_GROUPTHREADID":
		return ir.BuiltinBinding{Builtin: ir.BuiltinLocalInvocationID}, true
	case "SV_GROUPINDEX":
		return ir.BuiltinBinding{Builtin: ir.BuiltinLocalInvocationIndex}, true
	case "SV_GROUPID":
		return ir.BuiltinBinding{Builtin: ir.BuiltinWorkGroupID}, true
	default:
		return nil, false
	}
}

func trailingDigits(s string) int {
	i := len(s)
	for i > 0 && s[i-1] >= '0' && s[i-1] <= '9' {
		i--
	}
	if i == len(s) {
		return -1
	}
	v, _ := strconv.Atoi(s[i:])
	return v
}

// ---------------------------------------------------------------------------
// Globals
// ---------------------------------------------------------------------------

func (l *Lowerer) lowerGlobalConst(c *ConstDecl) error {
	th, err := l.lowerType(c.Type, c.Span)
	if err != nil {
		return err
	}
	var value ir.ConstantValue
	if v, ok := l.evalConstInt(c.Init); ok {
		l.constInts[c.Name] = v
		if scalar, ok := l.module.Types[th].Inner.(ir.ScalarType); ok && scalar.Kind == ir.ScalarUint {
			value = ir.ScalarValue{Bits: uint64(uint32(v)), Kind: ir.ScalarUint}
		} else {
			value = ir.ScalarValue{Bits: uint64(uint32(int32(v))), Kind: ir.ScalarSint}
		}
	} else if lit, ok := c.Init.(*Literal); ok && lit.Kind == TokenFloatLiteral {
		fv, _ := strconv.ParseFloat(strings.TrimRight(lit.Value, "fFhH"), 32)
		value = ir.ScalarValue{Bits: uint64(math.Float32bits(float32(fv))), Kind: ir.ScalarFloat}
	} else {
		value = ir.ScalarValue{Kind: ir.ScalarSint}
	}
	handle := ir.ConstantHandle(len(l.module.Constants))
	l.module.Constants = append(l.module.Constants, ir.Constant{Name: c.Name, Type: th, Value: value})
	l.constHandles[c.Name] = handle
	return nil
}

func (l *Lowerer) lowerGlobalVar(v *VarDecl) error {
	th, err := l.lowerType(v.Type, v.Span)
	if err != nil {
		return err
	}

	space := ir.SpacePrivate
	switch {
	case isTextureTypeName(typeName(v.Type)) || isLegacySamplerTypeName(typeName(v.Type)) ||
		strings.Contains(typeName(v.Type), "Sampler") || typeName(v.Type) == "sampler":
		space = ir.SpaceHandle
	case hasQualifier(v.Qualifiers, "groupshared"):
		space = ir.SpaceWorkGroup
	case namedTypeIs(v.Type, "StructuredBuffer", "RWStructuredBuffer", "RasterizerOrderedStructuredBuffer",
		"AppendStructuredBuffer", "ConsumeStructuredBuffer", "ByteAddressBuffer", "RWByteAddressBuffer",
		"RasterizerOrderedByteAddressBuffer", "Buffer", "RWBuffer", "RasterizerOrderedBuffer"):
		space = ir.SpaceStorage
	case namedTypeIs(v.Type, "ConstantBuffer"):
		space = ir.SpaceUniform
	}

	gv := ir.GlobalVariable{Name: v.Name, Space: space, Type: th}
	if v.Register != nil {
		gv.Binding = &ir.ResourceBinding{Group: v.Register.Space, Binding: v.Register.Slot}
	}
	if space == ir.SpacePrivate && v.Init != nil {
		if cv, ok := l.constantExprValue(v.Init, th); ok {
			ch := ir.ConstantHandle(len(l.module.Constants))
			l.module.Constants = append(l.module.Constants, ir.Constant{Name: v.Name + ".init", Type: th, Value: cv})
			gv.Init = &ch
		}
	}

	handle := ir.GlobalVariableHandle(len(l.module.GlobalVariables))
	l.module.GlobalVariables = append(l.module.GlobalVariables, gv)
	l.globalHandles[v.Name] = handle
	l.globalSpace[v.Name] = space
	return nil
}

func (l *Lowerer) lowerCBuffer(cb *CBufferDecl) error {
	var members []ir.StructMember
	var offset uint32
	for _, m := range cb.Members {
		th, err := l.lowerType(m.Type, m.Span)
		if err != nil {
			return err
		}
		align, size := l.typeAlignAndSize(th)
		offset = alignUp(offset, align)
		members = append(members, ir.StructMember{Name: m.Name, Type: th, Offset: offset})
		offset += size
	}
	structHandle := l.appendType(cb.Name, ir.StructType{Members: members, Span: alignUp(offset, 16)})

	gv := ir.GlobalVariable{Name: cb.Name, Space: ir.SpaceUniform, Type: structHandle}
	if cb.Register != nil {
		gv.Binding = &ir.ResourceBinding{Group: cb.Register.Space, Binding: cb.Register.Slot}
	}
	handle := ir.GlobalVariableHandle(len(l.module.GlobalVariables))
	l.module.GlobalVariables = append(l.module.GlobalVariables, gv)
	l.globalHandles[cb.Name] = handle
	l.globalSpace[cb.Name] = ir.SpaceUniform

	// Individual cbuffer fields are also addressable by their bare name,
	// matching HLSL's implicit global scope for cbuffer members.
	for i, m := range cb.Members {
		l.globalHandles[m.Name] = handle
		l.globalSpace[m.Name] = ir.SpaceUniform
		l.cbufferFieldIndex(cb.Name, m.Name, uint32(i))
	}
	return nil
}

// cbufferFieldIndex records that referencing m.Name by itself should expand
// to an AccessIndex into the owning cbuffer struct at field i.
func (l *Lowerer) cbufferFieldIndex(cbufferName, fieldName string, index uint32) {
	if l.cbufferFields == nil {
		l.cbufferFields = map[string]cbufferField{}
	}
	l.cbufferFields[fieldName] = cbufferField{owner: cbufferName, index: index}
}

type cbufferField struct {
	owner string
	index uint32
}

func typeName(t Type) string {
	if n, ok := t.(*NamedType); ok {
		return n.Name
	}
	return ""
}

func namedTypeIs(t Type, names ...string) bool {
	n := typeName(t)
	for _, name := range names {
		if n == name {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Constant evaluation (spec.md §4.3 get_expression_value)
// ---------------------------------------------------------------------------

func (l *Lowerer) evalConstInt(e Expr) (int64, bool) {
	switch n := e.(type) {
	case *Literal:
		if n.Kind == TokenIntLiteral {
			v, err := strconv.ParseInt(strings.TrimRight(n.Value, "uUlL"), 0, 64)
			if err != nil {
				return 0, false
			}
			return v, true
		}
		if n.Kind == TokenBoolLiteral {
			if n.Value == "true" {
				return 1, true
			}
			return 0, true
		}
		return 0, false
	case *Ident:
		if v, ok := l.constInts[n.Name]; ok {
			return v, true
		}
		return 0, false
	case *UnaryExpr:
		v, ok := l.evalConstInt(n.Operand)
		if !ok {
			return 0, false
		}
		switch n.Op {
		case TokenMinus:
			return -v, true
		case TokenPlus:
			return v, true
		case TokenTilde:
			return ^v, true
		}
		return 0, false
	case *BinaryExpr:
		lv, ok := l.evalConstInt(n.Left)
		if !ok {
			return 0, false
		}
		rv, ok := l.evalConstInt(n.Right)
		if !ok {
			return 0, false
		}
		switch n.Op {
		case TokenPlus:
			return lv + rv, true
		case TokenMinus:
			return lv - rv, true
		case TokenStar:
			return lv * rv, true
		case TokenSlash:
			if rv == 0 {
				return 0, false
			}
			return lv / rv, true
		case TokenPercent:
			if rv == 0 {
				return 0, false
			}
			return lv % rv, true
		case TokenAmpersand:
			return lv & rv, true
		case TokenPipe:
			return lv | rv, true
		case TokenCaret:
			return lv ^ rv, true
		case TokenLessLess:
			return lv << uint(rv), true
		case TokenGreaterGreater:
			return lv >> uint(rv), true
		}
		return 0, false
	case *ConstructExpr:
		if len(n.Args) == 1 {
			return l.evalConstInt(n.Args[0])
		}
		return 0, false
	case *CastExpr:
		return l.evalConstInt(n.Expr)
	default:
		return 0, false
	}
}

// constantExprValue evaluates a global-scope initializer as best it can for
// scalar "static const" globals. Non-constant initializers are left unset;
// the backend emits them as runtime assignments instead where relevant.
func (l *Lowerer) constantExprValue(e Expr, th ir.TypeHandle) (ir.ConstantValue, bool) {
	inner, ok := l.typeInner(th)
	if !ok {
		return nil, false
	}
	scalar, ok := inner.(ir.ScalarType)
	if !ok {
		return nil, false
	}
	switch scalar.Kind {
	case ir.ScalarSint, ir.ScalarUint, ir.ScalarBool:
		if v, ok := l.evalConstInt(e); ok {
			return ir.ScalarValue{Bits: uint64(uint32(v)), Kind: scalar.Kind}, true
		}
	case ir.ScalarFloat:
		if lit, ok := e.(*Literal); ok && lit.Kind == TokenFloatLiteral {
			fv, err := strconv.ParseFloat(strings.TrimRight(lit.Value, "fFhH"), 32)
			if err == nil {
				return ir.ScalarValue{Bits: uint64(math.Float32bits(float32(fv))), Kind: ir.ScalarFloat}, true
			}
		}
	}
	return nil, false
}

func (l *Lowerer) typeInner(h ir.TypeHandle) (ir.TypeInner, bool) {
	if int(h) >= len(l.module.Types) {
		return nil, false
	}
	return l.module.Types[h].Inner, true
}
