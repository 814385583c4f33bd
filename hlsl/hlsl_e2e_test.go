// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl_test

import (
	"strings"
	"testing"

	"github.com/gogpu/hlslxc/hlsl"
	"github.com/gogpu/hlslxc/hlslfront"
	"github.com/gogpu/hlslxc/ir"
)

// compileHLSL is a test helper that lowers HLSL source for the given entry
// point and stage, then compiles the resulting module back out to HLSL.
func compileHLSL(t *testing.T, source, entry string, stage ir.ShaderStage) string {
	t.Helper()

	tokens, err := hlslfront.NewLexer(source).Tokenize()
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}

	ast, err := hlslfront.NewParser(tokens).Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	module, err := hlslfront.LowerEntry(ast, source, entry, stage)
	if err != nil {
		t.Fatalf("Lower failed: %v", err)
	}

	opts := hlsl.DefaultOptions()
	code, _, err := hlsl.Compile(module, opts)
	if err != nil {
		t.Fatalf("HLSL Compile failed: %v", err)
	}

	return code
}

// assertContains checks that the HLSL output contains the expected substring.
func assertContains(t *testing.T, code, expected string) {
	t.Helper()
	if !strings.Contains(code, expected) {
		t.Errorf("expected HLSL output to contain %q\n\nGot:\n%s", expected, code)
	}
}

// assertNotContains checks that the HLSL output does NOT contain the given substring.
func assertNotContains(t *testing.T, code, unexpected string) {
	t.Helper()
	if strings.Contains(code, unexpected) {
		t.Errorf("expected HLSL output NOT to contain %q\n\nGot:\n%s", unexpected, code)
	}
}

// =============================================================================
// Triangle shader (vertex + fragment, selecting a position by vertex index)
// =============================================================================

func TestE2E_TriangleShader(t *testing.T) {
	source := `
float4 vs_main(uint idx : SV_VertexID) : SV_Position {
    float2 pos = idx == 0u ? float2(0.0, 0.5) : (idx == 1u ? float2(-0.5, -0.5) : float2(0.5, -0.5));
    return float4(pos, 0.0, 1.0);
}

float4 ps_main() : SV_Target0 {
    return float4(1.0, 0.0, 0.0, 1.0);
}`

	code := compileHLSL(t, source, "vs_main", ir.StageVertex)

	assertContains(t, code, "struct vs_main_Input")
	assertContains(t, code, "SV_VertexID")
	assertContains(t, code, ": SV_Position")
	assertContains(t, code, "return float4(")

	fragCode := compileHLSL(t, source, "ps_main", ir.StageFragment)
	assertContains(t, fragCode, ": SV_Target0")

	t.Logf("HLSL output:\n%s", code)
}

// =============================================================================
// Simple vertex shader
// =============================================================================

func TestE2E_SimpleVertexShader(t *testing.T) {
	source := `
float4 main(uint idx : SV_VertexID) : SV_Position {
    return float4(0.0, 0.0, 0.0, 1.0);
}`
	code := compileHLSL(t, source, "main", ir.StageVertex)

	assertContains(t, code, ": SV_Position")
	assertContains(t, code, "SV_VertexID")
	assertContains(t, code, "return float4(")

	t.Logf("HLSL output:\n%s", code)
}

// =============================================================================
// Simple fragment shader
// =============================================================================

func TestE2E_SimpleFragmentShader(t *testing.T) {
	source := `
float4 main() : SV_Target0 {
    return float4(1.0, 0.0, 0.0, 1.0);
}`
	code := compileHLSL(t, source, "main", ir.StageFragment)

	assertContains(t, code, ": SV_Target0")
	assertContains(t, code, "return float4(")

	t.Logf("HLSL output:\n%s", code)
}

// =============================================================================
// Compute shader
// =============================================================================

func TestE2E_ComputeShader(t *testing.T) {
	source := `
[numthreads(64, 1, 1)]
void main(uint3 id : SV_DispatchThreadID) {
    uint x = id.x * 2u;
}`
	code := compileHLSL(t, source, "main", ir.StageCompute)

	assertContains(t, code, "[numthreads(64, 1, 1)]")
	assertContains(t, code, "SV_DispatchThreadID")

	t.Logf("HLSL output:\n%s", code)
}

// =============================================================================
// Vertex + fragment with struct output
// =============================================================================

func TestE2E_VertexFragmentWithStruct(t *testing.T) {
	source := `
struct VertexOutput {
    float4 position : SV_Position;
    float4 color : COLOR0;
};

VertexOutput vs_main(uint idx : SV_VertexID) {
    VertexOutput result;
    result.position = float4(0.0, 0.0, 0.0, 1.0);
    result.color = float4(1.0, 0.0, 0.0, 1.0);
    return result;
}

float4 fs_main(float4 color : COLOR0) : SV_Target0 {
    return color;
}`
	code := compileHLSL(t, source, "vs_main", ir.StageVertex)
	assertContains(t, code, "SV_Position")

	fragCode := compileHLSL(t, source, "fs_main", ir.StageFragment)
	assertContains(t, fragCode, "SV_Target0")

	t.Logf("HLSL output:\n%s", code)
}

// =============================================================================
// Uniform buffer
// =============================================================================

func TestE2E_UniformBuffer(t *testing.T) {
	source := `
cbuffer Camera : register(b0) {
    float4x4 viewProj;
};

float4 main(float3 pos : POSITION) : SV_Position {
    return mul(viewProj, float4(pos, 1.0));
}`
	code := compileHLSL(t, source, "main", ir.StageVertex)

	hasCBuffer := strings.Contains(code, "cbuffer") || strings.Contains(code, "ConstantBuffer")
	if !hasCBuffer {
		t.Errorf("expected cbuffer or ConstantBuffer declaration\n\nGot:\n%s", code)
	}
	assertContains(t, code, "register(")
	assertContains(t, code, "float4x4")

	t.Logf("HLSL output:\n%s", code)
}

// =============================================================================
// Math functions
// =============================================================================

func TestE2E_MathFunctions(t *testing.T) {
	source := `
float4 main(float3 v : TEXCOORD0) : SV_Target0 {
    float3 n = normalize(v);
    float l = length(v);
    float d = dot(n, v);
    float3 c = cross(n, v);
    float s = sqrt(l);
    float a = abs(d);
    float mx = max(s, a);
    float mn = min(s, a);
    float cl = clamp(d, 0.0, 1.0);
    return float4(mx, mn, cl, c.x);
}`
	code := compileHLSL(t, source, "main", ir.StageFragment)

	assertContains(t, code, "normalize(")
	assertContains(t, code, "length(")
	assertContains(t, code, "dot(")
	assertContains(t, code, "cross(")
	assertContains(t, code, "sqrt(")
	assertContains(t, code, "abs(")
	assertContains(t, code, "max(")
	assertContains(t, code, "min(")
	assertContains(t, code, "clamp(")

	t.Logf("HLSL output:\n%s", code)
}

// =============================================================================
// If/else control flow
// =============================================================================

func TestE2E_IfElse(t *testing.T) {
	source := `
float4 main(float x : TEXCOORD0) : SV_Target0 {
    float4 color;
    if (x > 0.5) {
        color = float4(1.0, 0.0, 0.0, 1.0);
    } else {
        color = float4(0.0, 0.0, 1.0, 1.0);
    }
    return color;
}`
	code := compileHLSL(t, source, "main", ir.StageFragment)

	assertContains(t, code, "if (")
	assertContains(t, code, "} else {")

	t.Logf("HLSL output:\n%s", code)
}

// =============================================================================
// Switch statement
// =============================================================================

func TestE2E_Switch(t *testing.T) {
	source := `
float4 main(uint idx : TEXCOORD0) : SV_Target0 {
    float4 color;
    switch (idx) {
        case 0: color = float4(1.0, 0.0, 0.0, 1.0); break;
        case 1: color = float4(0.0, 1.0, 0.0, 1.0); break;
        default: color = float4(0.0, 0.0, 1.0, 1.0); break;
    }
    return color;
}`
	code := compileHLSL(t, source, "main", ir.StageFragment)

	assertContains(t, code, "switch")
	assertContains(t, code, "case ")
	assertContains(t, code, "default:")

	t.Logf("HLSL output:\n%s", code)
}

// =============================================================================
// Local const
// =============================================================================

func TestE2E_LocalConst(t *testing.T) {
	source := `
float4 main(uint idx : SV_VertexID) : SV_Position {
    const float pi = 3.14159;
    float x = pi * 2.0;
    return float4(x, 0.0, 0.0, 1.0);
}`
	code := compileHLSL(t, source, "main", ir.StageVertex)

	assertContains(t, code, ": SV_Position")

	t.Logf("HLSL output:\n%s", code)
}

// =============================================================================
// Multiple entry points (vertex + fragment in same module)
// =============================================================================

func TestE2E_NoEntryPointDuplication(t *testing.T) {
	source := `
float4 vs_main(uint idx : SV_VertexID) : SV_Position {
    return float4(0.0, 0.0, 0.0, 1.0);
}

float4 ps_main() : SV_Target0 {
    return float4(1.0, 0.0, 0.0, 1.0);
}`
	code := compileHLSL(t, source, "vs_main", ir.StageVertex)

	vsCount := strings.Count(code, "vs_main(")
	if vsCount > 2 {
		t.Errorf("vs_main appears %d times (expected at most 2), duplication detected\n\n%s", vsCount, code)
	}

	t.Logf("HLSL output:\n%s", code)
}

// =============================================================================
// Header check
// =============================================================================

func TestE2E_HeaderComment(t *testing.T) {
	source := `
float4 main() : SV_Position {
    return float4(0.0, 0.0, 0.0, 1.0);
}`
	code := compileHLSL(t, source, "main", ir.StageVertex)

	assertContains(t, code, "Generated by hlslxc")
	assertContains(t, code, "SM 5.1")

	t.Logf("HLSL output:\n%s", code)
}

// =============================================================================
// Swizzle
// =============================================================================

func TestE2E_Swizzle(t *testing.T) {
	source := `
float4 main(float4 v : TEXCOORD0) : SV_Target0 {
    float2 xy = v.xy;
    return float4(xy.x, xy.y, 0.0, 1.0);
}`
	code := compileHLSL(t, source, "main", ir.StageFragment)

	assertContains(t, code, ".xy")

	t.Logf("HLSL output:\n%s", code)
}

// =============================================================================
// Loop
// =============================================================================

func TestE2E_ForLoop(t *testing.T) {
	source := `
float4 main(float x : TEXCOORD0) : SV_Target0 {
    float sum = 0.0;
    for (uint i = 0u; i < 10u; i = i + 1u) {
        sum = sum + x;
    }
    return float4(sum, 0.0, 0.0, 1.0);
}`
	code := compileHLSL(t, source, "main", ir.StageFragment)

	hasLoop := strings.Contains(code, "for") || strings.Contains(code, "while") || strings.Contains(code, "loop")
	if !hasLoop {
		t.Errorf("expected loop construct in HLSL output\n\nGot:\n%s", code)
	}

	t.Logf("HLSL output:\n%s", code)
}

// =============================================================================
// Struct argument entry point
// =============================================================================

func TestE2E_StructArgumentEntryPoint(t *testing.T) {
	source := `
struct VertexInput {
    float2 position : TEXCOORD0;
    float4 color : TEXCOORD1;
};

struct VertexOutput {
    float4 position : SV_Position;
    float4 color : COLOR0;
};

VertexOutput vs_main(VertexInput input) {
    VertexOutput output;
    output.position = float4(input.position, 0.0, 1.0);
    output.color = input.color;
    return output;
}

float4 fs_main(VertexOutput input) : SV_Target0 {
    return input.color;
}`
	code := compileHLSL(t, source, "vs_main", ir.StageVertex)

	assertContains(t, code, "struct vs_main_Input")
	assertContains(t, code, "TEXCOORD0")
	assertContains(t, code, "TEXCOORD1")
	assertContains(t, code, "VertexInput input")
	assertContains(t, code, "input.position = _input.position")
	assertContains(t, code, "input.color = _input.color")
	assertContains(t, code, "SV_Position")

	fragCode := compileHLSL(t, source, "fs_main", ir.StageFragment)
	assertContains(t, fragCode, "SV_Target0")

	t.Logf("HLSL output:\n%s", code)
}
