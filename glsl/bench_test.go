package glsl

import (
	"runtime"
	"testing"

	"github.com/gogpu/hlslxc/hlslfront"
	"github.com/gogpu/hlslxc/ir"
)

// ---------------------------------------------------------------------------
// Test shader sources for GLSL backend benchmarks
// ---------------------------------------------------------------------------

const glslBenchSmall = `
float4 vs_main(uint idx : SV_VertexID) : SV_Position {
    return float4(0.0, 0.0, 0.0, 1.0);
}
`

const glslBenchMedium = `
struct VertexOutput {
    float4 position : SV_Position;
    float4 color : COLOR0;
};

VertexOutput vs_main(uint idx : SV_VertexID) {
    float2 pos = idx == 0u ? float2(0.0, 0.5) : (idx == 1u ? float2(-0.5, -0.5) : float2(0.5, -0.5));
    VertexOutput result;
    result.position = float4(pos, 0.0, 1.0);
    result.color = float4(1.0, 0.0, 0.0, 1.0);
    return result;
}

float4 fs_main(float4 color : COLOR0) : SV_Target0 {
    return color;
}
`

const glslBenchLarge = `
cbuffer Camera : register(b0) {
    float4x4 viewProj;
};

struct VertexOutput {
    float4 position : SV_Position;
    float3 world_pos : TEXCOORD0;
    float3 normal : TEXCOORD1;
    float2 uv : TEXCOORD2;
};

VertexOutput vs_main(float3 pos : POSITION, float3 normal : NORMAL, float2 uv : TEXCOORD0) {
    VertexOutput result;
    result.position = float4(pos.x, pos.y, pos.z, 1.0);
    result.world_pos = pos;
    result.normal = normal;
    result.uv = uv;
    return result;
}

float4 fs_main(VertexOutput input) : SV_Target0 {
    float3 N = normalize(input.normal);
    float3 light_pos = float3(10.0, 10.0, 10.0);
    float3 light_color = float3(1.0, 1.0, 1.0);
    float3 L = normalize(light_pos - input.world_pos);
    float NdotL = max(dot(N, L), 0.0);
    float3 diffuse = light_color * NdotL;
    float3 view_dir = normalize(float3(0.0, 0.0, 5.0) - input.world_pos);
    float3 half_dir = normalize(L + view_dir);
    float NdotH = max(dot(N, half_dir), 0.0);
    float spec_power = pow(NdotH, 32.0);
    float3 specular = light_color * spec_power;
    float3 ambient = float3(0.05, 0.05, 0.05);
    float3 base_color = float3(0.8, 0.2, 0.2);
    float3 final_color = ambient + base_color * diffuse + specular * 0.5;
    return float4(final_color.x, final_color.y, final_color.z, 1.0);
}
`

type glslBenchCase struct {
	name   string
	source string
}

var glslBenchShaders = []glslBenchCase{
	{"small", glslBenchSmall},
	{"medium", glslBenchMedium},
	{"large", glslBenchLarge},
}

// glslParseToIR parses HLSL source and lowers the vs_main entry point to IR.
func glslParseToIR(b *testing.B, source string) *ir.Module {
	b.Helper()
	lexer := hlslfront.NewLexer(source)
	tokens, err := lexer.Tokenize()
	if err != nil {
		b.Fatalf("tokenize failed: %v", err)
	}
	parser := hlslfront.NewParser(tokens)
	ast, err := parser.Parse()
	if err != nil {
		b.Fatalf("parse failed: %v", err)
	}
	module, err := hlslfront.LowerEntry(ast, source, "vs_main", ir.StageVertex)
	if err != nil {
		b.Fatalf("lower failed: %v", err)
	}
	return module
}

// ---------------------------------------------------------------------------
// GLSL emit benchmarks
// ---------------------------------------------------------------------------

// BenchmarkGLSLEmit benchmarks GLSL code generation (IR to string)
// for shaders of different complexity.
func BenchmarkGLSLEmit(b *testing.B) {
	for _, bc := range glslBenchShaders {
		b.Run(bc.name, func(b *testing.B) {
			module := glslParseToIR(b, bc.source)
			opts := DefaultOptions()

			b.ReportAllocs()
			b.SetBytes(int64(len(bc.source)))
			b.ResetTimer()

			var result string
			for i := 0; i < b.N; i++ {
				var err error
				result, _, err = Compile(module, opts)
				if err != nil {
					b.Fatalf("glsl emit failed: %v", err)
				}
			}
			runtime.KeepAlive(result)
		})
	}
}

// BenchmarkGLSLEmitES benchmarks GLSL ES code generation to compare
// overhead of ES-specific extensions and precision qualifiers.
func BenchmarkGLSLEmitES(b *testing.B) {
	for _, bc := range glslBenchShaders {
		b.Run(bc.name, func(b *testing.B) {
			module := glslParseToIR(b, bc.source)
			opts := Options{
				LangVersion:        VersionES300,
				ForceHighPrecision: true,
			}

			b.ReportAllocs()
			b.SetBytes(int64(len(bc.source)))
			b.ResetTimer()

			var result string
			for i := 0; i < b.N; i++ {
				var err error
				result, _, err = Compile(module, opts)
				if err != nil {
					b.Fatalf("glsl es emit failed: %v", err)
				}
			}
			runtime.KeepAlive(result)
		})
	}
}

// BenchmarkGLSLVersions benchmarks GLSL generation across different
// target versions (330 core, 450 core, ES 300) for the same shader.
func BenchmarkGLSLVersions(b *testing.B) {
	module := glslParseToIR(b, glslBenchMedium)

	versions := []struct {
		name    string
		version Version
	}{
		{"330_core", Version330},
		{"450_core", Version450},
		{"ES_300", VersionES300},
	}

	for _, vv := range versions {
		b.Run(vv.name, func(b *testing.B) {
			opts := Options{
				LangVersion:        vv.version,
				ForceHighPrecision: true,
			}

			b.ReportAllocs()
			b.SetBytes(int64(len(glslBenchMedium)))
			b.ResetTimer()

			var result string
			for i := 0; i < b.N; i++ {
				var err error
				result, _, err = Compile(module, opts)
				if err != nil {
					b.Fatalf("glsl %s emit failed: %v", vv.name, err)
				}
			}
			runtime.KeepAlive(result)
		})
	}
}
