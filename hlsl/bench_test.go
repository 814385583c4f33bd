package hlsl

import (
	"runtime"
	"testing"

	"github.com/gogpu/hlslxc/hlslfront"
	"github.com/gogpu/hlslxc/ir"
)

// ---------------------------------------------------------------------------
// Test shader sources for HLSL backend benchmarks
// ---------------------------------------------------------------------------

const hlslBenchSmall = `
float4 vs_main(uint idx : SV_VertexID) : SV_Position {
    return float4(0.0, 0.0, 0.0, 1.0);
}
`

const hlslBenchMedium = `
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

const hlslBenchLarge = `
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

type hlslBenchCase struct {
	name   string
	source string
}

var hlslBenchShaders = []hlslBenchCase{
	{"small", hlslBenchSmall},
	{"medium", hlslBenchMedium},
	{"large", hlslBenchLarge},
}

// hlslParseToIR parses HLSL source and lowers the vs_main entry point to IR.
func hlslParseToIR(b *testing.B, source string) *ir.Module {
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
// HLSL emit benchmarks
// ---------------------------------------------------------------------------

// BenchmarkHLSLEmit benchmarks HLSL code generation (IR to string)
// for shaders of different complexity.
func BenchmarkHLSLEmit(b *testing.B) {
	for _, bc := range hlslBenchShaders {
		b.Run(bc.name, func(b *testing.B) {
			module := hlslParseToIR(b, bc.source)
			opts := DefaultOptions()

			b.ReportAllocs()
			b.SetBytes(int64(len(bc.source)))
			b.ResetTimer()

			var result string
			for i := 0; i < b.N; i++ {
				var err error
				result, _, err = Compile(module, opts)
				if err != nil {
					b.Fatalf("hlsl emit failed: %v", err)
				}
			}
			runtime.KeepAlive(result)
		})
	}
}

// BenchmarkHLSLShaderModels benchmarks HLSL generation across different
// shader model targets for the same shader.
func BenchmarkHLSLShaderModels(b *testing.B) {
	module := hlslParseToIR(b, hlslBenchMedium)

	models := []struct {
		name  string
		model ShaderModel
	}{
		{"SM_5_0", ShaderModel5_0},
		{"SM_5_1", ShaderModel5_1},
		{"SM_6_0", ShaderModel6_0},
	}

	for _, sm := range models {
		b.Run(sm.name, func(b *testing.B) {
			opts := DefaultOptions()
			opts.ShaderModel = sm.model

			b.ReportAllocs()
			b.SetBytes(int64(len(hlslBenchMedium)))
			b.ResetTimer()

			var result string
			for i := 0; i < b.N; i++ {
				var err error
				result, _, err = Compile(module, opts)
				if err != nil {
					b.Fatalf("hlsl %s emit failed: %v", sm.name, err)
				}
			}
			runtime.KeepAlive(result)
		})
	}
}
