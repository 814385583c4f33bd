// Package msl implements Metal Shading Language (MSL) code generation.
//
// MSL is Apple's shader language for the Metal graphics API. It is based on C++14
// with extensions for GPU programming, including explicit address spaces, attribute-based
// parameter binding, and a metal:: namespace for standard library functions.
//
// # Usage
//
// To compile an HLSL shader to MSL:
//
//	tokens, err := hlslfront.NewLexer(source).Tokenize()
//	if err != nil {
//	    return err
//	}
//	ast, err := hlslfront.NewParser(tokens).Parse()
//	if err != nil {
//	    return err
//	}
//	module, err := hlslfront.LowerEntry(ast, source, "main", ir.StageFragment)
//	if err != nil {
//	    return err
//	}
//
//	options := msl.Options{
//	    LangVersion: msl.Version{Major: 2, Minor: 1},
//	}
//
//	mslCode, _, err := msl.Compile(module, options)
//	if err != nil {
//	    return err
//	}
//
// # MSL Language Versions
//
// The backend supports MSL 1.2 through 3.0. Features used depend on the target version:
//   - MSL 1.2: Basic shaders, most texture operations
//   - MSL 2.0: Tessellation, indirect command buffers
//   - MSL 2.1: Improved array handling
//   - MSL 2.3: Ray tracing, 64-bit atomics
//   - MSL 3.0: Mesh shaders, extended features
//
// # Type Mapping
//
// HLSL types map to MSL as follows:
//
//	HLSL           MSL
//	----           ---
//	bool           bool
//	int            int
//	uint           uint
//	float          float
//	half           half
//	float2/int2    metal::T2
//	float3/int3    metal::T3
//	float4/int4    metal::T4
//	float4x4       metal::float4x4
//	T[N]           array<T, N>  (wrapped in struct)
//	Texture2D      metal::texture2d<float>
//	SamplerState   metal::sampler
//	sampler2D      metal::texture2d<float> (combined sampler/texture, split at call sites)
//
// # Address Spaces
//
// HLSL resource and variable storage maps to MSL as:
//
//	cbuffer / ConstantBuffer<T>        -> constant
//	StructuredBuffer / RWByteAddress.. -> device
//	groupshared                        -> threadgroup
//	local variables                    -> thread (stack)
//
// # Entry Points
//
// Entry points are generated with appropriate stage keywords:
//   - vertex: vertex shaders (HLSL vs_*) with [[stage_in]], [[vertex_id]], etc.
//   - fragment: pixel shaders (HLSL ps_*) with [[position]], [[color(N)]], etc.
//   - kernel: compute shaders ([numthreads] entry points) with [[thread_position_in_grid]], etc.
//
// # Helper Functions
//
// Every translation unit carries two polyfill functions:
//   - _hlslxc_div: Safe integer division (handles zero, matching HLSL's defined-but-unspecified behavior)
//   - _hlslxc_mod: Safe integer modulo (handles zero)
//
// Wave intrinsics (WaveReadLaneFirst, WaveActiveBallot, QuadReadAcross*) lower to
// Metal SIMD-group functions (simd_broadcast_first, simd_ballot, quad_shuffle_xor);
// see writeSubgroupOp in expressions.go for the per-lane-index caveat.
package msl
