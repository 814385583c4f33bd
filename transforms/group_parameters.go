package transforms

import "github.com/gogpu/hlslxc/hlslfront"

// GroupParameters bundles the module's loose global uniforms into a single
// synthetic constant buffer, per_pass at register(b1), mirroring the
// reference compiler's resource-grouping pass. Samplers, textures, and other
// opaque resource types are left as standalone globals since HLSL constant
// buffers cannot contain them. static and const globals are left alone as
// they do not occupy a constant buffer slot.
//
// The reference tool splits this into per_item/per_material/per_pass tiers
// keyed on a per-declaration update-frequency semantic that is not part of
// standard HLSL global-variable syntax and so is not carried by this front
// end's AST; every eligible global is folded into the one per_pass buffer
// instead. See DESIGN.md for the rationale.
func GroupParameters(mod *hlslfront.Module) {
	var perPass []*hlslfront.StructMember
	var kept []*hlslfront.VarDecl

	for _, v := range mod.GlobalVars {
		if isConstQualified(v) || isOpaqueResource(v.Type) {
			kept = append(kept, v)
			continue
		}
		perPass = append(perPass, &hlslfront.StructMember{
			Name: v.Name,
			Type: v.Type,
			Span: v.Span,
		})
	}
	mod.GlobalVars = kept

	if len(perPass) == 0 {
		return
	}
	mod.CBuffers = append(mod.CBuffers, &hlslfront.CBufferDecl{
		Name:     "per_pass",
		Register: &hlslfront.RegisterBinding{Class: 'b', Slot: 1},
		Members:  perPass,
	})
}

func isOpaqueResource(t hlslfront.Type) bool {
	nt, ok := t.(*hlslfront.NamedType)
	if !ok {
		return false
	}
	switch nt.Name {
	case "Texture1D", "Texture1DArray", "Texture2D", "Texture2DArray",
		"Texture2DMS", "Texture2DMSArray", "Texture3D", "TextureCube", "TextureCubeArray",
		"RWTexture1D", "RWTexture1DArray", "RWTexture2D", "RWTexture2DArray", "RWTexture3D",
		"SamplerState", "SamplerComparisonState",
		"Buffer", "RWBuffer", "StructuredBuffer", "RWStructuredBuffer",
		"ByteAddressBuffer", "RWByteAddressBuffer", "AppendStructuredBuffer", "ConsumeStructuredBuffer":
		return true
	}
	return false
}
