package transforms

import "github.com/gogpu/hlslxc/hlslfront"

// SortTree stably partitions the module's global variables so every
// static/const declaration precedes the remaining resource and uniform
// declarations, matching the reference compiler's top-level declaration
// ordering pass. Structs, cbuffers, and functions are already segregated
// by the parser's Module layout, so only the mixed GlobalVars slice needs
// repartitioning here.
func SortTree(mod *hlslfront.Module) {
	var consts, rest []*hlslfront.VarDecl
	for _, v := range mod.GlobalVars {
		if isConstQualified(v) {
			consts = append(consts, v)
		} else {
			rest = append(rest, v)
		}
	}
	mod.GlobalVars = append(consts, rest...)
}

func isConstQualified(v *hlslfront.VarDecl) bool {
	for _, q := range v.Qualifiers {
		if q == "const" || q == "static" {
			return true
		}
	}
	return false
}
