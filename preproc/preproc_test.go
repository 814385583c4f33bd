package preproc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassthroughPreprocessor(t *testing.T) {
	p := PassthroughPreprocessor{Sources: map[string]string{"a.hlsl": "float4 main() : SV_Target { return 0; }"}}

	res := p.Fetch("a.hlsl", nil)
	require.True(t, res.OK)
	assert.Equal(t, "float4 main() : SV_Target { return 0; }", res.Output)

	missing := p.Fetch("missing.hlsl", nil)
	assert.False(t, missing.OK)
	assert.NotEmpty(t, missing.Errors)
}

func TestMacroPreprocessorSubstitution(t *testing.T) {
	p := NewMacroPreprocessor(map[string]string{
		"a.hlsl": "#define WIDTH 4\nfloat4 c[WIDTH];\n",
	})

	res := p.Fetch("a.hlsl", []Macro{{Name: "SCALE", Value: "2.0"}})
	require.True(t, res.OK)
	assert.Contains(t, res.Output, "float4 c[4];")
	assert.NotContains(t, res.Output, "#define")

	res2 := p.Fetch("a.hlsl", nil)
	require.True(t, res2.OK)
	assert.Contains(t, res2.Output, "float4 c[4];")
}

func TestMacroPreprocessorRejectsInclude(t *testing.T) {
	p := NewMacroPreprocessor(map[string]string{
		"a.hlsl": "#include \"common.hlsli\"\n",
	})

	res := p.Fetch("a.hlsl", nil)
	assert.False(t, res.OK)
	assert.Contains(t, res.Errors, "#include")
}

func TestMacroPreprocessorRejectsConditional(t *testing.T) {
	p := NewMacroPreprocessor(map[string]string{
		"a.hlsl": "#ifdef DEBUG\nfloat x;\n#endif\n",
	})

	res := p.Fetch("a.hlsl", nil)
	assert.False(t, res.OK)
	assert.Contains(t, res.Errors, "conditional compilation")
}
