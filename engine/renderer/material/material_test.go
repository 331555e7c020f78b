package material

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMaterialDefaults(t *testing.T) {
	m := NewMaterial()

	assert.Equal(t, [3]float32{1, 1, 1}, m.Color())
	assert.Equal(t, float32(0), m.Metallic())
	assert.Equal(t, float32(1), m.Roughness())
	assert.Equal(t, float32(1.5), m.IOR())
	assert.False(t, m.Transparent())
	assert.Equal(t, float32(1), m.Opacity())
	assert.Nil(t, m.BindGroupProvider())
}

func TestMaterialOptionsClamp(t *testing.T) {
	tests := []struct {
		name  string
		opt   MaterialBuilderOption
		check func(t *testing.T, m Material)
	}{
		{"metallic above one", WithMetallic(2), func(t *testing.T, m Material) { assert.Equal(t, float32(1), m.Metallic()) }},
		{"negative roughness", WithRoughness(-1), func(t *testing.T, m Material) { assert.Equal(t, float32(0), m.Roughness()) }},
		{"ior below vacuum", WithIOR(0.5), func(t *testing.T, m Material) { assert.Equal(t, float32(1), m.IOR()) }},
		{"negative env intensity", WithEnvMapIntensity(-3), func(t *testing.T, m Material) { assert.Equal(t, float32(0), m.EnvMapIntensity()) }},
		{"opacity above one", WithTransparent(1.4), func(t *testing.T, m Material) { assert.Equal(t, float32(1), m.Opacity()) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, NewMaterial(tt.opt))
		})
	}
}

func TestMaterialUniform(t *testing.T) {
	gold := [3]float32{1, 0.6795, 0}
	peach := [3]float32{1, 0.7835, 0.4564}
	m := NewMaterial(
		WithName("edge"),
		WithColor(gold),
		WithMetallic(1),
		WithRoughness(0.1),
		WithEnvMapIntensity(2),
		WithClearcoat(1, 0.2),
		WithReflectivity(1),
		WithSheen(0.8, 0.2, peach),
	)

	u := m.Uniform()
	assert.Equal(t, [4]float32{1, 0.6795, 0, 1}, u.BaseColor)
	assert.Equal(t, [4]float32{1, 0.7835, 0.4564, 0.8}, u.SheenColor)
	assert.Equal(t, float32(2), u.EnvIntensity)
	assert.Equal(t, float32(0.2), u.ClearcoatRoughness)

	buf := u.Marshal()
	require.Len(t, buf, u.Size())
	assert.Equal(t, 64, u.Size())
	assert.Equal(t, float32(0.1), math.Float32frombits(binary.LittleEndian.Uint32(buf[36:])))
	assert.Equal(t, float32(1.5), math.Float32frombits(binary.LittleEndian.Uint32(buf[44:])))
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(buf[60:])))
}

func TestOpaqueUniformIgnoresOpacity(t *testing.T) {
	m := NewMaterial()
	assert.Equal(t, float32(1), m.Uniform().BaseColor[3])

	spiral := NewMaterial(WithTransparent(0.84))
	assert.Equal(t, float32(0.84), spiral.Uniform().BaseColor[3])
}

func TestGPUOverlayParams(t *testing.T) {
	p := GPUOverlayParams{Rect: [4]float32{0, 0, 0.5, 0.1}, Color: [4]float32{1, 1, 1, 1}}
	assert.Equal(t, 32, p.Size())
	buf := p.Marshal()
	assert.Equal(t, float32(0.1), math.Float32frombits(binary.LittleEndian.Uint32(buf[12:])))
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(buf[28:])))
}
