package material

import (
	"github.com/Carmen-Shannon/flip/engine/renderer/bind_group_provider"
)

// material is the implementation of the Material interface.
type material struct {
	name               string
	color              [3]float32
	metallic           float32
	roughness          float32
	envMapIntensity    float32
	clearcoat          float32
	clearcoatRoughness float32
	ior                float32
	reflectivity       float32
	sheen              float32
	sheenRoughness     float32
	sheenColor         [3]float32
	transparent        bool
	opacity            float32
	pipelineKey        string
	bindGroupProvider  bind_group_provider.BindGroupProvider
}

// Material is a physically based surface description: a metal/rough base layer, an optional
// clearcoat layer, an optional sheen layer and an environment reflection weight.
// Colors are linear RGB.
//
// Surface properties are fixed at construction. The pipeline key and bind group provider are
// assigned when the scene uploads the material.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// Color retrieves the linear RGB base color.
	//
	// Returns:
	//   - [3]float32: the base color
	Color() [3]float32

	// Metallic retrieves the metallic factor. 0 is dielectric, 1 is metal.
	Metallic() float32

	// Roughness retrieves the roughness factor. 0 is mirror smooth, 1 fully rough.
	Roughness() float32

	// EnvMapIntensity retrieves the scale applied to the environment reflection.
	EnvMapIntensity() float32

	Clearcoat() float32
	ClearcoatRoughness() float32
	IOR() float32
	Reflectivity() float32
	Sheen() float32
	SheenRoughness() float32
	SheenColor() [3]float32

	// Transparent reports whether the material is drawn in the blended pass.
	//
	// Returns:
	//   - bool: true if the material needs alpha blending
	Transparent() bool

	// Opacity retrieves the alpha applied in the blended pass. Ignored for opaque materials.
	Opacity() float32

	// Uniform packs the surface properties into their GPU representation.
	//
	// Returns:
	//   - GPUMaterialParams: the uniform ready to marshal
	Uniform() GPUMaterialParams

	// PipelineKey retrieves the key identifying the render pipeline this material uses.
	//
	// Returns:
	//   - string: the pipeline key
	PipelineKey() string

	// BindGroupProvider retrieves the bind group provider holding GPU-side resources for this material.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the bind group provider, or nil if not yet initialized
	BindGroupProvider() bind_group_provider.BindGroupProvider

	SetPipelineKey(key string)
	SetBindGroupProvider(provider bind_group_provider.BindGroupProvider)
}

var _ Material = &material{}

// NewMaterial creates a new Material configured with the provided options.
// Unset properties default to a white, fully rough dielectric with IOR 1.5.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		color:           [3]float32{1, 1, 1},
		roughness:       1.0,
		envMapIntensity: 1.0,
		ior:             1.5,
		reflectivity:    0.5,
		sheenRoughness:  1.0,
		opacity:         1.0,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) Color() [3]float32 {
	return m.color
}

func (m *material) Metallic() float32 {
	return m.metallic
}

func (m *material) Roughness() float32 {
	return m.roughness
}

func (m *material) EnvMapIntensity() float32 {
	return m.envMapIntensity
}

func (m *material) Clearcoat() float32 {
	return m.clearcoat
}

func (m *material) ClearcoatRoughness() float32 {
	return m.clearcoatRoughness
}

func (m *material) IOR() float32 {
	return m.ior
}

func (m *material) Reflectivity() float32 {
	return m.reflectivity
}

func (m *material) Sheen() float32 {
	return m.sheen
}

func (m *material) SheenRoughness() float32 {
	return m.sheenRoughness
}

func (m *material) SheenColor() [3]float32 {
	return m.sheenColor
}

func (m *material) Transparent() bool {
	return m.transparent
}

func (m *material) Opacity() float32 {
	return m.opacity
}

func (m *material) Uniform() GPUMaterialParams {
	opacity := float32(1)
	if m.transparent {
		opacity = m.opacity
	}
	return GPUMaterialParams{
		BaseColor:          [4]float32{m.color[0], m.color[1], m.color[2], opacity},
		SheenColor:         [4]float32{m.sheenColor[0], m.sheenColor[1], m.sheenColor[2], m.sheen},
		Metallic:           m.metallic,
		Roughness:          m.roughness,
		EnvIntensity:       m.envMapIntensity,
		IOR:                m.ior,
		Clearcoat:          m.clearcoat,
		ClearcoatRoughness: m.clearcoatRoughness,
		SheenRoughness:     m.sheenRoughness,
		Reflectivity:       m.reflectivity,
	}
}

func (m *material) PipelineKey() string {
	return m.pipelineKey
}

func (m *material) BindGroupProvider() bind_group_provider.BindGroupProvider {
	return m.bindGroupProvider
}

func (m *material) SetPipelineKey(key string) {
	m.pipelineKey = key
}

func (m *material) SetBindGroupProvider(provider bind_group_provider.BindGroupProvider) {
	m.bindGroupProvider = provider
}
