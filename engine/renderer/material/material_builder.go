package material

import "github.com/Carmen-Shannon/flip/common"

// MaterialBuilderOption is a function that configures a material instance during construction.
type MaterialBuilderOption func(*material)

// WithName is an option builder that sets the name of the material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithColor is an option builder that sets the linear RGB base color.
//
// Parameters:
//   - color: the base color
//
// Returns:
//   - MaterialBuilderOption: a function that applies the color option to a material
func WithColor(color [3]float32) MaterialBuilderOption {
	return func(m *material) {
		m.color = color
	}
}

// WithMetallic is an option builder that sets the metallic factor of the material.
//
// Parameters:
//   - metallic: the metallic factor (0.0 = dielectric, 1.0 = metal)
//
// Returns:
//   - MaterialBuilderOption: a function that applies the metallic option to a material
func WithMetallic(metallic float32) MaterialBuilderOption {
	return func(m *material) {
		m.metallic = common.Clamp(metallic, 0, 1)
	}
}

// WithRoughness is an option builder that sets the roughness factor of the material.
//
// Parameters:
//   - roughness: the roughness factor (0.0 = smooth, 1.0 = rough)
//
// Returns:
//   - MaterialBuilderOption: a function that applies the roughness option to a material
func WithRoughness(roughness float32) MaterialBuilderOption {
	return func(m *material) {
		m.roughness = common.Clamp(roughness, 0, 1)
	}
}

// WithEnvMapIntensity scales the environment reflection.
func WithEnvMapIntensity(intensity float32) MaterialBuilderOption {
	return func(m *material) {
		m.envMapIntensity = max(intensity, 0)
	}
}

// WithClearcoat is an option builder that enables the clearcoat layer.
//
// Parameters:
//   - weight: the clearcoat layer weight in [0, 1]
//   - roughness: the clearcoat layer roughness in [0, 1]
//
// Returns:
//   - MaterialBuilderOption: a function that applies the clearcoat option to a material
func WithClearcoat(weight, roughness float32) MaterialBuilderOption {
	return func(m *material) {
		m.clearcoat = common.Clamp(weight, 0, 1)
		m.clearcoatRoughness = common.Clamp(roughness, 0, 1)
	}
}

// WithIOR sets the index of refraction used for the dielectric Fresnel term.
func WithIOR(ior float32) MaterialBuilderOption {
	return func(m *material) {
		m.ior = common.Clamp(ior, 1, 2.333)
	}
}

// WithReflectivity sets the dielectric specular strength in [0, 1].
func WithReflectivity(reflectivity float32) MaterialBuilderOption {
	return func(m *material) {
		m.reflectivity = common.Clamp(reflectivity, 0, 1)
	}
}

// WithSheen is an option builder that enables the sheen layer.
//
// Parameters:
//   - weight: the sheen weight in [0, 1]
//   - roughness: the sheen roughness in [0, 1]
//   - color: the linear RGB sheen tint
//
// Returns:
//   - MaterialBuilderOption: a function that applies the sheen option to a material
func WithSheen(weight, roughness float32, color [3]float32) MaterialBuilderOption {
	return func(m *material) {
		m.sheen = common.Clamp(weight, 0, 1)
		m.sheenRoughness = common.Clamp(roughness, 0, 1)
		m.sheenColor = color
	}
}

// WithTransparent marks the material for the blended pass with the given opacity.
func WithTransparent(opacity float32) MaterialBuilderOption {
	return func(m *material) {
		m.transparent = true
		m.opacity = common.Clamp(opacity, 0, 1)
	}
}

// WithPipelineKey is an option builder that sets the render pipeline key for the material.
//
// Parameters:
//   - key: the pipeline key
//
// Returns:
//   - MaterialBuilderOption: a function that applies the pipeline key option to a material
func WithPipelineKey(key string) MaterialBuilderOption {
	return func(m *material) {
		m.pipelineKey = key
	}
}
