package environment

import "github.com/Carmen-Shannon/flip/engine/renderer/bind_group_provider"

// EnvironmentBuilderOption is a functional option for configuring an Environment during construction.
type EnvironmentBuilderOption func(*environmentImpl)

// WithResolution sets the equirectangular map size. Width should be twice the height.
//
// Parameters:
//   - width: the map width in pixels
//   - height: the map height in pixels
//
// Returns:
//   - EnvironmentBuilderOption: functional option to set the resolution
func WithResolution(width, height int) EnvironmentBuilderOption {
	return func(e *environmentImpl) {
		e.width, e.height = width, height
	}
}

// WithBlur sets the glossy blur amount in [0, 1].
func WithBlur(amount float32) EnvironmentBuilderOption {
	return func(e *environmentImpl) {
		e.blur = amount
	}
}

// WithRoughBlur sets the blur amount of the rough copy in [0, 1].
func WithRoughBlur(amount float32) EnvironmentBuilderOption {
	return func(e *environmentImpl) {
		e.roughBlur = amount
	}
}

// WithIntensity sets the global environment multiplier applied on top of each material's own.
func WithIntensity(intensity float32) EnvironmentBuilderOption {
	return func(e *environmentImpl) {
		e.intensity = intensity
	}
}

// WithBindGroupProvider sets the provider owning the uploaded textures.
func WithBindGroupProvider(provider bind_group_provider.BindGroupProvider) EnvironmentBuilderOption {
	return func(e *environmentImpl) {
		e.bindGroupProvider = provider
	}
}
