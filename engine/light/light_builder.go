package light

import "github.com/chewxy/math32"

// LightBuilderOption is a functional option for configuring a Light during construction.
type LightBuilderOption func(*lightImpl)

// WithPosition sets the point a directional light shines from.
//
// Parameters:
//   - x, y, z: the world-space position
//
// Returns:
//   - LightBuilderOption: functional option to set the position
func WithPosition(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.position = [3]float32{x, y, z}
	}
}

// WithTarget sets the point a directional light shines toward. Defaults to the origin.
//
// Parameters:
//   - x, y, z: the world-space target
//
// Returns:
//   - LightBuilderOption: functional option to set the target
func WithTarget(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.target = [3]float32{x, y, z}
	}
}

// WithColor sets the linear RGB color of the light.
//
// Parameters:
//   - c: the linear color
//
// Returns:
//   - LightBuilderOption: functional option to set the color
func WithColor(c [3]float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.color = c
	}
}

// WithIntensity sets the scalar multiplier of the light.
//
// Parameters:
//   - intensity: the multiplier applied to the color
//
// Returns:
//   - LightBuilderOption: functional option to set the intensity
func WithIntensity(intensity float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.intensity = intensity
	}
}

// WithEnabled sets whether the light contributes to shading.
func WithEnabled(enabled bool) LightBuilderOption {
	return func(l *lightImpl) {
		l.enabled = enabled
	}
}

func normalize3(x, y, z float32) [3]float32 {
	length := math32.Sqrt(x*x + y*y + z*z)
	if length < 1e-8 {
		return [3]float32{0, 1, 0}
	}
	return [3]float32{x / length, y / length, z / length}
}
