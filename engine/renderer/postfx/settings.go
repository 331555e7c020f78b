package postfx

import (
	"errors"
	"fmt"
	"math"
)

// Effect names in the fixed order the composite pass applies them.
const (
	EffectBloom         = "bloom"
	EffectHueSaturation = "hue_saturation"
	EffectColorAverage  = "color_average"
	EffectNoise         = "noise"
	EffectVignette      = "vignette"
	EffectToneMapping   = "tone_mapping"
)

// Order lists the post chain as it runs after the scene pass.
var Order = []string{
	EffectBloom,
	EffectHueSaturation,
	EffectColorAverage,
	EffectNoise,
	EffectVignette,
	EffectToneMapping,
}

// BloomSettings configures the bright-pass bloom, blended over the scene with a screen blend.
type BloomSettings struct {
	Enabled   bool    `yaml:"enabled"`
	Intensity float32 `yaml:"intensity"`
	Threshold float32 `yaml:"threshold"` // luminance where the bright pass starts
	Smoothing float32 `yaml:"smoothing"` // width of the soft knee above Threshold
	Passes    int     `yaml:"passes"`    // separable blur iterations at half resolution
}

// HueSaturationSettings rotates hue and scales saturation. Saturation is in [-1, 1], negative values
// desaturate.
type HueSaturationSettings struct {
	Enabled    bool    `yaml:"enabled"`
	Hue        float32 `yaml:"hue"` // radians
	Saturation float32 `yaml:"saturation"`
}

// ColorAverageSettings blends the grayscale average over the image with a normal blend.
type ColorAverageSettings struct {
	Enabled bool    `yaml:"enabled"`
	Opacity float32 `yaml:"opacity"`
}

// NoiseSettings multiplies animated grain into the image.
type NoiseSettings struct {
	Enabled     bool    `yaml:"enabled"`
	Opacity     float32 `yaml:"opacity"`
	Premultiply bool    `yaml:"premultiply"`
}

// VignetteSettings darkens the image toward its corners.
type VignetteSettings struct {
	Enabled  bool    `yaml:"enabled"`
	Darkness float32 `yaml:"darkness"`
	Offset   float32 `yaml:"offset"`
}

// Settings holds every post effect of the chain plus the output exposure.
type Settings struct {
	Bloom         BloomSettings         `yaml:"bloom"`
	HueSaturation HueSaturationSettings `yaml:"hue_saturation"`
	ColorAverage  ColorAverageSettings  `yaml:"color_average"`
	Noise         NoiseSettings         `yaml:"noise"`
	Vignette      VignetteSettings      `yaml:"vignette"`
	Exposure      float32               `yaml:"exposure"`
}

// DefaultSettings returns the vintage gold look.
//
// Returns:
//   - Settings: the default chain
func DefaultSettings() Settings {
	return Settings{
		Bloom:         BloomSettings{Enabled: true, Intensity: 1.5, Threshold: 0.2, Smoothing: 0.9, Passes: 2},
		HueSaturation: HueSaturationSettings{Enabled: true, Hue: 0.1, Saturation: -0.5},
		ColorAverage:  ColorAverageSettings{Enabled: true, Opacity: 1},
		Noise:         NoiseSettings{Enabled: true, Opacity: 0.4, Premultiply: true},
		Vignette:      VignetteSettings{Enabled: true, Darkness: 0.4, Offset: 0.5},
		Exposure:      1.2,
	}
}

// Validate checks every parameter range and reports all offending fields.
//
// Returns:
//   - error: nil if the settings are usable
func (s Settings) Validate() error {
	var errs []error
	check := func(ok bool, field string, v any) {
		if !ok {
			errs = append(errs, fmt.Errorf("postfx.%s out of range, got %v", field, v))
		}
	}
	check(s.Bloom.Intensity >= 0, "bloom.intensity", s.Bloom.Intensity)
	check(s.Bloom.Threshold >= 0, "bloom.threshold", s.Bloom.Threshold)
	check(s.Bloom.Smoothing >= 0, "bloom.smoothing", s.Bloom.Smoothing)
	check(s.Bloom.Passes >= 1 && s.Bloom.Passes <= 8, "bloom.passes", s.Bloom.Passes)
	check(math.Abs(float64(s.HueSaturation.Hue)) <= math.Pi, "hue_saturation.hue", s.HueSaturation.Hue)
	check(s.HueSaturation.Saturation >= -1 && s.HueSaturation.Saturation <= 1, "hue_saturation.saturation", s.HueSaturation.Saturation)
	check(s.ColorAverage.Opacity >= 0 && s.ColorAverage.Opacity <= 1, "color_average.opacity", s.ColorAverage.Opacity)
	check(s.Noise.Opacity >= 0 && s.Noise.Opacity <= 1, "noise.opacity", s.Noise.Opacity)
	check(s.Vignette.Darkness >= 0, "vignette.darkness", s.Vignette.Darkness)
	check(s.Vignette.Offset >= 0, "vignette.offset", s.Vignette.Offset)
	check(s.Exposure > 0, "exposure", s.Exposure)
	return errors.Join(errs...)
}

// Params packs the settings for the composite pass.
//
// Parameters:
//   - width, height: the output size in pixels
//   - time: seconds since start, seeds the grain
//   - encodeSRGB: true when the surface format does not encode sRGB itself
//
// Returns:
//   - GPUPostParams: the uniform ready to marshal
func (s Settings) Params(width, height uint32, time float32, encodeSRGB bool) GPUPostParams {
	hue := HueVector(s.HueSaturation.Hue)
	p := GPUPostParams{
		Bloom:      [4]float32{s.Bloom.Intensity, s.Bloom.Threshold, s.Bloom.Smoothing, flag(s.Bloom.Enabled)},
		HueSat:     [4]float32{hue[0], hue[1], hue[2], s.HueSaturation.Saturation},
		Grade:      [4]float32{s.ColorAverage.Opacity, s.Noise.Opacity, flag(s.Noise.Premultiply), time},
		Vignette:   [4]float32{s.Vignette.Darkness, s.Vignette.Offset, s.Exposure, flag(encodeSRGB)},
		Toggles:    [4]float32{flag(s.HueSaturation.Enabled), flag(s.ColorAverage.Enabled), flag(s.Noise.Enabled), flag(s.Vignette.Enabled)},
		Resolution: [4]float32{float32(width), float32(height)},
	}
	if width > 0 && height > 0 {
		p.Resolution[2] = 1 / float32(width)
		p.Resolution[3] = 1 / float32(height)
	}
	return p
}

func flag(b bool) float32 {
	if b {
		return 1
	}
	return 0
}
