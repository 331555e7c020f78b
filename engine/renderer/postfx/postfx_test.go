package postfx

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettingsValid(t *testing.T) {
	s := DefaultSettings()
	require.NoError(t, s.Validate())
	assert.Equal(t, float32(1.5), s.Bloom.Intensity)
	assert.Equal(t, float32(-0.5), s.HueSaturation.Saturation)
	assert.Equal(t, float32(0.4), s.Noise.Opacity)
	assert.Equal(t, float32(1.2), s.Exposure)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
		field  string
	}{
		{"negative bloom", func(s *Settings) { s.Bloom.Intensity = -1 }, "bloom.intensity"},
		{"zero passes", func(s *Settings) { s.Bloom.Passes = 0 }, "bloom.passes"},
		{"saturation past one", func(s *Settings) { s.HueSaturation.Saturation = 1.5 }, "hue_saturation.saturation"},
		{"noise opacity", func(s *Settings) { s.Noise.Opacity = 2 }, "noise.opacity"},
		{"zero exposure", func(s *Settings) { s.Exposure = 0 }, "exposure"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			err := s.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestHueVectorZeroIsIdentity(t *testing.T) {
	h := HueVector(0)
	assert.InDelta(t, 1, h[0], 1e-6)
	assert.InDelta(t, 0, h[1], 1e-6)
	assert.InDelta(t, 0, h[2], 1e-6)

	c := [3]float32{0.9, 0.5, 0.1}
	out := HueSaturation(c, h, 0)
	assert.InDeltaSlice(t, c[:], out[:], 1e-6)
}

func TestHueRotationPreservesGray(t *testing.T) {
	gray := [3]float32{0.4, 0.4, 0.4}
	out := HueSaturation(gray, HueVector(0.1), 0)
	assert.InDeltaSlice(t, gray[:], out[:], 1e-6)
}

func TestNegativeSaturationPullsTowardAverage(t *testing.T) {
	c := [3]float32{1, 0.5, 0}
	out := HueSaturation(c, HueVector(0), -0.5)
	assert.InDeltaSlice(t, []float32{0.75, 0.5, 0.25}, out[:], 1e-6)

	full := HueSaturation(c, HueVector(0), -1)
	assert.InDeltaSlice(t, []float32{0.5, 0.5, 0.5}, full[:], 1e-6)
}

func TestColorAverage(t *testing.T) {
	c := [3]float32{0.9, 0.6, 0}
	out := ColorAverage(c, 1)
	assert.InDeltaSlice(t, []float32{0.5, 0.5, 0.5}, out[:], 1e-6)
	assert.Equal(t, c, ColorAverage(c, 0))
}

func TestNoise(t *testing.T) {
	c := [3]float32{0.5, 0.5, 0.5}
	// premultiplied grain of 1 multiplies the color by itself at 40%
	out := Noise(c, 1, 0.4, true)
	assert.InDelta(t, 0.5+(0.25-0.5)*0.4, out[0], 1e-6)

	plain := Noise(c, 1, 0.4, false)
	assert.InDelta(t, 0.5, plain[0], 1e-6)
	assert.Equal(t, c, Noise(c, 0, 0, true))
}

func TestBrightPass(t *testing.T) {
	assert.Equal(t, [3]float32{}, BrightPass([3]float32{0.1, 0.1, 0.1}, 0.2, 0.9))
	bright := BrightPass([3]float32{2, 2, 2}, 0.2, 0.9)
	assert.Equal(t, [3]float32{2, 2, 2}, bright)
}

func TestScreen(t *testing.T) {
	out := Screen([3]float32{0.5, 0, 2}, [3]float32{0.5, 0.3, 1})
	assert.InDeltaSlice(t, []float32{0.75, 0.3, 2}, out[:], 1e-6)
}

func TestVignetteFactor(t *testing.T) {
	assert.Equal(t, float32(1), VignetteFactor(0.5, 0.5, 0.4, 0.5))
	corner := VignetteFactor(0, 0, 0.4, 0.5)
	assert.Less(t, corner, float32(1))
	assert.Greater(t, corner, float32(0))
}

func TestACESFilmic(t *testing.T) {
	black := ACESFilmic([3]float32{}, 1.2)
	for _, v := range black {
		assert.InDelta(t, 0, v, 1e-3)
	}
	hot := ACESFilmic([3]float32{100, 100, 100}, 1.2)
	for _, v := range hot {
		assert.InDelta(t, 1, v, 0.02)
	}
	mid := ACESFilmic([3]float32{0.18, 0.18, 0.18}, 1)
	assert.Greater(t, mid[0], float32(0.1))
	assert.Less(t, mid[0], float32(0.5))
}

func TestEncodeSRGB(t *testing.T) {
	assert.Equal(t, float32(0), EncodeSRGB(0))
	assert.InDelta(t, 1, EncodeSRGB(1), 1e-5)
	assert.InDelta(t, 0.7353, EncodeSRGB(0.5), 1e-3)
}

func TestParams(t *testing.T) {
	s := DefaultSettings()
	s.Vignette.Enabled = false
	p := s.Params(1600, 900, 3.5, true)

	assert.Equal(t, 96, p.Size())
	assert.Equal(t, [4]float32{1.5, 0.2, 0.9, 1}, p.Bloom)
	assert.Equal(t, float32(-0.5), p.HueSat[3])
	assert.Equal(t, [4]float32{1, 0.4, 1, 3.5}, p.Grade)
	assert.Equal(t, [4]float32{0.4, 0.5, 1.2, 1}, p.Vignette)
	assert.Equal(t, [4]float32{1, 1, 1, 0}, p.Toggles)
	assert.InDelta(t, 1.0/900, p.Resolution[3], 1e-9)

	buf := p.Marshal()
	assert.Equal(t, float32(1600), math.Float32frombits(binary.LittleEndian.Uint32(buf[80:])))
	assert.Equal(t, float32(3.5), math.Float32frombits(binary.LittleEndian.Uint32(buf[44:])))

	zero := s.Params(0, 0, 0, false)
	assert.Equal(t, float32(0), zero.Resolution[2])
}

func TestOrder(t *testing.T) {
	assert.Equal(t, []string{"bloom", "hue_saturation", "color_average", "noise", "vignette", "tone_mapping"}, Order)
}
