package postfx

import (
	"github.com/Carmen-Shannon/flip/common"
	"github.com/chewxy/math32"
)

// The functions below are the CPU form of the composite shader math. They document the exact
// operations the WGSL performs and back the package tests.

// Luminance returns the Rec. 709 luma of a linear color.
func Luminance(c [3]float32) float32 {
	return 0.2126*c[0] + 0.7152*c[1] + 0.0722*c[2]
}

// Smoothstep is the Hermite step shared with WGSL smoothstep.
func Smoothstep(edge0, edge1, x float32) float32 {
	t := common.Clamp((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}

// BrightPass scales a color by how far its luminance lies above the bloom threshold.
//
// Parameters:
//   - c: the linear scene color
//   - threshold: luminance where the pass starts
//   - smoothing: width of the soft knee
//
// Returns:
//   - [3]float32: the color contributing to bloom
func BrightPass(c [3]float32, threshold, smoothing float32) [3]float32 {
	k := Smoothstep(threshold, threshold+max(smoothing, 1e-4), Luminance(c))
	return [3]float32{c[0] * k, c[1] * k, c[2] * k}
}

// Screen blends bloom over base. The base is clamped in the attenuation term so HDR highlights
// above one receive no additional light.
func Screen(base, bloom [3]float32) [3]float32 {
	var out [3]float32
	for i := range 3 {
		out[i] = base[i] + bloom[i]*(1-common.Clamp(base[i], 0, 1))
	}
	return out
}

// HueVector returns the rotation vector for a hue shift in radians. Dotting a color with its
// swizzles rotates the color around the gray axis.
//
// Parameters:
//   - hue: the rotation in radians
//
// Returns:
//   - [3]float32: the rotation vector
func HueVector(hue float32) [3]float32 {
	s, c := math32.Sincos(hue)
	sqrt3 := math32.Sqrt(3)
	return [3]float32{
		(1 + 2*c) / 3,
		(1 - sqrt3*s - c) / 3,
		(1 + sqrt3*s - c) / 3,
	}
}

// HueSaturation rotates the hue of c by the vector from HueVector, then moves it toward or away
// from its average by saturation.
func HueSaturation(c, hue [3]float32, saturation float32) [3]float32 {
	out := [3]float32{
		c[0]*hue[0] + c[1]*hue[1] + c[2]*hue[2],
		c[0]*hue[2] + c[1]*hue[0] + c[2]*hue[1],
		c[0]*hue[1] + c[1]*hue[2] + c[2]*hue[0],
	}
	avg := (out[0] + out[1] + out[2]) / 3
	var k float32
	if saturation > 0 {
		k = 1 - 1/(1.001-saturation)
	} else {
		k = -saturation
	}
	for i := range 3 {
		out[i] += (avg - out[i]) * k
	}
	return out
}

// ColorAverage mixes c toward its channel average by opacity.
func ColorAverage(c [3]float32, opacity float32) [3]float32 {
	avg := (c[0] + c[1] + c[2]) / 3
	return mix(c, [3]float32{avg, avg, avg}, opacity)
}

// Noise applies one grain sample n in [0, 1] with a multiply blend at opacity.
func Noise(c [3]float32, n, opacity float32, premultiply bool) [3]float32 {
	grain := [3]float32{n, n, n}
	if premultiply {
		grain = [3]float32{min(c[0]*n, 1), min(c[1]*n, 1), min(c[2]*n, 1)}
	}
	return mix(c, [3]float32{c[0] * grain[0], c[1] * grain[1], c[2] * grain[2]}, opacity)
}

// VignetteFactor returns the brightness multiplier at uv.
//
// Parameters:
//   - u, v: normalized screen coordinates in [0, 1]
//   - darkness, offset: the vignette shape
//
// Returns:
//   - float32: the multiplier applied to the color
func VignetteFactor(u, v, darkness, offset float32) float32 {
	du, dv := u-0.5, v-0.5
	dist := math32.Sqrt(du*du + dv*dv)
	return 1 - Smoothstep(offset*0.799, 0.8, dist*(darkness+offset))
}

// ACESFilmic maps an HDR color to [0, 1] with the fitted ACES reference transform. Exposure is
// applied first.
func ACESFilmic(c [3]float32, exposure float32) [3]float32 {
	e := exposure / 0.6
	c = [3]float32{c[0] * e, c[1] * e, c[2] * e}
	in := [3]float32{
		0.59719*c[0] + 0.35458*c[1] + 0.04823*c[2],
		0.07600*c[0] + 0.90834*c[1] + 0.01566*c[2],
		0.02840*c[0] + 0.13383*c[1] + 0.83777*c[2],
	}
	for i, x := range in {
		in[i] = (x*(x+0.0245786) - 0.000090537) / (x*(0.983729*x+0.4329510) + 0.238081)
	}
	out := [3]float32{
		1.60475*in[0] - 0.53108*in[1] - 0.07367*in[2],
		-0.10208*in[0] + 1.10813*in[1] - 0.00605*in[2],
		-0.00327*in[0] - 0.07276*in[1] + 1.07602*in[2],
	}
	for i := range out {
		out[i] = common.Clamp(out[i], 0, 1)
	}
	return out
}

// EncodeSRGB converts a linear channel in [0, 1] to the sRGB transfer curve.
func EncodeSRGB(x float32) float32 {
	if x <= 0.0031308 {
		return 12.92 * x
	}
	return 1.055*math32.Pow(x, 1/2.4) - 0.055
}

func mix(a, b [3]float32, t float32) [3]float32 {
	return [3]float32{
		a[0] + (b[0]-a[0])*t,
		a[1] + (b[1]-a[1])*t,
		a[2] + (b[2]-a[2])*t,
	}
}
