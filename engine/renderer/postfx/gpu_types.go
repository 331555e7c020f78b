package postfx

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUPostParamsSource is the WGSL definition of the PostParams struct read by the bloom threshold
// and composite passes. Matches GPUPostParams layout exactly (96 bytes).
//
//go:embed assets/post_params.wgsl
var GPUPostParamsSource string

// GPUPostParams is the uniform shared by the post chain passes.
// Size: 96 bytes.
type GPUPostParams struct {
	Bloom      [4]float32 // offset  0: intensity, threshold, smoothing, enabled
	HueSat     [4]float32 // offset 16: hue rotation vector xyz, saturation
	Grade      [4]float32 // offset 32: color average opacity, noise opacity, premultiply, time
	Vignette   [4]float32 // offset 48: darkness, offset, exposure, encode sRGB
	Toggles    [4]float32 // offset 64: hue/saturation, color average, noise, vignette enabled
	Resolution [4]float32 // offset 80: width, height, 1/width, 1/height
}

// Size returns the size of the GPUPostParams struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUPostParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUPostParams struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 96-byte buffer ready for GPU upload.
func (g *GPUPostParams) Marshal() []byte {
	buf := make([]byte, 96)
	for row, v := range [6][4]float32{g.Bloom, g.HueSat, g.Grade, g.Vignette, g.Toggles, g.Resolution} {
		for i := range 4 {
			binary.LittleEndian.PutUint32(buf[row*16+i*4:], math.Float32bits(v[i]))
		}
	}
	return buf
}

// GPUBlurParamsSource is the WGSL definition of the BlurParams struct.
// Matches GPUBlurParams layout exactly (16 bytes).
//
//go:embed assets/blur_params.wgsl
var GPUBlurParamsSource string

// GPUBlurParams selects the axis of one separable blur pass.
// Size: 16 bytes.
type GPUBlurParams struct {
	Direction [4]float32 // offset 0: texel step xy, zw unused
}

// Size returns the size of the GPUBlurParams struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUBlurParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUBlurParams struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload.
func (g *GPUBlurParams) Marshal() []byte {
	buf := make([]byte, 16)
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Direction[i]))
	}
	return buf
}
