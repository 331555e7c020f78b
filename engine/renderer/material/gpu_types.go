package material

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUMaterialParamsSource is the canonical WGSL definition of the MaterialParams struct.
// Matches GPUMaterialParams layout exactly (64 bytes).
//
//go:embed assets/material_params.wgsl
var GPUMaterialParamsSource string

// GPUMaterialParams is the GPU-aligned uniform read by the physical fragment shader.
// Size: 64 bytes.
type GPUMaterialParams struct {
	BaseColor          [4]float32 // offset  0: linear RGB + opacity
	SheenColor         [4]float32 // offset 16: linear RGB + sheen weight
	Metallic           float32    // offset 32
	Roughness          float32    // offset 36
	EnvIntensity       float32    // offset 40
	IOR                float32    // offset 44
	Clearcoat          float32    // offset 48
	ClearcoatRoughness float32    // offset 52
	SheenRoughness     float32    // offset 56
	Reflectivity       float32    // offset 60
}

// Size returns the size of the GPUMaterialParams struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUMaterialParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUMaterialParams struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload.
func (g *GPUMaterialParams) Marshal() []byte {
	buf := make([]byte, 64)
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.BaseColor[i]))
		binary.LittleEndian.PutUint32(buf[16+i*4:], math.Float32bits(g.SheenColor[i]))
	}
	scalars := [8]float32{
		g.Metallic, g.Roughness, g.EnvIntensity, g.IOR,
		g.Clearcoat, g.ClearcoatRoughness, g.SheenRoughness, g.Reflectivity,
	}
	for i, v := range scalars {
		binary.LittleEndian.PutUint32(buf[32+i*4:], math.Float32bits(v))
	}
	return buf
}

// GPUOverlayParamsSource is the canonical WGSL definition of the OverlayParams struct.
// Matches GPUOverlayParams layout exactly (32 bytes).
//
//go:embed assets/overlay_params.wgsl
var GPUOverlayParamsSource string

// GPUOverlayParams is the GPU-aligned uniform for the text overlay pass.
// Size: 32 bytes.
type GPUOverlayParams struct {
	Rect  [4]float32 // offset  0: quad center xy and half extents zw in NDC
	Color [4]float32 // offset 16: RGBA text color multiplied with the glyph coverage
}

// Size returns the size of the GPUOverlayParams struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUOverlayParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUOverlayParams struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload.
func (g *GPUOverlayParams) Marshal() []byte {
	buf := make([]byte, 32)
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Rect[i]))
		binary.LittleEndian.PutUint32(buf[16+i*4:], math.Float32bits(g.Color[i]))
	}
	return buf
}
