// package common holds the plain data types and math helpers shared by every engine package.
// They are not interface-wrapped, just structs and functions.
package common

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// TextureStagingData holds pixel data for a texture binding pending GPU upload.
type TextureStagingData struct {
	// Pixels is the raw pixel data, tightly packed rows in the layout implied by Format.
	Pixels []byte
	// Width is the width of the texture in pixels.
	Width uint32
	// Height is the height of the texture in pixels.
	Height uint32
	// Format is the GPU texture format. Zero means RGBA8UnormSrgb.
	Format wgpu.TextureFormat
}

// BytesPerPixel returns the texel size of the staging format.
func (t TextureStagingData) BytesPerPixel() uint32 {
	switch t.Format {
	case wgpu.TextureFormatRGBA16Float:
		return 8
	case wgpu.TextureFormatRGBA32Float:
		return 16
	default:
		return 4
	}
}

// SamplerStagingData holds the configuration for a sampler binding pending GPU creation.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode outside [0, 1].
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp clamp the sampled level of detail.
	LodMinClamp, LodMaxClamp float32
	// MaxAnisotropy specifies the maximum anisotropy level.
	MaxAnisotropy uint16
}
