package renderer

import (
	"errors"

	"github.com/Carmen-Shannon/flip/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing of the scene
// pass. WebGPU guarantees support for 1 (off) and 4.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4x multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4
)

// ErrSkipFrame is returned by BeginFrame and DrawMessage when there is nothing to draw into, for
// example while the window is minimized. Callers drop the frame without treating it as a fault.
var ErrSkipFrame = errors.New("renderer: surface unavailable, frame skipped")

const (
	// hdrFormat is the format of the scene and bloom attachments.
	hdrFormat = wgpu.TextureFormatRGBA16Float
	// depthFormat is the format of the scene depth attachment.
	depthFormat = wgpu.TextureFormatDepth24Plus
)

// RendererBackend is the top-level backend interface for the Renderer.
// It embeds the concrete backend interface for the selected GPU API.
type RendererBackend interface {
	wgpuRendererBackend
}

// targetFormat resolves the color format and sample count a pipeline target renders with.
//
// Parameters:
//   - target: the pipeline target kind
//   - surface: the configured swap chain format
//   - msaa: the scene sample count
//
// Returns:
//   - wgpu.TextureFormat: the color attachment format
//   - uint32: the sample count
func targetFormat(target pipeline.Target, surface wgpu.TextureFormat, msaa MSAASampleCount) (wgpu.TextureFormat, uint32) {
	switch target {
	case pipeline.TargetScene:
		return hdrFormat, uint32(max(msaa, MSAAOff))
	case pipeline.TargetHDR:
		return hdrFormat, 1
	default:
		return surface, 1
	}
}

// isSRGBFormat reports whether writes to the format are encoded to sRGB by the hardware.
func isSRGBFormat(f wgpu.TextureFormat) bool {
	switch f {
	case wgpu.TextureFormatRGBA8UnormSrgb, wgpu.TextureFormatBGRA8UnormSrgb:
		return true
	}
	return false
}

// bloomSize returns the extent of the half resolution bloom targets, never below one texel.
func bloomSize(width, height uint32) (uint32, uint32) {
	return max(width/2, 1), max(height/2, 1)
}
