package engine

import (
	"time"

	"github.com/Carmen-Shannon/flip/engine/profiler"
	"github.com/Carmen-Shannon/flip/engine/scene"
	"github.com/Carmen-Shannon/flip/engine/window"
	"github.com/Carmen-Shannon/flip/fallback"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfiler replaces the default profiler.
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithWindow sets the window the engine pumps messages for and closes on shutdown.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithScene registers a scene at the given z-index key during engine construction.
// Scenes are rendered in ascending key order during the render loop.
//
// Parameters:
//   - key: the z-index determining render order (lower renders first)
//   - s: the Scene to register
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScene(key int, s scene.Scene) EngineBuilderOption {
	return func(e *engine) {
		e.scenes[key] = s
	}
}

// WithUpdateCallback registers the per-frame update hook.
//
// Parameters:
//   - callback: function receiving the delta time in seconds, a returned error trips the boundary
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithUpdateCallback(callback func(deltaTime float32) error) EngineBuilderOption {
	return func(e *engine) {
		e.updateCallback = callback
	}
}

// WithShutdownCallback registers the hook run after the render goroutine exits.
func WithShutdownCallback(callback func()) EngineBuilderOption {
	return func(e *engine) {
		e.shutdownCallback = callback
	}
}

// WithBoundary sets the error boundary guarding each frame. A default boundary logging through
// log.Printf is created otherwise.
func WithBoundary(b fallback.Boundary) EngineBuilderOption {
	return func(e *engine) {
		e.boundary = b
	}
}

// WithLoadingMessage replaces the text shown while scenes are uploading.
func WithLoadingMessage(text string) EngineBuilderOption {
	return func(e *engine) {
		e.loadingMessage = text
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per second.
// Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.renderFrameLimit = 0
			return
		}
		e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
	}
}
