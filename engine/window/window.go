package window

import (
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/cogentcore/webgpu/wgpu"
)

// Window provides the platform window the scene is presented in.
// Wraps platform-specific window implementations with a common interface.
type Window interface {
	// SetUpdateCallback sets the function called each message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetCloseCallback sets the function called once when the user closes the window or
	// presses Escape.
	SetCloseCallback(callback func())

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning returns true if the window is still active.
	IsRunning() bool

	// RequestClose asks the message loop to stop after its current iteration. Safe to call from any
	// goroutine; the window itself is destroyed by Close.
	RequestClose()

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// ProcessMessages runs the window message loop.
	// Blocks until the window is closed. Calls OnUpdate callback each iteration.
	ProcessMessages()

	// Width returns the current framebuffer width in pixels.
	Width() int

	// Height returns the current framebuffer height in pixels.
	Height() int

	// PixelRatio returns the device pixel ratio, framebuffer width over window width, clamped
	// to [1, max pixel ratio].
	PixelRatio() float32

	// Title returns the current window title.
	Title() string

	// SetTitle changes the window title. Safe to call from any goroutine; the change is applied
	// by the message loop.
	//
	// Parameters:
	//   - title: the new title text
	SetTitle(title string)
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, GLFW state, and event callbacks.
type engineWindow struct {
	// title is the window title displayed in the title bar.
	title string

	// pendingTitle carries SetTitle calls from other goroutines to the message loop.
	pendingTitle chan string

	// maxWidth is the maximum allowed window width during resize.
	maxWidth int

	// maxHeight is the maximum allowed window height during resize.
	maxHeight int

	// minWidth is the minimum allowed window width during resize.
	minWidth int

	// minHeight is the minimum allowed window height during resize.
	minHeight int

	// width is the current framebuffer width in pixels.
	width int

	// height is the current framebuffer height in pixels.
	height int

	// windowWidth is the current window width in screen coordinates.
	windowWidth int

	// maxPixelRatio caps the reported device pixel ratio.
	maxPixelRatio float32

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	// onUpdate is called each iteration of the message loop (if set).
	onUpdate func()

	// onResize is called when the framebuffer is resized.
	onResize func(width, height int)

	// onClose is called once when the window is asked to close.
	onClose func()

	closeRequested atomic.Bool
}

var _ Window = &engineWindow{}

// NewWindow creates a new Window with the specified options.
// Applies default values first, then each option in order.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the configured window, already shown
func NewWindow(options ...WindowBuilderOption) Window {
	w := &engineWindow{
		title:         "Flip",
		pendingTitle:  make(chan string, 1),
		maxWidth:      3840,
		maxHeight:     2160,
		minWidth:      320,
		minHeight:     240,
		width:         1280,
		height:        720,
		maxPixelRatio: 2,
	}
	for _, opt := range options {
		opt(w)
	}
	w.windowWidth = w.width
	if err := newPlatformWindow(w); err != nil {
		panic(fmt.Sprintf("window: failed to create platform window: %v", err))
	}
	return w
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetCloseCallback(callback func()) {
	w.onClose = callback
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) RequestClose() {
	w.closeRequested.Store(true)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() && !w.closeRequested.Load() {
		select {
		case title := <-w.pendingTitle:
			w.title = title
			platformSetTitle(w, title)
		default:
		}

		if succ := platformProcessMessages(w); !succ {
			break
		}

		if w.onUpdate != nil {
			w.onUpdate()
		}

		runtime.Gosched()
	}
	if w.onClose != nil {
		w.onClose()
	}
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}

func (w *engineWindow) PixelRatio() float32 {
	return ClampPixelRatio(w.width, w.windowWidth, w.maxPixelRatio)
}

func (w *engineWindow) Title() string {
	return w.title
}

func (w *engineWindow) SetTitle(title string) {
	// keep only the latest title
	select {
	case <-w.pendingTitle:
	default:
	}
	w.pendingTitle <- title
}

// ClampPixelRatio computes the device pixel ratio from the framebuffer and window widths and
// clamps it to [1, maxRatio]. A zero window width reports 1.
//
// Parameters:
//   - framebufferWidth: the framebuffer width in pixels
//   - windowWidth: the window width in screen coordinates
//   - maxRatio: the upper bound, values below 1 are treated as 1
//
// Returns:
//   - float32: the clamped ratio
func ClampPixelRatio(framebufferWidth, windowWidth int, maxRatio float32) float32 {
	if windowWidth <= 0 || framebufferWidth <= 0 {
		return 1
	}
	ratio := float32(framebufferWidth) / float32(windowWidth)
	return min(max(ratio, 1), max(maxRatio, 1))
}
