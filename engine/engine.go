package engine

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/flip/engine/profiler"
	"github.com/Carmen-Shannon/flip/engine/renderer"
	"github.com/Carmen-Shannon/flip/engine/scene"
	"github.com/Carmen-Shannon/flip/engine/window"
	"github.com/Carmen-Shannon/flip/fallback"
)

// LoadingMessage is shown while any active scene has not finished uploading.
const LoadingMessage = "Loading..."

// engine implements the Engine interface.
// Coordinates the render goroutine and the window's message loop.
type engine struct {
	mu *sync.Mutex

	running bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window window.Window

	profiler         *profiler.Profiler
	profilingEnabled bool

	updateCallback   func(deltaTime float32) error
	shutdownCallback func()

	scenes map[int]scene.Scene

	boundary       fallback.Boundary
	overlayFailed  bool
	loadingMessage string

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
}

// Engine is the main entry point for the engine.
// It runs the frame loop on its render goroutine: the update hook first, then every active scene,
// both guarded by an error boundary. Once the boundary trips, frames show its message instead.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Boundary returns the error boundary guarding each frame.
	Boundary() fallback.Boundary

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetUpdateCallback registers the function called at the start of each frame, before any scene is drawn.
	// Use this for animation and for applying state handed over by other goroutines.
	// A returned error trips the boundary.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetUpdateCallback(callback func(deltaTime float32) error)

	// SetShutdownCallback registers the function called once after the render goroutine has exited and
	// before GPU resources are released.
	//
	// Parameters:
	//   - callback: the shutdown hook
	SetShutdownCallback(callback func())

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// AddScene registers a scene at the given z-index key.
	// Scenes are rendered in ascending key order during the render loop.
	//
	// Parameters:
	//   - key: the z-index determining render order (lower renders first)
	//   - s: the Scene to register
	AddScene(key int, s scene.Scene)

	// RemoveScene removes the scene at the given z-index key.
	//
	// Parameters:
	//   - key: the z-index of the scene to remove
	RemoveScene(key int)

	// Scene retrieves the scene registered at the given z-index key.
	// Returns nil if no scene exists at that key.
	//
	// Parameters:
	//   - key: the z-index of the scene to retrieve
	//
	// Returns:
	//   - scene.Scene: the scene at the key, or nil if not found
	Scene(key int) scene.Scene

	// Scenes returns a copy of all registered scenes keyed by z-index.
	//
	// Returns:
	//   - map[int]scene.Scene: a copy of the scenes map
	Scenes() map[int]scene.Scene

	// Run starts the render goroutine and pumps window messages until the window closes, then shuts
	// the engine down. Must be called from the main goroutine.
	Run()

	// Quit signals the engine to stop and asks the window to close.
	// Safe to call multiple times and from any goroutine; subsequent calls are no-ops.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine instance with the provided options.
// Options are applied directly to the engine struct via the option-builder pattern.
//
// Parameters:
//   - options: functional options for engine configuration (window, scenes, profiling, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		mu:             &sync.Mutex{},
		quitChannel:    make(chan struct{}),
		scenes:         make(map[int]scene.Scene),
		wg:             sync.WaitGroup{},
		profiler:       profiler.NewProfiler(),
		loadingMessage: LoadingMessage,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.boundary == nil {
		e.boundary = fallback.NewBoundary()
	}

	if e.window != nil {
		e.window.SetResizeCallback(func(width, height int) {
			for _, s := range e.Scenes() {
				s.Resize(width, height)
			}
		})
		e.window.SetCloseCallback(e.signalQuit)
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Boundary() fallback.Boundary {
	return e.boundary
}

func (e *engine) Run() {
	if e.window == nil {
		panic("engine: Run requires a window")
	}
	e.running = true
	e.handle()
	e.window.ProcessMessages()

	e.signalQuit()
	e.wg.Wait()
	e.shutdown()
	_ = e.window.Close()
}

// Quit signals the render goroutine to stop and asks the window to close.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
	if e.window != nil {
		e.window.RequestClose()
	}
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running = false
		close(e.quitChannel)
	})
}

// handle launches the render goroutine, tracked by the engine's WaitGroup.
func (e *engine) handle() {
	e.wg.Add(1)
	go e.handleRender()
}

// handleRender runs the uncapped (or frame-limited) render loop in its own goroutine until the quit
// channel is closed.
func (e *engine) handleRender() {
	defer e.wg.Done()

	lastRender := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
			now := time.Now()
			dt := float32(now.Sub(lastRender).Seconds())
			lastRender = now

			e.frame(dt)

			if e.profilingEnabled && e.profiler != nil {
				e.profiler.Tick()
			}

			// Frame rate limiting
			if e.renderFrameLimit > 0 {
				elapsed := time.Since(lastRender)
				if remaining := e.renderFrameLimit - elapsed; remaining > 0 {
					time.Sleep(remaining)
				}
			}
		}
	}
}

// frame runs one display frame: the update hook, then every active scene in ascending z-index order
// inside a single BeginFrame/EndFrame pair of the first active scene's renderer.
// While any active scene is still loading the loading message is drawn instead of the scenes.
// Once the boundary has tripped only the fallback message is drawn.
func (e *engine) frame(dt float32) {
	if e.boundary.Tripped() {
		e.drawFallback()
		return
	}

	err := e.boundary.Guard(func() error {
		if e.updateCallback != nil {
			if err := e.updateCallback(dt); err != nil {
				return fmt.Errorf("failed to update frame: %w", err)
			}
		}

		active := e.activeScenes()
		if len(active) == 0 {
			return nil
		}
		frameRenderer := active[0].Renderer()

		for _, s := range active {
			if !s.Ready() {
				return drawMessage(frameRenderer, e.loadingMessage)
			}
		}

		if err := frameRenderer.BeginFrame(); err != nil {
			if errors.Is(err, renderer.ErrSkipFrame) {
				return nil
			}
			return fmt.Errorf("failed to begin frame: %w", err)
		}
		for _, s := range active {
			if err := s.Draw(); err != nil {
				return fmt.Errorf("failed to draw scene %q: %w", s.Name(), err)
			}
		}
		if err := frameRenderer.EndFrame(); err != nil {
			return fmt.Errorf("failed to end frame: %w", err)
		}
		frameRenderer.Present()
		return nil
	})
	if err != nil {
		e.drawFallback()
	}
}

// drawFallback replaces the frame with the boundary's message. If the overlay itself fails the
// message goes to the log and the window title once, and later frames draw nothing.
func (e *engine) drawFallback() {
	if e.overlayFailed {
		return
	}
	msg := e.boundary.Message()

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		active := e.activeScenes()
		if len(active) == 0 {
			return errors.New("no active scene to draw into")
		}
		return drawMessage(active[0].Renderer(), msg)
	}()
	if err == nil {
		return
	}

	e.overlayFailed = true
	log.Printf("failed to draw fallback overlay: %v", err)
	log.Print(msg)
	if e.window != nil {
		e.window.SetTitle(strings.ReplaceAll(msg, "\n", " "))
	}
}

// drawMessage draws text as a full frame and presents it. A skipped frame is not an error.
func drawMessage(r renderer.Renderer, text string) error {
	if err := r.DrawMessage(text); err != nil {
		if errors.Is(err, renderer.ErrSkipFrame) {
			return nil
		}
		return fmt.Errorf("failed to draw message: %w", err)
	}
	r.Present()
	return nil
}

// activeScenes returns the active scenes in ascending z-index order.
func (e *engine) activeScenes() []scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()

	keys := make([]int, 0, len(e.scenes))
	for k := range e.scenes {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	var active []scene.Scene
	for _, k := range keys {
		if s := e.scenes[k]; s.Active() {
			active = append(active, s)
		}
	}
	return active
}

// shutdown runs the shutdown hook and releases every scene, then every distinct renderer.
func (e *engine) shutdown() {
	if e.shutdownCallback != nil {
		e.shutdownCallback()
	}

	released := make(map[renderer.Renderer]bool)
	for _, s := range e.Scenes() {
		s.Release()
		if r := s.Renderer(); r != nil && !released[r] {
			released[r] = true
			r.Release()
		}
	}
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) SetUpdateCallback(callback func(deltaTime float32) error) {
	e.updateCallback = callback
}

func (e *engine) SetShutdownCallback(callback func()) {
	e.shutdownCallback = callback
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) AddScene(key int, s scene.Scene) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scenes[key] = s
}

func (e *engine) RemoveScene(key int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.scenes, key)
}

func (e *engine) Scene(key int) scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scenes[key]
}

func (e *engine) Scenes() map[int]scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	cp := make(map[int]scene.Scene, len(e.scenes))
	for k, v := range e.scenes {
		cp[k] = v
	}
	return cp
}
