package engine

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/flip/engine/renderer"
	"github.com/Carmen-Shannon/flip/engine/scene"
	"github.com/Carmen-Shannon/flip/engine/window"
	"github.com/Carmen-Shannon/flip/fallback"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRenderer appends every frame call to a shared event log.
type fakeRenderer struct {
	renderer.Renderer

	log        *[]string
	beginErr   error
	messageErr error
	panicOnMsg bool
	messages   []string
	released   int
}

func (f *fakeRenderer) BeginFrame() error {
	*f.log = append(*f.log, "begin")
	return f.beginErr
}

func (f *fakeRenderer) EndFrame() error {
	*f.log = append(*f.log, "end")
	return nil
}

func (f *fakeRenderer) DrawMessage(text string) error {
	if f.panicOnMsg {
		panic("overlay pipeline missing")
	}
	*f.log = append(*f.log, "message")
	f.messages = append(f.messages, text)
	return f.messageErr
}

func (f *fakeRenderer) Present() { *f.log = append(*f.log, "present") }
func (f *fakeRenderer) Release() { f.released++ }

type fakeScene struct {
	scene.Scene

	name     string
	log      *[]string
	r        *fakeRenderer
	active   bool
	ready    bool
	drawErr  error
	resized  [2]int
	released bool
}

func (f *fakeScene) Name() string                { return f.name }
func (f *fakeScene) Active() bool                { return f.active }
func (f *fakeScene) Ready() bool                 { return f.ready }
func (f *fakeScene) Renderer() renderer.Renderer { return f.r }
func (f *fakeScene) Resize(width, height int)    { f.resized = [2]int{width, height} }
func (f *fakeScene) Release()                    { f.released = true }

func (f *fakeScene) Draw() error {
	*f.log = append(*f.log, "draw:"+f.name)
	return f.drawErr
}

type fakeWindow struct {
	window.Window

	title    string
	onResize func(width, height int)
	onClose  func()
	closeReq bool
}

func (f *fakeWindow) SetResizeCallback(callback func(width, height int)) { f.onResize = callback }
func (f *fakeWindow) SetCloseCallback(callback func())                  { f.onClose = callback }
func (f *fakeWindow) SetTitle(title string)                             { f.title = title }
func (f *fakeWindow) RequestClose()                                     { f.closeReq = true }

func newTestEngine(options ...EngineBuilderOption) (*engine, *[]string, *fakeRenderer) {
	events := &[]string{}
	r := &fakeRenderer{log: events}
	s := &fakeScene{name: "coin", log: events, r: r, active: true, ready: true}
	opts := append([]EngineBuilderOption{
		WithScene(0, s),
		WithBoundary(fallback.NewBoundary(fallback.WithLogger(nil))),
	}, options...)
	return NewEngine(opts...).(*engine), events, r
}

func TestFrameRunsUpdateBeforeRender(t *testing.T) {
	e, events, _ := newTestEngine()
	e.SetUpdateCallback(func(dt float32) error {
		*events = append(*events, "update")
		return nil
	})
	overlay := &fakeScene{name: "overlay", log: events, r: &fakeRenderer{log: events}, active: true, ready: true}
	hidden := &fakeScene{name: "hidden", log: events, active: false, ready: true}
	e.AddScene(5, overlay)
	e.AddScene(-1, hidden)

	e.frame(0.016)

	assert.Equal(t, []string{"update", "begin", "draw:coin", "draw:overlay", "end", "present"}, *events)
	assert.False(t, e.Boundary().Tripped())
}

func TestFrameShowsLoadingUntilReady(t *testing.T) {
	e, events, r := newTestEngine()
	s := e.Scene(0).(*fakeScene)
	s.ready = false

	e.frame(0.016)
	assert.Equal(t, []string{"message", "present"}, *events)
	assert.Equal(t, []string{LoadingMessage}, r.messages)

	*events = nil
	s.ready = true
	e.frame(0.016)
	assert.Equal(t, []string{"begin", "draw:coin", "end", "present"}, *events)
}

func TestFrameSkipsWithoutSurface(t *testing.T) {
	e, events, r := newTestEngine()
	r.beginErr = renderer.ErrSkipFrame

	e.frame(0.016)

	assert.Equal(t, []string{"begin"}, *events)
	assert.False(t, e.Boundary().Tripped())
}

func TestFrameTripsBoundary(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(e *engine, r *fakeRenderer)
		wantErr string
	}{
		{
			name: "update error",
			setup: func(e *engine, _ *fakeRenderer) {
				e.SetUpdateCallback(func(float32) error { return errors.New("sequencer broke") })
			},
			wantErr: "failed to update frame: sequencer broke",
		},
		{
			name: "update panic",
			setup: func(e *engine, _ *fakeRenderer) {
				e.SetUpdateCallback(func(float32) error { panic("nil transform") })
			},
			wantErr: "nil transform",
		},
		{
			name: "draw error",
			setup: func(e *engine, _ *fakeRenderer) {
				e.Scene(0).(*fakeScene).drawErr = errors.New("pipeline missing")
			},
			wantErr: `failed to draw scene "coin": pipeline missing`,
		},
		{
			name: "begin error",
			setup: func(_ *engine, r *fakeRenderer) {
				r.beginErr = errors.New("device lost")
			},
			wantErr: "failed to begin frame: device lost",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, events, r := newTestEngine()
			tt.setup(e, r)

			e.frame(0.016)
			require.True(t, e.Boundary().Tripped())
			assert.Equal(t, tt.wantErr, e.Boundary().Err().Error())
			require.Len(t, r.messages, 1)
			assert.Equal(t, fallback.Heading+"\n"+tt.wantErr, r.messages[0])

			// later frames draw only the fallback
			*events = nil
			e.frame(0.016)
			assert.Equal(t, []string{"message", "present"}, *events)
			assert.Len(t, r.messages, 2)
		})
	}
}

func TestFallbackOverlayFailureUsesTitle(t *testing.T) {
	w := &fakeWindow{}
	e, _, r := newTestEngine(WithWindow(w))
	r.panicOnMsg = true
	e.SetUpdateCallback(func(float32) error { return errors.New("boom") })

	e.frame(0.016)

	assert.True(t, e.overlayFailed)
	assert.Equal(t, fallback.Heading+" failed to update frame: boom", w.title)

	// no further attempts
	w.title = ""
	e.frame(0.016)
	assert.Empty(t, w.title)
}

func TestWindowCallbacks(t *testing.T) {
	w := &fakeWindow{}
	e, _, _ := newTestEngine(WithWindow(w))
	s := e.Scene(0).(*fakeScene)

	require.NotNil(t, w.onResize)
	w.onResize(800, 600)
	assert.Equal(t, [2]int{800, 600}, s.resized)

	require.NotNil(t, w.onClose)
	w.onClose()
	select {
	case <-e.quitChannel:
	default:
		t.Fatal("close callback did not signal quit")
	}

	e.Quit()
	assert.True(t, w.closeReq)
}

func TestShutdownReleasesSharedRendererOnce(t *testing.T) {
	called := false
	e, events, r := newTestEngine(WithShutdownCallback(func() { called = true }))
	second := &fakeScene{name: "second", log: events, r: r, active: true}
	e.AddScene(1, second)

	e.shutdown()

	assert.True(t, called)
	assert.True(t, second.released)
	assert.True(t, e.Scene(0).(*fakeScene).released)
	assert.Equal(t, 1, r.released)
}

func TestSetRenderFrameLimit(t *testing.T) {
	e, _, _ := newTestEngine(WithRenderFrameLimit(50))
	assert.Equal(t, int64(20_000_000), e.renderFrameLimit.Nanoseconds())
	e.SetRenderFrameLimit(0)
	assert.Zero(t, e.renderFrameLimit)
}
