package renderer

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/flip/common"
	"github.com/Carmen-Shannon/flip/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/flip/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/flip/engine/renderer/postfx"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend records calls without touching a GPU.
type fakeBackend struct {
	registered  []string
	registerErr error
	draws       []string
	endSettings []postfx.Settings
	endTimes    []float32
	messages    []string
	released    bool
}

var _ RendererBackend = &fakeBackend{}

func (f *fakeBackend) ConfigureSurface(width, height int) {}
func (f *fakeBackend) SetPresentMode(mode PresentMode)    {}
func (f *fakeBackend) SetClearColor(c [3]float32)         {}
func (f *fakeBackend) Size() (uint32, uint32)             { return 0, 0 }
func (f *fakeBackend) RegisterRenderPipeline(p pipeline.Pipeline) error {
	if f.registerErr != nil {
		return f.registerErr
	}
	f.registered = append(f.registered, p.PipelineKey())
	return nil
}
func (f *fakeBackend) InitMeshBuffers(bind_group_provider.BindGroupProvider, []byte, []byte, int) error {
	return nil
}
func (f *fakeBackend) InitBindGroup(bind_group_provider.BindGroupProvider, wgpu.BindGroupLayoutDescriptor, map[int]uint64) error {
	return nil
}
func (f *fakeBackend) InitTextureView(bind_group_provider.BindGroupProvider, int, common.TextureStagingData) error {
	return nil
}
func (f *fakeBackend) InitSampler(bind_group_provider.BindGroupProvider, int, common.SamplerStagingData) error {
	return nil
}
func (f *fakeBackend) WriteBuffers([]bind_group_provider.BufferWrite) {}
func (f *fakeBackend) BeginFrame() error                              { return nil }
func (f *fakeBackend) DrawCall(p pipeline.Pipeline, _ bind_group_provider.BindGroupProvider, _ []bind_group_provider.BindGroupProvider) {
	f.draws = append(f.draws, p.PipelineKey())
}
func (f *fakeBackend) EndFrame(settings postfx.Settings, time float32) error {
	f.endSettings = append(f.endSettings, settings)
	f.endTimes = append(f.endTimes, time)
	return nil
}
func (f *fakeBackend) DrawMessage(text string) error {
	f.messages = append(f.messages, text)
	return nil
}
func (f *fakeBackend) Present() {}
func (f *fakeBackend) Release() { f.released = true }

func newTestRenderer(b RendererBackend) *renderer {
	return &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		backend:       b,
		post:          postfx.DefaultSettings(),
		start:         time.Now(),
	}
}

func TestRegisterPipelinesSkipsKnownKeys(t *testing.T) {
	fb := &fakeBackend{}
	r := newTestRenderer(fb)

	require.NoError(t, r.RegisterPipelines(
		pipeline.NewPipeline("scene", pipeline.TargetScene),
		pipeline.NewPipeline("scene_transparent", pipeline.TargetScene, pipeline.WithTransparent()),
	))
	require.NoError(t, r.RegisterPipelines(pipeline.NewPipeline("scene", pipeline.TargetScene)))

	assert.Equal(t, []string{"scene", "scene_transparent"}, fb.registered)
	assert.Len(t, r.Pipelines(), 2)
	assert.NotNil(t, r.Pipeline("scene"))
	assert.Nil(t, r.Pipeline("missing"))
}

func TestRegisterPipelinesWrapsBackendError(t *testing.T) {
	fb := &fakeBackend{registerErr: errors.New("boom")}
	r := newTestRenderer(fb)

	err := r.RegisterPipelines(pipeline.NewPipeline("scene", pipeline.TargetScene))
	require.Error(t, err)
	assert.ErrorIs(t, err, fb.registerErr)
	assert.Contains(t, err.Error(), `"scene"`)
	assert.Empty(t, r.Pipelines())
}

func TestDrawCallRequiresRegisteredPipeline(t *testing.T) {
	fb := &fakeBackend{}
	r := newTestRenderer(fb)
	mesh := bind_group_provider.NewBindGroupProvider("mesh")

	err := r.DrawCall("scene", mesh, nil)
	require.Error(t, err)
	assert.Empty(t, fb.draws)

	require.NoError(t, r.RegisterPipelines(pipeline.NewPipeline("scene", pipeline.TargetScene)))
	require.NoError(t, r.DrawCall("scene", mesh, nil))
	assert.Equal(t, []string{"scene"}, fb.draws)
}

func TestEndFramePassesPostSettings(t *testing.T) {
	fb := &fakeBackend{}
	r := newTestRenderer(fb)

	custom := postfx.DefaultSettings()
	custom.Exposure = 2
	require.NoError(t, r.SetPostSettings(custom))
	require.NoError(t, r.EndFrame())

	require.Len(t, fb.endSettings, 1)
	assert.Equal(t, float32(2), fb.endSettings[0].Exposure)
	assert.GreaterOrEqual(t, fb.endTimes[0], float32(0))
}

func TestSetPostSettingsKeepsCurrentOnInvalid(t *testing.T) {
	r := newTestRenderer(&fakeBackend{})

	bad := postfx.DefaultSettings()
	bad.Exposure = 0
	assert.Error(t, r.SetPostSettings(bad))
	assert.Equal(t, postfx.DefaultSettings(), r.PostSettings())
}

func TestWithPostSettingsIgnoresInvalid(t *testing.T) {
	r := newTestRenderer(&fakeBackend{})
	bad := postfx.DefaultSettings()
	bad.Bloom.Passes = 0
	WithPostSettings(bad)(r)
	assert.Equal(t, postfx.DefaultSettings(), r.PostSettings())

	good := postfx.DefaultSettings()
	good.Noise.Enabled = false
	WithPostSettings(good)(r)
	assert.False(t, r.PostSettings().Noise.Enabled)
}

func TestDrawMessageAndRelease(t *testing.T) {
	fb := &fakeBackend{}
	r := newTestRenderer(fb)
	require.NoError(t, r.RegisterPipelines(pipeline.NewPipeline("scene", pipeline.TargetScene)))

	require.NoError(t, r.DrawMessage("Loading..."))
	assert.Equal(t, []string{"Loading..."}, fb.messages)

	r.Release()
	assert.True(t, fb.released)
	assert.Empty(t, r.Pipelines())
}

func TestRasterizeText(t *testing.T) {
	hasInk := func(t *testing.T, text string) (int, int) {
		t.Helper()
		img := RasterizeText(text)
		b := img.Bounds()
		ink := false
		for y := b.Min.Y; y < b.Max.Y && !ink; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				if img.RGBAAt(x, y).A > 0 {
					ink = true
					break
				}
			}
		}
		assert.True(t, ink, "expected glyph coverage for %q", text)
		return b.Dx(), b.Dy()
	}

	w1, h1 := hasInk(t, "Something went wrong:")
	w2, h2 := hasInk(t, "Something went wrong:\nboom")
	assert.Equal(t, w1, w2, "the widest line sets the width")
	assert.Greater(t, h2, h1)
	assert.Zero(t, w1%overlayScale)

	empty := RasterizeText("")
	assert.GreaterOrEqual(t, empty.Bounds().Dx(), 1)
	assert.GreaterOrEqual(t, empty.Bounds().Dy(), 1)

	long := RasterizeText(strings.Repeat("x", 10))
	short := RasterizeText("x")
	assert.Greater(t, long.Bounds().Dx(), short.Bounds().Dx())
}

func TestOverlayRect(t *testing.T) {
	tests := []struct {
		name           string
		tw, th, sw, sh uint32
		want           [4]float32
	}{
		{name: "centered unscaled", tw: 200, th: 50, sw: 800, sh: 600, want: [4]float32{0, 0, 0.25, 50.0 / 600.0}},
		{name: "wider than surface shrinks", tw: 1000, th: 100, sw: 500, sh: 500, want: [4]float32{0, 0, 0.95, 0.2 * 0.95 / 2}},
		{name: "zero surface", tw: 10, th: 10, sw: 0, sh: 0, want: [4]float32{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OverlayRect(tt.tw, tt.th, tt.sw, tt.sh)
			for i := range got {
				assert.InDelta(t, tt.want[i], got[i], 1e-6)
			}
		})
	}
}

func TestTargetFormat(t *testing.T) {
	surface := wgpu.TextureFormatBGRA8Unorm

	f, s := targetFormat(pipeline.TargetScene, surface, MSAA4x)
	assert.Equal(t, hdrFormat, f)
	assert.Equal(t, uint32(4), s)

	_, s = targetFormat(pipeline.TargetScene, surface, 0)
	assert.Equal(t, uint32(1), s)

	f, s = targetFormat(pipeline.TargetHDR, surface, MSAA4x)
	assert.Equal(t, hdrFormat, f)
	assert.Equal(t, uint32(1), s)

	f, s = targetFormat(pipeline.TargetSurface, surface, MSAA4x)
	assert.Equal(t, surface, f)
	assert.Equal(t, uint32(1), s)
}

func TestIsSRGBFormat(t *testing.T) {
	assert.True(t, isSRGBFormat(wgpu.TextureFormatBGRA8UnormSrgb))
	assert.True(t, isSRGBFormat(wgpu.TextureFormatRGBA8UnormSrgb))
	assert.False(t, isSRGBFormat(wgpu.TextureFormatBGRA8Unorm))
	assert.False(t, isSRGBFormat(hdrFormat))
}

func TestBloomSize(t *testing.T) {
	w, h := bloomSize(1920, 1080)
	assert.Equal(t, uint32(960), w)
	assert.Equal(t, uint32(540), h)

	w, h = bloomSize(1, 0)
	assert.Equal(t, uint32(1), w)
	assert.Equal(t, uint32(1), h)
}
