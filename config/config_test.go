package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/flip/coin"
	"github.com/Carmen-Shannon/flip/common"
	"github.com/Carmen-Shannon/flip/engine/light"
	"github.com/Carmen-Shannon/flip/engine/renderer"
	"github.com/Carmen-Shannon/flip/engine/renderer/postfx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesScene(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	assert.Equal(t, 1280, c.Window.Width)
	assert.Equal(t, [3]float32{0, 0, 8}, c.Camera.Position)
	assert.Equal(t, float32(40), c.Camera.Fov)
	assert.Equal(t, renderer.MSAA4x, c.MSAA())
	assert.Equal(t, [3]float32{}, c.ClearColor())

	mode, err := c.PresentMode()
	require.NoError(t, err)
	assert.Equal(t, renderer.PresentModeVSync, mode)

	want := postfx.DefaultSettings()
	assert.Equal(t, want, c.PostSettings())

	assert.Equal(t, 2, c.Animation.MinFlips)
	assert.Equal(t, 4, c.Animation.MaxFlips)
	assert.InDelta(t, 0.075*3.14159265, c.Animation.Wobble.Max, 1e-6)
	assert.Equal(t, "/FLIP/", c.Build.BasePath)
	assert.Equal(t, "dist", c.Build.OutDir)
}

func TestLightRig(t *testing.T) {
	rig := Default().LightRig()
	require.Len(t, rig, 4)

	key := rig[0]
	assert.Equal(t, light.LightTypeDirectional, key.Type())
	assert.Equal(t, float32(2), key.Intensity())
	assert.Equal(t, common.MustHexToLinear("#FFF5E1"), key.Color())
	d := key.Direction()
	assert.InDelta(t, 0.57735, d[0], 1e-4)
	assert.InDelta(t, 0.57735, d[1], 1e-4)

	ambient := rig[3]
	assert.Equal(t, light.LightTypeAmbient, ambient.Type())
	assert.InDelta(t, 0.4, ambient.Intensity(), 1e-6)
}

func TestBoundsMatchSequencerDefaults(t *testing.T) {
	b := Default().Bounds()
	require.NoError(t, b.Validate())

	want := coin.DefaultBounds()
	assert.InDelta(t, want.Wobble[0], b.Wobble[0], 1e-6)
	assert.InDelta(t, want.Wobble[1], b.Wobble[1], 1e-6)
	b.Wobble = want.Wobble
	assert.Equal(t, want, b)
}

func TestParseOverlaysDefaults(t *testing.T) {
	c, err := Parse([]byte(`
render:
  exposure: 2
  present_mode: uncapped
postfx:
  vignette:
    darkness: 0.8
lights:
  directional:
    - position: [0, 1, 0]
      intensity: 3
      color: "#FFFFFF"
`))
	require.NoError(t, err)

	assert.Equal(t, float32(2), c.PostSettings().Exposure)
	assert.Equal(t, float32(0.8), c.PostFX.Vignette.Darkness)
	// siblings of overridden keys keep their defaults
	assert.Equal(t, float32(0.5), c.PostFX.Vignette.Offset)
	assert.True(t, c.PostFX.Vignette.Enabled)
	assert.Equal(t, 1280, c.Window.Width)
	assert.Len(t, c.LightRig(), 2)

	mode, err := c.PresentMode()
	require.NoError(t, err)
	assert.Equal(t, renderer.PresentModeUncapped, mode)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		yaml   string
		substr string
	}{
		{"window width", "window: {width: 0}", "window.width"},
		{"msaa", "render: {msaa: 2}", "render.msaa"},
		{"present mode", "render: {present_mode: mailbox}", "render.present_mode"},
		{"clear color", `render: {clear_color: "gold"}`, "render.clear_color"},
		{"far before near", "camera: {near: 5, far: 1}", "camera.far"},
		{"too many lights", "lights: {directional: [{position: [1,0,0], color: '#fff'}, {position: [1,0,0], color: '#fff'}, {position: [1,0,0], color: '#fff'}, {position: [1,0,0], color: '#fff'}, {position: [1,0,0], color: '#fff'}]}", "lights.directional"},
		{"light color", `lights: {directional: [{position: [1,0,0], color: "nope"}]}`, "lights.directional[0].color"},
		{"env blur", "environment: {blur: 1.5}", "environment.blur"},
		{"postfx", "postfx: {noise: {opacity: 2}}", "postfx.noise.opacity"},
		{"exposure", "render: {exposure: 0}", "postfx.exposure"},
		{"flip bounds", "animation: {min_flips: 5}", "animation.max_flips"},
		{"axis bias", "animation: {y_axis_bias: 1.2}", "animation.y_axis_bias"},
		{"delay", "animation: {cycle_delay: {min: 2, max: 1}}", "animation.cycle_delay.max"},
		{"base path", "build: {base_path: FLIP}", "build.base_path"},
		{"out dir", "build: {out_dir: ../dist}", "build.out_dir"},
		{"malformed", "window: [", "failed to parse config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.substr)
		})
	}
}

func TestLoad(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config")

	path := filepath.Join(t.TempDir(), "flip.yaml")
	require.NoError(t, os.WriteFile(path, []byte("window: {title: Coin}\n"), 0o644))
	c, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Coin", c.Window.Title)
}

func TestWatchReloadsValidChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flip.yaml")
	require.NoError(t, os.WriteFile(path, []byte("render: {exposure: 1}\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *Config, 16)
	require.NoError(t, Watch(ctx, path, func(c *Config) { changes <- c }))

	// an invalid file is ignored
	require.NoError(t, os.WriteFile(path, []byte("render: {exposure: -1}\n"), 0o644))
	// an unrelated file in the same directory is ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("render: {exposure: 3}\n"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("render: {exposure: 2}\n"), 0o644))

	select {
	case c := <-changes:
		assert.Equal(t, float32(2), c.Render.Exposure)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after a valid write")
	}
}
