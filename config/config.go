package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/flip/coin"
	"github.com/Carmen-Shannon/flip/common"
	"github.com/Carmen-Shannon/flip/engine/light"
	"github.com/Carmen-Shannon/flip/engine/renderer"
	"github.com/Carmen-Shannon/flip/engine/renderer/postfx"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Config is the look and behavior of the coin scene.
//
// Config file: any YAML file passed with -config, layered over the embedded default.yaml.
type Config struct {
	Window      WindowConfig      `yaml:"window"`
	Render      RenderConfig      `yaml:"render"`
	Camera      CameraConfig      `yaml:"camera"`
	Lights      LightsConfig      `yaml:"lights"`
	Environment EnvironmentConfig `yaml:"environment"`
	PostFX      postfx.Settings   `yaml:"postfx"`
	Animation   AnimationConfig   `yaml:"animation"`
	Audio       AudioConfig       `yaml:"audio"`
	Build       BuildConfig       `yaml:"build"`
}

// WindowConfig sizes the window. Width and Height are in screen coordinates.
type WindowConfig struct {
	Title         string  `yaml:"title"`
	Width         int     `yaml:"width"`
	Height        int     `yaml:"height"`
	MaxPixelRatio float32 `yaml:"max_pixel_ratio"`
}

// RenderConfig holds the renderer settings that are not part of the post chain.
type RenderConfig struct {
	MSAA        int     `yaml:"msaa"`         // 1 or 4
	PresentMode string  `yaml:"present_mode"` // vsync or uncapped
	Exposure    float32 `yaml:"exposure"`
	ClearColor  string  `yaml:"clear_color"`
	FrameLimit  float64 `yaml:"frame_limit"` // frames per second, 0 = uncapped
}

// CameraConfig places the perspective camera. Fov is the vertical field of view in degrees.
type CameraConfig struct {
	Position [3]float32 `yaml:"position"`
	Target   [3]float32 `yaml:"target"`
	Fov      float32    `yaml:"fov"`
	Near     float32    `yaml:"near"`
	Far      float32    `yaml:"far"`
}

// DirectionalLightConfig is a light shining from Position toward the origin.
type DirectionalLightConfig struct {
	Position  [3]float32 `yaml:"position"`
	Intensity float32    `yaml:"intensity"`
	Color     string     `yaml:"color"`
}

// AmbientLightConfig is the constant light term.
type AmbientLightConfig struct {
	Intensity float32 `yaml:"intensity"`
	Color     string  `yaml:"color"`
}

// LightsConfig is the light rig.
type LightsConfig struct {
	Directional []DirectionalLightConfig `yaml:"directional"`
	Ambient     AmbientLightConfig       `yaml:"ambient"`
}

// EnvironmentConfig sizes and blurs the studio environment map.
type EnvironmentConfig struct {
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	Blur      float32 `yaml:"blur"`
	RoughBlur float32 `yaml:"rough_blur"`
	Intensity float32 `yaml:"intensity"`
}

// Range is a closed interval.
type Range struct {
	Min float32 `yaml:"min"`
	Max float32 `yaml:"max"`
}

// SpinConfig is the per-frame rotation of the spiral groups in radians.
type SpinConfig struct {
	Y float32 `yaml:"y"`
	X float32 `yaml:"x"`
}

// AnimationConfig bounds the randomized cycle parameters.
type AnimationConfig struct {
	MinFlips     int        `yaml:"min_flips"`
	MaxFlips     int        `yaml:"max_flips"`
	YAxisBias    float32    `yaml:"y_axis_bias"`
	FlipDuration Range      `yaml:"flip_duration"` // seconds
	JumpHeight   Range      `yaml:"jump_height"`
	Wobble       Range      `yaml:"wobble"`      // radians
	CycleDelay   Range      `yaml:"cycle_delay"` // seconds
	Spin         SpinConfig `yaml:"spin"`
}

// AudioConfig configures the landing chime. Volume is in powers of two, 0 is unchanged.
type AudioConfig struct {
	Enabled    bool    `yaml:"enabled"`
	Volume     float64 `yaml:"volume"`
	Frequency  float64 `yaml:"frequency"`
	SampleRate int     `yaml:"sample_rate"`
}

// BuildConfig carries the static site settings of the web build. Validated, unused at runtime.
type BuildConfig struct {
	BasePath string `yaml:"base_path"`
	OutDir   string `yaml:"out_dir"`
}

// Default returns the embedded configuration.
//
// Returns:
//   - *Config: the default configuration
func Default() *Config {
	var c Config
	if err := yaml.Unmarshal(defaultYAML, &c); err != nil {
		panic(fmt.Sprintf("config: failed to parse embedded default.yaml: %v", err))
	}
	return &c
}

// Load reads a YAML file over the defaults and validates the result. An empty path returns the
// defaults.
//
// Parameters:
//   - path: the config file path, may be empty
//
// Returns:
//   - *Config: the loaded configuration
//   - error: an error if the file cannot be read, parsed or validated
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes YAML over the defaults and validates the result.
//
// Parameters:
//   - data: the YAML document
//
// Returns:
//   - *Config: the parsed configuration
//   - error: an error if the document is malformed or out of range
func Parse(data []byte) (*Config, error) {
	c := Default()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}

// Validate checks every section and reports all offending fields.
//
// Returns:
//   - error: nil if the configuration is usable
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, field string, v any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%s out of range, got %v", field, v))
		}
	}
	checkColor := func(field, hex string) {
		if _, err := common.HexToLinear(hex); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", field, err))
		}
	}
	checkRange := func(field string, r Range, lo float32) {
		check(r.Min >= lo, field+".min", r.Min)
		check(r.Max >= r.Min, field+".max", r.Max)
	}

	check(c.Window.Width > 0, "window.width", c.Window.Width)
	check(c.Window.Height > 0, "window.height", c.Window.Height)
	check(c.Window.MaxPixelRatio >= 1, "window.max_pixel_ratio", c.Window.MaxPixelRatio)

	check(c.Render.MSAA == int(renderer.MSAAOff) || c.Render.MSAA == int(renderer.MSAA4x), "render.msaa", c.Render.MSAA)
	if _, err := c.PresentMode(); err != nil {
		errs = append(errs, err)
	}
	check(c.Render.FrameLimit >= 0, "render.frame_limit", c.Render.FrameLimit)
	checkColor("render.clear_color", c.Render.ClearColor)

	check(c.Camera.Fov > 0 && c.Camera.Fov < 180, "camera.fov", c.Camera.Fov)
	check(c.Camera.Near > 0, "camera.near", c.Camera.Near)
	check(c.Camera.Far > c.Camera.Near, "camera.far", c.Camera.Far)
	check(c.Camera.Position != c.Camera.Target, "camera.position", c.Camera.Position)

	check(len(c.Lights.Directional) <= light.MaxDirectionalLights, "lights.directional", len(c.Lights.Directional))
	for i, l := range c.Lights.Directional {
		field := fmt.Sprintf("lights.directional[%d]", i)
		check(l.Intensity >= 0, field+".intensity", l.Intensity)
		check(l.Position != [3]float32{}, field+".position", l.Position)
		checkColor(field+".color", l.Color)
	}
	check(c.Lights.Ambient.Intensity >= 0, "lights.ambient.intensity", c.Lights.Ambient.Intensity)
	checkColor("lights.ambient.color", c.Lights.Ambient.Color)

	check(c.Environment.Width >= 8, "environment.width", c.Environment.Width)
	check(c.Environment.Height >= 4, "environment.height", c.Environment.Height)
	check(c.Environment.Blur >= 0 && c.Environment.Blur <= 1, "environment.blur", c.Environment.Blur)
	check(c.Environment.RoughBlur >= 0 && c.Environment.RoughBlur <= 1, "environment.rough_blur", c.Environment.RoughBlur)
	check(c.Environment.Intensity >= 0, "environment.intensity", c.Environment.Intensity)

	if err := c.PostSettings().Validate(); err != nil {
		errs = append(errs, err)
	}

	a := c.Animation
	check(a.MinFlips >= 1, "animation.min_flips", a.MinFlips)
	check(a.MaxFlips >= a.MinFlips, "animation.max_flips", a.MaxFlips)
	check(a.YAxisBias >= 0 && a.YAxisBias <= 1, "animation.y_axis_bias", a.YAxisBias)
	checkRange("animation.flip_duration", a.FlipDuration, 0.5)
	checkRange("animation.jump_height", a.JumpHeight, 0)
	check(a.Wobble.Max >= a.Wobble.Min, "animation.wobble.max", a.Wobble.Max)
	checkRange("animation.cycle_delay", a.CycleDelay, 0)

	check(c.Audio.Frequency > 0, "audio.frequency", c.Audio.Frequency)
	check(c.Audio.SampleRate >= 8000, "audio.sample_rate", c.Audio.SampleRate)

	check(strings.HasPrefix(c.Build.BasePath, "/") && strings.HasSuffix(c.Build.BasePath, "/"), "build.base_path", c.Build.BasePath)
	check(filepath.IsLocal(c.Build.OutDir), "build.out_dir", c.Build.OutDir)

	return errors.Join(errs...)
}

// PostSettings returns the post chain with the render exposure applied.
func (c *Config) PostSettings() postfx.Settings {
	s := c.PostFX
	s.Exposure = c.Render.Exposure
	return s
}

// PresentMode maps render.present_mode to the renderer's mode.
//
// Returns:
//   - renderer.PresentMode: the present mode
//   - error: an error if the name is unknown
func (c *Config) PresentMode() (renderer.PresentMode, error) {
	switch strings.ToLower(c.Render.PresentMode) {
	case "vsync", "":
		return renderer.PresentModeVSync, nil
	case "uncapped":
		return renderer.PresentModeUncapped, nil
	}
	return renderer.PresentModeVSync, fmt.Errorf("render.present_mode must be vsync or uncapped, got %q", c.Render.PresentMode)
}

// MSAA returns the scene pass sample count.
func (c *Config) MSAA() renderer.MSAASampleCount {
	return renderer.MSAASampleCount(c.Render.MSAA)
}

// ClearColor returns the background color in linear RGB. Invalid colors are black.
func (c *Config) ClearColor() [3]float32 {
	col, _ := common.HexToLinear(c.Render.ClearColor)
	return col
}

// LightRig builds the directional lights, aimed at the origin, followed by the ambient light.
//
// Returns:
//   - []light.Light: the rig in configuration order
func (c *Config) LightRig() []light.Light {
	rig := make([]light.Light, 0, len(c.Lights.Directional)+1)
	for _, l := range c.Lights.Directional {
		col, _ := common.HexToLinear(l.Color)
		rig = append(rig, light.NewLight(light.LightTypeDirectional,
			light.WithPosition(l.Position[0], l.Position[1], l.Position[2]),
			light.WithTarget(0, 0, 0),
			light.WithColor(col),
			light.WithIntensity(l.Intensity),
		))
	}
	ambient, _ := common.HexToLinear(c.Lights.Ambient.Color)
	rig = append(rig, light.NewLight(light.LightTypeAmbient,
		light.WithColor(ambient),
		light.WithIntensity(c.Lights.Ambient.Intensity),
	))
	return rig
}

// Bounds returns the animation section as sequencer bounds.
func (c *Config) Bounds() coin.Bounds {
	a := c.Animation
	return coin.Bounds{
		MinFlips:     a.MinFlips,
		MaxFlips:     a.MaxFlips,
		YAxisBias:    a.YAxisBias,
		FlipDuration: [2]float32{a.FlipDuration.Min, a.FlipDuration.Max},
		JumpHeight:   [2]float32{a.JumpHeight.Min, a.JumpHeight.Max},
		Wobble:       [2]float32{a.Wobble.Min, a.Wobble.Max},
	}
}
