package environment

import (
	"fmt"
	"image"
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/flip/common"
	"github.com/Carmen-Shannon/flip/engine/renderer/bind_group_provider"
	"github.com/anthonynsimon/bild/blur"
	"github.com/cogentcore/webgpu/wgpu"
)

type environmentImpl struct {
	mu *sync.Mutex

	width, height int
	blur          float32
	roughBlur     float32
	intensity     float32

	sharp *image.RGBA
	rough *image.RGBA

	bindGroupProvider bind_group_provider.BindGroupProvider
}

// Environment is an equirectangular studio map used for image based reflections. It carries two
// copies: a lightly blurred one for glossy reflections and a heavily blurred one for rough and
// diffuse lookups. The shader mixes the two by roughness.
type Environment interface {
	// Bake renders the studio and blurs both copies, one task each on the pool. It blocks until
	// both are done and may be called again to rebuild after a settings change.
	//
	// Parameters:
	//   - pool: the worker pool running the blur tasks
	//
	// Returns:
	//   - error: an error if the settings are invalid
	Bake(pool worker.DynamicWorkerPool) error

	// Baked reports whether Bake has completed at least once.
	Baked() bool

	// Sharp returns the glossy copy, nil before Bake.
	Sharp() *image.RGBA

	// Rough returns the diffuse copy, nil before Bake.
	Rough() *image.RGBA

	// Size returns the map resolution in pixels.
	Size() (int, int)

	// Blur returns the glossy blur amount in [0, 1].
	Blur() float32

	// Intensity returns the global multiplier for environment contributions.
	Intensity() float32

	// StagingData returns both copies ready for texture upload as sRGB RGBA8.
	//
	// Returns:
	//   - common.TextureStagingData: the sharp map
	//   - common.TextureStagingData: the rough map
	//   - error: an error if Bake has not run
	StagingData() (common.TextureStagingData, common.TextureStagingData, error)

	// Sampler returns the sampler configuration: repeat around the horizon, clamp at the poles,
	// linear filtering.
	Sampler() common.SamplerStagingData

	// BindGroupProvider returns the provider owning the uploaded textures, or nil.
	BindGroupProvider() bind_group_provider.BindGroupProvider

	// SetBindGroupProvider assigns the provider owning the uploaded textures.
	SetBindGroupProvider(provider bind_group_provider.BindGroupProvider)
}

var _ Environment = &environmentImpl{}

// NewEnvironment creates an unbaked 512x256 studio environment with blur 0.8, then applies options.
//
// Parameters:
//   - options: functional options to configure the environment
//
// Returns:
//   - Environment: the configured environment, call Bake before use
func NewEnvironment(options ...EnvironmentBuilderOption) Environment {
	e := &environmentImpl{
		mu:        &sync.Mutex{},
		width:     512,
		height:    256,
		blur:      0.8,
		roughBlur: 1,
		intensity: 1,
	}
	for _, opt := range options {
		opt(e)
	}
	return e
}

// validate must be called with mu held.
func (e *environmentImpl) validate() error {
	if e.width < 8 || e.height < 4 {
		return fmt.Errorf("environment resolution must be at least 8x4, got %dx%d", e.width, e.height)
	}
	if e.blur < 0 || e.blur > 1 {
		return fmt.Errorf("environment blur must be within [0, 1], got %v", e.blur)
	}
	if e.roughBlur < 0 || e.roughBlur > 1 {
		return fmt.Errorf("environment rough blur must be within [0, 1], got %v", e.roughBlur)
	}
	return nil
}

// BlurRadius converts a [0, 1] blur amount into a Gaussian radius in pixels for a map of the given
// width. A full blur spreads over a sixteenth of the horizon.
//
// Parameters:
//   - amount: the blur amount
//   - width: the map width in pixels
//
// Returns:
//   - float64: the radius, 0 for no blur
func BlurRadius(amount float32, width int) float64 {
	return float64(common.Clamp(amount, 0, 1)) * float64(width) / 16
}

func (e *environmentImpl) Bake(pool worker.DynamicWorkerPool) error {
	e.mu.Lock()
	if err := e.validate(); err != nil {
		e.mu.Unlock()
		return err
	}
	w, h := e.width, e.height
	sharpRadius := BlurRadius(e.blur, w) / 4
	roughRadius := max(BlurRadius(e.roughBlur, w), sharpRadius)
	e.mu.Unlock()

	studio := Studio(w, h)

	var sharp, rough *image.RGBA
	var wg sync.WaitGroup
	wg.Add(2)
	pool.SubmitTask(worker.Task{
		ID: 0,
		Do: func() (any, error) {
			defer wg.Done()
			sharp = blurred(studio, sharpRadius)
			return nil, nil
		},
	})
	pool.SubmitTask(worker.Task{
		ID: 1,
		Do: func() (any, error) {
			defer wg.Done()
			rough = blurred(studio, roughRadius)
			return nil, nil
		},
	})
	wg.Wait()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.sharp, e.rough = sharp, rough
	return nil
}

// blurred returns a Gaussian blurred copy, or a plain copy for a zero radius.
func blurred(src *image.RGBA, radius float64) *image.RGBA {
	if radius <= 0 {
		out := image.NewRGBA(src.Bounds())
		copy(out.Pix, src.Pix)
		return out
	}
	return blur.Gaussian(src, radius)
}

func (e *environmentImpl) Baked() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sharp != nil && e.rough != nil
}

func (e *environmentImpl) Sharp() *image.RGBA {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sharp
}

func (e *environmentImpl) Rough() *image.RGBA {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rough
}

func (e *environmentImpl) Size() (int, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.width, e.height
}

func (e *environmentImpl) Blur() float32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.blur
}

func (e *environmentImpl) Intensity() float32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.intensity
}

func (e *environmentImpl) StagingData() (common.TextureStagingData, common.TextureStagingData, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sharp == nil || e.rough == nil {
		return common.TextureStagingData{}, common.TextureStagingData{}, fmt.Errorf("environment has not been baked")
	}
	return staging(e.sharp), staging(e.rough), nil
}

func staging(img *image.RGBA) common.TextureStagingData {
	b := img.Bounds()
	return common.TextureStagingData{
		Pixels: img.Pix,
		Width:  uint32(b.Dx()),
		Height: uint32(b.Dy()),
		Format: wgpu.TextureFormatRGBA8UnormSrgb,
	}
}

func (e *environmentImpl) Sampler() common.SamplerStagingData {
	return common.SamplerStagingData{
		AddressModeU:  wgpu.AddressModeRepeat,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	}
}

func (e *environmentImpl) BindGroupProvider() bind_group_provider.BindGroupProvider {
	return e.bindGroupProvider
}

func (e *environmentImpl) SetBindGroupProvider(provider bind_group_provider.BindGroupProvider) {
	e.bindGroupProvider = provider
}
