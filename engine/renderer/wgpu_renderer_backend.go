package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/flip/common"
	"github.com/Carmen-Shannon/flip/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/flip/engine/renderer/material"
	"github.com/Carmen-Shannon/flip/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/flip/engine/renderer/postfx"
	"github.com/Carmen-Shannon/flip/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

const (
	thresholdPipelineKey = "post_bloom_threshold"
	blurPipelineKey      = "post_blur"
	compositePipelineKey = "post_composite"
	overlayPipelineKey   = "overlay"
)

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat wgpu.TextureFormat
	alphaMode     wgpu.CompositeAlphaMode
	presentMode   wgpu.PresentMode
	sampleCount   MSAASampleCount
	clearColor    wgpu.Color
	width, height uint32

	// layouts caches bind group layouts by their entries so bind groups created for one pipeline
	// are usable with every pipeline declaring the same group.
	layouts map[string]*wgpu.BindGroupLayout
	// uploads are textures created by InitTextureView, released with the backend.
	uploads []*wgpu.Texture

	// Attachments, recreated by ConfigureSurface.
	targets     []*wgpu.Texture
	msaaView    *wgpu.TextureView
	depthView   *wgpu.TextureView
	sceneView   *wgpu.TextureView
	bloomViews  [2]*wgpu.TextureView
	linear      *wgpu.Sampler
	nearest     *wgpu.Sampler
	postBuilt   bool
	postPasses  []pipeline.Pipeline
	thresholdBG bind_group_provider.BindGroupProvider
	blurBG      [2]bind_group_provider.BindGroupProvider
	compositeBG bind_group_provider.BindGroupProvider

	overlayBG      bind_group_provider.BindGroupProvider
	overlayTexture *wgpu.Texture
	overlayText    string
	overlaySize    [2]uint32

	// Frame state between BeginFrame/DrawMessage and Present.
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

type wgpuRendererBackend interface {
	// ConfigureSurface configures the swap chain and recreates every size dependent attachment and
	// the post chain bind groups. A zero width or height leaves the backend without a surface until
	// the next call with a real size.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	ConfigureSurface(width, height int)

	// SetPresentMode sets the surface present mode. Takes effect on the next ConfigureSurface.
	SetPresentMode(mode PresentMode)

	// SetClearColor sets the scene background color.
	SetClearColor(c [3]float32)

	// Size returns the configured surface size in pixels.
	Size() (uint32, uint32)

	// RegisterRenderPipeline creates the shader modules, layouts and GPU pipeline described by p.
	//
	// Parameters:
	//   - p: the pipeline description
	//
	// Returns:
	//   - error: an error if the pipeline could not be created, otherwise nil
	RegisterRenderPipeline(p pipeline.Pipeline) error

	// InitMeshBuffers uploads vertex and index data into new buffers stored on the provider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created buffers on
	//   - vertexData: the raw vertex data bytes to upload to the GPU
	//   - indexData: the raw index data bytes to upload to the GPU
	//   - indexCount: the number of indices represented in the indexData, used for draw calls
	//
	// Returns:
	//   - error: an error if the buffers could not be created, otherwise nil
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitBindGroup creates the missing uniform buffers of a group and its bind group. Texture and
	// sampler bindings must already be set on the provider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider holding the resources
	//   - descriptor: the layout of the group, as reflected from the shaders
	//   - bufferSizeOverrides: buffer sizes to use instead of MinBindingSize, keyed by binding (nil safe)
	//
	// Returns:
	//   - error: an error if the bind group could not be created, otherwise nil
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferSizeOverrides map[int]uint64) error

	// InitTextureView uploads staging pixels into a new texture and stores its view on the provider.
	InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error

	// InitSampler creates a sampler and stores it on the provider.
	InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error

	// WriteBuffers writes all staged buffer writes to the GPU queue.
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginFrame creates the frame's command encoder and begins the HDR scene pass.
	//
	// Returns:
	//   - error: ErrSkipFrame without a surface, or an error if a frame is still in flight
	BeginFrame() error

	// DrawCall encodes one draw within the scene pass. Mesh providers without a vertex buffer
	// draw a single fullscreen triangle.
	DrawCall(p pipeline.Pipeline, meshProvider bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider)

	// EndFrame ends the scene pass, runs the post chain into the swap chain image and submits.
	//
	// Parameters:
	//   - settings: the post-processing settings of this frame
	//   - time: seconds since start, drives the animated grain
	//
	// Returns:
	//   - error: an error if the swap chain image could not be acquired or encoding failed
	EndFrame(settings postfx.Settings, time float32) error

	// DrawMessage renders a frame containing only centered text over black and submits it.
	//
	// Parameters:
	//   - text: the message, may contain newlines; empty draws a black frame. A scene frame still in
	//     flight is dropped.
	//
	// Returns:
	//   - error: ErrSkipFrame without a surface, or an error if the frame could not be encoded
	DrawMessage(text string) error

	// Present presents the surface to the display and releases the swapchain texture.
	Present()

	// Release frees every GPU object owned by the backend.
	Release()
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, sampleCount MSAASampleCount) wgpuRendererBackend {
	runtime.LockOSThread()
	w := &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeFifo,
		sampleCount: max(sampleCount, MSAAOff),
		clearColor:  wgpu.Color{A: 1},
		layouts:     make(map[string]*wgpu.BindGroupLayout),
	}
	w.surface = w.instance.CreateSurface(surfaceDescriptor)

	a, err := w.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    w.surface,
	})
	if err != nil {
		panic(fmt.Sprintf("renderer: failed to request adapter: %v", err))
	}
	w.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		panic(fmt.Sprintf("renderer: failed to request device: %v", err))
	}
	w.device = d
	w.queue = d.GetQueue()

	capabilities := w.surface.GetCapabilities(w.adapter)
	w.surfaceFormat = capabilities.Formats[0]
	w.alphaMode = capabilities.AlphaModes[0]

	if err := w.initPostPipelines(); err != nil {
		panic(fmt.Sprintf("renderer: failed to create post pipelines: %v", err))
	}
	return w
}

// initPostPipelines creates the fullscreen pipelines, the shared samplers and the providers of the
// post chain. Their bind groups are built once attachments exist.
func (b *wgpuRendererBackendImpl) initPostPipelines() error {
	load := func(name string, st shader.ShaderType) (shader.Shader, error) {
		return shader.NewShaderFromAsset(name, st, name)
	}
	fullscreen, err := load("fullscreen.vert.wgsl", shader.ShaderTypeVertex)
	if err != nil {
		return err
	}
	specs := []struct {
		key      string
		fragment string
		target   pipeline.Target
		opts     []pipeline.PipelineBuilderOption
		vertex   string
	}{
		{key: thresholdPipelineKey, fragment: "bloom_threshold.frag.wgsl", target: pipeline.TargetHDR},
		{key: blurPipelineKey, fragment: "blur.frag.wgsl", target: pipeline.TargetHDR},
		{key: compositePipelineKey, fragment: "composite.frag.wgsl", target: pipeline.TargetSurface},
		{key: overlayPipelineKey, fragment: "overlay.frag.wgsl", target: pipeline.TargetSurface, vertex: "overlay.vert.wgsl", opts: []pipeline.PipelineBuilderOption{pipeline.WithTransparent()}},
	}
	for _, s := range specs {
		vs := fullscreen
		if s.vertex != "" {
			if vs, err = load(s.vertex, shader.ShaderTypeVertex); err != nil {
				return err
			}
		}
		fs, err := load(s.fragment, shader.ShaderTypeFragment)
		if err != nil {
			return err
		}
		opts := append([]pipeline.PipelineBuilderOption{pipeline.WithVertexShader(vs), pipeline.WithFragmentShader(fs)}, s.opts...)
		p := pipeline.NewPipeline(s.key, s.target, opts...)
		if err := b.RegisterRenderPipeline(p); err != nil {
			return fmt.Errorf("failed to register %s: %w", s.key, err)
		}
		b.postPasses = append(b.postPasses, p)
	}

	b.linear, err = b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Post Linear Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return err
	}
	b.nearest, err = b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Overlay Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeNearest,
		MinFilter:     wgpu.FilterModeNearest,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return err
	}

	b.thresholdBG = bind_group_provider.NewBindGroupProvider("Bloom Threshold")
	b.blurBG[0] = bind_group_provider.NewBindGroupProvider("Bloom Blur Horizontal")
	b.blurBG[1] = bind_group_provider.NewBindGroupProvider("Bloom Blur Vertical")
	b.compositeBG = bind_group_provider.NewBindGroupProvider("Composite")
	b.overlayBG = bind_group_provider.NewBindGroupProvider("Overlay")
	return nil
}

func (b *wgpuRendererBackendImpl) postPipeline(key string) pipeline.Pipeline {
	for _, p := range b.postPasses {
		if p.PipelineKey() == key {
			return p
		}
	}
	return nil
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if width <= 0 || height <= 0 {
		b.width, b.height = 0, 0
		return
	}
	b.width, b.height = uint32(width), uint32(height)

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       b.width,
		Height:      b.height,
		PresentMode: b.presentMode,
		AlphaMode:   b.alphaMode,
	})

	b.releaseTargets()
	if err := b.createTargets(); err != nil {
		panic(fmt.Sprintf("renderer: failed to create render targets: %v", err))
	}
	if err := b.buildPostBindGroups(); err != nil {
		panic(fmt.Sprintf("renderer: failed to build post chain: %v", err))
	}
}

// createTarget creates a render attachment and its view, recording the texture for release.
func (b *wgpuRendererBackendImpl) createTarget(label string, w, h uint32, format wgpu.TextureFormat, samples uint32, usage wgpu.TextureUsage) (*wgpu.TextureView, error) {
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              w,
			Height:             h,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   samples,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         wgpu.TextureUsageRenderAttachment | usage,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", label, err)
	}
	b.targets = append(b.targets, tex)
	view, err := tex.CreateView(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s view: %w", label, err)
	}
	return view, nil
}

func (b *wgpuRendererBackendImpl) createTargets() error {
	var err error
	samples := uint32(b.sampleCount)
	if samples > 1 {
		if b.msaaView, err = b.createTarget("Scene MSAA Texture", b.width, b.height, hdrFormat, samples, 0); err != nil {
			return err
		}
	}
	if b.depthView, err = b.createTarget("Depth Texture", b.width, b.height, depthFormat, samples, 0); err != nil {
		return err
	}
	if b.sceneView, err = b.createTarget("Scene Texture", b.width, b.height, hdrFormat, 1, wgpu.TextureUsageTextureBinding); err != nil {
		return err
	}
	bw, bh := bloomSize(b.width, b.height)
	for i := range b.bloomViews {
		if b.bloomViews[i], err = b.createTarget(fmt.Sprintf("Bloom Texture %d", i), bw, bh, hdrFormat, 1, wgpu.TextureUsageTextureBinding); err != nil {
			return err
		}
	}
	return nil
}

func (b *wgpuRendererBackendImpl) releaseTargets() {
	for _, v := range []*wgpu.TextureView{b.msaaView, b.depthView, b.sceneView, b.bloomViews[0], b.bloomViews[1]} {
		if v != nil {
			v.Release()
		}
	}
	b.msaaView, b.depthView, b.sceneView = nil, nil, nil
	b.bloomViews = [2]*wgpu.TextureView{}
	for _, t := range b.targets {
		t.Release()
	}
	b.targets = b.targets[:0]
}

// buildPostBindGroups points the post chain at the current attachments. Uniform buffers survive
// from the previous size.
func (b *wgpuRendererBackendImpl) buildPostBindGroups() error {
	type binding struct {
		provider bind_group_provider.BindGroupProvider
		pipeline string
		views    map[int]*wgpu.TextureView
		sampler  int
	}
	groups := []binding{
		{b.thresholdBG, thresholdPipelineKey, map[int]*wgpu.TextureView{1: b.sceneView}, 2},
		{b.blurBG[0], blurPipelineKey, map[int]*wgpu.TextureView{1: b.bloomViews[0]}, 2},
		{b.blurBG[1], blurPipelineKey, map[int]*wgpu.TextureView{1: b.bloomViews[1]}, 2},
		{b.compositeBG, compositePipelineKey, map[int]*wgpu.TextureView{1: b.sceneView, 2: b.bloomViews[0]}, 3},
	}
	for _, g := range groups {
		g.provider.ReleaseBindGroup()
		for binding, view := range g.views {
			g.provider.SetTextureView(binding, view, true)
		}
		g.provider.SetSampler(g.sampler, b.linear, true)
		desc := b.postPipeline(g.pipeline).BindGroupLayouts()[0]
		if err := b.initBindGroup(g.provider, desc, nil); err != nil {
			return fmt.Errorf("failed to init %s bind group: %w", g.provider.Label(), err)
		}
	}

	bw, bh := bloomSize(b.width, b.height)
	directions := [2]postfx.GPUBlurParams{
		{Direction: [4]float32{1 / float32(bw), 0}},
		{Direction: [4]float32{0, 1 / float32(bh)}},
	}
	for i := range directions {
		b.queue.WriteBuffer(b.blurBG[i].Buffer(0), 0, directions[i].Marshal())
	}
	b.postBuilt = true
	return nil
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeUncapped:
		b.presentMode = wgpu.PresentModeImmediate
	case PresentModeVSync:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeFifo
	}
}

func (b *wgpuRendererBackendImpl) SetClearColor(c [3]float32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clearColor = wgpu.Color{R: float64(c[0]), G: float64(c[1]), B: float64(c[2]), A: 1}
}

func (b *wgpuRendererBackendImpl) Size() (uint32, uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.width, b.height
}

// layoutFor returns the cached bind group layout for a descriptor, creating it on first use.
func (b *wgpuRendererBackendImpl) layoutFor(desc wgpu.BindGroupLayoutDescriptor) (*wgpu.BindGroupLayout, error) {
	key := fmt.Sprintf("%+v", desc.Entries)
	if layout, ok := b.layouts[key]; ok {
		return layout, nil
	}
	layout, err := b.device.CreateBindGroupLayout(&desc)
	if err != nil {
		return nil, err
	}
	b.layouts[key] = layout
	return layout, nil
}

func (b *wgpuRendererBackendImpl) RegisterRenderPipeline(p pipeline.Pipeline) error {
	vertexShader := p.Shader(shader.ShaderTypeVertex)
	fragmentShader := p.Shader(shader.ShaderTypeFragment)
	if vertexShader == nil || fragmentShader == nil {
		return errors.New("both vertex and fragment shaders must be set to create a render pipeline")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	vs, err := b.device.CreateShaderModule(vertexShader.Module())
	if err != nil {
		return fmt.Errorf("failed to compile %s: %w", vertexShader.Key(), err)
	}
	fs, err := b.device.CreateShaderModule(fragmentShader.Module())
	if err != nil {
		return fmt.Errorf("failed to compile %s: %w", fragmentShader.Key(), err)
	}

	merged := p.BindGroupLayouts()
	bindGroupLayouts := make([]*wgpu.BindGroupLayout, p.GroupCount())
	for g := range bindGroupLayouts {
		layout, layoutErr := b.layoutFor(merged[g])
		if layoutErr != nil {
			return fmt.Errorf("failed to create bind group layout for group %d: %w", g, layoutErr)
		}
		bindGroupLayouts[g] = layout
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.PipelineKey(),
		BindGroupLayouts: bindGroupLayouts,
	})
	if err != nil {
		return err
	}

	format, samples := targetFormat(p.Target(), b.surfaceFormat, b.sampleCount)
	colorTarget := wgpu.ColorTargetState{
		Format:    format,
		WriteMask: p.WriteMask(),
		Blend:     p.BlendState(),
	}

	var depthStencil *wgpu.DepthStencilState
	if p.Target() == pipeline.TargetScene {
		depthCompare := wgpu.CompareFunctionLess
		if !p.DepthTestEnabled() {
			depthCompare = wgpu.CompareFunctionAlways
		}
		depthStencil = &wgpu.DepthStencilState{
			Format:            depthFormat,
			DepthWriteEnabled: p.DepthWriteEnabled(),
			DepthCompare:      depthCompare,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		}
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey() + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: vertexShader.EntryPoint(),
			Buffers:    vertexShader.VertexLayouts(),
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: fragmentShader.EntryPoint(),
			Targets:    []wgpu.ColorTargetState{colorTarget},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: samples,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: depthStencil,
	})
	if err != nil {
		return err
	}

	p.SetRenderPipeline(created)
	return nil
}

func (b *wgpuRendererBackendImpl) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(vertexData) > 0 {
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: provider.Label() + " Vertex Buffer",
			Size:  uint64(len(vertexData)),
			Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return err
		}
		b.queue.WriteBuffer(buf, 0, vertexData)
		provider.SetVertexBuffer(buf)
	}

	if len(indexData) > 0 {
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: provider.Label() + " Index Buffer",
			Size:  uint64(len(indexData)),
			Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return err
		}
		b.queue.WriteBuffer(buf, 0, indexData)
		provider.SetIndexBuffer(buf)
	}

	provider.SetIndexCount(indexCount)
	return nil
}

func (b *wgpuRendererBackendImpl) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferSizeOverrides map[int]uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.initBindGroup(provider, descriptor, bufferSizeOverrides)
}

// initBindGroup must be called with mu held.
func (b *wgpuRendererBackendImpl) initBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferSizeOverrides map[int]uint64) error {
	if len(descriptor.Entries) == 0 {
		return nil
	}

	layout, err := b.layoutFor(descriptor)
	if err != nil {
		return err
	}

	bindGroupEntries := make([]wgpu.BindGroupEntry, len(descriptor.Entries))
	for i, entry := range descriptor.Entries {
		binding := int(entry.Binding)

		isTexture := entry.Texture.SampleType != wgpu.TextureSampleTypeUndefined
		isSampler := entry.Sampler.Type != wgpu.SamplerBindingTypeUndefined

		switch {
		case isTexture:
			tv := provider.TextureView(binding)
			if tv == nil {
				return fmt.Errorf("texture binding %d of %s has no texture view, call InitTextureView first", binding, provider.Label())
			}
			bindGroupEntries[i] = wgpu.BindGroupEntry{
				Binding:     entry.Binding,
				TextureView: tv,
			}
		case isSampler:
			samp := provider.Sampler(binding)
			if samp == nil {
				return fmt.Errorf("sampler binding %d of %s has no sampler, call InitSampler first", binding, provider.Label())
			}
			bindGroupEntries[i] = wgpu.BindGroupEntry{
				Binding: entry.Binding,
				Sampler: samp,
			}
		default:
			usage := wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst
			if entry.Buffer.Type != wgpu.BufferBindingTypeUniform {
				usage = wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst
			}

			buf := provider.Buffer(binding)
			if buf == nil {
				bufSize := entry.Buffer.MinBindingSize
				if overrideSize, ok := bufferSizeOverrides[binding]; ok {
					bufSize = overrideSize
				}
				buf, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
					Label: provider.Label() + " Buffer",
					Size:  bufSize,
					Usage: usage,
				})
				if err != nil {
					return err
				}
				provider.SetBuffer(binding, buf)
			}
			bindGroupEntries[i] = wgpu.BindGroupEntry{
				Binding: entry.Binding,
				Buffer:  buf,
				Offset:  0,
				Size:    wgpu.WholeSize,
			}
		}
	}

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   provider.Label() + " Bind Group",
		Layout:  layout,
		Entries: bindGroupEntries,
	})
	if err != nil {
		return err
	}
	provider.SetBindGroup(bindGroup)
	return nil
}

// uploadTexture must be called with mu held.
func (b *wgpuRendererBackendImpl) uploadTexture(label string, stagingData common.TextureStagingData) (*wgpu.Texture, *wgpu.TextureView, error) {
	format := common.Coalesce(stagingData.Format, wgpu.TextureFormatRGBA8UnormSrgb)
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     label,
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              stagingData.Width,
			Height:             stagingData.Height,
			DepthOrArrayLayers: 1,
		},
		Format:        format,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, nil, err
	}

	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		stagingData.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  stagingData.Width * stagingData.BytesPerPixel(),
			RowsPerImage: stagingData.Height,
		},
		&wgpu.Extent3D{
			Width:              stagingData.Width,
			Height:             stagingData.Height,
			DepthOrArrayLayers: 1,
		},
	)

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, nil, err
	}
	return tex, view, nil
}

func (b *wgpuRendererBackendImpl) InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	tex, view, err := b.uploadTexture(provider.Label()+" Texture", stagingData)
	if err != nil {
		return err
	}
	b.uploads = append(b.uploads, tex)
	provider.SetTextureView(bindingKey, view, false)
	return nil
}

func (b *wgpuRendererBackendImpl) InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	samp, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         provider.Label() + " Sampler",
		AddressModeU:  common.Coalesce(samplerStagingData.AddressModeU, wgpu.AddressModeRepeat),
		AddressModeV:  common.Coalesce(samplerStagingData.AddressModeV, wgpu.AddressModeRepeat),
		AddressModeW:  common.Coalesce(samplerStagingData.AddressModeW, wgpu.AddressModeRepeat),
		MagFilter:     common.Coalesce(samplerStagingData.MagFilter, wgpu.FilterModeLinear),
		MinFilter:     common.Coalesce(samplerStagingData.MinFilter, wgpu.FilterModeLinear),
		MipmapFilter:  common.Coalesce(samplerStagingData.MipmapFilter, wgpu.MipmapFilterModeLinear),
		LodMinClamp:   common.Coalesce(samplerStagingData.LodMinClamp, 0.0),
		LodMaxClamp:   common.Coalesce(samplerStagingData.LodMaxClamp, 32.0),
		MaxAnisotropy: common.Coalesce(samplerStagingData.MaxAnisotropy, 1),
	})
	if err != nil {
		return err
	}
	provider.SetSampler(bindingKey, samp, false)
	return nil
}

func (b *wgpuRendererBackendImpl) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, w := range writes {
		buf := w.Provider.Buffer(w.Binding)
		if buf == nil {
			continue
		}
		b.queue.WriteBuffer(buf, w.Offset, w.Data)
	}
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface != nil || b.frameEncoder != nil {
		return errors.New("previous frame not yet presented")
	}
	if b.width == 0 || !b.postBuilt {
		return ErrSkipFrame
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}

	color := wgpu.RenderPassColorAttachment{
		View:       b.sceneView,
		LoadOp:     wgpu.LoadOpClear,
		StoreOp:    wgpu.StoreOpStore,
		ClearValue: b.clearColor,
	}
	if b.msaaView != nil {
		// draw multisampled, resolve into the sampled scene texture
		color.View = b.msaaView
		color.ResolveTarget = b.sceneView
		color.StoreOp = wgpu.StoreOpDiscard
	}

	b.frameEncoder = encoder
	b.framePass = encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{color},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	})
	return nil
}

func (b *wgpuRendererBackendImpl) DrawCall(
	p pipeline.Pipeline,
	meshProvider bind_group_provider.BindGroupProvider,
	bindGroups []bind_group_provider.BindGroupProvider,
) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return
	}
	encodeDraw(b.framePass, p, meshProvider, bindGroups)
}

// encodeDraw records one draw into a pass. Without a vertex buffer three vertices are drawn for a
// fullscreen triangle.
func encodeDraw(pass *wgpu.RenderPassEncoder, p pipeline.Pipeline, meshProvider bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider) {
	pass.SetPipeline(p.Pipeline())
	for i, bg := range bindGroups {
		pass.SetBindGroup(uint32(i), bg.BindGroup(), nil)
	}
	if meshProvider == nil || meshProvider.VertexBuffer() == nil {
		pass.Draw(3, 1, 0, 0)
		return
	}
	pass.SetVertexBuffer(0, meshProvider.VertexBuffer(), 0, wgpu.WholeSize)
	pass.SetIndexBuffer(meshProvider.IndexBuffer(), wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	pass.DrawIndexed(uint32(meshProvider.IndexCount()), 1, 0, 0, 0)
}

// fullscreenPass records a single fullscreen draw into target.
func (b *wgpuRendererBackendImpl) fullscreenPass(target *wgpu.TextureView, key string, bg bind_group_provider.BindGroupProvider) {
	pass := b.frameEncoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:    target,
			LoadOp:  wgpu.LoadOpClear,
			StoreOp: wgpu.StoreOpStore,
		}},
	})
	encodeDraw(pass, b.postPipeline(key), nil, []bind_group_provider.BindGroupProvider{bg})
	pass.End()
	pass.Release()
}

func (b *wgpuRendererBackendImpl) EndFrame(settings postfx.Settings, time float32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return errors.New("EndFrame called without BeginFrame")
	}
	b.framePass.End()
	b.framePass.Release()
	b.framePass = nil

	params := settings.Params(b.width, b.height, time, !isSRGBFormat(b.surfaceFormat))
	data := params.Marshal()
	b.queue.WriteBuffer(b.thresholdBG.Buffer(0), 0, data)
	b.queue.WriteBuffer(b.compositeBG.Buffer(0), 0, data)

	if settings.Bloom.Enabled {
		b.fullscreenPass(b.bloomViews[0], thresholdPipelineKey, b.thresholdBG)
		for range max(settings.Bloom.Passes, 1) {
			b.fullscreenPass(b.bloomViews[1], blurPipelineKey, b.blurBG[0])
			b.fullscreenPass(b.bloomViews[0], blurPipelineKey, b.blurBG[1])
		}
	}

	if err := b.acquireSurface(); err != nil {
		b.discardFrame()
		return err
	}
	b.fullscreenPass(b.frameView, compositePipelineKey, b.compositeBG)
	return b.submitFrame()
}

// acquireSurface must be called with mu held.
func (b *wgpuRendererBackendImpl) acquireSurface() error {
	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("failed to acquire surface texture: %w", err)
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return fmt.Errorf("failed to create surface view: %w", err)
	}
	b.frameSurface = surfaceTexture
	b.frameView = view
	return nil
}

// submitFrame finishes the frame encoder and submits it. mu must be held.
func (b *wgpuRendererBackendImpl) submitFrame() error {
	commandBuffer, err := b.frameEncoder.Finish(nil)
	if err != nil {
		b.discardFrame()
		return fmt.Errorf("failed to finish frame: %w", err)
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	b.frameEncoder.Release()
	b.frameEncoder = nil
	return nil
}

// discardFrame drops all frame state without presenting. mu must be held.
func (b *wgpuRendererBackendImpl) discardFrame() {
	if b.framePass != nil {
		b.framePass.Release()
		b.framePass = nil
	}
	if b.frameEncoder != nil {
		b.frameEncoder.Release()
		b.frameEncoder = nil
	}
	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
}

// updateOverlay rasterizes text into the overlay texture when it changed. mu must be held.
func (b *wgpuRendererBackendImpl) updateOverlay(text string) error {
	if text == b.overlayText && b.overlayBG.Ready() {
		return nil
	}
	img := RasterizeText(text)
	bounds := img.Bounds()
	tex, view, err := b.uploadTexture("Overlay Texture", common.TextureStagingData{
		Pixels: img.Pix,
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
		Format: wgpu.TextureFormatRGBA8Unorm,
	})
	if err != nil {
		return fmt.Errorf("failed to upload overlay text: %w", err)
	}

	b.overlayBG.ReleaseBindGroup()
	if old := b.overlayBG.TextureView(1); old != nil {
		old.Release()
	}
	if b.overlayTexture != nil {
		b.overlayTexture.Release()
	}
	b.overlayTexture = tex
	b.overlayBG.SetTextureView(1, view, true)
	b.overlayBG.SetSampler(2, b.nearest, true)
	if err := b.initBindGroup(b.overlayBG, b.postPipeline(overlayPipelineKey).BindGroupLayouts()[0], nil); err != nil {
		return err
	}
	b.overlayText = text
	b.overlaySize = [2]uint32{uint32(bounds.Dx()), uint32(bounds.Dy())}
	return nil
}

func (b *wgpuRendererBackendImpl) DrawMessage(text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// a scene frame abandoned midway is dropped so the message can replace it
	b.discardFrame()
	if b.width == 0 {
		return ErrSkipFrame
	}
	if text != "" {
		if err := b.updateOverlay(text); err != nil {
			return err
		}
		params := material.GPUOverlayParams{
			Rect:  OverlayRect(b.overlaySize[0], b.overlaySize[1], b.width, b.height),
			Color: [4]float32{1, 1, 1, 1},
		}
		b.queue.WriteBuffer(b.overlayBG.Buffer(0), 0, params.Marshal())
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	b.frameEncoder = encoder
	if err := b.acquireSurface(); err != nil {
		b.discardFrame()
		return err
	}

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       b.frameView,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{A: 1},
		}},
	})
	if text != "" {
		p := b.postPipeline(overlayPipelineKey)
		pass.SetPipeline(p.Pipeline())
		pass.SetBindGroup(0, b.overlayBG.BindGroup(), nil)
		pass.Draw(6, 1, 0, 0)
	}
	pass.End()
	pass.Release()
	return b.submitFrame()
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}

	b.surface.Present()

	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	b.frameSurface.Release()
	b.frameSurface = nil
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.discardFrame()
	if b.overlayTexture != nil {
		if v := b.overlayBG.TextureView(1); v != nil {
			v.Release()
		}
		b.overlayTexture.Release()
		b.overlayTexture = nil
	}
	for _, bg := range []bind_group_provider.BindGroupProvider{b.thresholdBG, b.blurBG[0], b.blurBG[1], b.compositeBG, b.overlayBG} {
		if bg != nil {
			bg.Release()
		}
	}
	b.releaseTargets()
	for _, s := range []*wgpu.Sampler{b.linear, b.nearest} {
		if s != nil {
			s.Release()
		}
	}
	for _, p := range b.postPasses {
		if rp := p.Pipeline(); rp != nil {
			rp.Release()
		}
	}
	for _, t := range b.uploads {
		t.Release()
	}
	b.uploads = nil
	for k, l := range b.layouts {
		l.Release()
		delete(b.layouts, k)
	}
	b.queue.Release()
	b.device.Release()
	b.adapter.Release()
	b.surface.Release()
	b.instance.Release()
}
