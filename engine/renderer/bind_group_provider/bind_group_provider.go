package bind_group_provider

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	// label names the provider in wgpu debug labels and logs.
	label string

	// GPU resources below are created by the Renderer and must be released when no longer needed.

	// bindGroup is the bind group built from the resources below, or nil before InitBindGroup.
	bindGroup *wgpu.BindGroup
	// buffers holds uniform and storage buffers keyed by binding index.
	buffers map[int]*wgpu.Buffer
	// textureViews holds sampled texture views keyed by binding index.
	textureViews map[int]*wgpu.TextureView
	// samplers holds samplers keyed by binding index.
	samplers map[int]*wgpu.Sampler
	// borrowed marks bindings whose resources are owned elsewhere (shared environment textures,
	// post chain targets) and are skipped by Release.
	borrowed map[int]bool

	// vertexBuffer and indexBuffer are only set on mesh providers.
	vertexBuffer *wgpu.Buffer
	indexBuffer  *wgpu.Buffer
	indexCount   int
}

// BufferWrite is one queued write into a provider's uniform buffer. The Renderer skips writes for
// providers whose buffer does not exist yet.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

// BindGroupProvider owns the GPU resources one scene component binds during a draw.
// The camera, the light rig, every mesh and every material hold one. The Renderer fills it in and
// the component only reads it back when drawing.
//
// Usage pattern:
//  1. Component creates a provider with a descriptive label
//  2. Renderer.InitMeshBuffers or Renderer.InitBindGroup creates the GPU resources
//  3. Renderer.WriteBuffers updates uniforms each frame
//  4. DrawCall binds BindGroup() and, for meshes, the vertex and index buffers
type BindGroupProvider interface {
	// Release releases every GPU resource held by this provider except borrowed bindings.
	Release()

	// ReleaseBindGroup releases only the bind group, keeping buffers and views so the group can be
	// rebuilt against new attachments after a resize.
	ReleaseBindGroup()

	// Label returns the debug label for this provider.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// Ready reports whether the bind group has been created.
	Ready() bool

	// BindGroup returns the created bind group, or nil before initialization.
	//
	// Returns:
	//   - *wgpu.BindGroup: the bind group or nil
	BindGroup() *wgpu.BindGroup

	// Buffer returns the buffer at binding, or nil.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer or nil
	Buffer(binding int) *wgpu.Buffer

	// TextureView returns the texture view at binding, or nil.
	TextureView(binding int) *wgpu.TextureView

	// Sampler returns the sampler at binding, or nil.
	Sampler(binding int) *wgpu.Sampler

	VertexBuffer() *wgpu.Buffer
	IndexBuffer() *wgpu.Buffer
	IndexCount() int

	SetBindGroup(bg *wgpu.BindGroup)
	SetBuffer(binding int, buf *wgpu.Buffer)

	// SetTextureView stores a texture view. A borrowed view is not released by Release.
	//
	// Parameters:
	//   - binding: the binding index
	//   - tv: the texture view
	//   - borrowed: true when another owner releases the view
	SetTextureView(binding int, tv *wgpu.TextureView, borrowed bool)

	// SetSampler stores a sampler. A borrowed sampler is not released by Release.
	//
	// Parameters:
	//   - binding: the binding index
	//   - s: the sampler
	//   - borrowed: true when another owner releases the sampler
	SetSampler(binding int, s *wgpu.Sampler, borrowed bool)

	SetVertexBuffer(buf *wgpu.Buffer)
	SetIndexBuffer(buf *wgpu.Buffer)
	SetIndexCount(count int)
}

// Compile-time check that bindGroupProvider implements BindGroupProvider
var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates an empty BindGroupProvider.
//
// Parameters:
//   - label: debug label used for the GPU objects created for this provider
//   - options: functional options to configure the provider
//
// Returns:
//   - BindGroupProvider: the new provider
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:        label,
		buffers:      make(map[int]*wgpu.Buffer),
		textureViews: make(map[int]*wgpu.TextureView),
		samplers:     make(map[int]*wgpu.Sampler),
		borrowed:     make(map[int]bool),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) Ready() bool {
	return p.bindGroup != nil
}

func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup {
	return p.bindGroup
}

func (p *bindGroupProvider) Buffer(binding int) *wgpu.Buffer {
	return p.buffers[binding]
}

func (p *bindGroupProvider) TextureView(binding int) *wgpu.TextureView {
	return p.textureViews[binding]
}

func (p *bindGroupProvider) Sampler(binding int) *wgpu.Sampler {
	return p.samplers[binding]
}

func (p *bindGroupProvider) VertexBuffer() *wgpu.Buffer {
	return p.vertexBuffer
}

func (p *bindGroupProvider) IndexBuffer() *wgpu.Buffer {
	return p.indexBuffer
}

func (p *bindGroupProvider) IndexCount() int {
	return p.indexCount
}

func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup) {
	p.bindGroup = bg
}

func (p *bindGroupProvider) SetBuffer(binding int, buf *wgpu.Buffer) {
	p.buffers[binding] = buf
}

func (p *bindGroupProvider) SetTextureView(binding int, tv *wgpu.TextureView, borrowed bool) {
	p.textureViews[binding] = tv
	p.borrowed[binding] = borrowed
}

func (p *bindGroupProvider) SetSampler(binding int, s *wgpu.Sampler, borrowed bool) {
	p.samplers[binding] = s
	p.borrowed[binding] = borrowed
}

func (p *bindGroupProvider) SetVertexBuffer(buf *wgpu.Buffer) {
	p.vertexBuffer = buf
}

func (p *bindGroupProvider) SetIndexBuffer(buf *wgpu.Buffer) {
	p.indexBuffer = buf
}

func (p *bindGroupProvider) SetIndexCount(count int) {
	p.indexCount = count
}

func (p *bindGroupProvider) ReleaseBindGroup() {
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
}

func (p *bindGroupProvider) Release() {
	p.ReleaseBindGroup()
	for i, tv := range p.textureViews {
		if tv != nil && !p.borrowed[i] {
			tv.Release()
		}
		delete(p.textureViews, i)
	}
	for i, s := range p.samplers {
		if s != nil && !p.borrowed[i] {
			s.Release()
		}
		delete(p.samplers, i)
	}
	for i, buf := range p.buffers {
		if buf != nil {
			buf.Release()
		}
		delete(p.buffers, i)
	}
	clear(p.borrowed)
	if p.vertexBuffer != nil {
		p.vertexBuffer.Release()
		p.vertexBuffer = nil
	}
	if p.indexBuffer != nil {
		p.indexBuffer.Release()
		p.indexBuffer = nil
	}
	p.indexCount = 0
}
