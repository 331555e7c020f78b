package pipeline

import (
	"slices"

	"github.com/Carmen-Shannon/flip/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// Target identifies the color attachment a pipeline renders into. The renderer picks the texture
// format and sample count from it.
type Target int

const (
	// TargetScene is the multisampled HDR scene attachment with a depth buffer.
	TargetScene Target = iota

	// TargetHDR is a single-sampled HDR texture used by the bloom passes.
	TargetHDR

	// TargetSurface is the swap chain image.
	TargetSurface
)

// pipeline is the implementation of the Pipeline interface.
type pipeline struct {
	pipelineKey string
	target      Target

	vertexShader, fragmentShader shader.Shader

	renderPipeline *wgpu.RenderPipeline

	depthTestEnabled  bool
	depthWriteEnabled bool
	blendEnabled      bool
	cullMode          wgpu.CullMode
	topology          wgpu.PrimitiveTopology
	frontFace         wgpu.FrontFace
	writeMask         wgpu.ColorWriteMask
	blendState        *wgpu.BlendState
}

// Pipeline describes one render pipeline: its vertex and fragment shaders, the attachment it
// draws into and the fixed-function state used when the renderer creates it.
type Pipeline interface {
	// PipelineKey returns the unique key associated with this pipeline, used for caching and lookups.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	PipelineKey() string

	// Target returns the attachment kind the pipeline renders into.
	Target() Target

	// Shader retrieves the shader of the given stage, nil if not set.
	//
	// Parameters:
	//   - shaderType: the stage to retrieve
	//
	// Returns:
	//   - shader.Shader: the shader for the stage, or nil
	Shader(shaderType shader.ShaderType) shader.Shader

	// BindGroupLayouts merges the reflected layouts of both stages. A binding used by both stages
	// gets the union of their visibilities. Entries are sorted by binding.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: the merged layout per group index
	BindGroupLayouts() map[int]wgpu.BindGroupLayoutDescriptor

	// GroupCount returns one more than the highest group index used by either stage.
	GroupCount() int

	// Pipeline returns the GPU pipeline, nil until the renderer has created it.
	Pipeline() *wgpu.RenderPipeline

	DepthTestEnabled() bool

	DepthWriteEnabled() bool

	BlendEnabled() bool

	CullMode() wgpu.CullMode

	Topology() wgpu.PrimitiveTopology

	FrontFace() wgpu.FrontFace

	WriteMask() wgpu.ColorWriteMask

	// BlendState returns the blend state, or nil when blending is disabled.
	BlendState() *wgpu.BlendState

	// SetRenderPipeline stores the created GPU pipeline.
	SetRenderPipeline(p *wgpu.RenderPipeline)
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a pipeline description. Depth testing and writing are on, blending and
// culling are off and the topology is a triangle list unless options say otherwise.
//
// Parameters:
//   - pipelineKey: the unique key for this pipeline
//   - target: the attachment kind the pipeline renders into
//   - opts: functional options to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline instance
func NewPipeline(pipelineKey string, target Target, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey:       pipelineKey,
		target:            target,
		depthTestEnabled:  true,
		depthWriteEnabled: true,
		cullMode:          wgpu.CullModeNone,
		topology:          wgpu.PrimitiveTopologyTriangleList,
		frontFace:         wgpu.FrontFaceCCW,
		writeMask:         wgpu.ColorWriteMaskAll,
		blendState: &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	// only the scene attachment has a depth buffer
	if p.target != TargetScene {
		p.depthTestEnabled = false
		p.depthWriteEnabled = false
	}
	return p
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Target() Target {
	return p.target
}

func (p *pipeline) Shader(shaderType shader.ShaderType) shader.Shader {
	switch shaderType {
	case shader.ShaderTypeVertex:
		return p.vertexShader
	case shader.ShaderTypeFragment:
		return p.fragmentShader
	default:
		return nil
	}
}

func (p *pipeline) BindGroupLayouts() map[int]wgpu.BindGroupLayoutDescriptor {
	merged := make(map[int]map[uint32]wgpu.BindGroupLayoutEntry)
	for _, s := range []shader.Shader{p.vertexShader, p.fragmentShader} {
		if s == nil {
			continue
		}
		for g, desc := range s.BindGroupLayoutDescriptors() {
			if merged[g] == nil {
				merged[g] = make(map[uint32]wgpu.BindGroupLayoutEntry)
			}
			for _, e := range desc.Entries {
				if existing, ok := merged[g][e.Binding]; ok {
					existing.Visibility |= e.Visibility
					merged[g][e.Binding] = existing
					continue
				}
				merged[g][e.Binding] = e
			}
		}
	}

	out := make(map[int]wgpu.BindGroupLayoutDescriptor, len(merged))
	for g, entries := range merged {
		list := make([]wgpu.BindGroupLayoutEntry, 0, len(entries))
		for _, e := range entries {
			list = append(list, e)
		}
		slices.SortFunc(list, func(a, b wgpu.BindGroupLayoutEntry) int {
			return int(a.Binding) - int(b.Binding)
		})
		out[g] = wgpu.BindGroupLayoutDescriptor{Label: p.pipelineKey, Entries: list}
	}
	return out
}

func (p *pipeline) GroupCount() int {
	n := 0
	for g := range p.BindGroupLayouts() {
		n = max(n, g+1)
	}
	return n
}

func (p *pipeline) Pipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) DepthTestEnabled() bool {
	return p.depthTestEnabled
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) BlendEnabled() bool {
	return p.blendEnabled
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	if !p.blendEnabled {
		return nil
	}
	return p.blendState
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}
