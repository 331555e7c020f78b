package scene

import (
	"cmp"
	"fmt"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/flip/engine/camera"
	"github.com/Carmen-Shannon/flip/engine/environment"
	"github.com/Carmen-Shannon/flip/engine/light"
	"github.com/Carmen-Shannon/flip/engine/node"
	"github.com/Carmen-Shannon/flip/engine/renderer"
	"github.com/Carmen-Shannon/flip/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/flip/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/flip/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

const (
	// OpaquePipelineKey is the pipeline used for materials drawn with depth writes.
	OpaquePipelineKey = "scene_opaque"

	// TransparentPipelineKey is the alpha blended pipeline, drawn after every opaque mesh.
	TransparentPipelineKey = "scene_transparent"
)

// Bind group indices of the scene shaders.
const (
	groupGlobals  = 0
	groupModel    = 1
	groupMaterial = 2
)

// Bindings of the globals group.
const (
	bindingCamera     = 0
	bindingRig        = 1
	bindingEnvSharp   = 2
	bindingEnvRough   = 3
	bindingEnvSampler = 4
)

// Scene owns the camera, the light rig, the studio environment and a node tree, and turns them
// into uniforms and draw calls each frame.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// Active returns whether this scene is currently active for rendering.
	Active() bool

	// SetActive sets whether this scene is active for rendering.
	SetActive(active bool)

	// Camera returns the scene's camera.
	Camera() camera.Camera

	// Renderer returns the scene's renderer.
	Renderer() renderer.Renderer

	// Environment returns the scene's environment map.
	Environment() environment.Environment

	// Root returns the node every added node is attached to.
	Root() node.Node

	// Lights returns the current light rig.
	Lights() []light.Light

	// SetLights replaces the light rig.
	//
	// Parameters:
	//   - lights: the new lights, at most light.MaxDirectionalLights directional ones
	//
	// Returns:
	//   - error: an error if the rig cannot be packed, in which case the old rig is kept
	SetLights(lights ...light.Light) error

	// Add attaches nodes under the root. They are drawn after the next Upload.
	//
	// Parameters:
	//   - nodes: the subtrees to attach
	Add(nodes ...node.Node)

	// Upload creates every GPU resource the scene still lacks: the scene pipelines, the globals
	// group with the environment textures, one buffer pair per distinct mesh and one uniform
	// group per node and material. The environment must be baked. Must run on the render goroutine.
	//
	// Returns:
	//   - error: an error if any resource could not be created
	Upload() error

	// Ready reports whether the environment and every attached node have been uploaded.
	Ready() bool

	// Resize updates the camera aspect and reconfigures the renderer.
	//
	// Parameters:
	//   - width: the framebuffer width in pixels
	//   - height: the framebuffer height in pixels
	Resize(width, height int)

	// Draw recomputes world matrices, writes the frame's uniforms and records the draw calls:
	// opaque nodes first, then transparent nodes from farthest to nearest. Must run between the
	// renderer's BeginFrame and EndFrame.
	//
	// Returns:
	//   - error: an error if a draw call fails
	Draw() error

	// Release frees the GPU resources created by Upload.
	Release()
}

type scene struct {
	mu *sync.Mutex

	name   string
	active bool

	cam  camera.Camera
	r    renderer.Renderer
	env  environment.Environment
	root node.Node

	lights []light.Light
	rig    light.GPULightRig

	pipelinesRegistered bool
	layouts             map[int]wgpu.BindGroupLayoutDescriptor
	globals             bind_group_provider.BindGroupProvider
	envUploaded         bool
	uploaded            map[uint64]bool
	providers           []bind_group_provider.BindGroupProvider

	// Pre-allocated slices reused each frame to avoid per-frame allocations.
	writePool       []bind_group_provider.BufferWrite
	opaquePool      []node.Node
	transparentPool []node.Node
}

var _ Scene = &scene{}

// NewScene creates a Scene with the given camera, renderer and environment. All three are
// required and NewScene panics if any is nil.
//
// Parameters:
//   - name: the name of the scene
//   - cam: the camera to attach
//   - r: the renderer to attach
//   - env: the environment map to light with
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, cam camera.Camera, r renderer.Renderer, env environment.Environment, options ...SceneBuilderOption) Scene {
	if cam == nil {
		panic("scene: NewScene requires a non-nil Camera")
	}
	if r == nil {
		panic("scene: NewScene requires a non-nil Renderer")
	}
	if env == nil {
		panic("scene: NewScene requires a non-nil Environment")
	}

	s := &scene{
		mu:       &sync.Mutex{},
		name:     name,
		active:   true,
		cam:      cam,
		r:        r,
		env:      env,
		root:     node.NewNode(node.WithName(name + ":root")),
		uploaded: make(map[uint64]bool),
	}
	for _, option := range options {
		option(s)
	}
	if err := s.SetLights(s.lights...); err != nil {
		panic(fmt.Sprintf("scene: %v", err))
	}
	return s
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Camera() camera.Camera {
	return s.cam
}

func (s *scene) Renderer() renderer.Renderer {
	return s.r
}

func (s *scene) Environment() environment.Environment {
	return s.env
}

func (s *scene) Root() node.Node {
	return s.root
}

func (s *scene) Lights() []light.Light {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.lights)
}

func (s *scene) SetLights(lights ...light.Light) error {
	rig, err := light.PackRig(lights)
	if err != nil {
		return fmt.Errorf("failed to pack light rig: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lights = slices.Clone(lights)
	s.rig = rig
	return nil
}

func (s *scene) Add(nodes ...node.Node) {
	s.root.Add(nodes...)
}

func (s *scene) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.envUploaded {
		return false
	}
	ready := true
	s.root.Traverse(func(n node.Node) bool {
		if n.Drawable() && !s.uploaded[n.ID()] {
			ready = false
		}
		return ready
	})
	return ready
}

func (s *scene) Resize(width, height int) {
	if width > 0 && height > 0 {
		s.cam.SetAspect(float32(width) / float32(height))
	}
	s.r.Resize(width, height)
}

// registerPipelines must be called with mu held.
func (s *scene) registerPipelines() error {
	if s.pipelinesRegistered {
		return nil
	}
	vs, err := shader.NewShaderFromAsset("scene_vertex", shader.ShaderTypeVertex, "scene.vert.wgsl")
	if err != nil {
		return err
	}
	fs, err := shader.NewShaderFromAsset("scene_pbr", shader.ShaderTypeFragment, "pbr.frag.wgsl")
	if err != nil {
		return err
	}
	opaque := pipeline.NewPipeline(OpaquePipelineKey, pipeline.TargetScene,
		pipeline.WithVertexShader(vs),
		pipeline.WithFragmentShader(fs),
	)
	transparent := pipeline.NewPipeline(TransparentPipelineKey, pipeline.TargetScene,
		pipeline.WithVertexShader(vs),
		pipeline.WithFragmentShader(fs),
		pipeline.WithTransparent(),
	)
	if err := s.r.RegisterPipelines(opaque, transparent); err != nil {
		return err
	}
	s.layouts = opaque.BindGroupLayouts()
	s.pipelinesRegistered = true
	return nil
}

// uploadGlobals must be called with mu held.
func (s *scene) uploadGlobals() error {
	if s.envUploaded {
		return nil
	}
	sharp, rough, err := s.env.StagingData()
	if err != nil {
		return err
	}
	g := bind_group_provider.NewBindGroupProvider(s.name + ":globals")
	if err := s.r.InitTextureView(g, bindingEnvSharp, sharp); err != nil {
		return err
	}
	if err := s.r.InitTextureView(g, bindingEnvRough, rough); err != nil {
		return err
	}
	if err := s.r.InitSampler(g, bindingEnvSampler, s.env.Sampler()); err != nil {
		return err
	}
	if err := s.r.InitBindGroup(g, s.layouts[groupGlobals], nil); err != nil {
		return err
	}
	s.globals = g
	s.providers = append(s.providers, g)
	s.cam.SetBindGroupProvider(g)
	s.env.SetBindGroupProvider(g)
	s.envUploaded = true
	return nil
}

// uploadNode must be called with mu held.
func (s *scene) uploadNode(n node.Node, writes *[]bind_group_provider.BufferWrite) error {
	m := n.Mesh()
	if m.MeshProvider() == nil {
		mp := bind_group_provider.NewBindGroupProvider("mesh:" + m.Key())
		if err := s.r.InitMeshBuffers(mp, m.VertexData(), m.IndexData(), m.IndexCount()); err != nil {
			return err
		}
		m.SetMeshProvider(mp)
		s.providers = append(s.providers, mp)
	}

	mat := n.Material()
	if mat.PipelineKey() == "" {
		if mat.Transparent() {
			mat.SetPipelineKey(TransparentPipelineKey)
		} else {
			mat.SetPipelineKey(OpaquePipelineKey)
		}
	}
	if mat.BindGroupProvider() == nil {
		p := bind_group_provider.NewBindGroupProvider("material:" + mat.Name())
		if err := s.r.InitBindGroup(p, s.layouts[groupMaterial], nil); err != nil {
			return err
		}
		mat.SetBindGroupProvider(p)
		s.providers = append(s.providers, p)

		u := mat.Uniform()
		u.EnvIntensity *= s.env.Intensity()
		*writes = append(*writes, bind_group_provider.BufferWrite{Provider: p, Binding: 0, Data: u.Marshal()})
	}

	if n.BindGroupProvider() == nil {
		p := bind_group_provider.NewBindGroupProvider("node:" + n.Name())
		if err := s.r.InitBindGroup(p, s.layouts[groupModel], nil); err != nil {
			return err
		}
		n.SetBindGroupProvider(p)
		s.providers = append(s.providers, p)
	}
	s.uploaded[n.ID()] = true
	return nil
}

func (s *scene) Upload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.registerPipelines(); err != nil {
		return fmt.Errorf("failed to register scene pipelines: %w", err)
	}
	if err := s.uploadGlobals(); err != nil {
		return fmt.Errorf("failed to upload environment: %w", err)
	}

	var writes []bind_group_provider.BufferWrite
	var err error
	s.root.Traverse(func(n node.Node) bool {
		if err != nil {
			return false
		}
		if n.Drawable() && !s.uploaded[n.ID()] {
			if uerr := s.uploadNode(n, &writes); uerr != nil {
				err = fmt.Errorf("failed to upload node %q: %w", n.Name(), uerr)
			}
		}
		return err == nil
	})
	if err != nil {
		return err
	}
	s.r.WriteBuffers(writes)
	return nil
}

func (s *scene) Draw() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.envUploaded {
		return fmt.Errorf("scene %q has not been uploaded", s.name)
	}

	s.root.UpdateWorld(nil)

	cu := s.cam.Uniform()
	writes := s.writePool[:0]
	writes = append(writes,
		bind_group_provider.BufferWrite{Provider: s.globals, Binding: bindingCamera, Data: cu.Marshal()},
		bind_group_provider.BufferWrite{Provider: s.globals, Binding: bindingRig, Data: s.rig.Marshal()},
	)

	opaque, transparent := s.collect()
	for _, list := range [][]node.Node{opaque, transparent} {
		for _, n := range list {
			md := n.ModelData()
			writes = append(writes, bind_group_provider.BufferWrite{Provider: n.BindGroupProvider(), Binding: 0, Data: md.Marshal()})
		}
	}
	s.r.WriteBuffers(writes)
	s.writePool = writes

	for _, list := range [][]node.Node{opaque, transparent} {
		for _, n := range list {
			mat := n.Material()
			groups := []bind_group_provider.BindGroupProvider{s.globals, n.BindGroupProvider(), mat.BindGroupProvider()}
			if err := s.r.DrawCall(mat.PipelineKey(), n.Mesh().MeshProvider(), groups); err != nil {
				return fmt.Errorf("failed to draw node %q: %w", n.Name(), err)
			}
		}
	}
	return nil
}

// collect splits the visible uploaded nodes into draw order. Must be called with mu held and
// after UpdateWorld.
func (s *scene) collect() ([]node.Node, []node.Node) {
	opaque := s.opaquePool[:0]
	transparent := s.transparentPool[:0]
	s.root.Traverse(func(n node.Node) bool {
		if !n.Visible() {
			return false
		}
		if !n.Drawable() || !s.uploaded[n.ID()] {
			return true
		}
		if n.Material().Transparent() {
			transparent = append(transparent, n)
		} else {
			opaque = append(opaque, n)
		}
		return true
	})
	SortBackToFront(transparent, s.cam.ViewDepth)
	s.opaquePool, s.transparentPool = opaque, transparent
	return opaque, transparent
}

// SortBackToFront orders nodes from the farthest to the nearest by the view depth of their world
// position. Nodes at equal depth keep their tree order.
//
// Parameters:
//   - nodes: the nodes to sort in place
//   - depth: returns the view depth of a world position, larger is farther
func SortBackToFront(nodes []node.Node, depth func([3]float32) float32) {
	slices.SortStableFunc(nodes, func(a, b node.Node) int {
		return cmp.Compare(depth(b.WorldPosition()), depth(a.WorldPosition()))
	})
}

func (s *scene) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.providers {
		p.Release()
	}
	s.providers = nil
	s.globals = nil
	s.envUploaded = false
	clear(s.uploaded)
	s.root.Traverse(func(n node.Node) bool {
		if n.Drawable() {
			n.SetBindGroupProvider(nil)
			n.Mesh().SetMeshProvider(nil)
			n.Material().SetBindGroupProvider(nil)
		}
		return true
	})
}
