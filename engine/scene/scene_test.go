package scene

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/flip/common"
	"github.com/Carmen-Shannon/flip/engine/camera"
	"github.com/Carmen-Shannon/flip/engine/environment"
	"github.com/Carmen-Shannon/flip/engine/light"
	"github.com/Carmen-Shannon/flip/engine/mesh"
	"github.com/Carmen-Shannon/flip/engine/node"
	"github.com/Carmen-Shannon/flip/engine/renderer"
	"github.com/Carmen-Shannon/flip/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/flip/engine/renderer/material"
	"github.com/Carmen-Shannon/flip/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type drawRecord struct {
	pipeline string
	mesh     bind_group_provider.BindGroupProvider
	groups   []bind_group_provider.BindGroupProvider
}

// fakeRenderer records the calls a scene makes. Methods the scene never uses fall through to the
// nil embedded interface.
type fakeRenderer struct {
	renderer.Renderer

	pipelines   []string
	meshUploads int
	textures    map[int]common.TextureStagingData
	bindGroups  []string
	writes      []bind_group_provider.BufferWrite
	draws       []drawRecord
	resized     [2]int
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{textures: make(map[int]common.TextureStagingData)}
}

func (f *fakeRenderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	for _, p := range pipelines {
		f.pipelines = append(f.pipelines, p.PipelineKey())
	}
	return nil
}

func (f *fakeRenderer) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	f.meshUploads++
	provider.SetIndexCount(indexCount)
	return nil
}

func (f *fakeRenderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, _ map[int]uint64) error {
	f.bindGroups = append(f.bindGroups, provider.Label())
	return nil
}

func (f *fakeRenderer) InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error {
	f.textures[bindingKey] = stagingData
	return nil
}

func (f *fakeRenderer) InitSampler(bind_group_provider.BindGroupProvider, int, common.SamplerStagingData) error {
	return nil
}

func (f *fakeRenderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	f.writes = append(f.writes, writes...)
}

func (f *fakeRenderer) DrawCall(key string, meshProvider bind_group_provider.BindGroupProvider, groups []bind_group_provider.BindGroupProvider) error {
	f.draws = append(f.draws, drawRecord{pipeline: key, mesh: meshProvider, groups: groups})
	return nil
}

func (f *fakeRenderer) Resize(width, height int) {
	f.resized = [2]int{width, height}
}

func bakedEnvironment(t *testing.T) environment.Environment {
	t.Helper()
	env := environment.NewEnvironment(environment.WithResolution(16, 8))
	require.NoError(t, env.Bake(worker.NewDynamicWorkerPool(2, 4, time.Second)))
	return env
}

func ringMesh(t *testing.T) mesh.Mesh {
	t.Helper()
	m, err := mesh.NewTorus(mesh.TorusShape{Radius: 1, Tube: 0.1, RadialSegments: 3, TubularSegments: 3})
	require.NoError(t, err)
	return m
}

func newTestScene(t *testing.T, r renderer.Renderer) Scene {
	t.Helper()
	cam := camera.NewCamera(camera.WithPosition(0, 0, 8))
	return NewScene("test", cam, r, bakedEnvironment(t),
		WithLights(
			light.NewLight(light.LightTypeDirectional, light.WithPosition(5, 5, 5)),
			light.NewLight(light.LightTypeAmbient),
		),
	)
}

func TestNewScenePanicsOnMissingDependencies(t *testing.T) {
	r := newFakeRenderer()
	env := environment.NewEnvironment()
	cam := camera.NewCamera()

	assert.PanicsWithValue(t, "scene: NewScene requires a non-nil Camera", func() { NewScene("s", nil, r, env) })
	assert.PanicsWithValue(t, "scene: NewScene requires a non-nil Renderer", func() { NewScene("s", cam, nil, env) })
	assert.PanicsWithValue(t, "scene: NewScene requires a non-nil Environment", func() { NewScene("s", cam, r, nil) })
}

func TestUploadSharesMeshesAndMaterials(t *testing.T) {
	r := newFakeRenderer()
	s := newTestScene(t, r)

	shared := ringMesh(t)
	gold := material.NewMaterial(material.WithName("gold"), material.WithMetallic(1))
	s.Add(
		node.NewNode(node.WithName("a"), node.WithMesh(shared), node.WithMaterial(gold)),
		node.NewNode(node.WithName("b"), node.WithMesh(shared), node.WithMaterial(gold)),
	)
	assert.False(t, s.Ready())

	require.NoError(t, s.Upload())
	assert.True(t, s.Ready())

	assert.Equal(t, []string{OpaquePipelineKey, TransparentPipelineKey}, r.pipelines)
	assert.Equal(t, 1, r.meshUploads)
	// globals, one material, two nodes
	assert.Equal(t, []string{"test:globals", "material:gold", "node:a", "node:b"}, r.bindGroups)
	assert.Contains(t, r.textures, bindingEnvSharp)
	assert.Contains(t, r.textures, bindingEnvRough)
	assert.Equal(t, OpaquePipelineKey, gold.PipelineKey())
	assert.NotNil(t, s.Camera().BindGroupProvider())

	// a second upload is a no-op for resources that exist
	require.NoError(t, s.Upload())
	assert.Equal(t, 1, r.meshUploads)
	assert.Len(t, r.bindGroups, 4)
}

func TestUploadFailsWithoutBakedEnvironment(t *testing.T) {
	r := newFakeRenderer()
	s := NewScene("cold", camera.NewCamera(), r, environment.NewEnvironment())
	err := s.Upload()
	require.Error(t, err)
	assert.False(t, s.Ready())
}

func TestDrawOrdersOpaqueThenTransparentBackToFront(t *testing.T) {
	r := newFakeRenderer()
	s := newTestScene(t, r)
	m := ringMesh(t)

	glass := material.NewMaterial(material.WithName("glass"), material.WithTransparent(0.9))
	near := node.NewNode(node.WithName("near"), node.WithPosition(0, 0, 1), node.WithMesh(m), node.WithMaterial(glass))
	far := node.NewNode(node.WithName("far"), node.WithPosition(0, 0, -1), node.WithMesh(m), node.WithMaterial(glass))
	solid := node.NewNode(node.WithName("solid"), node.WithMesh(m), node.WithMaterial(material.NewMaterial(material.WithName("solid"))))
	hidden := node.NewNode(node.WithName("hidden"), node.WithVisible(false), node.WithMesh(m), node.WithMaterial(glass))
	s.Add(near, far, solid, hidden)

	require.NoError(t, s.Upload())
	r.writes = nil
	require.NoError(t, s.Draw())

	require.Len(t, r.draws, 3)
	assert.Equal(t, OpaquePipelineKey, r.draws[0].pipeline)
	assert.Equal(t, TransparentPipelineKey, r.draws[1].pipeline)
	assert.Equal(t, far.BindGroupProvider(), r.draws[1].groups[groupModel], "farthest transparent node first")
	assert.Equal(t, near.BindGroupProvider(), r.draws[2].groups[groupModel])
	for _, d := range r.draws {
		require.Len(t, d.groups, 3)
		assert.Equal(t, s.Camera().BindGroupProvider(), d.groups[groupGlobals])
		assert.Equal(t, m.MeshProvider(), d.mesh)
	}

	// camera, rig, then one model uniform per drawn node
	require.Len(t, r.writes, 5)
	assert.Equal(t, bindingCamera, r.writes[0].Binding)
	assert.Len(t, r.writes[0].Data, 80)
	assert.Equal(t, bindingRig, r.writes[1].Binding)
	assert.Len(t, r.writes[1].Data, 144)
	assert.Len(t, r.writes[2].Data, 128)
}

func TestDrawFollowsTransformChanges(t *testing.T) {
	r := newFakeRenderer()
	s := newTestScene(t, r)
	m := ringMesh(t)

	glass := material.NewMaterial(material.WithName("glass"), material.WithTransparent(0.5))
	a := node.NewNode(node.WithName("a"), node.WithMesh(m), node.WithMaterial(glass))
	b := node.NewNode(node.WithName("b"), node.WithPosition(0, 0, 2), node.WithMesh(m), node.WithMaterial(glass))
	s.Add(a, b)
	require.NoError(t, s.Upload())

	require.NoError(t, s.Draw())
	assert.Equal(t, a.BindGroupProvider(), r.draws[0].groups[groupModel])

	// move a in front of b
	a.Transform().Position[2] = 4
	r.draws = nil
	require.NoError(t, s.Draw())
	assert.Equal(t, b.BindGroupProvider(), r.draws[0].groups[groupModel])
}

func TestDrawBeforeUploadFails(t *testing.T) {
	s := newTestScene(t, newFakeRenderer())
	assert.Error(t, s.Draw())
}

func TestSetLightsRejectsOversizedRig(t *testing.T) {
	s := newTestScene(t, newFakeRenderer())
	var many []light.Light
	for range light.MaxDirectionalLights + 1 {
		many = append(many, light.NewLight(light.LightTypeDirectional))
	}
	assert.Error(t, s.SetLights(many...))
	assert.Len(t, s.Lights(), 2, "old rig kept")
}

func TestResizeUpdatesAspect(t *testing.T) {
	r := newFakeRenderer()
	s := newTestScene(t, r)
	s.Resize(1600, 800)
	assert.Equal(t, float32(2), s.Camera().Aspect())
	assert.Equal(t, [2]int{1600, 800}, r.resized)

	s.Resize(0, 0)
	assert.Equal(t, float32(2), s.Camera().Aspect(), "minimized keeps the aspect")
}

func TestReleaseClearsProviders(t *testing.T) {
	r := newFakeRenderer()
	s := newTestScene(t, r)
	m := ringMesh(t)
	n := node.NewNode(node.WithName("n"), node.WithMesh(m), node.WithMaterial(material.NewMaterial()))
	s.Add(n)
	require.NoError(t, s.Upload())

	s.Release()
	assert.Nil(t, m.MeshProvider())
	assert.Nil(t, n.BindGroupProvider())
	assert.False(t, s.Ready())
}
