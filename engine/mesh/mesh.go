package mesh

import (
	"encoding/binary"

	"github.com/Carmen-Shannon/flip/engine/renderer/bind_group_provider"
	"github.com/chewxy/math32"
)

// mesh is the implementation of the Mesh interface.
type mesh struct {
	name           string
	key            string
	vertices       []GPUVertex
	indices        []uint32
	boundingRadius float32
	meshProvider   bind_group_provider.BindGroupProvider
}

// Mesh is an indexed triangle list generated on the CPU. Meshes are immutable once built and may be
// shared by any number of nodes; the GPU buffers live in the MeshProvider.
type Mesh interface {
	// Name retrieves the mesh identifier.
	//
	// Returns:
	//   - string: the mesh name
	Name() string

	// Key identifies the shape parameters the mesh was generated from. Two meshes with the same key
	// hold identical geometry.
	//
	// Returns:
	//   - string: the shape key
	Key() string

	// Vertices returns the generated vertices.
	Vertices() []GPUVertex

	// Indices returns the triangle list indices.
	Indices() []uint32

	// VertexData returns the vertices serialized for a vertex buffer.
	//
	// Returns:
	//   - []byte: the packed vertex data
	VertexData() []byte

	// IndexData returns the indices serialized as little-endian uint32.
	//
	// Returns:
	//   - []byte: the packed index data
	IndexData() []byte

	VertexCount() int
	IndexCount() int

	// BoundingRadius returns the largest vertex distance from the mesh origin.
	//
	// Returns:
	//   - float32: the bounding radius
	BoundingRadius() float32

	// MeshProvider retrieves the BindGroupProvider holding the vertex and index buffers, or nil
	// before upload.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the mesh provider
	MeshProvider() bind_group_provider.BindGroupProvider

	SetMeshProvider(provider bind_group_provider.BindGroupProvider)
}

var _ Mesh = &mesh{}

// NewMesh creates a Mesh from the given options and computes its bounding radius.
//
// Parameters:
//   - options: functional options to configure the mesh
//
// Returns:
//   - Mesh: the new mesh
func NewMesh(options ...MeshBuilderOption) Mesh {
	m := &mesh{}
	for _, opt := range options {
		opt(m)
	}
	if m.key == "" {
		m.key = m.name
	}
	for _, v := range m.vertices {
		p := v.Position
		m.boundingRadius = max(m.boundingRadius, math32.Sqrt(p[0]*p[0]+p[1]*p[1]+p[2]*p[2]))
	}
	return m
}

func (m *mesh) Name() string {
	return m.name
}

func (m *mesh) Key() string {
	return m.key
}

func (m *mesh) Vertices() []GPUVertex {
	return m.vertices
}

func (m *mesh) Indices() []uint32 {
	return m.indices
}

func (m *mesh) VertexData() []byte {
	if len(m.vertices) == 0 {
		return nil
	}
	stride := m.vertices[0].Size()
	buf := make([]byte, len(m.vertices)*stride)
	for i := range m.vertices {
		m.vertices[i].put(buf[i*stride:])
	}
	return buf
}

func (m *mesh) IndexData() []byte {
	buf := make([]byte, len(m.indices)*4)
	for i, idx := range m.indices {
		binary.LittleEndian.PutUint32(buf[i*4:], idx)
	}
	return buf
}

func (m *mesh) VertexCount() int {
	return len(m.vertices)
}

func (m *mesh) IndexCount() int {
	return len(m.indices)
}

func (m *mesh) BoundingRadius() float32 {
	return m.boundingRadius
}

func (m *mesh) MeshProvider() bind_group_provider.BindGroupProvider {
	return m.meshProvider
}

func (m *mesh) SetMeshProvider(provider bind_group_provider.BindGroupProvider) {
	m.meshProvider = provider
}
