package mesh

// MeshBuilderOption is a functional option for configuring a Mesh via NewMesh.
type MeshBuilderOption func(*mesh)

// WithName is an option builder that sets the name of the Mesh.
//
// Parameters:
//   - name: the mesh identifier
//
// Returns:
//   - MeshBuilderOption: a function that applies the name option to a mesh
func WithName(name string) MeshBuilderOption {
	return func(m *mesh) {
		m.name = name
	}
}

// WithKey sets the shape key. Defaults to the name.
func WithKey(key string) MeshBuilderOption {
	return func(m *mesh) {
		m.key = key
	}
}

// WithGeometry is an option builder that sets the vertex and index data of the Mesh.
//
// Parameters:
//   - vertices: the mesh vertices
//   - indices: triangle list indices into vertices
//
// Returns:
//   - MeshBuilderOption: a function that applies the geometry option to a mesh
func WithGeometry(vertices []GPUVertex, indices []uint32) MeshBuilderOption {
	return func(m *mesh) {
		m.vertices = vertices
		m.indices = indices
	}
}
