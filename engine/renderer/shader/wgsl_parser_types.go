package shader

import "github.com/cogentcore/webgpu/wgpu"

// typeLayout is the byte size and alignment of a host-shareable WGSL type.
type typeLayout struct {
	size  uint64
	align uint64
}

// wgslField is one member of a parsed struct.
type wgslField struct {
	name     string
	typeName string
	location int // -1 when the member has no @location
	builtin  bool
}

// wgslStruct is a struct declaration found in the source.
type wgslStruct struct {
	name   string
	fields []wgslField
}

// resourceDecl is a module scope @group/@binding variable.
type resourceDecl struct {
	group        int
	binding      int
	addressSpace string // "uniform", "storage, read" or empty for handle types
	name         string
	typeName     string
}

// reflection is everything the renderer needs to know about a shader module.
type reflection struct {
	entryPoint    string
	structs       map[string]typeLayout
	groups        map[int]wgpu.BindGroupLayoutDescriptor
	names         map[int]map[int]string
	vertexLayouts []wgpu.VertexBufferLayout
}
