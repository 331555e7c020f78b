package shader

import (
	"embed"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderType identifies the pipeline stage a shader module is compiled for.
type ShaderType int

const (
	// ShaderTypeVertex is the vertex stage of a render pipeline.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is the fragment stage of a render pipeline.
	ShaderTypeFragment
)

//go:embed assets/*.wgsl
var assets embed.FS

// Source returns one of the engine's bundled WGSL programs by file name.
//
// Parameters:
//   - name: the file name, e.g. "pbr.frag.wgsl"
//
// Returns:
//   - string: the raw WGSL source, before pre-processing
//   - error: an error if no such program is bundled
func Source(name string) (string, error) {
	data, err := assets.ReadFile("assets/" + name)
	if err != nil {
		return "", fmt.Errorf("failed to read shader %q: %w", name, err)
	}
	return string(data), nil
}

// shader is the implementation of the Shader interface.
type shader struct {
	key        string
	source     string
	shaderType ShaderType
	refl       reflection
	module     *wgpu.ShaderModuleDescriptor
}

// Shader is a pre-processed WGSL module together with the layouts reflected from its source:
// bind group layouts for every @group/@binding resource, vertex buffer layouts for vertex shaders
// and the size of every struct.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for caching and lookups.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the pre-processed WGSL source.
	Source() string

	// ShaderType returns the stage the shader was compiled for.
	ShaderType() ShaderType

	// EntryPoint returns the name of the stage's entry function.
	//
	// Returns:
	//   - string: the entry point, empty if none was found
	EntryPoint() string

	// Module returns the descriptor used to create the GPU shader module.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the descriptor holding the WGSL code and label
	Module() *wgpu.ShaderModuleDescriptor

	// BindGroupLayoutDescriptor retrieves the reflected layout of one group.
	//
	// Parameters:
	//   - group: the @group index
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the layout, empty if the group is not used
	BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor

	// BindGroupLayoutDescriptors retrieves the layouts of every group the shader uses.
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindingName returns the variable bound at group and binding, or an empty string.
	BindingName(group, binding int) string

	// BindingIndex looks a binding up by its variable name.
	//
	// Parameters:
	//   - group: the @group index
	//   - name: the variable name
	//
	// Returns:
	//   - int: the binding index, -1 if not found
	//   - bool: true if the variable exists in the group
	BindingIndex(group int, name string) (int, bool)

	// VertexLayouts returns the vertex buffer layouts of a vertex shader, one per input struct.
	VertexLayouts() []wgpu.VertexBufferLayout

	// StructSize returns the host-shareable size of a struct declared in the source.
	//
	// Parameters:
	//   - name: the struct name
	//
	// Returns:
	//   - uint64: the size in bytes
	//   - bool: true if the struct was found and laid out
	StructSize(name string) (uint64, bool)
}

var _ Shader = &shader{}

// NewShader pre-processes source and reflects its layouts.
// It panics if the source contains an unknown include or has no entry point for shaderType.
//
// Parameters:
//   - key: a unique identifier for the shader, also used as the GPU debug label
//   - shaderType: the stage the module is compiled for
//   - source: the raw WGSL source
//
// Returns:
//   - Shader: the parsed shader
func NewShader(key string, shaderType ShaderType, source string) Shader {
	processed, err := NewPreProcessor().Process(source)
	if err != nil {
		panic(fmt.Sprintf("shader: failed to pre-process %s: %v", key, err))
	}
	s := &shader{
		key:        key,
		source:     processed,
		shaderType: shaderType,
		refl:       reflectModule(processed, shaderType),
	}
	if s.refl.entryPoint == "" {
		panic(fmt.Sprintf("shader: %s has no entry point for its stage", key))
	}
	s.module = &wgpu.ShaderModuleDescriptor{
		Label: key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: processed,
		},
	}
	return s
}

// NewShaderFromAsset loads a bundled program and builds its Shader.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - shaderType: the stage the module is compiled for
//   - name: the bundled file name
//
// Returns:
//   - Shader: the parsed shader
//   - error: an error if the program is not bundled
func NewShaderFromAsset(key string, shaderType ShaderType, name string) (Shader, error) {
	src, err := Source(name)
	if err != nil {
		return nil, err
	}
	return NewShader(key, shaderType, src), nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) EntryPoint() string {
	return s.refl.entryPoint
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}

func (s *shader) BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor {
	return s.refl.groups[group]
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.refl.groups
}

func (s *shader) BindingName(group, binding int) string {
	return s.refl.names[group][binding]
}

func (s *shader) BindingIndex(group int, name string) (int, bool) {
	for binding, n := range s.refl.names[group] {
		if n == name {
			return binding, true
		}
	}
	return -1, false
}

func (s *shader) VertexLayouts() []wgpu.VertexBufferLayout {
	return s.refl.vertexLayouts
}

func (s *shader) StructSize(name string) (uint64, bool) {
	l, ok := s.refl.structs[name]
	return l.size, ok
}
