package shader

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

var (
	structRegex   = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)
	locationRegex = regexp.MustCompile(`@location\((\d+)\)`)
	builtinRegex  = regexp.MustCompile(`@builtin\(\w+\)`)
	memberRegex   = regexp.MustCompile(`^(?:@\w+(?:\([^)]*\))?\s*)*(\w+)\s*:\s*(.+)$`)
	resourceRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)

	entryRegex = map[ShaderType]*regexp.Regexp{
		ShaderTypeVertex:   regexp.MustCompile(`@vertex\s+fn\s+(\w+)`),
		ShaderTypeFragment: regexp.MustCompile(`@fragment\s+fn\s+(\w+)`),
	}
)

var sampledTextureDims = map[string]wgpu.TextureViewDimension{
	"texture_2d":       wgpu.TextureViewDimension2D,
	"texture_2d_array": wgpu.TextureViewDimension2DArray,
	"texture_cube":     wgpu.TextureViewDimensionCube,
	"texture_3d":       wgpu.TextureViewDimension3D,
}

var sampleTypes = map[string]wgpu.TextureSampleType{
	"f32": wgpu.TextureSampleTypeFloat,
	"i32": wgpu.TextureSampleTypeSint,
	"u32": wgpu.TextureSampleTypeUint,
}

// reflectModule parses a pre-processed WGSL module. Every resource gets the visibility of the stage the
// module is compiled for; the pipeline merges stages.
func reflectModule(source string, shaderType ShaderType) reflection {
	src := stripComments(source)
	structs := parseStructs(src)

	r := reflection{
		structs: layoutStructs(structs),
		groups:  make(map[int]wgpu.BindGroupLayoutDescriptor),
		names:   make(map[int]map[int]string),
	}
	if m := entryRegex[shaderType].FindStringSubmatch(src); m != nil {
		r.entryPoint = m[1]
	}

	visibility := wgpu.ShaderStageFragment
	if shaderType == ShaderTypeVertex {
		visibility = wgpu.ShaderStageVertex
		for _, s := range structs {
			if layout, ok := vertexBufferLayout(s); ok {
				r.vertexLayouts = append(r.vertexLayouts, layout)
			}
		}
	}

	entries := make(map[int][]wgpu.BindGroupLayoutEntry)
	for _, d := range parseResources(src) {
		entry := layoutEntry(d, visibility)
		if entry.Buffer.Type != wgpu.BufferBindingTypeUndefined {
			if l, ok := layoutOf(d.typeName, r.structs); ok {
				entry.Buffer.MinBindingSize = l.size
			}
		}
		entries[d.group] = append(entries[d.group], entry)
		if r.names[d.group] == nil {
			r.names[d.group] = make(map[int]string)
		}
		r.names[d.group][d.binding] = d.name
	}
	for g, list := range entries {
		slices.SortFunc(list, func(a, b wgpu.BindGroupLayoutEntry) int {
			return int(a.Binding) - int(b.Binding)
		})
		r.groups[g] = wgpu.BindGroupLayoutDescriptor{Entries: list}
	}
	return r
}

func parseStructs(src string) []wgslStruct {
	var out []wgslStruct
	for _, m := range structRegex.FindAllStringSubmatch(src, -1) {
		s := wgslStruct{name: m[1]}
		for _, member := range splitTopLevel(m[2], ',') {
			member = strings.TrimSpace(member)
			fm := memberRegex.FindStringSubmatch(member)
			if fm == nil {
				continue
			}
			f := wgslField{
				name:     fm[1],
				typeName: canonicalType(fm[2]),
				location: -1,
				builtin:  builtinRegex.MatchString(member),
			}
			if lm := locationRegex.FindStringSubmatch(member); lm != nil {
				f.location, _ = strconv.Atoi(lm[1])
			}
			s.fields = append(s.fields, f)
		}
		out = append(out, s)
	}
	return out
}

func parseResources(src string) []resourceDecl {
	var out []resourceDecl
	for _, m := range resourceRegex.FindAllStringSubmatch(src, -1) {
		g, _ := strconv.Atoi(m[1])
		b, _ := strconv.Atoi(m[2])
		out = append(out, resourceDecl{
			group:        g,
			binding:      b,
			addressSpace: strings.Join(strings.Fields(m[3]), " "),
			name:         m[4],
			typeName:     canonicalType(m[5]),
		})
	}
	return out
}

// layoutEntry classifies a resource as a buffer, sampler or sampled texture.
func layoutEntry(d resourceDecl, visibility wgpu.ShaderStage) wgpu.BindGroupLayoutEntry {
	e := wgpu.BindGroupLayoutEntry{Binding: uint32(d.binding), Visibility: visibility}
	switch {
	case d.addressSpace == "uniform":
		e.Buffer.Type = wgpu.BufferBindingTypeUniform
	case strings.HasPrefix(d.addressSpace, "storage"):
		e.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
		if strings.Contains(d.addressSpace, "read_write") {
			e.Buffer.Type = wgpu.BufferBindingTypeStorage
		}
	case d.typeName == "sampler":
		e.Sampler.Type = wgpu.SamplerBindingTypeFiltering
	case d.typeName == "sampler_comparison":
		e.Sampler.Type = wgpu.SamplerBindingTypeComparison
	case strings.HasPrefix(d.typeName, "texture_depth_"):
		e.Texture.SampleType = wgpu.TextureSampleTypeDepth
		e.Texture.ViewDimension = wgpu.TextureViewDimension2D
	case strings.HasPrefix(d.typeName, "texture_"):
		base, param := splitTypeParams(d.typeName)
		e.Texture.Multisampled = base == "texture_multisampled_2d"
		e.Texture.ViewDimension = wgpu.TextureViewDimension2D
		if dim, ok := sampledTextureDims[base]; ok {
			e.Texture.ViewDimension = dim
		}
		e.Texture.SampleType = wgpu.TextureSampleTypeFloat
		if st, ok := sampleTypes[param]; ok {
			e.Texture.SampleType = st
		}
	}
	return e
}

// vertexBufferLayout builds a tightly packed layout from a struct whose members all carry @location.
// Stage output structs are rejected by their @builtin(position) member.
func vertexBufferLayout(s wgslStruct) (wgpu.VertexBufferLayout, bool) {
	if len(s.fields) == 0 {
		return wgpu.VertexBufferLayout{}, false
	}
	var offset uint64
	attrs := make([]wgpu.VertexAttribute, 0, len(s.fields))
	for _, f := range s.fields {
		if f.builtin || f.location < 0 {
			return wgpu.VertexBufferLayout{}, false
		}
		format, size, ok := vertexFormat(f.typeName)
		if !ok {
			return wgpu.VertexBufferLayout{}, false
		}
		attrs = append(attrs, wgpu.VertexAttribute{Format: format, Offset: offset, ShaderLocation: uint32(f.location)})
		offset += size
	}
	return wgpu.VertexBufferLayout{
		ArrayStride: offset,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  attrs,
	}, true
}

// stripComments removes line comments and nested block comments, keeping line breaks.
// Directive lines of the pre-processor are comments too and must be expanded before this runs.
func stripComments(src string) string {
	var sb strings.Builder
	sb.Grow(len(src))
	depth := 0
	for i := 0; i < len(src); i++ {
		c := src[i]
		if i+1 < len(src) {
			switch {
			case c == '/' && src[i+1] == '*':
				depth++
				i++
				continue
			case c == '*' && src[i+1] == '/' && depth > 0:
				depth--
				i++
				continue
			case c == '/' && src[i+1] == '/' && depth == 0:
				for i < len(src) && src[i] != '\n' {
					i++
				}
				if i < len(src) {
					sb.WriteByte('\n')
				}
				continue
			}
		}
		if depth == 0 || c == '\n' {
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
