package shader

import (
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// shorthand maps the predeclared WGSL aliases to their explicit form.
var shorthand = map[string]string{
	"vec2f": "vec2<f32>", "vec3f": "vec3<f32>", "vec4f": "vec4<f32>",
	"vec2i": "vec2<i32>", "vec3i": "vec3<i32>", "vec4i": "vec4<i32>",
	"vec2u": "vec2<u32>", "vec3u": "vec3<u32>", "vec4u": "vec4<u32>",
	"mat2x2f": "mat2x2<f32>", "mat3x3f": "mat3x3<f32>", "mat4x4f": "mat4x4<f32>",
	"mat3x4f": "mat3x4<f32>", "mat4x3f": "mat4x3<f32>",
}

// canonicalType removes whitespace and expands shorthand aliases.
func canonicalType(t string) string {
	t = strings.Join(strings.Fields(t), "")
	if full, ok := shorthand[t]; ok {
		return full
	}
	return t
}

// roundUp rounds value up to a multiple of align, a power of two.
func roundUp(align, value uint64) uint64 {
	if align == 0 {
		return value
	}
	return (value + align - 1) &^ (align - 1)
}

// builtinLayout returns the layout of scalars, vectors and matrices of 32-bit components.
// See https://www.w3.org/TR/WGSL/#alignment-and-size.
func builtinLayout(t string) (typeLayout, bool) {
	switch t {
	case "f32", "i32", "u32", "bool":
		return typeLayout{4, 4}, true
	}
	base, param := splitTypeParams(t)
	switch param {
	case "f32", "i32", "u32":
	default:
		return typeLayout{}, false
	}
	if len(base) == 4 && strings.HasPrefix(base, "vec") {
		n := uint64(base[3] - '0')
		if n < 2 || n > 4 {
			return typeLayout{}, false
		}
		return vectorLayout(n), true
	}
	if len(base) == 6 && strings.HasPrefix(base, "mat") && base[4] == 'x' {
		cols, rows := uint64(base[3]-'0'), uint64(base[5]-'0')
		if cols < 2 || cols > 4 || rows < 2 || rows > 4 {
			return typeLayout{}, false
		}
		column := vectorLayout(rows)
		return typeLayout{cols * roundUp(column.align, column.size), column.align}, true
	}
	return typeLayout{}, false
}

func vectorLayout(n uint64) typeLayout {
	if n == 3 {
		return typeLayout{12, 16}
	}
	return typeLayout{4 * n, 4 * n}
}

// layoutOf resolves builtins, known structs and fixed-size arrays. Runtime-sized arrays report
// the stride of one element.
func layoutOf(t string, structs map[string]typeLayout) (typeLayout, bool) {
	t = canonicalType(t)
	if l, ok := builtinLayout(t); ok {
		return l, true
	}
	if l, ok := structs[t]; ok {
		return l, true
	}
	inner, ok := strings.CutPrefix(t, "array<")
	if !ok || !strings.HasSuffix(inner, ">") {
		return typeLayout{}, false
	}
	inner = strings.TrimSuffix(inner, ">")
	parts := splitTopLevel(inner, ',')
	elem, ok := layoutOf(parts[0], structs)
	if !ok {
		return typeLayout{}, false
	}
	stride := roundUp(elem.align, elem.size)
	if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
		return typeLayout{stride, elem.align}, true
	}
	count, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return typeLayout{}, false
	}
	return typeLayout{count * stride, elem.align}, true
}

// structLayout lays out members in declaration order. Builtin members of stage IO structs do not
// occupy memory and are skipped.
func structLayout(s wgslStruct, structs map[string]typeLayout) (typeLayout, bool) {
	var offset uint64
	align := uint64(1)
	for _, f := range s.fields {
		if f.builtin {
			continue
		}
		l, ok := layoutOf(f.typeName, structs)
		if !ok {
			return typeLayout{}, false
		}
		offset = roundUp(l.align, offset) + l.size
		align = max(align, l.align)
	}
	return typeLayout{roundUp(align, offset), align}, true
}

// layoutStructs resolves every struct, repeating until nested struct members are known.
func layoutStructs(structs []wgslStruct) map[string]typeLayout {
	known := make(map[string]typeLayout, len(structs))
	pending := structs
	for len(pending) > 0 {
		var next []wgslStruct
		for _, s := range pending {
			if l, ok := structLayout(s, known); ok {
				known[s.name] = l
			} else {
				next = append(next, s)
			}
		}
		if len(next) == len(pending) {
			break
		}
		pending = next
	}
	return known
}

// vertexFormat maps a vertex attribute type to its wgpu format and byte size.
func vertexFormat(t string) (wgpu.VertexFormat, uint64, bool) {
	switch canonicalType(t) {
	case "f32":
		return wgpu.VertexFormatFloat32, 4, true
	case "vec2<f32>":
		return wgpu.VertexFormatFloat32x2, 8, true
	case "vec3<f32>":
		return wgpu.VertexFormatFloat32x3, 12, true
	case "vec4<f32>":
		return wgpu.VertexFormatFloat32x4, 16, true
	case "u32":
		return wgpu.VertexFormatUint32, 4, true
	case "vec2<u32>":
		return wgpu.VertexFormatUint32x2, 8, true
	case "vec4<u32>":
		return wgpu.VertexFormatUint32x4, 16, true
	case "i32":
		return wgpu.VertexFormatSint32, 4, true
	case "vec4<i32>":
		return wgpu.VertexFormatSint32x4, 16, true
	}
	return wgpu.VertexFormatUndefined, 0, false
}

// splitTypeParams splits "texture_2d<f32>" into ("texture_2d", "f32").
func splitTypeParams(t string) (base, params string) {
	before, after, ok := strings.Cut(t, "<")
	if !ok {
		return t, ""
	}
	return before, strings.TrimSpace(strings.TrimSuffix(after, ">"))
}

// splitTopLevel splits s at sep where sep is not nested inside angle brackets or parentheses.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(':
			depth++
		case '>', ')':
			depth = max(depth-1, 0)
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}
