package shader

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/Carmen-Shannon/flip/engine/camera"
	"github.com/Carmen-Shannon/flip/engine/light"
	"github.com/Carmen-Shannon/flip/engine/mesh"
	"github.com/Carmen-Shannon/flip/engine/renderer/material"
	"github.com/Carmen-Shannon/flip/engine/renderer/postfx"
)

// includeRegex matches a directive line such as "//@flip:include camera".
var includeRegex = regexp.MustCompile(`^\s*//\s*@flip:include\s+(\S+)\s*$`)

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	registry map[string]string
	included []string
}

// PreProcessor expands include directives into the WGSL struct definitions shared with the Go GPU
// types, so every shader agrees with the byte layout the engine uploads.
type PreProcessor interface {
	// Process replaces each "//@flip:include <name>" line with the registered source. A name included
	// twice is expanded only once.
	//
	// Parameters:
	//   - source: WGSL source containing directives
	//
	// Returns:
	//   - string: the expanded source
	//   - error: an error naming the line of an unknown include
	Process(source string) (string, error)

	// Includes returns the names expanded by the last Process call, in source order.
	//
	// Returns:
	//   - []string: the included names
	Includes() []string
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor that knows every GPU struct of the engine.
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor() PreProcessor {
	return &preProcessor{
		registry: map[string]string{
			"camera":      camera.GPUCameraUniformSource,
			"light_rig":   light.GPULightRigSource,
			"vertex":      mesh.GPUVertexSource,
			"model_data":  mesh.GPUModelDataSource,
			"material":    material.GPUMaterialParamsSource,
			"overlay":     material.GPUOverlayParamsSource,
			"post_params": postfx.GPUPostParamsSource,
			"blur_params": postfx.GPUBlurParamsSource,
		},
	}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.included = p.included[:0]
	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		m := includeRegex.FindStringSubmatch(line)
		if m == nil {
			out = append(out, line)
			continue
		}
		name := m[1]
		src, ok := p.registry[name]
		if !ok {
			return "", fmt.Errorf("line %d: unknown include %q", i+1, name)
		}
		if slices.Contains(p.included, name) {
			continue
		}
		p.included = append(p.included, name)
		out = append(out, strings.TrimRight(src, "\n"))
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Includes() []string {
	return p.included
}
