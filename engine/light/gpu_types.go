package light

import (
	_ "embed"
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"
)

// MaxDirectionalLights is the fixed capacity of the rig's light array in WGSL.
const MaxDirectionalLights = 4

// GPULightRigSource is the WGSL definition of the DirectionalLight and LightRig structs.
// Matches GPULightRig layout exactly (144 bytes).
//
//go:embed assets/light_rig.wgsl
var GPULightRigSource string

// GPUDirectionalLight is one entry of the rig's light array.
// Size: 32 bytes.
type GPUDirectionalLight struct {
	Direction [3]float32 // offset  0: unit vector from surface toward the light
	Intensity float32    // offset 12
	Color     [3]float32 // offset 16: linear RGB
	_pad      float32    // offset 28
}

// GPULightRig is the uniform holding every light of the scene.
// Size: 144 bytes.
type GPULightRig struct {
	Lights  [MaxDirectionalLights]GPUDirectionalLight // offset   0
	Ambient [3]float32                                // offset 128: ambient color premultiplied by intensity
	Count   uint32                                    // offset 140: number of valid entries in Lights
}

// Size returns the size of the GPULightRig struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (144)
func (g *GPULightRig) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPULightRig struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPULightRig) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i, l := range g.Lights {
		o := i * 32
		for j := range 3 {
			binary.LittleEndian.PutUint32(buf[o+j*4:], math.Float32bits(l.Direction[j]))
			binary.LittleEndian.PutUint32(buf[o+16+j*4:], math.Float32bits(l.Color[j]))
		}
		binary.LittleEndian.PutUint32(buf[o+12:], math.Float32bits(l.Intensity))
	}
	for j := range 3 {
		binary.LittleEndian.PutUint32(buf[128+j*4:], math.Float32bits(g.Ambient[j]))
	}
	binary.LittleEndian.PutUint32(buf[140:], g.Count)
	return buf
}

// PackRig folds a set of lights into the GPU rig. Disabled lights are skipped and ambient lights
// are summed into a single term.
//
// Parameters:
//   - lights: the scene lights
//
// Returns:
//   - GPULightRig: the packed uniform
//   - error: an error if more than MaxDirectionalLights directional lights are enabled
func PackRig(lights []Light) (GPULightRig, error) {
	var rig GPULightRig
	for _, l := range lights {
		if l == nil || !l.Enabled() {
			continue
		}
		c, k := l.Color(), l.Intensity()
		switch l.Type() {
		case LightTypeAmbient:
			rig.Ambient[0] += c[0] * k
			rig.Ambient[1] += c[1] * k
			rig.Ambient[2] += c[2] * k
		case LightTypeDirectional:
			if rig.Count == MaxDirectionalLights {
				return GPULightRig{}, fmt.Errorf("too many directional lights: max %d", MaxDirectionalLights)
			}
			rig.Lights[rig.Count] = GPUDirectionalLight{
				Direction: l.Direction(),
				Intensity: k,
				Color:     c,
			}
			rig.Count++
		}
	}
	return rig, nil
}
