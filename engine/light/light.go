package light

// LightType distinguishes the light kinds the shading model supports.
type LightType int

const (
	// LightTypeDirectional is a light infinitely far away shining from its position toward its target.
	LightTypeDirectional LightType = iota

	// LightTypeAmbient adds a constant term to every surface regardless of orientation.
	LightTypeAmbient
)

type lightImpl struct {
	lightType LightType
	position  [3]float32
	target    [3]float32
	color     [3]float32
	intensity float32
	enabled   bool
}

// Light is a single light of the scene rig. Colors are linear RGB.
type Light interface {
	// Type returns the kind of light.
	Type() LightType

	// Position returns the world-space position the light shines from. Ignored for ambient lights.
	Position() [3]float32

	// Direction returns the normalized vector pointing from the target toward the light,
	// the L vector used by the shading model. Zero for ambient lights.
	//
	// Returns:
	//   - [3]float32: the unit light vector
	Direction() [3]float32

	// Color returns the linear RGB color.
	Color() [3]float32

	// Intensity returns the scalar multiplier applied to Color.
	Intensity() float32

	// Enabled reports whether the light contributes to shading.
	Enabled() bool

	SetPosition(x, y, z float32)
	SetColor(r, g, b float32)
	SetIntensity(intensity float32)
	SetEnabled(enabled bool)
}

var _ Light = &lightImpl{}

// NewLight creates a white, enabled light of unit intensity aimed at the origin.
//
// Parameters:
//   - lightType: the kind of light
//   - opts: functional options to configure the light
//
// Returns:
//   - Light: the configured light
func NewLight(lightType LightType, opts ...LightBuilderOption) Light {
	l := &lightImpl{
		lightType: lightType,
		position:  [3]float32{0, 1, 0},
		color:     [3]float32{1, 1, 1},
		intensity: 1.0,
		enabled:   true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Type() LightType {
	return l.lightType
}

func (l *lightImpl) Position() [3]float32 {
	return l.position
}

func (l *lightImpl) Direction() [3]float32 {
	if l.lightType == LightTypeAmbient {
		return [3]float32{}
	}
	return normalize3(
		l.position[0]-l.target[0],
		l.position[1]-l.target[1],
		l.position[2]-l.target[2],
	)
}

func (l *lightImpl) Color() [3]float32 {
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	return l.intensity
}

func (l *lightImpl) Enabled() bool {
	return l.enabled
}

func (l *lightImpl) SetPosition(x, y, z float32) {
	l.position = [3]float32{x, y, z}
}

func (l *lightImpl) SetColor(r, g, b float32) {
	l.color = [3]float32{r, g, b}
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.intensity = intensity
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.enabled = enabled
}
