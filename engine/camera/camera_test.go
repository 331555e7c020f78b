package camera

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/flip/common"
	"github.com/stretchr/testify/assert"
)

func TestNewCameraDefaults(t *testing.T) {
	c := NewCamera(WithPosition(0, 0, 8), WithFov(common.DegToRad(40)))

	assert.Equal(t, [3]float32{0, 0, 8}, c.Position())
	assert.Equal(t, [3]float32{}, c.Target())
	assert.InDelta(t, 0.1, c.Near(), 1e-6)
	assert.InDelta(t, 100, c.Far(), 1e-6)
	assert.InDelta(t, 8, c.ViewDepth([3]float32{}), 1e-5)
	assert.InDelta(t, 10, c.ViewDepth([3]float32{0, 0, -2}), 1e-5)
}

func TestCameraSetAspectIgnoresInvalid(t *testing.T) {
	c := NewCamera(WithAspect(2))
	c.SetAspect(0)
	assert.Equal(t, float32(2), c.Aspect())
	c.SetAspect(-1)
	assert.Equal(t, float32(2), c.Aspect())

	before := c.ProjectionMatrix()
	c.SetAspect(1)
	after := c.ProjectionMatrix()
	assert.InDelta(t, before[0]*2, after[0], 1e-5)
}

func TestCameraProjectsOriginToCenter(t *testing.T) {
	c := NewCamera(WithPosition(0, 0, 8), WithFov(common.DegToRad(40)), WithAspect(16.0/9.0))
	vp := c.ViewProjectionMatrix()

	clip := [4]float32{vp[12], vp[13], vp[14], vp[15]}
	assert.InDelta(t, 0, clip[0]/clip[3], 1e-5)
	assert.InDelta(t, 0, clip[1]/clip[3], 1e-5)
	ndcZ := clip[2] / clip[3]
	assert.Greater(t, ndcZ, float32(0))
	assert.Less(t, ndcZ, float32(1))
}

func TestGPUCameraUniformLayout(t *testing.T) {
	c := NewCamera(WithPosition(1, 2, 3))
	u := c.Uniform()
	assert.Equal(t, 80, u.Size())

	buf := u.Marshal()
	assert.Len(t, buf, 80)
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(buf[64:])))
	assert.Equal(t, float32(3), math.Float32frombits(binary.LittleEndian.Uint32(buf[72:])))
	assert.Equal(t, u.ViewProj[5], math.Float32frombits(binary.LittleEndian.Uint32(buf[20:])))
}
