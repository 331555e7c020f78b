package bind_group_provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBindGroupProvider(t *testing.T) {
	p := NewBindGroupProvider("mesh:torus", WithIndexCount(36))

	assert.Equal(t, "mesh:torus", p.Label())
	assert.Equal(t, 36, p.IndexCount())
	assert.False(t, p.Ready())
	assert.Nil(t, p.Buffer(0))
	assert.Nil(t, p.TextureView(2))
	assert.Nil(t, p.Sampler(4))
}

func TestReleaseWithoutGPUResources(t *testing.T) {
	p := NewBindGroupProvider("empty")
	p.SetTextureView(2, nil, true)
	p.SetSampler(4, nil, false)
	p.SetIndexCount(12)

	assert.NotPanics(t, p.ReleaseBindGroup)
	assert.NotPanics(t, p.Release)
	assert.Zero(t, p.IndexCount())
}
