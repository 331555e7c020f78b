package coin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestControllerLifecycle(t *testing.T) {
	c := compose(t)
	cycles := 0
	ctl := NewController(c,
		WithSequencerOptions(WithRand(seeded(11)), WithCycleStartCallback(func(int, CycleParams) { cycles++ })),
		WithSpinnerOptions(WithIncrements(0.1, 0)),
	)

	// not mounted yet
	ctl.Update(frame)
	assert.False(t, ctl.Mounted())
	assert.Nil(t, ctl.Sequencer())
	assert.Zero(t, c.FrontSpiral.Transform().Rotation[1])

	ctl.Mount()
	ctl.Mount()
	require.True(t, ctl.Mounted())
	assert.Equal(t, 1, cycles)
	assert.True(t, ctl.Sequencer().Running())

	for range 10 {
		ctl.Update(frame)
	}
	assert.Equal(t, 10, ctl.Spinner().Frames())
	assert.InDelta(t, 1.0, c.FrontSpiral.Transform().Rotation[1], 1e-5)
	assert.InDelta(t, -1.0, c.BackSpiral.Transform().Rotation[1], 1e-5)
	assert.Greater(t, c.Root.Transform().Position[1], float32(0), "the coin is mid-jump")

	seq := ctl.Sequencer()
	ctl.Unmount()
	assert.False(t, ctl.Mounted())
	assert.False(t, seq.Running())

	root := *c.Root.Transform()
	spiral := *c.FrontSpiral.Transform()
	for range 60 {
		ctl.Update(frame)
	}
	assert.Equal(t, root, *c.Root.Transform())
	assert.Equal(t, spiral, *c.FrontSpiral.Transform())

	ctl.Unmount()
	assert.Equal(t, 1, cycles)
}

func TestNewControllerRequiresCoin(t *testing.T) {
	assert.PanicsWithValue(t, "coin: NewController requires a composed Coin", func() {
		NewController(nil)
	})
	assert.Panics(t, func() { NewController(&Coin{}) })
}
