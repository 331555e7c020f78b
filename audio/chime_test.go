package audio

import (
	"math"
	"testing"

	"github.com/gopxl/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(s beep.Streamer, chunk int) (total int, peak float64, calls int) {
	buf := make([][2]float64, chunk)
	for {
		n, ok := s.Stream(buf)
		calls++
		for _, v := range buf[:n] {
			peak = max(peak, math.Abs(v[0]))
		}
		total += n
		if !ok {
			return total, peak, calls
		}
	}
}

func TestChimeLengthAndRange(t *testing.T) {
	rate := beep.SampleRate(44100)
	s := NewChime(880, rate)

	total, peak, _ := drain(s, 1000)

	assert.Equal(t, rate.N(ChimeLength), total)
	assert.LessOrEqual(t, peak, 1.0)
	assert.Greater(t, peak, 0.3)
	assert.NoError(t, s.Err())

	// drained streamers stay drained
	n, ok := s.Stream(make([][2]float64, 10))
	assert.Zero(t, n)
	assert.False(t, ok)
}

func TestChimeDecays(t *testing.T) {
	rate := beep.SampleRate(8000)
	s := NewChime(440, rate)
	buf := make([][2]float64, rate.N(ChimeLength))
	n, ok := s.Stream(buf)
	require.True(t, ok)
	require.Equal(t, len(buf), n)

	energy := func(from, to int) float64 {
		var e float64
		for _, v := range buf[from:to] {
			e += v[0] * v[0]
		}
		return e
	}
	window := rate.N(ChimeLength) / 6
	first := energy(0, window)
	last := energy(len(buf)-window, len(buf))
	assert.Greater(t, first, last*10)

	// starts from silence and stereo channels match
	assert.Zero(t, buf[0][0])
	for _, v := range buf {
		assert.Equal(t, v[0], v[1])
	}
}

func TestPlayerMixesAndDrainsChimes(t *testing.T) {
	locks := 0
	p := newPlayer(WithSampleRate(8000), WithFrequency(440), WithVolume(0))
	p.lock = func() { locks++ }

	p.Chime()
	p.Chime()
	assert.Equal(t, 2, p.mixer.Len())
	assert.Equal(t, 2, locks)

	buf := make([][2]float64, 256)
	for range p.rate.N(ChimeLength)/len(buf) + 3 {
		p.mixer.Stream(buf)
	}
	assert.Equal(t, 0, p.mixer.Len())
}

func TestPlayerClose(t *testing.T) {
	closed := 0
	p := newPlayer()
	p.close = func() { closed++ }

	p.Chime()
	p.Close()
	p.Close()
	assert.Equal(t, 1, closed)
	assert.Equal(t, 0, p.mixer.Len())

	p.Chime()
	assert.Equal(t, 0, p.mixer.Len())
}

func TestPlayerOptionsIgnoreInvalid(t *testing.T) {
	p := newPlayer(WithSampleRate(0), WithFrequency(-5))
	assert.Equal(t, beep.SampleRate(44100), p.rate)
	assert.Equal(t, 880.0, p.freq)
	assert.Equal(t, -1.0, p.volume)
}
