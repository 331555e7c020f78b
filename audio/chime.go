package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
)

// ChimeLength is how long a landing chime rings.
const ChimeLength = 1200 * time.Millisecond

// partial is one inharmonic overtone of the chime.
type partial struct {
	ratio float64 // frequency relative to the fundamental
	amp   float64
	decay float64 // seconds for the amplitude to fall to 1/e
}

// bellPartials approximate a small struck metal disc.
var bellPartials = []partial{
	{ratio: 1, amp: 1, decay: 0.6},
	{ratio: 2.76, amp: 0.45, decay: 0.3},
	{ratio: 5.4, amp: 0.25, decay: 0.15},
}

const attack = 0.005

// chime synthesizes a decaying bell tone.
type chime struct {
	freq     float64
	rate     beep.SampleRate
	norm     float64
	position int
	length   int
}

// NewChime creates a finite bell-like streamer at the given fundamental frequency.
// Samples stay within [-1, 1].
//
// Parameters:
//   - freq: the fundamental in Hz
//   - rate: the output sample rate
//
// Returns:
//   - beep.Streamer: a streamer that drains after ChimeLength
func NewChime(freq float64, rate beep.SampleRate) beep.Streamer {
	var sum float64
	for _, p := range bellPartials {
		sum += p.amp
	}
	return &chime{
		freq:   freq,
		rate:   rate,
		norm:   1 / sum,
		length: rate.N(ChimeLength),
	}
}

func (c *chime) Stream(samples [][2]float64) (n int, ok bool) {
	if c.position >= c.length {
		return 0, false
	}
	for i := range samples {
		if c.position >= c.length {
			return i, true
		}
		t := float64(c.position) / float64(c.rate)

		var v float64
		for _, p := range bellPartials {
			v += p.amp * math.Exp(-t/p.decay) * math.Sin(2*math.Pi*c.freq*p.ratio*t)
		}
		v *= c.norm
		if t < attack {
			v *= t / attack
		}

		samples[i][0] = v
		samples[i][1] = v
		c.position++
	}
	return len(samples), true
}

func (c *chime) Err() error { return nil }
