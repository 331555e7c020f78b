package audio

import "github.com/gopxl/beep"

// PlayerBuilderOption is a functional option for configuring a Player during construction.
type PlayerBuilderOption func(*player)

// WithSampleRate sets the output sample rate. Values <= 0 keep 44100 Hz.
func WithSampleRate(rate int) PlayerBuilderOption {
	return func(p *player) {
		if rate > 0 {
			p.rate = beep.SampleRate(rate)
		}
	}
}

// WithFrequency sets the chime's fundamental in Hz. Values <= 0 keep 880 Hz.
func WithFrequency(freq float64) PlayerBuilderOption {
	return func(p *player) {
		if freq > 0 {
			p.freq = freq
		}
	}
}

// WithVolume sets the gain in powers of two: 0 leaves the chime unchanged, -1 halves it.
func WithVolume(volume float64) PlayerBuilderOption {
	return func(p *player) {
		p.volume = volume
	}
}
