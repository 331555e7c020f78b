package coin

import "math/rand/v2"

// SequencerBuilderOption is a functional option for configuring a Sequencer during construction.
type SequencerBuilderOption func(*sequencer)

// WithRand sets the random source cycles are drawn from. A seeded source makes every cycle
// reproducible.
//
// Parameters:
//   - r: the random source, ignored when nil
//
// Returns:
//   - SequencerBuilderOption: functional option to set the random source
func WithRand(r *rand.Rand) SequencerBuilderOption {
	return func(s *sequencer) {
		if r != nil {
			s.rng = r
		}
	}
}

// WithBounds sets the ranges cycle parameters are drawn from. Invalid bounds are ignored.
//
// Parameters:
//   - b: the bounds
//
// Returns:
//   - SequencerBuilderOption: functional option to set the bounds
func WithBounds(b Bounds) SequencerBuilderOption {
	return func(s *sequencer) {
		if b.Validate() == nil {
			s.bounds = b
		}
	}
}

// WithCycleDelay sets the range of the pause between two cycles in seconds.
// Negative or unordered ranges are ignored.
func WithCycleDelay(minDelay, maxDelay float32) SequencerBuilderOption {
	return func(s *sequencer) {
		if minDelay >= 0 && maxDelay >= minDelay {
			s.delay = [2]float32{minDelay, maxDelay}
		}
	}
}

// WithCycleStartCallback sets the function called after the reset of every cycle.
func WithCycleStartCallback(fn func(cycle int, p CycleParams)) SequencerBuilderOption {
	return func(s *sequencer) {
		s.onCycleStart = fn
	}
}

// WithLandingCallback sets the function called once per cycle when the coin starts to fall.
func WithLandingCallback(fn func(cycle int)) SequencerBuilderOption {
	return func(s *sequencer) {
		s.onLanding = fn
	}
}
