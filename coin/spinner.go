package coin

import "github.com/Carmen-Shannon/flip/engine/node"

// Default per-frame spin of the spiral groups in radians.
const (
	DefaultSpinY = 0.02
	DefaultSpinX = 0.01
)

// Spinner counter-rotates the two spiral groups by a fixed amount every frame, independent of
// frame time.
type Spinner interface {
	// Step rotates the front group forward and the back group backward by one increment.
	Step()

	// Stop freezes both groups. Later Steps are no-ops.
	Stop()

	// Frames returns the number of Steps applied.
	Frames() int
}

type spinner struct {
	front, back *node.Transform
	dy, dx      float32
	frames      int
	stopped     bool
}

var _ Spinner = &spinner{}

// NewSpinner creates a Spinner over the front and back group transforms.
//
// Parameters:
//   - front: rotated by +increment each Step
//   - back: rotated by -increment each Step
//   - options: functional options to configure the spinner
//
// Returns:
//   - Spinner: the new spinner
func NewSpinner(front, back *node.Transform, options ...SpinnerBuilderOption) Spinner {
	if front == nil || back == nil {
		panic("coin: NewSpinner requires front and back transforms")
	}
	s := &spinner{front: front, back: back, dy: DefaultSpinY, dx: DefaultSpinX}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *spinner) Step() {
	if s.stopped {
		return
	}
	s.front.Rotation[1] += s.dy
	s.front.Rotation[0] += s.dx
	s.back.Rotation[1] -= s.dy
	s.back.Rotation[0] -= s.dx
	s.frames++
}

func (s *spinner) Stop() {
	s.stopped = true
}

func (s *spinner) Frames() int {
	return s.frames
}

// SpinnerBuilderOption is a functional option for configuring a Spinner during construction.
type SpinnerBuilderOption func(*spinner)

// WithIncrements sets the per-frame rotation around Y and X in radians.
func WithIncrements(y, x float32) SpinnerBuilderOption {
	return func(s *spinner) {
		s.dy, s.dx = y, x
	}
}
