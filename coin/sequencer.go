package coin

import (
	"math/rand/v2"

	"github.com/Carmen-Shannon/flip/engine/node"
	"github.com/Carmen-Shannon/flip/engine/timeline"
	"github.com/chewxy/math32"
	"github.com/tanema/gween/ease"
)

// Phase timing relative to the flip duration, in seconds.
const (
	wobbleLead        = 0.4 // wobble starts this long before the flip ends
	wobbleDuration    = 0.6
	stabilizeDelay    = 0.2 // stabilize starts this long after the flip ends
	stabilizeDuration = 0.8
	restPause         = 3.0
)

// Sequencer owns the coin's Transform and runs randomized flip cycles on it, one at a time, forever.
// It is driven by Update from the frame loop and is not safe for concurrent use.
type Sequencer interface {
	// Start resets the transform and begins the first cycle. No-op while running.
	Start()

	// Update advances the running cycle by dt seconds. When a cycle and its pause have completed,
	// the next one starts after the inter-cycle delay, from a later Update call.
	//
	// Parameters:
	//   - dt: the frame time in seconds
	Update(dt float32)

	// Stop kills every phase of the running cycle and cancels a pending delay. No callback fires
	// and the transform is not written after Stop returns. No-op when stopped.
	Stop()

	// Running reports whether the sequencer has been started and not stopped.
	Running() bool

	// Cycle returns the number of cycles started so far.
	Cycle() int

	// Params returns the parameters of the current, or last, cycle.
	Params() CycleParams

	// Waiting reports whether the sequencer sits in the delay between two cycles.
	Waiting() bool
}

type sequencer struct {
	t      *node.Transform
	rng    *rand.Rand
	bounds Bounds
	delay  [2]float32

	onCycleStart func(cycle int, p CycleParams)
	onLanding    func(cycle int)

	tl      timeline.Timeline
	params  CycleParams
	cycle   int
	running bool
	wait    float32
}

var _ Sequencer = &sequencer{}

// NewSequencer creates a stopped Sequencer animating t.
//
// Parameters:
//   - t: the transform to animate, written only by the sequencer while it runs
//   - options: functional options to configure the sequencer
//
// Returns:
//   - Sequencer: the new sequencer
func NewSequencer(t *node.Transform, options ...SequencerBuilderOption) Sequencer {
	if t == nil {
		panic("coin: NewSequencer requires a non-nil Transform")
	}
	s := &sequencer{
		t:      t,
		bounds: DefaultBounds(),
		delay:  [2]float32{1, 2},
	}
	for _, opt := range options {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return s
}

func (s *sequencer) Start() {
	if s.running {
		return
	}
	s.running = true
	s.startCycle()
}

func (s *sequencer) Update(dt float32) {
	if !s.running {
		return
	}
	if s.tl != nil {
		if !s.tl.Advance(dt) || !s.running {
			return
		}
	} else {
		s.wait -= dt
	}
	if s.wait > 0 {
		return
	}
	s.startCycle()
}

func (s *sequencer) Stop() {
	if !s.running {
		return
	}
	s.running = false
	if s.tl != nil {
		s.tl.Kill(s.targets()...)
		s.tl.Kill()
		s.tl = nil
	}
	s.wait = 0
}

func (s *sequencer) Running() bool {
	return s.running
}

func (s *sequencer) Cycle() int {
	return s.cycle
}

func (s *sequencer) Params() CycleParams {
	return s.params
}

func (s *sequencer) Waiting() bool {
	return s.running && s.tl == nil
}

// startCycle resets the transform, draws fresh parameters and schedules the cycle's phases.
func (s *sequencer) startCycle() {
	s.t.Reset()
	s.cycle++
	s.params = s.bounds.Draw(s.rng)
	if s.onCycleStart != nil {
		s.onCycleStart(s.cycle, s.params)
		if !s.running {
			return
		}
	}

	p := s.params
	fd := p.FlipDuration
	half := fd / 2
	cycle := s.cycle

	tl := timeline.NewTimeline(timeline.WithOnComplete(s.cycleDone))
	tl.To(&s.t.Rotation[p.Axis.Index()], 2*math32.Pi*float32(p.Flips), fd, ease.InOutQuad, 0)
	tl.To(&s.t.Position[1], p.JumpHeight, half, ease.OutQuad, 0)
	if s.onLanding != nil {
		tl.Call(half, func() { s.onLanding(cycle) })
	}
	tl.To(&s.t.Position[1], 0, half, ease.OutBounce, half)
	tl.To(&s.t.Rotation[2], p.Wobble, wobbleDuration, ease.OutQuad, fd-wobbleLead)
	tl.To(&s.t.Rotation[2], 0, stabilizeDuration, ease.OutQuad, fd+stabilizeDelay)
	tl.Pause(restPause)
	s.tl = tl
}

// cycleDone runs from inside Advance when the pause has elapsed. It releases the timeline and arms
// the delay; Update starts the next cycle.
func (s *sequencer) cycleDone() {
	s.tl = nil
	s.wait = lerp(s.delay, s.rng.Float32())
}

// targets returns every animated field of the transform.
func (s *sequencer) targets() []*float32 {
	return []*float32{
		&s.t.Position[0], &s.t.Position[1], &s.t.Position[2],
		&s.t.Rotation[0], &s.t.Rotation[1], &s.t.Rotation[2],
	}
}
