package timeline

import (
	"slices"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// phase is one scheduled entry of a timeline. A phase with a nil target and a nil fn is a pause.
type phase struct {
	target   *float32
	to       float32
	duration float32
	at       float32
	easing   ease.TweenFunc
	fn       func()

	tween    *gween.Tween
	started  bool
	finished bool
}

func (p *phase) end() float32 {
	return p.at + p.duration
}

type timeline struct {
	phases     []*phase
	elapsed    float32
	end        float32
	done       bool
	onComplete func()
}

// Timeline sequences tweens on float32 fields at absolute time offsets.
// Phases may overlap. A phase captures its start value from the target field only when the playhead
// reaches its offset, so a later phase on the same field continues from wherever the earlier one left it.
//
// A Timeline is advanced by the caller (usually once per frame) and is not safe for concurrent use.
type Timeline interface {
	// To schedules a tween of *target toward to.
	//
	// Parameters:
	//   - target: the field to animate
	//   - to: the value the field holds when the phase ends
	//   - duration: phase length in seconds
	//   - easing: the easing curve, nil for linear
	//   - at: the offset in seconds from the start of the timeline
	To(target *float32, to, duration float32, easing ease.TweenFunc, at float32)

	// Call schedules fn to run once when the playhead reaches at.
	//
	// Parameters:
	//   - at: the offset in seconds from the start of the timeline
	//   - fn: the function to run
	Call(at float32, fn func())

	// Pause appends an empty phase of the given length at the current end of the timeline.
	//
	// Parameters:
	//   - duration: pause length in seconds
	Pause(duration float32)

	// Advance moves the playhead forward by dt seconds. Phases whose offset has been reached start,
	// running phases write their eased value and phases whose duration has elapsed write their exact end value.
	// When the playhead passes the end of the last phase the completion callback fires once.
	//
	// Parameters:
	//   - dt: the time step in seconds
	//
	// Returns:
	//   - bool: true once the timeline has completed
	Advance(dt float32) bool

	// Kill removes every phase animating one of targets. Called with no targets it removes all phases
	// and disarms the completion callback.
	//
	// Parameters:
	//   - targets: the fields whose phases should be removed
	Kill(targets ...*float32)

	// Duration returns the end offset of the last phase in seconds.
	Duration() float32

	// Elapsed returns the playhead position in seconds.
	Elapsed() float32

	// Done reports whether the timeline has completed.
	Done() bool

	// Len returns the number of scheduled phases, pauses and calls included.
	Len() int
}

var _ Timeline = &timeline{}

// NewTimeline creates an empty Timeline.
//
// Parameters:
//   - options: functional options to configure the timeline
//
// Returns:
//   - Timeline: the new timeline
func NewTimeline(options ...TimelineBuilderOption) Timeline {
	t := &timeline{}
	for _, opt := range options {
		opt(t)
	}
	return t
}

func (t *timeline) To(target *float32, to, duration float32, easing ease.TweenFunc, at float32) {
	if easing == nil {
		easing = ease.Linear
	}
	t.insert(&phase{
		target:   target,
		to:       to,
		duration: max(duration, 0),
		at:       max(at, 0),
		easing:   easing,
	})
}

func (t *timeline) Call(at float32, fn func()) {
	t.insert(&phase{at: max(at, 0), fn: fn})
}

func (t *timeline) Pause(duration float32) {
	t.insert(&phase{at: t.end, duration: max(duration, 0)})
}

// insert keeps phases ordered by offset, stable for equal offsets, so that sequential phases on one
// field hand over in the order they were scheduled.
func (t *timeline) insert(p *phase) {
	i := len(t.phases)
	for i > 0 && t.phases[i-1].at > p.at {
		i--
	}
	t.phases = slices.Insert(t.phases, i, p)
	t.end = max(t.end, p.end())
}

func (t *timeline) Advance(dt float32) bool {
	if t.done {
		return true
	}
	t.elapsed += max(dt, 0)

	for _, p := range t.phases {
		if p.finished || t.elapsed < p.at {
			continue
		}
		if !p.started {
			p.started = true
			if p.target != nil && p.duration > 0 {
				p.tween = gween.New(*p.target, p.to, p.duration, p.easing)
			}
			if p.fn != nil {
				p.fn()
				// the callback may have killed the timeline
				if t.done || p.finished {
					continue
				}
			}
		}

		local := t.elapsed - p.at
		if local >= p.duration {
			if p.target != nil {
				*p.target = p.to
			}
			p.finished = true
			continue
		}
		if p.tween != nil {
			v, _ := p.tween.Set(local)
			*p.target = v
		}
	}

	if t.done {
		return true
	}
	if t.elapsed < t.end {
		return false
	}
	t.done = true
	if cb := t.onComplete; cb != nil {
		t.onComplete = nil
		cb()
	}
	return true
}

func (t *timeline) Kill(targets ...*float32) {
	if len(targets) == 0 {
		for _, p := range t.phases {
			p.finished = true
		}
		t.phases = nil
		t.onComplete = nil
		t.done = true
		return
	}

	// a fresh slice keeps an Advance loop that triggered the kill iterating over valid phases
	kept := make([]*phase, 0, len(t.phases))
	t.end = 0
	for _, p := range t.phases {
		if p.target != nil && slices.Contains(targets, p.target) {
			p.finished = true
			continue
		}
		kept = append(kept, p)
		t.end = max(t.end, p.end())
	}
	t.phases = kept
}

func (t *timeline) Duration() float32 {
	return t.end
}

func (t *timeline) Elapsed() float32 {
	return t.elapsed
}

func (t *timeline) Done() bool {
	return t.done
}

func (t *timeline) Len() int {
	return len(t.phases)
}
