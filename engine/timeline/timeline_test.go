package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tanema/gween/ease"
)

func TestTimelineLinearTween(t *testing.T) {
	var x float32
	tl := NewTimeline()
	tl.To(&x, 10, 2, nil, 0)

	assert.False(t, tl.Advance(0.5))
	assert.InDelta(t, 2.5, x, 1e-4)
	assert.False(t, tl.Advance(1))
	assert.InDelta(t, 7.5, x, 1e-4)
	assert.True(t, tl.Advance(0.5))
	assert.Equal(t, float32(10), x)
	assert.True(t, tl.Done())
}

func TestTimelineWritesExactEndValue(t *testing.T) {
	var x float32
	tl := NewTimeline()
	tl.To(&x, 3, 1, ease.OutBounce, 0)

	// overshooting the end in one step still lands exactly on the target
	tl.Advance(5)
	assert.Equal(t, float32(3), x)
}

func TestTimelineCapturesStartLazily(t *testing.T) {
	var y float32
	tl := NewTimeline()
	tl.To(&y, 2, 1, ease.OutQuad, 0)
	tl.To(&y, 0, 1, ease.OutBounce, 1)

	tl.Advance(1)
	assert.Equal(t, float32(2), y)

	tl.Advance(0.0625)
	assert.Less(t, y, float32(2))
	assert.Greater(t, y, float32(0))

	tl.Advance(1)
	assert.Equal(t, float32(0), y)
}

func TestTimelineSequentialHandoverInOneStep(t *testing.T) {
	var y float32
	tl := NewTimeline()
	tl.To(&y, 2, 1, ease.OutQuad, 0)
	tl.To(&y, 0, 1, ease.Linear, 1)

	// a step spanning the handover finishes the first phase before the second captures its start
	tl.Advance(1.5)
	assert.InDelta(t, 1, y, 1e-4)
}

func TestTimelineOrderingIndependentOfInsertion(t *testing.T) {
	var y float32
	tl := NewTimeline()
	tl.To(&y, 0, 1, ease.Linear, 1)
	tl.To(&y, 4, 1, ease.Linear, 0)

	tl.Advance(1.5)
	assert.InDelta(t, 2, y, 1e-4)
}

func TestTimelinePhaseNotStartedLeavesFieldAlone(t *testing.T) {
	z := float32(7)
	tl := NewTimeline()
	tl.To(&z, 1, 1, nil, 2)

	tl.Advance(1.5)
	assert.Equal(t, float32(7), z)
}

func TestTimelinePauseExtendsEnd(t *testing.T) {
	var x float32
	completed := 0
	tl := NewTimeline(WithOnComplete(func() { completed++ }))
	tl.To(&x, 1, 1, nil, 0)
	tl.Pause(3)

	assert.Equal(t, float32(4), tl.Duration())
	assert.Equal(t, 2, tl.Len())

	assert.False(t, tl.Advance(2))
	assert.Equal(t, 0, completed)
	assert.True(t, tl.Advance(2))
	assert.Equal(t, 1, completed)

	tl.Advance(1)
	assert.Equal(t, 1, completed, "completion fires once")
}

func TestTimelineCall(t *testing.T) {
	calls := 0
	tl := NewTimeline()
	tl.Call(0.5, func() { calls++ })
	tl.Pause(1)

	tl.Advance(0.25)
	assert.Equal(t, 0, calls)
	tl.Advance(0.25)
	assert.Equal(t, 1, calls)
	tl.Advance(0.25)
	assert.Equal(t, 1, calls)
}

func TestTimelineKillTargets(t *testing.T) {
	var x, y float32
	tl := NewTimeline()
	tl.To(&x, 1, 1, nil, 0)
	tl.To(&y, 1, 2, nil, 0)

	tl.Advance(0.5)
	tl.Kill(&y)
	require.Equal(t, 1, tl.Len())
	assert.Equal(t, float32(1), tl.Duration())

	frozen := y
	tl.Advance(0.25)
	assert.Equal(t, frozen, y)
	assert.InDelta(t, 0.75, x, 1e-4)
}

func TestTimelineKillAllDisarmsCompletion(t *testing.T) {
	var x float32
	completed := false
	tl := NewTimeline(WithOnComplete(func() { completed = true }))
	tl.To(&x, 1, 1, nil, 0)

	tl.Advance(0.5)
	tl.Kill()
	tl.Advance(10)

	assert.False(t, completed)
	assert.InDelta(t, 0.5, x, 1e-4)
	assert.Zero(t, tl.Len())
}

func TestTimelineKillFromCallback(t *testing.T) {
	var x float32
	var tl Timeline
	tl = NewTimeline()
	tl.To(&x, 1, 1, nil, 0)
	tl.Call(0.5, func() { tl.Kill(&x) })
	tl.Pause(1)

	assert.NotPanics(t, func() { tl.Advance(0.75) })
	frozen := x
	tl.Advance(0.125)
	assert.Equal(t, frozen, x)
}

func TestTimelineEmptyCompletesImmediately(t *testing.T) {
	completed := false
	tl := NewTimeline(WithOnComplete(func() { completed = true }))

	assert.True(t, tl.Advance(0))
	assert.True(t, completed)
}

func TestTimelineEasingShapes(t *testing.T) {
	tests := []struct {
		name   string
		easing ease.TweenFunc
		check  func(t *testing.T, mid float32)
	}{
		{"in out quad is symmetric", ease.InOutQuad, func(t *testing.T, mid float32) { assert.InDelta(t, 0.5, mid, 1e-4) }},
		{"out quad leads linear", ease.OutQuad, func(t *testing.T, mid float32) { assert.InDelta(t, 0.75, mid, 1e-4) }},
		{"linear", ease.Linear, func(t *testing.T, mid float32) { assert.InDelta(t, 0.5, mid, 1e-4) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v float32
			tl := NewTimeline()
			tl.To(&v, 1, 1, tt.easing, 0)
			tl.Advance(0.5)
			tt.check(t, v)
		})
	}
}
