package profiler

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfilerReportsOncePerInterval(t *testing.T) {
	var lines []string
	p := NewProfiler(WithInterval(time.Second), WithLogger(func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}))
	start := p.lastTime

	// 10 frames of 50ms, then one of 500ms
	now := start
	for range 10 {
		now = now.Add(50 * time.Millisecond)
		assert.False(t, p.tick(now))
	}
	now = now.Add(500 * time.Millisecond)
	require.True(t, p.tick(now))

	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "[Profiler] FPS: 11.00")

	s := p.Last()
	assert.InDelta(t, 11, s.FPS, 1e-9)
	assert.Equal(t, time.Second/11, s.AvgFrame)
	assert.Equal(t, 500*time.Millisecond, s.MaxFrame)
	assert.Greater(t, s.SysMB, 0.0)

	// the next interval starts fresh
	now = now.Add(100 * time.Millisecond)
	assert.False(t, p.tick(now))
	assert.Equal(t, 100*time.Millisecond, p.maxFrame)
}

func TestProfilerOptions(t *testing.T) {
	p := NewProfiler(WithInterval(0), WithLogger(nil))
	assert.Equal(t, time.Second, p.updateInterval)
	assert.True(t, p.tick(p.lastTime.Add(2*time.Second)))
	assert.InDelta(t, 0.5, p.Last().FPS, 1e-9)
}

func TestStatsString(t *testing.T) {
	s := Stats{FPS: 60, AvgFrame: 16 * time.Millisecond, MaxFrame: 20 * time.Millisecond, HeapMB: 1.5}
	assert.Contains(t, s.String(), "FPS: 60.00 | Frame: 16.00 ms (max 20.00 ms) | Heap: 1.50 MB")
}
