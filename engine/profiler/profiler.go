package profiler

import (
	"fmt"
	"log"
	"runtime"
	"time"
)

// Profiler tracks frame rate, frame time and memory statistics for performance monitoring.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	lastFrame      time.Time
	maxFrame       time.Duration
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	logf           func(format string, args ...any)
	last           Stats
}

// Stats is the summary of one reporting interval.
type Stats struct {
	FPS         float64
	AvgFrame    time.Duration
	MaxFrame    time.Duration
	HeapMB      float64
	AllocRateMB float64
	GCCount     uint32
	LastPauseUs uint64
	MaxPauseUs  uint64
	SysMB       float64
}

// String formats the stats as one log line.
func (s Stats) String() string {
	return fmt.Sprintf("FPS: %.2f | Frame: %.2f ms (max %.2f ms) | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB",
		s.FPS, ms(s.AvgFrame), ms(s.MaxFrame), s.HeapMB, s.AllocRateMB, s.GCCount, s.LastPauseUs, s.MaxPauseUs, s.SysMB)
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// NewProfiler creates a new Profiler.
// Update interval defaults to 1 second and output goes to log.Printf.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	now := time.Now()
	p := &Profiler{
		lastTime:       now,
		lastFrame:      now,
		updateInterval: time.Second,
		logf:           log.Printf,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: FPS, average and worst frame time, heap usage, allocation rate, GC count/pause times, total memory.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	return p.tick(time.Now())
}

// Last returns the stats of the most recent reporting interval.
func (p *Profiler) Last() Stats {
	return p.last
}

func (p *Profiler) tick(now time.Time) bool {
	p.frameCount++
	if frame := now.Sub(p.lastFrame); frame > p.maxFrame {
		p.maxFrame = frame
	}
	p.lastFrame = now

	elapsed := now.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	s := Stats{
		FPS:      float64(p.frameCount) / elapsed.Seconds(),
		AvgFrame: elapsed / time.Duration(p.frameCount),
		MaxFrame: p.maxFrame,
		// Alloc: live heap, Sys: total bytes obtained from the OS
		HeapMB:  float64(p.memStats.Alloc) / 1024 / 1024,
		SysMB:   float64(p.memStats.Sys) / 1024 / 1024,
		GCCount: p.memStats.NumGC,
	}

	// TotalAlloc only grows, its delta is the churn of this interval
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	s.AllocRateMB = float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	if gcCount := s.GCCount; gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 GC pauses
		s.LastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			s.MaxPauseUs = max(s.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	if p.logf != nil {
		p.logf("[Profiler] %s", s)
	}

	p.last = s
	p.frameCount = 0
	p.maxFrame = 0
	p.lastTime = now
	p.lastGCCount = s.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
