package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
)

// Player plays landing chimes through the default audio device.
type Player interface {
	// Chime starts one landing chime. Overlapping chimes are mixed.
	Chime()

	// Close stops playback and releases the audio device. Later chimes are ignored.
	Close()
}

type player struct {
	mu     *sync.Mutex
	mixer  *beep.Mixer
	rate   beep.SampleRate
	freq   float64
	volume float64
	closed bool

	// lock and unlock guard the mixer against the speaker goroutine
	lock   func()
	unlock func()
	close  func()
}

var _ Player = &player{}

// NewPlayer opens the default audio device and starts an empty mixer on it.
//
// Parameters:
//   - options: functional options to configure the player
//
// Returns:
//   - Player: the player
//   - error: an error if the audio device could not be opened
func NewPlayer(options ...PlayerBuilderOption) (Player, error) {
	p := newPlayer(options...)
	if err := speaker.Init(p.rate, p.rate.N(time.Second/10)); err != nil {
		return nil, fmt.Errorf("failed to initialize speaker: %w", err)
	}
	p.lock, p.unlock, p.close = speaker.Lock, speaker.Unlock, speaker.Close
	speaker.Play(p.mixer)
	return p, nil
}

func newPlayer(options ...PlayerBuilderOption) *player {
	p := &player{
		mu:     &sync.Mutex{},
		mixer:  &beep.Mixer{},
		rate:   beep.SampleRate(44100),
		freq:   880,
		volume: -1,
		lock:   func() {},
		unlock: func() {},
		close:  func() {},
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *player) Chime() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}

	s := &effects.Volume{Streamer: NewChime(p.freq, p.rate), Base: 2, Volume: p.volume}
	p.lock()
	p.mixer.Add(s)
	p.unlock()
}

func (p *player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true

	p.lock()
	p.mixer.Clear()
	p.unlock()
	p.close()
}
