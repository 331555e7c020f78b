package coin

import (
	"fmt"
	"math/rand/v2"

	"github.com/chewxy/math32"
)

// Axis is the rotation axis a cycle flips the coin around.
type Axis int

const (
	// AxisX tumbles the coin end over end, toward the camera.
	AxisX Axis = iota

	// AxisY spins the coin like a top, edge on to the camera halfway through each turn.
	AxisY
)

// Index returns the Transform rotation component the axis drives.
func (a Axis) Index() int {
	if a == AxisY {
		return 1
	}
	return 0
}

func (a Axis) String() string {
	if a == AxisY {
		return "y"
	}
	return "x"
}

// CycleParams are the randomized parameters of one cycle.
type CycleParams struct {
	Flips        int
	Axis         Axis
	FlipDuration float32 // seconds
	JumpHeight   float32
	Wobble       float32 // radians around Z on landing
}

// Bounds limits the randomized cycle parameters. Float ranges are half open, [min, max).
type Bounds struct {
	MinFlips     int
	MaxFlips     int
	YAxisBias    float32 // probability of AxisY
	FlipDuration [2]float32
	JumpHeight   [2]float32
	Wobble       [2]float32
}

// DefaultBounds returns two to four flips over three to five seconds, a jump of 1.5 to 2 units and
// a wobble of up to 0.075π either way, with a 30% chance of flipping around Y.
func DefaultBounds() Bounds {
	return Bounds{
		MinFlips:     2,
		MaxFlips:     4,
		YAxisBias:    0.3,
		FlipDuration: [2]float32{3, 5},
		JumpHeight:   [2]float32{1.5, 2},
		Wobble:       [2]float32{-0.075 * math32.Pi, 0.075 * math32.Pi},
	}
}

// Validate reports the first inconsistent bound.
//
// Returns:
//   - error: nil if the bounds can be drawn from
func (b Bounds) Validate() error {
	switch {
	case b.MinFlips < 1 || b.MaxFlips < b.MinFlips:
		return fmt.Errorf("flip bounds must satisfy 1 <= min <= max, got %d..%d", b.MinFlips, b.MaxFlips)
	case b.YAxisBias < 0 || b.YAxisBias > 1:
		return fmt.Errorf("y axis bias must be in [0, 1], got %v", b.YAxisBias)
	case b.FlipDuration[0] <= 0 || b.FlipDuration[1] < b.FlipDuration[0]:
		return fmt.Errorf("flip duration bounds must be positive and ordered, got %v", b.FlipDuration)
	case b.JumpHeight[0] < 0 || b.JumpHeight[1] < b.JumpHeight[0]:
		return fmt.Errorf("jump height bounds must be non-negative and ordered, got %v", b.JumpHeight)
	case b.Wobble[1] < b.Wobble[0]:
		return fmt.Errorf("wobble bounds must be ordered, got %v", b.Wobble)
	}
	return nil
}

// Draw picks a cycle's parameters.
//
// Parameters:
//   - r: the random source
//
// Returns:
//   - CycleParams: parameters within the bounds
func (b Bounds) Draw(r *rand.Rand) CycleParams {
	p := CycleParams{
		Flips:        b.MinFlips + r.IntN(b.MaxFlips-b.MinFlips+1),
		Axis:         AxisX,
		FlipDuration: lerp(b.FlipDuration, r.Float32()),
		JumpHeight:   lerp(b.JumpHeight, r.Float32()),
		Wobble:       lerp(b.Wobble, r.Float32()),
	}
	if r.Float32() < b.YAxisBias {
		p.Axis = AxisY
	}
	return p
}

func lerp(r [2]float32, t float32) float32 {
	return r[0] + (r[1]-r[0])*t
}
