package node

import "github.com/Carmen-Shannon/flip/common"

// Transform is the local placement of a node relative to its parent.
// Rotation is Euler XYZ in radians. Fields are written in place by animation code, so a Transform
// must only be touched from the render goroutine.
type Transform struct {
	Position [3]float32
	Rotation [3]float32
	Scale    [3]float32
}

// NewTransform returns a Transform at rest with unit scale.
//
// Returns:
//   - *Transform: the new transform
func NewTransform() *Transform {
	return &Transform{Scale: [3]float32{1, 1, 1}}
}

// Reset zeroes position and rotation and keeps the scale.
func (t *Transform) Reset() {
	t.Position = [3]float32{}
	t.Rotation = [3]float32{}
}

// AtRest reports whether position and rotation are all zero.
func (t *Transform) AtRest() bool {
	return t.Position == [3]float32{} && t.Rotation == [3]float32{}
}

// Matrix returns the local model matrix T * Rx * Ry * Rz * S, column-major.
//
// Returns:
//   - [16]float32: the local matrix
func (t *Transform) Matrix() [16]float32 {
	var m [16]float32
	common.BuildModelMatrix(m[:], t.Position, t.Rotation, t.Scale)
	return m
}
