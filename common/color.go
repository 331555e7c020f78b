package common

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// HexToLinear parses an sRGB hex color ("#RRGGBB" or "#RGB") and returns it in linear
// RGB, the space the shaders light in.
//
// Parameters:
//   - hex: the hex color string
//
// Returns:
//   - [3]float32: linear red, green and blue in [0, 1]
//   - error: an error if the string is not a valid hex color
func HexToLinear(hex string) ([3]float32, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return [3]float32{}, fmt.Errorf("failed to parse color %q: %w", hex, err)
	}
	r, g, b := c.LinearRgb()
	return [3]float32{float32(r), float32(g), float32(b)}, nil
}

// MustHexToLinear is HexToLinear for compile-time constant colors. It panics on a
// malformed string.
func MustHexToLinear(hex string) [3]float32 {
	c, err := HexToLinear(hex)
	if err != nil {
		panic(fmt.Sprintf("common: %v", err))
	}
	return c
}
