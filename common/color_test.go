package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHexToLinear(t *testing.T) {
	tests := []struct {
		hex  string
		want [3]float32
	}{
		{"#000000", [3]float32{0, 0, 0}},
		{"#FFFFFF", [3]float32{1, 1, 1}},
		{"#FFD700", [3]float32{1, 0.6795, 0}},
		{"#ffd700", [3]float32{1, 0.6795, 0}},
		{"#808080", [3]float32{0.2159, 0.2159, 0.2159}},
	}
	for _, tt := range tests {
		t.Run(tt.hex, func(t *testing.T) {
			got, err := HexToLinear(tt.hex)
			require.NoError(t, err)
			for i := range 3 {
				assert.InDelta(t, tt.want[i], got[i], 1e-3)
			}
		})
	}
}

func TestHexToLinearInvalid(t *testing.T) {
	_, err := HexToLinear("gold")
	assert.Error(t, err)
	assert.Panics(t, func() { MustHexToLinear("#GG0000") })
}
