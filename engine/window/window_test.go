package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampPixelRatio(t *testing.T) {
	tests := []struct {
		name        string
		framebuffer int
		window      int
		max         float32
		want        float32
	}{
		{name: "standard display", framebuffer: 1280, window: 1280, max: 2, want: 1},
		{name: "retina", framebuffer: 2560, window: 1280, max: 2, want: 2},
		{name: "capped", framebuffer: 3840, window: 1280, max: 2, want: 2},
		{name: "fractional", framebuffer: 1920, window: 1280, max: 2, want: 1.5},
		{name: "below one", framebuffer: 640, window: 1280, max: 2, want: 1},
		{name: "minimized", framebuffer: 0, window: 0, max: 2, want: 1},
		{name: "max below one", framebuffer: 2560, window: 1280, max: 0.5, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ClampPixelRatio(tt.framebuffer, tt.window, tt.max), 1e-6)
		})
	}
}

func TestSetTitleKeepsLatest(t *testing.T) {
	w := &engineWindow{pendingTitle: make(chan string, 1)}
	w.SetTitle("first")
	w.SetTitle("second")
	assert.Equal(t, "second", <-w.pendingTitle)
}
