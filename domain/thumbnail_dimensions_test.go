package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScaleDimensions(t *testing.T) {
	tests := []struct {
		name         string
		w, h, size   int
		wantW, wantH int
	}{
		{"landscape bounded by width", 1200, 900, 300, 300, 225},
		{"portrait bounded by height", 900, 1200, 300, 225, 300},
		{"square bounded by height", 1000, 1000, 250, 250, 250},
		{"smaller than target is not upscaled", 200, 100, 500, 200, 100},
		{"portrait smaller than target", 100, 200, 500, 100, 200},
		{"extreme landscape keeps 1px", 5000, 2, 100, 100, 1},
		{"extreme portrait keeps 1px", 2, 5000, 100, 1, 100},
		{"rounding", 999, 500, 300, 300, 150},
		{"invalid input passes through", 0, 10, 100, 0, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotW, gotH := ScaleDimensions(tt.w, tt.h, tt.size)
			assert.Equal(t, tt.wantW, gotW, "width")
			assert.Equal(t, tt.wantH, gotH, "height")
		})
	}
}

func TestScaleDimensions_NeverUpscales(t *testing.T) {
	for _, size := range []int{1, 10, 100, 500, 4096} {
		for _, dims := range [][2]int{{640, 480}, {480, 640}, {50, 50}, {3000, 10}} {
			w, h := ScaleDimensions(dims[0], dims[1], size)
			assert.LessOrEqual(t, w, dims[0])
			assert.LessOrEqual(t, h, dims[1])
			assert.LessOrEqual(t, max(w, h), max(size, 1))
		}
	}
}
