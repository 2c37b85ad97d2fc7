package jpeg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZigZagIsPermutation(t *testing.T) {
	seen := make([]bool, 64)
	for _, raster := range zigZag {
		assert.False(t, seen[raster], "raster index %d visited twice", raster)
		seen[raster] = true
	}
	for i, ok := range seen {
		assert.True(t, ok, "raster index %d never visited by zigZag", i)
	}
}

func TestUnzigZagIsInverse(t *testing.T) {
	for stream, raster := range zigZag {
		assert.Equal(t, stream, unzigZag[raster])
	}
}
