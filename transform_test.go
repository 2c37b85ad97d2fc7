package jpeg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuantizeDequantizeRoundTripWithinTolerance(t *testing.T) {
	quant := ScaledQuantTable(0, QuantPrecision8, false, 90).Natural()
	fwd := forwardMultiplier(quant)
	inv := dctMultiplier(quant)

	var samples [64]int32
	for i := range samples {
		// A smooth gradient plus a touch of high-frequency content, the
		// kind of block a real encoder's two-pass pipeline has to survive.
		samples[i] = int32(128 + (i%8)*4 - (i/8)*2)
	}

	coeffs := QuantizeBlock(&samples, &fwd, 8)
	out := Dequantize(&coeffs, &inv, 8)

	for i := range samples {
		assert.InDelta(t, samples[i], out[i], 2, "sample %d", i)
	}
}

func TestDequantizeClampsToPrecisionRange(t *testing.T) {
	quant := ScaledQuantTable(0, QuantPrecision8, false, 50).Natural()
	mult := dctMultiplier(quant)

	var coeffs Block
	coeffs[0] = 1 << 20 // absurdly large DC: must clamp, not overflow/panic
	out := Dequantize(&coeffs, &mult, 8)
	for _, v := range out {
		assert.GreaterOrEqual(t, v, int32(0))
		assert.LessOrEqual(t, v, int32(255))
	}
}

func TestDCOnlyBlockProducesFlatSamples(t *testing.T) {
	quant := ScaledQuantTable(0, QuantPrecision8, false, 100).Natural()
	mult := dctMultiplier(quant)

	var coeffs Block
	coeffs[0] = 16 // only the DC term set
	out := Dequantize(&coeffs, &mult, 8)
	want := out[0]
	for i, v := range out {
		assert.InDelta(t, want, v, 1, "flat block should dequantize to a uniform sample at index %d", i)
	}
}
