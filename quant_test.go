package jpeg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuantTableNaturalRoundTrip(t *testing.T) {
	qt := ScaledQuantTable(0, QuantPrecision8, false, 75)
	natural := qt.Natural()
	for raster, streamIdx := range unzigZag {
		assert.Equal(t, qt.Elements[streamIdx], natural[raster])
	}
}

func TestEstimateQualityRoundTripsScaledQuantTable(t *testing.T) {
	for _, q := range []int{1, 10, 25, 50, 75, 90, 99, 100} {
		luma := ScaledQuantTable(0, QuantPrecision16, false, q)
		chroma := ScaledQuantTable(1, QuantPrecision16, true, q)

		gotLuma := EstimateQuality(luma, false)
		gotChroma := EstimateQuality(chroma, true)
		// 16-bit tables are used because 8-bit elements clamp at 255 for
		// low qualities, which loses the scale. The IJG scale-factor
		// rounding is lossy at the edges; allow a small tolerance rather
		// than requiring exact inverse.
		assert.InDelta(t, q, gotLuma, 2, "quality %d luma round trip", q)
		assert.InDelta(t, q, gotChroma, 2, "quality %d chroma round trip", q)
	}
}

func TestScaledQuantTableIsMonotonicInQuality(t *testing.T) {
	prevSum := 0
	for q := 100; q >= 1; q-- {
		qt := ScaledQuantTable(0, QuantPrecision8, false, q)
		sum := 0
		for _, v := range qt.Elements {
			sum += int(v)
		}
		// Lower quality must never produce strictly smaller (less lossy)
		// quantization elements on net as q decreases.
		assert.GreaterOrEqual(t, sum, prevSum)
		prevSum = sum
	}
}

func TestEstimateQualityPairTakesMinimum(t *testing.T) {
	luma := ScaledQuantTable(0, QuantPrecision8, false, 90)
	chroma := ScaledQuantTable(1, QuantPrecision8, true, 40)
	got := EstimateQualityPair(luma, chroma)
	assert.InDelta(t, 40, got, 2)
}

func TestEstimateQualityPairSingleComponent(t *testing.T) {
	luma := ScaledQuantTable(0, QuantPrecision8, false, 60)
	got := EstimateQualityPair(luma, nil)
	assert.InDelta(t, 60, got, 2)
}
