package jpeg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRSTRange(t *testing.T) {
	for m := rst0; m <= rst7; m++ {
		assert.True(t, isRST(m), "0x%02x should be a restart marker", uint8(m))
	}
	assert.False(t, isRST(sos))
	assert.False(t, isRST(dht))
}

func TestIsAPPnRange(t *testing.T) {
	assert.True(t, isAPPn(app0))
	assert.True(t, isAPPn(app14))
	assert.True(t, isAPPn(marker(0xef)))
	assert.False(t, isAPPn(sos))
}

func TestIsSOFCoversAllFrameMarkers(t *testing.T) {
	for _, m := range []marker{sof0, sof1, sof2, sof3, sof5, sof6, sof7, sof9, sof10, sof11, sof13, sof14, sof15} {
		assert.True(t, isSOF(m), "0x%02x should be a SOF marker", uint8(m))
	}
	assert.False(t, isSOF(dht))
	assert.False(t, isSOF(sos))
}

func TestClassifyFrameSupportedKinds(t *testing.T) {
	cases := []struct {
		m    marker
		want frameKind
	}{
		{sof0, frameBaselineHuffman},
		{sof1, frameExtendedHuffman},
		{sof2, frameProgressiveHuffman},
		{sof3, frameLosslessHuffman},
		{sof9, frameSequentialArith},
		{sof10, frameProgressiveArith},
	}
	for _, c := range cases {
		kind, err := classifyFrame(c.m, 0)
		require.NoError(t, err)
		assert.Equal(t, c.want, kind)
	}
}

func TestClassifyFrameRejectsHierarchicalAndDifferential(t *testing.T) {
	for _, m := range []marker{sof5, sof6, sof7, sof11, sof13, sof14, sof15} {
		_, err := classifyFrame(m, 3)
		require.Error(t, err)
		code, ok := CodeOf(err)
		require.True(t, ok)
		assert.Equal(t, Unsupported, code)
	}
}

func TestMarkerNameKnownAndRestartAPPn(t *testing.T) {
	assert.Equal(t, "SOI", markerName(soi))
	assert.Equal(t, "DHT", markerName(dht))
	assert.Equal(t, "RST0", markerName(rst0))
	assert.Equal(t, "RST7", markerName(rst7))
	assert.Equal(t, "APP0", markerName(app0))
}
