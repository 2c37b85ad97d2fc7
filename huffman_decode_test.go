package jpeg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReceiveExtendZeroCategoryConsumesNoBits(t *testing.T) {
	r := NewReader([]byte{0xff, 0x00}) // a stuffed 0xff; category 0 reads none of it
	v, err := receiveExtend(r, 0)
	require.NoError(t, err)
	assert.Equal(t, int32(0), v)
}

func TestReceiveExtendSignExtendsNegativeRange(t *testing.T) {
	w := NewWriter()
	w.BeginBitMode()
	require.NoError(t, w.WriteBits(magnitudeBits(-5, 3), 3))
	require.NoError(t, w.EndBitMode())

	r := NewReader(w.Bytes())
	v, err := receiveExtend(r, 3)
	require.NoError(t, err)
	assert.Equal(t, int32(-5), v)
}

func oneComponentPlan() *scanPlanComponent {
	return &scanPlanComponent{sel: ScanComponent{ComponentSelector: 1}, h: 1, v: 1, blocksWide: 1, blocksHigh: 1}
}

func TestDecodeBaselineBlockRoundTripsWithEncode(t *testing.T) {
	dcEnc, err := buildHuffmanEncodeTable(stdLumaDCBits, stdLumaDCHuffVal)
	require.NoError(t, err)
	dcDec, err := buildHuffmanDecodeTable(stdLumaDCBits, stdLumaDCHuffVal)
	require.NoError(t, err)

	acBits := [17]uint8{0, 0, 2, 1, 1, 1, 1, 1, 1, 1, 1, 0, 0, 0, 0, 0, 0}
	acVal := []uint8{0x00, 0xf0, 0x01, 0x02, 0x03, 0x11, 0x04, 0x05, 0x21, 0x31}
	acEnc, err := buildHuffmanEncodeTable(acBits, acVal)
	require.NoError(t, err)
	acDec, err := buildHuffmanDecodeTable(acBits, acVal)
	require.NoError(t, err)

	var blk Block
	blk[0] = 12 // DC
	blk[zigZag[1]] = 3
	blk[zigZag[2]] = -1

	encComp := oneComponentPlan()
	w := NewWriter()
	w.BeginBitMode()
	require.NoError(t, encodeBaselineBlock(w, dcEnc, acEnc, encComp, &blk))
	require.NoError(t, w.EndBitMode())

	decComp := oneComponentPlan()
	r := NewReader(w.Bytes())
	got, err := decodeBaselineBlock(r, dcDec, acDec, decComp)
	require.NoError(t, err)
	assert.Equal(t, blk, *got)
}

func TestLosslessPredictAllSelectors(t *testing.T) {
	a, b, c := int32(10), int32(20), int32(5)
	cases := map[uint8]int32{
		1: a,
		2: b,
		3: c,
		4: a + b - c,
		5: a + (b-c)/2,
		6: b + (a-c)/2,
		7: (a + b) / 2,
	}
	for ps, want := range cases {
		assert.Equal(t, want, losslessPredict(ps, a, b, c), "predictor %d", ps)
	}
}

func TestDecodeLosslessSampleAddsResidualToPrediction(t *testing.T) {
	tbl, err := buildHuffmanDecodeTable(stdLumaDCBits, stdLumaDCHuffVal)
	require.NoError(t, err)
	encTbl, err := buildHuffmanEncodeTable(stdLumaDCBits, stdLumaDCHuffVal)
	require.NoError(t, err)

	w := NewWriter()
	w.BeginBitMode()
	diff := int32(-4)
	s := magnitudeCategory(diff)
	require.NoError(t, writeMagnitude(w, encTbl, s, diff, s))
	require.NoError(t, w.EndBitMode())

	r := NewReader(w.Bytes())
	got, err := decodeLosslessSample(r, tbl, 100)
	require.NoError(t, err)
	assert.Equal(t, int32(96), got)
}
