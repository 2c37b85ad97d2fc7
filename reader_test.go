package jpeg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadMarkerSkipsFillBytes(t *testing.T) {
	r := NewReader([]byte{0xff, 0xff, 0xff, byte(sof0)})
	m, err := r.ReadMarker()
	require.NoError(t, err)
	assert.Equal(t, sof0, m)
}

func TestReadMarkerRejectsStuffingByte(t *testing.T) {
	r := NewReader([]byte{0xff, 0x00})
	_, err := r.ReadMarker()
	require.Error(t, err)
	code, ok := CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, InvalidMarker, code)
}

func TestReadMarkerRejectsMissingPrefix(t *testing.T) {
	r := NewReader([]byte{0x12, 0x34})
	_, err := r.ReadMarker()
	require.Error(t, err)
	code, _ := CodeOf(err)
	assert.Equal(t, InvalidMarker, code)
}

func TestReadLengthRejectsTooSmallWireValue(t *testing.T) {
	r := NewReader([]byte{0x00, 0x01})
	_, err := r.ReadLength()
	require.Error(t, err)
	code, _ := CodeOf(err)
	assert.Equal(t, InvalidData, code)
}

func TestReadLengthReturnsPayloadLenExcludingItself(t *testing.T) {
	r := NewReader([]byte{0x00, 0x05, 1, 2, 3})
	n, err := r.ReadLength()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestReadBytesAdvancesAndErrorsOnShortage(t *testing.T) {
	r := NewReader([]byte{1, 2, 3})
	b, err := r.ReadBytes(2)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, b)
	_, err = r.ReadBytes(5)
	require.Error(t, err)
}

func TestPeekBytesDoesNotAdvance(t *testing.T) {
	r := NewReader([]byte{9, 8, 7})
	b, err := r.PeekBytes(2)
	require.NoError(t, err)
	assert.Equal(t, []byte{9, 8}, b)
	assert.Equal(t, 0, r.Offset())
}

func TestSkipAdvancesOffset(t *testing.T) {
	r := NewReader([]byte{1, 2, 3, 4})
	require.NoError(t, r.Skip(3))
	assert.Equal(t, 3, r.Offset())
	assert.Equal(t, 1, r.Len())
}

func TestBitReaderUnstuffsLiteralFF(t *testing.T) {
	// a literal 0xff data byte is followed by a 0x00 stuffing byte
	r := NewReader([]byte{0xff, 0x00, 0xaa})
	v, err := r.ReadBits(8)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xff), v)
	v, err = r.ReadBits(8)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xaa), v)
}

func TestBitReaderStopsAtInBandMarker(t *testing.T) {
	r := NewReader([]byte{0xaa, 0xff, byte(rst0)})
	v, err := r.ReadBits(8)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xaa), v)

	_, err = r.PeekBits(8)
	require.NoError(t, err)
	assert.True(t, r.HasMarker())
	m, ok := r.Marker()
	require.True(t, ok)
	assert.Equal(t, rst0, m)
}

func TestPeekBitsThenAdvanceBitsMatchesReadBits(t *testing.T) {
	data := []byte{0b10110100, 0b11001010}
	r1 := NewReader(data)
	want, err := r1.ReadBits(12)
	require.NoError(t, err)

	r2 := NewReader(data)
	peeked, err := r2.PeekBits(12)
	require.NoError(t, err)
	r2.AdvanceBits(12)
	assert.Equal(t, want, peeked)
}

func TestAlignToByteSkipsRestOfPartiallyReadByte(t *testing.T) {
	r := NewReader([]byte{0xaa, 0xbb, 0xcc})
	_, err := r.ReadBits(3)
	require.NoError(t, err)
	r.AlignToByte()
	assert.Equal(t, 1, r.Offset())
}

func TestResetBitsKeepsBytePosition(t *testing.T) {
	r := NewReader([]byte{0xaa, 0xbb})
	_, err := r.ReadBits(4)
	require.NoError(t, err)
	posBefore := r.pos
	r.ResetBits()
	assert.Equal(t, posBefore, r.pos)
	assert.Equal(t, uint(0), r.bitCount)
}

func TestAdvanceResynchronizesByteModeFromBitMode(t *testing.T) {
	r := NewReader([]byte{0xaa, 0xbb, 0xcc, 0xdd})
	_, err := r.ReadBits(4)
	require.NoError(t, err)
	// The whole first byte is already folded into the bit register; Advance
	// moves the raw byte cursor forward from there and drops any buffered bits.
	before := r.pos
	r.Advance(2)
	assert.Equal(t, before+2, r.pos)
	assert.Equal(t, uint(0), r.bitCount)
	assert.Equal(t, r.data[r.pos:], r.Remaining())
}
