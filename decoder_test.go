package jpeg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSampleSink struct {
	width, height int
	samples       []int32
}

func (s *memSampleSink) WriteSample(componentIndex, x, y int, value int32) error {
	s.samples[y*s.width+x] = value
	return nil
}

// buildLosslessStream hand-assembles a minimal SOF3 stream for a single
// 1-component image, encoding each sample's predictor residual through the
// same writeMagnitude/magnitudeCategory primitives the baseline Huffman
// encoder uses, so the entropy payload is self-consistently correct without
// depending on a full Encoder (lossless encoding has no orchestrator of its
// own, only the decode-side primitives in huffman_decode.go).
func buildLosslessStream(t *testing.T, width, height int, samples []int32, ps uint8) []byte {
	t.Helper()
	enc, err := buildHuffmanEncodeTable(stdLumaDCBits, stdLumaDCHuffVal)
	require.NoError(t, err)

	frame := &FrameHeader{
		Kind: frameLosslessHuffman, Precision: 8, Lines: height, Samples: width,
		Components: []FrameComponent{{ID: 1, H: 1, V: 1, QuantSelector: 0}},
	}
	scan := &ScanHeader{
		Components: []ScanComponent{{ComponentSelector: 1, DCSelector: 0, ACSelector: 0}},
		Ss:         ps, Se: 0, Ah: 0, Al: 0,
	}

	w := NewWriter()
	require.NoError(t, w.WriteMarker(soi))
	require.NoError(t, writeFrameHeader(w, sof3, frame))
	require.NoError(t, writeHuffmanTable(w, 0, 0, stdLumaDCBits, stdLumaDCHuffVal))
	require.NoError(t, writeScanHeader(w, scan))

	at := func(x, y int) int32 { return samples[y*width+x] }
	defaultVal := int32(1) << 7

	w.BeginBitMode()
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var predicted int32
			switch {
			case x == 0 && y == 0:
				predicted = defaultVal
			case y == 0:
				predicted = at(x-1, y)
			case x == 0:
				predicted = at(x, y-1)
			default:
				predicted = losslessPredict(ps, at(x-1, y), at(x, y-1), at(x-1, y-1))
			}
			diff := at(x, y) - predicted
			s := magnitudeCategory(diff)
			require.NoError(t, writeMagnitude(w, enc, s, diff, s))
		}
	}
	require.NoError(t, w.EndBitMode())
	require.NoError(t, w.WriteMarker(eoi))
	return w.Bytes()
}

func TestDecodeLosslessRoundTripsPredictor1(t *testing.T) {
	width, height := 2, 2
	samples := []int32{100, 110, 90, 95}
	data := buildLosslessStream(t, width, height, samples, 1)

	sink := &memSampleSink{width: width, height: height, samples: make([]int32, width*height)}
	dec := NewDecoder(&Options{})
	result, err := dec.DecodeLossless(data, sink)
	require.NoError(t, err)
	assert.Equal(t, frameLosslessHuffman, result.Frame.Kind)
	assert.Equal(t, samples, sink.samples)
}

func TestDecodeLosslessRoundTripsPredictor7(t *testing.T) {
	width, height := 3, 2
	samples := []int32{12, 200, 47, 5, 250, 130}
	data := buildLosslessStream(t, width, height, samples, 7)

	sink := &memSampleSink{width: width, height: height, samples: make([]int32, width*height)}
	dec := NewDecoder(&Options{})
	_, err := dec.DecodeLossless(data, sink)
	require.NoError(t, err)
	assert.Equal(t, samples, sink.samples)
}

func TestDecodeOnLosslessFrameRequiresNoBlockSinkButDecodeRejectsIt(t *testing.T) {
	data := buildLosslessStream(t, 2, 2, []int32{1, 2, 3, 4}, 1)

	dec := NewDecoder(&Options{})
	sink := &memBlockSink{blocksWide: []int{1}, blocksHigh: []int{1}, blocks: [][]Block{make([]Block, 1)}}
	_, err := dec.Decode(data, sink)
	require.Error(t, err)
	code, _ := CodeOf(err)
	assert.Equal(t, InvalidOperation, code)
}

func TestDecodeLosslessOnCoefficientFrameIsRejected(t *testing.T) {
	data, _ := encodeGrayscale(t, 2, 2, 0)

	dec := NewDecoder(&Options{})
	_, err := dec.DecodeLossless(data, &memSampleSink{width: 16, height: 16, samples: make([]int32, 256)})
	require.Error(t, err)
	code, _ := CodeOf(err)
	assert.Equal(t, InvalidOperation, code)
}

func TestDecodeRejectsBadRestartMarkerIndex(t *testing.T) {
	data, _ := encodeGrayscale(t, 6, 4, 3)

	// Corrupt the first restart marker's low nibble so it no longer
	// matches the expected RST0..RST7 cycle. Search only after SOS so a
	// coincidental 0xff byte inside a header segment is never mistaken
	// for one.
	sosAt := -1
	for i := 0; i+1 < len(data); i++ {
		if data[i] == 0xff && marker(data[i+1]) == sos {
			sosAt = i
			break
		}
	}
	require.GreaterOrEqual(t, sosAt, 0, "encoded stream should contain an SOS marker")

	corrupted := append([]byte(nil), data...)
	foundRST := false
	for i := sosAt; i+1 < len(corrupted); i++ {
		if corrupted[i] == 0xff && isRST(marker(corrupted[i+1])) {
			corrupted[i+1] = byte(rst0) + (corrupted[i+1]-byte(rst0)+1)%8
			foundRST = true
			break
		}
	}
	require.True(t, foundRST, "encoded stream should contain at least one restart marker")

	sink := &memBlockSink{blocksWide: []int{6}, blocksHigh: []int{4}, blocks: [][]Block{make([]Block, 24)}}
	dec := NewDecoder(&Options{})
	_, err := dec.Decode(corrupted, sink)
	require.Error(t, err)
	code, _ := CodeOf(err)
	assert.Equal(t, InvalidData, code)
}

func TestIdentifySkipsEntropyDataAcrossRestartMarkers(t *testing.T) {
	data, _ := encodeGrayscale(t, 6, 4, 3)

	dec := NewDecoder(&Options{})
	ident, err := dec.Identify(data)
	require.NoError(t, err)
	assert.Equal(t, 3, ident.RestartInterval)
	assert.Equal(t, len(data), ident.BytesScanned)
}

func TestDecodeRejectsStreamNotStartingWithSOI(t *testing.T) {
	w := NewWriter()
	require.NoError(t, w.WriteMarker(eoi))
	dec := NewDecoder(&Options{})
	_, err := dec.Decode(w.Bytes(), &memBlockSink{blocksWide: []int{1}, blocksHigh: []int{1}, blocks: [][]Block{make([]Block, 1)}})
	require.Error(t, err)
	code, _ := CodeOf(err)
	assert.Equal(t, InvalidMarker, code)
}
