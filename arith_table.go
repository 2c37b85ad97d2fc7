package jpeg

// arithCondDC holds the L/U conditioning bounds for a DC arithmetic
// coding table (spec §3 "Arithmetic conditioning table", §4.5). Defaults
// L=0, U=1 apply absent an explicit DAC segment.
type arithCondDC struct {
	L, U uint8
}

// arithCondAC holds the Kx conditioning threshold for an AC arithmetic
// coding table. Default Kx=5 applies absent an explicit DAC segment.
type arithCondAC struct {
	Kx uint8
}

func defaultArithCondDC() arithCondDC { return arithCondDC{L: 0, U: 1} }
func defaultArithCondAC() arithCondAC { return arithCondAC{Kx: 5} }

// arithState is one row of the probability-estimation state machine, T.81
// Annex D Table D.3: the current probability of the less-probable symbol
// (Qe, in fixed-point 16-bit form), the next state index on an LPS/MPS
// renormalization (in that column order, as the rows below list them), and
// whether an LPS exchange at this state also flips
// which symbol value is "more probable" (the SWITCH column).
//
// This table is specific to ITU-T.81; it is not present anywhere in the
// retrieval pack. The JPEG2000 MQ-coder example in the pack
// (other_examples, mrjoshuak-go-jpeg2000 internal/entropy/mqc.go) uses the
// same decoder *shape* (A/C/CT registers, MPS/LPS renormalization) but a
// numerically different 94-entry table defined by ITU-T.800 Annex C; the
// two standards are not interchangeable, so this table is transcribed
// directly from T.81 rather than adapted from the J2K table, the same way
// the teacher hand-codes its own standard constant tables (zig-zag order,
// the marker list) as Go literals.
type arithState struct {
	Qe     uint16
	NLPS   uint8
	NMPS   uint8
	Switch uint8
}

var arithStates = [113]arithState{
	{0x5a1d, 1, 1, 1}, {0x2586, 14, 2, 0}, {0x1114, 16, 3, 0}, {0x080b, 18, 4, 0},
	{0x03d8, 20, 5, 0}, {0x01da, 23, 6, 0}, {0x00e5, 25, 7, 0}, {0x006f, 28, 8, 0},
	{0x0036, 30, 9, 0}, {0x001a, 33, 10, 0}, {0x000d, 35, 11, 0}, {0x0006, 9, 12, 0},
	{0x0003, 10, 13, 0}, {0x0001, 12, 13, 0}, {0x5a7f, 15, 15, 1}, {0x3f25, 36, 16, 0},
	{0x2cf2, 38, 17, 0}, {0x207c, 39, 18, 0}, {0x17b9, 40, 19, 0}, {0x1182, 42, 20, 0},
	{0x0cef, 43, 21, 0}, {0x09a1, 45, 22, 0}, {0x072f, 46, 23, 0}, {0x055c, 48, 24, 0},
	{0x0406, 49, 25, 0}, {0x0303, 51, 26, 0}, {0x0240, 52, 27, 0}, {0x01b1, 54, 28, 0},
	{0x0144, 56, 29, 0}, {0x00f5, 57, 30, 0}, {0x00b7, 59, 31, 0}, {0x008a, 60, 32, 0},
	{0x0068, 62, 33, 0}, {0x004e, 63, 34, 0}, {0x003b, 32, 35, 0}, {0x002c, 33, 9, 0},
	{0x5ae1, 37, 37, 1}, {0x484c, 64, 38, 0}, {0x3a0d, 65, 39, 0}, {0x2ef1, 67, 40, 0},
	{0x261f, 68, 41, 0}, {0x1f33, 69, 42, 0}, {0x19a8, 70, 43, 0}, {0x1518, 72, 44, 0},
	{0x1177, 73, 45, 0}, {0x0e74, 74, 46, 0}, {0x0bfb, 75, 47, 0}, {0x09f8, 77, 48, 0},
	{0x0861, 78, 49, 0}, {0x0706, 79, 50, 0}, {0x05d9, 48, 51, 0}, {0x04f6, 50, 52, 0},
	{0x040f, 50, 53, 0}, {0x0363, 51, 54, 0}, {0x02d4, 52, 55, 0}, {0x025c, 53, 56, 0},
	{0x01f8, 54, 57, 0}, {0x01a4, 55, 58, 0}, {0x0160, 56, 59, 0}, {0x0125, 57, 60, 0},
	{0x00f6, 58, 61, 0}, {0x00cb, 59, 62, 0}, {0x00ab, 61, 63, 0}, {0x008f, 61, 32, 0},
	{0x5b12, 65, 65, 1}, {0x4d04, 80, 66, 0}, {0x412c, 81, 67, 0}, {0x37d8, 82, 68, 0},
	{0x2fe8, 83, 69, 0}, {0x293c, 84, 70, 0}, {0x2379, 86, 71, 0}, {0x1edf, 87, 72, 0},
	{0x1aa9, 87, 73, 0}, {0x174e, 72, 74, 0}, {0x1424, 72, 75, 0}, {0x119c, 74, 76, 0},
	{0x0f6b, 74, 77, 0}, {0x0d51, 75, 78, 0}, {0x0bb6, 77, 79, 0}, {0x0a40, 77, 48, 0},
	{0x5832, 80, 81, 0}, {0x4d1c, 88, 82, 0}, {0x438e, 89, 83, 0}, {0x3bdd, 90, 84, 0},
	{0x34ee, 91, 85, 0}, {0x2eae, 92, 86, 0}, {0x299a, 93, 87, 0}, {0x2516, 86, 71, 0},
	{0x5570, 88, 89, 0}, {0x4ca9, 95, 90, 0}, {0x44d9, 96, 91, 0}, {0x3e22, 97, 92, 0},
	{0x3824, 99, 93, 0}, {0x32b4, 99, 94, 0}, {0x2e17, 93, 86, 0}, {0x56a8, 95, 96, 0},
	{0x543a, 100, 97, 0}, {0x4f7e, 101, 98, 0}, {0x4a41, 102, 99, 0}, {0x4551, 103, 100, 0},
	{0x4153, 104, 101, 0}, {0x3c3d, 99, 102, 0}, {0x375e, 105, 103, 0}, {0x3331, 106, 104, 0},
	{0x2e69, 107, 105, 0}, {0x2a6e, 103, 106, 0}, {0x2663, 104, 107, 0}, {0x1ff3, 108, 103, 0},
	{0x1bdc, 109, 108, 0}, {0x18f3, 110, 109, 0}, {0x15d2, 111, 110, 0}, {0x13b3, 112, 111, 0},
	{0x11bf, 112, 112, 0},
}

// arithContext is one context's live state: an index into arithStates plus
// the current sense of which symbol value is "more probable" (spec §4.5).
type arithContext struct {
	index uint8
	mps   uint8
}
