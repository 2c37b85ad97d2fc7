package jpeg

// zigZag is the canonical JPEG Annex A 8x8 zig-zag order, as a stream ->
// raster lookup: zigZag[streamIndex] gives the natural (raster) Block index. Grounded on
// the teacher's zigZagRowCol table (jpeg.go), flattened to a single 64-entry
// permutation as spec §4.6 names it: BLOCK_TO_STREAM / STREAM_TO_BLOCK.
var zigZag = [64]int{
	0, 1, 8, 16, 9, 2, 3, 10,
	17, 24, 32, 25, 18, 11, 4, 5,
	12, 19, 26, 33, 40, 48, 41, 34,
	27, 20, 13, 6, 7, 14, 21, 28,
	35, 42, 49, 56, 57, 50, 43, 36,
	29, 22, 15, 23, 30, 37, 44, 51,
	58, 59, 52, 45, 38, 31, 39, 46,
	53, 60, 61, 54, 47, 55, 62, 63,
}

// unzigZag is the inverse permutation: unzigZag[rasterIndex] gives the
// stream index. Built once from zigZag rather than hand-duplicated, so the
// two tables can never drift apart.
var unzigZag = func() (inv [64]int) {
	for stream, raster := range zigZag {
		inv[raster] = stream
	}
	return
}()

// Block is an 8x8 array of signed coefficients in natural raster order,
// spec §3 "Block". dataUnit in the teacher (jpeg.go: type dataUnit [64]int16)
// used int16; this core widens to int32 so that lossless mode's up-to-16-bit
// predicted samples and progressive successive-approximation shifts never
// overflow mid-computation, narrowing only at the point samples are written.
type Block [64]int32

// fblock is the floating-point counterpart used inside the DCT, spec §3.
type fblock [64]float64
