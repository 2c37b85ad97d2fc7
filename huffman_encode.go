package jpeg

// magnitudeCategory returns bit_length(|v|): the number of bits needed to
// represent v's magnitude, 0 for v == 0 (spec §4.4 "Encode (baseline)").
func magnitudeCategory(v int32) uint8 {
	if v < 0 {
		v = -v
	}
	var s uint8
	for v != 0 {
		s++
		v >>= 1
	}
	return s
}

// magnitudeBits returns the S-bit field to emit after a magnitude-category
// Huffman code: v unchanged if non-negative, ones-complement if negative
// (spec §4.4 "the ones-complement for negatives / value for non-negatives").
func magnitudeBits(v int32, s uint8) uint32 {
	if v < 0 {
		v = v + (int32(1)<<s) - 1
	}
	return uint32(v) & ((1 << s) - 1)
}

func writeMagnitude(w *Writer, enc *huffmanEncodeTable, rs uint8, v int32, s uint8) error {
	if err := enc.encode(w, rs); err != nil {
		return err
	}
	if s == 0 {
		return nil
	}
	return w.WriteBits(magnitudeBits(v, s), s)
}

// encodeBaselineBlock is the inverse of decodeBaselineBlock for an
// already-quantized block: DC delta, AC run-length symbols, EOB/ZRL (spec
// §4.4 "Encode (baseline)").
func encodeBaselineBlock(w *Writer, dc, ac *huffmanEncodeTable, comp *scanPlanComponent, blk *Block) error {
	diff := blk[0] - comp.dcPred
	comp.dcPred = blk[0]
	s := magnitudeCategory(diff)
	if err := writeMagnitude(w, dc, s, diff, s); err != nil {
		return err
	}

	run := 0
	for k := 1; k <= 63; k++ {
		v := blk[zigZag[k]]
		if v == 0 {
			run++
			continue
		}
		for run >= 16 {
			if err := ac.encode(w, 0xf0); err != nil { // ZRL
				return err
			}
			run -= 16
		}
		size := magnitudeCategory(v)
		rs := uint8(run)<<4 | size
		if err := writeMagnitude(w, ac, rs, v, size); err != nil {
			return err
		}
		run = 0
	}
	if run > 0 {
		return ac.encode(w, 0x00) // EOB
	}
	return nil
}

// huffmanFreqTable is a 257-bin frequency histogram: 256 symbols plus a
// sentinel at index 256 that the optimal-Huffman gather guarantees gets
// the longest code, per spec §4.4 "a sentinel at 256 guaranteed to be
// assigned the longest code so that no all-ones code of length 16
// appears".
type huffmanFreqTable [257]int64

// gatherBaselineBlock accumulates DC/AC symbol frequencies for blk without
// emitting any bits, the first pass of the optimal-Huffman procedure.
func gatherBaselineBlock(dcFreq, acFreq *huffmanFreqTable, comp *scanPlanComponent, blk *Block) {
	diff := blk[0] - comp.dcPred
	comp.dcPred = blk[0]
	dcFreq[magnitudeCategory(diff)]++

	run := 0
	for k := 1; k <= 63; k++ {
		v := blk[zigZag[k]]
		if v == 0 {
			run++
			continue
		}
		for run >= 16 {
			acFreq[0xf0]++
			run -= 16
		}
		size := magnitudeCategory(v)
		acFreq[uint8(run)<<4|size]++
		run = 0
	}
	if run > 0 {
		acFreq[0x00]++
	}
}

// maxCodeLength bounds the depth the merge tree below can reach before
// being clamped back to 16; 32 comfortably exceeds any histogram this
// package can produce (at most 257 leaves).
const maxCodeLength = 32

// buildOptimalTable runs the standard JPEG optimal-Huffman procedure
// (ITU-T.81 Annex K.3, as implemented by IJG's jpeg_gen_optimal_table):
// a least-frequency Huffman merge over freq (with freq[256] forced to 1 as
// the sentinel), followed by the length-limit-to-16 adjustment, and
// returns the resulting canonical BITS/HUFFVAL pair. Grounded on the
// procedure spec §4.4 describes in prose; no pack library builds
// JPEG-canonical optimal tables, so this is necessarily hand-written.
func buildOptimalTable(freq huffmanFreqTable) (bits [17]uint8, huffval []uint8, err error) {
	freq[256] = 1

	codesize := [257]int{}
	others := [257]int{}
	for i := range others {
		others[i] = -1
	}

	for {
		c1, c2 := -1, -1
		v1, v2 := int64(1<<62), int64(1<<62)
		for i := 0; i <= 256; i++ {
			if freq[i] != 0 && freq[i] <= v1 {
				v1, c1 = freq[i], i
			}
		}
		for i := 0; i <= 256; i++ {
			if freq[i] != 0 && i != c1 && freq[i] <= v2 {
				v2, c2 = freq[i], i
			}
		}
		if c2 < 0 {
			break
		}

		freq[c1] += freq[c2]
		freq[c2] = 0

		codesize[c1]++
		for others[c1] >= 0 {
			c1 = others[c1]
			codesize[c1]++
		}
		others[c1] = c2

		codesize[c2]++
		for others[c2] >= 0 {
			c2 = others[c2]
			codesize[c2]++
		}
	}

	var clen [maxCodeLength + 1]int
	for i := 0; i <= 256; i++ {
		if codesize[i] > 0 {
			clen[codesize[i]]++
		}
	}

	// Limit code lengths to 16 bits (spec §4.4 "clamped to 16 using the
	// JPEG adjustment procedure").
	for i := maxCodeLength; i > 16; i-- {
		for clen[i] > 0 {
			j := i - 2
			for clen[j] == 0 {
				j--
			}
			clen[i] -= 2
			clen[i-1]++
			clen[j+1] += 2
			clen[j]--
		}
	}

	// Remove the sentinel's slot from the length count that actually
	// carries it, leaving 256 real symbols.
	for i := 16; i > 0; i-- {
		if clen[i] > 0 {
			clen[i]--
			break
		}
	}

	for i := 1; i <= 16; i++ {
		bits[i] = uint8(clen[i])
	}

	for length := 1; length <= maxCodeLength; length++ {
		for sym := 0; sym <= 255; sym++ {
			if codesize[sym] == length {
				huffval = append(huffval, uint8(sym))
			}
		}
	}
	return bits, huffval, nil
}
