package jpeg

// huffmanCanonicalCodes assigns canonical Huffman codes to the symbols in
// huffval given the code-length histogram bits[1..16] (bits[0] is unused),
// following the Generate_codes procedure of ITU-T.81 Annex C. It returns,
// parallel to huffval, each symbol's code and code length.
func huffmanCanonicalCodes(bits [17]uint8, huffval []uint8) (codes []uint16, lengths []uint8, err error) {
	total := 0
	for _, c := range bits[1:] {
		total += int(c)
	}
	if total == 0 {
		return nil, nil, errData(-1, "huffman table defines no codes")
	}
	if total > 256 || total != len(huffval) {
		return nil, nil, errData(-1, "huffman table symbol count %d does not match BITS sum", len(huffval))
	}

	// huffsize[k] = code length of the k-th symbol in huffval order.
	huffsize := make([]uint8, total+1)
	k := 0
	for l := 1; l <= 16; l++ {
		for i := 0; i < int(bits[l]); i++ {
			huffsize[k] = uint8(l)
			k++
		}
	}
	huffsize[total] = 0

	// huffcode[k] = canonical code for the k-th symbol.
	huffcode := make([]uint16, total)
	code := uint16(0)
	si := huffsize[0]
	k = 0
	for huffsize[k] != 0 {
		for huffsize[k] == si {
			huffcode[k] = code
			code++
			k++
		}
		if k >= total {
			break
		}
		for huffsize[k] != si {
			code <<= 1
			si++
			if si > 16 {
				return nil, nil, errData(-1, "huffman code length exceeds 16 bits")
			}
		}
	}

	return huffcode, huffsize[:total], nil
}

// huffmanDecodeTable is the fast-lookup decode representation named in spec
// §3 "Huffman decoding table" and §4.4: a flat map from the next 16 peeked
// bits to (symbol, code length), plus the canonical minCode/maxCode/valPtr
// arrays (Annex F) in the style of the teacher's hcnode tree (analyse.go
// printDataUnit). The arrays are built but decodeSymbol does not consult
// them.
type huffmanDecodeTable struct {
	bits    [17]uint8
	huffval []uint8

	lookupSymbol  [65536]uint8
	lookupLenFull [65536]uint8

	minCode [17]int32
	maxCode [17]int32 // -1 when no code of that length exists
	valPtr  [17]int32
}

func buildHuffmanDecodeTable(bits [17]uint8, huffval []uint8) (*huffmanDecodeTable, error) {
	codes, lengths, err := huffmanCanonicalCodes(bits, huffval)
	if err != nil {
		return nil, err
	}

	t := &huffmanDecodeTable{bits: bits, huffval: huffval}
	for l := 0; l <= 16; l++ {
		t.maxCode[l] = -1
	}

	// Annex F canonical arrays, one entry per code length.
	k := 0
	for l := 1; l <= 16; l++ {
		if bits[l] == 0 {
			continue
		}
		t.valPtr[l] = int32(k)
		t.minCode[l] = int32(codes[k])
		k += int(bits[l])
		t.maxCode[l] = int32(codes[k-1])
	}

	// Flat 16-bit lookup: every code is extended with all suffix bit
	// patterns it's a prefix of, per spec §4.4 "peek 16 bits, look up a
	// flat table".
	for i, sym := range huffval {
		l := lengths[i]
		code := codes[i]
		if uint32(code) >= (uint32(1) << l) {
			return nil, errData(-1, "huffman code overflows its own length")
		}
		shift := 16 - l
		base := uint32(code) << shift
		span := uint32(1) << shift
		for suffix := uint32(0); suffix < span; suffix++ {
			idx := base | suffix
			t.lookupSymbol[idx] = sym
			t.lookupLenFull[idx] = l
		}
	}
	return t, nil
}

// decodeSymbol consumes a Huffman symbol from r using the flat table alone.
// There is no bit-by-bit descent: every code is at most 16 bits, and the
// table was built by extending every valid code with all of its suffixes,
// so one 16-bit lookup resolves any valid code.
func (t *huffmanDecodeTable) decodeSymbol(r *Reader) (uint8, error) {
	peek, err := r.PeekBits(16)
	if err != nil {
		return 0, err
	}
	l := t.lookupLenFull[peek]
	if l == 0 {
		return 0, errData(r.Offset(), "invalid huffman code")
	}
	r.AdvanceBits(uint(l))
	return t.lookupSymbol[peek], nil
}

// huffmanEncodeEntry is one symbol's canonical code/length pair.
type huffmanEncodeEntry struct {
	code uint16
	len  uint8
}

// huffmanEncodeTable maps a symbol byte to its canonical code, spec §3
// "Huffman encoding table".
type huffmanEncodeTable struct {
	entries [256]huffmanEncodeEntry
	present [256]bool
}

func buildHuffmanEncodeTable(bits [17]uint8, huffval []uint8) (*huffmanEncodeTable, error) {
	codes, lengths, err := huffmanCanonicalCodes(bits, huffval)
	if err != nil {
		return nil, err
	}
	t := &huffmanEncodeTable{}
	for i, sym := range huffval {
		t.entries[sym] = huffmanEncodeEntry{code: codes[i], len: lengths[i]}
		t.present[sym] = true
	}
	return t, nil
}

func (t *huffmanEncodeTable) encode(w *Writer, symbol uint8) error {
	if !t.present[symbol] {
		return errData(-1, "no huffman code assigned to symbol %d", symbol)
	}
	e := t.entries[symbol]
	return w.WriteBits(uint32(e.code), e.len)
}

// huffmanSpecFromBytes parses the wire BITS[16] + HUFFVAL[...] encoding used
// by DHT segments (spec §4.2) into the bits/huffval pair consumed above.
func huffmanSpecFromBytes(raw []byte) (bits [17]uint8, huffval []uint8, err error) {
	if len(raw) < 16 {
		return bits, nil, errEOF(-1, "truncated huffman BITS list")
	}
	total := 0
	for i := 0; i < 16; i++ {
		bits[i+1] = raw[i]
		total += int(raw[i])
	}
	if total > 256 {
		return bits, nil, errData(-1, "huffman BITS sum %d exceeds 256", total)
	}
	if len(raw) < 16+total {
		return bits, nil, errEOF(-1, "truncated huffman HUFFVAL list")
	}
	huffval = append([]uint8(nil), raw[16:16+total]...)
	return bits, huffval, nil
}
