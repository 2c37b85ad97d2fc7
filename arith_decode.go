package jpeg

// arithDecoder implements the ITU-T.81 Annex D binary arithmetic decoder:
// A/C/CT registers, the DECODE and BYTEIN procedures (spec §4.5). It reads
// directly from a raw byte slice rather than through Reader's bit-mode
// register, because Annex D's byte-stuffing/marker handling is evaluated
// at byte granularity with its own lookahead rule, distinct from (if
// similar in spirit to) the Huffman bit reader's.
type arithDecoder struct {
	data []byte
	bp   int // index of the byte last loaded into c's low byte

	c  uint32
	a  uint32
	ct int
}

// newArithDecoder initializes the decoder per the INITDEC procedure
// (Figure D.21), reading from data starting at offset 0.
func newArithDecoder(data []byte) *arithDecoder {
	d := &arithDecoder{data: data, bp: 0}
	d.c = uint32(d.byteAt(0)) << 16
	d.byteIn()
	d.c <<= 7
	d.ct -= 7
	d.a = 0x8000
	return d
}

func (d *arithDecoder) byteAt(i int) byte {
	if i < 0 || i >= len(d.data) {
		return 0xff // past end of entropy data: synthesize fill per spec §4.5
	}
	return d.data[i]
}

// byteIn implements Figure D.22: advances bp and folds the next byte into
// c, treating a literal 0xFF 0x00 as a stuffed 0xFF data byte and a 0xFF
// followed by a real marker as the end of the arithmetic segment (after
// which it keeps feeding the all-ones pad the standard specifies).
func (d *arithDecoder) byteIn() {
	if d.byteAt(d.bp) == 0xff {
		if d.byteAt(d.bp+1) > 0x8f {
			d.c += 0xff00
			d.ct = 8
		} else {
			d.bp++
			d.c += uint32(d.byteAt(d.bp)) << 9
			d.ct = 7
		}
	} else {
		d.bp++
		d.c += uint32(d.byteAt(d.bp)) << 8
		d.ct = 8
	}
}

// bytesConsumed reports how many bytes of data have been read past stuffed
// zeros, for the caller to resynchronize Reader's byte position once the
// scan ends.
func (d *arithDecoder) bytesConsumed() int { return d.bp }

// decodeBit runs the DECODE procedure (Figure D.19/D.20) for context cx,
// returning the decoded bit and updating cx's probability-estimation
// state in place.
func (d *arithDecoder) decodeBit(cx *arithContext) int {
	st := arithStates[cx.index]
	qe := uint32(st.Qe)
	d.a -= qe

	var bit int
	if (d.c >> 16) < qe {
		// LPS path (conditional exchange per D.2's MPS/LPS exchange rule).
		if d.a < qe {
			bit = int(cx.mps)
			cx.index = st.NMPS
		} else {
			bit = int(1 - cx.mps)
			if st.Switch == 1 {
				cx.mps = 1 - cx.mps
			}
			cx.index = st.NLPS
		}
		d.a = qe
	} else {
		d.c -= qe << 16
		if d.a&0x8000 != 0 {
			return int(cx.mps)
		}
		if d.a < qe {
			bit = int(1 - cx.mps)
			if st.Switch == 1 {
				cx.mps = 1 - cx.mps
			}
			cx.index = st.NLPS
		} else {
			bit = int(cx.mps)
			cx.index = st.NMPS
		}
	}

	for d.a&0x8000 == 0 {
		if d.ct == 0 {
			d.byteIn()
		}
		d.a <<= 1
		d.c <<= 1
		d.ct--
	}
	return bit
}

// arithDCContexts holds the five DC conditioning classes (spec §4.5: "DC
// contexts are selected by the sign/zero-ness of the previous DC delta").
// Each class has its own is-zero, sign, and magnitude-category decision
// contexts. Grounded structurally on ITU-T.81 Annex F's decomposition of
// an integer difference into a chain of binary decisions; the MQ decoder
// core above is shared in shape with the J2K MQ coder read in
// other_examples/mrjoshuak-go-jpeg2000 (A/C/CT registers, MPS/LPS
// exchange), but every numeric table and conditioning-class layout here is
// ITU-T.81's, not J2K's.
type arithDCContexts struct {
	classes [5]arithDCClass
}

type arithDCClass struct {
	isZero   arithContext
	sign     arithContext
	magCat   [15]arithContext // chain deciding how many magnitude bits follow
	magBits  [15]arithContext // additional-bit contexts beyond the first
}

func newArithDCContexts() *arithDCContexts { return &arithDCContexts{} }

// classifyDC buckets the previous DC difference into one of five
// conditioning classes using the table's L/U bounds (spec §4.5, §3
// "Arithmetic conditioning table").
func classifyDC(prevDiff int32, cond arithCondDC) int {
	l, u := int32(cond.L), int32(cond.U)
	switch {
	case prevDiff < -u:
		return 0
	case prevDiff < -l:
		return 1
	case prevDiff <= l:
		return 2
	case prevDiff <= u:
		return 3
	default:
		return 4
	}
}

// decodeMagnitude decodes a sign-magnitude integer using a chain of binary
// decisions: an is-zero bit, then (if nonzero) a sign bit and a unary-style
// chain over magCat selecting the bit-length category, then that many
// additional raw-ish bits each arithmetically coded through magBits.
func decodeMagnitude(d *arithDecoder, isZero, sign *arithContext, magCat, magBits *[15]arithContext) (int32, error) {
	if d.decodeBit(isZero) == 0 {
		return 0, nil
	}
	neg := d.decodeBit(sign) == 1

	cat := 1
	for cat < 15 && d.decodeBit(&magCat[cat-1]) == 1 {
		cat++
	}

	v := int32(1)
	for i := 1; i < cat; i++ {
		bit := d.decodeBit(&magBits[i])
		v = v<<1 | int32(bit)
	}
	if neg {
		v = -v
	}
	return v, nil
}

// decodeDCArith decodes one Block's DC coefficient for an arithmetic scan
// (spec §4.5) and returns the DC difference, recording it in comp as the
// previous-difference state used for the next Block's conditioning class.
// The caller adds the difference to the running DC predictor.
func decodeDCArith(d *arithDecoder, tbl *arithDCContexts, cond arithCondDC, comp *arithComponentState) int32 {
	class := classifyDC(comp.prevDCDiff, cond)
	c := &tbl.classes[class]
	diff := decodeMagnitudeNoErr(d, &c.isZero, &c.sign, &c.magCat, &c.magBits)
	comp.prevDCDiff = diff
	return diff
}

func decodeMagnitudeNoErr(d *arithDecoder, isZero, sign *arithContext, magCat, magBits *[15]arithContext) int32 {
	v, _ := decodeMagnitude(d, isZero, sign, magCat, magBits)
	return v
}

// arithACContexts holds the per-zig-zag-position EOB/run contexts plus the
// Kx-conditioned magnitude context groups for an AC table (spec §4.5: "AC
// contexts are selected by zig-zag position and the Kx conditioning
// parameter", Annex F.1.4.2/F.1.4.3).
type arithACContexts struct {
	eob     [63]arithContext // SE(k): does a nonzero coefficient remain from k to the end of the block?
	runCont [63]arithContext // S0(k): is the coefficient at k itself nonzero?
	sign    arithContext
	lowMag  arithACMagContexts // magnitude contexts for positions k < Kx
	highMag arithACMagContexts // magnitude contexts for positions k >= Kx
}

// arithACMagContexts is the Figure F.24 magnitude-category decision chain
// shared across every position in a Kx group, rather than re-instantiated
// per position: isOne decides category==1 vs >1, then magCat/magBits chain
// through the remaining categories exactly as decodeMagnitude's DC chain
// does.
type arithACMagContexts struct {
	isOne   arithContext
	magCat  [14]arithContext
	magBits [14]arithContext
}

func newArithACContexts() *arithACContexts { return &arithACContexts{} }

// decodeACArith decodes the AC coefficients of one Block over k=1..63 for
// an arithmetic scan, following Annex F.1.4.2's decode_ac_coefficients
// procedure: an explicit end-of-block decision at each position (SE), then,
// if more nonzero coefficients remain, a run-continuation chain (S0) to
// locate the next nonzero position, then sign and a Kx-conditioned
// magnitude-category chain (Figure F.24) for that coefficient.
func decodeACArith(d *arithDecoder, tbl *arithACContexts, kx uint8) *Block {
	var blk Block
	k := 1
	for k <= 63 {
		if d.decodeBit(&tbl.eob[k-1]) == 0 {
			break // EOB: every remaining coefficient is zero
		}
		for d.decodeBit(&tbl.runCont[k-1]) == 0 {
			k++
			if k > 63 {
				return &blk // malformed stream: EOB should have fired first
			}
		}

		mag := &tbl.highMag
		if uint8(k) < kx {
			mag = &tbl.lowMag
		}

		neg := d.decodeBit(&tbl.sign) == 1
		var v int32
		if d.decodeBit(&mag.isOne) == 0 {
			v = 1
		} else {
			cat := 2
			for cat < 14 && d.decodeBit(&mag.magCat[cat-2]) == 1 {
				cat++
			}
			v = int32(1)
			for i := 1; i < cat; i++ {
				bit := d.decodeBit(&mag.magBits[i])
				v = v<<1 | int32(bit)
			}
		}
		if neg {
			v = -v
		}
		blk[zigZag[k]] = v
		k++
	}
	return &blk
}

// arithComponentState is the per-component running state an arithmetic
// scan needs beyond the shared DC predictor already tracked by
// scanPlanComponent.
type arithComponentState struct {
	prevDCDiff int32
}
