package jpeg

// receiveExtend reads s raw magnitude bits and sign-extends them per spec
// §4.4: "(bits < (1 << (T-1))) ? bits - (1<<T) + 1 : bits". s == 0 yields 0
// without consuming any bits (the DC-delta and AC-magnitude category 0
// case).
func receiveExtend(r *Reader, s uint8) (int32, error) {
	if s == 0 {
		return 0, nil
	}
	bits, err := r.ReadBits(uint(s))
	if err != nil {
		return 0, err
	}
	v := int32(bits)
	half := int32(1) << (s - 1)
	if v < half {
		v = v - (int32(1) << s) + 1
	}
	return v, nil
}

// decodeBaselineBlock decodes one full 8x8 Block (DC + AC, spans k=0..63)
// for sequential Huffman frames (SOF0/SOF1), spec §4.4 "Baseline Block
// decode".
func decodeBaselineBlock(r *Reader, dc, ac *huffmanDecodeTable, comp *scanPlanComponent) (*Block, error) {
	var blk Block

	t, err := dc.decodeSymbol(r)
	if err != nil {
		return nil, err
	}
	diff, err := receiveExtend(r, t)
	if err != nil {
		return nil, err
	}
	comp.dcPred += diff
	blk[0] = comp.dcPred

	k := 1
	for k <= 63 {
		rs, err := ac.decodeSymbol(r)
		if err != nil {
			return nil, err
		}
		run := rs >> 4
		size := rs & 0x0f
		if size == 0 {
			if run == 15 {
				k += 16 // ZRL
				continue
			}
			break // EOB: remaining coefficients stay zero
		}
		k += int(run)
		if k > 63 {
			return nil, errData(r.Offset(), "AC run overruns Block")
		}
		v, err := receiveExtend(r, size)
		if err != nil {
			return nil, err
		}
		blk[zigZag[k]] = v
		k++
	}
	return &blk, nil
}

// decodeProgressiveDCFirst decodes the DC coefficient of one Block in a
// first (Ah=0) DC scan (spec §4.4 "first scan at Ah=0 writes the
// coefficient shifted left by Al").
func decodeProgressiveDCFirst(r *Reader, dc *huffmanDecodeTable, comp *scanPlanComponent, al uint8) (int32, error) {
	t, err := dc.decodeSymbol(r)
	if err != nil {
		return 0, err
	}
	diff, err := receiveExtend(r, t)
	if err != nil {
		return 0, err
	}
	comp.dcPred += diff
	return comp.dcPred << al, nil
}

// decodeProgressiveDCRefine reads the single correction bit of a DC
// refinement scan (Ah>0) and returns the bit to OR into bit position Al.
func decodeProgressiveDCRefine(r *Reader, al uint8) (int32, error) {
	bit, err := r.ReadBits(1)
	if err != nil {
		return 0, err
	}
	return int32(bit) << al, nil
}

// decodeProgressiveACFirst decodes one Block's contribution to a first
// (Ah=0) AC scan over band [ss,se], maintaining the cross-Block EOB-run
// counter in plan (spec §4.4 "EOB runs for AC scans span multiple
// blocks"). It writes coefficients pre-shifted by Al.
func decodeProgressiveACFirst(r *Reader, ac *huffmanDecodeTable, plan *scanPlan, blk *Block, ss, se, al uint8) error {
	if plan.eobRun > 0 {
		plan.eobRun--
		return nil
	}
	k := int(ss)
	for k <= int(se) {
		rs, err := ac.decodeSymbol(r)
		if err != nil {
			return err
		}
		run := rs >> 4
		size := rs & 0x0f
		if size == 0 {
			if run < 15 {
				eobRun := (int32(1) << run) - 1
				if run > 0 {
					bits, err := r.ReadBits(uint(run))
					if err != nil {
						return err
					}
					eobRun += int32(bits)
				}
				plan.eobRun = int(eobRun)
				return nil
			}
			k += 16 // ZRL
			continue
		}
		k += int(run)
		if k > int(se) {
			return errData(r.Offset(), "progressive AC run overruns band")
		}
		v, err := receiveExtend(r, size)
		if err != nil {
			return err
		}
		blk[zigZag[k]] = v << al
		k++
	}
	return nil
}

// decodeProgressiveACRefine applies a refinement (Ah>0) AC scan to blk
// over band [ss,se], per spec §4.4: "inserted into existing nonzero
// positions while traversing zero runs." Mirrors the standard refinement
// algorithm (ITU-T.81 Annex G.1.2.3).
func decodeProgressiveACRefine(r *Reader, ac *huffmanDecodeTable, plan *scanPlan, blk *Block, ss, se, al uint8) error {
	p1 := int32(1) << al
	m1 := int32(-1) << al

	k := int(ss)
	if plan.eobRun == 0 {
		for ; k <= int(se); k++ {
			rs, err := ac.decodeSymbol(r)
			if err != nil {
				return err
			}
			run := int(rs >> 4)
			size := rs & 0x0f

			var newVal int32
			haveNew := false
			if size == 0 {
				if run != 15 {
					eobRun := int32(1) << uint(run)
					if run > 0 {
						bits, err := r.ReadBits(uint(run))
						if err != nil {
							return err
						}
						eobRun += int32(bits)
					}
					plan.eobRun = int(eobRun)
					break
				}
				// run == 15: ZRL, skip 16 zero-history coefficients below
			} else {
				bit, err := r.ReadBits(1)
				if err != nil {
					return err
				}
				if bit != 0 {
					newVal = p1
				} else {
					newVal = m1
				}
				haveNew = true
			}

			for {
				idx := zigZag[k]
				if blk[idx] != 0 {
					bit, err := r.ReadBits(1)
					if err != nil {
						return err
					}
					if bit != 0 && (blk[idx]&p1) == 0 {
						if blk[idx] >= 0 {
							blk[idx] += p1
						} else {
							blk[idx] += m1
						}
					}
				} else {
					if run == 0 {
						break
					}
					run--
				}
				k++
				if k > int(se) {
					break
				}
			}
			if haveNew && k <= int(se) {
				blk[zigZag[k]] = newVal
			}
		}
	}
	if plan.eobRun > 0 {
		for ; k <= int(se); k++ {
			idx := zigZag[k]
			if blk[idx] != 0 {
				bit, err := r.ReadBits(1)
				if err != nil {
					return err
				}
				if bit != 0 && (blk[idx]&p1) == 0 {
					if blk[idx] >= 0 {
						blk[idx] += p1
					} else {
						blk[idx] += m1
					}
				}
			}
		}
		plan.eobRun--
	}
	return nil
}

// losslessPredict computes the predicted sample value for predictor
// selection ps (1..7) given the left (a), upper (b), and upper-left (c)
// neighboring samples, per spec §4.4 "Lossless (SOF3)". It covers interior
// samples only: the caller predicts the frame's first sample as
// 1<<(P-1), the rest of the first row from the left neighbor and the rest
// of the first column from the upper neighbor without calling it.
func losslessPredict(ps uint8, a, b, c int32) int32 {
	switch ps {
	case 1:
		return a
	case 2:
		return b
	case 3:
		return c
	case 4:
		return a + b - c
	case 5:
		return a + (b-c)/2
	case 6:
		return b + (a-c)/2
	case 7:
		return (a + b) / 2
	}
	return 0
}

// decodeLosslessSample decodes one predictor-residual sample: a Huffman
// magnitude-category symbol, S raw bits, sign-extended and added to
// predicted (spec §4.4 "Lossless").
func decodeLosslessSample(r *Reader, table *huffmanDecodeTable, predicted int32) (int32, error) {
	s, err := table.decodeSymbol(r)
	if err != nil {
		return 0, err
	}
	diff, err := receiveExtend(r, s)
	if err != nil {
		return 0, err
	}
	return predicted + diff, nil
}
