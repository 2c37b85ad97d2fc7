package jpeg

import "sort"

// appSegment is a raw APPn/COM segment captured verbatim from a stream
// being optimized, re-emitted unless the caller asked to strip them.
type appSegment struct {
	marker  marker
	payload []byte
}

// OptimizeResult reports what Optimize did, beyond the re-emitted bytes
// themselves.
type OptimizeResult struct {
	Frame         *FrameHeader
	OriginalSize  int
	OptimizedSize int
}

// Optimizer rebuilds a Huffman-coded JPEG's codebooks from the actual
// coefficient statistics of its own scans instead of copying whatever
// tables the source file happened to carry, while leaving every
// coefficient value untouched (spec §6 "optimizer": a lossless
// recompression that never touches a sample value).
type Optimizer struct {
	opts *OptimizeOptions
}

// NewOptimizer builds an Optimizer. A nil opts is equivalent to
// &OptimizeOptions{}.
func NewOptimizer(opts *OptimizeOptions) *Optimizer {
	return &Optimizer{opts: opts}
}

// Optimize parses a sequential Huffman (SOF0/SOF1) stream, decodes every
// scan's coefficients into the shared block cache the same way Decoder
// does, rebuilds one optimal Huffman codebook per DC/AC selector used
// across all of its scans, and re-emits an identical coefficient stream
// under the new tables. Progressive, lossless, and arithmetic-coded
// frames are rejected: progressive's per-scan banding and lossless's
// sample-level predictors would need their own statistics-gathering
// passes this core does not implement (encoder.go emits only baseline
// streams for the same reason), and arithmetic coding has no Huffman
// codebook to rebuild at all.
func (o *Optimizer) Optimize(data []byte) ([]byte, *OptimizeResult, error) {
	logger := o.opts.logger()
	r := NewReader(data)

	m, err := r.ReadMarker()
	if err != nil {
		return nil, nil, err
	}
	if m != soi {
		return nil, nil, errMarker(r.Offset(), "stream does not start with SOI")
	}

	st := &decodeState{
		quantTables: map[uint8]*QuantTable{},
		dcHuff:      map[uint8]*huffmanDecodeTable{},
		acHuff:      map[uint8]*huffmanDecodeTable{},
		dcCond:      map[uint8]arithCondDC{},
		acCond:      map[uint8]arithCondAC{},
	}
	d := &Decoder{opts: &Options{}}

	var scans []*ScanHeader
	var appSegments []appSegment

loop:
	for {
		m, err = r.ReadMarker()
		if err != nil {
			return nil, nil, err
		}
		switch {
		case m == eoi:
			break loop

		case m == dqt:
			tables, err := parseQuantTables(r)
			if err != nil {
				return nil, nil, err
			}
			for _, t := range tables {
				st.quantTables[t.ID] = t
			}

		case m == dht:
			defs, err := parseHuffmanTables(r)
			if err != nil {
				return nil, nil, err
			}
			for _, def := range defs {
				tbl, err := buildHuffmanDecodeTable(def.bits, def.huffval)
				if err != nil {
					return nil, nil, err
				}
				if def.class == 0 {
					st.dcHuff[def.id] = tbl
				} else {
					st.acHuff[def.id] = tbl
				}
			}

		case m == dri:
			ri, err := parseRestartInterval(r)
			if err != nil {
				return nil, nil, err
			}
			st.restartInterval = ri

		case isSOF(m):
			frame, err := parseFrameHeader(r, m)
			if err != nil {
				return nil, nil, err
			}
			if frame.Kind != frameBaselineHuffman && frame.Kind != frameExtendedHuffman {
				return nil, nil, errUnsupported(r.Offset(), "optimizing is only supported for baseline/extended sequential Huffman frames")
			}
			if st.frame != nil {
				return nil, nil, errData(r.Offset(), "second SOF in one image")
			}
			st.frame = frame
			st.cache = newBlockCache(frame)

		case m == sos:
			if st.frame == nil {
				return nil, nil, errData(r.Offset(), "SOS before any SOF")
			}
			scan, err := parseScanHeader(r)
			if err != nil {
				return nil, nil, err
			}
			if err := d.decodeScan(r, st, scan, nil); err != nil {
				return nil, nil, err
			}
			scans = append(scans, scan)

		case isAPPn(m), m == com:
			if o.opts != nil && o.opts.StripAppSegments {
				if err := skipSegment(r); err != nil {
					return nil, nil, err
				}
				break
			}
			n, err := r.ReadLength()
			if err != nil {
				return nil, nil, err
			}
			payload, err := r.ReadBytes(n)
			if err != nil {
				return nil, nil, err
			}
			appSegments = append(appSegments, appSegment{marker: m, payload: append([]byte(nil), payload...)})

		default:
			logger.Warn("optimize: skipping unrecognized marker", "marker", markerName(m))
			if err := skipSegment(r); err != nil {
				return nil, nil, err
			}
		}
	}

	if st.frame == nil {
		return nil, nil, errData(r.Offset(), "EOI encountered before any frame header")
	}
	if len(scans) == 0 {
		return nil, nil, errData(r.Offset(), "no scan found to optimize")
	}

	huffDefs, err := rebuildOptimalTables(st.frame, scans, st.restartInterval, st.cache)
	if err != nil {
		return nil, nil, err
	}
	dcTables := map[uint8]*huffmanEncodeTable{}
	acTables := map[uint8]*huffmanEncodeTable{}
	for _, def := range huffDefs {
		tbl, err := buildHuffmanEncodeTable(def.bits, def.huffval)
		if err != nil {
			return nil, nil, err
		}
		if def.class == 0 {
			dcTables[def.id] = tbl
		} else {
			acTables[def.id] = tbl
		}
	}

	w := NewWriter()
	if err := w.WriteMarker(soi); err != nil {
		return nil, nil, err
	}
	for _, seg := range appSegments {
		if err := w.WriteMarker(seg.marker); err != nil {
			return nil, nil, err
		}
		if err := w.WriteLength(len(seg.payload)); err != nil {
			return nil, nil, err
		}
		if err := w.WriteBytes(seg.payload); err != nil {
			return nil, nil, err
		}
	}
	for id := uint8(0); id <= 0x0f; id++ {
		if qt, ok := st.quantTables[id]; ok {
			if err := writeQuantTable(w, qt); err != nil {
				return nil, nil, err
			}
		}
	}
	for _, def := range huffDefs {
		if err := writeHuffmanTable(w, def.class, def.id, def.bits, def.huffval); err != nil {
			return nil, nil, err
		}
	}
	if st.restartInterval > 0 {
		if err := writeRestartInterval(w, st.restartInterval); err != nil {
			return nil, nil, err
		}
	}
	sofMarker := sof0
	if st.frame.Kind == frameExtendedHuffman {
		sofMarker = sof1
	}
	if err := writeFrameHeader(w, sofMarker, st.frame); err != nil {
		return nil, nil, err
	}

	for _, scan := range scans {
		if err := writeScanHeader(w, scan); err != nil {
			return nil, nil, err
		}
		if err := emitOptimizedScan(w, st.frame, scan, st.restartInterval, st.cache, dcTables, acTables); err != nil {
			return nil, nil, err
		}
	}
	if err := w.WriteMarker(eoi); err != nil {
		return nil, nil, err
	}

	out := w.Bytes()
	logger.Info("optimized frame", "original_size", len(data), "optimized_size", len(out), "scans", len(scans))
	return out, &OptimizeResult{Frame: st.frame, OriginalSize: len(data), OptimizedSize: len(out)}, nil
}

// rebuildOptimalTables gathers DC/AC symbol frequencies across every scan
// of the decoded image (not just the first), keyed by table selector, and
// builds one optimal canonical table per selector actually used (spec
// §4.4, §6).
func rebuildOptimalTables(frame *FrameHeader, scans []*ScanHeader, restartInterval int, cache *blockCache) ([]huffmanTableDef, error) {
	dcFreq := map[uint8]*huffmanFreqTable{}
	acFreq := map[uint8]*huffmanFreqTable{}

	for _, scan := range scans {
		plan, err := buildScanPlan(frame, scan, restartInterval)
		if err != nil {
			return nil, err
		}
		for _, c := range plan.comps {
			if _, ok := dcFreq[c.sel.DCSelector]; !ok {
				dcFreq[c.sel.DCSelector] = &huffmanFreqTable{}
			}
			if _, ok := acFreq[c.sel.ACSelector]; !ok {
				acFreq[c.sel.ACSelector] = &huffmanFreqTable{}
			}
		}
		plan.resetPredictors()
		err = plan.walkUnits(func(comp *scanPlanComponent, bx, by int) error {
			blk := cache.Get(comp.frameIdx, bx, by)
			gatherBaselineBlock(dcFreq[comp.sel.DCSelector], acFreq[comp.sel.ACSelector], comp, blk)
			return nil
		}, nil)
		if err != nil {
			return nil, err
		}
	}

	var defs []huffmanTableDef
	for id, freq := range dcFreq {
		bits, huffval, err := buildOptimalTable(*freq)
		if err != nil {
			return nil, err
		}
		defs = append(defs, huffmanTableDef{class: 0, id: id, bits: bits, huffval: huffval})
	}
	for id, freq := range acFreq {
		bits, huffval, err := buildOptimalTable(*freq)
		if err != nil {
			return nil, err
		}
		defs = append(defs, huffmanTableDef{class: 1, id: id, bits: bits, huffval: huffval})
	}

	// dcFreq/acFreq are maps, so the range order above is randomized; sort
	// by (class, id) so re-optimizing identical input always re-emits an
	// identical DHT segment order (spec §5 byte-identical-output guarantee).
	sort.Slice(defs, func(i, j int) bool {
		if defs[i].class != defs[j].class {
			return defs[i].class < defs[j].class
		}
		return defs[i].id < defs[j].id
	})
	return defs, nil
}

// emitOptimizedScan re-walks one scan's blocks in the exact order they
// were decoded and re-encodes them under the freshly built tables,
// inserting restart markers at the same interval as the source stream.
func emitOptimizedScan(w *Writer, frame *FrameHeader, scan *ScanHeader, restartInterval int, cache *blockCache, dcTables, acTables map[uint8]*huffmanEncodeTable) error {
	plan, err := buildScanPlan(frame, scan, restartInterval)
	if err != nil {
		return err
	}
	dcByComp := make([]*huffmanEncodeTable, len(plan.comps))
	acByComp := make([]*huffmanEncodeTable, len(plan.comps))
	compIndex := make(map[*scanPlanComponent]int, len(plan.comps))
	for i, c := range plan.comps {
		compIndex[c] = i
		dt, ok := dcTables[c.sel.DCSelector]
		if !ok {
			return errData(-1, "no DC huffman table built for selector %d", c.sel.DCSelector)
		}
		at, ok := acTables[c.sel.ACSelector]
		if !ok {
			return errData(-1, "no AC huffman table built for selector %d", c.sel.ACSelector)
		}
		dcByComp[i], acByComp[i] = dt, at
	}

	plan.resetPredictors()
	w.BeginBitMode()
	restartIndex := 0
	unitsDone := 0

	visit := func(comp *scanPlanComponent, bx, by int) error {
		i := compIndex[comp]
		blk := cache.Get(comp.frameIdx, bx, by)
		return encodeBaselineBlock(w, dcByComp[i], acByComp[i], comp, blk)
	}
	onUnit := func() error {
		if plan.restartInterval <= 0 {
			return nil
		}
		unitsDone++
		if unitsDone < plan.restartInterval {
			return nil
		}
		unitsDone = 0
		if err := w.EndBitMode(); err != nil {
			return err
		}
		if err := w.WriteMarker(rst0 + marker(restartIndex)); err != nil {
			return err
		}
		restartIndex = (restartIndex + 1) % 8
		plan.resetPredictors()
		w.BeginBitMode()
		return nil
	}
	if err := plan.walkUnits(visit, onUnit); err != nil {
		return err
	}
	return w.EndBitMode()
}
