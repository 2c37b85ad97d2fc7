package jpeg

// BlockSink receives decoded 8x8 sample blocks, one call per data unit of
// a coefficient-based frame (every supported frame kind except lossless),
// already dequantized, inverse-transformed, and level-shifted back to
// unsigned sample range (spec §6 "Sink/Source interfaces"). componentIndex
// indexes FrameHeader.Components; bx/by are block coordinates within that
// component's own block grid (spec §9 "Coefficient cache sizing"), not
// pixel coordinates.
type BlockSink interface {
	WriteBlock(componentIndex, bx, by int, samples *Block) error
}

// SampleSink receives individually predicted samples from a lossless
// (SOF3) frame, which has no 8x8 data units to hand a BlockSink (spec §4.4
// "Lossless"). x/y are pixel coordinates within the component's own
// (possibly subsampled) sample grid.
type SampleSink interface {
	WriteSample(componentIndex, x, y int, value int32) error
}

// decodeState is the running parse state shared across every segment of a
// single image: the table directories a DHT/DQT/DAC may redefine mid
// stream, the frame header once seen, and the block cache a coefficient
// frame accumulates across scans (spec §4.2 "tables persist until
// redefined or the stream ends").
type decodeState struct {
	frame           *FrameHeader
	quantTables     map[uint8]*QuantTable
	dcHuff          map[uint8]*huffmanDecodeTable
	acHuff          map[uint8]*huffmanDecodeTable
	dcCond          map[uint8]arithCondDC
	acCond          map[uint8]arithCondAC
	restartInterval int
	cache           *blockCache
}

// DecodeResult reports the header metadata a decode pass observed,
// alongside the side effects already delivered through the caller's sink.
type DecodeResult struct {
	Frame           *FrameHeader
	QuantTables     map[uint8]*QuantTable
	RestartInterval int
}

// Decoder runs the marker-driven segment state machine of spec §4.2:
// Start -> ExpectSOI -> TablesMisc -> Frame -> Scan (repeated) -> End.
type Decoder struct {
	opts *Options
}

// NewDecoder builds a Decoder. A nil opts is equivalent to &Options{}.
func NewDecoder(opts *Options) *Decoder {
	return &Decoder{opts: opts}
}

// Decode parses and fully decodes a coefficient-based frame (baseline,
// extended, progressive, or arithmetic), delivering every 8x8 data unit to
// sink once the stream's EOI has been reached. Calling Decode on a
// lossless (SOF3) stream is an error; use DecodeLossless instead.
func (d *Decoder) Decode(data []byte, sink BlockSink) (*DecodeResult, error) {
	return d.run(data, sink, nil)
}

// DecodeLossless parses and decodes a lossless (SOF3) frame, delivering
// each predicted sample to sink as it is decoded (spec §4.4 "Lossless").
// Calling DecodeLossless on any other frame kind is an error.
func (d *Decoder) DecodeLossless(data []byte, sink SampleSink) (*DecodeResult, error) {
	return d.run(data, nil, sink)
}

func (d *Decoder) run(data []byte, blockSink BlockSink, sampleSink SampleSink) (*DecodeResult, error) {
	logger := d.opts.logger()
	r := NewReader(data)

	m, err := r.ReadMarker()
	if err != nil {
		return nil, err
	}
	if m != soi {
		return nil, errMarker(r.Offset(), "stream does not start with SOI")
	}

	st := &decodeState{
		quantTables: map[uint8]*QuantTable{},
		dcHuff:      map[uint8]*huffmanDecodeTable{},
		acHuff:      map[uint8]*huffmanDecodeTable{},
		dcCond:      map[uint8]arithCondDC{},
		acCond:      map[uint8]arithCondAC{},
	}

	for {
		m, err = r.ReadMarker()
		if err != nil {
			return nil, err
		}
		switch {
		case m == eoi:
			if st.frame == nil {
				return nil, errData(r.Offset(), "EOI encountered before any frame header")
			}
			if st.frame.Kind != frameLosslessHuffman {
				if blockSink == nil {
					return nil, errOp("a coefficient-based frame requires a BlockSink; use Decode, not DecodeLossless")
				}
				if err := d.writeBack(st, blockSink); err != nil {
					return nil, err
				}
			}
			return &DecodeResult{Frame: st.frame, QuantTables: st.quantTables, RestartInterval: st.restartInterval}, nil

		case m == dqt:
			tables, err := parseQuantTables(r)
			if err != nil {
				return nil, err
			}
			for _, t := range tables {
				st.quantTables[t.ID] = t
			}

		case m == dht:
			defs, err := parseHuffmanTables(r)
			if err != nil {
				return nil, err
			}
			for _, def := range defs {
				tbl, err := buildHuffmanDecodeTable(def.bits, def.huffval)
				if err != nil {
					return nil, err
				}
				if def.class == 0 {
					st.dcHuff[def.id] = tbl
				} else {
					st.acHuff[def.id] = tbl
				}
			}

		case m == dac:
			defs, err := parseArithConditioning(r)
			if err != nil {
				return nil, err
			}
			for _, def := range defs {
				if def.class == 0 {
					st.dcCond[def.id] = arithCondDC{L: def.value & 0x0f, U: def.value >> 4}
				} else {
					st.acCond[def.id] = arithCondAC{Kx: def.value}
				}
			}

		case m == dri:
			ri, err := parseRestartInterval(r)
			if err != nil {
				return nil, err
			}
			st.restartInterval = ri

		case isSOF(m):
			frame, err := parseFrameHeader(r, m)
			if err != nil {
				return nil, err
			}
			if st.frame != nil {
				return nil, errData(r.Offset(), "second SOF in one image")
			}
			st.frame = frame
			if frame.Kind != frameLosslessHuffman {
				st.cache = newBlockCache(frame)
			}

		case m == sos:
			if st.frame == nil {
				return nil, errData(r.Offset(), "SOS before any SOF")
			}
			if d.opts != nil && d.opts.IdentifyOnly {
				return &DecodeResult{Frame: st.frame, QuantTables: st.quantTables, RestartInterval: st.restartInterval}, nil
			}
			scan, err := parseScanHeader(r)
			if err != nil {
				return nil, err
			}
			if err := d.decodeScan(r, st, scan, sampleSink); err != nil {
				return nil, err
			}

		case isAPPn(m), m == com:
			if err := skipSegment(r); err != nil {
				return nil, err
			}

		default:
			logger.Warn("skipping unrecognized marker", "marker", markerName(m))
			if err := skipSegment(r); err != nil {
				return nil, err
			}
		}
	}
}

// writeBack dequantizes and inverse-transforms every cached block of every
// component, in component then raster order, and delivers it to sink (spec
// §4.6). Quant-table multipliers are built once per distinct selector.
func (d *Decoder) writeBack(st *decodeState, sink BlockSink) error {
	multCache := map[uint8][64]float64{}
	for i := range st.frame.Components {
		comp := &st.frame.Components[i]
		mult, ok := multCache[comp.QuantSelector]
		if !ok {
			qt, ok := st.quantTables[comp.QuantSelector]
			if !ok {
				return errData(-1, "component %d references undefined quant table %d", comp.ID, comp.QuantSelector)
			}
			mult = dctMultiplier(qt.Natural())
			multCache[comp.QuantSelector] = mult
		}
		bw, bh := st.cache.Dims(i)
		for by := 0; by < bh; by++ {
			for bx := 0; bx < bw; bx++ {
				blk := st.cache.Get(i, bx, by)
				out := Block(Dequantize(blk, &mult, st.frame.Precision))
				if err := sink.WriteBlock(i, bx, by, &out); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// decodeScan dispatches a single SOS segment's entropy-coded data to the
// decoder matching the frame's kind (spec §9 "Variant dispatch").
func (d *Decoder) decodeScan(r *Reader, st *decodeState, scan *ScanHeader, sampleSink SampleSink) error {
	if st.frame.Kind == frameLosslessHuffman {
		return d.decodeLosslessScan(r, st, scan, sampleSink)
	}

	plan, err := buildScanPlan(st.frame, scan, st.restartInterval)
	if err != nil {
		return err
	}
	plan.resetPredictors()

	switch st.frame.Kind {
	case frameSequentialArith, frameProgressiveArith:
		return d.decodeArithmeticScan(r, st, scan, plan)
	case frameProgressiveHuffman:
		return d.decodeProgressiveHuffmanScan(r, st, scan, plan)
	default:
		return d.decodeSequentialHuffmanScan(r, st, scan, plan)
	}
}

// decodeSequentialHuffmanScan decodes one full scan of a baseline or
// extended-sequential Huffman frame (SOF0/SOF1): every block gets both its
// DC and AC coefficients in this single pass (spec §4.4).
func (d *Decoder) decodeSequentialHuffmanScan(r *Reader, st *decodeState, scan *ScanHeader, plan *scanPlan) error {
	dcTables := make([]*huffmanDecodeTable, len(plan.comps))
	acTables := make([]*huffmanDecodeTable, len(plan.comps))
	compIndex := make(map[*scanPlanComponent]int, len(plan.comps))
	for i, c := range plan.comps {
		compIndex[c] = i
		dt, ok := st.dcHuff[c.sel.DCSelector]
		if !ok {
			return errData(r.Offset(), "no DC huffman table %d defined", c.sel.DCSelector)
		}
		at, ok := st.acHuff[c.sel.ACSelector]
		if !ok {
			return errData(r.Offset(), "no AC huffman table %d defined", c.sel.ACSelector)
		}
		dcTables[i], acTables[i] = dt, at
	}

	restartExpected := 0
	unitsDone := 0
	onUnit := func() error {
		if plan.restartInterval <= 0 {
			return nil
		}
		unitsDone++
		if unitsDone < plan.restartInterval {
			return nil
		}
		unitsDone = 0
		return handleRestart(r, plan, &restartExpected)
	}

	visit := func(comp *scanPlanComponent, bx, by int) error {
		i := compIndex[comp]
		blk, err := decodeBaselineBlock(r, dcTables[i], acTables[i], comp)
		if err != nil {
			return err
		}
		*st.cache.Get(comp.frameIdx, bx, by) = *blk
		return nil
	}
	if err := plan.walkUnits(visit, onUnit); err != nil {
		return err
	}
	r.AlignToByte()
	return nil
}

// decodeProgressiveHuffmanScan decodes one scan of a progressive Huffman
// frame (SOF2): either a DC scan (Ss==Se==0) or an AC scan over band
// [Ss,Se] for a single non-interleaved component, in first (Ah==0) or
// refinement (Ah>0) form (spec §4.4).
func (d *Decoder) decodeProgressiveHuffmanScan(r *Reader, st *decodeState, scan *ScanHeader, plan *scanPlan) error {
	isDCScan := scan.Ss == 0

	compIndex := make(map[*scanPlanComponent]int, len(plan.comps))
	for i, c := range plan.comps {
		compIndex[c] = i
	}

	var dcTables []*huffmanDecodeTable
	var acTable *huffmanDecodeTable

	if isDCScan {
		if scan.Ah == 0 {
			dcTables = make([]*huffmanDecodeTable, len(plan.comps))
			for i, c := range plan.comps {
				dt, ok := st.dcHuff[c.sel.DCSelector]
				if !ok {
					return errData(r.Offset(), "no DC huffman table %d defined", c.sel.DCSelector)
				}
				dcTables[i] = dt
			}
		}
	} else {
		if len(plan.comps) != 1 {
			return errData(r.Offset(), "progressive AC scan must have exactly one component")
		}
		at, ok := st.acHuff[plan.comps[0].sel.ACSelector]
		if !ok {
			return errData(r.Offset(), "no AC huffman table %d defined", plan.comps[0].sel.ACSelector)
		}
		acTable = at
	}

	restartExpected := 0
	unitsDone := 0
	onUnit := func() error {
		if plan.restartInterval <= 0 {
			return nil
		}
		unitsDone++
		if unitsDone < plan.restartInterval {
			return nil
		}
		unitsDone = 0
		return handleRestart(r, plan, &restartExpected)
	}

	visit := func(comp *scanPlanComponent, bx, by int) error {
		blk := st.cache.Get(comp.frameIdx, bx, by)
		if isDCScan {
			if scan.Ah == 0 {
				v, err := decodeProgressiveDCFirst(r, dcTables[compIndex[comp]], comp, scan.Al)
				if err != nil {
					return err
				}
				blk[0] = v
			} else {
				bit, err := decodeProgressiveDCRefine(r, scan.Al)
				if err != nil {
					return err
				}
				blk[0] |= bit
			}
			return nil
		}
		if scan.Ah == 0 {
			return decodeProgressiveACFirst(r, acTable, plan, blk, scan.Ss, scan.Se, scan.Al)
		}
		return decodeProgressiveACRefine(r, acTable, plan, blk, scan.Ss, scan.Se, scan.Al)
	}
	if err := plan.walkUnits(visit, onUnit); err != nil {
		return err
	}
	r.AlignToByte()
	return nil
}

// decodeArithmeticScan decodes one scan of a sequential or progressive
// arithmetic frame (SOF9/SOF10). The arithmetic decoder in arith_decode.go
// always decodes a full block's DC and every AC position in one pass
// rather than modeling spectral-selection/successive-approximation bands
// separately from the Huffman path; a progressive arithmetic scan that
// narrows Ss/Se/Ah/Al is still decoded as a complete block each time it is
// visited, a deliberate simplification logged rather than silently
// dropped (see DESIGN.md).
func (d *Decoder) decodeArithmeticScan(r *Reader, st *decodeState, scan *ScanHeader, plan *scanPlan) error {
	logger := d.opts.logger()
	if scan.Ss != 0 || int(scan.Se) != 63 || scan.Ah != 0 || scan.Al != 0 {
		logger.Warn("arithmetic scan requests a spectral/successive-approximation band; decoding full blocks instead",
			"ss", scan.Ss, "se", scan.Se, "ah", scan.Ah, "al", scan.Al)
	}

	dcTables := map[uint8]*arithDCContexts{}
	acTables := map[uint8]*arithACContexts{}
	dcStates := map[int]*arithComponentState{}
	for _, c := range plan.comps {
		if _, ok := dcTables[c.sel.DCSelector]; !ok {
			dcTables[c.sel.DCSelector] = newArithDCContexts()
		}
		if _, ok := acTables[c.sel.ACSelector]; !ok {
			acTables[c.sel.ACSelector] = newArithACContexts()
		}
		dcStates[c.frameIdx] = &arithComponentState{}
	}
	resetContexts := func() {
		for k := range dcTables {
			dcTables[k] = newArithDCContexts()
		}
		for k := range acTables {
			acTables[k] = newArithACContexts()
		}
		for k := range dcStates {
			dcStates[k] = &arithComponentState{}
		}
	}

	ad := newArithDecoder(r.Remaining())
	restartExpected := 0
	unitsDone := 0

	onUnit := func() error {
		if plan.restartInterval <= 0 {
			return nil
		}
		unitsDone++
		if unitsDone < plan.restartInterval {
			return nil
		}
		unitsDone = 0
		r.Advance(ad.bytesConsumed())
		if err := handleRestart(r, plan, &restartExpected); err != nil {
			return err
		}
		resetContexts()
		ad = newArithDecoder(r.Remaining())
		return nil
	}

	visit := func(comp *scanPlanComponent, bx, by int) error {
		dcCond, ok := st.dcCond[comp.sel.DCSelector]
		if !ok {
			dcCond = defaultArithCondDC()
		}
		acCond, ok := st.acCond[comp.sel.ACSelector]
		if !ok {
			acCond = defaultArithCondAC()
		}
		diff := decodeDCArith(ad, dcTables[comp.sel.DCSelector], dcCond, dcStates[comp.frameIdx])
		comp.dcPred += diff
		blk := st.cache.Get(comp.frameIdx, bx, by)
		acBlk := decodeACArith(ad, acTables[comp.sel.ACSelector], acCond.Kx)
		*blk = *acBlk
		blk[0] = comp.dcPred
		return nil
	}
	if err := plan.walkUnits(visit, onUnit); err != nil {
		return err
	}
	r.Advance(ad.bytesConsumed())
	return nil
}

// decodeLosslessScan decodes one scan of a lossless (SOF3) frame. Unlike
// every other supported frame kind it has no 8x8 data units: a whole
// component's samples are materialized so each predictor can reach its
// left/upper/upper-left neighbors, and each decoded sample is delivered
// to sink directly rather than cached as a Block (spec §4.4 "Lossless").
func (d *Decoder) decodeLosslessScan(r *Reader, st *decodeState, scan *ScanHeader, sink SampleSink) error {
	if sink == nil {
		return errOp("a lossless frame requires a SampleSink; use DecodeLossless, not Decode")
	}
	predictorSel := scan.Ss // lossless scans repurpose Ss as the predictor selector; Se is unused

	n := len(scan.Components)
	frameIdx := make([]int, n)
	dcTables := make([]*huffmanDecodeTable, n)
	hs := make([]int, n)
	vs := make([]int, n)
	widths := make([]int, n)
	heights := make([]int, n)

	hmax, vmax := st.frame.Hmax(), st.frame.Vmax()
	for i, sc := range scan.Components {
		fc, ok := st.frame.ComponentByID(sc.ComponentSelector)
		if !ok {
			return errData(r.Offset(), "scan references undeclared component %d", sc.ComponentSelector)
		}
		for j := range st.frame.Components {
			if &st.frame.Components[j] == fc {
				frameIdx[i] = j
				break
			}
		}
		dt, ok := st.dcHuff[sc.DCSelector]
		if !ok {
			return errData(r.Offset(), "no huffman table %d defined for lossless component", sc.DCSelector)
		}
		dcTables[i] = dt
		hs[i], vs[i] = int(fc.H), int(fc.V)
		widths[i] = ceilDiv(st.frame.Samples*hs[i], hmax)
		heights[i] = ceilDiv(st.frame.Lines*vs[i], vmax)
	}

	samples := make([][]int32, n)
	for i := range samples {
		samples[i] = make([]int32, widths[i]*heights[i])
	}
	at := func(i, x, y int) int32 { return samples[i][y*widths[i]+x] }

	defaultVal := int32(1) << uint(st.frame.Precision-1)
	afterRestart := make([]bool, n)

	mcuCols := ceilDiv(st.frame.Samples, hmax)
	mcuRows := ceilDiv(st.frame.Lines, vmax)
	restartExpected := 0
	unitsDone := 0

	for my := 0; my < mcuRows; my++ {
		for mx := 0; mx < mcuCols; mx++ {
			for i := 0; i < n; i++ {
				for sy := 0; sy < vs[i]; sy++ {
					for sx := 0; sx < hs[i]; sx++ {
						x := mx*hs[i] + sx
						y := my*vs[i] + sy
						if x >= widths[i] || y >= heights[i] {
							continue
						}

						var predicted int32
						switch {
						case afterRestart[i]:
							predicted = defaultVal
							afterRestart[i] = false
						case x == 0 && y == 0:
							predicted = defaultVal
						case y == 0:
							predicted = at(i, x-1, y)
						case x == 0:
							predicted = at(i, x, y-1)
						default:
							predicted = losslessPredict(predictorSel, at(i, x-1, y), at(i, x, y-1), at(i, x-1, y-1))
						}

						v, err := decodeLosslessSample(r, dcTables[i], predicted)
						if err != nil {
							return err
						}
						samples[i][y*widths[i]+x] = v
						if err := sink.WriteSample(frameIdx[i], x, y, v); err != nil {
							return err
						}
					}
				}
			}
			if st.restartInterval > 0 {
				unitsDone++
				if unitsDone == st.restartInterval {
					unitsDone = 0
					if err := handleRestartRaw(r, &restartExpected); err != nil {
						return err
					}
					for i := range afterRestart {
						afterRestart[i] = true
					}
				}
			}
		}
	}
	r.AlignToByte()
	return nil
}

// handleRestartRaw is handleRestart without a scanPlan's predictor state to
// reset, for the lossless decode loop which tracks its own per-component
// restart bookkeeping (afterRestart) directly.
func handleRestartRaw(r *Reader, expectedIndex *int) error {
	r.AlignToByte()
	m, err := r.ReadMarker()
	if err != nil {
		return err
	}
	if !isRST(m) {
		return errData(r.Offset(), "expected restart marker, found 0xff%02x", uint8(m))
	}
	got := int(m - rst0)
	if got != *expectedIndex {
		return errData(r.Offset(), "restart marker RST%d does not match expected RST%d", got, *expectedIndex)
	}
	*expectedIndex = (*expectedIndex + 1) % 8
	r.ResetBits()
	return nil
}

// skipSegment reads a segment's 16-bit length and discards its payload
// without interpreting it (used for APPn/COM and any marker this core does
// not otherwise recognize).
func skipSegment(r *Reader) error {
	n, err := r.ReadLength()
	if err != nil {
		return err
	}
	return r.Skip(n)
}

// skipEntropyData advances r past an entropy-coded segment without
// decoding it, returning the marker that ends it (spec §4.2 "Identify
// mode" only needs the segment's extent, not its coefficient values).
// Restart markers are data within the segment, not terminators, so they
// are skipped like any other byte pair.
func skipEntropyData(r *Reader) (marker, error) {
	data := r.Remaining()
	i := 0
	for {
		if i >= len(data) {
			return 0, errEOF(r.Offset()+i, "truncated entropy-coded segment")
		}
		if data[i] != 0xff {
			i++
			continue
		}
		if i+1 >= len(data) {
			return 0, errEOF(r.Offset()+i, "truncated stream after 0xff in entropy-coded data")
		}
		switch next := data[i+1]; {
		case next == 0x00:
			i += 2 // stuffed literal 0xff
		case isRST(marker(next)):
			i += 2 // restart marker: data, not a terminator
		case next == 0xff:
			i++ // fill-byte run, re-examine at the new 0xff
		default:
			r.Advance(i)
			return r.ReadMarker()
		}
	}
}

// IdentifyResult reports the header metadata Identify collected without
// decoding any scan, plus the total number of bytes the image occupies in
// the source buffer (spec §4.2 "Identify mode").
type IdentifyResult struct {
	Frame           *FrameHeader
	QuantTables     map[uint8]*QuantTable
	RestartInterval int
	BytesScanned    int
}

// Identify parses every header segment of a stream but skips all
// entropy-coded data by extent rather than decoding it, returning the
// frame header, quantization tables, restart interval, and the number of
// bytes from the start of the buffer through EOI (spec §4.2 "Identify
// mode": useful for validating or sizing an image without paying for a
// full decode).
func (d *Decoder) Identify(data []byte) (*IdentifyResult, error) {
	logger := d.opts.logger()
	r := NewReader(data)

	m, err := r.ReadMarker()
	if err != nil {
		return nil, err
	}
	if m != soi {
		return nil, errMarker(r.Offset(), "stream does not start with SOI")
	}

	result := &IdentifyResult{QuantTables: map[uint8]*QuantTable{}}

	for {
		m, err = r.ReadMarker()
		if err != nil {
			return nil, err
		}

		for m == sos {
			if _, err := parseScanHeader(r); err != nil {
				return nil, err
			}
			next, err := skipEntropyData(r)
			if err != nil {
				return nil, err
			}
			if next == eoi {
				result.BytesScanned = r.Offset()
				return result, nil
			}
			m = next
		}

		if m == eoi {
			result.BytesScanned = r.Offset()
			return result, nil
		}

		switch {
		case m == dqt:
			tables, err := parseQuantTables(r)
			if err != nil {
				return nil, err
			}
			for _, t := range tables {
				result.QuantTables[t.ID] = t
			}
		case m == dri:
			ri, err := parseRestartInterval(r)
			if err != nil {
				return nil, err
			}
			result.RestartInterval = ri
		case isSOF(m):
			frame, err := parseFrameHeader(r, m)
			if err != nil {
				return nil, err
			}
			if result.Frame != nil {
				return nil, errData(r.Offset(), "second SOF in one image")
			}
			result.Frame = frame
		case m == dht, m == dac, isAPPn(m), m == com:
			if err := skipSegment(r); err != nil {
				return nil, err
			}
		default:
			logger.Warn("identify: skipping unrecognized marker", "marker", markerName(m))
			if err := skipSegment(r); err != nil {
				return nil, err
			}
		}
	}
}
