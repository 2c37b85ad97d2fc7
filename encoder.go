package jpeg

import "sort"

// EncodeComponent describes one component to encode: its frame-unique
// identifier, sampling factors, and which quantization/Huffman tables it
// uses (spec §6 "component/quant/Huffman configuration").
type EncodeComponent struct {
	ID            uint8
	H, V          uint8
	QuantSelector uint8
	DCSelector    uint8
	ACSelector    uint8
}

// BlockSource supplies the spatial-domain samples an Encoder compresses,
// one 8x8 data unit at a time, the encode-side mirror of BlockSink (spec
// §6 "a sample source exposing ... read_block(block_ref, component_index,
// x, y)"). Samples are unsigned, pre level-shift; bx/by are block
// coordinates within that component's own block grid, not pixel
// coordinates.
type BlockSource interface {
	ReadBlock(componentIndex, bx, by int) (*Block, error)
}

// EncodeSpec describes the frame an Encoder builds. QuantTables and
// HuffmanTables are written to the stream verbatim as DQT/DHT segments;
// when HuffmanTables is empty the encoder runs a two-pass optimal-Huffman
// build instead of requiring the caller to supply fixed tables (spec §4.4,
// §6).
type EncodeSpec struct {
	Precision     int
	Lines         int
	Samples       int
	Components    []EncodeComponent
	QuantTables   []*QuantTable
	HuffmanTables []huffmanTableDef
}

// Encoder builds a baseline sequential Huffman (SOF0) bitstream. Encoding
// progressive or lossless frames is an explicit Non-goal (doc.go); every
// stream this type produces can always be read back by Decoder.
type Encoder struct {
	opts *EncodeOptions
}

// NewEncoder builds an Encoder. A nil opts is equivalent to &EncodeOptions{}.
func NewEncoder(opts *EncodeOptions) *Encoder {
	return &Encoder{opts: opts}
}

// toFrameHeader adapts an EncodeSpec into the FrameHeader shape scan.go's
// geometry helpers already operate on, so block-grid sizing and MCU layout
// run through the exact same code the decoder uses.
func (spec *EncodeSpec) toFrameHeader() *FrameHeader {
	comps := make([]FrameComponent, len(spec.Components))
	for i, c := range spec.Components {
		comps[i] = FrameComponent{ID: c.ID, H: c.H, V: c.V, QuantSelector: c.QuantSelector}
	}
	return &FrameHeader{
		Kind: frameBaselineHuffman, Precision: spec.Precision,
		Lines: spec.Lines, Samples: spec.Samples, Components: comps,
	}
}

func (spec *EncodeSpec) toScanHeader() *ScanHeader {
	comps := make([]ScanComponent, len(spec.Components))
	for i, c := range spec.Components {
		comps[i] = ScanComponent{ComponentSelector: c.ID, DCSelector: c.DCSelector, ACSelector: c.ACSelector}
	}
	return &ScanHeader{Components: comps, Ss: 0, Se: 63, Ah: 0, Al: 0}
}

// Encode reads every data unit of spec's frame from source, in component
// then raster-block order, and writes a complete baseline JPEG bitstream.
func (e *Encoder) Encode(spec *EncodeSpec, source BlockSource) ([]byte, error) {
	logger := e.opts.logger()
	if len(spec.Components) == 0 {
		return nil, errOp("encode spec has no components")
	}
	frame := spec.toFrameHeader()
	scanHdr := spec.toScanHeader()
	restartInterval := 0
	if e.opts != nil {
		restartInterval = e.opts.RestartInterval
	}

	plan, err := buildScanPlan(frame, scanHdr, restartInterval)
	if err != nil {
		return nil, err
	}

	// Quantize every block up front: both the optimal-Huffman statistics
	// pass and the final bit-emission pass need the same coefficients, and
	// a caller-provided BlockSource is better read once than twice.
	cache := newBlockCache(frame)
	mult := make([][64]float64, len(spec.QuantTables))
	quantByID := map[uint8]int{}
	for i, qt := range spec.QuantTables {
		quantByID[qt.ID] = i
		mult[i] = forwardMultiplier(qt.Natural())
	}
	for i, c := range spec.Components {
		qi, ok := quantByID[c.QuantSelector]
		if !ok {
			return nil, errData(-1, "component %d references undefined quant table %d", c.ID, c.QuantSelector)
		}
		bw, bh := cache.Dims(i)
		for by := 0; by < bh; by++ {
			for bx := 0; bx < bw; bx++ {
				samples, err := source.ReadBlock(i, bx, by)
				if err != nil {
					return nil, err
				}
				*cache.Get(i, bx, by) = QuantizeBlock((*[64]int32)(samples), &mult[qi], spec.Precision)
			}
		}
	}

	var huffDefs []huffmanTableDef
	if len(spec.HuffmanTables) > 0 {
		huffDefs = spec.HuffmanTables
	} else {
		huffDefs, err = buildOptimalHuffmanTables(plan, cache)
		if err != nil {
			return nil, err
		}
	}
	dcTables := map[uint8]*huffmanEncodeTable{}
	acTables := map[uint8]*huffmanEncodeTable{}
	for _, def := range huffDefs {
		tbl, err := buildHuffmanEncodeTable(def.bits, def.huffval)
		if err != nil {
			return nil, err
		}
		if def.class == 0 {
			dcTables[def.id] = tbl
		} else {
			acTables[def.id] = tbl
		}
	}

	w := NewWriter()
	if err := w.WriteMarker(soi); err != nil {
		return nil, err
	}
	for _, qt := range spec.QuantTables {
		if err := writeQuantTable(w, qt); err != nil {
			return nil, err
		}
	}
	for _, def := range huffDefs {
		if err := writeHuffmanTable(w, def.class, def.id, def.bits, def.huffval); err != nil {
			return nil, err
		}
	}
	if restartInterval > 0 {
		if err := writeRestartInterval(w, restartInterval); err != nil {
			return nil, err
		}
	}
	if err := writeFrameHeader(w, sof0, frame); err != nil {
		return nil, err
	}
	if err := writeScanHeader(w, scanHdr); err != nil {
		return nil, err
	}

	dcByComp := make([]*huffmanEncodeTable, len(plan.comps))
	acByComp := make([]*huffmanEncodeTable, len(plan.comps))
	compIndex := make(map[*scanPlanComponent]int, len(plan.comps))
	for i, c := range plan.comps {
		compIndex[c] = i
		dt, ok := dcTables[c.sel.DCSelector]
		if !ok {
			return nil, errData(-1, "no DC huffman table built for selector %d", c.sel.DCSelector)
		}
		at, ok := acTables[c.sel.ACSelector]
		if !ok {
			return nil, errData(-1, "no AC huffman table built for selector %d", c.sel.ACSelector)
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
		return nil, err
	}
	if err := w.EndBitMode(); err != nil {
		return nil, err
	}
	if err := w.WriteMarker(eoi); err != nil {
		return nil, err
	}

	logger.Info("encoded frame", "lines", frame.Lines, "samples", frame.Samples, "components", len(frame.Components))
	return w.Bytes(), nil
}

// buildOptimalHuffmanTables runs the standard two-pass optimal-Huffman
// procedure: gather symbol statistics per DC/AC table selector across
// every block assigned to it, then build one canonical table per selector
// (spec §4.4, §6 "optimal-Huffman pass"). plan's predictor state is reset
// before and after so the real encode pass starts clean.
func buildOptimalHuffmanTables(plan *scanPlan, cache *blockCache) ([]huffmanTableDef, error) {
	dcFreq := map[uint8]*huffmanFreqTable{}
	acFreq := map[uint8]*huffmanFreqTable{}
	for _, c := range plan.comps {
		if _, ok := dcFreq[c.sel.DCSelector]; !ok {
			dcFreq[c.sel.DCSelector] = &huffmanFreqTable{}
		}
		if _, ok := acFreq[c.sel.ACSelector]; !ok {
			acFreq[c.sel.ACSelector] = &huffmanFreqTable{}
		}
	}

	plan.resetPredictors()
	err := plan.walkUnits(func(comp *scanPlanComponent, bx, by int) error {
		blk := cache.Get(comp.frameIdx, bx, by)
		gatherBaselineBlock(dcFreq[comp.sel.DCSelector], acFreq[comp.sel.ACSelector], comp, blk)
		return nil
	}, nil)
	if err != nil {
		return nil, err
	}
	plan.resetPredictors()

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
	// by (class, id) so identical input always yields an identical DHT
	// segment order (spec §5 byte-identical-output guarantee).
	sort.Slice(defs, func(i, j int) bool {
		if defs[i].class != defs[j].class {
			return defs[i].class < defs[j].class
		}
		return defs[i].id < defs[j].id
	})
	return defs, nil
}
