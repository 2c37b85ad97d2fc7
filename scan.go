package jpeg

// Hmax and Vmax return the frame-wide maximum horizontal and vertical
// sampling factors, used to size every component's Block grid (spec §9
// "Coefficient cache sizing").
func (f *FrameHeader) Hmax() int {
	m := 0
	for _, c := range f.Components {
		if int(c.H) > m {
			m = int(c.H)
		}
	}
	return m
}

func (f *FrameHeader) Vmax() int {
	m := 0
	for _, c := range f.Components {
		if int(c.V) > m {
			m = int(c.V)
		}
	}
	return m
}

func ceilDiv(a, b int) int { return (a + b - 1) / b }

// ComponentBlockDims returns the number of 8x8 blocks across and down for
// comp, derived from the frame's overall dimensions and Hmax/Vmax (spec §9
// cache sizing formula).
func (f *FrameHeader) ComponentBlockDims(comp *FrameComponent) (blocksWide, blocksHigh int) {
	hmax, vmax := f.Hmax(), f.Vmax()
	compWidth := ceilDiv(f.Samples*int(comp.H), hmax)
	compHeight := ceilDiv(f.Lines*int(comp.V), vmax)
	return ceilDiv(compWidth, 8), ceilDiv(compHeight, 8)
}

// scanPlanComponent is one scan component's resolved geometry and
// per-scan entropy-coding state (spec §4.3 "DC predictor").
type scanPlanComponent struct {
	frameIdx   int // index into FrameHeader.Components
	sel        ScanComponent
	h, v       int
	blocksWide int
	blocksHigh int

	dcPred int32
}

// scanPlan is the resolved geometry for a single scan: MCU grid (when
// interleaved) or direct Block iteration (when not), per spec §4.3.
type scanPlan struct {
	interleaved bool
	hmax, vmax  int
	mcuCols     int
	mcuRows     int
	comps       []*scanPlanComponent

	restartInterval int
	eobRun          int // progressive AC cross-Block EOB-run counter, spec §4.4
}

// buildScanPlan resolves scan against frame, computing the MCU grid for
// interleaved scans or the direct per-Block iteration shape for a single
// non-interleaved component (spec §4.3).
func buildScanPlan(frame *FrameHeader, scan *ScanHeader, restartInterval int) (*scanPlan, error) {
	if len(scan.Components) == 0 {
		return nil, errData(-1, "scan declares zero components")
	}
	plan := &scanPlan{restartInterval: restartInterval}
	plan.comps = make([]*scanPlanComponent, len(scan.Components))

	hmax, vmax := 0, 0
	for i, sc := range scan.Components {
		fc, ok := frame.ComponentByID(sc.ComponentSelector)
		if !ok {
			return nil, errData(-1, "scan references undeclared component %d", sc.ComponentSelector)
		}
		fidx := -1
		for j := range frame.Components {
			if &frame.Components[j] == fc {
				fidx = j
				break
			}
		}
		bw, bh := frame.ComponentBlockDims(fc)
		plan.comps[i] = &scanPlanComponent{
			frameIdx: fidx, sel: sc, h: int(fc.H), v: int(fc.V),
			blocksWide: bw, blocksHigh: bh,
		}
		if int(fc.H) > hmax {
			hmax = int(fc.H)
		}
		if int(fc.V) > vmax {
			vmax = int(fc.V)
		}
	}
	plan.hmax, plan.vmax = hmax, vmax

	if len(scan.Components) > 1 {
		sumHV := 0
		for _, c := range plan.comps {
			sumHV += c.h * c.v
		}
		if sumHV > 10 {
			return nil, errData(-1, "interleaved scan sum of H*V = %d exceeds 10", sumHV)
		}
		plan.interleaved = true
		plan.mcuCols = ceilDiv(frame.Samples, 8*hmax)
		plan.mcuRows = ceilDiv(frame.Lines, 8*vmax)
	} else {
		plan.interleaved = false
		plan.mcuCols = plan.comps[0].blocksWide
		plan.mcuRows = plan.comps[0].blocksHigh
	}
	return plan, nil
}

// resetPredictors zeroes every component's DC predictor and the AC
// EOB-run counter, done at scan start and at every restart marker (spec
// §4.3).
func (p *scanPlan) resetPredictors() {
	for _, c := range p.comps {
		c.dcPred = 0
	}
	p.eobRun = 0
}

// blockVisitor is called once per 8x8 data unit in scan order.
type blockVisitor func(comp *scanPlanComponent, bx, by int) error

// walkUnits iterates every MCU (or, for a non-interleaved scan, every Block
// of the single component) in row-major order, invoking visit once per data
// unit per spec §4.3: "for each MCU it visits the scan's components in scan
// order; for each component it processes exactly H_i*V_i adjacent 8x8 data
// units in row-major order." onUnit, if non-nil, fires once per complete
// MCU (or, non-interleaved, once per block), letting a caller count restart
// intervals at the correct granularity: the restart interval counts whole
// MCUs, not the individual data units an interleaved MCU is made of (spec
// §4.3).
func (p *scanPlan) walkUnits(visit blockVisitor, onUnit func() error) error {
	if !p.interleaved {
		c := p.comps[0]
		for by := 0; by < p.mcuRows; by++ {
			for bx := 0; bx < p.mcuCols; bx++ {
				if err := visit(c, bx, by); err != nil {
					return err
				}
				if onUnit != nil {
					if err := onUnit(); err != nil {
						return err
					}
				}
			}
		}
		return nil
	}
	for my := 0; my < p.mcuRows; my++ {
		for mx := 0; mx < p.mcuCols; mx++ {
			for _, c := range p.comps {
				for sy := 0; sy < c.v; sy++ {
					for sx := 0; sx < c.h; sx++ {
						bx := mx*c.h + sx
						by := my*c.v + sy
						if bx >= c.blocksWide || by >= c.blocksHigh {
							continue
						}
						if err := visit(c, bx, by); err != nil {
							return err
						}
					}
				}
			}
			if onUnit != nil {
				if err := onUnit(); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// handleRestart byte-aligns the reader, reads the expected RSTn marker,
// and resets scan-local predictor state, per spec §4.3. expectedIndex is
// the running modulo-8 restart counter the driver maintains across the
// scan.
func handleRestart(r *Reader, plan *scanPlan, expectedIndex *int) error {
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
	plan.resetPredictors()
	r.ResetBits()
	return nil
}
