package jpeg

// QuantPrecision is the DQT element width: 0 means 8-bit elements, 1 means
// 16-bit elements (spec §3 "Quantization table").
type QuantPrecision uint8

const (
	QuantPrecision8  QuantPrecision = 0
	QuantPrecision16 QuantPrecision = 1
)

// QuantTable holds 64 dequantization multipliers in zig-zag (stream) order,
// keyed by the 4-bit identifier used in DQT and in frame-component records.
// Grounded on the teacher's qdef (jpeg.go), generalized to carry precision
// explicitly instead of inferring it from value range.
type QuantTable struct {
	ID        uint8
	Precision QuantPrecision
	Elements  [64]uint16 // zig-zag order, as carried on the wire
}

// Natural returns the table's elements reordered into raster (natural)
// order, the layout transform.go multiplies against a dequantized block.
func (q *QuantTable) Natural() [64]uint16 {
	var out [64]uint16
	for stream, v := range q.Elements {
		out[zigZag[stream]] = v
	}
	return out
}

// stdLuminanceQuant50 and stdChrominanceQuant50 are the IJG reference
// quantization tables at quality 50, in natural (raster) order. These are
// the canonical tables published by the Independent JPEG Group and widely
// reproduced (e.g. libjpeg's jcparam.c); they are not present anywhere in
// the retrieval pack; this core hand-codes them the same way the teacher
// hand-codes its own standard tables (zigZagRowCol, the marker list).
var stdLuminanceQuant50 = [64]uint16{
	16, 11, 10, 16, 24, 40, 51, 61,
	12, 12, 14, 19, 26, 58, 60, 55,
	14, 13, 16, 24, 40, 57, 69, 56,
	14, 17, 22, 29, 51, 87, 80, 62,
	18, 22, 37, 56, 68, 109, 103, 77,
	24, 35, 55, 64, 81, 104, 113, 92,
	49, 64, 78, 87, 103, 121, 120, 101,
	72, 92, 95, 98, 112, 100, 103, 99,
}

var stdChrominanceQuant50 = [64]uint16{
	17, 18, 24, 47, 99, 99, 99, 99,
	18, 21, 26, 66, 99, 99, 99, 99,
	24, 26, 56, 99, 99, 99, 99, 99,
	47, 66, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
}

// qualityScale maps a 1..100 quality target to the IJG scale-factor used to
// derive a quantization table from the quality-50 base table.
func qualityScale(quality int) int {
	if quality <= 0 {
		quality = 1
	}
	if quality > 100 {
		quality = 100
	}
	if quality < 50 {
		return 5000 / quality
	}
	return 200 - quality*2
}

// ScaledQuantTable builds a QuantTable for the given identifier and
// precision by scaling a quality-50 base table (luma or chroma) to the
// requested quality, per the IJG scaling procedure: each element is
// (base*scale+50)/100, clamped to [1, max] (spec §4.7's inverse).
func ScaledQuantTable(id uint8, precision QuantPrecision, chroma bool, quality int) *QuantTable {
	base := stdLuminanceQuant50
	if chroma {
		base = stdChrominanceQuant50
	}
	scale := qualityScale(quality)
	maxVal := 255
	if precision == QuantPrecision16 {
		maxVal = 65535
	}
	t := &QuantTable{ID: id, Precision: precision}
	for raster, b := range base {
		v := (int(b)*scale + 50) / 100
		if v < 1 {
			v = 1
		}
		if v > maxVal {
			v = maxVal
		}
		t.Elements[unzigZag[raster]] = uint16(v)
	}
	return t
}

// EstimateQuality reverses ScaledQuantTable: given a quantization table,
// estimate the encode quality that produced it, per spec §4.7. chroma
// selects which quality-50 base table to compare against.
func EstimateQuality(t *QuantTable, chroma bool) int {
	base := stdLuminanceQuant50
	if chroma {
		base = stdChrominanceQuant50
	}
	natural := t.Natural()

	allOnes := true
	sum := 0.0
	for raster, b := range base {
		v := natural[raster]
		if v != 1 {
			allOnes = false
		}
		sum += float64(v) * 100.0 / float64(b)
	}
	if allOnes {
		return 100
	}
	m := sum / 64.0

	var q float64
	if m <= 100 {
		q = (200 - m) / 2
	} else {
		q = 5000 / m
	}
	if q < 0 {
		q = 0
	}
	if q > 100 {
		q = 100
	}
	return int(q + 0.5)
}

// EstimateQualityPair reports the minimum of the luma and chroma quality
// estimates, clamped to [0, 100], per spec §4.7: "if both tables exist,
// report the minimum of the two quality estimates". chromaTable may be nil
// when the frame has only one component.
func EstimateQualityPair(lumaTable, chromaTable *QuantTable) int {
	q := EstimateQuality(lumaTable, false)
	if chromaTable != nil {
		if c := EstimateQuality(chromaTable, true); c < q {
			q = c
		}
	}
	return q
}
