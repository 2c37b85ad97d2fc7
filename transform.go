package jpeg

import "math"

// aanScaleFactor holds the per-frequency scale factors of the AAN
// (Arai-Agui-Nakajima) fast scaled DCT. Combined with a quantization
// table element they form the single multiplier applied between the
// coefficient domain and the unscaled-transform domain (spec §4.6
// "the AAN scale factors are absorbed into the quantization divisor").
// Grounded conceptually on the teacher's decode.go inverseDCT8, which used
// the same family of constants (named is0..is7/ia1/ia3/a2/a4/a5 there);
// this core names them explicitly and builds a separate multiplier table
// from them for each path (dctMultiplier for decode, forwardMultiplier for
// encode).
var aanScaleFactor = [8]float64{
	1.0, 1.387039845, 1.306562965, 1.175875602,
	1.0, 0.785694958, 0.541196100, 0.275899379,
}

// dctMultiplier returns the 64-entry, natural-order multiplier table used on
// the decode (dequantize) side: element (u,v) is quant(u,v) * scale(u) *
// scale(v) / 8. idct8/fdct8 are IJG's unnormalized AAN butterflies: once the
// scale factors are applied, the 2-D inverseDCT and forwardDCT each leave a
// block 8 times larger than the normalized JPEG DCT would. The /8 here
// removes the inverse side's factor (forwardMultiplier's *8 removes the
// forward side's), so the two multipliers differ by a factor of 64, are not
// reciprocals of one another, and must not be shared.
func dctMultiplier(quantNatural [64]uint16) [64]float64 {
	var m [64]float64
	for v := 0; v < 8; v++ {
		for u := 0; u < 8; u++ {
			i := v*8 + u
			m[i] = float64(quantNatural[i]) * aanScaleFactor[u] * aanScaleFactor[v] / 8.0
		}
	}
	return m
}

// forwardMultiplier returns the 64-entry, natural-order divisor table used on
// the encode (quantize) side: element (u,v) is quant(u,v) * scale(u) *
// scale(v) * 8, per IJG's jcdctmgr forward-DCT divisor. forwardDCT leaves a
// block 8 times larger than the normalized JPEG DCT; dividing by an extra
// factor of 8 here (instead of dctMultiplier's /8) is what makes
// QuantizeBlock and Dequantize inverses of one another up to rounding.
func forwardMultiplier(quantNatural [64]uint16) [64]float64 {
	var m [64]float64
	for v := 0; v < 8; v++ {
		for u := 0; u < 8; u++ {
			i := v*8 + u
			m[i] = float64(quantNatural[i]) * aanScaleFactor[u] * aanScaleFactor[v] * 8.0
		}
	}
	return m
}

// idct8 applies one 1-D inverse DCT pass (AAN fast algorithm, the same
// butterfly network as IJG's float IDCT) to 8 values strided by stride.
func idct8(d *[64]float64, offset, stride int) {
	g := func(i int) float64 { return d[offset+i*stride] }
	set := func(i int, v float64) { d[offset+i*stride] = v }

	tmp0 := g(0)
	tmp1 := g(2)
	tmp2 := g(4)
	tmp3 := g(6)

	tmp10 := tmp0 + tmp2
	tmp11 := tmp0 - tmp2
	tmp13 := tmp1 + tmp3
	tmp12 := (tmp1-tmp3)*1.414213562 - tmp13

	tmp0 = tmp10 + tmp13
	tmp3 = tmp10 - tmp13
	tmp1 := tmp11 + tmp12
	tmp2 = tmp11 - tmp12

	tmp4 := g(1)
	tmp5 := g(3)
	tmp6 := g(5)
	tmp7 := g(7)

	z13 := tmp6 + tmp5
	z10 := tmp6 - tmp5
	z11 := tmp4 + tmp7
	z12 := tmp4 - tmp7

	tmp7 = z11 + z13
	tmp11 = (z11 - z13) * 1.414213562
	z5 := (z10 + z12) * 1.847759065
	tmp10 = 1.082392200*z12 - z5
	tmp12 = -2.613125930*z10 + z5

	tmp6 = tmp12 - tmp7
	tmp5 = tmp11 - tmp6
	tmp4 = tmp10 + tmp5

	set(0, tmp0+tmp7)
	set(7, tmp0-tmp7)
	set(1, tmp1+tmp6)
	set(6, tmp1-tmp6)
	set(2, tmp2+tmp5)
	set(5, tmp2-tmp5)
	set(4, tmp3+tmp4)
	set(3, tmp3-tmp4)
}

// fdct8 applies one 1-D forward DCT pass (AAN fast algorithm, IJG's float
// FDCT butterfly), the exact inverse network of idct8.
func fdct8(d *[64]float64, offset, stride int) {
	g := func(i int) float64 { return d[offset+i*stride] }
	set := func(i int, v float64) { d[offset+i*stride] = v }

	tmp0 := g(0) + g(7)
	tmp7 := g(0) - g(7)
	tmp1 := g(1) + g(6)
	tmp6 := g(1) - g(6)
	tmp2 := g(2) + g(5)
	tmp5 := g(2) - g(5)
	tmp3 := g(3) + g(4)
	tmp4 := g(3) - g(4)

	tmp10 := tmp0 + tmp3
	tmp13 := tmp0 - tmp3
	tmp11 := tmp1 + tmp2
	tmp12 := tmp1 - tmp2

	set(0, tmp10+tmp11)
	set(4, tmp10-tmp11)

	z1 := (tmp12 + tmp13) * 0.707106781
	set(2, tmp13+z1)
	set(6, tmp13-z1)

	tmp10 = tmp4 + tmp5
	tmp11 = tmp5 + tmp6
	tmp12 = tmp6 + tmp7

	z5 := (tmp10 - tmp12) * 0.382683433
	z2 := 0.541196100*tmp10 + z5
	z4 := 1.306562965*tmp12 + z5
	z3 := tmp11 * 0.707106781

	z11 := tmp7 + z3
	z13 := tmp7 - z3

	set(5, z13+z2)
	set(3, z13-z2)
	set(1, z11+z4)
	set(7, z11-z4)
}

// inverseDCT transforms a dequantized coefficient Block (natural order,
// already multiplied by dctMultiplier) into spatial-domain samples,
// columns then rows, per spec §4.6.
func inverseDCT(d *[64]float64) {
	for col := 0; col < 8; col++ {
		idct8(d, col, 8)
	}
	for row := 0; row < 8; row++ {
		idct8(d, row*8, 1)
	}
}

// forwardDCT transforms a level-shifted spatial Block into unscaled DCT
// coefficients, rows then columns, the mirror image of inverseDCT.
func forwardDCT(d *[64]float64) {
	for row := 0; row < 8; row++ {
		fdct8(d, row*8, 1)
	}
	for col := 0; col < 8; col++ {
		fdct8(d, col, 8)
	}
}

// Dequantize converts a quantized coefficient Block (natural order) into
// spatial samples using the supplied multiplier table (spec §4.6 "Inverse
// DCT (decode)"), then level-shifts and clamps to [0, (1<<precision)-1].
func Dequantize(coeffs *Block, mult *[64]float64, precision int) [64]int32 {
	var f [64]float64
	for i, c := range coeffs {
		f[i] = float64(c) * mult[i]
	}
	inverseDCT(&f)

	half := int32(1) << uint(precision-1)
	maxVal := (int32(1) << uint(precision)) - 1
	var out [64]int32
	for i, v := range f {
		s := int32(math.Round(v)) + half
		if s < 0 {
			s = 0
		}
		if s > maxVal {
			s = maxVal
		}
		out[i] = s
	}
	return out
}

// QuantizeBlock level-shifts raw samples by -(1<<(precision-1)), runs the
// forward DCT, and quantizes by dividing by mult (a forwardMultiplier table,
// not a dctMultiplier one), producing a natural-order coefficient Block ready
// for zig-zag reordering (spec §4.6 "Forward DCT (encode)").
func QuantizeBlock(samples *[64]int32, mult *[64]float64, precision int) Block {
	half := float64(int32(1) << uint(precision-1))
	var f [64]float64
	for i, s := range samples {
		f[i] = float64(s) - half
	}
	forwardDCT(&f)

	var out Block
	for i, v := range f {
		m := mult[i]
		if m == 0 {
			// A zero quantization element has no valid reciprocal; spec
			// §3 requires tolerating it without dividing, so the
			// coefficient passes through the AAN-scaled transform only.
			out[i] = int32(math.Round(v))
			continue
		}
		out[i] = int32(math.Round(v / m))
	}
	return out
}
