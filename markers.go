package jpeg

// marker is a JPEG marker code. On the wire a marker is the two bytes
// 0xFF, code; code is never 0x00 and a run of 0xFF bytes collapses to a
// single sentinel (spec §3 "Marker").
type marker uint8

const (
	tem marker = 0x01 // Temporary use in arithmetic coding

	sof0 marker = 0xc0 // Baseline DCT, Huffman
	sof1 marker = 0xc1 // Extended sequential DCT, Huffman
	sof2 marker = 0xc2 // Progressive DCT, Huffman
	sof3 marker = 0xc3 // Lossless, Huffman
	dht  marker = 0xc4 // Define Huffman Table
	sof5 marker = 0xc5 // Differential sequential DCT, Huffman (unsupported)
	sof6 marker = 0xc6 // Differential progressive DCT, Huffman (unsupported)
	sof7 marker = 0xc7 // Differential lossless, Huffman (unsupported)
	jpg  marker = 0xc8 // Reserved for JPEG extensions
	sof9 marker = 0xc9 // Extended sequential DCT, arithmetic
	sof10 marker = 0xca // Progressive DCT, arithmetic
	sof11 marker = 0xcb // Lossless, arithmetic
	dac  marker = 0xcc // Define Arithmetic Conditioning Table
	sof13 marker = 0xcd // Differential sequential DCT, arithmetic (unsupported)
	sof14 marker = 0xce // Differential progressive DCT, arithmetic (unsupported)
	sof15 marker = 0xcf // Differential lossless, arithmetic (unsupported)

	rst0 marker = 0xd0
	rst1 marker = 0xd1
	rst2 marker = 0xd2
	rst3 marker = 0xd3
	rst4 marker = 0xd4
	rst5 marker = 0xd5
	rst6 marker = 0xd6
	rst7 marker = 0xd7

	soi marker = 0xd8 // Start Of Image
	eoi marker = 0xd9 // End Of Image
	sos marker = 0xda // Start Of Scan
	dqt marker = 0xdb // Define Quantization Table
	dnl marker = 0xdc // Define Number of Lines
	dri marker = 0xdd // Define Restart Interval
	dhp marker = 0xde // Define Hierarchical Progression (unsupported)
	exp marker = 0xdf // Expand reference image (unsupported)

	app0 marker = 0xe0
	app14 marker = 0xee
	com  marker = 0xfe // Comment
)

func isRST(m marker) bool { return m >= rst0 && m <= rst7 }

func isAPPn(m marker) bool { return m >= app0 && m <= 0xef }

// isSOF reports whether m is any Start-Of-Frame marker, supported or not.
func isSOF(m marker) bool {
	switch m {
	case sof0, sof1, sof2, sof3, sof5, sof6, sof7,
		sof9, sof10, sof11, sof13, sof14, sof15:
		return true
	}
	return false
}

// frameKind classifies a supported SOF marker into the entropy-coding /
// scan-progression family the scan driver dispatches on (spec §9 "Variant
// dispatch").
type frameKind int

const (
	frameBaselineHuffman    frameKind = iota // SOF0: sequential, 2 DC+AC table pairs
	frameExtendedHuffman                     // SOF1: sequential, up to 4 table pairs, 8/12 bit
	frameProgressiveHuffman                  // SOF2
	frameLosslessHuffman                     // SOF3
	frameSequentialArith                     // SOF9
	frameProgressiveArith                    // SOF10
)

// classifyFrame maps a SOF marker to its frameKind, or reports Unsupported
// for hierarchical/differential/arithmetic-lossless frames this core does
// not implement (spec §1 Non-goals).
func classifyFrame(m marker, offset int) (frameKind, error) {
	switch m {
	case sof0:
		return frameBaselineHuffman, nil
	case sof1:
		return frameExtendedHuffman, nil
	case sof2:
		return frameProgressiveHuffman, nil
	case sof3:
		return frameLosslessHuffman, nil
	case sof9:
		return frameSequentialArith, nil
	case sof10:
		return frameProgressiveArith, nil
	}
	return 0, errUnsupported(offset, "frame marker 0xff%02x is not supported", uint8(m))
}

func markerName(m marker) string {
	switch m {
	case tem:
		return "TEM"
	case sof0:
		return "SOF0"
	case sof1:
		return "SOF1"
	case sof2:
		return "SOF2"
	case sof3:
		return "SOF3"
	case dht:
		return "DHT"
	case sof5:
		return "SOF5"
	case sof6:
		return "SOF6"
	case sof7:
		return "SOF7"
	case jpg:
		return "JPG"
	case sof9:
		return "SOF9"
	case sof10:
		return "SOF10"
	case sof11:
		return "SOF11"
	case dac:
		return "DAC"
	case sof13:
		return "SOF13"
	case sof14:
		return "SOF14"
	case sof15:
		return "SOF15"
	case soi:
		return "SOI"
	case eoi:
		return "EOI"
	case sos:
		return "SOS"
	case dqt:
		return "DQT"
	case dnl:
		return "DNL"
	case dri:
		return "DRI"
	case dhp:
		return "DHP"
	case exp:
		return "EXP"
	case com:
		return "COM"
	}
	switch {
	case isRST(m):
		return fmt_RST(m)
	case isAPPn(m):
		return fmt_APPn(m)
	}
	return "RES"
}

func fmt_RST(m marker) string {
	return "RST" + string(rune('0'+int(m-rst0)))
}

func fmt_APPn(m marker) string {
	n := int(m - app0)
	if n < 10 {
		return "APP" + string(rune('0'+n))
	}
	return "APP1" + string(rune('0'+n-10))
}
