// Package jpeg implements the core of a JPEG (ITU-T T.81 / ISO/IEC 10918-1)
// codec: decoding a compressed bitstream into planar component samples,
// encoding planar samples into a baseline bitstream, and losslessly
// re-emitting an existing baseline bitstream with optimized Huffman
// codebooks.
//
// The package supports baseline and extended sequential Huffman (SOF0/SOF1),
// progressive Huffman (SOF2), lossless Huffman (SOF3), and sequential /
// progressive arithmetic coding (SOF9/SOF10). Hierarchical and differential
// frames, 12-bit encoding, progressive encoding and lossless encoding are not
// supported; see DESIGN.md for the reasoning.
//
// The package is single-threaded and fully synchronous: a Decoder or Encoder
// value is exclusively owned by its caller, and concurrent decoding of
// independent images requires independent instances.
package jpeg
