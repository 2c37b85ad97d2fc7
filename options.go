package jpeg

import "log/slog"

// Options configures a Decoder. The zero value is usable: full decoding,
// no logging.
//
// Logging uses log/slog rather than a bespoke logger type, the same
// choice the closest domain-sibling in the retrieval pack makes for this
// exact codec-warning role (jpfielding-dicos.go's pkg/compress/jpegli and
// pkg/dicos both take an *slog.Logger), per SPEC_FULL.md §10.
type Options struct {
	// Logger receives warnings for recoverable oddities (an unrecognized
	// marker skipped by its length, an arithmetic scan that requests a
	// spectral or successive-approximation band). A nil Logger disables
	// logging; it never causes a panic.
	Logger *slog.Logger

	// IdentifyOnly stops Decode at the first SOS, recording the frame
	// header and quantization tables without decoding any scan (spec
	// §4.2 "Identify mode").
	IdentifyOnly bool
}

func (o *Options) logger() *slog.Logger {
	if o == nil || o.Logger == nil {
		return slog.New(slog.NewTextHandler(discardWriter{}, nil))
	}
	return o.Logger
}

// discardWriter is an io.Writer that discards everything, backing the
// default no-op logger so callers never need a nil check before logging.
type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// EncodeOptions configures an Encoder.
type EncodeOptions struct {
	Logger *slog.Logger

	// RestartInterval, when > 0, emits a DRI segment and a restart marker
	// every RestartInterval MCUs (spec §4.3).
	RestartInterval int
}

func (o *EncodeOptions) logger() *slog.Logger {
	if o == nil || o.Logger == nil {
		return slog.New(slog.NewTextHandler(discardWriter{}, nil))
	}
	return o.Logger
}

// OptimizeOptions configures the optimizer orchestrator.
type OptimizeOptions struct {
	Logger *slog.Logger

	// StripAppSegments drops APPn and COM segments from the re-emitted
	// stream instead of copying them verbatim (spec §6 "the optimizer may
	// optionally strip them").
	StripAppSegments bool
}

func (o *OptimizeOptions) logger() *slog.Logger {
	if o == nil || o.Logger == nil {
		return slog.New(slog.NewTextHandler(discardWriter{}, nil))
	}
	return o.Logger
}
