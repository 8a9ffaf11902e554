package sink

import "errors"

// Sentinel errors of the histogram sink.
var (
	ErrUnknownHistogram = errors.New("unknown histogram")
	ErrWrite            = errors.New("write histograms")
)
