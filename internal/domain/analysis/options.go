package analysis

import (
	"github.com/okian/topskim/internal/domain/cuts"
	"github.com/okian/topskim/pkg/logger"
)

// Option applies a configuration option to the Analyzer.
type Option func(*Analyzer)

// WithCuts overrides the default thresholds.
func WithCuts(c cuts.Cuts) Option {
	return func(a *Analyzer) {
		a.cuts = c
	}
}

// WithMC marks the input as simulation: event weights are used and the
// dataset veto is skipped.
func WithMC(isMC bool) Option {
	return func(a *Analyzer) {
		a.isMC = isMC
	}
}

// WithPP selects proton-proton running. Heavy-ion running is the default.
func WithPP(isPP bool) Option {
	return func(a *Analyzer) {
		a.isPP = isPP
	}
}

// WithSameSign selects same-sign instead of opposite-sign pairs.
func WithSameSign(sameSign bool) Option {
	return func(a *Analyzer) {
		a.sameSign = sameSign
	}
}

// WithDataset sets the primary dataset of data input.
func WithDataset(d Dataset) Option {
	return func(a *Analyzer) {
		a.dataset = d
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}
