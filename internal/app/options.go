package service

import (
	"github.com/okian/topskim/internal/adapters/sink"
	"github.com/okian/topskim/internal/adapters/source"
	"github.com/okian/topskim/internal/domain/analysis"
	"github.com/okian/topskim/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSource sets the event source. It is closed when the run ends.
func WithSource(src source.Source) Option {
	return func(s *Service) {
		s.source = src
	}
}

// WithAnalyzer sets the per-event analyzer.
func WithAnalyzer(a *analysis.Analyzer) Option {
	return func(s *Service) {
		if a != nil {
			s.analyzer = a
		}
	}
}

// WithSink sets the histogram sink.
func WithSink(h *sink.Sink) Option {
	return func(s *Service) {
		if h != nil {
			s.sink = h
		}
	}
}

// WithWorkerCount sets the number of analysis goroutines. One or fewer runs
// the loop sequentially.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the event queue feeding the workers.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupe drops events whose (run, lumi, event) id was already read. A
// non-positive size keeps every id.
func WithDedupe(enabled bool, size int) Option {
	return func(s *Service) {
		s.dedupe = enabled
		s.dedupeSize = size
	}
}

// WithOutput sets the ROOT file the histograms are written to.
func WithOutput(path string) Option {
	return func(s *Service) {
		s.outPath = path
	}
}

// WithPlotDir renders a PNG per histogram into dir after the run.
func WithPlotDir(dir string) Option {
	return func(s *Service) {
		s.plotDir = dir
	}
}

// WithMonitorAddr serves the monitoring API on addr while the run lasts.
func WithMonitorAddr(addr string) Option {
	return func(s *Service) {
		s.monitorAddr = addr
	}
}

// WithRunID overrides the generated run id.
func WithRunID(id string) Option {
	return func(s *Service) {
		if id != "" {
			s.runID = id
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
