// Package service drives a selection job: it reads events, runs the analysis
// on them and accumulates histograms of the accepted ones.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/topskim/internal/adapters/http/api"
	eventqueue "github.com/okian/topskim/internal/adapters/mq/queue"
	workerpool "github.com/okian/topskim/internal/adapters/mq/worker"
	"github.com/okian/topskim/internal/adapters/sink"
	"github.com/okian/topskim/internal/adapters/source"
	"github.com/okian/topskim/internal/domain/analysis"
	"github.com/okian/topskim/internal/domain/dedupe"
	"github.com/okian/topskim/internal/domain/model"
	"github.com/okian/topskim/pkg/logger"
	"github.com/okian/topskim/pkg/metrics"
)

const (
	defaultQueueSize       = 4096
	monitorShutdownTimeout = 5 * time.Second
)

// Summary reports the outcome of a run.
type Summary struct {
	RunID       string         `json:"run_id"`
	Read        int            `json:"read"`
	Duplicates  int            `json:"duplicates"`
	Verdicts    map[string]int `json:"verdicts"`
	Accepted    int            `json:"accepted"`
	TotalWeight float64        `json:"total_weight"`
	Histograms  int            `json:"histograms"`
	Elapsed     time.Duration  `json:"elapsed"`
}

// Service runs one selection job over one event source.
type Service struct {
	mu sync.RWMutex

	// Core components
	source   source.Source
	analyzer *analysis.Analyzer
	sink     *sink.Sink
	deduper  dedupe.Deduper

	// Configuration
	workerCount int
	queueSize   int
	dedupe      bool
	dedupeSize  int
	outPath     string
	plotDir     string
	monitorAddr string
	runID       string

	// State
	running  bool
	started  time.Time
	progress Summary

	logger logger.Logger
}

// New constructs a Service. Components not set through options get their
// defaults.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: 1,
		queueSize:   defaultQueueSize,
		runID:       uuid.NewString(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("app")
	}
	if s.analyzer == nil {
		s.analyzer = analysis.NewAnalyzer()
	}
	if s.sink == nil {
		s.sink = sink.New(sink.WithWorkingPoint(s.analyzer.Cuts().BTagWorkingPoint))
	}
	if s.dedupe {
		s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	}

	return s
}

// RunID returns the id attached to this run's logs and stats.
func (s *Service) RunID() string { return s.runID }

// Sink returns the histogram sink filled by the run.
func (s *Service) Sink() *sink.Sink { return s.sink }

// Run processes the whole source. Configuration problems in the input, such
// as misaligned tables, end the run with an error; rejected events never do.
func (s *Service) Run(ctx context.Context) (Summary, error) {
	if s.source == nil {
		return Summary{}, ErrNoSource
	}
	if err := s.begin(); err != nil {
		return Summary{}, err
	}
	defer s.end()
	defer func() {
		if err := s.source.Close(); err != nil {
			s.logger.Warn(ctx, "closing source failed", logger.Error(err))
		}
	}()

	s.logger.Info(ctx, "run started",
		logger.String("run_id", s.runID),
		logger.Int("workers", s.workerCount),
		logger.Bool("mc", s.analyzer.IsMC()),
		logger.Bool("dedupe", s.dedupe),
	)

	if s.monitorAddr != "" {
		m := api.NewMonitor(s.monitorAddr, s)
		if err := m.Start(ctx); err != nil {
			return s.snapshot(), err
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), monitorShutdownTimeout)
			defer cancel()
			if err := m.Shutdown(sctx); err != nil {
				s.logger.Warn(ctx, "monitor shutdown failed", logger.Error(err))
			}
		}()
	}

	var err error
	if s.workerCount > 1 {
		err = s.runParallel(ctx)
	} else {
		err = s.runSequential(ctx)
	}
	if err != nil {
		s.logger.Error(ctx, "run aborted", logger.String("run_id", s.runID), logger.Error(err))
		return s.snapshot(), err
	}

	if err := s.finish(ctx); err != nil {
		return s.snapshot(), err
	}

	sum := s.snapshot()
	s.logger.Info(ctx, "run finished",
		logger.String("run_id", s.runID),
		logger.Int("read", sum.Read),
		logger.Int("accepted", sum.Accepted),
		logger.Float64("total_weight", sum.TotalWeight),
		logger.Int("histograms", sum.Histograms),
		logger.Duration("elapsed", sum.Elapsed),
	)
	return sum, nil
}

func (s *Service) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrRunning
	}
	s.running = true
	s.started = time.Now()
	s.progress = Summary{RunID: s.runID, Verdicts: make(map[string]int)}
	return nil
}

func (s *Service) end() {
	s.mu.Lock()
	s.running = false
	s.progress.Elapsed = time.Since(s.started)
	s.mu.Unlock()
}

// runSequential processes events one at a time in read order.
func (s *Service) runSequential(ctx context.Context) error {
	for {
		ev, ok, err := s.read(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if ev == nil {
			continue
		}

		start := time.Now()
		r := s.analyzer.Process(ctx, *ev)
		metrics.ObserveEventLatency(time.Since(start))

		if err := s.record(ctx, r); err != nil {
			return err
		}
	}
}

// runParallel fans events out to a worker pool and records the results in
// read order, so the histograms match the sequential path.
func (s *Service) runParallel(ctx context.Context) error {
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	q := eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	pool := workerpool.NewPool(s.workerCount, q, s.analyzer)
	pool.Start(wctx)

	order := newReorderer()
	readErr := make(chan error, 1)
	go func() {
		err := s.feed(wctx, q, order)
		if serr := pool.Shutdown(wctx); serr != nil && err == nil {
			err = serr
		}
		readErr <- err
	}()

	var recordErr error
	for r := range pool.Results() {
		if recordErr != nil {
			continue
		}
		for _, ready := range order.add(r) {
			if err := s.record(ctx, ready); err != nil {
				recordErr = err
				cancel()
				break
			}
		}
	}

	feedErr := <-readErr
	if recordErr != nil {
		return recordErr
	}
	if feedErr != nil {
		return feedErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, r := range order.flush() {
		if err := s.record(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

// feed pushes every admitted event onto the queue.
func (s *Service) feed(ctx context.Context, q eventqueue.Queue, order *reorderer) error {
	for {
		ev, ok, err := s.read(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if ev == nil {
			continue
		}
		order.expect(ev.Seq)
		if err := q.Push(ctx, *ev); err != nil {
			return fmt.Errorf("queue event %d: %w", ev.Seq, err)
		}
	}
}

// read returns the next event to analyse. ok is false once the source is
// exhausted; a nil event with ok set marks a dropped duplicate. Every read
// event counts towards the total weight, duplicates included.
func (s *Service) read(ctx context.Context) (*model.Event, bool, error) {
	ev, err := s.source.Next(ctx)
	if errors.Is(err, io.EOF) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	metrics.RecordEventRead()
	s.mu.Lock()
	s.progress.Read++
	s.progress.TotalWeight += ev.Global.Weight
	total := s.progress.TotalWeight
	s.mu.Unlock()
	metrics.UpdateWeightSum(total)

	if s.deduper != nil && s.deduper.SeenAndRecord(ctx, ev.Global.EventID) {
		metrics.RecordEventDuplicate()
		s.mu.Lock()
		s.progress.Duplicates++
		s.mu.Unlock()
		s.logger.Debug(ctx, "duplicate event dropped",
			logger.Int("seq", ev.Seq),
			logger.String("event", ev.Global.Key()),
		)
		return nil, true, nil
	}
	return &ev, true, nil
}

// record accounts for one result and fills the sink when it was accepted.
func (s *Service) record(ctx context.Context, r analysis.Result) error { //nolint:gocritic // hugeParam: results are passed by value
	verdict := r.Verdict.String()
	metrics.RecordVerdict(verdict)
	metrics.RecordLeptons("muon", "loose", len(r.Selection.LooseMuons))
	metrics.RecordLeptons("muon", "tight", len(r.Selection.TightMuons))
	metrics.RecordLeptons("electron", "loose", len(r.Selection.LooseElectrons))
	metrics.RecordLeptons("electron", "tight", len(r.Selection.TightElectrons))

	s.mu.Lock()
	s.progress.Verdicts[verdict]++
	if r.Accepted() {
		s.progress.Accepted++
	}
	s.mu.Unlock()

	if !r.Accepted() {
		return nil
	}
	metrics.RecordCategories(r.Categories)
	metrics.ObserveJets(len(r.TrackJets), r.TaggedTrackJets(s.analyzer.Cuts().BTagWorkingPoint))
	metrics.ObserveRho(r.Rho)

	if err := s.sink.Record(ctx, r); err != nil {
		return fmt.Errorf("record event %d: %w", r.Seq, err)
	}
	return nil
}

// finish normalizes simulation to the total weight and writes the outputs.
func (s *Service) finish(ctx context.Context) error {
	s.mu.RLock()
	total := s.progress.TotalWeight
	s.mu.RUnlock()

	if s.analyzer.IsMC() {
		s.sink.Normalize(total)
	}

	if s.outPath != "" {
		n, err := s.sink.Write(ctx, s.outPath)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.progress.Histograms = n
		s.mu.Unlock()
	}

	if s.plotDir != "" {
		if _, err := s.sink.WritePlots(ctx, s.plotDir); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) snapshot() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum := s.progress
	sum.Verdicts = make(map[string]int, len(s.progress.Verdicts))
	for k, v := range s.progress.Verdicts {
		sum.Verdicts[k] = v
	}
	if s.running {
		sum.Elapsed = time.Since(s.started)
	}
	return sum
}

// GetStats returns run progress for the monitoring API.
func (s *Service) GetStats() map[string]any {
	sum := s.snapshot()

	s.mu.RLock()
	running := s.running
	s.mu.RUnlock()

	stats := map[string]any{
		"run_id":       sum.RunID,
		"running":      running,
		"workers":      s.workerCount,
		"read":         sum.Read,
		"duplicates":   sum.Duplicates,
		"accepted":     sum.Accepted,
		"verdicts":     sum.Verdicts,
		"total_weight": sum.TotalWeight,
		"histograms":   s.sink.Len(),
		"elapsed_ms":   sum.Elapsed.Milliseconds(),
	}
	if s.deduper != nil {
		stats["dedupe_ids"] = s.deduper.Size()
	}
	return stats
}
