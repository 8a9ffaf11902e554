// Package worker runs the event selection on a pool of goroutines.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/topskim/internal/domain/analysis"
	"github.com/okian/topskim/internal/domain/model"
	"github.com/okian/topskim/pkg/logger"
	"github.com/okian/topskim/pkg/metrics"
)

const poolShutdownTimeout = 30 * time.Second

// Event abstracts what workers read off the queue.
type Event = model.Event

// Processor runs the selection on one event.
type Processor interface {
	Process(ctx context.Context, ev model.Event) analysis.Result
}

// Queue defines how workers receive events.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Event
}

// Worker processes events and emits their results.
type Worker interface {
	// Run starts the worker loop until the queue drains or ctx is canceled.
	Run(ctx context.Context)
}

// InMemoryWorker implements Worker on top of a Queue.
type InMemoryWorker struct {
	queue     Queue
	processor Processor
	out       chan<- analysis.Result
	name      string

	done chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a worker that sends every result to out.
func NewInMemoryWorker(queue Queue, processor Processor, out chan<- analysis.Result, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     queue,
		processor: processor,
		out:       out,
		name:      "worker",
		done:      make(chan struct{}),
	}

	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	events := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			r, err := w.processEvent(ctx, ev)
			if err != nil {
				w.logger.Error(ctx, "error processing event",
					logger.Int("seq", ev.Seq),
					logger.String("event", ev.Global.Key()),
					logger.Error(err),
				)
				continue
			}
			select {
			case w.out <- r:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

// processEvent runs the processor and turns a panic into an error.
func (w *InMemoryWorker) processEvent(ctx context.Context, ev Event) (r analysis.Result, err error) { //nolint:gocritic // hugeParam: Event must be passed by value for channel semantics
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			metrics.RecordWorkerError()
			err = fmt.Errorf("panic: %v", p)
			return
		}
		metrics.ObserveEventLatency(time.Since(start))
	}()

	return w.processor.Process(ctx, ev), nil
}

// Pool manages multiple workers sharing one queue and one result channel.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	results chan analysis.Result

	logger logger.Logger
}

// NewPool creates a new worker pool. A non-positive count uses one worker
// per CPU.
func NewPool(workerCount int, queue Queue, processor Processor) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   queue,
		results: make(chan analysis.Result, workerCount),
		logger:  logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(
			queue,
			processor,
			pool.results,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	metrics.UpdateWorkerCount(workerCount)

	return pool
}

// Results returns the channel that carries every processed event. It is
// closed once all workers have stopped.
func (p *Pool) Results() <-chan analysis.Result { return p.results }

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	var wg sync.WaitGroup
	for _, w := range p.workers {
		wg.Add(1)
		go func(w *InMemoryWorker) {
			defer wg.Done()
			w.Run(ctx)
		}(w)
	}
	go func() {
		wg.Wait()
		close(p.results)
	}()

	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Shutdown closes the queue and waits for the workers to drain it. The
// drain itself is unbounded. Once ctx is done the workers stop taking
// events and get poolShutdownTimeout to return, and Shutdown reports the
// context error.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	if p.wait(ctx.Done()) {
		metrics.UpdateWorkerCount(0)
		return nil
	}

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), poolShutdownTimeout)
	defer cancel()
	if !p.wait(stopCtx.Done()) {
		p.logger.Warn(ctx, "worker shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}

	metrics.UpdateWorkerCount(0)
	return ctx.Err()
}

// wait blocks until every worker has returned or abort is closed. It
// reports whether all workers returned.
func (p *Pool) wait(abort <-chan struct{}) bool {
	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-abort:
			return false
		}
	}
	return true
}
