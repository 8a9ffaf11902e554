package worker_test

import (
	"context"
	"errors"
	"io"
	"sort"
	"testing"
	"time"

	"github.com/okian/topskim/internal/adapters/mq/queue"
	"github.com/okian/topskim/internal/adapters/mq/worker"
	"github.com/okian/topskim/internal/domain/analysis"
	"github.com/okian/topskim/internal/domain/model"
	"github.com/okian/topskim/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithOutput(io.Discard)); err != nil {
		panic(err)
	}
}

// stubProcessor accepts even sequence numbers and panics on panicSeq.
type stubProcessor struct {
	panicSeq int
}

func (p stubProcessor) Process(_ context.Context, ev model.Event) analysis.Result {
	if ev.Seq == p.panicSeq {
		panic("bad event")
	}
	v := model.VerdictNoTrigger
	if ev.Seq%2 == 0 {
		v = model.VerdictAccepted
	}
	return analysis.Result{Seq: ev.Seq, Verdict: v}
}

// slowProcessor takes delay per event unless ctx ends first.
type slowProcessor struct {
	delay time.Duration
}

func (p slowProcessor) Process(ctx context.Context, ev model.Event) analysis.Result {
	select {
	case <-time.After(p.delay):
	case <-ctx.Done():
	}
	return analysis.Result{Seq: ev.Seq, Verdict: model.VerdictAccepted}
}

func fill(q *queue.InMemoryQueue, n int) {
	for i := 0; i < n; i++ {
		So(q.Push(context.Background(), model.Event{Seq: i}), ShouldBeNil)
	}
}

func TestInMemoryWorker(t *testing.T) {
	Convey("Given a worker reading from a closed queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(16))
		out := make(chan analysis.Result, 16)
		fill(q, 4)
		So(q.Close(), ShouldBeNil)

		w := worker.NewInMemoryWorker(q, stubProcessor{panicSeq: -1}, out, worker.WithName("test-worker"))

		Convey("When it runs to completion", func() {
			w.Run(context.Background())
			close(out)

			var seqs []int
			for r := range out {
				seqs = append(seqs, r.Seq)
			}

			Convey("Then every event yields a result in queue order", func() {
				So(seqs, ShouldResemble, []int{0, 1, 2, 3})
			})
		})
	})

	Convey("Given a processor that panics on one event", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(16))
		out := make(chan analysis.Result, 16)
		fill(q, 3)
		So(q.Close(), ShouldBeNil)

		w := worker.NewInMemoryWorker(q, stubProcessor{panicSeq: 1}, out)
		w.Run(context.Background())
		close(out)

		Convey("Then the worker survives and skips only that event", func() {
			var seqs []int
			for r := range out {
				seqs = append(seqs, r.Seq)
			}
			So(seqs, ShouldResemble, []int{0, 2})
		})
	})

	Convey("Given a canceled context", t, func() {
		q := queue.NewInMemoryQueue()
		out := make(chan analysis.Result)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		w := worker.NewInMemoryWorker(q, stubProcessor{panicSeq: -1}, out)

		Convey("Then Run returns promptly", func() {
			go w.Run(ctx)
			select {
			case <-w.Done():
			case <-time.After(time.Second):
				So("worker did not stop", ShouldBeEmpty)
			}
		})
	})
}

func TestPool(t *testing.T) {
	Convey("Given a pool of three workers", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(8))
		pool := worker.NewPool(3, q, stubProcessor{panicSeq: -1})
		So(pool.Size(), ShouldEqual, 3)
		pool.Start(ctx)

		const n = 40
		go func() {
			for i := 0; i < n; i++ {
				_ = q.Push(ctx, model.Event{Seq: i})
			}
			_ = pool.Shutdown(ctx)
		}()

		var seqs []int
		accepted := 0
		for r := range pool.Results() {
			seqs = append(seqs, r.Seq)
			if r.Accepted() {
				accepted++
			}
		}

		Convey("Then each event is processed once and the results channel closes", func() {
			sort.Ints(seqs)
			So(seqs, ShouldHaveLength, n)
			for i, s := range seqs {
				So(s, ShouldEqual, i)
			}
			So(accepted, ShouldEqual, n/2)
		})
	})

	Convey("Given a slow pool with a full backlog at shutdown", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(32))
		pool := worker.NewPool(2, q, slowProcessor{delay: 10 * time.Millisecond})
		fill(q, 30)
		pool.Start(ctx)

		shutdownErr := make(chan error, 1)
		go func() { shutdownErr <- pool.Shutdown(ctx) }()

		n := 0
		for range pool.Results() {
			n++
		}

		Convey("Then shutdown waits for the whole backlog", func() {
			So(<-shutdownErr, ShouldBeNil)
			So(n, ShouldEqual, 30)
		})
	})

	Convey("Given a pool stuck on long events", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		q := queue.NewInMemoryQueue(queue.WithCapacity(8))
		pool := worker.NewPool(2, q, slowProcessor{delay: time.Hour})
		fill(q, 4)
		pool.Start(ctx)

		Convey("When the context is canceled", func() {
			cancel()
			start := time.Now()
			err := pool.Shutdown(ctx)
			for range pool.Results() {
			}

			Convey("Then shutdown returns the context error promptly", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
				So(time.Since(start), ShouldBeLessThan, 5*time.Second)
			})
		})
	})

	Convey("Given a non-positive worker count", t, func() {
		pool := worker.NewPool(0, queue.NewInMemoryQueue(), stubProcessor{})

		Convey("Then one worker per CPU is used", func() {
			So(pool.Size(), ShouldBeGreaterThan, 0)
		})
	})
}
