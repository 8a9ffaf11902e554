package service

import (
	"sync"

	"github.com/okian/topskim/internal/domain/analysis"
)

// reorderer releases results in the order their events were admitted.
type reorderer struct {
	mu      sync.Mutex
	order   []int
	pending map[int]analysis.Result
}

func newReorderer() *reorderer {
	return &reorderer{pending: make(map[int]analysis.Result)}
}

// expect registers seq as the next admitted event. It must be called before
// the event is handed to a worker.
func (o *reorderer) expect(seq int) {
	o.mu.Lock()
	o.order = append(o.order, seq)
	o.mu.Unlock()
}

// add stores r and returns every result that is now in order.
func (o *reorderer) add(r analysis.Result) []analysis.Result { //nolint:gocritic // hugeParam: results are passed by value
	o.mu.Lock()
	defer o.mu.Unlock()

	o.pending[r.Seq] = r
	var ready []analysis.Result
	for len(o.order) > 0 {
		next, ok := o.pending[o.order[0]]
		if !ok {
			break
		}
		ready = append(ready, next)
		delete(o.pending, o.order[0])
		o.order = o.order[1:]
	}
	return ready
}

// flush returns the remaining results in admission order, skipping events
// that never produced one.
func (o *reorderer) flush() []analysis.Result {
	o.mu.Lock()
	defer o.mu.Unlock()

	var rest []analysis.Result
	for _, seq := range o.order {
		if r, ok := o.pending[seq]; ok {
			rest = append(rest, r)
		}
	}
	o.order = nil
	o.pending = make(map[int]analysis.Result)
	return rest
}
