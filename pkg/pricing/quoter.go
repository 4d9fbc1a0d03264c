package pricing

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Calculator asks the server for a quote.
type Calculator interface {
	CalculatePrice(ctx context.Context, req Request) (Breakdown, error)
}

// CalculatorFunc adapts a function to Calculator.
type CalculatorFunc func(ctx context.Context, req Request) (Breakdown, error)

// CalculatePrice implements Calculator.
func (fn CalculatorFunc) CalculatePrice(ctx context.Context, req Request) (Breakdown, error) {
	return fn(ctx, req)
}

// Quoter sequences quote requests so only the newest response is kept. A
// response whose request was followed by a newer one is reported as ErrStale
// and never replaces the latest quote.
type Quoter struct {
	calc   Calculator
	logger *zap.Logger
	seq    atomic.Uint64

	mu     sync.RWMutex
	latest *Breakdown
}

// QuoterOption customises a Quoter.
type QuoterOption func(*Quoter)

// WithQuoterLogger sets the logger.
func WithQuoterLogger(logger *zap.Logger) QuoterOption {
	return func(q *Quoter) {
		if logger != nil {
			q.logger = logger
		}
	}
}

// NewQuoter wraps calc.
func NewQuoter(calc Calculator, opts ...QuoterOption) *Quoter {
	q := &Quoter{calc: calc, logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(q)
		}
	}
	return q
}

// Quote issues a request tagged with a fresh sequence token.
func (q *Quoter) Quote(ctx context.Context, req Request) (Breakdown, error) {
	if err := req.Validate(); err != nil {
		return Breakdown{}, err
	}
	token := q.seq.Add(1)
	breakdown, err := q.calc.CalculatePrice(ctx, req)

	q.mu.Lock()
	defer q.mu.Unlock()
	if token != q.seq.Load() {
		q.logger.Debug("discarding stale quote", zap.Uint64("token", token), zap.Error(err))
		return Breakdown{}, ErrStale
	}
	if err != nil {
		return Breakdown{}, err
	}
	q.latest = &breakdown
	return breakdown, nil
}

// Latest returns the newest accepted quote.
func (q *Quoter) Latest() (Breakdown, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.latest == nil {
		return Breakdown{}, false
	}
	return *q.latest, true
}

// Invalidate drops the current quote and supersedes requests in flight.
func (q *Quoter) Invalidate() {
	q.seq.Add(1)
	q.mu.Lock()
	q.latest = nil
	q.mu.Unlock()
}
