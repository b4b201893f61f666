package resilience

import (
	"context"
	"math/rand"
	"time"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 500 * time.Millisecond
)

// Options configures a Policy. Zero values fall back to the defaults above.
type Options struct {
	// MaxAttempts is the total attempt budget, the first try included.
	MaxAttempts int
	// BaseDelay is the nominal wait between attempts. Backoff is constant:
	// every retry waits the same nominal delay, jittered independently.
	BaseDelay time.Duration
	// ShouldRetry classifies an error as retriable. When nil, every error is
	// retried. Definitive failures (e.g. a clean 404) must return false here
	// so they do not burn the attempt budget.
	ShouldRetry func(error) bool
	// OnRetry is invoked before each retry with the attempt number that just
	// failed and its error. It must not block; a panicking hook is swallowed
	// so diagnostics can never break the retry loop.
	OnRetry func(attempt int, err error)
}

// Policy executes operations with a bounded number of attempts. A Policy is
// immutable after construction and safe for concurrent use; one shared
// instance serves all requests.
type Policy struct {
	maxAttempts int
	baseDelay   time.Duration
	shouldRetry func(error) bool
	onRetry     func(attempt int, err error)
}

// NewPolicy builds a Policy from opts, applying defaults for unset fields.
func NewPolicy(opts Options) *Policy {
	p := &Policy{
		maxAttempts: opts.MaxAttempts,
		baseDelay:   opts.BaseDelay,
		shouldRetry: opts.ShouldRetry,
		onRetry:     opts.OnRetry,
	}
	if p.maxAttempts <= 0 {
		p.maxAttempts = defaultMaxAttempts
	}
	if p.baseDelay <= 0 {
		p.baseDelay = defaultBaseDelay
	}
	if p.shouldRetry == nil {
		p.shouldRetry = func(error) bool { return true }
	}
	return p
}

// Do runs op until it succeeds, fails with a non-retriable error, the attempt
// budget is exhausted, or ctx is cancelled. The last failure is returned
// as-is; Do never fabricates a success.
func (p *Policy) Do(ctx context.Context, op func(context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return lastErr
			}
			return err
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !p.shouldRetry(err) {
			return err
		}
		if attempt == p.maxAttempts {
			break
		}

		p.notify(attempt, err)

		if err := p.sleep(ctx); err != nil {
			// Caller gave up; abandon pending retries.
			return lastErr
		}
	}

	return lastErr
}

// MaxAttempts returns the configured attempt budget.
func (p *Policy) MaxAttempts() int {
	return p.maxAttempts
}

func (p *Policy) notify(attempt int, err error) {
	if p.onRetry == nil {
		return
	}
	defer func() {
		_ = recover()
	}()
	p.onRetry(attempt, err)
}

// sleep waits the jittered delay or until ctx is done, whichever comes first.
func (p *Policy) sleep(ctx context.Context) error {
	timer := time.NewTimer(p.jitteredDelay())
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// jitteredDelay spreads waits uniformly over [baseDelay/2, baseDelay*3/2) so
// concurrent callers do not wake in lockstep.
func (p *Policy) jitteredDelay() time.Duration {
	return p.baseDelay/2 + time.Duration(rand.Int63n(int64(p.baseDelay)))
}
