package pipeline

import (
	"context"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/fortify/timeout"
)

// ResiliencePolicy bounds the run's non-LLM external calls: embedding
// and vector retrieval. LLM calls carry their own policy inside the
// resilient client; these calls are cheap by comparison, so the
// timeout budget here is short.
type ResiliencePolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	CallTimeout  time.Duration
}

// DefaultResiliencePolicy returns the policy used when none is
// configured.
func DefaultResiliencePolicy() ResiliencePolicy {
	return ResiliencePolicy{
		MaxAttempts:  3,
		InitialDelay: 500 * time.Millisecond,
		CallTimeout:  15 * time.Second,
	}
}

func (p ResiliencePolicy) normalized() ResiliencePolicy {
	def := DefaultResiliencePolicy()
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = def.MaxAttempts
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = def.InitialDelay
	}
	if p.CallTimeout <= 0 {
		p.CallTimeout = def.CallTimeout
	}
	return p
}

// callResilient runs fn with bounded exponential-backoff retry inside
// a per-call timeout budget.
func callResilient[T any](ctx context.Context, policy ResiliencePolicy, fn func(context.Context) (T, error)) (T, error) {
	policy = policy.normalized()

	r := retry.New[T](retry.Config{
		MaxAttempts:   policy.MaxAttempts,
		InitialDelay:  policy.InitialDelay,
		BackoffPolicy: retry.BackoffExponential,
	})
	t := timeout.New[T](timeout.Config{
		DefaultTimeout: policy.CallTimeout,
	})

	return t.Execute(ctx, policy.CallTimeout, func(ctx context.Context) (T, error) {
		return r.Do(ctx, fn)
	})
}
