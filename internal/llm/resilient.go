package llm

import (
	"context"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/fortify/timeout"
)

// RetryPolicy configures bounded exponential backoff for provider calls.
// The policy is applied uniformly to every call of a resilient client so
// test doubles can simulate transient failures deterministically.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	CallTimeout  time.Duration
}

// DefaultRetryPolicy returns the policy used when none is configured.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  3,
		InitialDelay: time.Second,
		CallTimeout:  120 * time.Second,
	}
}

// ResilientClient wraps a Client with bounded retry and a per-call
// timeout budget.
type ResilientClient struct {
	inner  Client
	policy RetryPolicy
}

// NewResilientClient wraps inner with the given retry policy.
func NewResilientClient(inner Client, policy RetryPolicy) *ResilientClient {
	if policy.MaxAttempts <= 0 {
		policy = DefaultRetryPolicy()
	}
	return &ResilientClient{inner: inner, policy: policy}
}

// GenerateJSON generates JSON content, retrying transient provider
// failures with exponential backoff.
func (c *ResilientClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	r := retry.New[string](retry.Config{
		MaxAttempts:   c.policy.MaxAttempts,
		InitialDelay:  c.policy.InitialDelay,
		BackoffPolicy: retry.BackoffExponential,
	})
	t := timeout.New[string](timeout.Config{
		DefaultTimeout: c.policy.CallTimeout,
	})

	return t.Execute(ctx, c.policy.CallTimeout, func(ctx context.Context) (string, error) {
		return r.Do(ctx, func(ctx context.Context) (string, error) {
			return c.inner.GenerateJSON(ctx, prompt, tier)
		})
	})
}

// GetModel returns the model name for a tier.
func (c *ResilientClient) GetModel(tier ModelTier) string {
	return c.inner.GetModel(tier)
}

// Close releases resources held by the wrapped client.
func (c *ResilientClient) Close() error {
	return c.inner.Close()
}
