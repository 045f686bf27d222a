package dexshare

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// RetryStrategy decides whether and when the transport retries a failed
// request. Strategies only ever see transient failures retried: decoded
// Session, Account, and Argument errors are filtered out before a strategy
// is consulted, so the client's one-shot session-retry contract is never
// affected by transport retries.
//
// Custom strategies can be supplied via Config.WithRetryStrategy:
//
//	config.WithRetryStrategy(&dexshare.ConstantBackoffStrategy{
//	    Interval:   time.Second,
//	    MaxRetries: 2,
//	})
type RetryStrategy interface {
	// NextInterval returns the delay before retry attempt number attempt.
	// The first retry is attempt 1.
	NextInterval(attempt int) time.Duration

	// ShouldRetry reports whether the error should be retried after the
	// given number of completed attempts.
	ShouldRetry(err error, attempts int) bool
}

// ExponentialBackoffStrategy retries transient failures with exponentially
// increasing delays and jitter:
//
//	base = InitialInterval * (Multiplier ^ (attempt-1))
//	delay = min(base, MaxInterval) ± Jitter
type ExponentialBackoffStrategy struct {
	// InitialInterval is the delay before the first retry.
	InitialInterval time.Duration
	// MaxInterval caps the delay.
	MaxInterval time.Duration
	// Multiplier scales the delay between attempts.
	Multiplier float64
	// Jitter is the fraction of randomization applied to each delay (0-1).
	Jitter float64
	// MaxRetries is the maximum number of retry attempts.
	MaxRetries int
}

// NextInterval implements RetryStrategy.
func (s *ExponentialBackoffStrategy) NextInterval(attempt int) time.Duration {
	base := float64(s.InitialInterval) * math.Pow(s.Multiplier, float64(attempt-1))
	if max := float64(s.MaxInterval); s.MaxInterval > 0 && base > max {
		base = max
	}
	if s.Jitter > 0 {
		base += base * s.Jitter * (2*rand.Float64() - 1)
	}
	if base < 0 {
		base = 0
	}
	return time.Duration(base)
}

// ShouldRetry implements RetryStrategy.
func (s *ExponentialBackoffStrategy) ShouldRetry(err error, attempts int) bool {
	return isTransient(err) && attempts <= s.MaxRetries
}

// ConstantBackoffStrategy retries transient failures with a fixed delay.
type ConstantBackoffStrategy struct {
	// Interval is the fixed delay between attempts.
	Interval time.Duration
	// MaxRetries is the maximum number of retry attempts.
	MaxRetries int
}

// NextInterval implements RetryStrategy.
func (s *ConstantBackoffStrategy) NextInterval(attempt int) time.Duration {
	return s.Interval
}

// ShouldRetry implements RetryStrategy.
func (s *ConstantBackoffStrategy) ShouldRetry(err error, attempts int) bool {
	return isTransient(err) && attempts <= s.MaxRetries
}

// NoRetryStrategy disables transport-level retries entirely. This is the
// default when Config.RetryConfig.MaxRetries is zero.
type NoRetryStrategy struct{}

// NextInterval implements RetryStrategy.
func (s *NoRetryStrategy) NextInterval(attempt int) time.Duration {
	return 0
}

// ShouldRetry implements RetryStrategy.
func (s *NoRetryStrategy) ShouldRetry(err error, attempts int) bool {
	return false
}

// retryExecutor runs a request function under a retry strategy, waiting the
// strategy's interval between attempts and honoring context cancellation.
type retryExecutor struct {
	strategy RetryStrategy
	observer Observer
}

func newRetryExecutor(strategy RetryStrategy, observer Observer) *retryExecutor {
	return &retryExecutor{strategy: strategy, observer: observer}
}

// execute runs fn until it succeeds, the strategy declines to retry, or the
// context is canceled.
func (r *retryExecutor) execute(ctx context.Context, endpoint string, fn func() error) error {
	var err error
	for attempt := 1; ; attempt++ {
		err = fn()
		if err == nil || !r.strategy.ShouldRetry(err, attempt) {
			return err
		}

		delay := r.strategy.NextInterval(attempt)
		r.observer.OnRetryAttempt(endpoint, attempt, delay, err)

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}
