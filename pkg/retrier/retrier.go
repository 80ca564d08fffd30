// Package retrier retries flaky calls with capped exponential backoff.
package retrier

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// Policy describes how calls are retried.
type Policy struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
	// Retries is the number of extra attempts after the first one.
	Retries int
	// Jitter spreads each wait by up to +/- this fraction.
	Jitter float64
}

// DefaultPolicy suits public exchange REST endpoints.
var DefaultPolicy = Policy{
	Initial:    time.Second,
	Max:        30 * time.Second,
	Multiplier: 2,
	Retries:    5,
	Jitter:     0.1,
}

// Option adjusts a Retrier.
type Option func(*Retrier)

// WithInitialInterval sets the wait before the first retry.
func WithInitialInterval(d time.Duration) Option {
	return func(r *Retrier) { r.policy.Initial = d }
}

// WithMaxInterval caps the wait between retries.
func WithMaxInterval(d time.Duration) Option {
	return func(r *Retrier) { r.policy.Max = d }
}

// WithMultiplier sets the backoff growth factor.
func WithMultiplier(m float64) Option {
	return func(r *Retrier) { r.policy.Multiplier = m }
}

// WithMaxRetries sets the number of retries after the first attempt.
func WithMaxRetries(n int) Option {
	return func(r *Retrier) { r.policy.Retries = n }
}

// WithJitter sets the random spread applied to each wait.
func WithJitter(j float64) Option {
	return func(r *Retrier) { r.policy.Jitter = j }
}

// WithRetryIf limits retries to errors accepted by fn.
func WithRetryIf(fn func(error) bool) Option {
	return func(r *Retrier) { r.retryIf = fn }
}

// WithOnRetry registers a hook called before each wait.
func WithOnRetry(fn func(attempt int, err error, wait time.Duration)) Option {
	return func(r *Retrier) { r.onRetry = fn }
}

// Retrier runs a function until it succeeds, the policy is exhausted,
// the error is not retryable or ctx is done.
type Retrier struct {
	policy  Policy
	retryIf func(error) bool
	onRetry func(attempt int, err error, wait time.Duration)
}

// New creates a Retrier from DefaultPolicy and opts.
func New(opts ...Option) *Retrier {
	r := &Retrier{policy: DefaultPolicy}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

func (r *Retrier) retryable(err error) bool {
	var p *permanentError
	if errors.As(err, &p) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if r.retryIf != nil {
		return r.retryIf(err)
	}
	return true
}

// wait returns the pause before retry number attempt (1-based).
func (r *Retrier) wait(attempt int) time.Duration {
	d := float64(r.policy.Initial)
	for i := 1; i < attempt; i++ {
		d *= r.policy.Multiplier
		if d >= float64(r.policy.Max) {
			d = float64(r.policy.Max)
			break
		}
	}
	d += (rand.Float64()*2 - 1) * r.policy.Jitter * d

	return max(time.Duration(d), 0)
}

// Do calls fn until it succeeds. The last error is returned unchanged.
func (r *Retrier) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= r.policy.Retries || !r.retryable(err) {
			var p *permanentError
			if errors.As(err, &p) {
				return p.err
			}
			return err
		}

		wait := r.wait(attempt + 1)
		if r.onRetry != nil {
			r.onRetry(attempt+1, err, wait)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// DoWithData is Do for functions returning a value.
func DoWithData[T any](r *Retrier, ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := r.Do(ctx, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		result = v
		return nil
	})

	return result, err
}
