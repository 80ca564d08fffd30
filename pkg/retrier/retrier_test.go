package retrier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFlaky = errors.New("flaky")

func fast(opts ...Option) *Retrier {
	return New(append([]Option{WithInitialInterval(time.Millisecond), WithJitter(0)}, opts...)...)
}

func TestRetrier_Do(t *testing.T) {
	tests := []struct {
		name         string
		r            *Retrier
		failures     int
		err          error
		wantErr      error
		wantAttempts int
	}{
		{name: "first attempt", r: fast(), failures: 0, wantAttempts: 1},
		{name: "success after retries", r: fast(WithMaxRetries(3)), failures: 2, err: errFlaky, wantAttempts: 3},
		{name: "exhausted", r: fast(WithMaxRetries(2)), failures: 10, err: errFlaky, wantErr: errFlaky, wantAttempts: 3},
		{name: "permanent stops early", r: fast(WithMaxRetries(5)), failures: 10, err: Permanent(errFlaky), wantErr: errFlaky, wantAttempts: 1},
		{
			name:         "retry predicate rejects",
			r:            fast(WithMaxRetries(5), WithRetryIf(func(err error) bool { return !errors.Is(err, errFlaky) })),
			failures:     10,
			err:          errFlaky,
			wantErr:      errFlaky,
			wantAttempts: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			err := tt.r.Do(context.Background(), func(context.Context) error {
				attempts++
				if attempts <= tt.failures {
					return tt.err
				}
				return nil
			})

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				var p *permanentError
				assert.False(t, errors.As(err, &p), "permanent wrapper must not leak")
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantAttempts, attempts)
		})
	}
}

func TestRetrier_ContextCancellation(t *testing.T) {
	r := New(WithMaxRetries(5), WithInitialInterval(100*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	err := r.Do(ctx, func(context.Context) error {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return errFlaky
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, attempts)
}

func TestRetrier_ContextErrorsAreNotRetried(t *testing.T) {
	attempts := 0
	err := fast(WithMaxRetries(5)).Do(context.Background(), func(context.Context) error {
		attempts++
		return context.DeadlineExceeded
	})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, attempts)
}

func TestRetrier_OnRetryAndBackoff(t *testing.T) {
	var waits []time.Duration
	r := New(
		WithInitialInterval(time.Millisecond),
		WithMaxInterval(3*time.Millisecond),
		WithMultiplier(2),
		WithJitter(0),
		WithMaxRetries(4),
		WithOnRetry(func(attempt int, err error, wait time.Duration) {
			assert.ErrorIs(t, err, errFlaky)
			assert.Equal(t, len(waits)+1, attempt)
			waits = append(waits, wait)
		}),
	)

	_ = r.Do(context.Background(), func(context.Context) error { return errFlaky })

	assert.Equal(t, []time.Duration{
		time.Millisecond,
		2 * time.Millisecond,
		3 * time.Millisecond,
		3 * time.Millisecond,
	}, waits)
}

func TestDoWithData(t *testing.T) {
	val, err := DoWithData(fast(), context.Background(), func(context.Context) (string, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", val)

	val, err = DoWithData(fast(WithMaxRetries(1)), context.Background(), func(context.Context) (string, error) {
		return "partial", errFlaky
	})
	assert.ErrorIs(t, err, errFlaky)
	assert.Empty(t, val)
}
