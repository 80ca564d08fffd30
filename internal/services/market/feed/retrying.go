package feed

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vadiminshakov/momentum/internal/domain"
	"github.com/vadiminshakov/momentum/pkg/retrier"
)

// RetryingFeed retries transient failures a few times within one cycle.
// A missing ticker is not retried: the pair will not appear a second later.
type RetryingFeed struct {
	next Feed
	l    *zap.Logger
	opts []retrier.Option
}

// NewRetryingFeed wraps next with short exponential backoff.
func NewRetryingFeed(l *zap.Logger, next Feed, opts ...retrier.Option) *RetryingFeed {
	defaults := []retrier.Option{
		retrier.WithInitialInterval(500 * time.Millisecond),
		retrier.WithMaxInterval(5 * time.Second),
		retrier.WithMaxRetries(2),
		retrier.WithRetryIf(func(err error) bool { return !errors.Is(err, ErrNoTicker) }),
	}

	return &RetryingFeed{next: next, l: l, opts: append(defaults, opts...)}
}

// FetchLatest delegates to the wrapped feed with retries.
func (f *RetryingFeed) FetchLatest(ctx context.Context, pair domain.Pair) (*domain.Tick, error) {
	r := retrier.New(append(f.opts, retrier.WithOnRetry(func(attempt int, err error, wait time.Duration) {
		f.l.Debug("Fetch attempt failed, retrying",
			zap.String("pair", pair.String()),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err))
	}))...)

	return retrier.DoWithData(r, ctx, func(ctx context.Context) (*domain.Tick, error) {
		return f.next.FetchLatest(ctx, pair)
	})
}
