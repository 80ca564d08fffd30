package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vadiminshakov/momentum/internal/domain"
	"github.com/vadiminshakov/momentum/pkg/retrier"
)

type feedMock struct {
	mock.Mock
}

func (m *feedMock) FetchLatest(ctx context.Context, pair domain.Pair) (*domain.Tick, error) {
	args := m.Called(ctx, pair)
	tick, _ := args.Get(0).(*domain.Tick)
	return tick, args.Error(1)
}

func TestRetryingFeed(t *testing.T) {
	pair := domain.Pair{From: "BTC", To: "USDT"}
	tick := &domain.Tick{Time: time.Now(), Price: decimal.NewFromInt(100)}

	t.Run("recovers after transient error", func(t *testing.T) {
		next := &feedMock{}
		next.On("FetchLatest", mock.Anything, pair).Return(nil, errors.New("timeout")).Once()
		next.On("FetchLatest", mock.Anything, pair).Return(tick, nil).Once()

		f := NewRetryingFeed(zap.NewNop(), next, retrier.WithInitialInterval(time.Millisecond))
		got, err := f.FetchLatest(context.Background(), pair)
		require.NoError(t, err)
		assert.Equal(t, tick, got)
		next.AssertNumberOfCalls(t, "FetchLatest", 2)
	})

	t.Run("gives up on transient errors", func(t *testing.T) {
		next := &feedMock{}
		next.On("FetchLatest", mock.Anything, pair).Return(nil, errors.New("timeout"))

		f := NewRetryingFeed(zap.NewNop(), next, retrier.WithInitialInterval(time.Millisecond), retrier.WithMaxRetries(1))
		_, err := f.FetchLatest(context.Background(), pair)
		assert.EqualError(t, err, "timeout")
		next.AssertNumberOfCalls(t, "FetchLatest", 2)
	})

	t.Run("missing ticker is not retried", func(t *testing.T) {
		next := &feedMock{}
		next.On("FetchLatest", mock.Anything, pair).Return(nil, ErrNoTicker)

		f := NewRetryingFeed(zap.NewNop(), next, retrier.WithInitialInterval(time.Millisecond))
		_, err := f.FetchLatest(context.Background(), pair)
		assert.ErrorIs(t, err, ErrNoTicker)
		next.AssertNumberOfCalls(t, "FetchLatest", 1)
	})
}
