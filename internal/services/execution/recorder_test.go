package execution

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
)

type ledgerMock struct {
	mock.Mock
}

func (m *ledgerMock) Append(entry domain.LedgerEntry) error {
	return m.Called(entry).Error(0)
}

func obs(price string) *domain.PriceObservation {
	return &domain.PriceObservation{
		Time:  time.Unix(1_700_000_000, 0),
		Price: decimal.RequireFromString(price),
	}
}

func TestRecorder_Record(t *testing.T) {
	tests := []struct {
		signal domain.Signal
		side   domain.Side
	}{
		{domain.SignalBuy, domain.SideBuy},
		{domain.SignalSell, domain.SideSell},
		{domain.SignalSellStopLoss, domain.SideSell},
		{domain.SignalSellTakeProfit, domain.SideSell},
		{domain.SignalBuyStopLoss, domain.SideBuy},
		{domain.SignalBuyTakeProfit, domain.SideBuy},
	}

	for _, tt := range tests {
		t.Run(tt.signal.String(), func(t *testing.T) {
			ledger := &ledgerMock{}
			ledger.On("Append", mock.MatchedBy(func(e domain.LedgerEntry) bool {
				return e.Side == tt.side && e.Signal == tt.signal && e.ID != ""
			})).Return(nil).Once()

			r := NewRecorder(zap.NewNop(), ledger)
			th := domain.DefaultThresholds()
			th.TradeSize = 0.05

			entry, err := r.Record(context.Background(), tt.signal, obs("101.25"), th)
			require.NoError(t, err)
			assert.Equal(t, tt.side, entry.Side)
			assert.True(t, entry.Quantity.Equal(decimal.RequireFromString("0.05")))
			assert.True(t, entry.TradeSize.Equal(entry.Quantity))
			assert.True(t, entry.Price.Equal(decimal.RequireFromString("101.25")))
			ledger.AssertExpectations(t)
		})
	}
}

func TestRecorder_RejectsNonActionable(t *testing.T) {
	ledger := &ledgerMock{}
	r := NewRecorder(zap.NewNop(), ledger)

	for _, s := range []domain.Signal{domain.SignalNone, domain.SignalHold} {
		_, err := r.Record(context.Background(), s, obs("100"), domain.DefaultThresholds())
		assert.ErrorIs(t, err, ErrNotActionable)
	}
	ledger.AssertNotCalled(t, "Append", mock.Anything)
}

func TestRecorder_PersistenceFailure(t *testing.T) {
	ledger := &ledgerMock{}
	ledger.On("Append", mock.Anything).Return(errors.New("disk full"))
	r := NewRecorder(zap.NewNop(), ledger)

	entry, err := r.Record(context.Background(), domain.SignalBuy, obs("100"), domain.DefaultThresholds())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Empty(t, entry.ID)
}
