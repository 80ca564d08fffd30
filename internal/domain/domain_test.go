package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignal_IsActionable(t *testing.T) {
	tests := []struct {
		signal Signal
		want   bool
		side   Side
	}{
		{SignalNone, false, SideSell},
		{SignalHold, false, SideSell},
		{SignalBuy, true, SideBuy},
		{SignalSell, true, SideSell},
		{SignalBuyStopLoss, true, SideBuy},
		{SignalBuyTakeProfit, true, SideBuy},
		{SignalSellStopLoss, true, SideSell},
		{SignalSellTakeProfit, true, SideSell},
	}

	for _, tt := range tests {
		t.Run(tt.signal.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.signal.IsActionable())
			assert.Equal(t, tt.side, tt.signal.Side())
		})
	}
}

func TestSignal_TradeType(t *testing.T) {
	assert.Equal(t, "BUY", SignalBuy.TradeType())
	assert.Equal(t, "SELL STOP LOSS", SignalSellStopLoss.TradeType())
	assert.Equal(t, "BUY TAKE PROFIT", SignalBuyTakeProfit.TradeType())
}

func TestDeriveIndicatorPeriods(t *testing.T) {
	tests := []struct {
		window      int
		want        IndicatorPeriods
		minRequired int
	}{
		{26, IndicatorPeriods{RSI: 14, MACDFast: 11, MACDSlow: 26, MACDSignal: 9}, 26},
		{10, IndicatorPeriods{RSI: 10, MACDFast: 8, MACDSlow: 10, MACDSignal: 6}, 10},
		{50, IndicatorPeriods{RSI: 27, MACDFast: 23, MACDSlow: 50, MACDSignal: 17}, 50},
		{5, IndicatorPeriods{RSI: 10, MACDFast: 8, MACDSlow: 5, MACDSignal: 6}, 10},
	}

	for _, tt := range tests {
		got := DeriveIndicatorPeriods(tt.window)
		assert.Equal(t, tt.want, got, "window %d", tt.window)
		assert.Equal(t, tt.minRequired, got.MinRequired(), "window %d", tt.window)
	}
}

func TestParsePair(t *testing.T) {
	p, err := ParsePair("btc_usdt")
	require.NoError(t, err)
	assert.Equal(t, "BTC_USDT", p.String())
	assert.Equal(t, "BTCUSDT", p.Symbol())

	_, err = ParsePair("BTCUSDT")
	assert.Error(t, err)
	_, err = ParsePair("_USDT")
	assert.Error(t, err)
}

func TestHistory_EvictsOldest(t *testing.T) {
	h := NewHistory(3)
	base := time.Unix(1_700_000_000, 0)
	for i := 0; i < 5; i++ {
		h.Push(PriceObservation{Time: base.Add(time.Duration(i) * time.Minute), Price: decimal.NewFromInt(int64(100 + i))})
	}

	require.Equal(t, 3, h.Len())
	items := h.Snapshot()
	assert.True(t, items[0].Price.Equal(decimal.NewFromInt(102)))
	assert.True(t, items[2].Price.Equal(decimal.NewFromInt(104)))

	items[0].Price = decimal.Zero
	assert.True(t, h.Snapshot()[0].Price.Equal(decimal.NewFromInt(102)), "snapshot must be a copy")
}

func TestPriceObservation_Momentum(t *testing.T) {
	obs := PriceObservation{
		MACD:       decimal.NewNullDecimal(decimal.RequireFromString("0.003")),
		MACDSignal: decimal.NewNullDecimal(decimal.RequireFromString("0.001")),
	}
	m, ok := obs.Momentum()
	require.True(t, ok)
	assert.True(t, m.Equal(decimal.RequireFromString("0.002")))
	assert.False(t, obs.HasIndicators())

	obs.MACDSignal = decimal.NullDecimal{}
	_, ok = obs.Momentum()
	assert.False(t, ok)
}
