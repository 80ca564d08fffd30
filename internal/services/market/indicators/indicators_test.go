package indicators

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadiminshakov/momentum/internal/domain"
)

func series(n int, price func(i int) float64) []domain.PriceObservation {
	base := time.Unix(1_700_000_000, 0)
	out := make([]domain.PriceObservation, n)
	for i := range out {
		out[i] = domain.PriceObservation{
			Time:  base.Add(time.Duration(i) * time.Minute),
			Price: decimal.NewFromFloat(price(i)),
		}
	}
	return out
}

func wave(i int) float64 {
	return 100 + 5*math.Sin(float64(i)/3) + float64(i)*0.1
}

func TestCompute_InsufficientHistory(t *testing.T) {
	p := NewProvider()

	got, err := p.Compute(series(25, wave), 26)
	require.NoError(t, err)
	assert.False(t, got.RSI.Valid)
	assert.False(t, got.MACD.Valid)
	assert.False(t, got.MACDSignal.Valid)
}

func TestCompute_LongHistory(t *testing.T) {
	p := NewProvider()

	got, err := p.Compute(series(100, wave), 26)
	require.NoError(t, err)
	require.True(t, got.RSI.Valid)
	require.True(t, got.MACD.Valid)
	require.True(t, got.MACDSignal.Valid)

	assert.True(t, got.RSI.Decimal.GreaterThanOrEqual(decimal.Zero))
	assert.True(t, got.RSI.Decimal.LessThanOrEqual(decimal.NewFromInt(100)))
}

func TestCompute_RisingPricesHavePositiveMACD(t *testing.T) {
	p := NewProvider()

	got, err := p.Compute(series(60, func(i int) float64 { return 100 + float64(i)*float64(i)*0.05 }), 26)
	require.NoError(t, err)
	require.True(t, got.MACD.Valid)
	assert.True(t, got.MACD.Decimal.IsPositive())
}

func TestCompute_MalformedInput(t *testing.T) {
	p := NewProvider()

	_, err := p.Compute(series(30, wave), 0)
	assert.Error(t, err)

	bad := series(30, wave)
	bad[10].Price = decimal.Zero
	_, err = p.Compute(bad, 26)
	assert.Error(t, err)
}

func TestCompute_RejectsBadPriceDuringWarmUp(t *testing.T) {
	p := NewProvider()

	short := series(3, wave)
	short[2].Price = decimal.NewFromInt(-1)
	_, err := p.Compute(short, 26)
	assert.Error(t, err)

	short[2].Price = decimal.Zero
	_, err = p.Compute(short, 26)
	assert.Error(t, err)
}
