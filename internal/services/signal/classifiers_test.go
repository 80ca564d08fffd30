package signal

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/vadiminshakov/momentum/internal/domain"
)

func TestCrossover(t *testing.T) {
	cls := defaultClassifier{}

	tests := []struct {
		name     string
		prev     domain.PriceObservation
		macd     string
		signal   string
		expected Crossover
	}{
		{
			name:     "bullish strong",
			prev:     observation("1", "", "-0.001", "0.0015"),
			macd:     "0.002",
			signal:   "0.001",
			expected: Crossover{Direction: DirectionBullish, Strength: StrengthStrong},
		},
		{
			name:     "bullish weak when macd falls while signal falls faster",
			prev:     observation("1", "", "0.003", "0.004"),
			macd:     "0.002",
			signal:   "0.001",
			expected: Crossover{Direction: DirectionBullish, Strength: StrengthWeak},
		},
		{
			name:     "bullish from equal lines",
			prev:     observation("1", "", "0.001", "0.001"),
			macd:     "0.002",
			signal:   "0.001",
			expected: Crossover{Direction: DirectionBullish, Strength: StrengthStrong},
		},
		{
			name:     "bearish strong",
			prev:     observation("1", "", "0.002", "0.001"),
			macd:     "-0.001",
			signal:   "0.0005",
			expected: Crossover{Direction: DirectionBearish, Strength: StrengthStrong},
		},
		{
			name:     "bearish weak",
			prev:     observation("1", "", "-0.003", "-0.004"),
			macd:     "-0.002",
			signal:   "-0.001",
			expected: Crossover{Direction: DirectionBearish, Strength: StrengthWeak},
		},
		{
			name:     "no cross",
			prev:     observation("1", "", "0.002", "0.001"),
			macd:     "0.003",
			signal:   "0.001",
			expected: Crossover{Direction: DirectionNone},
		},
		{
			name:     "previous point without indicators",
			prev:     observation("1", "", "", ""),
			macd:     "0.003",
			signal:   "0.001",
			expected: Crossover{Direction: DirectionNone},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current := observation("1", "", tt.macd, tt.signal)
			history := []domain.PriceObservation{tt.prev, current}
			got := cls.Crossover(history, d(tt.macd), d(tt.signal))
			assert.Equal(t, tt.expected, got)
		})
	}

	t.Run("insufficient history", func(t *testing.T) {
		got := cls.Crossover([]domain.PriceObservation{observation("1", "", "0.1", "0.0")}, d("0.1"), d("0"))
		assert.Equal(t, DirectionNone, got.Direction)
		assert.Equal(t, StrengthNone, got.Strength)
	})
}

func TestTrend(t *testing.T) {
	cls := defaultClassifier{}

	tests := []struct {
		macd, signal decimal.NullDecimal
		expected     Trend
	}{
		{nd("0.003"), nd("0.001"), TrendStrongBullish},
		{nd("0.002"), nd("0.001"), TrendWeakBullish},
		{nd("0.001"), nd("0.003"), TrendStrongBearish},
		{nd("0.001"), nd("0.0015"), TrendWeakBearish},
		{nd("0.001"), nd("0.001"), TrendWeakBearish},
		{decimal.NullDecimal{}, nd("0.001"), TrendUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, cls.Trend(tt.macd, tt.signal), "macd=%v signal=%v", tt.macd, tt.signal)
	}
}

func TestRSICondition(t *testing.T) {
	cls := defaultClassifier{}
	buy, sell := decimal.NewFromInt(30), decimal.NewFromInt(70)

	tests := []struct {
		rsi      decimal.NullDecimal
		expected RSICondition
	}{
		{nd("22"), RSIExtremelyOversold},
		{nd("25"), RSIExtremelyOversold},
		{nd("25.1"), RSIOversold},
		{nd("30"), RSIOversold},
		{nd("35"), RSIApproachingOversold},
		{nd("40"), RSINeutral},
		{nd("60"), RSINeutral},
		{nd("65"), RSIApproachingOverbought},
		{nd("70"), RSIOverbought},
		{nd("74.9"), RSIOverbought},
		{nd("75"), RSIExtremelyOverbought},
		{decimal.NullDecimal{}, RSIUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, cls.RSICondition(tt.rsi, buy, sell), "rsi=%v", tt.rsi)
	}
}

func TestRSICondition_OversoldCheckedFirst(t *testing.T) {
	// overlapping thresholds resolve to the oversold side
	got := defaultClassifier{}.RSICondition(nd("50"), decimal.NewFromInt(55), decimal.NewFromInt(45))
	assert.Equal(t, RSIOversold, got)
}
