// Package indicators computes RSI and MACD over the rolling price history.
// It uses the cinar/indicator library; all periods derive from one window.
package indicators

import (
	"fmt"
	"math"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/momentum"
	"github.com/cinar/indicator/v2/trend"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/momentum/internal/domain"
)

// Values are the latest indicator readings. Each one is absent until the
// history is long enough for the underlying indicator to emit a value.
type Values struct {
	RSI        decimal.NullDecimal
	MACD       decimal.NullDecimal
	MACDSignal decimal.NullDecimal
}

// Provider computes indicators from price history.
type Provider struct{}

// NewProvider creates an indicator provider.
func NewProvider() *Provider {
	return &Provider{}
}

// Compute returns the latest RSI, MACD and MACD signal for history, oldest first.
// Insufficient history yields absent values, not an error.
func (p *Provider) Compute(history []domain.PriceObservation, window int) (Values, error) {
	if window <= 0 {
		return Values{}, fmt.Errorf("indicator window must be positive, got %d", window)
	}

	closes := make([]float64, len(history))
	for i, obs := range history {
		if !obs.Price.IsPositive() {
			return Values{}, fmt.Errorf("non-positive price %s at %s", obs.Price, obs.Time)
		}
		closes[i] = obs.Price.InexactFloat64()
	}

	periods := domain.DeriveIndicatorPeriods(window)
	if len(history) < periods.MinRequired() {
		return Values{}, nil
	}

	var out Values
	out.RSI = last(calculateRSI(closes, periods.RSI))
	macd, signal := calculateMACD(closes, periods)
	out.MACD = last(macd)
	out.MACDSignal = last(signal)

	return out, nil
}

func calculateRSI(closes []float64, period int) []float64 {
	rsi := momentum.NewRsiWithPeriod[float64](period)
	return helper.ChanToSlice(rsi.Compute(helper.SliceToChan(closes)))
}

// calculateMACD drains both MACD outputs concurrently; reading one alone blocks.
func calculateMACD(closes []float64, periods domain.IndicatorPeriods) (macd, signal []float64) {
	indicator := trend.NewMacdWithPeriod[float64](periods.MACDFast, periods.MACDSlow, periods.MACDSignal)
	macdChan, signalChan := indicator.Compute(helper.SliceToChan(closes))

	done := make(chan struct{})
	go func() {
		defer close(done)
		signal = helper.ChanToSlice(signalChan)
	}()
	macd = helper.ChanToSlice(macdChan)
	<-done

	return macd, signal
}

func last(values []float64) decimal.NullDecimal {
	if len(values) == 0 {
		return decimal.NullDecimal{}
	}
	v := values[len(values)-1]
	// flat prices make RSI divide by zero
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.NewFromFloat(v))
}
