package domain

import "time"

// ThresholdConfig is the user-editable trading configuration.
// Hard limits live in the validate tags; violations are reported as warnings,
// never rejected.
type ThresholdConfig struct {
	TradeSize        float64 `yaml:"trade_size" json:"trade_size" validate:"gte=0.001,lte=1"`
	StopLoss         float64 `yaml:"stop_loss" json:"stop_loss" validate:"gte=0.005,lte=0.1"`
	StopProfit       float64 `yaml:"stop_profit" json:"stop_profit" validate:"gte=0.005,lte=0.15"`
	RSIBuy           float64 `yaml:"rsi_buy_threshold" json:"rsi_buy_threshold" validate:"gte=10,lte=40"`
	RSISell          float64 `yaml:"rsi_sell_threshold" json:"rsi_sell_threshold" validate:"gte=60,lte=90"`
	MACDBuy          float64 `yaml:"macd_buy_threshold" json:"macd_buy_threshold" validate:"gte=-0.01,lte=0.01"`
	MACDSell         float64 `yaml:"macd_sell_threshold" json:"macd_sell_threshold" validate:"gte=-0.01,lte=0.01"`
	PositionSizeUSDT float64 `yaml:"position_size_usdt" json:"position_size_usdt" validate:"gte=10,lte=10000"`
	Active           bool    `yaml:"active" json:"active"`
	LoopInterval     int     `yaml:"loop_interval" json:"loop_interval" validate:"gte=30,lte=300"`
	IndicatorWindow  int     `yaml:"indicator_window" json:"indicator_window" validate:"gte=10,lte=50"`
}

// DefaultThresholds returns the configuration used when no valid file exists.
func DefaultThresholds() ThresholdConfig {
	return ThresholdConfig{
		TradeSize:        0.01,
		StopLoss:         0.02,
		StopProfit:       0.025,
		RSIBuy:           30,
		RSISell:          70,
		MACDBuy:          0,
		MACDSell:         0,
		PositionSizeUSDT: 100,
		Active:           true,
		LoopInterval:     60,
		IndicatorWindow:  26,
	}
}

// Interval returns the loop interval as a duration.
func (c ThresholdConfig) Interval() time.Duration {
	return time.Duration(c.LoopInterval) * time.Second
}

// Periods returns indicator periods derived from the indicator window.
func (c ThresholdConfig) Periods() IndicatorPeriods {
	return DeriveIndicatorPeriods(c.IndicatorWindow)
}

// RecommendedRange is an advisory range for a threshold field.
type RecommendedRange struct {
	Field    string
	Min, Max float64
	value    func(ThresholdConfig) float64
}

// Value extracts the field value from cfg.
func (r RecommendedRange) Value(cfg ThresholdConfig) float64 {
	return r.value(cfg)
}

// RecommendedRanges lists advisory ranges checked only for values inside hard limits.
var RecommendedRanges = []RecommendedRange{
	{Field: "trade_size", Min: 0.01, Max: 0.1, value: func(c ThresholdConfig) float64 { return c.TradeSize }},
	{Field: "stop_loss", Min: 0.01, Max: 0.05, value: func(c ThresholdConfig) float64 { return c.StopLoss }},
	{Field: "stop_profit", Min: 0.015, Max: 0.05, value: func(c ThresholdConfig) float64 { return c.StopProfit }},
	{Field: "rsi_buy_threshold", Min: 25, Max: 35, value: func(c ThresholdConfig) float64 { return c.RSIBuy }},
	{Field: "rsi_sell_threshold", Min: 65, Max: 80, value: func(c ThresholdConfig) float64 { return c.RSISell }},
	{Field: "macd_buy_threshold", Min: -0.001, Max: 0.001, value: func(c ThresholdConfig) float64 { return c.MACDBuy }},
	{Field: "macd_sell_threshold", Min: -0.001, Max: 0.001, value: func(c ThresholdConfig) float64 { return c.MACDSell }},
	{Field: "position_size_usdt", Min: 50, Max: 500, value: func(c ThresholdConfig) float64 { return c.PositionSizeUSDT }},
	{Field: "loop_interval", Min: 60, Max: 120, value: func(c ThresholdConfig) float64 { return float64(c.LoopInterval) }},
	{Field: "indicator_window", Min: 20, Max: 30, value: func(c ThresholdConfig) float64 { return float64(c.IndicatorWindow) }},
}

// IndicatorPeriods are the RSI and MACD periods derived from one window.
type IndicatorPeriods struct {
	RSI        int `json:"rsi_window"`
	MACDFast   int `json:"macd_fast"`
	MACDSlow   int `json:"macd_slow"`
	MACDSignal int `json:"signal_window"`
}

// DeriveIndicatorPeriods scales the classic 14/12/26/9 periods to window.
func DeriveIndicatorPeriods(window int) IndicatorPeriods {
	return IndicatorPeriods{
		RSI:        max(10, int(float64(window)*0.54)),
		MACDFast:   max(8, int(float64(window)*0.46)),
		MACDSlow:   window,
		MACDSignal: max(6, int(float64(window)*0.35)),
	}
}

// MinRequired is the number of observations needed before indicators are computed.
func (p IndicatorPeriods) MinRequired() int {
	return max(p.RSI, p.MACDFast, p.MACDSlow, p.MACDSignal)
}
