package web

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vadiminshakov/momentum/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	})
	return v
}

type latestData struct {
	Price      decimal.Decimal     `json:"price"`
	Datetime   string              `json:"datetime"`
	RSI        decimal.NullDecimal `json:"rsi"`
	MACD       decimal.NullDecimal `json:"macd"`
	SignalLine decimal.NullDecimal `json:"signal_line"`
}

type indicatorStatus struct {
	Available   bool                    `json:"available"`
	Periods     domain.IndicatorPeriods `json:"periods"`
	MinRequired int                     `json:"min_required"`
}

type positionStatus struct {
	CurrentPosition      domain.PositionKind `json:"current_position"`
	LastTradePrice       decimal.NullDecimal `json:"last_trade_price"`
	UnrealizedPnLPercent decimal.NullDecimal `json:"unrealized_pnl_percent"`
}

type dataStats struct {
	TotalRecords  int `json:"total_records"`
	CachedRecords int `json:"cached_records"`
}

type configurationStatus struct {
	IndicatorWindow int  `json:"indicator_window"`
	LoopInterval    int  `json:"loop_interval"`
	Active          bool `json:"active"`
}

type statusResponse struct {
	Status        string              `json:"status"`
	Message       string              `json:"message,omitempty"`
	LatestData    *latestData         `json:"latest_data,omitempty"`
	Indicators    *indicatorStatus    `json:"indicators,omitempty"`
	Position      *positionStatus     `json:"position,omitempty"`
	DataStats     *dataStats          `json:"data_stats,omitempty"`
	Configuration configurationStatus `json:"configuration"`
}

func (s *Server) runState() string {
	if s.stopping.Load() {
		return "stopped"
	}
	return "running"
}

func (s *Server) handleStatus(c echo.Context) error {
	ctx := c.Request().Context()
	th, _ := s.deps.Thresholds.Load()

	resp := statusResponse{
		Status: s.runState(),
		Configuration: configurationStatus{
			IndicatorWindow: th.IndicatorWindow,
			LoopInterval:    th.LoopInterval,
			Active:          th.Active,
		},
	}

	cached, err := s.deps.History.Recent(ctx, s.cacheSize)
	if err != nil {
		s.l.Error("status: read history", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "Error reading data"})
	}
	if len(cached) == 0 {
		resp.Message = "No data yet"
		return c.JSON(http.StatusOK, resp)
	}

	total, err := s.deps.History.Count(ctx)
	if err != nil {
		s.l.Error("status: count history", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "Error reading data"})
	}

	latest := cached[len(cached)-1]
	periods := th.Periods()
	position := domain.CurrentPosition(s.deps.Ledger.All())

	pos := &positionStatus{CurrentPosition: position.Kind}
	if position.IsOpen() {
		pos.LastTradePrice = position.ReferencePrice
		if pnl, ok := position.UnrealizedPnLPercent(latest.Price); ok {
			pos.UnrealizedPnLPercent = decimal.NewNullDecimal(pnl.Round(4))
		}
	}

	resp.LatestData = &latestData{
		Price:      latest.Price,
		Datetime:   latest.Time.Format("2006-01-02 15:04:05"),
		RSI:        latest.RSI,
		MACD:       latest.MACD,
		SignalLine: latest.MACDSignal,
	}
	resp.Indicators = &indicatorStatus{
		Available:   latest.RSI.Valid,
		Periods:     periods,
		MinRequired: periods.MinRequired(),
	}
	resp.Position = pos
	resp.DataStats = &dataStats{TotalRecords: total, CachedRecords: len(cached)}

	return c.JSON(http.StatusOK, resp)
}

type tradeView struct {
	Datetime      string          `json:"datetime"`
	Side          domain.Side     `json:"side"`
	Signal        domain.Signal   `json:"signal"`
	Price         decimal.Decimal `json:"price"`
	Quantity      decimal.Decimal `json:"quantity"`
	TradeSize     decimal.Decimal `json:"trade_size"`
	PositionValue decimal.Decimal `json:"position_value"`
}

type tradesSummary struct {
	TotalTrades   int `json:"total_trades"`
	BuyTrades     int `json:"buy_trades"`
	SellTrades    int `json:"sell_trades"`
	ShowingRecent int `json:"showing_recent"`
}

type tradesResponse struct {
	Trades  []tradeView   `json:"trades"`
	Summary tradesSummary `json:"summary"`
}

func newTradeView(e domain.LedgerEntry) tradeView {
	return tradeView{
		Datetime:      e.Time.Format("2006-01-02 15:04:05"),
		Side:          e.Side,
		Signal:        e.Signal,
		Price:         e.Price,
		Quantity:      e.Quantity,
		TradeSize:     e.TradeSize,
		PositionValue: e.Value(),
	}
}

func (s *Server) handleTrades(c echo.Context) error {
	all := s.deps.Ledger.All()

	recent := all
	if len(recent) > recentTradesLimit {
		recent = recent[len(recent)-recentTradesLimit:]
	}

	resp := tradesResponse{
		Trades:  make([]tradeView, 0, len(recent)),
		Summary: tradesSummary{TotalTrades: len(all), ShowingRecent: len(recent)},
	}
	for _, e := range recent {
		resp.Trades = append(resp.Trades, newTradeView(e))
	}
	for _, e := range all {
		switch e.Side {
		case domain.SideBuy:
			resp.Summary.BuyTrades++
		case domain.SideSell:
			resp.Summary.SellTrades++
		}
	}

	return c.JSON(http.StatusOK, resp)
}

type parametersResponse struct {
	CurrentParameters domain.ThresholdConfig  `json:"current_parameters"`
	DerivedPeriods    domain.IndicatorPeriods `json:"derived_periods"`
	Warnings          []string                `json:"warnings,omitempty"`
}

func (s *Server) handleParameters(c echo.Context) error {
	th, warnings := s.deps.Thresholds.Load()
	return c.JSON(http.StatusOK, parametersResponse{
		CurrentParameters: th,
		DerivedPeriods:    th.Periods(),
		Warnings:          warnings,
	})
}

type marketDataResponse struct {
	Data           []domain.PriceObservation `json:"data"`
	Count          int                       `json:"count"`
	TotalAvailable int                       `json:"total_available"`
}

func (s *Server) handleMarketData(c echo.Context) error {
	ctx := c.Request().Context()

	data, err := s.deps.History.Recent(ctx, marketDataLimit)
	if err != nil {
		s.l.Error("market data: read history", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "Error getting market data"})
	}
	total, err := s.deps.History.Count(ctx)
	if err != nil {
		s.l.Error("market data: count history", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "Error getting market data"})
	}
	if data == nil {
		data = []domain.PriceObservation{}
	}

	return c.JSON(http.StatusOK, marketDataResponse{Data: data, Count: len(data), TotalAvailable: total})
}

// saveConfigRequest requires every threshold to be present.
type saveConfigRequest struct {
	TradeSize        *float64 `json:"trade_size" validate:"required"`
	StopLoss         *float64 `json:"stop_loss" validate:"required"`
	StopProfit       *float64 `json:"stop_profit" validate:"required"`
	RSIBuy           *float64 `json:"rsi_buy_threshold" validate:"required"`
	RSISell          *float64 `json:"rsi_sell_threshold" validate:"required"`
	MACDBuy          *float64 `json:"macd_buy_threshold" validate:"required"`
	MACDSell         *float64 `json:"macd_sell_threshold" validate:"required"`
	PositionSizeUSDT *float64 `json:"position_size_usdt" validate:"required"`
	Active           *bool    `json:"active" validate:"required"`
	LoopInterval     *int     `json:"loop_interval" validate:"required"`
	IndicatorWindow  *int     `json:"indicator_window" validate:"required"`
}

func (r *saveConfigRequest) thresholds() domain.ThresholdConfig {
	return domain.ThresholdConfig{
		TradeSize:        *r.TradeSize,
		StopLoss:         *r.StopLoss,
		StopProfit:       *r.StopProfit,
		RSIBuy:           *r.RSIBuy,
		RSISell:          *r.RSISell,
		MACDBuy:          *r.MACDBuy,
		MACDSell:         *r.MACDSell,
		PositionSizeUSDT: *r.PositionSizeUSDT,
		Active:           *r.Active,
		LoopInterval:     *r.LoopInterval,
		IndicatorWindow:  *r.IndicatorWindow,
	}
}

func (s *Server) handleSaveConfig(c echo.Context) error {
	var req saveConfigRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "No configuration data provided"})
	}

	if err := validate.Struct(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "Missing required field: " + verrs[0].Field()})
		}
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	cfg := req.thresholds()
	if err := s.deps.Thresholds.Save(cfg); err != nil {
		s.l.Error("save thresholds", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "Failed to save configuration"})
	}

	warnings := s.deps.Thresholds.Validate(cfg)
	s.l.Info("Configuration saved", zap.Strings("warnings", warnings))

	return c.JSON(http.StatusOK, map[string]any{
		"message":  "Configuration saved successfully",
		"warnings": warnings,
	})
}

func (s *Server) handleEnd(c echo.Context) error {
	if !s.stopping.CompareAndSwap(false, true) {
		return c.JSON(http.StatusOK, map[string]string{"message": "Shutdown already in progress", "status": "stopping"})
	}

	s.l.Info("Shutdown initiated from web interface", zap.Any("username", c.Get(ctxUsername)))
	if err := c.JSON(http.StatusOK, map[string]string{
		"message": "Trading bot shutdown initiated",
		"status":  "stopping",
	}); err != nil {
		return err
	}

	if s.deps.Stop != nil {
		s.deps.Stop()
	}

	return nil
}
