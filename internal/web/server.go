// Package web serves the authenticated JSON API used by the dashboard:
// status, trades, parameters, market data and a live trade stream.
package web

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vadiminshakov/momentum/internal/domain"
)

const (
	tradePollInterval = 2 * time.Second
	heartbeatInterval = 30 * time.Second
	shutdownTimeout   = 5 * time.Second

	recentTradesLimit = 20
	marketDataLimit   = 100
)

type thresholdsStore interface {
	Load() (domain.ThresholdConfig, []string)
	Save(cfg domain.ThresholdConfig) error
	Validate(cfg domain.ThresholdConfig) []string
}

type ledgerReader interface {
	All() []domain.LedgerEntry
	EntriesAfter(index uint64) ([]domain.LedgerRecord, error)
}

type historyReader interface {
	Recent(ctx context.Context, n int) ([]domain.PriceObservation, error)
	Count(ctx context.Context) (int, error)
}

type authenticator interface {
	Authenticate(username, password string) error
}

type sessionStore interface {
	Create(username string) string
	Validate(token string) (string, error)
	Revoke(token string)
}

// Deps are the stores the API reads from.
type Deps struct {
	Thresholds thresholdsStore
	Ledger     ledgerReader
	History    historyReader
	Users      authenticator
	Sessions   sessionStore
	Gatherer   prometheus.Gatherer
	// Stop is called once by POST /end.
	Stop func()
}

// Option configures Server.
type Option func(*Server)

// WithCacheSize sets how many observations count as cached in /status.
func WithCacheSize(n int) Option {
	return func(s *Server) {
		s.cacheSize = n
	}
}

// WithPollInterval sets how often the trade stream checks the ledger.
func WithPollInterval(d time.Duration) Option {
	return func(s *Server) {
		s.pollInterval = d
	}
}

// Server exposes the HTTP API.
type Server struct {
	addr         string
	deps         Deps
	l            *zap.Logger
	echo         *echo.Echo
	cacheSize    int
	pollInterval time.Duration
	stopping     atomic.Bool
}

// NewServer creates a new web server instance.
func NewServer(l *zap.Logger, addr string, deps Deps, opts ...Option) *Server {
	s := &Server{
		addr:         addr,
		deps:         deps,
		l:            l,
		cacheSize:    100,
		pollInterval: tradePollInterval,
	}
	for _, opt := range opts {
		opt(s)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			l.Debug("http request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status))
			return nil
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	s.echo = e
	s.routes()

	return s
}

func (s *Server) routes() {
	s.echo.GET("/", s.handleIndex)
	s.echo.POST("/login", s.handleLogin)
	if s.deps.Gatherer != nil {
		s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{})))
	}

	api := s.echo.Group("", s.requireAuth)
	api.POST("/logout", s.handleLogout)
	api.GET("/status", s.handleStatus)
	api.GET("/trades", s.handleTrades)
	api.GET("/trades/stream", s.handleTradeStream)
	api.GET("/parameters", s.handleParameters)
	api.GET("/market-data", s.handleMarketData)
	api.POST("/save-config", s.handleSaveConfig)
	api.POST("/end", s.handleEnd)
}

// Handler returns the HTTP handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = s.echo.Shutdown(shutdownCtx)
	}()

	s.l.Info("Web API listening", zap.String("addr", s.addr))
	if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "web server")
	}

	return nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleIndex(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Momentum signal bot API",
		"login":   "POST /login with username and password",
	})
}
