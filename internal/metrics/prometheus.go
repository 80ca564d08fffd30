// Package metrics exposes bot activity as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder records loop, signal and trade metrics.
type Recorder struct {
	cycles    prometheus.Counter
	signals   *prometheus.CounterVec
	trades    *prometheus.CounterVec
	errors    *prometheus.CounterVec
	lastPrice *prometheus.GaugeVec
	latency   *prometheus.HistogramVec
}

// New registers the metrics with reg.
func New(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		cycles: factory.NewCounter(prometheus.CounterOpts{
			Name: "momentum_loop_cycles_total",
			Help: "Total number of trading loop cycles",
		}),
		signals: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "momentum_signals_total",
				Help: "Evaluated signals by label",
			},
			[]string{"signal"},
		),
		trades: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "momentum_trades_total",
				Help: "Recorded trades by side",
			},
			[]string{"side"},
		),
		errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "momentum_errors_total",
				Help: "Errors by kind",
			},
			[]string{"kind"},
		),
		lastPrice: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "momentum_last_price",
				Help: "Last observed price",
			},
			[]string{"pair"},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "momentum_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordCycle counts one loop cycle.
func (r *Recorder) RecordCycle() {
	r.cycles.Inc()
}

// RecordSignal counts an evaluated signal.
func (r *Recorder) RecordSignal(signal string) {
	r.signals.WithLabelValues(signal).Inc()
}

// RecordTrade counts a recorded trade.
func (r *Recorder) RecordTrade(side string) {
	r.trades.WithLabelValues(side).Inc()
}

// RecordError counts an error of the given kind.
func (r *Recorder) RecordError(kind string) {
	r.errors.WithLabelValues(kind).Inc()
}

// RecordLastPrice sets the last observed price.
func (r *Recorder) RecordLastPrice(pair string, price float64) {
	r.lastPrice.WithLabelValues(pair).Set(price)
}

// RecordLatency records how long op took since start.
func (r *Recorder) RecordLatency(op string, start time.Time) {
	r.latency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
