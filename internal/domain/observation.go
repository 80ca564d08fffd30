package domain

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Tick is a raw market reading returned by a feed.
type Tick struct {
	Time   time.Time
	Price  decimal.Decimal
	Volume decimal.Decimal
}

// PriceObservation is a tick enriched with indicator values.
// Indicator values are absent until enough history has accumulated.
type PriceObservation struct {
	Time       time.Time           `json:"datetime"`
	Price      decimal.Decimal     `json:"price"`
	Volume     decimal.Decimal     `json:"volume"`
	RSI        decimal.NullDecimal `json:"rsi"`
	MACD       decimal.NullDecimal `json:"macd"`
	MACDSignal decimal.NullDecimal `json:"macd_signal"`
}

// HasIndicators reports whether RSI, MACD and MACD signal are all present.
func (o *PriceObservation) HasIndicators() bool {
	return o.RSI.Valid && o.MACD.Valid && o.MACDSignal.Valid
}

// Momentum returns MACD minus MACD signal; ok is false when either is absent.
func (o *PriceObservation) Momentum() (decimal.Decimal, bool) {
	if !o.MACD.Valid || !o.MACDSignal.Valid {
		return decimal.Zero, false
	}
	return o.MACD.Decimal.Sub(o.MACDSignal.Decimal), true
}

// History is a bounded FIFO of observations ordered oldest first.
type History struct {
	mu       sync.RWMutex
	items    []PriceObservation
	capacity int
}

// NewHistory creates a history holding at most capacity observations.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = 1
	}
	return &History{
		items:    make([]PriceObservation, 0, capacity),
		capacity: capacity,
	}
}

// Push appends an observation, evicting the oldest when full.
func (h *History) Push(obs PriceObservation) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.items) == h.capacity {
		copy(h.items, h.items[1:])
		h.items = h.items[:len(h.items)-1]
	}
	h.items = append(h.items, obs)
}

// Snapshot returns a copy of the stored observations, oldest first.
func (h *History) Snapshot() []PriceObservation {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]PriceObservation, len(h.items))
	copy(out, h.items)
	return out
}

// Len returns the number of stored observations.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.items)
}

// Capacity returns the maximum number of stored observations.
func (h *History) Capacity() int {
	return h.capacity
}
