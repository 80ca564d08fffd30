package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is one recorded paper trade. Entries are append-only.
type LedgerEntry struct {
	ID        string          `json:"id"`
	Time      time.Time       `json:"datetime"`
	Side      Side            `json:"side"`
	Signal    Signal          `json:"signal"`
	Price     decimal.Decimal `json:"price"`
	Quantity  decimal.Decimal `json:"quantity"`
	TradeSize decimal.Decimal `json:"trade_size"`
}

// Value returns quantity multiplied by price.
func (e *LedgerEntry) Value() decimal.Decimal {
	return e.Quantity.Mul(e.Price)
}

// String returns a human-readable string representation.
func (e *LedgerEntry) String() string {
	return fmt.Sprintf("%s %s %s at %s", e.Signal.TradeType(), e.Side, e.Quantity.String(), e.Price.StringFixed(2))
}

// LedgerRecord is a ledger entry paired with its storage index.
type LedgerRecord struct {
	Index uint64
	Entry LedgerEntry
}
