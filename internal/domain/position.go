package domain

import "github.com/shopspring/decimal"

// PositionKind is the net direction derived from the ledger.
type PositionKind string

const (
	PositionNone  PositionKind = "NONE"
	PositionLong  PositionKind = "LONG"
	PositionShort PositionKind = "SHORT"
)

// PositionState is the current net position and the price it is measured against.
type PositionState struct {
	Kind           PositionKind        `json:"position"`
	ReferencePrice decimal.NullDecimal `json:"reference_price"`
}

// IsOpen reports whether the position is long or short.
func (p PositionState) IsOpen() bool {
	return p.Kind != PositionNone
}

// CurrentPosition derives the position by counting BUY and SELL entries.
// More buys means LONG, more sells means SHORT, a tie means flat.
// The reference price is the price of the most recent entry.
func CurrentPosition(entries []LedgerEntry) PositionState {
	var buys, sells int
	for _, e := range entries {
		switch e.Side {
		case SideBuy:
			buys++
		case SideSell:
			sells++
		}
	}

	if buys == sells {
		return PositionState{Kind: PositionNone}
	}

	state := PositionState{
		Kind:           PositionShort,
		ReferencePrice: decimal.NewNullDecimal(entries[len(entries)-1].Price),
	}
	if buys > sells {
		state.Kind = PositionLong
	}

	return state
}

// UnrealizedPnLPercent returns the open position's profit in percent at price.
// ok is false when flat.
func (p PositionState) UnrealizedPnLPercent(price decimal.Decimal) (decimal.Decimal, bool) {
	if !p.IsOpen() || !p.ReferencePrice.Valid || p.ReferencePrice.Decimal.IsZero() {
		return decimal.Zero, false
	}

	ref := p.ReferencePrice.Decimal
	diff := price.Sub(ref)
	if p.Kind == PositionShort {
		diff = ref.Sub(price)
	}

	return diff.Div(ref).Mul(decimal.NewFromInt(100)), true
}
