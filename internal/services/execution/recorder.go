// Package execution records actionable signals as paper trades in the ledger.
package execution

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vadiminshakov/momentum/internal/domain"
)

// ErrNotActionable is returned for labels that do not describe a trade.
var ErrNotActionable = errors.New("signal is not actionable")

type ledgerWriter interface {
	Append(entry domain.LedgerEntry) error
}

// Recorder turns actionable signals into ledger entries.
type Recorder struct {
	l      *zap.Logger
	ledger ledgerWriter
	now    func() time.Time
}

// NewRecorder creates a recorder appending to ledger.
func NewRecorder(l *zap.Logger, ledger ledgerWriter) *Recorder {
	return &Recorder{l: l, ledger: ledger, now: time.Now}
}

// Record appends one trade for signal at the observation price.
// Quantity is the flat trade size; the position size in USDT is not applied.
// Nothing is returned as recorded unless the ledger write succeeded.
func (r *Recorder) Record(ctx context.Context, signal domain.Signal, obs *domain.PriceObservation, th domain.ThresholdConfig) (domain.LedgerEntry, error) {
	if !signal.IsActionable() {
		return domain.LedgerEntry{}, errors.Wrapf(ErrNotActionable, "record %s", signal)
	}
	if obs == nil {
		return domain.LedgerEntry{}, errors.New("record: observation is required")
	}
	if err := ctx.Err(); err != nil {
		return domain.LedgerEntry{}, err
	}

	size := decimal.NewFromFloat(th.TradeSize)
	ts := obs.Time
	if ts.IsZero() {
		ts = r.now()
	}

	entry := domain.LedgerEntry{
		ID:        uuid.NewString(),
		Time:      ts.UTC(),
		Side:      signal.Side(),
		Signal:    signal,
		Price:     obs.Price,
		Quantity:  size,
		TradeSize: size,
	}

	if err := r.ledger.Append(entry); err != nil {
		return domain.LedgerEntry{}, errors.Wrap(err, "append ledger entry")
	}

	r.l.Info("Trade recorded",
		zap.String("type", signal.TradeType()),
		zap.String("side", string(entry.Side)),
		zap.String("quantity", entry.Quantity.String()),
		zap.String("price", entry.Price.StringFixed(2)),
		zap.String("value", entry.Value().StringFixed(2)),
	)

	return entry, nil
}
