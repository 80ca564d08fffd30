package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadiminshakov/momentum/internal/domain"
)

func newEntry(side domain.Side, signal domain.Signal, price int64) domain.LedgerEntry {
	return domain.LedgerEntry{
		ID:        uuid.NewString(),
		Time:      time.Unix(1_700_000_000+price, 0).UTC(),
		Side:      side,
		Signal:    signal,
		Price:     decimal.NewFromInt(price),
		Quantity:  decimal.RequireFromString("0.01"),
		TradeSize: decimal.RequireFromString("0.01"),
	}
}

func TestWALStore_AppendAndReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := NewWALStore(dir)
	require.NoError(t, err)

	_, ok := store.Latest()
	assert.False(t, ok)

	entries := []domain.LedgerEntry{
		newEntry(domain.SideBuy, domain.SignalBuy, 100),
		newEntry(domain.SideSell, domain.SignalSellTakeProfit, 103),
		newEntry(domain.SideSell, domain.SignalSell, 101),
	}
	for _, e := range entries {
		require.NoError(t, store.Append(e))
	}

	latest, ok := store.Latest()
	require.True(t, ok)
	assert.Equal(t, entries[2].ID, latest.ID)
	require.NoError(t, store.Close())

	reopened, err := NewWALStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got := reopened.All()
	require.Len(t, got, 3)
	for i := range entries {
		assert.Equal(t, entries[i].ID, got[i].ID)
		assert.Equal(t, entries[i].Side, got[i].Side)
		assert.True(t, entries[i].Price.Equal(got[i].Price))
	}

	assert.Equal(t, domain.PositionShort, domain.CurrentPosition(got).Kind)
}

func TestWALStore_EntriesAfter(t *testing.T) {
	store, err := NewWALStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	for i := int64(0); i < 4; i++ {
		require.NoError(t, store.Append(newEntry(domain.SideBuy, domain.SignalBuy, 100+i)))
	}

	all, err := store.EntriesAfter(0)
	require.NoError(t, err)
	require.Len(t, all, 4)

	rest, err := store.EntriesAfter(all[1].Index)
	require.NoError(t, err)
	require.Len(t, rest, 2)
	assert.Equal(t, all[2].Entry.ID, rest[0].Entry.ID)

	none, err := store.EntriesAfter(all[3].Index)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestWALStore_RejectsAfterClose(t *testing.T) {
	store, err := NewWALStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Close())

	err = store.Append(newEntry(domain.SideBuy, domain.SignalBuy, 100))
	assert.ErrorIs(t, err, ErrStoreClosed)
	assert.Empty(t, store.All())
}

func TestWALStore_RequiresID(t *testing.T) {
	store, err := NewWALStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	e := newEntry(domain.SideBuy, domain.SignalBuy, 100)
	e.ID = ""
	assert.Error(t, store.Append(e))
	assert.Equal(t, 0, store.Len())
}
