// Package ledger persists recorded trades in an append-only WAL.
package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"

	"github.com/vadiminshakov/momentum/internal/domain"
)

const (
	DefaultDir     = "./wal/ledger"
	segmentLimit   = 1000
	maxSegments    = 100000
	dirPermissions = 0o755

	entryKeyPrefix = "trade_"
)

// ErrStoreClosed is returned after Close.
var ErrStoreClosed = errors.New("ledger store is closed")

// WALStore is a durable, insertion-ordered trade ledger.
// The in-memory view mirrors the WAL and is only updated after a successful write.
type WALStore struct {
	mu      sync.RWMutex
	wal     *gowal.Wal
	records []domain.LedgerRecord
}

// NewWALStore opens the ledger under dir and replays existing entries.
func NewWALStore(dir string) (*WALStore, error) {
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return nil, errors.Wrapf(err, "failed to ensure ledger directory %s", dir)
	}

	wal, err := gowal.NewWAL(gowal.Config{
		Dir:              dir,
		Prefix:           "ledger_",
		SegmentThreshold: segmentLimit,
		MaxSegments:      maxSegments,
		IsInSyncDiskMode: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "init ledger WAL")
	}

	store := &WALStore{wal: wal}
	for idx := uint64(1); idx <= wal.CurrentIndex(); idx++ {
		key, payload, err := wal.Get(idx)
		if err != nil || !strings.HasPrefix(key, entryKeyPrefix) {
			continue
		}
		var entry domain.LedgerEntry
		if err := json.Unmarshal(payload, &entry); err != nil {
			_ = wal.Close()
			return nil, errors.Wrapf(err, "decode ledger entry %s", key)
		}
		store.records = append(store.records, domain.LedgerRecord{Index: idx, Entry: entry})
	}

	return store, nil
}

// Append durably writes entry and then adds it to the in-memory view.
func (s *WALStore) Append(entry domain.LedgerEntry) error {
	if entry.ID == "" {
		return fmt.Errorf("ledger entry id is required")
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return errors.Wrap(err, "marshal ledger entry")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.wal == nil {
		return ErrStoreClosed
	}

	nextIndex := s.wal.CurrentIndex() + 1
	if err := s.wal.Write(nextIndex, entryKeyPrefix+entry.ID, payload); err != nil {
		return errors.Wrap(err, "write ledger entry")
	}
	s.records = append(s.records, domain.LedgerRecord{Index: nextIndex, Entry: entry})

	return nil
}

// All returns every entry in insertion order.
func (s *WALStore) All() []domain.LedgerEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.LedgerEntry, len(s.records))
	for i, r := range s.records {
		out[i] = r.Entry
	}
	return out
}

// Latest returns the most recent entry.
func (s *WALStore) Latest() (domain.LedgerEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.records) == 0 {
		return domain.LedgerEntry{}, false
	}
	return s.records[len(s.records)-1].Entry, true
}

// Len returns the number of entries.
func (s *WALStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}

// EntriesAfter returns all entries written after the provided WAL index.
func (s *WALStore) EntriesAfter(index uint64) ([]domain.LedgerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.wal == nil {
		return nil, ErrStoreClosed
	}

	// records are sorted by index
	start := len(s.records)
	for i, r := range s.records {
		if r.Index > index {
			start = i
			break
		}
	}

	out := make([]domain.LedgerRecord, len(s.records)-start)
	copy(out, s.records[start:])
	return out, nil
}

// Close closes the underlying WAL.
func (s *WALStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.wal == nil {
		return ErrStoreClosed
	}
	err := s.wal.Close()
	s.wal = nil

	return err
}
