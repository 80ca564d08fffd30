// Package history persists enriched price observations in SQLite.
package history

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/vadiminshakov/momentum/internal/domain"
)

const DefaultPath = "./data/market_data.db"

// SQLiteStore is an append-only table of observations for one pair.
type SQLiteStore struct {
	db   *sql.DB
	pair string
}

// NewSQLiteStore opens (or creates) the database at path.
func NewSQLiteStore(path string, pair domain.Pair) (*SQLiteStore, error) {
	if path == "" {
		path = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "create history dir")
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, errors.Wrap(err, "sqlite open")
	}

	// single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := createSchema(db); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "sqlite schema")
	}

	return &SQLiteStore{db: db, pair: pair.String()}, nil
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS market_data (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			pair        TEXT    NOT NULL,
			ts          INTEGER NOT NULL,
			price       TEXT    NOT NULL,
			volume      TEXT    NOT NULL,
			rsi         TEXT,
			macd        TEXT,
			macd_signal TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_market_data_pair ON market_data (pair, id);
	`)
	return err
}

// Append stores one observation.
func (s *SQLiteStore) Append(ctx context.Context, obs domain.PriceObservation) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO market_data (pair, ts, price, volume, rsi, macd, macd_signal)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, s.pair, obs.Time.UnixNano(), obs.Price, obs.Volume, obs.RSI, obs.MACD, obs.MACDSignal)
	if err != nil {
		return errors.Wrap(err, "insert market data")
	}
	return nil
}

// Recent returns the last n observations, oldest first.
func (s *SQLiteStore) Recent(ctx context.Context, n int) ([]domain.PriceObservation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ts, price, volume, rsi, macd, macd_signal FROM (
			SELECT id, ts, price, volume, rsi, macd, macd_signal
			FROM market_data
			WHERE pair = ?
			ORDER BY id DESC
			LIMIT ?
		) ORDER BY id ASC
	`, s.pair, n)
	if err != nil {
		return nil, errors.Wrap(err, "query market data")
	}
	defer rows.Close()

	out := make([]domain.PriceObservation, 0, n)
	for rows.Next() {
		var (
			obs domain.PriceObservation
			ts  int64
		)
		if err := rows.Scan(&ts, &obs.Price, &obs.Volume, &obs.RSI, &obs.MACD, &obs.MACDSignal); err != nil {
			return nil, errors.Wrap(err, "scan market data")
		}
		obs.Time = time.Unix(0, ts).UTC()
		out = append(out, obs)
	}

	return out, errors.Wrap(rows.Err(), "iterate market data")
}

// Count returns the number of stored observations.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM market_data WHERE pair = ?`, s.pair).Scan(&n)
	if err != nil {
		return 0, errors.Wrap(err, "count market data")
	}
	return n, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
