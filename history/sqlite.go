package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/shine15/iridium/calendar"
	"github.com/shine15/iridium/market"
)

// SQLite stores one table per instrument/frequency series, named like
// EUR_USD_M1, mirroring the layout of the ingest commands.
type SQLite struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrDataSourceUnavailable, path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: open %s: %v", ErrDataSourceUnavailable, path, err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

func tableName(instrument string, freq calendar.DataFrequency) string {
	return instrument + "_" + freq.String()
}

func (s *SQLite) WriteBars(ctx context.Context, instrument string, freq calendar.DataFrequency, bars []market.Bar) error {
	table := tableName(instrument, freq)

	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %q (
			time INTEGER PRIMARY KEY,
			open REAL NOT NULL,
			close REAL NOT NULL,
			high REAL NOT NULL,
			low REAL NOT NULL,
			volume INTEGER NOT NULL
		)`, table))
	if err != nil {
		return fmt.Errorf("create %s: %w", table, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		`INSERT OR REPLACE INTO %q (time, open, close, high, low, volume) VALUES (?, ?, ?, ?, ?, ?)`, table))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, b := range bars {
		if _, err := stmt.ExecContext(ctx, b.Time, b.Open, b.Close, b.High, b.Low, b.Volume); err != nil {
			return fmt.Errorf("insert %s: %w", table, err)
		}
	}
	return tx.Commit()
}

func (s *SQLite) Instruments(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name LIKE '%\_M1' ESCAPE '\' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataSourceUnavailable, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var table string
		if err := rows.Scan(&table); err != nil {
			return nil, err
		}
		names = append(names, strings.TrimSuffix(table, "_M1"))
	}
	return names, rows.Err()
}

func (s *SQLite) ReadRange(ctx context.Context, instrument string, freq calendar.DataFrequency, start, end time.Time) ([]market.Bar, error) {
	return s.queryBars(ctx, instrument, freq, fmt.Sprintf(
		`SELECT time, open, close, high, low, volume FROM %q
		 WHERE time >= ? AND time <= ? ORDER BY time ASC`,
		tableName(instrument, freq)), start.Unix(), end.Unix())
}

func (s *SQLite) ReadAt(ctx context.Context, instrument string, freq calendar.DataFrequency, at time.Time) (market.Bar, bool, error) {
	bars, err := s.queryBars(ctx, instrument, freq, fmt.Sprintf(
		`SELECT time, open, close, high, low, volume FROM %q WHERE time = ?`,
		tableName(instrument, freq)), at.Unix())
	if err != nil {
		return market.Bar{}, false, err
	}
	if len(bars) == 0 {
		return market.Bar{}, false, nil
	}
	return bars[0], true, nil
}

func (s *SQLite) ReadBefore(ctx context.Context, instrument string, freq calendar.DataFrequency, before time.Time, count int) ([]market.Bar, error) {
	bars, err := s.queryBars(ctx, instrument, freq, fmt.Sprintf(
		`SELECT time, open, close, high, low, volume FROM %q
		 WHERE time < ? ORDER BY time DESC LIMIT ?`,
		tableName(instrument, freq)), before.Unix(), count)
	if err != nil {
		return nil, err
	}
	// Flip the DESC page back to ascending.
	for i, j := 0, len(bars)-1; i < j; i, j = i+1, j-1 {
		bars[i], bars[j] = bars[j], bars[i]
	}
	return bars, nil
}

func (s *SQLite) queryBars(ctx context.Context, instrument string, freq calendar.DataFrequency, query string, args ...any) ([]market.Bar, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrDataSourceUnavailable, instrument, freq, err)
	}
	defer rows.Close()

	var bars []market.Bar
	for rows.Next() {
		var b market.Bar
		if err := rows.Scan(&b.Time, &b.Open, &b.Close, &b.High, &b.Low, &b.Volume); err != nil {
			return nil, err
		}
		bars = append(bars, b)
	}
	return bars, rows.Err()
}
