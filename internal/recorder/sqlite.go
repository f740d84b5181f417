package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"PriceSniper/internal/logger"
	"PriceSniper/internal/model"
)

// SQLiteRecorder caches readings in a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets the HTTP handlers read while the snapshot job writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.L.Infof("sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS gauge_readings (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			product_id  INTEGER NOT NULL,
			name        TEXT,
			price       TEXT NOT NULL,
			score       REAL,
			degenerate  INTEGER NOT NULL,
			verdict     TEXT,
			band_min    TEXT,
			band_max    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_readings_product_ts ON gauge_readings(product_id, timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordReading(rd *model.Reading) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO gauge_readings
		(timestamp, product_id, name, price, score, degenerate, verdict, band_min, band_max)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		rd.RecordedAt.UnixMilli(), rd.ProductID, rd.Name, rd.Price.String(),
		rd.Score, rd.Degenerate, string(rd.Verdict),
		nullString(rd.Min), nullString(rd.Max),
	)
	return err
}

// RecentReadings returns up to limit readings for a product, newest first.
func (r *SQLiteRecorder) RecentReadings(productID int64, limit int) ([]model.Reading, error) {
	rows, err := r.db.Query(`SELECT timestamp, name, price, score, degenerate, verdict, band_min, band_max
		FROM gauge_readings WHERE product_id = ?
		ORDER BY timestamp DESC, id DESC LIMIT ?`, productID, limit)
	if err != nil {
		return nil, fmt.Errorf("query readings: %w", err)
	}
	defer rows.Close()

	out := []model.Reading{}
	for rows.Next() {
		var (
			ts               int64
			name, price      string
			verdict          string
			score            float64
			degenerate       bool
			bandMin, bandMax sql.NullString
		)
		if err := rows.Scan(&ts, &name, &price, &score, &degenerate, &verdict, &bandMin, &bandMax); err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		p, err := decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("parse price %q: %w", price, err)
		}
		rd := model.Reading{
			ProductID:  productID,
			Name:       name,
			Price:      p,
			Score:      score,
			Degenerate: degenerate,
			Verdict:    model.Verdict(verdict),
			RecordedAt: time.UnixMilli(ts).UTC(),
		}
		if rd.Min, err = parseNull(bandMin); err != nil {
			return nil, err
		}
		if rd.Max, err = parseNull(bandMax); err != nil {
			return nil, err
		}
		out = append(out, rd)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	logger.L.Info("closing sqlite recorder")
	return r.db.Close()
}

func nullString(d decimal.NullDecimal) sql.NullString {
	if !d.Valid {
		return sql.NullString{}
	}
	return sql.NullString{String: d.Decimal.String(), Valid: true}
}

func parseNull(s sql.NullString) (decimal.NullDecimal, error) {
	if !s.Valid {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s.String)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("parse band bound %q: %w", s.String, err)
	}
	return decimal.NewNullDecimal(d), nil
}
