// Package audit keeps a SQLite log of every serving correction the importer
// made, so rejected serving data can be reviewed after a build.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/korjavin/nutrinorm/internal/nutrition"
)

// FileName is the audit database inside a data directory.
const FileName = "corrections.db"

// Correction is one product whose reported serving was replaced.
type Correction struct {
	Barcode        string           `json:"barcode"`
	Name           string           `json:"name"`
	Reason         nutrition.Reason `json:"reason"`
	Detail         string           `json:"detail"`
	ReportedGrams  *float64         `json:"reported_grams"`
	ReportedKcal   *float64         `json:"reported_kcal"`
	CorrectedGrams float64          `json:"corrected_grams"`
	CorrectedKcal  *float64         `json:"corrected_kcal"`
	CreatedAt      time.Time        `json:"created_at"`
}

// NewCorrection builds the audit row for a corrected normalization result.
func NewCorrection(barcode string, raw nutrition.RawRecord, n nutrition.Normalized) Correction {
	c := Correction{
		Barcode:       barcode,
		Name:          raw.ProductName,
		Reason:        n.Check.Reason,
		Detail:        n.Check.Detail,
		ReportedKcal:  raw.PerServing.Calories,
		CorrectedKcal: n.PerServing.Calories,
		CreatedAt:     time.Now().UTC(),
	}
	if g, ok := nutrition.ParseServingGrams(raw.ServingSize); ok {
		c.ReportedGrams = &g
	} else if g, ok := nutrition.ParseServingQuantity(raw.ServingQuantity); ok {
		c.ReportedGrams = &g
	}
	if n.Serving.Grams != nil {
		c.CorrectedGrams = *n.Serving.Grams
	}
	return c
}

// Log is the correction store. Writes are buffered in a transaction until
// Flush; a Log is not safe for concurrent writers.
type Log struct {
	db      *sql.DB
	tx      *sql.Tx
	insert  *sql.Stmt
	pending int
}

// Open opens (creating if needed) the audit database at path.
func Open(path string) (*Log, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}
	l := &Log{db: db}
	if err := l.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init audit schema: %w", err)
	}
	return l, nil
}

func (l *Log) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS corrections (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        barcode TEXT NOT NULL,
        name TEXT NOT NULL,
        reason TEXT NOT NULL,
        detail TEXT NOT NULL,
        reported_grams REAL,
        reported_kcal REAL,
        corrected_grams REAL NOT NULL,
        corrected_kcal REAL,
        created_at TEXT NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_corrections_barcode ON corrections(barcode);
    CREATE INDEX IF NOT EXISTS idx_corrections_reason ON corrections(reason);
    `
	_, err := l.db.Exec(schema)
	return err
}

// Record buffers one correction. It is written on the next Flush.
func (l *Log) Record(c Correction) error {
	if l.tx == nil {
		tx, err := l.db.Begin()
		if err != nil {
			return fmt.Errorf("begin audit tx: %w", err)
		}
		stmt, err := tx.Prepare(`
        INSERT INTO corrections (barcode, name, reason, detail, reported_grams, reported_kcal,
            corrected_grams, corrected_kcal, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        `)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("prepare audit insert: %w", err)
		}
		l.tx, l.insert = tx, stmt
	}

	_, err := l.insert.Exec(
		c.Barcode, c.Name, string(c.Reason), c.Detail,
		nullFloat(c.ReportedGrams), nullFloat(c.ReportedKcal),
		c.CorrectedGrams, nullFloat(c.CorrectedKcal),
		c.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert correction %s: %w", c.Barcode, err)
	}
	l.pending++
	return nil
}

// Pending returns the number of corrections buffered since the last Flush.
func (l *Log) Pending() int {
	return l.pending
}

// Flush commits buffered corrections.
func (l *Log) Flush() error {
	if l.tx == nil {
		return nil
	}
	l.insert.Close()
	err := l.tx.Commit()
	l.tx, l.insert, l.pending = nil, nil, 0
	if err != nil {
		return fmt.Errorf("commit audit tx: %w", err)
	}
	return nil
}

// Recent returns the newest corrections first.
func (l *Log) Recent(ctx context.Context, limit int) ([]Correction, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := l.db.QueryContext(ctx, `
        SELECT barcode, name, reason, detail, reported_grams, reported_kcal,
            corrected_grams, corrected_kcal, created_at
        FROM corrections
        ORDER BY id DESC
        LIMIT ?
    `, limit)
	if err != nil {
		return nil, fmt.Errorf("query corrections: %w", err)
	}
	defer rows.Close()

	var out []Correction
	for rows.Next() {
		var (
			c                                       Correction
			reason, createdAt                       string
			reportedGrams, reportedKcal, correctedK sql.NullFloat64
		)
		if err := rows.Scan(&c.Barcode, &c.Name, &reason, &c.Detail, &reportedGrams, &reportedKcal,
			&c.CorrectedGrams, &correctedK, &createdAt); err != nil {
			return nil, fmt.Errorf("scan correction: %w", err)
		}
		c.Reason = nutrition.Reason(reason)
		c.ReportedGrams = floatPtr(reportedGrams)
		c.ReportedKcal = floatPtr(reportedKcal)
		c.CorrectedKcal = floatPtr(correctedK)
		if c.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CountByReason returns how many corrections each plausibility rule caused.
func (l *Log) CountByReason(ctx context.Context) (map[string]int64, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT reason, COUNT(*) FROM corrections GROUP BY reason`)
	if err != nil {
		return nil, fmt.Errorf("count corrections: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var reason string
		var n int64
		if err := rows.Scan(&reason, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[reason] = n
	}
	return counts, rows.Err()
}

// Close flushes pending corrections and closes the database.
func (l *Log) Close() error {
	flushErr := l.Flush()
	if err := l.db.Close(); err != nil {
		return fmt.Errorf("close audit db: %w", err)
	}
	return flushErr
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	return nutrition.Float(n.Float64)
}
