package importer

import (
	"bufio"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/korjavin/nutrinorm/internal/audit"
	"github.com/korjavin/nutrinorm/internal/nutrition"
	"github.com/korjavin/nutrinorm/internal/off"
	"github.com/korjavin/nutrinorm/internal/store"
)

const (
	maxBarcodeLen = 100
	batchSize     = 5_000
	progressEvery = 100_000
)

// Options configures one import run.
type Options struct {
	DumpPath  string // gzip-compressed OFF JSONL
	OutputDir string // data directory to create
	Verbose   bool   // log progress every 100k products
}

// run holds the sinks and counters of one import.
type run struct {
	batch    *store.WriteBatch
	audit    *audit.Log
	manifest *store.Manifest
}

// Import reads a gzip-compressed JSONL Open Food Facts dump, normalizes every
// product's serving data, builds a Pebble KV store and Bleve full-text index
// inside OutputDir, logs each correction to the audit database, and returns
// the resulting manifest.
//
// Products with an empty or over-long barcode, unparseable JSON, or no
// nutrient on either basis are skipped.
func Import(ctx context.Context, opts Options) (*store.Manifest, error) {
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	s, err := store.Create(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}
	defer s.Close()

	auditLog, err := audit.Open(filepath.Join(opts.OutputDir, audit.FileName))
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	defer auditLog.Close()

	f, err := os.Open(opts.DumpPath)
	if err != nil {
		return nil, fmt.Errorf("open dump: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("open gzip reader: %w", err)
	}
	defer gz.Close()

	r := &run{
		batch:    s.NewWriteBatch(),
		audit:    auditLog,
		manifest: store.NewManifest(opts.DumpPath),
	}
	if err := r.consume(ctx, gz, opts.Verbose); err != nil {
		return nil, err
	}

	if err := r.batch.Close(); err != nil {
		return nil, fmt.Errorf("final batch flush: %w", err)
	}
	if err := r.audit.Flush(); err != nil {
		return nil, fmt.Errorf("final audit flush: %w", err)
	}

	r.manifest.BuildTime = time.Now().UTC()
	if err := store.WriteManifest(opts.OutputDir, r.manifest); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}
	return r.manifest, nil
}

// consume processes JSONL lines until EOF or cancellation.
func (r *run) consume(ctx context.Context, src io.Reader, verbose bool) error {
	scanner := bufio.NewScanner(src)
	// Some OFF lines can be very large; allocate a generous buffer.
	buf := make([]byte, 0, 4*1024*1024)
	scanner.Buffer(buf, 16*1024*1024)

	start := time.Now()
	var lines, logged int64
	for scanner.Scan() {
		lines++
		if lines%batchSize == 0 {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("import cancelled: %w", err)
			}
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := r.ingest(line); err != nil {
			return err
		}

		if r.batch.Len() >= batchSize {
			if err := r.flush(); err != nil {
				return err
			}
		}

		m := r.manifest
		if verbose && m.ProductCount-logged >= progressEvery {
			logged = m.ProductCount
			elapsed := time.Since(start)
			slog.Info("import progress",
				"products", m.ProductCount,
				"indexed", m.IndexedCount,
				"skipped", m.SkippedCount,
				"corrected", m.Outcomes[string(nutrition.OutcomeCorrected)],
				"rate_per_s", int(float64(m.ProductCount)/elapsed.Seconds()),
				"elapsed", elapsed.Round(time.Second),
			)
		}
	}

	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("scanner error: %w", err)
	}
	return nil
}

// ingest decodes, normalizes and stages one product.
func (r *run) ingest(line []byte) error {
	m := r.manifest

	p, err := off.Decode(line)
	if err != nil {
		m.Skip("parse_error")
		slog.Debug("json unmarshal error, skipping line", "error", err)
		return nil
	}

	barcode := p.Code
	switch {
	case barcode == "":
		m.Skip("empty_barcode")
		return nil
	case len(barcode) > maxBarcodeLen:
		m.Skip("barcode_too_long")
		return nil
	}

	raw := p.Record()
	n, err := nutrition.Normalize(raw)
	if errors.Is(err, nutrition.ErrInsufficientData) {
		m.Skip("insufficient_data")
		return nil
	}
	if err != nil {
		return fmt.Errorf("normalize %s: %w", barcode, err)
	}

	if err := r.batch.Put(store.Product{Barcode: barcode, Name: raw.ProductName, Brand: raw.Brand, Nutrition: n}); err != nil {
		return fmt.Errorf("stage %s: %w", barcode, err)
	}
	m.ProductCount++
	if raw.ProductName != "" {
		m.IndexedCount++
	}
	m.Outcomes[string(n.Outcome)]++

	if n.Serving.WasCorrected {
		m.Corrections[string(n.Check.Reason)]++
		slog.Debug("serving corrected", "barcode", barcode, "reason", n.Check.Reason, "detail", n.Check.Detail)
		if err := r.audit.Record(audit.NewCorrection(barcode, raw, n)); err != nil {
			return fmt.Errorf("audit %s: %w", barcode, err)
		}
	}
	return nil
}

// flush commits the store batch and the audit transaction together.
func (r *run) flush() error {
	if err := r.batch.Flush(); err != nil {
		return fmt.Errorf("batch flush: %w", err)
	}
	if err := r.audit.Flush(); err != nil {
		return fmt.Errorf("audit flush: %w", err)
	}
	return nil
}
