package store

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/cockroachdb/pebble"

	"github.com/korjavin/nutrinorm/internal/nutrition"
)

const (
	pebbleDir = "pebble"
	bleveDir  = "bleve"
)

const (
	fieldName  = "name_folded"
	fieldBrand = "brand_folded"
)

// bleveDoc is the document structure indexed into Bleve.
type bleveDoc struct {
	NameFolded  string `json:"name_folded"`
	BrandFolded string `json:"brand_folded,omitempty"`
}

func newBleveDoc(p Product) bleveDoc {
	return bleveDoc{NameFolded: nutrition.FoldName(p.Name), BrandFolded: nutrition.FoldName(p.Brand)}
}

// Store wraps a Pebble KV store of normalized products and a Bleve full-text
// index over their folded names and brands.
type Store struct {
	db    *pebble.DB
	index bleve.Index
}

// OpenReadOnly opens an existing data directory in read-only mode (for the server).
func OpenReadOnly(dataDir string) (*Store, error) {
	db, err := pebble.Open(filepath.Join(dataDir, pebbleDir), &pebble.Options{
		ReadOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open pebble (read-only): %w", err)
	}

	idx, err := bleve.Open(filepath.Join(dataDir, bleveDir))
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open bleve index: %w", err)
	}

	return &Store{db: db, index: idx}, nil
}

// Create initialises a fresh data directory for the importer.
// The pebble and bleve sub-directories must not already exist.
func Create(dataDir string) (*Store, error) {
	db, err := pebble.Open(filepath.Join(dataDir, pebbleDir), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("create pebble: %w", err)
	}

	idx, err := bleve.New(filepath.Join(dataDir, bleveDir), newBleveMapping())
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create bleve index: %w", err)
	}

	return &Store{db: db, index: idx}, nil
}

// Close releases all resources held by the store.
func (s *Store) Close() error {
	var errs []error
	if err := s.index.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close bleve: %w", err))
	}
	if err := s.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close pebble: %w", err))
	}
	return errors.Join(errs...)
}

// Put writes a product to Pebble and indexes its folded name and brand in
// Bleve. If the name is empty the product is stored in Pebble but not indexed.
func (s *Store) Put(p Product) error {
	if p.Barcode == "" {
		return fmt.Errorf("product has empty barcode")
	}

	encoded := p.Encode()
	if err := s.db.Set([]byte(p.Barcode), encoded, pebble.NoSync); err != nil {
		return fmt.Errorf("pebble set: %w", err)
	}

	if p.Name != "" {
		if err := s.index.Index(p.Barcode, newBleveDoc(p)); err != nil {
			return fmt.Errorf("bleve index: %w", err)
		}
	}
	return nil
}

// WriteBatch accumulates products for batched writes to Pebble and Bleve.
type WriteBatch struct {
	s     *Store
	pb    *pebble.Batch
	bb    *bleve.Batch
	count int
}

// NewWriteBatch creates a new WriteBatch backed by the given store.
func (s *Store) NewWriteBatch() *WriteBatch {
	return &WriteBatch{
		s:  s,
		pb: s.db.NewBatch(),
		bb: s.index.NewBatch(),
	}
}

// Put accumulates a product in the batch without flushing.
func (b *WriteBatch) Put(p Product) error {
	if p.Barcode == "" {
		return fmt.Errorf("product has empty barcode")
	}
	if err := b.pb.Set([]byte(p.Barcode), p.Encode(), nil); err != nil {
		return fmt.Errorf("pebble batch set: %w", err)
	}
	if p.Name != "" {
		if err := b.bb.Index(p.Barcode, newBleveDoc(p)); err != nil {
			return fmt.Errorf("bleve batch index: %w", err)
		}
	}
	b.count++
	return nil
}

// Flush commits both batches to the underlying stores and resets accumulators.
func (b *WriteBatch) Flush() error {
	if err := b.pb.Commit(pebble.NoSync); err != nil {
		return fmt.Errorf("pebble batch commit: %w", err)
	}
	if err := b.s.index.Batch(b.bb); err != nil {
		return fmt.Errorf("bleve batch commit: %w", err)
	}
	b.pb.Reset()
	b.bb = b.s.index.NewBatch()
	b.count = 0
	return nil
}

// Close flushes any pending data and releases the pebble batch memory.
func (b *WriteBatch) Close() error {
	if b.count > 0 {
		if err := b.Flush(); err != nil {
			b.pb.Close()
			return err
		}
	}
	b.pb.Close()
	return nil
}

// Len returns the number of records accumulated since the last flush.
func (b *WriteBatch) Len() int {
	return b.count
}

// Get retrieves a product by barcode from Pebble.
// Returns (Product, false, nil) when the barcode is not found.
func (s *Store) Get(barcode string) (Product, bool, error) {
	val, closer, err := s.db.Get([]byte(barcode))
	if err == pebble.ErrNotFound {
		return Product{}, false, nil
	}
	if err != nil {
		return Product{}, false, fmt.Errorf("pebble get: %w", err)
	}
	defer closer.Close()

	// val is only valid until closer.Close(); copy it
	data := make([]byte, len(val))
	copy(data, val)

	var p Product
	if err := p.Decode(data); err != nil {
		return Product{}, false, fmt.Errorf("decode product: %w", err)
	}
	p.Barcode = barcode
	return p, true, nil
}

// Search runs a Bleve query and fetches the matching products from Pebble.
// limit caps the number of results (max 100).
func (s *Store) Search(q string, limit int) ([]Product, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	folded := nutrition.FoldName(q)
	if folded == "" {
		return nil, nil
	}

	req := bleve.NewSearchRequestOptions(searchQuery(folded), limit, 0, false)
	res, err := s.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("bleve search: %w", err)
	}

	products := make([]Product, 0, len(res.Hits))
	for _, hit := range res.Hits {
		p, found, err := s.Get(hit.ID)
		if err != nil || !found {
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

// searchQuery ranks, highest first: exact name phrase, name prefix, brand
// phrase, then per-token fuzzy name matches (tokens of 4+ characters).
func searchQuery(folded string) query.Query {
	boolQ := bleve.NewBooleanQuery()

	phraseQ := bleve.NewMatchPhraseQuery(folded)
	phraseQ.SetField(fieldName)
	phraseQ.SetBoost(10)
	boolQ.AddShould(phraseQ)

	prefixQ := bleve.NewPrefixQuery(folded)
	prefixQ.SetField(fieldName)
	prefixQ.SetBoost(5)
	boolQ.AddShould(prefixQ)

	brandQ := bleve.NewMatchPhraseQuery(folded)
	brandQ.SetField(fieldBrand)
	brandQ.SetBoost(3)
	boolQ.AddShould(brandQ)

	for _, token := range strings.Fields(folded) {
		if len(token) < 4 {
			continue
		}
		fuzzyQ := bleve.NewFuzzyQuery(token)
		fuzzyQ.SetField(fieldName)
		fuzzyQ.Fuzziness = 1
		if len(token) >= 8 {
			fuzzyQ.Fuzziness = 2
		}
		boolQ.AddShould(fuzzyQ)
	}
	return boolQ
}

// newBleveMapping builds the index mapping used when creating a fresh index.
// Both fields hold FoldName output, so the simple analyzer only has to split
// on spaces.
func newBleveMapping() mapping.IndexMapping {
	docMapping := bleve.NewDocumentMapping()
	for _, field := range []string{fieldName, fieldBrand} {
		textField := bleve.NewTextFieldMapping()
		textField.Analyzer = simple.Name
		textField.Store = false
		docMapping.AddFieldMappingsAt(field, textField)
	}

	im := bleve.NewIndexMapping()
	im.DefaultMapping = docMapping
	return im
}
