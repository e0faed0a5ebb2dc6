package store

import (
	"testing"

	"github.com/korjavin/nutrinorm/internal/nutrition"
)

func normalized(t testing.TB, raw nutrition.RawRecord) nutrition.Normalized {
	t.Helper()
	n, err := nutrition.Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize(%q): %v", raw.ProductName, err)
	}
	return n
}

func TestWriteBatch(t *testing.T) {
	dir := t.TempDir()

	s, err := Create(dir)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer s.Close()

	batch := s.NewWriteBatch()

	products := []Product{
		{Barcode: "001", Name: "Apple Juice", Nutrition: normalized(t, nutrition.RawRecord{
			ProductName: "Apple Juice", Per100g: nutrition.NutrientVector{Calories: nutrition.Float(45)},
		})},
		{Barcode: "002", Name: "Whole Milk", Brand: "Farm", Nutrition: normalized(t, nutrition.RawRecord{
			ProductName: "Whole Milk", ServingSize: "1 cup (240 ml)",
			Per100g: nutrition.NutrientVector{Calories: nutrition.Float(61), Protein: nutrition.Float(3.2)},
		})},
		{Barcode: "003"}, // no name, not indexed
	}

	for _, p := range products {
		if err := batch.Put(p); err != nil {
			t.Fatalf("Put(%q): %v", p.Barcode, err)
		}
	}
	if batch.Len() != 3 {
		t.Errorf("Len() = %d; want 3", batch.Len())
	}
	if err := batch.Put(Product{Name: "No Barcode"}); err == nil {
		t.Error("Put without barcode returned nil error")
	}

	if err := batch.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if batch.Len() != 0 {
		t.Errorf("Len() after flush = %d; want 0", batch.Len())
	}

	for _, want := range products {
		got, found, err := s.Get(want.Barcode)
		if err != nil {
			t.Fatalf("Get(%q): %v", want.Barcode, err)
		}
		if !found {
			t.Errorf("Get(%q): not found", want.Barcode)
			continue
		}
		if got.Name != want.Name || got.Brand != want.Brand {
			t.Errorf("Get(%q) = %q/%q; want %q/%q", want.Barcode, got.Name, got.Brand, want.Name, want.Brand)
		}
	}

	milk, _, _ := s.Get("002")
	if g := milk.Nutrition.Serving.Grams; g == nil || *g != 240 {
		t.Errorf("milk serving grams = %v; want 240", g)
	}

	if err := batch.Close(); err != nil {
		t.Errorf("Close (empty): %v", err)
	}
}

func TestWriteBatchClose_FlushesPending(t *testing.T) {
	dir := t.TempDir()

	s, err := Create(dir)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer s.Close()

	batch := s.NewWriteBatch()
	if err := batch.Put(Product{Barcode: "999", Name: "Pending Product"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	if err := batch.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	_, found, err := s.Get("999")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !found {
		t.Error("product not found after batch.Close()")
	}
}

func TestSearch_NameAndBrand(t *testing.T) {
	dir := t.TempDir()

	s, err := Create(dir)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer s.Close()

	batch := s.NewWriteBatch()
	_ = batch.Put(Product{Barcode: "111", Name: "Organic Oat Milk", Brand: "Oatly"})
	_ = batch.Put(Product{Barcode: "222", Name: "Soy Milk", Brand: "Alpro"})
	_ = batch.Put(Product{Barcode: "333", Name: "Hot Chocolate K-Cup Pods", Brand: "Swiss Miss"})
	if err := batch.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	tests := []struct {
		query string
		want  string
	}{
		{"oat milk", "111"},
		{"alpro", "222"},
		{"k-cup", "333"},
		{"chocolat", "333"},
	}
	for _, tc := range tests {
		results, err := s.Search(tc.query, 10)
		if err != nil {
			t.Fatalf("Search(%q): %v", tc.query, err)
		}
		if len(results) == 0 {
			t.Errorf("Search(%q): no results", tc.query)
			continue
		}
		if results[0].Barcode != tc.want {
			t.Errorf("Search(%q) top barcode = %q; want %q", tc.query, results[0].Barcode, tc.want)
		}
	}

	if results, _ := s.Search("  --  ", 10); results != nil {
		t.Errorf("Search(blank) = %v; want nil", results)
	}
}
