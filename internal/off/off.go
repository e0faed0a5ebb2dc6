// Package off decodes Open Food Facts product records into the raw input of
// the nutrition engine.
package off

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/korjavin/nutrinorm/internal/nutrition"
)

// kjPerKcal converts energy-kj values when no kcal figure is present.
const kjPerKcal = 4.184

// Product is the subset of an OFF JSONL record (or API product object) the
// engine needs. serving_quantity arrives as a number or a string depending on
// the dump vintage, so it is kept as raw JSON.
type Product struct {
	Code             string          `json:"code"`
	ProductName      string          `json:"product_name"`
	ProductNameEn    string          `json:"product_name_en"`
	GenericName      string          `json:"generic_name"`
	ShortDescription string          `json:"short_description"`
	Brands           string          `json:"brands"`
	ServingSize      string          `json:"serving_size"`
	ServingQuantity  json.RawMessage `json:"serving_quantity"`
	Nutriments       map[string]any  `json:"nutriments"`
}

// envelope is the shape of the OFF product API: {"code": ..., "product": {...}}.
type envelope struct {
	Code    string   `json:"code"`
	Product *Product `json:"product"`
}

// Decode parses either a bare product record or an API envelope.
func Decode(data []byte) (*Product, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err == nil && env.Product != nil {
		if env.Product.Code == "" {
			env.Product.Code = env.Code
		}
		return env.Product, nil
	}

	var p Product
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode product: %w", err)
	}
	return &p, nil
}

// Name returns the best available product name using the fallback order:
// product_name → product_name_en → generic_name → short_description → "".
func (p *Product) Name() string {
	for _, n := range []string{p.ProductName, p.ProductNameEn, p.GenericName, p.ShortDescription} {
		if n = strings.TrimSpace(n); n != "" {
			return n
		}
	}
	return ""
}

// Brand returns the first entry of the comma-separated brands field.
func (p *Product) Brand() string {
	first, _, _ := strings.Cut(p.Brands, ",")
	return strings.TrimSpace(first)
}

// servingQuantity renders serving_quantity as text whichever JSON type it had.
func (p *Product) servingQuantity() string {
	raw := strings.TrimSpace(string(p.ServingQuantity))
	if raw == "" || raw == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(p.ServingQuantity, &s); err == nil {
		return s
	}
	return raw
}

// basis is a nutriments key suffix.
type basis string

const (
	per100g    basis = "_100g"
	perServing basis = "_serving"
)

// Upper bounds on plausible values. Per-serving amounts get a looser bound
// on macros because a serving may exceed 100 g; the engine decides whether
// the serving itself makes sense.
var limits = map[basis]struct{ kcal, grams float64 }{
	per100g:    {kcal: 10000, grams: 100},
	perServing: {kcal: 10000, grams: 1000},
}

// Record converts the product into the engine's raw input.
func (p *Product) Record() nutrition.RawRecord {
	return nutrition.RawRecord{
		ProductName:     p.Name(),
		Brand:           p.Brand(),
		ServingSize:     strings.TrimSpace(p.ServingSize),
		ServingQuantity: p.servingQuantity(),
		Per100g:         p.vector(per100g),
		PerServing:      p.vector(perServing),
	}
}

func (p *Product) vector(b basis) nutrition.NutrientVector {
	lim := limits[b]
	return nutrition.NutrientVector{
		Calories: p.kcal(b),
		Protein:  p.nutriment("proteins", b, lim.grams),
		Carbs:    p.nutriment("carbohydrates", b, lim.grams),
		Fat:      p.nutriment("fat", b, lim.grams),
		Fiber:    p.nutriment("fiber", b, lim.grams),
		Sugar:    p.nutriment("sugars", b, lim.grams),
		Sodium:   p.nutriment("sodium", b, lim.grams),
	}
}

// kcal prefers energy-kcal and falls back to energy-kj / 4.184.
func (p *Product) kcal(b basis) *float64 {
	max := limits[b].kcal
	if v, ok := extractFloat(p.Nutriments, "energy-kcal"+string(b)); ok {
		return validateNutriment(v, 0, max)
	}
	if v, ok := extractFloat(p.Nutriments, "energy-kj"+string(b)); ok {
		return validateNutriment(v/kjPerKcal, 0, max)
	}
	return nil
}

func (p *Product) nutriment(name string, b basis, max float64) *float64 {
	if v, ok := extractFloat(p.Nutriments, name+string(b)); ok {
		return validateNutriment(v, 0, max)
	}
	return nil
}

// validateNutriment returns nil if v is outside [min, max], otherwise &v.
func validateNutriment(v, min, max float64) *float64 {
	if math.IsNaN(v) || v < min || v > max {
		return nil
	}
	return nutrition.Float(v)
}

// extractFloat coerces a nutriments map value to float64.
func extractFloat(m map[string]any, key string) (float64, bool) {
	switch x := m[key].(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, false
		}
		return x, true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
