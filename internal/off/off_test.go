package off

import (
	"math"
	"testing"
)

func TestValidateNutriment(t *testing.T) {
	tests := []struct {
		name    string
		v       float64
		min     float64
		max     float64
		wantNil bool
	}{
		{"valid mid-range", 50, 0, 100, false},
		{"valid at min", 0, 0, 100, false},
		{"valid at max", 100, 0, 100, false},
		{"below min", -1, 0, 100, true},
		{"above max", 101, 0, 100, true},
		{"NaN input", math.NaN(), 0, 100, true},
		{"kcal valid", 500, 0, 10000, false},
		{"kcal above max", 10001, 0, 10000, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := validateNutriment(tc.v, tc.min, tc.max)
			if tc.wantNil {
				if got != nil {
					t.Errorf("validateNutriment(%v, %v, %v) = %v; want nil", tc.v, tc.min, tc.max, *got)
				}
				return
			}
			if got == nil || *got != tc.v {
				t.Errorf("validateNutriment(%v, %v, %v) = %v; want %v", tc.v, tc.min, tc.max, got, tc.v)
			}
		})
	}
}

func TestRecordNutriments(t *testing.T) {
	p := &Product{
		ProductName: "Hot Cocoa",
		ServingSize: " 236.0g ",
		Nutriments: map[string]any{
			"energy-kcal_100g":     float64(400),
			"energy-kcal_serving":  float64(944),
			"proteins_100g":        "5.5",
			"fat_100g":             float64(-5),   // invalid: negative
			"carbohydrates_100g":   float64(101),  // invalid: above 100 g per 100 g
			"carbohydrates_serving": float64(177), // fine per serving
			"sugars_100g":          float64(0),
		},
	}
	r := p.Record()

	if r.ServingSize != "236.0g" {
		t.Errorf("ServingSize = %q; want trimmed", r.ServingSize)
	}
	if r.Per100g.Calories == nil || *r.Per100g.Calories != 400 {
		t.Errorf("Per100g.Calories = %v; want 400", r.Per100g.Calories)
	}
	if r.PerServing.Calories == nil || *r.PerServing.Calories != 944 {
		t.Errorf("PerServing.Calories = %v; want 944", r.PerServing.Calories)
	}
	if r.Per100g.Protein == nil || *r.Per100g.Protein != 5.5 {
		t.Errorf("Per100g.Protein = %v; want 5.5 from string", r.Per100g.Protein)
	}
	if r.Per100g.Fat != nil {
		t.Errorf("Per100g.Fat = %v; want nil (negative value)", *r.Per100g.Fat)
	}
	if r.Per100g.Carbs != nil {
		t.Errorf("Per100g.Carbs = %v; want nil (above 100)", *r.Per100g.Carbs)
	}
	if r.PerServing.Carbs == nil || *r.PerServing.Carbs != 177 {
		t.Errorf("PerServing.Carbs = %v; want 177", r.PerServing.Carbs)
	}
	if r.Per100g.Sugar == nil || *r.Per100g.Sugar != 0 {
		t.Errorf("Per100g.Sugar = %v; want known zero", r.Per100g.Sugar)
	}
	if r.Per100g.Fiber != nil || r.PerServing.Sodium != nil {
		t.Error("missing nutriments should stay nil")
	}
}

func TestRecordKcalFallback(t *testing.T) {
	p := &Product{Nutriments: map[string]any{"energy-kj_100g": float64(418.4)}}
	got := p.Record().Per100g.Calories
	if got == nil || math.Abs(*got-100) > 1e-9 {
		t.Errorf("kj fallback = %v; want ~100", got)
	}
}

func TestNameAndBrand(t *testing.T) {
	p := &Product{ProductNameEn: "Oat Milk", GenericName: "Drink", Brands: "Oatly, Oatly AB"}
	if got := p.Name(); got != "Oat Milk" {
		t.Errorf("Name() = %q; want %q", got, "Oat Milk")
	}
	if got := p.Brand(); got != "Oatly" {
		t.Errorf("Brand() = %q; want %q", got, "Oatly")
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantCode string
		wantQty  string
	}{
		{"bare record, numeric quantity", `{"code":"123","product_name":"Pods","serving_quantity":15}`, "123", "15"},
		{"bare record, string quantity", `{"code":"124","serving_quantity":"236.0"}`, "124", "236.0"},
		{"api envelope", `{"code":"125","status":1,"product":{"product_name":"Cocoa","serving_quantity":null}}`, "125", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := Decode([]byte(tc.input))
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if p.Code != tc.wantCode {
				t.Errorf("Code = %q; want %q", p.Code, tc.wantCode)
			}
			if got := p.Record().ServingQuantity; got != tc.wantQty {
				t.Errorf("ServingQuantity = %q; want %q", got, tc.wantQty)
			}
		})
	}

	if _, err := Decode([]byte(`not json`)); err == nil {
		t.Error("Decode(invalid) returned nil error")
	}
}
