// Package nutrition decides whether a product's reported per-serving
// nutrition can be trusted, corrects it when it cannot, and builds the
// serving choices offered to a user. Every function is pure: no I/O, no
// shared state, safe for concurrent use.
package nutrition

import "errors"

// ErrInsufficientData is returned by Normalize when a record carries no
// nutrient on either basis. Callers should show "nutrition unavailable"
// rather than a zero-calorie entry.
var ErrInsufficientData = errors.New("insufficient nutrition data")

// RawRecord is one product as reported by the external food database.
// Nothing in it is trusted.
type RawRecord struct {
	ProductName     string
	Brand           string
	ServingSize     string // free text, e.g. "1 pod (15g)"
	ServingQuantity string // bare grams, e.g. "15"
	Per100g         NutrientVector
	PerServing      NutrientVector
}

// ServingInfo is the serving weight the engine settled on.
type ServingInfo struct {
	Grams        *float64 `json:"grams"`
	DisplayLabel string   `json:"label"`
	WasCorrected bool     `json:"was_corrected"`
}

// Outcome names the path Normalize took.
type Outcome string

const (
	// OutcomeTrusted: reported per-serving values passed the checks.
	OutcomeTrusted Outcome = "trusted"
	// OutcomeCorrected: reported serving data was rejected and recomputed.
	OutcomeCorrected Outcome = "corrected"
	// OutcomePer100g: only per-100g data exists; one serving is 100 g.
	OutcomePer100g Outcome = "per_100g"
	// OutcomeDerived: a serving weight but no per-serving values; they were
	// scaled from per-100g.
	OutcomeDerived Outcome = "derived"
	// OutcomeUnverified: per-serving values with no per-100g calories to
	// check them against, passed through as reported.
	OutcomeUnverified Outcome = "unverified"
)

// Normalized is the engine's result for one product. Per100g is always the
// record's per-100g data, untouched by any correction.
type Normalized struct {
	Per100g            NutrientVector `json:"per_100g"`
	PerServing         NutrientVector `json:"per_serving"`
	Serving            ServingInfo    `json:"serving"`
	ServingDataTrusted bool           `json:"serving_data_trusted"`
	Outcome            Outcome        `json:"outcome"`
	Check              Plausibility   `json:"check"`
}

// Normalize validates a raw record and returns normalized per-100g and
// per-serving nutrition. The only error is ErrInsufficientData.
func Normalize(raw RawRecord) (Normalized, error) {
	per100g := raw.Per100g.Clone()
	reported := raw.PerServing
	if per100g.IsEmpty() && reported.IsEmpty() {
		return Normalized{}, ErrInsufficientData
	}

	grams, hasGrams := servingGrams(raw)

	switch {
	case reported.IsEmpty() && !hasGrams:
		return Normalized{
			Per100g:    per100g,
			PerServing: per100g.Clone(),
			Serving:    ServingInfo{Grams: Float(100), DisplayLabel: FormatGrams(100)},
			Outcome:    OutcomePer100g,
			Check:      Plausibility{Plausible: true},
		}, nil

	case reported.IsEmpty():
		kcal100g := valueOr(per100g.Calories, 0)
		check := CheckPlausibility(PlausibilityInput{
			CaloriesPerServing: kcal100g * grams / 100,
			CaloriesPer100g:    kcal100g,
			ServingGrams:       grams,
			ProductName:        raw.ProductName,
		})
		if !check.Plausible {
			return correct(raw.ProductName, per100g, grams, true, check), nil
		}
		return Normalized{
			Per100g:    per100g,
			PerServing: per100g.Scale(grams / 100),
			Serving:    ServingInfo{Grams: Float(grams), DisplayLabel: servingLabel(raw.ServingSize, grams)},
			Outcome:    OutcomeDerived,
			Check:      check,
		}, nil

	case reported.Calories == nil || per100g.Calories == nil:
		return unverified(raw, per100g, grams, hasGrams), nil
	}

	kcalServing, kcal100g := *reported.Calories, *per100g.Calories
	if !hasGrams {
		if kcal100g <= 0 || kcalServing <= 0 {
			return unverified(raw, per100g, 0, false), nil
		}
		grams = kcalServing / kcal100g * 100
	}

	check := CheckPlausibility(PlausibilityInput{
		CaloriesPerServing: kcalServing,
		CaloriesPer100g:    kcal100g,
		ServingGrams:       grams,
		ProductName:        raw.ProductName,
	})
	if !check.Plausible {
		return correct(raw.ProductName, per100g, grams, hasGrams, check), nil
	}
	return Normalized{
		Per100g:            per100g,
		PerServing:         reported.Clone(),
		Serving:            ServingInfo{Grams: Float(grams), DisplayLabel: servingLabel(raw.ServingSize, grams)},
		ServingDataTrusted: true,
		Outcome:            OutcomeTrusted,
		Check:              check,
	}, nil
}

// correct discards the reported serving and rebuilds it from per-100g. The
// candidate weight is kept when it passes the checker on its own figures,
// otherwise the estimator picks one.
func correct(name string, per100g NutrientVector, candidate float64, hasCandidate bool, check Plausibility) Normalized {
	kcal100g := valueOr(per100g.Calories, 0)
	grams := EstimateServingGrams(name, kcal100g)
	if hasCandidate && CheckPlausibility(PlausibilityInput{
		CaloriesPerServing: kcal100g * candidate / 100,
		CaloriesPer100g:    kcal100g,
		ServingGrams:       candidate,
		ProductName:        name,
	}).Plausible {
		grams = candidate
	}
	return Normalized{
		Per100g:    per100g,
		PerServing: per100g.Scale(grams / 100),
		Serving: ServingInfo{
			Grams:        Float(grams),
			DisplayLabel: FormatGrams(grams),
			WasCorrected: true,
		},
		Outcome: OutcomeCorrected,
		Check:   check,
	}
}

func unverified(raw RawRecord, per100g NutrientVector, grams float64, hasGrams bool) Normalized {
	n := Normalized{
		Per100g:    per100g,
		PerServing: raw.PerServing.Clone(),
		Serving:    ServingInfo{DisplayLabel: "1 serving"},
		Outcome:    OutcomeUnverified,
		Check:      Plausibility{Plausible: true},
	}
	if hasGrams {
		n.Serving = ServingInfo{Grams: Float(grams), DisplayLabel: servingLabel(raw.ServingSize, grams)}
	}
	return n
}

// servingGrams prefers the free-text serving size and falls back to the bare
// serving quantity.
func servingGrams(raw RawRecord) (float64, bool) {
	if g, ok := ParseServingGrams(raw.ServingSize); ok {
		return g, true
	}
	return ParseServingQuantity(raw.ServingQuantity)
}

// servingLabel keeps the product's own wording when it names the same weight.
func servingLabel(text string, grams float64) string {
	if g, ok := ParseServingGrams(text); ok && roundTenth(g) == roundTenth(grams) {
		return text
	}
	return FormatGrams(grams)
}

func valueOr(p *float64, fallback float64) float64 {
	if p == nil {
		return fallback
	}
	return *p
}
