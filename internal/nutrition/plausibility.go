package nutrition

import (
	"fmt"
	"math"
)

const (
	// MaxServingGrams caps a single labelled serving. Heavier "servings" are
	// almost always the whole container typed into the serving field.
	MaxServingGrams = 500.0

	// DenseKcalPer100g marks energy-dense foods (powders, chocolate, nuts,
	// oils), which are eaten in small servings.
	DenseKcalPer100g = 350.0

	// MaxDenseServingFactor bounds a dense food's serving as a multiple of the
	// typical serving for its density. It catches whole-package servings whose
	// numbers agree with each other, such as 236 g of a 400 kcal/100g powder
	// reported as 944 kcal, while large servings of lighter foods (pizza,
	// ready meals) pass.
	MaxDenseServingFactor = 4.0

	// ConsistencyTolerance is how many times apart the reported per-serving
	// calories and the ones implied by per-100g × grams may be.
	ConsistencyTolerance = 2.5

	// ConsistencySlackKcal is the absolute difference below which calories are
	// never called inconsistent, so rounding on tiny servings is ignored.
	ConsistencySlackKcal = 10.0

	// MaxMultiPackRatio bounds per-serving / per-100g calories for multi-pack
	// products. One pod or bar never weighs several hundred grams.
	MaxMultiPackRatio = 3.0
)

// Reason identifies the rule that rejected a serving.
type Reason string

const (
	ReasonNone            Reason = ""
	ReasonServingTooHeavy Reason = "serving_too_heavy"
	ReasonDenseServing    Reason = "dense_serving_too_large"
	ReasonInconsistent    Reason = "inconsistent_calories"
	ReasonMultiPackRatio  Reason = "multi_pack_ratio"
)

// PlausibilityInput names every figure the checker looks at, so call sites
// cannot swap grams and calories by position.
type PlausibilityInput struct {
	CaloriesPerServing float64
	CaloriesPer100g    float64
	ServingGrams       float64
	ProductName        string
}

// Plausibility is the checker's verdict. Reason and Detail are empty when
// Plausible is true.
type Plausibility struct {
	Plausible bool   `json:"plausible"`
	Reason    Reason `json:"reason,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

func implausible(r Reason, format string, args ...any) Plausibility {
	return Plausibility{Reason: r, Detail: fmt.Sprintf(format, args...)}
}

// CheckPlausibility applies the serving rules in order and returns the first
// failure:
//
//  1. serving weight bounds, absolute and for energy-dense foods
//  2. reported per-serving calories agree with per-100g × grams
//  3. multi-pack products keep per-serving / per-100g at or below MaxMultiPackRatio
func CheckPlausibility(in PlausibilityInput) Plausibility {
	if in.ServingGrams > MaxServingGrams {
		return implausible(ReasonServingTooHeavy,
			"serving of %s exceeds %s", FormatGrams(in.ServingGrams), FormatGrams(MaxServingGrams))
	}
	if in.CaloriesPer100g >= DenseKcalPer100g {
		if limit := MaxDenseServingFactor * densityServingGrams(in.CaloriesPer100g); in.ServingGrams > limit {
			return implausible(ReasonDenseServing,
				"serving of %s at %.0f kcal/100g exceeds %s", FormatGrams(in.ServingGrams), in.CaloriesPer100g, FormatGrams(limit))
		}
	}

	expected := in.CaloriesPer100g * in.ServingGrams / 100
	if diverges(in.CaloriesPerServing, expected) {
		return implausible(ReasonInconsistent,
			"reported %.1f kcal per serving, %s at %.1f kcal/100g implies %.1f kcal",
			in.CaloriesPerServing, FormatGrams(in.ServingGrams), in.CaloriesPer100g, expected)
	}

	if in.CaloriesPer100g > 0 && IsMultiPack(in.ProductName) {
		if ratio := in.CaloriesPerServing / in.CaloriesPer100g; ratio > MaxMultiPackRatio {
			return implausible(ReasonMultiPackRatio,
				"multi-pack serving is %.2f× the 100 g figure, limit %.1f×", ratio, MaxMultiPackRatio)
		}
	}
	return Plausibility{Plausible: true}
}

// diverges reports whether two calorie figures are both far apart in absolute
// terms and more than ConsistencyTolerance times apart.
func diverges(reported, expected float64) bool {
	if math.Abs(reported-expected) <= ConsistencySlackKcal {
		return false
	}
	lo, hi := math.Min(reported, expected), math.Max(reported, expected)
	if lo <= 0 {
		return true
	}
	return hi/lo > ConsistencyTolerance
}
