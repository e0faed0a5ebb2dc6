package nutrition

const (
	// PodServingGrams is the contents of one coffee/cocoa pod or capsule.
	PodServingGrams = 15.0
	// BarServingGrams is one protein, granola or candy bar.
	BarServingGrams = 40.0
)

// densityTiers maps calorie density to a typical serving, densest first.
// Energy-dense foods (nuts, oils, chocolate) are eaten in small amounts;
// soups, drinks and vegetables in large ones. Grams never increase down the
// table, which keeps EstimateServingGrams monotonic.
var densityTiers = []struct {
	minKcal100g float64
	grams       float64
}{
	{500, 30},
	{350, 40},
	{200, 85},
	{100, 150},
	{50, 200},
	{0, 250},
}

// EstimateServingGrams guesses a serving weight when none can be trusted.
// Pods and bars get their unit weight; everything else falls back to the
// calorie-density table. The result is always positive.
func EstimateServingGrams(productName string, kcalPer100g float64) float64 {
	folded := FoldName(productName)
	switch {
	case isPodProduct(folded):
		return PodServingGrams
	case isBarProduct(folded):
		return BarServingGrams
	}
	return densityServingGrams(kcalPer100g)
}

func densityServingGrams(kcalPer100g float64) float64 {
	for _, tier := range densityTiers {
		if kcalPer100g >= tier.minKcal100g {
			return tier.grams
		}
	}
	// Negative or NaN density: treat as the lightest food.
	return densityTiers[len(densityTiers)-1].grams
}
