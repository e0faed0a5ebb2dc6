package nutrition

// ServingOption is one entry of a serving-size picker.
type ServingOption struct {
	Grams     float64 `json:"grams"`
	Label     string  `json:"label"`
	IsDefault bool    `json:"is_default"`
}

// householdMeasures are common kitchen units in grams, smallest first.
var householdMeasures = []struct {
	label string
	grams float64
}{
	{"1 tsp", 4},
	{"1 tbsp", 12},
	{"1 oz", 28},
	{"1/4 cup", 60},
	{"1/2 cup", 120},
	{"1 cup", 240},
}

// BuildServingOptions returns the picker entries for a product: its own
// serving first (the default), then 100 g (the default only when the product
// has no serving weight), then household measures. Each gram value, rounded
// to 0.1 g, appears once; the first entry with a given weight wins.
// Drinks get their measures labelled in ml.
func BuildServingOptions(info ServingInfo, productName string) []ServingOption {
	folded := FoldName(productName)
	unit := "g"
	if isDrink(folded) && !isBarProduct(folded) {
		unit = "ml"
	}

	opts := make([]ServingOption, 0, len(householdMeasures)+2)
	seen := make(map[float64]bool, len(householdMeasures)+2)
	add := func(grams float64, label string, isDefault bool) {
		grams = roundTenth(grams)
		if grams <= 0 || seen[grams] {
			return
		}
		seen[grams] = true
		opts = append(opts, ServingOption{Grams: grams, Label: label, IsDefault: isDefault})
	}

	if info.Grams != nil {
		label := info.DisplayLabel
		if label == "" {
			label = FormatGrams(*info.Grams)
		}
		add(*info.Grams, label, true)
	}
	add(100, "100 "+unit, !hasDefault(opts))
	for _, m := range householdMeasures {
		add(m.grams, m.label+" ("+formatAmount(m.grams)+" "+unit+")", false)
	}
	return opts
}

func hasDefault(opts []ServingOption) bool {
	for _, o := range opts {
		if o.IsDefault {
			return true
		}
	}
	return false
}

// formatAmount is FormatGrams without the unit.
func formatAmount(v float64) string {
	s := FormatGrams(v)
	return s[:len(s)-2]
}
