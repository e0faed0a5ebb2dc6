package nutrition

import "testing"

func assertOptionInvariants(t *testing.T, opts []ServingOption) {
	t.Helper()
	defaults := 0
	seen := map[float64]bool{}
	for _, o := range opts {
		if o.IsDefault {
			defaults++
		}
		if seen[o.Grams] {
			t.Errorf("duplicate option for %v g in %+v", o.Grams, opts)
		}
		seen[o.Grams] = true
	}
	if defaults != 1 {
		t.Errorf("got %d default options; want exactly 1 in %+v", defaults, opts)
	}
}

func findOption(opts []ServingOption, grams float64) (ServingOption, bool) {
	for _, o := range opts {
		if o.Grams == grams {
			return o, true
		}
	}
	return ServingOption{}, false
}

func TestBuildServingOptions_ProductServingIsDefault(t *testing.T) {
	opts := BuildServingOptions(ServingInfo{Grams: Float(15), DisplayLabel: "1 pod (15g)"}, "Hot Cocoa Pods")
	assertOptionInvariants(t, opts)

	first := opts[0]
	if first.Grams != 15 || !first.IsDefault || first.Label != "1 pod (15g)" {
		t.Errorf("first option = %+v; want default 15 g product serving", first)
	}
	hundred, ok := findOption(opts, 100)
	if !ok || hundred.IsDefault {
		t.Errorf("100 g option = %+v (found %v); want present, not default", hundred, ok)
	}
}

func TestBuildServingOptions_NoServingDefaultsTo100g(t *testing.T) {
	opts := BuildServingOptions(ServingInfo{}, "Rolled Oats")
	assertOptionInvariants(t, opts)

	hundred, ok := findOption(opts, 100)
	if !ok || !hundred.IsDefault {
		t.Errorf("100 g option = %+v (found %v); want default", hundred, ok)
	}
	if len(opts) != len(householdMeasures)+1 {
		t.Errorf("got %d options; want %d", len(opts), len(householdMeasures)+1)
	}
}

func TestBuildServingOptions_DeduplicatesMatchingMeasure(t *testing.T) {
	opts := BuildServingOptions(ServingInfo{Grams: Float(4), DisplayLabel: "1 packet (4g)"}, "Sweetener")
	assertOptionInvariants(t, opts)

	tsp, _ := findOption(opts, 4)
	if tsp.Label != "1 packet (4g)" || !tsp.IsDefault {
		t.Errorf("4 g option = %+v; want the product serving to win", tsp)
	}
}

func TestBuildServingOptions_ProductServingOf100g(t *testing.T) {
	opts := BuildServingOptions(ServingInfo{Grams: Float(100), DisplayLabel: "100 g"}, "Cheddar")
	assertOptionInvariants(t, opts)
	if !opts[0].IsDefault || opts[0].Grams != 100 {
		t.Errorf("first option = %+v; want default 100 g", opts[0])
	}
}

func TestBuildServingOptions_DrinkUsesMillilitres(t *testing.T) {
	opts := BuildServingOptions(ServingInfo{}, "Chocolate Milk")
	cup, ok := findOption(opts, 240)
	if !ok || cup.Label != "1 cup (240 ml)" {
		t.Errorf("cup option = %+v (found %v); want label %q", cup, ok, "1 cup (240 ml)")
	}
	hundred, _ := findOption(opts, 100)
	if hundred.Label != "100 ml" {
		t.Errorf("100 option label = %q; want %q", hundred.Label, "100 ml")
	}
}

func TestBuildServingOptions_MissingLabelIsFormatted(t *testing.T) {
	opts := BuildServingOptions(ServingInfo{Grams: Float(37.25)}, "Bread")
	if opts[0].Label != "37.3 g" || opts[0].Grams != 37.3 {
		t.Errorf("first option = %+v; want 37.3 g", opts[0])
	}
}
