package nutrition

import "testing"

func TestEstimateServingGrams_NamePatterns(t *testing.T) {
	tests := []struct {
		name string
		kcal float64
		want float64
	}{
		{"Keurig K-Cup Hot Chocolate Pods", 400, PodServingGrams},
		{"Espresso Capsules", 10, PodServingGrams},
		{"Chocolate Peanut Protein Bar", 380, BarServingGrams},
		{"Oat Granola Bars", 450, BarServingGrams},
		{"Mixed Nuts", 600, 30},
		{"Tomato Soup", 40, 250},
	}
	for _, tc := range tests {
		if got := EstimateServingGrams(tc.name, tc.kcal); got != tc.want {
			t.Errorf("EstimateServingGrams(%q, %v) = %v; want %v", tc.name, tc.kcal, got, tc.want)
		}
	}
}

func TestEstimateServingGrams_Monotonic(t *testing.T) {
	prev := EstimateServingGrams("Plain Food", 0)
	for kcal := 1.0; kcal <= 900; kcal++ {
		got := EstimateServingGrams("Plain Food", kcal)
		if got > prev {
			t.Fatalf("estimate rose from %v to %v at %v kcal/100g", prev, got, kcal)
		}
		prev = got
	}

	dense := EstimateServingGrams("Almonds", 600)
	light := EstimateServingGrams("Broth", 40)
	if dense >= light {
		t.Errorf("600 kcal/100g estimate %v should be below 40 kcal/100g estimate %v", dense, light)
	}
}

func TestEstimateServingGrams_AlwaysPositive(t *testing.T) {
	for _, kcal := range []float64{-10, 0, 1e6} {
		if got := EstimateServingGrams("", kcal); got <= 0 {
			t.Errorf("EstimateServingGrams(%q, %v) = %v; want > 0", "", kcal, got)
		}
	}
}
