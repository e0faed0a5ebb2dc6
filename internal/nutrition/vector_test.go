package nutrition

import (
	"math"
	"testing"
)

const tolerance = 1e-9

func approx(p *float64, want float64) bool {
	return p != nil && math.Abs(*p-want) < tolerance
}

func TestScale(t *testing.T) {
	v := NutrientVector{
		Calories: Float(400), Protein: Float(10), Carbs: Float(60), Fat: Float(15),
		Fiber: Float(5), Sugar: Float(30), Sodium: Float(500),
	}
	got := v.Scale(0.15)

	checks := []struct {
		field string
		p     *float64
		want  float64
	}{
		{"calories", got.Calories, 60},
		{"protein", got.Protein, 1.5},
		{"carbs", got.Carbs, 9},
		{"fat", got.Fat, 2.25},
		{"fiber", got.Fiber, 0.75},
		{"sugar", got.Sugar, 4.5},
		{"sodium", got.Sodium, 75},
	}
	for _, c := range checks {
		if !approx(c.p, c.want) {
			t.Errorf("%s = %v; want %v", c.field, c.p, c.want)
		}
	}

	if *v.Calories != 400 {
		t.Errorf("Scale mutated its receiver: calories = %v", *v.Calories)
	}
}

func TestScale_KeepsAbsentFieldsAbsent(t *testing.T) {
	v := NutrientVector{Calories: Float(100), Protein: Float(5), Carbs: Float(10), Fat: Float(2)}
	got := v.Scale(2)

	if got.Fiber != nil || got.Sugar != nil || got.Sodium != nil {
		t.Errorf("absent fields were synthesized: fiber=%v sugar=%v sodium=%v", got.Fiber, got.Sugar, got.Sodium)
	}
	if !approx(got.Calories, 200) || !approx(got.Fat, 4) {
		t.Errorf("Scale(2) = calories %v, fat %v; want 200, 4", *got.Calories, *got.Fat)
	}
}

func TestScale_KnownZeroStaysZero(t *testing.T) {
	v := NutrientVector{Calories: Float(0), Sugar: Float(0)}
	got := v.Scale(3)
	if !approx(got.Calories, 0) || !approx(got.Sugar, 0) {
		t.Errorf("known zeros lost: calories=%v sugar=%v", got.Calories, got.Sugar)
	}
}

func TestClone_SharesNoPointers(t *testing.T) {
	v := NutrientVector{Calories: Float(50)}
	c := v.Clone()
	*c.Calories = 99
	if *v.Calories != 50 {
		t.Errorf("Clone shares storage with original: %v", *v.Calories)
	}
}

func TestIsEmpty(t *testing.T) {
	if !(NutrientVector{}).IsEmpty() {
		t.Error("zero vector should be empty")
	}
	if (NutrientVector{Sodium: Float(0)}).IsEmpty() {
		t.Error("vector with a known zero should not be empty")
	}
}
