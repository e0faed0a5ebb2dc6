package nutrition

// NutrientVector holds nutrient amounts on a single basis (100 g or one serving).
// A nil field means the value is unknown; a pointer to 0 is a known zero.
type NutrientVector struct {
	Calories *float64 `json:"calories"`
	Protein  *float64 `json:"protein"`
	Carbs    *float64 `json:"carbs"`
	Fat      *float64 `json:"fat"`
	Fiber    *float64 `json:"fiber,omitempty"`
	Sugar    *float64 `json:"sugar,omitempty"`
	Sodium   *float64 `json:"sodium,omitempty"`
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

// fields returns pointers to every field so helpers can walk the vector
// without repeating the field list.
func (v *NutrientVector) fields() []**float64 {
	return []**float64{&v.Calories, &v.Protein, &v.Carbs, &v.Fat, &v.Fiber, &v.Sugar, &v.Sodium}
}

// Scale returns a new vector with every present field multiplied by factor.
// Absent fields stay absent.
func (v NutrientVector) Scale(factor float64) NutrientVector {
	out := v.Clone()
	for _, f := range out.fields() {
		if *f != nil {
			**f *= factor
		}
	}
	return out
}

// Clone returns a deep copy, so the result shares no pointers with v.
func (v NutrientVector) Clone() NutrientVector {
	out := v
	for _, f := range out.fields() {
		if *f != nil {
			*f = Float(**f)
		}
	}
	return out
}

// IsEmpty reports whether no nutrient is known.
func (v NutrientVector) IsEmpty() bool {
	for _, f := range v.fields() {
		if *f != nil {
			return false
		}
	}
	return true
}
