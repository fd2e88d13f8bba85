package models

// NutritionData is always derived from dishes, never stored on its own.
type NutritionData struct {
	Calories int     `json:"calories"`
	Carb     float64 `json:"carb"`
	Protein  float64 `json:"protein"`
	Fat      float64 `json:"fat"`
}

// Add returns the field-wise sum.
func (n NutritionData) Add(o NutritionData) NutritionData {
	return NutritionData{
		Calories: n.Calories + o.Calories,
		Carb:     n.Carb + o.Carb,
		Protein:  n.Protein + o.Protein,
		Fat:      n.Fat + o.Fat,
	}
}

// CaloriesProgress is the calories-remaining view of one day.
type CaloriesProgress struct {
	Date      string `json:"date"`
	Consumed  int    `json:"consumed"`
	Target    int    `json:"target"`
	Remaining int    `json:"remaining"` // negative once the target is exceeded
}

type NutritionProgress struct {
	Date      string        `json:"date"`
	Target    MacroTargets  `json:"target"`
	Consumed  NutritionData `json:"consumed"`
	Remaining MacroTargets  `json:"remaining"`
}
