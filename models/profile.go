package models

// MacroTargets holds daily gram targets.
type MacroTargets struct {
	Carb    float64 `json:"carb"`    // e.g. 275 g
	Protein float64 `json:"protein"` // e.g. 120 g
	Fat     float64 `json:"fat"`     // e.g. 70 g
}

func (m MacroTargets) IsZero() bool {
	return m.Carb == 0 && m.Protein == 0 && m.Fat == 0
}

// MacroSplit is a share of daily calories per macro, each in 0..1.
type MacroSplit struct {
	Carb    float64 `json:"carb"`
	Protein float64 `json:"protein"`
	Fat     float64 `json:"fat"`
}

// UserProfile is the stored document at users/{uid}.
type UserProfile struct {
	UserID         string        `json:"userId"`
	Email          string        `json:"email,omitempty"`
	TargetCalories int           `json:"targetCalories"` // e.g. 2200 kcal
	Macros         *MacroTargets `json:"macros,omitempty"`
	Split          *MacroSplit   `json:"split,omitempty"`

	Sex           string  `json:"sex,omitempty"` // "male" | "female"
	Age           int     `json:"age,omitempty"`
	HeightCm      float64 `json:"heightCm,omitempty"`
	WeightKg      float64 `json:"weightKg,omitempty"`
	ActivityLevel string  `json:"activityLevel,omitempty"` // sedentary|light|moderate|active|very_active
	Goal          string  `json:"goal,omitempty"`          // lose|maintain|gain
}

// Targets is the write model for onboarding and goal edits.
type Targets struct {
	TargetCalories int           `json:"target_calories"`
	Macros         *MacroTargets `json:"macros,omitempty"`
	Split          *MacroSplit   `json:"split,omitempty"`
}
