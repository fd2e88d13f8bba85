package utils

import (
	"math"
	"strings"

	"nutridiary/models"
)

const (
	kcalPerGramCarb    = 4
	kcalPerGramProtein = 4
	kcalPerGramFat     = 9
)

// DefaultSplit is used when a profile carries neither grams nor a split.
var DefaultSplit = models.MacroSplit{Carb: 0.5, Protein: 0.2, Fat: 0.3}

var goalSplits = map[string]models.MacroSplit{
	"lose": {Carb: 0.4, Protein: 0.3, Fat: 0.3},
	"gain": {Carb: 0.5, Protein: 0.25, Fat: 0.25},
}

// SplitFor picks the profile's own split when it sums to 1, else a goal default.
func SplitFor(p models.UserProfile) models.MacroSplit {
	if s := p.Split; s != nil && s.Carb >= 0 && s.Protein >= 0 && s.Fat >= 0 &&
		math.Abs(s.Carb+s.Protein+s.Fat-1) < 0.01 {
		return *s
	}
	if s, ok := goalSplits[strings.ToLower(p.Goal)]; ok {
		return s
	}
	return DefaultSplit
}

// MacroTargetsFor computes gram targets for a profile. Explicit grams win;
// otherwise the split is applied to the target calories (or an estimate
// from body attributes when no target is set).
func MacroTargetsFor(p models.UserProfile) models.MacroTargets {
	if p.Macros != nil && !p.Macros.IsZero() {
		return *p.Macros
	}
	kcal := p.TargetCalories
	if kcal <= 0 {
		est, ok := EstimateDailyCalories(p)
		if !ok {
			return models.MacroTargets{}
		}
		kcal = est
	}
	split := SplitFor(p)
	return models.MacroTargets{
		Carb:    round1(float64(kcal) * split.Carb / kcalPerGramCarb),
		Protein: round1(float64(kcal) * split.Protein / kcalPerGramProtein),
		Fat:     round1(float64(kcal) * split.Fat / kcalPerGramFat),
	}
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
