package utils

import (
	"errors"
	"math"
	"strings"

	"nutridiary/models"
)

// activityMultipliers maps a profile activity level to its TDEE multiplier.
var activityMultipliers = map[string]float64{
	"sedentary":   1.2,
	"light":       1.375,
	"moderate":    1.55,
	"active":      1.725,
	"very_active": 1.9,
}

// goalAdjustments is the daily kcal offset applied on top of TDEE.
var goalAdjustments = map[string]float64{
	"lose":     -500,
	"maintain": 0,
	"gain":     300,
}

// CalculateBMI expects height in centimeters and weight in kilograms.
func CalculateBMI(heightCm, weightKg float64) (float64, error) {
	if heightCm <= 0 || weightKg <= 0 {
		return 0, errors.New("height and weight must be positive")
	}
	if heightCm < 50 || heightCm > 250 || weightKg < 10 || weightKg > 400 {
		return 0, errors.New("height/weight out of plausible range")
	}
	h := heightCm / 100.0
	return weightKg / (h * h), nil
}

// BMR is the Mifflin-St Jeor basal metabolic rate in kcal/day.
func BMR(sex string, age int, heightCm, weightKg float64) float64 {
	bmr := 10*weightKg + 6.25*heightCm - 5*float64(age)
	if strings.EqualFold(sex, "male") {
		return bmr + 5
	}
	return bmr - 161
}

// EstimateDailyCalories derives a calorie budget from body attributes.
// ok is false when any attribute is missing or implausible.
func EstimateDailyCalories(p models.UserProfile) (int, bool) {
	if p.Sex == "" || p.Age <= 0 || p.Age > 130 {
		return 0, false
	}
	if _, err := CalculateBMI(p.HeightCm, p.WeightKg); err != nil {
		return 0, false
	}
	mult, found := activityMultipliers[strings.ToLower(p.ActivityLevel)]
	if !found {
		return 0, false
	}
	kcal := BMR(p.Sex, p.Age, p.HeightCm, p.WeightKg)*mult + goalAdjustments[strings.ToLower(p.Goal)]
	if kcal < 0 {
		return 0, false
	}
	return int(math.Round(kcal)), true
}
