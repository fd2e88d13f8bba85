package utils

import "nutridiary/models"

// Aggregate sums calories and macros over dishes. An empty list yields zeros.
func Aggregate(dishes []models.Dish) models.NutritionData {
	var n models.NutritionData
	for _, d := range dishes {
		n.Calories += d.Kcal
		n.Carb += d.Carb
		n.Protein += d.Protein
		n.Fat += d.Fat
	}
	return n
}

// AggregateMeals aggregates each of the four buckets independently.
func AggregateMeals(dm models.DailyMeals) map[models.MealType]models.NutritionData {
	out := make(map[models.MealType]models.NutritionData, len(models.MealTypes))
	for _, mt := range models.MealTypes {
		out[mt] = Aggregate(dm.Dishes(mt))
	}
	return out
}

// AggregateDay aggregates all buckets of the day together.
func AggregateDay(dm models.DailyMeals) models.NutritionData {
	return Aggregate(dm.AllDishes())
}

// Percentage is part/total, or 0 when total is not positive.
func Percentage(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total)
}

// ClampedProgress is consumed/target clamped to 0..1; 0 when target <= 0.
func ClampedProgress(consumed, target int) float64 {
	if target <= 0 {
		return 0
	}
	p := float64(consumed) / float64(target)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
