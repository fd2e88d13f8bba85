package models

import "fmt"

type StatisticsPeriod string

const (
	PeriodToday     StatisticsPeriod = "today"
	PeriodYesterday StatisticsPeriod = "yesterday"
	PeriodWeek      StatisticsPeriod = "week"
)

func ParseStatisticsPeriod(s string) (StatisticsPeriod, error) {
	switch p := StatisticsPeriod(s); p {
	case PeriodToday, PeriodYesterday, PeriodWeek:
		return p, nil
	}
	return "", fmt.Errorf("unknown statistics period %q", s)
}

// MealStatistics is one meal bucket's share of the day.
type MealStatistics struct {
	MealType   MealType      `json:"meal_type"`
	Nutrition  NutritionData `json:"nutrition"`
	Percentage float64       `json:"percentage"` // 0..1 of the day's calories
}

type DailyNutritionStatistics struct {
	Date           string           `json:"date"`
	TotalCalories  int              `json:"total_calories"`
	TargetCalories int              `json:"target_calories"`
	Progress       float64          `json:"progress"` // clamped to 0..1
	Nutrition      NutritionData    `json:"nutrition"`
	MealStatistics []MealStatistics `json:"meal_statistics"`
}

type DayStatistics struct {
	Date     string  `json:"date"`
	Calories int     `json:"calories"`
	Progress float64 `json:"progress"`
}

// WeeklyNutritionStatistics always carries seven days in date order.
type WeeklyNutritionStatistics struct {
	TargetCalories  int             `json:"target_calories"`
	WeekStart       string          `json:"week_start"`
	Days            []DayStatistics `json:"days"`
	TotalCalories   int             `json:"total_calories"`
	AverageCalories float64         `json:"average_calories"`
}

// PeriodStatistics carries exactly one of Daily or Weekly.
type PeriodStatistics struct {
	Period StatisticsPeriod           `json:"period"`
	Daily  *DailyNutritionStatistics  `json:"daily,omitempty"`
	Weekly *WeeklyNutritionStatistics `json:"weekly,omitempty"`
}
