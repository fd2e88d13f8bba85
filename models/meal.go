package models

import (
	"fmt"
	"strings"
)

// DateLayout is the ISO calendar date used for every diary key.
const DateLayout = "2006-01-02"

// MealType is one of the four fixed meal buckets of a day.
type MealType string

const (
	Breakfast MealType = "breakfast"
	Lunch     MealType = "lunch"
	Dinner    MealType = "dinner"
	Snacks    MealType = "snacks"
)

// MealTypes lists every meal bucket in display order.
var MealTypes = []MealType{Breakfast, Lunch, Dinner, Snacks}

func (m MealType) Valid() bool {
	switch m {
	case Breakfast, Lunch, Dinner, Snacks:
		return true
	}
	return false
}

// ParseMealType accepts the bucket name in any case ("Lunch", "LUNCH").
func ParseMealType(s string) (MealType, error) {
	mt := MealType(strings.ToLower(strings.TrimSpace(s)))
	if !mt.Valid() {
		return "", fmt.Errorf("unknown meal type %q", s)
	}
	return mt, nil
}

// DailyMeals holds the four meal buckets of one date.
// Build it with NewDailyMeals so every bucket is present.
type DailyMeals struct {
	Date  string              `json:"date"`
	Meals map[MealType][]Dish `json:"meals"`
}

func NewDailyMeals(date string) DailyMeals {
	dm := DailyMeals{Date: date, Meals: make(map[MealType][]Dish, len(MealTypes))}
	for _, mt := range MealTypes {
		dm.Meals[mt] = []Dish{}
	}
	return dm
}

// Dishes returns the bucket for mt (never nil for a value built by NewDailyMeals).
func (d DailyMeals) Dishes(mt MealType) []Dish {
	return d.Meals[mt]
}

func (d DailyMeals) SetDishes(mt MealType, dishes []Dish) {
	if dishes == nil {
		dishes = []Dish{}
	}
	d.Meals[mt] = dishes
}

// AllDishes concatenates the buckets in MealTypes order.
func (d DailyMeals) AllDishes() []Dish {
	var all []Dish
	for _, mt := range MealTypes {
		all = append(all, d.Meals[mt]...)
	}
	return all
}
