package models

import (
	"fmt"

	"github.com/google/uuid"
)

// Unit is the measurement unit of a dish amount.
type Unit string

const (
	Gram       Unit = "gram"
	Milliliter Unit = "milliliter"
	Liter      Unit = "liter"
	Piece      Unit = "piece"
	Kilogram   Unit = "kilogram"
)

func (u Unit) Valid() bool {
	switch u {
	case Gram, Milliliter, Liter, Piece, Kilogram:
		return true
	}
	return false
}

// Dish is one logged food item. The ID is unique inside its meal bucket.
type Dish struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Image   string  `json:"image,omitempty"` // object URL or local reference
	Kcal    int     `json:"kcal"`
	Carb    float64 `json:"carb"`    // grams
	Protein float64 `json:"protein"` // grams
	Fat     float64 `json:"fat"`     // grams
	Amount  float64 `json:"amount"`
	Unit    Unit    `json:"unit"`
}

// NewDish assigns a fresh id before the dish is persisted.
func NewDish(title string, kcal int, carb, protein, fat, amount float64, unit Unit) Dish {
	return Dish{
		ID:      uuid.NewString(),
		Title:   title,
		Kcal:    kcal,
		Carb:    carb,
		Protein: protein,
		Fat:     fat,
		Amount:  amount,
		Unit:    unit,
	}
}

// Validate reports the first field that breaks the dish shape.
func (d Dish) Validate() error {
	switch {
	case d.ID == "":
		return fmt.Errorf("dish id is required")
	case d.Kcal < 0:
		return fmt.Errorf("dish %s: kcal must be >= 0", d.ID)
	case d.Carb < 0 || d.Protein < 0 || d.Fat < 0:
		return fmt.Errorf("dish %s: macros must be >= 0", d.ID)
	case d.Amount < 0:
		return fmt.Errorf("dish %s: amount must be >= 0", d.ID)
	case !d.Unit.Valid():
		return fmt.Errorf("dish %s: unknown unit %q", d.ID, d.Unit)
	}
	return nil
}
