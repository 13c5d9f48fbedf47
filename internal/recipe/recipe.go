package recipe

import (
	"fmt"
	"strings"
)

// MealType tags a recipe with the slot of the day it is meant for.
type MealType string

const (
	Breakfast MealType = "breakfast"
	Lunch     MealType = "lunch"
	Snack     MealType = "snack"
	Dinner    MealType = "dinner"
)

// MealTypes is the fixed slot order used for generation and for lock indexes.
var MealTypes = []MealType{Breakfast, Lunch, Snack, Dinner}

// Index returns the position of m in MealTypes, or -1.
func (m MealType) Index() int {
	for i, t := range MealTypes {
		if t == m {
			return i
		}
	}
	return -1
}

// Valid reports whether m is one of the known meal types.
func (m MealType) Valid() bool {
	return m.Index() >= 0
}

// ParseMealType accepts a meal type name in any case.
func ParseMealType(s string) (MealType, error) {
	m := MealType(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("unknown meal type %q (expected breakfast, lunch, snack or dinner)", s)
	}
	return m, nil
}

// Recipe is a single catalog entry. Recipes are never mutated at runtime.
type Recipe struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	MealType     MealType `json:"mealType"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	PrepTimeMin  int      `json:"prepTimeMin"`
	CookTimeMin  int      `json:"cookTimeMin"`
	Servings     int      `json:"servings"`
	Tip          string   `json:"tips_variation,omitempty"`
	Source       string   `json:"source,omitempty"`
}

// TotalTimeMin is the prep and cook time combined.
func (r Recipe) TotalTimeMin() int {
	return r.PrepTimeMin + r.CookTimeMin
}

func (r Recipe) validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("recipe %q has an empty id", r.Title)
	}
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("recipe %s has an empty title", r.ID)
	}
	if !r.MealType.Valid() {
		return fmt.Errorf("recipe %s has unknown meal type %q", r.ID, r.MealType)
	}
	return nil
}
