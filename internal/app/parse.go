package app

import (
	"fmt"
	"strconv"
	"strings"

	"wellness-meal-planner/internal/mealplan"
	"wellness-meal-planner/internal/recipe"
)

var dayNames = []string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}

// ParseWeek reads a 1-based week number.
func ParseWeek(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > mealplan.Weeks {
		return 0, fmt.Errorf("%w: week must be 1-%d, got %q", mealplan.ErrInvalidCell, mealplan.Weeks, s)
	}
	return n - 1, nil
}

// ParseDay reads a 1-based day number or a weekday name such as "tue" or
// "Tuesday".
func ParseDay(s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > mealplan.DaysPerWeek {
			return 0, fmt.Errorf("%w: day must be 1-%d, got %d", mealplan.ErrInvalidCell, mealplan.DaysPerWeek, n)
		}
		return n - 1, nil
	}
	if len(s) >= 3 {
		for i, name := range dayNames {
			if strings.HasPrefix(s, name) {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: unknown day %q", mealplan.ErrInvalidCell, s)
}

// ParseCell reads "<week> <day> <meal>", for example "2 fri dinner".
func ParseCell(args []string) (mealplan.Cell, error) {
	if len(args) != 3 {
		return mealplan.Cell{}, fmt.Errorf("expected <week> <day> <meal>, got %d arguments", len(args))
	}
	w, err := ParseWeek(args[0])
	if err != nil {
		return mealplan.Cell{}, err
	}
	d, err := ParseDay(args[1])
	if err != nil {
		return mealplan.Cell{}, err
	}
	m, err := recipe.ParseMealType(args[2])
	if err != nil {
		return mealplan.Cell{}, fmt.Errorf("%w: %v", mealplan.ErrInvalidCell, err)
	}
	return mealplan.Cell{Week: w, Day: d, Meal: m}, nil
}
