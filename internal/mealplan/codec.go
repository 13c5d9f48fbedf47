package mealplan

import (
	"encoding/json"
	"errors"
	"fmt"

	"wellness-meal-planner/internal/recipe"
)

// ErrMalformed marks persisted data that does not have the plan shape.
var ErrMalformed = errors.New("malformed plan data")

// EncodePlan serialises p as a 4 x 7 array of day objects.
func EncodePlan(p Plan) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal plan: %w", err)
	}
	return data, nil
}

// storedDay tells a missing or null slot apart from an empty id.
type storedDay struct {
	Breakfast *string `json:"breakfast"`
	Lunch     *string `json:"lunch"`
	Snack     *string `json:"snack"`
	Dinner    *string `json:"dinner"`
}

func (s *storedDay) dayPlan() (DayPlan, bool) {
	if s == nil || s.Breakfast == nil || s.Lunch == nil || s.Snack == nil || s.Dinner == nil {
		return DayPlan{}, false
	}
	return DayPlan{Breakfast: *s.Breakfast, Lunch: *s.Lunch, Snack: *s.Snack, Dinner: *s.Dinner}, true
}

// DecodePlan parses a persisted plan. Wrong types or lengths, null days and
// days missing a meal slot yield ErrMalformed.
func DecodePlan(data []byte) (Plan, error) {
	var raw [][]*storedDay
	if err := json.Unmarshal(data, &raw); err != nil {
		return Plan{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(raw) != Weeks {
		return Plan{}, fmt.Errorf("%w: expected %d weeks, got %d", ErrMalformed, Weeks, len(raw))
	}

	var p Plan
	for w, week := range raw {
		if len(week) != DaysPerWeek {
			return Plan{}, fmt.Errorf("%w: week %d has %d days", ErrMalformed, w, len(week))
		}
		for d, day := range week {
			dp, ok := day.dayPlan()
			if !ok {
				return Plan{}, fmt.Errorf("%w: week %d day %d is missing a meal slot", ErrMalformed, w, d)
			}
			p[w][d] = dp
		}
	}
	return p, nil
}

// EncodeLocks serialises g as a 4 x 7 x 4 boolean array.
func EncodeLocks(g LockGrid) ([]byte, error) {
	data, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal locks: %w", err)
	}
	return data, nil
}

// DecodeLocks parses a persisted lock grid. Wrong types or lengths yield ErrMalformed.
func DecodeLocks(data []byte) (LockGrid, error) {
	var raw [][][]bool
	if err := json.Unmarshal(data, &raw); err != nil {
		return LockGrid{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(raw) != Weeks {
		return LockGrid{}, fmt.Errorf("%w: expected %d weeks of locks, got %d", ErrMalformed, Weeks, len(raw))
	}

	var g LockGrid
	for w, week := range raw {
		if len(week) != DaysPerWeek {
			return LockGrid{}, fmt.Errorf("%w: lock week %d has %d days", ErrMalformed, w, len(week))
		}
		for d, day := range week {
			if len(day) != len(recipe.MealTypes) {
				return LockGrid{}, fmt.Errorf("%w: lock week %d day %d has %d flags", ErrMalformed, w, d, len(day))
			}
			copy(g[w][d][:], day)
		}
	}
	return g, nil
}
