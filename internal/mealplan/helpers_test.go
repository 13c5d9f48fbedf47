package mealplan

import (
	"io"
	"log"
	"testing"

	"wellness-meal-planner/internal/recipe"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func newTestCatalog(t *testing.T, recipes ...recipe.Recipe) *recipe.Catalog {
	t.Helper()
	c, err := recipe.New("test-1", recipes)
	if err != nil {
		t.Fatalf("Failed to build catalog: %v", err)
	}
	return c
}

func defaultCatalog(t *testing.T) *recipe.Catalog {
	t.Helper()
	c, err := recipe.LoadDefault()
	if err != nil {
		t.Fatalf("Failed to load default catalog: %v", err)
	}
	return c
}

// catalogWithout returns the default catalog minus one meal type, plus extra.
func catalogWithout(t *testing.T, drop recipe.MealType, extra ...recipe.Recipe) *recipe.Catalog {
	t.Helper()
	base := defaultCatalog(t)
	var all []recipe.Recipe
	for _, m := range recipe.MealTypes {
		if m == drop {
			continue
		}
		all = append(all, base.ByMealType(m)...)
	}
	return newTestCatalog(t, append(all, extra...)...)
}

func newTestEngine(c *recipe.Catalog, seed uint64) *Engine {
	return NewEngine(c, WithPicker(NewRandomPicker(seed)), WithLogger(quietLogger()))
}

func dinner(id, title string) recipe.Recipe {
	return recipe.Recipe{ID: id, Title: title, MealType: recipe.Dinner}
}

func countWeekDuplicates(p Plan, w int, m recipe.MealType) int {
	seen := map[string]bool{}
	dups := 0
	for d := 0; d < DaysPerWeek; d++ {
		id := p[w][d].Get(m)
		if seen[id] {
			dups++
		}
		seen[id] = true
	}
	return dups
}
