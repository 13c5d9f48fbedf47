package shopping

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"wellness-meal-planner/internal/mealplan"
	"wellness-meal-planner/internal/recipe"
)

// Build collects the ingredients of every recipe planned in week, days
// fromDay through toDay inclusive. Items are sorted and de-duplicated;
// ids the catalog does not know are skipped.
func Build(catalog *recipe.Catalog, plan mealplan.Plan, week, fromDay, toDay int) (ShoppingList, error) {
	if week < 0 || week >= mealplan.Weeks {
		return ShoppingList{}, fmt.Errorf("%w: week %d", mealplan.ErrInvalidCell, week)
	}
	if fromDay < 0 || toDay >= mealplan.DaysPerWeek || fromDay > toDay {
		return ShoppingList{}, fmt.Errorf("%w: days %d-%d", mealplan.ErrInvalidCell, fromDay, toDay)
	}

	seen := map[string]bool{}
	items := []string{}
	for d := fromDay; d <= toDay; d++ {
		for _, m := range recipe.MealTypes {
			r, ok := catalog.Get(plan[week][d].Get(m))
			if !ok {
				continue
			}
			for _, ing := range r.Ingredients {
				ing = strings.TrimSpace(ing)
				if ing == "" || seen[ing] {
					continue
				}
				seen[ing] = true
				items = append(items, ing)
			}
		}
	}
	slices.Sort(items)

	return ShoppingList{
		Week:      week,
		FromDay:   fromDay,
		ToDay:     toDay,
		Items:     items,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// BuildWeek is Build over all seven days.
func BuildWeek(catalog *recipe.Catalog, plan mealplan.Plan, week int) (ShoppingList, error) {
	return Build(catalog, plan, week, 0, mealplan.DaysPerWeek-1)
}
