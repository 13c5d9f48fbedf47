package mealplan

import "wellness-meal-planner/internal/recipe"

// tier is one step of the candidate pipeline. Tiers are tried in order and
// the first one that keeps at least one recipe wins.
type tier struct {
	name     string
	fallback bool
	keep     func(r recipe.Recipe) bool
}

func selectCandidates(pool []recipe.Recipe, tiers []tier) ([]recipe.Recipe, tier, bool) {
	for _, t := range tiers {
		var out []recipe.Recipe
		for _, r := range pool {
			if t.keep(r) {
				out = append(out, r)
			}
		}
		if len(out) > 0 {
			return out, t, true
		}
	}
	return nil, tier{}, false
}

func both(a, b func(recipe.Recipe) bool) func(recipe.Recipe) bool {
	return func(r recipe.Recipe) bool { return a(r) && b(r) }
}
