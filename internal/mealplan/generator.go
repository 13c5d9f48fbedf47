package mealplan

import (
	"log"
	"time"

	"wellness-meal-planner/internal/recipe"
)

// Engine runs plan operations against one catalog.
type Engine struct {
	catalog    *recipe.Catalog
	rules      CategoryRules
	picker     Picker
	logger     *log.Logger
	categories map[string]Category
}

// Option configures an Engine.
type Option func(*Engine)

// WithPicker sets the random source used to break ties.
func WithPicker(p Picker) Option {
	return func(e *Engine) { e.picker = p }
}

// WithRules replaces the category keyword table.
func WithRules(rules CategoryRules) Option {
	return func(e *Engine) { e.rules = rules }
}

// WithLogger sets the logger for data-integrity warnings.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates an Engine. Categories are computed once per recipe.
func NewEngine(catalog *recipe.Catalog, opts ...Option) *Engine {
	e := &Engine{
		catalog: catalog,
		rules:   DefaultCategoryRules(),
		picker:  NewRandomPicker(uint64(time.Now().UnixNano())),
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.categories = make(map[string]Category, catalog.Len())
	for _, m := range recipe.MealTypes {
		for _, r := range catalog.ByMealType(m) {
			e.categories[r.ID] = e.rules.Categorize(&r, m)
		}
	}
	return e
}

// Catalog returns the catalog the engine draws from.
func (e *Engine) Catalog() *recipe.Catalog {
	return e.catalog
}

// categoryOf returns the category of a recipe id; unknown or empty ids are other.
func (e *Engine) categoryOf(id string) Category {
	if c, ok := e.categories[id]; ok {
		return c
	}
	return CategoryOther
}

// prevCategory is the category of the same meal on the chronologically
// previous day, or "" on the first day of the plan.
func (e *Engine) prevCategory(p *Plan, abs int, m recipe.MealType) Category {
	if abs == 0 {
		return ""
	}
	return e.categoryOf(p.dayAt(abs - 1).Get(m))
}

// Generated is the output of a full generation.
type Generated struct {
	Plan      Plan
	Locks     LockGrid
	Fallbacks int
}

// Generate builds a complete plan with an all-unlocked grid. Days are filled
// in chronological order, meal types in recipe.MealTypes order.
func (e *Engine) Generate() Generated {
	var out Generated
	usage := Usage{}

	for w := 0; w < Weeks; w++ {
		usedThisWeek := map[string]bool{}
		for d := 0; d < DaysPerWeek; d++ {
			abs := w*DaysPerWeek + d
			for _, m := range recipe.MealTypes {
				pool := e.catalog.ByMealType(m)
				if len(pool) == 0 {
					e.logger.Printf("Warning: catalog %s has no %s recipes, leaving week %d day %d empty", e.catalog.Version(), m, w, d)
					out.Fallbacks++
					continue
				}

				prev := e.prevCategory(&out.Plan, abs, m)
				tiers := generationTiers(usage, usedThisWeek, func(r recipe.Recipe) bool {
					return Compatible(prev, e.categoryOf(r.ID))
				})

				candidates, t, _ := selectCandidates(pool, tiers)
				choice := candidates[e.picker.Pick(len(candidates))]
				if t.fallback {
					out.Fallbacks++
				}

				out.Plan[w][d].Set(m, choice.ID)
				usage[choice.ID]++
				usedThisWeek[choice.ID] = true
			}
		}
	}
	return out
}

func generationTiers(usage Usage, usedThisWeek map[string]bool, varied func(recipe.Recipe) bool) []tier {
	usedExactly := func(n int) func(recipe.Recipe) bool {
		return func(r recipe.Recipe) bool { return usage[r.ID] == n && !usedThisWeek[r.ID] }
	}
	return []tier{
		{name: "unused, varied", keep: both(usedExactly(0), varied)},
		{name: "unused", keep: usedExactly(0)},
		{name: "used once, varied", keep: both(usedExactly(1), varied)},
		{name: "used once", keep: usedExactly(1)},
		{name: "not used this week", fallback: true, keep: func(r recipe.Recipe) bool { return !usedThisWeek[r.ID] }},
		{name: "any", fallback: true, keep: func(recipe.Recipe) bool { return true }},
	}
}
