package mealplan

import (
	"fmt"

	"wellness-meal-planner/internal/recipe"
)

// replacementPolicy selects which tiers findReplacement may use.
type replacementPolicy int

const (
	// policySwap may relax the cap and the weekly uniqueness as a last resort.
	policySwap replacementPolicy = iota
	// policyRepair never picks a recipe that would go over the cap.
	policyRepair
)

// findReplacement picks a new recipe for cell c. The current recipe is
// removed virtually first, so it neither counts towards the week nor the cap,
// and it is never picked again. The bool result is true for a fallback pick.
func (e *Engine) findReplacement(p *Plan, usage Usage, c Cell, policy replacementPolicy) (recipe.Recipe, bool, error) {
	current := p.At(c)
	pool := e.catalog.ByMealType(c.Meal)

	weekUsed := map[string]bool{}
	for d := 0; d < DaysPerWeek; d++ {
		if d == c.Day {
			continue
		}
		if id := p[c.Week][d].Get(c.Meal); id != "" {
			weekUsed[id] = true
		}
	}

	prev := e.prevCategory(p, c.absDay(), c.Meal)
	other := func(r recipe.Recipe) bool { return r.ID != current }
	freshThisWeek := func(r recipe.Recipe) bool { return r.ID != current && !weekUsed[r.ID] }
	withinCap := func(r recipe.Recipe) bool { return usage[r.ID] < UsageCap }
	varied := func(r recipe.Recipe) bool { return Compatible(prev, e.categoryOf(r.ID)) }

	var tiers []tier
	switch policy {
	case policyRepair:
		tiers = []tier{
			{name: "within cap, varied", keep: both(both(freshThisWeek, withinCap), varied)},
			{name: "within cap", keep: both(freshThisWeek, withinCap)},
			{name: "within cap, repeated this week", fallback: true, keep: both(other, withinCap)},
		}
	default:
		tiers = []tier{
			{name: "within cap, varied", keep: both(both(freshThisWeek, withinCap), varied)},
			{name: "within cap", keep: both(freshThisWeek, withinCap)},
			{name: "not used this week", fallback: true, keep: freshThisWeek},
			{name: "any other", fallback: true, keep: other},
		}
	}

	candidates, t, ok := selectCandidates(pool, tiers)
	if !ok {
		return recipe.Recipe{}, false, fmt.Errorf("%w for %s", ErrNoReplacement, c)
	}
	return candidates[e.picker.Pick(len(candidates))], t.fallback, nil
}

// ToggleLock flips the lock flag of c. No recipe changes.
func ToggleLock(pc PlanContext, c Cell) (PlanContext, error) {
	if err := c.Validate(); err != nil {
		return pc, err
	}
	next := pc.clone()
	i := c.Meal.Index()
	next.Locks[c.Week][c.Day][i] = !next.Locks[c.Week][c.Day][i]
	return next, nil
}

// SwapResult describes a single-cell swap.
type SwapResult struct {
	Context  PlanContext
	Previous string
	Current  string
	Fallback bool
}

// Swap replaces the recipe in one unlocked cell. On failure the returned
// context is the unchanged input.
func (e *Engine) Swap(pc PlanContext, c Cell) (SwapResult, error) {
	if err := c.Validate(); err != nil {
		return SwapResult{Context: pc}, err
	}
	if pc.Locks.Locked(c) {
		return SwapResult{Context: pc}, fmt.Errorf("%w: %s", ErrLocked, c)
	}

	next := pc.clone()
	r, fallback, err := e.findReplacement(&next.Plan, next.Usage, c, policySwap)
	if err != nil {
		return SwapResult{Context: pc}, err
	}
	prev := next.replace(c, r.ID)

	return SwapResult{Context: next, Previous: prev, Current: r.ID, Fallback: fallback}, nil
}

// RerollResult summarises a day or week reroll.
type RerollResult struct {
	Context   PlanContext
	Changed   int
	Fallbacks int
	// Failed counts unlocked cells left unchanged for lack of a replacement.
	Failed int
	Locked int
}

// RerollDay swaps every unlocked meal of one day. Usage is updated after each
// meal so later picks see earlier ones.
func (e *Engine) RerollDay(pc PlanContext, week, day int) (RerollResult, error) {
	if err := validateDay(week, day); err != nil {
		return RerollResult{Context: pc}, err
	}
	res := RerollResult{Context: pc.clone()}
	e.rerollDay(&res, week, day)
	return res, nil
}

// RerollWeek rerolls all seven days of week in order, sharing one usage map.
func (e *Engine) RerollWeek(pc PlanContext, week int) (RerollResult, error) {
	if err := validateWeek(week); err != nil {
		return RerollResult{Context: pc}, err
	}
	res := RerollResult{Context: pc.clone()}
	for d := 0; d < DaysPerWeek; d++ {
		e.rerollDay(&res, week, d)
	}
	return res, nil
}

func (e *Engine) rerollDay(res *RerollResult, week, day int) {
	for _, m := range recipe.MealTypes {
		c := Cell{Week: week, Day: day, Meal: m}
		if res.Context.Locks.Locked(c) {
			res.Locked++
			continue
		}
		r, fallback, err := e.findReplacement(&res.Context.Plan, res.Context.Usage, c, policySwap)
		if err != nil {
			res.Failed++
			continue
		}
		res.Context.replace(c, r.ID)
		res.Changed++
		if fallback {
			res.Fallbacks++
		}
	}
}
