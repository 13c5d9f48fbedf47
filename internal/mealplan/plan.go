// Package mealplan builds and maintains the four-week meal plan: generation,
// per-cell swaps and rerolls, lock handling and duplicate repair.
//
// All operations are synchronous and work on values. A PlanContext is built
// for each operation and a new one is returned, so callers never observe a
// partially applied change.
package mealplan

import (
	"errors"
	"fmt"

	"wellness-meal-planner/internal/recipe"
)

const (
	Weeks       = 4
	DaysPerWeek = 7
	TotalDays   = Weeks * DaysPerWeek

	// UsageCap is the soft limit of occurrences per recipe across the whole plan.
	UsageCap = 2
)

var (
	ErrInvalidCell   = errors.New("cell out of range")
	ErrLocked        = errors.New("cell is locked")
	ErrNoReplacement = errors.New("no valid replacement")
)

// DayPlan holds one recipe id per meal type. An empty id only appears when
// the pool for that meal type was empty.
type DayPlan struct {
	Breakfast string `json:"breakfast"`
	Lunch     string `json:"lunch"`
	Snack     string `json:"snack"`
	Dinner    string `json:"dinner"`
}

// Get returns the recipe id for m.
func (d DayPlan) Get(m recipe.MealType) string {
	switch m {
	case recipe.Breakfast:
		return d.Breakfast
	case recipe.Lunch:
		return d.Lunch
	case recipe.Snack:
		return d.Snack
	case recipe.Dinner:
		return d.Dinner
	}
	return ""
}

// Set assigns id to the slot for m.
func (d *DayPlan) Set(m recipe.MealType, id string) {
	switch m {
	case recipe.Breakfast:
		d.Breakfast = id
	case recipe.Lunch:
		d.Lunch = id
	case recipe.Snack:
		d.Snack = id
	case recipe.Dinner:
		d.Dinner = id
	}
}

// Plan is the full 4 x 7 grid of days.
type Plan [Weeks][DaysPerWeek]DayPlan

// At returns the recipe id in cell c.
func (p *Plan) At(c Cell) string {
	return p[c.Week][c.Day].Get(c.Meal)
}

func (p *Plan) set(c Cell, id string) {
	p[c.Week][c.Day].Set(c.Meal, id)
}

// dayAt addresses a day by its chronological index 0..TotalDays-1.
func (p *Plan) dayAt(abs int) DayPlan {
	return p[abs/DaysPerWeek][abs%DaysPerWeek]
}

// DayLocks has one flag per meal type, indexed like recipe.MealTypes.
type DayLocks [4]bool

// LockGrid marks cells that no automatic operation may change.
type LockGrid [Weeks][DaysPerWeek]DayLocks

// Locked reports whether cell c is protected.
func (g *LockGrid) Locked(c Cell) bool {
	return g[c.Week][c.Day][c.Meal.Index()]
}

// Cell addresses one meal of one day.
type Cell struct {
	Week int             `json:"week"`
	Day  int             `json:"day"`
	Meal recipe.MealType `json:"meal"`
}

func (c Cell) String() string {
	return fmt.Sprintf("week %d day %d %s", c.Week, c.Day, c.Meal)
}

// Validate checks that c points inside the grid.
func (c Cell) Validate() error {
	if err := validateDay(c.Week, c.Day); err != nil {
		return err
	}
	if !c.Meal.Valid() {
		return fmt.Errorf("%w: meal type %q", ErrInvalidCell, c.Meal)
	}
	return nil
}

func (c Cell) absDay() int {
	return c.Week*DaysPerWeek + c.Day
}

func validateWeek(week int) error {
	if week < 0 || week >= Weeks {
		return fmt.Errorf("%w: week %d (expected 0-%d)", ErrInvalidCell, week, Weeks-1)
	}
	return nil
}

func validateDay(week, day int) error {
	if err := validateWeek(week); err != nil {
		return err
	}
	if day < 0 || day >= DaysPerWeek {
		return fmt.Errorf("%w: day %d (expected 0-%d)", ErrInvalidCell, day, DaysPerWeek-1)
	}
	return nil
}

// Usage counts occurrences of each recipe id across a plan.
type Usage map[string]int

// CountUsage tallies every non-empty cell of p.
func CountUsage(p Plan) Usage {
	u := Usage{}
	for w := range p {
		for d := range p[w] {
			for _, m := range recipe.MealTypes {
				if id := p[w][d].Get(m); id != "" {
					u[id]++
				}
			}
		}
	}
	return u
}

// Clone returns an independent copy.
func (u Usage) Clone() Usage {
	c := make(Usage, len(u))
	for k, v := range u {
		c[k] = v
	}
	return c
}

// Overused lists the ids whose count exceeds UsageCap.
func (u Usage) Overused() map[string]bool {
	over := map[string]bool{}
	for id, n := range u {
		if n > UsageCap {
			over[id] = true
		}
	}
	return over
}

func (u Usage) move(from, to string) {
	if from != "" {
		u[from]--
		if u[from] <= 0 {
			delete(u, from)
		}
	}
	if to != "" {
		u[to]++
	}
}

// PlanContext is the state one operation works on.
type PlanContext struct {
	Plan  Plan
	Locks LockGrid
	Usage Usage
}

// NewPlanContext derives usage counts from plan.
func NewPlanContext(plan Plan, locks LockGrid) PlanContext {
	return PlanContext{Plan: plan, Locks: locks, Usage: CountUsage(plan)}
}

// clone copies the context; the arrays copy by value, the map needs a deep copy.
func (pc PlanContext) clone() PlanContext {
	pc.Usage = pc.Usage.Clone()
	return pc
}

// replace writes id into c and keeps usage in step. It returns the old id.
func (pc *PlanContext) replace(c Cell, id string) string {
	old := pc.Plan.At(c)
	pc.Plan.set(c, id)
	pc.Usage.move(old, id)
	return old
}
