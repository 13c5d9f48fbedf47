package mealplan

import "wellness-meal-planner/internal/recipe"

// Repaired is the output of a duplicate-repair pass.
type Repaired struct {
	Plan      Plan
	Fallbacks int
	Fixed     int
}

// Repair replaces excess occurrences of recipes used more than UsageCap
// times. Locked cells are never touched. Cells are scanned week, day, then
// meal type; a cell is only replaced while its recipe is still over the cap.
// A replacement never pushes another recipe over the cap, so a second pass
// over the result fixes nothing.
func (e *Engine) Repair(plan Plan, locks LockGrid) Repaired {
	usage := CountUsage(plan)
	overused := usage.Overused()
	if len(overused) == 0 {
		return Repaired{Plan: plan}
	}

	pc := PlanContext{Plan: plan, Locks: locks, Usage: usage}
	out := Repaired{}
	for w := 0; w < Weeks; w++ {
		for d := 0; d < DaysPerWeek; d++ {
			for _, m := range recipe.MealTypes {
				c := Cell{Week: w, Day: d, Meal: m}
				id := pc.Plan.At(c)
				if !overused[id] || pc.Locks.Locked(c) || pc.Usage[id] <= UsageCap {
					continue
				}
				r, _, err := e.findReplacement(&pc.Plan, pc.Usage, c, policyRepair)
				if err != nil {
					out.Fallbacks++
					continue
				}
				pc.replace(c, r.ID)
				out.Fixed++
			}
		}
	}
	out.Plan = pc.Plan
	return out
}
