package mealplan

import (
	"testing"

	"wellness-meal-planner/internal/recipe"
)

func TestRepair_NoOp(t *testing.T) {
	e, pc := generatedContext(t, 13)
	out := e.Repair(pc.Plan, pc.Locks)
	if out.Fixed != 0 || out.Fallbacks != 0 {
		t.Errorf("Expected zero counts, got fixed=%d fallbacks=%d", out.Fixed, out.Fallbacks)
	}
	if out.Plan != pc.Plan {
		t.Error("Expected the plan to be returned unchanged")
	}
}

func TestRepair_OverusedRecipe(t *testing.T) {
	e, pc := generatedContext(t, 17)
	x := pc.Plan[0][0].Dinner
	for _, wd := range [][2]int{{0, 3}, {1, 1}, {2, 4}, {3, 6}} {
		pc.Plan[wd[0]][wd[1]].Dinner = x
	}
	usage := CountUsage(pc.Plan)
	if usage[x] < 5 {
		t.Fatalf("Expected X at least 5 times before repair, got %d", usage[x])
	}

	out := e.Repair(pc.Plan, pc.Locks)
	after := CountUsage(out.Plan)
	if after[x] > UsageCap {
		t.Errorf("Expected usage of %s <= %d after repair, got %d", x, UsageCap, after[x])
	}
	if out.Fixed != usage[x]-UsageCap {
		t.Errorf("Expected %d fixes, got %d", usage[x]-UsageCap, out.Fixed)
	}
	for id, n := range after {
		if n > UsageCap {
			t.Errorf("Expected no recipe over the cap, %s has %d", id, n)
		}
	}
}

func TestRepair_HonoursLocks(t *testing.T) {
	e, pc := generatedContext(t, 19)
	x := pc.Plan[0][0].Lunch
	cells := []Cell{
		{Week: 0, Day: 2, Meal: recipe.Lunch},
		{Week: 1, Day: 2, Meal: recipe.Lunch},
		{Week: 2, Day: 2, Meal: recipe.Lunch},
		{Week: 3, Day: 2, Meal: recipe.Lunch},
	}
	for _, c := range cells {
		pc.Plan.set(c, x)
		pc, _ = ToggleLock(pc, c)
	}

	out := e.Repair(pc.Plan, pc.Locks)
	for _, c := range cells {
		if got := out.Plan.At(c); got != x {
			t.Errorf("Expected locked %s to keep %s, got %s", c, x, got)
		}
	}
	// Four locked copies stay; unlocked ones are replaced.
	if n := CountUsage(out.Plan)[x]; n != len(cells) {
		t.Errorf("Expected %d remaining uses of %s, got %d", len(cells), x, n)
	}
}

func TestRepair_Scarcity(t *testing.T) {
	c := catalogWithout(t, recipe.Dinner, dinner("only", "Lonely Stew"))
	e := newTestEngine(c, 1)
	gen := e.Generate()

	out := e.Repair(gen.Plan, gen.Locks)
	if out.Fixed != 0 {
		t.Errorf("Expected 0 fixes, got %d", out.Fixed)
	}
	if out.Fallbacks != TotalDays-UsageCap {
		t.Errorf("Expected %d fallbacks, got %d", TotalDays-UsageCap, out.Fallbacks)
	}
	if n := CountUsage(out.Plan)["only"]; n != TotalDays {
		t.Errorf("Expected usage to stay %d, got %d", TotalDays, n)
	}
}

func TestRepair_Idempotent(t *testing.T) {
	c := catalogWithout(t, recipe.Dinner,
		dinner("d1", "Salmon"),
		dinner("d2", "Chicken"),
		dinner("d3", "Lentils"),
		dinner("d4", "Beef"),
		dinner("d5", "Mushrooms"),
	)
	e := newTestEngine(c, 23)
	gen := e.Generate()

	first := e.Repair(gen.Plan, gen.Locks)
	second := e.Repair(first.Plan, gen.Locks)
	if second.Fixed != 0 {
		t.Errorf("Expected second repair to fix nothing, got %d", second.Fixed)
	}
	if second.Plan != first.Plan {
		t.Error("Expected second repair to leave the plan unchanged")
	}
}
