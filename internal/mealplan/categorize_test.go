package mealplan

import (
	"testing"

	"wellness-meal-planner/internal/recipe"
)

func TestCategorize(t *testing.T) {
	rules := DefaultCategoryRules()

	cases := []struct {
		title string
		meal  recipe.MealType
		want  Category
	}{
		{"Baked Lemon SALMON", recipe.Dinner, CategoryFish},
		{"Turkey Chili with Beans", recipe.Dinner, CategoryPoultry},
		{"Red Lentil Curry", recipe.Dinner, CategoryLegume},
		{"Lean Beef and Broccoli", recipe.Dinner, CategoryRed},
		{"Stuffed Portobello Mushrooms", recipe.Dinner, CategoryOther},
		{"Salmon Brown Rice Poke", recipe.Lunch, CategoryBrownRice},
		{"Soba Noodle Salad", recipe.Lunch, CategoryPasta},
		{"Overnight Oats with Chia", recipe.Breakfast, CategoryOatmeal},
		{"Avocado Toast with Egg", recipe.Breakfast, CategoryToast},
		{"Greek Yogurt with Berries", recipe.Snack, CategoryYogurt},
		{"Apple Slices with Almond Butter", recipe.Snack, CategoryFruitNut},
		{"Savory Cottage Cheese Bowl", recipe.Snack, CategoryCottage},
	}

	for _, tc := range cases {
		r := recipe.Recipe{Title: tc.title, MealType: tc.meal}
		if got := rules.Categorize(&r, tc.meal); got != tc.want {
			t.Errorf("Categorize(%q, %s): expected %s, got %s", tc.title, tc.meal, tc.want, got)
		}
	}

	t.Run("NilRecipe", func(t *testing.T) {
		if got := rules.Categorize(nil, recipe.Dinner); got != CategoryOther {
			t.Errorf("Expected other for nil recipe, got %s", got)
		}
	})

	t.Run("MealTypeSpecific", func(t *testing.T) {
		// "salmon" is a dinner keyword only.
		r := recipe.Recipe{Title: "Salmon Bagel"}
		if got := rules.Categorize(&r, recipe.Breakfast); got != CategoryOther {
			t.Errorf("Expected other for breakfast salmon, got %s", got)
		}
	})

	t.Run("CustomRules", func(t *testing.T) {
		custom := CategoryRules{recipe.Dinner: {{Category: "soup", Keywords: []string{"SOUP"}}}}
		r := recipe.Recipe{Title: "Miso soup"}
		if got := custom.Categorize(&r, recipe.Dinner); got != "soup" {
			t.Errorf("Expected soup, got %s", got)
		}
	})
}

func TestCompatible(t *testing.T) {
	cases := []struct {
		prev, next Category
		want       bool
	}{
		{"", CategoryFish, true},
		{CategoryFish, CategoryFish, false},
		{CategoryFish, CategoryPoultry, true},
		{CategoryOther, CategoryOther, true},
		{CategoryFish, CategoryOther, true},
		{CategoryOther, CategoryFish, true},
	}
	for _, tc := range cases {
		if got := Compatible(tc.prev, tc.next); got != tc.want {
			t.Errorf("Compatible(%q, %q): expected %v, got %v", tc.prev, tc.next, tc.want, got)
		}
	}
}
