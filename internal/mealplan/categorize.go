package mealplan

import (
	"strings"

	"wellness-meal-planner/internal/recipe"
)

// Category is a coarse grouping used only to avoid similar meals on
// consecutive days. It is never persisted.
type Category string

const (
	CategoryOther Category = "other"

	// dinner
	CategoryFish    Category = "fish"
	CategoryPoultry Category = "poultry"
	CategoryLegume  Category = "legume"
	CategoryRed     Category = "red"

	// lunch
	CategoryQuinoa    Category = "quinoa"
	CategoryBrownRice Category = "brown_rice"
	CategoryFarro     Category = "farro"
	CategoryPasta     Category = "pasta"

	// breakfast
	CategoryToast    Category = "toast"
	CategoryOatmeal  Category = "oatmeal"
	CategoryYogurt   Category = "yogurt"
	CategorySmoothie Category = "smoothie"
	CategoryEggs     Category = "eggs"

	// snack (yogurt is shared with breakfast)
	CategoryFruitNut Category = "fruit_nut"
	CategoryHummus   Category = "hummus"
	CategoryPopcorn  Category = "popcorn"
	CategoryCottage  Category = "cottage"
)

// CategoryRule maps any of its keywords to a category.
type CategoryRule struct {
	Category Category `json:"category"`
	Keywords []string `json:"keywords"`
}

// CategoryRules holds the ordered rules per meal type. The first rule with a
// keyword contained in the lower-cased title wins.
type CategoryRules map[recipe.MealType][]CategoryRule

// DefaultCategoryRules returns the built-in keyword table.
func DefaultCategoryRules() CategoryRules {
	return CategoryRules{
		recipe.Dinner: {
			{CategoryFish, []string{"salmon", "cod", "tuna", "fish", "shrimp", "tilapia", "trout", "halibut", "sardine", "scallop"}},
			{CategoryPoultry, []string{"chicken", "turkey"}},
			{CategoryLegume, []string{"lentil", "bean", "chickpea", "tofu", "tempeh", "edamame"}},
			{CategoryRed, []string{"beef", "pork", "lamb", "steak", "venison"}},
		},
		recipe.Lunch: {
			{CategoryQuinoa, []string{"quinoa"}},
			{CategoryBrownRice, []string{"brown rice"}},
			{CategoryFarro, []string{"farro"}},
			{CategoryPasta, []string{"pasta", "penne", "spaghetti", "orzo", "noodle", "macaroni", "linguine"}},
		},
		recipe.Breakfast: {
			{CategoryToast, []string{"toast"}},
			{CategoryOatmeal, []string{"oatmeal", "oats", "porridge"}},
			{CategoryYogurt, []string{"yogurt", "parfait"}},
			{CategorySmoothie, []string{"smoothie"}},
			{CategoryEggs, []string{"egg", "omelet", "frittata", "scramble"}},
		},
		recipe.Snack: {
			{CategoryYogurt, []string{"yogurt"}},
			{CategoryFruitNut, []string{"apple", "banana", "berr", "orange", "grape", "almond", "walnut", "pecan", "pistachio", "trail mix", "fruit"}},
			{CategoryHummus, []string{"hummus"}},
			{CategoryPopcorn, []string{"popcorn"}},
			{CategoryCottage, []string{"cottage"}},
		},
	}
}

// Categorize infers the category of r for meal type m. A nil recipe or a
// title with no matching keyword is CategoryOther.
func (rs CategoryRules) Categorize(r *recipe.Recipe, m recipe.MealType) Category {
	if r == nil {
		return CategoryOther
	}
	title := strings.ToLower(r.Title)
	for _, rule := range rs[m] {
		for _, kw := range rule.Keywords {
			if strings.Contains(title, strings.ToLower(kw)) {
				return rule.Category
			}
		}
	}
	return CategoryOther
}

// Compatible reports whether next may follow prev on consecutive days.
// An empty prev means there is no previous day; other never conflicts.
func Compatible(prev, next Category) bool {
	if prev == "" || prev == CategoryOther || next == CategoryOther {
		return true
	}
	return prev != next
}
