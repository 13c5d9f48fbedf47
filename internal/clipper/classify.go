package clipper

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"text/template"

	"wellness-meal-planner/internal/llm"
	"wellness-meal-planner/internal/recipe"
	"wellness-meal-planner/internal/shared"
)

//go:embed meal_type_prompt.md
var mealTypePrompt string

// ErrUnknownMealType is returned when neither the page nor the classifier
// gives a usable meal type.
var ErrUnknownMealType = errors.New("could not determine meal type")

var mealTypeWords = []struct {
	meal  recipe.MealType
	words []string
}{
	{recipe.Breakfast, []string{"breakfast", "brunch"}},
	{recipe.Snack, []string{"snack", "appetizer", "appetiser"}},
	{recipe.Lunch, []string{"lunch"}},
	{recipe.Dinner, []string{"dinner", "main course", "main dish", "entree", "supper"}},
}

// guessMealType looks for meal words in the hints, then in the title.
func guessMealType(title string, hints []string) (recipe.MealType, bool) {
	candidates := append(slices.Clone(hints), title)
	for _, h := range candidates {
		h = strings.ToLower(h)
		for _, mw := range mealTypeWords {
			for _, w := range mw.words {
				if strings.Contains(h, w) {
					return mw.meal, true
				}
			}
		}
	}
	return "", false
}

func renderPrompt(name, text string, data any) (string, error) {
	tmpl, err := template.New(name).Funcs(template.FuncMap{"join": strings.Join}).Parse(text)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// classifyMealType asks the LLM for a meal type.
func classifyMealType(ctx context.Context, textGen llm.TextGenerator, p Parsed) (recipe.MealType, shared.TokenUsage, error) {
	prompt, err := renderPrompt("meal_type", mealTypePrompt, struct {
		Title       string
		Hints       []string
		Ingredients []string
	}{p.Recipe.Title, p.Hints, p.Recipe.Ingredients})
	if err != nil {
		return "", shared.TokenUsage{}, err
	}

	resp, err := textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return "", shared.TokenUsage{}, fmt.Errorf("failed to get LLM response: %w", err)
	}

	var answer struct {
		MealType string `json:"meal_type"`
	}
	if err := json.Unmarshal([]byte(resp.Content), &answer); err != nil {
		return "", resp.Usage, fmt.Errorf("failed to unmarshal LLM response: %w", err)
	}
	m, err := recipe.ParseMealType(answer.MealType)
	if err != nil {
		return "", resp.Usage, fmt.Errorf("%w: %v", ErrUnknownMealType, err)
	}
	return m, resp.Usage, nil
}
