package clipper

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"wellness-meal-planner/internal/llm"
	"wellness-meal-planner/internal/recipe"
	"wellness-meal-planner/internal/shared"
)

//go:embed extractor_prompt.md
var extractorPrompt string

// maxPromptText bounds the page text sent to the LLM.
const maxPromptText = 20000

// extractWithLLM asks the LLM to structure a page the parser could not read.
// The meal type it suggests is returned as a hint.
func extractWithLLM(ctx context.Context, textGen llm.TextGenerator, p Parsed) (Parsed, shared.TokenUsage, error) {
	text := p.Text
	if len(text) > maxPromptText {
		text = text[:maxPromptText]
	}
	prompt, err := renderPrompt("extractor", extractorPrompt, struct {
		Source string
		Text   string
	}{p.Recipe.Source, text})
	if err != nil {
		return Parsed{}, shared.TokenUsage{}, err
	}

	resp, err := textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return Parsed{}, shared.TokenUsage{}, fmt.Errorf("failed to get LLM response: %w", err)
	}

	var rec recipe.Recipe
	if err := json.Unmarshal([]byte(resp.Content), &rec); err != nil {
		return Parsed{}, resp.Usage, fmt.Errorf("failed to unmarshal LLM response: %w", err)
	}
	rec.Title = strings.TrimSpace(rec.Title)
	if rec.Title == "" || len(rec.Ingredients) == 0 {
		return Parsed{}, resp.Usage, ErrNoRecipe
	}

	out := Parsed{Recipe: rec, Hints: p.Hints, Text: p.Text}
	out.Recipe.Source = p.Recipe.Source
	out.Recipe.MealType = ""
	if rec.MealType != "" {
		out.Hints = append([]string{string(rec.MealType)}, out.Hints...)
	}
	return out, resp.Usage, nil
}
