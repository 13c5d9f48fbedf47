package app

import (
	"context"
	"fmt"
	"time"

	"wellness-meal-planner/internal/clipper"
	"wellness-meal-planner/internal/recipe"
)

// llmPause keeps Ghost imports under the Gemini free tier rate limit (15 RPM).
var llmPause = 5 * time.Second

// ImportReport summarises a batch import.
type ImportReport struct {
	Added   []string
	Updated []string
	Failed  map[string]error
}

// ImportURL clips the recipe at url into the catalog.
func (a *App) ImportURL(ctx context.Context, url string, mealType recipe.MealType) (recipe.Recipe, bool, error) {
	res, err := a.recipeClipper.ClipURL(ctx, url, mealType)
	if err != nil {
		a.recordImport(res)
		return recipe.Recipe{}, false, err
	}
	return a.saveImport(res)
}

// ImportFile clips the recipe in a saved HTML page.
func (a *App) ImportFile(ctx context.Context, path string, mealType recipe.MealType) (recipe.Recipe, bool, error) {
	res, err := a.recipeClipper.ClipFile(ctx, path, mealType)
	if err != nil {
		a.recordImport(res)
		return recipe.Recipe{}, false, err
	}
	return a.saveImport(res)
}

// ImportGhost clips every post carrying tag. A failing post is reported and
// skipped.
func (a *App) ImportGhost(ctx context.Context, tag string) (ImportReport, error) {
	if a.ghostClient == nil {
		return ImportReport{}, fmt.Errorf("%w: ghost", ErrNotConfigured)
	}
	posts, err := a.ghostClient.FetchRecipes(ctx, tag)
	if err != nil {
		return ImportReport{}, fmt.Errorf("failed to fetch recipes from ghost: %w", err)
	}
	a.logger.Printf("Fetched %d recipe posts from Ghost.", len(posts))

	report := ImportReport{Failed: map[string]error{}}
	usedLLM := false
	for _, post := range posts {
		if usedLLM {
			select {
			case <-ctx.Done():
				return report, ctx.Err()
			case <-time.After(llmPause):
			}
		}
		res, err := a.recipeClipper.ClipPost(ctx, post, "")
		usedLLM = res.Meta.Usage.PromptTokens > 0
		if err != nil {
			a.recordImport(res)
			a.logger.Printf("Failed to import '%s': %v", post.Title, err)
			report.Failed[post.Title] = err
			continue
		}
		rec, added, err := a.saveImport(res)
		if err != nil {
			report.Failed[post.Title] = err
			continue
		}
		if added {
			report.Added = append(report.Added, rec.ID)
		} else {
			report.Updated = append(report.Updated, rec.ID)
		}
	}
	return report, nil
}

// saveImport persists an imported recipe and reloads the catalog so the
// planner can use it.
func (a *App) saveImport(res clipper.Result) (recipe.Recipe, bool, error) {
	a.recordImport(res)
	added, err := a.imports.Save(res.Recipe)
	if err != nil {
		return recipe.Recipe{}, false, fmt.Errorf("failed to save imported recipe: %w", err)
	}
	if err := a.reloadCatalog(); err != nil {
		return recipe.Recipe{}, false, err
	}
	a.logger.Printf("Imported '%s' as %s (%s).", res.Recipe.Title, res.Recipe.ID, res.Recipe.MealType)
	return res.Recipe, added, nil
}

// RemoveImport drops an imported recipe from the catalog.
func (a *App) RemoveImport(id string) error {
	if err := a.imports.Remove(id); err != nil {
		return err
	}
	return a.reloadCatalog()
}

func (a *App) recordImport(res clipper.Result) {
	if res.Meta.Operation == "" {
		return
	}
	if err := a.metricsStore.RecordMeta(res.Meta); err != nil {
		a.logger.Printf("Warning: failed to record import metrics: %v", err)
	}
}
