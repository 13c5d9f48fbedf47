package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"wellness-meal-planner/internal/clipper"
	"wellness-meal-planner/internal/config"
	"wellness-meal-planner/internal/ghost"
	"wellness-meal-planner/internal/mealplan"
	"wellness-meal-planner/internal/recipe"
)

const testWeek = "2026-10-12"

type mockGhostClient struct {
	posts   []ghost.Post
	created []ghost.Post
}

func (m *mockGhostClient) FetchRecipes(ctx context.Context, tag string) ([]ghost.Post, error) {
	return m.posts, nil
}

func (m *mockGhostClient) CreatePost(ctx context.Context, title, html string, publish bool) (*ghost.Post, error) {
	status := "draft"
	if publish {
		status = "published"
	}
	p := ghost.Post{ID: "post-1", Title: title, HTML: html, Status: status}
	m.created = append(m.created, p)
	return &p, nil
}

func testConfig(t *testing.T, backend string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		DBPath:         filepath.Join(dir, "planner.db"),
		StoreBackend:   backend,
		DataDir:        filepath.Join(dir, "state"),
		ImportsPath:    filepath.Join(dir, "imports.json"),
		FallbackBudget: 4,
	}
}

func newTestApp(t *testing.T, cfg *config.Config, opts ...Option) *App {
	t.Helper()
	a, err := New(context.Background(), cfg, append([]Option{WithSeed(7)}, opts...)...)
	if err != nil {
		t.Fatalf("Failed to create app: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestNew(t *testing.T) {
	ctx := context.Background()
	for _, backend := range []string{config.StoreSQLite, config.StoreFile} {
		t.Run(backend, func(t *testing.T) {
			a := newTestApp(t, testConfig(t, backend))

			st, err := a.Planner().Load(ctx, testWeek)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if !st.Regenerated {
				t.Error("Expected a first load to generate a plan")
			}

			again, err := a.Planner().Load(ctx, testWeek)
			if err != nil {
				t.Fatal(err)
			}
			if again.Regenerated || again.Plan != st.Plan {
				t.Error("Expected the stored plan to be returned on the second load")
			}

			weeks, err := a.Weeks(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if len(weeks) != 1 || weeks[0] != testWeek {
				t.Errorf("Expected [%s], got %v", testWeek, weeks)
			}
		})
	}

	t.Run("BadCatalog", func(t *testing.T) {
		cfg := testConfig(t, config.StoreSQLite)
		cfg.CatalogPath = filepath.Join(t.TempDir(), "missing.json")
		if _, err := New(ctx, cfg); err == nil {
			t.Error("Expected an error for a missing catalog file, got nil")
		}
	})
}

func stewPost(id string) ghost.Post {
	r := recipe.Recipe{
		Title:        "Chickpea Stew",
		Ingredients:  []string{"1 can chickpeas", "2 cups spinach"},
		Instructions: []string{"Simmer."},
		Servings:     4,
	}
	return ghost.Post{ID: id, Title: r.Title, HTML: clipper.FormatHTML(r), Tags: []ghost.Tag{{Name: "Dinner"}}}
}

func TestImportGhost(t *testing.T) {
	ctx := context.Background()
	gc := &mockGhostClient{posts: []ghost.Post{
		stewPost("p1"),
		{ID: "p2", Title: "Newsletter", HTML: "<p>No recipe here.</p>"},
	}}
	a := newTestApp(t, testConfig(t, config.StoreSQLite), WithGhostClient(gc))

	if _, err := a.Planner().Load(ctx, testWeek); err != nil {
		t.Fatal(err)
	}
	oldVersion := a.Catalog().Version()

	report, err := a.ImportGhost(ctx, "recipes")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(report.Added) != 1 || report.Added[0] != "imported-chickpea-stew" {
		t.Errorf("Expected one added recipe, got %v", report.Added)
	}
	if _, ok := report.Failed["Newsletter"]; !ok || len(report.Failed) != 1 {
		t.Errorf("Expected the newsletter to fail, got %v", report.Failed)
	}

	r, ok := a.Catalog().Get("imported-chickpea-stew")
	if !ok || r.MealType != recipe.Dinner {
		t.Fatalf("Expected the imported dinner in the catalog, got %+v", r)
	}
	if a.Catalog().Version() == oldVersion {
		t.Error("Expected the catalog version to change after an import")
	}

	after, err := a.Planner().Load(ctx, testWeek)
	if err != nil {
		t.Fatal(err)
	}
	if !after.Regenerated {
		t.Error("Expected plans from the old catalog to be rebuilt")
	}

	t.Run("Reimport", func(t *testing.T) {
		gc.posts = gc.posts[:1]
		report, err := a.ImportGhost(ctx, "recipes")
		if err != nil {
			t.Fatal(err)
		}
		if len(report.Updated) != 1 || len(report.Added) != 0 {
			t.Errorf("Expected one updated recipe, got %+v", report)
		}
	})

	t.Run("NotConfigured", func(t *testing.T) {
		b := newTestApp(t, testConfig(t, config.StoreSQLite))
		if _, err := b.ImportGhost(ctx, ""); !errors.Is(err, ErrNotConfigured) {
			t.Errorf("Expected ErrNotConfigured, got %v", err)
		}
	})
}

func TestImportFile(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, config.StoreFile)
	a := newTestApp(t, cfg)

	page := `<html><body><h1>Mango Lassi</h1>
		<h2>Ingredients</h2><ul><li>1 mango</li><li>1 cup yogurt</li></ul>
		<h2>Steps</h2><ol><li>Blend.</li></ol></body></html>`
	path := filepath.Join(t.TempDir(), "lassi.html")
	if err := os.WriteFile(path, []byte(page), 0644); err != nil {
		t.Fatal(err)
	}

	rec, added, err := a.ImportFile(ctx, path, recipe.Snack)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !added || rec.ID != "imported-mango-lassi" || rec.MealType != recipe.Snack {
		t.Errorf("Expected a new snack 'imported-mango-lassi', got %+v (added=%v)", rec, added)
	}

	// Imports survive a restart.
	b := newTestApp(t, cfg)
	if _, ok := b.Catalog().Get(rec.ID); !ok {
		t.Error("Expected the import to be loaded on start-up")
	}

	if err := b.RemoveImport(rec.ID); err != nil {
		t.Fatal(err)
	}
	if _, ok := b.Catalog().Get(rec.ID); ok {
		t.Error("Expected the import to be removed from the catalog")
	}

	if _, _, err := a.ImportFile(ctx, filepath.Join(t.TempDir(), "nope.html"), ""); err == nil {
		t.Error("Expected an error for a missing file, got nil")
	}
}

func TestPublishWeek(t *testing.T) {
	ctx := context.Background()
	gc := &mockGhostClient{}
	a := newTestApp(t, testConfig(t, config.StoreSQLite), WithGhostClient(gc))

	post, err := a.PublishWeek(ctx, testWeek, 1, false)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if post.Status != "draft" {
		t.Errorf("Expected a draft, got '%s'", post.Status)
	}
	if !strings.Contains(post.Title, "Mon 19 Oct") {
		t.Errorf("Expected the title to name the week start, got '%s'", post.Title)
	}
	if !strings.Contains(post.HTML, "<table>") || !strings.Contains(post.HTML, "Shopping List") {
		t.Errorf("Expected a plan table and shopping list, got %s", post.HTML)
	}

	if _, err := a.PublishWeek(ctx, testWeek, 4, false); !errors.Is(err, mealplan.ErrInvalidCell) {
		t.Errorf("Expected ErrInvalidCell for week 4, got %v", err)
	}
}

func TestFormatWeek(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, testConfig(t, config.StoreSQLite))

	cell := mealplan.Cell{Week: 0, Day: 2, Meal: recipe.Lunch}
	out, err := a.Planner().ToggleLock(ctx, testWeek, cell)
	if err != nil {
		t.Fatal(err)
	}

	text := FormatWeek(a.Catalog(), out.State, 0)
	if !strings.HasPrefix(text, "Week 1 of 2026-10-12") {
		t.Errorf("Expected a week header, got %q", text)
	}
	title := recipeTitle(a.Catalog(), out.State.Plan.At(cell))
	if !strings.Contains(text, "Wed 14 Oct\n   breakfast") || !strings.Contains(text, " * lunch      "+title) {
		t.Errorf("Expected Wednesday lunch to be marked locked, got\n%s", text)
	}
	if strings.Count(text, " * ") != 1 {
		t.Errorf("Expected exactly one locked cell, got\n%s", text)
	}
}

func TestStats(t *testing.T) {
	a := newTestApp(t, testConfig(t, config.StoreSQLite))
	if _, err := a.Planner().Load(context.Background(), testWeek); err != nil {
		t.Fatal(err)
	}

	report, err := a.Stats(7)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.Contains(report, "System") || strings.Contains(report, "No operations recorded") {
		t.Errorf("Expected health and one day of operations, got\n%s", report)
	}
	if !strings.Contains(report, "schema: v2") || !strings.Contains(report, "stored weeks: 1") {
		t.Errorf("Expected schema and catalog details, got\n%s", report)
	}

	if n, err := a.CleanupMetrics(30); err != nil || n != 0 {
		t.Errorf("Expected nothing to clean up, got %d (%v)", n, err)
	}
}
