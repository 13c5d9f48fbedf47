package clipper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"wellness-meal-planner/internal/ghost"
	"wellness-meal-planner/internal/llm"
	"wellness-meal-planner/internal/recipe"
	"wellness-meal-planner/internal/shared"
)

// --- Mocks ---

type MockTextGenerator struct {
	Responses   []string
	Prompts     []string
	ShouldError bool
}

func (m *MockTextGenerator) GenerateContent(ctx context.Context, prompt string) (llm.ContentResponse, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.ShouldError {
		return llm.ContentResponse{}, fmt.Errorf("mock ai error")
	}
	if len(m.Responses) == 0 {
		return llm.ContentResponse{}, fmt.Errorf("unexpected prompt")
	}
	resp := m.Responses[0]
	m.Responses = m.Responses[1:]
	return llm.ContentResponse{Content: resp, Usage: shared.TokenUsage{Model: "mock", PromptTokens: 10, CompletionTokens: 2}}, nil
}

// --- Fixtures ---

const jsonLDPage = `
<html>
<head>
<script type="application/ld+json">
{"@context": "https://schema.org", "@graph": [
  {"@type": "WebPage", "name": "Blog"},
  {"@type": ["Recipe"], "name": "Lemon Herb Salmon",
   "recipeIngredient": ["2 salmon fillets", "1 lemon", " fresh  dill "],
   "recipeInstructions": [
     {"@type": "HowToSection", "itemListElement": [
       {"@type": "HowToStep", "text": "Heat the oven."},
       {"@type": "HowToStep", "text": "Bake the salmon."}
     ]}
   ],
   "prepTime": "PT10M", "cookTime": "PT1H5M", "recipeYield": ["2", "2 servings"],
   "recipeCategory": "Main Course", "keywords": "fish, quick"}
]}
</script>
</head>
<body><h1>Not the title</h1></body>
</html>`

const markupPage = `
<html><body>
	<h1>Apple Slices with Almond Butter</h1>
	<div class="ads">Buy stuff!</div>
	<p>Prep Time: 5 mins. Serves 1.</p>
	<h2>Ingredients</h2>
	<ul><li>1 apple</li><li>2 tbsp almond butter</li></ul>
	<h2>Method</h2>
	<ol><li>Slice the apple.</li><li>Serve with the almond butter.</li></ol>
	<a rel="tag">Snacks</a>
	<script>more_bad_stuff()</script>
</body></html>`

// --- Tests ---

func TestParseHTML(t *testing.T) {
	t.Run("JSONLD", func(t *testing.T) {
		p, err := ParseHTML(strings.NewReader(jsonLDPage), "https://example.com/salmon")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		r := p.Recipe
		if r.Title != "Lemon Herb Salmon" {
			t.Errorf("Expected title 'Lemon Herb Salmon', got '%s'", r.Title)
		}
		if len(r.Ingredients) != 3 || r.Ingredients[2] != "fresh dill" {
			t.Errorf("Expected 3 cleaned ingredients, got %q", r.Ingredients)
		}
		if len(r.Instructions) != 2 {
			t.Errorf("Expected 2 steps, got %q", r.Instructions)
		}
		if r.PrepTimeMin != 10 || r.CookTimeMin != 65 {
			t.Errorf("Expected 10 and 65 minutes, got %d and %d", r.PrepTimeMin, r.CookTimeMin)
		}
		if r.Servings != 2 {
			t.Errorf("Expected 2 servings, got %d", r.Servings)
		}
		if r.Source != "https://example.com/salmon" {
			t.Errorf("Expected the source to be kept, got '%s'", r.Source)
		}
		if m, ok := guessMealType(r.Title, p.Hints); !ok || m != recipe.Dinner {
			t.Errorf("Expected dinner from 'Main Course', got %s", m)
		}
	})

	t.Run("Markup", func(t *testing.T) {
		p, err := ParseHTML(strings.NewReader(markupPage), "")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		r := p.Recipe
		if r.Title != "Apple Slices with Almond Butter" {
			t.Errorf("Expected the h1 title, got '%s'", r.Title)
		}
		if len(r.Ingredients) != 2 || len(r.Instructions) != 2 {
			t.Errorf("Expected 2 ingredients and 2 steps, got %q and %q", r.Ingredients, r.Instructions)
		}
		if r.PrepTimeMin != 5 || r.Servings != 1 {
			t.Errorf("Expected 5 minutes and 1 serving, got %d and %d", r.PrepTimeMin, r.Servings)
		}
		if strings.Contains(p.Text, "more_bad_stuff") || strings.Contains(p.Text, "Buy stuff") {
			t.Errorf("Expected scripts and ads to be stripped, got %q", p.Text)
		}
	})

	t.Run("NoRecipe", func(t *testing.T) {
		_, err := ParseHTML(strings.NewReader("<html><body><p>About us</p></body></html>"), "")
		if !errors.Is(err, ErrNoRecipe) {
			t.Errorf("Expected ErrNoRecipe, got %v", err)
		}
	})
}

func TestClipHTML(t *testing.T) {
	ctx := context.Background()

	t.Run("KeywordMealType", func(t *testing.T) {
		c := NewClipper(nil)
		res, err := c.ClipHTML(ctx, strings.NewReader(markupPage), "test", "")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if res.Recipe.MealType != recipe.Snack {
			t.Errorf("Expected snack from the tag, got %s", res.Recipe.MealType)
		}
		if res.Recipe.ID != "imported-apple-slices-with-almond-butter" {
			t.Errorf("Expected a slug id, got '%s'", res.Recipe.ID)
		}
	})

	t.Run("Override", func(t *testing.T) {
		res, err := NewClipper(nil).ClipHTML(ctx, strings.NewReader(markupPage), "test", recipe.Breakfast)
		if err != nil {
			t.Fatal(err)
		}
		if res.Recipe.MealType != recipe.Breakfast {
			t.Errorf("Expected the override, got %s", res.Recipe.MealType)
		}
	})

	t.Run("LLMClassifier", func(t *testing.T) {
		page := strings.Replace(markupPage, `<a rel="tag">Snacks</a>`, "", 1)
		gen := &MockTextGenerator{Responses: []string{`{"meal_type": "snack"}`}}
		res, err := NewClipper(gen).ClipHTML(ctx, strings.NewReader(page), "test", "")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if res.Recipe.MealType != recipe.Snack {
			t.Errorf("Expected snack from the classifier, got %s", res.Recipe.MealType)
		}
		if res.Meta.Usage.PromptTokens != 10 {
			t.Errorf("Expected usage to be reported, got %+v", res.Meta.Usage)
		}
		if !strings.Contains(gen.Prompts[0], "2 tbsp almond butter") {
			t.Error("Expected the ingredients in the classifier prompt")
		}
	})

	t.Run("UnknownMealType", func(t *testing.T) {
		page := strings.Replace(markupPage, `<a rel="tag">Snacks</a>`, "", 1)
		_, err := NewClipper(nil).ClipHTML(ctx, strings.NewReader(page), "test", "")
		if !errors.Is(err, ErrUnknownMealType) {
			t.Errorf("Expected ErrUnknownMealType, got %v", err)
		}

		gen := &MockTextGenerator{Responses: []string{`{"meal_type": "brunch"}`}}
		_, err = NewClipper(gen).ClipHTML(ctx, strings.NewReader(page), "test", "")
		if !errors.Is(err, ErrUnknownMealType) {
			t.Errorf("Expected ErrUnknownMealType for an invalid answer, got %v", err)
		}
	})

	t.Run("LLMExtractor", func(t *testing.T) {
		page := `<html><body><p>Grandma's overnight oats: mix oats and milk, chill.</p></body></html>`
		gen := &MockTextGenerator{Responses: []string{
			`{"title": "Overnight Oats", "ingredients": ["oats", "milk"], "instructions": ["Mix", "Chill"], "mealType": "breakfast"}`,
		}}
		res, err := NewClipper(gen).ClipHTML(ctx, strings.NewReader(page), "https://example.com/oats", "")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if res.Recipe.Title != "Overnight Oats" || res.Recipe.MealType != recipe.Breakfast {
			t.Errorf("Expected breakfast 'Overnight Oats', got %s '%s'", res.Recipe.MealType, res.Recipe.Title)
		}
		if res.Recipe.Source != "https://example.com/oats" {
			t.Errorf("Expected the source to be kept, got '%s'", res.Recipe.Source)
		}
	})
}

func TestClipURL(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(jsonLDPage))
	}))
	defer ts.Close()

	c := NewClipper(nil)
	res, err := c.ClipURL(context.Background(), ts.URL+"/salmon", "")
	if err != nil {
		t.Fatalf("ClipURL failed: %v", err)
	}
	if res.Recipe.ID != "imported-lemon-herb-salmon" || res.Recipe.MealType != recipe.Dinner {
		t.Errorf("Expected imported dinner, got %s %s", res.Recipe.ID, res.Recipe.MealType)
	}

	if _, err := c.ClipURL(context.Background(), ts.URL+"/missing", ""); err == nil {
		t.Error("Expected an error for a 404 page, got nil")
	}
}

func TestClipPost_RoundTrip(t *testing.T) {
	orig := recipe.Recipe{
		Title:        "Chickpea & Spinach Stew",
		Ingredients:  []string{"1 can chickpeas", "2 cups spinach"},
		Instructions: []string{"Simmer.", "Stir in spinach."},
		PrepTimeMin:  10,
		CookTimeMin:  25,
		Servings:     4,
		Source:       "https://example.com/stew",
	}
	post := ghost.Post{ID: "p9", Title: orig.Title, HTML: FormatHTML(orig), Tags: []ghost.Tag{{Name: "Dinner"}}}

	res, err := NewClipper(nil).ClipPost(context.Background(), post, "")
	if err != nil {
		t.Fatalf("ClipPost failed: %v", err)
	}
	got := res.Recipe
	if got.Title != orig.Title {
		t.Errorf("Expected title '%s', got '%s'", orig.Title, got.Title)
	}
	if len(got.Ingredients) != 2 || len(got.Instructions) != 2 {
		t.Errorf("Expected 2 ingredients and 2 steps, got %q and %q", got.Ingredients, got.Instructions)
	}
	if got.PrepTimeMin != 10 || got.CookTimeMin != 25 || got.Servings != 4 {
		t.Errorf("Expected 10/25/4, got %d/%d/%d", got.PrepTimeMin, got.CookTimeMin, got.Servings)
	}
	if got.MealType != recipe.Dinner {
		t.Errorf("Expected dinner from the post tag, got %s", got.MealType)
	}
	if got.Source != "ghost:p9" {
		t.Errorf("Expected source 'ghost:p9', got '%s'", got.Source)
	}
}

func TestSlug(t *testing.T) {
	if got := Slug("  Chickpea & Spinach Stew!! "); got != "chickpea-spinach-stew" {
		t.Errorf("Expected 'chickpea-spinach-stew', got '%s'", got)
	}
}
