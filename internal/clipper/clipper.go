package clipper

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"wellness-meal-planner/internal/ghost"
	"wellness-meal-planner/internal/llm"
	"wellness-meal-planner/internal/recipe"
	"wellness-meal-planner/internal/shared"
)

// IDPrefix marks recipes that did not come from the built-in catalog.
const IDPrefix = "imported-"

// Result is an imported recipe and what it cost to get it.
type Result struct {
	Recipe recipe.Recipe
	Meta   shared.OpMeta
}

// Clipper turns recipe pages and Ghost posts into catalog recipes.
type Clipper struct {
	httpClient *http.Client
	textGen    llm.TextGenerator
}

// NewClipper creates a new Clipper instance. textGen may be nil, in which
// case pages must carry enough markup to be parsed and classified locally.
func NewClipper(textGen llm.TextGenerator) *Clipper {
	return &Clipper{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		textGen:    textGen,
	}
}

// ClipURL fetches a page and imports the recipe on it. A non-empty mealType
// overrides any guess.
func (c *Clipper) ClipURL(ctx context.Context, url string, mealType recipe.MealType) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Result{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "wellness-meal-planner/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("failed to fetch content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}
	return c.ClipHTML(ctx, resp.Body, url, mealType)
}

// ClipFile imports the recipe in a saved HTML file.
func (c *Clipper) ClipFile(ctx context.Context, path string, mealType recipe.MealType) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return c.ClipHTML(ctx, f, "file://"+path, mealType)
}

// ClipPost imports a recipe published as a Ghost post. Post tags serve as
// meal type hints.
func (c *Clipper) ClipPost(ctx context.Context, post ghost.Post, mealType recipe.MealType) (Result, error) {
	page := fmt.Sprintf("<html><body><h1>%s</h1>%s</body></html>", html.EscapeString(post.Title), post.HTML)
	source := post.URL
	if source == "" {
		source = "ghost:" + post.ID
	}
	return c.clip(ctx, strings.NewReader(page), source, mealType, post.TagNames())
}

// ClipHTML imports the recipe in an HTML document.
func (c *Clipper) ClipHTML(ctx context.Context, r io.Reader, source string, mealType recipe.MealType) (Result, error) {
	return c.clip(ctx, r, source, mealType, nil)
}

func (c *Clipper) clip(ctx context.Context, r io.Reader, source string, mealType recipe.MealType, extraHints []string) (Result, error) {
	start := time.Now()
	meta := shared.OpMeta{Operation: "import"}

	p, err := ParseHTML(r, source)
	if errors.Is(err, ErrNoRecipe) && c.textGen != nil {
		var usage shared.TokenUsage
		p, usage, err = extractWithLLM(ctx, c.textGen, p)
		addUsage(&meta.Usage, usage)
	}
	if err != nil {
		return Result{Meta: meta}, err
	}
	p.Hints = append(p.Hints, extraHints...)

	rec := p.Recipe
	switch {
	case mealType != "":
		rec.MealType = mealType
	default:
		if m, ok := guessMealType(rec.Title, p.Hints); ok {
			rec.MealType = m
			break
		}
		if c.textGen == nil {
			return Result{Meta: meta}, fmt.Errorf("%w for %q", ErrUnknownMealType, rec.Title)
		}
		m, usage, err := classifyMealType(ctx, c.textGen, p)
		addUsage(&meta.Usage, usage)
		if err != nil {
			return Result{Meta: meta}, fmt.Errorf("%w for %q: %v", ErrUnknownMealType, rec.Title, err)
		}
		rec.MealType = m
	}

	rec.ID = IDPrefix + Slug(rec.Title)
	if rec.Servings == 0 {
		rec.Servings = 1
	}
	meta.Changed = 1
	meta.Latency = time.Since(start)
	return Result{Recipe: rec, Meta: meta}, nil
}

func addUsage(total *shared.TokenUsage, u shared.TokenUsage) {
	total.PromptTokens += u.PromptTokens
	total.CompletionTokens += u.CompletionTokens
	total.TotalTokens += u.TotalTokens
	if u.Model != "" {
		total.Model = u.Model
	}
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slug lower-cases s and joins its words with dashes.
func Slug(s string) string {
	return strings.Trim(slugPattern.ReplaceAllString(strings.ToLower(s), "-"), "-")
}
