package clipper

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"wellness-meal-planner/internal/recipe"
)

// ErrNoRecipe is returned when a page has neither recipe metadata nor
// recognisable recipe markup.
var ErrNoRecipe = errors.New("no recipe found in page")

// Parsed is a recipe read from a page before it has an id or meal type.
type Parsed struct {
	Recipe recipe.Recipe
	// Hints are category, keyword and tag strings used to guess the meal type.
	Hints []string
	// Text is the cleaned page text, kept for the LLM fallbacks.
	Text string
}

// ParseHTML reads a recipe from an HTML page. A schema.org Recipe in JSON-LD
// wins; otherwise headings followed by lists are used.
func ParseHTML(r io.Reader, source string) (Parsed, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Parsed{}, fmt.Errorf("failed to parse html: %w", err)
	}

	p, ok := fromJSONLD(doc)
	if !ok {
		p = fromMarkup(doc)
	}
	p.Recipe.Source = source

	// Remove noise to save LLM tokens
	doc.Find("script, style, nav, footer, iframe, .ads, #ads").Remove()
	p.Text = collapseSpace(doc.Find("body").Text())

	if p.Recipe.Title == "" || len(p.Recipe.Ingredients) == 0 {
		return p, ErrNoRecipe
	}
	return p, nil
}

func fromJSONLD(doc *goquery.Document) (Parsed, bool) {
	var found map[string]any
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var v any
		if err := json.Unmarshal([]byte(s.Text()), &v); err != nil {
			return true
		}
		found = findRecipeNode(v)
		return found == nil
	})
	if found == nil {
		return Parsed{}, false
	}

	rec := recipe.Recipe{
		Title:        collapseSpace(asString(found["name"])),
		Ingredients:  asStrings(found["recipeIngredient"]),
		Instructions: instructions(found["recipeInstructions"]),
		PrepTimeMin:  isoMinutes(asString(found["prepTime"])),
		CookTimeMin:  isoMinutes(asString(found["cookTime"])),
		Servings:     leadingInt(asStrings(found["recipeYield"])),
	}
	if len(rec.Ingredients) == 0 {
		rec.Ingredients = asStrings(found["ingredients"])
	}
	hints := append(asStrings(found["recipeCategory"]), splitKeywords(found["keywords"])...)
	return Parsed{Recipe: rec, Hints: hints}, true
}

func findRecipeNode(v any) map[string]any {
	switch node := v.(type) {
	case []any:
		for _, item := range node {
			if r := findRecipeNode(item); r != nil {
				return r
			}
		}
	case map[string]any:
		if isRecipeType(node["@type"]) {
			return node
		}
		if graph, ok := node["@graph"]; ok {
			return findRecipeNode(graph)
		}
	}
	return nil
}

func isRecipeType(v any) bool {
	for _, t := range asStrings(v) {
		if t == "Recipe" {
			return true
		}
	}
	return false
}

func instructions(v any) []string {
	var out []string
	switch node := v.(type) {
	case string:
		for _, line := range strings.Split(node, "\n") {
			if line = collapseSpace(line); line != "" {
				out = append(out, line)
			}
		}
	case []any:
		for _, item := range node {
			out = append(out, instructions(item)...)
		}
	case map[string]any:
		if items, ok := node["itemListElement"]; ok {
			return instructions(items)
		}
		if text := collapseSpace(asString(node["text"])); text != "" {
			out = append(out, text)
		}
	}
	return out
}

func fromMarkup(doc *goquery.Document) Parsed {
	var rec recipe.Recipe

	rec.Title = collapseSpace(doc.Find("h1").First().Text())
	if rec.Title == "" {
		rec.Title = collapseSpace(doc.Find(`meta[property="og:title"]`).AttrOr("content", ""))
	}

	rec.Ingredients = listTexts(doc.Find(`[itemprop="recipeIngredient"], [itemprop="ingredients"], .ingredients li`))
	if len(rec.Ingredients) == 0 {
		rec.Ingredients = listAfterHeading(doc, "ingredients")
	}
	rec.Instructions = listTexts(doc.Find(`[itemprop="recipeInstructions"] li, .instructions li`))
	if len(rec.Instructions) == 0 {
		for _, h := range []string{"instructions", "method", "directions", "steps"} {
			if rec.Instructions = listAfterHeading(doc, h); len(rec.Instructions) > 0 {
				break
			}
		}
	}

	text := doc.Find("body").Text()
	rec.PrepTimeMin = labelledMinutes(text, "prep")
	rec.CookTimeMin = labelledMinutes(text, "cook")
	if m := servingsPattern.FindStringSubmatch(text); m != nil {
		rec.Servings, _ = strconv.Atoi(m[1])
	}

	var hints []string
	doc.Find(`[rel="tag"], .tag, .category`).Each(func(_ int, s *goquery.Selection) {
		if t := collapseSpace(s.Text()); t != "" {
			hints = append(hints, t)
		}
	})
	return Parsed{Recipe: rec, Hints: hints}
}

func listTexts(sel *goquery.Selection) []string {
	var out []string
	sel.Each(func(_ int, s *goquery.Selection) {
		if t := collapseSpace(s.Text()); t != "" {
			out = append(out, t)
		}
	})
	return out
}

// listAfterHeading returns the items of the first list following a heading
// whose text contains word.
func listAfterHeading(doc *goquery.Document, word string) []string {
	var out []string
	doc.Find("h2, h3, h4").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		if !strings.Contains(strings.ToLower(h.Text()), word) {
			return true
		}
		list := h.NextAllFiltered("ul, ol").First()
		out = listTexts(list.Find("li"))
		return len(out) == 0
	})
	return out
}

var (
	isoDurationPattern = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:\d+S)?)?$`)
	servingsPattern    = regexp.MustCompile(`(?i)(?:serves|servings:?)\s*(\d+)`)
	leadingIntPattern  = regexp.MustCompile(`\d+`)
	spacePattern       = regexp.MustCompile(`\s+`)
)

// isoMinutes converts an ISO 8601 duration such as PT1H15M to minutes.
func isoMinutes(s string) int {
	m := isoDurationPattern.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(s)))
	if m == nil {
		return 0
	}
	days, _ := strconv.Atoi(m[1])
	hours, _ := strconv.Atoi(m[2])
	mins, _ := strconv.Atoi(m[3])
	return days*24*60 + hours*60 + mins
}

func labelledMinutes(text, label string) int {
	re := regexp.MustCompile(`(?i)` + label + `(?:aration)?\s*time:?\s*(\d+)\s*(min|hour|hr)`)
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	if strings.HasPrefix(strings.ToLower(m[2]), "h") {
		n *= 60
	}
	return n
}

func leadingInt(values []string) int {
	for _, v := range values {
		if m := leadingIntPattern.FindString(v); m != "" {
			n, _ := strconv.Atoi(m)
			return n
		}
	}
	return 0
}

func asString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case map[string]any:
		return asString(x["name"])
	}
	return ""
}

func asStrings(v any) []string {
	if list, ok := v.([]any); ok {
		var out []string
		for _, item := range list {
			if s := collapseSpace(asString(item)); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	if s := collapseSpace(asString(v)); s != "" {
		return []string{s}
	}
	return nil
}

func splitKeywords(v any) []string {
	var out []string
	for _, s := range asStrings(v) {
		for _, k := range strings.Split(s, ",") {
			if k = strings.TrimSpace(k); k != "" {
				out = append(out, k)
			}
		}
	}
	return out
}

func collapseSpace(s string) string {
	return strings.TrimSpace(spacePattern.ReplaceAllString(s, " "))
}
