package clipper

import (
	"fmt"
	"html"
	"strings"

	"wellness-meal-planner/internal/recipe"
)

// FormatHTML renders a recipe as a Ghost post body. ClipPost reads it back.
func FormatHTML(r recipe.Recipe) string {
	var sb strings.Builder
	if r.Source != "" && strings.HasPrefix(r.Source, "http") {
		src := html.EscapeString(r.Source)
		fmt.Fprintf(&sb, "<p><i>Imported from: <a href=\"%s\">%s</a></i></p>", src, src)
	}

	sb.WriteString("<h2>Ingredients</h2><ul>")
	for _, ing := range r.Ingredients {
		fmt.Fprintf(&sb, "<li>%s</li>", html.EscapeString(ing))
	}
	sb.WriteString("</ul>")

	sb.WriteString("<h2>Instructions</h2><ol>")
	for _, step := range r.Instructions {
		fmt.Fprintf(&sb, "<li>%s</li>", html.EscapeString(step))
	}
	sb.WriteString("</ol>")

	if r.Tip != "" {
		fmt.Fprintf(&sb, "<p><strong>Tip:</strong> %s</p>", html.EscapeString(r.Tip))
	}
	sb.WriteString("<hr>")
	fmt.Fprintf(&sb, "<p><strong>Prep Time:</strong> %d mins | <strong>Cook Time:</strong> %d mins | <strong>Servings:</strong> %d</p>",
		r.PrepTimeMin, r.CookTimeMin, r.Servings)

	return sb.String()
}
