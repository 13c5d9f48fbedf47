package app

import (
	"context"
	"fmt"
	"html"
	"strings"

	"wellness-meal-planner/internal/ghost"
	"wellness-meal-planner/internal/mealplan"
	"wellness-meal-planner/internal/planner"
	"wellness-meal-planner/internal/recipe"
)

// FormatWeek renders one week of a plan as plain text. Locked cells are
// marked with an asterisk.
func FormatWeek(c *recipe.Catalog, st planner.State, week int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Week %d of %s\n", week+1, st.WeekKey)
	for d := 0; d < mealplan.DaysPerWeek; d++ {
		sb.WriteString("\n" + dayLabel(st.WeekKey, week, d) + "\n")
		for _, m := range recipe.MealTypes {
			cell := mealplan.Cell{Week: week, Day: d, Meal: m}
			mark := " "
			if st.Locks.Locked(cell) {
				mark = "*"
			}
			fmt.Fprintf(&sb, " %s %-9s  %s\n", mark, m, recipeTitle(c, st.Plan.At(cell)))
		}
	}
	return sb.String()
}

// FormatPlan renders all four weeks.
func FormatPlan(c *recipe.Catalog, st planner.State) string {
	parts := make([]string, mealplan.Weeks)
	for w := range parts {
		parts[w] = FormatWeek(c, st, w)
	}
	return strings.Join(parts, "\n")
}

// FormatRecipe renders a recipe card.
func FormatRecipe(r recipe.Recipe) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%s, %s)\n", r.Title, r.MealType, r.ID)
	fmt.Fprintf(&sb, "Prep %d min | Cook %d min | Serves %d\n", r.PrepTimeMin, r.CookTimeMin, r.Servings)
	sb.WriteString("\nIngredients\n")
	for _, ing := range r.Ingredients {
		fmt.Fprintf(&sb, "- %s\n", ing)
	}
	sb.WriteString("\nInstructions\n")
	for i, step := range r.Instructions {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, step)
	}
	if r.Tip != "" {
		fmt.Fprintf(&sb, "\nTip: %s\n", r.Tip)
	}
	if r.Source != "" {
		fmt.Fprintf(&sb, "\nSource: %s\n", r.Source)
	}
	return sb.String()
}

// WeekHTML renders one week and its shopping list as a Ghost post body.
func WeekHTML(c *recipe.Catalog, st planner.State, week int, items []string) string {
	var sb strings.Builder
	sb.WriteString("<table><thead><tr><th>Day</th>")
	for _, m := range recipe.MealTypes {
		fmt.Fprintf(&sb, "<th>%s</th>", html.EscapeString(strings.ToUpper(string(m[:1]))+string(m[1:])))
	}
	sb.WriteString("</tr></thead><tbody>")
	for d := 0; d < mealplan.DaysPerWeek; d++ {
		fmt.Fprintf(&sb, "<tr><td>%s</td>", html.EscapeString(dayLabel(st.WeekKey, week, d)))
		for _, m := range recipe.MealTypes {
			id := st.Plan.At(mealplan.Cell{Week: week, Day: d, Meal: m})
			fmt.Fprintf(&sb, "<td>%s</td>", html.EscapeString(recipeTitle(c, id)))
		}
		sb.WriteString("</tr>")
	}
	sb.WriteString("</tbody></table>")

	if len(items) > 0 {
		sb.WriteString("<h2>Shopping List</h2><ul>")
		for _, item := range items {
			fmt.Fprintf(&sb, "<li>%s</li>", html.EscapeString(item))
		}
		sb.WriteString("</ul>")
	}
	return sb.String()
}

// PublishWeek posts one week of the plan to Ghost. Without publish the post
// is left as a draft.
func (a *App) PublishWeek(ctx context.Context, weekKey string, week int, publish bool) (*ghost.Post, error) {
	if a.ghostClient == nil {
		return nil, fmt.Errorf("%w: ghost", ErrNotConfigured)
	}
	p := a.Planner()
	st, err := p.Load(ctx, weekKey)
	if err != nil {
		return nil, err
	}
	list, err := p.ShoppingList(ctx, weekKey, week)
	if err != nil {
		return nil, err
	}

	title := fmt.Sprintf("Meal Plan: week of %s", dayLabel(weekKey, week, 0))
	post, err := a.ghostClient.CreatePost(ctx, title, WeekHTML(p.Catalog(), st, week, list.Items), publish)
	if err != nil {
		return nil, fmt.Errorf("failed to publish plan: %w", err)
	}
	a.logger.Printf("Published %s week %d as post %s.", weekKey, week+1, post.ID)
	return post, nil
}

func recipeTitle(c *recipe.Catalog, id string) string {
	if id == "" {
		return "-"
	}
	if r, ok := c.Get(id); ok {
		return r.Title
	}
	return id
}

func dayLabel(weekKey string, week, day int) string {
	t, err := planner.DayDate(weekKey, week, day)
	if err != nil {
		return fmt.Sprintf("Week %d day %d", week+1, day+1)
	}
	return t.Format("Mon 2 Jan")
}

// CellLabel names a cell by its calendar day, e.g. "Wed 14 Oct lunch".
func CellLabel(weekKey string, c mealplan.Cell) string {
	return dayLabel(weekKey, c.Week, c.Day) + " " + string(c.Meal)
}
