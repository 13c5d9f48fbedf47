package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"wellness-meal-planner/internal/app"
	"wellness-meal-planner/internal/mealplan"
	"wellness-meal-planner/internal/planner"
	"wellness-meal-planner/internal/recipe"
	"wellness-meal-planner/internal/shopping"
)

var mealIcons = map[recipe.MealType]string{
	recipe.Breakfast: "🥣",
	recipe.Lunch:     "🥗",
	recipe.Snack:     "🍎",
	recipe.Dinner:    "🍽",
}

func esc(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

func title(c *recipe.Catalog, id string) string {
	if r, ok := c.Get(id); ok {
		return esc(r.Title)
	}
	if id == "" {
		return "_nothing available_"
	}
	return esc(id)
}

func dayName(weekKey string, week, day int) string {
	t, err := planner.DayDate(weekKey, week, day)
	if err != nil {
		return fmt.Sprintf("Day %d", day+1)
	}
	return t.Format("Mon 2 Jan")
}

// formatWeek renders one week of st. weekKey is the calendar week key, not
// the per-user storage key.
func formatWeek(c *recipe.Catalog, st planner.State, weekKey string, week int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📅 *Week %d* · from %s\n", week+1, dayName(weekKey, week, 0))
	for d := 0; d < mealplan.DaysPerWeek; d++ {
		fmt.Fprintf(&sb, "\n*%s*\n", dayName(weekKey, week, d))
		for _, m := range recipe.MealTypes {
			cell := mealplan.Cell{Week: week, Day: d, Meal: m}
			sb.WriteString(mealIcons[m] + " " + title(c, st.Plan.At(cell)))
			if st.Locks.Locked(cell) {
				sb.WriteString(" 🔒")
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func formatLock(st planner.State, weekKey string, cell mealplan.Cell) string {
	if st.Locks.Locked(cell) {
		return fmt.Sprintf("🔒 Locked *%s*", app.CellLabel(weekKey, cell))
	}
	return fmt.Sprintf("🔓 Unlocked *%s*", app.CellLabel(weekKey, cell))
}

func formatOutcome(c *recipe.Catalog, out planner.Outcome) string {
	var sb strings.Builder
	switch out.Meta.Operation {
	case "swap":
		fmt.Fprintf(&sb, "🔄 Swapped *%s* → *%s*", title(c, out.Previous), title(c, out.Current))
	case "reroll_day", "reroll_week":
		fmt.Fprintf(&sb, "🎲 Changed %d meals", out.Meta.Changed)
		if out.Failed > 0 {
			fmt.Fprintf(&sb, " (%d had no replacement)", out.Failed)
		}
	case "repair":
		if out.Meta.Fixed == 0 {
			sb.WriteString("✅ No recipe could be replaced.")
		} else {
			fmt.Fprintf(&sb, "🛠 Fixed %d duplicate meals", out.Meta.Fixed)
		}
	}
	if out.Meta.Fallbacks > 0 {
		fmt.Fprintf(&sb, "\n_Variety rules relaxed %d times._", out.Meta.Fallbacks)
	}
	return sb.String()
}

func formatShopping(list shopping.ShoppingList, weekKey string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🛒 *Shopping List* · week %d from %s\n\n", list.Week+1, dayName(weekKey, list.Week, 0))
	if len(list.Items) == 0 {
		sb.WriteString("_Nothing to buy._\n")
	}
	for _, item := range list.Items {
		fmt.Fprintf(&sb, "• %s\n", esc(item))
	}
	return sb.String()
}

func formatRecipe(r recipe.Recipe) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s *%s*\n", mealIcons[r.MealType], esc(r.Title))
	fmt.Fprintf(&sb, "⏱ Prep %d min · Cook %d min · Serves %d\n\n", r.PrepTimeMin, r.CookTimeMin, r.Servings)
	sb.WriteString("*Ingredients*\n")
	for _, ing := range r.Ingredients {
		fmt.Fprintf(&sb, "• %s\n", esc(ing))
	}
	sb.WriteString("\n*Instructions*\n")
	for i, step := range r.Instructions {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, esc(step))
	}
	if r.Tip != "" {
		fmt.Fprintf(&sb, "\n💡 _%s_\n", esc(r.Tip))
	}
	return sb.String()
}

func formatFavorites(recs []recipe.Recipe) string {
	if len(recs) == 0 {
		return "⭐ No favorites yet. Use /fav <id> to add one."
	}
	var sb strings.Builder
	sb.WriteString("⭐ *Favorites*\n\n")
	for _, r := range recs {
		fmt.Fprintf(&sb, "%s %s (`%s`)\n", mealIcons[r.MealType], esc(r.Title), r.ID)
	}
	return sb.String()
}
