package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"wellness-meal-planner/internal/app"
	"wellness-meal-planner/internal/mealplan"
	"wellness-meal-planner/internal/planner"
	"wellness-meal-planner/internal/recipe"
)

func init() {
	show := &cobra.Command{
		Use:   "show [week]",
		Short: "Print the plan, or one week of it (1-4)",
		Args:  cobra.MaximumNArgs(1),
		Run:   runShow,
	}
	recipeCmd := &cobra.Command{
		Use:   "recipe <id>",
		Short: "Print a recipe card",
		Args:  cobra.ExactArgs(1),
		Run:   runRecipe,
	}
	recipes := &cobra.Command{
		Use:   "recipes [meal]",
		Short: "List catalog recipes, optionally for one meal type",
		Args:  cobra.MaximumNArgs(1),
		Run:   runRecipes,
	}
	weeks := &cobra.Command{
		Use:   "weeks",
		Short: "List stored plans, most recently changed first",
		Run:   runWeeks,
	}

	RootCmd.AddCommand(show, recipeCmd, recipes, weeks)
}

type stateView struct {
	WeekKey        string            `json:"week_key"`
	CatalogVersion string            `json:"catalog_version"`
	Regenerated    bool              `json:"regenerated"`
	Plan           mealplan.Plan     `json:"plan"`
	Locks          mealplan.LockGrid `json:"locks"`
}

func viewOf(c *recipe.Catalog, st planner.State) stateView {
	return stateView{
		WeekKey:        st.WeekKey,
		CatalogVersion: c.Version(),
		Regenerated:    st.Regenerated,
		Plan:           st.Plan,
		Locks:          st.Locks,
	}
}

func runShow(cmd *cobra.Command, args []string) {
	a := openApp(cmd)
	defer a.Close()

	st, err := a.Planner().Load(cmd.Context(), weekKey())
	if err != nil {
		exitErr("load plan", err)
	}
	if jsonOutput() {
		printJSON(viewOf(a.Catalog(), st))
		return
	}
	if st.Regenerated {
		fmt.Println("(new plan generated)")
	}
	if len(args) == 0 {
		fmt.Print(app.FormatPlan(a.Catalog(), st))
		return
	}
	w, err := app.ParseWeek(args[0])
	if err != nil {
		exitErr("parse week", err)
	}
	fmt.Print(app.FormatWeek(a.Catalog(), st, w))
}

func runRecipe(cmd *cobra.Command, args []string) {
	a := openApp(cmd)
	defer a.Close()

	r, err := a.Catalog().Lookup(args[0])
	if err != nil {
		exitErr("recipe", err)
	}
	if jsonOutput() {
		printJSON(r)
		return
	}
	fmt.Print(app.FormatRecipe(r))
}

func runRecipes(cmd *cobra.Command, args []string) {
	a := openApp(cmd)
	defer a.Close()

	types := recipe.MealTypes
	if len(args) == 1 {
		m, err := recipe.ParseMealType(args[0])
		if err != nil {
			exitErr("parse meal", err)
		}
		types = []recipe.MealType{m}
	}

	var out []recipe.Recipe
	for _, m := range types {
		out = append(out, a.Catalog().ByMealType(m)...)
	}
	if jsonOutput() {
		printJSON(out)
		return
	}
	fmt.Printf("Catalog %s\n", a.Catalog().Version())
	for _, r := range out {
		fmt.Printf("%-30s %-9s %s\n", r.ID, r.MealType, r.Title)
	}
}

func runWeeks(cmd *cobra.Command, args []string) {
	a := openApp(cmd)
	defer a.Close()

	keys, err := a.Weeks(cmd.Context())
	if err != nil {
		exitErr("list weeks", err)
	}
	if jsonOutput() {
		printJSON(keys)
		return
	}
	for _, k := range keys {
		fmt.Println(k)
	}
}
