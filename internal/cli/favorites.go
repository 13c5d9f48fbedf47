package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"wellness-meal-planner/internal/app"
)

func init() {
	favorite := &cobra.Command{
		Use:   "favorite <recipe-id>",
		Short: "Add or remove a favorite recipe",
		Args:  cobra.ExactArgs(1),
		Run:   runFavorite,
	}
	favorites := &cobra.Command{
		Use:   "favorites",
		Short: "List favorite recipes",
		Run:   runFavorites,
	}
	shoppingList := &cobra.Command{
		Use:   "shopping-list <week>",
		Short: "Print the ingredients for one week of the plan",
		Args:  cobra.ExactArgs(1),
		Run:   runShoppingList,
	}

	RootCmd.AddCommand(favorite, favorites, shoppingList)
}

func runFavorite(cmd *cobra.Command, args []string) {
	a := openApp(cmd)
	defer a.Close()

	on, err := a.Planner().ToggleFavorite(cmd.Context(), args[0])
	if err != nil {
		exitErr("favorite", err)
	}
	if jsonOutput() {
		printJSON(map[string]any{"id": args[0], "favorite": on})
		return
	}
	if on {
		fmt.Printf("Added %s to favorites\n", args[0])
	} else {
		fmt.Printf("Removed %s from favorites\n", args[0])
	}
}

func runFavorites(cmd *cobra.Command, args []string) {
	a := openApp(cmd)
	defer a.Close()

	recs, err := a.Planner().Favorites(cmd.Context())
	if err != nil {
		exitErr("favorites", err)
	}
	if jsonOutput() {
		printJSON(recs)
		return
	}
	if len(recs) == 0 {
		fmt.Println("No favorites yet.")
		return
	}
	for _, r := range recs {
		fmt.Printf("%-30s %-9s %s\n", r.ID, r.MealType, r.Title)
	}
}

func runShoppingList(cmd *cobra.Command, args []string) {
	w, err := app.ParseWeek(args[0])
	if err != nil {
		exitErr("parse week", err)
	}
	a := openApp(cmd)
	defer a.Close()

	list, err := a.Planner().ShoppingList(cmd.Context(), weekKey(), w)
	if err != nil {
		exitErr("shopping list", err)
	}
	if jsonOutput() {
		printJSON(list)
		return
	}
	fmt.Printf("Shopping list, week %d of %s\n", w+1, list.WeekKey)
	for _, item := range list.Items {
		fmt.Printf("- %s\n", item)
	}
}
