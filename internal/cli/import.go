package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"wellness-meal-planner/internal/app"
	"wellness-meal-planner/internal/recipe"
)

func init() {
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Add recipes to the catalog",
		Long:  "Imports recipes from web pages, saved HTML files or Ghost posts. Importing changes the catalog version, so stored plans are rebuilt on their next load.",
	}
	importCmd.PersistentFlags().StringP("meal", "m", "", "Meal type to use instead of guessing (breakfast, lunch, snack, dinner)")

	url := &cobra.Command{
		Use:   "url <url>",
		Short: "Import the recipe on a web page",
		Args:  cobra.ExactArgs(1),
		Run:   runImportURL,
	}
	file := &cobra.Command{
		Use:   "file <path>",
		Short: "Import the recipe in a saved HTML page",
		Args:  cobra.ExactArgs(1),
		Run:   runImportFile,
	}
	ghostCmd := &cobra.Command{
		Use:   "ghost",
		Short: "Import every Ghost post carrying a tag",
		Run:   runImportGhost,
	}
	ghostCmd.Flags().String("tag", "recipes", "Ghost tag to import")
	remove := &cobra.Command{
		Use:   "remove <recipe-id>",
		Short: "Remove an imported recipe",
		Args:  cobra.ExactArgs(1),
		Run:   runImportRemove,
	}

	importCmd.AddCommand(url, file, ghostCmd, remove)
	RootCmd.AddCommand(importCmd)
}

func mealOverride(cmd *cobra.Command) recipe.MealType {
	s, _ := cmd.Flags().GetString("meal")
	if s == "" {
		return ""
	}
	m, err := recipe.ParseMealType(s)
	if err != nil {
		exitErr("parse --meal", err)
	}
	return m
}

func printImported(r recipe.Recipe, added bool) {
	if jsonOutput() {
		printJSON(map[string]any{"recipe": r, "added": added})
		return
	}
	verb := "Updated"
	if added {
		verb = "Imported"
	}
	fmt.Printf("%s %q as %s (%s)\n", verb, r.Title, r.ID, r.MealType)
}

func runImportURL(cmd *cobra.Command, args []string) {
	meal := mealOverride(cmd)
	a := openApp(cmd)
	defer a.Close()

	r, added, err := a.ImportURL(cmd.Context(), args[0], meal)
	if err != nil {
		exitErr("import url", err)
	}
	printImported(r, added)
}

func runImportFile(cmd *cobra.Command, args []string) {
	meal := mealOverride(cmd)
	a := openApp(cmd)
	defer a.Close()

	r, added, err := a.ImportFile(cmd.Context(), args[0], meal)
	if err != nil {
		exitErr("import file", err)
	}
	printImported(r, added)
}

func runImportGhost(cmd *cobra.Command, args []string) {
	tag, _ := cmd.Flags().GetString("tag")
	a := openApp(cmd)
	defer a.Close()

	report, err := a.ImportGhost(cmd.Context(), tag)
	if err != nil {
		exitErr("import ghost", err)
	}
	if jsonOutput() {
		failed := map[string]string{}
		for title, err := range report.Failed {
			failed[title] = err.Error()
		}
		printJSON(map[string]any{"added": report.Added, "updated": report.Updated, "failed": failed})
		return
	}
	printReport(report)
}

func printReport(report app.ImportReport) {
	fmt.Printf("Added %d, updated %d, failed %d\n", len(report.Added), len(report.Updated), len(report.Failed))
	titles := make([]string, 0, len(report.Failed))
	for title := range report.Failed {
		titles = append(titles, title)
	}
	sort.Strings(titles)
	for _, title := range titles {
		fmt.Printf("  %s: %v\n", title, report.Failed[title])
	}
}

func runImportRemove(cmd *cobra.Command, args []string) {
	a := openApp(cmd)
	defer a.Close()

	if err := a.RemoveImport(args[0]); err != nil {
		exitErr("remove import", err)
	}
	fmt.Printf("Removed %s\n", args[0])
}
