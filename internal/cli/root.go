// Package cli implements the meal-planner CLI commands.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"wellness-meal-planner/internal/app"
	"wellness-meal-planner/internal/config"
	"wellness-meal-planner/internal/planner"
)

var (
	weekFlag   string
	seedFlag   uint64
	formatFlag string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "meal-planner",
	Short: "Four-week wellness meal planner",
	Long:  "Generates and edits a four-week meal plan with locks, swaps, rerolls and duplicate repair. State is stored in SQLite or JSON files.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&weekFlag, "week", "w", "", "Any date in the plan's first week, YYYY-MM-DD (default: this week)")
	RootCmd.PersistentFlags().Uint64Var(&seedFlag, "seed", 0, "Seed for reproducible generation (0 picks a random seed)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "text", "Output format: text or json")
}

func openApp(cmd *cobra.Command) *app.App {
	cfg, err := config.NewFromEnv()
	if err != nil {
		exitErr("load configuration", err)
	}
	var opts []app.Option
	if seedFlag != 0 {
		opts = append(opts, app.WithSeed(seedFlag))
	}
	a, err := app.New(cmd.Context(), cfg, opts...)
	if err != nil {
		exitErr("open planner", err)
	}
	return a
}

func weekKey() string {
	if weekFlag == "" {
		return planner.WeekKey(time.Now())
	}
	key, err := planner.ParseWeekKey(weekFlag)
	if err != nil {
		exitErr("parse --week", err)
	}
	return key
}

func jsonOutput() bool {
	switch formatFlag {
	case "json":
		return true
	case "text":
		return false
	}
	exitErr("parse --format", fmt.Errorf("expected text or json, got %q", formatFlag))
	return false
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
