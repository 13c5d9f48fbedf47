package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"wellness-meal-planner/internal/app"
)

func init() {
	publish := &cobra.Command{
		Use:   "publish <week>",
		Short: "Post one week of the plan and its shopping list to Ghost",
		Args:  cobra.ExactArgs(1),
		Run:   runPublish,
	}
	publish.Flags().Bool("live", false, "Publish immediately instead of saving a draft")

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show operation metrics and system health",
		Run:   runStats,
	}
	stats.Flags().Int("days", 7, "Number of days to summarise")

	cleanup := &cobra.Command{
		Use:   "metrics-cleanup",
		Short: "Remove old metric records",
		Run:   runMetricsCleanup,
	}
	cleanup.Flags().Int("days", 30, "Keep records for the last N days")

	RootCmd.AddCommand(publish, stats, cleanup)
}

func runPublish(cmd *cobra.Command, args []string) {
	w, err := app.ParseWeek(args[0])
	if err != nil {
		exitErr("parse week", err)
	}
	live, _ := cmd.Flags().GetBool("live")
	a := openApp(cmd)
	defer a.Close()

	post, err := a.PublishWeek(cmd.Context(), weekKey(), w, live)
	if err != nil {
		exitErr("publish", err)
	}
	if jsonOutput() {
		printJSON(post)
		return
	}
	fmt.Printf("Created %s post %s: %s\n", post.Status, post.ID, post.Title)
}

func runStats(cmd *cobra.Command, args []string) {
	days, _ := cmd.Flags().GetInt("days")
	a := openApp(cmd)
	defer a.Close()

	report, err := a.Stats(days)
	if err != nil {
		exitErr("stats", err)
	}
	fmt.Print(report)
}

func runMetricsCleanup(cmd *cobra.Command, args []string) {
	days, _ := cmd.Flags().GetInt("days")
	a := openApp(cmd)
	defer a.Close()

	affected, err := a.CleanupMetrics(days)
	if err != nil {
		exitErr("cleanup", err)
	}
	fmt.Printf("Successfully removed %d old metric records.\n", affected)
}
