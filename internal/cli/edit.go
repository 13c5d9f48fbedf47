package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"wellness-meal-planner/internal/app"
	"wellness-meal-planner/internal/planner"
)

func init() {
	lock := &cobra.Command{
		Use:   "lock <week> <day> <meal>",
		Short: "Lock or unlock one meal, e.g. 'lock 2 fri dinner'",
		Args:  cobra.ExactArgs(3),
		Run:   runLock,
	}
	swap := &cobra.Command{
		Use:   "swap <week> <day> <meal>",
		Short: "Replace one unlocked meal",
		Args:  cobra.ExactArgs(3),
		Run:   runSwap,
	}
	rerollDay := &cobra.Command{
		Use:   "reroll-day <week> <day>",
		Short: "Replace every unlocked meal of one day",
		Args:  cobra.ExactArgs(2),
		Run:   runRerollDay,
	}
	rerollWeek := &cobra.Command{
		Use:   "reroll-week <week>",
		Short: "Replace every unlocked meal of one week",
		Args:  cobra.ExactArgs(1),
		Run:   runRerollWeek,
	}
	regenerate := &cobra.Command{
		Use:   "regenerate",
		Short: "Discard the plan and all locks and build a new plan",
		Run:   runRegenerate,
	}
	regenerate.Flags().Bool("yes", false, "Confirm that locks and edits will be lost")
	repair := &cobra.Command{
		Use:   "repair",
		Short: "Replace recipes used more than twice, leaving locked meals alone",
		Run:   runRepair,
	}

	RootCmd.AddCommand(lock, swap, rerollDay, rerollWeek, regenerate, repair)
}

type outcomeView struct {
	Operation string    `json:"operation"`
	WeekKey   string    `json:"week_key"`
	Previous  string    `json:"previous,omitempty"`
	Current   string    `json:"current,omitempty"`
	Changed   int       `json:"changed"`
	Fixed     int       `json:"fixed"`
	Failed    int       `json:"failed"`
	Fallbacks int       `json:"fallbacks"`
	Degraded  bool      `json:"degraded"`
	State     stateView `json:"state"`
}

func printOutcome(a *app.App, out planner.Outcome) {
	if jsonOutput() {
		printJSON(outcomeView{
			Operation: out.Meta.Operation,
			WeekKey:   out.State.WeekKey,
			Previous:  out.Previous,
			Current:   out.Current,
			Changed:   out.Meta.Changed,
			Fixed:     out.Meta.Fixed,
			Failed:    out.Failed,
			Fallbacks: out.Meta.Fallbacks,
			Degraded:  out.Meta.Degraded,
			State:     viewOf(a.Catalog(), out.State),
		})
		return
	}

	c := a.Catalog()
	switch {
	case out.Current != "":
		prev, _ := c.Get(out.Previous)
		cur, _ := c.Get(out.Current)
		fmt.Printf("Swapped %q for %q\n", prev.Title, cur.Title)
	case out.Meta.Operation == "repair":
		fmt.Printf("Fixed %d duplicate meals\n", out.Meta.Fixed)
	case out.Meta.Operation == "reroll_day" || out.Meta.Operation == "reroll_week":
		fmt.Printf("Changed %d meals", out.Meta.Changed)
		if out.Failed > 0 {
			fmt.Printf(", %d had no replacement", out.Failed)
		}
		fmt.Println()
	}
	if out.Meta.Fallbacks > 0 {
		fmt.Printf("Relaxed variety rules %d times\n", out.Meta.Fallbacks)
	}
	if out.Meta.Degraded {
		fmt.Println("Warning: the catalog is too small for a varied plan; consider importing more recipes")
	}
}

func showWeek(a *app.App, out planner.Outcome, week int) {
	if !jsonOutput() {
		fmt.Println()
		fmt.Print(app.FormatWeek(a.Catalog(), out.State, week))
	}
}

func runLock(cmd *cobra.Command, args []string) {
	cell, err := app.ParseCell(args)
	if err != nil {
		exitErr("parse cell", err)
	}
	a := openApp(cmd)
	defer a.Close()

	out, err := a.Planner().ToggleLock(cmd.Context(), weekKey(), cell)
	if err != nil {
		exitErr("lock", err)
	}
	if jsonOutput() {
		printOutcome(a, out)
		return
	}
	state := "Unlocked"
	if out.State.Locks.Locked(cell) {
		state = "Locked"
	}
	fmt.Printf("%s %s\n", state, app.CellLabel(out.State.WeekKey, cell))
	showWeek(a, out, cell.Week)
}

func runSwap(cmd *cobra.Command, args []string) {
	cell, err := app.ParseCell(args)
	if err != nil {
		exitErr("parse cell", err)
	}
	a := openApp(cmd)
	defer a.Close()

	out, err := a.Planner().Swap(cmd.Context(), weekKey(), cell)
	if err != nil {
		exitErr("swap", err)
	}
	printOutcome(a, out)
	showWeek(a, out, cell.Week)
}

func runRerollDay(cmd *cobra.Command, args []string) {
	w, err := app.ParseWeek(args[0])
	if err != nil {
		exitErr("parse week", err)
	}
	d, err := app.ParseDay(args[1])
	if err != nil {
		exitErr("parse day", err)
	}
	a := openApp(cmd)
	defer a.Close()

	out, err := a.Planner().RerollDay(cmd.Context(), weekKey(), w, d)
	if err != nil {
		exitErr("reroll day", err)
	}
	printOutcome(a, out)
	showWeek(a, out, w)
}

func runRerollWeek(cmd *cobra.Command, args []string) {
	w, err := app.ParseWeek(args[0])
	if err != nil {
		exitErr("parse week", err)
	}
	a := openApp(cmd)
	defer a.Close()

	out, err := a.Planner().RerollWeek(cmd.Context(), weekKey(), w)
	if err != nil {
		exitErr("reroll week", err)
	}
	printOutcome(a, out)
	showWeek(a, out, w)
}

func runRegenerate(cmd *cobra.Command, args []string) {
	yes, _ := cmd.Flags().GetBool("yes")
	a := openApp(cmd)
	defer a.Close()

	out, err := a.Planner().Regenerate(cmd.Context(), weekKey(), yes)
	if errors.Is(err, planner.ErrConfirmationRequired) {
		exitErr("regenerate", fmt.Errorf("%w (pass --yes)", err))
	}
	if err != nil {
		exitErr("regenerate", err)
	}
	if !jsonOutput() {
		fmt.Printf("New plan for %s\n", out.State.WeekKey)
	}
	printOutcome(a, out)
	showWeek(a, out, 0)
}

func runRepair(cmd *cobra.Command, args []string) {
	a := openApp(cmd)
	defer a.Close()

	out, err := a.Planner().Repair(cmd.Context(), weekKey())
	if err != nil {
		exitErr("repair", err)
	}
	printOutcome(a, out)
}
