package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setupEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("MEAL_PLANNER_DB", filepath.Join(dir, "planner.db"))
	t.Setenv("MEAL_PLANNER_STORE", "sqlite")
	t.Setenv("MEAL_PLANNER_IMPORTS", filepath.Join(dir, "imports.json"))
	t.Setenv("MEAL_PLANNER_CATALOG", "")
}

// run executes the root command and returns what it printed.
func run(t *testing.T, args ...string) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	old := os.Stdout
	os.Stdout = w

	RootCmd.SetArgs(args)
	execErr := RootCmd.ExecuteContext(context.Background())

	w.Close()
	os.Stdout = old
	out, _ := io.ReadAll(r)
	if execErr != nil {
		t.Fatalf("%v failed: %v", args, execErr)
	}
	return string(out)
}

func TestCommands(t *testing.T) {
	setupEnv(t)
	week := "--week=2026-10-14"

	var view stateView
	out := run(t, "show", week, "--seed=3", "--format=json")
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("Expected JSON output, got %q: %v", out, err)
	}
	if view.WeekKey != "2026-10-12" || !view.Regenerated {
		t.Errorf("Expected a new plan for 2026-10-12, got %s (regenerated=%v)", view.WeekKey, view.Regenerated)
	}

	out = run(t, "lock", "1", "wed", "lunch", week, "--format=text")
	if !strings.HasPrefix(out, "Locked Wed 14 Oct lunch") {
		t.Errorf("Expected a lock confirmation, got %q", out)
	}

	out = run(t, "show", week, "--format=json")
	view = stateView{}
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatal(err)
	}
	if !view.Locks[0][2][1] {
		t.Error("Expected Wednesday lunch of week 1 to be locked")
	}
	if view.Regenerated {
		t.Error("Expected the stored plan on the second show")
	}

	out = run(t, "shopping-list", "1", week, "--format=text")
	if !strings.HasPrefix(out, "Shopping list, week 1 of 2026-10-12") {
		t.Errorf("Expected a shopping list header, got %q", out)
	}

	out = run(t, "weeks", "--format=json")
	if !strings.Contains(out, `"2026-10-12"`) {
		t.Errorf("Expected the stored week, got %q", out)
	}
}
