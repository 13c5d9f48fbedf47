package metrics

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"wellness-meal-planner/internal/database"
	"wellness-meal-planner/internal/shared"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "metrics.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStore(db.SQL)
}

func TestStore(t *testing.T) {
	s := newTestStore(t)

	metas := []shared.OpMeta{
		{Operation: "swap", WeekKey: "2026-10-12", Changed: 1, Latency: 3 * time.Millisecond},
		{Operation: "load", WeekKey: "2026-10-12", Fallbacks: 6, Degraded: true, Latency: 9 * time.Millisecond},
		{Operation: "import", Usage: shared.TokenUsage{Model: "gemini", PromptTokens: 120, CompletionTokens: 4}},
	}
	for _, m := range metas {
		if err := s.RecordMeta(m); err != nil {
			t.Fatalf("RecordMeta failed: %v", err)
		}
	}
	old := OperationMetric{Operation: "repair", Timestamp: time.Now().UTC().AddDate(0, 0, -40)}
	if err := s.Record(old); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	t.Run("DailySummary", func(t *testing.T) {
		summary, err := s.GetDailySummary(7)
		if err != nil {
			t.Fatalf("GetDailySummary failed: %v", err)
		}
		if len(summary) != 1 {
			t.Fatalf("Expected 1 day, got %d", len(summary))
		}
		got := summary[0]
		if got.Operations != 3 {
			t.Errorf("Expected 3 operations, got %d", got.Operations)
		}
		if got.Fallbacks != 6 || got.Degraded != 1 {
			t.Errorf("Expected 6 fallbacks and 1 degraded, got %d and %d", got.Fallbacks, got.Degraded)
		}
		if got.TotalPrompt != 120 {
			t.Errorf("Expected 120 prompt tokens, got %d", got.TotalPrompt)
		}
	})

	t.Run("Cleanup", func(t *testing.T) {
		n, err := s.Cleanup(30)
		if err != nil {
			t.Fatalf("Cleanup failed: %v", err)
		}
		if n != 1 {
			t.Errorf("Expected 1 deleted record, got %d", n)
		}
	})
}

func TestGetSysHealth(t *testing.T) {
	h := GetSysHealth(t.TempDir())
	if h.Goroutines == 0 {
		t.Error("Expected at least one goroutine")
	}
	if h.DataDiskSize != "0 B" {
		t.Errorf("Expected '0 B' for an empty directory, got '%s'", h.DataDiskSize)
	}
}

func TestReport(t *testing.T) {
	out := Report(SysHealth{DataDiskSize: "1.5 KB"}, []DailySummary{{Date: "2026-10-17", Operations: 4, Fallbacks: 2}})
	if !strings.Contains(out, "2026-10-17") || !strings.Contains(out, "1.5 KB") {
		t.Errorf("Expected the report to include the day and disk size, got:\n%s", out)
	}
	if empty := Report(SysHealth{}, nil); !strings.Contains(empty, "No operations recorded") {
		t.Errorf("Expected an empty notice, got:\n%s", empty)
	}
}
