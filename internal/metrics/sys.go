package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// SysHealth is a snapshot of process and data directory health.
type SysHealth struct {
	AllocMB      uint64
	SysMB        uint64
	NumGC        uint32
	Goroutines   int
	DataDiskSize string

	// Filled in by the caller.
	Schema         string
	CatalogVersion string
	Recipes        int
	StoredWeeks    int
}

// GetSysHealth collects real-time health data. dataPath may be a file or a
// directory; a missing path counts as empty.
func GetSysHealth(dataPath string) SysHealth {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return SysHealth{
		AllocMB:      m.Alloc / 1024 / 1024,
		SysMB:        m.Sys / 1024 / 1024,
		NumGC:        m.NumGC,
		Goroutines:   runtime.NumGoroutine(),
		DataDiskSize: humanSize(dirSize(dataPath)),
	}
}

func dirSize(path string) int64 {
	var size int64
	_ = filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size
}

func humanSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

// Report renders health and daily summaries as plain text.
func Report(h SysHealth, days []DailySummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "System\n  memory: %d MB alloc / %d MB sys, gc: %d, goroutines: %d\n  data: %s\n",
		h.AllocMB, h.SysMB, h.NumGC, h.Goroutines, h.DataDiskSize)
	if h.Schema != "" {
		fmt.Fprintf(&b, "  schema: %s\n", h.Schema)
	}
	if h.CatalogVersion != "" {
		fmt.Fprintf(&b, "Catalog\n  version: %s, recipes: %d, stored weeks: %d\n", h.CatalogVersion, h.Recipes, h.StoredWeeks)
	}
	if len(days) == 0 {
		b.WriteString("\nNo operations recorded.\n")
		return b.String()
	}
	b.WriteString("\nDay         ops  fallbacks  fixed  degraded  avg ms  tokens\n")
	for _, d := range days {
		fmt.Fprintf(&b, "%-10s  %3d  %9d  %5d  %8d  %6.1f  %d\n",
			d.Date, d.Operations, d.Fallbacks, d.Fixed, d.Degraded, d.AverageLatencyMS, d.TotalPrompt+d.TotalCompletion)
	}
	return b.String()
}
