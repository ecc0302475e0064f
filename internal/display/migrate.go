package display

import (
	"fmt"
	"io"

	"github.com/aquila-k/Multi-LLM-Agents-Orchestration/internal/taskindex"
)

// MigrationListing renders a task migration sweep: one block per scanned
// task directory with its status against the index, then a pending
// count. Scan problems render as a trailing warning block.
func MigrationListing(w io.Writer, report *taskindex.MigrateReport, indexPath string, useColor bool) {
	fmt.Fprintln(w, "=== Task Migration Report ===")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Tasks dir: %s\n", report.TasksDir)
	fmt.Fprintf(w, "Index:     %s\n", indexPath)
	fmt.Fprintln(w)

	if len(report.Entries) == 0 {
		fmt.Fprintln(w, "No task directories found.")
	} else {
		for _, entry := range report.Entries {
			tag := "[" + entry.Status + "]"
			fmt.Fprintf(w, "  %s %s\n", paint(statusColor(entry.Status), tag, useColor), entry.Name)
			fmt.Fprintf(w, "    path:    %s\n", entry.Path)
			if entry.Summary != "" {
				fmt.Fprintf(w, "    summary: %s\n", entry.Summary)
			}
			if entry.Detail != "" {
				fmt.Fprintf(w, "    reason:  %s\n", entry.Detail)
			}
			fmt.Fprintln(w)
		}

		if pending := len(report.Pending()); pending > 0 {
			fmt.Fprintln(w, paint(ansiYellow, fmt.Sprintf("%d task(s) pending.", pending), useColor))
		} else {
			fmt.Fprintln(w, paint(ansiGreen, "Index covers every scanned task.", useColor))
		}
	}

	if len(report.ScanErrors) > 0 {
		fmt.Fprintln(w)
		Warning{
			Title:      "Some task directories could not be scanned",
			Files:      report.ScanErrors,
			Suggestion: "Fix the listed paths and rerun the sweep.",
		}.Display(w, useColor)
	}
}

// ApplyHint prints how to apply the pending entries.
func ApplyHint(w io.Writer) {
	fmt.Fprintln(w, "Run with --apply to add pending tasks to the index.")
}

// ApplySummary prints the outcome of an apply pass.
func ApplySummary(w io.Writer, added int, indexPath string, useColor bool) {
	fmt.Fprintln(w, paint(ansiGreen, fmt.Sprintf("Added %d task(s) to %s.", added, indexPath), useColor))
}

// statusColor maps a migration status to its ANSI code.
func statusColor(status string) string {
	switch status {
	case taskindex.MigrateIndexed:
		return ansiGreen
	case taskindex.MigratePending:
		return ansiYellow
	default:
		return ansiRed
	}
}
