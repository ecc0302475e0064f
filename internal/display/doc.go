// Package display provides terminal rendering for the human-facing reports
// of the CLI: the prompt audit table and the task migration listing.
//
// All other command output is machine-readable (the literal "OK" line or
// sorted-key JSON); this package centralizes the two surfaces meant for
// people, together with their ANSI color handling.
//
// # Audit Table
//
// Render a prompt audit report:
//
//	display.AuditTable(os.Stdout, report, display.ShouldColor(os.Stdout))
//
// A failed audit lists the missing templates; a passing one is followed by
// fallback, unknown-profile, and unused-template sections when present.
//
// # Migration Listing
//
// Render a task migration sweep:
//
//	display.MigrationListing(os.Stdout, report, indexPath, useColor)
//	display.ApplyHint(os.Stdout)
//
// # Warning Messages
//
// Display warnings with optional components:
//
//	warning := display.Warning{
//	    Title:      "Some task directories could not be scanned",
//	    Files:      report.ScanErrors,
//	    Suggestion: "Fix the listed paths and rerun the sweep.",
//	}
//	warning.Display(os.Stderr, useColor)
//
// # ANSI Colors
//
// The package uses ANSI escape codes for terminal colors:
//   - Green (\x1b[32m) for success verdicts
//   - Red (\x1b[31m) for failures
//   - Yellow (\x1b[33m) for warnings and pending work
//   - Reset (\x1b[0m) after each colored section
//
// Colors are opt-in per call: pass ShouldColor(w), which checks for a TTY
// and honors NO_COLOR. Renderers accept io.Writer interfaces for
// testability.
package display
