package display

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/aquila-k/Multi-LLM-Agents-Orchestration/internal/promptaudit"
)

// AuditTable renders a prompt audit report. A failed audit prints the
// FAILED verdict and the missing templates; a passing one prints the OK
// verdict followed by fallback, unknown-profile, and unused-template
// sections when present.
func AuditTable(w io.Writer, report *promptaudit.Report, useColor bool) {
	var missing, fallbacks []string
	for _, tpl := range report.Templates {
		switch tpl.Status {
		case promptaudit.StatusMissing:
			missing = append(missing, fmt.Sprintf("%s/%s: missing %s/%s.md (expected at %s)",
				tpl.Pipeline, tpl.Profile, tpl.Tool, tpl.Role, tpl.Path))
		case promptaudit.StatusFallback:
			fallbacks = append(fallbacks, fmt.Sprintf("%s/%s: %s/%s.md -> %s",
				tpl.Pipeline, tpl.Profile, tpl.Tool, tpl.Role, relToRoot(report.PromptsRoot, tpl.Path)))
		}
	}

	if len(missing) > 0 {
		fmt.Fprintln(w, paint(ansiRed, "PROMPT PROFILE AUDIT: FAILED", useColor))
		for _, item := range missing {
			fmt.Fprintf(w, "  - %s\n", item)
		}
		return
	}

	fmt.Fprintln(w, paint(ansiGreen, "PROMPT PROFILE AUDIT: OK", useColor))
	if len(fallbacks) > 0 {
		fmt.Fprintln(w, "Fallbacks used:")
		for _, item := range fallbacks {
			fmt.Fprintf(w, "  - %s\n", item)
		}
	}
	if len(report.UnknownProfiles) > 0 {
		fmt.Fprintln(w, "Unknown profile directories:")
		for _, item := range report.UnknownProfiles {
			fmt.Fprintf(w, "  - %s\n", item)
		}
	}
	if len(report.ExtraTemplates) > 0 {
		fmt.Fprintln(w, "Unused profile templates:")
		for _, item := range report.ExtraTemplates {
			fmt.Fprintf(w, "  - %s\n", item)
		}
	}
}

// relToRoot shortens path to its form relative to root, falling back to
// the full path when it lies outside root.
func relToRoot(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
}
