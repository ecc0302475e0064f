package taskindex

import (
	"errors"
	"sort"
	"strings"
)

// Enrich merges search metadata into the named entry, creating the
// entry when absent. A non-empty summary replaces the stored one;
// requirements and scope lines merge as sorted unions. At least one
// field must be given.
func (ix *Index) Enrich(name, summary string, requirements, scope []string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	summary = strings.TrimSpace(summary)
	requirements = cleanLines(requirements)
	scope = cleanLines(scope)
	if summary == "" && len(requirements) == 0 && len(scope) == 0 {
		return errors.New("nothing to enrich: no summary, requirements, or scope given")
	}

	entry := ix.Tasks[name]
	if entry == nil {
		entry = &Entry{Requirements: []string{}, Scope: []string{}}
		ix.Tasks[name] = entry
	}
	if summary != "" {
		entry.Summary = summary
	}
	entry.Requirements = sortedUnion(entry.Requirements, requirements)
	entry.Scope = sortedUnion(entry.Scope, scope)
	return nil
}

func cleanLines(lines []string) []string {
	out := []string{}
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// sortedUnion merges two line lists into a sorted, deduplicated list.
func sortedUnion(existing, added []string) []string {
	seen := map[string]struct{}{}
	for _, line := range existing {
		seen[line] = struct{}{}
	}
	for _, line := range added {
		seen[line] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for line := range seen {
		out = append(out, line)
	}
	sort.Strings(out)
	return out
}
