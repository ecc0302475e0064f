// Package snapshot renders the validated configuration trees into
// human-facing snapshot documents: a YAML mirror plus markdown summary
// for the split v1 config, and a markdown summary for the v2 config.
// The documents are display-only; nothing reads them back.
package snapshot

import (
	"encoding/json"
	"sort"
)

// jsonInline renders v as single-line JSON for embedding in markdown
// code spans. Inputs are validated config values, which always marshal.
func jsonInline(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(data)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
