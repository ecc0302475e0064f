package schema

import (
	"fmt"
	"sort"
	"strings"
)

// EnsureKeys rejects any key of m outside the allowed set. Unknown keys
// are listed sorted in the error so the message is deterministic.
func EnsureKeys(m map[string]any, allowed []string, path string) error {
	allowedSet := make(map[string]bool, len(allowed))
	for _, key := range allowed {
		allowedSet[key] = true
	}

	var unknown []string
	for key := range m {
		if !allowedSet[key] {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return Errorf(path, "unknown keys: %s", strings.Join(unknown, ", "))
	}
	return nil
}

// SortedKeys returns the keys of m in sorted order. Validation iterates
// mappings through this helper so fail-fast errors are deterministic.
func SortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Mapping asserts that v is a mapping with string keys.
func Mapping(v any, path string) (map[string]any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, NewError(path, "must be a mapping")
	}
	return m, nil
}

// OptionalMapping is Mapping, but treats an absent or null value as an
// empty mapping.
func OptionalMapping(v any, path string) (map[string]any, error) {
	if v == nil {
		return map[string]any{}, nil
	}
	return Mapping(v, path)
}

// String asserts that v is a string.
func String(v any, path string) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", NewError(path, "must be a string")
	}
	return s, nil
}

// NonEmptyString asserts that v is a string with non-blank content.
func NonEmptyString(v any, path string) (string, error) {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", NewError(path, "must be a non-empty string")
	}
	return s, nil
}

// Bool asserts that v is a boolean.
func Bool(v any, path string) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, NewError(path, "must be a boolean")
	}
	return b, nil
}

// NonNegativeInt asserts that v is an integer greater than or equal to
// zero.
func NonNegativeInt(v any, path string) (int, error) {
	switch n := v.(type) {
	case int:
		if n >= 0 {
			return n, nil
		}
	case int64:
		if n >= 0 {
			return int(n), nil
		}
	}
	return 0, NewError(path, "must be a non-negative integer")
}

// StringList asserts that v is a list of non-empty strings.
func StringList(v any, path string) ([]string, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, NewError(path, "must be a list")
	}

	out := make([]string, 0, len(list))
	for i, item := range list {
		s, ok := item.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return nil, NewError(fmt.Sprintf("%s[%d]", path, i), "must be a non-empty string")
		}
		out = append(out, s)
	}
	return out, nil
}

// OneOf asserts that v is a string drawn from the allowed vocabulary.
// The vocabulary is listed sorted in the error message.
func OneOf(v any, allowed []string, path string) (string, error) {
	s, ok := v.(string)
	if ok {
		for _, candidate := range allowed {
			if s == candidate {
				return s, nil
			}
		}
	}
	return "", Errorf(path, "must be one of: %s", joinSorted(allowed))
}

// Vocabulary reports whether value belongs to the allowed set, for
// checks that need their own error message.
func Vocabulary(value string, allowed []string) bool {
	for _, candidate := range allowed {
		if value == candidate {
			return true
		}
	}
	return false
}

func joinSorted(values []string) string {
	sorted := make([]string, len(values))
	copy(sorted, values)
	sort.Strings(sorted)
	return strings.Join(sorted, ", ")
}
