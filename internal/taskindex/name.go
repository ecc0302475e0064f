package taskindex

import (
	"fmt"
	"regexp"
	"strings"
)

// Canonical task name length bounds.
const (
	NameMinLen = 16
	NameMaxLen = 72
)

var namePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*[a-z0-9]$`)

// ValidateName checks a task name against the canonical naming rules:
// 16 to 72 characters of lowercase alphanumerics and single hyphens,
// starting and ending alphanumeric.
func ValidateName(name string) error {
	if len(name) < NameMinLen {
		return fmt.Errorf("task name %q is not valid: too short (%d < %d)", name, len(name), NameMinLen)
	}
	if len(name) > NameMaxLen {
		return fmt.Errorf("task name %q is not valid: too long (%d > %d)", name, len(name), NameMaxLen)
	}
	if !namePattern.MatchString(name) {
		return fmt.Errorf("task name %q is not valid: must be lowercase alphanumeric and hyphens with no leading or trailing hyphen", name)
	}
	if strings.Contains(name, "--") {
		return fmt.Errorf("task name %q is not valid: must not contain consecutive hyphens", name)
	}
	return nil
}
