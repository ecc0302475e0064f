package taskindex

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateName(t *testing.T) {
	valid := []string{
		"fix-login-timeout-bug",
		"abcdefgh12345678",
		"refactor-config-loader-errors",
		strings.Repeat("a", 72),
	}
	for _, name := range valid {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, ValidateName(name))
		})
	}
}

func TestValidateNameErrors(t *testing.T) {
	cases := []struct {
		label  string
		name   string
		reason string
	}{
		{"too short", "short-name", `task name "short-name" is not valid: too short (10 < 16)`},
		{"too long", strings.Repeat("a", 73), `task name "` + strings.Repeat("a", 73) + `" is not valid: too long (73 > 72)`},
		{"uppercase", "Fix-Login-Timeout-Bug", `task name "Fix-Login-Timeout-Bug" is not valid: must be lowercase alphanumeric and hyphens with no leading or trailing hyphen`},
		{"underscores", "fix_login_timeout_bug", `task name "fix_login_timeout_bug" is not valid: must be lowercase alphanumeric and hyphens with no leading or trailing hyphen`},
		{"leading hyphen", "-fix-login-timeout-bug", `task name "-fix-login-timeout-bug" is not valid: must be lowercase alphanumeric and hyphens with no leading or trailing hyphen`},
		{"trailing hyphen", "fix-login-timeout-bug-", `task name "fix-login-timeout-bug-" is not valid: must be lowercase alphanumeric and hyphens with no leading or trailing hyphen`},
		{"consecutive hyphens", "fix--login-timeout-bug", `task name "fix--login-timeout-bug" is not valid: must not contain consecutive hyphens`},
	}
	for _, tc := range cases {
		t.Run(tc.label, func(t *testing.T) {
			require.EqualError(t, ValidateName(tc.name), tc.reason)
		})
	}
}
