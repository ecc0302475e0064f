package display

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aquila-k/Multi-LLM-Agents-Orchestration/internal/promptaudit"
)

func passingAuditReport() *promptaudit.Report {
	return &promptaudit.Report{
		PromptsRoot: "/prompts",
		Templates: []promptaudit.Template{
			{
				Pipeline: "impl", Profile: "safe_impl", Tool: "codex", Role: "impl",
				Path: "/prompts/codex/impl.md", Status: promptaudit.StatusFallback, Title: "Codex Implementation",
			},
			{
				Pipeline: "impl", Profile: "safe_impl", Tool: "copilot", Role: "brief",
				Path: "/prompts/profiles/impl/safe_impl/copilot/brief.md", Status: promptaudit.StatusPresent, Title: "Copilot Briefing",
			},
		},
		UnknownProfiles: []string{"impl/legacy_profile"},
		ExtraTemplates:  []string{"impl/safe_impl: unused gemini/stray.md"},
	}
}

func TestAuditTableOK(t *testing.T) {
	var buf bytes.Buffer

	AuditTable(&buf, passingAuditReport(), false)

	want := `PROMPT PROFILE AUDIT: OK
Fallbacks used:
  - impl/safe_impl: codex/impl.md -> codex/impl.md
Unknown profile directories:
  - impl/legacy_profile
Unused profile templates:
  - impl/safe_impl: unused gemini/stray.md
`
	if buf.String() != want {
		t.Errorf("unexpected table:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestAuditTableOKWithoutSections(t *testing.T) {
	var buf bytes.Buffer
	report := &promptaudit.Report{
		PromptsRoot: "/prompts",
		Templates: []promptaudit.Template{
			{
				Pipeline: "review", Profile: "deep_review", Tool: "gemini", Role: "review",
				Path: "/prompts/profiles/review/deep_review/gemini/review.md", Status: promptaudit.StatusPresent,
			},
		},
		UnknownProfiles: []string{},
		ExtraTemplates:  []string{},
	}

	AuditTable(&buf, report, false)

	if buf.String() != "PROMPT PROFILE AUDIT: OK\n" {
		t.Errorf("expected bare OK verdict, got %q", buf.String())
	}
}

func TestAuditTableFailed(t *testing.T) {
	var buf bytes.Buffer
	report := &promptaudit.Report{
		PromptsRoot: "/prompts",
		Templates: []promptaudit.Template{
			{
				Pipeline: "plan", Profile: "quick", Tool: "copilot", Role: "draft",
				Path: "/prompts/profiles/plan/quick/copilot/draft.md", Status: promptaudit.StatusPresent,
			},
			{
				Pipeline: "plan", Profile: "quick", Tool: "shared", Role: "cross_review",
				Path: "/prompts/profiles/plan/quick/shared/cross_review.md", Status: promptaudit.StatusMissing,
			},
		},
		UnknownProfiles: []string{"plan/old_profile"},
		ExtraTemplates:  []string{},
		MissingCount:    1,
	}

	AuditTable(&buf, report, false)

	want := `PROMPT PROFILE AUDIT: FAILED
  - plan/quick: missing shared/cross_review.md (expected at /prompts/profiles/plan/quick/shared/cross_review.md)
`
	if buf.String() != want {
		t.Errorf("unexpected table:\n%s\nwant:\n%s", buf.String(), want)
	}
	// A failed audit stops at the missing list.
	if strings.Contains(buf.String(), "Unknown profile directories:") {
		t.Error("failed verdict must not print the unknown-profile section")
	}
}

func TestAuditTableColor(t *testing.T) {
	var buf bytes.Buffer

	AuditTable(&buf, passingAuditReport(), true)

	if !strings.Contains(buf.String(), "\x1b[32mPROMPT PROFILE AUDIT: OK\x1b[0m") {
		t.Errorf("expected green OK verdict, got %q", buf.String())
	}

	buf.Reset()
	failing := &promptaudit.Report{
		PromptsRoot: "/prompts",
		Templates: []promptaudit.Template{
			{
				Pipeline: "impl", Profile: "safe_impl", Tool: "codex", Role: "impl",
				Path: "/prompts/profiles/impl/safe_impl/codex/impl.md", Status: promptaudit.StatusMissing,
			},
		},
		MissingCount: 1,
	}
	AuditTable(&buf, failing, true)

	if !strings.Contains(buf.String(), "\x1b[31mPROMPT PROFILE AUDIT: FAILED\x1b[0m") {
		t.Errorf("expected red FAILED verdict, got %q", buf.String())
	}
	// Item lines stay uncolored.
	if !strings.Contains(buf.String(), "\n  - impl/safe_impl: missing codex/impl.md") {
		t.Errorf("expected plain item line, got %q", buf.String())
	}
}
