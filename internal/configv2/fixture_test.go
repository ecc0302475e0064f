package configv2

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// v2Fixture maps config-root-relative paths to YAML documents. The
// default fixture is a complete valid configs-v2 tree; tests mutate
// individual entries to provoke specific failures.
type v2Fixture map[string]string

func defaultV2Fixture() v2Fixture {
	return v2Fixture{
		"skills/plan.yaml": `version: 2
skill: plan
default_method_ids:
  - deep_plan
methods:
  deep_plan:
    enabled: true
    steps:
      - draft
      - enrich
      - consolidate
    allowed_tools:
      - codex
      - copilot
    gate_profile: standard
  quick_plan:
    enabled: true
    steps:
      - draft
      - consolidate
    allowed_tools:
      - codex
    gate_profile: minimal
step_defaults:
  draft:
    default_tool: copilot
    default_mode: normal
    web_research_mode: "off"
    description: Draft the initial plan outline
  enrich:
    default_tool: codex
    default_mode: normal
    web_research_mode: codex_explicit
    description: Enrich the draft with repository context
  consolidate:
    default_tool: codex
    default_mode: normal
    web_research_mode: "off"
    description: Consolidate findings into the final plan
`,
		"skills/impl.yaml": `version: 2
skill: impl
default_method_ids:
  - safe_impl
methods:
  safe_impl:
    enabled: true
    steps:
      - test_design
      - implement
      - static_verify
    allowed_tools:
      - codex
    gate_profile: strict
  one_shot:
    enabled: false
    steps:
      - implement
    allowed_tools:
      - codex
    gate_profile: minimal
step_defaults:
  test_design:
    default_tool: codex
    default_mode: normal
    web_research_mode: "off"
    description: Design the test list before implementation
  implement:
    default_tool: codex
    default_mode: normal
    web_research_mode: "off"
    description: Implement the change
  static_verify:
    default_tool: codex
    default_mode: analysis_only
    web_research_mode: "off"
    description: Static verification of the implemented change
`,
		"skills/review.yaml": `version: 2
skill: review
default_method_ids:
  - cross_review
methods:
  cross_review:
    enabled: true
    steps:
      - codex_review
      - gemini_review
      - merge_findings
    allowed_tools:
      - codex
      - gemini
    gate_profile: finding-first
step_defaults:
  codex_review:
    default_tool: codex
    default_mode: analysis_only
    web_research_mode: "off"
    description: Primary review pass
  gemini_review:
    default_tool: gemini
    default_mode: analysis_only
    web_research_mode: gemini_auto
    description: Cross review pass
  merge_findings:
    default_tool: codex
    default_mode: normal
    web_research_mode: "off"
    description: Merge review findings into one report
`,
		"servants/codex.yaml": `version: 2
tool: codex
default_model: gpt-5-codex
allowed_models:
  - gpt-5-codex
  - gpt-5-codex-mini
  - gpt-5-codex-max
wrapper_defaults:
  effort: high
  timeout_ms: 1800000
  timeout_mode: enforce
web_capabilities:
  modes:
    - "off"
    - codex_explicit
purpose_models:
  impl: gpt-5-codex-max
`,
		"servants/gemini.yaml": `version: 2
tool: gemini
default_model: gemini-2.5-pro
allowed_models:
  - gemini-2.5-pro
  - gemini-2.5-flash
wrapper_defaults:
  approval_mode: auto_edit
  sandbox: true
  timeout_ms: 1200000
  timeout_mode: enforce
web_capabilities:
  modes:
    - "off"
    - gemini_auto
`,
		"servants/copilot.yaml": `version: 2
tool: copilot
default_model: claude-sonnet-4.5
allowed_models:
  - claude-sonnet-4.5
  - gpt-5
wrapper_defaults:
  timeout_ms: 900000
  timeout_mode: wait_done
web_capabilities:
  modes:
    - "off"
    - copilot_mcp
`,
		"policies/routing.yaml": `version: 2
stop_policy:
  conditions:
    - impact_surface: high
      confidence: low
      action: STOP_AND_CONFIRM
    - reason_codes_contain: SECURITY_SENSITIVE
      action: STOP_AND_CONFIRM
    - strict_evidence_violation: true
      action: STOP_AND_CONFIRM
  on_stop: write_reason_codes_to_routing_result
confidence_policy:
  values:
    - high
    - medium
    - low
  default: medium
hard_stop_reason_map:
  DESTRUCTIVE_CHANGE: Change deletes or rewrites files outside the task scope
  SECURITY_SENSITIVE: Change touches authentication, secrets, or permissions
reproducibility_policy:
  deterministic_required: true
  on_mismatch: record_ROUTING_NON_DETERMINISTIC_and_stop
route_decider_policy:
  phase_prompt_paths:
    plan: prompts/route/plan.md
    impl: prompts/route/impl.md
    review: prompts/route/review.md
  schema_version: 2
`,
		"policies/review_parallel.yaml": `version: 2
mode: finding-first
join_barrier: required
apply_order: sequential
worker_output_mode: analysis_only
merge_required: true
artifacts:
  findings_dir: review/findings
  merged: review/merged.md
  queue: review/queue.json
`,
		"policies/web_evidence.yaml": `version: 2
strictness: strict
required_fields:
  - evidence_id
  - url
  - accessed_at
  - claim_summary
reason_code_map:
  WEB_EVIDENCE_MISSING: Claim lacks an evidence record
  WEB_EVIDENCE_UNVERIFIABLE: Evidence URL could not be verified
  WEB_EVIDENCE_STALE: Evidence is older than the allowed window
gate_action_on_violation: reject_and_stop
`,
	}
}

func writeV2Fixture(t *testing.T, fixture v2Fixture) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range fixture {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

// loadV2Fixture validates the fixture and fails the test on any error.
func loadV2Fixture(t *testing.T, fixture v2Fixture) *Config {
	t.Helper()
	cfg, err := Load(DefaultSchema(), writeV2Fixture(t, fixture))
	require.NoError(t, err)
	return cfg
}

// normalizedV2Manifest loads and normalizes a manifest document against
// the config.
func normalizedV2Manifest(t *testing.T, cfg *Config, content string) *ManifestOverrides {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	doc, err := LoadManifest(path)
	require.NoError(t, err)
	overrides, err := NormalizeManifest(DefaultSchema(), cfg, doc, "manifest")
	require.NoError(t, err)
	return overrides
}
