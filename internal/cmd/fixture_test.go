package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

// writeFiles materializes a map of relative paths to file contents
// under a fresh temp directory and returns its root.
func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	return root
}

// writeFile writes one file into a fresh temp directory and returns
// its path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// writeConfigRoot writes a valid split v1 config tree and returns it.
func writeConfigRoot(t *testing.T) string {
	t.Helper()
	return writeFiles(t, map[string]string{
		"servant/codex.yaml": `version: 1
tool: codex
default_model: gpt-5-codex
allowed_models:
  - gpt-5-codex
  - gpt-5-codex-mini
  - gpt-5-codex-nano
wrapper_defaults:
  effort: high
  timeout_ms: 1800000
  timeout_mode: enforce
purpose_models:
  impl: gpt-5-codex
  plan: gpt-5-codex-nano
`,
		"servant/gemini.yaml": `default_model: gemini-2.5-pro
allowed_models:
  - gemini-2.5-pro
  - gemini-2.5-flash
wrapper_defaults:
  approval_mode: auto_edit
  sandbox: true
  timeout_ms: 1200000
  timeout_mode: enforce
purpose_models:
  review: gemini-2.5-flash
`,
		"servant/copilot.yaml": `default_model: claude-sonnet-4.5
allowed_models:
  - claude-sonnet-4.5
  - gpt-5
wrapper_defaults:
  timeout_ms: 900000
  timeout_mode: wait_done
`,
		"pipeline/impl-pipeline.yaml": `version: 1
pipeline: impl
default_profile: safe_impl
profiles:
  safe_impl:
    stages:
      - copilot_brief
      - codex_test_design
      - codex_impl
      - codex_static_verify
      - gemini_review
    flags:
      enable_brief: true
      enable_verify: true
      enable_review: true
    options:
      impl_mode: safe
    stage_models:
      codex_impl: gpt-5-codex-mini
  one_shot_impl:
    stages:
      - codex_runbook
      - codex_test_design
      - codex_impl
      - gemini_review
    flags:
      enable_brief: false
    options:
      impl_mode: one_shot
`,
		"pipeline/review-pipeline.yaml": `default_profile: review_cross
profiles:
  review_cross:
    stages:
      - codex_review
      - gemini_cross_review
    options:
      review_mode: cross
  codex_only:
    stages:
      - codex_review
    options:
      review_mode: codex_only
`,
		"pipeline/plan-pipeline.yaml": `default_profile: standard
profiles:
  standard:
    flags:
      enable_stage2_codex: true
      enable_stage3_cross_review: true
    options:
      consolidate_mode: standard
      timeout_mode: wait_done
    stage_models:
      codex_enrich: gpt-5-codex-mini
  quick:
    options:
      timeout_mode: enforce
`,
	})
}

// writeV2Root writes a valid configs-v2 tree and returns it.
func writeV2Root(t *testing.T) string {
	t.Helper()
	return writeFiles(t, map[string]string{
		"skills/plan.yaml": `version: 2
skill: plan
default_method_ids:
  - deep_plan
methods:
  deep_plan:
    enabled: true
    steps:
      - draft
      - consolidate
    allowed_tools:
      - codex
      - copilot
    gate_profile: standard
  quick_plan:
    enabled: true
    steps:
      - draft
    allowed_tools:
      - codex
    gate_profile: minimal
step_defaults:
  draft:
    default_tool: copilot
    default_mode: normal
    web_research_mode: "off"
    description: Draft the initial plan outline
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
`,
		"servants/codex.yaml": `version: 2
tool: codex
default_model: gpt-5-codex
allowed_models:
  - gpt-5-codex
  - gpt-5-codex-mini
wrapper_defaults:
  effort: high
  timeout_ms: 1800000
  timeout_mode: enforce
web_capabilities:
  modes:
    - "off"
    - codex_explicit
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
  on_stop: write_reason_codes_to_routing_result
confidence_policy:
  values:
    - high
    - medium
    - low
  default: medium
hard_stop_reason_map:
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
gate_action_on_violation: reject_and_stop
`,
	})
}
