package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// configFixture maps config-root-relative paths to YAML documents. The
// default fixture is a valid split config exercising both file shapes;
// tests mutate individual entries to provoke specific failures.
type configFixture map[string]string

func defaultFixture() configFixture {
	return configFixture{
		"servant/codex.yaml": `version: 1
tool: codex
default_model: gpt-5-codex
allowed_models:
  - gpt-5-codex
  - gpt-5-codex-mini
  - gpt-5-codex-nano
  - gpt-5-codex-max
wrapper_defaults:
  effort: high
  timeout_ms: 1800000
  timeout_mode: enforce
purpose_models:
  impl: gpt-5-codex-max
  plan: gpt-5-codex-nano
  one_shot: gpt-5-codex-mini
purpose_efforts:
  impl: xhigh
  review: medium
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
    stage_efforts:
      codex_impl: low
  one_shot_impl:
    stages:
      - codex_runbook
      - codex_test_design
      - codex_impl
      - gemini_review
    flags:
      enable_brief: false
      enable_verify: true
      enable_review: true
    options:
      impl_mode: one_shot
      timeout_mode: wait_done
`,
		"pipeline/review-pipeline.yaml": `default_profile: review_cross
profiles:
  review_cross:
    stages:
      - codex_review
      - gemini_cross_review
    flags:
      enable_verify: true
      enable_review: true
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
      enable_stage2_gemini: true
      enable_stage3_cross_review: true
    options:
      consolidate_mode: standard
      timeout_mode: wait_done
    stage_models:
      codex_enrich: gpt-5-codex-mini
    stage_efforts:
      codex_cross_review: xhigh
  quick:
    options:
      timeout_mode: enforce
`,
	}
}

// writeFixture materializes the fixture under a temp directory and
// returns the config root path.
func writeFixture(t *testing.T, fixture configFixture) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range fixture {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

// loadFixture validates the fixture and fails the test on any error.
func loadFixture(t *testing.T, fixture configFixture) *Config {
	t.Helper()
	cfg, err := Load(DefaultSchema(), writeFixture(t, fixture))
	require.NoError(t, err)
	return cfg
}

// writeManifest writes a manifest document and returns its path.
func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// normalizedManifest loads and normalizes a manifest document against
// the config.
func normalizedManifest(t *testing.T, cfg *Config, content string) *ManifestOverrides {
	t.Helper()
	path := writeManifest(t, content)
	doc, err := LoadManifest(path)
	require.NoError(t, err)
	overrides, err := NormalizeManifest(DefaultSchema(), cfg, doc, "manifest")
	require.NoError(t, err)
	return overrides
}
