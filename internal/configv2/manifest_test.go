package configv2

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// v2ManifestError normalizes a manifest document that is expected to be
// rejected and returns the normalization error.
func v2ManifestError(t *testing.T, cfg *Config, content string) error {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	doc, err := LoadManifest(path)
	require.NoError(t, err)
	_, err = NormalizeManifest(DefaultSchema(), cfg, doc, "manifest")
	require.Error(t, err)
	return err
}

func TestNormalizeManifestAbsent(t *testing.T) {
	cfg := loadV2Fixture(t, defaultV2Fixture())

	assertEmpty := func(t *testing.T, overrides *ManifestOverrides) {
		t.Helper()
		require.Len(t, overrides.Phases, 3)
		for _, phase := range DefaultSchema().Phases {
			block := overrides.Phases[phase]
			require.NotNil(t, block, phase)
			assert.Empty(t, block.MethodID)
			assert.Empty(t, block.ToolModels)
			assert.Empty(t, block.StepOverrides)
		}
	}

	t.Run("no manifest path", func(t *testing.T) {
		doc, err := LoadManifest("")
		require.NoError(t, err)
		require.Nil(t, doc)

		overrides, err := NormalizeManifest(DefaultSchema(), cfg, doc, "manifest")
		require.NoError(t, err)
		assertEmpty(t, overrides)
	})

	t.Run("manifest without config_v2", func(t *testing.T) {
		assertEmpty(t, normalizedV2Manifest(t, cfg, "task: demo\n"))
	})

	t.Run("null config_v2", func(t *testing.T) {
		assertEmpty(t, normalizedV2Manifest(t, cfg, "config_v2: null\n"))
	})

	t.Run("empty phase_overrides", func(t *testing.T) {
		assertEmpty(t, normalizedV2Manifest(t, cfg, `config_v2:
  phase_overrides: {}
`))
	})
}

func TestNormalizeManifestOverrides(t *testing.T) {
	cfg := loadV2Fixture(t, defaultV2Fixture())

	overrides := normalizedV2Manifest(t, cfg, `task: demo
config_v2:
  phase_overrides:
    impl:
      method_id: safe_impl
      tool_models:
        codex: gpt-5-codex-mini
      step_overrides:
        implement:
          tool: codex
          model: gpt-5-codex-max
          default_mode: normal
          web_research_mode: "off"
    review: {}
`)

	impl := overrides.Phases["impl"]
	require.NotNil(t, impl)
	assert.Equal(t, "safe_impl", impl.MethodID)
	assert.Equal(t, map[string]string{"codex": "gpt-5-codex-mini"}, impl.ToolModels)
	require.Contains(t, impl.StepOverrides, "implement")
	step := impl.StepOverrides["implement"]
	assert.Equal(t, "codex", step.Tool)
	assert.Equal(t, "gpt-5-codex-max", step.Model)
	assert.Equal(t, "normal", step.Mode)
	assert.Equal(t, "off", step.WebMode)

	review := overrides.Phases["review"]
	require.NotNil(t, review)
	assert.Empty(t, review.MethodID)
	assert.Empty(t, review.ToolModels)
	assert.Empty(t, review.StepOverrides)

	plan := overrides.Phases["plan"]
	require.NotNil(t, plan)
	assert.Empty(t, plan.MethodID)
}

func TestNormalizeManifestNullFieldsSkipped(t *testing.T) {
	cfg := loadV2Fixture(t, defaultV2Fixture())

	overrides := normalizedV2Manifest(t, cfg, `config_v2:
  phase_overrides:
    plan:
      step_overrides:
        draft:
          tool: null
          model: ~
`)

	plan := overrides.Phases["plan"]
	require.Contains(t, plan.StepOverrides, "draft")
	step := plan.StepOverrides["draft"]
	assert.Empty(t, step.Tool)
	assert.Empty(t, step.Model)
	assert.Empty(t, step.Mode)
	assert.Empty(t, step.WebMode)
}

func TestNormalizeManifestErrors(t *testing.T) {
	cfg := loadV2Fixture(t, defaultV2Fixture())

	cases := []struct {
		name    string
		content string
		path    string
		reason  string
	}{
		{
			name:    "config_v2 not a mapping",
			content: "config_v2: [1]\n",
			path:    "manifest.config_v2",
			reason:  "must be a mapping",
		},
		{
			name: "unknown config_v2 key",
			content: `config_v2:
  phases: {}
`,
			path:   "manifest.config_v2",
			reason: "unknown keys: phases",
		},
		{
			name: "unknown phase",
			content: `config_v2:
  phase_overrides:
    deploy: {}
`,
			path:   "manifest.config_v2.phase_overrides",
			reason: "unknown keys: deploy",
		},
		{
			name: "phase override not a mapping",
			content: `config_v2:
  phase_overrides:
    impl: 5
`,
			path:   "manifest.config_v2.phase_overrides.impl",
			reason: "must be a mapping",
		},
		{
			name: "unknown phase override key",
			content: `config_v2:
  phase_overrides:
    impl:
      steps: {}
`,
			path:   "manifest.config_v2.phase_overrides.impl",
			reason: "unknown keys: steps",
		},
		{
			name: "null method_id",
			content: `config_v2:
  phase_overrides:
    impl:
      method_id: null
`,
			path:   "manifest.config_v2.phase_overrides.impl.method_id",
			reason: "must be a non-empty string",
		},
		{
			name: "unknown method_id",
			content: `config_v2:
  phase_overrides:
    impl:
      method_id: blitz
`,
			path:   "manifest.config_v2.phase_overrides.impl.method_id",
			reason: "unknown method_id 'blitz' for phase 'impl'",
		},
		{
			name: "unknown tool_models key",
			content: `config_v2:
  phase_overrides:
    impl:
      tool_models:
        claude: claude-sonnet-4.5
`,
			path:   "manifest.config_v2.phase_overrides.impl.tool_models",
			reason: "unknown keys: claude",
		},
		{
			name: "tool model not in allowed_models",
			content: `config_v2:
  phase_overrides:
    impl:
      tool_models:
        codex: gemini-2.5-pro
`,
			path:   "manifest.config_v2.phase_overrides.impl.tool_models.codex",
			reason: "model 'gemini-2.5-pro' is not in allowed_models",
		},
		{
			name: "unknown step_id",
			content: `config_v2:
  phase_overrides:
    impl:
      step_overrides:
        draft: {}
`,
			path:   "manifest.config_v2.phase_overrides.impl.step_overrides.draft",
			reason: "unknown step_id 'draft' for phase 'impl'",
		},
		{
			name: "step override not a mapping",
			content: `config_v2:
  phase_overrides:
    impl:
      step_overrides:
        implement: 5
`,
			path:   "manifest.config_v2.phase_overrides.impl.step_overrides.implement",
			reason: "must be a mapping",
		},
		{
			name: "unknown step override key",
			content: `config_v2:
  phase_overrides:
    impl:
      step_overrides:
        implement:
          effort: high
`,
			path:   "manifest.config_v2.phase_overrides.impl.step_overrides.implement",
			reason: "unknown keys: effort",
		},
		{
			name: "unknown override tool",
			content: `config_v2:
  phase_overrides:
    impl:
      step_overrides:
        implement:
          tool: claude
`,
			path:   "manifest.config_v2.phase_overrides.impl.step_overrides.implement.tool",
			reason: "must be one of: codex, gemini, copilot",
		},
		{
			name: "unknown override mode",
			content: `config_v2:
  phase_overrides:
    impl:
      step_overrides:
        implement:
          default_mode: dry_run
`,
			path:   "manifest.config_v2.phase_overrides.impl.step_overrides.implement.default_mode",
			reason: "must be one of: normal, analysis_only",
		},
		{
			name: "unknown override web mode",
			content: `config_v2:
  phase_overrides:
    impl:
      step_overrides:
        implement:
          web_research_mode: search
`,
			path:   "manifest.config_v2.phase_overrides.impl.step_overrides.implement.web_research_mode",
			reason: "must be one of: off, codex_explicit, gemini_auto, copilot_mcp",
		},
		{
			name: "model not allowed for default tool",
			content: `config_v2:
  phase_overrides:
    impl:
      step_overrides:
        implement:
          model: gemini-2.5-flash
`,
			path:   "manifest.config_v2.phase_overrides.impl.step_overrides.implement.model",
			reason: "model 'gemini-2.5-flash' is not allowed for tool 'codex'",
		},
		{
			name: "model not allowed for overridden tool",
			content: `config_v2:
  phase_overrides:
    impl:
      step_overrides:
        implement:
          tool: gemini
          model: gpt-5-codex
`,
			path:   "manifest.config_v2.phase_overrides.impl.step_overrides.implement.model",
			reason: "model 'gpt-5-codex' is not allowed for tool 'gemini'",
		},
		{
			name: "web mode incompatible with tool",
			content: `config_v2:
  phase_overrides:
    impl:
      step_overrides:
        implement:
          web_research_mode: gemini_auto
`,
			path:   "manifest.config_v2.phase_overrides.impl.step_overrides.implement.web_research_mode",
			reason: "'gemini_auto' is not compatible with tool 'codex'",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v2ManifestError(t, cfg, tc.content)
			assert.Equal(t, tc.path+": "+tc.reason, err.Error())
		})
	}
}
