package configv2

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePhaseDefaults(t *testing.T) {
	sch := DefaultSchema()
	cfg := loadV2Fixture(t, defaultV2Fixture())

	res, err := Resolve(sch, cfg, EmptyOverrides(sch), "plan", "", "")
	require.NoError(t, err)

	assert.Equal(t, "plan", res.Phase)
	assert.Equal(t, 2, res.Version)
	assert.Equal(t, "deep_plan", res.SelectedMethodID)
	assert.Equal(t, []string{"draft", "enrich", "consolidate"}, res.ResolvedSteps)

	assert.Equal(t, map[string]*ResolvedStep{
		"draft":       {Mode: "normal", Model: "claude-sonnet-4.5", Tool: "copilot", WebMode: "off"},
		"enrich":      {Mode: "normal", Model: "gpt-5-codex", Tool: "codex", WebMode: "codex_explicit"},
		"consolidate": {Mode: "normal", Model: "gpt-5-codex", Tool: "codex", WebMode: "off"},
	}, res.StepAgentModels)

	manifest := res.AppliedOverrides.Manifest
	assert.Nil(t, manifest.MethodID)
	assert.Empty(t, manifest.StepOverrides)
	assert.Empty(t, manifest.ToolModels)
	assert.Nil(t, res.AppliedOverrides.Runtime.MethodID)
	assert.Nil(t, res.AppliedOverrides.Runtime.StepID)
}

func TestResolvePhaseMissingOverrideBlock(t *testing.T) {
	cfg := loadV2Fixture(t, defaultV2Fixture())
	overrides := &ManifestOverrides{Phases: map[string]*PhaseOverride{}}

	res, err := Resolve(DefaultSchema(), cfg, overrides, "plan", "", "")
	require.NoError(t, err)
	assert.Equal(t, "deep_plan", res.SelectedMethodID)
	assert.Nil(t, res.AppliedOverrides.Manifest.MethodID)
}

func TestResolvePhaseManifestOverrides(t *testing.T) {
	cfg := loadV2Fixture(t, defaultV2Fixture())
	overrides := normalizedV2Manifest(t, cfg, `config_v2:
  phase_overrides:
    plan:
      method_id: quick_plan
      tool_models:
        codex: gpt-5-codex-mini
      step_overrides:
        draft:
          tool: codex
          model: gpt-5-codex-max
`)

	res, err := Resolve(DefaultSchema(), cfg, overrides, "plan", "", "")
	require.NoError(t, err)

	assert.Equal(t, "quick_plan", res.SelectedMethodID)
	assert.Equal(t, []string{"draft", "consolidate"}, res.ResolvedSteps)

	// The step's own model override beats the phase tool_models pin,
	// which in turn beats the servant default.
	assert.Equal(t, map[string]*ResolvedStep{
		"draft":       {Mode: "normal", Model: "gpt-5-codex-max", Tool: "codex", WebMode: "off"},
		"consolidate": {Mode: "normal", Model: "gpt-5-codex-mini", Tool: "codex", WebMode: "off"},
	}, res.StepAgentModels)

	manifest := res.AppliedOverrides.Manifest
	require.NotNil(t, manifest.MethodID)
	assert.Equal(t, "quick_plan", *manifest.MethodID)
	assert.Equal(t, map[string]string{"codex": "gpt-5-codex-mini"}, manifest.ToolModels)
	assert.Equal(t, map[string]map[string]string{
		"draft": {"tool": "codex", "model": "gpt-5-codex-max"},
	}, manifest.StepOverrides)
}

func TestResolvePhaseRuntimeOverridesManifest(t *testing.T) {
	cfg := loadV2Fixture(t, defaultV2Fixture())
	overrides := normalizedV2Manifest(t, cfg, `config_v2:
  phase_overrides:
    plan:
      method_id: quick_plan
`)

	res, err := Resolve(DefaultSchema(), cfg, overrides, "plan", "deep_plan", "")
	require.NoError(t, err)

	assert.Equal(t, "deep_plan", res.SelectedMethodID)
	assert.Equal(t, []string{"draft", "enrich", "consolidate"}, res.ResolvedSteps)

	require.NotNil(t, res.AppliedOverrides.Manifest.MethodID)
	assert.Equal(t, "quick_plan", *res.AppliedOverrides.Manifest.MethodID)
	require.NotNil(t, res.AppliedOverrides.Runtime.MethodID)
	assert.Equal(t, "deep_plan", *res.AppliedOverrides.Runtime.MethodID)
}

func TestResolvePhaseStepRestriction(t *testing.T) {
	sch := DefaultSchema()
	cfg := loadV2Fixture(t, defaultV2Fixture())

	res, err := Resolve(sch, cfg, EmptyOverrides(sch), "impl", "", "static_verify")
	require.NoError(t, err)

	assert.Equal(t, "safe_impl", res.SelectedMethodID)
	assert.Equal(t, []string{"static_verify"}, res.ResolvedSteps)
	assert.Equal(t, map[string]*ResolvedStep{
		"static_verify": {Mode: "analysis_only", Model: "gpt-5-codex", Tool: "codex", WebMode: "off"},
	}, res.StepAgentModels)
	require.NotNil(t, res.AppliedOverrides.Runtime.StepID)
	assert.Equal(t, "static_verify", *res.AppliedOverrides.Runtime.StepID)
}

func TestResolvePhaseErrors(t *testing.T) {
	sch := DefaultSchema()
	cfg := loadV2Fixture(t, defaultV2Fixture())

	cases := []struct {
		name     string
		phase    string
		methodID string
		stepID   string
		want     string
	}{
		{
			name:     "unknown method",
			phase:    "plan",
			methodID: "mystery",
			want:     "resolved method_id 'mystery' is not defined in skills.plan.methods",
		},
		{
			name:     "disabled method",
			phase:    "impl",
			methodID: "one_shot",
			want:     "resolved method_id 'one_shot' is disabled",
		},
		{
			name:   "step outside method",
			phase:  "impl",
			stepID: "draft",
			want:   "step_id 'draft' is not part of resolved method 'safe_impl'",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Resolve(sch, cfg, EmptyOverrides(sch), tc.phase, tc.methodID, tc.stepID)
			require.Error(t, err)
			assert.Equal(t, tc.want, err.Error())
		})
	}
}

// Resolution re-checks compatibility and model membership on the merged
// assignment even though manifest normalization already rejects bad
// overrides on their own.
func TestResolvePhaseGuards(t *testing.T) {
	sch := DefaultSchema()

	t.Run("incompatible web mode after tool override", func(t *testing.T) {
		cfg := loadV2Fixture(t, defaultV2Fixture())
		overrides := EmptyOverrides(sch)
		overrides.Phases["review"].StepOverrides["gemini_review"] = &StepOverride{Tool: "codex"}

		_, err := Resolve(sch, cfg, overrides, "review", "", "")
		require.Error(t, err)
		assert.Equal(t, "step 'gemini_review' web_research_mode 'gemini_auto' is not compatible with tool 'codex'", err.Error())
	})

	t.Run("model outside allowed_models", func(t *testing.T) {
		cfg := loadV2Fixture(t, defaultV2Fixture())
		overrides := EmptyOverrides(sch)
		overrides.Phases["impl"].StepOverrides["implement"] = &StepOverride{Model: "gemini-2.5-pro"}

		_, err := Resolve(sch, cfg, overrides, "impl", "", "")
		require.Error(t, err)
		assert.Equal(t, "step 'implement' resolved model 'gemini-2.5-pro' is not allowed for tool 'codex'", err.Error())
	})

	t.Run("empty default method list", func(t *testing.T) {
		cfg := loadV2Fixture(t, defaultV2Fixture())
		cfg.Skills["plan"].DefaultMethodIDs = nil

		_, err := Resolve(sch, cfg, EmptyOverrides(sch), "plan", "", "")
		require.Error(t, err)
		assert.Equal(t, "skills.plan.default_method_ids must not be empty", err.Error())
	})

	t.Run("method without steps", func(t *testing.T) {
		cfg := loadV2Fixture(t, defaultV2Fixture())
		cfg.Skills["plan"].Methods["deep_plan"].Steps = nil

		_, err := Resolve(sch, cfg, EmptyOverrides(sch), "plan", "", "")
		require.Error(t, err)
		assert.Equal(t, "resolved method 'deep_plan' has no steps", err.Error())
	})
}

func TestResolutionJSON(t *testing.T) {
	cfg := loadV2Fixture(t, defaultV2Fixture())
	overrides := normalizedV2Manifest(t, cfg, `config_v2:
  phase_overrides:
    impl:
      tool_models:
        codex: gpt-5-codex-max
`)

	res, err := Resolve(DefaultSchema(), cfg, overrides, "impl", "", "implement")
	require.NoError(t, err)

	data, err := json.MarshalIndent(res, "", "  ")
	require.NoError(t, err)

	want := `{
  "applied_overrides": {
    "manifest": {
      "method_id": null,
      "step_overrides": {},
      "tool_models": {
        "codex": "gpt-5-codex-max"
      }
    },
    "runtime": {
      "method_id": null,
      "step_id": "implement"
    }
  },
  "phase": "impl",
  "resolved_steps": [
    "implement"
  ],
  "selected_method_id": "safe_impl",
  "step_agent_model_map": {
    "implement": {
      "default_mode": "normal",
      "model": "gpt-5-codex-max",
      "tool": "codex",
      "web_research_mode": "off"
    }
  },
  "version": 2
}`
	assert.Equal(t, want, string(data))
}
