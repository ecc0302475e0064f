package configv2

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadValidTree(t *testing.T) {
	cfg := loadV2Fixture(t, defaultV2Fixture())

	plan := cfg.Skills["plan"]
	require.NotNil(t, plan)
	assert.Equal(t, "plan", plan.Phase)
	assert.Equal(t, []string{"deep_plan"}, plan.DefaultMethodIDs)

	deep := plan.Methods["deep_plan"]
	require.NotNil(t, deep)
	assert.True(t, deep.Enabled)
	assert.Equal(t, []string{"draft", "enrich", "consolidate"}, deep.Steps)
	assert.Equal(t, []string{"codex", "copilot"}, deep.AllowedTools)
	assert.Equal(t, "standard", deep.GateProfile)

	draft := plan.StepDefaults["draft"]
	require.NotNil(t, draft)
	assert.Equal(t, "copilot", draft.Tool)
	assert.Equal(t, "normal", draft.Mode)
	assert.Equal(t, "off", draft.WebMode)
	assert.Equal(t, "Draft the initial plan outline", draft.Description)

	assert.False(t, cfg.Skills["impl"].Methods["one_shot"].Enabled)
	assert.Equal(t, "gemini_auto", cfg.Skills["review"].StepDefaults["gemini_review"].WebMode)

	codex := cfg.Servants["codex"]
	require.NotNil(t, codex)
	assert.Equal(t, "gpt-5-codex", codex.DefaultModel)
	assert.Equal(t, []string{"gpt-5-codex", "gpt-5-codex-mini", "gpt-5-codex-max"}, codex.AllowedModels)
	assert.Equal(t, []string{"off", "codex_explicit"}, codex.WebModes)
	assert.Equal(t, 1800000, codex.WrapperDefaults["timeout_ms"])
	assert.Equal(t, "enforce", codex.WrapperDefaults["timeout_mode"])
	assert.Equal(t, "high", codex.WrapperDefaults["effort"])
	assert.True(t, codex.AllowsModel("gpt-5-codex-mini"))
	assert.False(t, codex.AllowsModel("gemini-2.5-pro"))

	routing := cfg.Policies.Routing
	require.NotNil(t, routing)
	require.Len(t, routing.StopPolicy.Conditions, 3)
	assert.Equal(t, "STOP_AND_CONFIRM", routing.StopPolicy.Conditions[0].Action)
	assert.Equal(t, "high", routing.StopPolicy.Conditions[0].ImpactSurface)
	assert.Equal(t, "low", routing.StopPolicy.Conditions[0].Confidence)
	assert.Equal(t, "SECURITY_SENSITIVE", routing.StopPolicy.Conditions[1].ReasonCodesContain)
	require.NotNil(t, routing.StopPolicy.Conditions[2].StrictEvidenceViolation)
	assert.True(t, *routing.StopPolicy.Conditions[2].StrictEvidenceViolation)
	assert.Equal(t, "write_reason_codes_to_routing_result", routing.StopPolicy.OnStop)
	assert.Equal(t, "medium", routing.Confidence.Default)
	assert.Equal(t, []string{"high", "medium", "low"}, routing.Confidence.Values)
	assert.Len(t, routing.HardStopReasons, 2)
	assert.True(t, routing.Reproducibility.DeterministicRequired)
	assert.Equal(t, "prompts/route/impl.md", routing.RouteDecider.PhasePromptPaths["impl"])
	assert.Equal(t, 2, routing.RouteDecider.SchemaVersion)

	review := cfg.Policies.ReviewParallel
	require.NotNil(t, review)
	assert.Equal(t, "finding-first", review.Mode)
	assert.Equal(t, "required", review.JoinBarrier)
	assert.Equal(t, "sequential", review.ApplyOrder)
	assert.Equal(t, "analysis_only", review.WorkerOutputMode)
	assert.True(t, review.MergeRequired)
	assert.Equal(t, "review/queue.json", review.Artifacts.Queue)

	evidence := cfg.Policies.WebEvidence
	require.NotNil(t, evidence)
	assert.Equal(t, "strict", evidence.Strictness)
	assert.Equal(t, []string{"evidence_id", "url", "accessed_at", "claim_summary"}, evidence.RequiredFields)
	assert.Equal(t, "Claim lacks an evidence record", evidence.ReasonCodeMap["WEB_EVIDENCE_MISSING"])
	assert.Equal(t, "reject_and_stop", evidence.GateAction)
}

func TestLoadDirectoryLayout(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		fixture := defaultV2Fixture()
		for rel := range fixture {
			if strings.HasPrefix(rel, "policies/") {
				delete(fixture, rel)
			}
		}
		root := writeV2Fixture(t, fixture)
		_, err := Load(DefaultSchema(), root)
		require.EqualError(t, err, filepath.Join(root, "policies")+": directory not found")
	})

	t.Run("missing file", func(t *testing.T) {
		fixture := defaultV2Fixture()
		delete(fixture, "skills/impl.yaml")
		root := writeV2Fixture(t, fixture)
		_, err := Load(DefaultSchema(), root)
		require.EqualError(t, err, filepath.Join(root, "skills")+": missing required files: impl.yaml")
	})

	t.Run("missing files listed sorted", func(t *testing.T) {
		fixture := defaultV2Fixture()
		delete(fixture, "servants/gemini.yaml")
		delete(fixture, "servants/codex.yaml")
		root := writeV2Fixture(t, fixture)
		_, err := Load(DefaultSchema(), root)
		require.EqualError(t, err, filepath.Join(root, "servants")+": missing required files: codex.yaml, gemini.yaml")
	})

	t.Run("unknown file", func(t *testing.T) {
		fixture := defaultV2Fixture()
		fixture["servants/claude.yaml"] = "version: 2\n"
		root := writeV2Fixture(t, fixture)
		_, err := Load(DefaultSchema(), root)
		require.EqualError(t, err, filepath.Join(root, "servants")+": unknown config files: claude.yaml")
	})

	t.Run("non-yaml entries ignored", func(t *testing.T) {
		fixture := defaultV2Fixture()
		fixture["skills/README.md"] = "notes\n"
		fixture["skills/archive/old.yaml"] = "version: 1\n"
		_, err := Load(DefaultSchema(), writeV2Fixture(t, fixture))
		require.NoError(t, err)
	})
}

func TestLoadFileLevelErrors(t *testing.T) {
	t.Run("empty file", func(t *testing.T) {
		fixture := defaultV2Fixture()
		fixture["skills/plan.yaml"] = ""
		root := writeV2Fixture(t, fixture)
		_, err := Load(DefaultSchema(), root)
		require.EqualError(t, err, filepath.Join(root, "skills", "plan.yaml")+": file is empty")
	})

	t.Run("non-mapping document", func(t *testing.T) {
		fixture := defaultV2Fixture()
		fixture["policies/routing.yaml"] = "- just\n- a\n- list\n"
		root := writeV2Fixture(t, fixture)
		_, err := Load(DefaultSchema(), root)
		require.EqualError(t, err, filepath.Join(root, "policies", "routing.yaml")+": top-level must be a mapping")
	})
}
