package config

import (
	"github.com/aquila-k/Multi-LLM-Agents-Orchestration/internal/schema"
)

// PlanPipelinePlan is the resolved plan for the fixed six-stage plan
// pipeline: draft, two enrichment stages, two cross-review stages, and
// consolidate. Struct fields follow the sorted-key output contract.
type PlanPipelinePlan struct {
	Flags             map[string]bool              `json:"flags"`
	Options           map[string]string            `json:"options"`
	Profile           string                       `json:"profile"`
	PurposeModels     map[string]map[string]string `json:"purpose_models"`
	StageEfforts      map[string]string            `json:"stage_efforts"`
	StageModels       map[string]string            `json:"stage_models"`
	StageTimeoutModes map[string]string            `json:"stage_timeout_modes"`
	StageTimeoutMS    map[string]int               `json:"stage_timeout_ms"`
	ToolModels        map[string]string            `json:"tool_models"`
}

// ResolvePlanPipeline resolves the plan pipeline. The stage list is
// fixed and never filtered; profile flags ride along informationally.
// modelOverrides carries per-servant CLI model overrides, the strongest
// precedence level for this pipeline; unset servants resolve through the
// usual profile-override, purpose-table, default chain.
func ResolvePlanPipeline(sch *Schema, cfg *Config, profileOverride string, modelOverrides map[string]string) (*PlanPipelinePlan, error) {
	planCfg := cfg.Pipelines[PipelinePlan]

	profileName := profileOverride
	if profileName == "" {
		profileName = planCfg.DefaultProfile
	}
	base, ok := planCfg.Profiles[profileName]
	if !ok {
		return nil, schema.Errorf("", "plan profile '%s' is not defined", profileName)
	}
	profile := base.clone()

	toolModels := make(map[string]string, len(sch.ServantNames))
	for _, tool := range sch.ServantNames {
		toolModels[tool] = cfg.Servants[tool].DefaultModel
	}
	for _, tool := range sch.ServantNames {
		model := modelOverrides[tool]
		if model == "" {
			continue
		}
		if !cfg.Servants[tool].AllowsModel(model) {
			return nil, schema.Errorf("", "CLI override model '%s' is not allowed for %s", model, tool)
		}
		toolModels[tool] = model
	}

	purposeModels := purposeModelTables(sch, cfg)
	codexEfforts := cfg.Servants[ServantCodex].PurposeEfforts

	timeoutModeOverride := profile.Options["timeout_mode"]
	if timeoutModeOverride != "" && !schema.Vocabulary(timeoutModeOverride, sch.TimeoutModes) {
		return nil, schema.Errorf("", "plan profile '%s' timeout_mode='%s' is invalid", profileName, timeoutModeOverride)
	}

	plan := &PlanPipelinePlan{
		Flags:             profile.Flags,
		Options:           profile.Options,
		Profile:           profileName,
		PurposeModels:     purposeModels,
		StageEfforts:      make(map[string]string),
		StageModels:       make(map[string]string, len(sch.PlanStageOrder)),
		StageTimeoutModes: make(map[string]string, len(sch.PlanStageOrder)),
		StageTimeoutMS:    make(map[string]int, len(sch.PlanStageOrder)),
		ToolModels:        toolModels,
	}

	for _, stage := range sch.PlanStageOrder {
		tool := sch.PlanStageTools[stage]
		servant := cfg.Servants[tool]
		purpose := PlanStagePurpose(stage)

		// CLI model override is the strongest signal for plan runs.
		model := modelOverrides[tool]
		if model == "" {
			model = profile.StageModels[stage]
		}
		if model == "" {
			model = purposeModels[tool][string(purpose)]
		}
		if model == "" {
			model = toolModels[tool]
		}
		plan.StageModels[stage] = model

		timeoutMS, ok := servant.WrapperDefaults["timeout_ms"].(int)
		if !ok || timeoutMS < 0 {
			return nil, schema.Errorf("", "servants.%s.wrapper_defaults.timeout_ms must be a non-negative integer", tool)
		}
		plan.StageTimeoutMS[stage] = timeoutMS

		timeoutMode := timeoutModeOverride
		if timeoutMode == "" {
			timeoutMode = servant.TimeoutMode()
		}
		if !schema.Vocabulary(timeoutMode, sch.TimeoutModes) {
			return nil, schema.Errorf("", "resolved timeout_mode '%s' is invalid for plan stage '%s'", timeoutMode, stage)
		}
		plan.StageTimeoutModes[stage] = timeoutMode

		if tool == ServantCodex {
			effort := profile.StageEfforts[stage]
			if effort == "" {
				effort = codexEfforts[string(purpose)]
			}
			if effort == "" {
				effort = servant.Effort()
			}
			if !schema.Vocabulary(effort, sch.CodexEfforts) {
				return nil, schema.Errorf("", "resolved codex effort '%s' is invalid for plan stage '%s'", effort, stage)
			}
			plan.StageEfforts[stage] = effort
		}
	}

	return plan, nil
}
