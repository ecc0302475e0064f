package config

import (
	"sort"
	"strings"

	"github.com/aquila-k/Multi-LLM-Agents-Orchestration/internal/schema"
)

// DispatchPlan is the resolved execution plan for a dispatch run.
// Struct fields are declared in sorted tag order to match the sorted-key
// JSON output contract.
type DispatchPlan struct {
	Flags             map[string]bool              `json:"flags"`
	Intent            string                       `json:"intent"`
	Options           map[string]string            `json:"options"`
	PipelineGroup     string                       `json:"pipeline_group"`
	Profile           string                       `json:"profile"`
	PurposeModels     map[string]map[string]string `json:"purpose_models"`
	StageEfforts      map[string]string            `json:"stage_efforts"`
	StageModels       map[string]string            `json:"stage_models"`
	StagePlan         []string                     `json:"stage_plan"`
	StageTimeoutModes map[string]string            `json:"stage_timeout_modes"`
	StageTimeoutMS    map[string]int               `json:"stage_timeout_ms"`
	ToolModels        map[string]string            `json:"tool_models"`
}

// ResolveDispatch computes the dispatch execution plan from the
// validated config and the normalized manifest overrides.
//
// The requested intent is the manifest intent, falling back to
// intentDefault, overridden entirely when planName is not "auto". The
// intent selects the pipeline by naming one of its profiles; profile
// names are globally unique across the impl and review pipelines.
func ResolveDispatch(sch *Schema, cfg *Config, overrides *ManifestOverrides, planName, intentDefault string) (*DispatchPlan, error) {
	if overrides == nil {
		overrides = EmptyOverrides()
	}

	requestedIntent := overrides.Intent
	if requestedIntent == "" {
		requestedIntent = intentDefault
	}
	if planName != "auto" {
		requestedIntent = planName
	}

	group := cfg.StagePipelineForProfile(requestedIntent)
	if group == "" {
		return nil, schema.Errorf("", "routing.intent '%s' is not defined in pipelines.impl/review", requestedIntent)
	}

	baseProfile := overrides.Profile
	if baseProfile == "" {
		baseProfile = requestedIntent
	}
	selectedProfile := baseProfile

	profile, err := profileData(cfg, group, selectedProfile)
	if err != nil {
		return nil, err
	}

	runtimeFlags := mergeFlagMaps(profile.Flags, overrides.Flags)
	runtimeOptions := mergeOptionMaps(profile.Options, overrides.Options)

	if err := checkDispatchFlags(sch, group, runtimeFlags); err != nil {
		return nil, err
	}
	if err := checkDispatchOptions(sch, group, runtimeOptions); err != nil {
		return nil, err
	}

	switch group {
	case PipelineImpl:
		if remapped, ok := sch.ImplModeProfiles[runtimeOptions["impl_mode"]]; ok {
			selectedProfile = remapped
		}
	case PipelineReview:
		if remapped, ok := sch.ReviewModeProfiles[runtimeOptions["review_mode"]]; ok {
			selectedProfile = remapped
		}
	}

	// A mode remap reselects the profile. Flags and options re-merge
	// against the new profile's own defaults; the override values stay
	// in force, only the base changes.
	if selectedProfile != baseProfile {
		profile, err = profileData(cfg, group, selectedProfile)
		if err != nil {
			return nil, err
		}
		runtimeFlags = mergeFlagMaps(profile.Flags, overrides.Flags)
		runtimeOptions = mergeOptionMaps(profile.Options, overrides.Options)
	}

	stagePlan := applyDispatchFlagFilters(profile.Stages, runtimeFlags)
	if len(stagePlan) == 0 {
		return nil, schema.NewError("", "resolved dispatch stage plan is empty")
	}

	toolModels := make(map[string]string, len(sch.ServantNames))
	for _, tool := range sch.ServantNames {
		toolModels[tool] = cfg.Servants[tool].DefaultModel
	}
	for tool, model := range overrides.Models {
		toolModels[tool] = model
	}

	purposeModels := purposeModelTables(sch, cfg)
	codexEfforts := cfg.Servants[ServantCodex].PurposeEfforts

	timeoutModeOverride := runtimeOptions["timeout_mode"]
	if timeoutModeOverride != "" && !schema.Vocabulary(timeoutModeOverride, sch.TimeoutModes) {
		return nil, schema.Errorf("", "pipeline '%s' timeout_mode='%s' is invalid", group, timeoutModeOverride)
	}

	oneShotImpl := group == PipelineImpl && runtimeOptions["impl_mode"] == "one_shot"

	plan := &DispatchPlan{
		Flags:             runtimeFlags,
		Intent:            requestedIntent,
		Options:           runtimeOptions,
		PipelineGroup:     group,
		Profile:           selectedProfile,
		PurposeModels:     purposeModels,
		StageEfforts:      make(map[string]string),
		StageModels:       make(map[string]string, len(stagePlan)),
		StagePlan:         stagePlan,
		StageTimeoutModes: make(map[string]string, len(stagePlan)),
		StageTimeoutMS:    make(map[string]int, len(stagePlan)),
		ToolModels:        toolModels,
	}

	for _, stage := range stagePlan {
		tool, err := dispatchStageTool(sch, stage)
		if err != nil {
			return nil, err
		}
		servant := cfg.Servants[tool]
		purpose := StagePurpose(stage, group, oneShotImpl)

		// Task-level model override is the strongest signal for dispatch.
		model := overrides.Models[tool]
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
			return nil, schema.Errorf("", "resolved timeout_mode '%s' is invalid for stage '%s'", timeoutMode, stage)
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
				return nil, schema.Errorf("", "resolved codex effort '%s' is invalid for stage '%s'", effort, stage)
			}
			plan.StageEfforts[stage] = effort
		}
	}

	return plan, nil
}

// dispatchStageTool extracts the servant prefix of a dispatch stage.
func dispatchStageTool(sch *Schema, stage string) (string, error) {
	prefix, _, found := strings.Cut(stage, "_")
	if !found {
		return "", schema.Errorf("", "stage '%s' must include tool prefix", stage)
	}
	if !sch.IsServant(prefix) {
		return "", schema.Errorf("", "stage '%s' starts with unknown tool '%s'", stage, prefix)
	}
	return prefix, nil
}

// stageRole returns the part of a stage name after the servant prefix.
func stageRole(stage string) string {
	if _, rest, found := strings.Cut(stage, "_"); found {
		return rest
	}
	return stage
}

// applyDispatchFlagFilters drops stages disabled by explicit false
// flags. Filtering only removes, so any flag combination is monotonic.
func applyDispatchFlagFilters(stages []string, flags map[string]bool) []string {
	out := append([]string(nil), stages...)
	if enabled, ok := flags["enable_brief"]; ok && !enabled {
		out = keepStages(out, func(stage string) bool { return !strings.HasSuffix(stage, "_brief") })
	}
	if enabled, ok := flags["enable_verify"]; ok && !enabled {
		out = keepStages(out, func(stage string) bool { return !strings.Contains(stageRole(stage), "verify") })
	}
	if enabled, ok := flags["enable_review"]; ok && !enabled {
		out = keepStages(out, func(stage string) bool { return !strings.Contains(stageRole(stage), "review") })
	}
	return out
}

func keepStages(stages []string, keep func(string) bool) []string {
	out := make([]string, 0, len(stages))
	for _, stage := range stages {
		if keep(stage) {
			out = append(out, stage)
		}
	}
	return out
}

func profileData(cfg *Config, pipeline, profileName string) (*Profile, error) {
	profile, ok := cfg.Pipelines[pipeline].Profiles[profileName]
	if !ok {
		return nil, schema.Errorf("", "pipeline '%s' does not define profile '%s'", pipeline, profileName)
	}
	return profile.clone(), nil
}

func checkDispatchFlags(sch *Schema, pipeline string, flags map[string]bool) error {
	allowed := sch.DispatchFlags[pipeline]
	var unsupported []string
	for flag := range flags {
		if !schema.Vocabulary(flag, allowed) {
			unsupported = append(unsupported, flag)
		}
	}
	if len(unsupported) > 0 {
		sort.Strings(unsupported)
		return schema.Errorf("", "pipeline '%s' does not support flags: %s", pipeline, strings.Join(unsupported, ", "))
	}
	return nil
}

func checkDispatchOptions(sch *Schema, pipeline string, options map[string]string) error {
	allowed := sch.DispatchOptions[pipeline]
	var unsupported []string
	for option := range options {
		if !schema.Vocabulary(option, allowed) {
			unsupported = append(unsupported, option)
		}
	}
	if len(unsupported) > 0 {
		sort.Strings(unsupported)
		return schema.Errorf("", "pipeline '%s' does not support options: %s", pipeline, strings.Join(unsupported, ", "))
	}
	return nil
}

func mergeFlagMaps(base, override map[string]bool) map[string]bool {
	out := make(map[string]bool, len(base)+len(override))
	for key, value := range base {
		out[key] = value
	}
	for key, value := range override {
		out[key] = value
	}
	return out
}

func mergeOptionMaps(base, override map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(override))
	for key, value := range base {
		out[key] = value
	}
	for key, value := range override {
		out[key] = value
	}
	return out
}

// purposeModelTables deep-copies every servant's purpose-model table so
// resolved plans never alias the validated tree.
func purposeModelTables(sch *Schema, cfg *Config) map[string]map[string]string {
	out := make(map[string]map[string]string, len(sch.ServantNames))
	for _, tool := range sch.ServantNames {
		table := make(map[string]string, len(cfg.Servants[tool].PurposeModels))
		for purpose, model := range cfg.Servants[tool].PurposeModels {
			table[purpose] = model
		}
		out[tool] = table
	}
	return out
}
