package configv2

import (
	"github.com/aquila-k/Multi-LLM-Agents-Orchestration/internal/schema"
)

// ResolvedStep is the effective assignment of one step after all
// override layers are applied.
type ResolvedStep struct {
	Mode    string `json:"default_mode"`
	Model   string `json:"model"`
	Tool    string `json:"tool"`
	WebMode string `json:"web_research_mode"`
}

// ManifestApplied echoes the manifest overrides that went into a
// resolution. MethodID is null when the manifest selected no method;
// StepOverrides carries only the fields each override actually set.
type ManifestApplied struct {
	MethodID      *string                      `json:"method_id"`
	StepOverrides map[string]map[string]string `json:"step_overrides"`
	ToolModels    map[string]string            `json:"tool_models"`
}

// RuntimeApplied echoes the runtime (CLI) overrides of a resolution.
type RuntimeApplied struct {
	MethodID *string `json:"method_id"`
	StepID   *string `json:"step_id"`
}

// AppliedOverrides records every override layer of a resolution.
type AppliedOverrides struct {
	Manifest ManifestApplied `json:"manifest"`
	Runtime  RuntimeApplied  `json:"runtime"`
}

// Resolution is the execution plan for one phase: the selected method,
// its step order, and the per-step tool, model, and mode assignments.
// Marshals with deterministic key order.
type Resolution struct {
	AppliedOverrides AppliedOverrides         `json:"applied_overrides"`
	Phase            string                   `json:"phase"`
	ResolvedSteps    []string                 `json:"resolved_steps"`
	SelectedMethodID string                   `json:"selected_method_id"`
	StepAgentModels  map[string]*ResolvedStep `json:"step_agent_model_map"`
	Version          int                      `json:"version"`
}

// Resolve computes the execution plan for phase. Method selection
// layers the skill's first default method, then the manifest method_id,
// then the runtime methodID, strongest last. A non-empty stepID
// restricts the plan to that single step of the resolved method.
func Resolve(sch *Schema, cfg *Config, overrides *ManifestOverrides, phase, methodID, stepID string) (*Resolution, error) {
	phaseOverride := overrides.Phases[phase]
	if phaseOverride == nil {
		phaseOverride = &PhaseOverride{
			ToolModels:    map[string]string{},
			StepOverrides: map[string]*StepOverride{},
		}
	}

	selected, err := selectMethod(cfg, phase, phaseOverride, methodID)
	if err != nil {
		return nil, err
	}

	method := cfg.Skills[phase].Methods[selected]
	resolvedSteps := append([]string(nil), method.Steps...)
	if len(resolvedSteps) == 0 {
		return nil, schema.Errorf("", "resolved method '%s' has no steps", selected)
	}
	if stepID != "" {
		if !contains(resolvedSteps, stepID) {
			return nil, schema.Errorf("", "step_id '%s' is not part of resolved method '%s'", stepID, selected)
		}
		resolvedSteps = []string{stepID}
	}

	stepMap := make(map[string]*ResolvedStep, len(resolvedSteps))
	for _, sid := range resolvedSteps {
		step, err := resolveStep(sch, cfg, phase, sid, phaseOverride)
		if err != nil {
			return nil, err
		}
		stepMap[sid] = step
	}

	return &Resolution{
		AppliedOverrides: AppliedOverrides{
			Manifest: appliedManifest(phaseOverride),
			Runtime: RuntimeApplied{
				MethodID: optionalString(methodID),
				StepID:   optionalString(stepID),
			},
		},
		Phase:            phase,
		ResolvedSteps:    resolvedSteps,
		SelectedMethodID: selected,
		StepAgentModels:  stepMap,
		Version:          2,
	}, nil
}

func selectMethod(cfg *Config, phase string, override *PhaseOverride, runtimeMethodID string) (string, error) {
	skill := cfg.Skills[phase]
	if len(skill.DefaultMethodIDs) == 0 {
		return "", schema.Errorf("", "skills.%s.default_method_ids must not be empty", phase)
	}

	selected := skill.DefaultMethodIDs[0]
	if override.MethodID != "" {
		selected = override.MethodID
	}
	if runtimeMethodID != "" {
		selected = runtimeMethodID
	}

	method := skill.Methods[selected]
	if method == nil {
		return "", schema.Errorf("", "resolved method_id '%s' is not defined in skills.%s.methods", selected, phase)
	}
	if !method.Enabled {
		return "", schema.Errorf("", "resolved method_id '%s' is disabled", selected)
	}
	return selected, nil
}

// resolveStep applies the override layers of one step. The model layers
// from the servant default through the phase tool_models pin to the
// step's own model override; tool, mode, and web mode fall back from
// the step override to the step default.
func resolveStep(sch *Schema, cfg *Config, phase, stepID string, override *PhaseOverride) (*ResolvedStep, error) {
	base := cfg.Skills[phase].StepDefaults[stepID]
	stepOverride := override.StepOverrides[stepID]
	if stepOverride == nil {
		stepOverride = &StepOverride{}
	}

	tool := stepOverride.Tool
	if tool == "" {
		tool = base.Tool
	}
	mode := stepOverride.Mode
	if mode == "" {
		mode = base.Mode
	}
	webMode := stepOverride.WebMode
	if webMode == "" {
		webMode = base.WebMode
	}
	if !sch.WebModeCompatible(webMode, tool) {
		return nil, schema.Errorf("", "step '%s' web_research_mode '%s' is not compatible with tool '%s'", stepID, webMode, tool)
	}

	servant := cfg.Servants[tool]
	model := servant.DefaultModel
	if pinned, ok := override.ToolModels[tool]; ok {
		model = pinned
	}
	if stepOverride.Model != "" {
		model = stepOverride.Model
	}
	if !servant.AllowsModel(model) {
		return nil, schema.Errorf("", "step '%s' resolved model '%s' is not allowed for tool '%s'", stepID, model, tool)
	}

	return &ResolvedStep{
		Mode:    mode,
		Model:   model,
		Tool:    tool,
		WebMode: webMode,
	}, nil
}

func appliedManifest(override *PhaseOverride) ManifestApplied {
	applied := ManifestApplied{
		MethodID:      optionalString(override.MethodID),
		StepOverrides: make(map[string]map[string]string, len(override.StepOverrides)),
		ToolModels:    override.ToolModels,
	}
	for stepID, stepOverride := range override.StepOverrides {
		fields := map[string]string{}
		if stepOverride.Tool != "" {
			fields["tool"] = stepOverride.Tool
		}
		if stepOverride.Model != "" {
			fields["model"] = stepOverride.Model
		}
		if stepOverride.Mode != "" {
			fields["default_mode"] = stepOverride.Mode
		}
		if stepOverride.WebMode != "" {
			fields["web_research_mode"] = stepOverride.WebMode
		}
		applied.StepOverrides[stepID] = fields
	}
	return applied
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
