package configv2

import (
	"strings"

	"github.com/aquila-k/Multi-LLM-Agents-Orchestration/internal/schema"
)

// StepOverride is one manifest step override. Fields left empty were
// absent from the manifest; a null value in the manifest counts as
// absent.
type StepOverride struct {
	Tool    string
	Model   string
	Mode    string
	WebMode string
}

// PhaseOverride carries the normalized manifest overrides of one phase.
// MethodID is empty when the manifest selects no method. StepOverrides
// keeps an entry for every step the manifest names, even when all of
// its fields turned out to be absent.
type PhaseOverride struct {
	MethodID      string
	ToolModels    map[string]string
	StepOverrides map[string]*StepOverride
}

// ManifestOverrides is the normalized config_v2 block of a task
// manifest, one entry per phase.
type ManifestOverrides struct {
	Phases map[string]*PhaseOverride
}

// EmptyOverrides returns overrides carrying no selections, with one
// empty block per phase.
func EmptyOverrides(sch *Schema) *ManifestOverrides {
	out := &ManifestOverrides{Phases: make(map[string]*PhaseOverride, len(sch.Phases))}
	for _, phase := range sch.Phases {
		out.Phases[phase] = &PhaseOverride{
			ToolModels:    map[string]string{},
			StepOverrides: map[string]*StepOverride{},
		}
	}
	return out
}

// LoadManifest reads an optional manifest document. An empty path
// yields a nil document.
func LoadManifest(path string) (map[string]any, error) {
	if path == "" {
		return nil, nil
	}
	return schema.LoadMapping(path)
}

// NormalizeManifest validates a manifest's config_v2 block against the
// validated base config and returns the normalized overrides. A missing
// or null block yields empty overrides. manifestPath prefixes every
// error path.
func NormalizeManifest(sch *Schema, cfg *Config, manifest map[string]any, manifestPath string) (*ManifestOverrides, error) {
	out := EmptyOverrides(sch)
	if len(manifest) == 0 || manifest["config_v2"] == nil {
		return out, nil
	}

	node, err := schema.Mapping(manifest["config_v2"], manifestPath+".config_v2")
	if err != nil {
		return nil, err
	}
	if err := schema.EnsureKeys(node, []string{"phase_overrides"}, manifestPath+".config_v2"); err != nil {
		return nil, err
	}

	phasesPath := manifestPath + ".config_v2.phase_overrides"
	phasesRaw, err := schema.OptionalMapping(node["phase_overrides"], phasesPath)
	if err != nil {
		return nil, err
	}
	if err := schema.EnsureKeys(phasesRaw, sch.Phases, phasesPath); err != nil {
		return nil, err
	}

	for _, phase := range schema.SortedKeys(phasesRaw) {
		phasePath := phasesPath + "." + phase
		phaseRaw, err := schema.Mapping(phasesRaw[phase], phasePath)
		if err != nil {
			return nil, err
		}
		override, err := normalizePhaseOverride(sch, cfg, phase, phaseRaw, phasePath)
		if err != nil {
			return nil, err
		}
		out.Phases[phase] = override
	}

	return out, nil
}

func normalizePhaseOverride(sch *Schema, cfg *Config, phase string, node map[string]any, path string) (*PhaseOverride, error) {
	if err := schema.EnsureKeys(node, []string{"method_id", "tool_models", "step_overrides"}, path); err != nil {
		return nil, err
	}

	skill := cfg.Skills[phase]
	out := &PhaseOverride{
		ToolModels:    map[string]string{},
		StepOverrides: map[string]*StepOverride{},
	}

	if _, ok := node["method_id"]; ok {
		methodID, err := schema.NonEmptyString(node["method_id"], path+".method_id")
		if err != nil {
			return nil, err
		}
		if skill.Methods[methodID] == nil {
			return nil, schema.Errorf(path+".method_id", "unknown method_id '%s' for phase '%s'", methodID, phase)
		}
		out.MethodID = methodID
	}

	toolModels, err := schema.OptionalMapping(node["tool_models"], path+".tool_models")
	if err != nil {
		return nil, err
	}
	if err := schema.EnsureKeys(toolModels, sch.Tools, path+".tool_models"); err != nil {
		return nil, err
	}
	for _, tool := range schema.SortedKeys(toolModels) {
		model, err := schema.NonEmptyString(toolModels[tool], path+".tool_models."+tool)
		if err != nil {
			return nil, err
		}
		if !cfg.Servants[tool].AllowsModel(model) {
			return nil, schema.Errorf(path+".tool_models."+tool, "model '%s' is not in allowed_models", model)
		}
		out.ToolModels[tool] = model
	}

	stepOverrides, err := schema.OptionalMapping(node["step_overrides"], path+".step_overrides")
	if err != nil {
		return nil, err
	}
	for _, stepID := range schema.SortedKeys(stepOverrides) {
		stepPath := path + ".step_overrides." + stepID
		stepDefault := skill.StepDefaults[stepID]
		if stepDefault == nil {
			return nil, schema.Errorf(stepPath, "unknown step_id '%s' for phase '%s'", stepID, phase)
		}
		stepRaw, err := schema.Mapping(stepOverrides[stepID], stepPath)
		if err != nil {
			return nil, err
		}
		override, err := normalizeStepOverride(sch, cfg, stepDefault, stepRaw, stepPath)
		if err != nil {
			return nil, err
		}
		out.StepOverrides[stepID] = override
	}

	return out, nil
}

// normalizeStepOverride validates one step override. Null-valued fields
// are treated as absent, unlike the v1 manifest block where an explicit
// null is an error.
func normalizeStepOverride(sch *Schema, cfg *Config, stepDefault *StepDefault, node map[string]any, path string) (*StepOverride, error) {
	if err := schema.EnsureKeys(node, []string{"tool", "model", "default_mode", "web_research_mode"}, path); err != nil {
		return nil, err
	}

	out := &StepOverride{}

	if v := node["tool"]; v != nil {
		tool, err := schema.NonEmptyString(v, path+".tool")
		if err != nil {
			return nil, err
		}
		if !sch.IsTool(tool) {
			return nil, schema.Errorf(path+".tool", "must be one of: %s", strings.Join(sch.Tools, ", "))
		}
		out.Tool = tool
	}
	if v := node["default_mode"]; v != nil {
		mode, err := schema.NonEmptyString(v, path+".default_mode")
		if err != nil {
			return nil, err
		}
		if !schema.Vocabulary(mode, sch.DefaultModes) {
			return nil, schema.Errorf(path+".default_mode", "must be one of: %s", strings.Join(sch.DefaultModes, ", "))
		}
		out.Mode = mode
	}
	if v := node["web_research_mode"]; v != nil {
		webMode, err := schema.NonEmptyString(v, path+".web_research_mode")
		if err != nil {
			return nil, err
		}
		if !schema.Vocabulary(webMode, sch.WebResearchModes) {
			return nil, schema.Errorf(path+".web_research_mode", "must be one of: %s", strings.Join(sch.WebResearchModes, ", "))
		}
		out.WebMode = webMode
	}
	if v := node["model"]; v != nil {
		model, err := schema.NonEmptyString(v, path+".model")
		if err != nil {
			return nil, err
		}
		toolForModel := out.Tool
		if toolForModel == "" {
			toolForModel = stepDefault.Tool
		}
		if !cfg.Servants[toolForModel].AllowsModel(model) {
			return nil, schema.Errorf(path+".model", "model '%s' is not allowed for tool '%s'", model, toolForModel)
		}
		out.Model = model
	}

	effectiveTool := out.Tool
	if effectiveTool == "" {
		effectiveTool = stepDefault.Tool
	}
	effectiveWebMode := out.WebMode
	if effectiveWebMode == "" {
		effectiveWebMode = stepDefault.WebMode
	}
	if !sch.WebModeCompatible(effectiveWebMode, effectiveTool) {
		return nil, schema.Errorf(path+".web_research_mode", "'%s' is not compatible with tool '%s'", effectiveWebMode, effectiveTool)
	}

	return out, nil
}
