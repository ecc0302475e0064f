package configv2

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aquila-k/Multi-LLM-Agents-Orchestration/internal/schema"
)

// stringList is schema.StringList plus the rule, shared by every
// list-valued field of the v2 files, that the list must not be empty.
func stringList(v any, path string) ([]string, error) {
	list, err := schema.StringList(v, path)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, schema.NewError(path, "must not be empty")
	}
	return list, nil
}

func joinSorted(values []string) string {
	sorted := append([]string(nil), values...)
	sort.Strings(sorted)
	return strings.Join(sorted, ", ")
}

// validateSkillFile checks one skills/<phase>.yaml document and compiles
// it into a Skill. Methods and step defaults must reference each other
// completely: every method step needs a step default, and every step
// default must be used by at least one method.
func validateSkillFile(sch *Schema, node map[string]any, phase, path string) (*Skill, error) {
	allowedKeys := []string{"version", "skill", "default_method_ids", "methods", "step_defaults"}
	if err := schema.EnsureKeys(node, allowedKeys, path); err != nil {
		return nil, err
	}
	if node["version"] != 2 {
		return nil, schema.NewError(path+".version", "must be 2")
	}
	if node["skill"] != phase {
		return nil, schema.Errorf(path+".skill", "must be '%s'", phase)
	}

	defaultMethodIDs, err := stringList(node["default_method_ids"], path+".default_method_ids")
	if err != nil {
		return nil, err
	}

	methodsRaw, err := schema.Mapping(node["methods"], path+".methods")
	if err != nil {
		return nil, err
	}
	if len(methodsRaw) == 0 {
		return nil, schema.NewError(path+".methods", "must define at least one method")
	}

	skill := &Skill{
		Phase:            phase,
		DefaultMethodIDs: defaultMethodIDs,
		Methods:          make(map[string]*Method, len(methodsRaw)),
		StepDefaults:     map[string]*StepDefault{},
	}
	for _, methodID := range schema.SortedKeys(methodsRaw) {
		method, err := validateMethod(sch, methodsRaw[methodID], path+".methods."+methodID)
		if err != nil {
			return nil, err
		}
		skill.Methods[methodID] = method
	}

	for i, methodID := range defaultMethodIDs {
		if skill.Methods[methodID] == nil {
			return nil, schema.NewError(
				fmt.Sprintf("%s.default_method_ids[%d]", path, i),
				"must reference a method defined in methods",
			)
		}
	}

	stepDefaultsRaw, err := schema.Mapping(node["step_defaults"], path+".step_defaults")
	if err != nil {
		return nil, err
	}
	if len(stepDefaultsRaw) == 0 {
		return nil, schema.NewError(path+".step_defaults", "must define at least one step default")
	}

	referenced := map[string]bool{}
	for _, methodID := range schema.SortedKeys(methodsRaw) {
		for _, step := range skill.Methods[methodID].Steps {
			referenced[step] = true
			if _, ok := stepDefaultsRaw[step]; !ok {
				return nil, schema.Errorf(path+".methods."+methodID+".steps", "step '%s' missing from step_defaults", step)
			}
		}
	}
	for _, stepID := range schema.SortedKeys(stepDefaultsRaw) {
		if !referenced[stepID] {
			return nil, schema.NewError(path+".step_defaults."+stepID, "step is not referenced by any method")
		}
	}

	for _, stepID := range schema.SortedKeys(stepDefaultsRaw) {
		stepDefault, err := validateStepDefault(sch, stepDefaultsRaw[stepID], path+".step_defaults."+stepID)
		if err != nil {
			return nil, err
		}
		skill.StepDefaults[stepID] = stepDefault
	}

	return skill, nil
}

func validateMethod(sch *Schema, raw any, path string) (*Method, error) {
	node, err := schema.Mapping(raw, path)
	if err != nil {
		return nil, err
	}
	allowedKeys := []string{"enabled", "steps", "allowed_tools", "gate_profile"}
	if err := schema.EnsureKeys(node, allowedKeys, path); err != nil {
		return nil, err
	}

	enabled, err := schema.Bool(node["enabled"], path+".enabled")
	if err != nil {
		return nil, err
	}
	steps, err := stringList(node["steps"], path+".steps")
	if err != nil {
		return nil, err
	}
	allowedTools, err := stringList(node["allowed_tools"], path+".allowed_tools")
	if err != nil {
		return nil, err
	}
	for i, tool := range allowedTools {
		if !sch.IsTool(tool) {
			return nil, schema.Errorf(
				fmt.Sprintf("%s.allowed_tools[%d]", path, i),
				"must be one of: %s", strings.Join(sch.Tools, ", "),
			)
		}
	}
	gateProfile, err := schema.NonEmptyString(node["gate_profile"], path+".gate_profile")
	if err != nil {
		return nil, err
	}
	if !schema.Vocabulary(gateProfile, sch.GateProfiles) {
		return nil, schema.Errorf(path+".gate_profile", "must be one of: %s", strings.Join(sch.GateProfiles, ", "))
	}

	return &Method{
		Enabled:      enabled,
		Steps:        steps,
		AllowedTools: allowedTools,
		GateProfile:  gateProfile,
	}, nil
}

func validateStepDefault(sch *Schema, raw any, path string) (*StepDefault, error) {
	node, err := schema.Mapping(raw, path)
	if err != nil {
		return nil, err
	}
	allowedKeys := []string{"default_tool", "default_mode", "web_research_mode", "description"}
	if err := schema.EnsureKeys(node, allowedKeys, path); err != nil {
		return nil, err
	}

	tool, err := schema.NonEmptyString(node["default_tool"], path+".default_tool")
	if err != nil {
		return nil, err
	}
	if !sch.IsTool(tool) {
		return nil, schema.Errorf(path+".default_tool", "must be one of: %s", strings.Join(sch.Tools, ", "))
	}

	mode, err := schema.NonEmptyString(node["default_mode"], path+".default_mode")
	if err != nil {
		return nil, err
	}
	if !schema.Vocabulary(mode, sch.DefaultModes) {
		return nil, schema.Errorf(path+".default_mode", "must be one of: %s", strings.Join(sch.DefaultModes, ", "))
	}

	webMode, err := schema.NonEmptyString(node["web_research_mode"], path+".web_research_mode")
	if err != nil {
		return nil, err
	}
	if !schema.Vocabulary(webMode, sch.WebResearchModes) {
		return nil, schema.Errorf(path+".web_research_mode", "must be one of: %s", strings.Join(sch.WebResearchModes, ", "))
	}
	if !sch.WebModeCompatible(webMode, tool) {
		return nil, schema.Errorf(path+".web_research_mode", "'%s' is not compatible with default_tool '%s'", webMode, tool)
	}

	description, _ := node["description"].(string)
	return &StepDefault{
		Tool:        tool,
		Mode:        mode,
		WebMode:     webMode,
		Description: description,
	}, nil
}

// validateServantFile checks one servants/<tool>.yaml document and
// compiles it into a Servant. The v1 runtime keys (purpose_models,
// purpose_efforts, effort_level_descriptions) are accepted so one file
// can serve both engines, but only the v2 fields are retained.
func validateServantFile(sch *Schema, node map[string]any, tool, path string) (*Servant, error) {
	allowedKeys := []string{
		"version", "tool", "default_model", "allowed_models",
		"wrapper_defaults", "web_capabilities",
		"purpose_models", "purpose_efforts", "effort_level_descriptions",
	}
	if err := schema.EnsureKeys(node, allowedKeys, path); err != nil {
		return nil, err
	}
	if node["version"] != 2 {
		return nil, schema.NewError(path+".version", "must be 2")
	}
	if node["tool"] != tool {
		return nil, schema.Errorf(path+".tool", "must be '%s'", tool)
	}

	defaultModel, err := schema.NonEmptyString(node["default_model"], path+".default_model")
	if err != nil {
		return nil, err
	}
	allowedModels, err := stringList(node["allowed_models"], path+".allowed_models")
	if err != nil {
		return nil, err
	}
	if !schema.Vocabulary(defaultModel, allowedModels) {
		return nil, schema.NewError(path+".default_model", "must be included in allowed_models")
	}

	wrapperDefaults, err := schema.Mapping(node["wrapper_defaults"], path+".wrapper_defaults")
	if err != nil {
		return nil, err
	}
	if err := schema.EnsureKeys(wrapperDefaults, sch.WrapperKeys, path+".wrapper_defaults"); err != nil {
		return nil, err
	}
	if _, err := schema.NonNegativeInt(wrapperDefaults["timeout_ms"], path+".wrapper_defaults.timeout_ms"); err != nil {
		return nil, err
	}
	timeoutMode, err := schema.NonEmptyString(wrapperDefaults["timeout_mode"], path+".wrapper_defaults.timeout_mode")
	if err != nil {
		return nil, err
	}
	if !schema.Vocabulary(timeoutMode, sch.TimeoutModes) {
		return nil, schema.Errorf(path+".wrapper_defaults.timeout_mode", "must be one of: %s", strings.Join(sch.TimeoutModes, ", "))
	}

	webCapabilities, err := schema.Mapping(node["web_capabilities"], path+".web_capabilities")
	if err != nil {
		return nil, err
	}
	if err := schema.EnsureKeys(webCapabilities, []string{"modes"}, path+".web_capabilities"); err != nil {
		return nil, err
	}
	modes, err := stringList(webCapabilities["modes"], path+".web_capabilities.modes")
	if err != nil {
		return nil, err
	}
	for i, mode := range modes {
		if !contains(sch.ToolWebModes[tool], mode) {
			return nil, schema.Errorf(
				fmt.Sprintf("%s.web_capabilities.modes[%d]", path, i),
				"must be one of: %s", joinSorted(sch.ToolWebModes[tool]),
			)
		}
	}
	if !contains(modes, WebModeOff) {
		return nil, schema.NewError(path+".web_capabilities.modes", "must include 'off'")
	}

	return &Servant{
		Name:            tool,
		DefaultModel:    defaultModel,
		AllowedModels:   allowedModels,
		WrapperDefaults: wrapperDefaults,
		WebModes:        modes,
	}, nil
}
