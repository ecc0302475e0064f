package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aquila-k/Multi-LLM-Agents-Orchestration/internal/schema"
)

// ValidateTree validates a combined configuration tree and compiles it
// into the typed Config. treePath prefixes every error path. Validation
// is fail-fast: the first violation is returned, nothing is accumulated.
func ValidateTree(sch *Schema, tree map[string]any, treePath string) (*Config, error) {
	if err := schema.EnsureKeys(tree, []string{"version", "servants", "pipelines"}, treePath); err != nil {
		return nil, err
	}
	if tree["version"] != 1 {
		return nil, schema.NewError(treePath+".version", "must be 1")
	}

	cfg := &Config{
		Servants:  make(map[string]*Servant, len(sch.ServantNames)),
		Pipelines: make(map[string]*Pipeline, len(sch.PipelineNames)),
	}

	servantsRaw, err := schema.Mapping(tree["servants"], treePath+".servants")
	if err != nil {
		return nil, err
	}
	if err := schema.EnsureKeys(servantsRaw, sch.ServantNames, treePath+".servants"); err != nil {
		return nil, err
	}
	for _, name := range sch.ServantNames {
		servant, err := validateServant(sch, name, servantsRaw[name], treePath+".servants."+name)
		if err != nil {
			return nil, err
		}
		cfg.Servants[name] = servant
	}

	pipelinesRaw, err := schema.Mapping(tree["pipelines"], treePath+".pipelines")
	if err != nil {
		return nil, err
	}
	if err := schema.EnsureKeys(pipelinesRaw, sch.PipelineNames, treePath+".pipelines"); err != nil {
		return nil, err
	}
	for _, name := range sch.PipelineNames {
		pipeline, err := validatePipeline(sch, cfg, name, pipelinesRaw[name], treePath+".pipelines."+name)
		if err != nil {
			return nil, err
		}
		cfg.Pipelines[name] = pipeline
	}

	return cfg, nil
}

func validateServant(sch *Schema, name string, raw any, path string) (*Servant, error) {
	node, err := schema.Mapping(raw, path)
	if err != nil {
		return nil, err
	}
	allowedKeys := []string{"default_model", "allowed_models", "wrapper_defaults", "purpose_models", "purpose_efforts"}
	if err := schema.EnsureKeys(node, allowedKeys, path); err != nil {
		return nil, err
	}

	defaultModel, err := schema.NonEmptyString(node["default_model"], path+".default_model")
	if err != nil {
		return nil, err
	}
	allowedModels, err := schema.StringList(node["allowed_models"], path+".allowed_models")
	if err != nil {
		return nil, err
	}
	if !schema.Vocabulary(defaultModel, allowedModels) {
		return nil, schema.NewError(path+".default_model", "must be included in allowed_models")
	}

	wrapper, err := validateWrapperDefaults(sch, name, node["wrapper_defaults"], path+".wrapper_defaults")
	if err != nil {
		return nil, err
	}

	purposeModels, err := validatePurposeModels(sch, node["purpose_models"], allowedModels, path+".purpose_models")
	if err != nil {
		return nil, err
	}

	purposeEfforts, err := validatePurposeEfforts(sch, name, node["purpose_efforts"], path+".purpose_efforts")
	if err != nil {
		return nil, err
	}

	return &Servant{
		Name:            name,
		DefaultModel:    defaultModel,
		AllowedModels:   allowedModels,
		WrapperDefaults: wrapper,
		PurposeModels:   purposeModels,
		PurposeEfforts:  purposeEfforts,
	}, nil
}

func validateWrapperDefaults(sch *Schema, servant string, raw any, path string) (map[string]any, error) {
	node, err := schema.Mapping(raw, path)
	if err != nil {
		return nil, err
	}
	required := sch.WrapperKeys[servant]
	if err := schema.EnsureKeys(node, required, path); err != nil {
		return nil, err
	}

	var missing []string
	for _, key := range required {
		if _, ok := node[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, schema.Errorf(path, "missing required keys: %s", strings.Join(missing, ", "))
	}

	out := make(map[string]any, len(node))
	for _, key := range schema.SortedKeys(node) {
		keyPath := path + "." + key
		switch {
		case key == "timeout_ms":
			ms, err := schema.NonNegativeInt(node[key], keyPath)
			if err != nil {
				return nil, err
			}
			out[key] = ms
		case key == "timeout_mode":
			mode, err := schema.OneOf(node[key], sch.TimeoutModes, keyPath)
			if err != nil {
				return nil, err
			}
			out[key] = mode
		case servant == ServantCodex && key == "effort":
			effort, err := schema.OneOf(node[key], sch.CodexEfforts, keyPath)
			if err != nil {
				return nil, err
			}
			out[key] = effort
		case servant == ServantGemini && key == "approval_mode":
			approval, err := schema.OneOf(node[key], sch.GeminiApprovals, keyPath)
			if err != nil {
				return nil, err
			}
			out[key] = approval
		case servant == ServantGemini && key == "sandbox":
			sandbox, err := schema.Bool(node[key], keyPath)
			if err != nil {
				return nil, err
			}
			out[key] = sandbox
		default:
			out[key] = node[key]
		}
	}
	return out, nil
}

func validatePurposeModels(sch *Schema, raw any, allowedModels []string, path string) (map[string]string, error) {
	node, err := schema.OptionalMapping(raw, path)
	if err != nil {
		return nil, err
	}
	if err := schema.EnsureKeys(node, sch.PurposeNames, path); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(node))
	for _, purpose := range schema.SortedKeys(node) {
		model, err := schema.NonEmptyString(node[purpose], path+"."+purpose)
		if err != nil {
			return nil, err
		}
		if !schema.Vocabulary(model, allowedModels) {
			return nil, schema.Errorf(path+"."+purpose, "model '%s' is not in allowed_models", model)
		}
		out[purpose] = model
	}
	return out, nil
}

func validatePurposeEfforts(sch *Schema, servant string, raw any, path string) (map[string]string, error) {
	node, err := schema.OptionalMapping(raw, path)
	if err != nil {
		return nil, err
	}
	if servant != ServantCodex && len(node) > 0 {
		return nil, schema.NewError(path, "is only supported for codex")
	}
	if err := schema.EnsureKeys(node, sch.PurposeNames, path); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(node))
	for _, purpose := range schema.SortedKeys(node) {
		effort, err := schema.OneOf(node[purpose], sch.CodexEfforts, path+"."+purpose)
		if err != nil {
			return nil, err
		}
		out[purpose] = effort
	}
	return out, nil
}

func validatePipeline(sch *Schema, cfg *Config, name string, raw any, path string) (*Pipeline, error) {
	node, err := schema.Mapping(raw, path)
	if err != nil {
		return nil, err
	}
	if err := schema.EnsureKeys(node, []string{"default_profile", "profiles"}, path); err != nil {
		return nil, err
	}

	defaultProfile, err := schema.NonEmptyString(node["default_profile"], path+".default_profile")
	if err != nil {
		return nil, err
	}

	profilesRaw, err := schema.Mapping(node["profiles"], path+".profiles")
	if err != nil {
		return nil, err
	}
	if len(profilesRaw) == 0 {
		return nil, schema.NewError(path+".profiles", "must define at least one profile")
	}
	if _, ok := profilesRaw[defaultProfile]; !ok {
		return nil, schema.NewError(path+".default_profile", "must match a profile name")
	}

	pipeline := &Pipeline{
		Name:           name,
		DefaultProfile: defaultProfile,
		Profiles:       make(map[string]*Profile, len(profilesRaw)),
	}
	for _, profileName := range schema.SortedKeys(profilesRaw) {
		profile, err := validateProfile(sch, cfg, name, profilesRaw[profileName], path+".profiles."+profileName)
		if err != nil {
			return nil, err
		}
		pipeline.Profiles[profileName] = profile
	}
	return pipeline, nil
}

func validateProfile(sch *Schema, cfg *Config, pipeline string, raw any, path string) (*Profile, error) {
	node, err := schema.Mapping(raw, path)
	if err != nil {
		return nil, err
	}
	allowedKeys := []string{"stages", "flags", "options", "stage_models", "stage_efforts"}
	if err := schema.EnsureKeys(node, allowedKeys, path); err != nil {
		return nil, err
	}

	var stages []string
	if pipeline != PipelinePlan {
		stages, err = schema.StringList(node["stages"], path+".stages")
		if err != nil {
			return nil, err
		}
		if len(stages) == 0 {
			return nil, schema.NewError(path+".stages", "must not be empty")
		}
		for idx, stage := range stages {
			if sch.StageTool(stage, pipeline) == "" {
				return nil, schema.NewError(
					fmt.Sprintf("%s.stages[%d]", path, idx),
					"must start with a known tool prefix",
				)
			}
		}
	} else if rawStages, ok := node["stages"]; ok && rawStages != nil {
		if list, isList := rawStages.([]any); !isList || len(list) > 0 {
			return nil, schema.NewError(path+".stages", "is not supported for the plan pipeline")
		}
	}

	flags, err := validateProfileFlags(sch, pipeline, node["flags"], path+".flags")
	if err != nil {
		return nil, err
	}

	options, err := validateProfileOptions(sch, pipeline, node["options"], path+".options")
	if err != nil {
		return nil, err
	}

	stageModels, err := validateStageModels(sch, cfg, pipeline, node["stage_models"], path+".stage_models")
	if err != nil {
		return nil, err
	}

	stageEfforts, err := validateStageEfforts(sch, pipeline, node["stage_efforts"], path+".stage_efforts")
	if err != nil {
		return nil, err
	}

	return &Profile{
		Stages:       stages,
		Flags:        flags,
		Options:      options,
		StageModels:  stageModels,
		StageEfforts: stageEfforts,
	}, nil
}

func validateProfileFlags(sch *Schema, pipeline string, raw any, path string) (map[string]bool, error) {
	node, err := schema.OptionalMapping(raw, path)
	if err != nil {
		return nil, err
	}
	if err := schema.EnsureKeys(node, sch.PipelineFlags[pipeline], path); err != nil {
		return nil, err
	}

	out := make(map[string]bool, len(node))
	for _, flag := range schema.SortedKeys(node) {
		value, err := schema.Bool(node[flag], path+"."+flag)
		if err != nil {
			return nil, err
		}
		out[flag] = value
	}
	return out, nil
}

func validateProfileOptions(sch *Schema, pipeline string, raw any, path string) (map[string]string, error) {
	node, err := schema.OptionalMapping(raw, path)
	if err != nil {
		return nil, err
	}
	vocabulary := sch.PipelineOptions[pipeline]
	if err := schema.EnsureKeys(node, sortedVocabularyKeys(vocabulary), path); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(node))
	for _, option := range schema.SortedKeys(node) {
		value, err := schema.String(node[option], path+"."+option)
		if err != nil {
			return nil, err
		}
		if _, err := schema.OneOf(value, vocabulary[option], path+"."+option); err != nil {
			return nil, err
		}
		out[option] = value
	}
	return out, nil
}

func validateStageModels(sch *Schema, cfg *Config, pipeline string, raw any, path string) (map[string]string, error) {
	node, err := schema.OptionalMapping(raw, path)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(node))
	for _, stage := range schema.SortedKeys(node) {
		model, err := schema.NonEmptyString(node[stage], path+"."+stage)
		if err != nil {
			return nil, err
		}
		tool := sch.StageTool(stage, pipeline)
		if tool == "" {
			return nil, schema.NewError(path+"."+stage, "unknown stage name")
		}
		if !cfg.Servants[tool].AllowsModel(model) {
			return nil, schema.Errorf(path+"."+stage, "model '%s' is not allowed for servant '%s'", model, tool)
		}
		out[stage] = model
	}
	return out, nil
}

func validateStageEfforts(sch *Schema, pipeline string, raw any, path string) (map[string]string, error) {
	node, err := schema.OptionalMapping(raw, path)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(node))
	for _, stage := range schema.SortedKeys(node) {
		effort, err := schema.OneOf(node[stage], sch.CodexEfforts, path+"."+stage)
		if err != nil {
			return nil, err
		}
		tool := sch.StageTool(stage, pipeline)
		if tool == "" {
			return nil, schema.NewError(path+"."+stage, "unknown stage name")
		}
		if tool != ServantCodex {
			return nil, schema.NewError(path+"."+stage, "is only supported for codex stages")
		}
		out[stage] = effort
	}
	return out, nil
}

func sortedVocabularyKeys(vocabulary map[string][]string) []string {
	keys := make([]string, 0, len(vocabulary))
	for key := range vocabulary {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
