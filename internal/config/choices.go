package config

import "sort"

// Choices is the catalog of allowed enumerations and models printed by
// validate --print-choices. Serializing it twice for the same config
// yields byte-identical JSON.
type Choices struct {
	Enums    ChoiceEnums               `json:"enums"`
	Servants map[string]ServantChoices `json:"servants"`
}

// ChoiceEnums lists the closed vocabularies, each sorted.
type ChoiceEnums struct {
	CodexEffort        []string                       `json:"codex_effort"`
	GeminiApprovalMode []string                       `json:"gemini_approval_mode"`
	PipelineFlags      map[string][]string            `json:"pipeline_flags"`
	PipelineOptions    map[string]map[string][]string `json:"pipeline_options"`
	TimeoutMode        []string                       `json:"timeout_mode"`
}

// ServantChoices is the per-servant model catalog. AllowedModels keeps
// its declared order; the key lists are sorted.
type ServantChoices struct {
	AllowedModels      []string       `json:"allowed_models"`
	DefaultModel       string         `json:"default_model"`
	WrapperAllowedKeys []string       `json:"wrapper_allowed_keys"`
	WrapperDefaults    map[string]any `json:"wrapper_defaults"`
}

// BuildChoices assembles the catalog from the schema tables and the
// validated config.
func BuildChoices(sch *Schema, cfg *Config) *Choices {
	pipelineFlags := make(map[string][]string, len(sch.PipelineNames))
	pipelineOptions := make(map[string]map[string][]string, len(sch.PipelineNames))
	for _, pipeline := range sch.PipelineNames {
		pipelineFlags[pipeline] = sortedCopy(sch.PipelineFlags[pipeline])
		options := make(map[string][]string, len(sch.PipelineOptions[pipeline]))
		for key, values := range sch.PipelineOptions[pipeline] {
			options[key] = sortedCopy(values)
		}
		pipelineOptions[pipeline] = options
	}

	servants := make(map[string]ServantChoices, len(sch.ServantNames))
	for _, tool := range sch.ServantNames {
		servant := cfg.Servants[tool]
		wrapper := make(map[string]any, len(servant.WrapperDefaults))
		for key, value := range servant.WrapperDefaults {
			wrapper[key] = value
		}
		servants[tool] = ServantChoices{
			AllowedModels:      append([]string(nil), servant.AllowedModels...),
			DefaultModel:       servant.DefaultModel,
			WrapperAllowedKeys: sortedCopy(sch.WrapperKeys[tool]),
			WrapperDefaults:    wrapper,
		}
	}

	return &Choices{
		Enums: ChoiceEnums{
			CodexEffort:        sortedCopy(sch.CodexEfforts),
			GeminiApprovalMode: sortedCopy(sch.GeminiApprovals),
			PipelineFlags:      pipelineFlags,
			PipelineOptions:    pipelineOptions,
			TimeoutMode:        sortedCopy(sch.TimeoutModes),
		},
		Servants: servants,
	}
}

func sortedCopy(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	sort.Strings(out)
	return out
}
