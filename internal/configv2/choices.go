package configv2

import "sort"

// Choices is the catalog of allowed enumerations and models printed by
// v2 validate --print-choices. Serializing it twice for the same config
// yields byte-identical JSON.
type Choices struct {
	Enums               ChoiceEnums               `json:"enums"`
	Servants            map[string]ServantChoices `json:"servants"`
	ToolWebCapabilities map[string][]string       `json:"tool_web_capabilities"`
	Version             int                       `json:"version"`
}

// ChoiceEnums lists the closed vocabularies, each sorted.
type ChoiceEnums struct {
	DefaultMode       []string `json:"default_mode"`
	GateProfile       []string `json:"gate_profile"`
	Phases            []string `json:"phases"`
	RoutingStopAction []string `json:"routing_stop_action"`
	TimeoutMode       []string `json:"timeout_mode"`
	Tools             []string `json:"tools"`
	WebResearchMode   []string `json:"web_research_mode"`
}

// ServantChoices is the per-tool model catalog. AllowedModels keeps its
// declared order.
type ServantChoices struct {
	AllowedModels []string `json:"allowed_models"`
	DefaultModel  string   `json:"default_model"`
}

// BuildChoices assembles the catalog from the schema tables and the
// validated config.
func BuildChoices(sch *Schema, cfg *Config) *Choices {
	servants := make(map[string]ServantChoices, len(sch.Tools))
	webCapabilities := make(map[string][]string, len(sch.Tools))
	for _, tool := range sch.Tools {
		servant := cfg.Servants[tool]
		servants[tool] = ServantChoices{
			AllowedModels: append([]string(nil), servant.AllowedModels...),
			DefaultModel:  servant.DefaultModel,
		}
		webCapabilities[tool] = sortedCopy(sch.ToolWebModes[tool])
	}

	return &Choices{
		Enums: ChoiceEnums{
			DefaultMode:       sortedCopy(sch.DefaultModes),
			GateProfile:       sortedCopy(sch.GateProfiles),
			Phases:            sortedCopy(sch.Phases),
			RoutingStopAction: sortedCopy(sch.StopActions),
			TimeoutMode:       sortedCopy(sch.TimeoutModes),
			Tools:             sortedCopy(sch.Tools),
			WebResearchMode:   sortedCopy(sch.WebResearchModes),
		},
		Servants:            servants,
		ToolWebCapabilities: webCapabilities,
		Version:             2,
	}
}

func sortedCopy(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	sort.Strings(out)
	return out
}
