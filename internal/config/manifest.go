package config

import (
	"github.com/aquila-k/Multi-LLM-Agents-Orchestration/internal/schema"
)

// ManifestOverrides is the normalized routing override block of a task
// manifest: only the fields the manifest actually carries, validated
// against the already-validated base configuration. Absent fields stay
// empty and are never defaulted here; defaults apply at resolution time.
type ManifestOverrides struct {
	Intent  string
	Models  map[string]string
	Profile string
	Flags   map[string]bool
	Options map[string]string
}

// EmptyOverrides returns overrides with no fields set.
func EmptyOverrides() *ManifestOverrides {
	return &ManifestOverrides{
		Models:  map[string]string{},
		Flags:   map[string]bool{},
		Options: map[string]string{},
	}
}

// LoadManifest reads an optional manifest document. An empty path yields
// a nil document.
func LoadManifest(path string) (map[string]any, error) {
	if path == "" {
		return nil, nil
	}
	return schema.LoadMapping(path)
}

// NormalizeManifest validates a manifest's routing block against the
// base config and returns the normalized overrides. Flags and options
// are checked against the union of all pipelines' vocabularies because
// the target pipeline is not yet known; the narrower per-pipeline check
// happens at resolution time. manifestPath prefixes every error path.
func NormalizeManifest(sch *Schema, cfg *Config, manifest map[string]any, manifestPath string) (*ManifestOverrides, error) {
	out := EmptyOverrides()
	if len(manifest) == 0 {
		return out, nil
	}

	routing, err := schema.OptionalMapping(manifest["routing"], manifestPath+".routing")
	if err != nil {
		return nil, err
	}
	routingPath := manifestPath + ".routing"
	if err := schema.EnsureKeys(routing, []string{"intent", "model", "pipeline"}, routingPath); err != nil {
		return nil, err
	}

	if raw, ok := routing["intent"]; ok {
		intent, err := schema.String(raw, routingPath+".intent")
		if err != nil {
			return nil, err
		}
		out.Intent = intent
	}

	models, err := schema.OptionalMapping(routing["model"], routingPath+".model")
	if err != nil {
		return nil, err
	}
	if err := schema.EnsureKeys(models, sch.ServantNames, routingPath+".model"); err != nil {
		return nil, err
	}
	for _, servant := range schema.SortedKeys(models) {
		model, err := schema.NonEmptyString(models[servant], routingPath+".model."+servant)
		if err != nil {
			return nil, err
		}
		if !cfg.Servants[servant].AllowsModel(model) {
			return nil, schema.Errorf(routingPath+".model."+servant, "model '%s' is not in allowed_models", model)
		}
		out.Models[servant] = model
	}

	pipelineRaw, err := schema.OptionalMapping(routing["pipeline"], routingPath+".pipeline")
	if err != nil {
		return nil, err
	}
	if len(pipelineRaw) == 0 {
		return out, nil
	}
	pipelinePath := routingPath + ".pipeline"
	if err := schema.EnsureKeys(pipelineRaw, []string{"profile", "flags", "options"}, pipelinePath); err != nil {
		return nil, err
	}

	if raw, ok := pipelineRaw["profile"]; ok && raw != nil {
		profile, err := schema.NonEmptyString(raw, pipelinePath+".profile")
		if err != nil {
			return nil, err
		}
		out.Profile = profile
	}

	flags, err := schema.OptionalMapping(pipelineRaw["flags"], pipelinePath+".flags")
	if err != nil {
		return nil, err
	}
	if err := schema.EnsureKeys(flags, sch.UnionFlags(), pipelinePath+".flags"); err != nil {
		return nil, err
	}
	for _, flag := range schema.SortedKeys(flags) {
		value, err := schema.Bool(flags[flag], pipelinePath+".flags."+flag)
		if err != nil {
			return nil, err
		}
		out.Flags[flag] = value
	}

	options, err := schema.OptionalMapping(pipelineRaw["options"], pipelinePath+".options")
	if err != nil {
		return nil, err
	}
	unionOptions := sch.UnionOptions()
	if err := schema.EnsureKeys(options, sortedVocabularyKeys(unionOptions), pipelinePath+".options"); err != nil {
		return nil, err
	}
	for _, option := range schema.SortedKeys(options) {
		value, err := schema.String(options[option], pipelinePath+".options."+option)
		if err != nil {
			return nil, err
		}
		if _, err := schema.OneOf(value, unionOptions[option], pipelinePath+".options."+option); err != nil {
			return nil, err
		}
		out.Options[option] = value
	}

	// Profile existence can only be checked once an intent pins down the
	// pipeline. Without a manifest intent the check is deferred to
	// resolution.
	if out.Intent != "" && out.Profile != "" {
		if group := cfg.StagePipelineForProfile(out.Intent); group != "" {
			if _, ok := cfg.Pipelines[group].Profiles[out.Profile]; !ok {
				return nil, schema.Errorf(
					pipelinePath+".profile",
					"profile '%s' is not defined in pipelines.%s.profiles", out.Profile, group,
				)
			}
		}
	}

	return out, nil
}
