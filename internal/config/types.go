package config

// Servant is the validated runtime configuration of one external tool.
type Servant struct {
	Name          string
	DefaultModel  string
	AllowedModels []string

	// WrapperDefaults holds the per-tool wrapper settings. The key set
	// is fixed per servant (Schema.WrapperKeys) and fully validated, so
	// the typed accessors below never see out-of-vocabulary values.
	WrapperDefaults map[string]any

	// PurposeModels and PurposeEfforts map purpose names to a model or
	// effort override. PurposeEfforts is populated for codex only.
	PurposeModels  map[string]string
	PurposeEfforts map[string]string
}

// AllowsModel reports whether model belongs to the servant's allowed set.
func (s *Servant) AllowsModel(model string) bool {
	for _, allowed := range s.AllowedModels {
		if model == allowed {
			return true
		}
	}
	return false
}

// TimeoutMS returns the wrapper default timeout in milliseconds.
func (s *Servant) TimeoutMS() int {
	switch n := s.WrapperDefaults["timeout_ms"].(type) {
	case int:
		return n
	case int64:
		return int(n)
	}
	return 0
}

// TimeoutMode returns the wrapper default timeout mode.
func (s *Servant) TimeoutMode() string {
	mode, _ := s.WrapperDefaults["timeout_mode"].(string)
	return mode
}

// Effort returns the wrapper default effort, or "" for servants without
// one.
func (s *Servant) Effort() string {
	effort, _ := s.WrapperDefaults["effort"].(string)
	return effort
}

// Profile is one named configuration of a pipeline.
type Profile struct {
	Stages       []string
	Flags        map[string]bool
	Options      map[string]string
	StageModels  map[string]string
	StageEfforts map[string]string
}

// clone returns a deep copy so resolution never mutates the validated
// tree.
func (p *Profile) clone() *Profile {
	out := &Profile{
		Stages:       append([]string(nil), p.Stages...),
		Flags:        make(map[string]bool, len(p.Flags)),
		Options:      make(map[string]string, len(p.Options)),
		StageModels:  make(map[string]string, len(p.StageModels)),
		StageEfforts: make(map[string]string, len(p.StageEfforts)),
	}
	for k, v := range p.Flags {
		out.Flags[k] = v
	}
	for k, v := range p.Options {
		out.Options[k] = v
	}
	for k, v := range p.StageModels {
		out.StageModels[k] = v
	}
	for k, v := range p.StageEfforts {
		out.StageEfforts[k] = v
	}
	return out
}

// Pipeline is one validated pipeline with its named profiles.
type Pipeline struct {
	Name           string
	DefaultProfile string
	Profiles       map[string]*Profile
}

// Config is the canonical validated configuration tree. Resolvers
// consume it read-only; no loader state survives validation.
type Config struct {
	Servants  map[string]*Servant
	Pipelines map[string]*Pipeline
}

// StagePipelineForProfile returns which of the two stage-based
// pipelines defines a profile with the given name, or "" when neither
// does. Profile names are globally unique across those pipelines, which
// is what makes intent-based pipeline selection work.
func (c *Config) StagePipelineForProfile(profileName string) string {
	for _, name := range []string{PipelineImpl, PipelineReview} {
		if pipeline, ok := c.Pipelines[name]; ok {
			if _, ok := pipeline.Profiles[profileName]; ok {
				return name
			}
		}
	}
	return ""
}

// Tree rebuilds the raw mapping form of the configuration. The result
// revalidates cleanly, which keeps validation idempotent, and is the
// input for snapshot rendering.
func (c *Config) Tree() map[string]any {
	servants := make(map[string]any, len(c.Servants))
	for name, servant := range c.Servants {
		wrapper := make(map[string]any, len(servant.WrapperDefaults))
		for k, v := range servant.WrapperDefaults {
			wrapper[k] = v
		}
		servants[name] = map[string]any{
			"default_model":    servant.DefaultModel,
			"allowed_models":   stringsToAny(servant.AllowedModels),
			"wrapper_defaults": wrapper,
			"purpose_models":   stringMapToAny(servant.PurposeModels),
			"purpose_efforts":  stringMapToAny(servant.PurposeEfforts),
		}
	}

	pipelines := make(map[string]any, len(c.Pipelines))
	for name, pipeline := range c.Pipelines {
		profiles := make(map[string]any, len(pipeline.Profiles))
		for profileName, profile := range pipeline.Profiles {
			node := map[string]any{
				"flags":         boolMapToAny(profile.Flags),
				"options":       stringMapToAny(profile.Options),
				"stage_models":  stringMapToAny(profile.StageModels),
				"stage_efforts": stringMapToAny(profile.StageEfforts),
			}
			if name != PipelinePlan {
				node["stages"] = stringsToAny(profile.Stages)
			}
			profiles[profileName] = node
		}
		pipelines[name] = map[string]any{
			"default_profile": pipeline.DefaultProfile,
			"profiles":        profiles,
		}
	}

	return map[string]any{
		"version":   1,
		"servants":  servants,
		"pipelines": pipelines,
	}
}

func stringsToAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func stringMapToAny(m map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func boolMapToAny(m map[string]bool) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
