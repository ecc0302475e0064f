package config

import (
	"fmt"
	"path/filepath"

	"github.com/aquila-k/Multi-LLM-Agents-Orchestration/internal/schema"
)

// Load reads the split configuration under configRoot, normalizes the
// two accepted file shapes, and validates the combined tree. Error paths
// for tree-level failures are rooted at the absolute config root path;
// file-level failures carry the file path.
func Load(sch *Schema, configRoot string) (*Config, error) {
	root, err := filepath.Abs(configRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config root: %w", err)
	}

	servants := make(map[string]any, len(sch.ServantNames))
	for _, servant := range sch.ServantNames {
		path := filepath.Join(root, sch.ServantFile(servant))
		raw, err := schema.LoadMapping(path)
		if err != nil {
			return nil, err
		}
		normalized, err := normalizeServantFile(raw, servant, path)
		if err != nil {
			return nil, err
		}
		servants[servant] = normalized
	}

	pipelines := make(map[string]any, len(sch.PipelineNames))
	for _, pipeline := range sch.PipelineNames {
		path := filepath.Join(root, sch.PipelineFile(pipeline))
		raw, err := schema.LoadMapping(path)
		if err != nil {
			return nil, err
		}
		normalized, err := normalizePipelineFile(raw, pipeline, path)
		if err != nil {
			return nil, err
		}
		pipelines[pipeline] = normalized
	}

	tree := map[string]any{
		"version":   1,
		"servants":  servants,
		"pipelines": pipelines,
	}
	return ValidateTree(sch, tree, root)
}

// Servant and pipeline files come in two shapes: a full form carrying a
// version tag and a self-identifying name field, and a compact form
// without them. Both normalize to the compact shape here so the
// validator never distinguishes them.

func normalizeServantFile(raw map[string]any, servant, path string) (map[string]any, error) {
	fullKeys := []string{
		"version", "tool",
		"default_model", "allowed_models", "wrapper_defaults", "purpose_models", "purpose_efforts",
	}
	compactKeys := []string{
		"default_model", "allowed_models", "wrapper_defaults", "purpose_models", "purpose_efforts",
	}

	_, hasVersion := raw["version"]
	_, hasTool := raw["tool"]
	if hasVersion || hasTool {
		if err := schema.EnsureKeys(raw, fullKeys, path); err != nil {
			return nil, err
		}
		if raw["version"] != 1 {
			return nil, schema.NewError(path+".version", "must be 1")
		}
		if raw["tool"] != servant {
			return nil, schema.Errorf(path+".tool", "must be '%s'", servant)
		}
		normalized := map[string]any{
			"default_model":    raw["default_model"],
			"allowed_models":   raw["allowed_models"],
			"wrapper_defaults": raw["wrapper_defaults"],
			"purpose_models":   map[string]any{},
			"purpose_efforts":  map[string]any{},
		}
		if v, ok := raw["purpose_models"]; ok {
			normalized["purpose_models"] = v
		}
		if v, ok := raw["purpose_efforts"]; ok {
			normalized["purpose_efforts"] = v
		}
		return normalized, nil
	}

	if err := schema.EnsureKeys(raw, compactKeys, path); err != nil {
		return nil, err
	}
	normalized := make(map[string]any, len(raw))
	for key, value := range raw {
		normalized[key] = value
	}
	return normalized, nil
}

func normalizePipelineFile(raw map[string]any, pipeline, path string) (map[string]any, error) {
	fullKeys := []string{"version", "pipeline", "default_profile", "profiles"}
	compactKeys := []string{"default_profile", "profiles"}

	_, hasVersion := raw["version"]
	_, hasName := raw["pipeline"]
	if hasVersion || hasName {
		if err := schema.EnsureKeys(raw, fullKeys, path); err != nil {
			return nil, err
		}
		if raw["version"] != 1 {
			return nil, schema.NewError(path+".version", "must be 1")
		}
		if raw["pipeline"] != pipeline {
			return nil, schema.Errorf(path+".pipeline", "must be '%s'", pipeline)
		}
		return map[string]any{
			"default_profile": raw["default_profile"],
			"profiles":        raw["profiles"],
		}, nil
	}

	if err := schema.EnsureKeys(raw, compactKeys, path); err != nil {
		return nil, err
	}
	normalized := make(map[string]any, len(raw))
	for key, value := range raw {
		normalized[key] = value
	}
	return normalized, nil
}
