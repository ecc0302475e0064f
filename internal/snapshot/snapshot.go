package snapshot

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aquila-k/Multi-LLM-Agents-Orchestration/internal/config"
	"github.com/aquila-k/Multi-LLM-Agents-Orchestration/internal/filelock"
)

// The v1 snapshot file names written into the output directory.
const (
	V1YAMLFile     = "config-snapshot.yaml"
	V1MarkdownFile = "config-snapshot.md"
)

// Snapshot names from before the split config layout. WriteV1 removes
// them so stale copies cannot shadow the current files.
var v1LegacyFiles = []string{"orchestrator.yaml", "orchestrator.md"}

const v1YAMLHeader = `# AUTO-GENERATED FILE. DO NOT EDIT.
# Runtime source of truth is split config under:
#   - configs/servant/*.yaml
#   - configs/pipeline/*.yaml
# This file is a read-only snapshot for humans.
`

// RenderV1YAML renders the effective v1 configuration as a commented
// YAML document.
func RenderV1YAML(cfg *config.Config) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg.Tree()); err != nil {
		return "", fmt.Errorf("failed to encode snapshot yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to encode snapshot yaml: %w", err)
	}
	return v1YAMLHeader + buf.String(), nil
}

// RenderV1Markdown renders the human summary of the v1 configuration.
func RenderV1Markdown(sch *config.Schema, cfg *config.Config) string {
	choices := config.BuildChoices(sch, cfg)

	var lines []string
	lines = append(lines, "# Config Snapshot")
	lines = append(lines, "")
	lines = append(lines, "> AUTO-GENERATED. DO NOT EDIT.")
	lines = append(lines, "")
	lines = append(lines, "This document is a read-only view of current effective split configuration.")
	lines = append(lines, "Runtime source of truth:")
	lines = append(lines, "- `configs/servant/*.yaml`")
	lines = append(lines, "- `configs/pipeline/*.yaml`")
	lines = append(lines, "")
	lines = append(lines, "Snapshot files:")
	lines = append(lines, "- `configs/"+V1YAMLFile+"`")
	lines = append(lines, "- `configs/"+V1MarkdownFile+"`")
	lines = append(lines, "")
	lines = append(lines, "## Where To Change Settings")
	lines = append(lines, "")
	lines = append(lines, "| What you want to change | Edit this file |")
	lines = append(lines, "| --- | --- |")
	for _, row := range v1EditMapRows() {
		lines = append(lines, fmt.Sprintf("| %s | %s |", row[0], row[1]))
	}
	lines = append(lines, "")
	lines = append(lines, v1ChoicesSection(sch, choices)...)
	lines = append(lines, "")
	lines = append(lines, "## Current Provider State")
	lines = append(lines, "")
	for _, tool := range sch.ServantNames {
		lines = append(lines, v1ServantSection(sch, tool, cfg.Servants[tool])...)
		lines = append(lines, "")
	}
	lines = append(lines, "## Current Pipeline State")
	lines = append(lines, "")
	for _, pipeline := range sch.PipelineNames {
		lines = append(lines, v1PipelineSection(pipeline, cfg.Pipelines[pipeline])...)
		lines = append(lines, "")
	}
	lines = append(lines, "## Validation Command")
	lines = append(lines, "")
	lines = append(lines, "```bash")
	lines = append(lines, "agentctl validate --config-root configs")
	lines = append(lines, "agentctl validate --config-root configs --print-choices")
	lines = append(lines, "```")
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func v1EditMapRows() [][2]string {
	return [][2]string{
		{"Codex provider settings", "[configs/servant/codex.yaml](servant/codex.yaml)"},
		{"Gemini provider settings", "[configs/servant/gemini.yaml](servant/gemini.yaml)"},
		{"Copilot provider settings", "[configs/servant/copilot.yaml](servant/copilot.yaml)"},
		{"Impl pipeline profiles/options", "[configs/pipeline/impl-pipeline.yaml](pipeline/impl-pipeline.yaml)"},
		{"Review pipeline profiles/options", "[configs/pipeline/review-pipeline.yaml](pipeline/review-pipeline.yaml)"},
		{"Plan pipeline profiles/options", "[configs/pipeline/plan-pipeline.yaml](pipeline/plan-pipeline.yaml)"},
		{"Task-level one-off overrides", "`<task>/manifest.yaml` (`routing.model.*`, `routing.pipeline.*`)"},
		{"Allowed option enums and validation rules", "`agentctl validate --config-root configs --print-choices`"},
	}
}

func v1ChoicesSection(sch *config.Schema, choices *config.Choices) []string {
	var lines []string
	lines = append(lines, "## Configurable Options (Current Allowed Values)")
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("- `codex_effort`: `%s`", jsonInline(choices.Enums.CodexEffort)))
	lines = append(lines, fmt.Sprintf("- `gemini_approval_mode`: `%s`", jsonInline(choices.Enums.GeminiApprovalMode)))
	lines = append(lines, fmt.Sprintf("- `timeout_mode`: `%s`", jsonInline(choices.Enums.TimeoutMode)))
	lines = append(lines, "")
	lines = append(lines, "### Pipeline Options")
	for _, pipeline := range sch.PipelineNames {
		lines = append(lines, fmt.Sprintf("- `%s`:", pipeline))
		options := choices.Enums.PipelineOptions[pipeline]
		for _, option := range sortedKeys(options) {
			lines = append(lines, fmt.Sprintf("  - `%s`: `%s`", option, jsonInline(options[option])))
		}
	}
	lines = append(lines, "")
	lines = append(lines, "### Pipeline Flags")
	for _, pipeline := range sch.PipelineNames {
		lines = append(lines, fmt.Sprintf("- `%s`: `%s`", pipeline, jsonInline(choices.Enums.PipelineFlags[pipeline])))
	}
	return lines
}

func v1ServantSection(sch *config.Schema, tool string, servant *config.Servant) []string {
	var lines []string
	lines = append(lines, fmt.Sprintf("### `%s`", tool))
	lines = append(lines, fmt.Sprintf("- Edit file: [configs/servant/%s.yaml](servant/%s.yaml)", tool, tool))
	lines = append(lines, fmt.Sprintf("- `default_model`: `%s`", servant.DefaultModel))
	lines = append(lines, fmt.Sprintf("- `wrapper_defaults`: `%s`", jsonInline(servant.WrapperDefaults)))
	lines = append(lines, "- `allowed_models`:")
	for _, model := range servant.AllowedModels {
		lines = append(lines, fmt.Sprintf("  - `%s`", model))
	}
	lines = append(lines, v1PurposeTable("purpose_models", sch, servant.PurposeModels)...)
	lines = append(lines, v1PurposeTable("purpose_efforts", sch, servant.PurposeEfforts)...)
	return lines
}

// v1PurposeTable lists a purpose-keyed table in the canonical purpose
// order, or nothing when the table is empty.
func v1PurposeTable(label string, sch *config.Schema, table map[string]string) []string {
	if len(table) == 0 {
		return nil
	}
	lines := []string{fmt.Sprintf("- `%s`:", label)}
	for _, purpose := range sch.PurposeNames {
		if value, ok := table[purpose]; ok {
			lines = append(lines, fmt.Sprintf("  - `%s` -> `%s`", purpose, value))
		}
	}
	return lines
}

func v1PipelineSection(name string, pipeline *config.Pipeline) []string {
	var lines []string
	lines = append(lines, fmt.Sprintf("### `%s`", name))
	lines = append(lines, fmt.Sprintf("- Edit file: [configs/pipeline/%s-pipeline.yaml](pipeline/%s-pipeline.yaml)", name, name))
	lines = append(lines, fmt.Sprintf("- `default_profile`: `%s`", pipeline.DefaultProfile))
	for _, profileName := range sortedKeys(pipeline.Profiles) {
		lines = append(lines, v1ProfileSummary(name, profileName, pipeline.Profiles[profileName])...)
	}
	return lines
}

func v1ProfileSummary(pipeline, name string, profile *config.Profile) []string {
	var lines []string
	lines = append(lines, fmt.Sprintf("#### `%s`", name))
	if pipeline == config.PipelineImpl || pipeline == config.PipelineReview {
		lines = append(lines, fmt.Sprintf("- `stages`: `%s`", jsonInline(profile.Stages)))
	}
	lines = append(lines, fmt.Sprintf("- `flags`: `%s`", jsonInline(profile.Flags)))
	lines = append(lines, fmt.Sprintf("- `options`: `%s`", jsonInline(profile.Options)))
	if len(profile.StageModels) > 0 {
		lines = append(lines, "- `stage_models`:")
		for _, stage := range sortedKeys(profile.StageModels) {
			lines = append(lines, fmt.Sprintf("  - `%s` -> `%s`", stage, profile.StageModels[stage]))
		}
	}
	if len(profile.StageEfforts) > 0 {
		lines = append(lines, "- `stage_efforts`:")
		for _, stage := range sortedKeys(profile.StageEfforts) {
			lines = append(lines, fmt.Sprintf("  - `%s` -> `%s`", stage, profile.StageEfforts[stage]))
		}
	}
	return lines
}

// WriteV1 renders both v1 snapshot documents and writes them into
// outputDir, removing the legacy snapshot files when present.
func WriteV1(sch *config.Schema, cfg *config.Config, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", outputDir, err)
	}

	yamlDoc, err := RenderV1YAML(cfg)
	if err != nil {
		return err
	}
	if err := filelock.LockAndWrite(filepath.Join(outputDir, V1YAMLFile), []byte(yamlDoc)); err != nil {
		return err
	}

	markdown := RenderV1Markdown(sch, cfg)
	if err := filelock.LockAndWrite(filepath.Join(outputDir, V1MarkdownFile), []byte(markdown)); err != nil {
		return err
	}

	// Best-effort removal; a stale legacy snapshot is not an error.
	for _, name := range v1LegacyFiles {
		os.Remove(filepath.Join(outputDir, name))
	}
	return nil
}
