package snapshot

import (
	"fmt"
	"strings"

	"github.com/aquila-k/Multi-LLM-Agents-Orchestration/internal/configv2"
	"github.com/aquila-k/Multi-LLM-Agents-Orchestration/internal/filelock"
)

// RenderV2 renders the validated v2 configuration as a markdown
// summary.
func RenderV2(sch *configv2.Schema, cfg *configv2.Config) string {
	var lines []string
	lines = append(lines, "# Config V2 Snapshot")
	lines = append(lines, "")
	lines = append(lines, "> Auto-generated summary of the current configs-v2 state.")
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("- config_root: `%s`", cfg.Root))
	lines = append(lines, "- version: `2`")
	lines = append(lines, "")

	lines = append(lines, "## Skills")
	lines = append(lines, "")
	for _, phase := range sch.Phases {
		lines = append(lines, v2SkillSection(phase, cfg.Skills[phase])...)
		lines = append(lines, "")
	}

	lines = append(lines, "## Servants")
	lines = append(lines, "")
	for _, tool := range sch.Tools {
		lines = append(lines, v2ServantSection(tool, cfg.Servants[tool])...)
		lines = append(lines, "")
	}

	lines = append(lines, v2PolicySection(cfg.Policies)...)
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func v2SkillSection(phase string, skill *configv2.Skill) []string {
	var lines []string
	lines = append(lines, fmt.Sprintf("### `%s`", phase))
	lines = append(lines, fmt.Sprintf("- source: `configs-v2/skills/%s.yaml`", phase))
	lines = append(lines, fmt.Sprintf("- default_method_ids: `%s`", jsonInline(skill.DefaultMethodIDs)))
	lines = append(lines, "- methods:")
	for _, methodID := range sortedKeys(skill.Methods) {
		method := skill.Methods[methodID]
		lines = append(lines, fmt.Sprintf(
			"  - `%s` enabled=`%t` gate_profile=`%s` steps=`%s` allowed_tools=`%s`",
			methodID, method.Enabled, method.GateProfile,
			jsonInline(method.Steps), jsonInline(method.AllowedTools),
		))
	}
	lines = append(lines, "- step_defaults:")
	for _, stepID := range sortedKeys(skill.StepDefaults) {
		step := skill.StepDefaults[stepID]
		desc := ""
		if step.Description != "" {
			desc = " — " + step.Description
		}
		lines = append(lines, fmt.Sprintf(
			"  - `%s`%s tool=`%s` mode=`%s` web_research_mode=`%s`",
			stepID, desc, step.Tool, step.Mode, step.WebMode,
		))
	}
	return lines
}

func v2ServantSection(tool string, servant *configv2.Servant) []string {
	var lines []string
	lines = append(lines, fmt.Sprintf("### `%s`", tool))
	lines = append(lines, fmt.Sprintf("- source: `configs-v2/servants/%s.yaml`", tool))
	lines = append(lines, fmt.Sprintf("- default_model: `%s`", servant.DefaultModel))
	lines = append(lines, fmt.Sprintf("- allowed_models: `%s`", jsonInline(servant.AllowedModels)))
	lines = append(lines, fmt.Sprintf("- wrapper_defaults: `%s`", jsonInline(servant.WrapperDefaults)))
	lines = append(lines, fmt.Sprintf("- web_modes: `%s`", jsonInline(servant.WebModes)))
	return lines
}

func v2PolicySection(policies *configv2.Policies) []string {
	var lines []string
	lines = append(lines, "## Policies")
	lines = append(lines, "")

	routing := policies.Routing
	lines = append(lines, "### `routing`")
	lines = append(lines, "- source: `configs-v2/policies/routing.yaml`")
	lines = append(lines, fmt.Sprintf("- stop_policy.conditions: `%s`", jsonInline(routing.StopPolicy.Conditions)))
	lines = append(lines, fmt.Sprintf("- stop_policy.on_stop: `%s`", routing.StopPolicy.OnStop))
	lines = append(lines, fmt.Sprintf("- confidence_policy: `%s`", jsonInline(routing.Confidence)))
	lines = append(lines, fmt.Sprintf("- hard_stop_reason_map keys: `%s`", jsonInline(sortedKeys(routing.HardStopReasons))))
	lines = append(lines, fmt.Sprintf("- reproducibility_policy: `%s`", jsonInline(routing.Reproducibility)))
	lines = append(lines, fmt.Sprintf("- route_decider_policy: `%s`", jsonInline(routing.RouteDecider)))
	lines = append(lines, "")

	lines = append(lines, "### `review_parallel`")
	lines = append(lines, "- source: `configs-v2/policies/review_parallel.yaml`")
	lines = append(lines, fmt.Sprintf("- config: `%s`", jsonInline(policies.ReviewParallel)))
	lines = append(lines, "")

	lines = append(lines, "### `web_evidence`")
	lines = append(lines, "- source: `configs-v2/policies/web_evidence.yaml`")
	lines = append(lines, fmt.Sprintf("- config: `%s`", jsonInline(policies.WebEvidence)))

	return lines
}

// WriteV2 writes a rendered v2 snapshot to path.
func WriteV2(path, content string) error {
	return filelock.LockAndWrite(path, []byte(content))
}
