// Package config loads, validates, and resolves the split v1 runtime
// configuration: per-servant defaults, per-pipeline profiles, optional
// per-task manifest overrides, and the override-precedence engines that
// turn them into a concrete execution plan.
package config

import (
	"path/filepath"
	"strings"
)

// Servant names. The orchestrator dispatches work to exactly these three
// external tools.
const (
	ServantCodex   = "codex"
	ServantGemini  = "gemini"
	ServantCopilot = "copilot"
)

// Pipeline names.
const (
	PipelineImpl   = "impl"
	PipelineReview = "review"
	PipelinePlan   = "plan"
)

// Schema carries the closed vocabularies and structural tables the
// validator and resolvers check against. Instances are built once by
// DefaultSchema and treated as immutable; passing the schema explicitly
// keeps the validation logic testable against reduced vocabularies.
type Schema struct {
	// ServantNames lists the known servants in canonical order.
	ServantNames []string

	// PipelineNames lists the known pipelines in canonical order.
	PipelineNames []string

	// PipelineFlags is the closed flag vocabulary per pipeline.
	PipelineFlags map[string][]string

	// PipelineOptions is the closed option vocabulary per pipeline,
	// mapping option key to its allowed values.
	PipelineOptions map[string]map[string][]string

	// WrapperKeys is the exact wrapper_defaults key set per servant.
	// Every listed key is required.
	WrapperKeys map[string][]string

	// CodexEfforts, GeminiApprovals, and TimeoutModes are the scalar
	// enumerations referenced across servants and profiles.
	CodexEfforts    []string
	GeminiApprovals []string
	TimeoutModes    []string

	// PurposeNames is the closed set of purpose identifiers usable as
	// keys of purpose_models and purpose_efforts.
	PurposeNames []string

	// PlanStageTools maps each plan-pipeline stage name to its servant.
	// The plan pipeline has a fixed stage set, so stage names are looked
	// up here instead of being split on the servant prefix.
	PlanStageTools map[string]string

	// PlanStageOrder is the fixed execution order of the plan pipeline.
	PlanStageOrder []string

	// DispatchFlags is the flag vocabulary honored at dispatch time,
	// defined only for the two stage-based pipelines.
	DispatchFlags map[string][]string

	// DispatchOptions is the option-key vocabulary accepted at dispatch
	// time. The review set is a superset of the validator's vocabulary:
	// security_mode passes through for downstream consumers.
	DispatchOptions map[string][]string

	// ImplModeProfiles and ReviewModeProfiles map mode option values to
	// the profile the dispatch resolver reselects for that mode.
	ImplModeProfiles   map[string]string
	ReviewModeProfiles map[string]string
}

// DefaultSchema returns the schema of the production configuration
// layout.
func DefaultSchema() *Schema {
	return &Schema{
		ServantNames:  []string{ServantCodex, ServantGemini, ServantCopilot},
		PipelineNames: []string{PipelineImpl, PipelineReview, PipelinePlan},
		PipelineFlags: map[string][]string{
			PipelineImpl:   {"enable_brief", "enable_verify", "enable_review"},
			PipelineReview: {"enable_verify", "enable_review"},
			PipelinePlan:   {"enable_stage2_codex", "enable_stage2_gemini", "enable_stage3_cross_review"},
		},
		PipelineOptions: map[string]map[string][]string{
			PipelineImpl: {
				"impl_mode":    {"safe", "one_shot"},
				"timeout_mode": {"enforce", "wait_done"},
			},
			PipelineReview: {
				"review_mode":  {"codex_only", "cross"},
				"timeout_mode": {"enforce", "wait_done"},
			},
			PipelinePlan: {
				"consolidate_mode": {"standard"},
				"timeout_mode":     {"enforce", "wait_done"},
			},
		},
		WrapperKeys: map[string][]string{
			ServantCodex:   {"effort", "timeout_ms", "timeout_mode"},
			ServantGemini:  {"approval_mode", "sandbox", "timeout_ms", "timeout_mode"},
			ServantCopilot: {"timeout_ms", "timeout_mode"},
		},
		CodexEfforts:    []string{"low", "medium", "high", "xhigh"},
		GeminiApprovals: []string{"default", "auto_edit", "yolo"},
		TimeoutModes:    []string{"enforce", "wait_done"},
		PurposeNames:    []string{"impl", "review", "verify", "plan", "one_shot"},
		PlanStageTools: map[string]string{
			"copilot_draft":       ServantCopilot,
			"codex_enrich":        ServantCodex,
			"gemini_enrich":       ServantGemini,
			"codex_cross_review":  ServantCodex,
			"gemini_cross_review": ServantGemini,
			"copilot_consolidate": ServantCopilot,
		},
		PlanStageOrder: []string{
			"copilot_draft",
			"codex_enrich",
			"gemini_enrich",
			"codex_cross_review",
			"gemini_cross_review",
			"copilot_consolidate",
		},
		DispatchFlags: map[string][]string{
			PipelineImpl:   {"enable_brief", "enable_verify", "enable_review"},
			PipelineReview: {"enable_verify", "enable_review"},
		},
		DispatchOptions: map[string][]string{
			PipelineImpl:   {"impl_mode", "timeout_mode"},
			PipelineReview: {"review_mode", "timeout_mode", "security_mode"},
		},
		ImplModeProfiles: map[string]string{
			"safe":     "safe_impl",
			"one_shot": "one_shot_impl",
		},
		ReviewModeProfiles: map[string]string{
			"codex_only": "codex_only",
			"cross":      "review_cross",
		},
	}
}

// ServantFile returns the config-root-relative path of a servant file.
func (s *Schema) ServantFile(servant string) string {
	return filepath.Join("servant", servant+".yaml")
}

// PipelineFile returns the config-root-relative path of a pipeline file.
func (s *Schema) PipelineFile(pipeline string) string {
	return filepath.Join("pipeline", pipeline+"-pipeline.yaml")
}

// StageTool maps a stage name to its servant, or "" when the stage does
// not encode a known servant. Plan-pipeline stages are fixed names
// resolved through PlanStageTools; stages of the other pipelines carry
// the servant as the prefix before the first underscore.
func (s *Schema) StageTool(stage, pipeline string) string {
	if pipeline == PipelinePlan {
		return s.PlanStageTools[stage]
	}
	prefix, _, found := strings.Cut(stage, "_")
	if !found {
		return ""
	}
	for _, name := range s.ServantNames {
		if prefix == name {
			return name
		}
	}
	return ""
}

// IsServant reports whether name is a known servant.
func (s *Schema) IsServant(name string) bool {
	for _, servant := range s.ServantNames {
		if name == servant {
			return true
		}
	}
	return false
}

// UnionFlags returns the union of all pipelines' flag vocabularies,
// used to validate manifest overrides before a pipeline is selected.
func (s *Schema) UnionFlags() []string {
	var union []string
	seen := make(map[string]bool)
	for _, pipeline := range s.PipelineNames {
		for _, flag := range s.PipelineFlags[pipeline] {
			if !seen[flag] {
				seen[flag] = true
				union = append(union, flag)
			}
		}
	}
	return union
}

// UnionOptions returns the union of all pipelines' option vocabularies.
// When two pipelines share an option key the allowed values coincide, so
// the merge keeps whichever definition appears first.
func (s *Schema) UnionOptions() map[string][]string {
	union := make(map[string][]string)
	for _, pipeline := range s.PipelineNames {
		for key, values := range s.PipelineOptions[pipeline] {
			if _, ok := union[key]; !ok {
				union[key] = values
			}
		}
	}
	return union
}
