// Package configv2 loads, validates, and resolves the phase-based v2
// configuration: per-phase skill methods with step defaults, servant
// capability declarations, and the pinned orchestration policies. Like
// the v1 engine it is fail-closed and fail-fast, with deterministic
// first errors from sorted map walks.
package configv2

import "path/filepath"

// Tool names.
const (
	ToolCodex   = "codex"
	ToolGemini  = "gemini"
	ToolCopilot = "copilot"
)

// Phase names.
const (
	PhasePlan   = "plan"
	PhaseImpl   = "impl"
	PhaseReview = "review"
)

// WebModeOff disables web research for a step regardless of tool.
const WebModeOff = "off"

// Pinned review_parallel policy values. The policy file must carry
// exactly these; anything else is a configuration error.
const (
	ReviewParallelMode        = "finding-first"
	ReviewParallelJoinBarrier = "required"
	ReviewParallelApplyOrder  = "sequential"
	ReviewParallelWorkerMode  = "analysis_only"
)

// Schema carries the closed vocabularies and structural tables of the
// v2 layout. Built once by DefaultSchema and treated as immutable.
type Schema struct {
	// Tools and Phases list the known names in canonical order.
	Tools  []string
	Phases []string

	// ConfigDirs lists the required config-root subdirectories in
	// validation order; ExpectedFiles gives the exact YAML file set per
	// directory.
	ConfigDirs    []string
	ExpectedFiles map[string][]string

	// WebResearchModes is the full web mode vocabulary; ToolWebModes
	// restricts it per tool (every tool supports "off").
	WebResearchModes []string
	ToolWebModes     map[string][]string

	// DefaultModes, GateProfiles, and TimeoutModes are the scalar
	// enumerations of skill and servant files.
	DefaultModes []string
	GateProfiles []string
	TimeoutModes []string

	// WrapperKeys is the allowed wrapper_defaults key superset. Only the
	// timeout keys are validated here; the tool-specific ones pass
	// through for the v1 runtime.
	WrapperKeys []string

	// Routing policy vocabularies.
	StopActions      []string
	StopHandlers     []string
	ConfidenceValues []string
	ImpactSurfaces   []string
	MismatchHandlers []string

	// Web evidence policy vocabularies. EvidenceFields is an exact-set
	// requirement; EvidenceReasonCodes bounds the reason_code_map keys.
	EvidenceStrictness  []string
	EvidenceGateActions []string
	EvidenceFields      []string
	EvidenceReasonCodes []string
}

// DefaultSchema returns the schema of the production v2 layout.
func DefaultSchema() *Schema {
	return &Schema{
		Tools:  []string{ToolCodex, ToolGemini, ToolCopilot},
		Phases: []string{PhasePlan, PhaseImpl, PhaseReview},

		ConfigDirs: []string{"skills", "servants", "policies"},
		ExpectedFiles: map[string][]string{
			"skills":   {"plan.yaml", "impl.yaml", "review.yaml"},
			"servants": {"codex.yaml", "gemini.yaml", "copilot.yaml"},
			"policies": {"routing.yaml", "review_parallel.yaml", "web_evidence.yaml"},
		},

		WebResearchModes: []string{WebModeOff, "codex_explicit", "gemini_auto", "copilot_mcp"},
		ToolWebModes: map[string][]string{
			ToolCodex:   {WebModeOff, "codex_explicit"},
			ToolGemini:  {WebModeOff, "gemini_auto"},
			ToolCopilot: {WebModeOff, "copilot_mcp"},
		},

		DefaultModes: []string{"normal", "analysis_only"},
		GateProfiles: []string{"standard", "strict", "minimal", "finding-first"},
		TimeoutModes: []string{"enforce", "wait_done"},

		WrapperKeys: []string{"timeout_ms", "timeout_mode", "effort", "approval_mode", "sandbox"},

		StopActions:      []string{"STOP_AND_CONFIRM"},
		StopHandlers:     []string{"write_reason_codes_to_routing_result"},
		ConfidenceValues: []string{"high", "medium", "low"},
		ImpactSurfaces:   []string{"low", "medium", "high"},
		MismatchHandlers: []string{"record_ROUTING_NON_DETERMINISTIC_and_stop"},

		EvidenceStrictness:  []string{"strict"},
		EvidenceGateActions: []string{"reject_and_stop"},
		EvidenceFields:      []string{"evidence_id", "url", "accessed_at", "claim_summary"},
		EvidenceReasonCodes: []string{"WEB_EVIDENCE_MISSING", "WEB_EVIDENCE_UNVERIFIABLE", "WEB_EVIDENCE_STALE"},
	}
}

// SkillFile returns the config-root-relative path of a phase skill file.
func (s *Schema) SkillFile(phase string) string {
	return filepath.Join("skills", phase+".yaml")
}

// ServantFile returns the config-root-relative path of a servant file.
func (s *Schema) ServantFile(tool string) string {
	return filepath.Join("servants", tool+".yaml")
}

// PolicyFile returns the config-root-relative path of a policy file.
func (s *Schema) PolicyFile(name string) string {
	return filepath.Join("policies", name+".yaml")
}

// IsTool reports whether name is a known tool.
func (s *Schema) IsTool(name string) bool {
	return contains(s.Tools, name)
}

// WebModeCompatible reports whether a web research mode may run on a
// tool. "off" is compatible with every tool.
func (s *Schema) WebModeCompatible(mode, tool string) bool {
	if mode == WebModeOff {
		return true
	}
	return contains(s.ToolWebModes[tool], mode)
}

func contains(values []string, v string) bool {
	for _, item := range values {
		if item == v {
			return true
		}
	}
	return false
}
