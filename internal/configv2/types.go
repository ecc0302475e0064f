package configv2

// Method is one selectable execution method of a phase skill.
type Method struct {
	Enabled      bool
	Steps        []string
	AllowedTools []string
	GateProfile  string
}

// StepDefault is the baseline assignment of one skill step: which tool
// runs it, in which mode, and with which web research mode.
type StepDefault struct {
	Tool        string
	Mode        string
	WebMode     string
	Description string
}

// Skill is the validated configuration of one phase. Every step named
// by a method has a StepDefaults entry and vice versa.
type Skill struct {
	Phase            string
	DefaultMethodIDs []string
	Methods          map[string]*Method
	StepDefaults     map[string]*StepDefault
}

// Servant is the validated v2 configuration of one external tool.
// WrapperDefaults keeps the tool-specific v1 keys untouched; only the
// timeout keys are validated here.
type Servant struct {
	Name            string
	DefaultModel    string
	AllowedModels   []string
	WrapperDefaults map[string]any
	WebModes        []string
}

// AllowsModel reports whether model belongs to the servant's allowed set.
func (s *Servant) AllowsModel(model string) bool {
	return contains(s.AllowedModels, model)
}

// StopCondition is one stop_policy condition. The matcher fields are
// optional; Action is required. Field order follows the sorted-key JSON
// contract of snapshot rendering.
type StopCondition struct {
	Action                  string `json:"action"`
	Confidence              string `json:"confidence,omitempty"`
	ImpactSurface           string `json:"impact_surface,omitempty"`
	ReasonCodesContain      string `json:"reason_codes_contain,omitempty"`
	StrictEvidenceViolation *bool  `json:"strict_evidence_violation,omitempty"`
}

// StopPolicy stops a run and records reason codes when a condition
// matches.
type StopPolicy struct {
	Conditions []StopCondition `json:"conditions"`
	OnStop     string          `json:"on_stop"`
}

// ConfidencePolicy pins the confidence vocabulary a route decision may
// report and its default.
type ConfidencePolicy struct {
	Default string   `json:"default"`
	Values  []string `json:"values"`
}

// ReproducibilityPolicy governs deterministic routing replays.
type ReproducibilityPolicy struct {
	DeterministicRequired bool   `json:"deterministic_required"`
	OnMismatch            string `json:"on_mismatch"`
}

// RouteDeciderPolicy points each phase at its routing prompt.
type RouteDeciderPolicy struct {
	PhasePromptPaths map[string]string `json:"phase_prompt_paths"`
	SchemaVersion    int               `json:"schema_version"`
}

// RoutingPolicy is the validated policies/routing.yaml document.
type RoutingPolicy struct {
	StopPolicy      StopPolicy
	Confidence      ConfidencePolicy
	HardStopReasons map[string]string
	Reproducibility ReproducibilityPolicy
	RouteDecider    RouteDeciderPolicy
}

// ReviewArtifacts names the filesystem artifacts of a parallel review.
type ReviewArtifacts struct {
	FindingsDir string `json:"findings_dir"`
	Merged      string `json:"merged"`
	Queue       string `json:"queue"`
}

// ReviewParallelPolicy is the validated policies/review_parallel.yaml
// document. All scalar fields are pinned to single allowed values.
type ReviewParallelPolicy struct {
	ApplyOrder       string          `json:"apply_order"`
	Artifacts        ReviewArtifacts `json:"artifacts"`
	JoinBarrier      string          `json:"join_barrier"`
	MergeRequired    bool            `json:"merge_required"`
	Mode             string          `json:"mode"`
	Version          int             `json:"version"`
	WorkerOutputMode string          `json:"worker_output_mode"`
}

// WebEvidencePolicy is the validated policies/web_evidence.yaml
// document.
type WebEvidencePolicy struct {
	GateAction     string            `json:"gate_action_on_violation"`
	ReasonCodeMap  map[string]string `json:"reason_code_map"`
	RequiredFields []string          `json:"required_fields"`
	Strictness     string            `json:"strictness"`
	Version        int               `json:"version"`
}

// Policies bundles the three validated policy documents.
type Policies struct {
	Routing        *RoutingPolicy
	ReviewParallel *ReviewParallelPolicy
	WebEvidence    *WebEvidencePolicy
}

// Config is the canonical validated v2 configuration.
type Config struct {
	Root     string
	Skills   map[string]*Skill
	Servants map[string]*Servant
	Policies *Policies
}
