package config

import "strings"

// Purpose is the coarse classification of a stage role used to look up
// per-purpose model and effort tables.
type Purpose string

// The closed purpose set. Purpose-keyed tables accept exactly these.
const (
	PurposeImpl    Purpose = "impl"
	PurposeReview  Purpose = "review"
	PurposeVerify  Purpose = "verify"
	PurposePlan    Purpose = "plan"
	PurposeOneShot Purpose = "one_shot"
)

// StagePurpose classifies a dispatch stage by its role, the part of the
// stage name after the servant prefix. oneShotImpl marks resolution
// running inside the impl pipeline with impl_mode=one_shot, the single
// context that reclassifies planning roles as one_shot.
func StagePurpose(stage, pipeline string, oneShotImpl bool) Purpose {
	role := stage
	if _, rest, found := strings.Cut(stage, "_"); found {
		role = rest
	}

	switch {
	case role == "impl" || role == "test_impl":
		return PurposeImpl
	case role == "verify" || role == "static_verify":
		return PurposeVerify
	case strings.Contains(role, "review"):
		return PurposeReview
	case role == "runbook":
		return PurposeOneShot
	case role == "brief" || role == "test_design":
		if oneShotImpl {
			return PurposeOneShot
		}
		return PurposePlan
	}

	if pipeline == PipelineImpl {
		return PurposePlan
	}
	return PurposeReview
}

// PlanStagePurpose classifies a plan-pipeline stage: cross-review stages
// are review work, everything else is planning.
func PlanStagePurpose(stage string) Purpose {
	if strings.Contains(stage, "review") {
		return PurposeReview
	}
	return PurposePlan
}
