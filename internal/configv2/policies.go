package configv2

import (
	"fmt"
	"strings"

	"github.com/aquila-k/Multi-LLM-Agents-Orchestration/internal/schema"
)

// validateRoutingPolicy checks policies/routing.yaml. The routing
// vocabularies are closed: stop actions, confidence values, and the
// mismatch handler each admit exactly the values the orchestrator
// implements.
func validateRoutingPolicy(sch *Schema, node map[string]any, path string) (*RoutingPolicy, error) {
	allowedKeys := []string{
		"version", "stop_policy", "confidence_policy",
		"hard_stop_reason_map", "reproducibility_policy", "route_decider_policy",
	}
	if err := schema.EnsureKeys(node, allowedKeys, path); err != nil {
		return nil, err
	}
	if node["version"] != 2 {
		return nil, schema.NewError(path+".version", "must be 2")
	}

	policy := &RoutingPolicy{}

	stopRaw, err := schema.Mapping(node["stop_policy"], path+".stop_policy")
	if err != nil {
		return nil, err
	}
	if err := schema.EnsureKeys(stopRaw, []string{"conditions", "on_stop"}, path+".stop_policy"); err != nil {
		return nil, err
	}
	conditionsRaw, ok := stopRaw["conditions"].([]any)
	if !ok {
		return nil, schema.NewError(path+".stop_policy.conditions", "must be a list")
	}
	if len(conditionsRaw) == 0 {
		return nil, schema.NewError(path+".stop_policy.conditions", "must not be empty")
	}
	for i, raw := range conditionsRaw {
		condPath := fmt.Sprintf("%s.stop_policy.conditions[%d]", path, i)
		cond, err := validateStopCondition(sch, raw, condPath)
		if err != nil {
			return nil, err
		}
		policy.StopPolicy.Conditions = append(policy.StopPolicy.Conditions, *cond)
	}
	onStop, err := schema.NonEmptyString(stopRaw["on_stop"], path+".stop_policy.on_stop")
	if err != nil {
		return nil, err
	}
	if !schema.Vocabulary(onStop, sch.StopHandlers) {
		return nil, schema.Errorf(path+".stop_policy.on_stop", "must be one of: %s", joinSorted(sch.StopHandlers))
	}
	policy.StopPolicy.OnStop = onStop

	confidenceRaw, err := schema.Mapping(node["confidence_policy"], path+".confidence_policy")
	if err != nil {
		return nil, err
	}
	if err := schema.EnsureKeys(confidenceRaw, []string{"values", "default"}, path+".confidence_policy"); err != nil {
		return nil, err
	}
	values, err := stringList(confidenceRaw["values"], path+".confidence_policy.values")
	if err != nil {
		return nil, err
	}
	for _, value := range values {
		if !schema.Vocabulary(value, sch.ConfidenceValues) {
			return nil, schema.Errorf(path+".confidence_policy.values", "must be subset of: %s", joinSorted(sch.ConfidenceValues))
		}
	}
	defaultConfidence, err := schema.NonEmptyString(confidenceRaw["default"], path+".confidence_policy.default")
	if err != nil {
		return nil, err
	}
	if !schema.Vocabulary(defaultConfidence, values) {
		return nil, schema.NewError(path+".confidence_policy.default", "must be included in confidence_policy.values")
	}
	policy.Confidence = ConfidencePolicy{Default: defaultConfidence, Values: values}

	reasonsRaw, err := schema.Mapping(node["hard_stop_reason_map"], path+".hard_stop_reason_map")
	if err != nil {
		return nil, err
	}
	if len(reasonsRaw) == 0 {
		return nil, schema.NewError(path+".hard_stop_reason_map", "must not be empty")
	}
	policy.HardStopReasons = make(map[string]string, len(reasonsRaw))
	for _, code := range schema.SortedKeys(reasonsRaw) {
		if strings.TrimSpace(code) == "" {
			return nil, schema.NewError(path+".hard_stop_reason_map.<key>", "must be a non-empty string")
		}
		message, err := schema.NonEmptyString(reasonsRaw[code], path+".hard_stop_reason_map."+code)
		if err != nil {
			return nil, err
		}
		policy.HardStopReasons[code] = message
	}

	reproRaw, err := schema.Mapping(node["reproducibility_policy"], path+".reproducibility_policy")
	if err != nil {
		return nil, err
	}
	if err := schema.EnsureKeys(reproRaw, []string{"deterministic_required", "on_mismatch"}, path+".reproducibility_policy"); err != nil {
		return nil, err
	}
	deterministic, err := schema.Bool(reproRaw["deterministic_required"], path+".reproducibility_policy.deterministic_required")
	if err != nil {
		return nil, err
	}
	onMismatch, err := schema.NonEmptyString(reproRaw["on_mismatch"], path+".reproducibility_policy.on_mismatch")
	if err != nil {
		return nil, err
	}
	if !schema.Vocabulary(onMismatch, sch.MismatchHandlers) {
		return nil, schema.Errorf(path+".reproducibility_policy.on_mismatch", "must be one of: %s", joinSorted(sch.MismatchHandlers))
	}
	policy.Reproducibility = ReproducibilityPolicy{
		DeterministicRequired: deterministic,
		OnMismatch:            onMismatch,
	}

	deciderRaw, err := schema.Mapping(node["route_decider_policy"], path+".route_decider_policy")
	if err != nil {
		return nil, err
	}
	if err := schema.EnsureKeys(deciderRaw, []string{"phase_prompt_paths", "schema_version"}, path+".route_decider_policy"); err != nil {
		return nil, err
	}
	promptsRaw, err := schema.Mapping(deciderRaw["phase_prompt_paths"], path+".route_decider_policy.phase_prompt_paths")
	if err != nil {
		return nil, err
	}
	if err := schema.EnsureKeys(promptsRaw, sch.Phases, path+".route_decider_policy.phase_prompt_paths"); err != nil {
		return nil, err
	}
	prompts := make(map[string]string, len(sch.Phases))
	for _, phase := range sch.Phases {
		prompt, err := schema.NonEmptyString(promptsRaw[phase], path+".route_decider_policy.phase_prompt_paths."+phase)
		if err != nil {
			return nil, err
		}
		prompts[phase] = prompt
	}
	if deciderRaw["schema_version"] != 2 {
		return nil, schema.NewError(path+".route_decider_policy.schema_version", "must be 2")
	}
	policy.RouteDecider = RouteDeciderPolicy{PhasePromptPaths: prompts, SchemaVersion: 2}

	return policy, nil
}

func validateStopCondition(sch *Schema, raw any, path string) (*StopCondition, error) {
	node, err := schema.Mapping(raw, path)
	if err != nil {
		return nil, err
	}
	allowedKeys := []string{
		"impact_surface", "confidence", "reason_codes_contain",
		"strict_evidence_violation", "action",
	}
	if err := schema.EnsureKeys(node, allowedKeys, path); err != nil {
		return nil, err
	}

	if _, ok := node["action"]; !ok {
		return nil, schema.NewError(path, "missing required key: action")
	}
	action, err := schema.NonEmptyString(node["action"], path+".action")
	if err != nil {
		return nil, err
	}
	if !schema.Vocabulary(action, sch.StopActions) {
		return nil, schema.Errorf(path+".action", "must be one of: %s", joinSorted(sch.StopActions))
	}
	cond := &StopCondition{Action: action}

	if v, ok := node["impact_surface"]; ok {
		impact, err := schema.NonEmptyString(v, path+".impact_surface")
		if err != nil {
			return nil, err
		}
		if !schema.Vocabulary(impact, sch.ImpactSurfaces) {
			return nil, schema.Errorf(path+".impact_surface", "must be one of: %s", joinSorted(sch.ImpactSurfaces))
		}
		cond.ImpactSurface = impact
	}
	if v, ok := node["confidence"]; ok {
		confidence, err := schema.NonEmptyString(v, path+".confidence")
		if err != nil {
			return nil, err
		}
		if !schema.Vocabulary(confidence, sch.ConfidenceValues) {
			return nil, schema.Errorf(path+".confidence", "must be one of: %s", joinSorted(sch.ConfidenceValues))
		}
		cond.Confidence = confidence
	}
	if v, ok := node["reason_codes_contain"]; ok {
		contain, err := schema.NonEmptyString(v, path+".reason_codes_contain")
		if err != nil {
			return nil, err
		}
		cond.ReasonCodesContain = contain
	}
	if v, ok := node["strict_evidence_violation"]; ok {
		strict, err := schema.Bool(v, path+".strict_evidence_violation")
		if err != nil {
			return nil, err
		}
		cond.StrictEvidenceViolation = &strict
	}
	return cond, nil
}

// validateReviewParallelPolicy checks policies/review_parallel.yaml.
// Every scalar field is pinned: the orchestrator implements exactly one
// parallel review protocol and the policy file must declare it.
func validateReviewParallelPolicy(node map[string]any, path string) (*ReviewParallelPolicy, error) {
	allowedKeys := []string{
		"version", "mode", "join_barrier", "apply_order",
		"worker_output_mode", "merge_required", "artifacts",
	}
	if err := schema.EnsureKeys(node, allowedKeys, path); err != nil {
		return nil, err
	}
	if node["version"] != 2 {
		return nil, schema.NewError(path+".version", "must be 2")
	}

	mode, err := schema.NonEmptyString(node["mode"], path+".mode")
	if err != nil {
		return nil, err
	}
	if mode != ReviewParallelMode {
		return nil, schema.Errorf(path+".mode", "must be '%s'", ReviewParallelMode)
	}
	joinBarrier, err := schema.NonEmptyString(node["join_barrier"], path+".join_barrier")
	if err != nil {
		return nil, err
	}
	if joinBarrier != ReviewParallelJoinBarrier {
		return nil, schema.Errorf(path+".join_barrier", "must be '%s'", ReviewParallelJoinBarrier)
	}
	applyOrder, err := schema.NonEmptyString(node["apply_order"], path+".apply_order")
	if err != nil {
		return nil, err
	}
	if applyOrder != ReviewParallelApplyOrder {
		return nil, schema.Errorf(path+".apply_order", "must be '%s'", ReviewParallelApplyOrder)
	}
	workerMode, err := schema.NonEmptyString(node["worker_output_mode"], path+".worker_output_mode")
	if err != nil {
		return nil, err
	}
	if workerMode != ReviewParallelWorkerMode {
		return nil, schema.Errorf(path+".worker_output_mode", "must be '%s'", ReviewParallelWorkerMode)
	}
	mergeRequired, err := schema.Bool(node["merge_required"], path+".merge_required")
	if err != nil {
		return nil, err
	}

	artifactsRaw, err := schema.Mapping(node["artifacts"], path+".artifacts")
	if err != nil {
		return nil, err
	}
	if err := schema.EnsureKeys(artifactsRaw, []string{"findings_dir", "merged", "queue"}, path+".artifacts"); err != nil {
		return nil, err
	}
	artifacts := ReviewArtifacts{}
	for _, field := range []struct {
		key string
		dst *string
	}{
		{"findings_dir", &artifacts.FindingsDir},
		{"merged", &artifacts.Merged},
		{"queue", &artifacts.Queue},
	} {
		value, err := schema.NonEmptyString(artifactsRaw[field.key], path+".artifacts."+field.key)
		if err != nil {
			return nil, err
		}
		*field.dst = value
	}

	return &ReviewParallelPolicy{
		ApplyOrder:       applyOrder,
		Artifacts:        artifacts,
		JoinBarrier:      joinBarrier,
		MergeRequired:    mergeRequired,
		Mode:             mode,
		Version:          2,
		WorkerOutputMode: workerMode,
	}, nil
}

// validateWebEvidencePolicy checks policies/web_evidence.yaml. The
// required field set must match the evidence record layout exactly;
// reason_code_map may cover any subset of the known reason codes.
func validateWebEvidencePolicy(sch *Schema, node map[string]any, path string) (*WebEvidencePolicy, error) {
	allowedKeys := []string{
		"version", "strictness", "required_fields",
		"reason_code_map", "gate_action_on_violation",
	}
	if err := schema.EnsureKeys(node, allowedKeys, path); err != nil {
		return nil, err
	}
	if node["version"] != 2 {
		return nil, schema.NewError(path+".version", "must be 2")
	}

	strictness, err := schema.NonEmptyString(node["strictness"], path+".strictness")
	if err != nil {
		return nil, err
	}
	if !schema.Vocabulary(strictness, sch.EvidenceStrictness) {
		return nil, schema.Errorf(path+".strictness", "must be one of: %s", joinSorted(sch.EvidenceStrictness))
	}

	requiredFields, err := stringList(node["required_fields"], path+".required_fields")
	if err != nil {
		return nil, err
	}
	fieldSet := make(map[string]bool, len(requiredFields))
	for _, field := range requiredFields {
		fieldSet[field] = true
	}
	exact := len(fieldSet) == len(sch.EvidenceFields)
	for _, field := range sch.EvidenceFields {
		if !fieldSet[field] {
			exact = false
		}
	}
	if !exact {
		return nil, schema.NewError(path+".required_fields", "must exactly match required evidence field set")
	}

	reasonsRaw, err := schema.Mapping(node["reason_code_map"], path+".reason_code_map")
	if err != nil {
		return nil, err
	}
	if err := schema.EnsureKeys(reasonsRaw, sch.EvidenceReasonCodes, path+".reason_code_map"); err != nil {
		return nil, err
	}
	reasonCodes := make(map[string]string, len(reasonsRaw))
	for _, code := range schema.SortedKeys(reasonsRaw) {
		message, err := schema.NonEmptyString(reasonsRaw[code], path+".reason_code_map."+code)
		if err != nil {
			return nil, err
		}
		reasonCodes[code] = message
	}

	gateAction, err := schema.NonEmptyString(node["gate_action_on_violation"], path+".gate_action_on_violation")
	if err != nil {
		return nil, err
	}
	if !schema.Vocabulary(gateAction, sch.EvidenceGateActions) {
		return nil, schema.Errorf(path+".gate_action_on_violation", "must be one of: %s", joinSorted(sch.EvidenceGateActions))
	}

	return &WebEvidencePolicy{
		GateAction:     gateAction,
		ReasonCodeMap:  reasonCodes,
		RequiredFields: requiredFields,
		Strictness:     strictness,
		Version:        2,
	}, nil
}
