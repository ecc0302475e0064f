package configv2

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aquila-k/Multi-LLM-Agents-Orchestration/internal/schema"
)

// Load reads and validates the v2 configuration under configRoot. The
// directory layout is checked first: every config dir must exist and
// hold exactly the expected YAML files, nothing more.
func Load(sch *Schema, configRoot string) (*Config, error) {
	root, err := filepath.Abs(configRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config root: %w", err)
	}

	for _, dir := range sch.ConfigDirs {
		if err := checkExpectedFiles(sch, root, dir); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		Root:     root,
		Skills:   make(map[string]*Skill, len(sch.Phases)),
		Servants: make(map[string]*Servant, len(sch.Tools)),
		Policies: &Policies{},
	}

	for _, phase := range sch.Phases {
		path := filepath.Join(root, sch.SkillFile(phase))
		raw, err := schema.LoadMapping(path)
		if err != nil {
			return nil, err
		}
		skill, err := validateSkillFile(sch, raw, phase, path)
		if err != nil {
			return nil, err
		}
		cfg.Skills[phase] = skill
	}

	for _, tool := range sch.Tools {
		path := filepath.Join(root, sch.ServantFile(tool))
		raw, err := schema.LoadMapping(path)
		if err != nil {
			return nil, err
		}
		servant, err := validateServantFile(sch, raw, tool, path)
		if err != nil {
			return nil, err
		}
		cfg.Servants[tool] = servant
	}

	routingPath := filepath.Join(root, sch.PolicyFile("routing"))
	rawRouting, err := schema.LoadMapping(routingPath)
	if err != nil {
		return nil, err
	}
	cfg.Policies.Routing, err = validateRoutingPolicy(sch, rawRouting, routingPath)
	if err != nil {
		return nil, err
	}

	reviewPath := filepath.Join(root, sch.PolicyFile("review_parallel"))
	rawReview, err := schema.LoadMapping(reviewPath)
	if err != nil {
		return nil, err
	}
	cfg.Policies.ReviewParallel, err = validateReviewParallelPolicy(rawReview, reviewPath)
	if err != nil {
		return nil, err
	}

	evidencePath := filepath.Join(root, sch.PolicyFile("web_evidence"))
	rawEvidence, err := schema.LoadMapping(evidencePath)
	if err != nil {
		return nil, err
	}
	cfg.Policies.WebEvidence, err = validateWebEvidencePolicy(sch, rawEvidence, evidencePath)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// checkExpectedFiles compares the YAML files present in a config dir
// against the expected set. Non-YAML files and subdirectories are
// ignored.
func checkExpectedFiles(sch *Schema, root, dir string) error {
	dirPath := filepath.Join(root, dir)
	info, err := os.Stat(dirPath)
	if err != nil || !info.IsDir() {
		return schema.NewError(dirPath, "directory not found")
	}

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", dirPath, err)
	}
	found := make(map[string]bool, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		found[entry.Name()] = true
	}

	expected := make(map[string]bool, len(sch.ExpectedFiles[dir]))
	for _, name := range sch.ExpectedFiles[dir] {
		expected[name] = true
	}

	var missing []string
	for name := range expected {
		if !found[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return schema.Errorf(dirPath, "missing required files: %s", strings.Join(missing, ", "))
	}

	var extra []string
	for name := range found {
		if !expected[name] {
			extra = append(extra, name)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		return schema.Errorf(dirPath, "unknown config files: %s", strings.Join(extra, ", "))
	}
	return nil
}
