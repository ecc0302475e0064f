// Package promptaudit verifies that every configured pipeline profile
// has its prompt template files on disk. Templates live per profile
// under <prompts-root>/profiles/<pipeline>/<profile>/<tool>/<role>.md,
// with shared defaults directly under the prompts root.
package promptaudit

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aquila-k/Multi-LLM-Agents-Orchestration/internal/config"
	"github.com/aquila-k/Multi-LLM-Agents-Orchestration/internal/fileutil"
)

// Audit statuses of one required template.
const (
	StatusPresent  = "present"
	StatusFallback = "fallback"
	StatusMissing  = "missing"
)

// SharedTool marks plan templates shared by both enrich and
// cross-review stage pairs; their defaults live under plan/ instead of
// a tool directory.
const SharedTool = "shared"

// The plan pipeline's template contract is fixed: its six runtime
// stages share these four files regardless of profile.
var planPrompts = []PromptRef{
	{Tool: "copilot", Role: "draft"},
	{Tool: SharedTool, Role: "enrich"},
	{Tool: SharedTool, Role: "cross_review"},
	{Tool: "copilot", Role: "consolidate"},
}

// PromptRef identifies one template file as <tool>/<role>.md.
type PromptRef struct {
	Tool string
	Role string
}

// Template is the audit outcome of one required template. Path is
// where the template was found, or where it was expected for missing
// ones; Title is the first markdown heading of a found template.
type Template struct {
	Pipeline string
	Profile  string
	Tool     string
	Role     string
	Path     string
	Status   string
	Title    string
}

// Report is the outcome of one audit run. UnknownProfiles lists
// template directories matching no configured profile; ExtraTemplates
// lists profile templates no stage requires.
type Report struct {
	PromptsRoot     string
	Templates       []Template
	UnknownProfiles []string
	ExtraTemplates  []string
	MissingCount    int
}

// Options select what an audit run covers.
type Options struct {
	PromptsRoot string
	// Pipeline restricts the audit to one pipeline when non-empty.
	Pipeline string
	// AllowDefaultFallback accepts a shared default template when the
	// profile-specific one is absent.
	AllowDefaultFallback bool
}

// Run audits the prompt templates required by the validated
// configuration's profiles.
func Run(sch *config.Schema, cfg *config.Config, opts Options) *Report {
	promptsRoot := opts.PromptsRoot
	if abs, err := filepath.Abs(promptsRoot); err == nil {
		promptsRoot = abs
	}

	report := &Report{
		PromptsRoot:     promptsRoot,
		Templates:       []Template{},
		UnknownProfiles: []string{},
		ExtraTemplates:  []string{},
	}

	for _, pipelineName := range sch.PipelineNames {
		if opts.Pipeline != "" && opts.Pipeline != pipelineName {
			continue
		}
		pipeline := cfg.Pipelines[pipelineName]
		pipelineDir := filepath.Join(promptsRoot, "profiles", pipelineName)
		report.UnknownProfiles = append(report.UnknownProfiles, unknownProfiles(pipelineDir, pipelineName, pipeline)...)

		profileNames := make([]string, 0, len(pipeline.Profiles))
		for name := range pipeline.Profiles {
			profileNames = append(profileNames, name)
		}
		sort.Strings(profileNames)

		for _, profileName := range profileNames {
			profileDir := filepath.Join(pipelineDir, profileName)
			required := requiredPrompts(pipelineName, pipeline.Profiles[profileName])
			for _, ref := range required {
				tpl := auditTemplate(promptsRoot, profileDir, ref, opts.AllowDefaultFallback)
				tpl.Pipeline = pipelineName
				tpl.Profile = profileName
				if tpl.Status == StatusMissing {
					report.MissingCount++
				}
				report.Templates = append(report.Templates, tpl)
			}
			report.ExtraTemplates = append(report.ExtraTemplates, extraTemplates(profileDir, pipelineName, profileName, required)...)
		}
	}
	return report
}

// requiredPrompts lists the templates a profile needs, sorted. The
// stage-based pipelines derive them from their stage names; the plan
// pipeline's set is fixed.
func requiredPrompts(pipelineName string, profile *config.Profile) []PromptRef {
	if pipelineName == config.PipelinePlan {
		refs := append([]PromptRef(nil), planPrompts...)
		sortRefs(refs)
		return refs
	}
	seen := map[PromptRef]struct{}{}
	refs := []PromptRef{}
	for _, stage := range profile.Stages {
		tool, role, _ := strings.Cut(stage, "_")
		ref := PromptRef{Tool: tool, Role: role}
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		refs = append(refs, ref)
	}
	sortRefs(refs)
	return refs
}

func sortRefs(refs []PromptRef) {
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Tool != refs[j].Tool {
			return refs[i].Tool < refs[j].Tool
		}
		return refs[i].Role < refs[j].Role
	})
}

func auditTemplate(promptsRoot, profileDir string, ref PromptRef, allowFallback bool) Template {
	tpl := Template{Tool: ref.Tool, Role: ref.Role}

	profilePath := filepath.Join(profileDir, ref.Tool, ref.Role+".md")
	if isFile(profilePath) {
		tpl.Status = StatusPresent
		tpl.Path = profilePath
		tpl.Title = fileTitle(profilePath)
		return tpl
	}

	defaultPath := DefaultPromptPath(promptsRoot, ref)
	if allowFallback && isFile(defaultPath) {
		tpl.Status = StatusFallback
		tpl.Path = defaultPath
		tpl.Title = fileTitle(defaultPath)
		return tpl
	}

	tpl.Status = StatusMissing
	tpl.Path = profilePath
	return tpl
}

// DefaultPromptPath is the shared fallback location of a template.
func DefaultPromptPath(promptsRoot string, ref PromptRef) string {
	if ref.Tool == SharedTool {
		return filepath.Join(promptsRoot, "plan", ref.Role+".md")
	}
	return filepath.Join(promptsRoot, ref.Tool, ref.Role+".md")
}

// extraTemplates lists profile templates no stage requires, as
// preformatted report lines.
func extraTemplates(profileDir, pipelineName, profileName string, required []PromptRef) []string {
	result, err := fileutil.ScanDirectory(profileDir, fileutil.ScanOptions{
		Extensions: []string{"md"},
		Recursive:  true,
		MaxDepth:   2,
	})
	if err != nil {
		return nil
	}

	requiredSet := map[PromptRef]struct{}{}
	for _, ref := range required {
		requiredSet[ref] = struct{}{}
	}

	extras := []string{}
	for _, file := range result.Files {
		toolDir := filepath.Dir(file)
		// Only <tool>/<role>.md two levels down counts as a template.
		if filepath.Dir(toolDir) != profileDir {
			continue
		}
		ref := PromptRef{
			Tool: filepath.Base(toolDir),
			Role: strings.TrimSuffix(filepath.Base(file), ".md"),
		}
		if _, ok := requiredSet[ref]; ok {
			continue
		}
		extras = append(extras, pipelineName+"/"+profileName+": unused "+ref.Tool+"/"+ref.Role+".md")
	}
	return extras
}

// unknownProfiles lists directories under the pipeline's template root
// that match no configured profile.
func unknownProfiles(pipelineDir, pipelineName string, pipeline *config.Pipeline) []string {
	entries, err := os.ReadDir(pipelineDir)
	if err != nil {
		return nil
	}
	unknown := []string{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, ok := pipeline.Profiles[entry.Name()]; !ok {
			unknown = append(unknown, pipelineName+"/"+entry.Name())
		}
	}
	return unknown
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func fileTitle(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return FirstHeading(data)
}
