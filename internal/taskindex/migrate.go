package taskindex

import (
	"path/filepath"

	"github.com/aquila-k/Multi-LLM-Agents-Orchestration/internal/fileutil"
	"github.com/aquila-k/Multi-LLM-Agents-Orchestration/internal/schema"
)

// Migration statuses of a scanned task directory.
const (
	MigrateIndexed = "indexed"
	MigratePending = "pending"
	MigrateInvalid = "invalid"
	MigrateError   = "error"
)

// MigrateEntry is one scanned task directory and how it relates to the
// index. Detail carries the name or parse problem for invalid and
// error entries; Summary carries the task file summary for pending
// ones.
type MigrateEntry struct {
	Name    string
	Path    string
	Status  string
	Detail  string
	Summary string
}

// MigrateReport is the outcome of one migration sweep.
type MigrateReport struct {
	TasksDir   string
	Entries    []MigrateEntry
	ScanErrors []string
}

// Pending returns the entries that would be added by an apply.
func (r *MigrateReport) Pending() []MigrateEntry {
	pending := []MigrateEntry{}
	for _, entry := range r.Entries {
		if entry.Status == MigratePending {
			pending = append(pending, entry)
		}
	}
	return pending
}

// ScanTasks sweeps tasksDir for <task-name>/task.yaml files and
// classifies each against the index. Broken task files are reported,
// not fatal.
func ScanTasks(tasksDir string, ix *Index) (*MigrateReport, error) {
	root, err := filepath.Abs(tasksDir)
	if err != nil {
		return nil, err
	}

	result, err := fileutil.ScanDirectory(root, fileutil.ScanOptions{
		Pattern:    "^task$",
		Extensions: []string{"yaml"},
		Recursive:  true,
		MaxDepth:   2,
	})
	if err != nil {
		return nil, err
	}

	report := &MigrateReport{TasksDir: root, Entries: []MigrateEntry{}, ScanErrors: []string{}}
	for _, scanErr := range result.Errors {
		report.ScanErrors = append(report.ScanErrors, scanErr.Error())
	}

	for _, file := range result.Files {
		parent := filepath.Dir(file)
		if parent == root {
			// A task.yaml directly in the root names no task.
			continue
		}
		entry := MigrateEntry{Name: filepath.Base(parent), Path: file}
		if ix.Tasks[entry.Name] != nil {
			entry.Status = MigrateIndexed
		} else if err := ValidateName(entry.Name); err != nil {
			entry.Status = MigrateInvalid
			entry.Detail = err.Error()
		} else if summary, err := readTaskSummary(file); err != nil {
			entry.Status = MigrateError
			entry.Detail = err.Error()
		} else {
			entry.Status = MigratePending
			entry.Summary = summary
		}
		report.Entries = append(report.Entries, entry)
	}
	return report, nil
}

// Apply adds every pending entry to the index at path, under the index
// lock. It reports how many entries were added.
func (r *MigrateReport) Apply(indexPath string) (int, error) {
	applied := 0
	err := Update(indexPath, func(ix *Index) error {
		for _, entry := range r.Pending() {
			if ix.Tasks[entry.Name] != nil {
				continue
			}
			ix.Tasks[entry.Name] = &Entry{
				Requirements: []string{},
				Scope:        []string{},
				Summary:      entry.Summary,
			}
			applied++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return applied, nil
}

// readTaskSummary reads the optional summary field of a task file.
func readTaskSummary(path string) (string, error) {
	node, err := schema.LoadMapping(path)
	if err != nil {
		return "", err
	}
	raw, ok := node["summary"]
	if !ok || raw == nil {
		return "", nil
	}
	return schema.String(raw, path+".summary")
}
