// Package taskindex maintains the shared task discovery index: a
// single JSON document mapping canonical task names to their search
// metadata. Lookups are token-overlap text matches; writers serialize
// on a file lock so concurrent enrich and migrate runs cannot clobber
// each other.
package taskindex

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/aquila-k/Multi-LLM-Agents-Orchestration/internal/filelock"
	"github.com/aquila-k/Multi-LLM-Agents-Orchestration/internal/fileutil"
)

// DefaultFile is the index file name used when the caller does not
// point at one explicitly.
const DefaultFile = "task-index.json"

const indexVersion = 1

// Entry is the searchable metadata of one task.
type Entry struct {
	Requirements []string `json:"requirements"`
	Scope        []string `json:"scope"`
	Summary      string   `json:"summary"`
}

// Index is the on-disk task index document.
type Index struct {
	Tasks   map[string]*Entry `json:"tasks"`
	Version int               `json:"version"`
}

// New returns an empty index at the current format version.
func New() *Index {
	return &Index{Tasks: map[string]*Entry{}, Version: indexVersion}
}

// Load reads and validates an index file. Collections are normalized
// to be non-nil so entries always marshal as [] and {}.
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read task index %s: %w", path, err)
	}

	var ix Index
	if err := json.Unmarshal(data, &ix); err != nil {
		return nil, fmt.Errorf("failed to parse task index %s: %w", path, err)
	}
	if ix.Version != indexVersion {
		return nil, fmt.Errorf("task index %s: version must be %d", path, indexVersion)
	}
	if ix.Tasks == nil {
		ix.Tasks = map[string]*Entry{}
	}

	names := make([]string, 0, len(ix.Tasks))
	for name := range ix.Tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		entry := ix.Tasks[name]
		if entry == nil {
			return nil, fmt.Errorf("task index %s: task %q must be an object", path, name)
		}
		if entry.Requirements == nil {
			entry.Requirements = []string{}
		}
		if entry.Scope == nil {
			entry.Scope = []string{}
		}
	}
	return &ix, nil
}

// LoadOrEmpty reads an index file, treating a missing file as an empty
// index.
func LoadOrEmpty(path string) (*Index, error) {
	ix, err := Load(path)
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return New(), nil
	}
	return ix, err
}

// Marshal renders the index as its on-disk JSON document.
func (ix *Index) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(ix, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode task index: %w", err)
	}
	return append(data, '\n'), nil
}

// Update applies fn to the index at path and writes the result back,
// holding the index lock across the whole read-modify-write.
func Update(path string, fn func(*Index) error) error {
	lock := filelock.NewFileLock(path + ".lock")
	if err := lock.Lock(); err != nil {
		return err
	}
	defer lock.Unlock()

	ix, err := LoadOrEmpty(path)
	if err != nil {
		return err
	}
	if err := fn(ix); err != nil {
		return err
	}
	data, err := ix.Marshal()
	if err != nil {
		return err
	}
	return fileutil.AtomicWrite(path, data)
}
