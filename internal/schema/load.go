package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadMapping reads a YAML file and requires its top level to be a
// mapping with string keys. A missing file, an empty document, and a
// non-mapping top level are each reported as a validation error whose
// path is the file path itself.
func LoadMapping(path string) (map[string]any, error) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil, NewError(path, "file not found")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("YAML parse failed: %w", err)
	}
	if doc == nil {
		return nil, NewError(path, "file is empty")
	}

	m, ok := doc.(map[string]any)
	if !ok {
		return nil, NewError(path, "top-level must be a mapping")
	}
	return m, nil
}
