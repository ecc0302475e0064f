package fileutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// ScanOptions filters a directory scan.
type ScanOptions struct {
	// Pattern is a regex matched against filenames with the extension
	// stripped. Empty matches everything.
	Pattern string
	// Extensions restricts matches to these extensions (leading dot
	// optional, case-insensitive). Empty admits every extension.
	Extensions []string
	// Recursive walks subdirectories; otherwise only the root is read.
	Recursive bool
	// ExcludeDirs names directories skipped during recursion. Hidden
	// directories are always skipped.
	ExcludeDirs []string
	// MaxDepth caps recursion depth; 0 means unlimited.
	MaxDepth int
}

// ScanResult is the outcome of one scan.
type ScanResult struct {
	// Files holds the absolute paths of every match, sorted.
	Files []string
	// Errors holds the non-fatal errors hit along the way.
	Errors []error
}

// ScanDirectory walks dir and collects the files admitted by opts.
// Unreadable entries are recorded in the result instead of aborting the
// walk; only a missing or invalid root fails outright.
func ScanDirectory(dir string, opts ScanOptions) (*ScanResult, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to access directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dir)
	}

	var pattern *regexp.Regexp
	if opts.Pattern != "" {
		pattern, err = regexp.Compile(opts.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern: %w", err)
		}
	}

	extensions := make(map[string]bool, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extensions[strings.ToLower(ext)] = true
	}
	excluded := make(map[string]bool, len(opts.ExcludeDirs))
	for _, name := range opts.ExcludeDirs {
		excluded[name] = true
	}

	result := &ScanResult{Files: []string{}, Errors: []error{}}
	err = filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("error accessing %s: %w", path, err))
			return nil
		}
		if path == dir {
			return nil
		}

		if entry.IsDir() {
			if excluded[entry.Name()] || strings.HasPrefix(entry.Name(), ".") {
				return filepath.SkipDir
			}
			if !opts.Recursive {
				return filepath.SkipDir
			}
			if opts.MaxDepth > 0 {
				rel, _ := filepath.Rel(dir, path)
				if strings.Count(rel, string(filepath.Separator))+1 >= opts.MaxDepth {
					return filepath.SkipDir
				}
			}
			return nil
		}

		name := entry.Name()
		if len(extensions) > 0 && !extensions[strings.ToLower(filepath.Ext(name))] {
			return nil
		}
		if pattern != nil && !pattern.MatchString(strings.TrimSuffix(name, filepath.Ext(name))) {
			return nil
		}

		abs, err := filepath.Abs(path)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("failed to resolve path %s: %w", path, err))
			return nil
		}
		result.Files = append(result.Files, abs)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	sort.Strings(result.Files)
	return result, nil
}
