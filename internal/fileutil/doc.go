// Package fileutil provides the shared file-system helpers: a filtered
// directory scanner used by the task migration sweep, and an atomic
// writer every generated artifact (config snapshots, the task index)
// goes through.
//
// ScanDirectory walks a root with optional extension, name-pattern,
// depth, and directory-exclusion filters and returns absolute paths in
// sorted order. Unreadable entries are collected as non-fatal errors so
// one bad subtree does not abort a sweep.
//
// AtomicWrite stages content in a same-directory temp file and renames
// it over the destination, keeping partially written artifacts out of
// reach of concurrent readers.
package fileutil
