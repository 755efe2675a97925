// Package renamer builds and applies rename plans for classified screenshots.
package renamer

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kno2gether/screenshot-organizer/internal/scanner"
)

// timestampLayout matches the original naming scheme (YYYYMMDD_HHMMSS).
const timestampLayout = "20060102_150405"

// Plan is a proposed rename. NewPath is guaranteed free of collisions at
// planning time.
type Plan struct {
	OldPath string
	NewPath string
}

// RenameError wraps a filesystem failure while applying a plan. It is
// reported per file and never aborts the batch.
type RenameError struct {
	Path string
	Err  error
}

func (e *RenameError) Error() string {
	return fmt.Sprintf("failed to rename '%s': %v", e.Path, e.Err)
}

func (e *RenameError) Unwrap() error { return e.Err }

// NewPlan derives the new path for a screenshot: {category}_{timestamp}{ext}
// in the same directory. The timestamp comes from the file's modification
// time, or the current time when that is unavailable. If the path is taken, a
// numeric suffix is appended until a free one is found.
func NewPlan(s scanner.Screenshot, category string) Plan {
	ts := s.ModTime
	if ts.IsZero() {
		ts = time.Now()
	}

	dir := filepath.Dir(s.Path)
	base := fmt.Sprintf("%s_%s", category, ts.Format(timestampLayout))

	newPath := filepath.Join(dir, base+s.Ext)
	for n := 1; pathExists(newPath); n++ {
		newPath = filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, n, s.Ext))
	}

	return Plan{OldPath: s.Path, NewPath: newPath}
}

// Apply renames the file in place using the filesystem's rename primitive.
func Apply(p Plan) error {
	if p.OldPath == p.NewPath {
		return nil
	}
	if err := os.Rename(p.OldPath, p.NewPath); err != nil {
		return &RenameError{Path: p.OldPath, Err: err}
	}
	return nil
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
