package configsync

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/reductstore/ros-reductstore-demo/internal/logging"
)

// PassResult summarizes one replacement pair applied across the tree.
type PassResult struct {
	Pair Pair

	// Occurrences is the total number of old -> new substitutions
	Occurrences int

	// FilesChanged is the number of files rewritten by this pass
	FilesChanged int
}

// Result summarizes a full synchronization run.
type Result struct {
	// Dir is the synchronized directory
	Dir string

	// FilesScanned is the number of regular files visited
	FilesScanned int

	// FilesChanged is the number of files rewritten by any pass
	FilesChanged int

	// Passes holds per-pair totals, in plan order
	Passes []PassResult

	// Warnings carried over from the plan
	Warnings []string
}

// Occurrences returns the total number of substitutions across all passes.
func (r *Result) Occurrences() int {
	total := 0
	for _, p := range r.Passes {
		total += p.Occurrences
	}
	return total
}

// Synchronize applies the plan to every regular file under dir, rewriting
// files in place. Symlinks and other non-regular files are skipped; nothing
// outside dir is ever touched.
//
// Each file is read once, all pairs are applied in plan order, and the file
// is written back only when its content actually changed, preserving the
// original file mode. The first unreadable or unwritable file aborts the
// run; files already rewritten stay rewritten (convergence over atomicity,
// matching the original tooling).
func Synchronize(dir string, plan *Plan) (*Result, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("config directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("config directory: %s is not a directory", dir)
	}

	result := &Result{
		Dir:      dir,
		Warnings: plan.Warnings,
		Passes:   make([]PassResult, len(plan.Pairs)),
	}
	for i, pair := range plan.Pairs {
		result.Passes[i].Pair = pair
	}

	if plan.Empty() {
		return result, nil
	}

	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		result.FilesScanned++

		data, err := os.ReadFile(path)
		if err != nil {
			return &PathError{Op: "read", Path: path, Err: err}
		}

		content := string(data)
		changed := false
		for i, pair := range plan.Pairs {
			count := strings.Count(content, pair.Old)
			if count == 0 {
				continue
			}
			content = strings.ReplaceAll(content, pair.Old, pair.New)
			result.Passes[i].Occurrences += count
			result.Passes[i].FilesChanged++
			changed = true
		}

		if !changed {
			return nil
		}

		mode := fs.FileMode(0644)
		if fi, err := d.Info(); err == nil {
			mode = fi.Mode().Perm()
		}
		if err := os.WriteFile(path, []byte(content), mode); err != nil {
			return &PathError{Op: "write", Path: path, Err: err}
		}

		result.FilesChanged++
		logging.Debug("Rewrote config file",
			zap.String("path", path),
		)
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	for _, pass := range result.Passes {
		logging.LogReplacement(dir, pass.Pair.Old, pass.Occurrences, pass.FilesChanged)
	}

	return result, nil
}
