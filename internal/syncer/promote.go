package syncer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/sergi/go-diff/diffmatchpatch"
	"go.uber.org/zap"
)

// promote copies validated candidate files from the scratch tree into the
// real tree. Only the files sync itself produced are written; everything
// else in the tree is left alone. Runs only after validation passed, so a
// partially promoted tree can only come from filesystem failure, which is
// surfaced as an error with the already-written files named.
func promote(root string, candidates map[string]string, logger *zap.Logger) ([]string, error) {
	paths := make([]string, 0, len(candidates))
	for p := range candidates {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	dmp := diffmatchpatch.New()
	written := make([]string, 0, len(paths))
	for _, rel := range paths {
		abs := filepath.Join(root, filepath.FromSlash(rel))

		var before string
		if old, err := os.ReadFile(abs); err == nil {
			before = string(old)
		}

		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			return written, fmt.Errorf("failed to create directory for %s (already wrote %v): %w", rel, written, err)
		}
		if err := os.WriteFile(abs, []byte(candidates[rel]), 0o644); err != nil {
			return written, fmt.Errorf("failed to write %s (already wrote %v): %w", rel, written, err)
		}
		written = append(written, rel)

		diffs := dmp.DiffMain(before, candidates[rel], false)
		ins, del := diffStats(diffs)
		logger.Info("promoted file",
			zap.String("path", rel),
			zap.Int("bytesAdded", ins),
			zap.Int("bytesRemoved", del))
		if logger.Core().Enabled(zap.DebugLevel) {
			patches := dmp.PatchMake(before, diffs)
			logger.Debug("promotion diff",
				zap.String("path", rel),
				zap.String("patch", dmp.PatchToText(patches)))
		}
	}
	return written, nil
}

func diffStats(diffs []diffmatchpatch.Diff) (inserted, deleted int) {
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			inserted += len(d.Text)
		case diffmatchpatch.DiffDelete:
			deleted += len(d.Text)
		}
	}
	return inserted, deleted
}
