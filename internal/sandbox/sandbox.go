// Package sandbox materializes candidate change sets in an isolated scratch
// tree, re-derives their definition by evaluating the tree in an interpreter,
// and validates the round trip against the remote definition. Nothing is ever
// promoted to the real project directory unless validation passes here.
package sandbox

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ScratchParent is the directory under the project workdir that holds
// scratch trees. It is excluded from scanning, copying, and evaluation.
const ScratchParent = ".inkeep"

// skipDirs mirrors the locator's exclusions so a scratch copy never pulls in
// build output or another attempt's scratch tree.
var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
}

// NewScratchDir returns a fresh, unique scratch path for one validation
// attempt. The random suffix keeps concurrent syncs from colliding at the
// scratch layer.
func NewScratchDir(workdir string) string {
	return filepath.Join(workdir, ScratchParent, "scratch-"+uuid.NewString())
}

// Materialize builds the candidate tree: a byte-for-byte copy of every
// existing project file (so relative references resolve exactly as they will
// in the real tree) overlaid with the generated and merged candidate files.
// candidates maps root-relative paths to full file content.
func Materialize(realRoot, scratchDir string, candidates map[string]string) error {
	if err := os.MkdirAll(scratchDir, 0755); err != nil {
		return fmt.Errorf("failed to create scratch dir: %w", err)
	}

	err := filepath.WalkDir(realRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path == realRoot {
				return nil
			}
			if strings.HasPrefix(name, ".") || skipDirs[name] {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(realRoot, path)
		if err != nil {
			return err
		}
		return copyFile(path, filepath.Join(scratchDir, rel))
	})
	if err != nil {
		return fmt.Errorf("failed to copy project tree: %w", err)
	}

	for rel, content := range candidates {
		dst := filepath.Join(scratchDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return fmt.Errorf("failed to create candidate dir for %s: %w", rel, err)
		}
		if err := os.WriteFile(dst, []byte(content), 0644); err != nil {
			return fmt.Errorf("failed to write candidate %s: %w", rel, err)
		}
	}
	return nil
}

// Cleanup removes a scratch tree. It is called on success and on every
// failure path; a missing tree is not an error.
func Cleanup(scratchDir string) error {
	if scratchDir == "" {
		return nil
	}
	if err := os.RemoveAll(scratchDir); err != nil {
		return fmt.Errorf("failed to remove scratch dir: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
