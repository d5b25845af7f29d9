package compiler

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFiles replaces dir with the generated file set. Files are staged in
// a sibling temp directory and swapped in with a rename, so a failed write
// never leaves a half-regenerated output tree behind.
func WriteFiles(dir string, files []File) error {
	parent := filepath.Dir(dir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("creating output parent: %w", err)
	}
	staging, err := os.MkdirTemp(parent, ".blueprint-gen-")
	if err != nil {
		return fmt.Errorf("creating staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	for _, f := range files {
		if err := os.WriteFile(filepath.Join(staging, f.Name), []byte(f.Content), 0o644); err != nil {
			return fmt.Errorf("staging %s: %w", f.Name, err)
		}
	}

	old := dir + ".old"
	if err := os.RemoveAll(old); err != nil {
		return fmt.Errorf("clearing previous output: %w", err)
	}
	if _, err := os.Stat(dir); err == nil {
		if err := os.Rename(dir, old); err != nil {
			return fmt.Errorf("moving previous output aside: %w", err)
		}
	}
	if err := os.Rename(staging, dir); err != nil {
		return fmt.Errorf("activating generated output: %w", err)
	}
	return os.RemoveAll(old)
}
