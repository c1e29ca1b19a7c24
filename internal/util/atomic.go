package util

import (
	"fmt"
	"os"
	"path/filepath"
)

// AtomicWriteFile writes content to path by first writing to a sibling temp
// file and renaming it into place, so concurrent readers never observe a
// partially written file. It does not create parent directories: the target
// directory must already exist.
func AtomicWriteFile(path string, content []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "apiary-atomic-*")
	if err != nil {
		return fmt.Errorf("create temp file for %q: %w", path, err)
	}
	tmpPath := tmp.Name()

	// Best-effort cleanup: after a successful rename this is a no-op because
	// the path no longer exists under its temp name.
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file for %q: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file for %q: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file for %q: %w", path, err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("chmod temp file for %q: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file into %q: %w", path, err)
	}
	return nil
}
