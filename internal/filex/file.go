// Package filex provides small filesystem helpers for invocation-scoped
// scratch storage.
package filex

import (
	"fmt"
	"os"
)

// EnsureDir creates dir (and parents) if it does not exist yet. A pre-existing
// directory is reused as is. Returns the directory path for convenience.
func EnsureDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return dir, nil
}

// RemoveIfExists deletes path if it exists. A missing file is not an error;
// any other removal failure is reported to the caller.
func RemoveIfExists(path string) error {
	if path == "" {
		return nil
	}
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

// NonEmptyFile reports whether path exists, is a regular file and has a
// non-zero size.
func NonEmptyFile(path string) bool {
	fi, err := os.Stat(path)
	if err != nil {
		return false
	}
	return fi.Mode().IsRegular() && fi.Size() > 0
}
