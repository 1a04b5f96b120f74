// Package fileutil provides filesystem helpers for validating downloaded
// assets and preparing output locations.
package fileutil

import (
	"errors"
	"fmt"
	"os"
)

// EnsureDir creates dir and any missing parents with 0o755 permissions.
func EnsureDir(dir string) error {
	if dir == "" {
		return errors.New("directory path is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}

// NonEmptyFile reports whether path exists, is a regular file, and has a
// non-zero size. Downloaded assets that fail this check are treated as
// unusable.
func NonEmptyFile(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	return info.Mode().IsRegular() && info.Size() > 0, nil
}

// FileSize returns the size in bytes of the file at path.
func FileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}
	return info.Size(), nil
}
