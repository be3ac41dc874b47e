// Package filex holds small filesystem helpers for locating and preparing
// the local state file.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// AppDirName is the directory created under the user config dir.
const AppDirName = "contactkeeper"

// EnsureParentDir creates the directory that will hold path.
func EnsureParentDir(path string) (string, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return dir, nil
}

// DefaultStatePath returns <user config dir>/contactkeeper/<name>, falling
// back to the working directory when the config dir cannot be resolved.
func DefaultStatePath(name string) string {
	base, err := os.UserConfigDir()
	if err != nil || base == "" {
		cwd, cerr := os.Getwd()
		if cerr != nil {
			return name
		}
		return filepath.Join(cwd, name)
	}
	return filepath.Join(base, AppDirName, name)
}
