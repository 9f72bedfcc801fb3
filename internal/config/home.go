package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetHome returns the woundcore home directory
// Priority order:
//  1. WOUNDCORE_HOME environment variable (if set)
//  2. .woundcore under the nearest ancestor holding a .woundcore-root marker
//  3. .woundcore under the current working directory (fallback)
//
// The directory is created if it doesn't exist
func GetHome() (string, error) {
	if home := os.Getenv("WOUNDCORE_HOME"); home != "" {
		return home, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	base := cwd
	if root, ok := findRoot(cwd); ok {
		base = root
	}

	home := filepath.Join(base, ".woundcore")
	if err := os.MkdirAll(home, 0755); err != nil {
		return "", fmt.Errorf("create woundcore home directory: %w", err)
	}
	return home, nil
}

// findRoot walks up from dir looking for a .woundcore-root marker file
func findRoot(dir string) (string, bool) {
	current := dir
	for {
		if _, err := os.Stat(filepath.Join(current, ".woundcore-root")); err == nil {
			return current, true
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", false
		}
		current = parent
	}
}

// GetSchemaDBPath returns the default path of the schema database
// Always returns: $WOUNDCORE_HOME/schemas.db
func GetSchemaDBPath() (string, error) {
	home, err := GetHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "schemas.db"), nil
}
