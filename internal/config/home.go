package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// GetDommxHome returns the dommx home directory
// Priority order:
//  1. DOMMX_HOME environment variable (if set)
//  2. Repository root (detected by finding go.mod or a .dommx-root marker)
//  3. Current working directory (fallback)
//
// The directory is created if it doesn't exist
func GetDommxHome() (string, error) {
	if home := os.Getenv("DOMMX_HOME"); home != "" {
		return home, nil
	}

	repoRoot, err := findRepoRoot()
	if err == nil && repoRoot != "" {
		home := filepath.Join(repoRoot, ".dommx")
		if err := os.MkdirAll(home, 0755); err != nil {
			return "", fmt.Errorf("create dommx home directory: %w", err)
		}
		return home, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	home := filepath.Join(cwd, ".dommx")
	if err := os.MkdirAll(home, 0755); err != nil {
		return "", fmt.Errorf("create dommx home directory: %w", err)
	}

	return home, nil
}

// findRepoRoot walks up from the working directory looking for a .dommx-root
// marker file or a go.mod carrying this module's path.
func findRepoRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	current := cwd
	for {
		markerPath := filepath.Join(current, ".dommx-root")
		if _, err := os.Stat(markerPath); err == nil {
			return current, nil
		}

		goModPath := filepath.Join(current, "go.mod")
		if data, err := os.ReadFile(goModPath); err == nil {
			if strings.Contains(string(data), "github.com/harrison/dommx") {
				return current, nil
			}
		}

		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}

	return "", fmt.Errorf("repository root not found")
}
