package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathValidator confines template imports and generated output to the
// configured data directory.
type PathValidator struct {
	dataDirectory string
}

// NewPathValidator creates a new path validator for the given directory
func NewPathValidator(dataDirectory string) (*PathValidator, error) {
	if dataDirectory == "" {
		return nil, fmt.Errorf("data directory cannot be empty")
	}

	return &PathValidator{
		dataDirectory: dataDirectory,
	}, nil
}

// Resolve turns path into an absolute path inside the data directory.
// Relative paths are taken relative to the data directory.
func (v *PathValidator) Resolve(path string) (string, error) {
	path = strings.ReplaceAll(path, "\x00", "")
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(v.dataDirectory, path)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}

	within, err := v.IsWithinDataDirectory(absPath)
	if err != nil {
		return "", fmt.Errorf("path validation failed: %w", err)
	}

	if !within {
		return "", fmt.Errorf("path is outside data directory: %s", path)
	}

	return absPath, nil
}

// IsWithinDataDirectory reports whether path, after cleaning and symlink
// resolution, lies inside the data directory.
func (v *PathValidator) IsWithinDataDirectory(path string) (bool, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("failed to resolve path: %w", err)
	}

	absDir, err := filepath.Abs(v.dataDirectory)
	if err != nil {
		return false, fmt.Errorf("failed to resolve data directory: %w", err)
	}

	cleanPath := filepath.Clean(absPath)
	cleanDir := filepath.Clean(absDir)

	realPath := cleanPath
	if info, err := os.Lstat(cleanPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		if resolved, err := filepath.EvalSymlinks(cleanPath); err == nil {
			realPath = resolved
		}
	}

	realDir := cleanDir
	if resolved, err := filepath.EvalSymlinks(cleanDir); err == nil {
		realDir = resolved
	}

	within := func(p string) bool {
		for _, dir := range []string{cleanDir, realDir} {
			if p == dir || strings.HasPrefix(p, dir+string(filepath.Separator)) {
				return true
			}
		}
		return false
	}

	return within(cleanPath) && within(realPath), nil
}

// DataDirectory returns the configured data directory path
func (v *PathValidator) DataDirectory() string {
	return v.dataDirectory
}
