package utils

import (
	"path/filepath"
)

// TSConfigFileName is the conventional name of a TypeScript project configuration
const TSConfigFileName = "tsconfig.json"

// FindProjectConfig walks up from startDir to the nearest tsconfig.json and returns its
// path, or "" when none exists up to the filesystem root
func FindProjectConfig(startDir string) string {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return ""
	}

	for {
		candidate := filepath.Join(dir, TSConfigFileName)
		if FileExists(candidate) {
			return candidate
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
