package utils

import (
	"os"
	"path/filepath"
	"strings"
)

// sourceExtensions are the TypeScript source file suffixes a project may contain
var sourceExtensions = []string{".ts", ".tsx", ".mts", ".cts"}

// IsSourceFile checks if a file is a TypeScript source file (includes declaration files)
func IsSourceFile(filename string) bool {
	for _, ext := range sourceExtensions {
		if strings.HasSuffix(filename, ext) {
			return true
		}
	}
	return false
}

// IsDeclarationFile checks if a file is a TypeScript declaration file (.d.ts, .d.mts, .d.cts)
func IsDeclarationFile(filename string) bool {
	base := filepath.Base(filename)
	return strings.HasSuffix(base, ".d.ts") || strings.HasSuffix(base, ".d.mts") || strings.HasSuffix(base, ".d.cts")
}

// IsTSXFile checks if a file uses JSX syntax by extension
func IsTSXFile(filename string) bool {
	return strings.HasSuffix(filename, ".tsx") || strings.HasSuffix(filename, ".jsx")
}

// FindSourceFiles recursively finds all TypeScript source files in a directory
func FindSourceFiles(root string) ([]string, error) {
	var sourceFiles []string

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		// Skip node_modules and hidden directories (but not the root directory)
		if info.IsDir() && path != root {
			name := filepath.Base(path)
			if name == "node_modules" || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if !info.IsDir() && IsSourceFile(filepath.Base(path)) {
			sourceFiles = append(sourceFiles, path)
		}

		return nil
	})

	return sourceFiles, err
}

// IsDirectory checks if the given path is a directory
func IsDirectory(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

// FileExists checks if the given path exists and is a regular file
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
