// Package loader discovers source files under a repository root and pairs
// each with its detected language, producing the coordinator's file inputs.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"debtguardian/internal/coordinator"
	"debtguardian/internal/logging"
)

// languageByExt maps file extensions to slicer language tags.
var languageByExt = map[string]string{
	".java": "java",
	".go":   "go",
	".py":   "python",
}

// skipDirs are directory names never descended into.
var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
	"build":        true,
	"dist":         true,
	"target":       true,
}

// Loader walks a repository root collecting analyzable files.
type Loader struct {
	maxFileSize int
	logger      *logging.Logger
}

// New creates a loader. maxFileSize of 0 disables the size cap.
func New(maxFileSize int, logger *logging.Logger) *Loader {
	return &Loader{maxFileSize: maxFileSize, logger: logger}
}

// DetectLanguage returns the language tag for a path, or "" when the
// extension is not recognized.
func DetectLanguage(path string) string {
	return languageByExt[strings.ToLower(filepath.Ext(path))]
}

// LoadFile reads a single file and detects its language. An unrecognized
// extension yields an input with an empty language; the slicer rejects it
// as unsupported.
func (l *Loader) LoadFile(path string) (coordinator.FileInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return coordinator.FileInput{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return coordinator.FileInput{
		Path:     filepath.ToSlash(path),
		Text:     string(data),
		Language: DetectLanguage(path),
	}, nil
}

// LoadDirectory walks root and loads every recognized source file. Hidden
// directories and common build/dependency directories are skipped. Paths
// are relative to root, slash-separated, and sorted so input order is
// stable across platforms.
func (l *Loader) LoadDirectory(root string) ([]coordinator.FileInput, error) {
	var inputs []coordinator.FileInput

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			l.logger.Warn("Skipping unreadable path", map[string]interface{}{
				"path":  path,
				"error": err.Error(),
			})
			return nil
		}
		name := info.Name()
		if info.IsDir() {
			if path != root && (strings.HasPrefix(name, ".") || skipDirs[name]) {
				return filepath.SkipDir
			}
			return nil
		}
		lang := DetectLanguage(path)
		if lang == "" {
			return nil
		}
		if l.maxFileSize > 0 && info.Size() > int64(l.maxFileSize) {
			l.logger.Warn("Skipping oversized file", map[string]interface{}{
				"path": path,
				"size": info.Size(),
			})
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			l.logger.Warn("Skipping unreadable file", map[string]interface{}{
				"path":  path,
				"error": err.Error(),
			})
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		inputs = append(inputs, coordinator.FileInput{
			Path:     filepath.ToSlash(rel),
			Text:     string(data),
			Language: lang,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	sort.Slice(inputs, func(i, j int) bool {
		return inputs[i].Path < inputs[j].Path
	})
	return inputs, nil
}
