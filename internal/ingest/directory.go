package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// Discover walks root and returns matching files in lexical order. Unreadable
// entries are counted as scanned and skipped.
func Discover(root string, exts map[string]struct{}, skipHidden bool) ([]string, uint32, error) {
	if strings.TrimSpace(root) == "" {
		return nil, 0, errors.New("root path is required")
	}

	var (
		paths   []string
		scanned uint32
	)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		scanned++
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			return nil
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if allowed(path, exts) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return paths, scanned, fmt.Errorf("walk: %w", err)
	}
	return paths, scanned, nil
}
