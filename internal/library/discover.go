// Package library reads note files from the notes directory and keeps the
// parsed result of each in an LRU cache.
package library

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dgallion1/linkorg/internal/parser"
)

// Discover walks root and returns the slash-separated paths, relative to
// root, of every file a parser exists for. Hidden directories and files are
// skipped, as are editor lock files.
func Discover(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || !d.Type().IsRegular() {
			return nil
		}
		if !parser.IsSupportedExtension(name) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}
