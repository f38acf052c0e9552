// Package repos discovers local git checkouts under a root directory.
package repos

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// maxDepth limits how far below the root the scan descends.
const maxDepth = 3

// Scan walks root and returns every directory containing a .git entry,
// in lexical order. Hidden directories and any whose base name appears
// in exclude are skipped, and the walk does not descend into a found
// checkout.
func Scan(root string, exclude []string) ([]string, error) {
	root = filepath.Clean(root)
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	excluded := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		excluded[name] = true
	}

	var found []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		if !d.IsDir() || path == root {
			return nil
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") || excluded[name] {
			return filepath.SkipDir
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return filepath.SkipDir
		}
		if strings.Count(rel, string(filepath.Separator))+1 > maxDepth {
			return filepath.SkipDir
		}
		if _, err := os.Stat(filepath.Join(path, ".git")); err == nil {
			found = append(found, path)
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	return found, nil
}

// Dedupe drops checkouts that resolve to a remote already seen,
// preferring the shortest path for each remote, and reports how many
// duplicates were dropped. Checkouts the resolver fails on are kept; a
// clone without a reachable remote should still show up for review.
func Dedupe(dirs []string, resolve func(dir string) (string, error)) ([]string, int) {
	seen := make(map[string]int)
	var out []string
	dropped := 0
	for _, dir := range dirs {
		remote, err := resolve(dir)
		if err != nil || remote == "" {
			out = append(out, dir)
			continue
		}
		if i, ok := seen[remote]; ok {
			dropped++
			if len(dir) < len(out[i]) {
				out[i] = dir
			}
			continue
		}
		seen[remote] = len(out)
		out = append(out, dir)
	}
	return out, dropped
}
