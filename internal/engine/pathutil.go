package engine

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// resolveToRepoRelative resolves a user-provided path (absolute, relative, or containing "..")
// to a clean, slash-separated repo-root-relative path. It rejects paths that escape the repo
// boundary or resolve to the repo root itself.
func resolveToRepoRelative(userPath, cwd, repoRoot string) (string, error) {
	var absPath string
	if filepath.IsAbs(userPath) {
		absPath = userPath
	} else {
		absPath = filepath.Join(cwd, userPath)
	}
	absPath = filepath.Clean(absPath)

	repoRoot = filepath.Clean(repoRoot)

	relPath, err := filepath.Rel(repoRoot, absPath)
	if err != nil {
		return "", fmt.Errorf("failed to compute repo-relative path for %q: %w", userPath, err)
	}

	// Reject paths outside the repo
	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q resolves to %q which is outside the repository", userPath, absPath)
	}

	if relPath == "." {
		return "", fmt.Errorf("path %q resolves to the repository root", userPath)
	}

	return filepath.ToSlash(relPath), nil
}

// pathFilter keeps paths matching any include pattern (or all paths when
// there are none) and matching no exclude pattern.
type pathFilter struct {
	include []string
	exclude []string
}

func newPathFilter(include, exclude []string) (*pathFilter, error) {
	for _, pattern := range append(append([]string(nil), include...), exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("%w: invalid glob pattern %q", ErrValidation, pattern)
		}
	}
	return &pathFilter{include: include, exclude: exclude}, nil
}

// match reports whether rel passes the filter, and when it does not, which
// pattern rejected it.
func (f *pathFilter) match(rel string) (bool, string) {
	if len(f.include) > 0 {
		included := false
		for _, pattern := range f.include {
			if matchGlob(pattern, rel) {
				included = true
				break
			}
		}
		if !included {
			return false, "not included"
		}
	}

	for _, pattern := range f.exclude {
		if matchGlob(pattern, rel) {
			return false, "excluded by " + pattern
		}
	}

	return true, ""
}

// matchGlob matches rel against pattern. A pattern without a slash also
// matches the base name, so "*.json" selects JSON files at any depth.
func matchGlob(pattern, rel string) bool {
	if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
		return true
	}
	if !strings.Contains(pattern, "/") {
		if ok, err := doublestar.Match(pattern, filepath.Base(rel)); err == nil && ok {
			return true
		}
	}
	return false
}

// selectEntryPaths maps user paths onto an entry's files. A path naming a
// directory selects every entry file beneath it. The result follows the
// entry's sorted order.
func selectEntryPaths(entryPaths, userPaths []string, cwd, root string) ([]string, error) {
	if len(userPaths) == 0 {
		return entryPaths, nil
	}

	selected := map[string]bool{}
	for _, userPath := range userPaths {
		var candidates []string
		if cwd != "" {
			if rel, err := resolveToRepoRelative(userPath, cwd, root); err == nil {
				candidates = append(candidates, rel)
			}
		}
		if !filepath.IsAbs(userPath) {
			candidates = append(candidates, filepath.ToSlash(filepath.Clean(userPath)))
		}

		matched := false
		for _, rel := range candidates {
			for _, p := range entryPaths {
				if p == rel || strings.HasPrefix(p, rel+"/") {
					selected[p] = true
					matched = true
				}
			}
			if matched {
				break
			}
		}
		if !matched {
			return nil, fmt.Errorf("%w: %s is not part of this shelf entry", ErrValidation, userPath)
		}
	}

	paths := make([]string, 0, len(selected))
	for p := range selected {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}
