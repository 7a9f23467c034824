// Package discover expands an input glob pattern into a deterministic
// Markdown file list.
package discover

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// Glob expands pattern into a lexically sorted file list. A "**" segment
// matches any number of directories; other segments follow path.Match
// rules. A pattern that matches nothing yields an empty list, not an
// error.
func Glob(pattern string) ([]string, error) {
	if !strings.Contains(pattern, "**") {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("discover: bad pattern %q: %w", pattern, err)
		}
		sort.Strings(matches)
		return matches, nil
	}
	return globRecursive(pattern)
}

func globRecursive(pattern string) ([]string, error) {
	pattern = filepath.ToSlash(pattern)
	i := strings.Index(pattern, "**")
	root := pattern[:i]
	root = strings.TrimSuffix(root, "/")
	if root == "" {
		root = "."
	}
	rest := strings.TrimPrefix(pattern[i+2:], "/")

	var matches []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		ok, err := matchSuffix(filepath.ToSlash(rel), rest)
		if err != nil {
			return err
		}
		if ok {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover: walk %q: %w", root, err)
	}
	sort.Strings(matches)
	return matches, nil
}

// matchSuffix matches the post-** part of the pattern against the tail of
// a relative path: "**/x/*.md" matches x/*.md at any depth.
func matchSuffix(rel, rest string) (bool, error) {
	if rest == "" {
		return true, nil
	}
	segs := strings.Split(rel, "/")
	restSegs := strings.Split(rest, "/")
	if len(restSegs) > len(segs) {
		return false, nil
	}
	tail := segs[len(segs)-len(restSegs):]
	for i, p := range restSegs {
		ok, err := filepath.Match(p, tail[i])
		if err != nil || !ok {
			return ok, err
		}
	}
	return true, nil
}
