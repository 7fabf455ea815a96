package storage

import (
	"path"
	"strings"
)

// CleanPath normalizes a path to the canonical absolute form used by
// adapters: slash-separated, rooted at "/".
func CleanPath(p string) string {
	p = path.Clean(p)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// SplitPath returns the segments of a canonical path, root first.
// The root path "/" yields no segments.
func SplitPath(p string) []string {
	p = strings.Trim(CleanPath(p), "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// JoinPath joins segments onto a canonical base path.
func JoinPath(base string, elem ...string) string {
	return CleanPath(path.Join(append([]string{base}, elem...)...))
}

// Depth returns the number of path segments target has beyond base.
// It returns -1 when target is not under base.
func Depth(base, target string) int {
	base = CleanPath(base)
	target = CleanPath(target)
	if target == base {
		return 0
	}
	prefix := base
	if prefix != "/" {
		prefix += "/"
	}
	if !strings.HasPrefix(target, prefix) {
		return -1
	}
	return strings.Count(strings.TrimPrefix(target, prefix), "/") + 1
}
