package storage

import "context"

// DefaultTreeDepth is the default bound for recursive listings.
const DefaultTreeDepth = 3

// ScanTree lists a directory tree through any adapter, bounded by depth.
//
// The result is keyed by path and never contains an entry more than
// maxDepth segments below start. Depth is a hard cutoff: subtrees beyond it
// are not visited. A subtree whose scan yields nothing (missing, unreadable,
// permission revoked mid-walk) is skipped; traversal continues with its
// siblings.
func ScanTree(ctx context.Context, a Adapter, start string, maxDepth int) (map[string]Entry, error) {
	if maxDepth < 1 {
		maxDepth = DefaultTreeDepth
	}
	start = CleanPath(start)

	result := make(map[string]Entry)
	scanTreeInto(ctx, a, start, maxDepth, result)
	return result, nil
}

func scanTreeInto(ctx context.Context, a Adapter, dir string, depth int, result map[string]Entry) {
	if depth == 0 {
		return
	}

	entries, err := a.ScanDirectory(ctx, dir)
	if err != nil {
		return
	}

	for _, entry := range entries {
		result[entry.Path] = entry
		if entry.IsDirectory {
			scanTreeInto(ctx, a, entry.Path, depth-1, result)
		}
	}
}
