package gitrepo

import "strings"

// PathDepth counts the segments of a slash-separated repository path:
// "posts/2024/a.md" has depth 3, "" has depth 0. Depth comparisons are always
// segment-wise; comparing string lengths misclassifies siblings like "posts"
// and "posts2".
func PathDepth(p string) int {
	if p == "" {
		return 0
	}
	return len(strings.Split(p, "/"))
}

// UnderPrefix reports whether p sits at or below directory dir. Matching is
// by whole segment: dir "posts" covers "posts/a.md" but never "posts2/a.md".
// An empty dir covers everything.
func UnderPrefix(p, dir string) bool {
	if dir == "" {
		return true
	}
	return p == dir || strings.HasPrefix(p, dir+"/")
}
