// Package paths normalizes file paths and graph node identifiers.
//
// Node ids follow the "<repoId>:<filePath>" convention used by the indexer.
// Indexers have historically stored paths with either separator style, so
// lookups must try both.
package paths

import (
	"path"
	"strings"
)

// NodeIDSeparator separates the repo id from the file path in a node id.
const NodeIDSeparator = ":"

// NormalizeSlashes converts backslashes to forward slashes.
func NormalizeSlashes(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// ToBackslashes converts forward slashes to backslashes.
func ToBackslashes(p string) string {
	return strings.ReplaceAll(p, "/", "\\")
}

// Candidates returns the lookup variants for a raw file path, in resolution
// order: forward slashes, as given, backslashes. Duplicates are removed while
// preserving order.
func Candidates(rawPath string) []string {
	variants := []string{
		NormalizeSlashes(rawPath),
		rawPath,
		ToBackslashes(rawPath),
	}

	seen := make(map[string]bool, len(variants))
	out := make([]string, 0, len(variants))
	for _, v := range variants {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// NodeID builds a node id from a repo id and file path.
func NodeID(repoID, filePath string) string {
	return repoID + NodeIDSeparator + filePath
}

// SplitNodeID splits a node id into repo id and file path. The repo id is the
// prefix before the first separator; ids without a separator yield an empty
// repo id and the whole id as path.
func SplitNodeID(id string) (repoID, filePath string) {
	idx := strings.Index(id, NodeIDSeparator)
	if idx < 0 {
		return "", id
	}
	return id[:idx], id[idx+len(NodeIDSeparator):]
}

// RepoOf returns the repo id portion of a node id.
func RepoOf(id string) string {
	repoID, _ := SplitNodeID(id)
	return repoID
}

// Basename returns the last path element of a file path, tolerating either
// separator style.
func Basename(filePath string) string {
	return path.Base(NormalizeSlashes(filePath))
}

// Extension returns the lowercased file extension including the dot, or ""
// when the path has none.
func Extension(filePath string) string {
	ext := path.Ext(NormalizeSlashes(filePath))
	return strings.ToLower(ext)
}
