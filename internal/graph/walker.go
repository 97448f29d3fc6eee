package graph

import (
	"cig/internal/paths"
)

// Hit is a cross-repository file discovered by the reverse-dependency walk.
type Hit struct {
	RepoID   string
	FilePath string
	Reason   string
}

// ReverseDependencyWalker finds every node that structurally depends on a
// changed node by following IMPORTS edges backward.
type ReverseDependencyWalker struct{}

// NewReverseDependencyWalker creates a walker.
func NewReverseDependencyWalker() *ReverseDependencyWalker {
	return &ReverseDependencyWalker{}
}

// Walk runs a breadth-first traversal from startID over reverse IMPORTS
// edges. Every newly discovered node whose owning repo differs from
// sourceRepo is emitted as a hit; same-repo dependents are traversed through
// so transitive cross-repo impact is still found, but are not themselves
// reported. The visited set is seeded with the start node, so the start is
// never re-emitted and cycles through it terminate.
func (w *ReverseDependencyWalker) Walk(g *Graph, startID, sourceRepo string) []Hit {
	rev := g.ReverseImports()

	visited := map[string]bool{startID: true}
	frontier := []string{startID}
	var hits []Hit

	for len(frontier) > 0 {
		current := frontier[0]
		frontier = frontier[1:]

		_, currentPath := paths.SplitNodeID(current)
		importedBase := paths.Basename(currentPath)

		for _, dependent := range rev[current] {
			if visited[dependent] {
				continue
			}
			visited[dependent] = true
			frontier = append(frontier, dependent)

			repoID, filePath := paths.SplitNodeID(dependent)
			// Edges may point at ids the indexer never materialized as
			// nodes; walk them anyway, the id still carries repo and path.
			if node, ok := g.Node(dependent); ok && node.Meta.RepoID != "" {
				repoID = node.Meta.RepoID
			}

			if repoID == sourceRepo {
				continue
			}

			hits = append(hits, Hit{
				RepoID:   repoID,
				FilePath: filePath,
				Reason:   "Imports " + importedBase,
			})
		}
	}

	return hits
}
