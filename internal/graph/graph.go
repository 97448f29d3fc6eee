package graph

import (
	"cig/internal/paths"
)

// Graph is one project's node set and edge list. Node insertion order is
// preserved because the usage scanner's file cap is applied in indexer
// insertion order.
type Graph struct {
	nodes map[string]int // id -> index into order
	order []Node
	edges []Edge
	seen  map[edgeKey]bool
}

type edgeKey struct {
	source string
	target string
	kind   EdgeKind
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes: make(map[string]int),
		seen:  make(map[edgeKey]bool),
	}
}

// FromDocument rebuilds a graph from its persisted document, applying the
// same idempotence rules as incremental insertion.
func FromDocument(doc Document) *Graph {
	g := NewGraph()
	for _, n := range doc.Nodes {
		g.AddNode(n)
	}
	for _, e := range doc.Edges {
		g.AddEdge(e)
	}
	return g
}

// Document snapshots the graph into its persisted shape.
func (g *Graph) Document() Document {
	doc := Document{
		Nodes: make([]Node, len(g.order)),
		Edges: make([]Edge, len(g.edges)),
	}
	copy(doc.Nodes, g.order)
	copy(doc.Edges, g.edges)
	return doc
}

// AddNode inserts a node. Ids are unique: inserting an id that already exists
// replaces the stored node in place, keeping its original insertion position.
func (g *Graph) AddNode(n Node) {
	if idx, ok := g.nodes[n.ID]; ok {
		g.order[idx] = n
		return
	}
	g.nodes[n.ID] = len(g.order)
	g.order = append(g.order, n)
}

// AddEdge inserts an edge. The (source, target, kind) triple is unique;
// inserting a duplicate is a no-op, not an error.
func (g *Graph) AddEdge(e Edge) {
	key := edgeKey{source: e.Source, target: e.Target, kind: e.Kind}
	if g.seen[key] {
		return
	}
	g.seen[key] = true
	g.edges = append(g.edges, e)
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	idx, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	return g.order[idx], true
}

// HasNode reports whether a node id exists.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.order))
	copy(out, g.order)
	return out
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.order) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// RemoveNodesByRepo removes every node owned by the given repo and prunes
// every edge touching a removed node. Ownership comes from the node metadata
// when present, falling back to the id prefix. Returns the number of nodes
// removed.
func (g *Graph) RemoveNodesByRepo(repoID string) int {
	removed := make(map[string]bool)
	kept := make([]Node, 0, len(g.order))
	for _, n := range g.order {
		if nodeRepo(n) == repoID {
			removed[n.ID] = true
			continue
		}
		kept = append(kept, n)
	}
	if len(removed) == 0 {
		return 0
	}

	g.order = kept
	g.nodes = make(map[string]int, len(kept))
	for i, n := range kept {
		g.nodes[n.ID] = i
	}

	keptEdges := g.edges[:0]
	for _, e := range g.edges {
		if removed[e.Source] || removed[e.Target] {
			delete(g.seen, edgeKey{source: e.Source, target: e.Target, kind: e.Kind})
			continue
		}
		keptEdges = append(keptEdges, e)
	}
	g.edges = keptEdges

	return len(removed)
}

// ReverseImports maps each node id to the sources of its incoming IMPORTS
// edges, i.e. the nodes that import it.
func (g *Graph) ReverseImports() map[string][]string {
	rev := make(map[string][]string)
	for _, e := range g.edges {
		if e.Kind != EdgeImports {
			continue
		}
		rev[e.Target] = append(rev[e.Target], e.Source)
	}
	return rev
}

// Clone returns a deep copy, used to give each analysis its own read of the
// graph while mutations continue on the store's copy.
func (g *Graph) Clone() *Graph {
	c := NewGraph()
	for _, n := range g.order {
		c.AddNode(n)
	}
	for _, e := range g.edges {
		c.AddEdge(e)
	}
	return c
}

func nodeRepo(n Node) string {
	if n.Meta.RepoID != "" {
		return n.Meta.RepoID
	}
	return paths.RepoOf(n.ID)
}
