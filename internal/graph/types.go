// Package graph holds the cross-repository dependency graph: the node/edge
// model, the per-project persisted store, and the reverse-dependency walker.
package graph

// NodeKind classifies a graph node
type NodeKind string

const (
	KindFile      NodeKind = "FILE"
	KindFunction  NodeKind = "FUNCTION"
	KindAPI       NodeKind = "API"
	KindComponent NodeKind = "COMPONENT"
)

// EdgeKind classifies a directed relationship between two nodes
type EdgeKind string

const (
	EdgeImports EdgeKind = "IMPORTS"
	EdgeCalls   EdgeKind = "CALLS"
	EdgeDefines EdgeKind = "DEFINES"
	EdgeExposes EdgeKind = "EXPOSES"
	EdgeUsedBy  EdgeKind = "USED_BY"
)

// NodeMeta carries node metadata. RepoID is first-class because every file
// node the indexer creates must name its owning repository; anything else the
// indexer wants to attach goes into Attrs.
type NodeMeta struct {
	RepoID string            `json:"repoId,omitempty"`
	Attrs  map[string]string `json:"attrs,omitempty"`
}

// Node is an addressable graph entity. The id is opaque but conventionally
// "<repoId>:<filePath>" and must be unique within a project's graph.
type Node struct {
	ID    string   `json:"id"`
	Kind  NodeKind `json:"kind"`
	Label string   `json:"label"`
	Meta  NodeMeta `json:"metadata"`
}

// Edge is a directed, typed relationship between two node ids. Endpoints may
// reference ids that are not (yet) present as nodes; traversal skips those.
type Edge struct {
	Source string            `json:"source"`
	Target string            `json:"target"`
	Kind   EdgeKind          `json:"kind"`
	Attrs  map[string]string `json:"metadata,omitempty"`
}

// Document is the persisted JSON shape of one project's graph.
type Document struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}
