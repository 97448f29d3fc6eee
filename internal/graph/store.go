package graph

import (
	"sync"

	"cig/internal/cigerr"
	"cig/internal/logging"
)

// Store owns one project's graph. It loads the persisted document on
// construction, serializes mutations behind a mutex, and persists the whole
// in-memory snapshot on every mutation. Analyses read through Snapshot so a
// concurrent indexing job never mutates the graph an analysis is walking.
type Store struct {
	mu        sync.Mutex
	projectID string
	graph     *Graph
	docs      DocumentStore
	logger    *logging.Logger
}

// NewStore loads the project's graph from the document store. A missing
// document is an empty graph. A corrupt document is also treated as an empty
// graph — never a construction failure — but the corruption is logged and the
// broken payload stays on disk until the next Save overwrites it.
func NewStore(projectID string, docs DocumentStore, logger *logging.Logger) (*Store, error) {
	if projectID == "" {
		return nil, cigerr.New(cigerr.InvalidArgument, "project id is required", nil)
	}

	s := &Store{
		projectID: projectID,
		docs:      docs,
		logger:    logger,
	}

	doc, found, err := docs.Load(projectID)
	switch {
	case err != nil:
		logger.Warn("Graph document unreadable, starting with empty graph", map[string]interface{}{
			"projectId": projectID,
			"error":     err.Error(),
		})
		s.graph = NewGraph()
	case !found:
		s.graph = NewGraph()
	default:
		s.graph = FromDocument(doc)
	}

	return s, nil
}

// ProjectID returns the project this store is scoped to.
func (s *Store) ProjectID() string {
	return s.projectID
}

// Snapshot returns a deep copy of the current graph for read-only traversal.
func (s *Store) Snapshot() *Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.Clone()
}

// AddNode inserts a node and persists the graph.
func (s *Store) AddNode(n Node) error {
	if n.ID == "" {
		return cigerr.New(cigerr.InvalidArgument, "node id is required", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph.AddNode(n)
	return s.persistLocked()
}

// AddEdge inserts an edge and persists the graph. Duplicate triples are
// no-ops but still count as a successful mutation.
func (s *Store) AddEdge(e Edge) error {
	if e.Source == "" || e.Target == "" {
		return cigerr.New(cigerr.InvalidArgument, "edge source and target are required", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph.AddEdge(e)
	return s.persistLocked()
}

// RemoveNodesByRepo drops every node owned by repoID, cascades edge removal,
// and persists the graph. Returns the number of nodes removed.
func (s *Store) RemoveNodesByRepo(repoID string) (int, error) {
	if repoID == "" {
		return 0, cigerr.New(cigerr.InvalidArgument, "repo id is required", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := s.graph.RemoveNodesByRepo(repoID)
	if err := s.persistLocked(); err != nil {
		return removed, err
	}
	return removed, nil
}

// Save flushes the full in-memory state.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked()
}

// Clear resets the graph to empty and persists the empty document.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph = NewGraph()
	return s.persistLocked()
}

func (s *Store) persistLocked() error {
	if err := s.docs.Save(s.projectID, s.graph.Document()); err != nil {
		return cigerr.New(cigerr.StoreIO, "failed to persist graph document", err)
	}
	return nil
}
