package graph

// DocumentStore persists one graph document per project. Implementations must
// treat a missing document as "no document" rather than an error, and a Save
// must fully replace prior content.
type DocumentStore interface {
	// Load returns the document for a project. found is false when no
	// document exists. A document that exists but cannot be decoded is
	// reported through err with found=false; the caller decides whether
	// that is fatal (the Store treats it as an empty graph).
	Load(projectID string) (doc Document, found bool, err error)

	// Save replaces the project's document.
	Save(projectID string, doc Document) error

	// Delete removes the project's document if present.
	Delete(projectID string) error
}

// MemoryStore is an in-process DocumentStore, used in tests and available as
// the "memory" backend for throwaway analysis runs.
type MemoryStore struct {
	docs map[string]Document
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]Document)}
}

// Load implements DocumentStore.
func (m *MemoryStore) Load(projectID string) (Document, bool, error) {
	doc, ok := m.docs[projectID]
	return doc, ok, nil
}

// Save implements DocumentStore.
func (m *MemoryStore) Save(projectID string, doc Document) error {
	m.docs[projectID] = doc
	return nil
}

// Delete implements DocumentStore.
func (m *MemoryStore) Delete(projectID string) error {
	delete(m.docs, projectID)
	return nil
}
