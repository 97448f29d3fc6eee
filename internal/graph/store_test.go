package graph

import (
	"os"
	"path/filepath"
	"testing"

	"cig/internal/logging"
)

func TestStoreMissingDocumentIsEmptyGraph(t *testing.T) {
	store, err := NewStore("proj", NewMemoryStore(), logging.Nop())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if n := store.Snapshot().NodeCount(); n != 0 {
		t.Errorf("NodeCount = %d, want 0", n)
	}
}

func TestStorePersistsOnEveryMutation(t *testing.T) {
	docs := NewMemoryStore()
	store, err := NewStore("proj", docs, logging.Nop())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	if err := store.AddNode(fileNode("server", "src/api.ts")); err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	if err := store.AddEdge(Edge{Source: "web:c.ts", Target: "server:src/api.ts", Kind: EdgeImports}); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}

	// A second store over the same document store sees the full state
	reloaded, err := NewStore("proj", docs, logging.Nop())
	if err != nil {
		t.Fatalf("NewStore reload: %v", err)
	}
	g := reloaded.Snapshot()
	if g.NodeCount() != 1 || g.EdgeCount() != 1 {
		t.Errorf("reloaded graph: %d nodes, %d edges, want 1/1", g.NodeCount(), g.EdgeCount())
	}
}

func TestStoreClear(t *testing.T) {
	docs := NewMemoryStore()
	store, _ := NewStore("proj", docs, logging.Nop())
	_ = store.AddNode(fileNode("server", "src/api.ts"))

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	reloaded, _ := NewStore("proj", docs, logging.Nop())
	if n := reloaded.Snapshot().NodeCount(); n != 0 {
		t.Errorf("NodeCount after clear = %d, want 0", n)
	}
}

func TestStoreRejectsEmptyInputs(t *testing.T) {
	store, _ := NewStore("proj", NewMemoryStore(), logging.Nop())

	if err := store.AddNode(Node{}); err == nil {
		t.Error("AddNode with empty id succeeded")
	}
	if err := store.AddEdge(Edge{Source: "a"}); err == nil {
		t.Error("AddEdge with empty target succeeded")
	}
	if _, err := store.RemoveNodesByRepo(""); err == nil {
		t.Error("RemoveNodesByRepo with empty repo succeeded")
	}
	if _, err := NewStore("", NewMemoryStore(), logging.Nop()); err == nil {
		t.Error("NewStore with empty project id succeeded")
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	doc := Document{
		Nodes: []Node{fileNode("server", "src/api.ts")},
		Edges: []Edge{{Source: "web:c.ts", Target: "server:src/api.ts", Kind: EdgeImports}},
	}
	if err := fs.Save("proj", doc); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, found, err := fs.Load("proj")
	if err != nil || !found {
		t.Fatalf("Load: found=%v err=%v", found, err)
	}
	if len(loaded.Nodes) != 1 || len(loaded.Edges) != 1 {
		t.Errorf("loaded %d nodes, %d edges, want 1/1", len(loaded.Nodes), len(loaded.Edges))
	}
}

func TestFileStoreMissingDocument(t *testing.T) {
	fs, _ := NewFileStore(t.TempDir())
	_, found, err := fs.Load("nope")
	if err != nil {
		t.Fatalf("Load of missing document errored: %v", err)
	}
	if found {
		t.Error("found = true for missing document")
	}
}

func TestFileStoreCorruptDocument(t *testing.T) {
	dir := t.TempDir()
	fs, _ := NewFileStore(dir)

	if err := os.WriteFile(filepath.Join(dir, "proj.json.gz"), []byte("not gzip at all"), 0644); err != nil {
		t.Fatal(err)
	}

	_, found, err := fs.Load("proj")
	if found {
		t.Error("found = true for corrupt document")
	}
	if err == nil {
		t.Error("corrupt document loaded without error detail")
	}

	// The store built on top treats this as an empty graph, not a failure
	store, storeErr := NewStore("proj", fs, logging.Nop())
	if storeErr != nil {
		t.Fatalf("NewStore over corrupt document failed: %v", storeErr)
	}
	if n := store.Snapshot().NodeCount(); n != 0 {
		t.Errorf("NodeCount = %d, want 0", n)
	}
}

func TestFileStoreSanitizesProjectID(t *testing.T) {
	fs, _ := NewFileStore(t.TempDir())
	if err := fs.Save("team/proj one", Document{}); err != nil {
		t.Fatalf("Save with awkward project id: %v", err)
	}
	if _, found, err := fs.Load("team/proj one"); err != nil || !found {
		t.Errorf("Load after save: found=%v err=%v", found, err)
	}
}

func TestFileStoreDelete(t *testing.T) {
	fs, _ := NewFileStore(t.TempDir())
	_ = fs.Save("proj", Document{})
	if err := fs.Delete("proj"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := fs.Delete("proj"); err != nil {
		t.Errorf("Delete of missing document errored: %v", err)
	}
}
