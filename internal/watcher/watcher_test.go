package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cig/internal/logging"
)

func TestWatcherReportsNewFilesWhilePolling(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "existing.ts"), []byte("a\n"), 0644); err != nil {
		t.Fatal(err)
	}

	w := New(map[string]string{"web": root}, Config{
		PollInterval: 2 * time.Millisecond,
		Debounce:     5 * time.Millisecond,
		Extensions:   []string{".ts"},
	}, logging.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan []Change, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx, func(changes []Change) {
			select {
			case got <- changes:
			default:
			}
		})
	}()

	// Keep writing while the poll loop runs so the batch is assembled
	// concurrently with emission.
	for i := 0; i < 3; i++ {
		time.Sleep(5 * time.Millisecond)
		if err := os.WriteFile(filepath.Join(root, "new.ts"), []byte("b\n"), 0644); err != nil {
			t.Fatal(err)
		}
		now := time.Now().Add(time.Duration(i+1) * time.Second)
		if err := os.Chtimes(filepath.Join(root, "new.ts"), now, now); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case changes := <-got:
		found := false
		for _, c := range changes {
			if c.RepoID == "web" && c.FilePath == "new.ts" {
				found = true
			}
		}
		if !found {
			t.Errorf("changes = %+v, want new.ts reported", changes)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no change batch within 2s")
	}

	cancel()
	<-done
}

func TestWatcherIgnoresFilteredFiles(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "node_modules"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "node_modules", "dep.ts"), []byte("a\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "notes.md"), []byte("a\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "src.ts"), []byte("a\n"), 0644); err != nil {
		t.Fatal(err)
	}

	w := New(map[string]string{"web": root}, Config{
		PollInterval:   time.Millisecond,
		IgnorePatterns: []string{"node_modules"},
		Extensions:     []string{".ts"},
	}, logging.Nop())

	snap := w.snapshot()
	if len(snap) != 1 {
		t.Fatalf("snapshot size = %d, want only src.ts", len(snap))
	}
	for key := range snap {
		if key.relPath != "src.ts" {
			t.Errorf("snapshot key = %+v", key)
		}
	}
}

func TestDiffSnapshotsDetectsNewAndModified(t *testing.T) {
	base := time.Now()
	prev := map[fileKey]time.Time{
		{repoID: "web", relPath: "a.ts"}: base,
		{repoID: "web", relPath: "b.ts"}: base,
	}
	current := map[fileKey]time.Time{
		{repoID: "web", relPath: "a.ts"}: base,                  // unchanged
		{repoID: "web", relPath: "b.ts"}: base.Add(time.Second), // modified
		{repoID: "web", relPath: "c.ts"}: base,                  // new
	}

	changes := diffSnapshots(prev, current)
	if len(changes) != 2 {
		t.Fatalf("changes = %+v, want b.ts and c.ts", changes)
	}
	seen := make(map[string]bool)
	for _, c := range changes {
		seen[c.FilePath] = true
	}
	if !seen["b.ts"] || !seen["c.ts"] {
		t.Errorf("changes = %+v", changes)
	}
}
