package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cig/internal/graph"
	"cig/internal/logging"
)

// writeRepoFile creates a repo-relative file under root and returns a
// resolver-shaped mapping for it.
func writeRepoFile(t *testing.T, root, relPath, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func dirResolver(roots map[string]string) PathResolver {
	return func(repoID, filePath string) (string, bool) {
		root, ok := roots[repoID]
		if !ok {
			return "", false
		}
		return filepath.Join(root, filepath.FromSlash(filePath)), true
	}
}

func fileNode(repoID, filePath string) graph.Node {
	return graph.Node{
		ID:   repoID + ":" + filePath,
		Kind: graph.KindFile,
		Meta: graph.NodeMeta{RepoID: repoID},
	}
}

func newTestScanner(roots map[string]string) *UsageScanner {
	return NewUsageScanner(nil, dirResolver(roots), DefaultConfig(), logging.Nop())
}

func TestScanFindsUsageWithContext(t *testing.T) {
	root := t.TempDir()

	// getUser( sits on line 42 (1-based)
	var b strings.Builder
	for i := 1; i <= 45; i++ {
		if i == 42 {
			b.WriteString("  const user = await getUser(id);\n")
			continue
		}
		fmt.Fprintf(&b, "// line %d\n", i)
	}
	writeRepoFile(t, root, "src/consumer.ts", b.String())

	g := graph.NewGraph()
	g.AddNode(fileNode("repo-c", "src/consumer.ts"))

	hits := newTestScanner(map[string]string{"repo-c": root}).Scan(g, "server", []string{"getUser"})
	if len(hits) != 1 {
		t.Fatalf("hits = %d, want 1", len(hits))
	}

	h := hits[0]
	if h.RepoID != "repo-c" || h.FilePath != "src/consumer.ts" {
		t.Errorf("hit = %+v", h)
	}
	if !strings.Contains(h.Reason, "getUser") {
		t.Errorf("Reason = %q, want identifier named", h.Reason)
	}

	// Context spans lines 40-44, 1-based numbers, marker on the match
	for _, n := range []string{"40:", "41:", "42:", "43:", "44:"} {
		if !strings.Contains(h.Context, n) {
			t.Errorf("Context missing line %s\n%s", n, h.Context)
		}
	}
	if strings.Contains(h.Context, "39:") || strings.Contains(h.Context, "45:") {
		t.Errorf("Context window too wide:\n%s", h.Context)
	}
	if !strings.Contains(h.Context, "> 42:") {
		t.Errorf("matched line not marked:\n%s", h.Context)
	}
}

func TestScanOneHitPerFileIdentifierPair(t *testing.T) {
	root := t.TempDir()
	writeRepoFile(t, root, "src/a.ts", "getUser()\ngetUser()\ngetUser()\n")

	g := graph.NewGraph()
	g.AddNode(fileNode("web", "src/a.ts"))

	hits := newTestScanner(map[string]string{"web": root}).Scan(g, "server", []string{"getUser"})
	if len(hits) != 1 {
		t.Errorf("hits = %d, want 1 (first matching line only)", len(hits))
	}
}

func TestScanMultipleIdentifiersSameFile(t *testing.T) {
	root := t.TempDir()
	writeRepoFile(t, root, "src/a.ts", "getUser()\ndeleteUser()\n")

	g := graph.NewGraph()
	g.AddNode(fileNode("web", "src/a.ts"))

	hits := newTestScanner(map[string]string{"web": root}).Scan(g, "server", []string{"getUser", "deleteUser"})
	if len(hits) != 2 {
		t.Errorf("hits = %d, want 2 (one per identifier)", len(hits))
	}
}

func TestScanFiltersShortIdentifiers(t *testing.T) {
	root := t.TempDir()
	writeRepoFile(t, root, "src/a.ts", "ab cd getUser\n")

	g := graph.NewGraph()
	g.AddNode(fileNode("web", "src/a.ts"))

	hits := newTestScanner(map[string]string{"web": root}).Scan(g, "server", []string{"ab", "cd"})
	if len(hits) != 0 {
		t.Errorf("hits = %d, want 0 (identifiers under 3 chars discarded)", len(hits))
	}
}

func TestScanSkipsSourceRepoAndNonSourceFiles(t *testing.T) {
	root := t.TempDir()
	writeRepoFile(t, root, "src/a.ts", "getUser()\n")
	writeRepoFile(t, root, "README.md", "getUser()\n")

	g := graph.NewGraph()
	g.AddNode(fileNode("server", "src/a.ts")) // source repo itself
	g.AddNode(fileNode("web", "README.md"))   // wrong extension
	g.AddNode(fileNode("web", "src/a.ts"))

	hits := newTestScanner(map[string]string{"server": root, "web": root}).Scan(g, "server", []string{"getUser"})
	if len(hits) != 1 {
		t.Fatalf("hits = %d, want 1", len(hits))
	}
	if hits[0].RepoID != "web" || hits[0].FilePath != "src/a.ts" {
		t.Errorf("hit = %+v", hits[0])
	}
}

func TestScanSkipsMissingFilesSilently(t *testing.T) {
	root := t.TempDir()
	writeRepoFile(t, root, "src/real.ts", "getUser()\n")

	g := graph.NewGraph()
	g.AddNode(fileNode("web", "src/missing.ts")) // indexed but not on disk
	g.AddNode(fileNode("web", "src/real.ts"))

	hits := newTestScanner(map[string]string{"web": root}).Scan(g, "server", []string{"getUser"})
	if len(hits) != 1 {
		t.Errorf("hits = %d, want 1 (missing file skipped, scan continues)", len(hits))
	}
}

func TestScanHonorsFileCapInInsertionOrder(t *testing.T) {
	root := t.TempDir()
	writeRepoFile(t, root, "first.ts", "getUser()\n")
	writeRepoFile(t, root, "second.ts", "getUser()\n")
	writeRepoFile(t, root, "third.ts", "getUser()\n")

	g := graph.NewGraph()
	g.AddNode(fileNode("web", "first.ts"))
	g.AddNode(fileNode("web", "second.ts"))
	g.AddNode(fileNode("web", "third.ts"))

	cfg := DefaultConfig()
	cfg.MaxFiles = 2
	scanner := NewUsageScanner(nil, dirResolver(map[string]string{"web": root}), cfg, logging.Nop())

	hits := scanner.Scan(g, "server", []string{"getUser"})
	if len(hits) != 2 {
		t.Fatalf("hits = %d, want 2 (cap applied)", len(hits))
	}
	if hits[0].FilePath != "first.ts" || hits[1].FilePath != "second.ts" {
		t.Errorf("cap not applied in insertion order: %+v", hits)
	}
}

func TestScanContextAtFileBoundaries(t *testing.T) {
	root := t.TempDir()
	writeRepoFile(t, root, "src/a.ts", "getUser()\nline two\n")

	g := graph.NewGraph()
	g.AddNode(fileNode("web", "src/a.ts"))

	hits := newTestScanner(map[string]string{"web": root}).Scan(g, "server", []string{"getUser"})
	if len(hits) != 1 {
		t.Fatalf("hits = %d, want 1", len(hits))
	}
	if !strings.HasPrefix(hits[0].Context, "> 1:") {
		t.Errorf("context at top of file should start at line 1:\n%s", hits[0].Context)
	}
}
