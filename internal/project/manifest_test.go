package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"cig/internal/cigerr"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ManifestFile)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const sampleManifest = `
[[projects]]
id = "shop"
name = "Shop Platform"

  [[projects.repos]]
  id = "server"
  path = "repos/server"

  [[projects.repos]]
  id = "web"
  path = "/abs/web"
  url = "https://example.com/web.git"
`

func TestLoadManifest(t *testing.T) {
	path := writeManifest(t, sampleManifest)

	m, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	p, err := m.Project("shop")
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "Shop Platform" || len(p.Repos) != 2 {
		t.Errorf("project = %+v", p)
	}
}

func TestLoadManifestErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty project id", "[[projects]]\nid = \"\"\n"},
		{"duplicate project id", "[[projects]]\nid = \"a\"\n[[projects]]\nid = \"a\"\n"},
		{"empty repo id", "[[projects]]\nid = \"a\"\n[[projects.repos]]\nid = \"\"\n"},
		{"duplicate repo id", "[[projects]]\nid = \"a\"\n" +
			"[[projects.repos]]\nid = \"r\"\n[[projects.repos]]\nid = \"r\"\n"},
		{"not toml", "{\"projects\": []}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeManifest(t, tt.content))
			var ce *cigerr.CigError
			if !errors.As(err, &ce) || ce.Code != cigerr.ManifestInvalid {
				t.Errorf("err = %v, want MANIFEST_INVALID", err)
			}
		})
	}
}

func TestLoadManifestMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil {
		t.Fatal("want error for missing manifest")
	}
}

func TestProjectNotFound(t *testing.T) {
	m, err := Load(writeManifest(t, sampleManifest))
	if err != nil {
		t.Fatal(err)
	}
	_, err = m.Project("other")
	var ce *cigerr.CigError
	if !errors.As(err, &ce) || ce.Code != cigerr.ProjectNotFound {
		t.Errorf("err = %v, want PROJECT_NOT_FOUND", err)
	}
}

func TestRepoPath(t *testing.T) {
	path := writeManifest(t, sampleManifest)
	m, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	rel, ok := m.RepoPath("shop", "server")
	if !ok || rel != filepath.Join(filepath.Dir(path), "repos/server") {
		t.Errorf("relative repo path = %q, %v", rel, ok)
	}

	abs, ok := m.RepoPath("shop", "web")
	if !ok || abs != "/abs/web" {
		t.Errorf("absolute repo path = %q, %v", abs, ok)
	}

	if _, ok := m.RepoPath("shop", "unknown"); ok {
		t.Error("unknown repo should not resolve")
	}
	if _, ok := m.RepoPath("other", "server"); ok {
		t.Error("unknown project should not resolve")
	}
}

func TestResolverJoinsRepoRelativePaths(t *testing.T) {
	path := writeManifest(t, sampleManifest)
	m, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	resolve := m.Resolver("shop")

	got, ok := resolve("server", `src\handlers\user.ts`)
	want := filepath.Join(filepath.Dir(path), "repos/server", "src", "handlers", "user.ts")
	if !ok || got != want {
		t.Errorf("resolve = %q, %v, want %q", got, ok, want)
	}

	if _, ok := resolve("unknown", "src/a.ts"); ok {
		t.Error("unknown repo should not resolve")
	}
}
