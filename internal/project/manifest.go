// Package project reads the PROJECTS.toml manifest that declares which
// repositories make up each project and where their local checkouts live.
package project

import (
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"

	"cig/internal/cigerr"
	"cig/internal/paths"
)

// ManifestFile is the conventional manifest filename.
const ManifestFile = "PROJECTS.toml"

// Repo is one repository belonging to a project.
type Repo struct {
	// ID is the repository identifier used in graph node ids
	ID string `toml:"id"`

	// Path is the local checkout, absolute or manifest-relative
	Path string `toml:"path"`

	// URL is the remote, informational only
	URL string `toml:"url,omitempty"`
}

// Project groups the repositories whose files may depend on each other.
type Project struct {
	ID    string `toml:"id"`
	Name  string `toml:"name,omitempty"`
	Repos []Repo `toml:"repos"`
}

// Manifest is the parsed PROJECTS.toml.
type Manifest struct {
	Projects []Project `toml:"projects"`

	baseDir string
}

// Load reads and validates a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cigerr.New(cigerr.ManifestInvalid, "failed to read manifest", err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, cigerr.New(cigerr.ManifestInvalid, "failed to parse manifest", err)
	}
	m.baseDir = filepath.Dir(path)

	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) validate() error {
	seenProjects := make(map[string]bool)
	for _, p := range m.Projects {
		if p.ID == "" {
			return cigerr.New(cigerr.ManifestInvalid, "project with empty id", nil)
		}
		if seenProjects[p.ID] {
			return cigerr.New(cigerr.ManifestInvalid,
				fmt.Sprintf("duplicate project id %q", p.ID), nil)
		}
		seenProjects[p.ID] = true

		seenRepos := make(map[string]bool)
		for _, r := range p.Repos {
			if r.ID == "" {
				return cigerr.New(cigerr.ManifestInvalid,
					fmt.Sprintf("project %q has a repo with empty id", p.ID), nil)
			}
			if seenRepos[r.ID] {
				return cigerr.New(cigerr.ManifestInvalid,
					fmt.Sprintf("project %q declares repo %q twice", p.ID, r.ID), nil)
			}
			seenRepos[r.ID] = true
		}
	}
	return nil
}

// Project returns the project with the given id.
func (m *Manifest) Project(id string) (*Project, error) {
	for i := range m.Projects {
		if m.Projects[i].ID == id {
			return &m.Projects[i], nil
		}
	}
	return nil, cigerr.New(cigerr.ProjectNotFound,
		fmt.Sprintf("project %q is not declared in the manifest", id), nil)
}

// RepoPath returns the local checkout root for a repo id within the project.
func (m *Manifest) RepoPath(projectID, repoID string) (string, bool) {
	p, err := m.Project(projectID)
	if err != nil {
		return "", false
	}
	for _, r := range p.Repos {
		if r.ID != repoID || r.Path == "" {
			continue
		}
		if filepath.IsAbs(r.Path) {
			return r.Path, true
		}
		return filepath.Join(m.baseDir, r.Path), true
	}
	return "", false
}

// Resolver adapts the manifest into the scanner's path resolver for one
// project: (repoId, repo-relative path) -> absolute path on disk.
func (m *Manifest) Resolver(projectID string) func(repoID, filePath string) (string, bool) {
	return func(repoID, filePath string) (string, bool) {
		root, ok := m.RepoPath(projectID, repoID)
		if !ok {
			return "", false
		}
		return filepath.Join(root, filepath.FromSlash(paths.NormalizeSlashes(filePath))), true
	}
}
