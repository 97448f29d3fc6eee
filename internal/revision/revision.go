// Package revision materializes file content at a source-control revision.
package revision

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"cig/internal/logging"
	"cig/internal/paths"
)

// ContentProvider returns a file's text content at a revision marker.
// available is false when the file does not exist at that revision; callers
// must tolerate either side of a diff being absent and skip classification
// accordingly.
type ContentProvider interface {
	FileContent(ctx context.Context, repoRoot, rev, filePath string) (content string, available bool, err error)
}

// GitProvider reads content with `git show <rev>:<path>`.
type GitProvider struct {
	logger *logging.Logger
}

// NewGitProvider creates a GitProvider.
func NewGitProvider(logger *logging.Logger) *GitProvider {
	return &GitProvider{logger: logger}
}

// FileContent implements ContentProvider. A path unknown at the revision is
// "not available", not an error; only a failure to run git at all is.
func (p *GitProvider) FileContent(ctx context.Context, repoRoot, rev, filePath string) (string, bool, error) {
	spec := rev + ":" + paths.NormalizeSlashes(filePath)
	cmd := exec.CommandContext(ctx, "git", "-C", repoRoot, "show", spec)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := stderr.String()
		if strings.Contains(msg, "does not exist") ||
			strings.Contains(msg, "exists on disk, but not in") ||
			strings.Contains(msg, "invalid object name") ||
			strings.Contains(msg, "bad revision") {
			p.logger.Debug("File not available at revision", map[string]interface{}{
				"rev":  rev,
				"path": filePath,
			})
			return "", false, nil
		}
		if _, isExit := err.(*exec.ExitError); isExit {
			// Any other git failure still just means the content is not
			// materializable; the analysis proceeds without it.
			return "", false, nil
		}
		return "", false, err
	}

	return stdout.String(), true, nil
}
