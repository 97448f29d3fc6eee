package scan

import (
	"fmt"
	"os"
	"strings"

	"cig/internal/graph"
	"cig/internal/logging"
	"cig/internal/paths"
)

// PathResolver maps a (repoId, repo-relative file path) pair to an absolute
// path in a local working copy. ok is false when the repo has no local
// checkout, which skips the file.
type PathResolver func(repoID, filePath string) (absPath string, ok bool)

// Hit is one (file, identifier) usage found on disk.
type Hit struct {
	RepoID     string
	FilePath   string
	Identifier string
	Reason     string
	Context    string
}

// Config bounds the scan.
type Config struct {
	MaxFiles            int
	ContextLines        int
	MinIdentifierLength int
	Extensions          []string
}

// DefaultConfig returns the scan limits used when no config is supplied.
func DefaultConfig() Config {
	return Config{
		MaxFiles:            500,
		ContextLines:        2,
		MinIdentifierLength: 3,
		Extensions: []string{
			".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs",
			".go", ".py", ".rb", ".java", ".kt", ".swift",
			".dart", ".cs", ".php", ".vue", ".svelte",
		},
	}
}

// UsageScanner finds textual occurrences of changed identifiers in the
// working copies of repositories other than the one that changed.
type UsageScanner struct {
	matcher UsageMatcher
	resolve PathResolver
	cfg     Config
	exts    map[string]bool
	logger  *logging.Logger
}

// NewUsageScanner creates a scanner. A nil matcher gets the regexp heuristic.
func NewUsageScanner(matcher UsageMatcher, resolve PathResolver, cfg Config, logger *logging.Logger) *UsageScanner {
	if matcher == nil {
		matcher = NewRegexpMatcher()
	}
	exts := make(map[string]bool, len(cfg.Extensions))
	for _, e := range cfg.Extensions {
		exts[strings.ToLower(e)] = true
	}
	return &UsageScanner{
		matcher: matcher,
		resolve: resolve,
		cfg:     cfg,
		exts:    exts,
		logger:  logger,
	}
}

// Scan checks every candidate file for every candidate identifier and
// returns one hit per (file, identifier) pair, first matching line only.
//
// Candidate files are the graph's FILE nodes outside sourceRepo with a known
// source extension, in indexer insertion order, capped at MaxFiles.
// Identifiers shorter than the configured minimum are discarded as noise.
// Files missing on disk are skipped silently; the local working copy lagging
// the indexed graph is expected.
func (s *UsageScanner) Scan(g *graph.Graph, sourceRepo string, identifiers []string) []Hit {
	candidates := s.candidateIdentifiers(identifiers)
	if len(candidates) == 0 {
		return nil
	}

	var hits []Hit
	scanned := 0
	for _, node := range g.Nodes() {
		if scanned >= s.cfg.MaxFiles {
			break
		}
		repoID, filePath, ok := s.candidateFile(node, sourceRepo)
		if !ok {
			continue
		}
		scanned++

		absPath, ok := s.resolve(repoID, filePath)
		if !ok {
			continue
		}
		content, err := os.ReadFile(absPath)
		if err != nil {
			s.logger.Debug("Skipping unreadable candidate file", map[string]interface{}{
				"path":  absPath,
				"error": err.Error(),
			})
			continue
		}
		lines := strings.Split(string(content), "\n")

		for _, ident := range candidates {
			lineIdx := s.matcher.FirstMatch(lines, ident)
			if lineIdx < 0 {
				continue
			}
			hits = append(hits, Hit{
				RepoID:     repoID,
				FilePath:   filePath,
				Identifier: ident,
				Reason:     "Uses modified function: " + ident,
				Context:    formatContext(lines, lineIdx, s.cfg.ContextLines),
			})
		}
	}

	return hits
}

func (s *UsageScanner) candidateIdentifiers(identifiers []string) []string {
	out := make([]string, 0, len(identifiers))
	for _, ident := range identifiers {
		if len(ident) < s.cfg.MinIdentifierLength {
			continue
		}
		out = append(out, ident)
	}
	return out
}

func (s *UsageScanner) candidateFile(node graph.Node, sourceRepo string) (repoID, filePath string, ok bool) {
	if node.Kind != graph.KindFile {
		return "", "", false
	}
	repoID, filePath = paths.SplitNodeID(node.ID)
	if node.Meta.RepoID != "" {
		repoID = node.Meta.RepoID
	}
	if repoID == "" || repoID == sourceRepo {
		return "", "", false
	}
	if !s.exts[paths.Extension(filePath)] {
		return "", "", false
	}
	return repoID, filePath, true
}

// formatContext renders the matched line with surrounding context, each line
// prefixed with its 1-based number and the matched line marked.
func formatContext(lines []string, matchIdx, contextLines int) string {
	start := matchIdx - contextLines
	if start < 0 {
		start = 0
	}
	end := matchIdx + contextLines
	if end > len(lines)-1 {
		end = len(lines) - 1
	}

	var b strings.Builder
	for i := start; i <= end; i++ {
		marker := "  "
		if i == matchIdx {
			marker = "> "
		}
		fmt.Fprintf(&b, "%s%d: %s", marker, i+1, lines[i])
		if i < end {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
