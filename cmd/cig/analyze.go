package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	godiff "github.com/sourcegraph/go-diff/diff"
	"github.com/spf13/cobra"

	"cig/internal/impact"
	"cig/internal/revision"
)

var (
	analyzeOldFile string
	analyzeNewFile string
	analyzeOldRev  string
	analyzeNewRev  string
	analyzeDiff    string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <projectId> <repoId> [filePath]",
	Short: "Analyze the cross-repository impact of a file change",
	Long: `Analyze which files in other repositories are affected by a change.

Old and new content can come from literal files (--old-file/--new-file), from
git revisions of the repository's local checkout (--old-rev/--new-rev), or be
omitted entirely, in which case only structural import analysis runs.

With --diff, changed file paths are read from a unified diff (use '-' for
stdin) and each is analyzed in turn.

Examples:
  cig analyze web-project server src/api.ts --old-rev=HEAD~1 --new-rev=HEAD
  cig analyze web-project server src/api.ts --old-file=/tmp/old.ts --new-file=/tmp/new.ts
  git diff HEAD~1 | cig analyze web-project server --diff=-`,
	Args: cobra.RangeArgs(2, 3),
	Run:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeOldFile, "old-file", "", "File holding the old content")
	analyzeCmd.Flags().StringVar(&analyzeNewFile, "new-file", "", "File holding the new content")
	analyzeCmd.Flags().StringVar(&analyzeOldRev, "old-rev", "", "Git revision for the old content")
	analyzeCmd.Flags().StringVar(&analyzeNewRev, "new-rev", "", "Git revision for the new content")
	analyzeCmd.Flags().StringVar(&analyzeDiff, "diff", "", "Unified diff file, or '-' for stdin")
	rootCmd.AddCommand(analyzeCmd)
}

// analysisEnvelope wraps CLI output so results can be correlated by callers.
type analysisEnvelope struct {
	ID      string                 `json:"id"`
	Results []*impact.ImpactResult `json:"results"`
}

func runAnalyze(cmd *cobra.Command, args []string) {
	s := mustSetup()
	projectID, repoID := args[0], args[1]

	var filePaths []string
	if analyzeDiff != "" {
		filePaths = mustDiffPaths(analyzeDiff)
		if len(filePaths) == 0 {
			fmt.Fprintln(os.Stderr, "No changed files in diff")
			os.Exit(1)
		}
	} else {
		if len(args) < 3 {
			fmt.Fprintln(os.Stderr, "filePath is required unless --diff is given")
			os.Exit(1)
		}
		filePaths = []string{args[2]}
	}

	docs, closeDocs := s.openDocStore()
	defer closeDocs()
	store := s.mustOpenStore(projectID, docs)
	analyzer := s.buildAnalyzer(projectID, store)

	ctx := context.Background()
	envelope := analysisEnvelope{ID: uuid.New().String()}
	for _, filePath := range filePaths {
		oldContent, newContent := mustContents(ctx, s, projectID, repoID, filePath)
		result, err := analyzer.AnalyzeFileChange(ctx, projectID, repoID, filePath, oldContent, newContent)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error analyzing %s: %v\n", filePath, err)
			os.Exit(1)
		}
		envelope.Results = append(envelope.Results, result)
	}

	printEnvelope(envelope)
}

// mustContents materializes old/new content from flags. Missing content on
// either side is tolerated; the analyzer skips classification.
func mustContents(ctx context.Context, s *setup, projectID, repoID, filePath string) (string, string) {
	oldContent := mustReadFlagFile(analyzeOldFile)
	newContent := mustReadFlagFile(analyzeNewFile)

	if (analyzeOldRev != "" || analyzeNewRev != "") && s.manifest != nil {
		repoRoot, ok := s.manifest.RepoPath(projectID, repoID)
		if !ok {
			s.logger.Warn("Repo has no local checkout, skipping revision content", map[string]interface{}{
				"repoId": repoID,
			})
			return oldContent, newContent
		}
		provider := revision.NewGitProvider(s.logger)
		if analyzeOldRev != "" && oldContent == "" {
			if content, ok, err := provider.FileContent(ctx, repoRoot, analyzeOldRev, filePath); err == nil && ok {
				oldContent = content
			}
		}
		if analyzeNewRev != "" && newContent == "" {
			if content, ok, err := provider.FileContent(ctx, repoRoot, analyzeNewRev, filePath); err == nil && ok {
				newContent = content
			}
		}
	}

	return oldContent, newContent
}

func mustReadFlagFile(path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", path, err)
		os.Exit(1)
	}
	return string(data)
}

// mustDiffPaths extracts changed file paths from a unified diff.
func mustDiffPaths(source string) []string {
	var data []byte
	var err error
	if source == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading diff: %v\n", err)
		os.Exit(1)
	}

	fileDiffs, err := godiff.ParseMultiFileDiff(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing diff: %v\n", err)
		os.Exit(1)
	}

	seen := make(map[string]bool)
	var out []string
	for _, fd := range fileDiffs {
		p := cleanDiffPath(fd.NewName)
		if p == "" {
			p = cleanDiffPath(fd.OrigName)
		}
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// cleanDiffPath strips the a/ b/ prefixes git puts on diff paths.
func cleanDiffPath(name string) string {
	if name == "" || name == "/dev/null" {
		return ""
	}
	if strings.HasPrefix(name, "a/") || strings.HasPrefix(name, "b/") {
		return name[2:]
	}
	return name
}

func printEnvelope(envelope analysisEnvelope) {
	if formatFlag == "human" {
		for _, r := range envelope.Results {
			printHumanResult(r)
		}
		return
	}
	data, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding result: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}

func printHumanResult(r *impact.ImpactResult) {
	fmt.Printf("%s:%s  breaking=%v  severity=%s\n", r.ChangedRepo, r.ChangedFile, r.IsBreaking, r.Severity)
	fmt.Printf("  %s\n", r.Explanation)
	for _, f := range r.AffectedFiles {
		fmt.Printf("  - %s:%s  (%s)\n", f.RepoID, f.FilePath, f.Reason)
		if f.Context != "" {
			for _, line := range strings.Split(f.Context, "\n") {
				fmt.Printf("      %s\n", line)
			}
		}
	}
}
