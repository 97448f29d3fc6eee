package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"cig/internal/revision"
	"cig/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch <projectId>",
	Short: "Watch local checkouts and re-analyze changed files",
	Long: `Watch the project's local repository checkouts and run an impact analysis
for every changed source file, using the file's HEAD content as the old side
of the diff and the on-disk content as the new side.`,
	Args: cobra.ExactArgs(1),
	Run:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) {
	s := mustSetup()
	projectID := args[0]

	if s.manifest == nil {
		fmt.Fprintln(os.Stderr, "watch requires a PROJECTS.toml manifest")
		os.Exit(1)
	}
	proj, err := s.manifest.Project(projectID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	repos := make(map[string]string)
	for _, r := range proj.Repos {
		if root, ok := s.manifest.RepoPath(projectID, r.ID); ok {
			repos[r.ID] = root
		}
	}
	if len(repos) == 0 {
		fmt.Fprintln(os.Stderr, "No repositories with local checkouts to watch")
		os.Exit(1)
	}

	docs, closeDocs := s.openDocStore()
	defer closeDocs()
	store := s.mustOpenStore(projectID, docs)
	analyzer := s.buildAnalyzer(projectID, store)
	provider := revision.NewGitProvider(s.logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := watcher.New(repos, watcher.Config{
		PollInterval:   time.Duration(s.cfg.Watcher.PollIntervalMs) * time.Millisecond,
		Debounce:       time.Duration(s.cfg.Watcher.DebounceMs) * time.Millisecond,
		IgnorePatterns: s.cfg.Watcher.IgnorePatterns,
		Extensions:     s.cfg.Scanner.Extensions,
	}, s.logger)

	w.Run(ctx, func(changes []watcher.Change) {
		for _, change := range changes {
			repoRoot := repos[change.RepoID]

			oldContent := ""
			if content, ok, err := provider.FileContent(ctx, repoRoot, "HEAD", change.FilePath); err == nil && ok {
				oldContent = content
			}
			newContent := ""
			if data, err := os.ReadFile(repoRoot + "/" + change.FilePath); err == nil {
				newContent = string(data)
			}

			result, err := analyzer.AnalyzeFileChange(ctx, projectID, change.RepoID, change.FilePath, oldContent, newContent)
			if err != nil {
				s.logger.Error("Analysis failed", map[string]interface{}{
					"repoId":   change.RepoID,
					"filePath": change.FilePath,
					"error":    err.Error(),
				})
				continue
			}
			printHumanResult(result)
		}
	})
}
