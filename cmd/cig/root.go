package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"cig/internal/classify"
	"cig/internal/config"
	"cig/internal/graph"
	"cig/internal/impact"
	"cig/internal/logging"
	"cig/internal/project"
	"cig/internal/scan"
	"cig/internal/version"
)

var (
	rootFlag     string
	manifestFlag string
	formatFlag   string
)

var rootCmd = &cobra.Command{
	Use:   "cig",
	Short: "cig - cross-impact graph",
	Long: `cig tracks which source files across a set of related repositories are
affected when a file changes, so a breaking change in one repository can be
flagged before it silently breaks a dependent one.

Repositories are declared per project in PROJECTS.toml; the dependency graph
is populated by an external indexer through 'cig graph' and analyzed with
'cig analyze'.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("cig version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", ".",
		"Working directory holding .cig/ and PROJECTS.toml")
	rootCmd.PersistentFlags().StringVar(&manifestFlag, "manifest", "",
		"Manifest path (default: <root>/PROJECTS.toml)")
	rootCmd.PersistentFlags().StringVar(&formatFlag, "format", "json",
		"Output format (json, human)")
}

// setup bundles everything a command needs.
type setup struct {
	cfg      *config.Config
	manifest *project.Manifest
	logger   *logging.Logger
}

func mustSetup() *setup {
	cfg, err := config.LoadConfig(rootFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(logging.Config{
		Format: logging.Format(cfg.Logging.Format),
		Level:  logging.LogLevel(cfg.Logging.Level),
	})

	manifestPath := manifestFlag
	if manifestPath == "" {
		manifestPath = filepath.Join(rootFlag, project.ManifestFile)
	}
	var manifest *project.Manifest
	if _, statErr := os.Stat(manifestPath); statErr == nil {
		manifest, err = project.Load(manifestPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	} else {
		logger.Debug("No manifest found, semantic scan will be skipped", map[string]interface{}{
			"path": manifestPath,
		})
	}

	return &setup{cfg: cfg, manifest: manifest, logger: logger}
}

// openDocStore builds the configured document backend. The returned closer
// is a no-op for backends without a connection.
func (s *setup) openDocStore() (graph.DocumentStore, func() error) {
	switch s.cfg.Store.Backend {
	case "sqlite":
		dbPath := s.storePath()
		if filepath.Ext(dbPath) == "" {
			dbPath = filepath.Join(dbPath, "cig.db")
		}
		store, err := graph.OpenSQLiteStore(dbPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening graph database: %v\n", err)
			os.Exit(1)
		}
		return store, store.Close
	case "memory":
		return graph.NewMemoryStore(), func() error { return nil }
	default:
		store, err := graph.NewFileStore(s.storePath())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening graph directory: %v\n", err)
			os.Exit(1)
		}
		return store, func() error { return nil }
	}
}

func (s *setup) storePath() string {
	if filepath.IsAbs(s.cfg.Store.Path) {
		return s.cfg.Store.Path
	}
	return filepath.Join(rootFlag, s.cfg.Store.Path)
}

func (s *setup) mustOpenStore(projectID string, docs graph.DocumentStore) *graph.Store {
	store, err := graph.NewStore(projectID, docs, s.logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return store
}

// buildAnalyzer wires the analyzer for one project: scanner when the
// manifest provides local checkouts, classifier when an API key is present.
func (s *setup) buildAnalyzer(projectID string, store *graph.Store) *impact.Analyzer {
	var scanner *scan.UsageScanner
	if s.manifest != nil {
		scanCfg := scan.Config{
			MaxFiles:            s.cfg.Scanner.MaxFiles,
			ContextLines:        s.cfg.Scanner.ContextLines,
			MinIdentifierLength: s.cfg.Scanner.MinIdentifierLength,
			Extensions:          s.cfg.Scanner.Extensions,
		}
		scanner = scan.NewUsageScanner(nil, scan.PathResolver(s.manifest.Resolver(projectID)), scanCfg, s.logger)
	}

	var classifier classify.Classifier
	if s.cfg.Classifier.Enabled {
		c, err := classify.NewOpenAIClassifier(s.cfg.Classifier, s.logger)
		if err != nil {
			s.logger.Info("Classifier unavailable, structural analysis only", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			classifier = c
		}
	}

	return impact.NewAnalyzer(store, scanner, classifier, s.logger)
}
