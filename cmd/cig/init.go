package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"cig/internal/config"
	"cig/internal/project"
)

var sampleManifest = `# Projects and their repositories.
# Repo ids must match the prefixes the indexer uses in graph node ids.

[[projects]]
id = "my-project"
name = "My Project"

  [[projects.repos]]
  id = "server"
  path = "../server"

  [[projects.repos]]
  id = "web-client"
  path = "../web-client"
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config and sample manifest",
	Args:  cobra.NoArgs,
	Run:   runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) {
	configPath := filepath.Join(rootFlag, config.ConfigDir, "config.json")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := config.DefaultConfig().Save(rootFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", configPath)
	} else {
		fmt.Printf("%s already exists, leaving it alone\n", configPath)
	}

	manifestPath := filepath.Join(rootFlag, project.ManifestFile)
	if _, err := os.Stat(manifestPath); os.IsNotExist(err) {
		if err := os.WriteFile(manifestPath, []byte(sampleManifest), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing manifest: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", manifestPath)
	} else {
		fmt.Printf("%s already exists, leaving it alone\n", manifestPath)
	}
}
