package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cig/internal/graph"
	"cig/internal/paths"
)

var (
	nodeKindFlag  string
	nodeLabelFlag string
	nodeRepoFlag  string
	edgeKindFlag  string
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Inspect and mutate a project's dependency graph",
	Long: `Graph mutation commands, normally driven by an external indexer.

Node ids follow the "<repoId>:<filePath>" convention. Inserting an existing
node id updates it in place; inserting a duplicate (source, target, kind)
edge is a no-op.`,
}

var graphAddNodeCmd = &cobra.Command{
	Use:   "add-node <projectId> <nodeId>",
	Short: "Add or update a node",
	Args:  cobra.ExactArgs(2),
	Run:   runGraphAddNode,
}

var graphAddEdgeCmd = &cobra.Command{
	Use:   "add-edge <projectId> <sourceId> <targetId>",
	Short: "Add an edge",
	Args:  cobra.ExactArgs(3),
	Run:   runGraphAddEdge,
}

var graphRemoveRepoCmd = &cobra.Command{
	Use:   "remove-repo <projectId> <repoId>",
	Short: "Remove every node owned by a repository, cascading edge removal",
	Args:  cobra.ExactArgs(2),
	Run:   runGraphRemoveRepo,
}

var graphStatsCmd = &cobra.Command{
	Use:   "stats <projectId>",
	Short: "Show node and edge counts",
	Args:  cobra.ExactArgs(1),
	Run:   runGraphStats,
}

var graphClearCmd = &cobra.Command{
	Use:   "clear <projectId>",
	Short: "Reset the project's graph to empty",
	Args:  cobra.ExactArgs(1),
	Run:   runGraphClear,
}

func init() {
	graphAddNodeCmd.Flags().StringVar(&nodeKindFlag, "kind", string(graph.KindFile), "Node kind (FILE, FUNCTION, API, COMPONENT)")
	graphAddNodeCmd.Flags().StringVar(&nodeLabelFlag, "label", "", "Display label (default: path basename)")
	graphAddNodeCmd.Flags().StringVar(&nodeRepoFlag, "repo", "", "Owning repo id (default: id prefix)")
	graphAddEdgeCmd.Flags().StringVar(&edgeKindFlag, "kind", string(graph.EdgeImports), "Edge kind (IMPORTS, CALLS, DEFINES, EXPOSES, USED_BY)")

	graphCmd.AddCommand(graphAddNodeCmd)
	graphCmd.AddCommand(graphAddEdgeCmd)
	graphCmd.AddCommand(graphRemoveRepoCmd)
	graphCmd.AddCommand(graphStatsCmd)
	graphCmd.AddCommand(graphClearCmd)
	rootCmd.AddCommand(graphCmd)
}

func withStore(projectID string, fn func(*setup, *graph.Store)) {
	s := mustSetup()
	docs, closeDocs := s.openDocStore()
	defer closeDocs()
	store := s.mustOpenStore(projectID, docs)
	fn(s, store)
}

func runGraphAddNode(cmd *cobra.Command, args []string) {
	projectID, nodeID := args[0], args[1]
	withStore(projectID, func(s *setup, store *graph.Store) {
		repoID := nodeRepoFlag
		if repoID == "" {
			repoID = paths.RepoOf(nodeID)
		}
		label := nodeLabelFlag
		if label == "" {
			_, filePath := paths.SplitNodeID(nodeID)
			label = paths.Basename(filePath)
		}
		node := graph.Node{
			ID:    nodeID,
			Kind:  graph.NodeKind(nodeKindFlag),
			Label: label,
			Meta:  graph.NodeMeta{RepoID: repoID},
		}
		if err := store.AddNode(node); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	})
}

func runGraphAddEdge(cmd *cobra.Command, args []string) {
	projectID, source, target := args[0], args[1], args[2]
	withStore(projectID, func(s *setup, store *graph.Store) {
		edge := graph.Edge{
			Source: source,
			Target: target,
			Kind:   graph.EdgeKind(edgeKindFlag),
		}
		if err := store.AddEdge(edge); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	})
}

func runGraphRemoveRepo(cmd *cobra.Command, args []string) {
	projectID, repoID := args[0], args[1]
	withStore(projectID, func(s *setup, store *graph.Store) {
		removed, err := store.RemoveNodesByRepo(repoID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Removed %d nodes\n", removed)
	})
}

func runGraphStats(cmd *cobra.Command, args []string) {
	withStore(args[0], func(s *setup, store *graph.Store) {
		snapshot := store.Snapshot()
		stats := map[string]interface{}{
			"projectId": args[0],
			"nodes":     snapshot.NodeCount(),
			"edges":     snapshot.EdgeCount(),
		}
		data, _ := json.MarshalIndent(stats, "", "  ")
		fmt.Println(string(data))
	})
}

func runGraphClear(cmd *cobra.Command, args []string) {
	withStore(args[0], func(s *setup, store *graph.Store) {
		if err := store.Clear(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	})
}
