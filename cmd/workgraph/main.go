// Package main provides the workgraph CLI entry point.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/workgraphdb/workgraph/pkg/config"
	"github.com/workgraphdb/workgraph/pkg/graph"
	"github.com/workgraphdb/workgraph/pkg/pathquery"
	"github.com/workgraphdb/workgraph/pkg/traverse"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "workgraph",
		Short: "workgraph - Graph queries over work-item dependencies",
		Long: `workgraph answers structural questions over a directed graph of
work items: shortest dependency paths, full blocking chains, cycles,
reachability, and path-expression queries.

Every traversal is bounded by depth or result count, so queries always
terminate without timeouts.`,
	}

	rootCmd.PersistentFlags().String("graph", "", "Path to a JSON graph export")
	rootCmd.PersistentFlags().String("data-dir", "", "Badger data directory (used when --graph is not set)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("workgraph v%s (%s)\n", version, commit)
		},
	})

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new badger-backed graph database",
		RunE:  runInit,
	}
	rootCmd.AddCommand(initCmd)

	loadCmd := &cobra.Command{
		Use:   "load [export.json]",
		Short: "Load a JSON graph export into the badger store",
		Args:  cobra.ExactArgs(1),
		RunE:  runLoad,
	}
	rootCmd.AddCommand(loadCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show node and edge counts",
		RunE:  runStats,
	})

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Find paths between two work items",
		RunE:  runPath,
	}
	pathCmd.Flags().String("from", "", "Source node id (required)")
	pathCmd.Flags().String("to", "", "Target node id (required)")
	pathCmd.Flags().Bool("all", false, "Return every shortest path instead of one")
	pathCmd.Flags().Bool("bounded", false, "Enumerate all simple paths up to --max-depth")
	pathCmd.Flags().Int("max-depth", 0, "Depth bound (0 uses the default)")
	pathCmd.Flags().Int("max-results", 0, "Result bound for --bounded (0 uses the default)")
	pathCmd.Flags().StringSlice("rel", nil, "Restrict to these relationship types")
	_ = pathCmd.MarkFlagRequired("from")
	_ = pathCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(pathCmd)

	cyclesCmd := &cobra.Command{
		Use:   "cycles",
		Short: "Detect dependency cycles",
		RunE:  runCycles,
	}
	cyclesCmd.Flags().String("anchor", "", "Only cycles through this node (default: whole graph)")
	cyclesCmd.Flags().Int("max-length", 0, "Cycle length bound (0 uses the default)")
	cyclesCmd.Flags().StringSlice("rel", nil, "Restrict to these relationship types")
	rootCmd.AddCommand(cyclesCmd)

	reachCmd := &cobra.Command{
		Use:   "reach",
		Short: "List every node reachable from a work item",
		RunE:  runReach,
	}
	reachCmd.Flags().String("from", "", "Origin node id (required)")
	reachCmd.Flags().String("direction", "outgoing", "outgoing, incoming, or both")
	reachCmd.Flags().Int("max-depth", 0, "Depth bound (0 uses the default)")
	reachCmd.Flags().StringSlice("rel", nil, "Restrict to these relationship types")
	_ = reachCmd.MarkFlagRequired("from")
	rootCmd.AddCommand(reachCmd)

	queryCmd := &cobra.Command{
		Use:   "query [expression]",
		Short: "Run a path expression",
		Long: `Run a path-expression query, for example:

  workgraph query "(Feature WHERE status='blocked')-[blocked_by]->(Feature)"
  workgraph query "(Task)-[depends_on]->+(Task WHERE status='done')"`,
		Args: cobra.ExactArgs(1),
		RunE: runQuery,
	}
	rootCmd.AddCommand(queryCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openStore resolves the persistent flags into a loaded store. A --graph
// JSON export wins; otherwise a badger store is opened at --data-dir (or
// the configured default).
func openStore(cmd *cobra.Command) (graph.Store, func(), error) {
	cfg := config.LoadFromEnv()

	if path, _ := cmd.Flags().GetString("graph"); path != "" {
		store, err := graph.LoadExport(path)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}

	dataDir, _ := cmd.Flags().GetString("data-dir")
	if dataDir == "" {
		dataDir = cfg.DataDir
	}

	store, err := graph.NewBadgerStore(dataDir)
	if err != nil {
		return nil, nil, err
	}
	if err := store.EnsureLoaded(); err != nil {
		store.Close()
		return nil, nil, err
	}
	return store, func() { store.Close() }, nil
}

func newFinder(store graph.Store) *traverse.Finder {
	cfg := config.LoadFromEnv()
	return traverse.NewFinderWithDepth(store, cfg.MaxDepth)
}

func runInit(cmd *cobra.Command, args []string) error {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	if dataDir == "" {
		dataDir = config.LoadFromEnv().DataDir
	}

	store, err := graph.NewBadgerStore(dataDir)
	if err != nil {
		return fmt.Errorf("initialize %s: %w", dataDir, err)
	}
	defer store.Close()

	fmt.Printf("Initialized graph database at %s\n", dataDir)
	return nil
}

func runLoad(cmd *cobra.Command, args []string) error {
	snapshot, err := graph.LoadExport(args[0])
	if err != nil {
		return err
	}

	dataDir, _ := cmd.Flags().GetString("data-dir")
	if dataDir == "" {
		dataDir = config.LoadFromEnv().DataDir
	}

	store, err := graph.NewBadgerStore(dataDir)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.EnsureLoaded(); err != nil {
		return err
	}

	for _, n := range snapshot.All() {
		if err := store.AddNode(n); err != nil {
			return fmt.Errorf("import node %s: %w", n.ID, err)
		}
	}
	for _, e := range snapshot.Edges() {
		if err := store.AddEdge(e); err != nil {
			return fmt.Errorf("import edge %s->%s: %w", e.From, e.To, err)
		}
	}

	fmt.Printf("Loaded %d nodes, %d edges into %s\n",
		snapshot.NodeCount(), snapshot.EdgeCount(), dataDir)
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	store, closeStore, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	byType := make(map[string]int)
	for _, n := range store.All() {
		byType[n.Type]++
	}
	byRel := make(map[string]int)
	for _, e := range store.Edges() {
		byRel[e.Rel]++
	}

	return printJSON(map[string]any{
		"nodes":   store.NodeCount(),
		"edges":   store.EdgeCount(),
		"by_type": byType,
		"by_rel":  byRel,
	})
}

func runPath(cmd *cobra.Command, args []string) error {
	store, closeStore, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	all, _ := cmd.Flags().GetBool("all")
	bounded, _ := cmd.Flags().GetBool("bounded")
	maxDepth, _ := cmd.Flags().GetInt("max-depth")
	maxResults, _ := cmd.Flags().GetInt("max-results")
	rels, _ := cmd.Flags().GetStringSlice("rel")

	finder := newFinder(store)

	switch {
	case bounded:
		paths := finder.BoundedPaths(graph.NodeID(from), graph.NodeID(to), maxDepth, maxResults, rels)
		return printJSON(paths)
	case all:
		paths := finder.AllShortest(graph.NodeID(from), graph.NodeID(to), rels)
		return printJSON(paths)
	default:
		p := finder.AnyShortest(graph.NodeID(from), graph.NodeID(to), rels)
		if p == nil {
			fmt.Printf("No path from %s to %s\n", from, to)
			return nil
		}
		return printJSON(p)
	}
}

func runCycles(cmd *cobra.Command, args []string) error {
	store, closeStore, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	anchor, _ := cmd.Flags().GetString("anchor")
	maxLen, _ := cmd.Flags().GetInt("max-length")
	rels, _ := cmd.Flags().GetStringSlice("rel")

	cycles := newFinder(store).FindCycles(graph.NodeID(anchor), rels, maxLen)
	if len(cycles) == 0 {
		fmt.Println("No cycles found")
		return nil
	}
	return printJSON(cycles)
}

func runReach(cmd *cobra.Command, args []string) error {
	store, closeStore, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	from, _ := cmd.Flags().GetString("from")
	dirFlag, _ := cmd.Flags().GetString("direction")
	maxDepth, _ := cmd.Flags().GetInt("max-depth")
	rels, _ := cmd.Flags().GetStringSlice("rel")

	var dir graph.Direction
	switch strings.ToLower(dirFlag) {
	case "outgoing", "":
		dir = graph.Outgoing
	case "incoming":
		dir = graph.Incoming
	case "both":
		dir = graph.Both
	default:
		return fmt.Errorf("unknown direction %q (want outgoing, incoming, or both)", dirFlag)
	}

	reached := newFinder(store).ReachableSet(graph.NodeID(from), rels, dir, maxDepth)

	ids := make([]string, 0, len(reached))
	for id := range reached {
		ids = append(ids, string(id))
	}
	// Deterministic output for scripting.
	sort.Strings(ids)
	return printJSON(ids)
}

func runQuery(cmd *cobra.Command, args []string) error {
	store, closeStore, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	results, err := pathquery.NewEngine(store).Query(args[0])
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println("No matches")
		return nil
	}
	return printJSON(results)
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
