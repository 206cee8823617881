// Copyright 2025 Jash2606
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	retrieval "github.com/Jash2606/vector-graph-retrieval-app"
	"github.com/Jash2606/vector-graph-retrieval-app/ai"
	"github.com/Jash2606/vector-graph-retrieval-app/core"
	"github.com/Jash2606/vector-graph-retrieval-app/maintenance"
	"github.com/Jash2606/vector-graph-retrieval-app/search"
)

func main() {
	// A .env next to the binary can supply the AI service settings.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "vgraph",
		Usage: "Hybrid vector and graph retrieval over a document store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML config file",
				EnvVars: []string{"VGRAPH_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to the data directory",
				EnvVars: []string{"VGRAPH_DB"},
			},
			&cli.StringFlag{
				Name:    "embedding-host",
				Usage:   "Embedding service host URL",
				EnvVars: []string{"VGRAPH_EMBEDDING_HOST"},
			},
			&cli.StringFlag{
				Name:    "embedding-model",
				Usage:   "Embedding model name",
				EnvVars: []string{"VGRAPH_EMBEDDING_MODEL"},
			},
			&cli.StringFlag{
				Name:    "extractor-host",
				Usage:   "Entity extraction service host URL",
				EnvVars: []string{"VGRAPH_EXTRACTOR_HOST"},
			},
			&cli.StringFlag{
				Name:    "extractor-model",
				Usage:   "Entity extraction model name",
				EnvVars: []string{"VGRAPH_EXTRACTOR_MODEL"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Ingest a document from a file or stdin",
				ArgsUsage: "[file]",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "title",
						Aliases: []string{"t"},
						Usage:   "Document title",
					},
					&cli.StringSliceFlag{
						Name:    "meta",
						Aliases: []string{"m"},
						Usage:   "Metadata entry as key=value (repeatable)",
					},
				},
			},
			{
				Name:      "update",
				Usage:     "Re-ingest an existing document with new text",
				ArgsUsage: "<document-id> [file]",
				Action:    updateCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "title",
						Aliases: []string{"t"},
						Usage:   "New document title (empty keeps the old one)",
					},
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a document, its vector, and its edges",
				ArgsUsage: "<document-id>",
				Action:    deleteCommand,
			},
			{
				Name:      "search",
				Usage:     "Hybrid search over the document store",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.Float64Flag{
						Name:  "vector-weight",
						Usage: "Weight of the similarity component",
						Value: search.DefaultVectorWeight,
					},
					&cli.Float64Flag{
						Name:  "graph-weight",
						Usage: "Weight of the connectivity component",
						Value: search.DefaultGraphWeight,
					},
					&cli.IntFlag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   "Number of results",
						Value:   10,
					},
					&cli.IntFlag{
						Name:  "depth",
						Usage: "Graph expansion depth",
						Value: search.DefaultExpandDepth,
					},
					&cli.BoolFlag{
						Name:  "vector-only",
						Usage: "Skip the graph component entirely",
					},
					&cli.BoolFlag{
						Name:  "degrade",
						Usage: "Fall back to vector-only ranking if the graph fails",
					},
				},
			},
			{
				Name:      "link",
				Usage:     "Create or update a typed edge between two nodes",
				ArgsUsage: "<source-id> <target-id>",
				Action:    linkCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "type",
						Usage: "Edge type (RELATED_TO, MENTIONS, CITES, REQUIRES)",
						Value: string(core.EdgeRelatedTo),
					},
					&cli.Float64Flag{
						Name:  "weight",
						Usage: "Edge weight in [0,1]",
						Value: 1.0,
					},
				},
			},
			{
				Name:      "unlink",
				Usage:     "Delete a directed edge",
				ArgsUsage: "<source-id> <target-id>",
				Action:    unlinkCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "type",
						Usage: "Edge type (RELATED_TO, MENTIONS, CITES, REQUIRES)",
						Value: string(core.EdgeRelatedTo),
					},
				},
			},
			{
				Name:      "traverse",
				Usage:     "Print the neighborhood of a node",
				ArgsUsage: "<node-id>",
				Action:    traverseCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "depth",
						Usage: "Maximum hop distance",
						Value: 2,
					},
				},
			},
			{
				Name:   "reindex",
				Usage:  "Re-embed every document and rebuild the vector index",
				Action: reindexCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of documents to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N documents",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-attempts",
						Usage: "Maximum attempts for failed embedding calls",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
			{
				Name:   "sweep",
				Usage:  "Reconcile the vector index with the graph",
				Action: sweepCommand,
			},
			{
				Name:   "stats",
				Usage:  "Print node, edge, and vector counts",
				Action: statsCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// openDatabase merges the config file and flags, then opens the stores.
// The parsed config is returned so commands can read their own sections.
func openDatabase(c *cli.Context) (*retrieval.Database, *Config, error) {
	cfg, err := loadConfig(c.String("config"))
	if err != nil {
		return nil, nil, err
	}

	dbPath := c.String("db")
	if dbPath == "" {
		dbPath = cfg.Database
	}
	if dbPath == "" {
		return nil, nil, fmt.Errorf("data directory is required (--db flag, VGRAPH_DB, or config file)")
	}

	aiConfig := ai.DefaultConfig()
	applyIfSet := func(dst *string, values ...string) {
		for _, v := range values {
			if v != "" {
				*dst = v
				return
			}
		}
	}
	applyIfSet(&aiConfig.EmbeddingHost, c.String("embedding-host"), cfg.AI.EmbeddingHost)
	applyIfSet(&aiConfig.EmbeddingModel, c.String("embedding-model"), cfg.AI.EmbeddingModel)
	applyIfSet(&aiConfig.ExtractorHost, c.String("extractor-host"), cfg.AI.ExtractorHost)
	applyIfSet(&aiConfig.ExtractorModel, c.String("extractor-model"), cfg.AI.ExtractorModel)

	db, err := retrieval.NewDatabase(dbPath, retrieval.WithAIConfig(aiConfig))
	if err != nil {
		return nil, nil, err
	}
	return db, cfg, nil
}

// readDocumentText reads the document body from the argument file, or from
// stdin when no file is given.
func readDocumentText(c *cli.Context, argIndex int) (string, error) {
	if c.Args().Len() > argIndex {
		data, err := os.ReadFile(c.Args().Get(argIndex))
		if err != nil {
			return "", fmt.Errorf("failed to read document file: %w", err)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

func parseMetadata(entries []string) (map[string]string, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	metadata := make(map[string]string, len(entries))
	for _, entry := range entries {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid metadata entry %q: expected key=value", entry)
		}
		metadata[key] = value
	}
	return metadata, nil
}

func ingestCommand(c *cli.Context) error {
	text, err := readDocumentText(c, 0)
	if err != nil {
		return err
	}
	metadata, err := parseMetadata(c.StringSlice("meta"))
	if err != nil {
		return err
	}

	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		return err
	}
	defer pipeline.Release()

	result, err := pipeline.Ingest(context.Background(), text, c.String("title"), metadata)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Printf("Ingested document %s\n", result.DocumentId)
	for _, warning := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
	}
	return nil
}

func updateCommand(c *cli.Context) error {
	if c.Args().Len() < 1 {
		return fmt.Errorf("document id is required")
	}
	id := core.ID(c.Args().Get(0))

	text, err := readDocumentText(c, 1)
	if err != nil {
		return err
	}

	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		return err
	}
	defer pipeline.Release()

	result, err := pipeline.Update(context.Background(), id, text, c.String("title"))
	if err != nil {
		return fmt.Errorf("update failed: %w", err)
	}

	fmt.Printf("Updated document %s\n", result.DocumentId)
	for _, warning := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
	}
	return nil
}

func deleteCommand(c *cli.Context) error {
	if c.Args().Len() < 1 {
		return fmt.Errorf("document id is required")
	}
	id := core.ID(c.Args().Get(0))

	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		return err
	}
	defer pipeline.Release()

	if err := pipeline.Delete(context.Background(), id); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}

	fmt.Printf("Deleted document %s\n", id)
	return nil
}

func searchCommand(c *cli.Context) error {
	if c.Args().Len() < 1 {
		return fmt.Errorf("query is required")
	}
	query := strings.Join(c.Args().Slice(), " ")

	db, cfg, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	var searcherOpts []search.Option
	if c.Bool("degrade") {
		searcherOpts = append(searcherOpts, search.WithGraphDegradation())
	}
	searcher, err := db.NewSearcher(searcherOpts...)
	if err != nil {
		return err
	}

	opts := searchOptions(c, cfg)
	ctx := context.Background()

	if c.Bool("vector-only") {
		results, err := searcher.VectorSearch(ctx, query, opts.TopK)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		printResults(results)
		return nil
	}
	response, err := searcher.Search(ctx, query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if response.Degraded {
		fmt.Fprintln(os.Stderr, "warning: graph unavailable, results are vector-only")
	}
	printResults(response.Results)
	return nil
}

// searchOptions starts from the config file's search section and lets
// explicitly set flags override it.
func searchOptions(c *cli.Context, cfg *Config) search.Options {
	opts := search.DefaultOptions()
	if cfg.Search.VectorWeight > 0 || cfg.Search.GraphWeight > 0 {
		opts.VectorWeight = cfg.Search.VectorWeight
		opts.GraphWeight = cfg.Search.GraphWeight
	}
	if cfg.Search.TopK > 0 {
		opts.TopK = cfg.Search.TopK
	}
	if cfg.Search.ExpandDepth > 0 {
		opts.ExpandDepth = cfg.Search.ExpandDepth
	}

	if c.IsSet("vector-weight") {
		opts.VectorWeight = c.Float64("vector-weight")
	}
	if c.IsSet("graph-weight") {
		opts.GraphWeight = c.Float64("graph-weight")
	}
	if c.IsSet("top-k") {
		opts.TopK = c.Int("top-k")
	}
	if c.IsSet("depth") {
		opts.ExpandDepth = c.Int("depth")
	}
	return opts
}

func printResults(results []*core.HybridResult) {
	fmt.Printf("Found %d hits\n", len(results))
	for i, hit := range results {
		title := ""
		if hit.Document != nil {
			title = hit.Document.Title
		}
		fmt.Printf("%d: %s '%s' [%0.3f] (vector %0.3f, graph %0.3f)\n",
			i+1, hit.DocumentId, title, hit.FinalScore,
			hit.Explanation.VectorScore, hit.Explanation.GraphScore)
	}
}

func linkCommand(c *cli.Context) error {
	if c.Args().Len() < 2 {
		return fmt.Errorf("source and target ids are required")
	}

	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	edge := &core.Edge{
		SourceId: core.ID(c.Args().Get(0)),
		TargetId: core.ID(c.Args().Get(1)),
		Type:     core.EdgeType(c.String("type")),
		Weight:   c.Float64("weight"),
	}
	if err := db.GraphStore().CreateEdge(context.Background(), edge); err != nil {
		return fmt.Errorf("link failed: %w", err)
	}

	fmt.Printf("Linked %s -%s-> %s (%0.2f)\n", edge.SourceId, edge.Type, edge.TargetId, edge.Weight)
	return nil
}

func unlinkCommand(c *cli.Context) error {
	if c.Args().Len() < 2 {
		return fmt.Errorf("source and target ids are required")
	}

	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	source := core.ID(c.Args().Get(0))
	target := core.ID(c.Args().Get(1))
	edgeType := core.EdgeType(c.String("type"))
	if err := db.GraphStore().DeleteEdge(context.Background(), source, target, edgeType); err != nil {
		return fmt.Errorf("unlink failed: %w", err)
	}

	fmt.Printf("Removed %s -%s-> %s\n", source, edgeType, target)
	return nil
}

func traverseCommand(c *cli.Context) error {
	if c.Args().Len() < 1 {
		return fmt.Errorf("node id is required")
	}
	start := core.ID(c.Args().Get(0))

	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	searcher, err := db.NewSearcher()
	if err != nil {
		return err
	}

	subgraph, err := searcher.Neighborhood(context.Background(), start, c.Int("depth"))
	if err != nil {
		return fmt.Errorf("traversal failed: %w", err)
	}

	fmt.Printf("%d nodes, %d edges\n", len(subgraph.Nodes), len(subgraph.Edges))
	for _, node := range subgraph.Nodes {
		switch {
		case node.Document != nil:
			fmt.Printf("  [%d] document %s '%s'\n", node.Depth, node.Id, node.Document.Title)
		case node.Entity != nil:
			fmt.Printf("  [%d] entity %s '%s' (%s)\n", node.Depth, node.Id, node.Entity.Name, node.Entity.Type)
		}
	}
	for _, edge := range subgraph.Edges {
		fmt.Printf("  [%d] %s -%s-> %s (%0.2f)\n", edge.Depth, edge.SourceId, edge.Type, edge.TargetId, edge.Weight)
	}
	return nil
}

func reindexCommand(c *cli.Context) error {
	config := &maintenance.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxAttempts:    c.Int("max-attempts"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxAttempts <= 0 {
		return fmt.Errorf("max-attempts must be greater than 0")
	}

	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	reindexer, err := db.NewReindexer(config, os.Stderr)
	if err != nil {
		return err
	}

	if err := reindexer.Run(context.Background()); err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}
	return nil
}

func sweepCommand(c *cli.Context) error {
	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	report, err := db.Sweep(context.Background())
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}

	fmt.Printf("Orphaned vectors removed: %d\n", report.OrphanedVectors)
	fmt.Printf("Documents repaired: %d\n", report.RepairedDocuments)
	fmt.Printf("Documents without vectors: %d\n", len(report.MissingVectors))
	for _, id := range report.MissingVectors {
		fmt.Printf("  %s\n", id)
	}
	if len(report.MissingVectors) > 0 {
		fmt.Fprintln(os.Stderr, "run 'vgraph reindex' to restore missing vectors")
	}
	return nil
}

func statsCommand(c *cli.Context) error {
	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	stats, err := db.Stats(context.Background())
	if err != nil {
		return fmt.Errorf("failed to read stats: %w", err)
	}

	fmt.Printf("Documents: %d\n", stats.Documents)
	fmt.Printf("Entities:  %d\n", stats.Entities)
	fmt.Printf("Edges:     %d\n", stats.Edges)
	fmt.Printf("Vectors:   %d\n", stats.Vectors)
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
