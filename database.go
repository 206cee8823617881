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

package retrieval

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/Jash2606/vector-graph-retrieval-app/ai"
	"github.com/Jash2606/vector-graph-retrieval-app/ai/openai"
	"github.com/Jash2606/vector-graph-retrieval-app/ingestion"
	"github.com/Jash2606/vector-graph-retrieval-app/maintenance"
	"github.com/Jash2606/vector-graph-retrieval-app/search"
	"github.com/Jash2606/vector-graph-retrieval-app/storage"
	"github.com/Jash2606/vector-graph-retrieval-app/storage/badger"
	"github.com/Jash2606/vector-graph-retrieval-app/storage/vector"
)

// Database bundles the graph store, the vector index, and the AI provider
// behind one open/close lifecycle. The graph lives under <path>/graph and
// vector snapshots under <path>/vectors.
type Database struct {
	backend  *badger.Backend
	graph    storage.GraphStore
	vectors  *vector.Store
	provider ai.AIProvider
	logger   *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	provider ai.AIProvider
	inMemory bool
}

// WithAIConfig sets the AI service configuration used to build the default
// OpenAI-compatible provider.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithProvider supplies a pre-built AI provider instead of the default
// OpenAI-compatible one. The Database takes ownership and closes it.
func WithProvider(provider ai.AIProvider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// WithInMemory keeps everything in memory: the graph is not written to disk
// and vector snapshots are disabled. Intended for tests and experiments.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// NewDatabase opens the stores under the given path and restores the vector
// index from its last snapshot if one exists.
func NewDatabase(path string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filepath.Join(path, "graph"), options.inMemory)
	if err != nil {
		return nil, err
	}

	graph, err := badger.NewGraphStore(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	var vectors *vector.Store
	if options.inMemory {
		vectors = vector.NewStore()
	} else {
		vectors = vector.NewStore(vector.WithSnapshotDir(filepath.Join(path, "vectors")))
		if err := vectors.Load(); err != nil {
			graph.Close()
			backend.Close()
			return nil, err
		}
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			graph.Close()
			backend.Close()
			return nil, err
		}
	}

	return &Database{
		backend:  backend,
		graph:    graph,
		vectors:  vectors,
		provider: provider,
		logger:   slog.Default(),
	}, nil
}

// Close snapshots the vector index and releases every resource. Snapshot
// and provider failures are logged; the backend close error is returned.
func (db *Database) Close() error {
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	if db.vectors.SnapshotDir() != "" {
		if err := db.vectors.Persist(); err != nil {
			db.logger.Error("error snapshotting vector index", "err", err)
		}
	}

	if err := db.graph.Close(); err != nil {
		db.logger.Error("error closing graph store", "err", err)
		return err
	}

	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) GraphStore() storage.GraphStore {
	return db.graph
}

func (db *Database) VectorIndex() storage.VectorIndex {
	return db.vectors
}

func (db *Database) Provider() ai.AIProvider {
	return db.provider
}

func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(db.graph, db.vectors, db.provider, opts...)
}

func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(db.graph, db.vectors, db.provider, opts...)
}

// NewReindexer builds a maintenance reindexer over the database's stores.
func (db *Database) NewReindexer(config *maintenance.Config, progress io.Writer) (*maintenance.Reindexer, error) {
	return maintenance.NewReindexer(db.graph, db.vectors, db.provider.Embedder(), config, progress)
}

// Sweep runs a consistency sweep over the two stores.
func (db *Database) Sweep(ctx context.Context) (*maintenance.SweepReport, error) {
	return maintenance.Sweep(ctx, db.graph, db.vectors)
}

// Stats reports the node, edge, and live vector counts.
type Stats struct {
	Documents int
	Entities  int
	Edges     int
	Vectors   int
}

func (db *Database) Stats(ctx context.Context) (Stats, error) {
	documents, entities, edges, err := db.graph.Counts(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		Documents: documents,
		Entities:  entities,
		Edges:     edges,
		Vectors:   db.vectors.Count(),
	}, nil
}
