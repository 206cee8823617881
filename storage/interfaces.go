package storage

import (
	"context"

	"github.com/Jash2606/vector-graph-retrieval-app/core"
)

// VectorIndex is the contract the engine requires from the vector store:
// an append-only similarity index with a bidirectional id mapping.
// Implementations must serialize writes against each other but must not
// block concurrent reads outside the write critical section.
type VectorIndex interface {
	// Add appends an embedding and its mapping entry in one logically
	// atomic step and returns the assigned vector id. A failure leaves
	// neither the vector nor the mapping entry present.
	Add(ctx context.Context, embedding []float32, documentID core.ID) (int64, error)

	// Replace swaps the document's embedding for a new one under a single
	// write lock: the old slot is tombstoned, a new slot is appended, and
	// the mapping is updated. Returns the new vector id.
	Replace(ctx context.Context, documentID core.ID, embedding []float32) (int64, error)

	// Search returns up to k documents ranked by cosine similarity
	// descending, ties broken by insertion order (earlier id wins).
	// k must be >= 1.
	Search(ctx context.Context, query []float32, k int) ([]core.Match, error)

	// Remove deletes the mapping entry and tombstones the index slot.
	// Tombstoned slots are never reused.
	Remove(ctx context.Context, vectorID int64) error

	// VectorID returns the live vector id for a document, or ErrNotFound.
	VectorID(ctx context.Context, documentID core.ID) (int64, error)

	// Count returns the number of live (non-tombstoned) vectors.
	Count() int

	// Mappings returns a copy of the live vector-id -> document-id mapping.
	Mappings() map[int64]core.ID

	// Persist writes an all-or-nothing snapshot of index and mapping.
	// No writes may occur during a snapshot.
	Persist() error

	// Load restores a snapshot. Fails with ErrCorruptState rather than
	// silently truncating if index and mapping disagree.
	Load() error
}

// GraphStore is the contract the engine requires from the relationship
// graph: typed nodes, typed weighted directed edges, and bounded-depth
// traversal. Single-node and single-edge writes are all-or-nothing.
type GraphStore interface {
	// UpsertDocument creates or replaces a document node. Idempotent.
	UpsertDocument(ctx context.Context, doc *core.Document) error

	// GetDocument returns a document node or ErrNotFound.
	GetDocument(ctx context.Context, id core.ID) (*core.Document, error)

	// AllDocuments returns every document node, in id order.
	AllDocuments(ctx context.Context) ([]*core.Document, error)

	// DeleteDocument removes the node, its MENTIONS edges, and any
	// RELATED_TO edges touching it. Returns ErrNotFound if absent.
	DeleteDocument(ctx context.Context, id core.ID) error

	// UpsertEntity finds or creates the entity node for a (name, type)
	// pair. The name is normalized first; calling twice with the same
	// identity returns the same node.
	UpsertEntity(ctx context.Context, name string, entityType core.EntityType) (*core.Entity, error)

	// GetEntity returns an entity node or ErrNotFound.
	GetEntity(ctx context.Context, id core.ID) (*core.Entity, error)

	// FindEntity looks an entity up by its normalized (name, type) pair.
	// Returns ErrNotFound if no such entity exists.
	FindEntity(ctx context.Context, name string, entityType core.EntityType) (*core.Entity, error)

	// CreateEdge stores a validated edge. Fails with ErrInvalidEdge if an
	// endpoint is missing, the type is unknown, or the weight is out of
	// range. Creating an edge that already exists updates its weight.
	CreateEdge(ctx context.Context, edge *core.Edge) error

	// DeleteEdge removes one directed edge. Returns ErrNotFound if absent.
	DeleteEdge(ctx context.Context, source, target core.ID, edgeType core.EdgeType) error

	// HasEdge reports whether an edge of the given type exists between the
	// two nodes in either direction.
	HasEdge(ctx context.Context, a, b core.ID, edgeType core.EdgeType) (bool, error)

	// EdgesFrom returns all outgoing edges of a node.
	EdgesFrom(ctx context.Context, id core.ID) ([]*core.Edge, error)

	// Traverse returns the subgraph reachable from start within maxDepth
	// hops, depth counted in edge traversals regardless of direction.
	// maxDepth is clamped to [1,3]. Pure read.
	Traverse(ctx context.Context, start core.ID, maxDepth int) (*core.Subgraph, error)

	// Counts returns the number of document nodes, entity nodes, and edges.
	Counts(ctx context.Context) (documents, entities, edges int, err error)

	// Close releases the underlying storage.
	Close() error
}
