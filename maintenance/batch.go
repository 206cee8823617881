package maintenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Jash2606/vector-graph-retrieval-app/ai"
	"github.com/Jash2606/vector-graph-retrieval-app/core"
	"github.com/Jash2606/vector-graph-retrieval-app/storage"
)

// BatchProcessor re-embeds batches of documents and writes the fresh
// vectors back to the index and the graph.
type BatchProcessor struct {
	graph          storage.GraphStore
	vectors        storage.VectorIndex
	embedder       ai.Embedder
	maxAttempts    int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxAttempts: maximum number of attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(graph storage.GraphStore, vectors storage.VectorIndex, embedder ai.Embedder, maxAttempts int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		graph:          graph,
		vectors:        vectors,
		embedder:       embedder,
		maxAttempts:    maxAttempts,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process re-embeds a batch of documents. Each document's cleaned text is
// embedded, the index slot is replaced (or created, for documents whose
// vector went missing), and the node is rewritten with the new vector id.
func (bp *BatchProcessor) Process(ctx context.Context, docs []*core.Document) error {
	if len(docs) == 0 {
		return nil
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Text
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxAttempts, bp.retryBaseDelay)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxAttempts, err)
	}

	if len(embeddings) != len(docs) {
		return fmt.Errorf("%w: embedding count mismatch: expected %d, got %d",
			core.ErrEmbedding, len(docs), len(embeddings))
	}

	for i, doc := range docs {
		vectorID, err := bp.reindexOne(ctx, doc.Id, embeddings[i])
		if err != nil {
			return err
		}

		doc.VectorId = vectorID
		if err := bp.graph.UpsertDocument(ctx, doc); err != nil {
			return fmt.Errorf("failed to update document %s: %w", doc.Id, err)
		}
	}

	return nil
}

// reindexOne replaces a document's index slot, or creates one if the
// document has no live vector.
func (bp *BatchProcessor) reindexOne(ctx context.Context, id core.ID, embedding []float32) (int64, error) {
	vectorID, err := bp.vectors.Replace(ctx, id, embedding)
	if err == nil {
		return vectorID, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return 0, fmt.Errorf("failed to replace vector for document %s: %w", id, err)
	}

	vectorID, err = bp.vectors.Add(ctx, embedding, id)
	if err != nil {
		return 0, fmt.Errorf("failed to add vector for document %s: %w", id, err)
	}
	return vectorID, nil
}
