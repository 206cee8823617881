package maintenance

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jash2606/vector-graph-retrieval-app/ai/mock"
	"github.com/Jash2606/vector-graph-retrieval-app/core"
	"github.com/Jash2606/vector-graph-retrieval-app/storage"
	"github.com/Jash2606/vector-graph-retrieval-app/storage/badger"
	"github.com/Jash2606/vector-graph-retrieval-app/storage/vector"
)

func newTestStores(t *testing.T) (storage.GraphStore, *vector.Store) {
	t.Helper()

	graph, backend, err := badger.NewMemoryGraphStore()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	return graph, vector.NewStore()
}

// seedDocument writes a document node and, unless skipVector is set, an
// index entry for it.
func seedDocument(t *testing.T, graph storage.GraphStore, vectors *vector.Store, id core.ID, text string, skipVector bool) {
	t.Helper()
	ctx := context.Background()

	doc := &core.Document{Id: id, Title: string(id), Text: text}
	if !skipVector {
		vectorID, err := vectors.Add(ctx, mock.DeterministicVector(text, 64), id)
		require.NoError(t, err)
		doc.VectorId = vectorID
	}
	require.NoError(t, graph.UpsertDocument(ctx, doc))
}

func TestReindexer_Run(t *testing.T) {
	graph, vectors := newTestStores(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		id := core.ID(fmt.Sprintf("doc-%d", i))
		seedDocument(t, graph, vectors, id, fmt.Sprintf("document body %d", i), false)
	}
	// A document whose vector went missing gets one back during reindex.
	seedDocument(t, graph, vectors, "doc-lost", "document body lost", true)

	var buf bytes.Buffer
	config := &Config{
		BatchSize:      2,
		ReportInterval: 2,
		MaxAttempts:    3,
		RetryDelay:     10 * time.Millisecond,
	}

	reindexer, err := NewReindexer(graph, vectors, mock.NewMockEmbedder(), config, &buf)
	require.NoError(t, err)
	require.NoError(t, reindexer.Run(ctx))

	assert.Equal(t, 5, vectors.Count(), "every document should have exactly one live vector")

	docs, err := graph.AllDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 5)
	for _, doc := range docs {
		vectorID, err := vectors.VectorID(ctx, doc.Id)
		require.NoError(t, err, "document %s should have a vector", doc.Id)
		assert.Equal(t, vectorID, doc.VectorId, "node %s should record its new slot", doc.Id)
	}

	output := buf.String()
	assert.Contains(t, output, "5/5", "should show completion")
	assert.Contains(t, output, "Reindex complete")
}

func TestReindexer_EmptyGraph(t *testing.T) {
	graph, vectors := newTestStores(t)

	var buf bytes.Buffer
	reindexer, err := NewReindexer(graph, vectors, mock.NewMockEmbedder(), nil, &buf)
	require.NoError(t, err)

	require.NoError(t, reindexer.Run(context.Background()))
	assert.Contains(t, buf.String(), "No documents")
}

func TestReindexer_EmbedderFailure(t *testing.T) {
	graph, vectors := newTestStores(t)
	seedDocument(t, graph, vectors, "doc-a", "some body", false)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("embedding service down")
	}

	config := &Config{BatchSize: 10, ReportInterval: 10, MaxAttempts: 2, RetryDelay: time.Millisecond}
	reindexer, err := NewReindexer(graph, vectors, embedder, config, &bytes.Buffer{})
	require.NoError(t, err)

	err = reindexer.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
}

func TestNewReindexer_MissingDependencies(t *testing.T) {
	graph, vectors := newTestStores(t)
	embedder := mock.NewMockEmbedder()

	_, err := NewReindexer(nil, vectors, embedder, nil, nil)
	assert.ErrorIs(t, err, ErrGraphStoreRequired)

	_, err = NewReindexer(graph, nil, embedder, nil, nil)
	assert.ErrorIs(t, err, ErrVectorIndexRequired)

	_, err = NewReindexer(graph, vectors, nil, nil, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)
}
