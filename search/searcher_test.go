package search

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jash2606/vector-graph-retrieval-app/ai/mock"
	"github.com/Jash2606/vector-graph-retrieval-app/core"
	"github.com/Jash2606/vector-graph-retrieval-app/storage"
	"github.com/Jash2606/vector-graph-retrieval-app/storage/badger"
	"github.com/Jash2606/vector-graph-retrieval-app/storage/vector"
)

type searchRig struct {
	graph    storage.GraphStore
	vectors  *vector.Store
	provider *mock.MockProvider
	searcher *Searcher
}

func newSearchRig(t *testing.T, opts ...Option) *searchRig {
	t.Helper()

	graph, backend, err := badger.NewMemoryGraphStore()
	require.NoError(t, err)
	t.Cleanup(func() { graph.Close(); backend.Close() })

	vectors := vector.NewStore()
	provider := mock.NewMockProvider().(*mock.MockProvider)

	searcher, err := NewSearcher(graph, vectors, provider, opts...)
	require.NoError(t, err)

	return &searchRig{graph: graph, vectors: vectors, provider: provider, searcher: searcher}
}

// addDoc stores a document node with an explicit embedding.
func (r *searchRig) addDoc(t *testing.T, id core.ID, text string, embedding []float32) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, r.graph.UpsertDocument(ctx, &core.Document{Id: id, Title: string(id), Text: text}))
	_, err := r.vectors.Add(ctx, embedding, id)
	require.NoError(t, err)
}

// mention links a document to an entity node, creating it if needed.
func (r *searchRig) mention(t *testing.T, docID core.ID, name string, entityType core.EntityType) {
	t.Helper()
	ctx := context.Background()
	entity, err := r.graph.UpsertEntity(ctx, name, entityType)
	require.NoError(t, err)
	err = r.graph.CreateEdge(ctx, &core.Edge{
		SourceId: docID, TargetId: entity.Id, Type: core.EdgeMentions, Weight: 1.0,
	})
	require.NoError(t, err)
}

func resultIDs(results []*core.HybridResult) []core.ID {
	ids := make([]core.ID, len(results))
	for i, result := range results {
		ids[i] = result.DocumentId
	}
	return ids
}

func TestSearchVectorOnlyMatchesPureVectorSearch(t *testing.T) {
	rig := newSearchRig(t)
	ctx := context.Background()

	rig.addDoc(t, "doc-a", "about apples", []float32{1, 0, 0, 0})
	rig.addDoc(t, "doc-b", "about bears", []float32{0.7, 0.7, 0, 0})
	rig.addDoc(t, "doc-c", "about canals", []float32{0, 0, 1, 0})

	rig.provider.GetMockEmbedder().EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0, 0}, nil
	}

	// Lowercase query: the extractor finds no entities, set B is empty
	query := "tell me about apples"
	response, err := rig.searcher.Search(ctx, query, Options{VectorWeight: 1, GraphWeight: 0, TopK: 3, ExpandDepth: 2})
	require.NoError(t, err)
	assert.False(t, response.Degraded)

	pure, err := rig.searcher.VectorSearch(ctx, query, 3)
	require.NoError(t, err)

	require.Equal(t, len(pure), len(response.Results))
	assert.Equal(t, resultIDs(pure), resultIDs(response.Results))
	assert.Equal(t, []core.ID{"doc-a", "doc-b", "doc-c"}, resultIDs(response.Results))

	for _, result := range response.Results {
		assert.True(t, result.Explanation.FromVector)
		assert.Equal(t, result.Explanation.VectorScore, result.FinalScore)
		assert.NotNil(t, result.Document)
	}
}

func TestSearchGraphOnlyRanksConnectivity(t *testing.T) {
	rig := newSearchRig(t)
	ctx := context.Background()

	// doc-none matches the query vector perfectly but has no connections;
	// doc-near mentions the query entity; doc-far sits one RELATED_TO hop
	// behind doc-near.
	rig.addDoc(t, "doc-near", "a document about Einstein", []float32{0, 1, 0, 0})
	rig.addDoc(t, "doc-far", "a related document", []float32{0, 0, 1, 0})
	rig.addDoc(t, "doc-none", "unconnected but similar", []float32{1, 0, 0, 0})
	rig.mention(t, "doc-near", "einstein", core.EntityLocation)
	require.NoError(t, rig.graph.CreateEdge(ctx, &core.Edge{
		SourceId: "doc-near", TargetId: "doc-far", Type: core.EdgeRelatedTo, Weight: 0.9,
	}))

	rig.provider.GetMockEmbedder().EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0, 0}, nil
	}

	// "Einstein" resolves to the location-typed entity via the mock
	// extractor's single-word rule
	response, err := rig.searcher.Search(ctx, "Einstein", Options{VectorWeight: 0, GraphWeight: 1, TopK: 3, ExpandDepth: 2})
	require.NoError(t, err)

	ids := resultIDs(response.Results)
	require.Len(t, ids, 3)
	assert.Equal(t, core.ID("doc-near"), ids[0], "connected document outranks similar-but-unconnected")
	assert.Equal(t, core.ID("doc-far"), ids[1])
	assert.Equal(t, core.ID("doc-none"), ids[2])

	// Pool-relative normalization: the best-connected candidate scores 1
	assert.InDelta(t, 1.0, response.Results[0].Explanation.GraphScore, 1e-9)
	assert.Greater(t, response.Results[0].Explanation.GraphScore, response.Results[1].Explanation.GraphScore)
	assert.False(t, response.Results[2].Explanation.FromGraph)
}

func TestSearchMergesComponentScores(t *testing.T) {
	rig := newSearchRig(t)
	ctx := context.Background()

	rig.addDoc(t, "doc-a", "vector only", []float32{1, 0, 0, 0})
	rig.addDoc(t, "doc-b", "both sets, mentions Einstein", []float32{0, 1, 0, 0})
	rig.addDoc(t, "doc-c", "graph only", []float32{0, 0, 1, 0})
	rig.mention(t, "doc-b", "einstein", core.EntityLocation)
	rig.mention(t, "doc-c", "einstein", core.EntityLocation)

	rig.provider.GetMockEmbedder().EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{0.8, 0.6, 0, 0}, nil
	}

	response, err := rig.searcher.Search(ctx, "Einstein", Options{VectorWeight: 0.5, GraphWeight: 0.5, TopK: 3, ExpandDepth: 2})
	require.NoError(t, err)

	byID := make(map[core.ID]*core.HybridResult)
	for _, result := range response.Results {
		byID[result.DocumentId] = result
	}

	// doc-b: vector 0.6, graph 1.0 -> 0.8; doc-c: vector 0, graph 1.0 -> 0.5;
	// doc-a: vector 0.8, graph 0 -> 0.4
	assert.Equal(t, []core.ID{"doc-b", "doc-c", "doc-a"}, resultIDs(response.Results))

	b := byID["doc-b"]
	assert.True(t, b.Explanation.FromVector)
	assert.True(t, b.Explanation.FromGraph)
	assert.InDelta(t, 0.6, b.Explanation.VectorScore, 1e-6)
	assert.InDelta(t, 1.0, b.Explanation.GraphScore, 1e-9)
	assert.InDelta(t, 0.8, b.FinalScore, 1e-6)

	a := byID["doc-a"]
	assert.True(t, a.Explanation.FromVector)
	assert.False(t, a.Explanation.FromGraph)
	assert.InDelta(t, 0.4, a.FinalScore, 1e-6)
}

func TestSearchTieBreaksByDocumentID(t *testing.T) {
	rig := newSearchRig(t)

	rig.addDoc(t, "doc-z", "identical", []float32{1, 0})
	rig.addDoc(t, "doc-a", "identical", []float32{1, 0})

	rig.provider.GetMockEmbedder().EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0}, nil
	}

	response, err := rig.searcher.Search(context.Background(), "identical docs",
		Options{VectorWeight: 1, GraphWeight: 0, TopK: 2, ExpandDepth: 1})
	require.NoError(t, err)
	assert.Equal(t, []core.ID{"doc-a", "doc-z"}, resultIDs(response.Results))
}

func TestSearchWeightValidation(t *testing.T) {
	rig := newSearchRig(t)
	ctx := context.Background()

	cases := []Options{
		{VectorWeight: 0, GraphWeight: 0, TopK: 5},
		{VectorWeight: -0.5, GraphWeight: 1, TopK: 5},
		{VectorWeight: 1, GraphWeight: -1, TopK: 5},
		{VectorWeight: 1, GraphWeight: 0, TopK: 0},
	}
	for _, opts := range cases {
		_, err := rig.searcher.Search(ctx, "query", opts)
		assert.ErrorIs(t, err, core.ErrInvalidInput)
	}
}

func TestSearchNormalizesWeights(t *testing.T) {
	alpha, beta, err := normalizeWeights(7, 3)
	require.NoError(t, err)
	assert.InDelta(t, 0.7, alpha, 1e-9)
	assert.InDelta(t, 0.3, beta, 1e-9)

	alpha, beta, err = normalizeWeights(0.7, 0.3)
	require.NoError(t, err)
	assert.InDelta(t, 0.7, alpha, 1e-9)
	assert.InDelta(t, 0.3, beta, 1e-9)
}

// failingFindEntity wraps a GraphStore and fails entity lookups with a
// non-NotFound error, simulating an unavailable graph backend.
type failingFindEntity struct {
	storage.GraphStore
}

func (f *failingFindEntity) FindEntity(ctx context.Context, name string, entityType core.EntityType) (*core.Entity, error) {
	return nil, fmt.Errorf("%w: graph backend unavailable", core.ErrStoreWrite)
}

func TestSearchGraphFailureFailsByDefault(t *testing.T) {
	rig := newSearchRig(t)
	rig.addDoc(t, "doc-a", "some text", []float32{1, 0})

	broken := &failingFindEntity{GraphStore: rig.graph}
	searcher, err := NewSearcher(broken, rig.vectors, rig.provider)
	require.NoError(t, err)

	// Query carries an entity, so the graph path is exercised
	_, err = searcher.Search(context.Background(), "Einstein",
		Options{VectorWeight: 0.7, GraphWeight: 0.3, TopK: 5, ExpandDepth: 2})
	assert.ErrorIs(t, err, core.ErrSearch)
}

func TestSearchGraphFailureDegradesWhenTolerated(t *testing.T) {
	rig := newSearchRig(t)
	rig.addDoc(t, "doc-a", "some text", []float32{1, 0})
	rig.addDoc(t, "doc-b", "other text", []float32{0, 1})

	broken := &failingFindEntity{GraphStore: rig.graph}
	searcher, err := NewSearcher(broken, rig.vectors, rig.provider, WithGraphDegradation())
	require.NoError(t, err)

	rig.provider.GetMockEmbedder().EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0}, nil
	}

	response, err := searcher.Search(context.Background(), "Einstein",
		Options{VectorWeight: 0.7, GraphWeight: 0.3, TopK: 5, ExpandDepth: 2})
	require.NoError(t, err)
	assert.True(t, response.Degraded)

	// Degraded ranking is vector-only regardless of the requested weights
	require.Len(t, response.Results, 2)
	assert.Equal(t, core.ID("doc-a"), response.Results[0].DocumentId)
	assert.InDelta(t, 1.0, response.Results[0].FinalScore, 1e-6)
}

func TestNeighborhoodDelegatesToTraversal(t *testing.T) {
	rig := newSearchRig(t)
	ctx := context.Background()

	rig.addDoc(t, "doc-a", "anchor", []float32{1, 0})
	rig.mention(t, "doc-a", "cern", core.EntityOrganization)

	sub, err := rig.searcher.Neighborhood(ctx, "doc-a", 1)
	require.NoError(t, err)
	assert.Len(t, sub.Nodes, 2)
	assert.Len(t, sub.Edges, 1)

	_, err = rig.searcher.Neighborhood(ctx, "ghost", 1)
	assert.ErrorIs(t, err, core.ErrNotFound)
}
