package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/Jash2606/vector-graph-retrieval-app/ai"
	"github.com/Jash2606/vector-graph-retrieval-app/core"
	"github.com/Jash2606/vector-graph-retrieval-app/storage"
)

const (
	// DefaultVectorWeight and DefaultGraphWeight are the default mixing
	// weights for hybrid scoring.
	DefaultVectorWeight = 0.7
	DefaultGraphWeight  = 0.3

	// DefaultExpandDepth bounds the graph expansion around query entities.
	DefaultExpandDepth = 2

	// ExpansionFactor is the vector over-fetch multiplier: the vector
	// candidate set holds ExpansionFactor × top_k hits to leave room for
	// re-ranking after the merge.
	ExpansionFactor = 3
)

// Options controls one hybrid search call.
type Options struct {
	// VectorWeight and GraphWeight mix the two component scores. They are
	// normalized to sum to 1; both zero or either negative is invalid.
	VectorWeight float64
	GraphWeight  float64

	// TopK is the number of results to return. Must be >= 1.
	TopK int

	// ExpandDepth bounds graph expansion around query entities.
	// Clamped to the traversal depth range.
	ExpandDepth int
}

// DefaultOptions returns the standard hybrid search configuration.
func DefaultOptions() Options {
	return Options{
		VectorWeight: DefaultVectorWeight,
		GraphWeight:  DefaultGraphWeight,
		TopK:         10,
		ExpandDepth:  DefaultExpandDepth,
	}
}

// Response is an ordered hybrid result set. Degraded is set when the graph
// component failed and the searcher was configured to tolerate it, in which
// case the ranking is vector-only.
type Response struct {
	Results  []*core.HybridResult
	Degraded bool
}

// Searcher merges vector-similarity candidates and graph-connectivity
// candidates into one ranked result set. It reads from both stores and
// never writes.
type Searcher struct {
	graph         storage.GraphStore
	vectors       storage.VectorIndex
	embedder      ai.Embedder
	extractor     ai.EntityExtractor
	tolerateGraph bool
	logger        *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithGraphDegradation makes Search fall back to vector-only ranking,
// marked degraded, when the graph component fails. Without it a graph
// failure fails the whole search.
func WithGraphDegradation() Option {
	return func(s *Searcher) error {
		s.tolerateGraph = true
		return nil
	}
}

// NewSearcher creates a new hybrid searcher.
func NewSearcher(
	graph storage.GraphStore,
	vectors storage.VectorIndex,
	provider ai.AIProvider,
	opts ...Option,
) (*Searcher, error) {
	if graph == nil {
		return nil, ErrGraphStoreRequired
	}
	if vectors == nil {
		return nil, ErrVectorIndexRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Searcher{
		graph:     graph,
		vectors:   vectors,
		embedder:  provider.Embedder(),
		extractor: provider.EntityExtractor(),
		logger:    slog.Default().With("component", "search"),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Search runs a hybrid query: the vector candidate set and the
// entity-anchored graph candidate set are gathered concurrently, merged by
// document id, scored as a weighted sum, and ranked. A document strong in
// one dimension is never erased by absence in the other; the missing
// component simply scores zero.
func (s *Searcher) Search(ctx context.Context, query string, opts Options) (*Response, error) {
	return s.SearchWithMonitor(ctx, query, opts, nil)
}

// SearchWithMonitor runs Search with observation hooks.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query string, opts Options, monitor SearchMonitor) (*Response, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	alpha, beta, err := normalizeWeights(opts.VectorWeight, opts.GraphWeight)
	if err != nil {
		return nil, err
	}
	if opts.TopK < 1 {
		return nil, fmt.Errorf("%w: top_k must be >= 1, got %d", core.ErrInvalidInput, opts.TopK)
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query", core.ErrInvalidInput)
	}

	monitor.Start(query)

	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding query: %v", core.ErrSearch, err)
	}

	// The two candidate sets are independent reads; gather them
	// concurrently.
	type vectorOutcome struct {
		scores map[core.ID]float64
		err    error
	}
	type graphOutcome struct {
		scores map[core.ID]float64
		err    error
	}
	vectorCh := make(chan vectorOutcome, 1)
	graphCh := make(chan graphOutcome, 1)

	go func() {
		scores, err := s.vectorCandidates(ctx, embedding, opts.TopK*ExpansionFactor, monitor)
		vectorCh <- vectorOutcome{scores: scores, err: err}
	}()
	go func() {
		scores, err := s.graphCandidates(ctx, query, opts.ExpandDepth, monitor)
		graphCh <- graphOutcome{scores: scores, err: err}
	}()

	vectorOut := <-vectorCh
	graphOut := <-graphCh

	if vectorOut.err != nil {
		return nil, fmt.Errorf("%w: vector candidates: %v", core.ErrSearch, vectorOut.err)
	}

	degraded := false
	if graphOut.err != nil {
		if !s.tolerateGraph {
			return nil, fmt.Errorf("%w: graph candidates: %v", core.ErrSearch, graphOut.err)
		}
		s.logger.Warn("graph component failed, degrading to vector-only ranking", "err", graphOut.err)
		monitor.Degraded(graphOut.err.Error())
		degraded = true
		alpha, beta = 1, 0
		graphOut.scores = nil
	}

	results := merge(vectorOut.scores, graphOut.scores, alpha, beta)
	if len(results) > opts.TopK {
		results = results[:opts.TopK]
	}
	s.attachDocuments(ctx, results)

	monitor.Finish(results)
	return &Response{Results: results, Degraded: degraded}, nil
}

// VectorSearch is the pure vector path: cosine ranking only, no graph
// component and no degradation semantics.
func (s *Searcher) VectorSearch(ctx context.Context, query string, topK int) ([]*core.HybridResult, error) {
	if topK < 1 {
		return nil, fmt.Errorf("%w: top_k must be >= 1, got %d", core.ErrInvalidInput, topK)
	}

	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding query: %v", core.ErrSearch, err)
	}

	matches, err := s.vectors.Search(ctx, embedding, topK)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrSearch, err)
	}

	results := make([]*core.HybridResult, 0, len(matches))
	for _, match := range matches {
		results = append(results, &core.HybridResult{
			DocumentId: match.DocumentId,
			FinalScore: match.Score,
			Explanation: core.Explanation{
				VectorScore: match.Score,
				FromVector:  true,
			},
		})
	}
	s.attachDocuments(ctx, results)
	return results, nil
}

// Neighborhood is the pure graph path: the bounded subgraph around a node.
func (s *Searcher) Neighborhood(ctx context.Context, start core.ID, depth int) (*core.Subgraph, error) {
	sub, err := s.graph.Traverse(ctx, start, depth)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", core.ErrSearch, err)
	}
	return sub, nil
}

// vectorCandidates builds candidate set A: raw cosine similarities from an
// over-fetched vector search.
func (s *Searcher) vectorCandidates(ctx context.Context, embedding []float32, k int, monitor SearchMonitor) (map[core.ID]float64, error) {
	matches, err := s.vectors.Search(ctx, embedding, k)
	if err != nil {
		return nil, err
	}
	monitor.AfterVectorSearch(matches)

	scores := make(map[core.ID]float64, len(matches))
	for _, match := range matches {
		scores[match.DocumentId] = match.Score
	}
	return scores, nil
}

// graphCandidates builds candidate set B: documents connected to the
// query's entities, scored by summed decaying hop distance and normalized
// against the pool maximum. Identical absolute connectivity can therefore
// normalize differently depending on the rest of the pool for that query.
func (s *Searcher) graphCandidates(ctx context.Context, query string, expandDepth int, monitor SearchMonitor) (map[core.ID]float64, error) {
	extracted, err := s.extractor.ExtractEntities(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("extracting query entities: %w", err)
	}

	var anchors []*core.Entity
	for _, raw := range extracted {
		entityType := core.EntityType(ai.NormalizeEntityTypeName(raw.Type))
		entity, err := s.graph.FindEntity(ctx, raw.Name, entityType)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				continue
			}
			return nil, err
		}
		anchors = append(anchors, entity)
	}
	monitor.AfterQueryEntityExtraction(anchors)

	raw := make(map[core.ID]float64)
	for _, anchor := range anchors {
		sub, err := s.graph.Traverse(ctx, anchor.Id, expandDepth)
		if err != nil {
			return nil, err
		}
		for _, node := range sub.Nodes {
			if node.Document == nil || node.Depth == 0 {
				continue
			}
			raw[node.Id] += 1.0 / float64(1+node.Depth)
		}
	}

	// Pool-relative normalization: the best-connected candidate scores 1.
	var max float64
	for _, score := range raw {
		if score > max {
			max = score
		}
	}
	if max > 0 {
		for id := range raw {
			raw[id] /= max
		}
	}
	monitor.AfterGraphExpansion(raw)
	return raw, nil
}

// merge combines the two candidate sets by document id. Absence from one
// set contributes a zero component score. Results are ordered by final
// score descending, ties broken by document id ascending.
func merge(vectorScores, graphScores map[core.ID]float64, alpha, beta float64) []*core.HybridResult {
	results := make([]*core.HybridResult, 0, len(vectorScores)+len(graphScores))

	for id, score := range vectorScores {
		result := &core.HybridResult{
			DocumentId: id,
			Explanation: core.Explanation{
				VectorScore: score,
				FromVector:  true,
			},
		}
		if graphScore, ok := graphScores[id]; ok {
			result.Explanation.GraphScore = graphScore
			result.Explanation.FromGraph = true
		}
		results = append(results, result)
	}
	for id, score := range graphScores {
		if _, ok := vectorScores[id]; ok {
			continue
		}
		results = append(results, &core.HybridResult{
			DocumentId: id,
			Explanation: core.Explanation{
				GraphScore: score,
				FromGraph:  true,
			},
		})
	}

	for _, result := range results {
		result.FinalScore = alpha*result.Explanation.VectorScore + beta*result.Explanation.GraphScore
	}

	slices.SortFunc(results, func(a, b *core.HybridResult) int {
		if a.FinalScore > b.FinalScore {
			return -1
		}
		if a.FinalScore < b.FinalScore {
			return 1
		}
		return strings.Compare(string(a.DocumentId), string(b.DocumentId))
	})
	return results
}

// attachDocuments loads the document records for the final result set.
// A lookup failure leaves the Document nil rather than failing the search;
// the id and scores are still usable.
func (s *Searcher) attachDocuments(ctx context.Context, results []*core.HybridResult) {
	for _, result := range results {
		doc, err := s.graph.GetDocument(ctx, result.DocumentId)
		if err != nil {
			s.logger.Warn("result document not loadable", "document", result.DocumentId, "err", err)
			continue
		}
		result.Document = doc
	}
}

// normalizeWeights validates and scales the mixing weights to sum to 1.
func normalizeWeights(alpha, beta float64) (float64, float64, error) {
	if alpha < 0 || beta < 0 {
		return 0, 0, fmt.Errorf("%w: negative weight (vector=%v, graph=%v)", core.ErrInvalidInput, alpha, beta)
	}
	sum := alpha + beta
	if sum == 0 {
		return 0, 0, fmt.Errorf("%w: both weights are zero", core.ErrInvalidInput)
	}
	return alpha / sum, beta / sum, nil
}
