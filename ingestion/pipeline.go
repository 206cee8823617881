package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/Jash2606/vector-graph-retrieval-app/ai"
	"github.com/Jash2606/vector-graph-retrieval-app/core"
	"github.com/Jash2606/vector-graph-retrieval-app/storage"
	"github.com/Jash2606/vector-graph-retrieval-app/textproc"
)

const (
	// DefaultLinkFloor is the minimum cosine similarity for an automatic
	// RELATED_TO edge between documents.
	DefaultLinkFloor = 0.85

	// DefaultLinkLimit caps how many neighbors auto-linking considers.
	DefaultLinkLimit = 5
)

// Pipeline orchestrates document ingestion: cleaning, chunking, embedding,
// entity extraction, and the dual-store writes that keep the vector index
// and the graph consistent.
//
// The node and its vector are created as a compensating-action saga: the
// node is written first, and if the vector write fails the node is deleted
// again, so no document ever exists without a vector. Entity enrichment and
// auto-linking run after that pair commits and are best-effort; their
// failures come back as warnings, not errors.
type Pipeline struct {
	graph      storage.GraphStore
	vectors    storage.VectorIndex
	provider   ai.AIProvider
	processor  *textproc.Processor
	entityPool *ants.Pool
	linkFloor  float64
	linkLimit  int
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for entity enrichment.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.entityPool != nil {
			p.entityPool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.entityPool = pool
		return nil
	}
}

// WithProcessor sets the text processor. Default is textproc.NewProcessor().
func WithProcessor(processor *textproc.Processor) Option {
	return func(p *Pipeline) error {
		if processor != nil {
			p.processor = processor
		}
		return nil
	}
}

// WithLinkFloor sets the similarity floor for auto-linking.
func WithLinkFloor(floor float64) Option {
	return func(p *Pipeline) error {
		if floor < 0 || floor > 1 {
			return fmt.Errorf("%w: link floor %v outside [0,1]", core.ErrInvalidInput, floor)
		}
		p.linkFloor = floor
		return nil
	}
}

// WithLinkLimit sets how many auto-link neighbors to consider.
func WithLinkLimit(limit int) Option {
	return func(p *Pipeline) error {
		if limit < 0 {
			return fmt.Errorf("%w: link limit %d is negative", core.ErrInvalidInput, limit)
		}
		p.linkLimit = limit
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	graph storage.GraphStore,
	vectors storage.VectorIndex,
	provider ai.AIProvider,
	opts ...Option,
) (*Pipeline, error) {
	if graph == nil {
		return nil, ErrGraphStoreRequired
	}
	if vectors == nil {
		return nil, ErrVectorIndexRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	entityPool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		graph:      graph,
		vectors:    vectors,
		provider:   provider,
		processor:  textproc.NewProcessor(),
		entityPool: entityPool,
		linkFloor:  DefaultLinkFloor,
		linkLimit:  DefaultLinkLimit,
		logger:     slog.Default().With("component", "ingestion"),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.entityPool != nil {
		p.entityPool.Release()
	}
}

// IngestResult reports the outcome of an ingest or update.
// Warnings carry enrichment failures that did not fail the operation.
type IngestResult struct {
	DocumentId core.ID
	Warnings   []string
}

// Ingest processes raw text into an indexed, cross-referenced document and
// returns its id. The document node and its vector either both exist
// afterwards or neither does; entity enrichment and similarity auto-linking
// failures surface as warnings on the result.
func (p *Pipeline) Ingest(ctx context.Context, text, title string, metadata map[string]string) (*IngestResult, error) {
	cleaned, chunks, err := p.prepare(text)
	if err != nil {
		return nil, err
	}

	embedding, err := p.embed(ctx, cleaned)
	if err != nil {
		return nil, err
	}

	doc := &core.Document{
		Id:       core.NewDocumentID(),
		Title:    title,
		Text:     cleaned,
		Chunks:   chunks,
		Metadata: metadata,
	}

	if err := p.graph.UpsertDocument(ctx, doc); err != nil {
		return nil, err
	}

	vectorID, err := p.vectors.Add(ctx, embedding, doc.Id)
	if err != nil {
		// Compensating delete: a document must never outlive a missing
		// vector.
		if rollbackErr := p.graph.DeleteDocument(ctx, doc.Id); rollbackErr != nil {
			p.logger.Error("rollback of document node failed",
				"document", doc.Id, "err", rollbackErr)
			return nil, errors.Join(err, rollbackErr)
		}
		return nil, err
	}

	doc.VectorId = vectorID
	if err := p.graph.UpsertDocument(ctx, doc); err != nil {
		if removeErr := p.vectors.Remove(ctx, vectorID); removeErr != nil {
			p.logger.Error("rollback of vector entry failed",
				"document", doc.Id, "err", removeErr)
		}
		if rollbackErr := p.graph.DeleteDocument(ctx, doc.Id); rollbackErr != nil &&
			!errors.Is(rollbackErr, core.ErrNotFound) {
			p.logger.Error("rollback of document node failed",
				"document", doc.Id, "err", rollbackErr)
		}
		return nil, err
	}

	result := &IngestResult{DocumentId: doc.Id}
	result.Warnings = append(result.Warnings, p.enrichEntities(ctx, doc.Id, cleaned)...)
	result.Warnings = append(result.Warnings, p.autoLink(ctx, doc.Id, embedding)...)

	p.logger.Info("ingested document", "document", doc.Id, "chunks", len(chunks),
		"warnings", len(result.Warnings))
	return result, nil
}

// Update re-runs the ingestion steps against an existing document id: the
// text is re-cleaned and re-chunked, the vector replaced, and MENTIONS
// edges reconciled against the freshly extracted entity set. Running Update
// twice with the same input leaves the graph and index unchanged the
// second time, apart from the vector slot id.
func (p *Pipeline) Update(ctx context.Context, id core.ID, newText, newTitle string) (*IngestResult, error) {
	doc, err := p.graph.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	cleaned, chunks, err := p.prepare(newText)
	if err != nil {
		return nil, err
	}

	embedding, err := p.embed(ctx, cleaned)
	if err != nil {
		return nil, err
	}

	vectorID, err := p.vectors.Replace(ctx, id, embedding)
	if err != nil {
		return nil, err
	}

	doc.Title = newTitle
	doc.Text = cleaned
	doc.Chunks = chunks
	doc.VectorId = vectorID
	if err := p.graph.UpsertDocument(ctx, doc); err != nil {
		return nil, err
	}

	result := &IngestResult{DocumentId: id}
	result.Warnings = append(result.Warnings, p.reconcileMentions(ctx, id, cleaned)...)
	result.Warnings = append(result.Warnings, p.autoLink(ctx, id, embedding)...)

	p.logger.Info("updated document", "document", id, "warnings", len(result.Warnings))
	return result, nil
}

// Delete removes a document from both stores. The vector entry goes first:
// if graph removal then fails, the vector is not resurrected — the document
// is no longer retrievable semantically and the remaining graph state is
// caught by the maintenance sweep.
func (p *Pipeline) Delete(ctx context.Context, id core.ID) error {
	if _, err := p.graph.GetDocument(ctx, id); err != nil {
		return err
	}

	vectorID, err := p.vectors.VectorID(ctx, id)
	switch {
	case err == nil:
		if err := p.vectors.Remove(ctx, vectorID); err != nil {
			return err
		}
	case errors.Is(err, core.ErrNotFound):
		// Already half-deleted; finish the graph side.
		p.logger.Warn("document had no vector entry", "document", id)
	default:
		return err
	}

	if err := p.graph.DeleteDocument(ctx, id); err != nil {
		return err
	}

	p.logger.Info("deleted document", "document", id)
	return nil
}

// prepare cleans and chunks raw text.
func (p *Pipeline) prepare(text string) (cleaned string, chunks []string, err error) {
	cleaned, err = p.processor.Clean(text)
	if err != nil {
		return "", nil, fmt.Errorf("%w: cleaning input: %v", core.ErrProcessing, err)
	}
	chunks, err = p.processor.Chunk(cleaned)
	if err != nil {
		return "", nil, fmt.Errorf("%w: chunking input: %v", core.ErrProcessing, err)
	}
	return cleaned, chunks, nil
}

// embed computes the document-level embedding over the cleaned full text.
// Retrieval targets whole-document relevance, so the per-chunk texts are
// stored but not individually indexed.
func (p *Pipeline) embed(ctx context.Context, cleaned string) ([]float32, error) {
	embedding, err := p.provider.Embedder().EmbedText(ctx, cleaned)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrEmbedding, err)
	}
	if len(embedding) == 0 {
		return nil, fmt.Errorf("%w: embedder returned an empty vector", core.ErrEmbedding)
	}
	return embedding, nil
}

// enrichEntities extracts entities and links them to the document over the
// worker pool. Every failure becomes a warning; none fails the ingestion.
func (p *Pipeline) enrichEntities(ctx context.Context, docID core.ID, cleaned string) []string {
	extracted, err := p.provider.EntityExtractor().ExtractEntities(ctx, cleaned)
	if err != nil {
		return []string{fmt.Sprintf("entity extraction failed: %v", err)}
	}
	if len(extracted) == 0 {
		return nil
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		warnings []string
	)
	warn := func(format string, args ...any) {
		mu.Lock()
		warnings = append(warnings, fmt.Sprintf(format, args...))
		mu.Unlock()
	}

	for _, raw := range extracted {
		raw := raw
		wg.Add(1)
		task := func() {
			defer wg.Done()
			if err := p.linkEntity(ctx, docID, raw); err != nil {
				warn("entity %q (%s): %v", raw.Name, raw.Type, err)
			}
		}
		if err := p.entityPool.Submit(task); err != nil {
			wg.Done()
			warn("entity %q (%s): submitting task: %v", raw.Name, raw.Type, err)
		}
	}
	wg.Wait()

	return warnings
}

// linkEntity upserts one entity node and its MENTIONS edge.
func (p *Pipeline) linkEntity(ctx context.Context, docID core.ID, raw ai.ExtractedEntity) error {
	entityType := core.EntityType(ai.NormalizeEntityTypeName(raw.Type))
	entity, err := p.graph.UpsertEntity(ctx, raw.Name, entityType)
	if err != nil {
		return err
	}
	return p.graph.CreateEdge(ctx, &core.Edge{
		SourceId: docID,
		TargetId: entity.Id,
		Type:     core.EdgeMentions,
		Weight:   1.0,
	})
}

// autoLink creates RELATED_TO edges to the most similar existing documents.
// Pairs already connected in either direction are left alone.
func (p *Pipeline) autoLink(ctx context.Context, docID core.ID, embedding []float32) []string {
	if p.linkLimit == 0 {
		return nil
	}

	// One extra hit because the document matches itself.
	matches, err := p.vectors.Search(ctx, embedding, p.linkLimit+1)
	if err != nil {
		return []string{fmt.Sprintf("auto-link search failed: %v", err)}
	}

	var warnings []string
	linked := 0
	for _, match := range matches {
		if match.DocumentId == docID || linked >= p.linkLimit {
			continue
		}
		if match.Score < p.linkFloor {
			continue
		}

		exists, err := p.graph.HasEdge(ctx, docID, match.DocumentId, core.EdgeRelatedTo)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("auto-link %s: %v", match.DocumentId, err))
			continue
		}
		if exists {
			continue
		}

		weight := match.Score
		if weight > 1 {
			weight = 1
		}
		edge := &core.Edge{
			SourceId: docID,
			TargetId: match.DocumentId,
			Type:     core.EdgeRelatedTo,
			Weight:   weight,
		}
		if err := p.graph.CreateEdge(ctx, edge); err != nil {
			warnings = append(warnings, fmt.Sprintf("auto-link %s: %v", match.DocumentId, err))
			continue
		}
		linked++
	}
	return warnings
}
