package ingestion

import (
	"context"
	"errors"
	"fmt"

	"github.com/Jash2606/vector-graph-retrieval-app/ai"
	"github.com/Jash2606/vector-graph-retrieval-app/core"
)

// reconcileMentions brings a document's MENTIONS edges in line with the
// entities extracted from its current text: stale edges are removed, new
// ones added, and unchanged ones left untouched. Failures degrade to
// warnings like the rest of the enrichment path.
func (p *Pipeline) reconcileMentions(ctx context.Context, docID core.ID, cleaned string) []string {
	extracted, err := p.provider.EntityExtractor().ExtractEntities(ctx, cleaned)
	if err != nil {
		// Leave the existing edges alone rather than wiping them on a
		// transient extractor failure.
		return []string{fmt.Sprintf("entity extraction failed: %v", err)}
	}

	desired := make(map[core.ID]ai.ExtractedEntity, len(extracted))
	for _, raw := range extracted {
		entityType := core.EntityType(ai.NormalizeEntityTypeName(raw.Type))
		id := core.IDFromEntity(core.NormalizeEntityName(raw.Name), entityType)
		desired[id] = raw
	}

	existing := make(map[core.ID]bool)
	edges, err := p.graph.EdgesFrom(ctx, docID)
	if err != nil {
		return []string{fmt.Sprintf("listing mention edges: %v", err)}
	}
	for _, edge := range edges {
		if edge.Type == core.EdgeMentions {
			existing[edge.TargetId] = true
		}
	}

	var warnings []string
	for target := range existing {
		if _, keep := desired[target]; keep {
			continue
		}
		if err := p.graph.DeleteEdge(ctx, docID, target, core.EdgeMentions); err != nil &&
			!errors.Is(err, core.ErrNotFound) {
			warnings = append(warnings, fmt.Sprintf("removing stale mention %s: %v", target, err))
		}
	}

	for id, raw := range desired {
		if existing[id] {
			continue
		}
		if err := p.linkEntity(ctx, docID, raw); err != nil {
			warnings = append(warnings, fmt.Sprintf("entity %q (%s): %v", raw.Name, raw.Type, err))
		}
	}
	return warnings
}
