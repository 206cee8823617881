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

package maintenance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Jash2606/vector-graph-retrieval-app/core"
	"github.com/Jash2606/vector-graph-retrieval-app/storage"
)

// SweepReport summarizes what a consistency sweep found and fixed.
type SweepReport struct {
	// OrphanedVectors is the number of index entries removed because
	// their document no longer exists in the graph.
	OrphanedVectors int

	// RepairedDocuments is the number of document nodes rewritten because
	// their recorded vector id disagreed with the live mapping.
	RepairedDocuments int

	// MissingVectors lists documents that have no live vector. A reindex
	// restores them.
	MissingVectors []core.ID
}

// Sweep reconciles the vector index with the graph. Document deletion
// removes the vector first, so a crash between the two writes can leave an
// index entry pointing at a deleted node, or a node whose vector is gone.
// The sweep drops orphaned index entries, rewrites nodes whose vector id
// drifted, and reports documents that need re-embedding.
func Sweep(ctx context.Context, graph storage.GraphStore, vectors storage.VectorIndex) (*SweepReport, error) {
	if graph == nil {
		return nil, ErrGraphStoreRequired
	}
	if vectors == nil {
		return nil, ErrVectorIndexRequired
	}

	report := &SweepReport{}

	for vectorID, docID := range vectors.Mappings() {
		_, err := graph.GetDocument(ctx, docID)
		if err == nil {
			continue
		}
		if !errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("failed to check document %s: %w", docID, err)
		}

		if err := vectors.Remove(ctx, vectorID); err != nil && !errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("failed to remove orphaned vector %d: %w", vectorID, err)
		}
		slog.Debug("removed orphaned vector", "vectorId", vectorID, "documentId", docID)
		report.OrphanedVectors++
	}

	docs, err := graph.AllDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	for _, doc := range docs {
		vectorID, err := vectors.VectorID(ctx, doc.Id)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				report.MissingVectors = append(report.MissingVectors, doc.Id)
				continue
			}
			return nil, fmt.Errorf("failed to look up vector for document %s: %w", doc.Id, err)
		}

		if vectorID != doc.VectorId {
			doc.VectorId = vectorID
			if err := graph.UpsertDocument(ctx, doc); err != nil {
				return nil, fmt.Errorf("failed to repair document %s: %w", doc.Id, err)
			}
			report.RepairedDocuments++
		}
	}

	return report, nil
}
