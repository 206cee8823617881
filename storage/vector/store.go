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

package vector

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync"

	"github.com/Jash2606/vector-graph-retrieval-app/core"
	"github.com/Jash2606/vector-graph-retrieval-app/storage"
)

// Store is an in-memory inner-product index over unit-normalized embeddings
// with a bidirectional document-id <-> vector-id mapping.
//
// Vector ids are assigned in insertion order and never reused. Removing a
// vector tombstones its slot; tombstoned slots are skipped during search and
// dropped from snapshots.
type Store struct {
	mu      sync.RWMutex
	dim     int
	vectors [][]float32
	docIDs  map[int64]core.ID
	slots   map[core.ID]int64
	live    int
	dir     string
	logger  *slog.Logger
}

var _ storage.VectorIndex = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithSnapshotDir sets the directory Persist and Load use.
// Without it the store is purely in-memory and Persist fails.
func WithSnapshotDir(dir string) Option {
	return func(s *Store) {
		s.dir = dir
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore creates an empty vector store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		docIDs: make(map[int64]core.ID),
		slots:  make(map[core.ID]int64),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add appends an embedding for a document and returns the assigned vector
// id. The embedding is unit-normalized before storage so similarity search
// reduces to an inner product. Fails with ErrInvalidInput if the embedding
// is empty, zero, or disagrees with the index dimension, and with
// ErrStoreWrite if the document already has a live vector.
func (s *Store) Add(ctx context.Context, embedding []float32, documentID core.ID) (int64, error) {
	if documentID == "" {
		return 0, fmt.Errorf("%w: empty document id", core.ErrInvalidInput)
	}
	normalized, err := normalize(embedding)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkDim(len(normalized)); err != nil {
		return 0, err
	}
	if existing, ok := s.slots[documentID]; ok {
		return 0, fmt.Errorf("%w: document %s already has vector %d", core.ErrStoreWrite, documentID, existing)
	}

	id := s.appendLocked(normalized, documentID)
	return id, nil
}

// Replace swaps a document's embedding under one write lock: the old slot is
// tombstoned and a fresh slot appended. Fails with ErrNotFound if the
// document has no live vector.
func (s *Store) Replace(ctx context.Context, documentID core.ID, embedding []float32) (int64, error) {
	normalized, err := normalize(embedding)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkDim(len(normalized)); err != nil {
		return 0, err
	}
	old, ok := s.slots[documentID]
	if !ok {
		return 0, fmt.Errorf("%w: no vector for document %s", core.ErrNotFound, documentID)
	}
	s.tombstoneLocked(old)

	id := s.appendLocked(normalized, documentID)
	return id, nil
}

// Search returns up to k documents ranked by cosine similarity descending.
// Ties are broken by insertion order: the earlier vector id wins. k must be
// at least 1.
func (s *Store) Search(ctx context.Context, query []float32, k int) ([]core.Match, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be >= 1, got %d", core.ErrInvalidInput, k)
	}
	normalized, err := normalize(query)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.dim != 0 && len(normalized) != s.dim {
		return nil, fmt.Errorf("%w: query dimension %d does not match index dimension %d",
			core.ErrInvalidInput, len(normalized), s.dim)
	}

	type hit struct {
		id    int64
		score float64
	}
	hits := make([]hit, 0, s.live)
	for id, vec := range s.vectors {
		if vec == nil {
			continue
		}
		hits = append(hits, hit{id: int64(id), score: dotProduct(normalized, vec)})
	}

	slices.SortFunc(hits, func(a, b hit) int {
		if a.score > b.score {
			return -1
		}
		if a.score < b.score {
			return 1
		}
		// Equal scores: earlier insertion wins.
		if a.id < b.id {
			return -1
		}
		return 1
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	matches := make([]core.Match, 0, len(hits))
	for _, h := range hits {
		matches = append(matches, core.Match{
			DocumentId: s.docIDs[h.id],
			Score:      h.score,
		})
	}
	return matches, nil
}

// Remove tombstones a vector slot and drops both mapping directions.
// Fails with ErrNotFound if the slot is absent or already tombstoned.
func (s *Store) Remove(ctx context.Context, vectorID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if vectorID < 0 || vectorID >= int64(len(s.vectors)) || s.vectors[vectorID] == nil {
		return fmt.Errorf("%w: vector %d", core.ErrNotFound, vectorID)
	}
	s.tombstoneLocked(vectorID)
	return nil
}

// VectorID returns the live vector id for a document.
func (s *Store) VectorID(ctx context.Context, documentID core.ID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.slots[documentID]
	if !ok {
		return 0, fmt.Errorf("%w: no vector for document %s", core.ErrNotFound, documentID)
	}
	return id, nil
}

// Count returns the number of live vectors.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.live
}

// Mappings returns a copy of the live vector-id -> document-id mapping.
func (s *Store) Mappings() map[int64]core.ID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[int64]core.ID, len(s.docIDs))
	for id, docID := range s.docIDs {
		out[id] = docID
	}
	return out
}

// Dimension returns the index dimension, or 0 if no vector was ever added.
func (s *Store) Dimension() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dim
}

// SnapshotDir returns the configured snapshot directory, or "" if the
// store is purely in-memory.
func (s *Store) SnapshotDir() string {
	return s.dir
}

// appendLocked assigns the next slot. Caller holds the write lock.
func (s *Store) appendLocked(vec []float32, documentID core.ID) int64 {
	id := int64(len(s.vectors))
	s.vectors = append(s.vectors, vec)
	s.docIDs[id] = documentID
	s.slots[documentID] = id
	s.live++
	if s.dim == 0 {
		s.dim = len(vec)
	}
	return id
}

// tombstoneLocked clears a live slot. Caller holds the write lock and has
// verified the slot is live.
func (s *Store) tombstoneLocked(id int64) {
	docID := s.docIDs[id]
	s.vectors[id] = nil
	delete(s.docIDs, id)
	delete(s.slots, docID)
	s.live--
}

func (s *Store) checkDim(n int) error {
	if s.dim != 0 && n != s.dim {
		return fmt.Errorf("%w: embedding dimension %d does not match index dimension %d",
			core.ErrInvalidInput, n, s.dim)
	}
	return nil
}

// normalize returns a unit-length copy of the vector.
func normalize(vec []float32) ([]float32, error) {
	if len(vec) == 0 {
		return nil, fmt.Errorf("%w: empty embedding", core.ErrInvalidInput)
	}
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return nil, fmt.Errorf("%w: zero-magnitude embedding", core.ErrInvalidInput)
	}
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}
	return out, nil
}

// dotProduct over unit vectors equals cosine similarity.
func dotProduct(a, b []float32) float64 {
	var sum float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
