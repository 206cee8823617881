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


package core

import "errors"

// Error taxonomy for the retrieval engine. Every component wraps one of
// these sentinels with fmt.Errorf("%w: ...") so callers can classify
// failures with errors.Is while still seeing the offending id or field.
var (
	// ErrInvalidInput indicates the caller supplied malformed or
	// out-of-range input. Not retryable.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates a referenced id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidEdge indicates an edge constraint violation: a missing
	// endpoint, an unknown edge type, or a weight outside [0,1].
	ErrInvalidEdge = errors.New("invalid edge")

	// ErrProcessing indicates text cleaning or chunking failed during
	// ingestion. Retryable by the caller after fixing the input.
	ErrProcessing = errors.New("text processing failed")

	// ErrEmbedding indicates the embedding service was unavailable or
	// returned a vector of the wrong dimension. Retryable by the caller;
	// the pipeline rolls back any partial writes before surfacing it.
	ErrEmbedding = errors.New("embedding failed")

	// ErrStoreWrite indicates a storage-layer write failure.
	// Fatal for the operation, never silently swallowed.
	ErrStoreWrite = errors.New("store write failed")

	// ErrCorruptState indicates persisted state failed integrity checks
	// on load, e.g. the vector index and id mapping disagree in size.
	ErrCorruptState = errors.New("corrupt persisted state")

	// ErrSearch indicates a query-time failure in either store.
	ErrSearch = errors.New("search failed")
)
