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

// Package storage defines the storage contracts for the retrieval engine.
//
// Two stores back the engine:
//
//   - VectorIndex: a similarity index over document embeddings with a
//     bidirectional document-id <-> vector-id mapping.
//   - GraphStore: typed document and entity nodes connected by typed,
//     weighted, directed edges, with bounded-depth traversal.
//
// This package holds the interfaces and the MUS wire serializers; the
// concrete implementations live in the vector and badger subpackages.
//
// # Constructor Return Type Pattern
//
// Public constructors in the implementation subpackages return these
// interfaces rather than concrete types, so consumers never couple to a
// specific backend and tests can substitute in-memory implementations:
//
//	graph, err := badger.NewGraphStore(backend)  // returns storage.GraphStore
//
// # Thread Safety
//
// All implementations must be safe for concurrent use from multiple
// goroutines. Write operations are all-or-nothing: a failed write leaves
// no partial record or dangling index entry behind.
//
// # Context Support
//
// Store methods accept context.Context for cancellation and timeout
// support. Pass context.Background() for operations without specific
// timeout requirements.
package storage
