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


// Package ai provides abstractions for the AI services the retrieval engine
// consumes: text embedding and named-entity extraction.
//
// The core engine depends only on the interfaces defined here, never on a
// concrete model or vendor:
//
//   - Embedder: given text, return a fixed-length numeric vector
//   - EntityExtractor: given text, return a list of (name, type) pairs
//   - AIProvider: aggregates both services for initialization and lifecycle
//
// Two implementation sub-packages exist:
//
//   - ai/openai: production implementation using OpenAI-compatible APIs
//   - ai/mock: deterministic test doubles without external dependencies
//
// Public constructors in ai/openai return interface types to enforce
// abstraction; mock constructors return concrete types so tests can inject
// behavior and assert on call counts.
package ai
