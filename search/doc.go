// Package search provides hybrid retrieval over the vector index and the
// relationship graph.
//
// The Searcher gathers two candidate sets concurrently: set A from an
// over-fetched cosine similarity search, set B from bounded graph expansion
// around the entities extracted from the query. The sets are merged by
// document id and scored as a weighted sum; a candidate missing from one
// set scores zero for that component instead of being excluded. Each result
// carries an Explanation of its component scores for debuggability.
//
// Search never writes to either store. Graph failures either fail the call
// or, when WithGraphDegradation is configured, fall back to a vector-only
// ranking marked Degraded.
package search
