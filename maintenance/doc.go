// Package maintenance provides offline repair jobs for the two stores.
//
// The Reindexer rebuilds the vector index by re-embedding every document
// in the graph, in batches with retry and progress reporting. Sweep
// reconciles the index with the graph after a crash: orphaned index
// entries are dropped, drifted vector ids are rewritten, and documents
// left without a vector are reported for reindexing.
//
// Both jobs assume exclusive access to the stores; run them while the
// ingestion pipeline is idle.
package maintenance
