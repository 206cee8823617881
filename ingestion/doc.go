// Package ingestion provides pipeline orchestration for turning raw text
// into indexed, cross-referenced documents.
//
// The Pipeline type manages the ingestion workflow, including:
//   - Cleaning and chunking the input text
//   - Computing the document-level embedding
//   - Writing the document node and its vector as a compensating-action saga
//   - Extracting entities and linking them via MENTIONS edges
//   - Auto-linking similar documents via weighted RELATED_TO edges
//
// The node/vector pair is all-or-nothing: if the vector write fails, the
// node is rolled back. Entity enrichment and auto-linking are best-effort;
// their failures are reported as warnings on the IngestResult, never as a
// failed ingestion.
package ingestion
