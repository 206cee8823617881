// Package vector implements storage.VectorIndex as an in-memory
// inner-product index over unit-normalized embeddings.
//
// The index is flat: search scans every live vector, which keeps ranking
// exact and insertion-order tie-breaking deterministic. Snapshots are two
// MUS-encoded files, one for the vector slots and one for the id mapping,
// written atomically via temp-file rename. Load refuses a snapshot whose
// halves disagree instead of silently dropping vectors.
package vector
