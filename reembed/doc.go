// Package reembed recomputes the vectors of every document in a collection,
// for example after switching embedding models.
//
// Documents are processed in batches. Each batch is embedded with retry and
// exponential backoff, the vectors are normalized to unit length so that dot
// product equals cosine similarity, and the documents are written back.
// Progress is reported per document.
package reembed
