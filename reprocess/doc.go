// Package reprocess provides batch maintenance over an existing archive:
// regenerating embeddings after an embedding model change, and recaptioning
// images whose descriptions are missing or stale.
//
// This package supports batch iteration over archived images, progress
// tracking, retry logic with exponential backoff, and vector normalization
// to keep stored embeddings compatible with cosine similarity search.
package reprocess
