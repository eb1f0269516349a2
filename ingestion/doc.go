// Package ingestion provides pipeline orchestration for archiving images.
//
// The Pipeline type manages the ingestion workflow for image files, including:
//   - Discovering files through a directory scanner
//   - Deduplicating by content hash (insert-if-absent in storage)
//   - Captioning new images and embedding the captions concurrently
//
// Captioning runs on a bounded worker pool because the external vision model
// dominates the cost. A caption or embedding failure is logged and counted
// but never aborts the batch; the affected image stays archived without a
// description so a later backfill pass can retry it.
package ingestion
