package storage

import (
	"context"

	"github.com/poiesic/archivit/core"
)

// HashEmbedding pairs a content hash with its serialized embedding blob.
// Returned by AllEmbeddings for brute-force similarity scans.
type HashEmbedding struct {
	Hash      core.Hash
	Embedding []byte
}

// ImageRepository provides operations for managing archived images and their
// descriptions. Implementations must be thread-safe and must make each write
// atomic per row, so that concurrent ingestion attempts for the same hash
// converge to one record.
type ImageRepository interface {
	// AddImage inserts an image record if no record with its content hash
	// exists yet. Returns true if the record was inserted, false if a record
	// with the same hash was already present. This insert-if-absent is the
	// linearization point for the at-most-one-processing-per-hash invariant.
	AddImage(ctx context.Context, record *core.ImageRecord) (bool, error)

	// GetImage retrieves an image record by content hash, with its
	// description text joined in when one exists.
	// Returns ErrNotFound if no record exists for the hash.
	GetImage(ctx context.Context, hash core.Hash) (*core.ImageRecord, error)

	// UpsertDescription inserts or replaces the description for a hash.
	// A later caption for the same hash replaces the prior one in place.
	// The embedding blob may be nil when no embedding is available.
	UpsertDescription(ctx context.Context, hash core.Hash, text string, embedding []byte) error

	// GetEmbedding returns the serialized embedding for a hash if the
	// description row exists and has one, else ErrNotFound.
	GetEmbedding(ctx context.Context, hash core.Hash) ([]byte, error)

	// AllEmbeddings returns every (hash, embedding) pair with a non-null
	// embedding. Used by the brute-force semantic scan.
	AllEmbeddings(ctx context.Context) ([]HashEmbedding, error)

	// AllImages returns every image record, with description text joined in,
	// ordered by filename ascending. Used by batch maintenance.
	AllImages(ctx context.Context) ([]*core.ImageRecord, error)

	// ImagesMissingDescription returns records that have no description row,
	// ordered by filename ascending.
	ImagesMissingDescription(ctx context.Context) ([]*core.ImageRecord, error)

	// SearchLexical finds records whose filename or description text contains
	// the substring, ordered by filename ascending. Both the returned page
	// and the total count are derived from the same predicate. The substring
	// is always bound as a query parameter, never interpolated.
	SearchLexical(ctx context.Context, substring string, limit, offset int) ([]*core.ImageRecord, int, error)

	// CountImages returns the total number of image records.
	CountImages(ctx context.Context) (int, error)

	// Close closes the storage backend and releases resources.
	Close() error
}
