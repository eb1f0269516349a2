package core

import (
	"encoding/hex"
	"io"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// HashSize is the digest length in bytes of a content hash.
const HashSize = 32

// hashChunkSize is the buffer size used when streaming file content
// through the digest.
const hashChunkSize = 32 * 1024

// Hash is the content identity of an image: the lowercase hex encoding of a
// 256-bit BLAKE2b digest of the full file bytes. Identical content always
// produces an identical Hash, regardless of filename or location.
type Hash string

// ComputeHash streams r through a BLAKE2b-256 digest in fixed-size chunks and
// returns the resulting content hash. The reader is consumed in full but is
// never buffered whole in memory.
func ComputeHash(r io.Reader) (Hash, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	buf := make([]byte, hashChunkSize)
	if _, err := io.CopyBuffer(h, r, buf); err != nil {
		return "", err
	}
	return Hash(hex.EncodeToString(h.Sum(nil))), nil
}

// HashFromBytes computes the content hash of an in-memory byte slice.
// Convenience for tests and small payloads; large files should use ComputeHash.
func HashFromBytes(data []byte) Hash {
	h, _ := blake2b.New256(nil)
	h.Write(data)
	return Hash(hex.EncodeToString(h.Sum(nil)))
}

// ImageRecord represents an archived image. Its identity is the content hash;
// the filepath is unique per record. A record is immutable once stored except
// for its description linkage.
type ImageRecord struct {
	Hash        Hash
	Filepath    string
	Filename    string
	Size        int64
	Width       *int // nil when the image could not be decoded
	Height      *int
	CreatedAt   time.Time
	ProcessedAt time.Time
	Description string // populated by joins, empty until captioned
}

// Description is the machine-generated caption for an image, keyed one-to-one
// by the owning image's content hash. A later caption for the same hash
// replaces the prior one in place.
type Description struct {
	ImageHash Hash
	Text      string
	Vector    []float32 // embedding of Text, nil until embedded
}

// Tag is a reserved entity for future tagging support. The schema carries
// tags and image_tags tables but nothing in the pipeline populates them.
type Tag struct {
	Name string
}

// SearchResult pairs an image record with a relevance score. Lexical matches
// carry a score of 1; semantic matches carry their cosine similarity.
type SearchResult struct {
	Record *ImageRecord
	Score  float32
}
