package ai

import "context"

// Captioner generates natural-language descriptions of images.
// Implementations must be thread-safe for concurrent use.
type Captioner interface {
	// DescribeImage returns a human-readable description of the image bytes.
	// Transient service failures are retried internally; if all attempts fail
	// the error is returned to the caller. A Captioner never substitutes
	// placeholder text for a failed caption.
	DescribeImage(ctx context.Context, imageData []byte) (string, error)
}

// Embedder generates vector embeddings from text for semantic similarity search.
// Embeddings are deterministic per model version: the same text and model
// always produce the same vector.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Captioner and Embedder instances,
// ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Captioner returns the image description service.
	// The returned Captioner is safe for concurrent use.
	Captioner() Captioner

	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
