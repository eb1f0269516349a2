package reprocess

import "errors"

var (
	// ErrRepositoryRequired is returned when an image repository is not provided.
	ErrRepositoryRequired = errors.New("image repository required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrCaptionerRequired is returned when a captioner is not provided.
	ErrCaptionerRequired = errors.New("captioner required")
)
