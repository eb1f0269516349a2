package ingestion

import "errors"

var (
	// ErrImageRepositoryRequired is returned when an image repository is not provided.
	ErrImageRepositoryRequired = errors.New("image repository required")

	// ErrScannerRequired is returned when a scanner is not provided.
	ErrScannerRequired = errors.New("scanner required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")
)
