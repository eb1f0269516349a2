package reprocess

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/archivit/ai"
	"github.com/poiesic/archivit/core"
	"github.com/poiesic/archivit/storage"
	"github.com/poiesic/archivit/vector"
)

// BatchProcessor regenerates embeddings for batches of described images.
type BatchProcessor struct {
	repo           storage.ImageRepository
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of retry attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(repo storage.ImageRepository, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		repo:           repo,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process embeds the description texts of a batch and writes the refreshed
// vectors back. Images without a description are skipped; there is nothing
// to embed for them. Vectors are normalized after embedding so cosine
// similarity compares directions only.
func (bp *BatchProcessor) Process(ctx context.Context, records []*core.ImageRecord) (int, error) {
	described := make([]*core.ImageRecord, 0, len(records))
	for _, record := range records {
		if record.Description != "" {
			described = append(described, record)
		}
	}
	if len(described) == 0 {
		return 0, nil
	}

	texts := make([]string, len(described))
	for i, record := range described {
		texts[i] = record.Description
	}

	var embeddings [][]float32
	err := ai.RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)
	if err != nil {
		return 0, fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(embeddings) != len(described) {
		return 0, fmt.Errorf("embedding count mismatch: expected %d, got %d", len(described), len(embeddings))
	}

	for i, record := range described {
		normalized := vector.Normalize(embeddings[i])
		if err := bp.repo.UpsertDescription(ctx, record.Hash, record.Description, vector.Marshal(normalized)); err != nil {
			return 0, fmt.Errorf("failed to update embedding for %s: %w", record.Hash, err)
		}
	}

	return len(described), nil
}
