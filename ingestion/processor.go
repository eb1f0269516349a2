package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/poiesic/archivit/ai"
	"github.com/poiesic/archivit/core"
	"github.com/poiesic/archivit/storage"
	"github.com/poiesic/archivit/vector"
)

// imageProcessor runs the caption-then-embed stage for a single new record.
type imageProcessor struct {
	repository storage.ImageRepository
	captioner  ai.Captioner
	embedder   ai.Embedder
	logger     *slog.Logger
}

// newImageProcessor creates an image processor.
func newImageProcessor(repository storage.ImageRepository, captioner ai.Captioner, embedder ai.Embedder, logger *slog.Logger) (*imageProcessor, error) {
	if repository == nil {
		return nil, fmt.Errorf("image repository required")
	}
	if captioner == nil {
		return nil, fmt.Errorf("captioner required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &imageProcessor{
		repository: repository,
		captioner:  captioner,
		embedder:   embedder,
		logger:     logger.With("processor", "images"),
	}, nil
}

// process captions the image, embeds the caption, and stores the description.
// On any failure the record keeps no description row at all, so a later
// backfill pass can find and retry it. Placeholder captions are never
// written and failed captions are never embedded.
func (ip *imageProcessor) process(ctx context.Context, record *core.ImageRecord) error {
	data, err := os.ReadFile(record.Filepath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", record.Filepath, err)
	}

	caption, err := ip.captioner.DescribeImage(ctx, data)
	if err != nil {
		return fmt.Errorf("failed to caption %s: %w", record.Filepath, err)
	}

	embedding, err := ip.embedder.EmbedText(ctx, caption)
	if err != nil {
		return fmt.Errorf("failed to embed caption for %s: %w", record.Filepath, err)
	}
	embedding = vector.Normalize(embedding)

	if err := ip.repository.UpsertDescription(ctx, record.Hash, caption, vector.Marshal(embedding)); err != nil {
		return fmt.Errorf("failed to store description for %s: %w", record.Filepath, err)
	}

	ip.logger.Debug("image described", "hash", record.Hash, "file", record.Filename)
	return nil
}
