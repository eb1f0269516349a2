// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package reprocess

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/poiesic/archivit/ai"
	"github.com/poiesic/archivit/core"
	"github.com/poiesic/archivit/storage"
)

// Config holds configuration for reprocessing operations.
type Config struct {
	// BatchSize is the number of images to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of images)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed operations
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reembedder regenerates the embedding of every described image in the
// archive. Used after switching embedding models, when stored vectors no
// longer live in the same space as fresh query vectors.
type Reembedder struct {
	repo      storage.ImageRepository
	embedder  ai.Embedder
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	iterator  *ImageIterator
}

// NewReembedder creates a new reembedder.
// progress: where to write progress output (typically os.Stderr)
func NewReembedder(repo storage.ImageRepository, embedder ai.Embedder, config *Config, progress io.Writer) (*Reembedder, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Reembedder{
		repo:      repo,
		embedder:  embedder,
		config:    config,
		progress:  progress,
		processor: NewBatchProcessor(repo, embedder, config.MaxRetries, config.RetryDelay),
		iterator:  NewImageIterator(repo, config.BatchSize),
	}, nil
}

// Run executes the reembedding operation over every described image.
// Progress is reported to the configured writer.
func (r *Reembedder) Run(ctx context.Context) error {
	total, err := r.repo.CountImages(ctx)
	if err != nil {
		return fmt.Errorf("failed to count images: %w", err)
	}
	if total == 0 {
		fmt.Fprintf(r.progress, "No images found in archive (0 images)\n")
		return nil
	}

	fmt.Fprintf(r.progress, "Starting reembedding of %d images (batch size: %d)\n",
		total, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	reembedded := 0
	err = r.iterator.ForEach(ctx, func(records []*core.ImageRecord) error {
		n, err := r.processor.Process(ctx, records)
		if err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}
		reembedded += n
		tracker.Increment(len(records))
		return nil
	})
	if err != nil {
		return err
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reembedding complete. Refreshed %d of %d images in %v (%.1f images/sec)\n",
		reembedded, total, elapsed.Round(time.Second), float64(total)/elapsed.Seconds())

	return nil
}
