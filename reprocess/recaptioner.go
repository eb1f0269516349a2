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
	"log/slog"
	"os"
	"time"

	"github.com/poiesic/archivit/ai"
	"github.com/poiesic/archivit/core"
	"github.com/poiesic/archivit/storage"
	"github.com/poiesic/archivit/vector"
)

// Recaptioner regenerates descriptions for archived images by re-running the
// vision model against the original files. With MissingOnly it backfills only
// images whose earlier captioning failed; otherwise every image is
// recaptioned, replacing prior descriptions in place.
type Recaptioner struct {
	repo        storage.ImageRepository
	captioner   ai.Captioner
	embedder    ai.Embedder
	config      *Config
	progress    io.Writer
	iterator    *ImageIterator
	missingOnly bool
	logger      *slog.Logger
}

// RecaptionResult summarizes one recaptioning run.
type RecaptionResult struct {
	Described int // images whose description was written or replaced
	Failed    int // images that could not be read or captioned
	Elapsed   time.Duration
}

// NewRecaptioner creates a new recaptioner.
// missingOnly restricts the run to images without a description row.
func NewRecaptioner(repo storage.ImageRepository, captioner ai.Captioner, embedder ai.Embedder,
	config *Config, progress io.Writer, missingOnly bool) (*Recaptioner, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if captioner == nil {
		return nil, ErrCaptionerRequired
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

	return &Recaptioner{
		repo:        repo,
		captioner:   captioner,
		embedder:    embedder,
		config:      config,
		progress:    progress,
		iterator:    NewImageIterator(repo, config.BatchSize),
		missingOnly: missingOnly,
		logger:      slog.Default().With("component", "recaptioner"),
	}, nil
}

// Run executes the recaptioning operation. Per-image failures are logged and
// counted but never abort the run; a failed image simply keeps whatever
// description state it had before.
func (rc *Recaptioner) Run(ctx context.Context) (*RecaptionResult, error) {
	start := time.Now()
	result := &RecaptionResult{}

	process := func(records []*core.ImageRecord) error {
		for _, record := range records {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err := rc.recaption(ctx, record); err != nil {
				rc.logger.Error("error recaptioning image", "file", record.Filepath, "err", err)
				result.Failed++
				continue
			}
			result.Described++
		}
		return nil
	}

	var err error
	if rc.missingOnly {
		err = rc.iterator.ForEachMissingDescription(ctx, process)
	} else {
		err = rc.iterator.ForEach(ctx, process)
	}
	result.Elapsed = time.Since(start)
	if err != nil {
		return result, err
	}

	fmt.Fprintf(rc.progress, "Recaptioning complete. Described %d images, %d failed, in %v\n",
		result.Described, result.Failed, result.Elapsed.Round(time.Second))

	return result, nil
}

func (rc *Recaptioner) recaption(ctx context.Context, record *core.ImageRecord) error {
	data, err := os.ReadFile(record.Filepath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", record.Filepath, err)
	}

	caption, err := rc.captioner.DescribeImage(ctx, data)
	if err != nil {
		return fmt.Errorf("failed to caption %s: %w", record.Filepath, err)
	}

	embedding, err := rc.embedder.EmbedText(ctx, caption)
	if err != nil {
		return fmt.Errorf("failed to embed caption for %s: %w", record.Filepath, err)
	}

	normalized := vector.Normalize(embedding)
	if err := rc.repo.UpsertDescription(ctx, record.Hash, caption, vector.Marshal(normalized)); err != nil {
		return fmt.Errorf("failed to store description for %s: %w", record.Hash, err)
	}
	return nil
}
