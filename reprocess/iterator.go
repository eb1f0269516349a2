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

	"github.com/poiesic/archivit/core"
	"github.com/poiesic/archivit/storage"
)

const (
	// DefaultBatchSize is the default number of images to process in each batch
	DefaultBatchSize = 100
)

// ImageIterator iterates over archived images in batches.
type ImageIterator struct {
	repo      storage.ImageRepository
	batchSize int
}

// NewImageIterator creates a new image iterator.
// batchSize: number of images to process in each batch (must be > 0)
func NewImageIterator(repo storage.ImageRepository, batchSize int) *ImageIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &ImageIterator{
		repo:      repo,
		batchSize: batchSize,
	}
}

// ForEach iterates over all archived images, calling fn for each batch.
// Iteration stops on first error from fn or when all images are processed.
// Context cancellation is checked between batches.
func (it *ImageIterator) ForEach(ctx context.Context, fn func([]*core.ImageRecord) error) error {
	records, err := it.repo.AllImages(ctx)
	if err != nil {
		return err
	}
	return it.forEach(ctx, records, fn)
}

// ForEachMissingDescription iterates only over images that have no
// description row, in the same batched fashion as ForEach.
func (it *ImageIterator) ForEachMissingDescription(ctx context.Context, fn func([]*core.ImageRecord) error) error {
	records, err := it.repo.ImagesMissingDescription(ctx)
	if err != nil {
		return err
	}
	return it.forEach(ctx, records, fn)
}

func (it *ImageIterator) forEach(ctx context.Context, records []*core.ImageRecord, fn func([]*core.ImageRecord) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if len(records) == 0 {
		return nil
	}

	for i := 0; i < len(records); i += it.batchSize {
		end := i + it.batchSize
		if end > len(records) {
			end = len(records)
		}

		if err := fn(records[i:end]); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	return nil
}
