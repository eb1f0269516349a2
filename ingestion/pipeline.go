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


package ingestion

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/archivit/ai"
	"github.com/poiesic/archivit/scanner"
	"github.com/poiesic/archivit/storage"
)

// Pipeline orchestrates the ingestion of image files: discovery, dedup by
// content hash, captioning, and embedding. Captioning and embedding run on a
// bounded worker pool since they are dominated by blocking network I/O.
type Pipeline struct {
	repository storage.ImageRepository
	scanner    *scanner.Scanner
	pool       *ants.Pool
	proc       *imageProcessor
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent caption processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	repository storage.ImageRepository,
	fileScanner *scanner.Scanner,
	provider ai.AIProvider,
	opts ...Option,
) (*Pipeline, error) {
	if repository == nil {
		return nil, ErrImageRepositoryRequired
	}
	if fileScanner == nil {
		return nil, ErrScannerRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		repository: repository,
		scanner:    fileScanner,
		pool:       pool,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	proc, err := newImageProcessor(repository, provider.Captioner(), provider.Embedder(), p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}
	p.proc = proc

	return p, nil
}

// Result summarizes one ingestion run.
type Result struct {
	Processed int           // new images captioned and embedded
	Existing  int           // images whose content hash was already archived
	Failed    int           // images that could not be read, captioned, or embedded
	Elapsed   time.Duration // wall-clock duration of the run
}

// Ingest scans root and archives every new image found under it. Images
// whose content hash is already stored are counted as existing and not
// reprocessed. Captioning failures leave the image record in place without a
// description and never abort the batch.
func (p *Pipeline) Ingest(ctx context.Context, root string) (*Result, error) {
	start := time.Now()

	seq, err := p.scanner.Scan(ctx, root)
	if err != nil {
		return nil, err
	}

	var (
		processed atomic.Int64
		existing  atomic.Int64
		failed    atomic.Int64
		wg        sync.WaitGroup
	)

	for record := range seq {
		if ctx.Err() != nil {
			break
		}

		// Insert-if-absent on the content hash decides exactly one winner
		// when the same content shows up more than once in a batch.
		added, err := p.repository.AddImage(ctx, record)
		if err != nil {
			p.logger.Error("error adding image", "file", record.Filepath, "err", err)
			failed.Add(1)
			continue
		}
		if !added {
			p.logger.Debug("image already archived", "hash", record.Hash, "file", record.Filename)
			existing.Add(1)
			continue
		}

		record := record
		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()
			if err := p.proc.process(ctx, record); err != nil {
				p.logger.Error("error processing image", "file", record.Filepath, "err", err)
				failed.Add(1)
				return
			}
			processed.Add(1)
		})
		if submitErr != nil {
			wg.Done()
			p.logger.Error("error submitting image for processing", "file", record.Filepath, "err", submitErr)
			failed.Add(1)
		}
	}

	wg.Wait()

	result := &Result{
		Processed: int(processed.Load()),
		Existing:  int(existing.Load()),
		Failed:    int(failed.Load()),
		Elapsed:   time.Since(start),
	}
	p.logger.Info("ingestion complete",
		"processed", result.Processed,
		"existing", result.Existing,
		"failed", result.Failed,
		"elapsed", result.Elapsed)

	return result, ctx.Err()
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
