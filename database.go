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


package archivit

import (
	"io"
	"log/slog"

	"github.com/poiesic/archivit/ai"
	"github.com/poiesic/archivit/ai/ollama"
	"github.com/poiesic/archivit/ingestion"
	"github.com/poiesic/archivit/reprocess"
	"github.com/poiesic/archivit/scanner"
	"github.com/poiesic/archivit/search"
	"github.com/poiesic/archivit/storage"
	"github.com/poiesic/archivit/storage/sqlite"
)

// Archive is the top-level handle for an image archive: the SQLite store
// plus the AI services used to describe and embed its images.
type Archive struct {
	backend  *sqlite.Backend
	repo     storage.ImageRepository
	provider ai.AIProvider
	logger   *slog.Logger
}

// ArchiveOption configures an Archive.
type ArchiveOption func(*archiveOptions)

type archiveOptions struct {
	aiConfig *ai.Config
}

// WithAIConfig sets the AI service configuration used to reach the caption
// and embedding models.
func WithAIConfig(config *ai.Config) ArchiveOption {
	return func(o *archiveOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// Open opens or creates the archive database at filePath.
func Open(filePath string, opts ...ArchiveOption) (*Archive, error) {
	options := &archiveOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := sqlite.OpenBackend(filePath)
	if err != nil {
		return nil, err
	}

	repo, err := sqlite.NewImageRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	provider, err := ollama.NewProvider(options.aiConfig)
	if err != nil {
		backend.Close()
		return nil, err
	}

	return &Archive{
		backend:  backend,
		repo:     repo,
		provider: provider,
		logger:   slog.Default(),
	}, nil
}

// Close releases the AI provider and the storage backend.
func (a *Archive) Close() error {
	if err := a.provider.Close(); err != nil {
		a.logger.Error("error closing AI provider", "err", err)
	}

	if err := a.repo.Close(); err != nil {
		a.logger.Error("error closing image repository", "err", err)
		return err
	}
	return nil
}

// ImageRepository exposes the underlying image store.
func (a *Archive) ImageRepository() storage.ImageRepository {
	return a.repo
}

// Provider exposes the configured AI services.
func (a *Archive) Provider() ai.AIProvider {
	return a.provider
}

// NewIngestionPipeline creates a pipeline that archives images from disk.
func (a *Archive) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	fileScanner, err := scanner.NewScanner()
	if err != nil {
		return nil, err
	}
	return ingestion.NewPipeline(a.repo, fileScanner, a.provider, opts...)
}

// NewSearcher creates a searcher over the archive.
func (a *Archive) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(a.repo, a.provider.Embedder(), opts...)
}

// NewReembedder creates a batch reembedder writing progress to progress.
func (a *Archive) NewReembedder(config *reprocess.Config, progress io.Writer) (*reprocess.Reembedder, error) {
	return reprocess.NewReembedder(a.repo, a.provider.Embedder(), config, progress)
}

// NewRecaptioner creates a batch recaptioner writing progress to progress.
func (a *Archive) NewRecaptioner(config *reprocess.Config, progress io.Writer, missingOnly bool) (*reprocess.Recaptioner, error) {
	return reprocess.NewRecaptioner(a.repo, a.provider.Captioner(), a.provider.Embedder(),
		config, progress, missingOnly)
}
