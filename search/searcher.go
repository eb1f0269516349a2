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


package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/poiesic/archivit/ai"
	"github.com/poiesic/archivit/core"
	"github.com/poiesic/archivit/storage"
	"github.com/poiesic/archivit/vector"
)

const (
	// DefaultThreshold is the minimum cosine similarity for a semantic hit.
	DefaultThreshold = 0.5

	// DefaultPageSize is the number of results per page.
	DefaultPageSize = 20
)

// Page is one page of search results.
type Page struct {
	Results []*core.SearchResult
	Total   int // size of the full result set, not just this page
	PageNum int
	PerPage int
}

// Searcher provides lexical and semantic search over archived images.
type Searcher struct {
	repository storage.ImageRepository
	embedder   ai.Embedder
	threshold  float32
	pageSize   int
	logger     *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithThreshold sets the minimum cosine similarity for semantic hits.
// Default is DefaultThreshold.
func WithThreshold(threshold float32) Option {
	return func(s *Searcher) error {
		if threshold < -1 || threshold > 1 {
			return ErrInvalidThreshold
		}
		s.threshold = threshold
		return nil
	}
}

// WithPageSize sets the number of results per page.
// Default is DefaultPageSize.
func WithPageSize(size int) Option {
	return func(s *Searcher) error {
		if size < 1 {
			return ErrInvalidPageSize
		}
		s.pageSize = size
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(repository storage.ImageRepository, embedder ai.Embedder, opts ...Option) (*Searcher, error) {
	if repository == nil {
		return nil, ErrImageRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		repository: repository,
		embedder:   embedder,
		threshold:  DefaultThreshold,
		pageSize:   DefaultPageSize,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Lexical finds images whose filename or description contains the query as a
// substring, ordered by filename ascending. An empty or whitespace-only
// query yields an empty page, not an error.
func (s *Searcher) Lexical(ctx context.Context, query string, page int) (*Page, error) {
	page = normalizePage(page)
	query = strings.TrimSpace(query)
	if query == "" {
		return s.emptyPage(page), nil
	}

	records, total, err := s.repository.SearchLexical(ctx, query, s.pageSize, (page-1)*s.pageSize)
	if err != nil {
		s.logger.Error("error running lexical search", "query", query, "err", err)
		return nil, err
	}

	results := make([]*core.SearchResult, len(records))
	for i, record := range records {
		results[i] = &core.SearchResult{Record: record, Score: 1}
	}

	return &Page{
		Results: results,
		Total:   total,
		PageNum: page,
		PerPage: s.pageSize,
	}, nil
}

// Semantic finds images whose description embedding is similar to the query
// embedding. Results are ordered by similarity descending, with ties broken
// by ascending content hash so pagination is stable.
func (s *Searcher) Semantic(ctx context.Context, query string, page int) (*Page, error) {
	return s.SemanticWithMonitor(ctx, query, page, nil)
}

// SemanticWithMonitor is Semantic with observation hooks.
// The monitor receives callbacks at each stage of the search process.
func (s *Searcher) SemanticWithMonitor(ctx context.Context, query string, page int, monitor SearchMonitor) (*Page, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	page = normalizePage(page)
	query = strings.TrimSpace(query)
	if query == "" {
		return s.emptyPage(page), nil
	}

	monitor.Start(query)

	queryVec, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}
	queryVec = vector.Normalize(queryVec)
	monitor.AfterQueryEmbedding(queryVec)

	pairs, err := s.repository.AllEmbeddings(ctx)
	if err != nil {
		s.logger.Error("error loading stored embeddings", "err", err)
		return nil, err
	}

	// Brute-force scan. Every stored vector is compared against the query;
	// vectors from a different embedding space score 0 and fall below any
	// positive threshold.
	type scored struct {
		hash  core.Hash
		score float32
	}
	hits := make([]scored, 0, len(pairs))
	for _, pair := range pairs {
		dim, err := vector.Dim(pair.Embedding)
		if err != nil {
			return nil, fmt.Errorf("corrupt embedding for %s: %w", pair.Hash, err)
		}
		vec, err := vector.Unmarshal(pair.Embedding, dim)
		if err != nil {
			return nil, fmt.Errorf("corrupt embedding for %s: %w", pair.Hash, err)
		}
		score := vector.CosineSimilarity(queryVec, vec)
		if score < s.threshold {
			continue
		}
		hits = append(hits, scored{hash: pair.Hash, score: score})
	}
	monitor.AfterScan(len(pairs), len(hits))

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].hash < hits[j].hash
	})

	total := len(hits)
	start := (page - 1) * s.pageSize
	if start > total {
		start = total
	}
	end := start + s.pageSize
	if end > total {
		end = total
	}

	results := make([]*core.SearchResult, 0, end-start)
	for _, hit := range hits[start:end] {
		record, err := s.repository.GetImage(ctx, hit.hash)
		if err != nil {
			s.logger.Error("error retrieving matched image", "hash", hit.hash, "err", err)
			return nil, err
		}
		results = append(results, &core.SearchResult{Record: record, Score: hit.score})
	}
	monitor.Finish(results)

	return &Page{
		Results: results,
		Total:   total,
		PageNum: page,
		PerPage: s.pageSize,
	}, nil
}

func (s *Searcher) emptyPage(page int) *Page {
	return &Page{PageNum: page, PerPage: s.pageSize}
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}
