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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/archivit/ai/mock"
	"github.com/poiesic/archivit/core"
	"github.com/poiesic/archivit/storage"
	"github.com/poiesic/archivit/storage/sqlite"
	"github.com/poiesic/archivit/vector"
)

func newTestRepo(t *testing.T) storage.ImageRepository {
	t.Helper()
	repo, err := sqlite.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

// addDescribed stores an image with the given caption and embedding vector.
func addDescribed(t *testing.T, repo storage.ImageRepository, name, caption string, vec []float32) core.Hash {
	t.Helper()
	ctx := context.Background()
	record := &core.ImageRecord{
		Hash:      core.HashFromBytes([]byte(name)),
		Filepath:  "/library/" + name,
		Filename:  name,
		Size:      2048,
		CreatedAt: time.Now().UTC(),
	}
	added, err := repo.AddImage(ctx, record)
	require.NoError(t, err)
	require.True(t, added)

	var blob []byte
	if vec != nil {
		blob = vector.Marshal(vector.Normalize(vec))
	}
	require.NoError(t, repo.UpsertDescription(ctx, record.Hash, caption, blob))
	return record.Hash
}

// queryEmbedder returns a mock embedder that answers every query with vec.
func queryEmbedder(vec []float32) *mock.MockEmbedder {
	e := mock.NewMockEmbedder()
	e.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return vec, nil
	}
	return e
}

func TestNewSearcherValidation(t *testing.T) {
	repo := newTestRepo(t)
	embedder := mock.NewMockEmbedder()

	_, err := NewSearcher(nil, embedder)
	assert.ErrorIs(t, err, ErrImageRepositoryRequired)

	_, err = NewSearcher(repo, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)

	_, err = NewSearcher(repo, embedder, WithThreshold(1.5))
	assert.ErrorIs(t, err, ErrInvalidThreshold)

	_, err = NewSearcher(repo, embedder, WithPageSize(0))
	assert.ErrorIs(t, err, ErrInvalidPageSize)
}

func TestLexicalSearch(t *testing.T) {
	repo := newTestRepo(t)
	addDescribed(t, repo, "harbor-sunrise.jpg", "boats in a harbor at sunrise", nil)
	addDescribed(t, repo, "IMG_0099.jpg", "a sailboat leaving the harbor", nil)
	addDescribed(t, repo, "forest.jpg", "a dense pine forest", nil)

	s, err := NewSearcher(repo, mock.NewMockEmbedder())
	require.NoError(t, err)

	page, err := s.Lexical(context.Background(), "harbor", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	require.Len(t, page.Results, 2)
	// Filename ascending, from both filename and description matches.
	assert.Equal(t, "IMG_0099.jpg", page.Results[0].Record.Filename)
	assert.Equal(t, "harbor-sunrise.jpg", page.Results[1].Record.Filename)
	assert.Equal(t, float32(1), page.Results[0].Score)
}

func TestLexicalEmptyQuery(t *testing.T) {
	repo := newTestRepo(t)
	addDescribed(t, repo, "a.jpg", "something", nil)

	s, err := NewSearcher(repo, mock.NewMockEmbedder())
	require.NoError(t, err)

	for _, q := range []string{"", "   ", "\t\n"} {
		page, err := s.Lexical(context.Background(), q, 1)
		require.NoError(t, err)
		assert.Empty(t, page.Results)
		assert.Zero(t, page.Total)
	}
}

func TestSemanticThresholdFiltering(t *testing.T) {
	repo := newTestRepo(t)
	exact := addDescribed(t, repo, "exact.jpg", "exact match", []float32{1, 0, 0})
	near := addDescribed(t, repo, "near.jpg", "near match", []float32{0.6, 0.8, 0})
	addDescribed(t, repo, "far.jpg", "unrelated", []float32{0, 1, 0})

	s, err := NewSearcher(repo, queryEmbedder([]float32{1, 0, 0}))
	require.NoError(t, err)

	page, err := s.Semantic(context.Background(), "query", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	require.Len(t, page.Results, 2)

	// Similarity descending: exact (1.0) before near (0.6); the orthogonal
	// vector scores 0 and is dropped by the 0.5 threshold.
	assert.Equal(t, exact, page.Results[0].Record.Hash)
	assert.Equal(t, near, page.Results[1].Record.Hash)
	assert.Greater(t, page.Results[0].Score, page.Results[1].Score)
	for _, result := range page.Results {
		assert.GreaterOrEqual(t, result.Score, float32(DefaultThreshold))
	}
}

func TestSemanticTieBreakByHash(t *testing.T) {
	repo := newTestRepo(t)
	h1 := addDescribed(t, repo, "twin-one.jpg", "twin", []float32{1, 0, 0})
	h2 := addDescribed(t, repo, "twin-two.jpg", "twin", []float32{1, 0, 0})

	s, err := NewSearcher(repo, queryEmbedder([]float32{1, 0, 0}))
	require.NoError(t, err)

	page, err := s.Semantic(context.Background(), "query", 1)
	require.NoError(t, err)
	require.Len(t, page.Results, 2)

	lo, hi := h1, h2
	if lo > hi {
		lo, hi = hi, lo
	}
	assert.Equal(t, lo, page.Results[0].Record.Hash)
	assert.Equal(t, hi, page.Results[1].Record.Hash)
}

func TestSemanticPagination(t *testing.T) {
	repo := newTestRepo(t)
	vecs := [][]float32{{1, 0, 0}, {0.9, 0.1, 0}, {0.8, 0.2, 0}}
	names := []string{"p1.jpg", "p2.jpg", "p3.jpg"}
	for i := range vecs {
		addDescribed(t, repo, names[i], "paged", vecs[i])
	}

	s, err := NewSearcher(repo, queryEmbedder([]float32{1, 0, 0}), WithPageSize(2))
	require.NoError(t, err)
	ctx := context.Background()

	first, err := s.Semantic(ctx, "query", 1)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Total)
	require.Len(t, first.Results, 2)

	second, err := s.Semantic(ctx, "query", 2)
	require.NoError(t, err)
	assert.Equal(t, 3, second.Total)
	require.Len(t, second.Results, 1)

	// Pages are disjoint.
	assert.NotEqual(t, first.Results[0].Record.Hash, second.Results[0].Record.Hash)
	assert.NotEqual(t, first.Results[1].Record.Hash, second.Results[0].Record.Hash)

	third, err := s.Semantic(ctx, "query", 3)
	require.NoError(t, err)
	assert.Empty(t, third.Results)
	assert.Equal(t, 3, third.Total)
}

func TestSemanticPageBelowOne(t *testing.T) {
	repo := newTestRepo(t)
	addDescribed(t, repo, "solo.jpg", "solo", []float32{1, 0, 0})

	s, err := NewSearcher(repo, queryEmbedder([]float32{1, 0, 0}))
	require.NoError(t, err)

	page, err := s.Semantic(context.Background(), "query", -3)
	require.NoError(t, err)
	assert.Equal(t, 1, page.PageNum)
	assert.Len(t, page.Results, 1)
}

func TestSemanticEmptyQuery(t *testing.T) {
	repo := newTestRepo(t)
	embedder := mock.NewMockEmbedder()

	s, err := NewSearcher(repo, embedder)
	require.NoError(t, err)

	page, err := s.Semantic(context.Background(), "   ", 1)
	require.NoError(t, err)
	assert.Empty(t, page.Results)
	assert.Zero(t, page.Total)
	assert.Zero(t, embedder.CallCount())
}

func TestSemanticSkipsUndescribedImages(t *testing.T) {
	repo := newTestRepo(t)
	described := addDescribed(t, repo, "described.jpg", "described", []float32{1, 0, 0})

	// An image without any embedding never appears in semantic results.
	ctx := context.Background()
	bare := &core.ImageRecord{
		Hash:      core.HashFromBytes([]byte("bare.jpg")),
		Filepath:  "/library/bare.jpg",
		Filename:  "bare.jpg",
		CreatedAt: time.Now().UTC(),
	}
	_, err := repo.AddImage(ctx, bare)
	require.NoError(t, err)

	s, err := NewSearcher(repo, queryEmbedder([]float32{1, 0, 0}))
	require.NoError(t, err)

	page, err := s.Semantic(ctx, "query", 1)
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, described, page.Results[0].Record.Hash)
}

func TestSemanticEmbedFailure(t *testing.T) {
	repo := newTestRepo(t)
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("model offline")
	}

	s, err := NewSearcher(repo, embedder)
	require.NoError(t, err)

	_, err = s.Semantic(context.Background(), "query", 1)
	assert.Error(t, err)
}

func TestSemanticMonitorCallbacks(t *testing.T) {
	repo := newTestRepo(t)
	addDescribed(t, repo, "hit.jpg", "hit", []float32{1, 0, 0})
	addDescribed(t, repo, "miss.jpg", "miss", []float32{0, 1, 0})

	s, err := NewSearcher(repo, queryEmbedder([]float32{1, 0, 0}))
	require.NoError(t, err)

	m := &recordingMonitor{}
	page, err := s.SemanticWithMonitor(context.Background(), "query", 1, m)
	require.NoError(t, err)
	require.Len(t, page.Results, 1)

	assert.Equal(t, "query", m.query)
	assert.Len(t, m.embedding, 3)
	assert.Equal(t, 2, m.candidates)
	assert.Equal(t, 1, m.kept)
	assert.Len(t, m.results, 1)
}

type recordingMonitor struct {
	query      string
	embedding  []float32
	candidates int
	kept       int
	results    []*core.SearchResult
}

func (m *recordingMonitor) Start(query string)                  { m.query = query }
func (m *recordingMonitor) AfterQueryEmbedding(vec []float32)   { m.embedding = vec }
func (m *recordingMonitor) AfterScan(candidates int, kept int)  { m.candidates, m.kept = candidates, kept }
func (m *recordingMonitor) Finish(results []*core.SearchResult) { m.results = results }
