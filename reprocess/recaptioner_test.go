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
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/archivit/ai/mock"
	"github.com/poiesic/archivit/core"
	"github.com/poiesic/archivit/storage"
	"github.com/poiesic/archivit/storage/sqlite"
)

// newArchiveOnDisk stores n images whose files actually exist in a temp dir.
func newArchiveOnDisk(t *testing.T, names ...string) (storage.ImageRepository, []core.Hash) {
	t.Helper()
	repo, err := sqlite.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	dir := t.TempDir()
	ctx := context.Background()
	hashes := make([]core.Hash, len(names))
	for i, name := range names {
		data := []byte("file content of " + name)
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, data, 0o644))

		record := &core.ImageRecord{
			Hash:      core.HashFromBytes(data),
			Filepath:  path,
			Filename:  name,
			Size:      int64(len(data)),
			CreatedAt: time.Now().UTC(),
		}
		added, err := repo.AddImage(ctx, record)
		require.NoError(t, err)
		require.True(t, added)
		hashes[i] = record.Hash
	}
	return repo, hashes
}

func TestNewRecaptionerValidation(t *testing.T) {
	repo, _ := newArchiveOnDisk(t)
	captioner := mock.NewMockCaptioner()
	embedder := mock.NewMockEmbedder()

	_, err := NewRecaptioner(nil, captioner, embedder, nil, nil, false)
	assert.ErrorIs(t, err, ErrRepositoryRequired)

	_, err = NewRecaptioner(repo, nil, embedder, nil, nil, false)
	assert.ErrorIs(t, err, ErrCaptionerRequired)

	_, err = NewRecaptioner(repo, captioner, nil, nil, nil, false)
	assert.ErrorIs(t, err, ErrEmbedderRequired)
}

func TestRecaptionerMissingOnly(t *testing.T) {
	repo, hashes := newArchiveOnDisk(t, "done.jpg", "pending.jpg")
	ctx := context.Background()
	require.NoError(t, repo.UpsertDescription(ctx, hashes[0], "kept caption", nil))

	captioner := mock.NewMockCaptioner()
	embedder := mock.NewMockEmbedder()
	rc, err := NewRecaptioner(repo, captioner, embedder, testConfig(), nil, true)
	require.NoError(t, err)

	result, err := rc.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Described)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 1, captioner.CallCount())

	// The already-described image kept its caption untouched.
	record, err := repo.GetImage(ctx, hashes[0])
	require.NoError(t, err)
	assert.Equal(t, "kept caption", record.Description)

	record, err = repo.GetImage(ctx, hashes[1])
	require.NoError(t, err)
	assert.NotEmpty(t, record.Description)

	_, err = repo.GetEmbedding(ctx, hashes[1])
	assert.NoError(t, err)
}

func TestRecaptionerFullRunReplacesCaptions(t *testing.T) {
	repo, hashes := newArchiveOnDisk(t, "a.jpg", "b.jpg")
	ctx := context.Background()
	require.NoError(t, repo.UpsertDescription(ctx, hashes[0], "old caption", nil))

	captioner := mock.NewMockCaptioner()
	captioner.DescribeImageFunc = func(ctx context.Context, data []byte) (string, error) {
		return "a brand new caption", nil
	}
	embedder := mock.NewMockEmbedder()

	rc, err := NewRecaptioner(repo, captioner, embedder, testConfig(), nil, false)
	require.NoError(t, err)

	result, err := rc.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Described)

	record, err := repo.GetImage(ctx, hashes[0])
	require.NoError(t, err)
	assert.Equal(t, "a brand new caption", record.Description)
}

func TestRecaptionerFailuresDoNotAbort(t *testing.T) {
	repo, hashes := newArchiveOnDisk(t, "ok.jpg", "bad.jpg")
	ctx := context.Background()

	captioner := mock.NewMockCaptioner()
	captioner.DescribeImageFunc = func(ctx context.Context, data []byte) (string, error) {
		if string(data) == "file content of bad.jpg" {
			return "", errors.New("vision model unavailable")
		}
		return "fine", nil
	}
	embedder := mock.NewMockEmbedder()

	rc, err := NewRecaptioner(repo, captioner, embedder, testConfig(), nil, true)
	require.NoError(t, err)

	result, err := rc.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Described)
	assert.Equal(t, 1, result.Failed)

	// The failed image still has no description row.
	missing, err := repo.ImagesMissingDescription(ctx)
	require.NoError(t, err)
	require.Len(t, missing, 1)
	assert.Equal(t, hashes[1], missing[0].Hash)
}
