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


package scanner

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/archivit/core"
)

// writePNG writes a w x h PNG into dir and returns its path.
func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func collect(t *testing.T, s *Scanner, ctx context.Context, root string) []*core.ImageRecord {
	t.Helper()
	seq, err := s.Scan(ctx, root)
	require.NoError(t, err)
	var records []*core.ImageRecord
	for record := range seq {
		records = append(records, record)
	}
	return records
}

func TestScanYieldsImageRecords(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "tiny.png", 3, 2)
	writeFile(t, dir, "notes.txt", []byte("not an image"))

	s, err := NewScanner()
	require.NoError(t, err)

	records := collect(t, s, context.Background(), dir)
	require.Len(t, records, 1)

	record := records[0]
	assert.Equal(t, "tiny.png", record.Filename)
	assert.NoError(t, core.ValidateHash(record.Hash))
	assert.Positive(t, record.Size)
	assert.False(t, record.CreatedAt.IsZero())
	require.NotNil(t, record.Width)
	require.NotNil(t, record.Height)
	assert.Equal(t, 3, *record.Width)
	assert.Equal(t, 2, *record.Height)
}

func TestScanCaseInsensitiveExtensions(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "SHOUTY.PNG", 1, 1)

	s, err := NewScanner()
	require.NoError(t, err)

	records := collect(t, s, context.Background(), dir)
	require.Len(t, records, 1)
	assert.Equal(t, "SHOUTY.PNG", records[0].Filename)
}

func TestScanRecursesSubdirectories(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "2024", "vacation")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	writePNG(t, dir, "top.png", 1, 1)
	writePNG(t, sub, "nested.png", 1, 1)

	s, err := NewScanner()
	require.NoError(t, err)

	records := collect(t, s, context.Background(), dir)
	assert.Len(t, records, 2)
}

func TestScanUndecodableFileStillYielded(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "mangled.jpg", []byte("this is not jpeg data"))

	s, err := NewScanner()
	require.NoError(t, err)

	records := collect(t, s, context.Background(), dir)
	require.Len(t, records, 1)
	assert.Nil(t, records[0].Width)
	assert.Nil(t, records[0].Height)
	assert.NoError(t, core.ValidateHash(records[0].Hash))
}

func TestScanIdenticalContentSameHash(t *testing.T) {
	dir := t.TempDir()
	data := []byte("identical bytes")
	writeFile(t, dir, "one.jpg", data)
	writeFile(t, dir, "two.jpg", data)

	s, err := NewScanner()
	require.NoError(t, err)

	records := collect(t, s, context.Background(), dir)
	require.Len(t, records, 2)
	assert.Equal(t, records[0].Hash, records[1].Hash)
}

func TestScanRootErrors(t *testing.T) {
	s, err := NewScanner()
	require.NoError(t, err)

	_, err = s.Scan(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, ErrRootNotFound)

	file := writeFile(t, t.TempDir(), "just-a-file.png", []byte{1})
	_, err = s.Scan(context.Background(), file)
	assert.ErrorIs(t, err, ErrNotDirectory)
}

func TestScanRestartable(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "a.png", 1, 1)
	writePNG(t, dir, "b.png", 1, 1)

	s, err := NewScanner()
	require.NoError(t, err)

	seq, err := s.Scan(context.Background(), dir)
	require.NoError(t, err)

	first := 0
	for range seq {
		first++
	}
	second := 0
	for range seq {
		second++
	}
	assert.Equal(t, 2, first)
	assert.Equal(t, 2, second)
}

func TestScanEarlyStop(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "a.png", 1, 1)
	writePNG(t, dir, "b.png", 1, 1)
	writePNG(t, dir, "c.png", 1, 1)

	s, err := NewScanner()
	require.NoError(t, err)

	seq, err := s.Scan(context.Background(), dir)
	require.NoError(t, err)

	seen := 0
	for range seq {
		seen++
		break
	}
	assert.Equal(t, 1, seen)
}

func TestScanCancelledContext(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "a.png", 1, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, err := NewScanner()
	require.NoError(t, err)

	records := collect(t, s, ctx, dir)
	assert.Empty(t, records)
}

func TestWithExtensions(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "keep.png", 1, 1)
	writeFile(t, dir, "skip.jpg", []byte{1, 2, 3})

	s, err := NewScanner(WithExtensions(".png"))
	require.NoError(t, err)

	records := collect(t, s, context.Background(), dir)
	require.Len(t, records, 1)
	assert.Equal(t, "keep.png", records[0].Filename)

	_, err = NewScanner(WithExtensions())
	assert.ErrorIs(t, err, ErrNoExtensions)
}
