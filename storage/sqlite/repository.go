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


package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/archivit/core"
	"github.com/poiesic/archivit/storage"
)

// imageColumns is the SELECT list shared by every query that hydrates an
// ImageRecord. descriptions is always LEFT JOINed so records without a
// caption still come back, with an empty Description.
const imageColumns = `i.content_hash, i.filepath, i.filename, i.size,
    i.width, i.height, i.created_at, i.processed_at, COALESCE(d.text, '')`

const imageJoin = `FROM images i LEFT JOIN descriptions d ON d.image_hash = i.content_hash`

// Repository is a SQLite-backed implementation of storage.ImageRepository.
type Repository struct {
	backend *Backend
	logger  *slog.Logger
}

// NewImageRepository creates an ImageRepository on top of an open backend.
func NewImageRepository(backend *Backend) (storage.ImageRepository, error) {
	if backend == nil || backend.db == nil {
		return nil, fmt.Errorf("backend is required")
	}
	return &Repository{
		backend: backend,
		logger:  slog.Default().With("component", "sqlite-repository"),
	}, nil
}

func (r *Repository) AddImage(ctx context.Context, record *core.ImageRecord) (bool, error) {
	if err := core.ValidateImageRecord(record); err != nil {
		return false, err
	}

	processedAt := record.ProcessedAt
	if processedAt.IsZero() {
		processedAt = time.Now().UTC()
	}

	res, err := r.backend.db.ExecContext(ctx, `
        INSERT INTO images (content_hash, filepath, filename, size, width, height, created_at, processed_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (content_hash) DO NOTHING`,
		string(record.Hash),
		record.Filepath,
		record.Filename,
		record.Size,
		nullableInt(record.Width),
		nullableInt(record.Height),
		formatTime(record.CreatedAt),
		formatTime(processedAt),
	)
	if err != nil {
		if isConstraintErr(err) {
			// Same path, different content. The hash is new but the
			// filepath slot is taken.
			return false, fmt.Errorf("%w: filepath %s", storage.ErrDuplicateKey, record.Filepath)
		}
		return false, fmt.Errorf("failed to add image %s: %w", record.Hash, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to add image %s: %w", record.Hash, err)
	}
	return n > 0, nil
}

func (r *Repository) GetImage(ctx context.Context, hash core.Hash) (*core.ImageRecord, error) {
	if err := core.ValidateHash(hash); err != nil {
		return nil, err
	}

	row := r.backend.db.QueryRowContext(ctx,
		`SELECT `+imageColumns+` `+imageJoin+` WHERE i.content_hash = ?`,
		string(hash))

	record, err := scanImageRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: image %s", storage.ErrNotFound, hash)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get image %s: %w", hash, err)
	}
	return record, nil
}

func (r *Repository) UpsertDescription(ctx context.Context, hash core.Hash, text string, embedding []byte) error {
	if err := core.ValidateHash(hash); err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return core.ErrEmptyDescriptionText
	}

	var blob any
	if len(embedding) > 0 {
		blob = embedding
	}

	_, err := r.backend.db.ExecContext(ctx, `
        INSERT INTO descriptions (image_hash, text, embedding)
        VALUES (?, ?, ?)
        ON CONFLICT (image_hash) DO UPDATE SET
            text = excluded.text,
            embedding = excluded.embedding`,
		string(hash), text, blob)
	if err != nil {
		if isConstraintErr(err) {
			// Foreign key: no image row to attach the description to.
			return fmt.Errorf("%w: image %s", storage.ErrNotFound, hash)
		}
		return fmt.Errorf("failed to upsert description for %s: %w", hash, err)
	}
	return nil
}

func (r *Repository) GetEmbedding(ctx context.Context, hash core.Hash) ([]byte, error) {
	if err := core.ValidateHash(hash); err != nil {
		return nil, err
	}

	var blob []byte
	err := r.backend.db.QueryRowContext(ctx,
		`SELECT embedding FROM descriptions WHERE image_hash = ?`,
		string(hash)).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: embedding for %s", storage.ErrNotFound, hash)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get embedding for %s: %w", hash, err)
	}
	if len(blob) == 0 {
		return nil, fmt.Errorf("%w: embedding for %s", storage.ErrNotFound, hash)
	}
	return blob, nil
}

func (r *Repository) AllEmbeddings(ctx context.Context) ([]storage.HashEmbedding, error) {
	rows, err := r.backend.db.QueryContext(ctx,
		`SELECT image_hash, embedding FROM descriptions WHERE embedding IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("failed to list embeddings: %w", err)
	}
	defer rows.Close()

	var result []storage.HashEmbedding
	for rows.Next() {
		var hash string
		var blob []byte
		if err := rows.Scan(&hash, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan embedding row: %w", err)
		}
		result = append(result, storage.HashEmbedding{
			Hash:      core.Hash(hash),
			Embedding: blob,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list embeddings: %w", err)
	}
	return result, nil
}

func (r *Repository) AllImages(ctx context.Context) ([]*core.ImageRecord, error) {
	return r.queryImages(ctx,
		`SELECT `+imageColumns+` `+imageJoin+` ORDER BY i.filename ASC`)
}

func (r *Repository) ImagesMissingDescription(ctx context.Context) ([]*core.ImageRecord, error) {
	return r.queryImages(ctx,
		`SELECT `+imageColumns+` `+imageJoin+` WHERE d.id IS NULL ORDER BY i.filename ASC`)
}

func (r *Repository) SearchLexical(ctx context.Context, substring string, limit, offset int) ([]*core.ImageRecord, int, error) {
	if limit <= 0 {
		return nil, 0, fmt.Errorf("%w: limit must be positive", storage.ErrInvalidQuery)
	}
	if offset < 0 {
		return nil, 0, fmt.Errorf("%w: offset must not be negative", storage.ErrInvalidQuery)
	}

	// Both the page and the count run against this one predicate, with the
	// pattern bound as a parameter.
	const predicate = `WHERE i.filename LIKE ? ESCAPE '\' OR d.text LIKE ? ESCAPE '\'`
	pattern := "%" + escapeLike(substring) + "%"

	var total int
	err := r.backend.db.QueryRowContext(ctx,
		`SELECT COUNT(*) `+imageJoin+` `+predicate,
		pattern, pattern).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("lexical search failed: %w", err)
	}

	records, err := r.queryImages(ctx,
		`SELECT `+imageColumns+` `+imageJoin+` `+predicate+` ORDER BY i.filename ASC LIMIT ? OFFSET ?`,
		pattern, pattern, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *Repository) CountImages(ctx context.Context) (int, error) {
	var count int
	err := r.backend.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM images`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count images: %w", err)
	}
	return count, nil
}

// Close closes the underlying backend.
func (r *Repository) Close() error {
	return r.backend.Close()
}

func (r *Repository) queryImages(ctx context.Context, query string, args ...any) ([]*core.ImageRecord, error) {
	rows, err := r.backend.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("image query failed: %w", err)
	}
	defer rows.Close()

	var records []*core.ImageRecord
	for rows.Next() {
		record, err := scanImageRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan image row: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("image query failed: %w", err)
	}
	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanImageRow(row rowScanner) (*core.ImageRecord, error) {
	var (
		record      core.ImageRecord
		hash        string
		width       sql.NullInt64
		height      sql.NullInt64
		createdAt   string
		processedAt string
	)
	err := row.Scan(&hash, &record.Filepath, &record.Filename, &record.Size,
		&width, &height, &createdAt, &processedAt, &record.Description)
	if err != nil {
		return nil, err
	}

	record.Hash = core.Hash(hash)
	if width.Valid {
		w := int(width.Int64)
		record.Width = &w
	}
	if height.Valid {
		h := int(height.Int64)
		record.Height = &h
	}
	if record.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if record.ProcessedAt, err = parseTime(processedAt); err != nil {
		return nil, err
	}
	return &record, nil
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// escapeLike neutralizes LIKE metacharacters so the substring matches
// literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// isConstraintErr reports whether err is a SQLite constraint violation
// (unique or foreign key).
func isConstraintErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "constraint failed")
}
