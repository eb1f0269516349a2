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
	"context"
	"fmt"
	"image"
	"io"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/poiesic/archivit/core"
)

// defaultExtensions is the set of file extensions recognized as images.
var defaultExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp"}

// Scanner walks directory trees and produces image records for files whose
// extension is on the allow-list. Extension matching is case-insensitive.
type Scanner struct {
	extensions map[string]struct{}
	logger     *slog.Logger
}

// Option configures a Scanner.
type Option func(*Scanner) error

// WithExtensions replaces the extension allow-list. Each extension must
// include the leading dot; case does not matter.
func WithExtensions(exts ...string) Option {
	return func(s *Scanner) error {
		if len(exts) == 0 {
			return ErrNoExtensions
		}
		allowed := make(map[string]struct{}, len(exts))
		for _, ext := range exts {
			allowed[strings.ToLower(ext)] = struct{}{}
		}
		s.extensions = allowed
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewScanner creates a scanner with the default image extension allow-list.
func NewScanner(opts ...Option) (*Scanner, error) {
	s := &Scanner{
		logger: slog.Default().With("component", "scanner"),
	}
	if err := WithExtensions(defaultExtensions...)(s); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Scan validates root and returns a lazy sequence of image records found
// under it. The sequence walks the tree anew each time it is ranged over.
// A file that cannot be read is logged and skipped; the walk continues.
// Context cancellation stops the sequence between files.
func (s *Scanner) Scan(ctx context.Context, root string) (iter.Seq[*core.ImageRecord], error) {
	info, err := os.Stat(root)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrRootNotFound, root)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat scan root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}

	return func(yield func(*core.ImageRecord) bool) {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if ctx.Err() != nil {
				return filepath.SkipAll
			}
			if err != nil {
				s.logger.Error("cannot access path, skipping", "path", path, "err", err)
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if _, ok := s.extensions[strings.ToLower(filepath.Ext(path))]; !ok {
				return nil
			}

			record, err := s.loadRecord(path, d)
			if err != nil {
				s.logger.Error("cannot read file, skipping", "path", path, "err", err)
				return nil
			}
			if !yield(record) {
				return filepath.SkipAll
			}
			return nil
		})
		if err != nil {
			s.logger.Error("directory walk failed", "root", root, "err", err)
		}
	}, nil
}

// loadRecord hashes the file content in streaming fashion and probes its
// dimensions. The dimension probe is best-effort: a format the decoders
// cannot parse leaves Width and Height nil.
func (s *Scanner) loadRecord(path string, d fs.DirEntry) (*core.ImageRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	hash, err := core.ComputeHash(f)
	if err != nil {
		return nil, err
	}

	info, err := d.Info()
	if err != nil {
		return nil, err
	}

	record := &core.ImageRecord{
		Hash:      hash,
		Filepath:  path,
		Filename:  filepath.Base(path),
		Size:      info.Size(),
		CreatedAt: info.ModTime().UTC(),
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		s.logger.Warn("cannot decode image dimensions", "path", path, "err", err)
		return record, nil
	}
	record.Width = &cfg.Width
	record.Height = &cfg.Height

	return record, nil
}
