package sqlite

import "github.com/poiesic/archivit/storage"

// NewMemoryRepository creates a repository backed by an in-memory database.
// Intended for tests; the caller owns the returned repository and must Close
// it.
func NewMemoryRepository() (storage.ImageRepository, error) {
	backend, err := OpenMemoryBackend()
	if err != nil {
		return nil, err
	}
	return NewImageRepository(backend)
}
